package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hotel-booking-service/internal/api/dto"
	"github.com/spec-kit/hotel-booking-service/internal/auth"
	"github.com/spec-kit/hotel-booking-service/internal/domain"
	"github.com/spec-kit/hotel-booking-service/internal/service"
	apperrors "github.com/spec-kit/hotel-booking-service/pkg/util"
)

// BookingsHandler manages room assignment endpoints.
type BookingsHandler struct {
	service *service.BookingService
}

// NewBookingsHandler constructs handler.
func NewBookingsHandler(bookingService *service.BookingService) *BookingsHandler {
	return &BookingsHandler{service: bookingService}
}

// GetBooking GET /bookings.
func (h *BookingsHandler) GetBooking(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	view, err := h.service.GetBooking(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(bookingView(view))
}

// CreateBooking POST /bookings.
func (h *BookingsHandler) CreateBooking(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.BookingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.RoomID <= 0 {
		return apperrors.NewValidationError("roomId required", nil)
	}

	id, err := h.service.CreateBooking(c.UserContext(), principal.User.ID, req.RoomID)
	if err != nil {
		return err
	}
	return c.JSON(dto.BookingIDResponse{BookingID: id})
}

// UpdateBooking PUT /bookings/:bookingId.
func (h *BookingsHandler) UpdateBooking(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	bookingID, err := strconv.ParseInt(c.Params("bookingId"), 10, 64)
	if err != nil || bookingID <= 0 {
		return apperrors.NewValidationError("invalid bookingId", nil)
	}
	var req dto.BookingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.RoomID <= 0 {
		return apperrors.NewValidationError("roomId required", nil)
	}

	id, err := h.service.UpdateBooking(c.UserContext(), principal.User.ID, bookingID, req.RoomID)
	if err != nil {
		return err
	}
	return c.JSON(dto.BookingIDResponse{BookingID: id})
}

func bookingView(view *domain.BookingView) dto.BookingViewResponse {
	return dto.BookingViewResponse{
		ID: view.ID,
		Room: dto.RoomResponse{
			ID:       view.Room.ID,
			Name:     view.Room.Name,
			Capacity: view.Room.Capacity,
			HotelID:  view.Room.HotelID,
		},
	}
}
