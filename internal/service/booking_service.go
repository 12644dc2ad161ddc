package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/hotel-booking-service/internal/domain"
	"github.com/spec-kit/hotel-booking-service/internal/events"
	"github.com/spec-kit/hotel-booking-service/internal/repository"
	apperrors "github.com/spec-kit/hotel-booking-service/pkg/util"
)

// ViewCache caches the booking-with-room view per user. Failures are
// non-fatal; implementations report misses instead of errors.
type ViewCache interface {
	Get(ctx context.Context, userID int64) (*domain.BookingView, bool)
	Set(ctx context.Context, userID int64, view *domain.BookingView)
	Invalidate(ctx context.Context, userID int64)
}

// BookingService sequences eligibility checks and persistence for room
// assignments. Each request is a single fetch → decide → commit chain;
// failures are never retried here.
type BookingService struct {
	bookings    repository.BookingRepository
	rooms       repository.RoomRepository
	enrollments repository.EnrollmentRepository
	tickets     repository.TicketRepository
	cache       ViewCache
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// BookingDependencies bundles collaborators for the booking service.
type BookingDependencies struct {
	BookingRepo    repository.BookingRepository
	RoomRepo       repository.RoomRepository
	EnrollmentRepo repository.EnrollmentRepository
	TicketRepo     repository.TicketRepository
	Cache          ViewCache
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// NewBookingService constructs the service.
func NewBookingService(deps BookingDependencies) *BookingService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		bookings:    deps.BookingRepo,
		rooms:       deps.RoomRepo,
		enrollments: deps.EnrollmentRepo,
		tickets:     deps.TicketRepo,
		cache:       deps.Cache,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
	}
}

// GetBooking returns the user's booking-with-room view.
func (s *BookingService) GetBooking(ctx context.Context, userID int64) (*domain.BookingView, error) {
	if s.cache != nil {
		if view, ok := s.cache.Get(ctx, userID); ok {
			return view, nil
		}
	}

	view, err := s.bookings.FindViewByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("booking", nil)
		}
		return nil, apperrors.NewStorageUnavailable(err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, userID, view)
	}
	return view, nil
}

// CreateBooking assigns the user to a room after eligibility checks.
func (s *BookingService) CreateBooking(ctx context.Context, userID, roomID int64) (int64, error) {
	enrollment, err := s.enrollments.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.NewNotFound("enrollment", nil)
		}
		return 0, apperrors.NewStorageUnavailable(err)
	}

	ticket, err := s.tickets.FindByEnrollment(ctx, enrollment.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.NewNotFound("ticket", nil)
		}
		return 0, apperrors.NewStorageUnavailable(err)
	}

	room, occupancy, err := s.roomFacts(ctx, roomID)
	if err != nil {
		return 0, err
	}

	if err := EvaluateCreate(ticket, room, occupancy); err != nil {
		return 0, err
	}

	id, err := s.bookings.Create(ctx, userID, roomID)
	if err != nil {
		return 0, mapWriteError(err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
	s.logger.Info("booking created",
		zap.Int64("booking_id", id),
		zap.Int64("user_id", userID),
		zap.Int64("room_id", roomID),
	)
	s.publishEvent(ctx, events.Event{
		Type:      events.EventBookingCreated,
		BookingID: id,
		UserID:    userID,
		Payload: events.BookingCreatedPayload{
			RoomID:  roomID,
			HotelID: room.HotelID,
		},
	})
	return id, nil
}

// UpdateBooking moves the user's booking to another room. Ticket eligibility
// is not re-checked on update.
func (s *BookingService) UpdateBooking(ctx context.Context, userID, bookingID, roomID int64) (int64, error) {
	existing, err := s.bookings.FindViewByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			existing = nil
		} else {
			return 0, apperrors.NewStorageUnavailable(err)
		}
	}

	room, occupancy, err := s.roomFacts(ctx, roomID)
	if err != nil {
		return 0, err
	}

	if err := EvaluateUpdate(existing, room, occupancy); err != nil {
		return 0, err
	}

	id, err := s.bookings.UpdateRoom(ctx, bookingID, roomID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.NewNotFound("booking", nil)
		}
		return 0, mapWriteError(err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
	s.logger.Info("booking room changed",
		zap.Int64("booking_id", id),
		zap.Int64("user_id", userID),
		zap.Int64("room_id", roomID),
	)
	s.publishEvent(ctx, events.Event{
		Type:      events.EventBookingRoomChanged,
		BookingID: id,
		UserID:    userID,
		Payload: events.BookingRoomChangedPayload{
			OldRoomID: existing.Room.ID,
			NewRoomID: roomID,
		},
	})
	return id, nil
}

// roomFacts fetches the target room and its current occupancy. An absent room
// yields a nil room so the evaluator can apply its checks in order.
func (s *BookingService) roomFacts(ctx context.Context, roomID int64) (*domain.Room, int, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, nil
		}
		return nil, 0, apperrors.NewStorageUnavailable(err)
	}

	occupancy, err := s.bookings.CountForRoom(ctx, roomID)
	if err != nil {
		return nil, 0, apperrors.NewStorageUnavailable(err)
	}
	return room, occupancy, nil
}

// mapWriteError classifies failures of the transactional write. The capacity
// and uniqueness re-checks inside the transaction can trip after the advisory
// evaluation passed.
func mapWriteError(err error) error {
	switch {
	case errors.Is(err, repository.ErrRoomFull):
		return apperrors.NewForbidden("room is already at full capacity")
	case errors.Is(err, repository.ErrAlreadyBooked):
		return apperrors.NewForbidden("user already has a booking")
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewNotFound("room", nil)
	default:
		return apperrors.NewStorageUnavailable(err)
	}
}

func (s *BookingService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
