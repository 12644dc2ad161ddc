package service

import (
	"github.com/spec-kit/hotel-booking-service/internal/domain"
	apperrors "github.com/spec-kit/hotel-booking-service/pkg/util"
)

// Eligibility rules are pure: they receive already-fetched facts and return
// nil on allow or a classified error carrying the specific denial reason.
// Checks short-circuit in order; the ticket checks run before the room
// existence check, so a remote-ticket user asking for a nonexistent room is
// denied as forbidden rather than not-found.

// EvaluateCreate decides whether a ticket holder may take a room.
func EvaluateCreate(ticket *domain.Ticket, room *domain.Room, occupancy int) error {
	if ticket.TicketType.IsRemote {
		return apperrors.NewForbidden("remote ticket needs no room")
	}
	if !ticket.TicketType.IncludesHotel {
		return apperrors.NewForbidden("ticket does not include hotel")
	}
	if ticket.Status != domain.TicketStatusPaid {
		return apperrors.NewForbidden("ticket is not paid")
	}
	if room == nil {
		return apperrors.NewNotFound("room", nil)
	}
	if occupancy >= room.Capacity {
		return apperrors.NewForbidden("room is already at full capacity")
	}
	return nil
}

// EvaluateUpdate decides whether an existing booking may move to a room.
// Ticket eligibility is not re-checked: a user who once qualified may
// rearrange rooms without re-validation. A missing booking is forbidden,
// not not-found. The occupancy count includes the mover's own booking when
// the target is their current room, so moving within a full room is denied.
func EvaluateUpdate(existing *domain.BookingView, room *domain.Room, occupancy int) error {
	if existing == nil {
		return apperrors.NewForbidden("user has no booking")
	}
	if room == nil {
		return apperrors.NewNotFound("room", nil)
	}
	if occupancy >= room.Capacity {
		return apperrors.NewForbidden("room is already at full capacity")
	}
	return nil
}
