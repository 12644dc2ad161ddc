package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hotel-booking-service/internal/domain"
)

// TicketRepository provides read access to tickets with their type embedded.
type TicketRepository interface {
	FindByEnrollment(ctx context.Context, enrollmentID int64) (*domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) FindByEnrollment(ctx context.Context, enrollmentID int64) (*domain.Ticket, error) {
	const query = `
        SELECT t.id, t.enrollment_id, t.status,
               tt.id, tt.name, tt.price, tt.is_remote, tt.includes_hotel
        FROM tickets t
        JOIN ticket_types tt ON tt.id = t.ticket_type_id
        WHERE t.enrollment_id = $1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, enrollmentID).Scan(
		&ticket.ID,
		&ticket.EnrollmentID,
		&ticket.Status,
		&ticket.TicketType.ID,
		&ticket.TicketType.Name,
		&ticket.TicketType.Price,
		&ticket.TicketType.IsRemote,
		&ticket.TicketType.IncludesHotel,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
