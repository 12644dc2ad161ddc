package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hotel-booking-service/internal/domain"
)

// RoomRepository provides read access to rooms.
type RoomRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
}

type roomRepository struct {
	pool *pgxpool.Pool
}

// NewRoomRepository instantiates repository.
func NewRoomRepository(pool *pgxpool.Pool) RoomRepository {
	return &roomRepository{pool: pool}
}

func (r *roomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	const query = `SELECT id, name, capacity, hotel_id FROM rooms WHERE id = $1`
	var room domain.Room
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&room.ID,
		&room.Name,
		&room.Capacity,
		&room.HotelID,
	); err != nil {
		return nil, err
	}
	return &room, nil
}
