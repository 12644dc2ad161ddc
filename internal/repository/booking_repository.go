package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hotel-booking-service/internal/domain"
)

// ErrRoomFull is returned when a transactional capacity check fails.
var ErrRoomFull = errors.New("room is at full capacity")

// ErrAlreadyBooked is returned when the unique booking-per-user constraint trips.
var ErrAlreadyBooked = errors.New("user already has a booking")

// BookingRepository encapsulates booking persistence. Create and UpdateRoom
// re-check capacity inside a transaction holding a lock on the room row, so
// concurrent commits against a near-full room cannot exceed its capacity.
type BookingRepository interface {
	FindViewByUser(ctx context.Context, userID int64) (*domain.BookingView, error)
	Create(ctx context.Context, userID, roomID int64) (int64, error)
	UpdateRoom(ctx context.Context, bookingID, roomID int64) (int64, error)
	CountForRoom(ctx context.Context, roomID int64) (int, error)
}

type bookingRepository struct {
	pool *pgxpool.Pool
}

// NewBookingRepository instantiates repository.
func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &bookingRepository{pool: pool}
}

func (r *bookingRepository) FindViewByUser(ctx context.Context, userID int64) (*domain.BookingView, error) {
	const query = `
        SELECT b.id, r.id, r.name, r.capacity, r.hotel_id
        FROM bookings b
        JOIN rooms r ON r.id = b.room_id
        WHERE b.user_id = $1`
	var view domain.BookingView
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&view.ID,
		&view.Room.ID,
		&view.Room.Name,
		&view.Room.Capacity,
		&view.Room.HotelID,
	); err != nil {
		return nil, err
	}
	return &view, nil
}

func (r *bookingRepository) Create(ctx context.Context, userID, roomID int64) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	capacity, err := lockRoomCapacity(ctx, tx, roomID)
	if err != nil {
		return 0, err
	}

	occupancy, err := countForRoomTx(ctx, tx, roomID)
	if err != nil {
		return 0, err
	}
	if occupancy >= capacity {
		return 0, ErrRoomFull
	}

	const insert = `
        INSERT INTO bookings (user_id, room_id)
        VALUES ($1, $2)
        RETURNING id`
	var id int64
	if err := tx.QueryRow(ctx, insert, userID, roomID).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrAlreadyBooked
		}
		return 0, fmt.Errorf("insert booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

func (r *bookingRepository) UpdateRoom(ctx context.Context, bookingID, roomID int64) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	capacity, err := lockRoomCapacity(ctx, tx, roomID)
	if err != nil {
		return 0, err
	}

	occupancy, err := countForRoomTx(ctx, tx, roomID)
	if err != nil {
		return 0, err
	}
	if occupancy >= capacity {
		return 0, ErrRoomFull
	}

	const update = `
        UPDATE bookings SET room_id = $1, updated_at = NOW()
        WHERE id = $2
        RETURNING id`
	var id int64
	if err := tx.QueryRow(ctx, update, roomID, bookingID).Scan(&id); err != nil {
		return 0, fmt.Errorf("update booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

func (r *bookingRepository) CountForRoom(ctx context.Context, roomID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM bookings WHERE room_id = $1`
	var count int
	if err := r.pool.QueryRow(ctx, query, roomID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return count, nil
}

func lockRoomCapacity(ctx context.Context, tx pgx.Tx, roomID int64) (int, error) {
	const query = `SELECT capacity FROM rooms WHERE id = $1 FOR UPDATE`
	var capacity int
	if err := tx.QueryRow(ctx, query, roomID).Scan(&capacity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, pgx.ErrNoRows
		}
		return 0, fmt.Errorf("lock room: %w", err)
	}
	return capacity, nil
}

func countForRoomTx(ctx context.Context, tx pgx.Tx, roomID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM bookings WHERE room_id = $1`
	var count int
	if err := tx.QueryRow(ctx, query, roomID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return count, nil
}
