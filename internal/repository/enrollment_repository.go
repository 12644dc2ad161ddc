package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hotel-booking-service/internal/domain"
)

// EnrollmentRepository provides read access to enrollments.
type EnrollmentRepository interface {
	FindByUser(ctx context.Context, userID int64) (*domain.Enrollment, error)
}

type enrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository instantiates repository.
func NewEnrollmentRepository(pool *pgxpool.Pool) EnrollmentRepository {
	return &enrollmentRepository{pool: pool}
}

func (r *enrollmentRepository) FindByUser(ctx context.Context, userID int64) (*domain.Enrollment, error) {
	const query = `SELECT id, user_id FROM enrollments WHERE user_id = $1`
	var enrollment domain.Enrollment
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&enrollment.ID, &enrollment.UserID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}
