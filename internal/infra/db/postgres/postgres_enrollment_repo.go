package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"mlm-membership-platform/internal/domain"
	"mlm-membership-platform/internal/domain/ports/repository"
)

var _ repository.EnrollmentRepository = (*enrollmentRepo)(nil)

// enrollmentRepo reads the rows the tree placement procedure writes.
type enrollmentRepo struct {
	pool *pgxpool.Pool
}

func NewEnrollmentRepo(pool *pgxpool.Pool) repository.EnrollmentRepository {
	return &enrollmentRepo{pool: pool}
}

func (r *enrollmentRepo) ListPlanIDs(ctx context.Context, tx repository.Tx, memberID int64) ([]int64, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT plan_id FROM enrollments WHERE member_id=$1 ORDER BY created_at;`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0, 4)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *enrollmentRepo) Exists(ctx context.Context, tx repository.Tx, memberID, planID int64) (bool, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT EXISTS(SELECT 1 FROM enrollments WHERE member_id=$1 AND plan_id=$2);`, memberID, planID)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("enrollment exists: %w", err)
	}
	return exists, nil
}

func (r *enrollmentRepo) CountDirects(ctx context.Context, tx repository.Tx, sponsorID int64) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(DISTINCT member_id) FROM enrollments WHERE sponsor_id=$1;`, sponsorID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count directs: %w", err)
	}
	return n, nil
}

func (r *enrollmentRepo) LatestSponsor(ctx context.Context, tx repository.Tx, memberID int64) (*int64, error) {
	const q = `SELECT sponsor_id FROM enrollments WHERE member_id=$1 ORDER BY created_at DESC LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, memberID)
	if err != nil {
		return nil, err
	}
	var sponsorID *int64
	if err := row.Scan(&sponsorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return sponsorID, nil
}
