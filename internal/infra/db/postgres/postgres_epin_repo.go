package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"mlm-membership-platform/internal/domain"
	"mlm-membership-platform/internal/domain/model"
	"mlm-membership-platform/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.EPinRepository = (*epinRepo)(nil)

type epinRepo struct {
	pool *pgxpool.Pool
}

func NewEPinRepo(pool *pgxpool.Pool) repository.EPinRepository {
	return &epinRepo{pool: pool}
}

func (r *epinRepo) Save(ctx context.Context, tx repository.Tx, pin *model.EPin) error {
	const q = `
INSERT INTO epins (id, code, plan_id, assigned_to, status, used_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7);
`
	_, err := execSQL(ctx, r.pool, tx, q, pin.ID, pin.Code, pin.PlanID, pin.AssignedTo, pin.Status, pin.UsedBy, pin.CreatedAt)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert epin: %w", err)
	}
	return nil
}

// FindByCode returns the code in any status; the workflow distinguishes a
// missing code from an already-used one.
func (r *epinRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.EPin, error) {
	const q = `
SELECT id, code, plan_id, assigned_to, status, used_by, created_at
  FROM epins WHERE code=$1;
`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	var p model.EPin
	if err := row.Scan(&p.ID, &p.Code, &p.PlanID, &p.AssignedTo, &p.Status, &p.UsedBy, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &p, nil
}

// Redeem is a compare-and-set: the status guard in the WHERE clause makes a
// concurrent double redemption impossible, and the affected-row check turns
// the lost race into ErrActivationCodeUsed.
func (r *epinRepo) Redeem(ctx context.Context, tx repository.Tx, id string, usedBy int64) error {
	const q = `UPDATE epins SET status='used', used_by=$2 WHERE id=$1 AND status='unused';`
	tag, err := execSQL(ctx, r.pool, tx, q, id, usedBy)
	if err != nil {
		return fmt.Errorf("redeem epin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrActivationCodeUsed
	}
	return nil
}

func (r *epinRepo) Reassign(ctx context.Context, tx repository.Tx, codes []string, toMemberID int64) (int64, error) {
	const q = `UPDATE epins SET assigned_to=$1 WHERE code = ANY($2) AND status='unused';`
	tag, err := execSQL(ctx, r.pool, tx, q, toMemberID, codes)
	if err != nil {
		return 0, fmt.Errorf("reassign epins: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *epinRepo) ListAssigned(ctx context.Context, tx repository.Tx, memberID int64) ([]*model.AssignedEPin, error) {
	const q = `
SELECT e.id, e.code, e.status, e.plan_id, p.name, e.created_at
  FROM epins e
  JOIN plans p ON p.id = e.plan_id
 WHERE e.assigned_to = $1
 ORDER BY e.created_at DESC;
`
	rows, err := queryRows(ctx, r.pool, tx, q, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.AssignedEPin
	for rows.Next() {
		var a model.AssignedEPin
		if err := rows.Scan(&a.ID, &a.Code, &a.Status, &a.PlanID, &a.PlanName, &a.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *epinRepo) ListHistory(ctx context.Context, tx repository.Tx) ([]*model.EPinHistoryEntry, error) {
	const q = `
SELECT e.id, e.code, e.status, e.plan_id, e.assigned_to, m.code, e.used_by, e.created_at
  FROM epins e
  JOIN members m ON m.id = e.assigned_to
 ORDER BY e.created_at DESC;
`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.EPinHistoryEntry
	for rows.Next() {
		var h model.EPinHistoryEntry
		if err := rows.Scan(&h.ID, &h.Code, &h.Status, &h.PlanID, &h.AssignedTo, &h.OwnerCode, &h.UsedBy, &h.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &h)
	}
	return out, rows.Err()
}
