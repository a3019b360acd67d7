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

var _ repository.MemberRepository = (*PostgresMemberRepo)(nil)

type PostgresMemberRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresMemberRepo(pool *pgxpool.Pool) *PostgresMemberRepo {
	return &PostgresMemberRepo{pool: pool}
}

const memberColumns = `id, code, name, email, phone, password_hash, role, created_at`

func (r *PostgresMemberRepo) Create(ctx context.Context, tx repository.Tx, m *model.Member) (int64, error) {
	const q = `
INSERT INTO members (code, name, email, phone, password_hash, role, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id;
`
	row, err := pickRow(ctx, r.pool, tx, q, m.Code, m.Name, m.Email, m.Phone, m.PasswordHash, m.Role, m.CreatedAt)
	if err != nil {
		return 0, err
	}
	var id int64
	if err := row.Scan(&id); err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			switch constraint {
			case "members_email_key":
				return 0, domain.ErrDuplicateEmail
			case "members_code_key":
				return 0, domain.ErrMemberCodeTaken
			}
			return 0, domain.ErrAlreadyExists
		}
		return 0, fmt.Errorf("insert member: %w", err)
	}
	m.ID = id
	return id, nil
}

func (r *PostgresMemberRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Member, error) {
	const q = `SELECT ` + memberColumns + ` FROM members WHERE code=$1;`
	return r.scanOne(ctx, tx, q, code)
}

func (r *PostgresMemberRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Member, error) {
	const q = `SELECT ` + memberColumns + ` FROM members WHERE id=$1;`
	return r.scanOne(ctx, tx, q, id)
}

func (r *PostgresMemberRepo) scanOne(ctx context.Context, tx repository.Tx, q string, arg interface{}) (*model.Member, error) {
	row, err := pickRow(ctx, r.pool, tx, q, arg)
	if err != nil {
		return nil, err
	}
	var m model.Member
	if err := row.Scan(&m.ID, &m.Code, &m.Name, &m.Email, &m.Phone, &m.PasswordHash, &m.Role, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &m, nil
}

func (r *PostgresMemberRepo) EmailExists(ctx context.Context, tx repository.Tx, email string) (bool, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT EXISTS(SELECT 1 FROM members WHERE email=$1);`, email)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("email exists: %w", err)
	}
	return exists, nil
}

func (r *PostgresMemberRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM members;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return n, nil
}

func (r *PostgresMemberRepo) CountByCodePrefix(ctx context.Context, tx repository.Tx, prefix string) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM members WHERE code LIKE $1 || '%';`, prefix)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count by code prefix: %w", err)
	}
	return n, nil
}

func (r *PostgresMemberRepo) UpdatePasswordHash(ctx context.Context, tx repository.Tx, id int64, hash string) error {
	tag, err := execSQL(ctx, r.pool, tx, `UPDATE members SET password_hash=$2 WHERE id=$1;`, id, hash)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
