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

var _ repository.ProfileRepository = (*profileRepo)(nil)

type profileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) repository.ProfileRepository {
	return &profileRepo{pool: pool}
}

const profileColumns = `member_id, address_line1, city, state, pincode, country,
bank_name, account_holder_name, account_number, ifsc_code,
aadhaar_front_ref, aadhaar_back_ref, bank_passbook_ref, status, created_at`

func (r *profileRepo) Create(ctx context.Context, tx repository.Tx, p *model.MemberProfile) error {
	const q = `
INSERT INTO member_profiles (` + profileColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		p.MemberID, p.AddressLine1, p.City, p.State, p.Pincode, p.Country,
		p.BankName, p.AccountHolderName, p.AccountNumber, p.IFSCCode,
		p.AadhaarFrontRef, p.AadhaarBackRef, p.BankPassbookRef, p.Status, p.CreatedAt,
	)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *profileRepo) FindByMember(ctx context.Context, tx repository.Tx, memberID int64) (*model.MemberProfile, error) {
	const q = `SELECT ` + profileColumns + ` FROM member_profiles WHERE member_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, memberID)
	if err != nil {
		return nil, err
	}
	var p model.MemberProfile
	if err := scanProfile(row, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanProfile(row pgx.Row, p *model.MemberProfile) error {
	err := row.Scan(
		&p.MemberID, &p.AddressLine1, &p.City, &p.State, &p.Pincode, &p.Country,
		&p.BankName, &p.AccountHolderName, &p.AccountNumber, &p.IFSCCode,
		&p.AadhaarFrontRef, &p.AadhaarBackRef, &p.BankPassbookRef, &p.Status, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return domain.ErrReadDatabaseRow
	}
	return nil
}

func (r *profileRepo) ListPending(ctx context.Context, tx repository.Tx) ([]*model.PendingProfile, error) {
	const q = `
SELECT p.member_id, p.address_line1, p.city, p.state, p.pincode, p.country,
       p.bank_name, p.account_holder_name, p.account_number, p.ifsc_code,
       p.aadhaar_front_ref, p.aadhaar_back_ref, p.bank_passbook_ref, p.status, p.created_at,
       m.name, m.code
  FROM member_profiles p
  JOIN members m ON m.id = p.member_id
 WHERE p.status = 'pending'
 ORDER BY p.created_at;
`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.PendingProfile
	for rows.Next() {
		var p model.PendingProfile
		err := rows.Scan(
			&p.MemberID, &p.AddressLine1, &p.City, &p.State, &p.Pincode, &p.Country,
			&p.BankName, &p.AccountHolderName, &p.AccountNumber, &p.IFSCCode,
			&p.AadhaarFrontRef, &p.AadhaarBackRef, &p.BankPassbookRef, &p.Status, &p.CreatedAt,
			&p.MemberName, &p.MemberCode,
		)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *profileRepo) UpdateStatus(ctx context.Context, tx repository.Tx, memberID int64, status model.ProfileStatus) error {
	tag, err := execSQL(ctx, r.pool, tx, `UPDATE member_profiles SET status=$2 WHERE member_id=$1;`, memberID, status)
	if err != nil {
		return fmt.Errorf("update profile status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
