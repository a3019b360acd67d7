package repository

import (
	"context"

	"mlm-membership-platform/internal/domain/model"
)

// -----------------------------
// Members
// -----------------------------

type MemberRepository interface {
	// Create inserts the member and returns the store-assigned numeric id.
	// Unique violations map to domain.ErrDuplicateEmail / domain.ErrMemberCodeTaken.
	Create(ctx context.Context, tx Tx, m *model.Member) (int64, error)
	FindByCode(ctx context.Context, tx Tx, code string) (*model.Member, error)
	FindByID(ctx context.Context, tx Tx, id int64) (*model.Member, error)
	EmailExists(ctx context.Context, tx Tx, email string) (bool, error)
	Count(ctx context.Context, tx Tx) (int, error)
	// CountByCodePrefix counts member codes sharing the scheme prefix; the
	// registration workflow derives the next serial from it.
	CountByCodePrefix(ctx context.Context, tx Tx, prefix string) (int, error)
	UpdatePasswordHash(ctx context.Context, tx Tx, id int64, hash string) error
}
