package repository

import (
	"context"

	"mlm-membership-platform/internal/domain/model"
)

type ProfileRepository interface {
	// Create inserts the one-and-only profile for a member; a second submit
	// maps to domain.ErrAlreadyExists.
	Create(ctx context.Context, tx Tx, p *model.MemberProfile) error
	FindByMember(ctx context.Context, tx Tx, memberID int64) (*model.MemberProfile, error)
	ListPending(ctx context.Context, tx Tx) ([]*model.PendingProfile, error)
	UpdateStatus(ctx context.Context, tx Tx, memberID int64, status model.ProfileStatus) error
}
