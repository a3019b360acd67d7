package repository

import (
	"context"

	"mlm-membership-platform/internal/domain/model"
)

// EPinRepository is the port for managing activation codes.
type EPinRepository interface {
	// Save inserts a freshly issued code. A duplicate code string maps to
	// domain.ErrAlreadyExists so issuance can regenerate and retry.
	Save(ctx context.Context, tx Tx, pin *model.EPin) error
	// FindByCode returns the code regardless of status; callers decide how a
	// used code should fail.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.EPin, error)
	// Redeem transitions the code unused -> used, conditioned on it still
	// being unused at write time. Losing the race maps to
	// domain.ErrActivationCodeUsed.
	Redeem(ctx context.Context, tx Tx, id string, usedBy int64) error
	// Reassign moves a batch of still-unused codes to another member and
	// returns how many rows changed.
	Reassign(ctx context.Context, tx Tx, codes []string, toMemberID int64) (int64, error)
	ListAssigned(ctx context.Context, tx Tx, memberID int64) ([]*model.AssignedEPin, error)
	ListHistory(ctx context.Context, tx Tx) ([]*model.EPinHistoryEntry, error)
}
