package repository

import (
	"context"

	"mlm-membership-platform/internal/domain/model"
)

type RewardRepository interface {
	CreateDefinition(ctx context.Context, tx Tx, r *model.DirectReward) error
	ListDefinitions(ctx context.Context, tx Tx) ([]*model.DirectReward, error)
	// ListEligible returns achieved-but-unpaid rewards with member identity.
	ListEligible(ctx context.Context, tx Tx) ([]*model.MemberRewardEntry, error)
	// MarkPaid flips the paid flag; zero affected rows maps to domain.ErrNotFound.
	MarkPaid(ctx context.Context, tx Tx, memberRewardID int64) error
	ListPaid(ctx context.Context, tx Tx) ([]*model.MemberRewardEntry, error)
	PaidStatus(ctx context.Context, tx Tx, memberID, rewardID int64) (bool, error)
	// TotalIncome sums the member's commission rows.
	TotalIncome(ctx context.Context, tx Tx, memberID int64) (int64, error)
}
