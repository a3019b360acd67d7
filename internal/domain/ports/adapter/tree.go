package adapter

import (
	"context"

	"mlm-membership-platform/internal/domain/model"
	"mlm-membership-platform/internal/domain/ports/repository"
)

// TreePlacer assigns a member into the referral hierarchy for a plan. The
// store-side procedure creates the enrollment rows; callers invoke it exactly
// once per registration or upgrade (it is not idempotent), inside the same
// transaction as the member insert and code redemption.
type TreePlacer interface {
	Place(ctx context.Context, tx repository.Tx, memberID int64, sponsorID *int64, planID int64) error
}

// TreeRenderer produces the XML rendering of a member's referral tree for a
// plan. An absent tree maps to domain.ErrNotFound.
type TreeRenderer interface {
	RenderXML(ctx context.Context, memberID, planID int64) (string, error)
}

// RewardCalculator aggregates a member's reward progress store-side.
type RewardCalculator interface {
	MemberRewards(ctx context.Context, memberID int64) ([]*model.RewardProgress, error)
}

// SponsorChain walks a member's upline.
type SponsorChain interface {
	ListSponsors(ctx context.Context, memberID int64) ([]*model.SponsorEntry, error)
}
