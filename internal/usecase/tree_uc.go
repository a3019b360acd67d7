package usecase

import (
	"context"

	"mlm-membership-platform/internal/domain"
	"mlm-membership-platform/internal/domain/model"
	"mlm-membership-platform/internal/domain/ports/adapter"
	"mlm-membership-platform/internal/domain/ports/repository"
	"mlm-membership-platform/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ TreeUseCase = (*treeUC)(nil)

// TreeUseCase serves the referral-hierarchy views: the rendered tree, the
// upline chain, and per-sponsor statistics.
type TreeUseCase interface {
	TreeXML(ctx context.Context, memberID, planID int64) (string, error)
	Sponsors(ctx context.Context, memberID int64) ([]*model.SponsorEntry, error)
	Directs(ctx context.Context, sponsorID int64) (int, error)
	TotalIncome(ctx context.Context, memberID int64) (int64, error)
}

type treeUC struct {
	renderer    adapter.TreeRenderer
	chain       adapter.SponsorChain
	enrollments repository.EnrollmentRepository
	rewards     repository.RewardRepository
	log         *zerolog.Logger
}

func NewTreeUseCase(
	renderer adapter.TreeRenderer,
	chain adapter.SponsorChain,
	enrollments repository.EnrollmentRepository,
	rewards repository.RewardRepository,
	logger *zerolog.Logger,
) *treeUC {
	return &treeUC{renderer: renderer, chain: chain, enrollments: enrollments, rewards: rewards, log: logger}
}

func (u *treeUC) TreeXML(ctx context.Context, memberID, planID int64) (string, error) {
	defer logging.TraceDuration(u.log, "TreeUC.TreeXML")()
	if memberID <= 0 || planID <= 0 {
		return "", domain.ErrInvalidArgument
	}
	return u.renderer.RenderXML(ctx, memberID, planID)
}

func (u *treeUC) Sponsors(ctx context.Context, memberID int64) ([]*model.SponsorEntry, error) {
	defer logging.TraceDuration(u.log, "TreeUC.Sponsors")()
	if memberID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return u.chain.ListSponsors(ctx, memberID)
}

func (u *treeUC) Directs(ctx context.Context, sponsorID int64) (int, error) {
	defer logging.TraceDuration(u.log, "TreeUC.Directs")()
	if sponsorID <= 0 {
		return 0, domain.ErrInvalidArgument
	}
	return u.enrollments.CountDirects(ctx, repository.NoTX, sponsorID)
}

func (u *treeUC) TotalIncome(ctx context.Context, memberID int64) (int64, error) {
	defer logging.TraceDuration(u.log, "TreeUC.TotalIncome")()
	if memberID <= 0 {
		return 0, domain.ErrInvalidArgument
	}
	return u.rewards.TotalIncome(ctx, repository.NoTX, memberID)
}
