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
var _ RewardUseCase = (*rewardUC)(nil)

type RewardUseCase interface {
	AddDefinition(ctx context.Context, planID int64, noOfDirects int, title, image, description string) error
	Definitions(ctx context.Context) ([]*model.DirectReward, error)
	MemberRewards(ctx context.Context, memberID int64) ([]*model.RewardProgress, error)
	Eligible(ctx context.Context) ([]*model.MemberRewardEntry, error)
	MarkPaid(ctx context.Context, memberRewardID int64) error
	PaidHistory(ctx context.Context) ([]*model.MemberRewardEntry, error)
	PaidStatus(ctx context.Context, memberID, rewardID int64) (bool, error)
}

type rewardUC struct {
	rewards    repository.RewardRepository
	plans      repository.PlanRepository
	calculator adapter.RewardCalculator
	log        *zerolog.Logger
}

func NewRewardUseCase(
	rewards repository.RewardRepository,
	plans repository.PlanRepository,
	calculator adapter.RewardCalculator,
	logger *zerolog.Logger,
) *rewardUC {
	return &rewardUC{rewards: rewards, plans: plans, calculator: calculator, log: logger}
}

// AddDefinition stores a direct-referral reward. The plan is resolved first so
// a definition can never point at a plan that does not exist.
func (u *rewardUC) AddDefinition(ctx context.Context, planID int64, noOfDirects int, title, image, description string) error {
	defer logging.TraceDuration(u.log, "RewardUC.AddDefinition")()

	plan, err := u.plans.FindByID(ctx, repository.NoTX, planID)
	if err != nil {
		return err
	}
	reward, err := model.NewDirectReward(plan.Name, noOfDirects, title, image, description)
	if err != nil {
		return err
	}
	return u.rewards.CreateDefinition(ctx, repository.NoTX, reward)
}

func (u *rewardUC) Definitions(ctx context.Context) ([]*model.DirectReward, error) {
	defer logging.TraceDuration(u.log, "RewardUC.Definitions")()
	return u.rewards.ListDefinitions(ctx, repository.NoTX)
}

// MemberRewards delegates progress aggregation to the store-side calculator.
func (u *rewardUC) MemberRewards(ctx context.Context, memberID int64) ([]*model.RewardProgress, error) {
	defer logging.TraceDuration(u.log, "RewardUC.MemberRewards")()
	if memberID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return u.calculator.MemberRewards(ctx, memberID)
}

func (u *rewardUC) Eligible(ctx context.Context) ([]*model.MemberRewardEntry, error) {
	defer logging.TraceDuration(u.log, "RewardUC.Eligible")()
	return u.rewards.ListEligible(ctx, repository.NoTX)
}

func (u *rewardUC) MarkPaid(ctx context.Context, memberRewardID int64) error {
	defer logging.TraceDuration(u.log, "RewardUC.MarkPaid")()
	if memberRewardID <= 0 {
		return domain.ErrInvalidArgument
	}
	if err := u.rewards.MarkPaid(ctx, repository.NoTX, memberRewardID); err != nil {
		return err
	}
	u.log.Info().Int64("member_reward_id", memberRewardID).Msg("reward marked paid")
	return nil
}

func (u *rewardUC) PaidHistory(ctx context.Context) ([]*model.MemberRewardEntry, error) {
	defer logging.TraceDuration(u.log, "RewardUC.PaidHistory")()
	return u.rewards.ListPaid(ctx, repository.NoTX)
}

func (u *rewardUC) PaidStatus(ctx context.Context, memberID, rewardID int64) (bool, error) {
	defer logging.TraceDuration(u.log, "RewardUC.PaidStatus")()
	if memberID <= 0 || rewardID <= 0 {
		return false, domain.ErrInvalidArgument
	}
	return u.rewards.PaidStatus(ctx, repository.NoTX, memberID, rewardID)
}
