package usecase

import (
	"context"

	"mlm-membership-platform/internal/domain/model"
	"mlm-membership-platform/internal/domain/ports/repository"
	"mlm-membership-platform/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ PlanUseCase = (*planUC)(nil)

type PlanUseCase interface {
	Create(ctx context.Context, name string, price int64) (*model.Plan, error)
	List(ctx context.Context) ([]*model.Plan, error)
	Get(ctx context.Context, id int64) (*model.Plan, error)
}

type planUC struct {
	plans repository.PlanRepository
	log   *zerolog.Logger
}

func NewPlanUseCase(plans repository.PlanRepository, logger *zerolog.Logger) *planUC {
	return &planUC{plans: plans, log: logger}
}

func (u *planUC) Create(ctx context.Context, name string, price int64) (*model.Plan, error) {
	defer logging.TraceDuration(u.log, "PlanUC.Create")()
	plan, err := model.NewPlan(name, price)
	if err != nil {
		return nil, err
	}
	id, err := u.plans.Save(ctx, repository.NoTX, plan)
	if err != nil {
		return nil, err
	}
	plan.ID = id
	return plan, nil
}

func (u *planUC) List(ctx context.Context) ([]*model.Plan, error) {
	defer logging.TraceDuration(u.log, "PlanUC.List")()
	return u.plans.ListAll(ctx, repository.NoTX)
}

func (u *planUC) Get(ctx context.Context, id int64) (*model.Plan, error) {
	defer logging.TraceDuration(u.log, "PlanUC.Get")()
	return u.plans.FindByID(ctx, repository.NoTX, id)
}
