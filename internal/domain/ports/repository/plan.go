package repository

import (
	"context"

	"mlm-membership-platform/internal/domain/model"
)

// PlanRepository is the port for plan persistence.
type PlanRepository interface {
	Save(ctx context.Context, tx Tx, plan *model.Plan) (int64, error)
	FindByID(ctx context.Context, tx Tx, id int64) (*model.Plan, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Plan, error)
}
