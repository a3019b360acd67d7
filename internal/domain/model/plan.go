package model

import (
	"time"

	"mlm-membership-platform/internal/domain"
)

// Plan is a membership tier a member can enroll into. A member may hold
// enrollments in several plans at once.
type Plan struct {
	ID        int64
	Name      string
	Price     int64
	CreatedAt time.Time
}

// NewPlan validates and constructs a plan.
func NewPlan(name string, price int64) (*Plan, error) {
	if name == "" || price < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Plan{
		Name:      name,
		Price:     price,
		CreatedAt: time.Now(),
	}, nil
}
