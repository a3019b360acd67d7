package model

import (
	"time"

	"mlm-membership-platform/internal/domain"

	"github.com/google/uuid"
)

type EPinStatus string

const (
	EPinUnused EPinStatus = "unused"
	EPinUsed   EPinStatus = "used"
)

// EPin is a single-use activation code gating member registration. It is
// issued to a member (AssignedTo) and transitions unused -> used exactly once,
// recording the redeeming member in UsedBy.
type EPin struct {
	ID         string
	Code       string
	PlanID     int64
	AssignedTo int64
	Status     EPinStatus
	UsedBy     *int64 // nil until redeemed
	CreatedAt  time.Time
}

func NewEPin(code string, planID, assignedTo int64) (*EPin, error) {
	if code == "" || planID <= 0 || assignedTo <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &EPin{
		ID:         uuid.NewString(),
		Code:       code,
		PlanID:     planID,
		AssignedTo: assignedTo,
		Status:     EPinUnused,
		CreatedAt:  time.Now(),
	}, nil
}

func (e *EPin) Redeemable() bool { return e != nil && e.Status == EPinUnused }

// AssignedEPin is a listing row for codes owned by a member.
type AssignedEPin struct {
	ID        string
	Code      string
	Status    EPinStatus
	PlanID    int64
	PlanName  string
	CreatedAt time.Time
}

// EPinHistoryEntry is the admin history row: every code joined with the
// owning member's code.
type EPinHistoryEntry struct {
	ID         string
	Code       string
	Status     EPinStatus
	PlanID     int64
	AssignedTo int64
	OwnerCode  string
	UsedBy     *int64
	CreatedAt  time.Time
}
