package model

import (
	"time"

	"mlm-membership-platform/internal/domain"
)

// DirectReward is an admin-defined incentive: reach no_of_directs direct
// referrals in a plan, earn the reward.
type DirectReward struct {
	ID          int64
	PlanName    string
	NoOfDirects int
	Title       string
	Image       string
	Description string
	CreatedAt   time.Time
}

func NewDirectReward(planName string, noOfDirects int, title, image, description string) (*DirectReward, error) {
	if planName == "" || noOfDirects <= 0 || title == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &DirectReward{
		PlanName:    planName,
		NoOfDirects: noOfDirects,
		Title:       title,
		Image:       image,
		Description: description,
		CreatedAt:   time.Now(),
	}, nil
}

// MemberReward tracks a member's standing against a reward definition.
type MemberReward struct {
	ID       int64
	MemberID int64
	RewardID int64
	Status   string // "in_progress" | "achieved"
	Paid     bool
}

// MemberRewardEntry is a payout listing row: an achieved reward joined with
// the member's identity for the admin payout screens.
type MemberRewardEntry struct {
	MemberReward
	MemberCode string
	MemberName string
}

// RewardProgress is one row of the reward aggregation procedure's output.
type RewardProgress struct {
	RewardID        int64
	Title           string
	PlanName        string
	RequiredDirects int
	AchievedDirects int
	Status          string
	Paid            bool
}
