package usecase

import (
	"context"
	"errors"

	"mlm-membership-platform/internal/domain"
	"mlm-membership-platform/internal/domain/ports/adapter"
	"mlm-membership-platform/internal/domain/ports/repository"
	"mlm-membership-platform/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ AuthUseCase = (*authUC)(nil)

// MemberSummary is the login response payload: identity plus every plan the
// member is currently enrolled in.
type MemberSummary struct {
	MemberID      int64   `json:"member_id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Code          string  `json:"code"`
	Role          string  `json:"role"`
	SponsorID     *int64  `json:"sponsor_id,omitempty"`
	EnrolledPlans []int64 `json:"enrolled_plans"`
	TotalPlans    int     `json:"total_enrolled_plans"`
}

type LoginResult struct {
	Member MemberSummary
	Token  string
}

type AuthUseCase interface {
	Login(ctx context.Context, code, password string) (*LoginResult, error)
	ChangePassword(ctx context.Context, memberID int64, oldPassword, newPassword string) error
}

type authUC struct {
	members     repository.MemberRepository
	enrollments repository.EnrollmentRepository
	hasher      adapter.PasswordHasher
	tokens      adapter.TokenIssuer
	log         *zerolog.Logger
}

func NewAuthUseCase(
	members repository.MemberRepository,
	enrollments repository.EnrollmentRepository,
	hasher adapter.PasswordHasher,
	tokens adapter.TokenIssuer,
	logger *zerolog.Logger,
) *authUC {
	return &authUC{
		members:     members,
		enrollments: enrollments,
		hasher:      hasher,
		tokens:      tokens,
		log:         logger,
	}
}

// Login verifies a member-code/password pair and mints a session token. The
// caller must not reveal whether ErrNotFound or ErrInvalidCredentials occurred.
func (u *authUC) Login(ctx context.Context, code, password string) (*LoginResult, error) {
	defer logging.TraceDuration(u.log, "AuthUC.Login")()

	if code == "" || password == "" {
		return nil, domain.ErrInvalidArgument
	}

	member, err := u.members.FindByCode(ctx, repository.NoTX, code)
	if err != nil {
		return nil, err
	}
	if err := u.hasher.Compare(member.PasswordHash, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	planIDs, err := u.enrollments.ListPlanIDs(ctx, repository.NoTX, member.ID)
	if err != nil {
		return nil, err
	}
	sponsorID, err := u.enrollments.LatestSponsor(ctx, repository.NoTX, member.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	token, err := u.tokens.Mint(member.ID, member.Role)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Member: MemberSummary{
			MemberID:      member.ID,
			Name:          member.Name,
			Email:         member.Email,
			Code:          member.Code,
			Role:          member.Role,
			SponsorID:     sponsorID,
			EnrolledPlans: planIDs,
			TotalPlans:    len(planIDs),
		},
		Token: token,
	}, nil
}

func (u *authUC) ChangePassword(ctx context.Context, memberID int64, oldPassword, newPassword string) error {
	defer logging.TraceDuration(u.log, "AuthUC.ChangePassword")()

	if oldPassword == "" || newPassword == "" {
		return domain.ErrInvalidArgument
	}

	member, err := u.members.FindByID(ctx, repository.NoTX, memberID)
	if err != nil {
		return err
	}
	if err := u.hasher.Compare(member.PasswordHash, oldPassword); err != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := u.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	return u.members.UpdatePasswordHash(ctx, repository.NoTX, memberID, hash)
}
