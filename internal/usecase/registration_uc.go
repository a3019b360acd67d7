package usecase

import (
	"context"
	"errors"

	"mlm-membership-platform/internal/domain"
	"mlm-membership-platform/internal/domain/model"
	"mlm-membership-platform/internal/domain/ports/adapter"
	"mlm-membership-platform/internal/domain/ports/repository"
	"mlm-membership-platform/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ RegistrationUseCase = (*registrationUC)(nil)

// RegisterInput carries the applicant fields of a registration request.
type RegisterInput struct {
	Name           string
	Email          string
	Phone          string
	Password       string
	SponsorCode    string // optional; member code of the referrer
	ActivationCode string // required unless the store holds zero members
	PlanID         int64
}

// RegisterResult is what a successful registration hands back to the caller.
// CodeRedeemed is false for the bootstrap member, whose registration consumes
// no activation code.
type RegisterResult struct {
	MemberID     int64
	Role         string
	Code         string
	CodeRedeemed bool
}

// RegistrationUseCase drives the registration/activation workflow and the
// plan-upgrade flow, which consumes an activation code the same way.
type RegistrationUseCase interface {
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
	UpgradePlan(ctx context.Context, memberID, planID int64, epinCode string) error
}

type registrationUC struct {
	members     repository.MemberRepository
	epins       repository.EPinRepository
	plans       repository.PlanRepository
	enrollments repository.EnrollmentRepository
	placer      adapter.TreePlacer
	hasher      adapter.PasswordHasher
	tm          repository.TransactionManager
	log         *zerolog.Logger
}

func NewRegistrationUseCase(
	members repository.MemberRepository,
	epins repository.EPinRepository,
	plans repository.PlanRepository,
	enrollments repository.EnrollmentRepository,
	placer adapter.TreePlacer,
	hasher adapter.PasswordHasher,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *registrationUC {
	return &registrationUC{
		members:     members,
		epins:       epins,
		plans:       plans,
		enrollments: enrollments,
		placer:      placer,
		hasher:      hasher,
		tm:          tm,
		log:         logger,
	}
}

// Register runs the ordered workflow: sponsor resolution, duplicate-email
// check, activation-code validation (waived while the store is empty), member
// code derivation, member insert, tree placement, and code redemption. The
// writes commit as one transaction; validation failures abort with no side
// effects.
//
// Member code derivation reads a count, so two concurrent registrations can
// compute the same code. The unique constraint on members.code is the
// correctness backstop: the transaction is retried on that specific conflict.
func (u *registrationUC) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	defer logging.TraceDuration(u.log, "RegistrationUC.Register")()

	if in.Name == "" || in.Email == "" || in.Password == "" || in.PlanID <= 0 {
		return nil, domain.ErrInvalidArgument
	}

	var res *RegisterResult
	var err error
	for attempt := 1; attempt <= memberCodeAttempts; attempt++ {
		res, err = u.registerOnce(ctx, in)
		if err == nil {
			u.log.Info().Int64("member_id", res.MemberID).Str("code", res.Code).Msg("member registered")
			return res, nil
		}
		if !errors.Is(err, domain.ErrMemberCodeTaken) {
			return nil, err
		}
		u.log.Warn().Int("attempt", attempt).Msg("member code collision, retrying registration")
	}
	return nil, err
}

func (u *registrationUC) registerOnce(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	var res *RegisterResult
	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		// Step 1: resolve the sponsor before any other validation.
		var sponsorID *int64
		if in.SponsorCode != "" {
			sponsor, err := u.members.FindByCode(ctx, tx, in.SponsorCode)
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrInvalidSponsor
			}
			if err != nil {
				return err
			}
			sponsorID = &sponsor.ID
		}

		// Step 2: reject duplicate email.
		exists, err := u.members.EmailExists(ctx, tx, in.Email)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateEmail
		}

		// Step 3: activation code, waived only for the very first member.
		total, err := u.members.Count(ctx, tx)
		if err != nil {
			return err
		}
		var pin *model.EPin
		if total > 0 {
			if in.ActivationCode == "" {
				return domain.ErrMissingActivationCode
			}
			pin, err = u.epins.FindByCode(ctx, tx, in.ActivationCode)
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrInvalidActivationCode
			}
			if err != nil {
				return err
			}
			if !pin.Redeemable() {
				return domain.ErrActivationCodeUsed
			}
			if sponsorID != nil && pin.AssignedTo != *sponsorID {
				return domain.ErrActivationCodeSponsorMismatch
			}
		}

		// Step 4: derive the next member code from the prefix count.
		serial, err := u.members.CountByCodePrefix(ctx, tx, memberCodePrefix)
		if err != nil {
			return err
		}
		code := memberCode(serial + 1)

		// Step 5: hash the password. Never stored or logged in clear form.
		hash, err := u.hasher.Hash(in.Password)
		if err != nil {
			return err
		}

		// Steps 6-8: insert, place into the tree, redeem the code. These
		// commit together or not at all.
		member, err := model.NewMember(in.Name, in.Email, in.Phone, hash)
		if err != nil {
			return err
		}
		member.Code = code
		id, err := u.members.Create(ctx, tx, member)
		if err != nil {
			return err
		}
		if err := u.placer.Place(ctx, tx, id, sponsorID, in.PlanID); err != nil {
			return err
		}
		if pin != nil {
			if err := u.epins.Redeem(ctx, tx, pin.ID, id); err != nil {
				return err
			}
		}

		res = &RegisterResult{MemberID: id, Role: member.Role, Code: code, CodeRedeemed: pin != nil}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// UpgradePlan enrolls an existing member into an additional plan by consuming
// one of their own unused activation codes. Placement keeps the sponsor of the
// member's most recent enrollment.
func (u *registrationUC) UpgradePlan(ctx context.Context, memberID, planID int64, epinCode string) error {
	defer logging.TraceDuration(u.log, "RegistrationUC.UpgradePlan")()

	if memberID <= 0 || planID <= 0 || epinCode == "" {
		return domain.ErrInvalidArgument
	}

	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	return u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		member, err := u.members.FindByID(ctx, tx, memberID)
		if err != nil {
			return err
		}

		enrolled, err := u.enrollments.Exists(ctx, tx, member.ID, planID)
		if err != nil {
			return err
		}
		if enrolled {
			return domain.ErrAlreadyExists
		}

		pin, err := u.epins.FindByCode(ctx, tx, epinCode)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidActivationCode
		}
		if err != nil {
			return err
		}
		if !pin.Redeemable() {
			return domain.ErrActivationCodeUsed
		}
		if pin.AssignedTo != member.ID {
			return domain.ErrActivationCodeSponsorMismatch
		}

		sponsorID, err := u.enrollments.LatestSponsor(ctx, tx, member.ID)
		if err != nil {
			return err
		}

		if err := u.placer.Place(ctx, tx, member.ID, sponsorID, planID); err != nil {
			return err
		}
		return u.epins.Redeem(ctx, tx, pin.ID, member.ID)
	})
}
