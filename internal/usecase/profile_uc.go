package usecase

import (
	"context"
	"errors"
	"fmt"

	"mlm-membership-platform/internal/domain"
	"mlm-membership-platform/internal/domain/model"
	"mlm-membership-platform/internal/domain/ports/adapter"
	"mlm-membership-platform/internal/domain/ports/repository"
	"mlm-membership-platform/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ ProfileUseCase = (*profileUC)(nil)

// SubmitProfileInput carries the KYC form fields plus the raw document
// uploads. Nil document slices are allowed; a member may submit papers later
// through a resubmission flow handled by support.
type SubmitProfileInput struct {
	MemberID          int64
	AddressLine1      string
	City              string
	State             string
	Pincode           string
	Country           string
	BankName          string
	AccountHolderName string
	AccountNumber     string
	IFSCCode          string
	AadhaarFront      []byte
	AadhaarBack       []byte
	BankPassbook      []byte
}

type ProfileUseCase interface {
	Submit(ctx context.Context, in SubmitProfileInput) error
	Pending(ctx context.Context) ([]*model.PendingProfile, error)
	UpdateStatus(ctx context.Context, memberID int64, status model.ProfileStatus) error
	Status(ctx context.Context, memberID int64) (model.ProfileStatus, error)
	Details(ctx context.Context, memberID int64) (*model.MemberProfile, error)
}

type profileUC struct {
	profiles repository.ProfileRepository
	docs     adapter.DocumentStore
	log      *zerolog.Logger
}

func NewProfileUseCase(profiles repository.ProfileRepository, docs adapter.DocumentStore, logger *zerolog.Logger) *profileUC {
	return &profileUC{profiles: profiles, docs: docs, log: logger}
}

// Submit stores the member's one-and-only KYC profile. Documents go to the
// document store (encrypted there); only opaque references land in the
// profile row.
func (u *profileUC) Submit(ctx context.Context, in SubmitProfileInput) error {
	defer logging.TraceDuration(u.log, "ProfileUC.Submit")()

	existing, err := u.profiles.FindByMember(ctx, repository.NoTX, in.MemberID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if existing != nil {
		return domain.ErrAlreadyExists
	}

	profile, err := model.NewMemberProfile(
		in.MemberID, in.AddressLine1, in.City, in.State, in.Pincode, in.Country,
		in.BankName, in.AccountHolderName, in.AccountNumber, in.IFSCCode,
	)
	if err != nil {
		return err
	}

	if profile.AadhaarFrontRef, err = u.storeDoc(ctx, in.MemberID, "aadhaar_front", in.AadhaarFront); err != nil {
		return err
	}
	if profile.AadhaarBackRef, err = u.storeDoc(ctx, in.MemberID, "aadhaar_back", in.AadhaarBack); err != nil {
		return err
	}
	if profile.BankPassbookRef, err = u.storeDoc(ctx, in.MemberID, "bank_passbook", in.BankPassbook); err != nil {
		return err
	}

	if err := u.profiles.Create(ctx, repository.NoTX, profile); err != nil {
		return err
	}
	u.log.Info().Int64("member_id", in.MemberID).Msg("kyc profile submitted")
	return nil
}

func (u *profileUC) storeDoc(ctx context.Context, memberID int64, kind string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	return u.docs.Save(ctx, fmt.Sprintf("%d-%s", memberID, kind), data)
}

// Pending lists profiles awaiting review with document payloads attached.
func (u *profileUC) Pending(ctx context.Context) ([]*model.PendingProfile, error) {
	defer logging.TraceDuration(u.log, "ProfileUC.Pending")()

	profiles, err := u.profiles.ListPending(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		if p.AadhaarFront, err = u.loadDoc(ctx, p.AadhaarFrontRef); err != nil {
			return nil, err
		}
		if p.AadhaarBack, err = u.loadDoc(ctx, p.AadhaarBackRef); err != nil {
			return nil, err
		}
		if p.BankPassbook, err = u.loadDoc(ctx, p.BankPassbookRef); err != nil {
			return nil, err
		}
	}
	return profiles, nil
}

func (u *profileUC) loadDoc(ctx context.Context, ref string) ([]byte, error) {
	if ref == "" {
		return nil, nil
	}
	return u.docs.Load(ctx, ref)
}

func (u *profileUC) UpdateStatus(ctx context.Context, memberID int64, status model.ProfileStatus) error {
	defer logging.TraceDuration(u.log, "ProfileUC.UpdateStatus")()
	if !model.ValidProfileStatus(status) {
		return domain.ErrInvalidArgument
	}
	if err := u.profiles.UpdateStatus(ctx, repository.NoTX, memberID, status); err != nil {
		return err
	}
	u.log.Info().Int64("member_id", memberID).Str("status", string(status)).Msg("kyc status updated")
	return nil
}

func (u *profileUC) Status(ctx context.Context, memberID int64) (model.ProfileStatus, error) {
	defer logging.TraceDuration(u.log, "ProfileUC.Status")()
	p, err := u.profiles.FindByMember(ctx, repository.NoTX, memberID)
	if err != nil {
		return "", err
	}
	return p.Status, nil
}

// Details returns the profile fields without document payloads.
func (u *profileUC) Details(ctx context.Context, memberID int64) (*model.MemberProfile, error) {
	defer logging.TraceDuration(u.log, "ProfileUC.Details")()
	return u.profiles.FindByMember(ctx, repository.NoTX, memberID)
}
