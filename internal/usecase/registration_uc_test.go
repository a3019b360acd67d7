//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"mlm-membership-platform/internal/domain"
	"mlm-membership-platform/internal/domain/model"
	"mlm-membership-platform/internal/domain/ports/repository"
	"mlm-membership-platform/internal/usecase"
)

type registrationFixture struct {
	members     *memMemberRepo
	epins       *memEPinRepo
	plans       *memPlanRepo
	enrollments *memEnrollmentRepo
	placer      *mockPlacer
	uc          usecase.RegistrationUseCase
}

func newRegistrationFixture(t *testing.T) *registrationFixture {
	t.Helper()
	f := &registrationFixture{
		members:     newMemMemberRepo(),
		epins:       newMemEPinRepo(),
		plans:       newMemPlanRepo(),
		enrollments: newMemEnrollmentRepo(),
	}
	f.placer = &mockPlacer{enrollments: f.enrollments}
	f.uc = usecase.NewRegistrationUseCase(
		f.members, f.epins, f.plans, f.enrollments,
		f.placer, plainHasher{}, NewMockTxManager(), newTestLogger(),
	)
	return f
}

// newRollbackRegistrationFixture wires the workflow to a tx manager that
// undoes repo writes when the callback fails, for asserting that the
// insert/place/redeem steps leave nothing behind on failure.
func newRollbackRegistrationFixture(t *testing.T) *registrationFixture {
	t.Helper()
	f := &registrationFixture{
		members:     newMemMemberRepo(),
		epins:       newMemEPinRepo(),
		plans:       newMemPlanRepo(),
		enrollments: newMemEnrollmentRepo(),
	}
	f.placer = &mockPlacer{enrollments: f.enrollments}
	tm := &snapshotTxManager{members: f.members, epins: f.epins, enrollments: f.enrollments}
	f.uc = usecase.NewRegistrationUseCase(
		f.members, f.epins, f.plans, f.enrollments,
		f.placer, plainHasher{}, tm, newTestLogger(),
	)
	return f
}

// seedMember registers the bootstrap member directly through the workflow so
// the store is in a realistic state for subsequent cases.
func (f *registrationFixture) seedMember(t *testing.T, name, email string) *usecase.RegisterResult {
	t.Helper()
	res, err := f.uc.Register(context.Background(), usecase.RegisterInput{
		Name:     name,
		Email:    email,
		Password: "secret",
		PlanID:   1,
	})
	if err != nil {
		t.Fatalf("seed member %s: %v", name, err)
	}
	return res
}

func (f *registrationFixture) seedEPin(t *testing.T, code string, planID, assignedTo int64) *model.EPin {
	t.Helper()
	pin, err := model.NewEPin(code, planID, assignedTo)
	if err != nil {
		t.Fatalf("new epin: %v", err)
	}
	if err := f.epins.Save(context.Background(), nil, pin); err != nil {
		t.Fatalf("save epin: %v", err)
	}
	return pin
}

func TestRegistrationUseCase_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("first member registers without an activation code", func(t *testing.T) {
		f := newRegistrationFixture(t)

		res, err := f.uc.Register(ctx, usecase.RegisterInput{
			Name:     "Asha",
			Email:    "asha@example.com",
			Password: "secret",
			PlanID:   1,
		})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if res.Code != "NT1001" {
			t.Errorf("expected bootstrap code NT1001, got %s", res.Code)
		}
		if res.Role != model.RoleUser {
			t.Errorf("expected role %q, got %q", model.RoleUser, res.Role)
		}
		if res.CodeRedeemed {
			t.Error("bootstrap registration must not report a consumed code")
		}
		placed, err := f.enrollments.Exists(ctx, nil, res.MemberID, 1)
		if err != nil || !placed {
			t.Errorf("expected member placed into plan 1 (placed=%v err=%v)", placed, err)
		}
	})

	t.Run("second member must present an activation code", func(t *testing.T) {
		f := newRegistrationFixture(t)
		f.seedMember(t, "Asha", "asha@example.com")

		_, err := f.uc.Register(ctx, usecase.RegisterInput{
			Name:     "Binu",
			Email:    "binu@example.com",
			Password: "secret",
			PlanID:   1,
		})
		if !errors.Is(err, domain.ErrMissingActivationCode) {
			t.Fatalf("expected ErrMissingActivationCode, got: %v", err)
		}
		if exists, _ := f.members.EmailExists(ctx, nil, "binu@example.com"); exists {
			t.Error("failed registration must not leave a member row behind")
		}
	})

	t.Run("unknown sponsor code fails before anything else", func(t *testing.T) {
		f := newRegistrationFixture(t)
		f.seedMember(t, "Asha", "asha@example.com")

		_, err := f.uc.Register(ctx, usecase.RegisterInput{
			Name:        "Binu",
			Email:       "binu@example.com",
			Password:    "secret",
			SponsorCode: "NT9009",
			PlanID:      1,
		})
		if !errors.Is(err, domain.ErrInvalidSponsor) {
			t.Fatalf("expected ErrInvalidSponsor, got: %v", err)
		}
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		f := newRegistrationFixture(t)
		sponsor := f.seedMember(t, "Asha", "asha@example.com")
		f.seedEPin(t, "EPIN-AAAA-1111", 1, sponsor.MemberID)

		_, err := f.uc.Register(ctx, usecase.RegisterInput{
			Name:           "Asha Again",
			Email:          "asha@example.com",
			Password:       "secret",
			ActivationCode: "EPIN-AAAA-1111",
			PlanID:         1,
		})
		if !errors.Is(err, domain.ErrDuplicateEmail) {
			t.Fatalf("expected ErrDuplicateEmail, got: %v", err)
		}
	})

	t.Run("unknown activation code is rejected", func(t *testing.T) {
		f := newRegistrationFixture(t)
		f.seedMember(t, "Asha", "asha@example.com")

		_, err := f.uc.Register(ctx, usecase.RegisterInput{
			Name:           "Binu",
			Email:          "binu@example.com",
			Password:       "secret",
			ActivationCode: "EPIN-NOPE-0000",
			PlanID:         1,
		})
		if !errors.Is(err, domain.ErrInvalidActivationCode) {
			t.Fatalf("expected ErrInvalidActivationCode, got: %v", err)
		}
	})

	t.Run("activation code must belong to the named sponsor", func(t *testing.T) {
		f := newRegistrationFixture(t)
		sponsor := f.seedMember(t, "Asha", "asha@example.com")
		other := f.seedEPinOwner(t, sponsor, "Chen", "chen@example.com")
		// Code owned by Chen, sponsor named is Asha.
		f.seedEPin(t, "EPIN-BBBB-2222", 1, other.MemberID)

		_, err := f.uc.Register(ctx, usecase.RegisterInput{
			Name:           "Binu",
			Email:          "binu@example.com",
			Password:       "secret",
			SponsorCode:    sponsor.Code,
			ActivationCode: "EPIN-BBBB-2222",
			PlanID:         1,
		})
		if !errors.Is(err, domain.ErrActivationCodeSponsorMismatch) {
			t.Fatalf("expected ErrActivationCodeSponsorMismatch, got: %v", err)
		}
	})

	t.Run("successful registration consumes the code and places the member", func(t *testing.T) {
		f := newRegistrationFixture(t)
		sponsor := f.seedMember(t, "Asha", "asha@example.com")
		f.seedEPin(t, "EPIN-CCCC-3333", 1, sponsor.MemberID)

		res, err := f.uc.Register(ctx, usecase.RegisterInput{
			Name:           "Binu",
			Email:          "binu@example.com",
			Password:       "secret",
			SponsorCode:    sponsor.Code,
			ActivationCode: "EPIN-CCCC-3333",
			PlanID:         1,
		})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if res.Code != "NT2002" {
			t.Errorf("expected second code NT2002, got %s", res.Code)
		}
		if !res.CodeRedeemed {
			t.Error("expected the registration to report the consumed code")
		}

		pin, err := f.epins.FindByCode(ctx, nil, "EPIN-CCCC-3333")
		if err != nil {
			t.Fatalf("find epin: %v", err)
		}
		if pin.Status != model.EPinUsed {
			t.Errorf("expected code marked used, got %s", pin.Status)
		}
		if pin.UsedBy == nil || *pin.UsedBy != res.MemberID {
			t.Errorf("expected used_by to record the new member, got %v", pin.UsedBy)
		}

		sponsorID, err := f.enrollments.LatestSponsor(ctx, nil, res.MemberID)
		if err != nil || sponsorID == nil || *sponsorID != sponsor.MemberID {
			t.Errorf("expected sponsor %d recorded on enrollment, got %v (err=%v)", sponsor.MemberID, sponsorID, err)
		}
	})

	t.Run("used activation code cannot activate twice", func(t *testing.T) {
		f := newRegistrationFixture(t)
		sponsor := f.seedMember(t, "Asha", "asha@example.com")
		f.seedEPin(t, "EPIN-DDDD-4444", 1, sponsor.MemberID)

		first := usecase.RegisterInput{
			Name: "Binu", Email: "binu@example.com", Password: "secret",
			SponsorCode: sponsor.Code, ActivationCode: "EPIN-DDDD-4444", PlanID: 1,
		}
		if _, err := f.uc.Register(ctx, first); err != nil {
			t.Fatalf("first registration: %v", err)
		}

		second := first
		second.Email = "chen@example.com"
		second.Name = "Chen"
		_, err := f.uc.Register(ctx, second)
		if !errors.Is(err, domain.ErrActivationCodeUsed) {
			t.Fatalf("expected ErrActivationCodeUsed, got: %v", err)
		}
	})

	t.Run("concurrent registrations on one code redeem it exactly once", func(t *testing.T) {
		f := newRegistrationFixture(t)
		sponsor := f.seedMember(t, "Asha", "asha@example.com")
		f.seedEPin(t, "EPIN-EEEE-5555", 1, sponsor.MemberID)

		const n = 8
		errs := make([]error, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = f.uc.Register(ctx, usecase.RegisterInput{
					Name:           fmt.Sprintf("Racer %d", i),
					Email:          fmt.Sprintf("racer%d@example.com", i),
					Password:       "secret",
					SponsorCode:    sponsor.Code,
					ActivationCode: "EPIN-EEEE-5555",
					PlanID:         1,
				})
			}(i)
		}
		wg.Wait()

		won := 0
		for _, err := range errs {
			if err == nil {
				won++
			} else if !errors.Is(err, domain.ErrActivationCodeUsed) {
				t.Errorf("loser should see ErrActivationCodeUsed, got: %v", err)
			}
		}
		if won != 1 {
			t.Fatalf("expected exactly one winner, got %d", won)
		}
	})

	t.Run("placement failure leaves no member row and no redeemed code", func(t *testing.T) {
		f := newRollbackRegistrationFixture(t)
		sponsor := f.seedMember(t, "Asha", "asha@example.com")
		f.seedEPin(t, "EPIN-FFFF-6666", 1, sponsor.MemberID)

		f.placer.PlaceErr = errors.New("tree placement unavailable")
		_, err := f.uc.Register(ctx, usecase.RegisterInput{
			Name:           "Binu",
			Email:          "binu@example.com",
			Password:       "secret",
			SponsorCode:    sponsor.Code,
			ActivationCode: "EPIN-FFFF-6666",
			PlanID:         1,
		})
		if err == nil {
			t.Fatal("expected the placement failure to surface")
		}

		if exists, _ := f.members.EmailExists(ctx, nil, "binu@example.com"); exists {
			t.Error("member row must not survive a failed placement")
		}
		pin, err := f.epins.FindByCode(ctx, nil, "EPIN-FFFF-6666")
		if err != nil {
			t.Fatalf("find epin: %v", err)
		}
		if pin.Status != model.EPinUnused {
			t.Errorf("code must stay unused after rollback, got %s", pin.Status)
		}
	})

	t.Run("redemption failure leaves no member row and no placement", func(t *testing.T) {
		f := newRollbackRegistrationFixture(t)
		sponsor := f.seedMember(t, "Asha", "asha@example.com")
		f.seedEPin(t, "EPIN-GGGG-7777", 1, sponsor.MemberID)

		f.epins.RedeemFunc = func(ctx context.Context, tx repository.Tx, id string, usedBy int64) error {
			return errors.New("redeem failed")
		}
		_, err := f.uc.Register(ctx, usecase.RegisterInput{
			Name:           "Binu",
			Email:          "binu@example.com",
			Password:       "secret",
			SponsorCode:    sponsor.Code,
			ActivationCode: "EPIN-GGGG-7777",
			PlanID:         1,
		})
		if err == nil {
			t.Fatal("expected the redemption failure to surface")
		}

		if exists, _ := f.members.EmailExists(ctx, nil, "binu@example.com"); exists {
			t.Error("member row must not survive a failed redemption")
		}
		if total, _ := f.members.Count(ctx, nil); total != 1 {
			t.Errorf("expected only the sponsor to remain, got %d members", total)
		}
		ids, _ := f.enrollments.ListPlanIDs(ctx, nil, sponsor.MemberID+1)
		if len(ids) != 0 {
			t.Errorf("placement must not survive a failed redemption, got enrollments %v", ids)
		}
	})

	t.Run("member code collision is retried transparently", func(t *testing.T) {
		f := newRegistrationFixture(t)
		collided := false
		f.members.CreateFunc = func(ctx context.Context, tx repository.Tx, m *model.Member) (int64, error) {
			f.members.CreateFunc = nil
			collided = true
			return 0, domain.ErrMemberCodeTaken
		}

		res, err := f.uc.Register(ctx, usecase.RegisterInput{
			Name:     "Asha",
			Email:    "asha@example.com",
			Password: "secret",
			PlanID:   1,
		})
		if err != nil {
			t.Fatalf("expected retry to succeed, got: %v", err)
		}
		if !collided {
			t.Fatal("expected the injected collision to fire")
		}
		if res.Code == "" {
			t.Error("expected a member code after retry")
		}
	})

	t.Run("concurrent registrations never share a member code", func(t *testing.T) {
		f := newRegistrationFixture(t)
		sponsor := f.seedMember(t, "Asha", "asha@example.com")
		const n = 6
		for i := 0; i < n; i++ {
			f.seedEPin(t, fmt.Sprintf("EPIN-RACE-%04d", i), 1, sponsor.MemberID)
		}

		codes := make([]string, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				res, err := f.uc.Register(ctx, usecase.RegisterInput{
					Name:           fmt.Sprintf("Member %d", i),
					Email:          fmt.Sprintf("member%d@example.com", i),
					Password:       "secret",
					SponsorCode:    sponsor.Code,
					ActivationCode: fmt.Sprintf("EPIN-RACE-%04d", i),
					PlanID:         1,
				})
				if err != nil {
					t.Errorf("registration %d: %v", i, err)
					return
				}
				codes[i] = res.Code
			}(i)
		}
		wg.Wait()

		seen := make(map[string]bool)
		for _, c := range codes {
			if c == "" {
				continue
			}
			if seen[c] {
				t.Fatalf("member code %s assigned twice", c)
			}
			seen[c] = true
		}
	})
}

// seedEPinOwner registers another member so a code can be owned by someone
// other than the sponsor under test.
func (f *registrationFixture) seedEPinOwner(t *testing.T, sponsor *usecase.RegisterResult, name, email string) *usecase.RegisterResult {
	t.Helper()
	f.seedEPin(t, "EPIN-OWNR-9999", 1, sponsor.MemberID)
	res, err := f.uc.Register(context.Background(), usecase.RegisterInput{
		Name:           name,
		Email:          email,
		Password:       "secret",
		SponsorCode:    sponsor.Code,
		ActivationCode: "EPIN-OWNR-9999",
		PlanID:         1,
	})
	if err != nil {
		t.Fatalf("seed epin owner: %v", err)
	}
	return res
}

func TestRegistrationUseCase_UpgradePlan(t *testing.T) {
	ctx := context.Background()

	t.Run("upgrade consumes the member's own code and keeps the sponsor", func(t *testing.T) {
		f := newRegistrationFixture(t)
		sponsor := f.seedMember(t, "Asha", "asha@example.com")
		member := f.seedEPinOwner(t, sponsor, "Binu", "binu@example.com")
		f.seedEPin(t, "EPIN-UPGR-0001", 2, member.MemberID)

		if err := f.uc.UpgradePlan(ctx, member.MemberID, 2, "EPIN-UPGR-0001"); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		enrolled, err := f.enrollments.Exists(ctx, nil, member.MemberID, 2)
		if err != nil || !enrolled {
			t.Errorf("expected enrollment in plan 2 (enrolled=%v err=%v)", enrolled, err)
		}
		sponsorID, err := f.enrollments.LatestSponsor(ctx, nil, member.MemberID)
		if err != nil || sponsorID == nil || *sponsorID != sponsor.MemberID {
			t.Errorf("expected sponsor carried over, got %v (err=%v)", sponsorID, err)
		}
		pin, _ := f.epins.FindByCode(ctx, nil, "EPIN-UPGR-0001")
		if pin.Status != model.EPinUsed {
			t.Errorf("expected upgrade code marked used, got %s", pin.Status)
		}
	})

	t.Run("already enrolled plan cannot be activated again", func(t *testing.T) {
		f := newRegistrationFixture(t)
		member := f.seedMember(t, "Asha", "asha@example.com")
		f.seedEPin(t, "EPIN-UPGR-0002", 1, member.MemberID)

		err := f.uc.UpgradePlan(ctx, member.MemberID, 1, "EPIN-UPGR-0002")
		if !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got: %v", err)
		}
	})

	t.Run("upgrade requires a code assigned to the member", func(t *testing.T) {
		f := newRegistrationFixture(t)
		sponsor := f.seedMember(t, "Asha", "asha@example.com")
		member := f.seedEPinOwner(t, sponsor, "Binu", "binu@example.com")
		// Code assigned to the sponsor, not the upgrading member.
		f.seedEPin(t, "EPIN-UPGR-0003", 2, sponsor.MemberID)

		err := f.uc.UpgradePlan(ctx, member.MemberID, 2, "EPIN-UPGR-0003")
		if !errors.Is(err, domain.ErrActivationCodeSponsorMismatch) {
			t.Fatalf("expected ErrActivationCodeSponsorMismatch, got: %v", err)
		}
	})
}
