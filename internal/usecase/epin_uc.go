package usecase

import (
	"context"
	"errors"

	"mlm-membership-platform/internal/domain"
	"mlm-membership-platform/internal/domain/model"
	"mlm-membership-platform/internal/domain/ports/repository"
	"mlm-membership-platform/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ EPinUseCase = (*epinUC)(nil)

// Issuance is bounded so a mistyped count cannot flood the codes table.
const maxEPinBatch = 500

// EPinUseCase covers administrative issuance and handling of activation codes.
// Redemption itself lives in the registration workflow.
type EPinUseCase interface {
	Issue(ctx context.Context, planID int64, count int, assignedTo int64) ([]string, error)
	Reshare(ctx context.Context, codes []string, receiverCode string) error
	History(ctx context.Context) ([]*model.EPinHistoryEntry, error)
	Assigned(ctx context.Context, memberID int64) ([]*model.AssignedEPin, error)
}

type epinUC struct {
	epins   repository.EPinRepository
	members repository.MemberRepository
	plans   repository.PlanRepository
	tm      repository.TransactionManager
	log     *zerolog.Logger
}

func NewEPinUseCase(
	epins repository.EPinRepository,
	members repository.MemberRepository,
	plans repository.PlanRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *epinUC {
	return &epinUC{epins: epins, members: members, plans: plans, tm: tm, log: logger}
}

// Issue creates count single-use codes for a plan, all assigned to one
// member. The batch commits atomically. A random-code collision aborts the
// transaction, so the whole batch is re-run with fresh codes rather than
// retrying the one insert inside the aborted transaction.
func (u *epinUC) Issue(ctx context.Context, planID int64, count int, assignedTo int64) ([]string, error) {
	defer logging.TraceDuration(u.log, "EPinUC.Issue")()

	if planID <= 0 || assignedTo <= 0 || count <= 0 || count > maxEPinBatch {
		return nil, domain.ErrInvalidArgument
	}

	if _, err := u.plans.FindByID(ctx, repository.NoTX, planID); err != nil {
		return nil, err
	}
	if _, err := u.members.FindByID(ctx, repository.NoTX, assignedTo); err != nil {
		return nil, err
	}

	var issued []string
	var err error
	for attempt := 1; attempt <= memberCodeAttempts; attempt++ {
		issued, err = u.issueOnce(ctx, planID, count, assignedTo)
		if err == nil {
			u.log.Info().Int64("plan_id", planID).Int64("assigned_to", assignedTo).Int("count", len(issued)).Msg("epins issued")
			return issued, nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return nil, err
		}
		u.log.Warn().Int("attempt", attempt).Msg("epin code collision, retrying batch")
	}
	return nil, err
}

func (u *epinUC) issueOnce(ctx context.Context, planID int64, count int, assignedTo int64) ([]string, error) {
	issued := make([]string, 0, count)
	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		for i := 0; i < count; i++ {
			code, err := generateEPinCode()
			if err != nil {
				return err
			}
			pin, err := model.NewEPin(code, planID, assignedTo)
			if err != nil {
				return err
			}
			if err := u.epins.Save(ctx, tx, pin); err != nil {
				return err
			}
			issued = append(issued, code)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issued, nil
}

// Reshare reassigns a batch of still-unused codes to the member resolved by
// receiverCode.
func (u *epinUC) Reshare(ctx context.Context, codes []string, receiverCode string) error {
	defer logging.TraceDuration(u.log, "EPinUC.Reshare")()

	if len(codes) == 0 || receiverCode == "" {
		return domain.ErrInvalidArgument
	}

	receiver, err := u.members.FindByCode(ctx, repository.NoTX, receiverCode)
	if err != nil {
		return err
	}

	n, err := u.epins.Reassign(ctx, repository.NoTX, codes, receiver.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	u.log.Info().Int64("receiver_id", receiver.ID).Int64("reassigned", n).Msg("epins reshared")
	return nil
}

func (u *epinUC) History(ctx context.Context) ([]*model.EPinHistoryEntry, error) {
	defer logging.TraceDuration(u.log, "EPinUC.History")()
	return u.epins.ListHistory(ctx, repository.NoTX)
}

func (u *epinUC) Assigned(ctx context.Context, memberID int64) ([]*model.AssignedEPin, error) {
	defer logging.TraceDuration(u.log, "EPinUC.Assigned")()
	if memberID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return u.epins.ListAssigned(ctx, repository.NoTX, memberID)
}
