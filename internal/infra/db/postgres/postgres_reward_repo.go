package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"mlm-membership-platform/internal/domain"
	"mlm-membership-platform/internal/domain/model"
	"mlm-membership-platform/internal/domain/ports/repository"
)

var _ repository.RewardRepository = (*rewardRepo)(nil)

type rewardRepo struct {
	pool *pgxpool.Pool
}

func NewRewardRepo(pool *pgxpool.Pool) repository.RewardRepository {
	return &rewardRepo{pool: pool}
}

func (r *rewardRepo) CreateDefinition(ctx context.Context, tx repository.Tx, d *model.DirectReward) error {
	const q = `
INSERT INTO direct_rewards (plan_name, no_of_directs, title, image, description, created_at)
VALUES ($1,$2,$3,$4,$5,$6);
`
	_, err := execSQL(ctx, r.pool, tx, q, d.PlanName, d.NoOfDirects, d.Title, d.Image, d.Description, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert direct reward: %w", err)
	}
	return nil
}

func (r *rewardRepo) ListDefinitions(ctx context.Context, tx repository.Tx) ([]*model.DirectReward, error) {
	const q = `SELECT id, plan_name, no_of_directs, title, image, description, created_at FROM direct_rewards ORDER BY id;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.DirectReward
	for rows.Next() {
		var d model.DirectReward
		if err := rows.Scan(&d.ID, &d.PlanName, &d.NoOfDirects, &d.Title, &d.Image, &d.Description, &d.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

const memberRewardEntryQuery = `
SELECT mr.id, mr.member_id, mr.reward_id, mr.status, mr.paid, m.code, m.name
  FROM member_rewards mr
  JOIN members m ON m.id = mr.member_id
 WHERE mr.status = 'achieved' AND mr.paid = %s;
`

func (r *rewardRepo) ListEligible(ctx context.Context, tx repository.Tx) ([]*model.MemberRewardEntry, error) {
	return r.listEntries(ctx, tx, fmt.Sprintf(memberRewardEntryQuery, "FALSE"))
}

func (r *rewardRepo) ListPaid(ctx context.Context, tx repository.Tx) ([]*model.MemberRewardEntry, error) {
	return r.listEntries(ctx, tx, fmt.Sprintf(memberRewardEntryQuery, "TRUE"))
}

func (r *rewardRepo) listEntries(ctx context.Context, tx repository.Tx, q string) ([]*model.MemberRewardEntry, error) {
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.MemberRewardEntry
	for rows.Next() {
		var e model.MemberRewardEntry
		if err := rows.Scan(&e.ID, &e.MemberID, &e.RewardID, &e.Status, &e.Paid, &e.MemberCode, &e.MemberName); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *rewardRepo) MarkPaid(ctx context.Context, tx repository.Tx, memberRewardID int64) error {
	tag, err := execSQL(ctx, r.pool, tx, `UPDATE member_rewards SET paid=TRUE WHERE id=$1;`, memberRewardID)
	if err != nil {
		return fmt.Errorf("mark reward paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *rewardRepo) PaidStatus(ctx context.Context, tx repository.Tx, memberID, rewardID int64) (bool, error) {
	const q = `SELECT paid FROM member_rewards WHERE member_id=$1 AND reward_id=$2 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, memberID, rewardID)
	if err != nil {
		return false, err
	}
	var paid bool
	if err := row.Scan(&paid); err != nil {
		// No standing against this reward yet reads as unpaid.
		return false, nil
	}
	return paid, nil
}

func (r *rewardRepo) TotalIncome(ctx context.Context, tx repository.Tx, memberID int64) (int64, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COALESCE(SUM(amount), 0) FROM commissions WHERE member_id=$1;`, memberID)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("total income: %w", err)
	}
	return total, nil
}
