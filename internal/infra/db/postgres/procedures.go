package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"mlm-membership-platform/internal/domain"
	"mlm-membership-platform/internal/domain/model"
	"mlm-membership-platform/internal/domain/ports/adapter"
	"mlm-membership-platform/internal/domain/ports/repository"
)

// The referral-tree computations live store-side as procedures/functions;
// these adapters are their only call sites in the application.

// Ensure compile-time conformance
var (
	_ adapter.TreePlacer       = (*TreePlacerProc)(nil)
	_ adapter.TreeRenderer     = (*TreeRendererProc)(nil)
	_ adapter.RewardCalculator = (*RewardCalculatorProc)(nil)
	_ adapter.SponsorChain     = (*SponsorChainProc)(nil)
)

type TreePlacerProc struct {
	pool *pgxpool.Pool
}

func NewTreePlacerProc(pool *pgxpool.Pool) *TreePlacerProc {
	return &TreePlacerProc{pool: pool}
}

// Place runs the placement procedure on the caller's transaction so the
// enrollment rows commit together with the member insert.
func (a *TreePlacerProc) Place(ctx context.Context, tx repository.Tx, memberID int64, sponsorID *int64, planID int64) error {
	_, err := execSQL(ctx, a.pool, tx, `CALL assign_member_to_tree($1, $2, $3);`, memberID, sponsorID, planID)
	if err != nil {
		return fmt.Errorf("assign_member_to_tree: %w", err)
	}
	return nil
}

type TreeRendererProc struct {
	pool *pgxpool.Pool
}

func NewTreeRendererProc(pool *pgxpool.Pool) *TreeRendererProc {
	return &TreeRendererProc{pool: pool}
}

func (a *TreeRendererProc) RenderXML(ctx context.Context, memberID, planID int64) (string, error) {
	row, err := pickRow(ctx, a.pool, nil, `SELECT member_tree_xml($1, $2);`, memberID, planID)
	if err != nil {
		return "", err
	}
	var xml *string
	if err := row.Scan(&xml); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("member_tree_xml: %w", err)
	}
	if xml == nil || *xml == "" {
		return "", domain.ErrNotFound
	}
	return *xml, nil
}

type RewardCalculatorProc struct {
	pool *pgxpool.Pool
}

func NewRewardCalculatorProc(pool *pgxpool.Pool) *RewardCalculatorProc {
	return &RewardCalculatorProc{pool: pool}
}

func (a *RewardCalculatorProc) MemberRewards(ctx context.Context, memberID int64) ([]*model.RewardProgress, error) {
	const q = `
SELECT reward_id, title, plan_name, required_directs, achieved_directs, status, paid
  FROM member_rewards_data($1);
`
	rows, err := queryRows(ctx, a.pool, nil, q, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.RewardProgress
	for rows.Next() {
		var p model.RewardProgress
		if err := rows.Scan(&p.RewardID, &p.Title, &p.PlanName, &p.RequiredDirects, &p.AchievedDirects, &p.Status, &p.Paid); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

type SponsorChainProc struct {
	pool *pgxpool.Pool
}

func NewSponsorChainProc(pool *pgxpool.Pool) *SponsorChainProc {
	return &SponsorChainProc{pool: pool}
}

func (a *SponsorChainProc) ListSponsors(ctx context.Context, memberID int64) ([]*model.SponsorEntry, error) {
	const q = `SELECT member_id, code, name, level FROM sponsor_chain($1) ORDER BY level;`
	rows, err := queryRows(ctx, a.pool, nil, q, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.SponsorEntry
	for rows.Next() {
		var s model.SponsorEntry
		if err := rows.Scan(&s.MemberID, &s.Code, &s.Name, &s.Level); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
