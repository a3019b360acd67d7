//go:build !integration

package usecase_test

import (
	"context"
	"fmt"
	"sync"

	"mlm-membership-platform/internal/domain"
	"mlm-membership-platform/internal/domain/model"
	"mlm-membership-platform/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// MockTxManager runs the callback without a real transaction, one at a time.
// Rollback semantics are not simulated; tests assert on observable repo state
// instead.
type MockTxManager struct {
	mu    sync.Mutex
	Calls int
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	return fn(ctx, repository.NoTX)
}

// snapshotTxManager copies the repo state before running the callback and
// restores it when the callback fails, approximating the store's rollback.
type snapshotTxManager struct {
	mu          sync.Mutex
	members     *memMemberRepo
	epins       *memEPinRepo
	enrollments *memEnrollmentRepo
}

var _ repository.TransactionManager = (*snapshotTxManager)(nil)

func (m *snapshotTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	members := m.members.snapshot()
	epins := m.epins.snapshot()
	enrollments := m.enrollments.snapshot()
	err := fn(ctx, repository.NoTX)
	if err != nil {
		m.members.restore(members)
		m.epins.restore(epins)
		m.enrollments.restore(enrollments)
	}
	return err
}

// memMemberRepo is an in-memory MemberRepository enforcing the same unique
// constraints as the store: email and member code.
type memMemberRepo struct {
	mu     sync.RWMutex
	store  map[int64]*model.Member
	nextID int64

	CreateFunc func(ctx context.Context, tx repository.Tx, m *model.Member) (int64, error)
}

var _ repository.MemberRepository = (*memMemberRepo)(nil)

func newMemMemberRepo() *memMemberRepo {
	return &memMemberRepo{store: make(map[int64]*model.Member)}
}

func (m *memMemberRepo) Create(ctx context.Context, tx repository.Tx, member *model.Member) (int64, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, member)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.store {
		if existing.Email == member.Email {
			return 0, domain.ErrDuplicateEmail
		}
		if existing.Code == member.Code {
			return 0, domain.ErrMemberCodeTaken
		}
	}
	m.nextID++
	cp := *member
	cp.ID = m.nextID
	m.store[cp.ID] = &cp
	return cp.ID, nil
}

func (m *memMemberRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, member := range m.store {
		if member.Code == code {
			cp := *member
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memMemberRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	member, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *member
	return &cp, nil
}

func (m *memMemberRepo) EmailExists(ctx context.Context, tx repository.Tx, email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, member := range m.store {
		if member.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memMemberRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

func (m *memMemberRepo) CountByCodePrefix(ctx context.Context, tx repository.Tx, prefix string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cnt := 0
	for _, member := range m.store {
		if len(member.Code) >= len(prefix) && member.Code[:len(prefix)] == prefix {
			cnt++
		}
	}
	return cnt, nil
}

func (m *memMemberRepo) snapshot() map[int64]*model.Member {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := make(map[int64]*model.Member, len(m.store))
	for id, member := range m.store {
		cp := *member
		snap[id] = &cp
	}
	return snap
}

// restore leaves nextID alone; id sequences do not rewind on rollback.
func (m *memMemberRepo) restore(snap map[int64]*model.Member) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = snap
}

func (m *memMemberRepo) UpdatePasswordHash(ctx context.Context, tx repository.Tx, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	member, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	member.PasswordHash = hash
	return nil
}

// memEPinRepo keeps activation codes in memory. Redeem performs the same
// compare-and-set the store does, under the repo mutex, so concurrent
// double-redemption tests behave like the real thing.
type memEPinRepo struct {
	mu    sync.Mutex
	store map[string]*model.EPin // by code

	SaveFunc   func(ctx context.Context, tx repository.Tx, pin *model.EPin) error
	RedeemFunc func(ctx context.Context, tx repository.Tx, id string, usedBy int64) error
}

var _ repository.EPinRepository = (*memEPinRepo)(nil)

func newMemEPinRepo() *memEPinRepo {
	return &memEPinRepo{store: make(map[string]*model.EPin)}
}

func (m *memEPinRepo) Save(ctx context.Context, tx repository.Tx, pin *model.EPin) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, pin)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[pin.Code]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *pin
	m.store[pin.Code] = &cp
	return nil
}

func (m *memEPinRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.EPin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pin, ok := m.store[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *pin
	return &cp, nil
}

func (m *memEPinRepo) Redeem(ctx context.Context, tx repository.Tx, id string, usedBy int64) error {
	if m.RedeemFunc != nil {
		return m.RedeemFunc(ctx, tx, id, usedBy)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pin := range m.store {
		if pin.ID == id {
			if pin.Status != model.EPinUnused {
				return domain.ErrActivationCodeUsed
			}
			pin.Status = model.EPinUsed
			pin.UsedBy = &usedBy
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memEPinRepo) Reassign(ctx context.Context, tx repository.Tx, codes []string, toMemberID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, code := range codes {
		pin, ok := m.store[code]
		if ok && pin.Status == model.EPinUnused {
			pin.AssignedTo = toMemberID
			n++
		}
	}
	return n, nil
}

func (m *memEPinRepo) snapshot() map[string]*model.EPin {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := make(map[string]*model.EPin, len(m.store))
	for code, pin := range m.store {
		cp := *pin
		snap[code] = &cp
	}
	return snap
}

func (m *memEPinRepo) restore(snap map[string]*model.EPin) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = snap
}

func (m *memEPinRepo) ListAssigned(ctx context.Context, tx repository.Tx, memberID int64) ([]*model.AssignedEPin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.AssignedEPin
	for _, pin := range m.store {
		if pin.AssignedTo == memberID {
			out = append(out, &model.AssignedEPin{
				ID:        pin.ID,
				Code:      pin.Code,
				Status:    pin.Status,
				PlanID:    pin.PlanID,
				CreatedAt: pin.CreatedAt,
			})
		}
	}
	return out, nil
}

func (m *memEPinRepo) ListHistory(ctx context.Context, tx repository.Tx) ([]*model.EPinHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.EPinHistoryEntry
	for _, pin := range m.store {
		out = append(out, &model.EPinHistoryEntry{
			ID:         pin.ID,
			Code:       pin.Code,
			Status:     pin.Status,
			PlanID:     pin.PlanID,
			AssignedTo: pin.AssignedTo,
			UsedBy:     pin.UsedBy,
			CreatedAt:  pin.CreatedAt,
		})
	}
	return out, nil
}

// memPlanRepo is an in-memory PlanRepository.
type memPlanRepo struct {
	mu     sync.RWMutex
	store  map[int64]*model.Plan
	nextID int64
}

var _ repository.PlanRepository = (*memPlanRepo)(nil)

func newMemPlanRepo() *memPlanRepo {
	return &memPlanRepo{store: make(map[int64]*model.Plan)}
}

func (m *memPlanRepo) Save(ctx context.Context, tx repository.Tx, plan *model.Plan) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	cp := *plan
	cp.ID = m.nextID
	m.store[cp.ID] = &cp
	return cp.ID, nil
}

func (m *memPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	plan, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *plan
	return &cp, nil
}

func (m *memPlanRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Plan, 0, len(m.store))
	for _, plan := range m.store {
		cp := *plan
		out = append(out, &cp)
	}
	return out, nil
}

type enrollmentRow struct {
	memberID  int64
	planID    int64
	sponsorID *int64
}

// memEnrollmentRepo records placements made through the mock placer, the same
// way the real enrollment rows are written by the placement procedure.
type memEnrollmentRepo struct {
	mu   sync.Mutex
	rows []enrollmentRow
}

var _ repository.EnrollmentRepository = (*memEnrollmentRepo)(nil)

func newMemEnrollmentRepo() *memEnrollmentRepo { return &memEnrollmentRepo{} }

func (m *memEnrollmentRepo) add(memberID int64, sponsorID *int64, planID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, enrollmentRow{memberID: memberID, planID: planID, sponsorID: sponsorID})
}

func (m *memEnrollmentRepo) snapshot() []enrollmentRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]enrollmentRow(nil), m.rows...)
}

func (m *memEnrollmentRepo) restore(rows []enrollmentRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = rows
}

func (m *memEnrollmentRepo) ListPlanIDs(ctx context.Context, tx repository.Tx, memberID int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []int64
	for _, r := range m.rows {
		if r.memberID == memberID {
			out = append(out, r.planID)
		}
	}
	return out, nil
}

func (m *memEnrollmentRepo) Exists(ctx context.Context, tx repository.Tx, memberID, planID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.memberID == memberID && r.planID == planID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memEnrollmentRepo) CountDirects(ctx context.Context, tx repository.Tx, sponsorID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[int64]bool)
	for _, r := range m.rows {
		if r.sponsorID != nil && *r.sponsorID == sponsorID {
			seen[r.memberID] = true
		}
	}
	return len(seen), nil
}

func (m *memEnrollmentRepo) LatestSponsor(ctx context.Context, tx repository.Tx, memberID int64) (*int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].memberID == memberID {
			return m.rows[i].sponsorID, nil
		}
	}
	return nil, domain.ErrNotFound
}

// mockPlacer appends enrollment rows, standing in for the placement procedure.
type mockPlacer struct {
	enrollments *memEnrollmentRepo
	PlaceErr    error
}

func (p *mockPlacer) Place(ctx context.Context, tx repository.Tx, memberID int64, sponsorID *int64, planID int64) error {
	if p.PlaceErr != nil {
		return p.PlaceErr
	}
	p.enrollments.add(memberID, sponsorID, planID)
	return nil
}

// memRewardRepo is an in-memory RewardRepository.
type memRewardRepo struct {
	mu      sync.Mutex
	defs    []*model.DirectReward
	entries []*model.MemberRewardEntry
	income  map[int64]int64
	nextID  int64
}

var _ repository.RewardRepository = (*memRewardRepo)(nil)

func newMemRewardRepo() *memRewardRepo {
	return &memRewardRepo{income: make(map[int64]int64)}
}

func (m *memRewardRepo) CreateDefinition(ctx context.Context, tx repository.Tx, r *model.DirectReward) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	cp := *r
	cp.ID = m.nextID
	m.defs = append(m.defs, &cp)
	return nil
}

func (m *memRewardRepo) ListDefinitions(ctx context.Context, tx repository.Tx) ([]*model.DirectReward, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.DirectReward(nil), m.defs...), nil
}

func (m *memRewardRepo) ListEligible(ctx context.Context, tx repository.Tx) ([]*model.MemberRewardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.MemberRewardEntry
	for _, e := range m.entries {
		if e.Status == "achieved" && !e.Paid {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memRewardRepo) MarkPaid(ctx context.Context, tx repository.Tx, memberRewardID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID == memberRewardID {
			e.Paid = true
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memRewardRepo) ListPaid(ctx context.Context, tx repository.Tx) ([]*model.MemberRewardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.MemberRewardEntry
	for _, e := range m.entries {
		if e.Paid {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memRewardRepo) PaidStatus(ctx context.Context, tx repository.Tx, memberID, rewardID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.MemberID == memberID && e.RewardID == rewardID {
			return e.Paid, nil
		}
	}
	return false, domain.ErrNotFound
}

func (m *memRewardRepo) TotalIncome(ctx context.Context, tx repository.Tx, memberID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.income[memberID], nil
}

// memProfileRepo is an in-memory ProfileRepository.
type memProfileRepo struct {
	mu    sync.Mutex
	store map[int64]*model.MemberProfile
}

var _ repository.ProfileRepository = (*memProfileRepo)(nil)

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{store: make(map[int64]*model.MemberProfile)}
}

func (m *memProfileRepo) Create(ctx context.Context, tx repository.Tx, p *model.MemberProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[p.MemberID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *p
	m.store[p.MemberID] = &cp
	return nil
}

func (m *memProfileRepo) FindByMember(ctx context.Context, tx repository.Tx, memberID int64) (*model.MemberProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[memberID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProfileRepo) ListPending(ctx context.Context, tx repository.Tx) ([]*model.PendingProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PendingProfile
	for _, p := range m.store {
		if p.Status == model.ProfilePending {
			out = append(out, &model.PendingProfile{MemberProfile: *p})
		}
	}
	return out, nil
}

func (m *memProfileRepo) UpdateStatus(ctx context.Context, tx repository.Tx, memberID int64, status model.ProfileStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[memberID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	return nil
}

// plainHasher is a reversible stand-in so tests can assert on stored values.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return domain.ErrInvalidCredentials
	}
	return nil
}

type mockTokenIssuer struct{}

func (mockTokenIssuer) Mint(memberID int64, role string) (string, error) {
	return fmt.Sprintf("token-%d-%s", memberID, role), nil
}

// memDocStore keeps documents in a map; Save returns the name as the ref.
type memDocStore struct {
	mu    sync.Mutex
	docs  map[string][]byte
	Saves int
}

func newMemDocStore() *memDocStore { return &memDocStore{docs: make(map[string][]byte)} }

func (m *memDocStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saves++
	ref := "doc-" + name
	m.docs[ref] = append([]byte(nil), data...)
	return ref, nil
}

func (m *memDocStore) Load(ctx context.Context, ref string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.docs[ref]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

type mockRenderer struct {
	RenderFunc func(ctx context.Context, memberID, planID int64) (string, error)
}

func (m *mockRenderer) RenderXML(ctx context.Context, memberID, planID int64) (string, error) {
	if m.RenderFunc != nil {
		return m.RenderFunc(ctx, memberID, planID)
	}
	return fmt.Sprintf("<tree member=\"%d\" plan=\"%d\"/>", memberID, planID), nil
}

type mockCalculator struct {
	Progress []*model.RewardProgress
	Err      error
}

func (m *mockCalculator) MemberRewards(ctx context.Context, memberID int64) ([]*model.RewardProgress, error) {
	return m.Progress, m.Err
}

type mockChain struct {
	Entries []*model.SponsorEntry
	Err     error
}

func (m *mockChain) ListSponsors(ctx context.Context, memberID int64) ([]*model.SponsorEntry, error) {
	return m.Entries, m.Err
}
