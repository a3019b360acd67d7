package repository

import "context"

// EnrollmentRepository reads plan enrollments. Enrollment rows are written by
// the tree placement procedure, so this port is read-only on purpose.
type EnrollmentRepository interface {
	ListPlanIDs(ctx context.Context, tx Tx, memberID int64) ([]int64, error)
	Exists(ctx context.Context, tx Tx, memberID, planID int64) (bool, error)
	// CountDirects counts distinct members directly sponsored by sponsorID.
	CountDirects(ctx context.Context, tx Tx, sponsorID int64) (int, error)
	// LatestSponsor returns the sponsor of the member's most recent
	// enrollment, or nil for the bootstrap member.
	LatestSponsor(ctx context.Context, tx Tx, memberID int64) (*int64, error)
}
