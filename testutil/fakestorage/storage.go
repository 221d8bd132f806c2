package fakestorage

import (
	"context"

	"github.com/google/uuid"

	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/circulation/core"
)

// Storage is an in-memory circulation storage double. Configure the snapshot
// and row fields before handing it to a handler; inspect the capture fields
// afterwards. The zero value is ready to use.
//
// Storage satisfies the CirculationStorage interfaces of all command and
// query features.
type Storage struct {
	// Pre-configured results returned by the Load methods.
	IssueSnapshot   core.IssueSnapshot
	ReturnSnapshot  core.ReturnSnapshot
	RenewSnapshot   core.RenewSnapshot
	PayFineSnapshot core.PayFineSnapshot
	LoanDetails     []core.LoanDetail
	JournalEntries  []circulation.JournalEntry

	// LoadErr fails every Load method when set.
	LoadErr error

	// ApplyErr fails every Apply method when set.
	ApplyErr error

	// ConflictsBeforeSuccess makes the Apply methods fail with
	// ErrConcurrencyConflict this many times before succeeding.
	ConflictsBeforeSuccess int

	// Captures.
	LoadCalls           int
	LoadConsistency     []circulation.ConsistencyLevel
	LastLoanFilter      circulation.LoanFilter
	LastTailLength      int
	AppliedIssuePlans   []core.IssuePlan
	AppliedReturnPlans  []core.ReturnPlan
	AppliedRenewPlans   []core.RenewPlan
	AppliedPayFinePlans []core.PayFinePlan
	AppliedEntries      []circulation.JournalEntry

	conflictsInjected int
}

func (s *Storage) LoadIssueSnapshot(
	ctx context.Context,
	_ uuid.UUID,
	_ uuid.UUID,
) (core.IssueSnapshot, error) {

	s.recordLoad(ctx)

	if s.LoadErr != nil {
		return core.IssueSnapshot{}, s.LoadErr
	}

	return s.IssueSnapshot, nil
}

func (s *Storage) LoadReturnSnapshot(
	ctx context.Context,
	_ uuid.UUID,
	_ uuid.UUID,
	_ uuid.UUID,
) (core.ReturnSnapshot, error) {

	s.recordLoad(ctx)

	if s.LoadErr != nil {
		return core.ReturnSnapshot{}, s.LoadErr
	}

	return s.ReturnSnapshot, nil
}

func (s *Storage) LoadRenewSnapshot(ctx context.Context, _ uuid.UUID) (core.RenewSnapshot, error) {
	s.recordLoad(ctx)

	if s.LoadErr != nil {
		return core.RenewSnapshot{}, s.LoadErr
	}

	return s.RenewSnapshot, nil
}

func (s *Storage) LoadPayFineSnapshot(ctx context.Context, _ uuid.UUID) (core.PayFineSnapshot, error) {
	s.recordLoad(ctx)

	if s.LoadErr != nil {
		return core.PayFineSnapshot{}, s.LoadErr
	}

	return s.PayFineSnapshot, nil
}

func (s *Storage) LoadLoanDetails(
	ctx context.Context,
	filter circulation.LoanFilter,
) ([]core.LoanDetail, error) {

	s.recordLoad(ctx)
	s.LastLoanFilter = filter

	if s.LoadErr != nil {
		return nil, s.LoadErr
	}

	return s.LoanDetails, nil
}

func (s *Storage) LoadJournalEntries(
	ctx context.Context,
	tailLength int,
) ([]circulation.JournalEntry, error) {

	s.recordLoad(ctx)
	s.LastTailLength = tailLength

	if s.LoadErr != nil {
		return nil, s.LoadErr
	}

	return s.JournalEntries, nil
}

func (s *Storage) ApplyIssue(_ context.Context, plan core.IssuePlan, entry circulation.JournalEntry) error {
	if err := s.applyOutcome(); err != nil {
		return err
	}

	s.AppliedIssuePlans = append(s.AppliedIssuePlans, plan)
	s.AppliedEntries = append(s.AppliedEntries, entry)

	return nil
}

func (s *Storage) ApplyReturn(_ context.Context, plan core.ReturnPlan, entry circulation.JournalEntry) error {
	if err := s.applyOutcome(); err != nil {
		return err
	}

	s.AppliedReturnPlans = append(s.AppliedReturnPlans, plan)
	s.AppliedEntries = append(s.AppliedEntries, entry)

	return nil
}

func (s *Storage) ApplyRenew(_ context.Context, plan core.RenewPlan, entry circulation.JournalEntry) error {
	if err := s.applyOutcome(); err != nil {
		return err
	}

	s.AppliedRenewPlans = append(s.AppliedRenewPlans, plan)
	s.AppliedEntries = append(s.AppliedEntries, entry)

	return nil
}

func (s *Storage) ApplyFinePayment(_ context.Context, plan core.PayFinePlan, entry circulation.JournalEntry) error {
	if err := s.applyOutcome(); err != nil {
		return err
	}

	s.AppliedPayFinePlans = append(s.AppliedPayFinePlans, plan)
	s.AppliedEntries = append(s.AppliedEntries, entry)

	return nil
}

func (s *Storage) recordLoad(ctx context.Context) {
	s.LoadCalls++
	s.LoadConsistency = append(s.LoadConsistency, circulation.GetConsistencyLevel(ctx))
}

func (s *Storage) applyOutcome() error {
	if s.conflictsInjected < s.ConflictsBeforeSuccess {
		s.conflictsInjected++

		return circulation.ErrConcurrencyConflict
	}

	return s.ApplyErr
}
