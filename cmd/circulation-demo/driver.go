// Package main implements a circulation workload demo that drives the engine
// with randomized issue, return, renew and fine payment traffic through the
// observable command handlers, exporting handler metrics on a Prometheus
// endpoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/circulation/postgresengine"
	"github.com/openshelf/circulation-engine-go/features/command/issuebookcopy"
	"github.com/openshelf/circulation-engine-go/features/command/paymemberfine"
	"github.com/openshelf/circulation-engine-go/features/command/renewloan"
	"github.com/openshelf/circulation-engine-go/features/command/returnbookcopy"
	"github.com/openshelf/circulation-engine-go/shell"
	"github.com/openshelf/circulation-engine-go/shell/observable"
)

// Scenario weights out of 100: issue, return, renew, pay.
var scenarioWeights = [4]int{40, 35, 15, 10}

// backdatedIssuePercent is the share of issues stamped 30-60 days in the
// past, so that their returns come back overdue and accrue fines.
const backdatedIssuePercent = 25

type fineRef struct {
	FineID uuid.UUID
	Amount decimal.Decimal
}

// Driver executes randomized circulation traffic against the engine. It keeps
// an in-memory working set of the loans it opened and the fines its returns
// produced, so that return, renew and pay scenarios can target real rows.
type Driver struct {
	cfg     Config
	library Library

	issueHandler  *observable.CommandWrapper[issuebookcopy.Command, issuebookcopy.Receipt]
	returnHandler *observable.CommandWrapper[returnbookcopy.Command, returnbookcopy.Receipt]
	renewHandler  *observable.CommandWrapper[renewloan.Command, renewloan.Receipt]
	payHandler    *observable.CommandWrapper[paymemberfine.Command, paymemberfine.Receipt]

	mu        sync.Mutex
	openLoans []uuid.UUID
	openFines []fineRef

	statsMu   sync.RWMutex
	startTime time.Time
	requests  int64
	rejected  int64
	failed    int64
}

// NewDriver creates a Driver with all four command handlers wrapped for
// metrics and logging.
func NewDriver(
	store postgresengine.CirculationStore,
	metrics shell.MetricsCollector,
	logger shell.Logger,
	cfg Config,
	library Library,
) *Driver {
	return &Driver{
		cfg:     cfg,
		library: library,

		issueHandler:  mustWrapHandler[issuebookcopy.Command, issuebookcopy.Receipt](issuebookcopy.NewCommandHandler(store), metrics, logger),
		returnHandler: mustWrapHandler[returnbookcopy.Command, returnbookcopy.Receipt](returnbookcopy.NewCommandHandler(store), metrics, logger),
		renewHandler:  mustWrapHandler[renewloan.Command, renewloan.Receipt](renewloan.NewCommandHandler(store), metrics, logger),
		payHandler:    mustWrapHandler[paymemberfine.Command, paymemberfine.Receipt](paymemberfine.NewCommandHandler(store), metrics, logger),
	}
}

// mustWrapHandler panics if wrapper creation fails, which is appropriate here
// since the demo cannot run without its handlers.
func mustWrapHandler[C shell.Command, R any](
	coreHandler shell.CoreCommandHandler[C, R],
	metrics shell.MetricsCollector,
	logger shell.Logger,
) *observable.CommandWrapper[C, R] {
	wrapper, err := observable.NewCommandWrapper[C, R](coreHandler,
		observable.WithCommandMetrics[C, R](metrics),
		observable.WithCommandLogging[C, R](logger),
	)
	if err != nil {
		panic(fmt.Sprintf("Failed to create command wrapper: %v", err))
	}

	return wrapper
}

// Run executes traffic until the context is canceled. A shared ticker paces
// the overall rate; each tick wakes exactly one of the workers.
func (d *Driver) Run(ctx context.Context) error {
	d.statsMu.Lock()
	d.startTime = time.Now()
	d.requests, d.rejected, d.failed = 0, 0, 0
	d.statsMu.Unlock()

	interval := time.Second / time.Duration(d.cfg.Rate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("Driver starting with %d ops/second (interval %v), %d workers", d.cfg.Rate, interval, d.cfg.Workers)

	group, groupCtx := errgroup.WithContext(ctx)

	for i := 0; i < d.cfg.Workers; i++ {
		group.Go(func() error {
			return d.workerLoop(groupCtx, ticker.C)
		})
	}

	group.Go(func() error {
		return d.statsReporter(groupCtx)
	})

	return group.Wait()
}

func (d *Driver) workerLoop(ctx context.Context, ticks <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticks:
			d.executeScenario(ctx)
		}
	}
}

// executeScenario runs a single operation chosen by the scenario weights.
func (d *Driver) executeScenario(ctx context.Context) {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var err error

	roll := rand.Intn(100) //nolint:gosec // Demo traffic - weak random is acceptable
	switch {
	case roll < scenarioWeights[0]:
		err = d.runIssue(opCtx)
	case roll < scenarioWeights[0]+scenarioWeights[1]:
		err = d.runReturn(opCtx)
	case roll < scenarioWeights[0]+scenarioWeights[1]+scenarioWeights[2]:
		err = d.runRenew(opCtx)
	default:
		err = d.runPay(opCtx)
	}

	d.recordOutcome(err)
}

func (d *Driver) recordOutcome(err error) {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()

	d.requests++

	switch {
	case err == nil:
	case isDomainRejection(err):
		// Suspended members, exhausted copies, renewal limits and the like
		// are expected outcomes of random traffic, not failures.
		d.rejected++
	default:
		d.failed++
		log.Printf("Operation failed: %v", err)
	}
}

func isDomainRejection(err error) bool {
	return errors.Is(err, circulation.ErrIneligible) ||
		errors.Is(err, circulation.ErrNotFound) ||
		errors.Is(err, circulation.ErrValidation) ||
		errors.Is(err, circulation.ErrInvalidState) ||
		errors.Is(err, circulation.ErrConflict)
}

func (d *Driver) runIssue(ctx context.Context) error {
	memberID := pickRandom(d.library.MemberIDs)
	bookID := pickRandom(d.library.BookIDs)
	staffID := pickRandom(d.library.StaffIDs)

	occurredAt := time.Now()
	if rand.Intn(100) < backdatedIssuePercent { //nolint:gosec // Demo traffic - weak random is acceptable
		occurredAt = occurredAt.AddDate(0, 0, -(30 + rand.Intn(30))) //nolint:gosec // Demo traffic - weak random is acceptable
	}

	receipt, _, err := d.issueHandler.Handle(ctx, issuebookcopy.BuildCommand(memberID, bookID, staffID, occurredAt))
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.openLoans = append(d.openLoans, receipt.Loan.ID)
	d.mu.Unlock()

	return nil
}

// runReturn closes a random loan from the working set. A failed return drops
// the loan from the set; the overdue report still sees it.
func (d *Driver) runReturn(ctx context.Context) error {
	loanID, ok := d.takeRandomOpenLoan()
	if !ok {
		return d.runIssue(ctx)
	}

	staffID := pickRandom(d.library.StaffIDs)

	receipt, _, err := d.returnHandler.Handle(ctx, returnbookcopy.BuildCommandForLoan(loanID, staffID, time.Now()))
	if err != nil {
		return err
	}

	if receipt.Fine != nil {
		d.mu.Lock()
		d.openFines = append(d.openFines, fineRef{FineID: receipt.Fine.ID, Amount: receipt.Fine.Amount})
		d.mu.Unlock()
	}

	return nil
}

func (d *Driver) runRenew(ctx context.Context) error {
	loanID, ok := d.peekRandomOpenLoan()
	if !ok {
		return d.runIssue(ctx)
	}

	staffID := pickRandom(d.library.StaffIDs)

	_, _, err := d.renewHandler.Handle(ctx, renewloan.BuildCommand(loanID, staffID, time.Now()))

	return err
}

// runPay settles a fine produced by an earlier overdue return in full.
func (d *Driver) runPay(ctx context.Context) error {
	fine, ok := d.takeRandomOpenFine()
	if !ok {
		return d.runIssue(ctx)
	}

	staffID := pickRandom(d.library.StaffIDs)

	_, _, err := d.payHandler.Handle(ctx, paymemberfine.BuildCommand(fine.FineID, fine.Amount, staffID, time.Now()))

	return err
}

func (d *Driver) takeRandomOpenLoan() (uuid.UUID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.openLoans) == 0 {
		return uuid.Nil, false
	}

	idx := rand.Intn(len(d.openLoans)) //nolint:gosec // Demo traffic - weak random is acceptable
	loanID := d.openLoans[idx]
	d.openLoans[idx] = d.openLoans[len(d.openLoans)-1]
	d.openLoans = d.openLoans[:len(d.openLoans)-1]

	return loanID, true
}

func (d *Driver) peekRandomOpenLoan() (uuid.UUID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.openLoans) == 0 {
		return uuid.Nil, false
	}

	return d.openLoans[rand.Intn(len(d.openLoans))], true //nolint:gosec // Demo traffic - weak random is acceptable
}

func (d *Driver) takeRandomOpenFine() (fineRef, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.openFines) == 0 {
		return fineRef{}, false
	}

	idx := rand.Intn(len(d.openFines)) //nolint:gosec // Demo traffic - weak random is acceptable
	fine := d.openFines[idx]
	d.openFines[idx] = d.openFines[len(d.openFines)-1]
	d.openFines = d.openFines[:len(d.openFines)-1]

	return fine, true
}

func pickRandom(ids []uuid.UUID) uuid.UUID {
	return ids[rand.Intn(len(ids))] //nolint:gosec // Demo traffic - weak random is acceptable
}

// statsReporter logs throughput statistics periodically.
func (d *Driver) statsReporter(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.logStats("Stats")
		}
	}
}

func (d *Driver) logFinalStats() {
	d.logStats("Final stats")
}

func (d *Driver) logStats(prefix string) {
	d.statsMu.RLock()
	duration := time.Since(d.startTime)
	requests := d.requests
	rejected := d.rejected
	failed := d.failed
	d.statsMu.RUnlock()

	d.mu.Lock()
	openLoans := len(d.openLoans)
	openFines := len(d.openFines)
	d.mu.Unlock()

	if duration <= 0 || requests == 0 {
		return
	}

	rps := float64(requests) / duration.Seconds()
	log.Printf("%s: %d ops in %v (%.1f ops/s), %d rejected, %d failed, %d open loans, %d open fines, %d goroutines",
		prefix, requests, duration.Truncate(time.Second), rps, rejected, failed, openLoans, openFines, runtime.NumGoroutine())
}
