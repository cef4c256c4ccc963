// Package ledgerworkload implements a Workload that drives the Transaction
// Batch Builder against a Sink, wrapped in the Retry Policy Wrapper — the
// ledger half of the spec's two concrete workloads.
package ledgerworkload

import (
	"context"
	"fmt"
	"sync/atomic"

	"brokle-loadtest/internal/ledger"
	"brokle-loadtest/internal/retry"
	"brokle-loadtest/internal/workload"
	"brokle-loadtest/pkg/ulid"
)

// Config configures the ledger workload.
type Config struct {
	// AccountIDs is the pool of accounts transfers are drawn from. Must
	// have at least 2 entries.
	AccountIDs []string
	// BatchSize is the number of transfers built per iteration. Must be
	// between 1 and ledger.MaxBatchSize.
	BatchSize int
	// Amount is the amount moved by every synthetic transfer.
	Amount uint64
	// Sink is the transactional-write boundary the batch is written to.
	Sink ledger.Sink
	// RetryPolicy governs how TransactWrite failures are retried. Zero
	// value is replaced with retry.NewPolicy() at construction.
	RetryPolicy retry.Policy
}

// Workload generates a round-robin sequence of synthetic transfers each
// iteration, builds a batch, and writes it through Sink under retry. One
// iteration represents BatchSize items.
type Workload struct {
	workload.Base

	cfg Config

	cursor        int
	totalAttempts int64
	totalDelayUs  int64
}

// New constructs a ledger Workload. It does not validate cfg; Setup
// returns an error for too few account ids, an out-of-range batch size, or
// a nil Sink.
func New(cfg Config) *Workload {
	if cfg.RetryPolicy.MaxAttempts == 0 {
		cfg.RetryPolicy = retry.NewPolicy()
	}
	return &Workload{cfg: cfg}
}

func (w *Workload) Setup(ctx context.Context) error {
	if len(w.cfg.AccountIDs) < 2 {
		return fmt.Errorf("ledgerworkload: need at least 2 account ids, got %d", len(w.cfg.AccountIDs))
	}
	if w.cfg.BatchSize < 1 || w.cfg.BatchSize > ledger.MaxBatchSize {
		return fmt.Errorf("ledgerworkload: batch size %d out of range [1,%d]", w.cfg.BatchSize, ledger.MaxBatchSize)
	}
	if w.cfg.Sink == nil {
		return fmt.Errorf("ledgerworkload: sink must not be nil")
	}
	return nil
}

func (w *Workload) Teardown(ctx context.Context) error {
	return nil
}

func (w *Workload) ItemsPerIteration() int {
	return w.cfg.BatchSize
}

func (w *Workload) PerformIteration(ctx context.Context) error {
	transfers := make([]ledger.Transfer, w.cfg.BatchSize)
	for i := range transfers {
		debit := w.cfg.AccountIDs[w.cursor%len(w.cfg.AccountIDs)]
		credit := w.cfg.AccountIDs[(w.cursor+1)%len(w.cfg.AccountIDs)]
		w.cursor++
		transfers[i] = ledger.Transfer{
			ID:              ulid.New(),
			DebitAccountID:  debit,
			CreditAccountID: credit,
			Amount:          w.cfg.Amount,
			LedgerID:        "loadtest",
		}
	}

	batch, err := ledger.BuildBatch(transfers)
	if err != nil {
		return fmt.Errorf("ledgerworkload: building batch: %w", err)
	}

	result, err := retry.Do(ctx, w.cfg.RetryPolicy, func(ctx context.Context) error {
		_, werr := w.cfg.Sink.TransactWrite(ctx, batch)
		return werr
	})

	atomic.AddInt64(&w.totalAttempts, int64(result.Attempts))
	atomic.AddInt64(&w.totalDelayUs, result.TotalDelay.Microseconds())

	if err != nil {
		return fmt.Errorf("ledgerworkload: write failed after retries: %w", err)
	}
	return nil
}

func (w *Workload) TestRunData() map[string]any {
	return map[string]any{
		"batchSize":          w.cfg.BatchSize,
		"accountPoolSize":    len(w.cfg.AccountIDs),
		"cumulativeAttempts": atomic.LoadInt64(&w.totalAttempts),
		"cumulativeDelayMs":  float64(atomic.LoadInt64(&w.totalDelayUs)) / 1000.0,
	}
}
