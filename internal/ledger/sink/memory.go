// Package sink provides a reference implementation of the ledger package's
// Sink contract: an in-memory, put-if-absent-and-ADD transactional store
// keyed by a client request token, used by the Ledger workload and by the
// batch-builder's own tests.
package sink

import (
	"context"
	"sync"

	"brokle-loadtest/internal/ledger"
)

type account struct {
	debitsPosted  uint64
	creditsPosted uint64
}

// Memory is a map-based Sink. It is safe for concurrent use. It tracks which
// client request tokens it has already applied so a replayed Write (same
// token, identical items) is a no-op success rather than a double-apply or a
// conflict.
type Memory struct {
	mu sync.Mutex

	transferIDs map[string]string // transfer id -> client request token that wrote it
	accounts    map[string]*account
	applied     map[string]ledger.Result // client request token -> prior result

	failNext int // number of upcoming TransactWrite calls to fail transiently
}

// NewMemory returns an empty Memory sink.
func NewMemory() *Memory {
	return &Memory{
		transferIDs: make(map[string]string),
		accounts:    make(map[string]*account),
		applied:     make(map[string]ledger.Result),
	}
}

// FailNext arranges for the next n calls to TransactWrite to return a
// transient error without mutating state, so callers can exercise the retry
// policy wrapper deterministically.
func (m *Memory) FailNext(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = n
}

var errTransient = transientError{}

type transientError struct{}

func (transientError) Error() string { return "sink: injected transient failure" }

// TransactWrite applies w atomically: every put's id must be absent (or
// already written under the same token), and every update's ADD amounts are
// accumulated into the named account. A put whose id belongs to a different
// token is a ConflictError and nothing in w is applied.
func (m *Memory) TransactWrite(ctx context.Context, w ledger.Write) (ledger.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failNext > 0 {
		m.failNext--
		return ledger.Result{}, errTransient
	}

	if prior, ok := m.applied[w.ClientRequestToken]; ok {
		return prior, nil
	}

	for _, item := range w.Items {
		if item.Put == nil {
			continue
		}
		id := attrString(item.Put.Item["id"])
		if existingToken, exists := m.transferIDs[id]; exists && existingToken != w.ClientRequestToken {
			return ledger.Result{}, &ledger.ConflictError{Key: id}
		}
	}

	for _, item := range w.Items {
		switch {
		case item.Put != nil:
			id := attrString(item.Put.Item["id"])
			m.transferIDs[id] = w.ClientRequestToken
		case item.Update != nil:
			id := attrString(item.Update.Key["id"])
			a, ok := m.accounts[id]
			if !ok {
				a = &account{}
				m.accounts[id] = a
			}
			a.debitsPosted += attrUint(item.Update.ExpressionAttributeValues[":debit_amount"])
			a.creditsPosted += attrUint(item.Update.ExpressionAttributeValues[":credit_amount"])
		}
	}

	result := ledger.Result{ItemsWritten: w.ItemsWritten()}
	m.applied[w.ClientRequestToken] = result
	return result, nil
}

// Balances returns the posted debit/credit totals for an account, for test
// assertions.
func (m *Memory) Balances(accountID string) (debitsPosted, creditsPosted uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[accountID]
	if !ok {
		return 0, 0
	}
	return a.debitsPosted, a.creditsPosted
}
