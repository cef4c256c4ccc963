package ledgerworkload

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brokle-loadtest/internal/ledger/sink"
)

func TestWorkload_PerformIterationWritesThroughSink(t *testing.T) {
	mem := sink.NewMemory()
	w := New(Config{
		AccountIDs: []string{"1", "2", "3"},
		BatchSize:  3,
		Amount:     5,
		Sink:       mem,
	})
	require.NoError(t, w.Setup(context.Background()))

	assert.NoError(t, w.PerformIteration(context.Background()))
	assert.Equal(t, 3, w.ItemsPerIteration())

	data := w.TestRunData()
	assert.EqualValues(t, 1, data["cumulativeAttempts"])
}

func TestWorkload_RecoversFromTransientSinkFailure(t *testing.T) {
	mem := sink.NewMemory()
	mem.FailNext(1)

	w := New(Config{
		AccountIDs: []string{"1", "2"},
		BatchSize:  1,
		Amount:     10,
		Sink:       mem,
	})
	require.NoError(t, w.Setup(context.Background()))

	assert.NoError(t, w.PerformIteration(context.Background()))

	data := w.TestRunData()
	assert.EqualValues(t, 2, data["cumulativeAttempts"])
}

func TestWorkload_SetupValidatesConfig(t *testing.T) {
	w := New(Config{AccountIDs: []string{"1"}, BatchSize: 1, Sink: sink.NewMemory()})
	assert.Error(t, w.Setup(context.Background()))

	w2 := New(Config{AccountIDs: []string{"1", "2"}, BatchSize: 0, Sink: sink.NewMemory()})
	assert.Error(t, w2.Setup(context.Background()))

	w3 := New(Config{AccountIDs: []string{"1", "2"}, BatchSize: 1})
	assert.Error(t, w3.Setup(context.Background()))
}
