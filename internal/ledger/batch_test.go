package ledger

import (
	"strconv"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brokle-loadtest/pkg/ulid"
)

func transfer(debit, credit string, amount uint64) Transfer {
	return Transfer{
		ID:              ulid.New(),
		DebitAccountID:  debit,
		CreditAccountID: credit,
		Amount:          amount,
		LedgerID:        "L1",
	}
}

// accountDeltas reads the coalesced ADD amounts a Write would apply to a
// given account id, for asserting against the expected balance deltas.
func accountDeltas(t *testing.T, w Write, accountID string) (debit, credit uint64) {
	t.Helper()
	for _, item := range w.Items {
		if item.Update == nil {
			continue
		}
		key, ok := item.Update.Key["id"].(*types.AttributeValueMemberS)
		require.True(t, ok)
		if key.Value != accountID {
			continue
		}
		d := item.Update.ExpressionAttributeValues[":debit_amount"].(*types.AttributeValueMemberN)
		c := item.Update.ExpressionAttributeValues[":credit_amount"].(*types.AttributeValueMemberN)
		dv, err := strconv.ParseUint(d.Value, 10, 64)
		require.NoError(t, err)
		cv, err := strconv.ParseUint(c.Value, 10, 64)
		require.NoError(t, err)
		return dv, cv
	}
	t.Fatalf("no update item found for account %q", accountID)
	return 0, 0
}

func countKind(w Write) (puts, updates int) {
	for _, item := range w.Items {
		if item.Put != nil {
			puts++
		}
		if item.Update != nil {
			updates++
		}
	}
	return
}

// Seed scenario 3: three transfers {1->2:10, 2->1:20, 1->3:30}.
func TestBuildBatch_ThreeTransfersCoalesce(t *testing.T) {
	transfers := []Transfer{
		transfer("1", "2", 10),
		transfer("2", "1", 20),
		transfer("1", "3", 30),
	}

	w, err := BuildBatch(transfers)
	require.NoError(t, err)

	puts, updates := countKind(w)
	assert.Equal(t, 3, puts)
	assert.Equal(t, 3, updates)
	assert.Equal(t, 6, w.ItemsWritten())

	d1, c1 := accountDeltas(t, w, "1")
	assert.EqualValues(t, 40, d1) // debits: 10 (->2) + 30 (->3)
	assert.EqualValues(t, 20, c1) // credits: 20 (from 2)

	d2, c2 := accountDeltas(t, w, "2")
	assert.EqualValues(t, 20, d2) // debits: 20 (->1)
	assert.EqualValues(t, 10, c2) // credits: 10 (from 1)

	d3, c3 := accountDeltas(t, w, "3")
	assert.EqualValues(t, 0, d3)
	assert.EqualValues(t, 30, c3)
}

// Seed scenario 6: five transfers all 1->2 with amounts {1,2,3,4,5}.
func TestBuildBatch_ExactCoalescing(t *testing.T) {
	transfers := []Transfer{
		transfer("1", "2", 1),
		transfer("1", "2", 2),
		transfer("1", "2", 3),
		transfer("1", "2", 4),
		transfer("1", "2", 5),
	}

	w, err := BuildBatch(transfers)
	require.NoError(t, err)

	puts, updates := countKind(w)
	assert.Equal(t, 5, puts)
	assert.Equal(t, 2, updates)

	d1, c1 := accountDeltas(t, w, "1")
	assert.EqualValues(t, 15, d1)
	assert.EqualValues(t, 0, c1)

	d2, c2 := accountDeltas(t, w, "2")
	assert.EqualValues(t, 0, d2)
	assert.EqualValues(t, 15, c2)
}

func TestBuildBatch_EachAccountAppearsAtMostOnce(t *testing.T) {
	transfers := []Transfer{
		transfer("A", "B", 1),
		transfer("B", "C", 2),
		transfer("C", "A", 3),
		transfer("A", "B", 4),
	}
	w, err := BuildBatch(transfers)
	require.NoError(t, err)

	seen := map[string]int{}
	for _, item := range w.Items {
		if item.Update == nil {
			continue
		}
		key := item.Update.Key["id"].(*types.AttributeValueMemberS).Value
		seen[key]++
	}
	for account, count := range seen {
		assert.Equal(t, 1, count, "account %s should have exactly one update item", account)
	}
}

func TestBuildBatch_FreshTokenEveryCall(t *testing.T) {
	transfers := []Transfer{transfer("1", "2", 5)}
	w1, err := BuildBatch(transfers)
	require.NoError(t, err)
	w2, err := BuildBatch(transfers)
	require.NoError(t, err)
	assert.NotEqual(t, w1.ClientRequestToken, w2.ClientRequestToken)
}

func TestBuildBatch_RejectsEmptyAndOversizedBatches(t *testing.T) {
	_, err := BuildBatch(nil)
	assert.Error(t, err)

	oversized := make([]Transfer, MaxBatchSize+1)
	for i := range oversized {
		oversized[i] = transfer("1", "2", 1)
	}
	_, err = BuildBatch(oversized)
	assert.Error(t, err)
}
