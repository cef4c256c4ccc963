package ledger

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"brokle-loadtest/pkg/ulid"
)

// MaxBatchSize is the external transactional-write boundary: at most this
// many transfers may go into one BuildBatch call. The resulting Write holds
// one put per transfer plus the coalesced updates, so its item count can
// exceed MaxBatchSize.
const MaxBatchSize = 33

const (
	transfersTable = "transfers"
	accountsTable  = "accounts"
)

// Write is a single transactional write: one put-if-absent item per
// transfer plus one coalesced balance-update item per account touched.
// ClientRequestToken is fresh on every call to BuildBatch, giving the sink
// an idempotency key for the whole write.
type Write struct {
	ClientRequestToken string
	Items              []types.TransactWriteItem
}

// ItemsWritten is the length of the write's item list (puts + coalesced
// updates), which is what a sink reports back as items written — it is not
// len(transfers), since coalescing can shrink the update count well below
// one-per-transfer.
func (w Write) ItemsWritten() int {
	return len(w.Items)
}

// Result is what a sink returns for a successful (or idempotently replayed)
// TransactWrite call.
type Result struct {
	ItemsWritten          int
	ConsumedCapacityUnits float64
}

// ConflictError is returned by a Sink when a put-if-absent condition fails:
// a transfer id in the batch already exists under a different client
// request token.
type ConflictError struct {
	Key string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("ledger: condition failed for key %q", e.Key)
}

// Sink is the external transactional-write boundary the ledger workload
// writes through: an atomic multi-item write supporting put-if-absent and
// numeric increment, keyed by an idempotency token.
type Sink interface {
	TransactWrite(ctx context.Context, w Write) (Result, error)
}

// balanceUpdate is the in-progress coalesced update for one account: the
// sums of every debit and credit amount any transfer in the batch applied
// to it.
type balanceUpdate struct {
	accountID    string
	debitAmount  uint64
	creditAmount uint64
}

// BuildBatch coalesces transfers into a single transactional write: one
// put-if-absent per transfer, plus exactly one balance-update operation per
// distinct account touched, whose ADD amounts are the sums of that
// account's debit and credit contributions across every transfer in the
// batch.
func BuildBatch(transfers []Transfer) (Write, error) {
	if len(transfers) == 0 {
		return Write{}, fmt.Errorf("ledger: cannot build a batch from zero transfers")
	}
	if len(transfers) > MaxBatchSize {
		return Write{}, fmt.Errorf("ledger: batch of %d transfers exceeds the sink's transactional limit of %d", len(transfers), MaxBatchSize)
	}

	updatesByAccount := make(map[string]*balanceUpdate)
	var order []string

	coalesce := func(accountID string, debit, credit uint64) {
		u, ok := updatesByAccount[accountID]
		if !ok {
			u = &balanceUpdate{accountID: accountID}
			updatesByAccount[accountID] = u
			order = append(order, accountID)
		}
		u.debitAmount += debit
		u.creditAmount += credit
	}

	items := make([]types.TransactWriteItem, 0, len(transfers)+len(transfers))
	for _, t := range transfers {
		items = append(items, putTransferItem(t))
		coalesce(t.DebitAccountID, t.Amount, 0)
		coalesce(t.CreditAccountID, 0, t.Amount)
	}

	for _, accountID := range order {
		items = append(items, updateBalanceItem(*updatesByAccount[accountID]))
	}

	return Write{
		ClientRequestToken: ulid.New().String(),
		Items:              items,
	}, nil
}

func putTransferItem(t Transfer) types.TransactWriteItem {
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName: aws.String(transfersTable),
			Item: map[string]types.AttributeValue{
				"id":                &types.AttributeValueMemberS{Value: t.ID.String()},
				"debit_account_id":  &types.AttributeValueMemberS{Value: t.DebitAccountID},
				"credit_account_id": &types.AttributeValueMemberS{Value: t.CreditAccountID},
				"amount":            &types.AttributeValueMemberN{Value: strconv.FormatUint(t.Amount, 10)},
				"ledger_id":         &types.AttributeValueMemberS{Value: t.LedgerID},
			},
			ConditionExpression: aws.String("attribute_not_exists(id)"),
		},
	}
}

func updateBalanceItem(u balanceUpdate) types.TransactWriteItem {
	return types.TransactWriteItem{
		Update: &types.Update{
			TableName: aws.String(accountsTable),
			Key: map[string]types.AttributeValue{
				"id": &types.AttributeValueMemberS{Value: u.accountID},
			},
			UpdateExpression: aws.String("ADD debits_posted :debit_amount, credits_posted :credit_amount"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":debit_amount":  &types.AttributeValueMemberN{Value: strconv.FormatUint(u.debitAmount, 10)},
				":credit_amount": &types.AttributeValueMemberN{Value: strconv.FormatUint(u.creditAmount, 10)},
			},
		},
	}
}
