package explorer

import (
	"context"

	"github.com/shopspring/decimal"
)

// Transfer is one inbound value transfer observed on an external ledger.
type Transfer struct {
	TxID        string
	Amount      decimal.Decimal
	From        string
	To          string
	BlockHeight uint64
}

// Client lists transfers to an address, starting at a block height cursor.
// Implementations return transfers in ascending block order and may return
// transfers already seen in earlier windows; callers deduplicate by TxID.
type Client interface {
	ListTransfers(ctx context.Context, address string, sinceHeight uint64) ([]*Transfer, error)
}
