package types

import (
	"context"
	"time"

	kwiltypes "github.com/trufnetwork/kwil-db/core/types"
)

type Client interface {
	// WaitForTx blocks until the node reports a result for the transaction
	WaitForTx(ctx context.Context, txHash kwiltypes.Hash, interval time.Duration) (*kwiltypes.TxQueryResponse, error)
	// WaitForConfirmation is WaitForTx bounded by timeout; a non-OK result becomes a *TransactionFailedError
	WaitForConfirmation(ctx context.Context, txHash kwiltypes.Hash, interval, timeout time.Duration) (*kwiltypes.TxQueryResponse, error)
	// Address of the signer used by the client
	Address() string
	// LoadOrderBook returns the order book bound to this client
	LoadOrderBook() (IOrderBook, error)
	// LoadAttestationActions returns the attestation actions bound to this client
	LoadAttestationActions() (IAttestationAction, error)
}
