package tnclient

import (
	"context"
	"time"

	clientType "github.com/trufnetwork/kwil-db/core/client/types"
	"github.com/trufnetwork/kwil-db/core/crypto/auth"
	"github.com/trufnetwork/kwil-db/core/types"

	"github.com/trufnetwork/orderbook-go/core/contractsapi"
)

// Transport is the connection to a node. Order books and attestation actions
// only use Call and Execute; the client itself uses WaitTx and Signer.
//
// HTTPTransport is the default. Tests and alternative runtimes supply their own
// through WithTransport:
//
//	client, err := tnclient.NewClient(ctx, "",
//	    tnclient.WithSigner(signer),
//	    tnclient.WithTransport(myTransport),
//	)
type Transport interface {
	// Call runs a read-only action. Namespace is "" for the order book actions.
	Call(ctx context.Context, namespace string, action string, inputs []any) (*types.CallResult, error)

	// Execute signs and broadcasts an action. The returned hash only means the
	// node accepted the transaction; see Client.WaitForConfirmation.
	Execute(ctx context.Context, namespace string, action string, inputs [][]any, opts ...clientType.TxOpt) (types.Hash, error)

	// WaitTx polls at interval until the node reports a result or ctx ends.
	WaitTx(ctx context.Context, txHash types.Hash, interval time.Duration) (*types.TxQueryResponse, error)

	// ChainID identifies the network transactions are signed for.
	ChainID() string

	// Signer is nil in read-only mode.
	Signer() auth.Signer
}

var _ contractsapi.ActionClient = (Transport)(nil)
