package tnclient

import (
	"context"
	"time"

	"github.com/pkg/errors"
	clientType "github.com/trufnetwork/kwil-db/core/client/types"
	"github.com/trufnetwork/kwil-db/core/crypto/auth"
	"github.com/trufnetwork/kwil-db/core/gatewayclient"
	"github.com/trufnetwork/kwil-db/core/log"
	"github.com/trufnetwork/kwil-db/core/types"
)

// HTTPTransport reaches the order book node through a kwil gateway over JSON-RPC.
// The gateway client keeps the auth cookie and signs in again after a 401.
type HTTPTransport struct {
	gw *gatewayclient.GatewayClient
}

var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport connects to the gateway at provider. A nil logger keeps
// the gateway client's default.
func NewHTTPTransport(ctx context.Context, provider string, signer auth.Signer, logger log.Logger) (*HTTPTransport, error) {
	opts := &gatewayclient.GatewayOptions{Options: *clientType.DefaultOptions()}
	opts.Signer = signer
	if logger != nil {
		opts.Logger = logger
	}

	gw, err := gatewayclient.NewClient(ctx, provider, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "connect to gateway %s", provider)
	}
	return &HTTPTransport{gw: gw}, nil
}

func (t *HTTPTransport) Call(ctx context.Context, namespace, action string, inputs []any) (*types.CallResult, error) {
	return t.gw.Call(ctx, namespace, action, inputs)
}

func (t *HTTPTransport) Execute(ctx context.Context, namespace, action string, inputs [][]any,
	opts ...clientType.TxOpt) (types.Hash, error) {
	return t.gw.Execute(ctx, namespace, action, inputs, opts...)
}

func (t *HTTPTransport) WaitTx(ctx context.Context, txHash types.Hash, interval time.Duration) (*types.TxQueryResponse, error) {
	return t.gw.WaitTx(ctx, txHash, interval)
}

func (t *HTTPTransport) ChainID() string     { return t.gw.ChainID() }
func (t *HTTPTransport) Signer() auth.Signer { return t.gw.Signer() }
