package tnclient

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/trufnetwork/kwil-db/core/crypto"
	"github.com/trufnetwork/kwil-db/core/crypto/auth"
	"github.com/trufnetwork/kwil-db/core/gatewayclient"
	"github.com/trufnetwork/kwil-db/core/log"
	kwilType "github.com/trufnetwork/kwil-db/core/types"
	"go.uber.org/zap"

	"github.com/trufnetwork/orderbook-go/core/contractsapi"
	"github.com/trufnetwork/orderbook-go/core/logging"
	"github.com/trufnetwork/orderbook-go/core/metrics"
	clientType "github.com/trufnetwork/orderbook-go/core/types"
)

const (
	DefaultPollInterval        = time.Second
	DefaultConfirmationTimeout = 30 * time.Second
)

// ErrConfirmationTimeout is returned when a transaction has no result before the wait deadline.
// The transaction may still be included later; it is never resubmitted.
var ErrConfirmationTimeout = errors.New("confirmation timed out")

type Client struct {
	Signer    auth.Signer `validate:"required"`
	logger    log.Logger
	transport Transport `validate:"required"`
	cache     clientType.MarketCache
	now       func() time.Time
	optErr    error
}

var _ clientType.Client = (*Client)(nil)

type Option func(*Client)

// NewClient connects to provider over HTTP unless WithTransport supplies a transport.
func NewClient(ctx context.Context, provider string, options ...Option) (*Client, error) {
	c := &Client{now: time.Now}
	for _, option := range options {
		option(c)
	}
	if c.optErr != nil {
		return nil, c.optErr
	}

	if c.transport == nil {
		transport, err := NewHTTPTransport(ctx, provider, c.Signer, c.logger)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		c.transport = transport
	}

	// Validate the client
	if err := c.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}

	return c, nil
}

func (c *Client) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.transport == nil {
		return errors.New("transport is required")
	}
	return nil
}

func WithSigner(signer auth.Signer) Option {
	return func(c *Client) {
		c.Signer = signer
	}
}

// WithPrivateKey signs with an Ethereum personal-sign key given as hex.
func WithPrivateKey(privateKeyHex string) Option {
	return func(c *Client) {
		pk, err := crypto.Secp256k1PrivateKeyFromHex(strings.TrimPrefix(privateKeyHex, "0x"))
		if err != nil {
			c.optErr = errors.Wrap(err, "parse private key")
			return
		}
		c.Signer = &auth.EthPersonalSigner{Key: *pk}
	}
}

func WithLogger(logger log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTransport replaces the default HTTP transport.
func WithTransport(transport Transport) Option {
	return func(c *Client) {
		c.transport = transport
	}
}

// WithMarketCache makes order books consult cache before reading market metadata.
func WithMarketCache(cache clientType.MarketCache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithClock overrides the clock used for local settle-time checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func (c *Client) GetSigner() auth.Signer {
	return c.transport.Signer()
}

// GetKwilClient returns the gateway client, or nil for non-HTTP transports.
func (c *Client) GetKwilClient() *gatewayclient.GatewayClient {
	if t, ok := c.transport.(*HTTPTransport); ok {
		return t.gw
	}
	return nil
}

func (c *Client) WaitForTx(ctx context.Context, txHash kwilType.Hash, interval time.Duration) (*kwilType.TxQueryResponse, error) {
	return c.transport.WaitTx(ctx, txHash, interval)
}

// WaitForConfirmation polls for the result of txHash for at most timeout.
// A result with a non-OK code is returned together with a *TransactionFailedError.
func (c *Client) WaitForConfirmation(ctx context.Context, txHash kwilType.Hash, interval, timeout time.Duration) (*kwilType.TxQueryResponse, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultConfirmationTimeout
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.transport.WaitTx(waitCtx, txHash, interval)
	metrics.ConfirmationDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			metrics.Confirmations.WithLabelValues(metrics.StatusTimeout).Inc()
			return nil, errors.Wrapf(ErrConfirmationTimeout, "tx %s after %s", txHash, timeout)
		}
		metrics.Confirmations.WithLabelValues(metrics.StatusError).Inc()
		return nil, errors.Wrapf(err, "failed to wait for tx %s", txHash)
	}

	if resp.Result != nil && resp.Result.Code != uint32(kwilType.CodeOk) {
		metrics.Confirmations.WithLabelValues(metrics.StatusFailed).Inc()
		logging.Logger.Debug("transaction failed",
			zap.String("tx_hash", txHash.String()),
			zap.Uint32("code", resp.Result.Code),
			zap.String("log", resp.Result.Log))
		return resp, &clientType.TransactionFailedError{
			TxHash: txHash.String(),
			Height: resp.Height,
			Code:   resp.Result.Code,
			Log:    resp.Result.Log,
			Kind:   clientType.ClassifyRemoteMessage(resp.Result.Log),
		}
	}

	metrics.Confirmations.WithLabelValues(metrics.StatusOK).Inc()
	return resp, nil
}

// Address is the lowercase 0x address of the signer, or "" without one.
func (c *Client) Address() string {
	signer := c.transport.Signer()
	if signer == nil {
		signer = c.Signer
	}
	if signer == nil {
		return ""
	}
	addr, err := auth.EthSecp256k1Authenticator{}.Identifier(signer.CompactID())
	if err != nil {
		// should never happen
		logging.Logger.Panic("failed to get address from signer", zap.Error(err))
	}
	return strings.ToLower(addr)
}

func (c *Client) LoadOrderBook() (clientType.IOrderBook, error) {
	return contractsapi.LoadOrderBook(contractsapi.NewOrderBookOptions{
		Client:              c.transport,
		Cache:               c.cache,
		DefaultDataProvider: c.Address(),
		Now:                 c.now,
	})
}

func (c *Client) LoadAttestationActions() (clientType.IAttestationAction, error) {
	return contractsapi.LoadAttestationActions(contractsapi.AttestationActionOptions{
		Client: c.transport,
	})
}
