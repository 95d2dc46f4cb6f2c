package contractsapi

import (
	"context"

	"github.com/pkg/errors"
	kwilClientType "github.com/trufnetwork/kwil-db/core/client/types"
	kwiltypes "github.com/trufnetwork/kwil-db/core/types"

	"github.com/trufnetwork/orderbook-go/core/logging"
	"github.com/trufnetwork/orderbook-go/core/types"
)

// AttestationAction implements attestation-related actions
type AttestationAction struct {
	actionRunner
}

var _ types.IAttestationAction = (*AttestationAction)(nil)

// AttestationActionOptions contains options for creating an AttestationAction
type AttestationActionOptions struct {
	Client ActionClient
}

// LoadAttestationActions creates a new attestation action handler
func LoadAttestationActions(opts AttestationActionOptions) (*AttestationAction, error) {
	if opts.Client == nil {
		return nil, errors.New("kwil client is required")
	}
	return &AttestationAction{
		actionRunner: actionRunner{_client: opts.Client, logger: logging.Logger.Named("attestation")},
	}, nil
}

// RequestAttestation submits a request for a signed attestation of query results.
// The returned hash is the request_tx_id used by GetSignedAttestation.
// Maps to: request_attestation($data_provider, $stream_id, $action_name, $args_bytes, $encrypt_sig, $max_fee)
func (a *AttestationAction) RequestAttestation(ctx context.Context, input types.RequestAttestationInput,
	opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error) {
	const action = "request_attestation"
	if err := input.Validate(); err != nil {
		return kwiltypes.Hash{}, a.invalid(action, err)
	}

	argsBytes, err := EncodeActionArgs(input.Args)
	if err != nil {
		return kwiltypes.Hash{}, a.invalid(action, err)
	}

	// NULL lets the node apply its default fee
	var maxFee any
	if input.MaxFee != "" {
		fee, err := kwiltypes.ParseDecimalExplicit(input.MaxFee, 78, 0)
		if err != nil {
			return kwiltypes.Hash{}, a.invalid(action, &types.ValidationError{
				Field: "max_fee", Reason: "must be a NUMERIC(78,0) integer: " + err.Error()})
		}
		maxFee = fee
	}

	return a.execute(ctx, action, [][]any{{
		input.DataProvider,
		input.StreamID,
		input.ActionName,
		argsBytes,
		false, // signatures are returned in the clear
		maxFee,
	}}, opts...)
}

// GetSignedAttestation retrieves a complete signed attestation payload
// Maps to: get_signed_attestation($request_tx_id)
func (a *AttestationAction) GetSignedAttestation(ctx context.Context,
	input types.GetSignedAttestationInput) (*types.SignedAttestation, error) {
	if err := input.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}

	result, _, err := a.call(ctx, "get_signed_attestation", []any{input.RequestTxID})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(result.Values) == 0 || len(result.Values[0]) == 0 {
		return nil, errors.WithStack(&types.NotFoundError{Resource: "attestation", Key: input.RequestTxID})
	}

	var payload []byte
	if err := extractBytesColumn(result.Values[0][0], &payload, 0, "payload"); err != nil {
		return nil, errors.WithStack(err)
	}
	if len(payload) == 0 {
		return nil, errors.WithStack(&types.NotFoundError{Resource: "attestation", Key: input.RequestTxID})
	}

	return &types.SignedAttestation{Payload: payload}, nil
}

// ListAttestations pages through attestation requests, optionally for one requester.
func (a *AttestationAction) ListAttestations(ctx context.Context,
	input types.ListAttestationsInput) (types.QueryResponse[[]types.AttestationMetadata], error) {
	if err := input.Validate(); err != nil {
		return types.QueryResponse[[]types.AttestationMetadata]{}, errors.WithStack(err)
	}

	limit := types.MaxAttestationPage
	if input.Limit != nil {
		limit = *input.Limit
	}
	offset := 0
	if input.Offset != nil {
		offset = *input.Offset
	}
	var requester, orderBy any
	if len(input.Requester) > 0 {
		requester = input.Requester
	}
	if input.OrderBy != nil {
		orderBy = *input.OrderBy
	}

	return collectRows(ctx, &a.actionRunner, "list_attestations",
		[]any{requester, limit, offset, orderBy}, parseAttestationMetadataRow)
}

// request_tx_id, attestation_hash, requester, created_height, signed_height, encrypt_sig
func parseAttestationMetadataRow(row []any) (types.AttestationMetadata, error) {
	var m types.AttestationMetadata
	s := newRowScanner(row, 6, "list_attestations")
	s.stringCol("request_tx_id", &m.RequestTxID)
	s.bytesCol("attestation_hash", &m.AttestationHash)
	s.bytesCol("requester", &m.Requester)
	s.int64Col("created_height", &m.CreatedHeight)
	s.optInt64("signed_height", &m.SignedHeight)
	s.boolCol("encrypt_sig", &m.EncryptSig)
	return m, s.Err()
}

// VerifiedAttestation is a signed attestation whose signer has been recovered.
type VerifiedAttestation struct {
	Signer  string
	Payload *types.ParsedAttestationPayload
}

// FetchVerifiedAttestation fetches a signed attestation, recovers its signer and
// decodes the canonical payload.
func (a *AttestationAction) FetchVerifiedAttestation(ctx context.Context,
	input types.GetSignedAttestationInput) (*VerifiedAttestation, error) {
	signed, err := a.GetSignedAttestation(ctx, input)
	if err != nil {
		return nil, err
	}

	signer, err := VerifyAttestationSignature(signed.Payload)
	if err != nil {
		return nil, err
	}
	parsed, err := ParseAttestationPayload(signed.Canonical())
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse attestation payload")
	}
	return &VerifiedAttestation{Signer: signer, Payload: parsed}, nil
}
