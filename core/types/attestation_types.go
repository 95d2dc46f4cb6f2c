package types

import (
	"context"

	kwilClientType "github.com/trufnetwork/kwil-db/core/client/types"
	kwiltypes "github.com/trufnetwork/kwil-db/core/types"
)

// SignatureLength is the trailing recoverable signature: r(32) || s(32) || v(1).
const SignatureLength = 65

// MinSignedPayloadLength is the shortest payload that has at least one canonical byte.
const MinSignedPayloadLength = SignatureLength + 1

// RequestAttestationInput asks validators to sign the result of an action.
type RequestAttestationInput struct {
	DataProvider string
	StreamID     string
	ActionName   string
	Args         []any
	MaxFee       string // NUMERIC(78,0) wei, empty for the node default
}

func (r *RequestAttestationInput) Validate() error {
	if err := ValidateWalletHex("data_provider", r.DataProvider); err != nil {
		return err
	}
	if len(r.StreamID) != 32 {
		return invalidf("stream_id", "must be 32 characters, got %d", len(r.StreamID))
	}
	if _, ok := LookupAction(r.ActionName); !ok {
		return invalidf("action_name", "unknown action %q", r.ActionName)
	}
	return nil
}

// GetSignedAttestationInput points at the request transaction.
type GetSignedAttestationInput struct {
	RequestTxID string
}

func (g *GetSignedAttestationInput) Validate() error {
	if g.RequestTxID == "" {
		return invalidf("request_tx_id", "cannot be empty")
	}
	return nil
}

// MaxAttestationPage caps one list_attestations page.
const MaxAttestationPage = 5000

var attestationOrderings = map[string]bool{
	"created_height ASC": true, "created_height DESC": true,
	"created_height asc": true, "created_height desc": true,
	"signed_height ASC": true, "signed_height DESC": true,
	"signed_height asc": true, "signed_height desc": true,
}

// ListAttestationsInput pages through attestation requests. Every field is
// optional; Limit defaults to MaxAttestationPage.
type ListAttestationsInput struct {
	Requester []byte  // 20-byte wallet filter
	Limit     *int    // 1..MaxAttestationPage
	Offset    *int    // >= 0
	OrderBy   *string // "created_height" or "signed_height", then ASC or DESC
}

func (l *ListAttestationsInput) Validate() error {
	if len(l.Requester) > 20 {
		return invalidf("requester", "must be at most 20 bytes, got %d", len(l.Requester))
	}
	if l.Limit != nil && (*l.Limit < 1 || *l.Limit > MaxAttestationPage) {
		return invalidf("limit", "must be between 1 and %d, got %d", MaxAttestationPage, *l.Limit)
	}
	if l.Offset != nil && *l.Offset < 0 {
		return invalidf("offset", "must be non-negative, got %d", *l.Offset)
	}
	if l.OrderBy != nil && !attestationOrderings[*l.OrderBy] {
		return invalidf("order_by", "must be created_height or signed_height followed by ASC or DESC, got %q", *l.OrderBy)
	}
	return nil
}

// AttestationMetadata is one row of list_attestations.
type AttestationMetadata struct {
	RequestTxID     string `json:"request_tx_id"`
	AttestationHash []byte `json:"attestation_hash"`
	Requester       []byte `json:"requester"`
	CreatedHeight   int64  `json:"created_height"`
	SignedHeight    *int64 `json:"signed_height"` // nil until validators sign
	EncryptSig      bool   `json:"encrypt_sig"`
}

// SignedAttestation is the canonical payload followed by the signature.
type SignedAttestation struct {
	Payload []byte
}

// Canonical returns the signed prefix, or nil when the payload is too short.
func (s *SignedAttestation) Canonical() []byte {
	if len(s.Payload) < MinSignedPayloadLength {
		return nil
	}
	return s.Payload[:len(s.Payload)-SignatureLength]
}

// DecodedRow is one row of an attested result.
type DecodedRow struct {
	Values []any `json:"values"`
}

// ParsedAttestationPayload is the decoded canonical part of an attestation.
type ParsedAttestationPayload struct {
	Version      uint8        `json:"version"`
	Algorithm    uint8        `json:"algorithm"` // 0 = secp256k1
	BlockHeight  uint64       `json:"block_height"`
	DataProvider string       `json:"data_provider"`
	StreamID     string       `json:"stream_id"`
	ActionID     uint16       `json:"action_id"`
	Arguments    []any        `json:"arguments"`
	Result       []DecodedRow `json:"result,omitempty"`
	// BooleanResult is set instead of Result for binary actions.
	BooleanResult *bool `json:"boolean_result,omitempty"`
}

// ActionName resolves the discriminator through the action registry.
func (p *ParsedAttestationPayload) ActionName() string {
	if a, ok := LookupActionID(p.ActionID); ok {
		return a.Name
	}
	return ""
}

// IAttestationAction requests and fetches signed attestations.
type IAttestationAction interface {
	// RequestAttestation
	// Maps to: request_attestation($data_provider, $stream_id, $action_name, $args_bytes, $encrypt_sig, $max_fee)
	RequestAttestation(ctx context.Context, input RequestAttestationInput,
		opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error)

	// GetSignedAttestation
	// Maps to: get_signed_attestation($request_tx_id)
	GetSignedAttestation(ctx context.Context, input GetSignedAttestationInput) (*SignedAttestation, error)

	// ListAttestations
	// Maps to: list_attestations($requester, $limit, $offset, $order_by)
	ListAttestations(ctx context.Context, input ListAttestationsInput) (QueryResponse[[]AttestationMetadata], error)
}
