package contractsapi

import (
	"crypto/sha256"
	"fmt"

	"github.com/pkg/errors"
	"github.com/trufnetwork/kwil-db/core/crypto"

	"github.com/trufnetwork/orderbook-go/core/metrics"
	"github.com/trufnetwork/orderbook-go/core/types"
)

// VerifyAttestationSignature recovers the validator address that signed an attestation.
//
// The payload is canonical bytes followed by a 65-byte r||s||v signature over
// sha256(canonical). V may be in Ethereum form (27/28). The address is returned
// as lowercase 0x hex.
func VerifyAttestationSignature(fullPayload []byte) (string, error) {
	if len(fullPayload) < types.MinSignedPayloadLength {
		metrics.AttestationVerifications.WithLabelValues(metrics.StatusInvalid).Inc()
		return "", errors.WithStack(&types.ValidationError{
			Reason: fmt.Sprintf("payload too short (%d bytes), expected at least %d",
				len(fullPayload), types.MinSignedPayloadLength),
		})
	}

	signatureOffset := len(fullPayload) - types.SignatureLength
	hash := sha256.Sum256(fullPayload[:signatureOffset])

	// kwil-db expects a raw recovery id (0-3)
	sig := make([]byte, types.SignatureLength)
	copy(sig, fullPayload[signatureOffset:])
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	pubKey, err := crypto.RecoverSecp256k1KeyFromSigHash(hash[:], sig)
	if err != nil {
		metrics.AttestationVerifications.WithLabelValues(metrics.StatusFailed).Inc()
		return "", errors.Wrap(err, "failed to recover public key from signature")
	}

	metrics.AttestationVerifications.WithLabelValues(metrics.StatusOK).Inc()
	return fmt.Sprintf("0x%x", crypto.EthereumAddressFromPubKey(pubKey)), nil
}
