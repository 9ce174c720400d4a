package record

import (
	"encoding/json"
	"fmt"

	"github.com/evalgate/evalgate/pkg/types"
)

// HashEvalResults returns the SHA-256 hex digest of the JSON encoding of a
// result set. encoding/json sorts map keys, so value-equal metric maps hash
// identically regardless of construction order.
func HashEvalResults(results []types.NormalizedEvalResult) (string, error) {
	data, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("encode eval results: %w", err)
	}
	return DigestHex(data), nil
}

// HashSignals returns the SHA-256 hex digest of the JSON encoding of a
// signal set.
func HashSignals(signals []types.Signal) (string, error) {
	data, err := json.Marshal(signals)
	if err != nil {
		return "", fmt.Errorf("encode signals: %w", err)
	}
	return DigestHex(data), nil
}

// HashContract returns the SHA-256 hex digest of the JSON encoding of a
// contract.
func HashContract(c types.EvalContract) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode contract: %w", err)
	}
	return DigestHex(data), nil
}
