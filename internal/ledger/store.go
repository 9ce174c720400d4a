// Package ledger persists decision records and the contract versions they
// were decided under. Records are write-once audit artifacts: stores never
// overwrite an existing record id.
package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/evalgate/evalgate/pkg/types"
)

type Store interface {
	WithTx(fn func(Tx) error) error

	PutRecord(rec Record) error
	GetRecord(recordID string) (Record, bool)
	ListRecords(q RecordQuery) ([]Record, error)

	PutContractVersion(v ContractVersion) error
	GetContractVersion(digest string) (ContractVersion, bool)
}

type Tx interface {
	PutRecord(rec Record) error
	GetRecord(recordID string) (Record, bool)

	PutContractVersion(v ContractVersion) error
	GetContractVersion(digest string) (ContractVersion, bool)
}

// Record is one persisted decision record row. BodyJSON preserves the exact
// serialized artifact so its digest stays verifiable; the remaining columns
// are indexed copies for querying.
type Record struct {
	RecordID    string
	Commit      string
	Environment string
	Decision    string
	PolicyHash  string
	Timestamp   string
	BodyJSON    []byte
}

// ContractVersion stores one contract source, keyed by the same contract
// hash a record carries as its policy hash, so any stored record can be
// resolved back to the contract text that produced it.
type ContractVersion struct {
	Digest       string
	Name         string
	Environment  string
	ContractYAML string
	CreatedAt    string
}

// RecordQuery filters ListRecords. Zero-valued fields do not filter; Limit
// defaults to 100. Results are ordered newest first.
type RecordQuery struct {
	Environment string
	Decision    string
	Commit      string
	Limit       int
}

// NewRecord converts a decision record into its storage row.
func NewRecord(rec types.DecisionRecord) (Record, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("encode record: %w", err)
	}
	row := Record{
		RecordID:    rec.RecordID,
		Commit:      rec.Commit,
		Environment: rec.Environment,
		Decision:    string(rec.Decision),
		Timestamp:   rec.Timestamp,
		BodyJSON:    body,
	}
	if rec.Inputs != nil {
		row.PolicyHash = rec.Inputs.PolicyHash
	}
	return row, nil
}
