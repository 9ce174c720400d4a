// Package sqlstore implements the ledger on SQLite via modernc.org/sqlite,
// a cgo-free driver, so single-binary CI use works without a toolchain.
package sqlstore

import (
	"context"
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/evalgate/evalgate/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func OpenSQLite(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db), nil
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) WithTx(fn func(ledger.Tx) error) error {
	tx, err := s.db.BeginTx(context.Background(), &sql.TxOptions{})
	if err != nil {
		return err
	}
	wrapped := &Tx{tx: tx}
	if err := fn(wrapped); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) PutRecord(rec ledger.Record) error {
	return s.WithTx(func(tx ledger.Tx) error { return tx.PutRecord(rec) })
}

func (s *Store) GetRecord(recordID string) (ledger.Record, bool) {
	var rec ledger.Record
	var body string
	row := s.db.QueryRow(`SELECT record_id, commit_sha, environment, decision, policy_hash, created_at, body_json
FROM decision_records WHERE record_id = ?`, recordID)
	if err := row.Scan(&rec.RecordID, &rec.Commit, &rec.Environment, &rec.Decision, &rec.PolicyHash, &rec.Timestamp, &body); err != nil {
		return ledger.Record{}, false
	}
	rec.BodyJSON = []byte(body)
	return rec, true
}

func (s *Store) ListRecords(q ledger.RecordQuery) ([]ledger.Record, error) {
	query := `SELECT record_id, commit_sha, environment, decision, policy_hash, created_at, body_json FROM decision_records`
	where := []string{}
	args := []any{}
	if q.Environment != "" {
		where = append(where, "environment = ?")
		args = append(args, q.Environment)
	}
	if q.Decision != "" {
		where = append(where, "decision = ?")
		args = append(args, q.Decision)
	}
	if q.Commit != "" {
		where = append(where, "commit_sha = ?")
		args = append(args, q.Commit)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " ORDER BY created_at DESC, record_id ASC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ledger.Record{}
	for rows.Next() {
		var rec ledger.Record
		var body string
		if err := rows.Scan(&rec.RecordID, &rec.Commit, &rec.Environment, &rec.Decision, &rec.PolicyHash, &rec.Timestamp, &body); err != nil {
			return nil, err
		}
		rec.BodyJSON = []byte(body)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) PutContractVersion(v ledger.ContractVersion) error {
	return s.WithTx(func(tx ledger.Tx) error { return tx.PutContractVersion(v) })
}

func (s *Store) GetContractVersion(digest string) (ledger.ContractVersion, bool) {
	var v ledger.ContractVersion
	row := s.db.QueryRow(`SELECT contract_digest, name, environment, contract_yaml, created_at
FROM contract_versions WHERE contract_digest = ?`, digest)
	if err := row.Scan(&v.Digest, &v.Name, &v.Environment, &v.ContractYAML, &v.CreatedAt); err != nil {
		return ledger.ContractVersion{}, false
	}
	return v, true
}

type Tx struct {
	tx *sql.Tx
}

func (t *Tx) PutRecord(rec ledger.Record) error {
	_, err := t.tx.Exec(
		`INSERT INTO decision_records(record_id, commit_sha, environment, decision, policy_hash, created_at, body_json)
VALUES(?,?,?,?,?,?,?)
ON CONFLICT(record_id) DO NOTHING`,
		rec.RecordID,
		rec.Commit,
		rec.Environment,
		rec.Decision,
		rec.PolicyHash,
		rec.Timestamp,
		string(rec.BodyJSON),
	)
	return err
}

func (t *Tx) GetRecord(recordID string) (ledger.Record, bool) {
	var rec ledger.Record
	var body string
	row := t.tx.QueryRow(`SELECT record_id, commit_sha, environment, decision, policy_hash, created_at, body_json
FROM decision_records WHERE record_id = ?`, recordID)
	if err := row.Scan(&rec.RecordID, &rec.Commit, &rec.Environment, &rec.Decision, &rec.PolicyHash, &rec.Timestamp, &body); err != nil {
		return ledger.Record{}, false
	}
	rec.BodyJSON = []byte(body)
	return rec, true
}

func (t *Tx) PutContractVersion(v ledger.ContractVersion) error {
	_, err := t.tx.Exec(
		`INSERT INTO contract_versions(contract_digest, name, environment, contract_yaml, created_at)
VALUES(?,?,?,?,?)
ON CONFLICT(contract_digest) DO NOTHING`,
		v.Digest,
		v.Name,
		v.Environment,
		v.ContractYAML,
		v.CreatedAt,
	)
	return err
}

func (t *Tx) GetContractVersion(digest string) (ledger.ContractVersion, bool) {
	var v ledger.ContractVersion
	row := t.tx.QueryRow(`SELECT contract_digest, name, environment, contract_yaml, created_at
FROM contract_versions WHERE contract_digest = ?`, digest)
	if err := row.Scan(&v.Digest, &v.Name, &v.Environment, &v.ContractYAML, &v.CreatedAt); err != nil {
		return ledger.ContractVersion{}, false
	}
	return v, true
}
