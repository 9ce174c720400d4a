package sqlstore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/evalgate/evalgate/internal/ledger"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	s, err := OpenSQLite(dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if err := ledger.Migrate(s.DB(), ledger.DBSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func testRecord(id, env, decision, ts string) ledger.Record {
	return ledger.Record{
		RecordID:    id,
		Commit:      "abc1234",
		Environment: env,
		Decision:    decision,
		PolicyHash:  "ph",
		Timestamp:   ts,
		BodyJSON:    []byte(`{"record_id":"` + id + `"}`),
	}
}

func TestStoreCRUD(t *testing.T) {
	s := openTestStore(t)

	rec := testRecord("sha256:r1", "production", "PASS", "2026-03-01T12:00:00Z")
	if err := s.PutRecord(rec); err != nil {
		t.Fatalf("put record: %v", err)
	}
	got, ok := s.GetRecord("sha256:r1")
	if !ok || got.Environment != "production" || string(got.BodyJSON) != string(rec.BodyJSON) {
		t.Fatalf("get record mismatch: ok=%v got=%+v", ok, got)
	}
	if _, ok := s.GetRecord("sha256:missing"); ok {
		t.Fatal("expected miss for unknown record id")
	}

	v := ledger.ContractVersion{
		Digest:       "sha256:c1",
		Name:         "release-gate",
		Environment:  "production",
		ContractYAML: "version: 1\nname: release-gate\n",
		CreatedAt:    "2026-03-01T12:00:00Z",
	}
	if err := s.PutContractVersion(v); err != nil {
		t.Fatalf("put contract version: %v", err)
	}
	if got, ok := s.GetContractVersion("sha256:c1"); !ok || got.Name != "release-gate" {
		t.Fatalf("get contract version mismatch: ok=%v got=%+v", ok, got)
	}
}

func TestStoreInsertOnly(t *testing.T) {
	s := openTestStore(t)

	first := testRecord("sha256:r1", "production", "PASS", "2026-03-01T12:00:00Z")
	if err := s.PutRecord(first); err != nil {
		t.Fatalf("put record: %v", err)
	}

	overwrite := first
	overwrite.Decision = "BLOCK"
	if err := s.PutRecord(overwrite); err != nil {
		t.Fatalf("re-put record: %v", err)
	}

	got, _ := s.GetRecord("sha256:r1")
	if got.Decision != "PASS" {
		t.Fatalf("records are write-once; got %s", got.Decision)
	}
}

func TestStoreListRecords(t *testing.T) {
	s := openTestStore(t)

	records := []ledger.Record{
		testRecord("sha256:r1", "production", "PASS", "2026-03-01T10:00:00Z"),
		testRecord("sha256:r2", "production", "BLOCK", "2026-03-01T11:00:00Z"),
		testRecord("sha256:r3", "staging", "PASS", "2026-03-01T12:00:00Z"),
	}
	for _, rec := range records {
		if err := s.PutRecord(rec); err != nil {
			t.Fatalf("put record: %v", err)
		}
	}

	all, err := s.ListRecords(ledger.RecordQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].RecordID != "sha256:r3" || all[2].RecordID != "sha256:r1" {
		t.Fatalf("expected newest-first ordering, got %+v", all)
	}

	prod, err := s.ListRecords(ledger.RecordQuery{Environment: "production"})
	if err != nil {
		t.Fatalf("list production: %v", err)
	}
	if len(prod) != 2 {
		t.Fatalf("expected 2 production records, got %+v", prod)
	}

	blocked, err := s.ListRecords(ledger.RecordQuery{Decision: "BLOCK"})
	if err != nil {
		t.Fatalf("list blocked: %v", err)
	}
	if len(blocked) != 1 || blocked[0].RecordID != "sha256:r2" {
		t.Fatalf("unexpected blocked records %+v", blocked)
	}

	byCommit, err := s.ListRecords(ledger.RecordQuery{Commit: "abc1234", Limit: 1})
	if err != nil {
		t.Fatalf("list by commit: %v", err)
	}
	if len(byCommit) != 1 || byCommit[0].RecordID != "sha256:r3" {
		t.Fatalf("unexpected commit records %+v", byCommit)
	}
}

func TestWithTxRollback(t *testing.T) {
	s := openTestStore(t)

	err := s.WithTx(func(tx ledger.Tx) error {
		if err := tx.PutRecord(testRecord("sha256:rollback", "production", "PASS", "now")); err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := s.GetRecord("sha256:rollback"); ok {
		t.Fatalf("expected rollback to discard record")
	}
}

func TestTxGetters(t *testing.T) {
	s := openTestStore(t)

	err := s.WithTx(func(tx ledger.Tx) error {
		rec := testRecord("sha256:r-tx", "production", "PASS", "now")
		if err := tx.PutRecord(rec); err != nil {
			return err
		}
		if _, ok := tx.GetRecord("sha256:r-tx"); !ok {
			t.Fatalf("expected record")
		}

		v := ledger.ContractVersion{Digest: "sha256:c-tx", Name: "g", ContractYAML: "y", CreatedAt: "now"}
		if err := tx.PutContractVersion(v); err != nil {
			return err
		}
		if _, ok := tx.GetContractVersion("sha256:c-tx"); !ok {
			t.Fatalf("expected contract version")
		}

		return nil
	})
	if err != nil {
		t.Fatalf("withtx: %v", err)
	}
}
