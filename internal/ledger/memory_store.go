package ledger

import (
	"sort"
	"sync"
)

type InMemoryStore struct {
	mu sync.Mutex

	records   map[string]Record
	contracts map[string]ContractVersion
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records:   make(map[string]Record),
		contracts: make(map[string]ContractVersion),
	}
}

func (s *InMemoryStore) WithTx(fn func(Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn((*memTx)(s))
}

type memTx InMemoryStore

func (s *InMemoryStore) PutRecord(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	putRecord(s.records, rec)
	return nil
}

func (s *InMemoryStore) GetRecord(recordID string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[recordID]
	return rec, ok
}

func (s *InMemoryStore) ListRecords(q RecordQuery) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return listRecords(s.records, q), nil
}

func (s *InMemoryStore) PutContractVersion(v ContractVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	putContractVersion(s.contracts, v)
	return nil
}

func (s *InMemoryStore) GetContractVersion(digest string) (ContractVersion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.contracts[digest]
	return v, ok
}

func (t *memTx) PutRecord(rec Record) error {
	putRecord((*InMemoryStore)(t).records, rec)
	return nil
}

func (t *memTx) GetRecord(recordID string) (Record, bool) {
	rec, ok := (*InMemoryStore)(t).records[recordID]
	return rec, ok
}

func (t *memTx) PutContractVersion(v ContractVersion) error {
	putContractVersion((*InMemoryStore)(t).contracts, v)
	return nil
}

func (t *memTx) GetContractVersion(digest string) (ContractVersion, bool) {
	v, ok := (*InMemoryStore)(t).contracts[digest]
	return v, ok
}

// putRecord keeps the first write. Records are insert-only; re-putting the
// same record id is a no-op, matching ON CONFLICT DO NOTHING in the SQL
// stores.
func putRecord(records map[string]Record, rec Record) {
	if _, exists := records[rec.RecordID]; exists {
		return
	}
	records[rec.RecordID] = rec
}

func putContractVersion(contracts map[string]ContractVersion, v ContractVersion) {
	if _, exists := contracts[v.Digest]; exists {
		return
	}
	contracts[v.Digest] = v
}

func listRecords(records map[string]Record, q RecordQuery) []Record {
	out := []Record{}
	for _, rec := range records {
		if q.Environment != "" && rec.Environment != q.Environment {
			continue
		}
		if q.Decision != "" && rec.Decision != q.Decision {
			continue
		}
		if q.Commit != "" && rec.Commit != q.Commit {
			continue
		}
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp > out[j].Timestamp
		}
		return out[i].RecordID < out[j].RecordID
	})

	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
