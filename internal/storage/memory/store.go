package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/leozw/pdns-rest/internal/core"
)

var ErrTxDone = errors.New("transaction has already been committed or rolled back")

// Store keeps domains, records and supermasters in process memory. Record
// transactions are serialized: a second BeginRecords blocks until the
// first one finishes.
type Store struct {
	mu           sync.RWMutex
	txMu         sync.Mutex
	nextDomainID int64
	nextRecordID int64
	domains      map[int64]*core.Domain
	records      map[int64][]*core.Record
	supermasters []*core.Supermaster
}

func NewStore() *Store {
	return &Store{
		domains: make(map[int64]*core.Domain),
		records: make(map[int64][]*core.Record),
	}
}

func (s *Store) FindDomainByName(ctx context.Context, name string) (*core.Domain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *core.Domain
	for _, d := range s.domains {
		if d.Name == name && (found == nil || d.ID < found.ID) {
			found = d
		}
	}
	if found == nil {
		return nil, core.ErrNotFound
	}

	domain := *found
	return &domain, nil
}

func (s *Store) CreateDomain(ctx context.Context, domain *core.Domain) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextDomainID++
	domain.ID = s.nextDomainID
	stored := *domain
	s.domains[domain.ID] = &stored
	return nil
}

func (s *Store) SetDomainType(ctx context.Context, id int64, domainType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.domains[id]
	if !ok {
		return core.ErrNotFound
	}
	stored.Type = domainType
	return nil
}

func (s *Store) ListRecords(ctx context.Context, domainID int64) ([]*core.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*core.Record, 0, len(s.records[domainID]))
	for _, r := range s.records[domainID] {
		record := *r
		records = append(records, &record)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Type != records[j].Type {
			return records[i].Type < records[j].Type
		}
		return records[i].Name < records[j].Name
	})

	return records, nil
}

func (s *Store) BeginRecords(ctx context.Context, domainID int64) (core.RecordTx, error) {
	s.txMu.Lock()

	s.mu.RLock()
	_, ok := s.domains[domainID]
	s.mu.RUnlock()
	if !ok {
		s.txMu.Unlock()
		return nil, core.ErrNotFound
	}

	return &recordTx{store: s, domainID: domainID}, nil
}

func (s *Store) UpsertSupermaster(ctx context.Context, sm *core.Supermaster) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *sm
	for i, existing := range s.supermasters {
		if existing.IP == sm.IP && existing.Nameserver == sm.Nameserver {
			s.supermasters[i] = &stored
			return nil
		}
	}
	s.supermasters = append(s.supermasters, &stored)
	return nil
}

func (s *Store) ListSupermasters(ctx context.Context) ([]*core.Supermaster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sms := make([]*core.Supermaster, 0, len(s.supermasters))
	for _, sm := range s.supermasters {
		stored := *sm
		sms = append(sms, &stored)
	}
	return sms, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return nil
}

func (s *Store) Close() error {
	return nil
}

// recordTx stages a destroy and a batch of inserts and applies both on
// Commit, assigning IDs to the saved records.
type recordTx struct {
	store     *Store
	domainID  int64
	destroyed bool
	staged    []*core.Record
	done      bool
}

func (tx *recordTx) DestroyAll(ctx context.Context) error {
	if tx.done {
		return ErrTxDone
	}
	tx.destroyed = true
	tx.staged = nil
	return nil
}

func (tx *recordTx) Save(ctx context.Context, records []*core.Record) error {
	if tx.done {
		return ErrTxDone
	}
	tx.staged = append(tx.staged, records...)
	return nil
}

func (tx *recordTx) Commit() error {
	if tx.done {
		return ErrTxDone
	}
	tx.done = true
	defer tx.store.txMu.Unlock()

	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.records[tx.domainID]
	if tx.destroyed {
		current = nil
	}
	for _, r := range tx.staged {
		s.nextRecordID++
		r.ID = s.nextRecordID
		r.DomainID = tx.domainID
		record := *r
		current = append(current, &record)
	}
	s.records[tx.domainID] = current
	return nil
}

func (tx *recordTx) Rollback() error {
	if tx.done {
		return nil
	}
	tx.done = true
	tx.staged = nil
	tx.store.txMu.Unlock()
	return nil
}
