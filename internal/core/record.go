package core

import "context"

// Record is a row of the PowerDNS records table. Optional columns are
// pointers so that an absent value is stored as NULL.
type Record struct {
	ID         int64   `json:"id" db:"id"`
	DomainID   int64   `json:"domain_id" db:"domain_id"`
	Name       string  `json:"name" db:"name"`
	Type       string  `json:"type" db:"type"`
	Content    *string `json:"content,omitempty" db:"content"`
	TTL        *int    `json:"ttl,omitempty" db:"ttl"`
	Prio       *int    `json:"prio,omitempty" db:"prio"`
	ChangeDate *int64  `json:"change_date,omitempty" db:"change_date"`
}

const (
	MaxRecordNameLength    = 255
	MaxRecordTypeLength    = 40
	MaxRecordContentLength = 64000
)

// RecordTx replaces the record set of one domain. Nothing is visible to
// other readers until Commit; Rollback after Commit is a no-op.
type RecordTx interface {
	DestroyAll(ctx context.Context) error
	Save(ctx context.Context, records []*Record) error
	Commit() error
	Rollback() error
}
