package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/leozw/pdns-rest/internal/core"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// Domain operations
func (r *Repository) FindDomainByName(ctx context.Context, name string) (*core.Domain, error) {
	var d core.Domain
	query := r.db.Rebind(`
        SELECT id, name, master, last_check, type, notified_serial, account
        FROM domains
        WHERE name = ?
        ORDER BY id
        LIMIT 1`)

	err := r.db.GetContext(ctx, &d, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repository) CreateDomain(ctx context.Context, d *core.Domain) error {
	query := `
        INSERT INTO domains (name, master, last_check, type, notified_serial, account)
        VALUES (?, ?, ?, ?, ?, ?)`

	id, err := r.insert(ctx, r.db, query,
		d.Name, d.Master, d.LastCheck, d.Type, d.NotifiedSerial, d.Account,
	)
	if err != nil {
		return err
	}
	d.ID = id
	return nil
}

// SetDomainType changes only the type column. The other columns belong to
// the DNS server and are never written back.
func (r *Repository) SetDomainType(ctx context.Context, id int64, domainType string) error {
	query := r.db.Rebind(`UPDATE domains SET type = ? WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query, domainType, id)
	if err != nil {
		return err
	}

	// MySQL reports zero affected rows when nothing changed, so only a
	// missing row is treated as an error.
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var exists bool
		check := r.db.Rebind(`SELECT EXISTS(SELECT 1 FROM domains WHERE id = ?)`)
		if err := r.db.GetContext(ctx, &exists, check, id); err != nil {
			return err
		}
		if !exists {
			return core.ErrNotFound
		}
	}
	return nil
}

// Record operations
func (r *Repository) ListRecords(ctx context.Context, domainID int64) ([]*core.Record, error) {
	records := []*core.Record{}
	query := r.db.Rebind(`
        SELECT id, domain_id, name, type, content, ttl, prio, change_date
        FROM records
        WHERE domain_id = ?
        ORDER BY type ASC, name ASC`)

	err := r.db.SelectContext(ctx, &records, query, domainID)
	return records, err
}

// BeginRecords opens a transaction for replacing the records of one
// domain. The domain row is locked so concurrent replacements of the same
// domain run one after the other.
func (r *Repository) BeginRecords(ctx context.Context, domainID int64) (core.RecordTx, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}

	var id int64
	lock := tx.Rebind(`SELECT id FROM domains WHERE id = ? FOR UPDATE`)
	if err := tx.GetContext(ctx, &id, lock, domainID); err != nil {
		tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}

	return &recordTx{repo: r, tx: tx, domainID: domainID}, nil
}

// Supermaster operations
func (r *Repository) UpsertSupermaster(ctx context.Context, sm *core.Supermaster) error {
	var query string
	switch r.db.DriverName() {
	case "mysql":
		query = `
        INSERT INTO supermasters (ip, nameserver, account)
        VALUES (?, ?, ?)
        ON DUPLICATE KEY UPDATE account = VALUES(account)`
	default:
		query = `
        INSERT INTO supermasters (ip, nameserver, account)
        VALUES (?, ?, ?)
        ON CONFLICT (ip, nameserver) DO UPDATE SET account = EXCLUDED.account`
	}

	_, err := r.db.ExecContext(ctx, r.db.Rebind(query), sm.IP, sm.Nameserver, sm.Account)
	return err
}

func (r *Repository) ListSupermasters(ctx context.Context) ([]*core.Supermaster, error) {
	sms := []*core.Supermaster{}
	query := `SELECT ip, nameserver, account FROM supermasters ORDER BY ip, nameserver`
	err := r.db.SelectContext(ctx, &sms, query)
	return sms, err
}

// insert runs an INSERT written with ? placeholders and returns the new
// row id. Postgres has no LastInsertId, so the id comes from RETURNING.
func (r *Repository) insert(ctx context.Context, ext sqlx.ExtContext, query string, args ...any) (int64, error) {
	if r.db.DriverName() == "postgres" {
		var id int64
		err := sqlx.GetContext(ctx, ext, &id, ext.Rebind(query+" RETURNING id"), args...)
		return id, err
	}

	res, err := ext.ExecContext(ctx, ext.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

type recordTx struct {
	repo     *Repository
	tx       *sqlx.Tx
	domainID int64
}

func (t *recordTx) DestroyAll(ctx context.Context) error {
	query := t.tx.Rebind(`DELETE FROM records WHERE domain_id = ?`)
	_, err := t.tx.ExecContext(ctx, query, t.domainID)
	return err
}

func (t *recordTx) Save(ctx context.Context, records []*core.Record) error {
	query := `
        INSERT INTO records (domain_id, name, type, content, ttl, prio, change_date)
        VALUES (?, ?, ?, ?, ?, ?, ?)`

	for _, rec := range records {
		rec.DomainID = t.domainID
		id, err := t.repo.insert(ctx, t.tx, query,
			rec.DomainID, rec.Name, rec.Type, rec.Content, rec.TTL, rec.Prio, rec.ChangeDate,
		)
		if err != nil {
			return err
		}
		rec.ID = id
	}
	return nil
}

func (t *recordTx) Commit() error {
	return t.tx.Commit()
}

func (t *recordTx) Rollback() error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}
