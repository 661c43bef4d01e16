package db

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/leozw/pdns-rest/internal/core"
	"github.com/leozw/pdns-rest/internal/metrics"
	"github.com/leozw/pdns-rest/internal/zones"
)

func newMockRepository(t *testing.T, driver string) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewRepository(sqlx.NewDb(conn, driver)), mock
}

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

var domainColumns = []string{"id", "name", "master", "last_check", "type", "notified_serial", "account"}

func TestFindDomainByName(t *testing.T) {
	ctx := context.Background()
	repo, mock := newMockRepository(t, "postgres")

	mock.ExpectQuery(regexp.QuoteMeta("FROM domains")).
		WithArgs("example.com").
		WillReturnRows(sqlmock.NewRows(domainColumns).
			AddRow(7, "example.com", nil, nil, "NATIVE", nil, "ops"))

	d, err := repo.FindDomainByName(ctx, "example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(7), d.ID)
	assert.Equal(t, "NATIVE", d.Type)
	assert.Nil(t, d.Master)
	require.NotNil(t, d.Account)
	assert.Equal(t, "ops", *d.Account)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE name = $1")).
		WithArgs("missing.com").
		WillReturnRows(sqlmock.NewRows(domainColumns))

	_, err = repo.FindDomainByName(ctx, "missing.com")
	require.ErrorIs(t, err, core.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDomain(t *testing.T) {
	ctx := context.Background()

	t.Run("postgres returning id", func(t *testing.T) {
		repo, mock := newMockRepository(t, "postgres")
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO domains")+".*"+regexp.QuoteMeta("RETURNING id")).
			WithArgs("example.com", nil, nil, "NATIVE", nil, nil).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

		d := &core.Domain{Name: "example.com", Type: "NATIVE"}
		require.NoError(t, repo.CreateDomain(ctx, d))
		assert.Equal(t, int64(3), d.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("mysql last insert id", func(t *testing.T) {
		repo, mock := newMockRepository(t, "mysql")
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO domains")).
			WithArgs("example.com", nil, nil, "MASTER", nil, nil).
			WillReturnResult(sqlmock.NewResult(11, 1))

		d := &core.Domain{Name: "example.com", Type: "MASTER"}
		require.NoError(t, repo.CreateDomain(ctx, d))
		assert.Equal(t, int64(11), d.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure", func(t *testing.T) {
		repo, mock := newMockRepository(t, "mysql")
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO domains")).
			WillReturnError(errors.New("connection refused"))

		err := repo.CreateDomain(ctx, &core.Domain{Name: "example.com", Type: "MASTER"})
		require.Error(t, err)
	})
}

func TestSetDomainTypeMissingRow(t *testing.T) {
	ctx := context.Background()
	repo, mock := newMockRepository(t, "mysql")

	mock.ExpectExec(regexp.QuoteMeta("UPDATE domains SET type = ? WHERE id = ?")).
		WithArgs("NATIVE", int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err := repo.SetDomainType(ctx, 4, "NATIVE")
	require.ErrorIs(t, err, core.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateDomainWritesOnlyType(t *testing.T) {
	tests := []struct {
		driver string
		update string
	}{
		{"postgres", "UPDATE domains SET type = $1 WHERE id = $2"},
		{"mysql", "UPDATE domains SET type = ? WHERE id = ?"},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			repo, mock := newMockRepository(t, tt.driver)
			service := zones.NewService(repo, zap.NewNop(), metrics.NewCollector())

			mock.ExpectQuery(regexp.QuoteMeta("FROM domains")).
				WithArgs("foo").
				WillReturnRows(sqlmock.NewRows(domainColumns).
					AddRow(7, "foo", "192.0.2.1", 100, "NATIVE", 1, "ops"))
			mock.ExpectExec("^" + regexp.QuoteMeta(tt.update) + "$").
				WithArgs("MASTER", int64(7)).
				WillReturnResult(sqlmock.NewResult(0, 1))

			body := zones.Object{"type": "MASTER"}
			d, err := service.UpdateDomain(context.Background(), "foo", body)
			require.NoError(t, err)
			assert.Equal(t, int64(7), d.ID)
			assert.Equal(t, core.DomainTypeMaster, d.Type)
			require.NotNil(t, d.NotifiedSerial)
			assert.Equal(t, int64(1), *d.NotifiedSerial)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReplaceRecordsCommit(t *testing.T) {
	ctx := context.Background()
	repo, mock := newMockRepository(t, "mysql")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM domains WHERE id = ? FOR UPDATE")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM records WHERE domain_id = ?")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO records")).
		WithArgs(int64(5), "example.com", "MX", "blah blah", 2000, 25, nil).
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO records")).
		WithArgs(int64(5), "www.example.com", "A", nil, nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(22, 1))
	mock.ExpectCommit()

	tx, err := repo.BeginRecords(ctx, 5)
	require.NoError(t, err)
	require.NoError(t, tx.DestroyAll(ctx))

	records := []*core.Record{
		{Name: "example.com", Type: "MX", Content: strp("blah blah"), TTL: intp(2000), Prio: intp(25)},
		{Name: "www.example.com", Type: "A"},
	}
	require.NoError(t, tx.Save(ctx, records))
	require.NoError(t, tx.Commit())
	require.NoError(t, tx.Rollback())

	assert.Equal(t, int64(21), records[0].ID)
	assert.Equal(t, int64(22), records[1].ID)
	assert.Equal(t, int64(5), records[1].DomainID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceRecordsRollbackOnInsertFailure(t *testing.T) {
	ctx := context.Background()
	repo, mock := newMockRepository(t, "postgres")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM domains WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM records WHERE domain_id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO records")).
		WillReturnError(errors.New("value too long for type character varying(40)"))
	mock.ExpectRollback()

	tx, err := repo.BeginRecords(ctx, 5)
	require.NoError(t, err)
	require.NoError(t, tx.DestroyAll(ctx))
	require.Error(t, tx.Save(ctx, []*core.Record{{Name: "example.com", Type: "MX"}}))
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBeginRecordsUnknownDomain(t *testing.T) {
	repo, mock := newMockRepository(t, "mysql")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.BeginRecords(context.Background(), 9)
	require.ErrorIs(t, err, core.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecords(t *testing.T) {
	repo, mock := newMockRepository(t, "postgres")

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY type ASC, name ASC")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "domain_id", "name", "type", "content", "ttl", "prio", "change_date"}).
			AddRow(1, 5, "example.com", "MX", "mail.example.com.", 3600, 10, nil).
			AddRow(2, 5, "example.com", "SOA", "ns1 admin 1", nil, nil, nil))

	records, err := repo.ListRecords(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 10, *records[0].Prio)
	assert.Nil(t, records[1].TTL)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertSupermaster(t *testing.T) {
	ctx := context.Background()
	sm := &core.Supermaster{IP: "192.0.2.1", Nameserver: "ns1.example.com", Account: strp("ops")}

	t.Run("postgres", func(t *testing.T) {
		repo, mock := newMockRepository(t, "postgres")
		mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (ip, nameserver) DO UPDATE")).
			WithArgs("192.0.2.1", "ns1.example.com", "ops").
			WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, repo.UpsertSupermaster(ctx, sm))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("mysql", func(t *testing.T) {
		repo, mock := newMockRepository(t, "mysql")
		mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE")).
			WithArgs("192.0.2.1", "ns1.example.com", "ops").
			WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, repo.UpsertSupermaster(ctx, sm))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
