package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitnotes/orbit-cli/internal/model"
)

func newPostgresMock(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresFromPool(mock), mock
}

var pgContactColumns = []string{
	"id", "owner_id", "name", "email", "phone", "company", "role", "city", "country", "address",
	"birthday", "website", "notes", "timezone", "gender", "socials", "rating", "tags", "is_self",
	"created_at", "updated_at",
}

func contactRow(id, ownerID, name string, isSelf bool) *pgxmock.Rows {
	now := time.Now().UTC()
	return pgxmock.NewRows(pgContactColumns).AddRow(
		id, ownerID, name, "", "", "", "", "", "", "",
		(*time.Time)(nil), "", "", "", "", []byte(nil), (*int)(nil), []string(nil), isSelf,
		now, now,
	)
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newPostgresMock(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS contacts").WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetContact(t *testing.T) {
	s, mock := newPostgresMock(t)
	mock.ExpectQuery("SELECT (.+) FROM contacts WHERE id").
		WithArgs("c1").
		WillReturnRows(contactRow("c1", "o1", "Anna Schmidt", false))

	got, err := s.GetContact(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Anna Schmidt", got.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetContact_NotFound(t *testing.T) {
	s, mock := newPostgresMock(t)
	mock.ExpectQuery("SELECT (.+) FROM contacts WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetContact(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteContact_NotFound(t *testing.T) {
	s, mock := newPostgresMock(t)
	mock.ExpectExec("DELETE FROM contacts").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := s.DeleteContact(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_EnsureSelfContact_CreatesWhenMissing(t *testing.T) {
	s, mock := newPostgresMock(t)
	mock.ExpectQuery("SELECT (.+) FROM contacts").
		WithArgs("o1").
		WillReturnError(pgx.ErrNoRows)
	insertArgs := make([]interface{}, 21)
	for i := range insertArgs {
		insertArgs[i] = pgxmock.AnyArg()
	}
	mock.ExpectExec("INSERT INTO contacts").
		WithArgs(insertArgs...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	self, err := s.EnsureSelfContact(context.Background(), "o1")
	require.NoError(t, err)
	assert.True(t, self.IsSelf)
	assert.Equal(t, "Me", self.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_EnsureSelfContact_ReturnsExisting(t *testing.T) {
	s, mock := newPostgresMock(t)
	mock.ExpectQuery("SELECT (.+) FROM contacts").
		WithArgs("o1").
		WillReturnRows(contactRow("self-1", "o1", "Me", true))

	self, err := s.EnsureSelfContact(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, "self-1", self.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_BulkInsertConnections(t *testing.T) {
	s, mock := newPostgresMock(t)
	mock.ExpectCopyFrom(pgx.Identifier{"connections"},
		[]string{"id", "owner_id", "source_id", "target_id", "connection_type", "notes", "created_at"}).
		WillReturnResult(2)

	rows := []model.Connection{
		{ID: "e1", OwnerID: "o1", SourceID: "a", TargetID: "b", ConnectionType: "friend"},
		{ID: "e2", OwnerID: "o1", SourceID: "b", TargetID: "c", ConnectionType: "colleague"},
	}
	require.NoError(t, s.BulkInsertConnections(context.Background(), rows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_BulkInsertConnections_Empty(t *testing.T) {
	s, mock := newPostgresMock(t)

	require.NoError(t, s.BulkInsertConnections(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertTag(t *testing.T) {
	s, mock := newPostgresMock(t)
	mock.ExpectExec("INSERT INTO tags").
		WithArgs("o1", "vip", "red").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.UpsertTag(context.Background(), model.Tag{OwnerID: "o1", Name: "vip", Color: "red"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListVisitedCountries(t *testing.T) {
	s, mock := newPostgresMock(t)
	mock.ExpectQuery("SELECT country FROM visited_countries").
		WithArgs("o1").
		WillReturnRows(pgxmock.NewRows([]string{"country"}).AddRow("DE").AddRow("FR"))

	out, err := s.ListVisitedCountries(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, []string{"DE", "FR"}, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}
