package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/orbitnotes/orbit-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS contacts (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL DEFAULT '',
	phone      TEXT NOT NULL DEFAULT '',
	company    TEXT NOT NULL DEFAULT '',
	role       TEXT NOT NULL DEFAULT '',
	city       TEXT NOT NULL DEFAULT '',
	country    TEXT NOT NULL DEFAULT '',
	address    TEXT NOT NULL DEFAULT '',
	birthday   TEXT,
	website    TEXT NOT NULL DEFAULT '',
	notes      TEXT NOT NULL DEFAULT '',
	timezone   TEXT NOT NULL DEFAULT '',
	gender     TEXT NOT NULL DEFAULT '',
	socials    TEXT,
	rating     INTEGER,
	tags       TEXT NOT NULL DEFAULT '[]',
	is_self    INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contacts_owner ON contacts(owner_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_contacts_owner_self ON contacts(owner_id) WHERE is_self = 1;

CREATE TABLE IF NOT EXISTS connections (
	id              TEXT PRIMARY KEY,
	owner_id        TEXT NOT NULL,
	source_id       TEXT NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
	target_id       TEXT NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
	connection_type TEXT NOT NULL,
	notes           TEXT NOT NULL DEFAULT '',
	created_at      DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS interactions (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL,
	contact_id TEXT NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
	type       TEXT NOT NULL,
	date       DATETIME NOT NULL,
	notes      TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS favors (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL,
	contact_id TEXT NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
	direction  TEXT NOT NULL,
	type       TEXT NOT NULL,
	value      TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS introductions (
	id           TEXT PRIMARY KEY,
	owner_id     TEXT NOT NULL,
	contact_a_id TEXT NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
	contact_b_id TEXT NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
	initiated_by TEXT NOT NULL,
	status       TEXT NOT NULL,
	notes        TEXT NOT NULL DEFAULT '',
	created_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS country_connections (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL,
	contact_id TEXT NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
	country    TEXT NOT NULL,
	relation   TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS tags (
	owner_id TEXT NOT NULL,
	name     TEXT NOT NULL,
	color    TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (owner_id, name)
);

CREATE TABLE IF NOT EXISTS visited_countries (
	owner_id TEXT NOT NULL,
	country  TEXT NOT NULL,
	PRIMARY KEY (owner_id, country)
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteBirthdayLayout = "2006-01-02"

func encodeContact(c *model.Contact) (birthday, socials, tags any, err error) {
	if c.Birthday != nil {
		birthday = c.Birthday.Format(sqliteBirthdayLayout)
	}
	if len(c.Socials) > 0 {
		b, err := json.Marshal(c.Socials)
		if err != nil {
			return nil, nil, nil, eris.Wrap(err, "sqlite: marshal socials")
		}
		socials = string(b)
	}
	b, err := json.Marshal(c.Tags)
	if err != nil {
		return nil, nil, nil, eris.Wrap(err, "sqlite: marshal tags")
	}
	if c.Tags == nil {
		b = []byte("[]")
	}
	tags = string(b)
	return birthday, socials, tags, nil
}

func (s *SQLiteStore) CreateContact(ctx context.Context, c *model.Contact) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	birthday, socials, tags, err := encodeContact(c)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO contacts (id, owner_id, name, email, phone, company, role, city, country, address,
			birthday, website, notes, timezone, gender, socials, rating, tags, is_self, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.OwnerID, c.Name, c.Email, c.Phone, c.Company, c.Role, c.City, c.Country, c.Address,
		birthday, c.Website, c.Notes, c.Timezone, c.Gender, socials, c.Rating, tags, c.IsSelf,
		c.CreatedAt, c.UpdatedAt,
	)
	return eris.Wrap(err, "sqlite: insert contact")
}

type sqliteRow interface {
	Scan(dest ...any) error
}

func scanSQLiteContact(row sqliteRow) (*model.Contact, error) {
	var c model.Contact
	var birthday, socials sql.NullString
	var rating sql.NullInt64
	var tags string

	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Role, &c.City,
		&c.Country, &c.Address, &birthday, &c.Website, &c.Notes, &c.Timezone, &c.Gender,
		&socials, &rating, &tags, &c.IsSelf, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if birthday.Valid && birthday.String != "" {
		t, err := time.Parse(sqliteBirthdayLayout, birthday.String)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: parse birthday")
		}
		c.Birthday = &t
	}
	if socials.Valid && socials.String != "" {
		if err := json.Unmarshal([]byte(socials.String), &c.Socials); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal socials")
		}
	}
	if rating.Valid {
		r := int(rating.Int64)
		c.Rating = &r
	}
	if tags != "" && tags != "[]" {
		if err := json.Unmarshal([]byte(tags), &c.Tags); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal tags")
		}
	}
	return &c, nil
}

const sqliteContactColumns = `id, owner_id, name, email, phone, company, role, city, country, address,
	birthday, website, notes, timezone, gender, socials, rating, tags, is_self, created_at, updated_at`

func (s *SQLiteStore) GetContact(ctx context.Context, id string) (*model.Contact, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteContactColumns+` FROM contacts WHERE id = ?`, id)
	c, err := scanSQLiteContact(row)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, eris.Errorf("sqlite: contact %s not found", id)
		}
		return nil, eris.Wrap(err, "sqlite: get contact")
	}
	return c, nil
}

func (s *SQLiteStore) UpdateContact(ctx context.Context, c *model.Contact) error {
	birthday, socials, tags, err := encodeContact(c)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE contacts SET name = ?, email = ?, phone = ?, company = ?, role = ?, city = ?,
			country = ?, address = ?, birthday = ?, website = ?, notes = ?, timezone = ?,
			gender = ?, socials = ?, rating = ?, tags = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, c.Email, c.Phone, c.Company, c.Role, c.City, c.Country, c.Address,
		birthday, c.Website, c.Notes, c.Timezone, c.Gender, socials, c.Rating, tags,
		time.Now().UTC(), c.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update contact %s", c.ID)
	}
	return checkRowsAffected(res, "contact", c.ID)
}

func (s *SQLiteStore) DeleteContact(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete contact %s", id)
	}
	return checkRowsAffected(res, "contact", id)
}

func (s *SQLiteStore) ListContacts(ctx context.Context, ownerID string) ([]model.Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteContactColumns+` FROM contacts WHERE owner_id = ? ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list contacts")
	}
	defer rows.Close()

	var out []model.Contact
	for rows.Next() {
		c, err := scanSQLiteContact(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan contact")
		}
		out = append(out, *c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list contacts rows")
}

func (s *SQLiteStore) EnsureSelfContact(ctx context.Context, ownerID string) (*model.Contact, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteContactColumns+` FROM contacts WHERE owner_id = ? AND is_self = 1`, ownerID)
	c, err := scanSQLiteContact(row)
	if err == nil {
		return c, nil
	}
	if !eris.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrap(err, "sqlite: get self contact")
	}

	self := &model.Contact{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Name:    selfContactName,
		IsSelf:  true,
	}
	if err := s.CreateContact(ctx, self); err != nil {
		return nil, err
	}
	return self, nil
}

// bulkInsert runs one prepared statement inside a transaction for each row.
func (s *SQLiteStore) bulkInsert(ctx context.Context, query string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare bulk insert")
	}
	defer stmt.Close()

	for _, args := range rows {
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return eris.Wrap(err, "sqlite: bulk insert row")
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit bulk insert")
}

func (s *SQLiteStore) BulkInsertConnections(ctx context.Context, rows []model.Connection) error {
	data := make([][]any, len(rows))
	for i, r := range rows {
		data[i] = []any{r.ID, r.OwnerID, r.SourceID, r.TargetID, r.ConnectionType, r.Notes, createdAt(r.CreatedAt)}
	}
	return s.bulkInsert(ctx,
		`INSERT INTO connections (id, owner_id, source_id, target_id, connection_type, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, data)
}

func (s *SQLiteStore) BulkInsertInteractions(ctx context.Context, rows []model.Interaction) error {
	data := make([][]any, len(rows))
	for i, r := range rows {
		data[i] = []any{r.ID, r.OwnerID, r.ContactID, r.Type, r.Date, r.Notes, createdAt(r.CreatedAt)}
	}
	return s.bulkInsert(ctx,
		`INSERT INTO interactions (id, owner_id, contact_id, type, date, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, data)
}

func (s *SQLiteStore) BulkInsertFavors(ctx context.Context, rows []model.Favor) error {
	data := make([][]any, len(rows))
	for i, r := range rows {
		data[i] = []any{r.ID, r.OwnerID, r.ContactID, r.Direction, r.Type, r.Value, r.Status, createdAt(r.CreatedAt)}
	}
	return s.bulkInsert(ctx,
		`INSERT INTO favors (id, owner_id, contact_id, direction, type, value, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, data)
}

func (s *SQLiteStore) BulkInsertIntroductions(ctx context.Context, rows []model.Introduction) error {
	data := make([][]any, len(rows))
	for i, r := range rows {
		data[i] = []any{r.ID, r.OwnerID, r.ContactAID, r.ContactBID, r.InitiatedBy, r.Status, r.Notes, createdAt(r.CreatedAt)}
	}
	return s.bulkInsert(ctx,
		`INSERT INTO introductions (id, owner_id, contact_a_id, contact_b_id, initiated_by, status, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, data)
}

func (s *SQLiteStore) BulkInsertCountryConnections(ctx context.Context, rows []model.CountryConnection) error {
	data := make([][]any, len(rows))
	for i, r := range rows {
		data[i] = []any{r.ID, r.OwnerID, r.ContactID, r.Country, r.Relation, createdAt(r.CreatedAt)}
	}
	return s.bulkInsert(ctx,
		`INSERT INTO country_connections (id, owner_id, contact_id, country, relation, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`, data)
}

func (s *SQLiteStore) ListConnections(ctx context.Context, ownerID string) ([]model.Connection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, source_id, target_id, connection_type, notes, created_at
		FROM connections WHERE owner_id = ? ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list connections")
	}
	defer rows.Close()

	var out []model.Connection
	for rows.Next() {
		var r model.Connection
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.SourceID, &r.TargetID, &r.ConnectionType, &r.Notes, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan connection")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list connections rows")
}

func (s *SQLiteStore) ListInteractions(ctx context.Context, ownerID string) ([]model.Interaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, contact_id, type, date, notes, created_at
		FROM interactions WHERE owner_id = ? ORDER BY date, id`, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list interactions")
	}
	defer rows.Close()

	var out []model.Interaction
	for rows.Next() {
		var r model.Interaction
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.ContactID, &r.Type, &r.Date, &r.Notes, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan interaction")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list interactions rows")
}

func (s *SQLiteStore) ListFavors(ctx context.Context, ownerID string) ([]model.Favor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, contact_id, direction, type, value, status, created_at
		FROM favors WHERE owner_id = ? ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list favors")
	}
	defer rows.Close()

	var out []model.Favor
	for rows.Next() {
		var r model.Favor
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.ContactID, &r.Direction, &r.Type, &r.Value, &r.Status, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan favor")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list favors rows")
}

func (s *SQLiteStore) ListIntroductions(ctx context.Context, ownerID string) ([]model.Introduction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, contact_a_id, contact_b_id, initiated_by, status, notes, created_at
		FROM introductions WHERE owner_id = ? ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list introductions")
	}
	defer rows.Close()

	var out []model.Introduction
	for rows.Next() {
		var r model.Introduction
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.ContactAID, &r.ContactBID, &r.InitiatedBy, &r.Status, &r.Notes, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan introduction")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list introductions rows")
}

func (s *SQLiteStore) ListCountryConnections(ctx context.Context, ownerID string) ([]model.CountryConnection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, contact_id, country, relation, created_at
		FROM country_connections WHERE owner_id = ? ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list country connections")
	}
	defer rows.Close()

	var out []model.CountryConnection
	for rows.Next() {
		var r model.CountryConnection
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.ContactID, &r.Country, &r.Relation, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan country connection")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list country connections rows")
}

func (s *SQLiteStore) UpsertTag(ctx context.Context, tag model.Tag) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tags (owner_id, name, color) VALUES (?, ?, ?)
		ON CONFLICT (owner_id, name) DO UPDATE SET color = excluded.color`,
		tag.OwnerID, tag.Name, tag.Color)
	return eris.Wrap(err, "sqlite: upsert tag")
}

func (s *SQLiteStore) ListTags(ctx context.Context, ownerID string) ([]model.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT owner_id, name, color FROM tags WHERE owner_id = ? ORDER BY name`, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list tags")
	}
	defer rows.Close()

	var out []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.OwnerID, &t.Name, &t.Color); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan tag")
		}
		out = append(out, t)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list tags rows")
}

func (s *SQLiteStore) AddVisitedCountries(ctx context.Context, ownerID string, countries []string) error {
	for _, country := range countries {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO visited_countries (owner_id, country) VALUES (?, ?)
			ON CONFLICT DO NOTHING`, ownerID, country); err != nil {
			return eris.Wrapf(err, "sqlite: add visited country %s", country)
		}
	}
	return nil
}

func (s *SQLiteStore) ListVisitedCountries(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT country FROM visited_countries WHERE owner_id = ? ORDER BY country`, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list visited countries")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan visited country")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list visited countries rows")
}

func checkRowsAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: %s %s not found", kind, id)
	}
	return nil
}
