package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/orbitnotes/orbit-cli/internal/db"
	"github.com/orbitnotes/orbit-cli/internal/model"
)

// PostgresStore implements Store on pgxpool.
type PostgresStore struct {
	pool db.Pool
}

var _ Store = (*PostgresStore)(nil)

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool; used by tests with pgxmock.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
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
	birthday   DATE,
	website    TEXT NOT NULL DEFAULT '',
	notes      TEXT NOT NULL DEFAULT '',
	timezone   TEXT NOT NULL DEFAULT '',
	gender     TEXT NOT NULL DEFAULT '',
	socials    JSONB,
	rating     INT,
	tags       TEXT[] NOT NULL DEFAULT '{}',
	is_self    BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_contacts_owner ON contacts(owner_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_contacts_owner_self ON contacts(owner_id) WHERE is_self;

CREATE TABLE IF NOT EXISTS connections (
	id              TEXT PRIMARY KEY,
	owner_id        TEXT NOT NULL,
	source_id       TEXT NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
	target_id       TEXT NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
	connection_type TEXT NOT NULL,
	notes           TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS interactions (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL,
	contact_id TEXT NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
	type       TEXT NOT NULL,
	date       TIMESTAMPTZ NOT NULL,
	notes      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS favors (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL,
	contact_id TEXT NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
	direction  TEXT NOT NULL,
	type       TEXT NOT NULL,
	value      TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS introductions (
	id           TEXT PRIMARY KEY,
	owner_id     TEXT NOT NULL,
	contact_a_id TEXT NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
	contact_b_id TEXT NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
	initiated_by TEXT NOT NULL,
	status       TEXT NOT NULL,
	notes        TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS country_connections (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL,
	contact_id TEXT NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
	country    TEXT NOT NULL,
	relation   TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
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

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const contactColumns = `id, owner_id, name, email, phone, company, role, city, country, address,
	birthday, website, notes, timezone, gender, socials, rating, tags, is_self, created_at, updated_at`

func socialsJSON(c *model.Contact) ([]byte, error) {
	if len(c.Socials) == 0 {
		return nil, nil
	}
	return json.Marshal(c.Socials)
}

// tagsOrEmpty keeps a nil slice out of the NOT NULL tags column.
func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func (s *PostgresStore) CreateContact(ctx context.Context, c *model.Contact) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	socials, err := socialsJSON(c)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal socials")
	}

	_, err = s.pool.Exec(ctx, `INSERT INTO contacts (`+contactColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`,
		c.ID, c.OwnerID, c.Name, c.Email, c.Phone, c.Company, c.Role, c.City, c.Country, c.Address,
		c.Birthday, c.Website, c.Notes, c.Timezone, c.Gender, socials, c.Rating, tagsOrEmpty(c.Tags), c.IsSelf,
		c.CreatedAt, c.UpdatedAt)
	return eris.Wrap(err, "postgres: insert contact")
}

func scanContact(row pgx.Row) (*model.Contact, error) {
	var c model.Contact
	var socials []byte
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Role, &c.City,
		&c.Country, &c.Address, &c.Birthday, &c.Website, &c.Notes, &c.Timezone, &c.Gender,
		&socials, &c.Rating, &c.Tags, &c.IsSelf, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(socials) > 0 {
		if err := json.Unmarshal(socials, &c.Socials); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func (s *PostgresStore) GetContact(ctx context.Context, id string) (*model.Contact, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id)
	c, err := scanContact(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Errorf("postgres: contact %s not found", id)
		}
		return nil, eris.Wrap(err, "postgres: get contact")
	}
	return c, nil
}

func (s *PostgresStore) UpdateContact(ctx context.Context, c *model.Contact) error {
	socials, err := socialsJSON(c)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal socials")
	}

	tag, err := s.pool.Exec(ctx, `UPDATE contacts SET
		name=$1, email=$2, phone=$3, company=$4, role=$5, city=$6, country=$7, address=$8,
		birthday=$9, website=$10, notes=$11, timezone=$12, gender=$13, socials=$14, rating=$15,
		tags=$16, updated_at=now()
		WHERE id = $17`,
		c.Name, c.Email, c.Phone, c.Company, c.Role, c.City, c.Country, c.Address,
		c.Birthday, c.Website, c.Notes, c.Timezone, c.Gender, socials, c.Rating, tagsOrEmpty(c.Tags), c.ID)
	if err != nil {
		return eris.Wrap(err, "postgres: update contact")
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: contact %s not found", c.ID)
	}
	return nil
}

func (s *PostgresStore) DeleteContact(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return eris.Wrap(err, "postgres: delete contact")
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: contact %s not found", id)
	}
	return nil
}

func (s *PostgresStore) ListContacts(ctx context.Context, ownerID string) ([]model.Contact, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+contactColumns+` FROM contacts
		WHERE owner_id = $1 ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list contacts")
	}
	defer rows.Close()

	var out []model.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan contact")
		}
		out = append(out, *c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list contacts rows")
}

func (s *PostgresStore) EnsureSelfContact(ctx context.Context, ownerID string) (*model.Contact, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts
		WHERE owner_id = $1 AND is_self`, ownerID)
	c, err := scanContact(row)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrap(err, "postgres: get self contact")
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

func (s *PostgresStore) BulkInsertConnections(ctx context.Context, rows []model.Connection) error {
	data := make([][]any, len(rows))
	for i, r := range rows {
		data[i] = []any{r.ID, r.OwnerID, r.SourceID, r.TargetID, r.ConnectionType, r.Notes, createdAt(r.CreatedAt)}
	}
	_, err := db.CopyFrom(ctx, s.pool, "connections",
		[]string{"id", "owner_id", "source_id", "target_id", "connection_type", "notes", "created_at"}, data)
	return err
}

func (s *PostgresStore) BulkInsertInteractions(ctx context.Context, rows []model.Interaction) error {
	data := make([][]any, len(rows))
	for i, r := range rows {
		data[i] = []any{r.ID, r.OwnerID, r.ContactID, r.Type, r.Date, r.Notes, createdAt(r.CreatedAt)}
	}
	_, err := db.CopyFrom(ctx, s.pool, "interactions",
		[]string{"id", "owner_id", "contact_id", "type", "date", "notes", "created_at"}, data)
	return err
}

func (s *PostgresStore) BulkInsertFavors(ctx context.Context, rows []model.Favor) error {
	data := make([][]any, len(rows))
	for i, r := range rows {
		data[i] = []any{r.ID, r.OwnerID, r.ContactID, r.Direction, r.Type, r.Value, r.Status, createdAt(r.CreatedAt)}
	}
	_, err := db.CopyFrom(ctx, s.pool, "favors",
		[]string{"id", "owner_id", "contact_id", "direction", "type", "value", "status", "created_at"}, data)
	return err
}

func (s *PostgresStore) BulkInsertIntroductions(ctx context.Context, rows []model.Introduction) error {
	data := make([][]any, len(rows))
	for i, r := range rows {
		data[i] = []any{r.ID, r.OwnerID, r.ContactAID, r.ContactBID, r.InitiatedBy, r.Status, r.Notes, createdAt(r.CreatedAt)}
	}
	_, err := db.CopyFrom(ctx, s.pool, "introductions",
		[]string{"id", "owner_id", "contact_a_id", "contact_b_id", "initiated_by", "status", "notes", "created_at"}, data)
	return err
}

func (s *PostgresStore) BulkInsertCountryConnections(ctx context.Context, rows []model.CountryConnection) error {
	data := make([][]any, len(rows))
	for i, r := range rows {
		data[i] = []any{r.ID, r.OwnerID, r.ContactID, r.Country, r.Relation, createdAt(r.CreatedAt)}
	}
	_, err := db.CopyFrom(ctx, s.pool, "country_connections",
		[]string{"id", "owner_id", "contact_id", "country", "relation", "created_at"}, data)
	return err
}

func createdAt(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

func (s *PostgresStore) ListConnections(ctx context.Context, ownerID string) ([]model.Connection, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, owner_id, source_id, target_id, connection_type, notes, created_at
		FROM connections WHERE owner_id = $1 ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list connections")
	}
	defer rows.Close()

	var out []model.Connection
	for rows.Next() {
		var r model.Connection
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.SourceID, &r.TargetID, &r.ConnectionType, &r.Notes, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan connection")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list connections rows")
}

func (s *PostgresStore) ListInteractions(ctx context.Context, ownerID string) ([]model.Interaction, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, owner_id, contact_id, type, date, notes, created_at
		FROM interactions WHERE owner_id = $1 ORDER BY date, id`, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list interactions")
	}
	defer rows.Close()

	var out []model.Interaction
	for rows.Next() {
		var r model.Interaction
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.ContactID, &r.Type, &r.Date, &r.Notes, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan interaction")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list interactions rows")
}

func (s *PostgresStore) ListFavors(ctx context.Context, ownerID string) ([]model.Favor, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, owner_id, contact_id, direction, type, value, status, created_at
		FROM favors WHERE owner_id = $1 ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list favors")
	}
	defer rows.Close()

	var out []model.Favor
	for rows.Next() {
		var r model.Favor
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.ContactID, &r.Direction, &r.Type, &r.Value, &r.Status, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan favor")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list favors rows")
}

func (s *PostgresStore) ListIntroductions(ctx context.Context, ownerID string) ([]model.Introduction, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, owner_id, contact_a_id, contact_b_id, initiated_by, status, notes, created_at
		FROM introductions WHERE owner_id = $1 ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list introductions")
	}
	defer rows.Close()

	var out []model.Introduction
	for rows.Next() {
		var r model.Introduction
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.ContactAID, &r.ContactBID, &r.InitiatedBy, &r.Status, &r.Notes, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan introduction")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list introductions rows")
}

func (s *PostgresStore) ListCountryConnections(ctx context.Context, ownerID string) ([]model.CountryConnection, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, owner_id, contact_id, country, relation, created_at
		FROM country_connections WHERE owner_id = $1 ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list country connections")
	}
	defer rows.Close()

	var out []model.CountryConnection
	for rows.Next() {
		var r model.CountryConnection
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.ContactID, &r.Country, &r.Relation, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan country connection")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list country connections rows")
}

func (s *PostgresStore) UpsertTag(ctx context.Context, tag model.Tag) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO tags (owner_id, name, color) VALUES ($1, $2, $3)
		ON CONFLICT (owner_id, name) DO UPDATE SET color = EXCLUDED.color`,
		tag.OwnerID, tag.Name, tag.Color)
	return eris.Wrap(err, "postgres: upsert tag")
}

func (s *PostgresStore) ListTags(ctx context.Context, ownerID string) ([]model.Tag, error) {
	rows, err := s.pool.Query(ctx, `SELECT owner_id, name, color FROM tags WHERE owner_id = $1 ORDER BY name`, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list tags")
	}
	defer rows.Close()

	var out []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.OwnerID, &t.Name, &t.Color); err != nil {
			return nil, eris.Wrap(err, "postgres: scan tag")
		}
		out = append(out, t)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list tags rows")
}

func (s *PostgresStore) AddVisitedCountries(ctx context.Context, ownerID string, countries []string) error {
	for _, country := range countries {
		if _, err := s.pool.Exec(ctx, `INSERT INTO visited_countries (owner_id, country) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, ownerID, country); err != nil {
			return eris.Wrapf(err, "postgres: add visited country %s", country)
		}
	}
	return nil
}

func (s *PostgresStore) ListVisitedCountries(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT country FROM visited_countries WHERE owner_id = $1 ORDER BY country`, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list visited countries")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, eris.Wrap(err, "postgres: scan visited country")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list visited countries rows")
}
