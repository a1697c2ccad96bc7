// Package store persists contacts, relation edges, tags, and visited
// countries behind a single interface with postgres, sqlite, and
// in-memory implementations.
package store

import (
	"context"

	"github.com/orbitnotes/orbit-cli/internal/model"
)

// Store is the persistence interface the identity-resolution core and
// the CLI consume. The matching/merging core never opens a connection
// itself; it receives one of these.
type Store interface {
	// Contacts
	CreateContact(ctx context.Context, c *model.Contact) error
	GetContact(ctx context.Context, id string) (*model.Contact, error)
	UpdateContact(ctx context.Context, c *model.Contact) error
	DeleteContact(ctx context.Context, id string) error
	ListContacts(ctx context.Context, ownerID string) ([]model.Contact, error)
	// EnsureSelfContact fetches the owner's self record, creating it
	// idempotently when absent.
	EnsureSelfContact(ctx context.Context, ownerID string) (*model.Contact, error)

	// Relation edges, one bulk insert per type.
	BulkInsertConnections(ctx context.Context, rows []model.Connection) error
	BulkInsertInteractions(ctx context.Context, rows []model.Interaction) error
	BulkInsertFavors(ctx context.Context, rows []model.Favor) error
	BulkInsertIntroductions(ctx context.Context, rows []model.Introduction) error
	BulkInsertCountryConnections(ctx context.Context, rows []model.CountryConnection) error
	ListConnections(ctx context.Context, ownerID string) ([]model.Connection, error)
	ListInteractions(ctx context.Context, ownerID string) ([]model.Interaction, error)
	ListFavors(ctx context.Context, ownerID string) ([]model.Favor, error)
	ListIntroductions(ctx context.Context, ownerID string) ([]model.Introduction, error)
	ListCountryConnections(ctx context.Context, ownerID string) ([]model.CountryConnection, error)

	// Tags and travel
	UpsertTag(ctx context.Context, tag model.Tag) error
	ListTags(ctx context.Context, ownerID string) ([]model.Tag, error)
	AddVisitedCountries(ctx context.Context, ownerID string, countries []string) error
	ListVisitedCountries(ctx context.Context, ownerID string) ([]string, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// selfContactName is the display name given to an auto-created self record.
const selfContactName = "Me"
