package snapshot

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/orbitnotes/orbit-cli/internal/importer"
	"github.com/orbitnotes/orbit-cli/internal/model"
)

// Store is the full storage collaborator a snapshot import consumes.
type Store interface {
	RelationStore
	ListContacts(ctx context.Context, ownerID string) ([]model.Contact, error)
	CreateContact(ctx context.Context, c *model.Contact) error
	// EnsureSelfContact fetches or idempotently creates the account's
	// own self record.
	EnsureSelfContact(ctx context.Context, ownerID string) (*model.Contact, error)
	UpsertTag(ctx context.Context, tag model.Tag) error
	AddVisitedCountries(ctx context.Context, ownerID string, countries []string) error
}

// ImportResult combines contact-level and edge-level outcomes.
type ImportResult struct {
	Contacts importer.Summary `json:"contacts"`
	Edges    EdgeSummary      `json:"edges"`
}

// Import runs a full snapshot import for one owner:
//
//  1. Decode and validate (fatal before any write).
//  2. Ensure the destination self identity.
//  3. Import snapshot contacts as a parsed batch (dedup + match + create).
//  4. Build the ref map against the refreshed corpus.
//  5. Resolve and bulk-insert every edge list, types independently.
//  6. Carry tags and visited countries over; failures there are
//     recorded like a failed relation type, never fatal.
func Import(ctx context.Context, store Store, ownerID string, data []byte) (*ImportResult, error) {
	s, err := Decode(data)
	if err != nil {
		return nil, err
	}

	self, err := store.EnsureSelfContact(ctx, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "snapshot: ensure self contact")
	}

	batch := make([]model.ParsedContact, 0, len(s.Contacts))
	for _, c := range s.Contacts {
		if c.IsSelf {
			continue
		}
		batch = append(batch, model.ParsedContact{
			Name:     c.Name,
			Email:    c.Email,
			Phone:    c.Phone,
			Company:  c.Company,
			Role:     c.Role,
			City:     c.City,
			Country:  c.Country,
			Address:  c.Address,
			Birthday: c.Birthday,
			Website:  c.Website,
			Notes:    c.Notes,
			Timezone: c.Timezone,
			Gender:   c.Gender,
			Tags:     c.Tags,
			Socials:  c.Socials,
		})
	}

	contactSummary, _, err := importer.Run(ctx, store, ownerID, batch)
	if err != nil {
		return nil, eris.Wrap(err, "snapshot: import contacts")
	}

	dest, err := store.ListContacts(ctx, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "snapshot: list destination contacts")
	}

	refs := BuildRefMap(s, dest, self.ID)
	edges := ImportEdges(ctx, store, ownerID, s, refs)

	for _, tag := range s.Tags {
		if err := store.UpsertTag(ctx, model.Tag{OwnerID: ownerID, Name: tag.Name, Color: tag.Color}); err != nil {
			edges.Errors = append(edges.Errors, RelationError{Relation: "tags", Message: err.Error()})
			break
		}
	}
	if len(s.VisitedCountries) > 0 {
		if err := store.AddVisitedCountries(ctx, ownerID, s.VisitedCountries); err != nil {
			edges.Errors = append(edges.Errors, RelationError{Relation: "visitedCountries", Message: err.Error()})
		}
	}

	zap.L().Info("snapshot import complete",
		zap.String("owner_id", ownerID),
		zap.Int("snapshot_contacts", len(s.Contacts)),
		zap.Int("created_contacts", contactSummary.Created),
		zap.Int("resolved_refs", len(refs)),
		zap.Int("relation_errors", len(edges.Errors)),
	)

	return &ImportResult{Contacts: contactSummary, Edges: edges}, nil
}
