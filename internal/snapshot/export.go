package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"

	"github.com/orbitnotes/orbit-cli/internal/model"
)

// ExportStore lists everything a snapshot carries.
type ExportStore interface {
	ListContacts(ctx context.Context, ownerID string) ([]model.Contact, error)
	ListConnections(ctx context.Context, ownerID string) ([]model.Connection, error)
	ListInteractions(ctx context.Context, ownerID string) ([]model.Interaction, error)
	ListFavors(ctx context.Context, ownerID string) ([]model.Favor, error)
	ListIntroductions(ctx context.Context, ownerID string) ([]model.Introduction, error)
	ListCountryConnections(ctx context.Context, ownerID string) ([]model.CountryConnection, error)
	ListTags(ctx context.Context, ownerID string) ([]model.Tag, error)
	ListVisitedCountries(ctx context.Context, ownerID string) ([]string, error)
}

// Export builds a version-1 snapshot of an owner's corpus. Refs are
// freshly assigned document-local tokens; edges referencing a contact
// that is not part of the export are left out.
func Export(ctx context.Context, store ExportStore, ownerID string) (*Snapshot, error) {
	contacts, err := store.ListContacts(ctx, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "snapshot: export list contacts")
	}

	s := &Snapshot{
		Version:    Version,
		ExportedAt: time.Now().UTC(),
		Contacts:   make([]Contact, 0, len(contacts)),
	}

	refByID := make(map[string]string, len(contacts))
	for i := range contacts {
		c := &contacts[i]
		ref := fmt.Sprintf("c%d", i+1)
		refByID[c.ID] = ref

		sc := Contact{
			Ref:      ref,
			Name:     c.Name,
			Email:    c.Email,
			Phone:    c.Phone,
			Company:  c.Company,
			Role:     c.Role,
			City:     c.City,
			Country:  c.Country,
			Address:  c.Address,
			Website:  c.Website,
			Notes:    c.Notes,
			Timezone: c.Timezone,
			Gender:   c.Gender,
			Tags:     c.Tags,
			Socials:  c.Socials,
			IsSelf:   c.IsSelf,
		}
		if c.Birthday != nil {
			sc.Birthday = c.Birthday.Format("2006-01-02")
		}
		s.Contacts = append(s.Contacts, sc)
	}

	connections, err := store.ListConnections(ctx, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "snapshot: export list connections")
	}
	for _, e := range connections {
		src, okS := refByID[e.SourceID]
		dst, okT := refByID[e.TargetID]
		if !okS || !okT {
			continue
		}
		s.Connections = append(s.Connections, Connection{
			Source:         src,
			Target:         dst,
			ConnectionType: e.ConnectionType,
			Notes:          e.Notes,
		})
	}

	interactions, err := store.ListInteractions(ctx, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "snapshot: export list interactions")
	}
	for _, e := range interactions {
		ref, ok := refByID[e.ContactID]
		if !ok {
			continue
		}
		s.Interactions = append(s.Interactions, Interaction{
			Contact: ref,
			Type:    e.Type,
			Date:    e.Date,
			Notes:   e.Notes,
		})
	}

	favors, err := store.ListFavors(ctx, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "snapshot: export list favors")
	}
	for _, e := range favors {
		ref, ok := refByID[e.ContactID]
		if !ok {
			continue
		}
		s.Favors = append(s.Favors, Favor{
			Contact:   ref,
			Direction: e.Direction,
			Type:      e.Type,
			Value:     e.Value,
			Status:    e.Status,
		})
	}

	introductions, err := store.ListIntroductions(ctx, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "snapshot: export list introductions")
	}
	for _, e := range introductions {
		a, okA := refByID[e.ContactAID]
		b, okB := refByID[e.ContactBID]
		if !okA || !okB {
			continue
		}
		s.Introductions = append(s.Introductions, Introduction{
			ContactA:    a,
			ContactB:    b,
			InitiatedBy: e.InitiatedBy,
			Status:      e.Status,
			Notes:       e.Notes,
		})
	}

	countryConnections, err := store.ListCountryConnections(ctx, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "snapshot: export list country connections")
	}
	for _, e := range countryConnections {
		ref, ok := refByID[e.ContactID]
		if !ok {
			continue
		}
		s.CountryConnections = append(s.CountryConnections, CountryConnection{
			Contact:  ref,
			Country:  e.Country,
			Relation: e.Relation,
		})
	}

	tags, err := store.ListTags(ctx, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "snapshot: export list tags")
	}
	for _, t := range tags {
		s.Tags = append(s.Tags, Tag{Name: t.Name, Color: t.Color})
	}

	s.VisitedCountries, err = store.ListVisitedCountries(ctx, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "snapshot: export list visited countries")
	}

	return s, nil
}
