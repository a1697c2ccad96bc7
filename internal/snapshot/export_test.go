package snapshot

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitnotes/orbit-cli/internal/model"
	"github.com/orbitnotes/orbit-cli/internal/store"
)

func seedExportCorpus(t *testing.T) (*store.MemoryStore, *model.Contact, *model.Contact) {
	t.Helper()
	mem := store.NewMemory()
	ctx := context.Background()

	bday := time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)
	anna := &model.Contact{OwnerID: "o1", Name: "Anna Schmidt", Email: "anna@example.com", Birthday: &bday}
	marcus := &model.Contact{OwnerID: "o1", Name: "Marcus Chen", Phone: "+49 151 1234567"}
	require.NoError(t, mem.CreateContact(ctx, anna))
	require.NoError(t, mem.CreateContact(ctx, marcus))

	require.NoError(t, mem.BulkInsertConnections(ctx, []model.Connection{
		{ID: "e1", OwnerID: "o1", SourceID: anna.ID, TargetID: marcus.ID, ConnectionType: "colleague"},
	}))
	require.NoError(t, mem.BulkInsertInteractions(ctx, []model.Interaction{
		{ID: "i1", OwnerID: "o1", ContactID: anna.ID, Type: "coffee", Date: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)},
	}))
	require.NoError(t, mem.UpsertTag(ctx, model.Tag{OwnerID: "o1", Name: "vip", Color: "red"}))
	require.NoError(t, mem.AddVisitedCountries(ctx, "o1", []string{"DE"}))

	return mem, anna, marcus
}

func TestExport_AssignsDocumentLocalRefs(t *testing.T) {
	mem, _, _ := seedExportCorpus(t)

	s, err := Export(context.Background(), mem, "o1")
	require.NoError(t, err)

	assert.Equal(t, Version, s.Version)
	require.Len(t, s.Contacts, 2)
	assert.Equal(t, "c1", s.Contacts[0].Ref)
	assert.Equal(t, "c2", s.Contacts[1].Ref)
	assert.Equal(t, "1990-04-12", s.Contacts[0].Birthday)

	require.Len(t, s.Connections, 1)
	assert.Equal(t, "c1", s.Connections[0].Source)
	assert.Equal(t, "c2", s.Connections[0].Target)

	require.Len(t, s.Interactions, 1)
	assert.Equal(t, "c1", s.Interactions[0].Contact)

	require.Len(t, s.Tags, 1)
	assert.Equal(t, "vip", s.Tags[0].Name)
	assert.Equal(t, []string{"DE"}, s.VisitedCountries)
}

func TestExport_SkipsEdgesWithUnknownContacts(t *testing.T) {
	mem, anna, _ := seedExportCorpus(t)
	ctx := context.Background()

	require.NoError(t, mem.BulkInsertConnections(ctx, []model.Connection{
		{ID: "e2", OwnerID: "o1", SourceID: anna.ID, TargetID: "deleted-contact", ConnectionType: "friend"},
	}))

	s, err := Export(ctx, mem, "o1")
	require.NoError(t, err)
	assert.Len(t, s.Connections, 1)
}

func TestExport_EmptyCorpus(t *testing.T) {
	mem := store.NewMemory()

	s, err := Export(context.Background(), mem, "o1")
	require.NoError(t, err)
	assert.NotNil(t, s.Contacts)
	assert.Empty(t, s.Contacts)
	require.NoError(t, s.Validate())
}

func TestExport_RoundTrip(t *testing.T) {
	src, _, _ := seedExportCorpus(t)
	ctx := context.Background()

	s, err := Export(ctx, src, "o1")
	require.NoError(t, err)
	data, err := json.Marshal(s)
	require.NoError(t, err)

	dst := store.NewMemory()
	res, err := Import(ctx, dst, "o2", data)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Contacts.Created)
	assert.Equal(t, 1, res.Edges.Created[RelConnections])
	assert.Equal(t, 1, res.Edges.Created[RelInteractions])
	assert.Empty(t, res.Edges.Errors)

	contacts, err := dst.ListContacts(ctx, "o2")
	require.NoError(t, err)
	assert.Len(t, contacts, 3)

	visited, err := dst.ListVisitedCountries(ctx, "o2")
	require.NoError(t, err)
	assert.Equal(t, []string{"DE"}, visited)
}
