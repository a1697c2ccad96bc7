package snapshot

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/orbitnotes/orbit-cli/internal/model"
)

// RefMap maps document-local ref tokens to destination contact ids.
// Built once per import, consumed to rewrite every edge list.
type RefMap map[string]string

// BuildRefMap resolves snapshot contacts against the destination
// corpus. The self contact maps straight to the destination account's
// own identity, even when another destination contact shares its name
// and email. Everyone else resolves by composite (lowercased name,
// lowercased email) exact match, then by lowercased name alone, first
// hit wins. Unresolvable refs stay unmapped; that is routine for
// cross-account imports, not an error.
func BuildRefMap(s *Snapshot, dest []model.Contact, selfID string) RefMap {
	byComposite := make(map[string]string)
	byName := make(map[string]string)
	for i := range dest {
		name := strings.ToLower(dest[i].Name)
		composite := name + "\x00" + strings.ToLower(dest[i].Email)
		if _, ok := byComposite[composite]; !ok {
			byComposite[composite] = dest[i].ID
		}
		if _, ok := byName[name]; !ok {
			byName[name] = dest[i].ID
		}
	}

	refs := make(RefMap, len(s.Contacts))
	for _, c := range s.Contacts {
		if c.Ref == "" {
			continue
		}
		if c.IsSelf && selfID != "" {
			refs[c.Ref] = selfID
			continue
		}
		composite := strings.ToLower(c.Name) + "\x00" + strings.ToLower(c.Email)
		if id, ok := byComposite[composite]; ok {
			refs[c.Ref] = id
			continue
		}
		if id, ok := byName[strings.ToLower(c.Name)]; ok {
			refs[c.Ref] = id
		}
	}

	return refs
}

// RelationStore bulk-inserts resolved edges, one call per relation
// type. Implementations own chunking and transactions.
type RelationStore interface {
	BulkInsertConnections(ctx context.Context, rows []model.Connection) error
	BulkInsertInteractions(ctx context.Context, rows []model.Interaction) error
	BulkInsertFavors(ctx context.Context, rows []model.Favor) error
	BulkInsertIntroductions(ctx context.Context, rows []model.Introduction) error
	BulkInsertCountryConnections(ctx context.Context, rows []model.CountryConnection) error
}

// Relation type names as used in summaries and error lists.
const (
	RelConnections        = "connections"
	RelInteractions       = "interactions"
	RelFavors             = "favors"
	RelIntroductions      = "introductions"
	RelCountryConnections = "countryConnections"
)

// RelationError records a failed bulk insert for one relation type.
type RelationError struct {
	Relation string `json:"relation"`
	Message  string `json:"message"`
}

// EdgeSummary reports per-type created and dropped counts plus the
// recorded (non-fatal) insert errors.
type EdgeSummary struct {
	Created map[string]int  `json:"created"`
	Dropped map[string]int  `json:"dropped"`
	Errors  []RelationError `json:"errors,omitempty"`
}

// ImportEdges filters each edge list down to edges whose every ref
// resolved, rewrites refs to destination ids, and bulk-inserts per
// relation type. Relation types are uncorrelated, so they run
// concurrently; a failing type is recorded and never stops a sibling.
func ImportEdges(ctx context.Context, store RelationStore, ownerID string, s *Snapshot, refs RefMap) EdgeSummary {
	summary := EdgeSummary{
		Created: make(map[string]int),
		Dropped: make(map[string]int),
	}
	var mu sync.Mutex

	record := func(relation string, created, dropped int, err error) {
		mu.Lock()
		defer mu.Unlock()
		summary.Dropped[relation] = dropped
		if err != nil {
			summary.Created[relation] = 0
			summary.Errors = append(summary.Errors, RelationError{Relation: relation, Message: err.Error()})
			zap.L().Error("snapshot: relation insert failed",
				zap.String("relation", relation),
				zap.Error(err),
			)
			return
		}
		summary.Created[relation] = created
	}

	var g errgroup.Group

	g.Go(func() error {
		rows, dropped := resolveConnections(ownerID, s.Connections, refs)
		var err error
		if len(rows) > 0 {
			err = store.BulkInsertConnections(ctx, rows)
		}
		record(RelConnections, len(rows), dropped, err)
		return nil
	})

	g.Go(func() error {
		rows, dropped := resolveInteractions(ownerID, s.Interactions, refs)
		var err error
		if len(rows) > 0 {
			err = store.BulkInsertInteractions(ctx, rows)
		}
		record(RelInteractions, len(rows), dropped, err)
		return nil
	})

	g.Go(func() error {
		rows, dropped := resolveFavors(ownerID, s.Favors, refs)
		var err error
		if len(rows) > 0 {
			err = store.BulkInsertFavors(ctx, rows)
		}
		record(RelFavors, len(rows), dropped, err)
		return nil
	})

	g.Go(func() error {
		rows, dropped := resolveIntroductions(ownerID, s.Introductions, refs)
		var err error
		if len(rows) > 0 {
			err = store.BulkInsertIntroductions(ctx, rows)
		}
		record(RelIntroductions, len(rows), dropped, err)
		return nil
	})

	g.Go(func() error {
		rows, dropped := resolveCountryConnections(ownerID, s.CountryConnections, refs)
		var err error
		if len(rows) > 0 {
			err = store.BulkInsertCountryConnections(ctx, rows)
		}
		record(RelCountryConnections, len(rows), dropped, err)
		return nil
	})

	_ = g.Wait()

	return summary
}

func resolveConnections(ownerID string, edges []Connection, refs RefMap) ([]model.Connection, int) {
	var rows []model.Connection
	dropped := 0
	for _, e := range edges {
		src, okS := refs[e.Source]
		dst, okT := refs[e.Target]
		if !okS || !okT {
			dropped++
			continue
		}
		rows = append(rows, model.Connection{
			ID:             uuid.NewString(),
			OwnerID:        ownerID,
			SourceID:       src,
			TargetID:       dst,
			ConnectionType: e.ConnectionType,
			Notes:          e.Notes,
		})
	}
	return rows, dropped
}

func resolveInteractions(ownerID string, edges []Interaction, refs RefMap) ([]model.Interaction, int) {
	var rows []model.Interaction
	dropped := 0
	for _, e := range edges {
		id, ok := refs[e.Contact]
		if !ok {
			dropped++
			continue
		}
		rows = append(rows, model.Interaction{
			ID:        uuid.NewString(),
			OwnerID:   ownerID,
			ContactID: id,
			Type:      e.Type,
			Date:      e.Date,
			Notes:     e.Notes,
		})
	}
	return rows, dropped
}

func resolveFavors(ownerID string, edges []Favor, refs RefMap) ([]model.Favor, int) {
	var rows []model.Favor
	dropped := 0
	for _, e := range edges {
		id, ok := refs[e.Contact]
		if !ok {
			dropped++
			continue
		}
		rows = append(rows, model.Favor{
			ID:        uuid.NewString(),
			OwnerID:   ownerID,
			ContactID: id,
			Direction: e.Direction,
			Type:      e.Type,
			Value:     e.Value,
			Status:    e.Status,
		})
	}
	return rows, dropped
}

func resolveIntroductions(ownerID string, edges []Introduction, refs RefMap) ([]model.Introduction, int) {
	var rows []model.Introduction
	dropped := 0
	for _, e := range edges {
		a, okA := refs[e.ContactA]
		b, okB := refs[e.ContactB]
		if !okA || !okB {
			dropped++
			continue
		}
		rows = append(rows, model.Introduction{
			ID:          uuid.NewString(),
			OwnerID:     ownerID,
			ContactAID:  a,
			ContactBID:  b,
			InitiatedBy: e.InitiatedBy,
			Status:      e.Status,
			Notes:       e.Notes,
		})
	}
	return rows, dropped
}

func resolveCountryConnections(ownerID string, edges []CountryConnection, refs RefMap) ([]model.CountryConnection, int) {
	var rows []model.CountryConnection
	dropped := 0
	for _, e := range edges {
		id, ok := refs[e.Contact]
		if !ok {
			dropped++
			continue
		}
		rows = append(rows, model.CountryConnection{
			ID:        uuid.NewString(),
			OwnerID:   ownerID,
			ContactID: id,
			Country:   e.Country,
			Relation:  e.Relation,
		})
	}
	return rows, dropped
}
