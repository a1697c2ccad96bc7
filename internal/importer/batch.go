// Package importer matches freshly parsed external records against an
// existing stored corpus. This is lookup, not clustering: one-sided,
// first-hit, no symmetric groups.
package importer

import (
	"strings"

	"github.com/orbitnotes/orbit-cli/internal/identity"
	"github.com/orbitnotes/orbit-cli/internal/model"
)

// Action says what to do with one incoming record.
type Action int

// Actions.
const (
	ActionCreate Action = iota + 1
	ActionSkip
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// Classified is one incoming record with its match decision.
type Classified struct {
	Record    model.ParsedContact
	Action    Action
	MatchedID string // existing contact id when skipped
}

// Result is the outcome of classifying a parsed batch.
type Result struct {
	Records []Classified
	// Dropped counts intra-batch duplicates removed before any
	// matching against storage.
	Dropped int
}

// DedupBatch removes duplicates within an incoming batch. A record is
// dropped when its normalized email, or (if a phone is present) its
// normalized phone, or (when it carries neither) its normalized name
// collides with an earlier record already kept. First occurrence wins.
func DedupBatch(batch []model.ParsedContact) ([]model.ParsedContact, int) {
	seenEmail := make(map[string]bool)
	seenPhone := make(map[string]bool)
	seenName := make(map[string]bool)

	kept := make([]model.ParsedContact, 0, len(batch))
	dropped := 0

	for _, rec := range batch {
		email := identity.NormalizeEmail(rec.Email)
		phone := identity.NormalizePhone(rec.Phone)
		name := identity.NormalizeName(rec.Name)

		collides := false
		switch {
		case email != "" && seenEmail[email]:
			collides = true
		case phone != "" && seenPhone[phone]:
			collides = true
		case email == "" && phone == "" && name != "" && seenName[name]:
			collides = true
		}
		if collides {
			dropped++
			continue
		}

		if email != "" {
			seenEmail[email] = true
		}
		if phone != "" {
			seenPhone[phone] = true
		}
		if name != "" {
			seenName[name] = true
		}
		kept = append(kept, rec)
	}

	return kept, dropped
}

// Matcher holds the lookup maps built once from the existing corpus.
type Matcher struct {
	existing []model.Contact
	byEmail  map[string]int
	byPhone  map[string]int
}

// NewMatcher indexes the existing corpus by normalized email and by
// normalized phone (digit length >= 7). First occurrence wins on key
// collisions.
func NewMatcher(existing []model.Contact) *Matcher {
	m := &Matcher{
		existing: existing,
		byEmail:  make(map[string]int),
		byPhone:  make(map[string]int),
	}
	for i := range existing {
		if k := identity.NormalizeEmail(existing[i].Email); k != "" {
			if _, ok := m.byEmail[k]; !ok {
				m.byEmail[k] = i
			}
		}
		if k := identity.NormalizePhone(existing[i].Phone); len(strings.TrimPrefix(k, "+")) >= 7 {
			if _, ok := m.byPhone[k]; !ok {
				m.byPhone[k] = i
			}
		}
	}
	return m
}

// Match finds the stored contact an incoming record duplicates, checked
// in order: exact email, exact phone, then a linear NamesMatch scan
// where the first hit wins (never the closest). Returns nil when the
// record is new.
func (m *Matcher) Match(rec model.ParsedContact) *model.Contact {
	if k := identity.NormalizeEmail(rec.Email); k != "" {
		if i, ok := m.byEmail[k]; ok {
			return &m.existing[i]
		}
	}
	if k := identity.NormalizePhone(rec.Phone); k != "" {
		if i, ok := m.byPhone[k]; ok {
			return &m.existing[i]
		}
	}
	for i := range m.existing {
		if identity.NamesMatch(rec.Name, m.existing[i].Name) {
			return &m.existing[i]
		}
	}
	return nil
}

// Classify dedups the batch, then decides create/skip per surviving
// record against the indexed corpus.
func (m *Matcher) Classify(batch []model.ParsedContact) Result {
	kept, dropped := DedupBatch(batch)

	res := Result{
		Records: make([]Classified, 0, len(kept)),
		Dropped: dropped,
	}
	for _, rec := range kept {
		if hit := m.Match(rec); hit != nil {
			res.Records = append(res.Records, Classified{Record: rec, Action: ActionSkip, MatchedID: hit.ID})
			continue
		}
		res.Records = append(res.Records, Classified{Record: rec, Action: ActionCreate})
	}
	return res
}
