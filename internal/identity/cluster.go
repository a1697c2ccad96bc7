package identity

import (
	"sort"
	"strings"

	"github.com/orbitnotes/orbit-cli/internal/model"
)

// DuplicateGroup is a set of contacts believed to denote one person.
// Groups are recomputed from current data on every run, never persisted.
type DuplicateGroup struct {
	// ID is the sorted concatenation of member contact ids, stable
	// across runs for the same membership.
	ID         string     `json:"id"`
	ContactIDs []string   `json:"contact_ids"`
	Confidence Confidence `json:"confidence"`
	Field      MatchField `json:"field"`
}

// pairKey identifies an unordered index pair, lo < hi.
type pairKey struct {
	lo, hi int
}

func keyFor(a, b int) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// FindDuplicates clusters a contact corpus into duplicate groups.
//
// Exact passes bucket by normalized email and normalized phone (digit
// length >= 7) and union every bucket member with the bucket's first
// member. The fuzzy pass then runs pairwise NamesMatch over only the
// contacts left untouched by the exact passes; a contact that already
// exact-matched a peer is never fuzzy-compared to a third. This bounds
// the O(k^2) pass to the genuinely ambiguous subset and is deliberate,
// so full transitive closure across the exact/fuzzy boundary does not
// occur.
//
// Singleton groups are discarded. Each surviving group reports the most
// exact evidence among its intra-group pairs. Groups come back sorted
// by descending member count.
func FindDuplicates(contacts []model.Contact) []DuplicateGroup {
	n := len(contacts)
	if n < 2 {
		return nil
	}

	d := newDSU(n)
	evidence := make(map[pairKey]Evidence)
	matched := make([]bool, n)

	unionBucket := func(idxs []int, ev Evidence) {
		if len(idxs) < 2 {
			return
		}
		first := idxs[0]
		for _, j := range idxs[1:] {
			d.union(first, j)
			evidence[keyFor(first, j)] = ev
			matched[j] = true
		}
		matched[first] = true
	}

	// Pass 1: exact email buckets.
	emailBuckets := make(map[string][]int)
	var emailKeys []string
	for i := range contacts {
		k := NormalizeEmail(contacts[i].Email)
		if k == "" {
			continue
		}
		if _, seen := emailBuckets[k]; !seen {
			emailKeys = append(emailKeys, k)
		}
		emailBuckets[k] = append(emailBuckets[k], i)
	}
	for _, k := range emailKeys {
		unionBucket(emailBuckets[k], ExactEmail())
	}

	// Pass 2: exact phone buckets. Contacts already email-matched stay
	// eligible; unioning is idempotent.
	phoneBuckets := make(map[string][]int)
	var phoneKeys []string
	for i := range contacts {
		k := NormalizePhone(contacts[i].Phone)
		if k == "" || len(phoneDigits(k)) < minPhoneDigits {
			continue
		}
		if _, seen := phoneBuckets[k]; !seen {
			phoneKeys = append(phoneKeys, k)
		}
		phoneBuckets[k] = append(phoneBuckets[k], i)
	}
	for _, k := range phoneKeys {
		unionBucket(phoneBuckets[k], ExactPhone())
	}

	// Pass 3: fuzzy names over the unmatched subset only.
	var unmatched []int
	for i := range contacts {
		if !matched[i] {
			unmatched = append(unmatched, i)
		}
	}
	for a := 0; a < len(unmatched); a++ {
		for b := a + 1; b < len(unmatched); b++ {
			i, j := unmatched[a], unmatched[b]
			if NamesMatch(contacts[i].Name, contacts[j].Name) {
				d.union(i, j)
				evidence[keyFor(i, j)] = PossibleName()
			}
		}
	}

	// Read out groups by root, discarding singletons.
	byRoot := make(map[int][]int)
	var roots []int
	for i := range contacts {
		r := d.find(i)
		if _, seen := byRoot[r]; !seen {
			roots = append(roots, r)
		}
		byRoot[r] = append(byRoot[r], i)
	}

	var groups []DuplicateGroup
	for _, r := range roots {
		members := byRoot[r]
		if len(members) < 2 {
			continue
		}

		// Best evidence over intra-group pairs. Exact beats Possible;
		// among equal confidence the last-recorded field wins, which is
		// deterministic but carries no meaning.
		var best Evidence
		for a := 0; a < len(members); a++ {
			for b := a + 1; b < len(members); b++ {
				ev, ok := evidence[keyFor(members[a], members[b])]
				if !ok {
					continue
				}
				if best.IsZero() || ev.Confidence() >= best.Confidence() {
					best = ev
				}
			}
		}

		ids := make([]string, len(members))
		for i, m := range members {
			ids[i] = contacts[m].ID
		}
		sort.Strings(ids)

		groups = append(groups, DuplicateGroup{
			ID:         strings.Join(ids, "-"),
			ContactIDs: ids,
			Confidence: best.Confidence(),
			Field:      best.Field(),
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i].ContactIDs) != len(groups[j].ContactIDs) {
			return len(groups[i].ContactIDs) > len(groups[j].ContactIDs)
		}
		return groups[i].ID < groups[j].ID
	})

	return groups
}
