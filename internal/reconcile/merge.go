// Package reconcile merges a freshly fetched remote collection into the local
// one with last-write-wins semantics and surfaces conflicting edits.
//
// A conflict exists when a local record shares its identity with a remote
// record, the remote record carries a timestamp, and the local record is
// either dirty or strictly newer, and the two disagree on text or category. PolicyServer resolves it in favour of the
// remote record immediately; PolicyManual keeps the local record for now and
// reports the conflict so the user can choose with Resolve.
package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/five82/quotebox/internal/quote"
)

// Policy selects how conflicts are handled during a merge.
type Policy string

const (
	PolicyServer Policy = "server"
	PolicyManual Policy = "manual"
)

// ParsePolicy maps a config value to a Policy.
func ParsePolicy(value string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(value))) {
	case "", PolicyServer:
		return PolicyServer, nil
	case PolicyManual:
		return PolicyManual, nil
	default:
		return "", fmt.Errorf("unknown conflict policy %q", value)
	}
}

// Conflict pairs a local record with the remote record that disagrees with it.
type Conflict struct {
	ID     string
	Local  quote.Record
	Remote quote.Record
}

// Result is the outcome of a merge.
type Result struct {
	Records   []quote.Record
	Conflicts []Conflict
	Added     int
	Updated   int
	Migrated  int
}

// Changed reports whether the merged collection differs from the local input.
func (r Result) Changed() bool {
	return r.Added > 0 || r.Updated > 0 || r.Migrated > 0
}

// Merge reconciles local against remote. The inputs are not modified.
//
// Local order is preserved; remote records with no local counterpart are
// appended in remote order. Local-only records pass through untouched,
// including their dirty flag, so unpushed additions are retried next cycle.
// Records reconciled against the remote lose their dirty flag. A remote
// record whose text and category already match the local one is not an
// update, whatever its timestamp says; endpoints without updatedAt get a new
// fetch time stamped on every cycle.
func Merge(local, remote []quote.Record, policy Policy) Result {
	out := quote.Clone(local)
	if out == nil {
		out = []quote.Record{}
	}

	byID := make(map[string]int, len(out))
	for i, r := range out {
		byID[r.ID] = i
	}
	// Records still carrying a text-derived ID can be claimed once by a
	// remote record with the same text.
	legacyByText := make(map[string][]int)
	for i, r := range out {
		if r.HasLegacyID() {
			legacyByText[r.Text] = append(legacyByText[r.Text], i)
		}
	}

	var res Result
	for _, rem := range remote {
		rem.Dirty = false

		idx, ok := byID[rem.ID]
		if !ok {
			if candidates := legacyByText[rem.Text]; len(candidates) > 0 {
				li := candidates[0]
				legacyByText[rem.Text] = candidates[1:]
				delete(byID, out[li].ID)
				out[li].ID = rem.ID
				byID[rem.ID] = li
				idx, ok = li, true
				res.Migrated++
			}
		}
		if !ok {
			byID[rem.ID] = len(out)
			out = append(out, rem)
			res.Added++
			continue
		}

		loc := out[idx]
		if sameFields(loc, rem) {
			if loc.Dirty {
				loc.Dirty = false
				out[idx] = loc
				res.Updated++
			}
			continue
		}
		if isConflict(loc, rem) {
			if policy == PolicyManual {
				res.Conflicts = append(res.Conflicts, Conflict{ID: rem.ID, Local: loc, Remote: rem})
				continue
			}
			out[idx] = rem
			res.Updated++
			continue
		}
		if !after(loc.UpdatedAt, rem.UpdatedAt) {
			out[idx] = rem
			res.Updated++
		}
	}

	res.Records = out
	return res
}

func sameFields(local, remote quote.Record) bool {
	return local.Text == remote.Text && local.Category == remote.Category
}

func isConflict(local, remote quote.Record) bool {
	if remote.UpdatedAt.IsZero() {
		return false
	}
	return local.Dirty || after(local.UpdatedAt, remote.UpdatedAt)
}

// after compares at the millisecond precision timestamps travel with.
func after(a, b time.Time) bool {
	return a.UnixMilli() > b.UnixMilli()
}
