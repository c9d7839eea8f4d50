// Package identifier converts raw column labels into warehouse-safe names.
package identifier

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	illegalRuns    = regexp.MustCompile(`[^0-9a-z_]+`)
	underscoreRuns = regexp.MustCompile(`_+`)
)

// Normalize maps raw column labels to unique identifiers that are safe as
// warehouse column names: lowercase ASCII letters, digits, and underscores,
// never empty, never starting with a digit.
//
// The output has the same length and order as the input. Collisions are
// resolved left to right in a single pass: the first occurrence of a base
// keeps the unsuffixed form, later occurrences get _2, _3, and so on.
func Normalize(labels []string) []string {
	out := make([]string, 0, len(labels))
	used := make(map[string]struct{}, len(labels))

	for _, label := range labels {
		s := strings.ToLower(strings.TrimSpace(label))
		s = illegalRuns.ReplaceAllString(s, "_")
		s = underscoreRuns.ReplaceAllString(s, "_")
		s = strings.Trim(s, "_")
		if s == "" || (s[0] >= '0' && s[0] <= '9') {
			s = "c_" + s
		}

		base, n := s, 1
		for {
			if _, taken := used[s]; !taken {
				break
			}
			n++
			s = base + "_" + strconv.Itoa(n)
		}

		used[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Rename records a single label change produced by Normalize.
type Rename struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// Renames pairs up the positions where normalization changed a label.
// Unchanged labels are omitted. Both slices must have the same length.
func Renames(before, after []string) []Rename {
	var renames []Rename
	for i := range before {
		if i < len(after) && before[i] != after[i] {
			renames = append(renames, Rename{Old: before[i], New: after[i]})
		}
	}
	return renames
}

// FormatRenames renders renames as a compact "old->new; old->new" list for
// log output.
func FormatRenames(renames []Rename) string {
	parts := make([]string, 0, len(renames))
	for _, r := range renames {
		parts = append(parts, r.Old+"->"+r.New)
	}
	return strings.Join(parts, "; ")
}
