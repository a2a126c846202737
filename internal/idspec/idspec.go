// Package idspec parses compact video ID specifications such as "1,2,5-10,12"
// or the keyword "all" into a concrete set of IDs.
package idspec

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cijsubs/cijsubs/internal/apperrors"
)

// AllKeyword selects every video listed by the catalog. It is case-sensitive.
const AllKeyword = "all"

// MaxRangeSpan is the largest number of IDs a single lo-hi token may expand to.
const MaxRangeSpan = 100000

// Set is an ascending, duplicate-free list of video IDs.
type Set []int

// Contains reports whether id is in the set.
func (s Set) Contains(id int) bool {
	i := sort.SearchInts(s, id)
	return i < len(s) && s[i] == id
}

// Spec is a parsed ID specification. When All is true, IDs is nil and the
// caller resolves the set through the catalog.
type Spec struct {
	All bool
	IDs Set
}

// Parse parses an ID specification. Any malformed token invalidates the
// whole specification and is reported as *apperrors.ParseError.
func Parse(input string) (Spec, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Spec{}, apperrors.NewParseError(input, "empty specification")
	}
	if trimmed == AllKeyword {
		return Spec{All: true}, nil
	}

	seen := make(map[int]struct{})
	for _, raw := range strings.Split(trimmed, ",") {
		token := strings.TrimSpace(raw)
		lo, hi, err := parseToken(token)
		if err != nil {
			return Spec{}, err
		}
		// hi may be math.MaxInt, so stop on equality instead of id <= hi.
		for id := lo; ; id++ {
			seen[id] = struct{}{}
			if id == hi {
				break
			}
		}
	}

	return Spec{IDs: FromMap(seen)}, nil
}

// FromMap builds a Set from the keys of m.
func FromMap(m map[int]struct{}) Set {
	ids := make(Set, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func parseToken(token string) (int, int, error) {
	if token == "" {
		return 0, 0, apperrors.NewParseError(token, "empty segment")
	}

	loStr, hiStr, isRange := strings.Cut(token, "-")
	if !isRange {
		n, err := parseID(token, token)
		return n, n, err
	}

	lo, err := parseID(token, strings.TrimSpace(loStr))
	if err != nil {
		return 0, 0, err
	}
	hi, err := parseID(token, strings.TrimSpace(hiStr))
	if err != nil {
		return 0, 0, err
	}
	if lo > hi {
		return 0, 0, apperrors.NewParseError(token, "range start exceeds end")
	}
	if hi-lo >= MaxRangeSpan {
		return 0, 0, apperrors.NewParseError(token, fmt.Sprintf("range spans more than %d ids", MaxRangeSpan))
	}
	return lo, hi, nil
}

// parseID accepts only plain decimal digits, so signs and a second "-" in
// a range token are rejected here.
func parseID(token, s string) (int, error) {
	if s == "" {
		return 0, apperrors.NewParseError(token, "missing number")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, apperrors.NewParseError(token, "not a number")
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperrors.NewParseError(token, "number out of range")
	}
	if n == 0 {
		return 0, apperrors.NewParseError(token, "ids start at 1")
	}
	return n, nil
}
