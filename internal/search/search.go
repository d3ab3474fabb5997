// Package search filters and ranks vehicle snapshots.
//
// Everything here is pure: callers pass an already-fetched slice and get a new
// slice back. Nothing is cached between calls and the input is never modified,
// so Select is safe to call from many goroutines at once.
package search

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"citymove/internal/domain/entities"
	"citymove/internal/geo"
)

var (
	// ErrInvalidCriteria is returned when the criteria themselves are
	// incoherent. Select does no work in that case.
	ErrInvalidCriteria = errors.New("invalid query criteria")

	// ErrMalformedField marks a record field that could not be interpreted.
	// Select never returns it; the affected record is ranked last instead.
	ErrMalformedField = errors.New("malformed field")
)

// Mode labels which stages a selection ran, for logging and metrics.
type Mode string

const (
	ModeRanked    Mode = "ranked"
	ModeProximity Mode = "proximity"
)

// ModeOf returns ModeProximity when c carries an origin.
func ModeOf(c entities.QueryCriteria) Mode {
	if c.Origin != nil {
		return ModeProximity
	}
	return ModeRanked
}

// Validate checks that c describes one coherent query.
func Validate(c entities.QueryCriteria) error {
	switch {
	case c.Origin != nil && c.RadiusKm == nil:
		return fmt.Errorf("%w: proximity origin without radius", ErrInvalidCriteria)
	case c.Origin == nil && c.RadiusKm != nil:
		return fmt.Errorf("%w: radius without proximity origin", ErrInvalidCriteria)
	case c.RadiusKm != nil && (*c.RadiusKm < 0 || math.IsNaN(*c.RadiusKm)):
		return fmt.Errorf("%w: radius must be non-negative, got %v", ErrInvalidCriteria, *c.RadiusKm)
	case !c.SortBy.Known():
		return fmt.Errorf("%w: unknown sort key %q", ErrInvalidCriteria, c.SortBy)
	case c.Category != nil && !c.Category.Known():
		return fmt.Errorf("%w: unknown category %q", ErrInvalidCriteria, *c.Category)
	case c.MaxPrice != nil && (*c.MaxPrice < 0 || math.IsNaN(*c.MaxPrice)):
		return fmt.Errorf("%w: max price must be non-negative, got %v", ErrInvalidCriteria, *c.MaxPrice)
	}
	return nil
}

// Select narrows records by c and orders the remainder.
//
// Stages run in this order: proximity, route text, category, max price, sort.
// Each stage keeps the relative order of what it retains, and the sort is
// stable, so records that compare equal stay in input order.
func Select(records []entities.Vehicle, c entities.QueryCriteria) ([]entities.Vehicle, error) {
	if err := Validate(c); err != nil {
		return nil, err
	}

	out := make([]entities.Vehicle, 0, len(records))
	for _, v := range records {
		if keep(v, c) {
			out = append(out, v)
		}
	}

	if c.SortBy != entities.SortNone {
		sortStable(out, c.SortBy)
	}
	return out, nil
}

func keep(v entities.Vehicle, c entities.QueryCriteria) bool {
	if c.Origin != nil && !geo.Within(*c.Origin, v.Position, *c.RadiusKm) {
		return false
	}
	if (c.From != "" || c.To != "") && !MatchesRoute(v.Route, c.From, c.To) {
		return false
	}
	if c.Category != nil && v.Category != *c.Category {
		return false
	}
	if c.MaxPrice != nil && !(v.Price <= *c.MaxPrice) {
		return false
	}
	return true
}

// MatchesRoute reports whether "<from> <to>" occurs in route, ignoring case.
//
// This is a loose substring test over the whole route text, not a check that
// from and to are stops on the route in that order.
func MatchesRoute(route, from, to string) bool {
	term := strings.TrimSpace(from + " " + to)
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(route), strings.ToLower(term))
}

// ParseLeadingInt extracts the integer at the start of text such as "25 mins".
// Only the first whitespace-separated token is considered, and only its
// leading digits, so "25mins" also yields 25. A single leading '+' is
// accepted; negative values are malformed.
func ParseLeadingInt(text string) (int, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, fmt.Errorf("%w: empty value", ErrMalformedField)
	}
	token := strings.TrimPrefix(fields[0], "+")
	end := strings.IndexFunc(token, func(r rune) bool { return r < '0' || r > '9' })
	if end == -1 {
		end = len(token)
	}
	if end == 0 {
		return 0, fmt.Errorf("%w: %q has no leading integer", ErrMalformedField, text)
	}
	n, err := strconv.Atoi(token[:end])
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrMalformedField, text, err)
	}
	return n, nil
}

// rank is a sort key where unparseable values compare greater than any
// parseable one.
type rank struct {
	ok    bool
	value float64
}

func (a rank) less(b rank) bool {
	if a.ok != b.ok {
		return a.ok
	}
	return a.value < b.value
}

func rankOf(v entities.Vehicle, key entities.SortKey) rank {
	var text string
	switch key {
	case entities.SortByPrice:
		return rank{ok: true, value: v.Price}
	case entities.SortByDuration:
		text = v.Duration
	case entities.SortByNextArrival:
		text = v.NextAvailable
	}
	n, err := ParseLeadingInt(text)
	if err != nil {
		return rank{}
	}
	return rank{ok: true, value: float64(n)}
}

func sortStable(vs []entities.Vehicle, key entities.SortKey) {
	ranks := make([]rank, len(vs))
	for i, v := range vs {
		ranks[i] = rankOf(v, key)
	}
	sort.Stable(byRank{vs: vs, ranks: ranks})
}

// byRank sorts vehicles and their precomputed ranks together.
type byRank struct {
	vs    []entities.Vehicle
	ranks []rank
}

func (b byRank) Len() int           { return len(b.vs) }
func (b byRank) Less(i, j int) bool { return b.ranks[i].less(b.ranks[j]) }
func (b byRank) Swap(i, j int) {
	b.vs[i], b.vs[j] = b.vs[j], b.vs[i]
	b.ranks[i], b.ranks[j] = b.ranks[j], b.ranks[i]
}
