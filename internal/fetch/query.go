// Package fetch implements the core fetch pipeline: validating a source
// entry's query selection, dispatching the selected query mode against a
// data source, and folding the resulting documents per the entry's
// transform policy.
package fetch

import (
	"github.com/policysync/mongofetch/api"
)

// Mode identifies which query operation a validated entry runs.
type Mode int

const (
	ModeFindOne Mode = iota
	ModeFind
	ModeAggregate
)

func (m Mode) String() string {
	switch m {
	case ModeFindOne:
		return "findOne"
	case ModeFind:
		return "find"
	case ModeAggregate:
		return "aggregate"
	}
	return "unknown"
}

// Query is a validated query selection: a mode tag plus the single
// matching payload. Resolve guarantees exactly one payload is set, so
// downstream code never re-checks the exclusivity invariant.
type Query struct {
	Mode      Mode
	FindOne   *api.FindOneParams
	Find      *api.FindParams
	Aggregate *api.AggregateParams
}

// Resolve checks that the source entry selects exactly one query mode and
// returns it tagged. Zero or multiple selected modes yield a *ConfigError.
func Resolve(src *api.Source) (*Query, error) {
	var q *Query
	selected := 0

	if src.FindOne != nil {
		selected++
		q = &Query{Mode: ModeFindOne, FindOne: src.FindOne}
	}
	if src.Find != nil {
		selected++
		q = &Query{Mode: ModeFind, Find: src.Find}
	}
	if src.Aggregate != nil {
		selected++
		q = &Query{Mode: ModeAggregate, Aggregate: src.Aggregate}
	}

	switch {
	case selected == 0:
		return nil, &ConfigError{Reason: "one of findOne, find or aggregate must be set"}
	case selected > 1:
		return nil, &ConfigError{Reason: "only one of findOne, find or aggregate may be set"}
	}
	return q, nil
}
