package fetch

import "context"

// DataSource is the surface the provider needs from a document store
// client. The mongodb package implements it over the official driver;
// tests implement it with in-memory fakes.
type DataSource interface {
	// Collection addresses a named collection within an optional database.
	// An empty database selects the client's default.
	Collection(database, name string) Collection
}

// Collection exposes the three supported query modes.
type Collection interface {
	// FindOne returns the matching document, or nil when nothing matches.
	// A missing document is not an error.
	FindOne(ctx context.Context, filter, projection, opts map[string]any) (map[string]any, error)

	// Find returns a cursor over documents matching the filter.
	Find(ctx context.Context, filter, projection, opts map[string]any) (Cursor, error)

	// Aggregate runs a pipeline and returns a cursor over its output.
	Aggregate(ctx context.Context, pipeline []map[string]any, opts map[string]any) (Cursor, error)
}

// Cursor is a lazy iterator over a result set. Iteration order is the
// order the data source produced. Callers must Close the cursor whether
// or not they drain it.
type Cursor interface {
	// Next advances the cursor, reporting whether a document is available.
	Next(ctx context.Context) bool
	// Current decodes the document the cursor is positioned on.
	Current() (map[string]any, error)
	// Err reports any error that ended iteration early.
	Err() error
	Close(ctx context.Context) error
}
