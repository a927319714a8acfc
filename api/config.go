// Package api defines the configuration schema for mongofetch source
// entries. It maps the declarative shape sent by the orchestration layer
// onto Go types: which collection to query, which of the three query
// modes to run, and how to reshape the result before ingestion.
package api

// FindOneParams configures a single-document lookup.
type FindOneParams struct {
	// Query is the document filter.
	Query map[string]any `json:"query"`
	// Projection selects which fields the server returns.
	Projection map[string]any `json:"projection,omitempty"`
	// Options are passed through to the driver call.
	Options map[string]any `json:"options,omitempty"`
}

// FindParams configures a filtered multi-document query.
type FindParams struct {
	// Query is the document filter.
	Query map[string]any `json:"query"`
	// Projection selects which fields the server returns.
	Projection map[string]any `json:"projection,omitempty"`
	// Options are passed through to the driver call.
	Options map[string]any `json:"options,omitempty"`
}

// AggregateParams configures an aggregation pipeline run.
type AggregateParams struct {
	// Pipeline is the ordered list of pipeline stages.
	Pipeline []map[string]any `json:"pipeline"`
	// Options are passed through to the driver call.
	Options map[string]any `json:"options,omitempty"`
}

// TransformParams governs how a result sequence is folded before it is
// handed to the consumer. Only one policy applies per fetch; when several
// are set, First wins over Merge, and Merge wins over MapKey.
type TransformParams struct {
	// First keeps only the first document. Honored by find and aggregate;
	// findOne results are inherently singular.
	First bool `json:"first,omitempty"`
	// MapKey turns the sequence into an object keyed by each document's
	// value at the named field. Dotted names address nested fields.
	MapKey string `json:"mapKey,omitempty"`
	// Merge folds all documents into one object, later keys overwriting
	// earlier ones.
	Merge bool `json:"merge,omitempty"`
}

// Source is one fetch entry: a connection target plus exactly one query
// mode and an optional transform. Setting zero or several of FindOne,
// Find and Aggregate makes the entry malformed; it is then skipped with
// an empty result rather than failing the whole batch.
type Source struct {
	// URI is the MongoDB connection string. Optional here; the CLI falls
	// back to the manifest-level uri and then to MONGOFETCH_URI.
	URI string `json:"uri,omitempty"`
	// Database holding the collection. When empty, the database named in
	// the URI path is used.
	Database string `json:"database,omitempty"`
	// Collection to run the query against.
	Collection string `json:"collection"`

	FindOne   *FindOneParams   `json:"findOne,omitempty"`
	Find      *FindParams      `json:"find,omitempty"`
	Aggregate *AggregateParams `json:"aggregate,omitempty"`

	Transform *TransformParams `json:"transform,omitempty"`
}
