package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/policysync/mongofetch/api"
	"github.com/policysync/mongofetch/internal/metrics"
)

// Provider executes one source entry against a data source and folds the
// result per the entry's transform policy. A Provider is stateless and
// safe for concurrent use; each Fetch call is an independent logical
// flow.
type Provider struct {
	log *slog.Logger
}

func NewProvider(log *slog.Logger) *Provider {
	if log == nil {
		log = slog.Default()
	}
	return &Provider{log: log}
}

// Fetch validates the entry, runs the selected query mode and applies the
// transform.
//
// A malformed entry (zero or several query modes) is recovered locally:
// Fetch logs a warning and returns an empty sequence with a nil error.
// Errors reported by the data source or the transform are logged with the
// operation name and the error's type, then returned to the caller; the
// provider itself never retries or suppresses them.
func (p *Provider) Fetch(ctx context.Context, src *api.Source, ds DataSource) (any, error) {
	q, err := Resolve(src)
	if err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			p.log.Warn("skipping malformed source entry",
				"collection", src.Collection, "reason", cfgErr.Reason)
			metrics.FetchesTotal.WithLabelValues("invalid", "skipped").Inc()
			return []map[string]any{}, nil
		}
		return nil, err
	}

	docs, err := p.run(ctx, q, src, ds)
	if err != nil {
		p.log.Error("query execution failed",
			"mode", q.Mode.String(), "collection", src.Collection,
			"errorType", errType(err), "error", err)
		metrics.FetchesTotal.WithLabelValues(q.Mode.String(), "error").Inc()
		return nil, err
	}
	metrics.DocumentsFetched.Add(float64(len(docs)))

	out, err := p.fold(q, src.Transform, docs)
	if err != nil {
		p.log.Error("transform failed",
			"mode", q.Mode.String(), "collection", src.Collection,
			"errorType", errType(err), "error", err)
		metrics.FetchesTotal.WithLabelValues(q.Mode.String(), "error").Inc()
		return nil, err
	}

	metrics.FetchesTotal.WithLabelValues(q.Mode.String(), "ok").Inc()
	return out, nil
}

// run dispatches the selected query mode and collects the raw result set.
func (p *Provider) run(ctx context.Context, q *Query, src *api.Source, ds DataSource) ([]map[string]any, error) {
	coll := ds.Collection(src.Database, src.Collection)
	first := src.Transform != nil && src.Transform.First

	switch q.Mode {
	case ModeFindOne:
		p.log.Debug("executing findOne query", "collection", src.Collection)
		doc, err := coll.FindOne(ctx, q.FindOne.Query, q.FindOne.Projection, q.FindOne.Options)
		if err != nil {
			return nil, fmt.Errorf("findOne: %w", err)
		}
		if doc == nil {
			return nil, nil
		}
		return []map[string]any{doc}, nil

	case ModeFind:
		p.log.Debug("executing find query", "collection", src.Collection, "first", first)
		cur, err := coll.Find(ctx, q.Find.Query, q.Find.Projection, q.Find.Options)
		if err != nil {
			return nil, fmt.Errorf("find: %w", err)
		}
		docs, err := drain(ctx, cur, first)
		if err != nil {
			return nil, fmt.Errorf("find: %w", err)
		}
		return docs, nil

	case ModeAggregate:
		p.log.Debug("executing aggregation pipeline",
			"collection", src.Collection, "stages", len(q.Aggregate.Pipeline), "first", first)
		cur, err := coll.Aggregate(ctx, q.Aggregate.Pipeline, q.Aggregate.Options)
		if err != nil {
			return nil, fmt.Errorf("aggregate: %w", err)
		}
		docs, err := drain(ctx, cur, first)
		if err != nil {
			return nil, fmt.Errorf("aggregate: %w", err)
		}
		return docs, nil
	}

	return nil, fmt.Errorf("unknown query mode %d", q.Mode)
}

// drain collects documents from the cursor in iteration order. When first
// is set it materializes at most one document and abandons the rest, so a
// large result set is never pulled over the wire for a single-document
// transform. The cursor is closed in every path.
func drain(ctx context.Context, cur Cursor, first bool) ([]map[string]any, error) {
	var docs []map[string]any
	var iterErr error

	for cur.Next(ctx) {
		doc, err := cur.Current()
		if err != nil {
			iterErr = err
			break
		}
		docs = append(docs, doc)
		if first {
			break
		}
	}
	if iterErr == nil {
		iterErr = cur.Err()
	}

	closeErr := cur.Close(ctx)
	if iterErr != nil {
		return nil, iterErr
	}
	if closeErr != nil {
		return nil, closeErr
	}
	return docs, nil
}

// errType names the innermost error's concrete type for operator-facing
// log lines.
func errType(err error) string {
	for {
		inner := errors.Unwrap(err)
		if inner == nil {
			return fmt.Sprintf("%T", err)
		}
		err = inner
	}
}

// fold applies the transform policy. findOne output is always collapsed
// to a single document, or an empty object when nothing matched,
// regardless of the transform flags.
func (p *Provider) fold(q *Query, t *api.TransformParams, docs []map[string]any) (any, error) {
	if q.Mode == ModeFindOne {
		if len(docs) > 0 && docs[0] != nil {
			return docs[0], nil
		}
		return map[string]any{}, nil
	}
	return applyTransform(t, docs)
}
