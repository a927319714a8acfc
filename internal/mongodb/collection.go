package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/policysync/mongofetch/internal/fetch"
)

type collection struct {
	coll *mongo.Collection
	log  *slog.Logger
}

// FindOne implements fetch.Collection. A missing document is reported as
// (nil, nil), not as an error.
func (c *collection) FindOne(ctx context.Context, filter, projection, opts map[string]any) (map[string]any, error) {
	fo := parseQueryOpts(opts, c.log).findOne()
	if projection != nil {
		fo.SetProjection(projection)
	}

	var doc map[string]any
	err := c.coll.FindOne(ctx, orEmptyFilter(filter), fo).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.coll.Name(), err)
	}
	return doc, nil
}

// Find implements fetch.Collection.
func (c *collection) Find(ctx context.Context, filter, projection, opts map[string]any) (fetch.Cursor, error) {
	fo := parseQueryOpts(opts, c.log).find()
	if projection != nil {
		fo.SetProjection(projection)
	}

	cur, err := c.coll.Find(ctx, orEmptyFilter(filter), fo)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.coll.Name(), err)
	}
	return &cursor{cur: cur}, nil
}

// Aggregate implements fetch.Collection.
func (c *collection) Aggregate(ctx context.Context, pipeline []map[string]any, opts map[string]any) (fetch.Cursor, error) {
	ao := parseQueryOpts(opts, c.log).aggregate()

	// The driver rejects a nil pipeline; an empty one is a valid identity
	// aggregation.
	if pipeline == nil {
		pipeline = []map[string]any{}
	}

	cur, err := c.coll.Aggregate(ctx, pipeline, ao)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.coll.Name(), err)
	}
	return &cursor{cur: cur}, nil
}

func orEmptyFilter(filter map[string]any) any {
	if filter == nil {
		return bson.M{}
	}
	return filter
}

// cursor adapts the driver cursor to fetch.Cursor.
type cursor struct {
	cur *mongo.Cursor
}

func (c *cursor) Next(ctx context.Context) bool {
	return c.cur.Next(ctx)
}

func (c *cursor) Current() (map[string]any, error) {
	var doc map[string]any
	if err := c.cur.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *cursor) Err() error {
	return c.cur.Err()
}

func (c *cursor) Close(ctx context.Context) error {
	return c.cur.Close(ctx)
}
