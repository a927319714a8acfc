// Package mongodb adapts the official MongoDB driver to the fetch
// package's DataSource interfaces. One Client is scoped to one fetch
// invocation: acquired at the start, released at the end, never shared.
package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/policysync/mongofetch/internal/fetch"
)

// defaultDatabase is used when neither the source entry nor the URI path
// names a database, matching the server's shell default.
const defaultDatabase = "test"

// Client wraps a driver client for the duration of one fetch invocation.
type Client struct {
	mc        *mongo.Client
	defaultDB string
	log       *slog.Logger
}

// Connect opens a client for the given connection URI. The driver
// connects lazily; the first query performs the actual round trip. The
// caller must Close the client when the invocation ends, success or
// failure.
func Connect(uri string, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	mc, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return &Client{mc: mc, defaultDB: databaseFromURI(uri), log: log}, nil
}

// Close releases the client and its connection pool.
func (c *Client) Close(ctx context.Context) error {
	return c.mc.Disconnect(ctx)
}

// Collection implements fetch.DataSource. An empty database falls back to
// the database named in the URI path, then to the server default.
func (c *Client) Collection(database, name string) fetch.Collection {
	db := database
	if db == "" {
		db = c.defaultDB
	}
	return &collection{coll: c.mc.Database(db).Collection(name), log: c.log}
}

// databaseFromURI extracts the database name from a connection string's
// path component, e.g. mongodb://host:27017/appdata -> appdata.
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return defaultDatabase
	}
	db := strings.TrimPrefix(u.Path, "/")
	if db == "" {
		return defaultDatabase
	}
	return db
}
