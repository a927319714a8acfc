package tests

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/policysync/mongofetch/internal/fetch"
	"github.com/policysync/mongofetch/internal/manifest"
)

// memStore is an in-memory fetch.DataSource serving canned documents per
// collection, with equality-only filtering. It stands in for a live
// server so the whole manifest -> validate -> dispatch -> transform
// pipeline runs end to end.
type memStore struct {
	collections map[string][]map[string]any
}

func (s *memStore) Collection(_, name string) fetch.Collection {
	return &memCollection{docs: s.collections[name]}
}

type memCollection struct {
	docs []map[string]any
}

func (c *memCollection) FindOne(_ context.Context, filter, _, _ map[string]any) (map[string]any, error) {
	for _, doc := range c.docs {
		if matches(doc, filter) {
			return doc, nil
		}
	}
	return nil, nil
}

func (c *memCollection) Find(_ context.Context, filter, _, _ map[string]any) (fetch.Cursor, error) {
	var out []map[string]any
	for _, doc := range c.docs {
		if matches(doc, filter) {
			out = append(out, doc)
		}
	}
	return &memCursor{docs: out}, nil
}

func (c *memCollection) Aggregate(_ context.Context, _ []map[string]any, _ map[string]any) (fetch.Cursor, error) {
	// Pipeline semantics belong to the server; the store replays its
	// documents as the pipeline output.
	return &memCursor{docs: c.docs}, nil
}

func matches(doc, filter map[string]any) bool {
	for k, want := range filter {
		if doc[k] != want {
			return false
		}
	}
	return true
}

type memCursor struct {
	docs []map[string]any
	pos  int
}

func (c *memCursor) Next(context.Context) bool {
	if c.pos >= len(c.docs) {
		return false
	}
	c.pos++
	return true
}

func (c *memCursor) Current() (map[string]any, error) { return c.docs[c.pos-1], nil }
func (c *memCursor) Err() error                       { return nil }
func (c *memCursor) Close(context.Context) error      { return nil }

const pipelineManifest = `
uri = "mongodb://unused:27017/app"

source "admins_by_id" {
  collection = "users"

  find {
    query = <<-JSON
      {"role": "admin"}
    JSON
  }

  transform {
    map_key = "id"
  }
}

source "acme_tenant" {
  collection = "tenants"

  find_one {
    query = <<-JSON
      {"_id": "acme"}
    JSON
  }
}

source "feature_flags" {
  collection = "flags"

  aggregate {
    pipeline = <<-JSON
      [{"$project": {"_id": 0}}]
    JSON
  }

  transform {
    merge = true
  }
}

source "broken_no_mode" {
  collection = "users"
}
`

func newStore() *memStore {
	return &memStore{collections: map[string][]map[string]any{
		"users": {
			{"id": "u1", "role": "admin", "name": "alice"},
			{"id": "u2", "role": "viewer", "name": "bob"},
			{"id": "u3", "role": "admin", "name": "carol"},
		},
		"tenants": {
			{"_id": "acme", "plan": "enterprise"},
			{"_id": "initech", "plan": "free"},
		},
		"flags": {
			{"beta_search": true},
			{"beta_export": false, "beta_search": false},
		},
	}}
}

func TestManifestPipeline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.hcl")
	require.NoError(t, os.WriteFile(path, []byte(pipelineManifest), 0o644))

	man, err := manifest.Load(path)
	require.NoError(t, err)
	require.Len(t, man.Entries, 4)

	store := newStore()
	provider := fetch.NewProvider(nil)

	results := make(map[string]any, len(man.Entries))
	for _, entry := range man.Entries {
		out, err := provider.Fetch(context.Background(), entry.Source, store)
		require.NoError(t, err, "entry %s", entry.Name)
		results[entry.Name] = out
	}

	t.Run("find with mapKey", func(t *testing.T) {
		keyed, ok := results["admins_by_id"].(map[string]any)
		require.True(t, ok)
		require.Len(t, keyed, 2)
		assert.Equal(t, "alice", keyed["u1"].(map[string]any)["name"])
		assert.Equal(t, "carol", keyed["u3"].(map[string]any)["name"])
	})

	t.Run("findOne collapses to a single document", func(t *testing.T) {
		doc, ok := results["acme_tenant"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "enterprise", doc["plan"])
	})

	t.Run("aggregate with merge folds documents", func(t *testing.T) {
		merged, ok := results["feature_flags"].(map[string]any)
		require.True(t, ok)
		// Later documents overwrite earlier keys.
		assert.Equal(t, false, merged["beta_search"])
		assert.Equal(t, false, merged["beta_export"])
	})

	t.Run("malformed entry fails soft", func(t *testing.T) {
		assert.Equal(t, []map[string]any{}, results["broken_no_mode"])
	})
}

func TestPipelineFirstShortCircuit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
source "first_admin" {
  collection = "users"
  find {
    query = <<-JSON
      {"role": "admin"}
    JSON
  }
  transform {
    first = true
  }
}
`), 0o644))

	man, err := manifest.Load(path)
	require.NoError(t, err)
	require.Len(t, man.Entries, 1)

	out, err := fetch.NewProvider(nil).Fetch(context.Background(), man.Entries[0].Source, newStore())
	require.NoError(t, err)

	doc, ok := out.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", doc["name"])
}
