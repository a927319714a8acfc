package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/policysync/mongofetch/api"
)

func TestApplyTransformFirst(t *testing.T) {
	tr := &api.TransformParams{First: true}

	t.Run("non-empty takes first", func(t *testing.T) {
		out, err := applyTransform(tr, []map[string]any{{"a": 1}, {"a": 2}})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": 1}, out)
	})

	t.Run("empty yields empty object", func(t *testing.T) {
		out, err := applyTransform(tr, nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{}, out)
	})
}

func TestApplyTransformMerge(t *testing.T) {
	tr := &api.TransformParams{Merge: true}

	t.Run("later keys overwrite earlier", func(t *testing.T) {
		docs := []map[string]any{
			{"a": 1, "b": 2},
			{"b": 3, "c": 4},
		}
		out, err := applyTransform(tr, docs)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": 1, "b": 3, "c": 4}, out)
	})

	t.Run("empty yields empty object", func(t *testing.T) {
		out, err := applyTransform(tr, nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{}, out)
	})

	t.Run("no field is silently dropped", func(t *testing.T) {
		docs := []map[string]any{{"a": 1}, {"b": 2}, {"c": 3}}
		out, err := applyTransform(tr, docs)
		require.NoError(t, err)
		merged := out.(map[string]any)
		assert.Len(t, merged, 3)
	})
}

func TestApplyTransformMapKey(t *testing.T) {
	t.Run("keys by field value", func(t *testing.T) {
		docs := []map[string]any{
			{"id": "x", "v": 1},
			{"id": "y", "v": 2},
		}
		out, err := applyTransform(&api.TransformParams{MapKey: "id"}, docs)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"x": map[string]any{"id": "x", "v": 1},
			"y": map[string]any{"id": "y", "v": 2},
		}, out)
	})

	t.Run("duplicate keys overwrite in order", func(t *testing.T) {
		docs := []map[string]any{
			{"id": "x", "v": 1},
			{"id": "x", "v": 2},
		}
		out, err := applyTransform(&api.TransformParams{MapKey: "id"}, docs)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"x": map[string]any{"id": "x", "v": 2},
		}, out)
	})

	t.Run("numeric key values use their json form", func(t *testing.T) {
		docs := []map[string]any{{"id": int64(7), "v": 1}}
		out, err := applyTransform(&api.TransformParams{MapKey: "id"}, docs)
		require.NoError(t, err)
		assert.Contains(t, out.(map[string]any), "7")
	})

	t.Run("missing field", func(t *testing.T) {
		docs := []map[string]any{{"id": "x"}, {"v": 2}}
		_, err := applyTransform(&api.TransformParams{MapKey: "id"}, docs)
		var keyErr *MissingKeyError
		require.ErrorAs(t, err, &keyErr)
		assert.Equal(t, "id", keyErr.Key)
	})

	t.Run("dotted key resolves nested fields", func(t *testing.T) {
		docs := []map[string]any{
			{"meta": map[string]any{"id": "x"}, "v": 1},
			{"meta": map[string]any{"id": "y"}, "v": 2},
		}
		out, err := applyTransform(&api.TransformParams{MapKey: "meta.id"}, docs)
		require.NoError(t, err)
		keyed := out.(map[string]any)
		assert.Len(t, keyed, 2)
		assert.Equal(t, 1, keyed["x"].(map[string]any)["v"])
	})

	t.Run("dotted key missing nested field", func(t *testing.T) {
		docs := []map[string]any{{"meta": map[string]any{}}}
		_, err := applyTransform(&api.TransformParams{MapKey: "meta.id"}, docs)
		var keyErr *MissingKeyError
		require.ErrorAs(t, err, &keyErr)
	})
}

func TestApplyTransformDefault(t *testing.T) {
	t.Run("sequence unchanged, order preserved", func(t *testing.T) {
		docs := []map[string]any{{"a": 1}, {"a": 2}}
		out, err := applyTransform(nil, docs)
		require.NoError(t, err)
		assert.Equal(t, docs, out)
	})

	t.Run("empty yields empty sequence", func(t *testing.T) {
		out, err := applyTransform(nil, nil)
		require.NoError(t, err)
		assert.Equal(t, []map[string]any{}, out)
	})
}

func TestApplyTransformPrecedence(t *testing.T) {
	docs := []map[string]any{
		{"id": "x", "a": 1},
		{"id": "y", "a": 2},
	}

	t.Run("first beats merge and mapKey", func(t *testing.T) {
		out, err := applyTransform(&api.TransformParams{First: true, Merge: true, MapKey: "id"}, docs)
		require.NoError(t, err)
		assert.Equal(t, docs[0], out)
	})

	t.Run("merge beats mapKey", func(t *testing.T) {
		out, err := applyTransform(&api.TransformParams{Merge: true, MapKey: "id"}, docs)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"id": "y", "a": 2}, out)
	})
}
