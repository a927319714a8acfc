package fetch

import (
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/policysync/mongofetch/api"
)

// applyTransform folds a result sequence per the transform policy.
// Precedence when several flags are set: first, then merge, then mapKey,
// else the sequence is returned unchanged. FindOne results never reach
// this function; the provider collapses them before transforming.
func applyTransform(t *api.TransformParams, docs []map[string]any) (any, error) {
	var (
		first  bool
		merge  bool
		mapKey string
	)
	if t != nil {
		first, merge, mapKey = t.First, t.Merge, t.MapKey
	}

	switch {
	case first:
		if len(docs) > 0 && docs[0] != nil {
			return docs[0], nil
		}
		return map[string]any{}, nil

	case merge:
		// Sequential key overwrite: later documents win on collision.
		out := map[string]any{}
		for _, doc := range docs {
			for k, v := range doc {
				out[k] = v
			}
		}
		return out, nil

	case mapKey != "":
		out := make(map[string]any, len(docs))
		for _, doc := range docs {
			v, ok := lookupKey(doc, mapKey)
			if !ok {
				return nil, &MissingKeyError{Key: mapKey}
			}
			out[keyString(v)] = doc
		}
		return out, nil

	default:
		if docs == nil {
			return []map[string]any{}, nil
		}
		return docs, nil
	}
}

// lookupKey resolves a mapKey against a document. Plain names are direct
// map access; dotted names are resolved as a JSONPath into nested
// documents.
func lookupKey(doc map[string]any, key string) (any, bool) {
	if !strings.Contains(key, ".") {
		v, ok := doc[key]
		return v, ok
	}
	expr, err := jp.ParseString("$." + key)
	if err != nil {
		return nil, false
	}
	results := expr.Get(doc)
	if len(results) == 0 {
		return nil, false
	}
	return results[0], true
}

// keyString renders a mapKey value as an object key. Strings pass
// through; everything else uses its JSON scalar form so numeric and
// boolean keys stay deterministic.
func keyString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return oj.JSON(v)
}
