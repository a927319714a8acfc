// Package manifest loads the HCL manifest consumed by the sync command:
// a set of named source entries sharing an optional default connection
// URI. Query bodies are embedded JSON (usually heredocs) so filters and
// pipelines keep their native MongoDB shape.
package manifest

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/ohler55/ojg/oj"

	"github.com/policysync/mongofetch/api"
)

// Manifest is the loaded, converted form of a manifest file.
type Manifest struct {
	// URI is the default connection string for entries that do not set
	// their own.
	URI     string
	Entries []Entry
}

// Entry is one runnable source: its configuration plus where the result
// goes. An empty Output means stdout.
type Entry struct {
	Name   string
	Output string
	Source *api.Source
}

// file mirrors the HCL layout.
type file struct {
	URI     string        `hcl:"uri,optional"`
	Sources []sourceBlock `hcl:"source,block"`
}

type sourceBlock struct {
	Name       string          `hcl:"name,label"`
	URI        string          `hcl:"uri,optional"`
	Database   string          `hcl:"database,optional"`
	Collection string          `hcl:"collection"`
	Output     string          `hcl:"output,optional"`
	FindOne    *queryBlock     `hcl:"find_one,block"`
	Find       *queryBlock     `hcl:"find,block"`
	Aggregate  *aggregateBlock `hcl:"aggregate,block"`
	Transform  *transformBlock `hcl:"transform,block"`
}

type queryBlock struct {
	Query      string `hcl:"query,optional"`
	Projection string `hcl:"projection,optional"`
	Options    string `hcl:"options,optional"`
}

type aggregateBlock struct {
	Pipeline string `hcl:"pipeline"`
	Options  string `hcl:"options,optional"`
}

type transformBlock struct {
	First  bool   `hcl:"first,optional"`
	MapKey string `hcl:"map_key,optional"`
	Merge  bool   `hcl:"merge,optional"`
}

// Load reads a manifest file and converts every source block into an
// api.Source. Malformed JSON bodies are load-time errors naming the
// offending source; selecting zero or several query modes is NOT checked
// here — that is the fetch validator's call, and it fails soft.
func Load(path string) (*Manifest, error) {
	var f file
	if err := hclsimple.DecodeFile(path, nil, &f); err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}

	man := &Manifest{URI: f.URI}
	for _, blk := range f.Sources {
		src, err := blk.toSource()
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", blk.Name, err)
		}
		man.Entries = append(man.Entries, Entry{Name: blk.Name, Output: blk.Output, Source: src})
	}
	return man, nil
}

func (b sourceBlock) toSource() (*api.Source, error) {
	src := &api.Source{
		URI:        b.URI,
		Database:   b.Database,
		Collection: b.Collection,
	}

	if b.FindOne != nil {
		query, err := parseObject("find_one.query", b.FindOne.Query)
		if err != nil {
			return nil, err
		}
		projection, err := parseObject("find_one.projection", b.FindOne.Projection)
		if err != nil {
			return nil, err
		}
		opts, err := parseObject("find_one.options", b.FindOne.Options)
		if err != nil {
			return nil, err
		}
		src.FindOne = &api.FindOneParams{Query: query, Projection: projection, Options: opts}
	}

	if b.Find != nil {
		query, err := parseObject("find.query", b.Find.Query)
		if err != nil {
			return nil, err
		}
		projection, err := parseObject("find.projection", b.Find.Projection)
		if err != nil {
			return nil, err
		}
		opts, err := parseObject("find.options", b.Find.Options)
		if err != nil {
			return nil, err
		}
		src.Find = &api.FindParams{Query: query, Projection: projection, Options: opts}
	}

	if b.Aggregate != nil {
		pipeline, err := parseStages("aggregate.pipeline", b.Aggregate.Pipeline)
		if err != nil {
			return nil, err
		}
		opts, err := parseObject("aggregate.options", b.Aggregate.Options)
		if err != nil {
			return nil, err
		}
		src.Aggregate = &api.AggregateParams{Pipeline: pipeline, Options: opts}
	}

	if b.Transform != nil {
		src.Transform = &api.TransformParams{
			First:  b.Transform.First,
			MapKey: b.Transform.MapKey,
			Merge:  b.Transform.Merge,
		}
	}

	return src, nil
}

// parseObject decodes a JSON object body. An empty body yields nil.
func parseObject(field, body string) (map[string]any, error) {
	if body == "" {
		return nil, nil
	}
	v, err := oj.ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid json: %w", field, err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected a json object, got %T", field, v)
	}
	return obj, nil
}

// parseStages decodes a JSON array of pipeline stage objects.
func parseStages(field, body string) ([]map[string]any, error) {
	v, err := oj.ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid json: %w", field, err)
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected a json array, got %T", field, v)
	}
	stages := make([]map[string]any, 0, len(arr))
	for i, item := range arr {
		stage, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s[%d]: expected a json object, got %T", field, i, item)
		}
		stages = append(stages, stage)
	}
	return stages, nil
}
