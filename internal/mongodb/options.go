package mongodb

import (
	"log/slog"
	"sort"

	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// queryOpts is the normalized form of a source entry's declarative
// options map. Parsing is separated from the driver builders so the
// numeric coercions stay testable without a server.
type queryOpts struct {
	limit        *int64
	skip         *int64
	batchSize    *int32
	sort         map[string]any
	comment      any
	hint         any
	allowDiskUse *bool
	unknown      []string
}

// parseQueryOpts normalizes the pass-through options map. JSON and HCL
// decoding produce float64 or int64 for numbers, so integer options
// accept either. Unknown keys are logged at debug level and ignored
// rather than failing the fetch.
func parseQueryOpts(raw map[string]any, log *slog.Logger) queryOpts {
	var o queryOpts
	for k, v := range raw {
		switch k {
		case "limit":
			if n, ok := asInt64(v); ok {
				o.limit = &n
			}
		case "skip":
			if n, ok := asInt64(v); ok {
				o.skip = &n
			}
		case "batchSize":
			if n, ok := asInt64(v); ok {
				bs := int32(n)
				o.batchSize = &bs
			}
		case "sort":
			if m, ok := v.(map[string]any); ok {
				o.sort = m
			}
		case "comment":
			o.comment = v
		case "hint":
			o.hint = v
		case "allowDiskUse":
			if b, ok := v.(bool); ok {
				o.allowDiskUse = &b
			}
		default:
			o.unknown = append(o.unknown, k)
		}
	}
	sort.Strings(o.unknown)
	if len(o.unknown) > 0 && log != nil {
		log.Debug("ignoring unsupported query options", "keys", o.unknown)
	}
	return o
}

func (o queryOpts) findOne() *options.FindOneOptionsBuilder {
	fo := options.FindOne()
	if o.skip != nil {
		fo.SetSkip(*o.skip)
	}
	if o.sort != nil {
		fo.SetSort(o.sort)
	}
	if o.comment != nil {
		fo.SetComment(o.comment)
	}
	if o.hint != nil {
		fo.SetHint(o.hint)
	}
	return fo
}

func (o queryOpts) find() *options.FindOptionsBuilder {
	fo := options.Find()
	if o.limit != nil {
		fo.SetLimit(*o.limit)
	}
	if o.skip != nil {
		fo.SetSkip(*o.skip)
	}
	if o.batchSize != nil {
		fo.SetBatchSize(*o.batchSize)
	}
	if o.sort != nil {
		fo.SetSort(o.sort)
	}
	if o.comment != nil {
		fo.SetComment(o.comment)
	}
	if o.hint != nil {
		fo.SetHint(o.hint)
	}
	if o.allowDiskUse != nil {
		fo.SetAllowDiskUse(*o.allowDiskUse)
	}
	return fo
}

func (o queryOpts) aggregate() *options.AggregateOptionsBuilder {
	ao := options.Aggregate()
	if o.batchSize != nil {
		ao.SetBatchSize(*o.batchSize)
	}
	if o.comment != nil {
		ao.SetComment(o.comment)
	}
	if o.hint != nil {
		ao.SetHint(o.hint)
	}
	if o.allowDiskUse != nil {
		ao.SetAllowDiskUse(*o.allowDiskUse)
	}
	return ao
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case float32:
		return int64(n), true
	}
	return 0, false
}
