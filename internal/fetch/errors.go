package fetch

import "fmt"

// ConfigError reports a malformed source entry: zero or several query
// modes selected. The provider recovers it locally (warning plus empty
// result) so a bad entry cannot abort a batch of unrelated fetches; it
// never escapes Fetch.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "malformed source entry: " + e.Reason
}

// MissingKeyError reports a document lacking the field named by
// transform.mapKey. It is a data/config mismatch, not a transient fault,
// and is returned to the caller unchanged.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("document has no %q field required by transform.mapKey", e.Key)
}
