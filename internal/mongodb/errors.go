package mongodb

import (
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// IsServerRejection reports whether err is a server-side query rejection
// (bad filter, invalid pipeline stage) rather than a transport fault.
// The provider propagates both uniformly; orchestration layers use this
// to decide which failures are worth retrying.
func IsServerRejection(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return true
	}
	var srvErr mongo.ServerError
	return errors.As(err, &srvErr)
}
