package mongodb

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func TestIsServerRejection(t *testing.T) {
	cmdErr := mongo.CommandError{Code: 2, Message: "BadValue", Name: "BadValue"}

	assert.True(t, IsServerRejection(cmdErr))
	assert.True(t, IsServerRejection(fmt.Errorf("aggregate: %w", cmdErr)))
	assert.False(t, IsServerRejection(errors.New("connection refused")))
	assert.False(t, IsServerRejection(nil))
}
