package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTreeChanged(t *testing.T) {
	event := NewTreeChanged(OperationImport, true, "done")

	_, err := uuid.Parse(event.ID)
	assert.NoError(t, err)
	assert.Equal(t, OperationImport, event.Operation)
	assert.True(t, event.Success)
	assert.False(t, event.OccurredAt.IsZero())

	body, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"operation":"import"`)
}

func TestMockPublisher(t *testing.T) {
	publisher := &MockPublisher{}
	require.NoError(t, publisher.PublishTreeChanged(context.Background(), NewTreeChanged(OperationAddFeed, true, "")))
	assert.Len(t, publisher.Events(), 1)

	publisher.Err = errors.New("broker down")
	assert.Error(t, publisher.PublishTreeChanged(context.Background(), NewTreeChanged(OperationAddFeed, true, "")))
	assert.Len(t, publisher.Events(), 1)
}

func TestNoopPublisher(t *testing.T) {
	var publisher Publisher = NoopPublisher{}
	assert.NoError(t, publisher.PublishTreeChanged(context.Background(), NewTreeChanged(OperationImport, false, "")))
	assert.NoError(t, publisher.Close())
}
