package audit

import (
	"encoding/json"
	"testing"

	"github.com/bioinsight/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleEvent struct {
	shared.BaseDomainEvent
	Note string `json:"note"`
}

func TestNewActivityLogFromEvent(t *testing.T) {
	aggID := uuid.New()
	ev := &sampleEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("SampleHappened", "Sample", aggID, "guest:g1"),
		Note:            "hello",
	}

	log, err := NewActivityLogFromEvent(ev)
	require.NoError(t, err)

	assert.Equal(t, ev.EventID(), log.EventID)
	assert.Equal(t, "SampleHappened", log.EventType)
	assert.Equal(t, "guest:g1", log.ScopeKey)
	assert.Equal(t, "Sample", log.AggregateType)
	assert.Equal(t, aggID, log.AggregateID)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(log.Payload, &payload))
	assert.Equal(t, "hello", payload["note"])
	assert.Equal(t, "guest:g1", payload["scope_key"])
}
