package eventstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

//nolint:funlen
func Test_BuildStorableEvent_ErrorCases(t *testing.T) {
	validPayloadJSON := []byte(`{"key": "value"}`)
	validMetadataJSON := []byte(`{"meta": "data"}`)
	validTags := []Tag{T("Driver", "d1")}

	tests := []struct {
		name         string
		eventType    string
		payloadJSON  []byte
		metadataJSON []byte
		tags         []Tag
		expectedErr  error
	}{
		{
			name:         "empty event type",
			eventType:    "",
			payloadJSON:  validPayloadJSON,
			metadataJSON: validMetadataJSON,
			tags:         validTags,
			expectedErr:  ErrEmptyEventType,
		},
		{
			name:         "no tags",
			eventType:    "DriverCreated",
			payloadJSON:  validPayloadJSON,
			metadataJSON: validMetadataJSON,
			tags:         nil,
			expectedErr:  ErrMissingTags,
		},
		{
			name:         "only partial tags",
			eventType:    "DriverCreated",
			payloadJSON:  validPayloadJSON,
			metadataJSON: validMetadataJSON,
			tags:         []Tag{T("Driver", ""), T("", "d1")},
			expectedErr:  ErrMissingTags,
		},
		{
			name:         "invalid payload JSON",
			eventType:    "DriverCreated",
			payloadJSON:  []byte(`{"invalid": json}`),
			metadataJSON: validMetadataJSON,
			tags:         validTags,
			expectedErr:  ErrInvalidPayloadJSON,
		},
		{
			name:         "empty payload JSON",
			eventType:    "DriverCreated",
			payloadJSON:  []byte(``),
			metadataJSON: validMetadataJSON,
			tags:         validTags,
			expectedErr:  ErrInvalidPayloadJSON,
		},
		{
			name:         "invalid metadata JSON",
			eventType:    "DriverCreated",
			payloadJSON:  validPayloadJSON,
			metadataJSON: []byte(`{"invalid": json}`),
			tags:         validTags,
			expectedErr:  ErrInvalidMetadataJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := BuildStorableEvent(tt.eventType, time.Now(), tt.payloadJSON, tt.metadataJSON, tt.tags...)

			assert.ErrorIs(t, err, tt.expectedErr)
			assert.Empty(t, event)
		})
	}
}

func Test_BuildStorableEvent_SanitizesTags(t *testing.T) {
	// arrange
	occurredAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	// act
	event, err := BuildStorableEventWithEmptyMetadata(
		"DriverCreated",
		occurredAt,
		[]byte(`{"driverId":"d1"}`),
		T("Team", "t1"), T("Driver", "d1"), T("Team", "t1"),
	)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "DriverCreated", event.EventType)
	assert.Equal(t, occurredAt, event.OccurredAt)
	assert.Equal(t, []byte(`{}`), event.MetadataJSON)
	assert.Equal(t, Tags{T("Driver", "d1"), T("Team", "t1")}, event.Tags)
	assert.Equal(t, uint(0), event.SequenceNumber)
}

func Test_Tags_ValueOf(t *testing.T) {
	tags := NewTags(T("Race", "r1"), T("User", "u1"))

	value, ok := tags.ValueOf("User")
	assert.True(t, ok)
	assert.Equal(t, "u1", value)

	_, ok = tags.ValueOf("Driver")
	assert.False(t, ok)
}

func Test_BuildSnapshot_Validation(t *testing.T) {
	now := time.Now()

	_, err := BuildSnapshot("", "hash", 1, []byte(`{}`), now)
	assert.ErrorIs(t, err, ErrEmptyEntityKind)

	_, err = BuildSnapshot("Race", "", 1, []byte(`{}`), now)
	assert.ErrorIs(t, err, ErrEmptyFilterHash)

	_, err = BuildSnapshot("Race", "hash", 1, []byte(`{broken`), now)
	assert.ErrorIs(t, err, ErrInvalidSnapshotJSON)

	snapshot, err := BuildSnapshot("Race", "hash", 3, []byte(`{"status":"CREATED"}`), now)
	assert.NoError(t, err)
	assert.Equal(t, uint(3), snapshot.SequenceNumber)
}
