package kafka_test

import (
	"encoding/json"
	"testing"

	adapter "workorders/internal/adapters/out/kafka"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		brokers []string
		enabled bool
	}{
		{"empty", "", []string{}, false},
		{"blanks", " , ,", []string{}, false},
		{"several", "kafka-1:9092, kafka-2:9092 ,", []string{"kafka-1:9092", "kafka-2:9092"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := adapter.NewClient(tt.csv)

			assert.Equal(t, tt.brokers, c.Brokers)
			assert.Equal(t, tt.enabled, c.Enabled())
		})
	}
}

func TestClient_NewWriter(t *testing.T) {
	w := adapter.NewClient("localhost:9092").NewWriter("work-order-events")

	assert.Equal(t, "work-order-events", w.Topic)
	assert.Equal(t, kafka.RequireOne, w.RequiredAcks)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
}

func TestPublishJSON(t *testing.T) {
	w := &fakeWriter{}

	err := adapter.PublishJSON(t.Context(), w, "topic", "key-1", map[string]int{"n": 1})

	require.NoError(t, err)
	msgs := w.written()
	require.Len(t, msgs, 1)
	assert.Equal(t, "topic", msgs[0].Topic)
	assert.Equal(t, "key-1", string(msgs[0].Key))
	var got map[string]int
	require.NoError(t, json.Unmarshal(msgs[0].Value, &got))
	assert.Equal(t, 1, got["n"])
	assert.False(t, msgs[0].Time.IsZero())
}
