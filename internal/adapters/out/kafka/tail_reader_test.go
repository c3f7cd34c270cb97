package kafka_test

import (
	"testing"

	adapter "workorders/internal/adapters/out/kafka"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTailReader_Unpositioned(t *testing.T) {
	r := adapter.NewClient("localhost:9092").NewTailReader("replies-test")

	t.Run("should refuse to fetch", func(t *testing.T) {
		_, err := r.FetchMessage(t.Context())

		require.ErrorIs(t, err, adapter.ErrNotPositioned)
	})

	t.Run("should commit nothing", func(t *testing.T) {
		assert.NoError(t, r.CommitMessages(t.Context()))
	})

	t.Run("should close cleanly", func(t *testing.T) {
		assert.NoError(t, r.Close())
	})
}

func TestTailReader_PositionWithoutBrokers(t *testing.T) {
	r := adapter.NewClient("").NewTailReader("replies-test")

	err := r.Position(t.Context())

	require.ErrorIs(t, err, adapter.ErrDisabled)
}
