package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	consumer "workorders/internal/adapters/in/kafka"
	"workorders/internal/core/application/usecases/commands"
	"workorders/internal/core/domain/model/employee"
	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/core/domain/model/workorder"
	"workorders/internal/core/domain/statecommand"
	"workorders/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	ch chan kafka.Message

	mu        sync.Mutex
	committed []kafka.Message
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case msg := <-r.ch:
		return msg, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { return nil }

func (r *fakeReader) commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func (w *fakeWriter) replies(t *testing.T) []commands.StateCommandReply {
	t.Helper()
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]commands.StateCommandReply, 0, len(w.messages))
	for _, m := range w.messages {
		var reply commands.StateCommandReply
		require.NoError(t, json.Unmarshal(m.Value, &reply))
		out = append(out, reply)
	}
	return out
}

func encodedBegin(t *testing.T, woID kernel.UUID, replyTo string) []byte {
	t.Helper()
	cmd, err := statecommand.NewBegin(workorder.Reference(woID), employee.Reference(kernel.NewUUID()),
		statecommand.WithCorrelationID("corr-"+woID.String()))
	require.NoError(t, err)
	data, err := commands.EncodeStateCommand(cmd, replyTo, time.Now())
	require.NoError(t, err)
	return data
}

func newConsumer(reader *fakeReader, writer *fakeWriter, dispatch commands.DispatcherFunc) *consumer.CommandConsumer {
	return consumer.NewCommandConsumer(reader, writer, dispatch, "replies-default", slog.New(slog.DiscardHandler))
}

func TestCommandConsumer_HandleMessage(t *testing.T) {
	woID := kernel.NewUUID()
	writer := &fakeWriter{}
	var dispatched statecommand.Command
	c := newConsumer(&fakeReader{}, writer, func(_ context.Context, cmd statecommand.Command) (commands.StateCommandResult, error) {
		dispatched = cmd
		return commands.StateCommandResult{Outcome: commands.OutcomeSucceeded, Verb: "Begun"}, nil
	})

	err := c.HandleMessage(t.Context(), kafka.Message{Value: encodedBegin(t, woID, "replies-a")})

	require.NoError(t, err)
	assert.Equal(t, statecommand.KindBegin, dispatched.Kind())
	assert.Equal(t, woID, dispatched.WorkOrderID())

	require.Len(t, writer.messages, 1)
	assert.Equal(t, "replies-a", writer.messages[0].Topic)
	reply := writer.replies(t)[0]
	assert.Equal(t, "corr-"+woID.String(), reply.CorrelationID)
	result, err := reply.Result()
	require.NoError(t, err)
	assert.True(t, result.Succeeded())
	assert.Equal(t, "Begun", result.Verb)
}

func TestCommandConsumer_HandleMessage_Errors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		woID := kernel.NewUUID()
		writer := &fakeWriter{}
		c := newConsumer(&fakeReader{}, writer, func(context.Context, statecommand.Command) (commands.StateCommandResult, error) {
			return commands.StateCommandResult{}, errs.NewObjectNotFoundError("work order", woID.String())
		})

		require.NoError(t, c.HandleMessage(t.Context(), kafka.Message{Value: encodedBegin(t, woID, "")}))

		require.Len(t, writer.messages, 1)
		assert.Equal(t, "replies-default", writer.messages[0].Topic)
		_, err := writer.replies(t)[0].Result()
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("malformed message", func(t *testing.T) {
		writer := &fakeWriter{}
		c := newConsumer(&fakeReader{}, writer, func(context.Context, statecommand.Command) (commands.StateCommandResult, error) {
			t.Fatal("malformed commands must not be dispatched")
			return commands.StateCommandResult{}, nil
		})

		require.NoError(t, c.HandleMessage(t.Context(), kafka.Message{Value: []byte(`{"command":"Explode"}`)}))

		_, err := writer.replies(t)[0].Result()
		require.ErrorIs(t, err, commands.ErrInvalidCommand)
	})

	t.Run("reply write fails", func(t *testing.T) {
		writer := &fakeWriter{err: errors.New("broker down")}
		c := newConsumer(&fakeReader{}, writer, func(context.Context, statecommand.Command) (commands.StateCommandResult, error) {
			return commands.StateCommandResult{Outcome: commands.OutcomeSucceeded}, nil
		})

		err := c.HandleMessage(t.Context(), kafka.Message{Value: encodedBegin(t, kernel.NewUUID(), "r")})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "broker down")
	})
}

func TestCommandConsumer_CommitsAfterReply(t *testing.T) {
	reader := &fakeReader{ch: make(chan kafka.Message, 2)}
	writer := &fakeWriter{}
	c := newConsumer(reader, writer, func(context.Context, statecommand.Command) (commands.StateCommandResult, error) {
		return commands.StateCommandResult{Outcome: commands.OutcomeSucceeded}, nil
	})
	reader.ch <- kafka.Message{Offset: 1, Value: encodedBegin(t, kernel.NewUUID(), "r")}
	reader.ch <- kafka.Message{Offset: 2, Value: encodedBegin(t, kernel.NewUUID(), "r")}

	require.NoError(t, c.Start())
	require.Eventually(t, func() bool { return reader.commits() == 2 }, 2*time.Second, 10*time.Millisecond)
	c.Stop()

	assert.Len(t, writer.replies(t), 2)
}
