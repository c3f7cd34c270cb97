package kafka_test

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	onWrite  func(msg kafka.Message)
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	if w.err != nil {
		w.mu.Unlock()
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	onWrite := w.onWrite
	w.mu.Unlock()

	if onWrite != nil {
		for _, m := range msgs {
			onWrite(m)
		}
	}
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWriter) written() []kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]kafka.Message(nil), w.messages...)
}

type fakeReader struct {
	ch chan kafka.Message

	mu        sync.Mutex
	committed []kafka.Message
}

func newFakeReader() *fakeReader {
	return &fakeReader{ch: make(chan kafka.Message, 16)}
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

// positioningReader is a fakeReader that must be positioned before use.
type positioningReader struct {
	*fakeReader
	err       error
	positions int
}

func (r *positioningReader) Position(context.Context) error {
	r.positions++
	return r.err
}
