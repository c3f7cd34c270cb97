package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

var ErrNotPositioned = errors.New("tail reader is not positioned")

// TailReader reads every partition of a topic from the offsets that were last
// when Position ran. It uses no consumer group, so it leaves nothing behind on
// the brokers and never sees messages written before it was positioned.
// Offsets are not committed.
type TailReader struct {
	brokers []string
	topic   string

	mu      sync.Mutex
	readers []*kafka.Reader
	msgs    chan tailFetch
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

type tailFetch struct {
	msg kafka.Message
	err error
}

// NewTailReader returns a reader for topic. It reads nothing until Position
// has been called.
func (c *Client) NewTailReader(topic string) *TailReader {
	return &TailReader{brokers: c.Brokers, topic: topic}
}

// Position resolves the last offset of every partition and starts reading
// from there. A topic that does not exist yet is created with one partition.
func (r *TailReader) Position(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.msgs != nil {
		return nil
	}

	partitions, err := r.partitions(ctx)
	if err != nil {
		return err
	}

	readers := make([]*kafka.Reader, 0, len(partitions))
	for _, p := range partitions {
		offset, err := r.lastOffsetWithRetry(ctx, p.ID)
		if err != nil {
			closeAll(readers)
			return err
		}
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:   r.brokers,
			Topic:     r.topic,
			Partition: p.ID,
			MinBytes:  1,
			MaxBytes:  10e6,
			MaxWait:   250 * time.Millisecond,
		})
		if err := reader.SetOffset(offset); err != nil {
			closeAll(append(readers, reader))
			return fmt.Errorf("set offset of %s/%d: %w", r.topic, p.ID, err)
		}
		readers = append(readers, reader)
	}

	pumpCtx, cancel := context.WithCancel(context.Background())
	r.readers = readers
	r.msgs = make(chan tailFetch)
	r.cancel = cancel
	for _, reader := range readers {
		r.wg.Add(1)
		go r.pump(pumpCtx, reader)
	}
	return nil
}

func (r *TailReader) pump(ctx context.Context, reader *kafka.Reader) {
	defer r.wg.Done()
	for {
		msg, err := reader.ReadMessage(ctx)
		if ctx.Err() != nil {
			return
		}
		select {
		case r.msgs <- tailFetch{msg: msg, err: err}:
		case <-ctx.Done():
			return
		}
	}
}

func (r *TailReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	msgs := r.msgs
	r.mu.Unlock()
	if msgs == nil {
		return kafka.Message{}, ErrNotPositioned
	}

	select {
	case f := <-msgs:
		return f.msg, f.err
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

// CommitMessages is a no-op; the reader keeps no offsets.
func (r *TailReader) CommitMessages(context.Context, ...kafka.Message) error {
	return nil
}

func (r *TailReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel == nil {
		return nil
	}
	r.cancel()
	err := closeAll(r.readers)
	r.wg.Wait()
	r.cancel = nil
	r.readers = nil
	r.msgs = nil
	return err
}

func (r *TailReader) partitions(ctx context.Context) ([]kafka.Partition, error) {
	conn, err := r.dialAny(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions(r.topic)
	if err == nil && len(partitions) > 0 {
		return partitions, nil
	}
	if err != nil && !errors.Is(err, kafka.UnknownTopicOrPartition) {
		return nil, fmt.Errorf("read partitions of %s: %w", r.topic, err)
	}

	if err := createTopic(ctx, conn, r.topic); err != nil {
		return nil, err
	}
	partitions, err = conn.ReadPartitions(r.topic)
	if err != nil {
		return nil, fmt.Errorf("read partitions of %s: %w", r.topic, err)
	}
	return partitions, nil
}

// lastOffsetWithRetry waits out the leader election of a topic that was just
// created.
func (r *TailReader) lastOffsetWithRetry(ctx context.Context, partition int) (int64, error) {
	const attempts = 5
	for attempt := 1; ; attempt++ {
		offset, err := r.lastOffset(ctx, partition)
		if err == nil || attempt == attempts {
			return offset, err
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func (r *TailReader) lastOffset(ctx context.Context, partition int) (int64, error) {
	var lastErr error
	for _, broker := range r.brokers {
		conn, err := kafka.DialLeader(ctx, "tcp", broker, r.topic, partition)
		if err != nil {
			lastErr = err
			continue
		}
		offset, err := conn.ReadLastOffset()
		_ = conn.Close()
		if err != nil {
			return 0, fmt.Errorf("read last offset of %s/%d: %w", r.topic, partition, err)
		}
		return offset, nil
	}
	return 0, fmt.Errorf("dial leader of %s/%d: %w", r.topic, partition, lastErr)
}

func (r *TailReader) dialAny(ctx context.Context) (*kafka.Conn, error) {
	if len(r.brokers) == 0 {
		return nil, ErrDisabled
	}
	var lastErr error
	for _, broker := range r.brokers {
		conn, err := kafka.DialContext(ctx, "tcp", broker)
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("dial kafka: %w", lastErr)
}

func createTopic(ctx context.Context, conn *kafka.Conn, topic string) error {
	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("find controller: %w", err)
	}
	controllerConn, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("dial controller: %w", err)
	}
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1})
	if err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	return nil
}

func closeAll(readers []*kafka.Reader) error {
	var errList []error
	for _, reader := range readers {
		errList = append(errList, reader.Close())
	}
	return errors.Join(errList...)
}
