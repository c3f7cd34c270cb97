package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"workorders/internal/core/application/usecases/commands"
	"workorders/internal/core/domain/statecommand"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// ErrReplyTimeout is returned when no reply arrives before the deadline. The
// command may still have been executed; resending it with the same
// correlation id is safe.
var ErrReplyTimeout = errors.New("timed out waiting for command reply")

// DefaultReplyTimeout bounds Dispatch when the context has no deadline.
const DefaultReplyTimeout = 30 * time.Second

const positionTimeout = 15 * time.Second

// replyPositioner is implemented by reply readers that must find their start
// offsets before the first command goes out, like TailReader.
type replyPositioner interface {
	Position(ctx context.Context) error
}

// RemoteDispatcher sends state commands to the commands topic and waits for
// the reply on its own replies topic. Start must be called before Dispatch.
type RemoteDispatcher struct {
	commands   MessageWriter
	replies    MessageReader
	replyTopic string
	timeout    time.Duration
	now        func() time.Time
	logger     *slog.Logger

	mu      sync.Mutex
	pending map[string][]chan commands.StateCommandReply

	cancel context.CancelFunc
	done   chan struct{}
}

// NewRemoteDispatcher creates a dispatcher. commandsWriter must be bound to
// the commands topic and replies must read replyTopic, normally through a
// TailReader so that no reply from an earlier run is delivered. A timeout of zero uses
// DefaultReplyTimeout.
func NewRemoteDispatcher(
	commandsWriter MessageWriter,
	replies MessageReader,
	replyTopic string,
	timeout time.Duration,
	logger *slog.Logger,
) *RemoteDispatcher {
	if timeout <= 0 {
		timeout = DefaultReplyTimeout
	}
	return &RemoteDispatcher{
		commands:   commandsWriter,
		replies:    replies,
		replyTopic: replyTopic,
		timeout:    timeout,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger.With("component", "remote_dispatcher"),
		pending:    make(map[string][]chan commands.StateCommandReply),
	}
}

func (d *RemoteDispatcher) Name() string { return "remote_dispatcher" }

// Start positions the reply reader and begins consuming replies. Replies
// written before Start returns are never delivered.
func (d *RemoteDispatcher) Start() error {
	if d.done != nil {
		return errors.New("remote dispatcher already started")
	}
	if p, ok := d.replies.(replyPositioner); ok {
		positionCtx, cancel := context.WithTimeout(context.Background(), positionTimeout)
		err := p.Position(positionCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("position reply reader: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.done = make(chan struct{})

	go d.consumeReplies(ctx)
	d.logger.InfoContext(ctx, "Remote dispatcher started", "reply_topic", d.replyTopic)
	return nil
}

// Stop stops consuming replies. Callers still waiting time out.
func (d *RemoteDispatcher) Stop() {
	if d.cancel == nil {
		return
	}
	d.cancel()
	<-d.done
	if err := d.replies.Close(); err != nil {
		d.logger.Warn("Failed to close reply reader", "error", err)
	}
	if err := d.commands.Close(); err != nil {
		d.logger.Warn("Failed to close command writer", "error", err)
	}
	d.cancel = nil
	d.done = nil
}

// Dispatch sends cmd and waits for its reply. A command without a correlation
// id gets a fresh one.
func (d *RemoteDispatcher) Dispatch(ctx context.Context, cmd statecommand.Command) (commands.StateCommandResult, error) {
	if cmd.CorrelationID() == "" {
		cmd = cmd.WithCorrelationID(uuid.NewString())
	}
	correlationID := cmd.CorrelationID()

	data, err := commands.EncodeStateCommand(cmd, d.replyTopic, d.now())
	if err != nil {
		return commands.StateCommandResult{}, err
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	wait := d.register(correlationID)
	defer d.unregister(correlationID, wait)

	msg := kafka.Message{
		Key:   []byte(messageKey(cmd)),
		Value: data,
		Time:  d.now(),
	}
	if err := d.commands.WriteMessages(ctx, msg); err != nil {
		return commands.StateCommandResult{}, fmt.Errorf("send %s command: %w", cmd.Name(), err)
	}

	select {
	case reply := <-wait:
		return reply.Result()
	case <-ctx.Done():
		return commands.StateCommandResult{}, fmt.Errorf("%w: %s: %w", ErrReplyTimeout, correlationID, ctx.Err())
	}
}

// messageKey routes every command for one work order to the same partition.
// New drafts have no id yet and spread by correlation id.
func messageKey(cmd statecommand.Command) string {
	if id := cmd.WorkOrderID(); !id.IsZero() {
		return id.String()
	}
	return cmd.CorrelationID()
}

func (d *RemoteDispatcher) register(correlationID string) chan commands.StateCommandReply {
	ch := make(chan commands.StateCommandReply, 1)
	d.mu.Lock()
	d.pending[correlationID] = append(d.pending[correlationID], ch)
	d.mu.Unlock()
	return ch
}

func (d *RemoteDispatcher) unregister(correlationID string, ch chan commands.StateCommandReply) {
	d.mu.Lock()
	defer d.mu.Unlock()

	waiters := d.pending[correlationID]
	for i, w := range waiters {
		if w == ch {
			waiters = append(waiters[:i], waiters[i+1:]...)
			break
		}
	}
	if len(waiters) == 0 {
		delete(d.pending, correlationID)
		return
	}
	d.pending[correlationID] = waiters
}

// deliver hands reply to every caller waiting on its correlation id.
func (d *RemoteDispatcher) deliver(reply commands.StateCommandReply) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	waiters := d.pending[reply.CorrelationID]
	for _, ch := range waiters {
		select {
		case ch <- reply:
		default:
		}
	}
	return len(waiters) > 0
}

func (d *RemoteDispatcher) consumeReplies(ctx context.Context) {
	defer close(d.done)

	for {
		msg, err := d.replies.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			d.logger.ErrorContext(ctx, "Failed to read reply", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
			}
			continue
		}

		var reply commands.StateCommandReply
		if err := json.Unmarshal(msg.Value, &reply); err != nil {
			d.logger.WarnContext(ctx, "Dropping undecodable reply", "offset", msg.Offset, "error", err)
		} else if !d.deliver(reply) {
			d.logger.DebugContext(ctx, "No caller waiting for reply", "correlation_id", reply.CorrelationID)
		}

		if err := d.replies.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			d.logger.ErrorContext(ctx, "Failed to commit reply offset", "error", err)
		}
	}
}
