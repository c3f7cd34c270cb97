package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"workorders/internal/core/application/usecases/commands"

	"github.com/segmentio/kafka-go"
)

// Reader is the part of *kafka.Reader the consumer uses.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Writer is the part of *kafka.Writer the consumer uses. It must not be bound
// to a topic: each reply goes to the topic its command named.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// CommandConsumer executes state commands read from the commands topic and
// writes one reply per command.
//
// The offset is committed only after the reply is written, so a crash in
// between redelivers the command.
type CommandConsumer struct {
	reader       Reader
	writer       Writer
	dispatcher   commands.StateCommandDispatcher
	defaultReply string
	logger       *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewCommandConsumer creates a consumer. defaultReplyTopic is used for
// commands that do not name a reply topic.
func NewCommandConsumer(
	reader Reader,
	writer Writer,
	dispatcher commands.StateCommandDispatcher,
	defaultReplyTopic string,
	logger *slog.Logger,
) *CommandConsumer {
	return &CommandConsumer{
		reader:       reader,
		writer:       writer,
		dispatcher:   dispatcher,
		defaultReply: defaultReplyTopic,
		logger:       logger.With("component", "command_consumer"),
	}
}

func (c *CommandConsumer) Name() string { return "command_consumer" }

func (c *CommandConsumer) Start() error {
	if c.done != nil {
		return errors.New("command consumer already started")
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})

	go c.run(ctx)
	c.logger.InfoContext(ctx, "Command consumer started")
	return nil
}

// Stop finishes the command in progress and closes the reader and writer.
func (c *CommandConsumer) Stop() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
	if err := c.reader.Close(); err != nil {
		c.logger.Warn("Failed to close command reader", "error", err)
	}
	if err := c.writer.Close(); err != nil {
		c.logger.Warn("Failed to close reply writer", "error", err)
	}
	c.cancel = nil
	c.done = nil
	c.logger.Info("Command consumer stopped")
}

func (c *CommandConsumer) run(ctx context.Context) {
	defer close(c.done)

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.ErrorContext(ctx, "kafka read error", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
			}
			continue
		}

		// The command runs to completion even when shutdown starts meanwhile.
		if err := c.HandleMessage(context.WithoutCancel(ctx), msg); err != nil {
			c.logger.ErrorContext(ctx, "Failed to handle command message", "offset", msg.Offset, "error", err)
			continue
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.ErrorContext(ctx, "Failed to commit command offset", "offset", msg.Offset, "error", err)
		}
	}
}

// HandleMessage executes one command message and writes its reply. It
// returns an error only when the reply could not be written.
func (c *CommandConsumer) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var reply commands.StateCommandReply

	cmd, envelope, err := commands.DecodeStateCommand(msg.Value)
	switch {
	case err != nil:
		c.logger.WarnContext(ctx, "Rejecting malformed command", "offset", msg.Offset, "error", err)
		reply = commands.NewErrorReply(envelope.CorrelationID, err)
	default:
		result, dispatchErr := c.dispatcher.Dispatch(ctx, cmd)
		if dispatchErr != nil {
			reply = commands.NewErrorReply(envelope.CorrelationID, dispatchErr)
		} else {
			reply = commands.NewResultReply(envelope.CorrelationID, result)
		}
	}

	topic := envelope.ReplyTo
	if topic == "" {
		topic = c.defaultReply
	}
	if topic == "" {
		c.logger.WarnContext(ctx, "Dropping reply without a topic", "correlation_id", envelope.CorrelationID)
		return nil
	}

	data, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("encode reply: %w", err)
	}
	if err := c.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(envelope.CorrelationID),
		Value: data,
		Time:  time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("write reply to %s: %w", topic, err)
	}
	return nil
}
