package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"workorders/cmd"
	"workorders/internal/adapters/out/kafka"
	"workorders/internal/cli"
	"workorders/internal/core/application/usecases/commands"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "workorders",
		Short: "Send state commands to the work order service",
		Long: `workorders talks to the work order service over Kafka. Commands are
executed by whichever service instance consumes the commands topic.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cli.SendCmd(connectRemote))
	rootCmd.AddCommand(cli.CommandsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func connectRemote(_ context.Context) (commands.StateCommandDispatcher, func(), error) {
	config, err := cmd.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	client := kafka.NewClient(config.KafkaHost)
	if !client.Enabled() {
		return nil, nil, fmt.Errorf("KAFKA_HOST is not set: %w", kafka.ErrDisabled)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	dispatcher := kafka.NewRemoteDispatcher(
		client.NewWriter(config.KafkaCommandsTopic),
		client.NewTailReader(config.KafkaRepliesTopic),
		config.KafkaRepliesTopic,
		config.DispatchTimeout,
		logger,
	)
	if err := dispatcher.Start(); err != nil {
		return nil, nil, err
	}
	return dispatcher, dispatcher.Stop, nil
}
