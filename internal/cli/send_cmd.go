package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"workorders/internal/core/application/usecases/commands"
	"workorders/internal/core/domain/model/employee"
	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/core/domain/model/workorder"
	"workorders/internal/core/domain/statecommand"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// DispatcherFactory connects to wherever commands are executed. The returned
// func releases the connection.
type DispatcherFactory func(ctx context.Context) (commands.StateCommandDispatcher, func(), error)

// SendCmd returns the send command
func SendCmd(connect DispatcherFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <command>",
		Short: "Send one state command to a work order",
		Long: `Send a state command and wait for its result.

Without --work-order, Save and Assign create a new draft.

Examples:
  workorders send Save --actor <id> --title "Replace filter" --room-tag B-12
  workorders send Assign --work-order <id> --actor <id> --assignee <id>
  workorders send Begin --work-order <id> --actor <id> --key retry-42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd, args[0], connect)
		},
	}
	cmd.Flags().String("work-order", "", "Work order id")
	cmd.Flags().String("actor", "", "Id of the employee issuing the command")
	cmd.Flags().String("assignee", "", "Employee to assign")
	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("description", "", "New description")
	cmd.Flags().String("instructions", "", "New instructions")
	cmd.Flags().String("deadline", "", "New deadline (RFC 3339)")
	cmd.Flags().Bool("clear-deadline", false, "Remove the deadline")
	cmd.Flags().StringSlice("room-tag", nil, "Room tag, repeatable; replaces all tags")
	cmd.Flags().String("key", "", "Idempotency key; resending with the same key is safe")
	cmd.Flags().Duration("timeout", 30*time.Second, "How long to wait for the result")
	_ = cmd.MarkFlagRequired("actor")
	return cmd
}

func runSend(cmd *cobra.Command, name string, connect DispatcherFactory) error {
	stateCmd, err := buildCommand(cmd, name)
	if err != nil {
		return err
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	dispatcher, release, err := connect(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer release()

	result, err := dispatcher.Dispatch(ctx, stateCmd)
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), result)
	return nil
}

func buildCommand(cmd *cobra.Command, name string) (statecommand.Command, error) {
	flags := cmd.Flags()

	var workOrderID kernel.UUID
	if raw, _ := flags.GetString("work-order"); raw != "" {
		id, err := kernel.UUIDFromString(raw)
		if err != nil {
			return statecommand.Command{}, fmt.Errorf("--work-order: %w", err)
		}
		workOrderID = id
	}

	rawActor, _ := flags.GetString("actor")
	actorID, err := kernel.UUIDFromString(rawActor)
	if err != nil {
		return statecommand.Command{}, fmt.Errorf("--actor: %w", err)
	}

	var edits statecommand.Edits
	for flag, target := range map[string]**string{
		"title":        &edits.Title,
		"description":  &edits.Description,
		"instructions": &edits.Instructions,
	} {
		if flags.Changed(flag) {
			v, _ := flags.GetString(flag)
			*target = &v
		}
	}
	if flags.Changed("deadline") {
		raw, _ := flags.GetString("deadline")
		deadline, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return statecommand.Command{}, fmt.Errorf("--deadline: %w", err)
		}
		edits.Deadline = &deadline
	}
	edits.ClearDeadline, _ = flags.GetBool("clear-deadline")
	if flags.Changed("room-tag") {
		tags, _ := flags.GetStringSlice("room-tag")
		edits.RoomTags = append([]string{}, tags...)
	}

	opts := []statecommand.Option{statecommand.WithEdits(edits)}
	if raw, _ := flags.GetString("assignee"); raw != "" {
		assigneeID, err := kernel.UUIDFromString(raw)
		if err != nil {
			return statecommand.Command{}, fmt.Errorf("--assignee: %w", err)
		}
		opts = append(opts, statecommand.WithAssignee(assigneeID))
	}
	if key, _ := flags.GetString("key"); key != "" {
		opts = append(opts, statecommand.WithCorrelationID(key))
	}

	return statecommand.NewByName(name, workorder.Reference(workOrderID), employee.Reference(actorID), opts...)
}

func printResult(w io.Writer, result commands.StateCommandResult) {
	var label string
	switch result.Outcome {
	case commands.OutcomeSucceeded:
		label = color.New(color.FgGreen).Sprint("✓ " + result.Verb)
	case commands.OutcomeValidationFailed:
		label = color.New(color.FgYellow).Sprint("! validation failed")
	default:
		label = color.New(color.FgRed).Sprintf("✗ not valid (%s)", result.Rejection)
	}

	if wo := result.WorkOrder; wo != nil && wo.IsPersisted() {
		fmt.Fprintf(w, "%s %s %q [%s]\n", label, wo.Number(), wo.Title(), wo.Status().Name())
		fmt.Fprintf(w, "  id: %s\n", wo.ID())
	} else {
		fmt.Fprintln(w, label)
	}
	if result.Deleted {
		fmt.Fprintln(w, "  deleted")
	}
	for _, msg := range result.Messages {
		fmt.Fprintf(w, "  - %s\n", msg)
	}
}
