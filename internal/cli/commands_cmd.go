package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"workorders/internal/core/domain/model/workorder"
	"workorders/internal/core/domain/statecommand"

	"github.com/spf13/cobra"
)

// CommandsCmd returns the commands command
func CommandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the state commands that can be sent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "COMMAND\tON SUCCESS\tACTOR\tFROM\tTO")
			for _, kind := range statecommand.Kinds() {
				def, err := statecommand.Lookup(kind)
				if err != nil {
					return err
				}
				from, to := transition(def)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", def.Name(), def.PastVerb(), def.Actor(), from, to)
			}
			return w.Flush()
		},
	}
}

// transition lists the statuses a command starts from and the one it leaves.
func transition(def statecommand.Definition) (from, to string) {
	var starts []string
	for _, s := range workorder.All() {
		if def.BeginStatus(s).Equal(s) {
			starts = append(starts, s.Key())
		}
	}
	from = strings.Join(starts, ",")

	switch {
	case def.Deletes():
		to = "(deleted)"
	case def.PreservesStatus():
		to = "(unchanged)"
	default:
		to = def.EndStatus(workorder.None).Key()
	}
	return from, to
}
