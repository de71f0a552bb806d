package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
)

var (
	oo = &base.OutputOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "daybook",
		Short: base.Wrap80("Daily notes and checklists with full undo history."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addAdd(topLevel)
	addGet(topLevel)
	addEdit(topLevel)
	addDone(topLevel)
	addRemove(topLevel)
	addMove(topLevel)
	addUndo(topLevel)
	addRedo(topLevel)
	addHistory(topLevel)
	addVersion(topLevel)
}
