package commands

import (
	"context"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"tableflip.dev/daybook/pkg/commands/options"
	"tableflip.dev/daybook/pkg/runner/historycmd"
)

func addHistory(topLevel *cobra.Command) {
	on := &options.OnOptions{}
	clear := false

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear a day's undo history",
		Example: `
daybook history
daybook history --clear
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dateKey, err := on.GetOn()
			if err != nil {
				return err
			}
			_, session, err := setup(dateKey)
			if err != nil {
				return err
			}
			h := historycmd.History{
				DateKey: dateKey,
				Clear:   clear,
				Session: session,
			}
			return oo.HandleError(h.Do(context.Background()))
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "Discard both stacks for the day.")
	options.AddOnArgs(cmd, on)
	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
