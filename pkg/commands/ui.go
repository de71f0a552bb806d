package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/commands/options"
	"tableflip.dev/daybook/pkg/tui"
)

func addUI(topLevel *cobra.Command) {
	on := &options.OnOptions{}

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the text-based user interface",
		Example: `
daybook ui
daybook ui --on=yesterday
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			dateKey, err := on.GetOn()
			if err != nil {
				return err
			}
			p, session, err := setup(dateKey)
			if err != nil {
				return err
			}
			return tui.Run(session, p, dateKey)
		},
	}

	options.AddOnArgs(cmd, on)
	topLevel.AddCommand(cmd)
}
