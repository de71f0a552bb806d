package commands

import (
	"context"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"tableflip.dev/daybook/pkg/commands/options"
	"tableflip.dev/daybook/pkg/runner/get"
)

func addGet(topLevel *cobra.Command) {
	on := &options.OnOptions{}
	io := &options.IDOptions{}
	listDays := false

	cmd := &cobra.Command{
		Use:     "get",
		Aliases: []string{"show", "ls"},
		Short:   "Print a day",
		Example: `
daybook get
daybook get --on=yesterday
daybook get --days
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dateKey, err := on.GetOn()
			if err != nil {
				return err
			}
			p, _, err := setup(dateKey)
			if err != nil {
				return err
			}
			g := get.Get{
				DateKey:     dateKey,
				ShowID:      io.ShowID,
				ListDays:    listDays,
				Persistence: p,
			}
			return oo.HandleError(g.Do(context.Background()))
		},
	}

	cmd.Flags().BoolVar(&listDays, "days", false, "List the days that have entries instead of printing one day.")
	options.AddOnArgs(cmd, on)
	options.AddIDArgs(cmd, io)
	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
