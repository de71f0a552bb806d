package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"tableflip.dev/daybook/pkg/commands/options"
	"tableflip.dev/daybook/pkg/runner/toggle"
)

func addDone(topLevel *cobra.Command) {
	on := &options.OnOptions{}
	io := &options.IDOptions{}
	id := ""

	cmd := &cobra.Command{
		Use:     "done <id>",
		Aliases: []string{"toggle", "check-off"},
		Short:   "Toggle a checklist item",
		Example: `
daybook done 4f2a
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("requires an item id")
			}
			id = args[0]
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			dateKey, err := on.GetOn()
			if err != nil {
				return err
			}
			p, session, err := setup(dateKey)
			if err != nil {
				return err
			}
			t := toggle.Toggle{
				ID:          id,
				DateKey:     dateKey,
				ShowID:      io.ShowID,
				Persistence: p,
				Session:     session,
			}
			return oo.HandleError(t.Do(context.Background()))
		},
	}

	options.AddOnArgs(cmd, on)
	options.AddIDArgs(cmd, io)
	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
