package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"tableflip.dev/daybook/pkg/commands/options"
	"tableflip.dev/daybook/pkg/runner/add"
)

func addCheck(topLevel *cobra.Command) {
	on := &options.OnOptions{}
	io := &options.IDOptions{}
	message := ""

	cmd := &cobra.Command{
		Use:     "check",
		Aliases: []string{"checks", "item", "items"},
		Short:   "Add a checklist item",
		Example: `
daybook add check buy milk
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires item text")
			}
			message = strings.Join(args, " ")
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
			a := add.Add{
				Kind:        add.KindCheck,
				Message:     message,
				DateKey:     dateKey,
				ShowID:      io.ShowID,
				Persistence: p,
				Session:     session,
			}
			return oo.HandleError(a.Do(context.Background()))
		},
	}

	options.AddOnArgs(cmd, on)
	options.AddIDArgs(cmd, io)
	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
