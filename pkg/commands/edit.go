package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"tableflip.dev/daybook/pkg/commands/options"
	"tableflip.dev/daybook/pkg/runner/edit"
)

func addEdit(topLevel *cobra.Command) {
	on := &options.OnOptions{}
	io := &options.IDOptions{}
	id := ""
	message := ""

	cmd := &cobra.Command{
		Use:   "edit <id> <text...>",
		Short: "Rewrite a note or checklist item",
		Example: `
daybook edit 4f2a buy oat milk
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return errors.New("requires an id and the new text")
			}
			id = args[0]
			message = strings.Join(args[1:], " ")
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
			e := edit.Edit{
				ID:          id,
				Message:     message,
				DateKey:     dateKey,
				ShowID:      io.ShowID,
				Persistence: p,
				Session:     session,
			}
			return oo.HandleError(e.Do(context.Background()))
		},
	}

	options.AddOnArgs(cmd, on)
	options.AddIDArgs(cmd, io)
	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
