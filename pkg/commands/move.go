package commands

import (
	"context"
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"tableflip.dev/daybook/pkg/commands/options"
	"tableflip.dev/daybook/pkg/runner/move"
)

func addMove(topLevel *cobra.Command) {
	on := &options.OnOptions{}
	io := &options.IDOptions{}
	id := ""
	position := 0

	cmd := &cobra.Command{
		Use:   "move <id> <position>",
		Short: "Move a checklist item to a new position",
		Example: `
daybook move 4f2a 1
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("requires an item id and a 1-based position")
			}
			id = args[0]
			var err error
			position, err = strconv.Atoi(args[1])
			if err != nil {
				return errors.New("position must be a number")
			}
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
			m := move.Move{
				ID:          id,
				Position:    position,
				DateKey:     dateKey,
				ShowID:      io.ShowID,
				Persistence: p,
				Session:     session,
			}
			return oo.HandleError(m.Do(context.Background()))
		},
	}

	options.AddOnArgs(cmd, on)
	options.AddIDArgs(cmd, io)
	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
