package commands

import (
	"github.com/spf13/cobra"
)

func addAdd(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add something to a day",
		Example: `
daybook add note picked up the keys from the agency
daybook add check buy milk
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addNote(cmd)
	addCheck(cmd)

	topLevel.AddCommand(cmd)
}
