package options

import (
	"github.com/spf13/cobra"
)

// IDOptions controls how entry identifiers are shown.
type IDOptions struct {
	ShowID bool
}

func AddIDArgs(cmd *cobra.Command, o *IDOptions) {
	cmd.Flags().BoolVar(&o.ShowID, "id", false,
		"Show entry ids. Any unique id prefix is accepted where an id is expected.")
}
