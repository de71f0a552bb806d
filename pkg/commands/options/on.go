package options

import (
	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/dates"
)

// OnOptions selects which day a command operates on.
type OnOptions struct {
	OnString string
}

func AddOnArgs(cmd *cobra.Command, o *OnOptions) {
	cmd.Flags().StringVar(&o.OnString, "on", "",
		`Specify a day, example: --on="2026-08-26", --on=yesterday. Defaults to today.`)
}

// GetOn resolves the flag to a date key.
func (o *OnOptions) GetOn() (string, error) {
	return dates.Parse(o.OnString)
}
