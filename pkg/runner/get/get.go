package get

import (
	"context"
	"fmt"

	"tableflip.dev/daybook/pkg/daystore"
	"tableflip.dev/daybook/pkg/printers"
)

type Get struct {
	DateKey  string
	ShowID   bool
	ListDays bool

	Persistence daystore.Persistence
}

func (g *Get) Do(ctx context.Context) error {
	pp := printers.PrettyPrint{ShowID: g.ShowID}

	if g.ListDays {
		pp.Title("days")
		for _, dk := range g.Persistence.Days(ctx) {
			fmt.Println(dk)
		}
		pp.NewLine()
		return nil
	}

	r, err := g.Persistence.GetDayData(ctx, g.DateKey)
	if err != nil {
		return err
	}
	pp.Title(g.DateKey)
	pp.Day(r)
	return nil
}
