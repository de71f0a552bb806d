package commands

import (
	"tableflip.dev/daybook/pkg/daystore"
	"tableflip.dev/daybook/pkg/history"
	"tableflip.dev/daybook/pkg/undoredo"
)

// setup loads persistence and an undo session rooted at the configured
// base path. Each CLI invocation gets a fresh session; history survives
// between invocations through the store.
func setup(dateKey string) (daystore.Persistence, *undoredo.Session, error) {
	cfg, err := daystore.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	p, err := daystore.Load(cfg)
	if err != nil {
		return nil, nil, err
	}
	hs := history.OpenStore(cfg.BasePath(), nil)
	return p, undoredo.NewSession(p, hs, dateKey, nil), nil
}
