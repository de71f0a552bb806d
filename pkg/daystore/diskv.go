package daystore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/daybook/pkg/day"
)

const daysDir = "days"

// Load creates a Persistence backed by diskv using the provided config.
func Load(cfg Config) (Persistence, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}

	basePath := cfg.BasePath()
	if basePath == "" {
		return nil, errors.New("daystore: base path required")
	}
	return &persistence{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	}), basePath: basePath}, nil
}

type persistence struct {
	mu       sync.Mutex
	d        *diskv.Diskv
	basePath string
}

// Day records live under days/<dateKey> inside the base path.

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) == 1 {
		return &diskv.PathKey{Path: []string{}, FileName: parts[0]}
	}
	return &diskv.PathKey{Path: []string{parts[0]}, FileName: parts[1]}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	if len(pathKey.Path) == 0 {
		return pathKey.FileName
	}
	return fmt.Sprintf("%s/%s", strings.Join(pathKey.Path, "/"), pathKey.FileName)
}

func dayKey(dateKey string) string {
	return fmt.Sprintf("%s/%s", daysDir, dateKey)
}

func (p *persistence) read(dateKey string) (*day.Record, error) {
	val, err := p.d.Read(dayKey(dateKey))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("daystore: read %s: %w", dateKey, err)
	}
	r := &day.Record{}
	if err := json.Unmarshal(val, r); err != nil {
		return nil, fmt.Errorf("daystore: decode %s: %w", dateKey, err)
	}
	if r.DateKey == "" {
		r.DateKey = dateKey
	}
	return r, nil
}

func (p *persistence) write(r *day.Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("daystore: encode %s: %w", r.DateKey, err)
	}
	if err := p.d.Write(dayKey(r.DateKey), data); err != nil {
		return fmt.Errorf("daystore: write %s: %w", r.DateKey, err)
	}
	return nil
}

// mutate loads the record for dateKey (creating an empty one when absent),
// applies fn, and writes the result back.
func (p *persistence) mutate(dateKey string, fn func(r *day.Record) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, err := p.read(dateKey)
	if err != nil {
		return err
	}
	if r == nil {
		r = &day.Record{DateKey: dateKey}
	}
	if err := fn(r); err != nil {
		return err
	}
	return p.write(r)
}

func (p *persistence) AddNote(_ context.Context, dateKey, content string) (*day.Note, error) {
	var created day.Note
	err := p.mutate(dateKey, func(r *day.Record) error {
		created = *addNote(r, content)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (p *persistence) UpdateNote(_ context.Context, dateKey, noteID, content string) error {
	return p.mutate(dateKey, func(r *day.Record) error {
		return updateNote(r, noteID, content)
	})
}

func (p *persistence) DeleteNote(_ context.Context, dateKey, noteID string) error {
	return p.mutate(dateKey, func(r *day.Record) error {
		return deleteNote(r, noteID)
	})
}

func (p *persistence) AddChecklistItem(_ context.Context, dateKey, text string) (*day.Item, error) {
	var created day.Item
	err := p.mutate(dateKey, func(r *day.Record) error {
		created = *addItem(r, text)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (p *persistence) UpdateChecklistItem(_ context.Context, dateKey, itemID string, update ItemUpdate) error {
	return p.mutate(dateKey, func(r *day.Record) error {
		return updateItem(r, itemID, update)
	})
}

func (p *persistence) DeleteChecklistItem(_ context.Context, dateKey, itemID string) error {
	return p.mutate(dateKey, func(r *day.Record) error {
		return deleteItem(r, itemID)
	})
}

func (p *persistence) ReorderChecklistItems(_ context.Context, dateKey string, orderedIDs []string) error {
	return p.mutate(dateKey, func(r *day.Record) error {
		return reorderItems(r, orderedIDs)
	})
}

func (p *persistence) GetDayData(_ context.Context, dateKey string) (*day.Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, err := p.read(dateKey)
	if err != nil {
		return nil, err
	}
	return r.Clone(), nil
}

func (p *persistence) Days(ctx context.Context) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var days []string
	for key := range p.d.Keys(ctx.Done()) {
		pk := keyToPathTransform(key)
		if len(pk.Path) == 0 || pk.Path[0] != daysDir {
			continue
		}
		days = append(days, pk.FileName)
	}
	sort.Strings(days)
	return days
}
