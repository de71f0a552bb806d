package history

import (
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Config tunes the engine process-wide. It can be replaced at runtime with
// Configure; managers read a snapshot at the start of each operation.
type Config struct {
	// MaxHistorySize bounds each day's undo stack; the oldest entries are
	// evicted from the front on overflow.
	MaxHistorySize int

	// EnablePersistence controls whether stacks are written to the history
	// store. When false the history lives only in memory.
	EnablePersistence bool

	// MergeTimeWindow is the base window within which consecutive same-type
	// same-target commands coalesce into one undo entry. Checklist text
	// edits use 1.5x this window, reorders 0.5x.
	MergeTimeWindow time.Duration

	// EnableOptimisticUpdates applies the mutation before persisting the
	// stacks, compensating with a rollback if persistence fails. When
	// false, the mutation runs only after a successful persist.
	EnableOptimisticUpdates bool
}

// DefaultConfig returns the viper-seeded defaults.
func DefaultConfig() Config {
	viper.SetDefault("history.maxSize", 100)
	viper.SetDefault("history.persist", true)
	viper.SetDefault("history.mergeWindowMS", 1000)
	viper.SetDefault("history.optimistic", true)
	return Config{
		MaxHistorySize:          viper.GetInt("history.maxSize"),
		EnablePersistence:       viper.GetBool("history.persist"),
		MergeTimeWindow:         time.Duration(viper.GetInt("history.mergeWindowMS")) * time.Millisecond,
		EnableOptimisticUpdates: viper.GetBool("history.optimistic"),
	}
}

var (
	configMu sync.RWMutex
	config   = DefaultConfig()
)

// Configure replaces the process-wide configuration.
func Configure(c Config) {
	if c.MaxHistorySize <= 0 {
		c.MaxHistorySize = 100
	}
	if c.MergeTimeWindow < 0 {
		c.MergeTimeWindow = 0
	}
	configMu.Lock()
	config = c
	configMu.Unlock()
}

// CurrentConfig returns a snapshot of the process-wide configuration.
func CurrentConfig() Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return config
}

// Per-family merge windows, relative to the configured base.

func noteEditWindow(c Config) time.Duration { return c.MergeTimeWindow }
func itemEditWindow(c Config) time.Duration { return c.MergeTimeWindow + c.MergeTimeWindow/2 }
func reorderWindow(c Config) time.Duration  { return c.MergeTimeWindow / 2 }

func withinWindow(prev, next time.Time, window time.Duration) bool {
	return next.Sub(prev) < window
}
