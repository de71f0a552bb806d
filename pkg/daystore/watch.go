package daystore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType describes the nature of a persistence change notification.
type EventType int

const (
	// EventDayChanged indicates the record for the given date key changed.
	EventDayChanged EventType = iota

	// EventInvalidated signals a change that could not be attributed to one
	// day; callers should refresh their full view.
	EventInvalidated
)

// Event is emitted by Persistence.Watch when underlying storage changes.
type Event struct {
	Type    EventType
	DateKey string
}

// Watch streams change events until ctx is cancelled. Callers should drain
// the returned channel to avoid blocking the watcher. The channel is closed
// once ctx is done or the watcher encounters an unrecoverable error.
func (p *persistence) Watch(ctx context.Context) (<-chan Event, error) {
	if p.basePath == "" {
		return nil, errors.New("daystore: base path unknown")
	}

	daysPath := filepath.Join(p.basePath, daysDir)
	if err := os.MkdirAll(daysPath, 0o755); err != nil {
		return nil, fmt.Errorf("daystore: ensure days path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("daystore: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "daystore: watcher close: %v\n", err)
			}
		})
	}

	if err := watcher.Add(daysPath); err != nil {
		closeWatcher()
		return nil, fmt.Errorf("daystore: watch %s: %w", daysPath, err)
	}

	events := make(chan Event, 64)

	go func() {
		defer close(events)
		defer closeWatcher()

		send := func(ev Event) {
			select {
			case events <- ev:
			default:
				// Drop events if the consumer is not ready; a subsequent
				// refresh will pick up the changes. This keeps filesystem
				// storms from blocking the watcher goroutine.
			}
		}

		throttle := newEventThrottle(100 * time.Millisecond)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Surface watcher errors as a full refresh to keep clients
				// in sync even if we cannot classify the change precisely.
				throttle.Enqueue(Event{Type: EventInvalidated}, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				dateKey := p.dateKeyForPath(evt.Name)
				if dateKey == "" {
					throttle.Enqueue(Event{Type: EventInvalidated}, send)
					continue
				}
				throttle.Enqueue(Event{Type: EventDayChanged, DateKey: dateKey}, send)
			}
		}
	}()

	return events, nil
}

// dateKeyForPath derives the date key from a diskv file path under days/.
func (p *persistence) dateKeyForPath(path string) string {
	rel, err := filepath.Rel(filepath.Join(p.basePath, daysDir), path)
	if err != nil || rel == "." {
		return ""
	}
	if filepath.Dir(rel) != "." {
		return ""
	}
	return rel
}

// eventThrottle coalesces rapid change notifications so clients can refresh
// once per burst of filesystem activity instead of on every single write.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[EventType]map[string]struct{}
	delay   time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[EventType]map[string]struct{}),
	}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	if t.pending[ev.Type] == nil {
		t.pending[ev.Type] = make(map[string]struct{})
	}
	t.pending[ev.Type][ev.DateKey] = struct{}{}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
	t.mu.Unlock()
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[EventType]map[string]struct{})
	t.timer = nil
	t.mu.Unlock()

	if _, invalid := pending[EventInvalidated]; invalid {
		send(Event{Type: EventInvalidated})
		return
	}
	for dateKey := range pending[EventDayChanged] {
		send(Event{Type: EventDayChanged, DateKey: dateKey})
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
