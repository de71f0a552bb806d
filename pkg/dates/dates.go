// Package dates handles the date keys that partition journal data: one key
// per calendar day in ISO form.
package dates

import (
	"fmt"
	"strings"
	"time"
)

const layoutISO = "2006-01-02"

// Key formats a time as a date key, dropping the time of day.
func Key(t time.Time) string {
	return t.Format(layoutISO)
}

// Today returns the date key for the current local day.
func Today() string {
	return Key(time.Now())
}

// Parse resolves user input to a date key. It accepts the ISO form and the
// aliases "today", "yesterday", and "tomorrow". An empty string means today.
func Parse(in string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(in)) {
	case "", "today":
		return Today(), nil
	case "yesterday":
		return Key(time.Now().AddDate(0, 0, -1)), nil
	case "tomorrow":
		return Key(time.Now().AddDate(0, 0, 1)), nil
	}
	t, err := time.Parse(layoutISO, in)
	if err != nil {
		return "", fmt.Errorf("dates: %q is not a date (want %s): %w", in, layoutISO, err)
	}
	return Key(t), nil
}

// Shift moves a date key forward or backward by whole days. An unparseable
// key is returned unchanged.
func Shift(key string, days int) string {
	t, err := time.Parse(layoutISO, key)
	if err != nil {
		return key
	}
	return Key(t.AddDate(0, 0, days))
}

// Display renders a date key for humans, like "Tuesday, August 26 2026".
func Display(key string) string {
	t, err := time.Parse(layoutISO, key)
	if err != nil {
		return key
	}
	return t.Format("Monday, January 2 2006")
}

// Valid reports whether key is a well-formed date key.
func Valid(key string) bool {
	_, err := time.Parse(layoutISO, key)
	return err == nil
}
