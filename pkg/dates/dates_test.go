package dates

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  bool
	}{
		{in: "2026-08-26", want: "2026-08-26"},
		{in: "", want: Today()},
		{in: "today", want: Today()},
		{in: "Today", want: Today()},
		{in: "yesterday", want: Key(time.Now().AddDate(0, 0, -1))},
		{in: "tomorrow", want: Key(time.Now().AddDate(0, 0, 1))},
		{in: "08/26/2026", err: true},
		{in: "not-a-date", err: true},
	}
	for _, tc := range tests {
		got, err := Parse(tc.in)
		if tc.err {
			if err == nil {
				t.Errorf("Parse(%q) expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Parse(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestShift(t *testing.T) {
	if got := Shift("2026-08-31", 1); got != "2026-09-01" {
		t.Errorf("Shift month boundary = %q", got)
	}
	if got := Shift("2026-01-01", -1); got != "2025-12-31" {
		t.Errorf("Shift year boundary = %q", got)
	}
	if got := Shift("garbage", 3); got != "garbage" {
		t.Errorf("Shift on bad key should be identity, got %q", got)
	}
}

func TestValid(t *testing.T) {
	if !Valid("2026-02-28") {
		t.Error("expected valid key")
	}
	if Valid("2026-02-30") {
		t.Error("expected invalid day of month")
	}
	if Valid("20260228") {
		t.Error("expected invalid layout")
	}
}
