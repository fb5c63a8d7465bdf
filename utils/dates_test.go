package utils

import (
	"testing"
	"time"
)

func TestDateKeyUsesUTC(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("UTC+9", 9*60*60)
	// 02:00 on the 15th in UTC+9 is still the 14th in UTC.
	ts := time.Date(2026, 3, 15, 2, 0, 0, 0, loc)
	if got := DateKey(ts); got != "2026-03-14" {
		t.Fatalf("expected 2026-03-14, got %s", got)
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2026-03-14", want: "2026-03-14"},
		{in: "2026-03-14T23:30:00Z", want: "2026-03-14"},
		{in: "2026-03-14T23:30:00-02:00", want: "2026-03-15"},
		{in: "yesterday", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseDate(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", tc.in, err)
		}
		if DateKey(got) != tc.want {
			t.Fatalf("ParseDate(%q) = %s, want %s", tc.in, DateKey(got), tc.want)
		}
	}
}

func TestDayBounds(t *testing.T) {
	t.Parallel()
	start, end := DayBounds(time.Date(2026, 1, 31, 18, 5, 0, 0, time.UTC))
	if !start.Equal(time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %v", start)
	}
	if !end.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end %v", end)
	}
}

func TestNormalizeTags(t *testing.T) {
	t.Parallel()
	got := NormalizeTags([]string{"High Protein", " quick ", "", "high-protein", "Végétarien"})
	want := []string{"high-protein", "quick", "vegetarien"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if label := TagLabel("high-protein"); label != "High Protein" {
		t.Fatalf("unexpected label %q", label)
	}
}
