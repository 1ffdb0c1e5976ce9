package cronexpr

import (
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{"every minute", "* * * * *", false},
		{"every five minutes", "*/5 * * * *", false},
		{"daily at nine", "0 9 * * *", false},
		{"too few fields", "* * *", true},
		{"garbage", "not a cron expr", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := Validate(c.expr)
			if (err != nil) != c.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", c.expr, err, c.wantErr)
			}
		})
	}
}

func TestNextAdvancesStrictlyForward(t *testing.T) {
	from := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	next, err := Next("0 9 * * *", from, "")
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if !next.After(from) {
		t.Errorf("Next(%v) = %v, want strictly after from", from, next)
	}
	want := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("Next(%v) = %v, want %v", from, next, want)
	}
}

func TestNextRespectsTimezone(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	next, err := Next("0 9 * * *", from, "America/New_York")
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if next.Location() != time.UTC {
		t.Errorf("Next result location = %v, want UTC (always normalized)", next.Location())
	}
	// 9am US Eastern on Jan 1 is 14:00 UTC (EST, UTC-5).
	want := time.Date(2026, 1, 1, 14, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("Next with tz = %v, want %v", next, want)
	}
}

func TestNextInvalidExpr(t *testing.T) {
	if _, err := Next("garbage", time.Now(), ""); err == nil {
		t.Error("Next with invalid expression: want error, got nil")
	}
}

func TestNextUnknownTimezone(t *testing.T) {
	if _, err := Next("* * * * *", time.Now(), "Not/AZone"); err == nil {
		t.Error("Next with unknown timezone: want error, got nil")
	}
}
