package loader

import (
	"testing"

	"github.com/secfsds/bronze/internal/domain"
)

func TestCastDateUsesExplicitSourceLayout(t *testing.T) {
	if got := castDate("20240315"); got != "2024-03-15" {
		t.Fatalf("expected 2024-03-15, got %v", got)
	}
}

func TestCastDateRejectsOtherLayouts(t *testing.T) {
	// The date cast must never fall back to generic layouts; only the
	// 8-digit source form is valid.
	for _, raw := range []string{"2024-03-15", "03/15/2024", "15 Mar 2024", "2024031", "202403155"} {
		if got := castDate(raw); got != nil {
			t.Fatalf("castDate(%q) = %v, want nil", raw, got)
		}
	}
}

func TestCastInteger(t *testing.T) {
	cases := []struct {
		raw  string
		want any
	}{
		{"320193", int64(320193)},
		{"-7", int64(-7)},
		{"320193.0", int64(320193)},
		{"320193.5", nil},
		{"abc", nil},
		{"12e2", int64(1200)},
	}
	for _, tc := range cases {
		if got := castInteger(tc.raw); got != tc.want {
			t.Fatalf("castInteger(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestCastDouble(t *testing.T) {
	if got := castDouble("1234.56"); got != 1234.56 {
		t.Fatalf("castDouble = %v", got)
	}
	if got := castDouble("1.2e9"); got != 1.2e9 {
		t.Fatalf("castDouble = %v", got)
	}
	if got := castDouble("NaN?"); got != nil {
		t.Fatalf("castDouble on garbage = %v, want nil", got)
	}
}

func TestCastBoolean(t *testing.T) {
	trues := []string{"1", "true", "TRUE", "yes", "Y", "t"}
	falses := []string{"0", "false", "no", "N", "f"}
	for _, raw := range trues {
		if got := castBoolean(raw); got != true {
			t.Fatalf("castBoolean(%q) = %v, want true", raw, got)
		}
	}
	for _, raw := range falses {
		if got := castBoolean(raw); got != false {
			t.Fatalf("castBoolean(%q) = %v, want false", raw, got)
		}
	}
	if got := castBoolean("maybe"); got != nil {
		t.Fatalf("castBoolean(maybe) = %v, want nil", got)
	}
}

func TestCastTimestampAcceptsFreeFormInputs(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"2024-02-01 16:30:00", "2024-02-01 16:30:00"},
		{"2024-02-01 16:30:00.0", "2024-02-01 16:30:00"},
		{"2024-02-01T16:30:00Z", "2024-02-01 16:30:00"},
		{"2024-02-01", "2024-02-01 00:00:00"},
	}
	for _, tc := range cases {
		if got := castTimestamp(tc.raw); got != tc.want {
			t.Fatalf("castTimestamp(%q) = %v, want %q", tc.raw, got, tc.want)
		}
	}
	if got := castTimestamp("not a time"); got != nil {
		t.Fatalf("castTimestamp on garbage = %v, want nil", got)
	}
}

func TestCastForTypeRejectsUnknownType(t *testing.T) {
	if _, err := castForType(domain.ColumnType("UUID")); err == nil {
		t.Fatal("expected ErrCastUnsupported for unknown column type")
	}
}
