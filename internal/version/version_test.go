package version

import (
	"errors"
	"testing"

	"gsctl-setup/internal/errs"
)

func TestParse_TruncatesTrailingComponents(t *testing.T) {
	cases := []struct {
		in    string
		major int
		minor int
	}{
		{"17.0.1", 17, 0},
		{"2.7.0", 2, 7},
		{"1.9", 1, 9},
		{"14", 14, 0},
		{"10.15.7.extra", 10, 15},
		{"  2.39.2 ", 2, 39},
	}
	for _, tc := range cases {
		v, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q): unexpected error %v", tc.in, err)
		}
		if v.Major != tc.major || v.Minor != tc.minor {
			t.Errorf("Parse(%q) = {%d,%d}, want {%d,%d}", tc.in, v.Major, v.Minor, tc.major, tc.minor)
		}
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, in := range []string{"abc.0", "1.x", "", ".", "v1.2"} {
		_, err := Parse(in)
		if err == nil {
			t.Fatalf("Parse(%q): expected error", in)
		}
		if !errors.Is(err, errs.ErrMalformedVersion) {
			t.Errorf("Parse(%q): expected ErrMalformedVersion, got %v", in, err)
		}
	}
}

func TestCompareStrings(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"17.0.1", "17.0.0", 0}, // patch is truncated, so 17.0 == 17.0
		{"17.1.0", "17.0.9", 1},
		{"2.7.0", "2.7.0", 0},
		{"1.9", "2.1", -1},
		{"10.9", "10.10", -1}, // numeric, not lexicographic, minor comparison
		{"11.0", "10.15", 1},
	}
	for _, tc := range cases {
		got, err := CompareStrings(tc.a, tc.b)
		if err != nil {
			t.Fatalf("CompareStrings(%q, %q): %v", tc.a, tc.b, err)
		}
		if got != tc.want {
			t.Errorf("CompareStrings(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestCompareStrings_MalformedIsFatal(t *testing.T) {
	if _, err := CompareStrings("abc.0", "1.0"); !errors.Is(err, errs.ErrMalformedVersion) {
		t.Fatalf("expected ErrMalformedVersion, got %v", err)
	}
}

func TestPredicates(t *testing.T) {
	v17 := Version{17, 0}
	v16 := Version{16, 4}

	if !v17.Greater(v16) {
		t.Error("17.0 should be greater than 16.4")
	}
	if !v17.GreaterOrEqual(Version{17, 0}) {
		t.Error("17.0 should be >= 17.0")
	}
	if !v16.Less(v17) {
		t.Error("16.4 should be less than 17.0")
	}
	if v16.GreaterOrEqual(v17) {
		t.Error("16.4 should not be >= 17.0")
	}
}
