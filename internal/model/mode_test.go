package model

import "testing"

// TestModeString tests the String method of Mode.
func TestModeString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		mode     Mode
		expected string
	}{
		{ModeSequential, "sequential"},
		{ModeThreaded, "threaded"},
		{Mode(999), "unknown"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.mode.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.mode.String(), tc.expected)
			}
		})
	}
}

// TestParseMode tests the ParseMode function.
func TestParseMode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected Mode
		wantErr  bool
	}{
		{"sequential", "sequential", ModeSequential, false},
		{"threaded", "threaded", ModeThreaded, false},
		{"mixed case", "Threaded", ModeThreaded, false},
		{"surrounding whitespace", "  sequential ", ModeSequential, false},
		{"empty", "", ModeSequential, true},
		{"unknown word", "parallel", ModeSequential, true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mode, err := ParseMode(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseMode(%q) expected error, got nil", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMode(%q) unexpected error: %v", tc.input, err)
			}
			if mode != tc.expected {
				t.Errorf("ParseMode(%q) = %v, expected %v", tc.input, mode, tc.expected)
			}
		})
	}
}
