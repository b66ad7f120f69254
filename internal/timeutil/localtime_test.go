package timeutil

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseLocalForms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"naive", "2024-11-25T08:00:00", "2024-11-25T08:00:00"},
		{"minute precision", "2024-11-25T08:00", "2024-11-25T08:00:00"},
		{"fractional seconds", "2024-11-25T08:00:00.1234567", "2024-11-25T08:00:00"},
		{"zulu suffix", "2024-11-25T08:00:00Z", "2024-11-25T08:00:00"},
		{"offset suffix", "2024-11-25T08:00:00+05:00", "2024-11-25T08:00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLocal(tt.in)
			if err != nil {
				t.Fatalf("ParseLocal(%q): %v", tt.in, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseLocal(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if got.Location() != time.Local {
				t.Errorf("ParseLocal(%q) kept location %v, want local", tt.in, got.Location())
			}
		})
	}

	if _, err := ParseLocal("yesterday-ish"); err == nil {
		t.Errorf("expected an error for an unrecognized timestamp")
	}
	if _, err := ParseLocal(""); err == nil {
		t.Errorf("expected an error for an empty timestamp")
	}
}

func TestCanonicalDetection(t *testing.T) {
	canonical, err := ParseLocal("2024-11-25T08:00:00")
	if err != nil {
		t.Fatal(err)
	}
	if !canonical.Canonical() {
		t.Errorf("a value in the canonical layout should report canonical")
	}

	legacy, err := ParseLocal("2024-11-25T08:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	if legacy.Canonical() {
		t.Errorf("a zone-suffixed value should report non-canonical")
	}

	built := NewLocal(time.Date(2024, time.November, 25, 8, 0, 0, 0, time.Local))
	if !built.Canonical() {
		t.Errorf("a constructed value should report canonical")
	}
}

func TestLocalTimeJSONRoundTrip(t *testing.T) {
	in := `"2024-11-25T08:00:00Z"`

	var lt LocalTime
	if err := json.Unmarshal([]byte(in), &lt); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	out, err := json.Marshal(lt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got, want := string(out), `"2024-11-25T08:00:00"`; got != want {
		t.Errorf("marshal = %s, want %s", got, want)
	}

	// A second round trip must be stable.
	var again LocalTime
	if err := json.Unmarshal(out, &again); err != nil {
		t.Fatalf("second unmarshal: %v", err)
	}
	if !again.Canonical() {
		t.Errorf("re-serialized value should be canonical")
	}
	if again.String() != lt.String() {
		t.Errorf("round trip changed the value: %q vs %q", again, lt)
	}
}

func TestLocalTimeDayKey(t *testing.T) {
	lt := NewLocal(time.Date(2024, time.November, 25, 23, 59, 0, 0, time.Local))
	if got, want := lt.DayKey(), "2024-11-25"; got != want {
		t.Errorf("DayKey = %q, want %q", got, want)
	}
}
