package timekeep

import (
	"strings"
	"testing"
	"time"
)

const sampleNote = `# Timeoversikt

Litt fritekst over blokken.

` + "```timekeep" + `
{
  "entries": [
    {
      "name": "jobb",
      "startTime": "2024-11-25T08:00:00",
      "endTime": "2024-11-25T16:00:00"
    }
  ],
  "settings": {"baseWorkday": 7}
}
` + "```" + `

Tekst mellom blokkene.

` + "```timeflow-settings" + `
{"baseWorkday": 8}
` + "```" + `

Og tekst under.
`

func TestParseNoteSeparateSettingsWins(t *testing.T) {
	doc, settings, err := ParseNote(sampleNote)
	if err != nil {
		t.Fatalf("ParseNote: %v", err)
	}

	if got, want := len(doc.Entries), 1; got != want {
		t.Fatalf("len(entries) = %d, want %d", got, want)
	}
	if got, want := doc.Entries[0].Name, "jobb"; got != want {
		t.Errorf("entry name = %q, want %q", got, want)
	}
	if got, want := string(settings), `{"baseWorkday": 8}`; got != want {
		t.Errorf("settings = %s, want %s", got, want)
	}
}

func TestParseNoteLegacyEmbeddedSettings(t *testing.T) {
	note := "```timekeep\n" + `{"entries": [], "settings": {"workTypeId": "work"}}` + "\n```\n"

	_, settings, err := ParseNote(note)
	if err != nil {
		t.Fatalf("ParseNote: %v", err)
	}
	if !strings.Contains(string(settings), `"workTypeId"`) {
		t.Errorf("legacy embedded settings not found: %s", settings)
	}
}

func TestParseNoteWithoutBlocks(t *testing.T) {
	doc, settings, err := ParseNote("# Bare en vanlig notat\n\nIngen blokker her.\n")
	if err != nil {
		t.Fatalf("ParseNote: %v", err)
	}
	if len(doc.Entries) != 0 || settings != nil {
		t.Errorf("expected an empty document, got %d entries, settings %q", len(doc.Entries), settings)
	}
}

func TestParseNoteBrokenJSON(t *testing.T) {
	note := "```timekeep\n{\"entries\": [broken\n```\n"
	if _, _, err := ParseNote(note); err == nil {
		t.Fatal("expected an error for a broken timekeep block")
	}
}

func TestRenderNotePreservesSurroundings(t *testing.T) {
	doc, settings, err := ParseNote(sampleNote)
	if err != nil {
		t.Fatal(err)
	}
	doc.Entries = append(doc.Entries, Timer{Name: "ferie", StartTime: localAt(2024, time.December, 24, 8, 0), EndTime: localAt(2024, time.December, 24, 8, 0)})

	out, err := RenderNote(sampleNote, doc, settings)
	if err != nil {
		t.Fatalf("RenderNote: %v", err)
	}

	for _, want := range []string{
		"Litt fritekst over blokken.",
		"Tekst mellom blokkene.",
		"Og tekst under.",
		`"name": "ferie"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered note lost %q:\n%s", want, out)
		}
	}

	// The legacy embedded overlay must not be written back.
	reparsed, rawSettings, err := ParseNote(out)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if reparsed.Settings != nil {
		t.Errorf("embedded settings survived the rewrite")
	}
	if !strings.Contains(string(rawSettings), `"baseWorkday": 8`) {
		t.Errorf("separate settings block lost: %s", rawSettings)
	}
	if got, want := len(reparsed.Entries), 2; got != want {
		t.Errorf("reparsed %d entries, want %d", got, want)
	}
}

func TestRenderNoteFreshFile(t *testing.T) {
	out, err := RenderNote("", Document{}, nil)
	if err != nil {
		t.Fatalf("RenderNote: %v", err)
	}

	if !strings.HasPrefix(out, DefaultHeader+"\n") {
		t.Errorf("fresh note missing header:\n%s", out)
	}
	if !strings.Contains(out, "```timekeep") {
		t.Errorf("fresh note missing entries block:\n%s", out)
	}
	if strings.Contains(out, "```timeflow-settings") {
		t.Errorf("fresh note should not carry an empty settings block:\n%s", out)
	}

	doc, _, err := ParseNote(out)
	if err != nil {
		t.Fatalf("reparse fresh note: %v", err)
	}
	if len(doc.Entries) != 0 {
		t.Errorf("fresh note has %d entries", len(doc.Entries))
	}
}

func TestRenderParseRoundTrip(t *testing.T) {
	doc := Document{Entries: []Timer{
		{Name: "jobb", StartTime: localAt(2024, time.November, 25, 8, 0), EndTime: localAt(2024, time.November, 25, 16, 0)},
		{Name: "jobb", StartTime: localAt(2024, time.November, 27, 8, 0)},
		{
			Name:      "jobb",
			Collapsed: true,
			SubEntries: []Timer{
				{Name: "jobb", StartTime: localAt(2024, time.November, 26, 8, 0), EndTime: localAt(2024, time.November, 26, 12, 0)},
			},
		},
	}}

	out, err := RenderNote("", doc, []byte(`{"workTypeId":"jobb"}`))
	if err != nil {
		t.Fatalf("RenderNote: %v", err)
	}
	back, settings, err := ParseNote(out)
	if err != nil {
		t.Fatalf("ParseNote: %v", err)
	}

	if got, want := len(back.Entries), len(doc.Entries); got != want {
		t.Fatalf("round trip entry count = %d, want %d", got, want)
	}
	for i := range doc.Entries {
		if got, want := back.Entries[i].Key(), doc.Entries[i].Key(); got != want {
			t.Errorf("entry %d identity changed: %q vs %q", i, got, want)
		}
	}
	if got, want := len(back.Entries[2].SubEntries), 1; got != want {
		t.Errorf("sub-entries lost: %d, want %d", got, want)
	}
	if !strings.Contains(string(settings), `"workTypeId"`) {
		t.Errorf("settings lost: %s", settings)
	}
}
