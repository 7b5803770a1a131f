// Package ass reads and writes Advanced SubStation Alpha (ASS) and SubStation
// Alpha (SSA) subtitle scripts.
//
// A [Document] keeps every line it does not understand verbatim, so that a
// parse followed by [Encode] reproduces the input byte for byte (apart from
// the byte-order mark). Only the style and event lines are broken into typed
// records; everything else is opaque.
package ass

import (
	"fmt"
	"strconv"
	"strings"
)

// Well-known section names.
const (
	SectionScriptInfo = "Script Info"
	SectionV4Styles   = "V4 Styles"
	SectionV4PStyles  = "V4+ Styles"
	SectionEvents     = "Events"
)

// Event kinds recognised in the [Events] section.
const (
	KindDialogue = "Dialogue"
	KindComment  = "Comment"
	KindPicture  = "Picture"
	KindSound    = "Sound"
	KindMovie    = "Movie"
	KindCommand  = "Command"
)

var eventKinds = map[string]bool{
	KindDialogue: true,
	KindComment:  true,
	KindPicture:  true,
	KindSound:    true,
	KindMovie:    true,
	KindCommand:  true,
}

// Default column layouts used when a section has no Format line.
var (
	defaultStyleFormat = []string{
		"Name", "Fontname", "Fontsize", "PrimaryColour", "SecondaryColour",
		"OutlineColour", "BackColour", "Bold", "Italic", "Underline", "StrikeOut",
		"ScaleX", "ScaleY", "Spacing", "Angle", "BorderStyle", "Outline", "Shadow",
		"Alignment", "MarginL", "MarginR", "MarginV", "Encoding",
	}
	defaultEventFormat = []string{
		"Layer", "Start", "End", "Style", "Name",
		"MarginL", "MarginR", "MarginV", "Effect", "Text",
	}
)

// Style is a named formatting preset from a styles section.
type Style struct {
	// Name is the value of the Name column. Names are not guaranteed unique.
	Name string
	// Fields maps column names from the Format line to their raw values.
	Fields map[string]string
	// Raw is the original "Style: ..." line.
	Raw string
}

// Event is a single line of the [Events] section.
type Event struct {
	// Kind is the line type, e.g. Dialogue or Comment.
	Kind string
	// Layer is the z-order of the event. Scripts without a Layer column
	// (SSA "Marked") report 0.
	Layer int
	// Style references a Style by name. It is not validated.
	Style string
	// Fields maps column names from the Format line to their raw values.
	Fields map[string]string
	// Raw is the original line.
	Raw string
	// Trailing holds non-event lines (comments, blank lines) that followed
	// this event inside the section. They are written and dropped with it.
	Trailing []string
}

// Text returns the Text column of the event.
func (e Event) Text() string {
	return e.Fields["Text"]
}

// Section is a bracketed block of the script.
type Section struct {
	// Name is the header without brackets and surrounding blanks, e.g.
	// "Script Info".
	Name string
	// Header is the original header line.
	Header string
	// Lines are the raw body lines. For the events section these are only
	// the lines before the first event (typically the Format line).
	Lines []string
	// Trailer holds the blank lines at the end of the section.
	Trailer []string
}

// Document is a parsed subtitle script.
type Document struct {
	// Preamble holds any lines before the first section header.
	Preamble []string
	// Sections are all sections in file order.
	Sections []Section
	// Styles are the parsed styles in file order.
	Styles []Style
	// Events are the parsed events in file order.
	Events []Event
	// Newline is the line terminator detected in the input.
	Newline string

	eventsSection int
}

// WithEvents returns a copy of d whose event list is replaced by events.
// Sections and styles are shared with d; neither document is modified.
func (d *Document) WithEvents(events []Event) *Document {
	out := *d
	out.Events = events

	return &out
}

// StyleNames returns the style names in file order.
func (d *Document) StyleNames() []string {
	names := make([]string, len(d.Styles))
	for i, s := range d.Styles {
		names[i] = s.Name
	}

	return names
}

// HasEventsSection reports whether the script contains an [Events] section.
func (d *Document) HasEventsSection() bool {
	return d.eventsSection >= 0
}

// ParseError is returned for input that is not a valid script.
type ParseError struct {
	Line int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}

	return e.Msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// splitEntry splits "Key: value" into its key and value. ok is false when the
// line has no colon or the key contains characters not allowed in a key.
func splitEntry(line string) (key, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}

	key = strings.TrimSpace(line[:idx])
	if key == "" || strings.ContainsAny(key, ",;[]") {
		return "", "", false
	}

	return key, strings.TrimLeft(line[idx+1:], " \t"), true
}

// parseFormat splits a Format line value into trimmed column names.
func parseFormat(value string) []string {
	cols := strings.Split(value, ",")
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}

	return cols
}

// splitFields splits value into exactly len(format) fields. The last column
// absorbs any remaining commas, as the Text column of an event does.
func splitFields(value string, format []string) (map[string]string, error) {
	parts := strings.SplitN(value, ",", len(format))
	if len(parts) < len(format) {
		return nil, fmt.Errorf("expected %d fields, got %d", len(format), len(parts))
	}

	fields := make(map[string]string, len(format))

	for i, col := range format {
		v := parts[i]
		if i < len(format)-1 {
			v = strings.TrimSpace(v)
		}

		fields[col] = v
	}

	return fields, nil
}

func parseLayer(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}

	// SSA v4 scripts carry "Marked=0" in the first column.
	if strings.HasPrefix(raw, "Marked=") {
		return 0, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid layer %q", raw)
	}

	return n, nil
}

func isStylesSection(name string) bool {
	return strings.EqualFold(name, SectionV4PStyles) || strings.EqualFold(name, SectionV4Styles)
}

func isEventsSection(name string) bool {
	return strings.EqualFold(name, SectionEvents)
}
