package ass

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Parse reads a script from r. A UTF-8 byte-order mark is stripped and
// UTF-16 input with a byte-order mark is decoded; anything else must be
// valid UTF-8. Legacy 8-bit encodings are rejected with a *ParseError
// wrapping encoding.ErrInvalidUTF8.
func Parse(r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}

	// BOMOverride passes UTF-8 after a BOM through unchecked, so validation
	// runs on its output.
	decoder := transform.Chain(unicode.BOMOverride(transform.Nop), encoding.UTF8Validator)

	data, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		if errors.Is(err, encoding.ErrInvalidUTF8) {
			return nil, &ParseError{
				Line: bytes.Count(data, []byte("\n")) + 1,
				Msg:  "invalid UTF-8: convert the script to UTF-8 first",
				Err:  err,
			}
		}

		return nil, fmt.Errorf("decoding script: %w", err)
	}

	return parseText(string(data))
}

// ParseFile opens path and parses it. The file is closed before returning.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path) //nolint:gosec // path is user-provided input
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return doc, nil
}

type parser struct {
	doc         *Document
	current     int
	styleFormat []string
	eventFormat []string
}

func parseText(text string) (*Document, error) {
	newline := "\n"
	if strings.Contains(text, "\r\n") {
		newline = "\r\n"
	}

	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	p := &parser{
		doc:     &Document{Newline: newline, eventsSection: -1},
		current: -1,
	}

	for i, line := range lines {
		if err := p.line(strings.TrimSuffix(line, "\r")); err != nil {
			return nil, &ParseError{Line: i + 1, Msg: err.Error()}
		}
	}

	p.finishSection()

	if len(p.doc.Sections) == 0 {
		return nil, &ParseError{Msg: "no sections found: not a SubStation Alpha script"}
	}

	return p.doc, nil
}

func (p *parser) line(line string) error {
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		return p.startSection(strings.TrimSpace(trimmed[1:len(trimmed)-1]), line)
	}

	if p.current < 0 {
		p.doc.Preamble = append(p.doc.Preamble, line)
		return nil
	}

	sec := &p.doc.Sections[p.current]

	switch {
	case isStylesSection(sec.Name):
		sec.Lines = append(sec.Lines, line)
		return p.styleLine(trimmed, line)
	case isEventsSection(sec.Name):
		return p.eventLine(sec, trimmed, line)
	default:
		sec.Lines = append(sec.Lines, line)
		return nil
	}
}

func (p *parser) startSection(name, header string) error {
	p.finishSection()

	if isEventsSection(name) {
		if p.doc.eventsSection >= 0 {
			return fmt.Errorf("duplicate [%s] section", name)
		}

		p.doc.eventsSection = len(p.doc.Sections)
	}

	p.doc.Sections = append(p.doc.Sections, Section{Name: name, Header: header})
	p.current = len(p.doc.Sections) - 1

	return nil
}

// finishSection moves trailing blank lines of the current section into its
// Trailer so that removing the last event keeps the section separator.
func (p *parser) finishSection() {
	if p.current < 0 {
		return
	}

	sec := &p.doc.Sections[p.current]

	if p.current == p.doc.eventsSection && len(p.doc.Events) > 0 {
		last := &p.doc.Events[len(p.doc.Events)-1]
		last.Trailing, sec.Trailer = splitTrailingBlank(last.Trailing)

		return
	}

	sec.Lines, sec.Trailer = splitTrailingBlank(sec.Lines)
}

func (p *parser) styleLine(trimmed, raw string) error {
	key, value, ok := splitEntry(trimmed)
	if !ok {
		return nil
	}

	switch key {
	case "Format":
		p.styleFormat = parseFormat(value)
		if !contains(p.styleFormat, "Name") {
			return fmt.Errorf("style format has no Name column")
		}
	case "Style":
		format := p.styleFormat
		if format == nil {
			format = defaultStyleFormat
		}

		fields, err := splitFields(value, format)
		if err != nil {
			return fmt.Errorf("style: %w", err)
		}

		p.doc.Styles = append(p.doc.Styles, Style{
			Name:   fields["Name"],
			Fields: fields,
			Raw:    raw,
		})
	}

	return nil
}

func (p *parser) eventLine(sec *Section, trimmed, raw string) error {
	key, value, ok := splitEntry(trimmed)

	if ok && eventKinds[key] {
		format := p.eventFormat
		if format == nil {
			format = defaultEventFormat
		}

		fields, err := splitFields(value, format)
		if err != nil {
			return fmt.Errorf("%s: %w", strings.ToLower(key), err)
		}

		layer, err := parseLayer(fields["Layer"])
		if err != nil {
			return fmt.Errorf("%s: %w", strings.ToLower(key), err)
		}

		p.doc.Events = append(p.doc.Events, Event{
			Kind:   key,
			Layer:  layer,
			Style:  fields["Style"],
			Fields: fields,
			Raw:    raw,
		})

		return nil
	}

	if ok && key == "Format" {
		if len(p.doc.Events) > 0 {
			return fmt.Errorf("format line after the first event")
		}

		p.eventFormat = parseFormat(value)
	}

	if len(p.doc.Events) == 0 {
		sec.Lines = append(sec.Lines, raw)
		return nil
	}

	last := &p.doc.Events[len(p.doc.Events)-1]
	last.Trailing = append(last.Trailing, raw)

	return nil
}

func splitTrailingBlank(lines []string) (body, blank []string) {
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}

	if end == len(lines) {
		return lines, nil
	}

	return lines[:end], append([]string(nil), lines[end:]...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}

	return false
}
