package ass

import (
	"bytes"
	"io"
)

// Encode serializes d back to text using the document's line ending.
// The result carries no byte-order mark; output writers add one.
func Encode(d *Document) []byte {
	var buf bytes.Buffer

	_, _ = d.WriteTo(&buf)

	return buf.Bytes()
}

// WriteTo writes the script to w. Sections are written in their original
// order with their body lines verbatim; the events section is rebuilt from
// d.Events.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	lw := &lineWriter{w: w, newline: d.Newline}
	if lw.newline == "" {
		lw.newline = "\n"
	}

	lw.lines(d.Preamble)

	for i, sec := range d.Sections {
		lw.line(sec.header())
		lw.lines(sec.Lines)

		if i == d.eventsSection {
			for _, ev := range d.Events {
				lw.line(ev.Raw)
				lw.lines(ev.Trailing)
			}
		}

		lw.lines(sec.Trailer)
	}

	return lw.n, lw.err
}

func (s Section) header() string {
	if s.Header != "" {
		return s.Header
	}

	return "[" + s.Name + "]"
}

type lineWriter struct {
	w       io.Writer
	newline string
	n       int64
	err     error
}

func (lw *lineWriter) line(s string) {
	if lw.err != nil {
		return
	}

	n, err := io.WriteString(lw.w, s+lw.newline)
	lw.n += int64(n)
	lw.err = err
}

func (lw *lineWriter) lines(ss []string) {
	for _, s := range ss {
		lw.line(s)
	}
}
