// Package prompt asks the user which styles and layers to exclude.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hupe1980/assfilter/internal/ass"
	"github.com/hupe1980/assfilter/internal/filter"
	"github.com/hupe1980/assfilter/internal/selection"
)

// Questions asked by the prompter, in order.
const (
	StylesQuestion = "styles to filter out (comma-separated list or 'none' to include all)"
	LayersQuestion = "layer to filter out (comma-separated list or 'none' to include all)"
)

// ErrNoAnswer is returned when input ends before a question is answered.
var ErrNoAnswer = errors.New("input ended before an answer was given")

// Prompter reads answers line by line from in and writes questions to out.
// Answers are never re-asked: an invalid answer is returned as an error.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New creates a Prompter.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask writes question followed by a "> " marker and returns the next input
// line without its line terminator. An unterminated last line is accepted;
// end of input before any answer is ErrNoAnswer.
func (p *Prompter) Ask(question string) (string, error) {
	if _, err := fmt.Fprintf(p.out, "%s\n> ", question); err != nil {
		return "", fmt.Errorf("writing prompt: %w", err)
	}

	line, err := p.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading answer: %w", err)
		}

		if line == "" {
			return "", &selection.UsageError{Reason: ErrNoAnswer.Error(), Err: ErrNoAnswer}
		}
	}

	return strings.TrimRight(line, "\r\n"), nil
}

// SelectStyles lists the styles with their indices and resolves the answer
// to a set of style names.
func (p *Prompter) SelectStyles(styles []ass.Style) (filter.StyleSet, error) {
	if _, err := fmt.Fprintln(p.out, "styles:"); err != nil {
		return nil, err
	}

	for i, s := range styles {
		if _, err := fmt.Fprintf(p.out, "#%d - %s\n", i, s.Name); err != nil {
			return nil, err
		}
	}

	answer, err := p.Ask(StylesQuestion)
	if err != nil {
		return nil, err
	}

	return selection.ParseStyleIndices(answer, styles)
}

// SelectLayers lists the distinct layers of events and resolves the answer
// to a set of layer numbers.
func (p *Prompter) SelectLayers(events []ass.Event) (filter.LayerSet, error) {
	layers := selection.CandidateLayers(events)

	parts := make([]string, len(layers))
	for i, l := range layers {
		parts[i] = strconv.Itoa(l)
	}

	if _, err := fmt.Fprintf(p.out, "layers:\n%s\n", strings.Join(parts, ", ")); err != nil {
		return nil, err
	}

	answer, err := p.Ask(LayersQuestion)
	if err != nil {
		return nil, err
	}

	return selection.ParseLayers(answer)
}

// Run asks for styles, then layers, and returns the combined selection.
func (p *Prompter) Run(doc *ass.Document) (filter.Selection, error) {
	styles, err := p.SelectStyles(doc.Styles)
	if err != nil {
		return filter.Selection{}, err
	}

	layers, err := p.SelectLayers(doc.Events)
	if err != nil {
		return filter.Selection{}, err
	}

	return filter.Selection{Styles: styles, Layers: layers}, nil
}
