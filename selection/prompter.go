package selection

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/poiesic/lomatch/core"
)

// Prompter is the human side of interactive selection.
type Prompter interface {
	// Show presents the ranked shortlist for query.
	Show(query string, shortlist []core.ScoredCandidate, multi bool) error

	// ReadChoice displays prompt and returns one line of input.
	// Returning core.ErrTerminationRequested ends the run cleanly.
	ReadChoice(ctx context.Context, prompt string) (string, error)

	// Notify tells the user something, such as why input was rejected.
	Notify(message string)
}

// DefaultPreviewLength is how many characters of a card are shown.
const DefaultPreviewLength = 120

const rule = "============================================================"

// TerminalPrompter reads choices line by line from a reader and writes the
// shortlist to a writer.
type TerminalPrompter struct {
	in         *bufio.Reader
	out        io.Writer
	previewLen int
}

// NewTerminalPrompter creates a prompter over in and out, typically stdin
// and stdout.
func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{
		in:         bufio.NewReader(in),
		out:        out,
		previewLen: DefaultPreviewLength,
	}
}

// Show prints each candidate with its scores and a preview snippet.
func (p *TerminalPrompter) Show(query string, shortlist []core.ScoredCandidate, multi bool) error {
	if _, err := fmt.Fprintf(p.out, "\nLO: %s\n", query); err != nil {
		return err
	}
	for i, sc := range shortlist {
		fmt.Fprintln(p.out, rule)
		fmt.Fprintf(p.out, "[%d] noteId=%d | combined=%.3f | fuzzy=%.3f | emb=%.3f\n",
			i+1, sc.Candidate.ID, sc.Combined, sc.Lexical, sc.Semantic)
		if snippet := sc.Candidate.Preview(p.previewLen); snippet != "" {
			fmt.Fprintln(p.out, snippet)
		}
		fmt.Fprintln(p.out, rule)
	}
	return nil
}

// ReadChoice prints prompt and reads a line. End of input is treated as a
// quit.
func (p *TerminalPrompter) ReadChoice(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if strings.TrimSpace(line) != "" {
				return line, nil
			}
			return "", core.ErrTerminationRequested
		}
		return "", err
	}
	return line, nil
}

// Notify prints message on its own line.
func (p *TerminalPrompter) Notify(message string) {
	fmt.Fprintln(p.out, message)
}
