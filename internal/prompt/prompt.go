// Package prompt reads the page count and URLs from a line-oriented terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lukaszraczylo/hosts-page-blocker/internal/hostname"
)

// ErrInvalidInput marks a line that cannot be used. LinePrompter recovers
// from it by asking again.
var ErrInvalidInput = errors.New("invalid input")

// Source supplies the values the interactive mode needs.
type Source interface {
	// ReadHostCount returns how many URLs will follow.
	ReadHostCount() (int, error)
	// ReadURL returns one URL reduced to its hostname.
	ReadURL() (string, error)
}

// LinePrompter implements Source on plain reader/writer pairs.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter creates a prompter reading from in and prompting on out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// ReadHostCount asks for the number of pages until it gets a non-negative
// integer. Only EOF and read failures are returned.
func (p *LinePrompter) ReadHostCount() (int, error) {
	for {
		line, err := p.ask("Number of pages: ")
		if err != nil {
			return 0, err
		}

		n, err := ParseCount(line)
		if err != nil {
			fmt.Fprintln(p.out, "Incorrect input. Enter an integer!")
			continue
		}
		return n, nil
	}
}

// ReadURL asks for a URL until it normalizes to a blockable hostname.
func (p *LinePrompter) ReadURL() (string, error) {
	for {
		line, err := p.ask("Enter URL: ")
		if err != nil {
			return "", err
		}

		host, err := hostname.Parse(line)
		if err != nil {
			fmt.Fprintf(p.out, "Incorrect input: %v\n", err)
			continue
		}
		return host, nil
	}
}

// ask prints label and returns the next line without its terminator. A final
// line without a newline is returned before EOF.
func (p *LinePrompter) ask(label string) (string, error) {
	fmt.Fprint(p.out, label)

	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.out)
			return "", io.EOF
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ParseCount parses a page count.
func ParseCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q is not a non-negative integer", ErrInvalidInput, s)
	}
	return n, nil
}

// maxPrealloc bounds the slice capacity reserved from a typed count.
const maxPrealloc = 64

// Collect reads a count from src followed by that many URLs.
func Collect(src Source) ([]string, error) {
	n, err := src.ReadHostCount()
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, min(n, maxPrealloc))
	for i := 0; i < n; i++ {
		url, err := src.ReadURL()
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}
