// Package tui provides the terminal user interface.
package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lukaszraczylo/hosts-page-blocker/internal/hostname"
	"github.com/lukaszraczylo/hosts-page-blocker/internal/prompt"
)

// ErrCancelled is returned when the user leaves the prompt before finishing.
var ErrCancelled = errors.New("input cancelled")

type step int

// maxPrealloc bounds the slice capacity reserved from a typed count.
const maxPrealloc = 64

const (
	stepCount step = iota
	stepURL
	stepDone
)

// Collector asks for the number of pages and then for each URL.
type Collector struct {
	input     textinput.Model
	step      step
	total     int
	urls      []string
	errMsg    string
	cancelled bool
	width     int
}

// NewCollector creates a collector focused on the page count.
func NewCollector() *Collector {
	input := textinput.New()
	input.Placeholder = "3"
	input.CharLimit = 6
	input.Width = 20
	input.Focus()

	return &Collector{input: input}
}

// Init implements tea.Model.
func (c *Collector) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (c *Collector) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.input.Width = min(60, max(20, msg.Width-10))
		return c, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			c.cancelled = true
			return c, tea.Quit
		case tea.KeyEnter:
			return c, c.submit()
		}
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

// submit validates the current value and advances to the next step.
func (c *Collector) submit() tea.Cmd {
	value := c.input.Value()
	c.input.Reset()

	switch c.step {
	case stepCount:
		n, err := prompt.ParseCount(value)
		if err != nil {
			c.errMsg = "Incorrect input. Enter an integer!"
			return nil
		}
		c.total = n
		c.urls = make([]string, 0, min(n, maxPrealloc))
		if n == 0 {
			c.step = stepDone
			return tea.Quit
		}
		c.step = stepURL
		c.input.Placeholder = "https://example.com"
		c.input.CharLimit = 2048

	case stepURL:
		host, err := hostname.Parse(value)
		if err != nil {
			c.errMsg = fmt.Sprintf("Incorrect input: %v", err)
			return nil
		}
		c.urls = append(c.urls, host)
		if len(c.urls) == c.total {
			c.step = stepDone
			return tea.Quit
		}
	}

	c.errMsg = ""
	return nil
}

// View implements tea.Model.
func (c *Collector) View() string {
	if c.step == stepDone || c.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("hosts-page-blocker"))
	b.WriteString("\n\n")

	for _, url := range c.urls {
		b.WriteString(fmt.Sprintf("  %s %s\n", Indicator(), url))
	}
	if len(c.urls) > 0 {
		b.WriteString("\n")
	}

	switch c.step {
	case stepCount:
		b.WriteString(inputLabelStyle.Render("Number of pages"))
	case stepURL:
		b.WriteString(inputLabelStyle.Render("Enter URL"))
		b.WriteString(" ")
		b.WriteString(progressStyle.Render(fmt.Sprintf("(%d of %d)", len(c.urls)+1, c.total)))
	}
	b.WriteString("\n")
	b.WriteString(inputFocusStyle.Render(c.input.View()))
	b.WriteString("\n")

	if c.errMsg != "" {
		b.WriteString(errorMsgStyle.Render(c.errMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(WrapHelpText("enter: confirm • esc: cancel", c.width))
	b.WriteString("\n")

	return b.String()
}

// URLs returns the hostnames collected so far.
func (c *Collector) URLs() []string {
	return c.urls
}

// Cancelled reports whether the user quit before finishing.
func (c *Collector) Cancelled() bool {
	return c.cancelled
}

// Collect runs the collector on in and out and returns the hostnames entered.
func Collect(in io.Reader, out io.Writer) ([]string, error) {
	p := tea.NewProgram(NewCollector(), tea.WithInput(in), tea.WithOutput(out))

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run interactive prompt: %w", err)
	}

	c, ok := final.(*Collector)
	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", final)
	}
	if c.Cancelled() {
		return nil, ErrCancelled
	}
	return c.URLs(), nil
}
