package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrInputCancelled is returned when a prompt is abandoned by context.
var ErrInputCancelled = errors.New("input canceled")

// Prompter asks questions on a terminal. Reads respect context
// cancellation so an interrupt never leaves a command stuck on stdin.
type Prompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewPrompter creates a Prompter; nil arguments default to stdin and stdout.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &Prompter{reader: bufio.NewReader(reader), writer: writer}
}

func (p *Prompter) readLine(ctx context.Context) (string, error) {
	type result struct {
		err   error
		value string
	}
	ch := make(chan result, 1)
	go func() {
		value, err := p.reader.ReadString('\n')
		ch <- result{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case res := <-ch:
		// A final line without a newline still counts.
		if errors.Is(res.err, io.EOF) && res.value != "" {
			res.err = nil
		}
		return strings.TrimSpace(res.value), res.err
	}
}

// Ask prints question and returns the answer, or def when the answer is
// empty.
func (p *Prompter) Ask(ctx context.Context, question, def string) (string, error) {
	prompt := question
	if def != "" {
		prompt += " " + SubtleStyle.Render("["+def+"]")
	}
	if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	answer, err := p.readLine(ctx)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Confirm asks a yes/no question. An empty answer returns def.
func (p *Prompter) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		answer, err := p.Ask(ctx, question+" ("+hint+")", "")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes", "ya":
			return true, nil
		case "n", "no", "tidak":
			return false, nil
		}
		if _, err := fmt.Fprintln(p.writer, FormatWarning("Please answer y or n")); err != nil {
			return false, err
		}
	}
}

// Choose lists options and returns the one picked by number or by name. An
// empty answer picks options[def]; def < 0 means there is no default.
func (p *Prompter) Choose(ctx context.Context, question string, options []string, def int) (string, error) {
	if len(options) == 0 {
		return "", errors.New("no options to choose from")
	}
	for i, opt := range options {
		if _, err := fmt.Fprintf(p.writer, "  [%d] %s\n", i+1, opt); err != nil {
			return "", err
		}
	}

	defText := ""
	if def >= 0 && def < len(options) {
		defText = strconv.Itoa(def + 1)
	}
	for {
		answer, err := p.Ask(ctx, question, defText)
		if err != nil {
			return "", err
		}
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
			return options[n-1], nil
		}
		for _, opt := range options {
			if strings.EqualFold(opt, answer) {
				return opt, nil
			}
		}
		if _, err := fmt.Fprintln(p.writer, FormatWarning(fmt.Sprintf("Pick a number between 1 and %d", len(options)))); err != nil {
			return "", err
		}
	}
}
