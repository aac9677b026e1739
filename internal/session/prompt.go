package session

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
)

// Prompter reads one answer per question.  Implementations return io.EOF
// once the user closes the input.
type Prompter interface {
	Ask(label string) (string, error)
	Secret(label string) (string, error)
}

// LinePrompter prints the label and reads a line.  It is used for piped
// input and in tests.
type LinePrompter struct {
	sc  *bufio.Scanner
	out io.Writer
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{sc: bufio.NewScanner(in), out: out}
}

func (p *LinePrompter) Ask(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if !p.sc.Scan() {
		if err := p.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.sc.Text()), nil
}

// Secret is Ask; a line reader cannot hide input.
func (p *LinePrompter) Secret(label string) (string, error) { return p.Ask(label) }

// PromptUI asks through promptui with masked passwords.
type PromptUI struct {
	Stdin  io.ReadCloser
	Stdout io.WriteCloser
}

func (p PromptUI) Ask(label string) (string, error) {
	return p.run(promptui.Prompt{Label: promptLabel(label)})
}

func (p PromptUI) Secret(label string) (string, error) {
	return p.run(promptui.Prompt{Label: promptLabel(label), Mask: '*'})
}

func (p PromptUI) run(pr promptui.Prompt) (string, error) {
	pr.Stdin, pr.Stdout = p.Stdin, p.Stdout
	s, err := pr.Run()
	if errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrInterrupt) {
		return "", io.EOF
	}
	return strings.TrimSpace(s), err
}

// promptui appends its own colon.
func promptLabel(label string) string {
	return strings.TrimSuffix(strings.TrimSpace(label), ":")
}
