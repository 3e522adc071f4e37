package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	rerrors "github.com/mrz1836/ratchet/internal/errors"
	"github.com/mrz1836/ratchet/internal/planner"
)

// PromptFunc runs a confirm prompt with the given title and reports the answer.
type PromptFunc func(ctx context.Context, title string) (bool, error)

// Confirmer asks the operator to approve a release plan.
// It satisfies release.Confirmer.
type Confirmer struct {
	prompt PromptFunc
	isTTY  func() bool

	// in and out serve the line prompt used when stdin is not a terminal.
	in  io.Reader
	out io.Writer
}

// NewConfirmer creates a Confirmer backed by a huh confirm prompt on stdin.
// When stdin is piped it reads a y/N answer line instead, writing the
// question to stderr so stdout stays machine readable.
func NewConfirmer() *Confirmer {
	return &Confirmer{
		prompt: huhPrompt,
		isTTY:  func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }, //nolint:gosec // G115: fd fits in int
		in:     os.Stdin,
		out:    os.Stderr,
	}
}

// NewConfirmerWithPrompt creates a Confirmer with a custom prompt, treating
// the input as interactive.
func NewConfirmerWithPrompt(prompt PromptFunc) *Confirmer {
	return &Confirmer{prompt: prompt, isTTY: func() bool { return true }}
}

// NewLineConfirmer creates a Confirmer that always reads a y/N answer line
// from in and writes the question to out.
func NewLineConfirmer(in io.Reader, out io.Writer) *Confirmer {
	return &Confirmer{isTTY: func() bool { return false }, in: in, out: out}
}

// Confirm implements release.Confirmer. Aborting the prompt counts as a
// decline. Without a terminal it reads one answer line; only "y" or "yes"
// approves. Input that ends before any answer fails with
// ErrInteractiveRequired.
func (c *Confirmer) Confirm(ctx context.Context, plan *planner.Plan) (bool, error) {
	if !c.isTTY() {
		return c.confirmLine(ctx, ConfirmTitle(plan))
	}
	ok, err := c.prompt(ctx, ConfirmTitle(plan))
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, rerrors.ErrOperationCanceled) {
			return false, nil
		}
		return false, fmt.Errorf("confirmation prompt: %w", err)
	}
	return ok, nil
}

type lineAnswer struct {
	line string
	err  error
}

// confirmLine asks title on out and reads the answer from in. The read
// cannot be interrupted, so a canceled ctx abandons it.
func (c *Confirmer) confirmLine(ctx context.Context, title string) (bool, error) {
	if c.in == nil {
		return false, rerrors.ErrInteractiveRequired
	}
	if c.out != nil {
		_, _ = fmt.Fprintf(c.out, "%s [y/N] ", title)
	}

	answers := make(chan lineAnswer, 1)
	go func() {
		line, err := bufio.NewReader(c.in).ReadString('\n')
		answers <- lineAnswer{line: line, err: err}
	}()

	var a lineAnswer
	select {
	case <-ctx.Done():
		return false, nil
	case a = <-answers:
	}

	if a.err != nil && !errors.Is(a.err, io.EOF) {
		return false, fmt.Errorf("confirmation prompt: %w", a.err)
	}
	answer := strings.ToLower(strings.TrimSpace(a.line))
	if answer == "" && a.err != nil {
		return false, rerrors.ErrInteractiveRequired
	}
	return answer == "y" || answer == "yes", nil
}

// ConfirmTitle is the prompt question for a plan.
func ConfirmTitle(plan *planner.Plan) string {
	n := 0
	if plan != nil {
		n = len(plan.Items)
	}
	if n == 1 {
		return fmt.Sprintf("Release %s %s?", plan.Items[0].Component.Name, plan.Items[0].Target)
	}
	return fmt.Sprintf("Release %d components?", n)
}

// huhPrompt shows a yes/no prompt defaulting to no.
func huhPrompt(ctx context.Context, title string) (bool, error) {
	CheckNoColor()

	var confirmed bool
	field := huh.NewConfirm().
		Title(title).
		Affirmative("Yes, release").
		Negative("No").
		Value(&confirmed)

	form := huh.NewForm(huh.NewGroup(field)).WithTheme(RatchetTheme())
	if err := form.RunWithContext(ctx); err != nil {
		return false, err
	}
	return confirmed, nil
}

// RatchetTheme returns a huh theme using the semantic colors.
func RatchetTheme() *huh.Theme {
	CheckNoColor()

	t := huh.ThemeBase()
	t.Focused.Base = t.Focused.Base.BorderForeground(ColorPrimary)
	t.Focused.Title = t.Focused.Title.Foreground(ColorPrimary)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(ColorPrimary)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(ColorError)
	t.Focused.Description = t.Focused.Description.Foreground(ColorMuted)
	t.Blurred.Base = t.Blurred.Base.BorderForeground(ColorMuted)
	t.Blurred.Title = t.Blurred.Title.Foreground(ColorMuted)
	return t
}
