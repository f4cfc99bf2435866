package cmd

import (
	"context"
	"io"

	"github.com/fatih/color"

	"github.com/mydiary/mydiary/internal/domain"
)

var (
	titleColor   = color.New(color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	mutedColor   = color.New(color.Faint)
	unlockColor  = color.New(color.FgMagenta, color.Bold)
)

// colorNotifier announces achievement unlocks on the terminal.
type colorNotifier struct {
	out io.Writer
}

func newColorNotifier(out io.Writer) *colorNotifier {
	return &colorNotifier{out: out}
}

// AchievementUnlocked implements service.Notifier.
func (n *colorNotifier) AchievementUnlocked(_ context.Context, a domain.Achievement) {
	unlockColor.Fprintf(n.out, "%s Achievement unlocked: %s\n", a.Icon, a.Title)
	mutedColor.Fprintf(n.out, "   %s\n", a.Description)
}
