package tui

import (
	"context"
	"errors"
	"io"
	"math/rand"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/signature-rain/internal/config"
	"github.com/ensigniasec/signature-rain/internal/rain"
	"github.com/ensigniasec/signature-rain/internal/theme"
)

// Options configures a TUI run.
type Options struct {
	Config config.Config
	Theme  theme.Theme
	// Seed makes the rain reproducible when non-zero.
	Seed int64
	// LogOutput receives logs while the TUI owns the terminal; nil discards them.
	LogOutput io.Writer
}

// Run starts the Bubble Tea TUI program and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	cv := newCanvas()
	mgr, err := rain.New(opts.Config, cv, managerOptions(opts)...)
	if err != nil {
		return err
	}

	model := NewModel(mgr, cv, opts.Config, opts.Theme)
	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)

	// Logs written to the terminal would corrupt the view.
	prevOut := logrus.StandardLogger().Out
	if opts.LogOutput != nil {
		logrus.SetOutput(opts.LogOutput)
	} else {
		logrus.SetOutput(io.Discard)
	}
	defer logrus.SetOutput(prevOut)

	logrus.Info("Mario Digital Signature initialized successfully")
	_, err = p.Run()
	// Page unload: clear whatever is still live, whichever way the program ended.
	mgr.Stop()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func managerOptions(opts Options) []rain.Option {
	charset := opts.Config.Charset
	if charset == "" {
		charset = opts.Theme.Charset
	}
	out := []rain.Option{rain.WithCharset(charset)}
	if opts.Seed != 0 {
		out = append(out, rain.WithRand(rand.New(rand.NewSource(opts.Seed)))) //nolint:gosec // decorative randomness
	}
	return out
}
