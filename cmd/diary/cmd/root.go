// Package cmd implements the diary command-line client.
package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mydiary/mydiary/internal/config"
	"github.com/mydiary/mydiary/internal/di"
	"github.com/mydiary/mydiary/internal/service"
)

// App carries what every command needs: the lazily built container and
// the terminal streams.
type App struct {
	injector *do.RootScope
	stdin    io.Reader
	in       *bufio.Reader
	out      io.Writer
	errOut   io.Writer
	json     bool
}

// Run executes the client with args (without the program name) and releases
// the store afterwards, whether or not the command failed.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	a := &App{
		stdin:  stdin,
		in:     bufio.NewReader(stdin),
		out:    stdout,
		errOut: stderr,
	}
	defer a.close()

	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func (a *App) rootCommand() *cobra.Command {
	var (
		flags  config.ClientFlags
		strict bool
	)

	root := &cobra.Command{
		Use:   "diary",
		Short: "A private diary with moods, streaks and optional cloud storage",
		Long: `diary keeps dated entries with a mood and tags, on this device or in
your hosted account. Local diaries are protected by a lock password; cloud
diaries by your account.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("strict") {
				flags.SetStrict(strict)
			}
			notices := a.out
			if a.json {
				notices = a.errOut
			}
			a.injector = di.NewClientContainer(flags, newColorNotifier(notices))
			_, err := do.Invoke[*config.ClientConfig](a.injector)
			return err
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.EnvFile, "env-file", "", "path to .env file (default: .env)")
	pf.StringVar(&flags.DataDir, "data-dir", "", "directory for on-device data (default: ~/.mydiary)")
	pf.StringVar(&flags.BackupDir, "backup-dir", "", "directory for exports (default: <data-dir>/backups)")
	pf.StringVar(&flags.BackendURL, "backend", "", "hosted backend URL; empty runs offline")
	pf.StringVar(&flags.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.BoolVar(&strict, "strict", false, "fail cloud reads without a session instead of showing nothing")
	pf.BoolVar(&a.json, "json", false, "print JSON instead of text")

	root.AddCommand(
		a.modeCommand(),
		a.statusCommand(),
		a.lockCommand(),
		a.signUpCommand(),
		a.signInCommand(),
		a.signOutCommand(),
		a.resetPasswordCommand(),
		a.newCommand(),
		a.editCommand(),
		a.deleteCommand(),
		a.listCommand(),
		a.showCommand(),
		a.calendarCommand(),
		a.searchCommand(),
		a.achievementsCommand(),
		a.streakCommand(),
		a.migrateCommand(),
		a.exportCommand(),
		a.importCommand(),
		a.backupsCommand(),
		a.prefsCommand(),
		a.quoteCommand(),
	)

	return root
}

func (a *App) close() {
	if a.injector == nil {
		return
	}
	if err := a.injector.Shutdown(); err != nil {
		fmt.Fprintf(a.errOut, "shutdown: %v\n", err)
	}
	a.injector = nil
}

// invoke resolves a service from the container.
func invoke[T any](a *App) (T, error) {
	return do.Invoke[T](a.injector)
}

// requireOpen passes the session and lock gate, prompting for the lock
// password when the local diary is locked.
func (a *App) requireOpen(ctx context.Context) error {
	gate, err := invoke[*service.LockGate](a)
	if err != nil {
		return err
	}

	state, err := gate.State(ctx)
	if err != nil {
		return err
	}

	switch state {
	case service.StateModeUnchosen:
		return errors.New("no storage mode chosen yet: run `diary mode local` or `diary mode cloud`")
	case service.StateLockNotSet:
		return errors.New("set a lock password first: run `diary lock set`")
	case service.StateUnauthenticated:
		return errors.New("not signed in: run `diary signin` or `diary signup`")
	case service.StateLocked:
		password, err := a.readSecret("Lock password: ")
		if err != nil {
			return err
		}
		return gate.Unlock(ctx, password)
	default:
		return nil
	}
}

// readSecret prompts on stderr and reads without echo from a terminal, or a
// plain line otherwise.
func (a *App) readSecret(prompt string) (string, error) {
	fmt.Fprint(a.errOut, prompt)
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.errOut)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	return a.readLine()
}

// readNewSecret asks twice and insists both answers match.
func (a *App) readNewSecret(prompt string) (string, error) {
	first, err := a.readSecret(prompt)
	if err != nil {
		return "", err
	}
	second, err := a.readSecret("Repeat to confirm: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("passwords do not match")
	}
	return first, nil
}

func (a *App) prompt(label string) (string, error) {
	fmt.Fprint(a.errOut, label)
	line, err := a.readLine()
	return strings.TrimSpace(line), err
}

func (a *App) readLine() (string, error) {
	line, err := a.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		if errors.Is(err, io.EOF) {
			return "", errors.New("unexpected end of input")
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// printJSON writes v as indented JSON.
func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
