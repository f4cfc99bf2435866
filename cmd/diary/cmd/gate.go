package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mydiary/mydiary/internal/di/providers"
	"github.com/mydiary/mydiary/internal/domain"
	"github.com/mydiary/mydiary/internal/remote"
	"github.com/mydiary/mydiary/internal/service"
	"github.com/mydiary/mydiary/internal/storage"
)

func (a *App) modeCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "mode [local|cloud]",
		Short:     "Show or choose where entries are stored",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(domain.StorageLocal), string(domain.StorageCloud)},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			router, err := invoke[*storage.Router](a)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				gate, err := invoke[*service.LockGate](a)
				if err != nil {
					return err
				}
				if err := gate.ChooseMode(ctx, domain.StorageMode(args[0])); err != nil {
					return err
				}
				successColor.Fprintf(a.out, "Storage mode set to %s\n", args[0])
				return nil
			}

			mode, err := router.Mode(ctx)
			if err != nil {
				return err
			}
			chosen, err := router.IsModeChosen(ctx)
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(map[string]any{"mode": mode, "chosen": chosen})
			}
			fmt.Fprintln(a.out, mode)
			if !chosen {
				mutedColor.Fprintln(a.out, "(default; not chosen yet)")
			}
			return nil
		},
	}
}

func (a *App) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the storage mode, lock and sign-in state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gate, err := invoke[*service.LockGate](a)
			if err != nil {
				return err
			}
			state, err := gate.State(cmd.Context())
			if err != nil {
				return err
			}
			handle, err := invoke[*providers.RemoteHandle](a)
			if err != nil {
				return err
			}
			backend, healthErr := checkBackend(cmd.Context(), handle.Client)
			if a.json {
				return a.printJSON(map[string]any{"state": state, "backend": backend})
			}
			fmt.Fprintln(a.out, describeState(state))
			switch backend {
			case backendReachable:
				mutedColor.Fprintln(a.out, "Hosted backend reachable.")
			case backendUnreachable:
				warnColor.Fprintf(a.out, "Hosted backend unreachable: %v\n", healthErr)
			}
			return nil
		},
	}
}

const (
	backendOffline     = "offline"
	backendReachable   = "reachable"
	backendUnreachable = "unreachable"
)

func checkBackend(ctx context.Context, client *remote.Client) (string, error) {
	if client == nil {
		return backendOffline, nil
	}
	if err := client.Health(ctx); err != nil {
		return backendUnreachable, err
	}
	return backendReachable, nil
}

func describeState(s service.GateState) string {
	switch s {
	case service.StateModeUnchosen:
		return "No storage mode chosen yet."
	case service.StateLockNotSet:
		return "Local diary without a lock password."
	case service.StateLocked:
		return "Local diary, locked."
	case service.StateUnlocked:
		return "Local diary, unlocked."
	case service.StateUnauthenticated:
		return "Cloud diary, signed out."
	case service.StateAuthenticated:
		return "Cloud diary, signed in."
	default:
		return string(s)
	}
}

func (a *App) lockCommand() *cobra.Command {
	lock := &cobra.Command{
		Use:   "lock",
		Short: "Manage the local lock password",
	}

	lock.AddCommand(&cobra.Command{
		Use:   "set",
		Short: "Set the lock password for the local diary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gate, err := invoke[*service.LockGate](a)
			if err != nil {
				return err
			}
			password, err := a.readNewSecret("New lock password: ")
			if err != nil {
				return err
			}
			if err := gate.SetLockPassword(cmd.Context(), password); err != nil {
				return err
			}
			successColor.Fprintln(a.out, "Lock password set.")
			return nil
		},
	})

	lock.AddCommand(&cobra.Command{
		Use:   "change",
		Short: "Change the lock password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gate, err := invoke[*service.LockGate](a)
			if err != nil {
				return err
			}
			current, err := a.readSecret("Current lock password: ")
			if err != nil {
				return err
			}
			next, err := a.readNewSecret("New lock password: ")
			if err != nil {
				return err
			}
			if err := gate.ChangeLockPassword(cmd.Context(), current, next); err != nil {
				return err
			}
			successColor.Fprintln(a.out, "Lock password changed.")
			return nil
		},
	})

	lock.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Check a lock password without unlocking anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gate, err := invoke[*service.LockGate](a)
			if err != nil {
				return err
			}
			password, err := a.readSecret("Lock password: ")
			if err != nil {
				return err
			}
			ok, err := gate.VerifyLockPassword(cmd.Context(), password)
			if err != nil {
				return err
			}
			if !ok {
				return service.ErrWrongPassword
			}
			successColor.Fprintln(a.out, "Password is correct.")
			return nil
		},
	})

	return lock
}

func (a *App) credentials(email string) (string, string, error) {
	var err error
	if email == "" {
		if email, err = a.prompt("Email: "); err != nil {
			return "", "", err
		}
	}
	password, err := a.readSecret("Password: ")
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}

func (a *App) signUpCommand() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a hosted account and switch to cloud storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gate, err := invoke[*service.LockGate](a)
			if err != nil {
				return err
			}
			if email == "" {
				if email, err = a.prompt("Email: "); err != nil {
					return err
				}
			}
			password, err := a.readNewSecret("Password: ")
			if err != nil {
				return err
			}
			sess, err := gate.SignUp(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			successColor.Fprintf(a.out, "Welcome, %s. Your entries now live in the cloud.\n", sess.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func (a *App) signInCommand() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in to your hosted account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gate, err := invoke[*service.LockGate](a)
			if err != nil {
				return err
			}
			email, password, err := a.credentials(email)
			if err != nil {
				return err
			}
			sess, err := gate.SignIn(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			successColor.Fprintf(a.out, "Signed in as %s.\n", sess.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func (a *App) signOutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Sign out of your hosted account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gate, err := invoke[*service.LockGate](a)
			if err != nil {
				return err
			}
			if err := gate.SignOut(cmd.Context()); err != nil {
				return err
			}
			successColor.Fprintln(a.out, "Signed out.")
			return nil
		},
	}
}

func (a *App) resetPasswordCommand() *cobra.Command {
	reset := &cobra.Command{
		Use:   "reset-password",
		Short: "Reset a forgotten account password",
	}

	var email string
	request := &cobra.Command{
		Use:   "request",
		Short: "Ask the backend for a reset token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gate, err := invoke[*service.LockGate](a)
			if err != nil {
				return err
			}
			if email == "" {
				if email, err = a.prompt("Email: "); err != nil {
					return err
				}
			}
			token, err := gate.RequestPasswordReset(cmd.Context(), email)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, "If the account exists, a reset token has been issued.")
			if token != "" {
				warnColor.Fprintf(a.out, "Reset token: %s\n", token)
			}
			return nil
		},
	}
	request.Flags().StringVar(&email, "email", "", "account email")

	var token string
	confirm := &cobra.Command{
		Use:   "confirm",
		Short: "Set a new password with a reset token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gate, err := invoke[*service.LockGate](a)
			if err != nil {
				return err
			}
			if token == "" {
				return errors.New("--token is required")
			}
			password, err := a.readNewSecret("New password: ")
			if err != nil {
				return err
			}
			if err := gate.ResetPassword(cmd.Context(), token, password); err != nil {
				return err
			}
			successColor.Fprintln(a.out, "Password updated. Sign in with the new password.")
			return nil
		},
	}
	confirm.Flags().StringVar(&token, "token", "", "reset token")

	reset.AddCommand(request, confirm)
	return reset
}
