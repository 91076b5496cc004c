package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lankahomes/storefront/internal/app"
	"github.com/lankahomes/storefront/internal/core/domain"
	"github.com/lankahomes/storefront/internal/core/ports"
	"github.com/lankahomes/storefront/internal/pkg/config"
)

// cliSession is the single process-wide session the CLI commands share.
type cliSession struct {
	stack *app.Stack
	nav   *terminalNavigator
	close func(context.Context) error
}

func openSession(ctx context.Context, cfg *config.Config, log zerolog.Logger, out io.Writer) (*cliSession, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		fmt.Fprintln(out, "warning: TOKEN_STORAGE=memory does not persist between runs")
	}
	storage, closeFn, err := app.OpenStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	nav := &terminalNavigator{out: out, current: "/cli"}
	stack := app.NewStack(storage, app.StackConfig{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		KeyPrefix: cfg.Storage.KeyPrefix + ":cli",
		TokenTTL:  cfg.Session.TokenTTL,
		LoginPath: cfg.Session.LoginPath,
		Navigator: nav,
	}, log)

	return &cliSession{stack: stack, nav: nav, close: closeFn}, nil
}

// terminalNavigator reports navigations instead of performing them.
type terminalNavigator struct {
	mu      sync.Mutex
	out     io.Writer
	current string
}

func (n *terminalNavigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = path
	fmt.Fprintf(n.out, "session expired, run `storefront login` (%s)\n", path)
}

func (n *terminalNavigator) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

var _ ports.Navigator = (*terminalNavigator)(nil)

type sessionRunner func(ctx context.Context, s *cliSession, out io.Writer) error

// withSession opens the CLI session, bootstraps it and runs fn. Logs go to
// stderr so stdout carries only command output.
func withSession(fn sessionRunner) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(os.Stderr)
		if err != nil {
			return err
		}
		ctx, stop := signalContext()
		defer stop()

		s, err := openSession(ctx, cfg, log, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer func() { _ = s.close(context.Background()) }()

		bctx, cancel := context.WithTimeout(ctx, cfg.API.Timeout)
		s.stack.Session.Bootstrap(bctx)
		cancel()

		return fn(ctx, s, cmd.OutOrStdout())
	}
}

func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and persist the credential",
		Example: `  storefront login --email admin@lankahomes.lk
  storefront login --email buyer@example.com --password secret`,
		RunE: withSession(func(ctx context.Context, s *cliSession, out io.Writer) error {
			if email == "" {
				var err error
				if email, err = GetSimpleText(bufio.NewReader(os.Stdin), "Email", out); err != nil {
					return err
				}
			}
			if password == "" {
				pw, err := GetPassword(out)
				if err != nil {
					return err
				}
				password = string(pw)
			}

			res := s.stack.Session.Login(ctx, ports.LoginRequest{Email: email, Password: password})
			if !res.Success {
				return errors.New(res.Message)
			}
			fmt.Fprintln(out, res.Message)
			printSession(out, s.stack.Session.State())
			return nil
		}),
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when empty)")
	return cmd
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Restore the persisted session and print it",
		RunE: withSession(func(_ context.Context, s *cliSession, out io.Writer) error {
			printSession(out, s.stack.Session.State())
			return nil
		}),
	}
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the persisted credential",
		RunE: withSession(func(ctx context.Context, s *cliSession, out io.Writer) error {
			s.stack.Session.Logout(ctx)
			fmt.Fprintln(out, "Logged out")
			return nil
		}),
	}
}

func printSession(w io.Writer, st domain.Session) {
	if !st.IsAuthenticated || st.User == nil {
		fmt.Fprintln(w, "not signed in")
		return
	}
	fmt.Fprintf(w, "%s <%s>\n", st.User.DisplayName(), st.User.Email)
	if st.User.Role != "" {
		fmt.Fprintf(w, "role: %s\n", st.User.Role)
	}
}
