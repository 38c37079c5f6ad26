package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/renthub/renthub-go/internal/api"
	"github.com/renthub/renthub-go/internal/auth"
	"github.com/renthub/renthub-go/internal/config"
	"github.com/renthub/renthub-go/internal/model"
	"github.com/renthub/renthub-go/internal/property"
	"github.com/renthub/renthub-go/internal/request"
	"github.com/renthub/renthub-go/internal/router"
	"github.com/renthub/renthub-go/internal/session"
	"github.com/renthub/renthub-go/internal/shortlist"
)

// app wires the client stack once per invocation. The CLI plays the role the
// mobile screens do: a pure consumer of the components underneath.
type app struct {
	cfg        config.Config
	sessions   *session.Context
	router     *router.Root
	properties *property.Repository
	requests   *request.Workflow
	shortlist  *shortlist.Sync
}

func newApp() *app {
	cfg := config.Load()
	store := session.NewStore(cfg.DataDir)

	// sessions is assigned just below; the token func runs per request.
	var sessions *session.Context
	client := api.New(cfg.APIBaseURL, func() string {
		if sessions == nil {
			return ""
		}
		return sessions.Token()
	},
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithRateLimit(cfg.RequestsPerSecond, cfg.RequestBurst),
	)
	sessions = session.NewContext(store, auth.New(client))

	cache, err := property.OpenCache(filepath.Join(cfg.DataDir, "cache.db"))
	if err != nil {
		slog.Warn("property cache unavailable, continuing without it", "error", err)
		cache = nil
	}

	return &app{
		cfg:        cfg,
		sessions:   sessions,
		router:     router.New(sessions),
		properties: property.New(client, sessions, cache),
		requests:   request.New(client, sessions),
		shortlist:  shortlist.New(client, sessions),
	}
}

// requireRole resolves the root router and refuses commands that belong to
// the other navigation graph.
func (a *app) requireRole(ctx context.Context, want router.State) error {
	state := a.router.Resolve(ctx)
	switch state {
	case want:
		return nil
	case router.StateUnauthenticated:
		return fmt.Errorf("not signed in — run `renthub login` first")
	default:
		return fmt.Errorf("this command is not available for %s accounts", state)
	}
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := newApp()

	rootCmd := &cobra.Command{
		Use:           "renthub",
		Short:         "RentHub rental marketplace client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		registerCmd(a),
		loginCmd(a),
		logoutCmd(a),
		whoamiCmd(a),
		propertyCmd(a),
		requestCmd(a),
		shortlistCmd(a),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func registerCmd(a *app) *cobra.Command {
	var in model.RegisterInput
	var role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Role = model.Role(role)
			sess, err := a.sessions.SignUp(cmd.Context(), in)
			if err != nil {
				return err
			}
			a.router.Resolve(cmd.Context())
			state := a.router.Apply(&sess)
			fmt.Printf("Welcome, %s %s (%s)\n", sess.User.FirstName, sess.User.LastName, state)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "account password")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&in.PhoneNumber, "phone", "", "phone number")
	cmd.Flags().StringVar(&role, "role", "tenant", "account role: landlord or tenant")
	return cmd
}

func loginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.sessions.SignIn(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			a.router.Resolve(cmd.Context())
			state := a.router.Apply(&sess)
			fmt.Printf("Signed in as %s (%s)\n", sess.User.Email, state)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out (local sign-out always succeeds)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.sessions.SignOut(cmd.Context()); err != nil {
				return err
			}
			a.shortlist.Reset()
			fmt.Println("Signed out")
			return nil
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			state := a.router.Resolve(cmd.Context())
			sess := a.sessions.Current()
			if sess == nil {
				fmt.Println("Not signed in")
				return nil
			}
			fmt.Printf("%s %s <%s> — %s\n", sess.User.FirstName, sess.User.LastName, sess.User.Email, state)
			return nil
		},
	}
}
