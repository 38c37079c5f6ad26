package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/renthub/renthub-go/internal/model"
	"github.com/renthub/renthub-go/internal/router"
)

func requestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Rental requests",
	}
	cmd.AddCommand(
		requestSubmitCmd(a),
		requestListCmd(a),
		requestGetCmd(a),
		requestStatusCmd(a, "approve", model.StatusApproved),
		requestStatusCmd(a, "reject", model.StatusRejected),
	)
	return cmd
}

func requestSubmitCmd(a *app) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "submit <property-id>",
		Short: "Request to rent a property (tenant)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireRole(cmd.Context(), router.StateTenant); err != nil {
				return err
			}
			req, err := a.requests.Submit(cmd.Context(), args[0], message)
			if err != nil {
				return err
			}
			fmt.Printf("Request %s submitted (%s)\n", req.ID, req.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&message, "message", "", "message to the landlord")
	return cmd
}

func requestListCmd(a *app) *cobra.Command {
	var watch bool
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rental requests visible to your role",
		RunE: func(cmd *cobra.Command, args []string) error {
			render := func(ctx context.Context) (string, error) {
				var reqs []model.RentalRequest
				var err error
				switch a.router.Resolve(ctx) {
				case router.StateTenant:
					reqs, err = a.requests.ListForTenant(ctx)
				case router.StateLandlord:
					reqs, err = a.requests.ListForLandlord(ctx)
				default:
					return "", fmt.Errorf("not signed in — run `renthub login` first")
				}
				if err != nil {
					return "", err
				}
				return formatRequests(reqs), nil
			}

			if watch {
				return runWatch(cmd.Context(), os.Stdout, interval, render)
			}
			out, err := render(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "keep refreshing until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "refresh interval for --watch")
	return cmd
}

func formatRequests(reqs []model.RentalRequest) string {
	if len(reqs) == 0 {
		return "No requests\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-38s  %-38s  %-9s  %s\n", "ID", "Property", "Status", "Created")
	for _, r := range reqs {
		fmt.Fprintf(&b, "%-38s  %-38s  %-9s  %s\n", r.ID, r.PropertyID, r.Status, r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return b.String()
}

func requestGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <request-id>",
		Short: "Show a rental request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := a.requests.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Request %s\n  property: %s\n  status:   %s\n  message:  %s\n", req.ID, req.PropertyID, req.Status, req.Message)
			return nil
		},
	}
}

func requestStatusCmd(a *app, verb string, status model.RequestStatus) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <request-id>",
		Short: fmt.Sprintf("%s a pending request (landlord)", verb),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireRole(cmd.Context(), router.StateLandlord); err != nil {
				return err
			}
			req, err := a.requests.UpdateStatus(cmd.Context(), args[0], status)
			if err != nil {
				return err
			}
			fmt.Printf("Request %s is now %s\n", req.ID, req.Status)
			return nil
		},
	}
}
