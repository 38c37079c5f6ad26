package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/renthub/renthub-go/internal/router"
)

func shortlistCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shortlist",
		Short: "Your saved properties (tenant)",
	}
	cmd.AddCommand(
		shortlistAddCmd(a),
		shortlistRemoveCmd(a),
		shortlistListCmd(a),
		shortlistCheckCmd(a),
	)
	return cmd
}

func shortlistAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <property-id>",
		Short: "Save a property (idempotent)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireRole(cmd.Context(), router.StateTenant); err != nil {
				return err
			}
			if err := a.shortlist.Add(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Saved")
			return nil
		},
	}
}

func shortlistRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <property-id>",
		Short: "Remove a saved property (idempotent)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireRole(cmd.Context(), router.StateTenant); err != nil {
				return err
			}
			if err := a.shortlist.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Removed")
			return nil
		},
	}
}

func shortlistListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show your saved properties",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireRole(cmd.Context(), router.StateTenant); err != nil {
				return err
			}
			props, err := a.shortlist.List(cmd.Context())
			if err != nil {
				return err
			}
			printProperties(props)
			return nil
		},
	}
}

func shortlistCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <property-id>",
		Short: "Check whether a property is saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireRole(cmd.Context(), router.StateTenant); err != nil {
				return err
			}
			saved, err := a.shortlist.IsShortlisted(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if saved {
				fmt.Println("Saved")
			} else {
				fmt.Println("Not saved")
			}
			return nil
		},
	}
}
