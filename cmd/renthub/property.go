package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/renthub/renthub-go/internal/model"
	"github.com/renthub/renthub-go/internal/property"
	"github.com/renthub/renthub-go/internal/router"
)

func propertyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "property",
		Short: "Manage and browse property listings",
	}
	cmd.AddCommand(
		propertyCreateCmd(a),
		propertyUpdateCmd(a),
		propertyDeleteCmd(a),
		propertyGetCmd(a),
		propertyMineCmd(a),
		propertySearchCmd(a),
	)
	return cmd
}

func propertyCreateCmd(a *app) *cobra.Command {
	var in model.PropertyInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "List a new property (landlord)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireRole(cmd.Context(), router.StateLandlord); err != nil {
				return err
			}
			p, err := a.properties.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Printf("Listed %q (%s)\n", p.Title, p.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "listing title")
	cmd.Flags().StringVar(&in.Description, "description", "", "listing description")
	cmd.Flags().Float64Var(&in.Price, "price", 0, "monthly price")
	cmd.Flags().StringVar(&in.Address, "address", "", "street address")
	cmd.Flags().IntVar(&in.Bedrooms, "bedrooms", 0, "bedroom count")
	cmd.Flags().IntVar(&in.Bathrooms, "bathrooms", 0, "bathroom count")
	cmd.Flags().StringSliceVar(&in.Images, "image", nil, "image URL (repeatable)")
	return cmd
}

func propertyUpdateCmd(a *app) *cobra.Command {
	var (
		title, description, address string
		price                       float64
		available                   bool
	)

	cmd := &cobra.Command{
		Use:   "update <property-id>",
		Short: "Update a listing (landlord); only changed flags are sent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireRole(cmd.Context(), router.StateLandlord); err != nil {
				return err
			}

			var upd model.PropertyUpdate
			if cmd.Flags().Changed("title") {
				upd.Title = &title
			}
			if cmd.Flags().Changed("description") {
				upd.Description = &description
			}
			if cmd.Flags().Changed("price") {
				upd.Price = &price
			}
			if cmd.Flags().Changed("address") {
				upd.Address = &address
			}
			if cmd.Flags().Changed("available") {
				upd.Available = &available
			}

			p, err := a.properties.Update(cmd.Context(), args[0], upd)
			if err != nil {
				return err
			}
			fmt.Printf("Updated %q\n", p.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "listing title")
	cmd.Flags().StringVar(&description, "description", "", "listing description")
	cmd.Flags().Float64Var(&price, "price", 0, "monthly price")
	cmd.Flags().StringVar(&address, "address", "", "street address")
	cmd.Flags().BoolVar(&available, "available", true, "listing availability")
	return cmd
}

func propertyDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <property-id>",
		Short: "Remove a listing (landlord)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireRole(cmd.Context(), router.StateLandlord); err != nil {
				return err
			}
			if err := a.properties.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Deleted")
			return nil
		},
	}
}

func propertyGetCmd(a *app) *cobra.Command {
	var cached bool

	cmd := &cobra.Command{
		Use:   "get <property-id>",
		Short: "Show a property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cached {
				p, ok, err := a.properties.CachedByID(args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("property %s not in local cache", args[0])
				}
				printProperty(p)
				return nil
			}
			p, err := a.properties.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printProperty(p)
			return nil
		},
	}
	cmd.Flags().BoolVar(&cached, "cached", false, "show the last-known local copy without a network call")
	return cmd
}

func propertyMineCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List your own properties (landlord)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireRole(cmd.Context(), router.StateLandlord); err != nil {
				return err
			}
			props, err := a.properties.GetForOwner(cmd.Context())
			if err != nil {
				return err
			}
			printProperties(props)
			return nil
		},
	}
}

func propertySearchCmd(a *app) *cobra.Command {
	var f property.Filters
	var watch bool
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search available properties",
		RunE: func(cmd *cobra.Command, args []string) error {
			render := func(ctx context.Context) (string, error) {
				if state := a.router.Resolve(ctx); state == router.StateUnauthenticated {
					return "", fmt.Errorf("not signed in — run `renthub login` first")
				}
				props, err := a.properties.Search(ctx, f)
				if err != nil {
					return "", err
				}
				return formatProperties(props), nil
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
	cmd.Flags().Float64Var(&f.MinPrice, "min-price", 0, "minimum monthly price")
	cmd.Flags().Float64Var(&f.MaxPrice, "max-price", 0, "maximum monthly price")
	cmd.Flags().IntVar(&f.Bedrooms, "bedrooms", 0, "bedroom count")
	cmd.Flags().IntVar(&f.Bathrooms, "bathrooms", 0, "bathroom count")
	cmd.Flags().Float64Var(&f.Lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&f.Lng, "lng", 0, "longitude")
	cmd.Flags().Float64Var(&f.Radius, "radius", 0, "search radius in km")
	return cmd
}

func printProperty(p model.Property) {
	fmt.Printf("%s\n  %s\n  $%.2f/month — %d bed, %d bath\n  %s\n", p.Title, p.Address, p.Price, p.Bedrooms, p.Bathrooms, p.ID)
	if p.Description != "" {
		fmt.Printf("  %s\n", p.Description)
	}
}

func printProperties(props []model.Property) {
	fmt.Print(formatProperties(props))
}

func formatProperties(props []model.Property) string {
	if len(props) == 0 {
		return "No properties found\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-38s  %-30s  %10s  %s\n", "ID", "Title", "Price", "Address")
	for _, p := range props {
		fmt.Fprintf(&b, "%-38s  %-30s  %10.2f  %s\n", p.ID, p.Title, p.Price, p.Address)
	}
	return b.String()
}
