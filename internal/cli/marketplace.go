package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMarketplaceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "marketplace",
		Short: "Manage plugin marketplaces",
	}

	cmd.AddCommand(
		newMarketplaceListCmd(app),
		newMarketplaceAddCmd(app),
		newMarketplaceRemoveCmd(app),
		newMarketplaceRefreshCmd(app),
	)
	return cmd
}

func newMarketplaceListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered marketplaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.Client.List()
			if err != nil {
				return err
			}
			for _, m := range list {
				tag := ""
				if m.Official {
					tag = " (built-in)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s%s\n", m.Name, m.Source, tag)
			}
			return nil
		},
	}
}

func newMarketplaceAddCmd(app *App) *cobra.Command {
	var autoUpdate bool

	cmd := &cobra.Command{
		Use:   "add <source>",
		Short: "Register a marketplace by source",
		Long: `Register a marketplace. The source is a github:owner/repo shorthand, a git
or https URL, or a local path. The marketplace's own catalog name is used
when it declares one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := app.Client.Add(cmd.Context(), args[0], autoUpdate)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ added marketplace %s\n", name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&autoUpdate, "auto-update", false, "Refresh this marketplace's catalog at startup")
	return cmd
}

func newMarketplaceRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Unregister a marketplace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Client.Remove(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ removed marketplace %s\n", args[0])
			return nil
		},
	}
}

func newMarketplaceRefreshCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh [name]",
		Short: "Refresh cached marketplace catalogs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				m, err := app.Client.Get(args[0])
				if err != nil {
					return err
				}
				if _, err := app.Client.Fetch(cmd.Context(), m); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ refreshed %s\n", m.Name)
				return nil
			}

			failed, err := app.Client.Refresh(cmd.Context())
			for _, name := range failed {
				fmt.Fprintf(cmd.OutOrStdout(), "✗ %s unreachable\n", name)
			}
			if err != nil {
				return fmt.Errorf("some marketplaces failed to refresh: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ all marketplaces refreshed")
			return nil
		},
	}
}
