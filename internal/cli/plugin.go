package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newPluginCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugin",
		Short: "Manage plugins",
	}

	cmd.AddCommand(
		newPluginListCmd(app),
		newPluginDiscoverCmd(app),
		newPluginInstallCmd(app),
		newPluginRemoveCmd(app),
		newPluginUpdateCmd(app),
		newPluginEnableCmd(app),
		newPluginDisableCmd(app),
		newMarketplaceCmd(app),
	)
	return cmd
}

func newPluginListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.Installer.List()
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No plugins installed.")
				return nil
			}
			for _, p := range list {
				state := "enabled"
				if !p.Enabled {
					state = "disabled"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-10s %-8s %s\n", p.Name, p.Version, state, p.Source)
			}
			return nil
		},
	}
}

func newPluginDiscoverCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "List plugins available in the marketplaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := app.Client.Discover(cmd.Context())
			if err != nil {
				return err
			}
			if len(found) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No plugins found.")
				return nil
			}
			for _, d := range found {
				mark := " "
				if d.Installed {
					mark = "*"
					if !d.Enabled {
						mark = "-"
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-24s %-10s %-12s %s\n",
					mark, d.Name, d.Version, d.Marketplace, d.Description)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "\n* installed  - installed, disabled")
			return nil
		},
	}
}

func newPluginInstallCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "install <name[@marketplace]>",
		Short: "Install a plugin from a marketplace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, mp, _ := strings.Cut(args[0], "@")
			res, err := app.Installer.Install(cmd.Context(), name, mp)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", res.Message)
			return nil
		},
	}
}

func newPluginRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove an installed plugin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Installer.Remove(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ removed %s\n", args[0])
			return nil
		},
	}
}

func newPluginUpdateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "update [name]",
		Short: "Update one plugin, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				res, err := app.Installer.Update(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", res.Message)
				return nil
			}

			results, err := app.Installer.UpdateAll(cmd.Context())
			if err != nil {
				return err
			}
			failed := 0
			for _, res := range results {
				if res.Err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "✗ %s: %v\n", res.Name, res.Err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", res.Message)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d plugins failed to update", failed, len(results))
			}
			return nil
		},
	}
}

func newPluginEnableCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "enable <name>",
		Short: "Enable a plugin for the next start",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Installer.Enable(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ enabled %s\n", args[0])
			return nil
		},
	}
}

func newPluginDisableCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "disable <name>",
		Short: "Disable a plugin for the next start",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Installer.Disable(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ disabled %s\n", args[0])
			return nil
		},
	}
}
