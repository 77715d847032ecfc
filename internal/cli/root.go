// Package cli builds the todui command tree. Plugin management lives under
// "todui plugin"; plugins loaded in command-line mode may attach their own
// subcommands next to it.
package cli

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/todui/todui/internal/config"
	"github.com/todui/todui/internal/installer"
	"github.com/todui/todui/internal/marketplace"
)

// App bundles the collaborators the command tree operates on.
type App struct {
	Version   string
	Store     *config.Store
	Client    *marketplace.Client
	Installer *installer.Installer
	Log       *logrus.Logger
}

// NewRootCmd builds the root command. Plugin subcommands are attached later,
// after the plugin system has loaded, via Attacher.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "todui",
		Short:         "Terminal task manager",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Init()
		},
	}

	root.AddCommand(newPluginCmd(app))
	return root
}

// Init wires viper: environment variables like TODUI_LOG_LEVEL override the
// config file. Safe to call more than once.
func Init() {
	viper.SetConfigFile(config.FilePath())
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("TODUI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("plugins_dir", config.PluginsDir())
	viper.SetDefault("log_level", logrus.InfoLevel.String())

	// A missing config file is fine; defaults and environment apply.
	_ = viper.ReadInConfig()
}

// LogLevel returns the effective log level from config and environment.
func LogLevel() logrus.Level {
	level, err := logrus.ParseLevel(viper.GetString("log_level"))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// PluginsDir returns the effective plugins directory from config and
// environment.
func PluginsDir() string {
	return viper.GetString("plugins_dir")
}
