package cli

import "github.com/spf13/cobra"

// Attacher lets plugins loaded in command-line mode add subcommands to the
// root. It satisfies the capability context's CommandAttacher.
type Attacher struct {
	root *cobra.Command
}

// NewAttacher wraps the root command for plugin subcommand registration.
func NewAttacher(root *cobra.Command) *Attacher {
	return &Attacher{root: root}
}

// Attach adds a subcommand. A name colliding with an existing command is
// refused; built-in commands always win.
func (a *Attacher) Attach(name, description string, run func(args []string) error) bool {
	for _, existing := range a.root.Commands() {
		if existing.Name() == name {
			return false
		}
	}
	a.root.AddCommand(&cobra.Command{
		Use:   name,
		Short: description,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args)
		},
	})
	return true
}
