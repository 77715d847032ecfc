package api

import (
	glua "github.com/yuin/gopher-lua"

	"github.com/todui/todui/internal/plugin/extension"
	plua "github.com/todui/todui/internal/plugin/lua"
)

// commandsModule implements td.commands. Registration lands in the palette
// registry; command-line invocations also get a subcommand on the host tree.
type commandsModule struct {
	ctx *Context
}

func (m *commandsModule) Name() string { return "commands" }

func (m *commandsModule) Register(L *glua.LState, mod *glua.LTable) {
	L.SetField(mod, "register", L.NewFunction(m.register))
}

// register{name=, title=?, desc=?, run=fn(args)} -> bool
func (m *commandsModule) register(L *glua.LState) int {
	t := L.CheckTable(1)
	name := mustField(L, t, "name")
	run := mustFunc(L, t, "run")
	desc := optString(t, "desc", "")

	added := true
	if m.ctx.deps.Extensions != nil {
		added = m.ctx.deps.Extensions.PaletteCommands.Add(extension.PaletteCommand{
			ID:     name,
			Plugin: m.ctx.deps.Plugin,
			Title:  optString(t, "title", name),
			Run: func() error {
				_, err := plua.CallFunc(L, run)
				return err
			},
		})
	}

	if m.ctx.deps.Commands != nil {
		attached := m.ctx.deps.Commands.Attach(name, desc, func(args []string) error {
			_, err := plua.CallFunc(L, run, args)
			return err
		})
		added = added && attached
	}

	L.Push(glua.LBool(added))
	return 1
}
