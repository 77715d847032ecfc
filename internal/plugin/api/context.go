package api

import (
	"context"

	"github.com/sirupsen/logrus"
	glua "github.com/yuin/gopher-lua"

	"github.com/todui/todui/internal/domain"
	"github.com/todui/todui/internal/plugin/extension"
	"github.com/todui/todui/internal/plugin/hook"
	plua "github.com/todui/todui/internal/plugin/lua"
	"github.com/todui/todui/internal/storage"
)

// Deps is everything a plugin's capability context can reach.
type Deps struct {
	Plugin     string
	Version    string
	Providers  domain.Providers
	Storage    *storage.DB
	Bus        *hook.Bus
	Extensions *extension.Set
	UI         domain.UIController
	Commands   CommandAttacher
	Log        *logrus.Logger
}

// CommandAttacher adds plugin subcommands to the host command tree. Set only
// for command-line invocations.
type CommandAttacher interface {
	Attach(name, description string, run func(args []string) error) bool
}

// Module contributes one sub-table to td.
type Module interface {
	Name() string
	Register(L *glua.LState, mod *glua.LTable)
}

// Context is one plugin's view of the application.
type Context struct {
	deps Deps
	ns   *storage.Namespace
	log  *logrus.Entry
}

// New creates the capability context for one plugin.
func New(deps Deps) *Context {
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Context{
		deps: deps,
		log:  log.WithField("plugin", deps.Plugin),
	}
	if deps.Storage != nil {
		c.ns = deps.Storage.Namespace(deps.Plugin)
	}
	return c
}

// Install preloads the td module into the runtime so the plugin's entry
// file can require it.
func (c *Context) Install(rt *plua.Runtime) error {
	rt.Preload("td", func(L *glua.LState) int {
		td := L.NewTable()
		L.SetField(td, "version", glua.LString(c.deps.Version))
		L.SetField(td, "plugin", glua.LString(c.deps.Plugin))

		for _, m := range c.modules() {
			mod := L.NewTable()
			m.Register(L, mod)
			L.SetField(td, m.Name(), mod)
		}

		L.Push(td)
		return 1
	})
	return nil
}

// modules returns the installable modules for this plugin, skipping those
// whose backing dependency is missing.
func (c *Context) modules() []Module {
	mods := []Module{
		&logModule{ctx: c},
		&utilModule{},
	}
	if c.deps.Providers.Tasks != nil {
		mods = append(mods, &tasksModule{ctx: c})
	}
	if c.deps.Providers.Projects != nil {
		mods = append(mods, &projectsModule{ctx: c})
	}
	if c.deps.Providers.Labels != nil {
		mods = append(mods, &labelsModule{ctx: c})
	}
	if c.deps.Providers.Sections != nil {
		mods = append(mods, &sectionsModule{ctx: c})
	}
	if c.deps.Providers.Comments != nil {
		mods = append(mods, &commentsModule{ctx: c})
	}
	if c.ns != nil {
		mods = append(mods, &storageModule{ctx: c})
	}
	if c.deps.Bus != nil {
		mods = append(mods, &hooksModule{ctx: c})
	}
	if c.deps.UI != nil && c.deps.Extensions != nil {
		mods = append(mods, &uiModule{ctx: c})
	}
	if c.deps.Extensions != nil || c.deps.Commands != nil {
		mods = append(mods, &commandsModule{ctx: c})
	}
	return mods
}

// reqCtx is the context passed to provider calls made on behalf of Lua.
func (c *Context) reqCtx() context.Context {
	return context.Background()
}
