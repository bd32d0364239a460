// Package module holds the built-in bot modules and the table the bot loads them from.
package module

import (
	"errors"
	"horsefax/internal/core/port"
	"math/rand/v2"
	"slices"
)

var ErrMissingDependency = errors.New("module dependency not configured")

// Factory installs a module: it registers the module's commands on r and returns a handle used
// to tear the module down again.
type Factory func(b port.Bot, r port.CommandRegistry) (port.Module, error)

// Dependencies are the outside services modules may need. Nil fields disable the modules that
// depend on them.
type Dependencies struct {
	Downloader port.Downloader
	Generator  port.TextGenerator
	// Intn returns a uniform number in [0, n). It defaults to math/rand/v2.
	Intn func(n int) int
}

// Table maps module names to their factories.
func Table(deps Dependencies) map[string]Factory {
	if deps.Intn == nil {
		deps.Intn = rand.IntN
	}

	return map[string]Factory{
		"ping":      installed(NewPing),
		"heartbeat": installed(NewHeartbeat),
		"cute":      installed(NewCute),
		"debug":     installed(NewDebug),
		"users":     installed(NewUsers),
		"roll": func(b port.Bot, r port.CommandRegistry) (port.Module, error) {
			return NewRoll(r, deps.Intn), nil
		},
		"derpibooru": func(b port.Bot, r port.CommandRegistry) (port.Module, error) {
			if deps.Downloader == nil {
				return nil, errors.Join(ErrMissingDependency, errors.New("derpibooru needs a downloader"))
			}
			return NewDerpibooru(r, deps.Downloader, DerpibooruURL), nil
		},
		"chat": func(b port.Bot, r port.CommandRegistry) (port.Module, error) {
			if deps.Generator == nil {
				return nil, errors.Join(ErrMissingDependency, errors.New("chat needs openrouter.api_key"))
			}
			return NewChat(r, deps.Generator), nil
		},
	}
}

// Names returns the sorted module names of a table.
func Names(table map[string]Factory) []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

func installed[M port.Module](f func(port.Bot, port.CommandRegistry) M) Factory {
	return func(b port.Bot, r port.CommandRegistry) (port.Module, error) {
		return f(b, r), nil
	}
}

// nop is embedded by modules that hold nothing besides their command bindings.
type nop struct{}

func (nop) Teardown() {}
