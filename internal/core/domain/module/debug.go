package module

import (
	"context"
	"fmt"
	"horsefax/internal/core/domain"
	"horsefax/internal/core/port"
	"runtime"
	"runtime/debug"
	"runtime/metrics"
	"time"

	"github.com/rs/zerolog/log"
)

const kb = 1024
const debugTemplate = `allocated mem: %d KB
threads running: %d
heap: %d KB
stack: %d KB
uptime: %s
commands here: %s
compiled with %s for %s-%s
`
const metricCount = 3

// Debug reports runtime statistics of the bot process.
type Debug struct {
	nop
	registry port.CommandRegistry
	started  time.Time
}

func NewDebug(_ port.Bot, r port.CommandRegistry) *Debug {
	d := &Debug{registry: r, started: time.Now()}
	r.Register("debug", d.respond)

	return d
}

func (d *Debug) respond(_ context.Context, cmd domain.Command) (string, error) {
	l := log.With().
		Int64("messageId", cmd.Message.ID).
		Int64("chatId", cmd.ChatID()).
		Str("command", cmd.Name).
		Logger()

	data := make([]metrics.Sample, metricCount)
	data[0] = metrics.Sample{Name: "/memory/classes/heap/objects:bytes"}
	data[1] = metrics.Sample{Name: "/memory/classes/heap/stacks:bytes"}
	data[2] = metrics.Sample{Name: "/memory/classes/total:bytes"}

	metrics.Read(data)

	for _, sample := range data {
		l.Debug().Str("name", sample.Name).Msgf("%d", sample.Value.Uint64())
	}

	l.Info().Msg("handling request")

	var goos, goarch string
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "GOOS":
				goos = setting.Value
			case "GOARCH":
				goarch = setting.Value
			}
		}
	}

	return fmt.Sprintf(
		debugTemplate,
		data[2].Value.Uint64()/kb,
		runtime.NumGoroutine(),
		data[0].Value.Uint64()/kb,
		data[1].Value.Uint64()/kb,
		time.Since(d.started).Truncate(time.Second),
		d.registry.ListCommands(),
		runtime.Version(), goos, goarch,
	), nil
}
