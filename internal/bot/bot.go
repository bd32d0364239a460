// Package bot wires the update pipeline together and manages the lifecycle of modules.
package bot

import (
	"context"
	"fmt"
	"horsefax/internal/adapters/handler"
	"horsefax/internal/adapters/sender"
	"horsefax/internal/core/domain"
	"horsefax/internal/core/domain/message"
	"horsefax/internal/core/domain/module"
	"horsefax/internal/core/event"
	"horsefax/internal/core/port"
	"horsefax/internal/core/service"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"
)

type Option func(*options)

type options struct {
	authorizer service.Authorizer
	tracker    *service.UsageTracker
}

func WithAuthorizer(a service.Authorizer) Option {
	return func(o *options) {
		o.authorizer = a
	}
}

func WithTracker(t *service.UsageTracker) Option {
	return func(o *options) {
		o.tracker = t
	}
}

type loaded struct {
	module   port.Module
	registry *service.Registry
}

// Bot owns the pipeline transport → decoder → message bus → router → command bus, and the
// modules bound to it.
type Bot struct {
	transport port.Transport
	telegram  *service.Telegram
	sender    port.TextSender
	commands  *event.Bus[domain.Command]
	router    *handler.Command
	table     map[string]module.Factory

	mu      sync.Mutex
	modules map[string]loaded
	order   []string
}

func New(transport port.Transport, table map[string]module.Factory, opts ...Option) *Bot {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	telegram := service.NewTelegram(transport, o.tracker)
	commands := event.New[domain.Command]("commands", event.WithFailureHook(o.tracker.TrackFailure))

	routerOpts := []handler.Option{handler.WithTracker(o.tracker)}
	if o.authorizer != nil {
		routerOpts = append(routerOpts, handler.WithAuthorizer(o.authorizer))
	}

	b := &Bot{
		transport: transport,
		telegram:  telegram,
		sender:    sender.NewTelegramSender(transport),
		commands:  commands,
		router:    handler.NewCommand(commands, telegram, routerOpts...),
		table:     table,
		modules:   make(map[string]loaded),
	}
	b.router.Subscribe(telegram.Messages)

	return b
}

// Start looks up the bot's identity and starts polling. The identity is needed before the first
// command arrives, so a failed lookup aborts the start.
func (b *Bot) Start(ctx context.Context) error {
	if _, err := b.telegram.Identify(ctx); err != nil {
		return err
	}

	return b.transport.Connect(ctx, b.telegram.HandleUpdate)
}

// Stop stops polling and unloads all modules, most recently loaded first.
func (b *Bot) Stop() {
	b.transport.Disconnect()

	b.mu.Lock()
	names := slices.Clone(b.order)
	b.mu.Unlock()

	slices.Reverse(names)
	for _, name := range names {
		if err := b.UnloadModule(name); err != nil {
			log.Warn().Err(err).Str("module", name).Msg("failed to unload module")
		}
	}
}

// Done is closed once polling has stopped.
func (b *Bot) Done() <-chan struct{} {
	return b.transport.Done()
}

// LoadModules loads the named modules in order and stops at the first failure.
func (b *Bot) LoadModules(names []string) error {
	for _, name := range names {
		if err := b.LoadModule(name); err != nil {
			return err
		}
	}

	return nil
}

// LoadModule installs a module from the table with a registry of its own. Loading a module that
// is already loaded reloads it.
func (b *Bot) LoadModule(name string) error {
	factory, ok := b.table[name]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownModule, name)
	}

	if b.isLoaded(name) {
		log.Info().Str("module", name).Msg("module already loaded, reloading")
		if err := b.UnloadModule(name); err != nil {
			return err
		}
	}

	registry := service.NewRegistry(name, b.commands, b.sender)

	m, err := factory(b, registry)
	if err != nil {
		registry.UnregisterAll()
		return fmt.Errorf("failed loading module %s: %w", name, err)
	}

	b.mu.Lock()
	b.modules[name] = loaded{module: m, registry: registry}
	b.order = append(b.order, name)
	b.mu.Unlock()

	log.Info().Str("module", name).Strs("commands", registry.ListCommands()).Msg("module loaded")

	return nil
}

// UnloadModule tears a module down and revokes every command it registered.
func (b *Bot) UnloadModule(name string) error {
	b.mu.Lock()
	l, ok := b.modules[name]
	if ok {
		delete(b.modules, name)
		b.order = slices.DeleteFunc(b.order, func(n string) bool { return n == name })
	}
	b.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s is not loaded", domain.ErrUnknownModule, name)
	}

	l.module.Teardown()
	l.registry.UnregisterAll()

	log.Info().Str("module", name).Msg("module unloaded")

	return nil
}

// LoadedModules returns the loaded module names in load order.
func (b *Bot) LoadedModules() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return slices.Clone(b.order)
}

func (b *Bot) isLoaded(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.modules[name]
	return ok
}

func (b *Bot) Me() message.User {
	me, _ := b.telegram.Me()
	return me
}

func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string, opts domain.SendOptions) error {
	return b.sender.SendMessage(ctx, chatID, text, opts)
}

func (b *Bot) Messages() *event.Bus[message.Message] {
	return b.telegram.Messages
}

// Updates carries every raw update before decoding.
func (b *Bot) Updates() *event.Bus[message.Update] {
	return b.telegram.Updates
}

// Commands is the bus routed commands are published on.
func (b *Bot) Commands() *event.Bus[domain.Command] {
	return b.commands
}
