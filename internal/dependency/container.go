// Package dependency wires the core services using go.uber.org/dig.
package dependency

import (
	"context"
	"log/slog"

	"go.uber.org/dig"

	"github.com/iris-assistant/iris/internal/agent"
	"github.com/iris-assistant/iris/internal/channels"
	"github.com/iris-assistant/iris/internal/chatlog"
	"github.com/iris-assistant/iris/internal/config"
	"github.com/iris-assistant/iris/internal/gateway"
	"github.com/iris-assistant/iris/internal/memory"
	"github.com/iris-assistant/iris/internal/plugin"
	"github.com/iris-assistant/iris/internal/providers"
	"github.com/iris-assistant/iris/internal/reminder"
	"github.com/iris-assistant/iris/internal/schema"
	"github.com/iris-assistant/iris/internal/status"
	"github.com/iris-assistant/iris/internal/tools"
	"github.com/iris-assistant/iris/internal/tts"
)

// Container holds the resolved core service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	cfg          *config.Config
	provider     schema.LLMProvider
	plugins      *plugin.Manager
	registry     *plugin.Registry
	log          *chatlog.Log
	store        *memory.Store
	reminders    *reminder.Service
	checker      *reminder.Checker
	broadcaster  *status.Broadcaster
	orchestrator *agent.Orchestrator
	channelMgr   *channels.Manager
	gatewaySrv   *gateway.Server
	speaker      tts.Speaker
}

func (c *Container) Config() *config.Config            { return c.cfg }
func (c *Container) Provider() schema.LLMProvider      { return c.provider }
func (c *Container) Plugins() *plugin.Manager          { return c.plugins }
func (c *Container) Registry() *plugin.Registry        { return c.registry }
func (c *Container) Chatlog() *chatlog.Log             { return c.log }
func (c *Container) Memory() *memory.Store             { return c.store }
func (c *Container) Reminders() *reminder.Service      { return c.reminders }
func (c *Container) Checker() *reminder.Checker        { return c.checker }
func (c *Container) Broadcaster() *status.Broadcaster  { return c.broadcaster }
func (c *Container) Orchestrator() *agent.Orchestrator { return c.orchestrator }
func (c *Container) Channels() *channels.Manager       { return c.channelMgr }
func (c *Container) Gateway() *gateway.Server          { return c.gatewaySrv }
func (c *Container) Speaker() tts.Speaker              { return c.speaker }

// New builds and wires all core services from cfg.
func New(cfg *config.Config) (*Container, error) {
	d := dig.New()

	for _, provide := range []any{
		func() *config.Config { return cfg },
		newProvider,
		newBroadcaster,
		newChatlog,
		newMemoryStore,
		newReminderService,
		newChannelManager,
		newChecker,
		newPluginManager,
		newRegistry,
		newOrchestrator,
		newGateway,
		newSpeaker,
	} {
		if err := d.Provide(provide); err != nil {
			return nil, err
		}
	}

	var result *Container
	err := d.Invoke(func(
		provider schema.LLMProvider,
		plugins *plugin.Manager,
		registry *plugin.Registry,
		log *chatlog.Log,
		store *memory.Store,
		reminders *reminder.Service,
		checker *reminder.Checker,
		broadcaster *status.Broadcaster,
		orchestrator *agent.Orchestrator,
		channelMgr *channels.Manager,
		gatewaySrv *gateway.Server,
		speaker tts.Speaker,
	) {
		result = &Container{
			cfg:          cfg,
			provider:     provider,
			plugins:      plugins,
			registry:     registry,
			log:          log,
			store:        store,
			reminders:    reminders,
			checker:      checker,
			broadcaster:  broadcaster,
			orchestrator: orchestrator,
			channelMgr:   channelMgr,
			gatewaySrv:   gatewaySrv,
			speaker:      speaker,
		}
	})
	return result, err
}

func newProvider(cfg *config.Config) schema.LLMProvider {
	return providers.New(providers.Params{
		APIKey:       cfg.Agent.APIKey,
		APIBase:      cfg.Agent.APIBase,
		DefaultModel: cfg.Agent.Model,
	})
}

func newBroadcaster() *status.Broadcaster { return status.NewBroadcaster() }

func newChatlog(cfg *config.Config) *chatlog.Log { return chatlog.Open(cfg.Paths.Chatlog) }

func newMemoryStore(cfg *config.Config) *memory.Store { return memory.NewStore(cfg.Paths.Memory) }

func newReminderService(log *chatlog.Log) *reminder.Service {
	return reminder.NewService(log)
}

func newChannelManager(cfg *config.Config) *channels.Manager {
	return channels.NewManager(cfg.Channels)
}

func newChecker(svc *reminder.Service, mgr *channels.Manager) *reminder.Checker {
	notify := func(message string) {
		slog.Info("reminder fired", "message", message)
		mgr.NotifyAll(context.Background(), message)
	}
	return reminder.NewChecker(svc, notify, 0)
}

// newPluginManager loads every registered plugin unit and then binds the
// integrated tools that need live services into the same registry.
func newPluginManager(cfg *config.Config, reminders *reminder.Service, store *memory.Store) *plugin.Manager {
	mgr := plugin.NewManager(plugin.NewContext(slog.Default(), cfg.Snapshot()))
	registry := mgr.Load()
	addIntegratedTools(registry, reminders, store)
	return mgr
}

func addIntegratedTools(registry *plugin.Registry, reminders *reminder.Service, store *memory.Store) {
	for _, t := range tools.ReminderTools(reminders) {
		if err := registry.Add(t); err != nil {
			slog.Error("tool name collision", "tool", t.Name())
		}
	}
	for _, t := range tools.MemoryTools(store) {
		if err := registry.Add(t); err != nil {
			slog.Error("tool name collision", "tool", t.Name())
		}
	}
}

// ReloadPlugins re-runs plugin loading and re-binds the integrated tools,
// which a bare manager reload would drop.
func (c *Container) ReloadPlugins() {
	c.plugins.Reload()
	addIntegratedTools(c.registry, c.reminders, c.store)
}

func newRegistry(mgr *plugin.Manager) *plugin.Registry { return mgr.Registry() }

func newOrchestrator(
	provider schema.LLMProvider,
	registry *plugin.Registry,
	log *chatlog.Log,
	broadcaster *status.Broadcaster,
	cfg *config.Config,
) *agent.Orchestrator {
	return agent.New(provider, registry, log, broadcaster, agent.Settings{
		Model:         cfg.Agent.Model,
		FallbackModel: cfg.Agent.FallbackModel,
		SystemPrompt:  cfg.Agent.SystemPrompt,
		MaxTokens:     cfg.Agent.MaxTokens,
		Temperature:   cfg.Agent.Temperature,
		MaxIter:       cfg.Agent.MaxToolIterations,
	})
}

func newGateway(cfg *config.Config, orch *agent.Orchestrator, broadcaster *status.Broadcaster) *gateway.Server {
	return gateway.New(cfg.Gateway, orch.SendMessage, broadcaster)
}

func newSpeaker() tts.Speaker { return tts.NewExecSpeaker() }
