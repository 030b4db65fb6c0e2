package command

import (
	"fmt"
	"log/slog"

	"github.com/pixil98/go-service"
	"github.com/pixil98/go-zbot/internal/bot"
	"github.com/pixil98/go-zbot/internal/listener"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	b, err := cfg.BuildBot()
	if err != nil {
		return nil, err
	}

	// Setup the chat bus
	natsServer, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	gateway := cfg.Nats.buildGateway(natsServer, b)

	// Create Listeners
	cm := listener.NewConnectionManager(b)
	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		w, err := l.BuildListener(cm)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d", i)] = w
	}

	// Sweep scratch files left by interrupted interactions
	janitor, err := cfg.Janitor.BuildDriver(cfg.Storage.ScratchDir())
	if err != nil {
		return nil, fmt.Errorf("creating janitor: %w", err)
	}

	slog.Info("workers built",
		"gateway_in", gateway.InboundSubject(),
		"listeners", len(listeners),
		"scratch_dir", cfg.Storage.ScratchDir(),
	)

	return service.WorkerList{
		"nats":      natsServer,
		"gateway":   gateway,
		"listeners": &listeners,
		"janitor":   janitor,
	}, nil
}

// BuildBot wires the catalog, interpreter supervisor and stores into a bot.
func (c *Config) BuildBot() (*bot.Bot, error) {
	cat, err := c.Games.BuildCatalog(c.Storage.GamesPath)
	if err != nil {
		return nil, fmt.Errorf("building game catalog: %w", err)
	}

	sup, err := c.Interpreter.BuildSupervisor()
	if err != nil {
		return nil, fmt.Errorf("creating interpreter supervisor: %w", err)
	}

	namer := c.Storage.BuildNamer()
	sessions, err := c.Storage.BuildSessionStore(namer)
	if err != nil {
		return nil, err
	}

	var opts []bot.BotOpt
	if c.Commands.Prefix != "" {
		opts = append(opts, bot.WithCommandPrefix(c.Commands.Prefix))
	}

	b, err := bot.New(cat, sup, sessions, namer, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating bot: %w", err)
	}

	slog.Info("game catalog loaded", "games", cat.Len())
	return b, nil
}
