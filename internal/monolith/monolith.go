// Package monolith provides the application container and module interface.
package monolith

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/ivoros/chainarb/internal/apperror"
	"github.com/ivoros/chainarb/internal/asset"
	"github.com/ivoros/chainarb/internal/config"
	"github.com/ivoros/chainarb/internal/di"
	"github.com/ivoros/chainarb/internal/logger"
)

// Monolith is the main application container providing access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	EthClient(chainID uint64) (*ethclient.Client, bool)
	AssetRegistry() *asset.Registry
	Services() di.ServiceRegistry
}

// Module represents a bounded context module that can register services and start up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

// app implements the Monolith interface.
type app struct {
	config        *config.Config
	logger        logger.LoggerInterface
	ethClients    map[uint64]*ethclient.Client
	assetRegistry *asset.Registry
	container     di.Container
}

// New creates a new Monolith instance. One RPC client is dialed per
// configured network; networks without an HTTP URL (simulation mode)
// are skipped.
func New(cfg *config.Config, log logger.LoggerInterface) (*app, error) {
	ethClients := make(map[uint64]*ethclient.Client, len(cfg.Networks))
	for name, n := range cfg.Networks {
		if n.HTTPURL == "" {
			continue
		}
		client, err := ethclient.Dial(n.HTTPURL)
		if err != nil {
			closeClients(ethClients)
			return nil, apperror.Wrap(err, apperror.CodeRPCConnectionFailed,
				apperror.WithContext("network", name))
		}
		ethClients[n.ChainID] = client
	}

	// Use default asset registry (pre-populated with common assets)
	assetRegistry := asset.DefaultRegistry()

	container := di.NewContainer()

	// Register global services
	container.Register("config", cfg)
	container.Register("logger", log)
	container.Register("ethClients", ethClients)
	container.Register("assetRegistry", assetRegistry)

	return &app{
		config:        cfg,
		logger:        log,
		ethClients:    ethClients,
		assetRegistry: assetRegistry,
		container:     container,
	}, nil
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

// EthClient returns the RPC client for the given chain, if one was dialed.
func (a *app) EthClient(chainID uint64) (*ethclient.Client, bool) {
	c, ok := a.ethClients[chainID]
	return c, ok
}

func (a *app) AssetRegistry() *asset.Registry {
	return a.assetRegistry
}

func (a *app) Services() di.ServiceRegistry {
	return a.container
}

// Container returns the DI container for module registration.
func (a *app) Container() di.Container {
	return a.container
}

// RegisterModules registers all provided modules.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all resources.
func (a *app) Close() error {
	closeClients(a.ethClients)
	return nil
}

func closeClients(clients map[uint64]*ethclient.Client) {
	for _, c := range clients {
		c.Close()
	}
}
