// Package mirror parses storefront mirror flags and launches the daemon.
package mirror

import (
	"context"
	"flag"
	"log"
	"time"

	entrypoint "github.com/laviddichterman/wario-ux-shared/internal/platform/cmd"
	platformgrpc "github.com/laviddichterman/wario-ux-shared/internal/platform/grpc"
	"github.com/laviddichterman/wario-ux-shared/internal/platform/timeouts"
	server "github.com/laviddichterman/wario-ux-shared/internal/services/mirror/app"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/transport/socket"
)

// Config holds mirror command configuration.
type Config struct {
	HTTPAddr        string        `env:"MIRROR_HTTP_ADDR"    envDefault:"localhost:8095"`
	GRPCAddr        string        `env:"MIRROR_GRPC_ADDR"    envDefault:"localhost:8096"`
	SocketHost      string        `env:"SOCKET_HOST"         envDefault:"ws://localhost:4001"`
	SocketNamespace string        `env:"SOCKET_NAMESPACE"    envDefault:"nsRO"`
	CreditBaseURL   string        `env:"CREDIT_BASE_URL"`
	DBPath          string        `env:"MIRROR_DB_PATH"`
	PollInterval    time.Duration `env:"CLOCK_POLL_INTERVAL" envDefault:"30s"`
	// Probe checks the health of a running mirror at GRPCAddr instead of serving.
	Probe bool
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP read API address")
	fs.StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "gRPC health server address")
	fs.StringVar(&cfg.SocketHost, "socket-host", cfg.SocketHost, "Storefront websocket host (ws or wss)")
	fs.StringVar(&cfg.SocketNamespace, "socket-namespace", cfg.SocketNamespace, "Storefront websocket namespace")
	fs.StringVar(&cfg.CreditBaseURL, "credit-base-url", cfg.CreditBaseURL, "Storefront HTTP API base URL for store credit validation")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite payload cache path (empty disables the cache)")
	fs.DurationVar(&cfg.PollInterval, "clock-poll-interval", cfg.PollInterval, "Interval between local clock ticks")
	fs.BoolVar(&cfg.Probe, "probe", false, "Check the health of a running mirror and exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ServerConfig maps command configuration to the daemon configuration.
func (c Config) ServerConfig() server.Config {
	return server.Config{
		HTTPAddr:      c.HTTPAddr,
		GRPCAddr:      c.GRPCAddr,
		SocketURL:     socket.URL(c.SocketHost, c.SocketNamespace),
		CreditBaseURL: c.CreditBaseURL,
		DBPath:        c.DBPath,
		PollInterval:  c.PollInterval,
	}
}

// Run starts the mirror daemon, or probes a running one when cfg.Probe is set.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Probe {
		return platformgrpc.Probe(ctx, cfg.GRPCAddr, timeouts.HealthProbe, log.Printf)
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMirror, func(ctx context.Context) error {
		return server.Run(ctx, cfg.ServerConfig())
	})
}
