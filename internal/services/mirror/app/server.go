// Package server wires the storefront mirror runtime: the socket client that
// feeds the store, and the HTTP, MCP, and gRPC health surfaces that read it.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	platformgrpc "github.com/laviddichterman/wario-ux-shared/internal/platform/grpc"
	"github.com/laviddichterman/wario-ux-shared/internal/platform/timeouts"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/api/httpapi"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/api/mcptools"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/credit"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/connection"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/query"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/selector"
	mirrorsqlite "github.com/laviddichterman/wario-ux-shared/internal/services/mirror/storage/sqlite"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/store"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/transport/socket"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

// HealthService is the gRPC health service name that tracks readiness.
const HealthService = "wario.mirror"

// Config configures the mirror server.
type Config struct {
	HTTPAddr string
	GRPCAddr string
	// SocketURL is the storefront websocket endpoint (ws or wss).
	SocketURL string
	// CreditBaseURL enables store credit validation when set.
	CreditBaseURL string
	// DBPath enables the payload cache when set.
	DBPath       string
	PollInterval time.Duration
}

// Server hosts the mirror runtime.
type Server struct {
	httpListener net.Listener
	grpcListener net.Listener
	httpServer   *http.Server
	grpcServer   *grpc.Server
	readiness    *platformgrpc.Readiness
	store        *store.Store
	socket       *socket.Client
	cache        *mirrorsqlite.Store
	unsubscribe  func()
}

// New builds a server and binds its listeners. Cached payloads, if any, are
// replayed into the store before New returns.
func New(ctx context.Context, cfg Config) (*Server, error) {
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, errors.New("http address is required")
	}
	if strings.TrimSpace(cfg.GRPCAddr) == "" {
		return nil, errors.New("grpc address is required")
	}

	s := &Server{store: store.New(), readiness: platformgrpc.NewReadiness(HealthService)}
	s.unsubscribe = s.store.Subscribe(func(_, next connection.State) {
		s.readiness.Set(next.IsLoaded())
	})

	if path := strings.TrimSpace(cfg.DBPath); path != "" {
		cache, err := openCache(path)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.cache = cache
		replayed, err := socket.Replay(ctx, cache, s.store)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("replay payload cache: %w", err)
		}
		log.Printf("mirror: replayed %d cached payloads", replayed)
	}

	socketCfg := socket.Config{URL: cfg.SocketURL, PollInterval: cfg.PollInterval}
	if s.cache != nil {
		socketCfg.Cache = s.cache
	}
	client, err := socket.New(socketCfg, s.store)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("configure socket: %w", err)
	}
	s.socket = client

	var validator query.CreditValidator
	if base := strings.TrimSpace(cfg.CreditBaseURL); base != "" {
		creditClient, err := credit.New(base)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("configure credit client: %w", err)
		}
		validator = creditClient
	}

	selectors, err := selector.New()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("build selectors: %w", err)
	}
	svc, err := query.New(s.store, selectors, validator)
	if err != nil {
		s.Close()
		return nil, err
	}
	mcpServer, err := mcptools.NewServer(svc)
	if err != nil {
		s.Close()
		return nil, err
	}
	handler, err := httpapi.NewHandler(svc, httpapi.Options{MCP: mcptools.HTTPHandler(mcpServer)})
	if err != nil {
		s.Close()
		return nil, err
	}
	s.httpServer = &http.Server{Handler: handler, ReadHeaderTimeout: timeouts.ReadHeader}

	s.grpcServer = grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	s.readiness.Register(s.grpcServer)

	if s.httpListener, err = net.Listen("tcp", cfg.HTTPAddr); err != nil {
		s.Close()
		return nil, fmt.Errorf("listen on %s: %w", cfg.HTTPAddr, err)
	}
	if s.grpcListener, err = net.Listen("tcp", cfg.GRPCAddr); err != nil {
		s.Close()
		return nil, fmt.Errorf("listen on %s: %w", cfg.GRPCAddr, err)
	}
	return s, nil
}

// HTTPAddr returns the bound HTTP address.
func (s *Server) HTTPAddr() string {
	if s == nil || s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// GRPCAddr returns the bound gRPC address.
func (s *Server) GRPCAddr() string {
	if s == nil || s.grpcListener == nil {
		return ""
	}
	return s.grpcListener.Addr().String()
}

// Run creates and serves a mirror server until context cancellation.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve runs the socket client and both servers until ctx is done or one of
// them fails, then shuts everything down.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	defer s.Close()

	log.Printf("mirror http listening at %v", s.httpListener.Addr())
	log.Printf("mirror grpc listening at %v", s.grpcListener.Addr())

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return s.socket.Run(groupCtx)
	})
	group.Go(func() error {
		err := s.httpServer.Serve(s.httpListener)
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	})
	group.Go(func() error {
		err := s.grpcServer.Serve(s.grpcListener)
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	})
	group.Go(func() error {
		<-groupCtx.Done()
		s.readiness.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Shutdown)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("mirror: http shutdown: %v", err)
		}
		s.grpcServer.GracefulStop()
		return nil
	})
	return group.Wait()
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	if s.readiness != nil {
		s.readiness.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.httpListener != nil {
		_ = s.httpListener.Close()
	}
	if s.grpcListener != nil {
		_ = s.grpcListener.Close()
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			log.Printf("close payload cache: %v", err)
		}
	}
}

func openCache(path string) (*mirrorsqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	cache, err := mirrorsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open payload cache: %w", err)
	}
	return cache, nil
}
