// Package grpc exposes the character services over gRPC.
package grpc

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/dmitrijs2005/charstudio/internal/api"
	"github.com/dmitrijs2005/charstudio/internal/logging"
	"github.com/dmitrijs2005/charstudio/internal/server/models"
	"github.com/dmitrijs2005/charstudio/internal/server/services"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// CharacterService is what the transport needs from the service layer.
type CharacterService interface {
	CreateCharacter(ctx context.Context, ownerID string, imagePaths []string) (string, error)
	ListCharacters(ctx context.Context, ownerID string) ([]*models.Character, error)
	GetCharacter(ctx context.Context, ownerID, characterID string) (*models.Character, error)
	GenerateVisualization(ctx context.Context, ownerID, characterID, prompt string) ([]byte, error)
	CreateUploadURL(ctx context.Context, ownerID, fileName string) (*services.UploadTicket, error)
	ResolveDownloadURL(ctx context.Context, ownerID, key string) (*services.DownloadTicket, error)
}

// Subscriber delivers committed changes of one character.
type Subscriber interface {
	Subscribe(characterID string) (<-chan *models.Character, func())
	Subscribers(characterID string) int
}

type GRPCServer struct {
	address      string
	characters   CharacterService
	watch        Subscriber
	logger       logging.Logger
	jwtSecret    []byte
	pollInterval time.Duration

	// stopping is closed when shutdown starts so long-lived streams can end
	// and GracefulStop does not wait on them forever.
	stopping chan struct{}
	stopOnce sync.Once
}

// NewGRPCServer builds the server. pollInterval bounds how stale a
// WatchCharacter stream can be when a change happens in another process.
func NewGRPCServer(a string, l logging.Logger, cs CharacterService, watch Subscriber, secretKey string, pollInterval time.Duration) *GRPCServer {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &GRPCServer{
		address:      a,
		logger:       l.With("module", "grpc_server"),
		characters:   cs,
		watch:        watch,
		jwtSecret:    []byte(secretKey),
		pollInterval: pollInterval,
		stopping:     make(chan struct{}),
	}
}

func (s *GRPCServer) beginStop() {
	s.stopOnce.Do(func() { close(s.stopping) })
}

func (s *GRPCServer) newServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(s.accessTokenInterceptor),
		grpc.ChainStreamInterceptor(s.streamAccessTokenInterceptor),
	)

	api.RegisterCharacterStudioServer(srv, s)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)

	return srv, hs
}

// Run listens on the configured address and serves until ctx is cancelled,
// then drains in-flight calls.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv, hs := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		hs.Shutdown()
		s.beginStop()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
