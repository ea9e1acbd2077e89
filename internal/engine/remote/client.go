package remote

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoSim-25-26J-441/waveguide-sim/internal/engine"
	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/logger"
	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client implements engine.Runner against a remote engine host.
type Client struct {
	conn       *grpc.ClientConn
	health     healthpb.HealthClient
	timeout    time.Duration
	maxMsgSize int
	logger     *slog.Logger
}

// Dial creates a client for addr. Connections are plaintext unless opts
// supply transport credentials.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(MaxMessageSize),
			grpc.MaxCallSendMsgSize(MaxMessageSize),
		),
	}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", engine.ErrEngineUnavailable, addr, err)
	}
	return NewClient(conn), nil
}

// NewClient wraps an existing connection.
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{
		conn:       conn,
		health:     healthpb.NewHealthClient(conn),
		maxMsgSize: MaxMessageSize,
		logger:     logger.Default,
	}
}

// SetTimeout bounds each Run call. Zero means no limit.
func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
}

// SetLogger sets the client's logger
func (c *Client) SetLogger(l *slog.Logger) {
	c.logger = l
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Name returns the backend name.
func (c *Client) Name() string {
	return Name
}

// Check asks the host whether the engine service is serving.
func (c *Client) Check(ctx context.Context) error {
	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return fmt.Errorf("%w: health check: %v", engine.ErrEngineUnavailable, err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("%w: engine status %s", engine.ErrEngineUnavailable, resp.GetStatus())
	}
	return nil
}

// Run sends cfg to the host and blocks until the remote run loop returns.
func (c *Client) Run(ctx context.Context, cfg *engine.Config) (*models.RunResult, error) {
	req, err := engine.Manifest(cfg)
	if err != nil {
		return nil, err
	}
	if size := proto.Size(req); size > c.maxMsgSize {
		return nil, fmt.Errorf("%w: manifest is %d bytes, limit is %d", engine.ErrInvalidConfig, size, c.maxMsgSize)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.Check(ctx); err != nil {
		return nil, err
	}

	log := c.logger.With("engine", Name, "run_id", cfg.RunID, "target", c.conn.Target())
	log.Info("submitting run", "until", cfg.Until)

	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, RunMethod, req, resp); err != nil {
		log.Error("remote run failed", "error", err)
		return nil, errorFromStatus(err)
	}

	result := resultFromStruct(resp)
	if result.Engine == "" {
		result.Engine = Name
	}
	log.Info("remote run finished", "status", result.Status, "files", len(result.OutputFiles))
	return result, nil
}
