package mongo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 10 * time.Second

// ErrMissingConfig is returned by Acquire when the connection target is not
// configured. It is checked before any network call is attempted.
var ErrMissingConfig = errors.New("mongo: missing connection configuration")

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// DialFunc establishes a client and selects a database. Swappable in tests.
type DialFunc func(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error)

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// attempt is a single in-flight connection attempt shared by all callers that
// arrive while it is running.
type attempt struct {
	done   chan struct{}
	client *mongo.Client
	db     *mongo.Database
	err    error
}

// Manager owns the process-wide database handle. The connection is
// established lazily on first Acquire; concurrent first-use callers share one
// dial instead of issuing duplicates. A failed attempt is not cached, so a
// later caller retries - retry policy stays with the caller.
type Manager struct {
	cfg  Config
	dial DialFunc

	mu       sync.Mutex
	client   *mongo.Client
	db       *mongo.Database
	inflight *attempt
}

func NewManager(cfg Config) *Manager {
	return &Manager{cfg: cfg, dial: Connect}
}

// Acquire returns the shared database handle, dialing on first use. It is
// safe to call from any number of concurrent operations.
func (m *Manager) Acquire(ctx context.Context) (*mongo.Database, error) {
	m.mu.Lock()
	if m.db != nil {
		db := m.db
		m.mu.Unlock()
		return db, nil
	}

	if m.cfg.URI == "" || m.cfg.Database == "" {
		m.mu.Unlock()
		return nil, ErrMissingConfig
	}

	att := m.inflight
	if att == nil {
		att = &attempt{done: make(chan struct{})}
		m.inflight = att
		go m.run(att)
	}
	m.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-att.done:
	}

	if att.err != nil {
		return nil, att.err
	}
	return att.db, nil
}

// run performs the dial on a background context; the attempt is bounded by
// the dial's own timeout, not by whichever request happened to trigger it.
func (m *Manager) run(att *attempt) {
	client, db, err := m.dial(context.Background(), m.cfg)

	att.client, att.db, att.err = client, db, err

	m.mu.Lock()
	if err == nil {
		m.client, m.db = client, db
	}
	m.inflight = nil
	m.mu.Unlock()

	close(att.done)
}

// Close disconnects the underlying client if a connection was established.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	client := m.client
	m.client, m.db = nil, nil
	m.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}
