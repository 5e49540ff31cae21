// Package neo implements the graph store seam over the Neo4j bolt driver
package neo

import (
	"context"
	"regexp"
	"time"

	perr "touchline/internal/platform/errors"
	"touchline/internal/platform/logger"
	"touchline/internal/platform/store"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Config configures the Neo4j client
type Config struct {
	// URI is the bolt/neo4j scheme endpoint, e.g. neo4j://localhost:7687
	URI      string
	Username string
	Password string

	// Database is the server-side database name ("" = default)
	Database string

	// GraphLabel is the dataset partition label every query scopes on,
	// e.g. a club identifier. Must be a plain identifier since labels
	// cannot be bound as parameters
	GraphLabel string

	// QueryTimeout bounds every ExecuteQuery call; exceeding it surfaces
	// as a query timeout, never a hang
	QueryTimeout time.Duration

	// SlowQueryMs logs queries slower than this at warn (0 disables)
	SlowQueryMs int
}

// labels cannot be parameterized in Cypher, so the one we interpolate is
// locked down hard
var labelRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Client talks to Neo4j and satisfies store.Querier
type Client struct {
	drv neo4j.DriverWithContext
	cfg Config
	log logger.Logger
}

// Open validates cfg and constructs a Client. Connectivity is verified
// lazily via Ping so a cold database does not block process start
func Open(ctx context.Context, cfg Config, log logger.Logger) (*Client, error) {
	if cfg.URI == "" {
		return nil, perr.InvalidArgf("neo: missing URI")
	}
	if !labelRe.MatchString(cfg.GraphLabel) {
		return nil, perr.InvalidArgf("neo: graph label %q is not a valid identifier", cfg.GraphLabel)
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 15 * time.Second
	}

	drv, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeQueryConnection, "neo: driver init failed")
	}
	return &Client{drv: drv, cfg: cfg, log: log}, nil
}

// Opener adapts Open to the store seam
func Opener(cfg Config) store.Opener {
	return func(ctx context.Context, s *store.Store) (store.Querier, error) {
		return Open(ctx, cfg, s.Log)
	}
}

// GraphLabel returns the dataset partition label
func (c *Client) GraphLabel() string { return c.cfg.GraphLabel }

// ExecuteQuery runs a read query and returns all records keyed by return alias
//
// The timeout context is the pipeline's single suspension point; a caller
// cancellation is honored at the same seam. All failures come back
// classified (timeout/syntax/connection/graph), never raw driver errors
func (c *Client) ExecuteQuery(ctx context.Context, query string, params map[string]any) ([]store.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.QueryTimeout)
	defer cancel()

	session := c.drv.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: c.cfg.Database,
	})
	defer func() {
		if err := session.Close(ctx); err != nil {
			c.log.Warn().Err(err).Msg("neo session close failed")
		}
	}()

	start := time.Now()
	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		raw, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		recs := make([]store.Record, 0, len(raw))
		for _, r := range raw {
			recs = append(recs, store.Record(r.AsMap()))
		}
		return recs, nil
	})
	elapsed := time.Since(start)
	if c.cfg.SlowQueryMs > 0 && elapsed > time.Duration(c.cfg.SlowQueryMs)*time.Millisecond {
		c.log.Warn().Dur("elapsed", elapsed).Str("query", firstLine(query)).Msg("slow graph query")
	}
	if err != nil {
		return nil, perr.ClassifyGraphErr(err)
	}
	recs, _ := out.([]store.Record)
	return recs, nil
}

// Ping verifies connectivity to the server
func (c *Client) Ping(ctx context.Context) error {
	if err := c.drv.VerifyConnectivity(ctx); err != nil {
		return perr.Wrap(err, perr.ErrorCodeQueryConnection, "neo: connectivity check failed")
	}
	return nil
}

// Close releases the driver and its pooled connections
func (c *Client) Close(ctx context.Context) error {
	return c.drv.Close(ctx)
}

func firstLine(q string) string {
	for i := 0; i < len(q); i++ {
		if q[i] == '\n' {
			return q[:i]
		}
	}
	return q
}
