package cli

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"task-assistant/internal/server"
)

// storeCheckInterval is how often serve pings the store.
const storeCheckInterval = 30 * time.Second

// ServeCommand runs the HTTP and WebSocket server until ctx is cancelled.
type ServeCommand struct {
	rt       *Runtime
	gatherer prometheus.Gatherer
	interval time.Duration
}

// NewServeCommand creates a serve command over an assembled runtime.
func NewServeCommand(rt *Runtime, gatherer prometheus.Gatherer) *ServeCommand {
	return &ServeCommand{rt: rt, gatherer: gatherer, interval: storeCheckInterval}
}

func (c *ServeCommand) Execute(ctx context.Context, _ []string) error {
	srv := server.New(c.rt.API, c.rt.Hub, c.rt.Config.Server,
		server.WithLogger(c.rt.Logger),
		server.WithGatherer(c.gatherer),
	)

	c.rt.Logger.Info("starting task assistant",
		"addr", c.rt.Config.ListenAddr(),
		"driver", c.rt.Config.Database.Driver,
		"classifier", c.rt.Config.Classifier.Provider,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		c.watchStore(gctx)
		return nil
	})
	return g.Wait()
}

// watchStore logs when the store stops answering pings.
func (c *ServeCommand) watchStore(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, c.rt.Config.Database.QueryTimeout)
			if err := c.rt.Store.Ping(pingCtx); err != nil && ctx.Err() == nil {
				c.rt.Logger.Warn("store ping failed", "error", err)
			}
			cancel()
		}
	}
}
