package remote

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"playsync/internal/logging"
	"playsync/internal/model"
)

// EngineConfig controls the HTTP engine's retry and timeout behavior.
type EngineConfig struct {
	MaxRetries    int
	RetryCooldown float64 // seconds before the first retry
	RetryExponent float64 // backoff multiplier per attempt
	FetchTimeout  time.Duration
}

// Engine is the default download engine: it fetches an item's source URL
// over HTTP into the destination directory. More capable engines (external
// extractors, transcoders) satisfy the same syncer contract; the
// orchestrator treats whichever engine it is given as opaque.
type Engine struct {
	client *Client
	cfg    EngineConfig
	logger *slog.Logger
}

// NewEngine creates an HTTP download engine.
func NewEngine(client *Client, cfg EngineConfig, logger *slog.Logger) *Engine {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 5 * time.Minute
	}
	return &Engine{
		client: client,
		cfg:    cfg,
		logger: logging.WithComponent(logger, "engine"),
	}
}

// Fetch downloads one item into destDir, retrying transient failures with
// exponential backoff. Every attempt is bounded by the configured fetch
// timeout, so a single item can never stall the whole run.
func (e *Engine) Fetch(ctx context.Context, item model.PlaylistItem, format model.Format, destDir string) (model.FetchResult, error) {
	if item.SourceURL == "" {
		return model.FetchResult{}, fmt.Errorf("item %s has no source url", item.RemoteID)
	}

	destPath := model.DestPath(destDir, item.Title, format)

	var lastErr error
	for tries := 0; tries < e.cfg.MaxRetries; tries++ {
		attemptCtx, cancel := context.WithTimeout(ctx, e.cfg.FetchTimeout)
		written, err := e.client.DownloadFile(attemptCtx, item.SourceURL, destPath)
		cancel()

		if err == nil {
			e.logger.Debug("fetched item",
				slog.String("remote_id", item.RemoteID),
				slog.Int64("bytes", written))
			return model.FetchResult{Path: destPath, Size: written}, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			break
		}
		e.logger.Warn("fetch attempt failed",
			slog.String("remote_id", item.RemoteID),
			slog.Int("attempt", tries+1),
			slog.Int("max_attempts", e.cfg.MaxRetries),
			slog.Any("error", err))
		e.waitForRetry(ctx, tries)
	}

	return model.FetchResult{}, fmt.Errorf("fetch %s: %w", item.RemoteID, lastErr)
}

func (e *Engine) waitForRetry(ctx context.Context, tries int) {
	cooldown := e.cfg.RetryCooldown * math.Pow(e.cfg.RetryExponent, float64(tries))
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(cooldown * float64(time.Second))):
	}
}
