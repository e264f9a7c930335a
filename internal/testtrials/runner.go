package testtrials

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/okian/freethrow/pkg/logger"
)

// Run generates the trials, writes them and, when cfg.BaseURL is set,
// asks a running service to analyze them.
func Run(ctx context.Context, cfg *Config) (Stats, error) {
	start := time.Now()
	logger.Get().Info(ctx, "generating synthetic trials",
		logger.String("participant", cfg.ParticipantID),
		logger.Int("trials", cfg.Trials),
		logger.Int("frames", cfg.Frames),
		logger.Float64("madeRatio", cfg.MadeRatio),
		logger.Float64("gapRate", cfg.GapRate),
	)

	docs, stats, err := Generate(cfg)
	if err != nil {
		return Stats{}, fmt.Errorf("trial generation failed: %w", err)
	}

	stats.Files, err = Write(ctx, cfg, docs)
	if err != nil {
		return stats, fmt.Errorf("trial write failed: %w", err)
	}

	if cfg.BaseURL != "" {
		if err := verify(ctx, cfg, stats); err != nil {
			return stats, err
		}
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("trials", stats.Trials),
		logger.Int("made", stats.Made),
		logger.Int("missed", stats.Missed),
		logger.Int("frames", stats.Frames),
		logger.Int("gaps", stats.Gaps),
		logger.Duration("duration", time.Since(start)),
	)
	return stats, nil
}

type analyzeResponse struct {
	ID     string `json:"id"`
	Trials int    `json:"trials"`
	Made   int    `json:"made"`
	Missed int    `json:"missed"`
}

// verify triggers an analysis run and compares the service's counts with stats.
func verify(ctx context.Context, cfg *Config, stats Stats) error {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	url := strings.TrimRight(cfg.BaseURL, "/") + "/analyze"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: analyze returned status %d", ErrVerify, resp.StatusCode)
	}
	var got analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrVerify, err)
	}
	if got.Trials != stats.Trials || got.Made != stats.Made || got.Missed != stats.Missed {
		return fmt.Errorf("%w: service saw %d trials (%d made, %d missed), generated %d (%d made, %d missed)",
			ErrVerify, got.Trials, got.Made, got.Missed, stats.Trials, stats.Made, stats.Missed)
	}

	logger.Get().Info(ctx, "service analysis verified", logger.String("run_id", got.ID))
	return nil
}
