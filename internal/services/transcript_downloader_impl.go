package services

import (
	"context"
	"fmt"
	"time"

	"github.com/cijsubs/cijsubs/internal/config"
	"github.com/cijsubs/cijsubs/internal/idspec"
	"github.com/cijsubs/cijsubs/internal/metrics"
	"github.com/cijsubs/cijsubs/internal/models"
)

// DefaultTranscriptDownloader implements TranscriptDownloader with a single
// sequential worker and a fixed pause between API requests
type DefaultTranscriptDownloader struct {
	api       API
	store     TranscriptStore
	converter TranscriptConverter
	retry     RetryOptions
	pause     time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
	onFailure func(id int, err error)
}

// Option customizes a DefaultTranscriptDownloader
type Option func(*DefaultTranscriptDownloader)

// WithFailureHook registers fn to be called for every video that could not be downloaded
func WithFailureHook(fn func(id int, err error)) Option {
	return func(d *DefaultTranscriptDownloader) {
		d.onFailure = fn
	}
}

// WithConverter replaces the default transcript converter
func WithConverter(c TranscriptConverter) Option {
	return func(d *DefaultTranscriptDownloader) {
		d.converter = c
	}
}

// NewTranscriptDownloader creates a downloader using the retry and pause settings of cfg
func NewTranscriptDownloader(api API, store TranscriptStore, cfg *config.Config, opts ...Option) TranscriptDownloader {
	d := &DefaultTranscriptDownloader{
		api:       api,
		store:     store,
		converter: NewTranscriptConverter(),
		retry:     RetryOptionsFromConfig(cfg),
		pause:     cfg.Pause,
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run downloads every targeted video that is not stored yet. The catalog is
// only requested when at least one video needs downloading.
func (d *DefaultTranscriptDownloader) Run(ctx context.Context, spec idspec.Spec) (*Summary, error) {
	logger := config.GetLogger()
	summary := &Summary{
		Failed:   make(map[int]error),
		Outcomes: make(map[int]*Outcome),
	}

	var pending []int
	if !spec.All {
		pending = d.filterStored(spec.IDs, summary)
		if len(pending) == 0 {
			logger.Info().Int("skipped", len(summary.Skipped)).Msg("Every requested video is already downloaded")
			return summary, nil
		}
	}

	catalog, outcome := fetchWithBackoff(ctx, d.retry, 0, "catalog", d.api.GetCatalog)
	if outcome.State != StateSucceeded {
		return summary, fmt.Errorf("failed to fetch catalog: %w", outcome.Err)
	}

	if spec.All {
		all := make(map[int]struct{}, len(catalog.Videos))
		for id := range catalog.Videos {
			all[id] = struct{}{}
		}
		targets := idspec.FromMap(all)
		logger.Info().Int("count", len(targets)).Msg("Resolved every available video")
		pending = d.filterStored(targets, summary)
	}

	logger.Info().
		Int("pending", len(pending)).
		Int("skipped", len(summary.Skipped)).
		Msg("Starting downloads")

	// Every transcript request follows another request, the catalog included,
	// so each one is preceded by the pause.
	for _, id := range pending {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		video, ok := catalog.Videos[id]
		if !ok {
			reason := "not listed in the catalog"
			if _, listed := catalog.Listed[id]; listed {
				reason = "no transcript available"
			}
			logger.Warn().Int("id", id).Str("reason", reason).Msg("Video unavailable, skipping")
			summary.Unavailable = append(summary.Unavailable, id)
			metrics.TranscriptDownloadsTotal.WithLabelValues(metrics.StatusUnavailable).Inc()
			continue
		}

		if err := d.sleep(ctx, d.pause); err != nil {
			return summary, err
		}

		path, err := d.download(ctx, video, summary)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return summary, ctxErr
		}
		if err != nil {
			summary.Failed[id] = err
			metrics.TranscriptDownloadsTotal.WithLabelValues(metrics.StatusFailed).Inc()
			logger.Error().Err(err).Int("id", id).Msg("Video failed")
			if d.onFailure != nil {
				d.onFailure(id, err)
			}
			continue
		}

		summary.Downloaded = append(summary.Downloaded, id)
		metrics.TranscriptDownloadsTotal.WithLabelValues(metrics.StatusDownloaded).Inc()
		logger.Info().Int("id", id).Str("file", path).Msg("Video done")
	}

	return summary, nil
}

func (d *DefaultTranscriptDownloader) filterStored(ids []int, summary *Summary) []int {
	pending := make([]int, 0, len(ids))
	for _, id := range ids {
		if d.store.Has(id) {
			summary.Skipped = append(summary.Skipped, id)
			metrics.TranscriptDownloadsTotal.WithLabelValues(metrics.StatusSkipped).Inc()
			continue
		}
		pending = append(pending, id)
	}
	return pending
}

func (d *DefaultTranscriptDownloader) download(ctx context.Context, video models.Video, summary *Summary) (string, error) {
	transcript, outcome := fetchWithBackoff(ctx, d.retry, video.ID, "transcript", func(ctx context.Context) (*models.Transcript, error) {
		return d.api.GetTranscript(ctx, video.TranscriptID)
	})
	summary.Outcomes[video.ID] = outcome
	if outcome.State != StateSucceeded {
		return "", outcome.Err
	}

	result := &models.DownloadResult{
		Video:     video,
		WebVTT:    d.converter.ToWebVTT(transcript),
		PlainText: d.converter.ToPlainText(transcript),
	}
	path, err := d.store.Write(result)
	if err != nil {
		return "", fmt.Errorf("failed to store video %d: %w", video.ID, err)
	}
	return path, nil
}

// sleepContext blocks for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
