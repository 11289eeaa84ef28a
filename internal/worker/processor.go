// Package worker consumes recording:registered tasks.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"github.com/dharsanguruparan/watchme-vault/internal/queue"
	"github.com/dharsanguruparan/watchme-vault/internal/s3storage"
)

// ObjectStat reports metadata about a stored object.
type ObjectStat interface {
	Stat(ctx context.Context, key string) (s3storage.ObjectInfo, error)
}

// Processor is plugged into the asynq worker loop. For every registered
// recording it confirms the object is in the store; this is where processors
// hook in.
type Processor struct {
	store ObjectStat
}

// NewProcessor constructs a worker processor.
func NewProcessor(store ObjectStat) *Processor {
	return &Processor{store: store}
}

// Handler registers the task handlers.
func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.RecordingRegisteredTask, p.handleRegistered)
	return mux
}

func (p *Processor) handleRegistered(ctx context.Context, task *asynq.Task) error {
	var payload queue.RegisteredPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.FilePath == "" || payload.DeviceID == "" {
		return fmt.Errorf("payload without device or file path: %w", asynq.SkipRetry)
	}
	logger := log.With().
		Str("device_id", payload.DeviceID).
		Str("recorded_at", payload.RecordedAt).
		Str("key", payload.FilePath).
		Logger()

	info, err := p.store.Stat(ctx, payload.FilePath)
	if err != nil {
		if errors.Is(err, s3storage.ErrObjectNotFound) {
			logger.Error().Err(err).Msg("registered recording has no object")
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("stat recording: %w", err)
	}
	logger.Info().Int64("bytes", info.Size).Time("last_modified", info.LastModified).Msg("recording available")
	return nil
}
