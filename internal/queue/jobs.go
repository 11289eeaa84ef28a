// Package queue publishes recording events to Redis through asynq so
// downstream processors can pick up new uploads.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/dharsanguruparan/watchme-vault/internal/model"
)

const (
	// RecordingRegisteredTask is enqueued once per newly registered recording.
	RecordingRegisteredTask = "recording:registered"

	maxRetry = 5
)

// RegisteredPayload identifies the recording and where its bytes live.
type RegisteredPayload struct {
	DeviceID   string `json:"device_id"`
	RecordedAt string `json:"recorded_at"`
	FilePath   string `json:"file_path"`
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// NewRegisteredTask encodes payload as a recording:registered task.
func NewRegisteredTask(payload RegisteredPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(RecordingRegisteredTask, data, asynq.MaxRetry(maxRetry)), nil
}

// EnqueueRegistered enqueues a recording:registered task.
func EnqueueRegistered(ctx context.Context, client Enqueuer, payload RegisteredPayload) error {
	task, err := NewRegisteredTask(payload)
	if err != nil {
		return err
	}
	if _, err := client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue %s task: %w", RecordingRegisteredTask, err)
	}
	return nil
}

// Publisher announces registered recordings on the queue.
type Publisher struct {
	client Enqueuer
}

// NewPublisher constructs a Publisher backed by client.
func NewPublisher(client Enqueuer) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) RecordingRegistered(ctx context.Context, rec model.Recording) error {
	return EnqueueRegistered(ctx, p.client, RegisteredPayload{
		DeviceID:   rec.DeviceID,
		RecordedAt: rec.RecordedAt.String(),
		FilePath:   rec.FilePath,
	})
}

// RedisOpt builds asynq connection options.
func RedisOpt(addr, password string, db int) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: addr, Password: password, DB: db}
}
