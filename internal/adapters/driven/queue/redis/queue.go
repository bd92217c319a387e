// Package redis implements the task queue on Redis Streams with a
// sorted set for delayed (scheduled) tasks.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/markprompt/markprompt-core/internal/core/domain"
	"github.com/markprompt/markprompt-core/internal/core/ports/driven"
)

const (
	streamKey     = "markprompt:tasks"
	groupName     = "markprompt:workers"
	scheduledKey  = "markprompt:scheduled"
	taskKeyPrefix = "markprompt:task:"

	// taskTTL bounds how long a completed or failed task record is
	// kept for status checks.
	taskTTL = 24 * time.Hour

	// claimTimeout is how long a task may sit unacked with a dead
	// consumer before another worker claims it.
	claimTimeout = 5 * time.Minute
)

// Queue is a Redis Streams backed task queue.
type Queue struct {
	client   *redis.Client
	consumer string
	logger   *slog.Logger
}

var _ driven.TaskQueue = (*Queue)(nil)

// Config holds Redis queue configuration.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// New creates a Queue and ensures the consumer group exists.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Queue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	q := &Queue{
		client:   client,
		consumer: "worker-" + uuid.NewString(),
		logger:   logger,
	}
	if err := q.ensureGroup(ctx); err != nil {
		return nil, err
	}
	return q, nil
}

// NewWithClient wraps an existing client, for tests.
func NewWithClient(ctx context.Context, client *redis.Client, logger *slog.Logger) (*Queue, error) {
	q := &Queue{
		client:   client,
		consumer: "worker-" + uuid.NewString(),
		logger:   logger,
	}
	if err := q.ensureGroup(ctx); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *Queue) ensureGroup(ctx context.Context) error {
	err := q.client.XGroupCreateMkStream(ctx, streamKey, groupName, "0").Err()
	if err != nil && !isGroupExistsError(err) {
		return fmt.Errorf("creating consumer group: %w", err)
	}
	return nil
}

func taskKey(id string) string {
	return taskKeyPrefix + id
}

func msgKey(id string) string {
	return taskKey(id) + ":msg"
}

// Enqueue stores the task record and either adds it to the stream or,
// when scheduled in the future, parks it in the scheduled set.
func (q *Queue) Enqueue(ctx context.Context, task *domain.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshaling task: %w", err)
	}

	pipe := q.client.Pipeline()
	pipe.Set(ctx, taskKey(task.ID), data, taskTTL)
	if task.ScheduledFor.After(time.Now()) {
		pipe.ZAdd(ctx, scheduledKey, redis.Z{
			Score:  float64(task.ScheduledFor.Unix()),
			Member: task.ID,
		})
	} else {
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: streamKey,
			Values: map[string]any{
				"task_id":    task.ID,
				"type":       string(task.Type),
				"project_id": task.ProjectID,
			},
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("enqueuing task %s: %w", task.ID, err)
	}
	return nil
}

// Dequeue retrieves the next task without blocking.
func (q *Queue) Dequeue(ctx context.Context) (*domain.Task, error) {
	return q.dequeue(ctx, 0)
}

// DequeueWithTimeout retrieves the next task, blocking up to timeout
// seconds when the stream is empty.
func (q *Queue) DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error) {
	return q.dequeue(ctx, time.Duration(timeout)*time.Second)
}

func (q *Queue) dequeue(ctx context.Context, block time.Duration) (*domain.Task, error) {
	if err := q.promoteScheduledTasks(ctx); err != nil {
		q.logger.Warn("promoting scheduled tasks", "error", err)
	}

	if task, err := q.claimAbandonedTask(ctx); err != nil {
		q.logger.Warn("claiming abandoned tasks", "error", err)
	} else if task != nil {
		return task, nil
	}

	args := &redis.XReadGroupArgs{
		Group:    groupName,
		Consumer: q.consumer,
		Streams:  []string{streamKey, ">"},
		Count:    1,
	}
	if block > 0 {
		args.Block = block
	} else {
		// Non-blocking reads still need Block set; -1 means do
		// not wait at all.
		args.Block = -1
	}

	streams, err := q.client.XReadGroup(ctx, args).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.DeadlineExceeded) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading from stream: %w", err)
	}
	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return nil, nil
	}

	return q.loadMessage(ctx, streams[0].Messages[0])
}

// loadMessage resolves a stream message to its task record, marks it
// processing and remembers the message ID for later ack.
func (q *Queue) loadMessage(ctx context.Context, msg redis.XMessage) (*domain.Task, error) {
	taskID, _ := msg.Values["task_id"].(string)
	if taskID == "" {
		// Malformed entry; drop it so it does not wedge the group.
		q.client.XAck(ctx, streamKey, groupName, msg.ID)
		q.client.XDel(ctx, streamKey, msg.ID)
		return nil, nil
	}

	task, err := q.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Record expired out from under the stream entry.
			q.client.XAck(ctx, streamKey, groupName, msg.ID)
			q.client.XDel(ctx, streamKey, msg.ID)
			return nil, nil
		}
		return nil, err
	}

	if task.Status == domain.TaskStatusCancelled {
		q.client.XAck(ctx, streamKey, groupName, msg.ID)
		q.client.XDel(ctx, streamKey, msg.ID)
		return nil, nil
	}

	task.MarkProcessing()
	if err := q.saveTask(ctx, task); err != nil {
		return nil, err
	}
	if err := q.client.Set(ctx, msgKey(taskID), msg.ID, taskTTL).Err(); err != nil {
		return nil, fmt.Errorf("storing message id for task %s: %w", taskID, err)
	}
	return task, nil
}

// promoteScheduledTasks moves due tasks from the scheduled set onto
// the stream.
func (q *Queue) promoteScheduledTasks(ctx context.Context) error {
	now := fmt.Sprintf("%d", time.Now().Unix())
	ids, err := q.client.ZRangeByScore(ctx, scheduledKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   now,
		Count: 10,
	}).Result()
	if err != nil {
		return err
	}

	for _, id := range ids {
		// Only the caller that removes the member promotes it,
		// so concurrent workers do not double-enqueue.
		removed, err := q.client.ZRem(ctx, scheduledKey, id).Result()
		if err != nil || removed == 0 {
			continue
		}
		task, err := q.GetTask(ctx, id)
		if err != nil || task.Status == domain.TaskStatusCancelled {
			continue
		}
		err = q.client.XAdd(ctx, &redis.XAddArgs{
			Stream: streamKey,
			Values: map[string]any{
				"task_id":    task.ID,
				"type":       string(task.Type),
				"project_id": task.ProjectID,
			},
		}).Err()
		if err != nil {
			return err
		}
	}
	return nil
}

// claimAbandonedTask takes over a pending entry whose consumer has
// been idle past claimTimeout.
func (q *Queue) claimAbandonedTask(ctx context.Context) (*domain.Task, error) {
	pending, err := q.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: streamKey,
		Group:  groupName,
		Start:  "-",
		End:    "+",
		Count:  10,
		Idle:   claimTimeout,
	}).Result()
	if err != nil {
		if isStreamNotExistsError(err) {
			return nil, nil
		}
		return nil, err
	}

	for _, entry := range pending {
		msgs, err := q.client.XClaim(ctx, &redis.XClaimArgs{
			Stream:   streamKey,
			Group:    groupName,
			Consumer: q.consumer,
			MinIdle:  claimTimeout,
			Messages: []string{entry.ID},
		}).Result()
		if err != nil || len(msgs) == 0 {
			continue
		}
		task, err := q.loadMessage(ctx, msgs[0])
		if err != nil {
			return nil, err
		}
		if task != nil {
			q.logger.Info("claimed abandoned task", "task_id", task.ID, "previous_consumer", entry.Consumer)
			return task, nil
		}
	}
	return nil, nil
}

// Ack acknowledges a task and marks it completed.
func (q *Queue) Ack(ctx context.Context, taskID string) error {
	task, err := q.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	if err := q.ackMessage(ctx, taskID); err != nil {
		return err
	}

	task.MarkCompleted()
	return q.saveTask(ctx, task)
}

// Nack records a failure. The task is rescheduled with backoff when
// retries remain, otherwise marked failed.
func (q *Queue) Nack(ctx context.Context, taskID string, reason string) error {
	task, err := q.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	if err := q.ackMessage(ctx, taskID); err != nil {
		return err
	}

	if task.CanRetry() {
		task.Retry(reason)
		if err := q.saveTask(ctx, task); err != nil {
			return err
		}
		return q.client.ZAdd(ctx, scheduledKey, redis.Z{
			Score:  float64(task.ScheduledFor.Unix()),
			Member: task.ID,
		}).Err()
	}

	task.MarkFailed(reason)
	return q.saveTask(ctx, task)
}

// ackMessage removes the stream entry recorded for the task, if any.
func (q *Queue) ackMessage(ctx context.Context, taskID string) error {
	msgID, err := q.client.Get(ctx, msgKey(taskID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("reading message id for task %s: %w", taskID, err)
	}
	pipe := q.client.Pipeline()
	pipe.XAck(ctx, streamKey, groupName, msgID)
	pipe.XDel(ctx, streamKey, msgID)
	pipe.Del(ctx, msgKey(taskID))
	_, err = pipe.Exec(ctx)
	return err
}

// GetTask retrieves a task record by ID.
func (q *Queue) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	data, err := q.client.Get(ctx, taskKey(taskID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reading task %s: %w", taskID, err)
	}
	var task domain.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("unmarshaling task %s: %w", taskID, err)
	}
	return &task, nil
}

// CancelTask marks a pending task cancelled. Processing and finished
// tasks cannot be cancelled.
func (q *Queue) CancelTask(ctx context.Context, taskID string) error {
	task, err := q.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if task.Status != domain.TaskStatusPending {
		return fmt.Errorf("task %s is %s: %w", taskID, task.Status, domain.ErrInvalidInput)
	}

	task.Status = domain.TaskStatusCancelled
	task.UpdatedAt = time.Now()
	if err := q.saveTask(ctx, task); err != nil {
		return err
	}
	// Parked tasks can be removed outright; stream entries are
	// skipped at dequeue time based on the status.
	return q.client.ZRem(ctx, scheduledKey, taskID).Err()
}

func (q *Queue) saveTask(ctx context.Context, task *domain.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshaling task %s: %w", task.ID, err)
	}
	if err := q.client.Set(ctx, taskKey(task.ID), data, taskTTL).Err(); err != nil {
		return fmt.Errorf("saving task %s: %w", task.ID, err)
	}
	return nil
}

// Stats reports pending, processing and terminal counts. Terminal
// counts come from scanning live task records, so they only reflect
// tasks within the retention window.
func (q *Queue) Stats(ctx context.Context) (*driven.QueueStats, error) {
	stats := &driven.QueueStats{}

	streamLen, err := q.client.XLen(ctx, streamKey).Result()
	if err != nil && !isStreamNotExistsError(err) {
		return nil, fmt.Errorf("reading stream length: %w", err)
	}
	scheduled, err := q.client.ZCard(ctx, scheduledKey).Result()
	if err != nil {
		return nil, fmt.Errorf("reading scheduled count: %w", err)
	}

	groups, err := q.client.XInfoGroups(ctx, streamKey).Result()
	if err != nil && !isStreamNotExistsError(err) {
		return nil, fmt.Errorf("reading group info: %w", err)
	}
	var unacked int64
	for _, g := range groups {
		if g.Name == groupName {
			unacked = g.Pending
		}
	}

	stats.PendingCount = streamLen - unacked + scheduled
	if stats.PendingCount < 0 {
		stats.PendingCount = 0
	}

	var cursor uint64
	for {
		keys, next, err := q.client.Scan(ctx, cursor, taskKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scanning task records: %w", err)
		}
		for _, key := range keys {
			if strings.HasSuffix(key, ":msg") {
				continue
			}
			data, err := q.client.Get(ctx, key).Bytes()
			if err != nil {
				continue
			}
			var task domain.Task
			if err := json.Unmarshal(data, &task); err != nil {
				continue
			}
			switch task.Status {
			case domain.TaskStatusProcessing:
				stats.ProcessingCount++
			case domain.TaskStatusCompleted:
				stats.CompletedCount++
			case domain.TaskStatusFailed:
				stats.FailedCount++
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return stats, nil
}

// Ping checks connectivity.
func (q *Queue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// Close releases the client connection.
func (q *Queue) Close() error {
	return q.client.Close()
}

func isGroupExistsError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "BUSYGROUP")
}

func isStreamNotExistsError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such key")
}
