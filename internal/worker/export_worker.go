package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hotelier/internal/database"
	"hotelier/internal/domain"
	"hotelier/internal/metrics"
	"hotelier/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// BookingExporter writes one booking into the local report file.
type BookingExporter interface {
	AppendBooking(details *models.BookingDetails) error
}

// ExportWorker drains the export_queue. Tasks are persisted in sqlite
// first, so a crash between enqueue and processing loses nothing; redis
// only accelerates pickup. Failed tasks back off exponentially and land
// in a dead-letter list after the retry budget.
type ExportWorker struct {
	db            *database.DB
	exporter      BookingExporter
	sheets        domain.SheetsWriter
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan models.ExportTask
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	batchSize     int
	log           zerolog.Logger
}

func NewExportWorker(db *database.DB, exporter BookingExporter, sheets domain.SheetsWriter, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *ExportWorker {
	return &ExportWorker{
		db:            db,
		exporter:      exporter,
		sheets:        sheets,
		redis:         redisClient,
		retryPolicy:   retry.withDefaults(),
		queue:         make(chan models.ExportTask, 128),
		redisQueueKey: "exports:queue",
		deadLetterKey: "exports:deadletter",
		pollInterval:  2 * time.Second,
		batchSize:     20,
		log:           logger.With().Str("component", "export_worker").Logger(),
	}
}

// EnqueueTask persists the task and schedules it via redis or the local
// channel. The sqlite row is the source of truth either way.
func (w *ExportWorker) EnqueueTask(ctx context.Context, taskType string, bookingID int64, details *models.BookingDetails) error {
	if taskType == "" {
		return errors.New("task type is required")
	}
	if bookingID == 0 {
		return errors.New("booking id is required")
	}

	payloadBytes, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	task := models.ExportTask{
		TaskType:  taskType,
		BookingID: bookingID,
		Payload:   string(payloadBytes),
		Status:    "pending",
	}
	if err := w.db.CreateExportTask(ctx, &task); err != nil {
		return fmt.Errorf("persist export task: %w", err)
	}

	if w.redis != nil {
		if err := w.pushRedis(ctx, task); err != nil {
			w.log.Warn().Err(err).Msg("redis push failed, falling back to local queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- task:
	default:
		w.log.Warn().Int64("task_id", task.ID).Msg("local queue full, task left for polling")
	}
	return nil
}

// Start runs the consume loop until ctx is cancelled.
func (w *ExportWorker) Start(ctx context.Context) {
	w.log.Info().Msg("export worker started")
	defer w.log.Info().Msg("export worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, &t)
			continue
		}

		if t, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, &t)
			continue
		}

		tasks, err := w.db.GetPendingExportTasks(ctx, w.batchSize)
		if err != nil {
			w.log.Error().Err(err).Msg("failed to fetch pending export tasks")
			w.sleep(ctx)
			continue
		}
		if len(tasks) == 0 {
			w.sleep(ctx)
			continue
		}
		for i := range tasks {
			w.processTask(ctx, &tasks[i])
		}
	}
}

func (w *ExportWorker) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(w.pollInterval):
	}
}

func (w *ExportWorker) tryLocalQueue() (models.ExportTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return models.ExportTask{}, false
	}
}

func (w *ExportWorker) tryRedis(ctx context.Context) (models.ExportTask, bool) {
	if w.redis == nil {
		return models.ExportTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && !errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			w.log.Warn().Err(err).Msg("redis BRPOP error")
		}
		return models.ExportTask{}, false
	}
	if len(res) != 2 {
		return models.ExportTask{}, false
	}
	var task models.ExportTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.log.Warn().Err(err).Msg("failed to decode redis task")
		return models.ExportTask{}, false
	}
	return task, true
}

func (w *ExportWorker) processTask(ctx context.Context, task *models.ExportTask) {
	var details models.BookingDetails
	if err := json.Unmarshal([]byte(task.Payload), &details); err != nil {
		w.failTask(ctx, task, fmt.Errorf("decode payload: %w", err))
		return
	}

	if err := w.handleTask(ctx, task.TaskType, &details); err != nil {
		w.retryOrFail(ctx, task, err)
		return
	}

	if err := w.db.UpdateExportTaskStatus(ctx, task.ID, "completed", "", nil); err != nil {
		w.log.Error().Err(err).Int64("task_id", task.ID).Msg("failed to mark task completed")
	}
	metrics.IncExportTask("completed")
}

func (w *ExportWorker) handleTask(ctx context.Context, taskType string, details *models.BookingDetails) error {
	switch taskType {
	case models.TaskBookingExport:
		if details.Booking.ID == 0 {
			return errors.New("booking payload missing")
		}
		if err := w.exporter.AppendBooking(details); err != nil {
			return fmt.Errorf("xlsx export: %w", err)
		}
		if w.sheets != nil {
			if err := w.sheets.AppendBooking(ctx, details); err != nil {
				return fmt.Errorf("sheets export: %w", err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown task type: %s", taskType)
	}
}

func (w *ExportWorker) retryOrFail(ctx context.Context, task *models.ExportTask, cause error) {
	attempt := task.RetryCount + 1
	if attempt >= w.retryPolicy.MaxRetries {
		w.failTask(ctx, task, cause)
		return
	}

	nextTime := time.Now().Add(w.retryPolicy.NextDelay(attempt))
	if err := w.db.UpdateExportTaskStatus(ctx, task.ID, "retry", cause.Error(), &nextTime); err != nil {
		w.log.Error().Err(err).Int64("task_id", task.ID).Msg("failed to mark task for retry")
	}
	metrics.IncExportTask("retry")
}

func (w *ExportWorker) failTask(ctx context.Context, task *models.ExportTask, cause error) {
	if err := w.db.UpdateExportTaskStatus(ctx, task.ID, "failed", cause.Error(), nil); err != nil {
		w.log.Error().Err(err).Int64("task_id", task.ID).Msg("failed to mark task failed")
	}
	metrics.IncExportTask("failed")
	w.pushDeadLetter(ctx, task)
}

func (w *ExportWorker) pushRedis(ctx context.Context, task models.ExportTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *ExportWorker) pushDeadLetter(ctx context.Context, task *models.ExportTask) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(task)
	if err != nil {
		w.log.Error().Err(err).Int64("task_id", task.ID).Msg("failed to encode dead-letter task")
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.log.Error().Err(err).Int64("task_id", task.ID).Msg("failed to push dead-letter task")
	}
}
