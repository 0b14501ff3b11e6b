package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"hotelier/internal/database"
	"hotelier/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExporter struct {
	appended []string
	err      error
}

func (f *fakeExporter) AppendBooking(details *models.BookingDetails) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, details.Booking.Reference)
	return nil
}

func setupWorkerDB(t *testing.T) *database.DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestWorker(t *testing.T, db *database.DB, exporter BookingExporter, redisClient *redis.Client, retry RetryPolicy) *ExportWorker {
	t.Helper()
	logger := zerolog.Nop()
	return NewExportWorker(db, exporter, nil, redisClient, retry, &logger)
}

func TestEnqueueTask(t *testing.T) {
	db := setupWorkerDB(t)
	w := newTestWorker(t, db, &fakeExporter{}, nil, RetryPolicy{})
	ctx := context.Background()

	t.Run("validates input", func(t *testing.T) {
		assert.Error(t, w.EnqueueTask(ctx, "", 1, sampleDetails(1, "TESTREF1")))
		assert.Error(t, w.EnqueueTask(ctx, models.TaskBookingExport, 0, sampleDetails(1, "TESTREF1")))
	})

	t.Run("persists to sqlite and the local queue", func(t *testing.T) {
		require.NoError(t, w.EnqueueTask(ctx, models.TaskBookingExport, 1, sampleDetails(1, "TESTREF1")))

		pending, err := db.GetPendingExportTasks(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, models.TaskBookingExport, pending[0].TaskType)

		queued, ok := w.tryLocalQueue()
		require.True(t, ok)
		assert.Equal(t, pending[0].ID, queued.ID)
	})
}

func TestEnqueueTask_Redis(t *testing.T) {
	db := setupWorkerDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	w := newTestWorker(t, db, &fakeExporter{}, client, RetryPolicy{})
	ctx := context.Background()

	require.NoError(t, w.EnqueueTask(ctx, models.TaskBookingExport, 1, sampleDetails(1, "TESTREF1")))

	// The task rides redis, not the local channel.
	_, ok := w.tryLocalQueue()
	assert.False(t, ok)

	raw, err := mr.Lpop(w.redisQueueKey)
	require.NoError(t, err)
	var task models.ExportTask
	require.NoError(t, json.Unmarshal([]byte(raw), &task))
	assert.Equal(t, models.TaskBookingExport, task.TaskType)
	assert.Equal(t, int64(1), task.BookingID)
}

func TestProcessTask_Completes(t *testing.T) {
	db := setupWorkerDB(t)
	exporter := &fakeExporter{}
	w := newTestWorker(t, db, exporter, nil, RetryPolicy{})
	ctx := context.Background()

	require.NoError(t, w.EnqueueTask(ctx, models.TaskBookingExport, 1, sampleDetails(1, "TESTREF1")))
	task, ok := w.tryLocalQueue()
	require.True(t, ok)

	w.processTask(ctx, &task)

	assert.Equal(t, []string{"TESTREF1"}, exporter.appended)

	pending, err := db.GetPendingExportTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "completed task must leave the queue")
}

func TestProcessTask_RetriesThenFails(t *testing.T) {
	db := setupWorkerDB(t)
	exporter := &fakeExporter{err: errors.New("sheet locked")}
	w := newTestWorker(t, db, exporter, nil, RetryPolicy{MaxRetries: 2, InitialDelay: time.Millisecond})
	ctx := context.Background()

	require.NoError(t, w.EnqueueTask(ctx, models.TaskBookingExport, 1, sampleDetails(1, "TESTREF1")))
	task, ok := w.tryLocalQueue()
	require.True(t, ok)

	// First attempt schedules a retry.
	w.processTask(ctx, &task)
	time.Sleep(5 * time.Millisecond)

	pending, err := db.GetPendingExportTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "retry", pending[0].Status)
	assert.Equal(t, 1, pending[0].RetryCount)
	assert.Equal(t, "xlsx export: sheet locked", pending[0].LastError)

	// Second attempt exhausts the budget.
	w.processTask(ctx, &pending[0])

	failed, err := db.GetFailedExportTasks(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, failed[0].ID, task.ID)
}

func TestProcessTask_UnknownType(t *testing.T) {
	db := setupWorkerDB(t)
	w := newTestWorker(t, db, &fakeExporter{}, nil, RetryPolicy{MaxRetries: 1})
	ctx := context.Background()

	payload, err := json.Marshal(sampleDetails(1, "TESTREF1"))
	require.NoError(t, err)
	task := models.ExportTask{TaskType: "reindex", BookingID: 1, Payload: string(payload), Status: "pending"}
	require.NoError(t, db.CreateExportTask(ctx, &task))

	w.processTask(ctx, &task)

	failed, err := db.GetFailedExportTasks(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].LastError, "unknown task type")
}

func TestFailedTaskLandsInDeadLetter(t *testing.T) {
	db := setupWorkerDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	exporter := &fakeExporter{err: errors.New("disk full")}
	w := newTestWorker(t, db, exporter, client, RetryPolicy{MaxRetries: 1})
	ctx := context.Background()

	require.NoError(t, w.EnqueueTask(ctx, models.TaskBookingExport, 1, sampleDetails(1, "TESTREF1")))
	task, ok := w.tryRedis(ctx)
	require.True(t, ok)

	w.processTask(ctx, &task)

	raw, err := mr.Lpop(w.deadLetterKey)
	require.NoError(t, err)
	var dead models.ExportTask
	require.NoError(t, json.Unmarshal([]byte(raw), &dead))
	assert.Equal(t, task.ID, dead.ID)
}
