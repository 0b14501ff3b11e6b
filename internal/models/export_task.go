package models

import "time"

// TaskBookingExport appends a booking to the XLSX report and, when
// configured, to the Google Sheets mirror. The constant lives here so the
// producer side does not import the worker package just for the name.
const TaskBookingExport = "booking_export"

// ExportTask is a durable unit of work for the report export worker.
type ExportTask struct {
	ID          int64      `json:"id"`
	TaskType    string     `json:"task_type"`
	BookingID   int64      `json:"booking_id"`
	Payload     string     `json:"payload"`
	Status      string     `json:"status"` // pending, retry, completed, failed
	RetryCount  int        `json:"retry_count"`
	LastError   string     `json:"last_error"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	NextRetryAt *time.Time `json:"next_retry_at,omitempty"`
}
