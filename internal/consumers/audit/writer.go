package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	cbigquery "cloud.google.com/go/bigquery"
	"github.com/sethvargo/go-retry"

	pkgbigquery "github.com/okestore/storefront-sync/pkg/bigquery"
)

const (
	defaultBatchSize      = 1
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 250 * time.Millisecond
	defaultMaximumBackoff = 2 * time.Second
)

// Row mirrors the verification_audit BigQuery schema.
type Row struct {
	EventID          string             `bigquery:"event_id"`
	OccurredAt       time.Time          `bigquery:"occurred_at"`
	RequestID        string             `bigquery:"request_id"`
	VerificationType string             `bigquery:"verification_type"`
	UserEmail        *string            `bigquery:"user_email"`
	UserPhone        *string            `bigquery:"user_phone"`
	PlanName         *string            `bigquery:"plan_name"`
	ActorID          *string            `bigquery:"actor_id"`
	Payload          cbigquery.NullJSON `bigquery:"payload"`
}

// rowSchema is used only when the worker creates a missing audit table.
var rowSchema = cbigquery.Schema{
	{Name: "event_id", Type: cbigquery.StringFieldType, Required: true},
	{Name: "occurred_at", Type: cbigquery.TimestampFieldType, Required: true},
	{Name: "request_id", Type: cbigquery.StringFieldType, Required: true},
	{Name: "verification_type", Type: cbigquery.StringFieldType, Required: true},
	{Name: "user_email", Type: cbigquery.StringFieldType},
	{Name: "user_phone", Type: cbigquery.StringFieldType},
	{Name: "plan_name", Type: cbigquery.StringFieldType},
	{Name: "actor_id", Type: cbigquery.StringFieldType},
	{Name: "payload", Type: cbigquery.JSONFieldType},
}

// Save implements bigquery.ValueSaver. The event id doubles as the streaming insert id so
// BigQuery drops rows re-sent by a retried insert.
func (r *Row) Save() (map[string]cbigquery.Value, string, error) {
	values := map[string]cbigquery.Value{
		"event_id":          r.EventID,
		"occurred_at":       r.OccurredAt,
		"request_id":        r.RequestID,
		"verification_type": r.VerificationType,
		"user_email":        nullable(r.UserEmail),
		"user_phone":        nullable(r.UserPhone),
		"plan_name":         nullable(r.PlanName),
		"actor_id":          nullable(r.ActorID),
		"payload":           nil,
	}
	if r.Payload.Valid {
		values["payload"] = r.Payload.JSONVal
	}
	return values, r.EventID, nil
}

func nullable(value *string) cbigquery.Value {
	if value == nil {
		return nil
	}
	return *value
}

// EnsureTable checks the audit table, creating it day-partitioned on occurred_at when
// create is set.
func EnsureTable(ctx context.Context, client *pkgbigquery.Client, create bool) error {
	var schema cbigquery.Schema
	if create {
		schema = rowSchema
	}
	return client.EnsureTable(ctx, client.AuditTable(), schema, "occurred_at")
}

// WriterConfig controls batching and retries of audit inserts.
type WriterConfig struct {
	Table       string
	BatchSize   int
	RetryPolicy RetryPolicy
}

// RetryPolicy controls how many times BigQuery inserts are retried.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaximumBackoff time.Duration
}

type tableInserter interface {
	InsertRows(ctx context.Context, table string, rows []any) error
}

// BigQueryWriter inserts audit rows with retries and optional batching.
type BigQueryWriter struct {
	client    tableInserter
	table     string
	batchSize int
	retry     RetryPolicy

	buffer []Row
}

// NewWriter creates a writer backed by a shared client. An empty table falls back to the
// client's configured audit table.
func NewWriter(client *pkgbigquery.Client, cfg WriterConfig) (*BigQueryWriter, error) {
	if client == nil {
		return nil, errors.New("bigquery client required")
	}
	table := strings.TrimSpace(cfg.Table)
	if table == "" {
		table = client.AuditTable()
	}
	if table == "" {
		return nil, errors.New("audit table is required")
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	retry := cfg.RetryPolicy
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = defaultMaxAttempts
	}
	if retry.InitialBackoff <= 0 {
		retry.InitialBackoff = defaultInitialBackoff
	}
	if retry.MaximumBackoff <= 0 {
		retry.MaximumBackoff = defaultMaximumBackoff
	}
	if retry.MaximumBackoff < retry.InitialBackoff {
		retry.MaximumBackoff = retry.InitialBackoff
	}

	return &BigQueryWriter{
		client:    client,
		table:     table,
		batchSize: batchSize,
		retry:     retry,
	}, nil
}

// Insert buffers one row and flushes once the batch is full.
func (w *BigQueryWriter) Insert(ctx context.Context, row Row) error {
	w.buffer = append(w.buffer, row)
	if len(w.buffer) >= w.batchSize {
		return w.Flush(ctx)
	}
	return nil
}

// Flush writes any buffered rows immediately. The buffer is kept on failure.
func (w *BigQueryWriter) Flush(ctx context.Context) error {
	if len(w.buffer) == 0 {
		return nil
	}
	rows := make([]any, len(w.buffer))
	for i := range w.buffer {
		rows[i] = &w.buffer[i]
	}
	if err := w.insertWithRetry(ctx, rows); err != nil {
		return err
	}
	w.buffer = w.buffer[:0]
	return nil
}

// Discard drops buffered rows, used when a failed batch will be redelivered.
func (w *BigQueryWriter) Discard() {
	w.buffer = w.buffer[:0]
}

func (w *BigQueryWriter) insertWithRetry(ctx context.Context, rows []any) error {
	backoff := retry.NewExponential(w.retry.InitialBackoff)
	backoff = retry.WithCappedDuration(w.retry.MaximumBackoff, backoff)
	backoff = retry.WithMaxRetries(uint64(w.retry.MaxAttempts-1), backoff)

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := w.client.InsertRows(ctx, w.table, rows)
		if err != nil && transient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("insert %s rows: %w", w.table, err)
	}
	return nil
}

// EncodeJSON serializes payload for a BigQuery JSON column.
func EncodeJSON(payload any) (cbigquery.NullJSON, error) {
	switch value := payload.(type) {
	case nil:
		return cbigquery.NullJSON{}, nil
	case json.RawMessage:
		if len(value) == 0 {
			return cbigquery.NullJSON{}, nil
		}
		return cbigquery.NullJSON{Valid: true, JSONVal: string(value)}, nil
	}

	marshaled, err := json.Marshal(payload)
	if err != nil {
		return cbigquery.NullJSON{}, fmt.Errorf("marshal json: %w", err)
	}
	return cbigquery.NullJSON{Valid: true, JSONVal: string(marshaled)}, nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
