// Package bigquery owns the connection to the dataset that holds verification audit rows.
package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/okestore/storefront-sync/pkg/config"
	"github.com/okestore/storefront-sync/pkg/logger"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const metadataTimeout = 10 * time.Second

var (
	errNotConnected   = errors.New("bigquery client not initialized")
	errTableRequired  = errors.New("bigquery table name is required")
	errSchemaRequired = errors.New("schema is required to create a table")
)

type Client struct {
	bq         *bigquery.Client
	dataset    *bigquery.Dataset
	auditTable string
	logg       *logger.Logger
}

// NewClient connects and fails unless the dataset exists. Tables are checked separately
// by EnsureTable so callers decide whether a missing table is created or fatal.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.BigQueryConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	datasetID := strings.TrimSpace(cfg.Dataset)
	auditTable := strings.TrimSpace(cfg.AuditTable)
	var missing []error
	if projectID == "" {
		missing = append(missing, errors.New("gcp project id is required"))
	}
	if datasetID == "" {
		missing = append(missing, errors.New("bigquery dataset is required"))
	}
	if auditTable == "" {
		missing = append(missing, errTableRequired)
	}
	if err := errors.Join(missing...); err != nil {
		return nil, err
	}

	bq, err := bigquery.NewClient(ctx, projectID, clientOptions(gcp)...)
	if err != nil {
		return nil, fmt.Errorf("creating bigquery client: %w", err)
	}
	c := &Client{bq: bq, dataset: bq.Dataset(datasetID), auditTable: auditTable, logg: logg}

	metaCtx, cancel := context.WithTimeout(ctx, metadataTimeout)
	defer cancel()
	if _, err := c.dataset.Metadata(metaCtx); err != nil {
		_ = bq.Close()
		return nil, describeMetadataErr("dataset", datasetID, err)
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"project": projectID, "dataset": datasetID}), "bigquery client initialized")
	}
	return c, nil
}

func clientOptions(gcp config.GCPConfig) []option.ClientOption {
	if path := strings.TrimSpace(gcp.CredentialsFile); path != "" {
		return []option.ClientOption{option.WithCredentialsFile(path)}
	}
	return nil
}

// EnsureTable checks that name exists. With a schema, a missing table is created, day
// partitioned on partitionField when that is set.
func (c *Client) EnsureTable(ctx context.Context, name string, schema bigquery.Schema, partitionField string) error {
	if c == nil || c.dataset == nil {
		return errNotConnected
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return errTableRequired
	}
	ctx, cancel := context.WithTimeout(ctx, metadataTimeout)
	defer cancel()

	table := c.dataset.Table(name)
	_, err := table.Metadata(ctx)
	switch {
	case err == nil:
		return nil
	case !isNotFound(err):
		return describeMetadataErr("table", name, err)
	case schema == nil:
		return fmt.Errorf("%w: table %q does not exist", errSchemaRequired, name)
	}

	meta := &bigquery.TableMetadata{Schema: schema}
	if partitionField != "" {
		meta.TimePartitioning = &bigquery.TimePartitioning{Type: bigquery.DayPartitioningType, Field: partitionField}
	}
	if err := table.Create(ctx, meta); err != nil && !isConflict(err) {
		return fmt.Errorf("creating table %q: %w", name, err)
	}
	if c.logg != nil {
		c.logg.Info(c.logg.WithField(ctx, "table", name), "bigquery table created")
	}
	return nil
}

// Ping reports whether the audit table is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.dataset == nil {
		return errNotConnected
	}
	ctx, cancel := context.WithTimeout(ctx, metadataTimeout)
	defer cancel()
	if _, err := c.dataset.Table(c.auditTable).Metadata(ctx); err != nil {
		return describeMetadataErr("table", c.auditTable, err)
	}
	return nil
}

func (c *Client) AuditTable() string {
	if c == nil {
		return ""
	}
	return c.auditTable
}

// InsertRows streams rows into table. Rows implementing bigquery.ValueSaver control their
// own insert ids.
func (c *Client) InsertRows(ctx context.Context, table string, rows []any) error {
	if c == nil || c.dataset == nil {
		return errNotConnected
	}
	table = strings.TrimSpace(table)
	if table == "" {
		return errTableRequired
	}
	if len(rows) == 0 {
		return nil
	}
	return c.dataset.Table(table).Inserter().Put(ctx, rows)
}

func (c *Client) Close() error {
	if c == nil || c.bq == nil {
		return nil
	}
	return c.bq.Close()
}

func describeMetadataErr(kind, name string, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("%s %q does not exist", kind, name)
	}
	return fmt.Errorf("checking %s %q: %w", kind, name, err)
}

func isNotFound(err error) bool {
	return apiStatus(err) == http.StatusNotFound
}

func isConflict(err error) bool {
	return apiStatus(err) == http.StatusConflict
}

func apiStatus(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
