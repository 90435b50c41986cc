package audit

import (
	"errors"
	"net/http"

	cbigquery "cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var transientHTTP = map[int]bool{
	http.StatusRequestTimeout:      true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

var transientGRPC = map[codes.Code]bool{
	codes.Aborted:           true,
	codes.DeadlineExceeded:  true,
	codes.Internal:          true,
	codes.ResourceExhausted: true,
	codes.Unavailable:       true,
}

// transient reports whether a failed insert is worth repeating. Streaming inserts can fail
// per row; a batch is only retried when every row failed for a transient reason.
func transient(err error) bool {
	leaves := insertFailures(err)
	if len(leaves) == 0 {
		return false
	}
	for _, leaf := range leaves {
		if !transientLeaf(leaf) {
			return false
		}
	}
	return true
}

// insertFailures flattens BigQuery's nested multi-errors into the individual causes.
func insertFailures(err error) []error {
	var (
		multi  cbigquery.MultiError
		perRow cbigquery.PutMultiError
		row    *cbigquery.RowInsertionError
	)
	switch {
	case err == nil:
		return nil
	case errors.As(err, &perRow):
		var out []error
		for _, rowErr := range perRow {
			out = append(out, insertFailures(rowErr.Errors)...)
		}
		return out
	case errors.As(err, &row):
		return insertFailures(row.Errors)
	case errors.As(err, &multi):
		var out []error
		for _, inner := range multi {
			out = append(out, insertFailures(inner)...)
		}
		return out
	default:
		return []error{err}
	}
}

func transientLeaf(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return transientHTTP[apiErr.Code]
	}
	if st, ok := status.FromError(err); ok {
		return transientGRPC[st.Code()]
	}
	return false
}
