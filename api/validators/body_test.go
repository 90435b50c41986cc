package validators

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okestore/storefront-sync/pkg/enums"
	pkgerrors "github.com/okestore/storefront-sync/pkg/errors"
	"github.com/okestore/storefront-sync/pkg/pagination"
)

type claimBody struct {
	Type  enums.VerificationType `json:"type" validate:"required,enum"`
	Email string                 `json:"userEmail" validate:"omitempty,email"`
}

func decode(t *testing.T, body string) (claimBody, error) {
	t.Helper()
	var dest claimBody
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	err := DecodeJSONBody(httptest.NewRecorder(), req, &dest)
	return dest, err
}

func TestDecodeJSONBodyAccepts(t *testing.T) {
	got, err := decode(t, `{"type":"PRODUCT","userEmail":"a@example.com"}`)
	require.NoError(t, err)
	assert.Equal(t, enums.VerificationTypeProduct, got.Type)
}

func TestDecodeJSONBodyFieldErrorsUseJSONNames(t *testing.T) {
	_, err := decode(t, `{"type":"GIFT","userEmail":"nope"}`)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	var apiErr *pkgerrors.Error
	require.ErrorAs(t, err, &apiErr)
	details, ok := apiErr.Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details["type"], "GIFT")
	assert.Equal(t, "must be a valid email", details["userEmail"])
}

func TestDecodeJSONBodyRejectsMalformedInput(t *testing.T) {
	for name, body := range map[string]string{
		"unknown field": `{"type":"PRODUCT","extra":1}`,
		"trailing":      `{"type":"PRODUCT"}{"type":"PRODUCT"}`,
		"empty":         ``,
		"too large":     `{"type":"PRODUCT","userEmail":"` + strings.Repeat("a", MaxBodyBytes) + `"}`,
	} {
		_, err := decode(t, body)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), name)
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=7&bad=x&big=500", nil)

	v, err := ParseQueryInt(req, "limit", 25, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	v, err = ParseQueryInt(req, "missing", 25, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 25, v)

	_, err = ParseQueryInt(req, "bad", 25, 1, 100)
	assert.Error(t, err)
	_, err = ParseQueryInt(req, "big", 25, 1, 100)
	assert.Error(t, err)
}

func TestParseQueryEnum(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?status=Closed&type=nope", nil)

	status, err := ParseQueryEnum[enums.TicketStatus](req, "status")
	require.NoError(t, err)
	assert.Equal(t, enums.TicketStatusClosed, status)

	absent, err := ParseQueryEnum[enums.TicketStatus](req, "other")
	require.NoError(t, err)
	assert.Empty(t, absent)

	_, err = ParseQueryEnum[enums.VerificationType](req, "type")
	assert.Error(t, err)
}

func TestParsePageParams(t *testing.T) {
	cursor := pagination.EncodeCursor(pagination.Cursor{ID: "n-1"})
	req := httptest.NewRequest(http.MethodGet, "/?limit=5&cursor="+url.QueryEscape(cursor), nil)
	params, err := ParsePageParams(req)
	require.NoError(t, err)
	assert.Equal(t, pagination.Params{Limit: 5, Cursor: cursor}, params)

	_, err = ParsePageParams(httptest.NewRequest(http.MethodGet, "/?cursor=%25%25", nil))
	assert.Error(t, err)
}
