package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/tableside-backend/pkg/errors"
)

type addItemBody struct {
	Product int64 `json:"product" validate:"required"`
	Count   int   `json:"count" validate:"gte=1"`
}

func TestDecodeJSONBodyValidationDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"count":0}`))
	var body addItemBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["product"])
	assert.Equal(t, "must be at least 1", details["count"])
}

func TestDecodeJSONBodyRejectsUnknownFieldsAndEmpty(t *testing.T) {
	var body addItemBody
	err := DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product":1,"count":1,"extra":true}`)), &body)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	err = DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("")), &body)
	require.Error(t, err)
	assert.Equal(t, "request body required", pkgerrors.As(err).Message())
}

func TestDecodeJSONBodySuccess(t *testing.T) {
	var body addItemBody
	require.NoError(t, DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product":4,"count":2}`)), &body))
	assert.Equal(t, int64(4), body.Product)
	assert.Equal(t, 2, body.Count)
}

func TestIDParsing(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/cart/item/remove?cart_id=7&cart_item_id=abc", nil)
	id, err := RequiredQueryID(req, "cart_id")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	_, err = RequiredQueryID(req, "cart_item_id")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = RequiredQueryID(req, "missing")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("order_pk", "12")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	id, err = PathID(req, "order_pk")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/post?limit=500", nil)
	_, err := ParseQueryInt(req, "limit", 20, 1, 100)
	assert.Error(t, err)

	v, err := ParseQueryInt(req, "absent", 20, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 20, v)
}
