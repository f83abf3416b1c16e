package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pantry-tracker/internal/common"
	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL + "/", Token: "tok"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestUploadText(t *testing.T) {
	kid := uuid.New()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/invoices/upload", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, kid.String(), body["kitchenId"])
		assert.Equal(t, "Milk | 1l", body["invoiceText"])
		_, _ = w.Write([]byte(`{"success":true,"itemsFound":1,"items":[{"name":"Milk","quantity":1,"unit":"l","location":"Fridge","status":"Fresh","price":"65"}]}`))
	})

	res, err := c.UploadText(context.Background(), kid, "Milk | 1l")
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Milk", res.Items[0].Name)
	require.NotNil(t, res.Items[0].Price)
	assert.Equal(t, "65", res.Items[0].Price.String())
}

func TestUploadPDFMultipart(t *testing.T) {
	kid := uuid.New()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, kid.String(), r.FormValue("kitchenId"))
		f, fh, err := r.FormFile("pdfFile")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "%PDF", string(data))
		assert.Equal(t, "application/pdf", fh.Header.Get("Content-Type"))
		assert.Equal(t, "bill.pdf", fh.Filename)
		_, _ = w.Write([]byte(`{"success":true,"itemsFound":0,"items":[]}`))
	})

	_, err := c.UploadPDF(context.Background(), kid, "bill.pdf", []byte("%PDF"))
	require.NoError(t, err)
}

func TestErrorsCarryServerCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":"no items selected","code":"VALIDATION_ERROR"}`))
	})

	_, err := c.Commit(context.Background(), uuid.New(), []entity.CommitRow{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrValidation)
	var ae *common.AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "no items selected", ae.Message)
}

func TestErrorWithoutBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.ListKitchens(context.Background())
	require.Error(t, err)
	assert.Equal(t, common.CodeInternal, common.CodeOf(err))
}

func TestCurrentKitchen(t *testing.T) {
	kid := uuid.New()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{"kitchenId":"` + kid.String() + `","source":"default"}`))
	})
	cur, err := c.CurrentKitchen(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cur.KitchenID)
	assert.Equal(t, kid, *cur.KitchenID)
	assert.Equal(t, "default", cur.Source)
}
