package ledger

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"priemka/internal/models"
)

func TestSubmitSuccess(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	items := []models.LineItem{
		{ProductID: 1, Family: "Молочка", Name: "Молоко", Qty: 2},
	}
	require.NoError(t, c.Submit(context.Background(), "Store1", items))

	// Формат полезной нагрузки: {"shop", "items":[{"family","name","qty"}]}.
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(gotBody, &decoded))
	assert.Equal(t, "Store1", decoded["shop"])

	rawItems := decoded["items"].([]interface{})
	require.Len(t, rawItems, 1)
	item := rawItems[0].(map[string]interface{})
	assert.Equal(t, "Молочка", item["family"])
	assert.Equal(t, "Молоко", item["name"])
	assert.Equal(t, 2.0, item["qty"])
	// Внутренний ID продукта наружу не уходит.
	_, exposed := item["ProductID"]
	assert.False(t, exposed)
}

func TestSubmitNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("OK")) // статус важнее тела
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	assert.Error(t, c.Submit(context.Background(), "Store1", nil))
}

func TestSubmitBodyWithoutOKToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("error: quota exceeded"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	assert.Error(t, c.Submit(context.Background(), "Store1", nil))
}

func TestSubmitTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // закрыт до запроса

	c := NewClient(srv.URL)
	assert.Error(t, c.Submit(context.Background(), "Store1", nil))
}
