package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONError(t *testing.T) {
	rr := httptest.NewRecorder()
	JSONError(rr, http.StatusNotFound, "not_generated", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"not_generated"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	JSONError(rr, http.StatusBadRequest, "order_placement_failed", "order placement failed: boom")
	assert.JSONEq(t, `{"error":"order_placement_failed","details":"order placement failed: boom"}`, rr.Body.String())
}

func TestJSONNilPayload(t *testing.T) {
	rr := httptest.NewRecorder()
	JSON(rr, http.StatusOK, nil)
	assert.Equal(t, "null", rr.Body.String())
}

func TestJSONEncodeError(t *testing.T) {
	rr := httptest.NewRecorder()
	JSON(rr, http.StatusOK, map[string]any{"ch": make(chan int)})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestDecode(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Vélo"}`))
	require.NoError(t, Decode(req, &v))
	assert.Equal(t, "Vélo", v.Name)

	for _, body := range []string{`{"name":`, `{"other":1}`, `{"name":"a"} {"name":"b"}`} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		err := Decode(req, &v)
		assert.True(t, errors.Is(err, ErrInvalidBody), body)
	}
}

func TestAttachment(t *testing.T) {
	rr := httptest.NewRecorder()
	Attachment(rr, "application/pdf", "invoice_FAC-1.pdf", []byte("%PDF"))
	assert.Equal(t, `attachment; filename="invoice_FAC-1.pdf"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF", rr.Body.String())
}
