package response_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/giftbay/giftbay-api/internal/pkg/response"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var out response.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return out
}

func TestUnprocessableEntity(t *testing.T) {
	rec := httptest.NewRecorder()
	response.UnprocessableEntity(rec, "amount below minimum")

	if rec.Code != 422 {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}
	body := decode(t, rec)
	if body.Success {
		t.Fatal("expected success=false")
	}
	if body.Error == nil || body.Error.Code != "UNPROCESSABLE" {
		t.Fatalf("expected error code UNPROCESSABLE, got %+v", body.Error)
	}
	if body.Error.Message != "amount below minimum" {
		t.Fatalf("unexpected message: %q", body.Error.Message)
	}
}

func TestWithMetaEncodesPagination(t *testing.T) {
	rec := httptest.NewRecorder()
	response.WithMeta(rec, map[string]int{"n": 1}, response.Meta{
		Total:   120,
		Limit:   50,
		HasNext: true,
	})

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := decode(t, rec)
	if !body.Success {
		t.Fatal("expected success=true")
	}
	if body.Meta == nil {
		t.Fatal("expected meta to be present")
	}
	if body.Meta.Total != 120 || body.Meta.Limit != 50 || !body.Meta.HasNext {
		t.Fatalf("unexpected meta: %+v", body.Meta)
	}
}
