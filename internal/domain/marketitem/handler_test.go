package marketitem_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/giftbay/giftbay-api/internal/domain/marketitem"
	"github.com/giftbay/giftbay-api/internal/middleware"
	"github.com/giftbay/giftbay-api/internal/pkg/storage"
)

type captureQueue struct {
	keys []string
}

func (q *captureQueue) Enqueue(_ context.Context, key string) error {
	q.keys = append(q.keys, key)
	return nil
}

func uploadRequest(t *testing.T, userID uuid.UUID) *http.Request {
	t.Helper()

	var img bytes.Buffer
	if err := png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "card.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(img.Bytes()); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/images", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func newUploadHandler(t *testing.T, queue marketitem.ImageQueue) *marketitem.Handler {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir(), "http://localhost/uploads")
	if err != nil {
		t.Fatalf("local storage: %v", err)
	}
	return marketitem.NewHandler(nil, store, queue)
}

func TestUploadImageWorksWithoutOptimizerQueue(t *testing.T) {
	h := newUploadHandler(t, nil)

	rec := httptest.NewRecorder()
	h.UploadImage(rec, uploadRequest(t, uuid.New()))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if out.Data["key"] == "" || out.Data["url"] == "" {
		t.Fatalf("expected key and url in response, got %+v", out.Data)
	}
}

func TestUploadImageEnqueuesForOptimization(t *testing.T) {
	queue := &captureQueue{}
	h := newUploadHandler(t, queue)

	rec := httptest.NewRecorder()
	h.UploadImage(rec, uploadRequest(t, uuid.New()))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(queue.keys) != 1 {
		t.Fatalf("expected one enqueued key, got %d", len(queue.keys))
	}
}
