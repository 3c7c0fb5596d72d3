package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// countingRecognizer tracks how many calls run at the same time.
type countingRecognizer struct {
	mu      sync.Mutex
	current int
	peak    int
	calls   int
	fail    map[string]bool
}

func (r *countingRecognizer) Recognize(_ context.Context, fileID string) (string, error) {
	r.mu.Lock()
	r.calls++
	r.current++
	if r.current > r.peak {
		r.peak = r.current
	}
	r.mu.Unlock()

	time.Sleep(10 * time.Millisecond)

	r.mu.Lock()
	r.current--
	fail := r.fail[fileID]
	r.mu.Unlock()

	if fail {
		return "", context.DeadlineExceeded
	}
	return "text:" + fileID, nil
}

func TestRunBatchRespectsConcurrencyCap(t *testing.T) {
	rec := &countingRecognizer{}
	items := make([]RecognizeItem, 12)
	for i := range items {
		items[i] = RecognizeItem{DocumentID: uint(i + 1), FileID: "f"}
	}

	results := RunBatch(context.Background(), rec, items, 3)

	if rec.peak > 3 {
		t.Errorf("Expected at most 3 concurrent calls, observed %d", rec.peak)
	}
	if rec.calls != len(items) {
		t.Errorf("Expected %d calls, got %d", len(items), rec.calls)
	}
	for i, r := range results {
		if !r.OK {
			t.Errorf("Item %d: expected success, got error %q", i, r.Error)
		}
	}
}

func TestRunBatchCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &countingRecognizer{}
	items := []RecognizeItem{
		{DocumentID: 1, FileID: "a"},
		{DocumentID: 2, FileID: "b"},
	}

	results := RunBatch(ctx, rec, items, 2)

	if rec.calls != 0 {
		t.Errorf("Expected no recognizer calls after cancellation, got %d", rec.calls)
	}
	for i, r := range results {
		if r.OK {
			t.Errorf("Item %d: expected cancellation error, got success", i)
		}
		if r.Error == "" {
			t.Errorf("Item %d: expected cancellation error message", i)
		}
		if r.DocumentID != items[i].DocumentID {
			t.Errorf("Item %d: expected document %d, got %d", i, items[i].DocumentID, r.DocumentID)
		}
	}
}

func TestRunBatchPartialFailure(t *testing.T) {
	rec := &countingRecognizer{fail: map[string]bool{"bad": true}}
	items := []RecognizeItem{
		{DocumentID: 10, FileID: "ok1"},
		{DocumentID: 20, FileID: "bad"},
		{DocumentID: 30, FileID: "ok2"},
	}

	results := RunBatch(context.Background(), rec, items, 2)

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if !results[0].OK || results[0].Text != "text:ok1" {
		t.Errorf("Item 0: expected success with text, got %+v", results[0])
	}
	if results[1].OK || results[1].Error == "" {
		t.Errorf("Item 1: expected failure, got %+v", results[1])
	}
	if !results[2].OK {
		t.Errorf("Item 2: expected success despite earlier failure, got %+v", results[2])
	}
}

func TestRecognizeClientSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Errorf("Expected bearer token header, got %q", got)
		}
		var req recognizeAPIReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Decode request: %v", err)
		}
		if req.FileID != "file-9" {
			t.Errorf("Expected file_id file-9, got %q", req.FileID)
		}
		var resp recognizeAPIResp
		resp.Data.Text = "recognized"
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := &RecognizeClient{
		apiURL:     srv.URL,
		apiToken:   "token-1",
		httpClient: srv.Client(),
	}

	text, err := client.Recognize(context.Background(), "file-9")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if text != "recognized" {
		t.Errorf("Expected recognized text, got %q", text)
	}
}

func TestRecognizeClientAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(recognizeAPIResp{Code: 5, Msg: "unsupported format"})
	}))
	defer srv.Close()

	client := &RecognizeClient{apiURL: srv.URL, httpClient: srv.Client()}

	if _, err := client.Recognize(context.Background(), "f"); err == nil {
		t.Error("Expected error for non-zero API code")
	}
}

func TestRecognizeClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := &RecognizeClient{apiURL: srv.URL, httpClient: srv.Client()}

	if _, err := client.Recognize(context.Background(), "f"); err == nil {
		t.Error("Expected error for non-200 response")
	}
}
