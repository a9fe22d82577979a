package server

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gocv.io/x/gocv"
)

type stubFrames struct {
	err error
}

func (s stubFrames) Snapshot() (*gocv.Mat, error) {
	if s.err != nil {
		return nil, s.err
	}
	mat := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	return &mat, nil
}

func TestStreamHandler_MethodNotAllowed(t *testing.T) {
	h := NewStreamHandler(stubFrames{})

	req := httptest.NewRequest(http.MethodPost, "/api/stream", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestStreamHandler_WritesJPEGParts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping OpenCV encode in short mode")
	}

	ts := httptest.NewServer(NewStreamHandler(stubFrames{}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL, nil)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/x-mixed-replace") {
		t.Fatalf("Content-Type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	var sawBoundary, sawJPEG bool
	for i := 0; i < 3; i++ {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read error = %v", err)
		}
		switch strings.TrimSpace(line) {
		case "--frame":
			sawBoundary = true
		case "Content-Type: image/jpeg":
			sawJPEG = true
		}
	}
	if !sawBoundary || !sawJPEG {
		t.Errorf("missing part headers: boundary=%v jpeg=%v", sawBoundary, sawJPEG)
	}
}

func TestStreamHandler_SkipsFailedSnapshots(t *testing.T) {
	h := NewStreamHandler(stubFrames{err: errors.New("no frame")})

	ctx, cancel := context.WithTimeout(context.Background(), 3*streamInterval)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Body.Len() != 0 {
		t.Errorf("expected no frames, got %d bytes", rec.Body.Len())
	}
}
