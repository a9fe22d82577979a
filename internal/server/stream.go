package server

import (
	"fmt"
	"net/http"
	"time"

	"gocv.io/x/gocv"
)

// streamInterval paces the MJPEG stream at about 15 FPS.
const streamInterval = 66 * time.Millisecond

// FrameSource provides the most recent camera frame. The caller closes
// the returned Mat.
type FrameSource interface {
	Snapshot() (*gocv.Mat, error)
}

// StreamHandler serves MJPEG frames from a FrameSource.
type StreamHandler struct {
	frames FrameSource
}

// NewStreamHandler creates a new StreamHandler with the given source.
func NewStreamHandler(frames FrameSource) *StreamHandler {
	return &StreamHandler{frames: frames}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		if err := h.writeFrame(w); err != nil {
			continue
		}

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}

func (h *StreamHandler) writeFrame(w http.ResponseWriter) error {
	frame, err := h.frames.Snapshot()
	if err != nil {
		return err
	}
	defer frame.Close()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return err
	}
	defer buf.Close()

	fmt.Fprintf(w, "--frame\r\n")
	fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
	fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", buf.Len())
	w.Write(buf.GetBytes())
	fmt.Fprintf(w, "\r\n")
	return nil
}
