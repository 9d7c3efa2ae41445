package acquire

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

const thumbnailTimeout = 20 * time.Second

// videoThumbnail extracts the first frame of a video as JPEG via ffmpeg.
// Thumbnails are best-effort: callers log the error and store the thumbnail
// as absent, a failure here never aborts a download.
func videoThumbnail(ctx context.Context, video []byte) ([]byte, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not available: %w", err)
	}

	thumbCtx, cancel := context.WithTimeout(ctx, thumbnailTimeout)
	defer cancel()

	cmd := exec.CommandContext(thumbCtx, "ffmpeg",
		"-i", "pipe:0",
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"pipe:1")

	var out bytes.Buffer
	cmd.Stdin = bytes.NewReader(video)
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w", err)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output")
	}

	return out.Bytes(), nil
}
