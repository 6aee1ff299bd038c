package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/yungbote/draftdeck-backend/internal/platform/envutil"
	"github.com/yungbote/draftdeck-backend/internal/platform/gcs"
	"github.com/yungbote/draftdeck-backend/internal/platform/logger"
)

const thumbnailFilter = "scale=320:180:force_original_aspect_ratio=decrease,pad=320:180:(ow-iw)/2:(oh-ih)/2"

// Screencap is one extracted frame, uploaded to object storage.
type Screencap struct {
	TimestampSec float64 `json:"timestampSec"`
	URL          string  `json:"url"`
	ThumbnailURL string  `json:"thumbnailUrl,omitempty"`
}

// ScreencapService extracts frames from remote videos with yt-dlp and
// ffmpeg. Everything here is best-effort decoration for generated drafts:
// failures degrade to "no screencaps", never to a failed generation.
type ScreencapService struct {
	bucket  gcs.BucketService
	log     *logger.Logger
	timeout time.Duration
}

func NewScreencapService(bucket gcs.BucketService, log *logger.Logger) *ScreencapService {
	return &ScreencapService{
		bucket:  bucket,
		log:     log.With("service", "ScreencapService"),
		timeout: envutil.Dur("SCREENCAP_TIMEOUT_SECONDS", 45*time.Second),
	}
}

// CaptureFrames pulls the video, extracts one frame per timestamp, and
// uploads frame plus thumbnail. Scratch space is removed on every exit
// path; the external commands are killed when the timeout expires.
func (s *ScreencapService) CaptureFrames(ctx context.Context, videoURL string, timestamps []float64, keyPrefix string) ([]Screencap, error) {
	if s.bucket == nil {
		return nil, fmt.Errorf("object storage not configured")
	}
	if len(timestamps) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tmpDir, err := os.MkdirTemp("", "screencaps-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	videoPath := filepath.Join(tmpDir, "video.mp4")
	if err := s.download(ctx, videoURL, videoPath); err != nil {
		return nil, fmt.Errorf("download video: %w", err)
	}

	out := make([]Screencap, 0, len(timestamps))
	for i, ts := range timestamps {
		framePath := filepath.Join(tmpDir, fmt.Sprintf("frame-%d.jpg", i))
		thumbPath := filepath.Join(tmpDir, fmt.Sprintf("thumb-%d.jpg", i))

		if err := s.extractFrame(ctx, videoPath, framePath, ts, ""); err != nil {
			s.log.Warn("frame extraction failed, skipping timestamp",
				"timestamp_sec", ts, "error", err.Error())
			continue
		}
		if err := s.extractFrame(ctx, videoPath, thumbPath, ts, thumbnailFilter); err != nil {
			s.log.Warn("thumbnail extraction failed",
				"timestamp_sec", ts, "error", err.Error())
		}

		shot := Screencap{TimestampSec: ts}
		frameKey := fmt.Sprintf("%s/frame-%d.jpg", keyPrefix, i)
		uploaded, err := s.uploadFile(ctx, framePath, frameKey)
		if err != nil {
			s.log.Warn("frame upload failed, skipping timestamp",
				"timestamp_sec", ts, "error", err.Error())
			continue
		}
		shot.URL = uploaded

		if _, statErr := os.Stat(thumbPath); statErr == nil {
			thumbKey := fmt.Sprintf("%s/thumb-%d.jpg", keyPrefix, i)
			if thumbURL, err := s.uploadFile(ctx, thumbPath, thumbKey); err == nil {
				shot.ThumbnailURL = thumbURL
			}
		}
		out = append(out, shot)
	}
	s.log.Info("screencaps captured", "requested", len(timestamps), "captured", len(out))
	return out, nil
}

func (s *ScreencapService) download(ctx context.Context, videoURL, dest string) error {
	cmd := exec.CommandContext(ctx, "yt-dlp",
		"--quiet",
		"--no-playlist",
		"-f", "best[ext=mp4]/best",
		"-o", dest,
		videoURL,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("yt-dlp: %w: %s", err, truncate(string(out), 300))
	}
	return nil
}

func (s *ScreencapService) extractFrame(ctx context.Context, videoPath, dest string, timestampSec float64, filter string) error {
	args := []string{
		"-ss", fmt.Sprintf("%.3f", timestampSec),
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "2",
	}
	if filter != "" {
		args = append(args, "-vf", filter)
	}
	args = append(args, "-y", dest)
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, truncate(string(out), 300))
	}
	return nil
}

func (s *ScreencapService) uploadFile(ctx context.Context, path, key string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	uploaded, err := s.bucket.UploadObject(ctx, key, "image/jpeg", f)
	if err != nil {
		return "", err
	}
	return uploaded.URL, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
