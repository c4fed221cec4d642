package transcription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hireloop/interviewd/internal/llm"
)

// Validation and availability errors, distinguishable by the HTTP layer.
var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrAudioTooLarge     = errors.New("audio file too large")
	ErrBusy              = errors.New("transcription service busy")
)

// Backend performs the actual transcription call.
type Backend interface {
	Transcribe(ctx context.Context, model, filename string, audio []byte) (string, error)
}

// Formats the Whisper API accepts.
var supportedFormats = map[string]bool{
	"mp3": true, "mp4": true, "mpeg": true, "mpga": true,
	"m4a": true, "wav": true, "webm": true,
}

const defaultMaxSizeMB = 25

// Service is a thin retry wrapper over a Whisper-style transcription
// backend. Validation happens before any network call; rate limits and
// server errors are retried a couple of times with a short backoff,
// other failures are terminal.
type Service struct {
	backend  Backend
	model    string
	maxBytes int64
	retries  int
	backoff  time.Duration
	logger   *slog.Logger
}

// New creates a Service. maxSizeMB <= 0 defaults to 25; a nil logger
// falls back to slog.Default().
func New(backend Backend, model string, maxSizeMB int, logger *slog.Logger) *Service {
	if maxSizeMB <= 0 {
		maxSizeMB = defaultMaxSizeMB
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		backend:  backend,
		model:    model,
		maxBytes: int64(maxSizeMB) << 20,
		retries:  2,
		backoff:  500 * time.Millisecond,
		logger:   logger,
	}
}

// Transcribe validates the audio and calls the backend, retrying
// transient failures. The filename's extension determines the format.
func (s *Service) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if !supportedFormats[ext] {
		return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, ext, formatList())
	}
	if int64(len(audio)) > s.maxBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds the %dMB limit", ErrAudioTooLarge, len(audio), s.maxBytes>>20)
	}

	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 {
			s.logger.Warn("retrying transcription", "attempt", attempt, "error", lastErr)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(s.backoff * time.Duration(attempt)):
			}
		}

		text, err := s.backend.Transcribe(ctx, s.model, filename, audio)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}

	var se *llm.StatusError
	if errors.As(lastErr, &se) && se.Code == http.StatusTooManyRequests {
		return "", fmt.Errorf("%w: %v", ErrBusy, lastErr)
	}
	return "", fmt.Errorf("transcribing audio: %w", lastErr)
}

func retryable(err error) bool {
	var se *llm.StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return false
}

func formatList() string {
	formats := make([]string, 0, len(supportedFormats))
	for f := range supportedFormats {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return strings.Join(formats, ", ")
}
