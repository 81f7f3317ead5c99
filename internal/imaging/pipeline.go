package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"path/filepath"
	"strings"
	"time"

	// Register decoders for the formats collections commonly serve
	_ "image/gif"
	_ "image/jpeg"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/nftpulse/notifier/internal/adapter"
	"github.com/nftpulse/notifier/internal/domain"
	"github.com/nftpulse/notifier/internal/logger"
)

const (
	DEFAULT_MAX_ATTEMPTS  = 10
	DEFAULT_RETRY_STEP    = 2 * time.Second
	DEFAULT_TARGET_SIZE   = 512
	DEFAULT_CLEANUP_DELAY = 60 * time.Second
)

// Config holds the image pipeline configuration
type Config struct {
	// DefaultImagePath is the pre-sized asset used for unpaid collections
	DefaultImagePath string
	// WorkDir holds transient derived files; defaults to the OS temp dir
	WorkDir string
	// TargetSize is the square edge length of derived images
	TargetSize int
	// MaxAttempts bounds the paid fetch loop
	MaxAttempts int
	// RetryStep scales linearly with the attempt number between retries
	RetryStep time.Duration
	// CleanupDelay is how long a derived file outlives its send
	CleanupDelay time.Duration
}

// Request asks for the image to attach to one notification
type Request struct {
	// ImageURL is the collection's source image; ignored for unpaid requests
	ImageURL string
	// Name keys the derived filename
	Name string
	// Paid selects the fetched-and-derived path over the default asset
	Paid bool
}

// Resolution is the resolved local image
type Resolution struct {
	// Path is the local file to attach
	Path string
	// Transient marks a derived file that must be cleaned up after sending
	Transient bool
}

// Pipeline resolves notification images. Paid collections get their own
// image fetched and derived; everything else gets the shared default
// asset. The two paths never cross: a paid resolution that keeps failing
// is an error, not a downgrade to the default.
type Pipeline struct {
	config Config
	client adapter.HTTPClient
	fs     adapter.FileSystem
	clock  adapter.Clock
}

// NewPipeline creates an image pipeline
func NewPipeline(cfg Config, client adapter.HTTPClient, fs adapter.FileSystem, clock adapter.Clock) *Pipeline {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DEFAULT_MAX_ATTEMPTS
	}
	if cfg.RetryStep == 0 {
		cfg.RetryStep = DEFAULT_RETRY_STEP
	}
	if cfg.TargetSize == 0 {
		cfg.TargetSize = DEFAULT_TARGET_SIZE
	}
	if cfg.CleanupDelay == 0 {
		cfg.CleanupDelay = DEFAULT_CLEANUP_DELAY
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = fs.TempDir()
	}

	return &Pipeline{
		config: cfg,
		client: client,
		fs:     fs,
		clock:  clock,
	}
}

// Resolve returns the local image for a request
func (p *Pipeline) Resolve(ctx context.Context, req *Request) (*Resolution, error) {
	if req.Paid && req.ImageURL != "" {
		return p.resolvePaid(ctx, req)
	}
	return p.resolveDefault(ctx)
}

// resolvePaid fetches and derives the collection's own image, retrying
// with a linearly growing delay. Exhaustion is terminal for the whole
// notification; the default asset is never substituted on the paid path.
func (p *Pipeline) resolvePaid(ctx context.Context, req *Request) (*Resolution, error) {
	var lastErr error
	for attempt := 1; attempt <= p.config.MaxAttempts; attempt++ {
		path, err := p.fetchAndDerive(ctx, req)
		if err == nil {
			return &Resolution{Path: path, Transient: true}, nil
		}
		lastErr = err

		logger.WarnCtx(ctx, "Image fetch attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.config.MaxAttempts),
			zap.String("url", req.ImageURL),
			zap.Error(err))

		if attempt == p.config.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-p.clock.After(time.Duration(attempt) * p.config.RetryStep):
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", domain.ErrImageRetriesExhausted, p.config.MaxAttempts, lastErr)
}

// resolveDefault returns the shared pre-sized asset. The asset ships with
// the deployment, so a read failure is a deployment fault; one re-read
// covers a transient filesystem hiccup before giving up.
func (p *Pipeline) resolveDefault(ctx context.Context) (*Resolution, error) {
	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		_, err := p.fs.ReadFile(p.config.DefaultImagePath)
		if err == nil {
			return &Resolution{Path: p.config.DefaultImagePath, Transient: false}, nil
		}
		lastErr = err

		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: %v", domain.ErrDefaultImageUnavailable, lastErr)
}

// fetchAndDerive performs one fetch, decode, resize, encode, write cycle
func (p *Pipeline) fetchAndDerive(ctx context.Context, req *Request) (string, error) {
	data, err := p.client.GetRaw(ctx, req.ImageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to fetch image: %w", err)
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("fetched content is %s, not an image", mtype.String())
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	derived := p.resize(src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, derived); err != nil {
		return "", fmt.Errorf("failed to encode derived image: %w", err)
	}

	path := filepath.Join(p.config.WorkDir,
		fmt.Sprintf("nft_%s_%d.png", sanitizeName(req.Name), p.clock.Now().UnixNano()))

	file, err := p.fs.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create derived file: %w", err)
	}
	if _, err := file.Write(buf.Bytes()); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("failed to write derived file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close derived file: %w", err)
	}

	return path, nil
}

// resize scales the image to fit the square target edge, preserving
// aspect ratio
func (p *Pipeline) resize(src image.Image) image.Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return src
	}

	target := p.config.TargetSize
	scaledW, scaledH := target, target
	if width > height {
		scaledH = height * target / width
	} else if height > width {
		scaledW = width * target / height
	}
	if scaledW < 1 {
		scaledW = 1
	}
	if scaledH < 1 {
		scaledH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, scaledW, scaledH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}

// ScheduleCleanup removes a transient derived file once its send has had
// time to complete. The removal happens on shutdown too, so derived
// files never outlive the process.
func (p *Pipeline) ScheduleCleanup(ctx context.Context, resolution *Resolution) {
	if resolution == nil || !resolution.Transient {
		return
	}

	go func() {
		select {
		case <-ctx.Done():
		case <-p.clock.After(p.config.CleanupDelay):
		}

		if err := p.fs.Remove(resolution.Path); err != nil {
			logger.WarnCtx(ctx, "Failed to remove derived image",
				zap.String("path", resolution.Path),
				zap.Error(err))
			return
		}
		logger.DebugCtx(ctx, "Removed derived image", zap.String("path", resolution.Path))
	}()
}

// sanitizeName keeps derived filenames filesystem-safe
func sanitizeName(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_")
	sanitized := replacer.Replace(name)
	if sanitized == "" {
		return "token"
	}
	return sanitized
}
