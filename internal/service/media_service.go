package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"foodgram/internal/config"
	"foodgram/internal/models"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultMediaRoot   = "media"
	DefaultMediaURL    = "/media"
	MaxImageDimension  = 1024
	MaxImageBytes      = 10 << 20
	MaxImagePixels     = 40_000_000
	WebPQuality        = 80
	RecipeImageDir     = "recipes"
	AvatarImageDir     = "avatars"
	dataURIImagePrefix = "data:image/"
)

// MediaStore persists user-supplied images and returns their public URL.
type MediaStore interface {
	SaveImage(ctx context.Context, dir, dataURI string) (string, error)
	Delete(url string) error
}

// MediaService stores base64 data-URI images as WebP files under a local root.
type MediaService struct {
	root    string
	baseURL string
}

// NewMediaService returns a MediaService rooted at cfg.MediaRoot.
func NewMediaService(cfg *config.Config) *MediaService {
	root, baseURL := DefaultMediaRoot, DefaultMediaURL
	if cfg != nil {
		if cfg.MediaRoot != "" {
			root = cfg.MediaRoot
		}
		if cfg.MediaURL != "" {
			baseURL = strings.TrimRight(cfg.MediaURL, "/")
		}
	}
	return &MediaService{root: root, baseURL: baseURL}
}

// Root returns the directory files are written under.
func (s *MediaService) Root() string { return s.root }

// SaveImage decodes a `data:image/<fmt>;base64,<payload>` string, fits it into
// MaxImageDimension square, re-encodes it as WebP and writes it under dir.
func (s *MediaService) SaveImage(_ context.Context, dir, dataURI string) (string, error) {
	raw, err := decodeDataURI(dataURI)
	if err != nil {
		return "", err
	}
	if !isAllowedImageMIME(http.DetectContentType(raw)) {
		return "", models.NewValidationError("image: unsupported image type")
	}

	// Header dimensions are checked before the full decode allocates pixels.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", models.NewValidationError("image: invalid image file")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return "", models.NewValidationError(fmt.Sprintf("image: dimensions %dx%d exceed the %d pixel limit", cfg.Width, cfg.Height, MaxImagePixels))
	}

	decoded, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", models.NewValidationError("image: invalid image file")
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, resizeToFit(decoded, MaxImageDimension, MaxImageDimension), &webp.Options{Quality: WebPQuality}); err != nil {
		return "", models.NewInternalError(err)
	}

	name := uuid.NewString() + ".webp"
	target := filepath.Join(s.root, dir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", models.NewInternalError(fmt.Errorf("create media dir: %w", err))
	}
	if err := os.WriteFile(filepath.Join(target, name), buf.Bytes(), 0o644); err != nil {
		return "", models.NewInternalError(fmt.Errorf("write media file: %w", err))
	}
	return path.Join(s.baseURL, dir, name), nil
}

// Delete removes the file behind url. URLs outside the media base are ignored.
func (s *MediaService) Delete(url string) error {
	rel, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || rel == "" || strings.Contains(rel, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func decodeDataURI(dataURI string) ([]byte, error) {
	if !strings.HasPrefix(dataURI, dataURIImagePrefix) {
		return nil, models.NewValidationError("image: expected a base64 data URI")
	}
	meta, payload, ok := strings.Cut(dataURI, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, models.NewValidationError("image: expected a base64 data URI")
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes {
		return nil, models.NewValidationError(fmt.Sprintf("image: file too large (max %dMB)", MaxImageBytes>>20))
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, models.NewValidationError("image: invalid base64 payload")
		}
	}
	if len(raw) == 0 {
		return nil, models.NewValidationError("image: empty file")
	}
	return raw, nil
}

func isAllowedImageMIME(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || (w <= maxWidth && h <= maxHeight) {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	newW, newH := max(int(float64(w)*scale), 1), max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}
