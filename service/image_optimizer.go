package service

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"autoparts-storefront/logging"

	"github.com/disintegration/imaging"
)

const (
	// Quality settings
	qualityThumb  = 60
	qualityMedium = 75
	// Size settings (max dimension)
	maxSizeThumb  = 300
	maxSizeMedium = 800

	maxSourceImage = 15 << 20
)

// ErrImageHostNotAllowed is returned for image sources outside the catalog hosts
var ErrImageHostNotAllowed = errors.New("image host not allowed")

// ImageService fetches product images and serves cached JPEG renditions
type ImageService struct {
	cacheDir     string
	baseURL      string
	allowedHosts []string
	http         *http.Client
}

// NewImageService creates an image service. Relative sources resolve against baseURL,
// and only baseURL's host plus allowedHosts may be fetched.
func NewImageService(cacheDir, baseURL string, allowedHosts ...string) *ImageService {
	hosts := append([]string{}, allowedHosts...)
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		hosts = append(hosts, u.Host)
	}
	return &ImageService{
		cacheDir:     cacheDir,
		baseURL:      strings.TrimRight(baseURL, "/"),
		allowedHosts: hosts,
		http:         &http.Client{Timeout: 20 * time.Second},
	}
}

// EnsureCacheDir ensures the cache directory exists, creates it if it doesn't
func (s *ImageService) EnsureCacheDir() error {
	if err := os.MkdirAll(s.cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	return nil
}

// CachePath returns the cache file path for a source URL and size
func (s *ImageService) CachePath(src, size string) string {
	sum := sha1.Sum([]byte(src))
	return filepath.Join(s.cacheDir, fmt.Sprintf("product_%s_%s.jpg", hex.EncodeToString(sum[:]), size))
}

// Thumbnail returns the optimized rendition of src, from the cache when possible
func (s *ImageService) Thumbnail(ctx context.Context, src, size string) ([]byte, error) {
	full, err := s.resolve(src)
	if err != nil {
		return nil, err
	}

	cachePath := s.CachePath(full, size)
	if data, err := os.ReadFile(cachePath); err == nil {
		return data, nil
	}

	raw, err := s.fetch(ctx, full)
	if err != nil {
		return nil, err
	}

	optimized, err := OptimizeImage(raw, size)
	if err != nil {
		return nil, err
	}

	if err := saveToCache(cachePath, optimized); err != nil {
		logging.S().Warnf("⚠️ Thumbnail: %v", err)
	}
	return optimized, nil
}

func (s *ImageService) resolve(src string) (string, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", fmt.Errorf("image source is required")
	}
	if strings.HasPrefix(src, "/") && !strings.HasPrefix(src, "//") {
		src = s.baseURL + src
	}

	u, err := url.Parse(src)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("invalid image source %q", src)
	}
	if !slices.Contains(s.allowedHosts, u.Host) {
		return "", fmt.Errorf("%w: %s", ErrImageHostNotAllowed, u.Host)
	}
	return u.String(), nil
}

func (s *ImageService) fetch(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image endpoint returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceImage))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	return data, nil
}

// saveToCache saves an image to the cache
func saveToCache(cachePath string, imageData []byte) error {
	if err := os.MkdirAll(filepath.Dir(cachePath), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(cachePath, imageData, 0644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}

	logging.S().Infof("✓ Image cached: %s", cachePath)
	return nil
}

// OptimizeImage converts imageData (PNG, JPEG, GIF) to a JPEG that fits the size box.
// size: "thumb" or "medium"; anything else falls back to medium
func OptimizeImage(imageData []byte, size string) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	logging.S().Debugf("📸 Image decoded: format=%s, bounds=%v", format, img.Bounds())

	maxDim, quality := maxSizeMedium, qualityMedium
	switch size {
	case "thumb":
		maxDim, quality = maxSizeThumb, qualityThumb
	case "medium":
	default:
		logging.S().Warnf("⚠️ Unknown size '%s', defaulting to medium", size)
	}

	// Fit keeps the aspect ratio and never upscales
	resized := imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}

	logging.S().Debugf("✓ Image optimized: size=%s, quality=%d, output_size=%d bytes", size, quality, buf.Len())
	return buf.Bytes(), nil
}
