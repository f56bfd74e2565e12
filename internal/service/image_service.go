package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"mime"
	"net/http"
	"strings"

	"github.com/KarunyaReddyJ/My-Blog-App/internal/config"
	"github.com/KarunyaReddyJ/My-Blog-App/internal/models"
	"github.com/KarunyaReddyJ/My-Blog-App/internal/observability"
	"github.com/KarunyaReddyJ/My-Blog-App/internal/storage"

	"github.com/chai2010/webp"
	"go.opentelemetry.io/otel/attribute"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultImageMaxUploadSizeMB = 5
	MasterMaxSize               = 1600
	JPEGQuality                 = 82
	WebPQuality                 = 70
	MaxBatchUploadCount         = 5

	imageKeyPrefix = "blog-images"
)

type UploadImageInput struct {
	UserID      uint
	Filename    string
	ContentType string
	Content     []byte
}

// UploadedImage is what an upload hands back to the client: the hosted
// URL plus the identifier needed to delete it later.
type UploadedImage struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// ImageService normalizes uploaded images and pushes them to the
// external object store that serves them.
type ImageService struct {
	store              storage.ObjectStore
	maxUploadSizeBytes int64
}

func NewImageService(store storage.ObjectStore, cfg *config.Config) *ImageService {
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB
	if cfg != nil && cfg.ImageMaxUploadSizeMB > 0 {
		maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
	}
	return &ImageService{
		store:              store,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// Upload validates, re-encodes, and stores a single image. The stored
// key is content-addressed, so re-uploading the same bytes lands on the
// same object instead of duplicating it.
func (s *ImageService) Upload(ctx context.Context, in UploadImageInput) (*UploadedImage, error) {
	span, ctx := observability.NewSpan(ctx, "image.process")
	defer span.End()

	if in.UserID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		observability.ImageUploadsTotal.WithLabelValues("too_large").Inc()
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(in.Content)
	if !isAllowedImageMIME(detectedType) {
		observability.ImageUploadsTotal.WithLabelValues("bad_type").Inc()
		return nil, models.NewValidationError("Invalid image type")
	}

	decoded, format, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		observability.ImageUploadsTotal.WithLabelValues("bad_type").Inc()
		return nil, models.NewValidationError("Invalid image file")
	}
	if !isSupportedDecodedFormat(format) {
		observability.ImageUploadsTotal.WithLabelValues("bad_type").Inc()
		return nil, models.NewValidationError("Unsupported image format")
	}
	span.AddAttributes(
		attribute.String("image.format", format),
		attribute.Int("image.size_bytes", len(in.Content)),
	)

	master := resizeToFit(decoded, MasterMaxSize, MasterMaxSize)

	encodedJPG, err := encodeJPEG(master, JPEGQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	encodedWebP, err := encodeWebP(master, WebPQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	hash := buildImageHash(in.UserID, encodedJPG)

	url, err := s.store.Put(ctx, imageKey(hash, "jpg"), "image/jpeg", encodedJPG)
	if err != nil {
		span.SetError(err)
		observability.ImageUploadsTotal.WithLabelValues("store_error").Inc()
		return nil, models.NewInternalError(err)
	}
	if _, err := s.store.Put(ctx, imageKey(hash, "webp"), "image/webp", encodedWebP); err != nil {
		span.SetError(err)
		observability.ImageUploadsTotal.WithLabelValues("store_error").Inc()
		return nil, models.NewInternalError(err)
	}

	observability.ImageUploadsTotal.WithLabelValues("ok").Inc()
	return &UploadedImage{URL: url, PublicID: hash}, nil
}

// UploadMultiple stores up to MaxBatchUploadCount images in one request.
func (s *ImageService) UploadMultiple(ctx context.Context, userID uint, inputs []UploadImageInput) ([]*UploadedImage, error) {
	if len(inputs) == 0 {
		return nil, models.NewValidationError("No files uploaded")
	}
	if len(inputs) > MaxBatchUploadCount {
		return nil, models.NewValidationError(fmt.Sprintf("Too many files (max %d)", MaxBatchUploadCount))
	}

	results := make([]*UploadedImage, 0, len(inputs))
	for _, in := range inputs {
		in.UserID = userID
		uploaded, err := s.Upload(ctx, in)
		if err != nil {
			return nil, err
		}
		results = append(results, uploaded)
	}
	return results, nil
}

// Delete removes both stored encodings of an image by its public ID.
func (s *ImageService) Delete(ctx context.Context, userID uint, publicID string) error {
	if userID == 0 {
		return models.NewUnauthorizedError("Authentication required")
	}
	if !isValidImageHash(publicID) {
		return models.NewValidationError("Invalid image id")
	}

	if err := s.store.Delete(ctx, imageKey(publicID, "jpg")); err != nil {
		return models.NewInternalError(err)
	}
	if err := s.store.Delete(ctx, imageKey(publicID, "webp")); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func imageKey(hash, ext string) string {
	return fmt.Sprintf("%s/%s.%s", imageKeyPrefix, hash, ext)
}

// isValidImageHash checks that the id is strictly lowercase hex (SHA-256 style).
// This prevents key injection via crafted id parameters.
func isValidImageHash(hash string) bool {
	if len(hash) == 0 || len(hash) > 128 {
		return false
	}
	for _, c := range hash {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isSupportedDecodedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}

func buildImageHash(userID uint, content []byte) string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%d:", userID)
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}
