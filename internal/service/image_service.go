package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/huzidev/dev-forum-api/internal/models"
	"github.com/huzidev/dev-forum-api/internal/observability"
	"github.com/huzidev/dev-forum-api/internal/repository"
	"github.com/huzidev/dev-forum-api/internal/storage"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	MaxImageUploadBytes = 10 << 20
	MasterMaxSize       = 2048
	JPEGQuality         = 82
	WebPQuality         = 70
)

// UploadImageInput is a multipart upload. PostID, when set, attaches the
// result to that post, replacing any previous image.
type UploadImageInput struct {
	PostID      *uint
	Filename    string
	ContentType string
	Content     []byte
}

// UploadResult is a stored image, plus its attachment when a post was named.
type UploadResult struct {
	Image     *models.Image     `json:"image"`
	PostImage *models.PostImage `json:"postImage,omitempty"`
	WebPURL   string            `json:"webpUrl,omitempty"`
}

// ImageService normalizes uploads and manages post attachments.
type ImageService struct {
	core
	store storage.ObjectStore
	now   func() time.Time
}

func NewImageService(d Deps) *ImageService {
	return &ImageService{core: newCore(d, "images"), store: d.Store, now: time.Now}
}

type encodedImage struct {
	jpeg []byte
	webp []byte
}

// normalize decodes content, bounds it to MasterMaxSize and re-encodes it as
// JPEG and WebP. Uploads are never stored as sent.
func normalize(content []byte, contentType string) (*encodedImage, error) {
	if len(content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if len(content) > MaxImageUploadBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", MaxImageUploadBytes>>20))
	}
	if !isAllowedImageMIME(http.DetectContentType(content)) {
		return nil, models.NewValidationError("Invalid image type")
	}

	decoded, format, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}
	if provided := normalizeContentType(contentType); strings.HasPrefix(provided, "image/") &&
		!isMatchingContentType(provided, decodedFormatToMime(format)) {
		return nil, models.NewValidationError("Image content type mismatch")
	}

	master := resizeToFit(decoded, MasterMaxSize, MasterMaxSize)
	out := &encodedImage{}
	if out.jpeg, err = encodeJPEG(master, JPEGQuality); err != nil {
		return nil, models.NewInternalError(err)
	}
	if out.webp, err = encodeWebP(master, WebPQuality); err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

// put writes both encodings and returns the unsaved Image row.
func (s *ImageService) put(ctx context.Context, filename string, enc *encodedImage) (*models.Image, string, error) {
	key := storage.WithExt(storage.ObjectKey(filename, s.now()), ".jpg")
	url, err := s.store.Put(ctx, key, enc.jpeg, "image/jpeg")
	if err != nil {
		return nil, "", models.NewInternalError(fmt.Errorf("store image: %w", err))
	}
	webpURL, err := s.store.Put(ctx, storage.WithExt(key, ".webp"), enc.webp, "image/webp")
	if err != nil {
		removeObject(ctx, s.store, s.log, key)
		return nil, "", models.NewInternalError(fmt.Errorf("store webp variant: %w", err))
	}
	return &models.Image{URL: url, Key: key}, webpURL, nil
}

// Upload processes an image and stores it. With in.PostID the caller must be
// the post's author, and the image replaces the post's current one.
func (s *ImageService) Upload(ctx context.Context, uploader *models.User, in UploadImageInput) (_ *UploadResult, err error) {
	ctx, done := traced(ctx, "images", "Upload")
	defer done(&err)

	if err := requireUser(uploader); err != nil {
		return nil, err
	}
	if in.PostID != nil {
		post, err := s.repos.Posts.GetByID(ctx, *in.PostID)
		if err != nil {
			return nil, err
		}
		if err := requireAuthor(uploader, post.UserID, "You can only change images of your own posts"); err != nil {
			return nil, err
		}
	}

	enc, err := normalize(in.Content, in.ContentType)
	if err != nil {
		observability.ImagesProcessed.WithLabelValues("rejected").Inc()
		return nil, err
	}
	img, webpURL, err := s.put(ctx, in.Filename, enc)
	if err != nil {
		observability.ImagesProcessed.WithLabelValues("failed").Inc()
		return nil, err
	}

	result := &UploadResult{Image: img, WebPURL: webpURL}
	if in.PostID == nil {
		if err := s.repos.Images.Create(ctx, img); err != nil {
			removeObject(ctx, s.store, s.log, img.Key)
			return nil, err
		}
	} else {
		if result.PostImage, err = s.setPostImage(ctx, *in.PostID, img, true); err != nil {
			removeObject(ctx, s.store, s.log, img.Key)
			return nil, err
		}
	}
	observability.ImagesProcessed.WithLabelValues("stored").Inc()
	s.log.InfoContext(ctx, "image stored", "image_id", img.ID, "key", img.Key)
	return result, nil
}

// Replace is Upload for a post that must already exist.
func (s *ImageService) Replace(ctx context.Context, caller *models.User, postID uint, in UploadImageInput) (*UploadResult, error) {
	in.PostID = &postID
	return s.Upload(ctx, caller, in)
}

// AttachURL attaches an already-hosted image to a post that has none.
func (s *ImageService) AttachURL(ctx context.Context, caller *models.User, postID uint, url string) (*models.PostImage, error) {
	url, err := requireText(url, "imageUrl")
	if err != nil {
		return nil, err
	}
	post, err := s.repos.Posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := requireAuthor(caller, post.UserID, "You can only change images of your own posts"); err != nil {
		return nil, err
	}
	return s.setPostImage(ctx, postID, &models.Image{URL: url}, false)
}

// setPostImage stores img and attaches it to the post in one transaction.
// With replace the previous Image and PostImage rows are deleted first and
// the old object is removed after commit; without it an existing attachment
// is a conflict.
func (s *ImageService) setPostImage(ctx context.Context, postID uint, img *models.Image, replace bool) (*models.PostImage, error) {
	var attached, previous *models.PostImage
	err := s.tx.WithinTx(ctx, func(tx *repository.Repositories) error {
		var err error
		if previous, err = tx.Images.GetPostImage(ctx, postID); err != nil {
			return err
		}
		if previous != nil {
			if !replace {
				return models.NewConflictError("Post already has an image")
			}
			if err := tx.Images.Detach(ctx, previous); err != nil {
				return err
			}
		}
		if err := tx.Images.Create(ctx, img); err != nil {
			return err
		}
		attached, err = tx.Images.Attach(ctx, postID, img.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if previous != nil && previous.Image != nil {
		removeObject(ctx, s.store, s.log, previous.Image.Key)
	}
	attached.Image = img
	return attached, nil
}

// removeObject deletes a stored upload and its WebP variant. Images attached
// by URL have no key and are left alone.
func removeObject(ctx context.Context, store storage.ObjectStore, log *slog.Logger, key string) {
	if store == nil || key == "" {
		return
	}
	for _, k := range []string{key, storage.WithExt(key, ".webp")} {
		if err := store.Delete(ctx, k); err != nil {
			log.WarnContext(ctx, "object delete failed", "key", k, "error", err)
		}
	}
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 || (w <= maxWidth && h <= maxHeight) {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

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

func isMatchingContentType(provided, detected string) bool {
	if provided == detected {
		return true
	}
	return (provided == "image/jpg" && detected == "image/jpeg") || (provided == "image/jpeg" && detected == "image/jpg")
}

func decodedFormatToMime(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}
