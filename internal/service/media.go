package service

import (
	"bytes"
	"context"
	"image"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mahamedadballa/circlechat-server/internal/models"
)

// ObjectStore is the blob backend for uploaded media.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
	PresignURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// MediaStore is the metadata persistence for uploaded media.
type MediaStore interface {
	Insert(ctx context.Context, media *models.Media) error
	GetByID(ctx context.Context, id string) (*models.Media, error)
}

// MediaService stores image uploads that back image messages.
type MediaService struct {
	repo       MediaStore
	store      ObjectStore
	presignTTL time.Duration
	log        *zap.Logger
}

func NewMediaService(repo MediaStore, store ObjectStore, presignTTL time.Duration, log *zap.Logger) *MediaService {
	return &MediaService{repo: repo, store: store, presignTTL: presignTTL, log: log}
}

// UploadImage stores the original plus a best-effort thumbnail and records
// the media document. The returned media's URL is what an image message
// carries as content.
func (s *MediaService) UploadImage(ctx context.Context, uid, filename, contentType string, data []byte) (*models.Media, error) {
	id := uuid.NewString()
	key := uid + "/" + id + "_" + filename

	url, err := s.store.Upload(ctx, key, contentType, data)
	if err != nil {
		return nil, err
	}

	thumbKey := ""
	if thumb, err := makeThumbnail(data); err == nil {
		thumbKey = key + "_thumb.jpg"
		if _, err := s.store.Upload(ctx, thumbKey, "image/jpeg", thumb); err != nil {
			s.log.Warn("thumbnail upload failed", zap.String("key", thumbKey), zap.Error(err))
			thumbKey = ""
		}
	}

	media := &models.Media{
		ID:          id,
		UserID:      uid,
		Key:         key,
		URL:         url,
		Thumbnail:   thumbKey,
		ContentType: contentType,
		Size:        int64(len(data)),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, media); err != nil {
		return nil, err
	}
	return media, nil
}

// PresignedURL returns a temporary GET URL for a stored object.
func (s *MediaService) PresignedURL(ctx context.Context, id string) (string, error) {
	media, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return s.store.PresignURL(ctx, media.Key, s.presignTTL)
}

func makeThumbnail(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	thumb := imaging.Resize(img, 320, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
