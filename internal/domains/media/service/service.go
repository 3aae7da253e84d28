package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"
	"taskboard/config"
	"taskboard/infras/otel"
	"taskboard/infras/s3"
	"taskboard/internal/domains/media/model"
	"taskboard/internal/domains/media/model/dto"
	"taskboard/shared"
	"taskboard/shared/constant"
	"taskboard/shared/failure"
	"taskboard/shared/timezone"
	"time"

	"github.com/rs/zerolog/log"
)

type Media interface {
	UploadImage(ctx context.Context, req dto.UploadImageRequest) (dto.UploadImageResponse, error)
	DeleteImages(ctx context.Context, req dto.DeleteImagesRequest) error
}

type serviceImpl struct {
	cfg  *config.Config
	otel otel.Otel
	s3   s3.S3
}

func New(cfg *config.Config, otel otel.Otel, s3 s3.S3) Media {
	return &serviceImpl{
		cfg:  cfg,
		otel: otel,
		s3:   s3,
	}
}

// ObjectKey names an upload as <unix-ms>-<hash>.<ext>, where hash is the first
// hex characters of sha256("<user>-<unix-ms>-<original name>").
func ObjectKey(userID, originalName, fallbackExt string, now time.Time) string {
	millis := now.UnixMilli()
	sum := sha256.Sum256(fmt.Appendf(nil, "%s-%d-%s", userID, millis, originalName))

	ext := strings.TrimPrefix(path.Ext(originalName), ".")
	if ext == "" {
		ext = fallbackExt
	}

	return fmt.Sprintf("%d-%s.%s", millis, hex.EncodeToString(sum[:])[:model.KeyHashLength], strings.ToLower(ext))
}

// userDirectory keeps each user's uploads under their own prefix so deletes can be
// checked for ownership.
func userDirectory(userID string) string {
	return path.Join(model.EntityName, userID)
}

func (s *serviceImpl) UploadImage(ctx context.Context, req dto.UploadImageRequest) (res dto.UploadImageResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UploadImage")
	defer scope.End()
	defer scope.TraceIfError(&err)

	data, err := io.ReadAll(req.ImageFile)
	if err != nil {
		log.Error().Err(err).Msg("failed to read uploaded file")

		return res, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	img, err := processImage(data, model.ImageSize)
	if err != nil {
		return res, err
	}

	user := shared.UserIDFromContext(ctx)
	fileName := ObjectKey(user, req.Image.Filename, img.extension, timezone.Now())

	url, err := s.s3.Upload(ctx, path.Join(userDirectory(user), fileName), img.contentType, img.data)
	if err != nil {
		return res, fmt.Errorf("failed to upload image: %w", err)
	}

	res.FromModel(url, fileName, img.width, img.height)

	return res, nil
}

func (s *serviceImpl) DeleteImages(ctx context.Context, req dto.DeleteImagesRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".DeleteImages")
	defer scope.End()
	defer scope.TraceIfError(&err)

	ownPrefix := userDirectory(shared.UserIDFromContext(ctx)) + "/"
	keys := make([]string, 0, len(req.ImageURLs))

	// every url is checked before anything is deleted
	for _, url := range req.ImageURLs {
		key, ok := s.s3.KeyFromURL(url)
		if !ok {
			return failure.BadRequestFromString("image url does not belong to this storage: " + url) // nolint:wrapcheck
		}

		if !strings.HasPrefix(key, ownPrefix) {
			return failure.ErrNotOwner
		}

		keys = append(keys, key)
	}

	if err = s.s3.Delete(ctx, keys...); err != nil {
		log.Error().Err(err).Strs("keys", keys).Msg("Failed to delete images")

		return fmt.Errorf("failed to delete images: %w", err)
	}

	return nil
}
