package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp" // registers the webp decoder used by imaging.Decode

	"warbler/internal/config"
	"warbler/internal/model"
)

// objectStore is the subset of *s3.Client the media service needs.
type objectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// MediaService normalises profile images and keeps them in an R2 bucket.
type MediaService struct {
	store     objectStore
	bucket    string
	publicURL string
	logger    *zap.Logger
}

func NewMediaService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*MediaService, error) {
	if !cfg.MediaEnabled() {
		return nil, fmt.Errorf("missing Cloudflare R2 configuration")
	}

	client, err := newR2Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newMediaService(client, cfg.R2BucketName, cfg.R2PublicURL, logger), nil
}

// newR2Client points the S3 SDK at the account's R2 endpoint.
func newR2Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load r2 config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID))
		o.UsePathStyle = true
	}), nil
}

func newMediaService(store objectStore, bucket, publicURL string, logger *zap.Logger) *MediaService {
	return &MediaService{
		store:     store,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		logger:    logger,
	}
}

// UploadImage checks the upload, fills it to the kind's geometry as JPEG and
// stores it under <kind>/<uuid>.jpg.
func (s *MediaService) UploadImage(ctx context.Context, kind model.ImageKind, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error) {
	if header.Size > model.MaxImageSizeBytes {
		return nil, model.ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file, model.MaxImageSizeBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > model.MaxImageSizeBytes {
		return nil, model.ErrFileTooLarge
	}
	if !model.IsAllowedImageType(sniffImageType(data, header)) {
		return nil, model.ErrInvalidImageType
	}

	body, err := normaliseImage(data, kind)
	if err != nil {
		return nil, err
	}

	key := string(kind) + "/" + uuid.NewString() + model.ImageExt
	_, err = s.store.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(model.ContentTypeJPEG),
		CacheControl: aws.String(model.ImageCacheControl),
	})
	if err != nil {
		return nil, fmt.Errorf("put %s: %w", key, err)
	}

	s.logger.Debug("image uploaded", zap.String("key", key), zap.Int("bytes", len(body)))
	return &model.UploadResult{URL: s.publicURL + "/" + key, Key: key}, nil
}

// IsHosted reports whether url names an object in the image bucket.
func (s *MediaService) IsHosted(url string) bool {
	_, ok := s.objectKey(url)
	return ok
}

func (s *MediaService) objectKey(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, s.publicURL+"/")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

// DeleteImage removes an image previously returned by UploadImage. URLs that
// do not point into the bucket (defaults, external links) are ignored.
func (s *MediaService) DeleteImage(ctx context.Context, url string) error {
	key, ok := s.objectKey(url)
	if !ok {
		return nil
	}

	_, err := s.store.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// sniffImageType trusts the bytes over the declared Content-Type, which
// browsers fill from the file name.
func sniffImageType(data []byte, header *multipart.FileHeader) string {
	if len(data) > 0 {
		return http.DetectContentType(data)
	}
	ct, _, _ := strings.Cut(header.Header.Get("Content-Type"), ";")
	return strings.TrimSpace(ct)
}

func normaliseImage(data []byte, kind model.ImageKind) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidImageType, err)
	}

	width, height := kind.Dimensions()
	img = imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(model.ImageJPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
