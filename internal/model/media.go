package model

import "errors"

const (
	MaxImageSizeBytes = 5 << 20
	ImageExt          = ".jpg"
	ImageJPEGQuality  = 85
	// Keys are never reused, so stored images can be cached for a year.
	ImageCacheControl = "public, max-age=31536000, immutable"
)

// ImageKind selects the target geometry and bucket folder of an upload.
type ImageKind string

const (
	ImageKindAvatar ImageKind = "avatars"
	ImageKindHeader ImageKind = "headers"
)

// Dimensions returns the normalised width and height for the kind.
func (k ImageKind) Dimensions() (int, int) {
	if k == ImageKindHeader {
		return 1200, 400
	}
	return 200, 200
}

// Image types accepted for upload, as sniffed from the file contents.
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeGIF  = "image/gif"
	ContentTypeWebP = "image/webp"
)

var allowedImageTypes = map[string]struct{}{
	ContentTypeJPEG: {},
	ContentTypePNG:  {},
	ContentTypeGIF:  {},
	ContentTypeWebP: {},
}

var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidImageType = errors.New("invalid image type")
)

// UploadResult locates a stored image: URL is public, Key is the bucket key.
type UploadResult struct {
	URL string
	Key string
}

func IsAllowedImageType(contentType string) bool {
	_, ok := allowedImageTypes[contentType]
	return ok
}
