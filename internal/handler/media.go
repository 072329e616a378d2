package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"warbler/internal/form"
	"warbler/internal/model"
)

// maxFormBytes bounds a form post: two images plus the text fields.
const maxFormBytes = 2*model.MaxImageSizeBytes + 1024*1024

var errFormTooLarge = errors.New("form too large")

// parseForm reads a urlencoded or multipart form with a size cap.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(maxFormBytes)
	} else {
		err = r.ParseForm()
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errFormTooLarge
	}
	return err
}

// uploadFormImage stores the file posted in field, if any, and returns its
// public URL. Without an uploader or a file it returns "".
func uploadFormImage(ctx context.Context, uploader ImageUploader, r *http.Request, field string, kind model.ImageKind) (string, error) {
	if uploader == nil || r.MultipartForm == nil {
		return "", nil
	}

	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", field, err)
	}
	defer file.Close()

	res, err := uploader.UploadImage(ctx, kind, file, header)
	if err != nil {
		return "", err
	}
	return res.URL, nil
}

// uploadErrors maps a user-caused upload failure onto the URL field it
// replaces. Other errors are returned unchanged.
func uploadErrors(err error, urlField string) (form.Errors, error) {
	switch {
	case errors.Is(err, model.ErrFileTooLarge), errors.Is(err, errFormTooLarge):
		return form.Errors{urlField: "Image must be 5MB or smaller."}, nil
	case errors.Is(err, model.ErrInvalidImageType):
		return form.Errors{urlField: "Unsupported image type. Allowed: jpeg, png, gif, webp."}, nil
	default:
		return nil, err
	}
}

// imageField is an image URL as typed into a form next to the value the
// account currently holds.
type imageField struct {
	name    string
	typed   string
	current string
}

// foreignImageErrors rejects bucket URLs typed into an image field. Only an
// upload puts a bucket URL on an account, so a typed one is accepted only as
// the account's current image. Replaced images are deleted from the bucket,
// which must never reach another account's upload.
func foreignImageErrors(uploader ImageUploader, fields ...imageField) form.Errors {
	if uploader == nil {
		return nil
	}
	var errs form.Errors
	for _, f := range fields {
		if f.typed == "" || f.typed == f.current || !uploader.IsHosted(f.typed) {
			continue
		}
		if errs == nil {
			errs = form.Errors{}
		}
		errs[f.name] = "Upload the image instead of linking to it."
	}
	return errs
}

// discardImages deletes uploads that were replaced or never used. Failures
// only leave an orphaned object behind, so they are logged and not returned.
func (p *Responder) discardImages(ctx context.Context, uploader ImageUploader, urls ...string) {
	if uploader == nil {
		return
	}
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := uploader.DeleteImage(ctx, url); err != nil {
			p.logger.Warn("delete replaced image", zap.String("url", url), zap.Error(err))
		}
	}
}
