package imagesvc

import (
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
)

const avatarSize = 125 // px, both dimensions

// Thumbnailer stores uploaded profile pictures under MediaRoot,
// downscaled to a fixed-size thumbnail.
type Thumbnailer struct {
	mediaRoot string
}

func NewThumbnailer(conf *core.Config) *Thumbnailer {
	return &Thumbnailer{mediaRoot: conf.MediaRoot}
}

// SaveAvatar resizes the uploaded image and writes it to
// MediaRoot/avatars under a random name. It returns the stored filename.
func (t *Thumbnailer) SaveAvatar(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", errors.Wrap(err, "opening uploaded file")
	}
	defer src.Close()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", errors.Wrap(err, "decoding image")
	}
	thumb := imaging.Fit(img, avatarSize, avatarSize, imaging.Lanczos)

	ext := filepath.Ext(fh.Filename)
	if ext == "" {
		ext = ".jpg"
	}
	fname := uuid.New().String() + ext

	dir := filepath.Join(t.mediaRoot, "avatars")
	if err = os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "creating avatars dir")
	}
	if err = imaging.Save(thumb, filepath.Join(dir, fname)); err != nil {
		return "", errors.Wrap(err, "saving thumbnail")
	}
	return fname, nil
}
