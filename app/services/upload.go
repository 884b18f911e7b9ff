package services

import (
	"context"
	"fmt"

	"github.com/heartscript/storefront/app/utils/storage"
	"github.com/rs/zerolog/log"
)

// Upload is a file received from a multipart form.
type Upload struct {
	Filename string
	Content  []byte
}

func (u *Upload) empty() bool {
	return u == nil || u.Filename == ""
}

// checkImage rejects uploads that are not an accepted image type or whose
// name is nothing but unsafe characters.
func checkImage(u *Upload) (string, error) {
	if !storage.AllowedImage(u.Filename) {
		return "", invalid("file %q is not an allowed image", u.Filename)
	}
	name := storage.SecureFilename(u.Filename)
	if name == "" {
		return "", invalid("file name %q is not usable", u.Filename)
	}
	return name, nil
}

func storeUpload(ctx context.Context, disk storage.Disk, name string, u *Upload) (string, error) {
	ref, err := storage.Store(ctx, disk, name, u.Content)
	if err != nil {
		return "", fmt.Errorf("failed to store %s: %w", name, err)
	}
	return ref, nil
}

// discardUploads removes stored images. Failures are only logged; the
// record that referenced them is already gone or was never written.
func discardUploads(ctx context.Context, disk storage.Disk, refs ...string) {
	for _, ref := range refs {
		if err := storage.Remove(ctx, disk, ref); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("ref", ref).Msg("discardUploads: failed to remove image")
		}
	}
}
