// Package storage stores uploaded avatars and product images and hands back
// the public reference that is saved on the owning record.
package storage

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
)

// Disk stores blobs by path and maps a path to its public URL.
type Disk interface {
	Put(ctx context.Context, path string, content []byte) error
	Delete(ctx context.Context, path string) error
	URL(path string) string
}

var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"webp": true,
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Store writes content under name and returns its public reference.
func Store(ctx context.Context, d Disk, name string, content []byte) (string, error) {
	if err := d.Put(ctx, name, content); err != nil {
		return "", err
	}
	return d.URL(name), nil
}

// Remove deletes the object behind a reference returned by Store. References
// that d did not hand out, such as the placeholder image, are left alone.
func Remove(ctx context.Context, d Disk, ref string) error {
	prefix := d.URL("")
	if ref == "" || !strings.HasPrefix(ref, prefix) || len(ref) == len(prefix) {
		return nil
	}
	return d.Delete(ctx, strings.TrimPrefix(ref, prefix))
}

// AllowedImage reports whether filename carries one of the accepted image
// extensions.
func AllowedImage(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	return allowedExtensions[ext]
}

// SecureFilename strips directory components and any character outside
// [A-Za-z0-9._-] so the result is safe to use as a storage key.
func SecureFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	return strings.TrimLeft(name, "._")
}
