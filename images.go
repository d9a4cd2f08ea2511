package siteforge

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/draw"
)

const (
	maxImageWidth = 1600
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
	uploadsSubdir = "uploads"
)

// Uploader turns a selected file into a hosted URL. Image fields delegate
// here; a failure surfaces to the user as an upload alert with the error's
// message.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// UploaderFunc adapts a function to the Uploader interface.
type UploaderFunc func(ctx context.Context, filename string, r io.Reader) (string, error)

func (f UploaderFunc) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	return f(ctx, filename, r)
}

// LocalUploader processes uploads onto the local static directory: decode,
// resize down to maxImageWidth, re-encode as JPEG, write under
// <dir>/uploads/ with a slugified unique filename, and record metadata in
// the store. The returned URL is relative to the static mount.
type LocalUploader struct {
	Dir     string        // static assets directory (e.g. "public")
	BaseURL string        // URL prefix the directory is served under (e.g. "/public")
	Store   *SectionStore // image metadata; may be nil
}

func (u *LocalUploader) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	img, data, err := processImage(io.LimitReader(r, maxUploadSize), filename)
	if err != nil {
		return "", err
	}
	if err := u.ensureUniqueFilename(&img); err != nil {
		return "", err
	}

	dir := filepath.Join(u.Dir, uploadsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, img.Filename), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	if u.Store != nil {
		if err := u.Store.SaveImage(img); err != nil {
			return "", err
		}
	}
	return u.BaseURL + "/" + uploadsSubdir + "/" + img.Filename, nil
}

// processImage decodes an image from src, resizes it down to maxImageWidth
// if wider, and encodes it as JPEG. Returns metadata and the encoded bytes.
func processImage(src io.Reader, originalName string) (Image, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return Image{}, nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxImageWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Image{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return Image{
		Filename:     slugifyFilename(originalName) + ".jpg",
		OriginalName: originalName,
		Width:        w,
		Height:       h,
		Size:         buf.Len(),
		UploadedAt:   time.Now().UTC().Format(time.RFC3339),
	}, buf.Bytes(), nil
}

func slugifyFilename(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if s := Slugify(base); s != "" {
		return s
	}
	return "image"
}

// ensureUniqueFilename appends a counter while the filename collides with
// the filesystem or recorded metadata.
func (u *LocalUploader) ensureUniqueFilename(img *Image) error {
	dir := filepath.Join(u.Dir, uploadsSubdir)
	base := strings.TrimSuffix(img.Filename, ".jpg")

	var existing map[string]bool
	if u.Store != nil {
		images, err := u.Store.ListImages()
		if err != nil {
			return err
		}
		existing = make(map[string]bool, len(images))
		for _, ex := range images {
			existing[ex.Filename] = true
		}
	}

	candidate := img.Filename
	for counter := 1; ; counter++ {
		if _, err := os.Stat(filepath.Join(dir, candidate)); err == nil {
			candidate = fmt.Sprintf("%s-%d.jpg", base, counter+1)
			continue
		}
		if existing[candidate] {
			candidate = fmt.Sprintf("%s-%d.jpg", base, counter+1)
			continue
		}
		break
	}
	img.Filename = candidate
	return nil
}
