// Package media provides icon lookup and resizing
package media

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/persistence/fsstore"
)

const (
	MaxIconWidth = 1024
	webpQuality  = 90
)

var (
	ErrIconNotFound  = errors.New("icon not found")
	ErrInvalidWidth  = fmt.Errorf("width must be between 1 and %d", MaxIconWidth)
	ErrInvalidFormat = errors.New("unsupported icon format")
)

// Variant selects a derived rendering of an icon. The zero value is the
// original file.
type Variant struct {
	Width int
	WebP  bool
}

// IsOriginal reports whether no transformation was requested.
func (v Variant) IsOriginal() bool {
	return v.Width == 0 && !v.WebP
}

// IconProcessor serves icons from one directory, caching derivatives.
type IconProcessor struct {
	iconsDir string
	cacheDir string
}

// NewIconProcessor creates a processor reading from iconsDir and caching under cacheDir.
func NewIconProcessor(iconsDir, cacheDir string) *IconProcessor {
	return &IconProcessor{iconsDir: iconsDir, cacheDir: cacheDir}
}

// Resolve maps a requested filename to a file in the icons directory. Any
// directory components are discarded.
func (p *IconProcessor) Resolve(filename string) (string, error) {
	name := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(filename, `\`, "/")))
	if name == "" || name == "." || name == ".." || name == "/" || strings.HasPrefix(name, ".") {
		return "", ErrIconNotFound
	}
	path := filepath.Join(p.iconsDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", ErrIconNotFound
	}
	return path, nil
}

// Path returns the file to serve for filename and variant, generating and
// caching a derivative when needed. SVG icons are always served as-is.
func (p *IconProcessor) Path(filename string, v Variant) (string, error) {
	src, err := p.Resolve(filename)
	if err != nil {
		return "", err
	}
	if v.Width < 0 || v.Width > MaxIconWidth {
		return "", ErrInvalidWidth
	}
	ext := strings.ToLower(filepath.Ext(src))
	if v.IsOriginal() || ext == ".svg" {
		return src, nil
	}

	outExt := ext
	if v.WebP {
		outExt = ".webp"
	} else if _, err := imaging.FormatFromExtension(ext); err != nil {
		outExt = ".png"
	}
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	size := "orig"
	if v.Width > 0 {
		size = fmt.Sprintf("w%d", v.Width)
	}
	dst := filepath.Join(p.cacheDir, fmt.Sprintf("%s_%s%s", stem, size, outExt))

	if fresh(src, dst) {
		return dst, nil
	}
	if err := p.render(src, dst, v, outExt); err != nil {
		return "", err
	}
	return dst, nil
}

func (p *IconProcessor) render(src, dst string, v Variant, outExt string) error {
	img, err := imaging.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if v.Width > 0 {
		// Resize image maintaining aspect ratio
		img = imaging.Resize(img, v.Width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if outExt == ".webp" {
		err = webp.Encode(&buf, img, &webp.Options{Quality: webpQuality})
	} else {
		var format imaging.Format
		format, err = imaging.FormatFromExtension(outExt)
		if err == nil {
			err = imaging.Encode(&buf, img, format)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(dst), err)
	}

	if err := os.MkdirAll(p.cacheDir, 0o755); err != nil {
		return fmt.Errorf("failed to create icon cache: %w", err)
	}
	return fsstore.WriteFile(dst, buf.Bytes())
}

func fresh(src, dst string) bool {
	d, err := os.Stat(dst)
	if err != nil {
		return false
	}
	s, err := os.Stat(src)
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	return err == nil && !s.ModTime().After(d.ModTime())
}
