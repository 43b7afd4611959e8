// Package token manages the game token image shown in Play mode.
package token

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	// Register decoders for the default asset.
	_ "image/jpeg"

	"github.com/disintegration/gift"
	"gocv.io/x/gocv"
)

var (
	// ErrAssetLoad is returned when the default token cannot be read.
	ErrAssetLoad = errors.New("token asset load failed")

	// ErrAssetSave is returned when a captured token cannot be written.
	ErrAssetSave = errors.New("token asset save failed")

	// ErrEmptyCrop is returned when the photo window misses the frame.
	ErrEmptyCrop = errors.New("photo window outside frame")
)

// Token is a small raster image with a cached BGR Mat for drawing.
type Token struct {
	img *image.RGBA
	raw image.Image
	mat gocv.Mat
}

// Load decodes the image at path and fits it within maxSize, keeping the
// aspect ratio.
func Load(path string, maxSize image.Point) (*Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetLoad, err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrAssetLoad, path, err)
	}

	g := gift.New(gift.ResizeToFit(maxSize.X, maxSize.Y, gift.LinearResampling))
	return newToken(src, g)
}

// Capture crops rect out of frame, a BGR Mat, and resizes the crop to
// size. The un-resized crop is kept for Save.
func Capture(frame gocv.Mat, rect image.Rectangle, size image.Point) (*Token, error) {
	rect = rect.Intersect(image.Rect(0, 0, frame.Cols(), frame.Rows()))
	if rect.Empty() {
		return nil, ErrEmptyCrop
	}

	full, err := frame.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}

	crop := gift.New(gift.Crop(rect))
	raw := image.NewRGBA(crop.Bounds(full.Bounds()))
	crop.Draw(raw, full)

	g := gift.New(gift.Resize(size.X, size.Y, gift.LinearResampling))
	t, err := newToken(raw, g)
	if err != nil {
		return nil, err
	}
	t.raw = raw
	return t, nil
}

func newToken(src image.Image, g *gift.GIFT) (*Token, error) {
	img := image.NewRGBA(g.Bounds(src.Bounds()))
	g.Draw(img, src)

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("token to mat: %w", err)
	}

	return &Token{img: img, raw: src, mat: mat}, nil
}

// Size returns the drawn size.
func (t *Token) Size() image.Point {
	return t.img.Bounds().Size()
}

// Image returns the resized token.
func (t *Token) Image() image.Image {
	return t.img
}

// Mat returns the token as a BGR Mat owned by the Token.
func (t *Token) Mat() gocv.Mat {
	return t.mat
}

// Save writes the un-resized source image as PNG.
func (t *Token) Save(path string) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: %v", ErrAssetSave, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAssetSave, err)
	}

	if err := png.Encode(file, t.raw); err != nil {
		file.Close()
		return fmt.Errorf("%w: encode: %v", ErrAssetSave, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrAssetSave, err)
	}
	return nil
}

// Close releases the cached Mat.
func (t *Token) Close() error {
	return t.mat.Close()
}
