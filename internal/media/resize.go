// Package media downloads winning images and prepares them for storage:
// cover-resize to a target profile, JPEG encode, perceptual duplicate
// filtering, and embedded-rights inspection.
package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ResizeProfile is a resize target: output dimensions, JPEG quality, and
// the width to request from the upstream photo endpoint (fetching larger
// than the target keeps the downscale sharp).
type ResizeProfile struct {
	Width      int
	Height     int
	Quality    int
	FetchWidth int
}

var (
	// HeroProfile is for country and city hero images.
	HeroProfile = ResizeProfile{Width: 1200, Height: 800, Quality: 85, FetchWidth: 4800}
	// AreaProfile is for neighborhood hero images.
	AreaProfile = ResizeProfile{Width: 1000, Height: 667, Quality: 80, FetchWidth: 2000}
	// GalleryProfile is for supporting gallery images.
	GalleryProfile = ResizeProfile{Width: 800, Height: 600, Quality: 80, FetchWidth: 1600}
)

// ResizeCover decodes raw image bytes, center-crops to the profile's
// aspect ratio, scales to the exact target size, and re-encodes as JPEG.
func ResizeCover(data []byte, profile ResizeProfile) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	crop := coverCrop(src.Bounds(), profile.Width, profile.Height)
	dst := image.NewRGBA(image.Rect(0, 0, profile.Width, profile.Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)

	var buf bytes.Buffer
	quality := profile.Quality
	if quality <= 0 {
		quality = 80
	}
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// coverCrop returns the largest centered sub-rectangle of bounds matching
// the target aspect ratio.
func coverCrop(bounds image.Rectangle, targetW, targetH int) image.Rectangle {
	srcW := bounds.Dx()
	srcH := bounds.Dy()
	srcRatio := float64(srcW) / float64(srcH)
	dstRatio := float64(targetW) / float64(targetH)

	cropW, cropH := srcW, srcH
	if srcRatio > dstRatio {
		cropW = int(float64(srcH) * dstRatio)
	} else {
		cropH = int(float64(srcW) / dstRatio)
	}

	x0 := bounds.Min.X + (srcW-cropW)/2
	y0 := bounds.Min.Y + (srcH-cropH)/2
	return image.Rect(x0, y0, x0+cropW, y0+cropH)
}
