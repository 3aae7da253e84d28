package service

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"taskboard/shared/constant"
	"taskboard/shared/failure"

	"golang.org/x/image/draw"
)

const (
	formatPNG  = "png"
	formatJPEG = "jpeg"

	jpegQuality = 100
)

type processedImage struct {
	data        []byte
	contentType string
	extension   string
	width       int
	height      int
}

// processImage decodes a png or jpeg, crops it to cover a size x size square and
// re-encodes it in the source format.
func processImage(data []byte, size int) (processedImage, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return processedImage{}, failure.BadRequestFromString("image must be a valid png or jpeg") // nolint:wrapcheck
	}

	dst := resizeCover(src, size)
	buf := bytes.NewBuffer(nil)

	res := processedImage{
		width:  dst.Bounds().Dx(),
		height: dst.Bounds().Dy(),
	}

	switch format {
	case formatPNG:
		err = png.Encode(buf, dst)
		res.contentType = constant.ContentTypePNG
		res.extension = "png"
	case formatJPEG:
		err = jpeg.Encode(buf, dst, &jpeg.Options{Quality: jpegQuality})
		res.contentType = constant.ContentTypeJPEG
		res.extension = "jpg"
	default:
		return processedImage{}, failure.BadRequestFromString("image must be a valid png or jpeg") // nolint:wrapcheck
	}

	if err != nil {
		return processedImage{}, fmt.Errorf("failed to encode %s image: %w", format, err)
	}

	res.data = buf.Bytes()

	return res, nil
}

// resizeCover scales src down until it covers the target square, then crops the
// centre. Images already inside the square are returned untouched and images are
// never enlarged.
func resizeCover(src image.Image, size int) image.Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width <= size && height <= size {
		return src
	}

	scale := math.Min(1, math.Max(float64(size)/float64(width), float64(size)/float64(height)))

	dstWidth := min(size, int(math.Round(float64(width)*scale)))
	dstHeight := min(size, int(math.Round(float64(height)*scale)))

	cropWidth := min(width, int(math.Round(float64(dstWidth)/scale)))
	cropHeight := min(height, int(math.Round(float64(dstHeight)/scale)))

	x0 := bounds.Min.X + (width-cropWidth)/2
	y0 := bounds.Min.Y + (height-cropHeight)/2

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, image.Rect(x0, y0, x0+cropWidth, y0+cropHeight), draw.Src, nil)

	return dst
}
