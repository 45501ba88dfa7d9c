package images

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"os"

	"github.com/bbrks/go-blurhash"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// blurHashSize is the longest edge of the thumbnail the hash is computed
// from. The placeholder is low resolution so a small image is enough.
const blurHashSize = 64

// ComputeBlurHash decodes an image and returns its 4x3 BlurHash.
func ComputeBlurHash(r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	hash, err := blurhash.Encode(4, 3, thumbnail(img))
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

// ComputeBlurHashFile is ComputeBlurHash over the file at path.
func ComputeBlurHashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	return ComputeBlurHash(file)
}

// thumbnail scales img down so its longest edge is blurHashSize, keeping
// the aspect ratio. Small images are returned as is.
func thumbnail(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= blurHashSize && h <= blurHashSize {
		return img
	}

	dw, dh := blurHashSize, blurHashSize
	if w > h {
		dh = max(1, h*blurHashSize/w)
	} else {
		dw = max(1, w*blurHashSize/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}
