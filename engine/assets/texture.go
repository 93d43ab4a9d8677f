package assets

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	xdraw "golang.org/x/image/draw"

	"github.com/spaghettifunk/tessera/engine/resources"
)

// ImportTexture decodes a PNG or JPEG file into tightly packed RGBA pixels
// ready for a staging upload.
func ImportTexture(path string) (*resources.TextureData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening texture %q", path)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding texture %q", path)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Draw(rgba, rgba.Bounds(), img, bounds.Min, xdraw.Src)

	return &resources.TextureData{
		Name:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
		Pixels: rgba.Pix,
	}, nil
}

// FallbackTexture builds a procedural checkerboard used when a mesh part
// references a texture that cannot be loaded.
func FallbackTexture() *resources.TextureData {
	const dim = 64
	pixels := make([]byte, dim*dim*4)
	for y := 0; y < dim; y++ {
		for x := 0; x < dim; x++ {
			i := (y*dim + x) * 4
			c := byte(0x20)
			if (x/8+y/8)%2 == 0 {
				c = 0xD0
			}
			pixels[i] = c
			pixels[i+1] = c
			pixels[i+2] = 0xE0
			pixels[i+3] = 0xFF
		}
	}
	return &resources.TextureData{
		Name:   "fallback",
		Width:  dim,
		Height: dim,
		Pixels: pixels,
	}
}
