package transform_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/cimcore/cim/envelope"
	"github.com/cimcore/cim/transform"
)

func solidPNG(t *testing.T, width, height int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture png: %v", err)
	}
	return buf.Bytes()
}

func TestConvertImagePNGToJPEG(t *testing.T) {
	data := solidPNG(t, 4, 4, color.RGBA{R: 200, G: 50, B: 50, A: 255})

	result, err := transform.ConvertImage(data, envelope.PNG, transform.TargetJPEG, transform.Options{Quality: 80})
	if err != nil {
		t.Fatalf("convert image: %v", err)
	}
	if result.ToFormat != transform.TargetJPEG {
		t.Fatalf("expected TargetJPEG, got %s", result.ToFormat)
	}
	if _, err := jpeg.Decode(bytes.NewReader(result.Data)); err != nil {
		t.Fatalf("expected valid jpeg output: %v", err)
	}
}

func TestConvertImageWebPEncodeUnsupported(t *testing.T) {
	data := solidPNG(t, 2, 2, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	_, err := transform.ConvertImage(data, envelope.PNG, transform.TargetWebP, transform.Options{})
	if err == nil {
		t.Fatalf("expected WebP encoding to be unsupported")
	}
}

func TestConvertImageUnsupportedSourceFormat(t *testing.T) {
	_, err := transform.ConvertImage([]byte("not an image"), envelope.GIF, transform.TargetPNG, transform.Options{})
	if err == nil {
		t.Fatalf("expected error for unsupported source format")
	}
}
