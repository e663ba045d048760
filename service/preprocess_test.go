package service

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func uniformPNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func gradientImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x * 255 / (w - 1)),
				G: uint8(y * 255 / (h - 1)),
				B: uint8((x + y) * 255 / (w + h - 2)),
				A: 255,
			})
		}
	}
	return img
}

func TestDecodeImage(t *testing.T) {
	data := uniformPNG(t, 16, 16, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	img, err := DecodeImage(data)
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Errorf("bounds %v, want 16x16", b)
	}
}

func TestDecodeImageGarbage(t *testing.T) {
	if _, err := DecodeImage([]byte("definitely not an image")); !errors.Is(err, ErrDecode) {
		t.Errorf("error = %v, want ErrDecode", err)
	}
	if _, err := DecodeImage(nil); !errors.Is(err, ErrDecode) {
		t.Errorf("error for nil input = %v, want ErrDecode", err)
	}
}

func TestPreprocessShapeAndRange(t *testing.T) {
	tensor := Preprocess(gradientImage(64, 48), 8)
	if len(tensor) != 8*8*3 {
		t.Fatalf("tensor length %d, want %d", len(tensor), 8*8*3)
	}
	for i, v := range tensor {
		if v < 0 || v > 1 {
			t.Fatalf("tensor[%d] = %v outside [0,1]", i, v)
		}
	}
}

func TestPreprocessUniform(t *testing.T) {
	c := color.RGBA{R: 200, G: 100, B: 50, A: 255}
	img, err := DecodeImage(uniformPNG(t, 32, 32, c))
	if err != nil {
		t.Fatal(err)
	}

	tensor := Preprocess(img, 4)
	want := [3]float64{
		float64(uint32(c.R) * 257) / 65535.0,
		float64(uint32(c.G) * 257) / 65535.0,
		float64(uint32(c.B) * 257) / 65535.0,
	}
	for i := 0; i < len(tensor); i += 3 {
		for ch := 0; ch < 3; ch++ {
			if math.Abs(float64(tensor[i+ch])-want[ch]) > 1e-3 {
				t.Fatalf("pixel %d channel %d = %v, want ~%v", i/3, ch, tensor[i+ch], want[ch])
			}
		}
	}
}

// 同一张图必须得到完全相同的张量
func TestPreprocessDeterministic(t *testing.T) {
	img := gradientImage(100, 80)
	a := Preprocess(img, 16)
	b := Preprocess(img, 16)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("preprocess not deterministic:\n%s", diff)
	}
}
