package imageio

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	for y := range 2 {
		for x := range 3 {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 80), G: uint8(y * 120), B: 30, A: 255})
		}
	}
	return img
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
		err  bool
	}{
		{"out.png", PNG, false},
		{"OUT.PNG", PNG, false},
		{"a/b.bmp", BMP, false},
		{"x.tif", TIFF, false},
		{"x.tiff", TIFF, false},
		{"x.jpg", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatOf(tt.path)
			if tt.err {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Fatalf("FormatOf(%q) error = %v, want ErrUnsupportedFormat", tt.path, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("FormatOf(%q) = %q, %v; want %q", tt.path, got, err, tt.want)
			}
		})
	}
}

func TestWriteReadFile(t *testing.T) {
	want := testImage()
	for _, name := range []string{"img.png", "img.bmp", "img.tiff"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			if err := WriteFile(path, want); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			got, err := ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			if got.Bounds() != want.Bounds() {
				t.Fatalf("bounds = %v, want %v", got.Bounds(), want.Bounds())
			}
			for y := range 2 {
				for x := range 3 {
					if g, w := got.RGBAAt(x, y), want.RGBAAt(x, y); g != w {
						t.Errorf("pixel (%d,%d) = %v, want %v", x, y, g, w)
					}
				}
			}
		})
	}
}

func TestEncodeEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, PNG, image.NewRGBA(image.Rect(0, 0, 0, 0))); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("Encode(empty) = %v, want ErrEmptyImage", err)
	}
	if err := Encode(&buf, Format("gif"), testImage()); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Encode(gif) = %v, want ErrUnsupportedFormat", err)
	}
}

func TestToRGBA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 5, 7, 6))
	src.SetNRGBA(5, 5, color.NRGBA{R: 255, A: 255})

	got := ToRGBA(src)
	if got.Bounds() != image.Rect(0, 0, 2, 1) {
		t.Fatalf("bounds = %v", got.Bounds())
	}
	if c := got.RGBAAt(0, 0); c != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("pixel = %v", c)
	}

	rgba := testImage()
	if ToRGBA(rgba) != rgba {
		t.Error("ToRGBA must return *image.RGBA unchanged")
	}
}
