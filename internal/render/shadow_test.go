package render

import (
	"image"
	"image/color"
	"testing"
)

func TestApplyShadowExpandsBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	subject := image.Pt(5, 5)
	img.Set(subject.X, subject.Y, color.RGBA{R: 255, A: 255})

	opts := ShadowOptions{Radius: 4, Offset: image.Pt(8, 6), Opacity: 0.5}
	res := ApplyShadow(img, opts)
	if res.Image == nil {
		t.Fatal("expected output image")
	}
	expected := image.Rect(0, 0, 22, 20)
	if !res.Image.Bounds().Eq(expected) {
		t.Fatalf("unexpected bounds %v, want %v", res.Image.Bounds(), expected)
	}
	if res.Offset != (image.Point{}) {
		t.Fatalf("cut-out moved to %v", res.Offset)
	}
	shadowPt := subject.Add(opts.Offset)
	if res.Image.RGBAAt(shadowPt.X, shadowPt.Y).A == 0 {
		t.Fatalf("expected shadow alpha at %v", shadowPt)
	}
	if got := res.Image.RGBAAt(subject.X, subject.Y); got != (color.RGBA{R: 255, A: 255}) {
		t.Fatalf("subject pixel = %+v", got)
	}
}

func TestApplyShadowNegativeOffsetShiftsSubject(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.RGBA{G: 255, A: 255})
	res := ApplyShadow(img, ShadowOptions{Radius: 1, Offset: image.Pt(-3, -2), Opacity: 1})
	want := image.Pt(4, 3)
	if res.Offset != want {
		t.Fatalf("offset = %v, want %v", res.Offset, want)
	}
	if got := res.Image.RGBAAt(want.X, want.Y); got.G != 255 {
		t.Fatalf("subject not at offset: %+v", got)
	}
}

func TestApplyShadowNoShadowWhenOpacityZero(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	fill := color.RGBA{R: 200, G: 100, B: 50, A: 255}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, fill)
		}
	}
	res := ApplyShadow(img, ShadowOptions{Radius: 12, Offset: image.Pt(20, 10), Opacity: 0})
	if res.Image != img {
		t.Fatal("expected the input image back unchanged")
	}
}

func TestApplyShadowBlurredAlpha(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{A: 255})
	opts := ShadowOptions{Radius: 2, Offset: image.Pt(3, 0), Opacity: 1}

	res := ApplyShadow(img, opts)
	if res.Image.Bounds().Dx() <= img.Bounds().Dx() {
		t.Fatalf("expected wider output bounds")
	}
	base := img.Bounds().Min.Add(opts.Offset)
	baseAlpha := res.Image.RGBAAt(base.X, base.Y).A
	if baseAlpha == 0 {
		t.Fatal("expected alpha at base shadow location")
	}
	if res.Image.RGBAAt(base.X+1, base.Y).A == 0 {
		t.Fatalf("expected blurred alpha to reach neighbor, base alpha=%d", baseAlpha)
	}
}

func TestBoxBlurPreservesUniformField(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 9, 5))
	for i := range src.Pix {
		src.Pix[i] = 77
	}
	out := boxBlur(src, 3)
	for i, v := range out.Pix {
		if v != 77 {
			t.Fatalf("pix %d = %d, want 77", i, v)
		}
	}
}
