package integrations

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/nwatts/gbdl/pkg/data"
)

// testPNG encodes a solid-color PNG with the given dimensions.
func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test PNG: %v", err)
	}
	return buf.Bytes()
}

func testImages(t *testing.T, count int) []data.PageImage {
	t.Helper()
	images := make([]data.PageImage, count)
	for i := range images {
		images[i] = data.PageImage{
			Page:   data.Page{Number: i + 1, PID: pidFor(i)},
			Data:   testPNG(t, 40, 60),
			Width:  40,
			Height: 60,
			Ext:    "png",
		}
	}
	return images
}

func pidFor(i int) string {
	return "PA" + string(rune('1'+i))
}

func testIssue() *data.Issue {
	return &data.Issue{
		ID:          "CFEEAAAAMBAJ",
		SeriesName:  "LIFE",
		PublishDate: "Oct 3, 1969",
		Type:        data.Magazine,
	}
}
