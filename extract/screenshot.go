package extract

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sort"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ScreenshotProfile summarizes the rendered page capture for the
// generation step: true dimensions and the handful of colors that
// dominate the pixels.
type ScreenshotProfile struct {
	Dimensions     Viewport `json:"dimensions"`
	DominantColors []string `json:"dominant_colors"`
}

const (
	profileScaleWidth = 64
	maxDominantColors = 5
)

// ProfileScreenshot decodes a page screenshot and reports its dominant
// colors. Returns nil for missing or undecodable data; a bad screenshot
// never fails extraction.
func ProfileScreenshot(data []byte) *ScreenshotProfile {
	if len(data) == 0 {
		return nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil
	}

	// Counting on a thumbnail keeps this O(1) regardless of capture size.
	sw, sh := w, h
	if sw > profileScaleWidth {
		sh = sh * profileScaleWidth / sw
		if sh < 1 {
			sh = 1
		}
		sw = profileScaleWidth
	}
	small := image.NewRGBA(image.Rect(0, 0, sw, sh))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), img, bounds, draw.Src, nil)

	counts := map[rgbColor]int{}
	for y := 0; y < sh; y++ {
		for x := 0; x < sw; x++ {
			r, g, b, _ := small.At(x, y).RGBA()
			counts[quantizeChannel(r, g, b)]++
		}
	}

	type bucket struct {
		col   rgbColor
		count int
	}
	buckets := make([]bucket, 0, len(counts))
	for col, count := range counts {
		buckets = append(buckets, bucket{col, count})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].count != buckets[j].count {
			return buckets[i].count > buckets[j].count
		}
		return buckets[i].col.hex() < buckets[j].col.hex()
	})
	dominant := make([]string, 0, maxDominantColors)
	for _, b := range buckets {
		if len(dominant) == maxDominantColors {
			break
		}
		dominant = append(dominant, b.col.hex())
	}

	return &ScreenshotProfile{
		Dimensions:     Viewport{Width: w, Height: h},
		DominantColors: dominant,
	}
}

// quantizeChannel folds each 16-bit channel into a 16-level bucket and
// returns the bucket midpoint, so near-identical shades pool together.
func quantizeChannel(r, g, b uint32) rgbColor {
	q := func(v uint32) uint8 {
		return uint8(v>>8)&0xf0 | 0x08
	}
	return rgbColor{q(r), q(g), q(b)}
}
