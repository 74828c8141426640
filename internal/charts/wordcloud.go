package charts

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/spacesedan/ecsa/internal/textproc"
)

const (
	CLOUD_WIDTH     = 800
	CLOUD_HEIGHT    = 400
	CLOUD_MAX_WORDS = 150
	MIN_FONT_SIZE   = 10
	MAX_FONT_SIZE   = 64
	SPIRAL_STEPS    = 6000
)

var cloudPalette = []string{
	"#440154", "#3B528B", "#21918C", "#5EC962", "#2C728E", "#472D7B", "#28AE80",
}

var (
	cloudFont     *truetype.Font
	cloudFontErr  error
	cloudFontOnce sync.Once
)

type WordCount struct {
	Word  string
	Count int
}

type rect struct {
	x0, y0, x1, y1 float64
}

func (r rect) overlaps(o rect) bool {
	return r.x0 < o.x1 && o.x0 < r.x1 && r.y0 < o.y1 && o.y0 < r.y1
}

// WordFrequencies counts the words of text that are not stop words, most
// frequent first with ties broken alphabetically.
func WordFrequencies(text string) []WordCount {
	counts := map[string]int{}
	for _, tok := range textproc.Words(text) {
		w := normalizeWord(tok)
		if len([]rune(w)) < 2 || isNumeric(w) || IsStopWord(w) {
			continue
		}
		counts[w]++
	}

	out := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		out = append(out, WordCount{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	return out
}

// WordCloud lays out the most frequent words on an Archimedean spiral from
// the center, sized by frequency. Words that do not fit are dropped.
func WordCloud(freqs []WordCount) ([]byte, error) {
	if len(freqs) == 0 {
		return nil, fmt.Errorf("no words to draw")
	}
	if len(freqs) > CLOUD_MAX_WORDS {
		freqs = freqs[:CLOUD_MAX_WORDS]
	}

	ttf, err := loadCloudFont()
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(CLOUD_WIDTH, CLOUD_HEIGHT)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	faces := map[int]font.Face{}
	maxCount := float64(freqs[0].Count)
	var placed []rect

	for i, wc := range freqs {
		size := fontSize(wc.Count, maxCount)
		face, ok := faces[size]
		if !ok {
			face = truetype.NewFace(ttf, &truetype.Options{Size: float64(size)})
			faces[size] = face
		}
		dc.SetFontFace(face)

		w, h := dc.MeasureString(wc.Word)
		cx, cy, ok := findSpot(w, h, placed)
		if !ok {
			continue
		}
		placed = append(placed, rect{cx - w/2, cy - h/2, cx + w/2, cy + h/2})

		dc.SetHexColor(cloudPalette[i%len(cloudPalette)])
		dc.DrawStringAnchored(wc.Word, cx, cy, 0.5, 0.35)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func findSpot(w, h float64, placed []rect) (float64, float64, bool) {
	midX, midY := float64(CLOUD_WIDTH)/2, float64(CLOUD_HEIGHT)/2
	aspect := float64(CLOUD_HEIGHT) / float64(CLOUD_WIDTH)

	for step := 0; step < SPIRAL_STEPS; step++ {
		t := float64(step) * 0.1
		cx := midX + 2*t*math.Cos(t)
		cy := midY + 2*t*math.Sin(t)*aspect

		r := rect{cx - w/2, cy - h/2, cx + w/2, cy + h/2}
		if r.x0 < 0 || r.y0 < 0 || r.x1 > CLOUD_WIDTH || r.y1 > CLOUD_HEIGHT {
			continue
		}

		free := true
		for _, p := range placed {
			if r.overlaps(p) {
				free = false
				break
			}
		}
		if free {
			return cx, cy, true
		}
	}
	return 0, 0, false
}

func fontSize(count int, maxCount float64) int {
	scale := math.Sqrt(float64(count) / maxCount)
	return MIN_FONT_SIZE + int(math.Round(scale*float64(MAX_FONT_SIZE-MIN_FONT_SIZE)))
}

func loadCloudFont() (*truetype.Font, error) {
	cloudFontOnce.Do(func() {
		cloudFont, cloudFontErr = truetype.Parse(goregular.TTF)
	})
	return cloudFont, cloudFontErr
}

func normalizeWord(tok string) string {
	w := strings.Trim(tok, "'’-")
	w = strings.TrimSuffix(w, "'s")
	w = strings.TrimSuffix(w, "’s")
	return w
}

func isNumeric(w string) bool {
	for _, r := range w {
		if !unicode.IsDigit(r) && r != '.' && r != ',' {
			return false
		}
	}
	return true
}
