// Package thumbnail renders a preview PNG of a thumbnail caption over an
// optional background image at the project's frame ratio.
package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	_ "golang.org/x/image/webp"
)

const (
	defaultWidth   = 1280
	minFontSize    = 24.0
	lineSpacing    = 1.15
	outlineRadius  = 4
	maxTextShare   = 0.6
	captionPadding = 0.08
)

// Renderer draws captions with a bold font
type Renderer struct {
	mu    sync.Mutex
	font  *opentype.Font
	width int
	faces map[float64]font.Face
}

// NewRenderer creates a renderer. An empty fontPath uses the built-in Go Bold font;
// width <= 0 uses 1280px.
func NewRenderer(fontPath string, width int) (*Renderer, error) {
	data := gobold.TTF
	if fontPath != "" {
		custom, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("could not read font %s: %w", fontPath, err)
		}
		data = custom
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("could not parse font: %w", err)
	}
	if width <= 0 {
		width = defaultWidth
	}
	return &Renderer{font: f, width: width, faces: make(map[float64]font.Face)}, nil
}

// Dimensions converts a ratio like "16:9" into pixel dimensions for the given width
func Dimensions(ratio string, width int) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(ratio), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid frame ratio %q", ratio)
	}
	rw, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	rh, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || rw <= 0 || rh <= 0 {
		return 0, 0, fmt.Errorf("invalid frame ratio %q", ratio)
	}
	return width, width * rh / rw, nil
}

func (r *Renderer) face(size float64) (font.Face, error) {
	if face, ok := r.faces[size]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	r.faces[size] = face
	return face, nil
}

// Render draws caption centered over background (nil for a gradient) and returns PNG bytes
func (r *Renderer) Render(caption string, background image.Image, ratio string) ([]byte, error) {
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return nil, fmt.Errorf("caption is empty")
	}
	w, h, err := Dimensions(ratio, r.width)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	dc := gg.NewContext(w, h)
	if background != nil {
		drawCover(dc, background)
		// Darken so the caption stays readable
		dc.SetRGBA(0, 0, 0, 0.35)
		dc.DrawRectangle(0, 0, float64(w), float64(h))
		dc.Fill()
	} else {
		grad := gg.NewLinearGradient(0, 0, float64(w), float64(h))
		grad.AddColorStop(0, color.RGBA{0x1b, 0x14, 0x2e, 0xff})
		grad.AddColorStop(1, color.RGBA{0x6b, 0x1d, 0x2a, 0xff})
		dc.SetFillStyle(grad)
		dc.DrawRectangle(0, 0, float64(w), float64(h))
		dc.Fill()
	}

	maxWidth := float64(w) * (1 - 2*captionPadding)
	if err := r.fitCaption(dc, caption, maxWidth, float64(h)*maxTextShare, float64(h)/6); err != nil {
		return nil, err
	}

	cx, cy := float64(w)/2, float64(h)/2
	dc.SetRGB(0, 0, 0)
	for dy := -outlineRadius; dy <= outlineRadius; dy += 2 {
		for dx := -outlineRadius; dx <= outlineRadius; dx += 2 {
			if dx == 0 && dy == 0 {
				continue
			}
			dc.DrawStringWrapped(caption, cx+float64(dx), cy+float64(dy), 0.5, 0.5, maxWidth, lineSpacing, gg.AlignCenter)
		}
	}
	dc.SetRGB(1, 0.85, 0.1)
	dc.DrawStringWrapped(caption, cx, cy, 0.5, 0.5, maxWidth, lineSpacing, gg.AlignCenter)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// fitCaption picks the largest font size whose wrapped caption fits maxHeight
func (r *Renderer) fitCaption(dc *gg.Context, caption string, maxWidth, maxHeight, startSize float64) error {
	size := startSize
	for {
		face, err := r.face(size)
		if err != nil {
			return fmt.Errorf("could not create font face: %w", err)
		}
		dc.SetFontFace(face)
		lines := dc.WordWrap(caption, maxWidth)
		height := float64(len(lines)) * dc.FontHeight() * lineSpacing
		if height <= maxHeight || size <= minFontSize {
			return nil
		}
		size = float64(int(size * 0.9))
		if size < minFontSize {
			size = minFontSize
		}
	}
}

// drawCover scales src to fill the context, cropping the overflow around the center
func drawCover(dc *gg.Context, src image.Image) {
	w, h := dc.Width(), dc.Height()
	sb := src.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	if sw == 0 || sh == 0 {
		return
	}

	var crop image.Rectangle
	if sw*h > sh*w {
		cw := sh * w / h
		x0 := sb.Min.X + (sw-cw)/2
		crop = image.Rect(x0, sb.Min.Y, x0+cw, sb.Max.Y)
	} else {
		ch := sw * h / w
		y0 := sb.Min.Y + (sh-ch)/2
		crop = image.Rect(sb.Min.X, y0, sb.Max.X, y0+ch)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Over, nil)
	dc.DrawImage(dst, 0, 0)
}

// LoadBackground decodes a PNG, JPEG or WebP file
func LoadBackground(path string) (image.Image, error) {
	img, err := gg.LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("could not load background %s: %w", path, err)
	}
	return img, nil
}
