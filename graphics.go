package main

import (
	"bytes"
	"image/color"
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"lightbox/internal/media"
	"lightbox/internal/richtext"
)

// Font sources, loaded once by InitGraphics
var (
	globalFontSource *text.GoTextFaceSource
	boldFontSource   *text.GoTextFaceSource
	monoFontSource   *text.GoTextFaceSource
)

// InitGraphics initializes the global font sources for text rendering
func InitGraphics() error {
	for _, f := range []struct {
		dst **text.GoTextFaceSource
		ttf []byte
	}{
		{&globalFontSource, goregular.TTF},
		{&boldFontSource, gobold.TTF},
		{&monoFontSource, gomono.TTF},
	} {
		s, err := text.NewGoTextFaceSource(bytes.NewReader(f.ttf))
		if err != nil {
			return err
		}
		*f.dst = s
	}
	return nil
}

func face(src *text.GoTextFaceSource, size float64) *text.GoTextFace {
	if src == nil {
		src = globalFontSource
	}
	return &text.GoTextFace{Source: src, Size: size}
}

// DrawText draws text with specified position and color
func DrawText(screen *ebiten.Image, textString string, font *text.GoTextFace, x, y float64, textColor color.RGBA) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(textColor)
	text.Draw(screen, textString, font, op)
}

// DrawFilledRect draws filled rectangles with float64 coordinates
func DrawFilledRect(screen *ebiten.Image, x, y, w, h float64, bgColor color.RGBA) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), bgColor, false)
}

func drawBorder(img *ebiten.Image, width, height float64, thickness float64, c color.RGBA) {
	DrawFilledRect(img, 0, 0, width, thickness, c)
	DrawFilledRect(img, 0, height-thickness, width, thickness, c)
	DrawFilledRect(img, 0, 0, thickness, height, c)
	DrawFilledRect(img, width-thickness, 0, thickness, height, c)
}

// truncate shortens s to fit maxWidth with an ellipsis
func truncate(s string, font *text.GoTextFace, maxWidth float64) string {
	if w, _ := text.Measure(s, font, 0); w <= maxWidth {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if w, _ := text.Measure(candidate, font, 0); w <= maxWidth {
			return candidate
		}
	}
	return "..."
}

// CreateErrorImage creates an error placeholder image with a source name and error message
func CreateErrorImage(width, height int, src, errorMsg string) *ebiten.Image {
	if width <= 0 || height <= 0 {
		width, height = 400, 300
	}

	errorImg := ebiten.NewImage(width, height)
	errorImg.Fill(color.RGBA{120, 30, 30, 255})
	drawBorder(errorImg, float64(width), float64(height), 3, colorWhite)

	// Fallback: a plain card without text
	if globalFontSource == nil {
		return errorImg
	}

	errorFont := face(globalFontSource, 20)
	maxWidth := float64(width) - 20
	name := src
	if ref, err := media.ParseRef(src); err == nil {
		name = ref.Name()
	}

	DrawText(errorImg, "ERROR", errorFont, 10, 20, colorWhite)
	DrawText(errorImg, truncate("Source: "+name, errorFont, maxWidth), errorFont, 10, 50, colorWhite)
	DrawText(errorImg, truncate("Reason: "+errorMsg, errorFont, maxWidth), errorFont, 10, 80, colorWhite)

	return errorImg
}

// CreateVideoPlaceholder draws a play symbol card for videos without a
// poster. Video playback is left to external players.
func CreateVideoPlaceholder(src string) *ebiten.Image {
	const w, h = 960, 540
	img := ebiten.NewImage(w, h)
	img.Fill(color.RGBA{24, 24, 28, 255})

	// play triangle
	var path vector.Path
	cx, cy := float32(w/2), float32(h/2)
	path.MoveTo(cx-40, cy-50)
	path.LineTo(cx+55, cy)
	path.LineTo(cx-40, cy+50)
	path.Close()
	vertices, indices := path.AppendVerticesAndIndicesForFilling(nil, nil)
	for i := range vertices {
		vertices[i].ColorR, vertices[i].ColorG, vertices[i].ColorB, vertices[i].ColorA = 0.85, 0.85, 0.85, 1
	}
	img.DrawTriangles(vertices, indices, whitePixel(), &ebiten.DrawTrianglesOptions{AntiAlias: true})

	if globalFontSource != nil {
		name := src
		if ref, err := media.ParseRef(src); err == nil {
			name = ref.Name()
		}
		f := face(globalFontSource, 22)
		name = truncate(name, f, w-40)
		tw, _ := text.Measure(name, f, 0)
		DrawText(img, name, f, (w-tw)/2, h-70, colorLightGray)
	}
	return img
}

var whiteSubImage *ebiten.Image

func whitePixel() *ebiten.Image {
	if whiteSubImage == nil {
		base := ebiten.NewImage(3, 3)
		base.Fill(color.White)
		whiteSubImage = base.SubImage(base.Bounds().Inset(1)).(*ebiten.Image)
	}
	return whiteSubImage
}

// Card layout
const (
	cardPadding   = 48.0
	cardBodySize  = 22.0
	cardIndent    = 28.0
	cardMaxHeight = 4096
)

var (
	cardBackground = color.RGBA{250, 250, 248, 255}
	cardText       = color.RGBA{30, 30, 30, 255}
	cardMuted      = color.RGBA{110, 110, 110, 255}
	cardCodeBg     = color.RGBA{236, 236, 232, 255}
)

type cardLine struct {
	text   string
	font   *text.GoTextFace
	x      float64
	height float64
	color  color.RGBA
	style  richtext.Style
}

// blockFont returns the face for a block style
func blockFont(b richtext.Block) (*text.GoTextFace, color.RGBA) {
	switch b.Style {
	case richtext.StyleHeading:
		size := math.Max(cardBodySize, 40-float64(b.Level)*4)
		return face(boldFontSource, size), cardText
	case richtext.StyleCode:
		return face(monoFontSource, cardBodySize*0.9), cardText
	case richtext.StyleQuote:
		return face(globalFontSource, cardBodySize), cardMuted
	default:
		return face(globalFontSource, cardBodySize), cardText
	}
}

// layoutCard wraps blocks into lines for a card of the given width
func layoutCard(blocks []richtext.Block, width float64) ([]cardLine, float64) {
	var lines []cardLine
	height := cardPadding

	for _, b := range blocks {
		font, c := blockFont(b)
		lineHeight := font.Size * 1.45
		x := cardPadding + float64(b.Indent)*cardIndent
		if b.Style == richtext.StyleQuote {
			x += cardIndent / 2
		}

		if b.Style == richtext.StyleRule {
			lines = append(lines, cardLine{x: x, height: cardBodySize, style: b.Style})
			height += cardBodySize
			continue
		}

		content := b.Text()
		if b.Marker != "" {
			content = b.Marker + " " + content
		}
		measure := func(s string) float64 {
			w, _ := text.Measure(s, font, 0)
			return w
		}
		for _, l := range richtext.Wrap(content, width-x-cardPadding, measure) {
			lines = append(lines, cardLine{text: l, font: font, x: x, height: lineHeight, color: c, style: b.Style})
			height += lineHeight
		}
		if b.Style != richtext.StyleCode {
			height += font.Size * 0.5
			if n := len(lines); n > 0 {
				lines[n-1].height += font.Size * 0.5
			}
		}
	}
	return lines, height + cardPadding
}

// renderCard draws a text document as an image of the given width
func renderCard(blocks []richtext.Block, width int) *ebiten.Image {
	if globalFontSource == nil {
		log.Printf("Warning: Fonts not initialized, text card left blank")
		img := ebiten.NewImage(width, width*3/4)
		img.Fill(cardBackground)
		return img
	}

	lines, height := layoutCard(blocks, float64(width))
	h := int(math.Min(math.Max(height, float64(width)*9/16), cardMaxHeight))
	img := ebiten.NewImage(width, h)
	img.Fill(cardBackground)

	y := cardPadding
	for _, l := range lines {
		if y > float64(h)-cardPadding {
			break
		}
		switch l.style {
		case richtext.StyleRule:
			DrawFilledRect(img, l.x, y+l.height/2, float64(width)-l.x-cardPadding, 1, cardMuted)
		case richtext.StyleCode:
			DrawFilledRect(img, l.x-6, y, float64(width)-l.x-cardPadding+12, l.height, cardCodeBg)
			DrawText(img, l.text, l.font, l.x, y, l.color)
		case richtext.StyleQuote:
			DrawFilledRect(img, l.x-cardIndent/2, y, 3, l.height, cardMuted)
			DrawText(img, l.text, l.font, l.x, y, l.color)
		default:
			DrawText(img, l.text, l.font, l.x, y, l.color)
		}
		y += l.height
	}
	return img
}
