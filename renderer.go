package main

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"lightbox/internal/geometry"
	"lightbox/internal/lightbox"
	"lightbox/internal/richtext"
)

// Common colors used in rendering
var (
	colorWhite     = color.RGBA{255, 255, 255, 255}
	colorGray      = color.RGBA{180, 180, 180, 255}
	colorLightGray = color.RGBA{192, 192, 192, 255}
	colorYellow    = color.RGBA{255, 255, 100, 255}
	colorCyan      = color.RGBA{100, 255, 255, 255}
	colorLightBlue = color.RGBA{200, 200, 255, 255}
	colorGreen     = color.RGBA{100, 255, 100, 255}
	colorOrange    = color.RGBA{255, 200, 100, 255}
	colorLightRed  = color.RGBA{255, 150, 150, 255}

	// Background colors for semi-transparent overlays
	bgColorLight  = color.RGBA{0, 0, 0, 128}
	bgColorMedium = color.RGBA{0, 0, 0, 160}
	bgColorDark   = color.RGBA{0, 0, 0, 200}
)

// palette is the color set of a theme
type palette struct {
	background color.RGBA
	chrome     color.RGBA // header buttons, arrows, footer
	text       color.RGBA
	muted      color.RGBA
	accent     color.RGBA
}

var (
	darkPalette = palette{
		background: color.RGBA{0, 0, 0, 255},
		chrome:     color.RGBA{0, 0, 0, 140},
		text:       colorWhite,
		muted:      colorGray,
		accent:     colorWhite,
	}
	whitePalette = palette{
		background: color.RGBA{255, 255, 255, 255},
		chrome:     color.RGBA{255, 255, 255, 190},
		text:       color.RGBA{20, 20, 20, 255},
		muted:      color.RGBA{90, 90, 90, 255},
		accent:     color.RGBA{20, 20, 20, 255},
	}
)

// themePalette maps a theme name to its colors. Unknown themes use the
// default dark look.
func themePalette(theme string) palette {
	if theme == "white" {
		return whitePalette
	}
	return darkPalette
}

// controlLabels are the header button captions
var controlLabels = map[string]string{
	"close":      "X",
	"fullscreen": "[ ]",
	"autofit":    "FIT",
	"zoom-in":    "+",
	"zoom-out":   "-",
	"green":      "G",
	"red":        "R",
	"normal":     "N",
	"theme":      "T",
	"play":       ">",
	"download":   "DL",
}

func controlLabel(c controlRect) string {
	if c.Name == "play" && c.On {
		return "||"
	}
	if label, ok := controlLabels[c.Name]; ok {
		return label
	}
	label := strings.ToUpper(c.Name)
	if len(label) > 3 {
		label = label[:3]
	}
	return label
}

// imageContent is content with a GPU image behind it
type imageContent interface {
	Image() *ebiten.Image
}

// Renderer handles all drawing operations
type Renderer struct {
	renderState RenderState
	started     time.Time

	errorCard *ebiten.Image
	errorSrc  string
}

// NewRenderer creates a new Renderer
func NewRenderer(renderState RenderState) *Renderer {
	return &Renderer{renderState: renderState, started: time.Now()}
}

// Draw renders the entire screen
func (r *Renderer) Draw(screen *ebiten.Image) {
	scene := r.renderState.GetScene()
	pal := themePalette(scene.Theme)
	screen.Fill(pal.background)

	if scene.Attached {
		r.drawScene(screen, scene, pal)
	}

	if r.renderState.IsShowingInfo() {
		r.drawInfoDisplay(screen)
	}
	if r.renderState.IsShowingHelp() {
		r.drawHelpOverlay(screen)
	}
	if r.renderState.GetOverlayMessage() != "" && time.Since(r.renderState.GetOverlayMessageTime()) < overlayMessageDuration {
		r.drawOverlayMessage(screen)
	}
}

func (r *Renderer) drawScene(screen *ebiten.Image, scene *lightbox.Scene, pal palette) {
	vw, vh := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	viewport := geometry.Size{W: vw, H: vh}

	for _, m := range scene.Outgoing {
		r.drawMedia(screen, m, scene.Slider.Value, viewport)
	}
	if m := scene.Current; m != nil {
		r.drawMedia(screen, m, scene.Slider.Value, viewport)
		if m.Failed || scene.SpinnerError {
			r.drawLoadError(screen)
		}
	}
	if scene.Spinning {
		r.drawSpinner(screen, pal)
	}
	if !scene.Visible {
		return
	}

	if scene.ProgressVisible {
		DrawFilledRect(screen, 0, 0, vw*math.Max(0, math.Min(1, scene.Progress.Value)), 3, pal.accent)
	}

	layout := computeLayout(scene, vw, vh)
	if layout.Footer {
		r.drawFooter(screen, scene.Footer, layout, pal)
	}
	if !scene.Menu {
		return
	}

	if scene.Page != "" {
		f := face(globalFontSource, 18)
		w, h := text.Measure(scene.Page, f, 0)
		DrawFilledRect(screen, headerMargin, headerMargin, w+24, controlSize, pal.chrome)
		DrawText(screen, scene.Page, f, headerMargin+12, headerMargin+(controlSize-h)/2, pal.text)
	}

	labelFont := face(boldFontSource, 16)
	for _, c := range layout.Controls {
		bg := pal.chrome
		if c.On {
			bg = color.RGBA{pal.accent.R, pal.accent.G, pal.accent.B, 90}
		}
		DrawFilledRect(screen, c.Rect.X, c.Rect.Y, c.Rect.W, c.Rect.H, bg)
		label := controlLabel(c)
		w, h := text.Measure(label, labelFont, 0)
		DrawText(screen, label, labelFont, c.Rect.X+(c.Rect.W-w)/2, c.Rect.Y+(c.Rect.H-h)/2, pal.text)
	}

	arrowFont := face(boldFontSource, 28)
	for _, a := range []struct {
		rect  rect
		label string
	}{{layout.Prev, "<"}, {layout.Next, ">"}} {
		if a.rect.W == 0 {
			continue
		}
		DrawFilledRect(screen, a.rect.X, a.rect.Y, a.rect.W, a.rect.H, pal.chrome)
		w, h := text.Measure(a.label, arrowFont, 0)
		DrawText(screen, a.label, arrowFont, a.rect.X+(a.rect.W-w)/2, a.rect.Y+(a.rect.H-h)/2, pal.text)
	}
}

// mediaRect returns where m is drawn: its pane is offset by the slider
// position, the fitted size is scaled and panned around the pane center
func mediaRect(m *lightbox.MediaView, slider float64, viewport geometry.Size) rect {
	mode := m.Fit
	if m.Autofit {
		mode = geometry.FitContain
	}
	size := geometry.FitSize(m.Size(), viewport, mode)
	w, h := size.W*m.Scale.Value, size.H*m.Scale.Value
	paneX := (float64(m.Slide-1) - slider) * viewport.W
	return rect{
		X: paneX + (viewport.W-w)/2 + m.PanX.Value,
		Y: (viewport.H-h)/2 + m.PanY.Value,
		W: w,
		H: h,
	}
}

func (r *Renderer) drawMedia(screen *ebiten.Image, m *lightbox.MediaView, slider float64, viewport geometry.Size) {
	if m == nil || !m.Visible || m.Content == nil {
		return
	}
	ic, ok := m.Content.(imageContent)
	if !ok {
		return
	}
	img := ic.Image()
	dst := mediaRect(m, slider, viewport)
	if dst.W <= 0 || dst.H <= 0 || dst.X > viewport.W || dst.X+dst.W < 0 {
		return
	}

	b := img.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.Filter = ebiten.FilterLinear
	op.GeoM.Scale(dst.W/float64(b.Dx()), dst.H/float64(b.Dy()))
	op.GeoM.Translate(dst.X, dst.Y)
	op.ColorScale.ScaleAlpha(float32(math.Max(0, math.Min(1, m.Opacity.Value))))
	screen.DrawImage(img, op)
}

func (r *Renderer) drawSpinner(screen *ebiten.Image, pal palette) {
	const dots = 8
	cx, cy := float64(screen.Bounds().Dx())/2, float64(screen.Bounds().Dy())/2
	step := int(time.Since(r.started)/(100*time.Millisecond)) % dots
	for i := 0; i < dots; i++ {
		angle := 2 * math.Pi * float64(i) / dots
		alpha := uint8(60 + 195*((i-step+dots)%dots)/(dots-1))
		c := color.RGBA{pal.text.R, pal.text.G, pal.text.B, 255}
		c.R = uint8(uint16(c.R) * uint16(alpha) / 255)
		c.G = uint8(uint16(c.G) * uint16(alpha) / 255)
		c.B = uint8(uint16(c.B) * uint16(alpha) / 255)
		c.A = alpha
		DrawFilledRect(screen, cx+20*math.Cos(angle)-3, cy+20*math.Sin(angle)-3, 6, 6, c)
	}
}

// drawLoadError shows the error card of the failed slide
func (r *Renderer) drawLoadError(screen *ebiten.Image) {
	src := r.renderState.GetSlide().Src
	if r.errorCard == nil || r.errorSrc != src {
		if r.errorCard != nil {
			r.errorCard.Deallocate()
		}
		r.errorCard = CreateErrorImage(480, 120, src, "could not be loaded")
		r.errorSrc = src
	}
	b := r.errorCard.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(screen.Bounds().Dx()-b.Dx())/2, float64(screen.Bounds().Dy()-b.Dy())/2)
	screen.DrawImage(r.errorCard, op)
}

// footerLines wraps the title and description for width
func footerLines(footer lightbox.Footer, width float64, titleFont, bodyFont *text.GoTextFace) (title, body []string) {
	measure := func(f *text.GoTextFace) func(string) float64 {
		return func(s string) float64 {
			w, _ := text.Measure(s, f, 0)
			return w
		}
	}
	if footer.Title != "" {
		title = richtext.Wrap(footer.Title, width, measure(titleFont))
	}
	desc := footer.Description
	if footer.HTML && desc != "" {
		var parts []string
		for _, b := range richtext.Parse([]byte(desc)) {
			parts = append(parts, b.Text())
		}
		desc = strings.Join(parts, "\n")
	}
	if desc != "" {
		body = richtext.Wrap(desc, width, measure(bodyFont))
	}
	return title, body
}

func (r *Renderer) drawFooter(screen *ebiten.Image, footer lightbox.Footer, layout sceneLayout, pal palette) {
	vw, vh := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	titleFont := face(boldFontSource, 20)
	bodyFont := face(globalFontSource, 16)

	textWidth := vw - footerPadding*2
	if layout.Button.W > 0 {
		textWidth -= layout.Button.W + 10
	}
	title, body := footerLines(footer, textWidth, titleFont, bodyFont)

	titleHeight := titleFont.Size * 1.4
	bodyHeight := bodyFont.Size * 1.4
	height := float64(len(title))*titleHeight + float64(len(body))*bodyHeight + footerPadding*2
	if layout.Button.W > 0 {
		height = math.Max(height, buttonHeight+footerPadding*2)
	}

	top := vh - height
	DrawFilledRect(screen, 0, top, vw, height, pal.chrome)

	y := top + footerPadding
	for _, line := range title {
		DrawText(screen, line, titleFont, footerPadding, y, pal.text)
		y += titleHeight
	}
	for _, line := range body {
		DrawText(screen, line, bodyFont, footerPadding, y, pal.muted)
		y += bodyHeight
	}

	if b := layout.Button; b.W > 0 {
		DrawFilledRect(screen, b.X, b.Y, b.W, b.H, color.RGBA{pal.accent.R, pal.accent.G, pal.accent.B, 60})
		label := truncate(footer.Button, bodyFont, b.W-16)
		w, h := text.Measure(label, bodyFont, 0)
		DrawText(screen, label, bodyFont, b.X+(b.W-w)/2, b.Y+(b.H-h)/2, pal.text)
	}
}

// getActionsList returns a sorted list of all actions that have bindings
func (r *Renderer) getActionsList() []string {
	actionSet := make(map[string]bool)
	for action, keys := range r.renderState.GetKeybindings() {
		if len(keys) > 0 {
			actionSet[action] = true
		}
	}
	for action, buttons := range r.renderState.GetMousebindings() {
		if len(buttons) > 0 {
			actionSet[action] = true
		}
	}

	actions := make([]string, 0, len(actionSet))
	for action := range actionSet {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	return actions
}

// helpLines builds the help overlay rows: action, inputs, description
func (r *Renderer) helpLines() [][3]string {
	keybindings := r.renderState.GetKeybindings()
	mousebindings := r.renderState.GetMousebindings()
	descriptions := GetActionDescriptions()

	var rows [][3]string
	for _, action := range r.getActionsList() {
		inputs := strings.Join(keybindings[action], ", ")
		if mouse := mousebindings[action]; len(mouse) > 0 {
			if inputs != "" {
				inputs += " | "
			}
			inputs += strings.Join(mouse, ", ")
		}
		rows = append(rows, [3]string{action, inputs, descriptions[action]})
	}
	return rows
}

// helpSize measures the help overlay at a font size
func (r *Renderer) helpSize(rows [][3]string, status []string, fontSize float64) (width, height float64, columns [2]float64) {
	f := face(globalFontSource, fontSize)
	lineHeight := fontSize * 1.3
	var descWidth float64
	for _, row := range rows {
		aw, _ := text.Measure(row[0], f, 0)
		iw, _ := text.Measure(row[1], f, 0)
		dw, _ := text.Measure(row[2], f, 0)
		columns[0] = math.Max(columns[0], aw)
		columns[1] = math.Max(columns[1], iw)
		descWidth = math.Max(descWidth, dw)
	}
	// two column gaps and the side margins
	width = columns[0] + columns[1] + descWidth + fontSize*4
	height = float64(len(rows)+len(status)+4) * lineHeight
	return width, height, columns
}

func (r *Renderer) statusLines() []string {
	status := r.renderState.GetConfigStatus()
	lines := []string{"Config: " + status.Status}
	for _, w := range status.Warnings {
		lines = append(lines, "- "+w)
	}
	return lines
}

func (r *Renderer) drawHelpOverlay(screen *ebiten.Image) {
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	padding := 40.0
	rows := r.helpLines()
	status := r.statusLines()

	// shrink until the table fits
	fontSize := r.renderState.GetFontSize()
	var width, height float64
	var columns [2]float64
	for ; fontSize >= 10; fontSize-- {
		width, height, columns = r.helpSize(rows, status, fontSize)
		if width <= w-padding*2 && height <= h-padding*2 {
			break
		}
	}
	if fontSize < 10 {
		r.drawMarginTooSmallMessage(screen)
		return
	}

	DrawFilledRect(screen, 0, 0, w, h, bgColorLight)
	DrawFilledRect(screen, padding, padding, w-padding*2, h-padding*2, bgColorMedium)

	f := face(globalFontSource, fontSize)
	lineHeight := fontSize * 1.3
	x := padding + fontSize
	y := padding + fontSize

	DrawText(screen, "HELP:", f, x, y, colorWhite)
	y += lineHeight * 1.5
	gap := fontSize
	for _, row := range rows {
		DrawText(screen, row[0], f, x, y, colorLightBlue)
		DrawText(screen, row[1], f, x+columns[0]+gap, y, colorYellow)
		DrawText(screen, row[2], f, x+columns[0]+columns[1]+gap*2, y, colorGray)
		y += lineHeight
	}

	y += lineHeight * 0.5
	for i, line := range status {
		c := colorGreen
		switch {
		case i > 0:
			c = colorLightRed
		case r.renderState.GetConfigStatus().Status == "Warning":
			c = colorOrange
		case r.renderState.GetConfigStatus().Status == "Error":
			c = colorLightRed
		case r.renderState.GetConfigStatus().Status == "Default":
			c = colorCyan
		}
		DrawText(screen, truncate(line, f, w-padding*2-fontSize*2), f, x, y, c)
		y += lineHeight
	}
}

// drawMarginTooSmallMessage is shown when the help cannot fit the window
func (r *Renderer) drawMarginTooSmallMessage(screen *ebiten.Image) {
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	DrawFilledRect(screen, 0, 0, w, h, bgColorLight)

	f := face(globalFontSource, 18)
	message := "This window is too narrow to contain the help."
	subtitle := "(Enlarge it and press ? again)"
	mw, mh := text.Measure(message, f, 0)
	sw, _ := text.Measure(subtitle, f, 0)
	DrawText(screen, message, f, (w-mw)/2, h/2-mh, colorWhite)
	DrawText(screen, subtitle, f, (w-sw)/2, h/2+10, colorGray)
}

func (r *Renderer) drawInfoDisplay(screen *ebiten.Image) {
	infoFont := face(globalFontSource, r.renderState.GetFontSize()*0.75)
	infoText := r.renderState.GetInfoText()
	textWidth, textHeight := text.Measure(infoText, infoFont, infoFont.Size*1.3)

	padding := 10.0
	textX := float64(screen.Bounds().Dx()) - textWidth - padding
	textY := float64(screen.Bounds().Dy()) - textHeight - padding - 60

	bgPadding := 5.0
	DrawFilledRect(screen, textX-bgPadding, textY-bgPadding, textWidth+bgPadding*2, textHeight+bgPadding*2, bgColorLight)

	op := &text.DrawOptions{}
	op.GeoM.Translate(textX, textY)
	op.LineSpacing = infoFont.Size * 1.3
	op.ColorScale.ScaleWithColor(colorWhite)
	text.Draw(screen, infoText, infoFont, op)
}

func (r *Renderer) drawOverlayMessage(screen *ebiten.Image) {
	messageFont := face(globalFontSource, r.renderState.GetFontSize())
	message := r.renderState.GetOverlayMessage()
	textWidth, textHeight := text.Measure(message, messageFont, 0)

	padding := 20.0
	boxWidth := textWidth + padding*2
	boxHeight := textHeight + padding*2
	boxX := (float64(screen.Bounds().Dx()) - boxWidth) / 2
	boxY := (float64(screen.Bounds().Dy()) - boxHeight) / 2

	DrawFilledRect(screen, boxX, boxY, boxWidth, boxHeight, bgColorDark)
	DrawText(screen, message, messageFont, boxX+padding, boxY+padding, colorWhite)
}

// formatInfo builds the info display text
func formatInfo(scene *lightbox.Scene, state lightbox.ViewState, slide lightbox.Slide, stats LoaderStats) string {
	if scene == nil || !scene.Visible {
		return "closed"
	}
	lines := []string{
		fmt.Sprintf("%d / %d  %s", state.CurrentSlide, scene.Count, slide.Kind),
		fmt.Sprintf("zoom %.0f%%", state.Scale*100),
	}
	if slide.Title != "" {
		lines = append([]string{slide.Title}, lines...)
	}
	if state.Playing {
		lines = append(lines, "playing")
	}
	lines = append(lines, fmt.Sprintf("loaded %d, warmed %d, failed %d", stats.Loaded, stats.Warmed, stats.Failed))
	return strings.Join(lines, "\n")
}
