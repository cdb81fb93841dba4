package pdf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"codeberg.org/go-pdf/fpdf"

	"github.com/gompdf/pagefit/internal/content"
	"github.com/gompdf/pagefit/internal/layout"
	"github.com/gompdf/pagefit/internal/res"
)

// Frame is a laid out column placed on a preview page. X is the offset of
// the frame's content box from the page's content box.
type Frame struct {
	X   float64
	Box *layout.Box
}

// Page is one preview page
type Page struct {
	Frames []Frame
}

// ImageLoader fetches image data referenced by img elements
type ImageLoader interface {
	LoadImage(url string) (*res.Resource, error)
}

// Renderer draws paginated content as a PDF preview. One px is drawn as one
// point so page geometry matches the measured heights.
type Renderer struct {
	// Debug enables verbose logging
	Debug     bool
	LogOutput io.Writer
	// RenderBackgrounds controls whether box backgrounds are painted
	RenderBackgrounds bool
	// RenderBorders controls whether box borders are painted
	RenderBorders bool
	// DebugDrawBoxes controls drawing of box outlines
	DebugDrawBoxes bool
	// Images resolves img sources; nil draws placeholders
	Images ImageLoader
	// listStack tracks nested list contexts while rendering
	listStack []listContext
	// images maps sources to registered image names
	images map[string]string
	tr     func(string) string
}

// listContext represents an active list (ul/ol) while rendering
type listContext struct {
	kind    string // "ul" or "ol"
	style   string // list-style-type
	counter int    // for ordered lists
}

// RenderOptions contains options for rendering
type RenderOptions struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
	Producer string
	// PageWidth and PageHeight are the full page size in px
	PageWidth  float64
	PageHeight float64
	// Padding surrounds the content box on every side
	Padding float64
	// Limit draws a guide at this height from the content top when positive
	Limit float64
}

// NewRenderer creates a new PDF renderer
func NewRenderer() *Renderer {
	return &Renderer{
		LogOutput:         os.Stdout,
		RenderBackgrounds: true,
		RenderBorders:     true,
	}
}

// RenderFile renders pages to a PDF file, creating its directory if needed
func (r *Renderer) RenderFile(pages []Page, outputPath string, options RenderOptions) error {
	outputDir := filepath.Dir(outputPath)
	if _, err := os.Stat(outputDir); os.IsNotExist(err) {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outputPath, err)
	}
	if err := r.Render(pages, f, options); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Render writes pages as a PDF document
func (r *Renderer) Render(pages []Page, w io.Writer, options RenderOptions) error {
	if options.PageWidth <= 0 || options.PageHeight <= 0 {
		return fmt.Errorf("invalid page size %.0fx%.0f", options.PageWidth, options.PageHeight)
	}
	r.images = make(map[string]string)
	r.listStack = nil

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: options.PageWidth, Ht: options.PageHeight},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetTitle(options.Title, true)
	pdf.SetAuthor(options.Author, true)
	pdf.SetSubject(options.Subject, true)
	pdf.SetKeywords(options.Keywords, true)
	pdf.SetCreator(options.Creator, true)
	pdf.SetProducer(options.Producer, true)
	pdf.SetFont("Helvetica", "", 12)
	r.tr = pdf.UnicodeTranslatorFromDescriptor("")

	if r.Debug {
		fmt.Fprintf(r.LogOutput, "Rendering %d pages\n", len(pages))
	}
	for i, page := range pages {
		pdf.AddPage()
		for _, f := range page.Frames {
			if f.Box == nil {
				continue
			}
			r.renderBox(pdf, f.Box, options.Padding+f.X, options.Padding)
		}
		if options.Limit > 0 {
			r.renderLimit(pdf, options)
		}
		if r.Debug {
			fmt.Fprintf(r.LogOutput, "Rendered page %d with %d frames\n", i+1, len(page.Frames))
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	return pdf.Output(w)
}

// renderLimit draws the height budget as a dashed guide
func (r *Renderer) renderLimit(pdf *fpdf.Fpdf, options RenderOptions) {
	y := options.Padding + options.Limit
	pdf.SetDrawColor(220, 40, 40)
	pdf.SetLineWidth(0.5)
	pdf.SetDashPattern([]float64{4, 3}, 0)
	pdf.Line(0, y, options.PageWidth, y)
	pdf.SetDashPattern([]float64{}, 0)
}

// renderBox renders a block box and its descendants offset by ox, oy
func (r *Renderer) renderBox(pdf *fpdf.Fpdf, box *layout.Box, ox, oy float64) {
	if box.Node != nil && box.Node.Kind() == content.KindOpaque {
		if box.Node.Tag() == "hr" {
			r.renderRule(pdf, box, ox, oy)
		} else {
			r.renderImage(pdf, box.Node, ox+box.X+box.Border.Left+box.Padding.Left, oy+box.Y+box.Border.Top+box.Padding.Top,
				box.Width-box.Border.Left-box.Border.Right-box.Padding.Left-box.Padding.Right,
				box.Height-box.Border.Top-box.Border.Bottom-box.Padding.Top-box.Padding.Bottom)
		}
		return
	}

	r.renderBackground(pdf, box, ox, oy)
	r.renderBorders(pdf, box, ox, oy)

	enteringList := false
	if box.Node != nil && box.Node.Kind().IsList() {
		enteringList = true
		lc := listContext{kind: box.Node.Tag(), style: strings.ToLower(box.Style.Get("list-style-type"))}
		if lc.style == "" {
			lc.style = listStyleFromShorthand(box.Style.Get("list-style"))
		}
		if lc.style == "" {
			if lc.kind == "ul" {
				lc.style = "disc"
			} else {
				lc.style = "decimal"
			}
		}
		r.listStack = append(r.listStack, lc)
	}

	for _, ln := range box.Lines {
		for _, run := range ln.Runs {
			if run.Node != nil && run.Node.Kind() == content.KindOpaque {
				r.renderImage(pdf, run.Node, ox+run.X, oy+run.Y, run.Width, run.Height)
				continue
			}
			r.renderText(pdf, run, ox, oy)
		}
	}

	for _, child := range box.Children {
		if len(r.listStack) > 0 && child.Node != nil && child.Node.Kind() == content.KindListItem {
			top := &r.listStack[len(r.listStack)-1]
			if top.kind == "ol" {
				top.counter++
			}
			r.renderListMarker(pdf, child, *top, ox, oy)
		}
		r.renderBox(pdf, child, ox, oy)
	}

	if enteringList && len(r.listStack) > 0 {
		r.listStack = r.listStack[:len(r.listStack)-1]
	}

	if r.DebugDrawBoxes {
		pdf.SetDrawColor(200, 0, 0)
		pdf.SetLineWidth(0.5)
		pdf.Rect(ox+box.X, oy+box.Y, box.Width, box.Height, "D")
	}
}

// renderBackground renders the background of a box
func (r *Renderer) renderBackground(pdf *fpdf.Fpdf, box *layout.Box, ox, oy float64) {
	if !r.RenderBackgrounds {
		return
	}
	bg := box.Style.Get("background-color")
	if bg == "" {
		bg = box.Style.Get("background")
	}
	if bg == "" || bg == "transparent" || bg == "none" {
		if box.Node != nil && box.Node.Tag() == "th" {
			pdf.SetFillColor(240, 240, 240)
			pdf.Rect(ox+box.X, oy+box.Y, box.Width, box.Height, "F")
		}
		return
	}
	color := parseColor(bg)
	pdf.SetFillColor(color[0], color[1], color[2])
	pdf.Rect(ox+box.X, oy+box.Y, box.Width, box.Height, "F")
}

// renderBorders draws each side with a non-zero border width
func (r *Renderer) renderBorders(pdf *fpdf.Fpdf, box *layout.Box, ox, oy float64) {
	if !r.RenderBorders {
		return
	}
	b := box.Border
	if b.Top == 0 && b.Right == 0 && b.Bottom == 0 && b.Left == 0 {
		return
	}

	color := [3]int{0, 0, 0}
	if c := box.Style.Get("border-color"); c != "" {
		color = parseColor(c)
	} else if c := borderColor(box.Style.Get("border")); c != "" {
		color = parseColor(c)
	}
	pdf.SetFillColor(color[0], color[1], color[2])

	x, y := ox+box.X, oy+box.Y
	if b.Top > 0 {
		pdf.Rect(x, y, box.Width, b.Top, "F")
	}
	if b.Bottom > 0 {
		pdf.Rect(x, y+box.Height-b.Bottom, box.Width, b.Bottom, "F")
	}
	if b.Left > 0 {
		pdf.Rect(x, y, b.Left, box.Height, "F")
	}
	if b.Right > 0 {
		pdf.Rect(x+box.Width-b.Right, y, b.Right, box.Height, "F")
	}
}

// renderRule draws an hr as a thin grey rule
func (r *Renderer) renderRule(pdf *fpdf.Fpdf, box *layout.Box, ox, oy float64) {
	pdf.SetDrawColor(160, 160, 160)
	pdf.SetLineWidth(maxf(box.Height/2, 0.5))
	y := oy + box.Y + box.Height/2
	pdf.Line(ox+box.X, y, ox+box.X+box.Width, y)
}

// renderText renders a word run to the PDF
func (r *Renderer) renderText(pdf *fpdf.Fpdf, run layout.Run, ox, oy float64) {
	if run.Text == "" || run.FontSize <= 0 {
		return
	}

	family, fontStyle := layout.ResolveFont(run.Style)
	pdf.SetFont(family, fontStyle, run.FontSize)

	textColor := [3]int{0, 0, 0}
	if c := run.Style.Get("color"); c != "" {
		textColor = parseColor(c)
	}
	pdf.SetTextColor(textColor[0], textColor[1], textColor[2])

	// baseline sits ascent below the top of the glyph box, which is centred
	// in the run's line height
	baselineY := oy + run.Y + (run.Height-run.FontSize)/2 + 0.8*run.FontSize
	x := ox + run.X

	if r.Debug {
		fmt.Fprintf(r.LogOutput, "Rendering text: '%s' at (%.2f, %.2f) with font %s %.0fpt\n",
			run.Text, x, baselineY, family, run.FontSize)
	}
	pdf.Text(x, baselineY, r.tr(run.Text))

	if strings.Contains(run.Style.Get("text-decoration"), "underline") {
		pdf.SetDrawColor(textColor[0], textColor[1], textColor[2])
		pdf.SetLineWidth(run.FontSize / 16)
		pdf.Line(x, baselineY+run.FontSize*0.1, x+run.Width, baselineY+run.FontSize*0.1)
	}

	if r.DebugDrawBoxes {
		pdf.SetDrawColor(255, 0, 0)
		pdf.SetLineWidth(0.1)
		pdf.Rect(x, oy+run.Y, run.Width, run.Height, "D")
	}
}

// renderImage draws an img from the loader, or a light placeholder for
// anything that cannot be drawn
func (r *Renderer) renderImage(pdf *fpdf.Fpdf, n *content.Node, x, y, w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	if name, opts, ok := r.registerImage(pdf, n); ok {
		pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
		return
	}
	pdf.SetFillColor(235, 235, 235)
	pdf.SetDrawColor(190, 190, 190)
	pdf.SetLineWidth(0.5)
	pdf.Rect(x, y, w, h, "FD")
}

func (r *Renderer) registerImage(pdf *fpdf.Fpdf, n *content.Node) (string, fpdf.ImageOptions, bool) {
	var opts fpdf.ImageOptions
	src, ok := n.Attr("src")
	if r.Images == nil || n.Tag() != "img" || !ok || src == "" {
		return "", opts, false
	}
	img, err := r.Images.LoadImage(src)
	if err != nil {
		if r.Debug {
			fmt.Fprintf(r.LogOutput, "Skipping image %s: %v\n", src, err)
		}
		return "", opts, false
	}
	switch img.MimeType {
	case "image/png":
		opts.ImageType = "PNG"
	case "image/jpeg":
		opts.ImageType = "JPG"
	case "image/gif":
		opts.ImageType = "GIF"
	default:
		return "", opts, false
	}

	name, seen := r.images[src]
	if !seen {
		name = fmt.Sprintf("img%d", len(r.images))
		pdf.RegisterImageOptionsReader(name, opts, img.GetReader())
		if pdf.Err() {
			if r.Debug {
				fmt.Fprintf(r.LogOutput, "Skipping image %s: %v\n", src, pdf.Error())
			}
			pdf.ClearError()
			return "", opts, false
		}
		r.images[src] = name
	}
	return name, opts, true
}

// renderListMarker draws the bullet or number for a list item
func (r *Renderer) renderListMarker(pdf *fpdf.Fpdf, li *layout.Box, ctx listContext, ox, oy float64) {
	fontSize := parseFloat(strings.TrimSuffix(li.Style.Get("font-size"), "px"), 16)
	color := [3]int{0, 0, 0}
	if c := li.Style.Get("color"); c != "" {
		color = parseColor(c)
	}

	top := oy + li.Y + li.Border.Top + li.Padding.Top
	lineHeight := fontSize * 1.2
	if len(li.Lines) > 0 {
		top = oy + li.Lines[0].Y
		lineHeight = li.Lines[0].Height
	}
	left := ox + li.X

	if ctx.kind == "ul" {
		rbullet := fontSize * 0.18
		if rbullet < 1.2 {
			rbullet = 1.2
		}
		cx := left - fontSize
		cy := top + lineHeight/2
		pdf.SetDrawColor(color[0], color[1], color[2])
		pdf.SetFillColor(color[0], color[1], color[2])
		switch ctx.style {
		case "none":
			return
		case "circle":
			pdf.SetLineWidth(0.8)
			pdf.Circle(cx, cy, rbullet, "D")
		case "square":
			side := rbullet * 2
			pdf.Rect(cx-rbullet, cy-rbullet, side, side, "F")
		default: // disc
			pdf.Circle(cx, cy, rbullet, "F")
		}
		return
	}

	if ctx.style == "none" {
		return
	}
	var marker string
	switch ctx.style {
	case "lower-alpha", "lower-latin":
		marker = toAlpha(ctx.counter, false) + "."
	case "upper-alpha", "upper-latin":
		marker = toAlpha(ctx.counter, true) + "."
	default:
		marker = strconv.Itoa(ctx.counter) + "."
	}

	pdf.SetTextColor(color[0], color[1], color[2])
	pdf.SetFont("Helvetica", "", fontSize)
	markerWidth := pdf.GetStringWidth(marker)
	startX := left - markerWidth - fontSize*0.3
	if startX < 0 {
		startX = 0
	}
	pdf.Text(startX, top+(lineHeight-fontSize)/2+0.8*fontSize, marker)
}

// listStyleFromShorthand picks the marker type out of a list-style value
func listStyleFromShorthand(v string) string {
	for _, tok := range strings.Fields(strings.ToLower(v)) {
		switch tok {
		case "none", "disc", "circle", "square", "decimal",
			"lower-alpha", "upper-alpha", "lower-latin", "upper-latin":
			return tok
		}
	}
	return ""
}

// borderColor extracts the color of a border shorthand
func borderColor(v string) string {
	for _, tok := range strings.Fields(v) {
		if strings.HasPrefix(tok, "#") || strings.HasPrefix(tok, "rgb") {
			return tok
		}
		if _, ok := namedColors[strings.ToLower(tok)]; ok {
			return tok
		}
	}
	return ""
}

func parseFloat(value string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

var namedColors = map[string][3]int{
	"black":  {0, 0, 0},
	"white":  {255, 255, 255},
	"red":    {255, 0, 0},
	"green":  {0, 128, 0},
	"blue":   {0, 0, 255},
	"gray":   {128, 128, 128},
	"grey":   {128, 128, 128},
	"silver": {192, 192, 192},
	"navy":   {0, 0, 128},
	"teal":   {0, 128, 128},
	"maroon": {128, 0, 0},
	"orange": {255, 165, 0},
}

// parseColor reads hex, rgb() and the named colors; anything else is black
func parseColor(value string) [3]int {
	value = strings.ToLower(strings.TrimSpace(value))
	if hex, ok := strings.CutPrefix(value, "#"); ok {
		if c, ok := parseHexColor(hex); ok {
			return c
		}
		return [3]int{}
	}
	if c, ok := namedColors[value]; ok {
		return c
	}
	if args, ok := strings.CutPrefix(value, "rgb("); ok {
		if c, ok := parseRGB(strings.TrimSuffix(args, ")")); ok {
			return c
		}
	}
	return [3]int{}
}

func parseHexColor(hex string) ([3]int, bool) {
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return [3]int{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return [3]int{}, false
	}
	return [3]int{int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)}, true
}

func parseRGB(args string) ([3]int, bool) {
	parts := strings.Split(args, ",")
	if len(parts) != 3 {
		return [3]int{}, false
	}
	var c [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return [3]int{}, false
		}
		c[i] = n
	}
	return c, true
}

// toAlpha spells a 1-based counter as a, b, ... z, aa, ab, ...
func toAlpha(n int, upper bool) string {
	base := byte('a')
	if upper {
		base = 'A'
	}
	var out []byte
	for ; n > 0; n = (n - 1) / 26 {
		out = append([]byte{base + byte((n-1)%26)}, out...)
	}
	return string(out)
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
