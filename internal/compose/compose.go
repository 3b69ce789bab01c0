// Package compose renders fixed-resolution story images from a background
// screenshot and overlay text.
package compose

import (
	"image"
	"image/png"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"

	"github.com/rmarques/newsstory/internal/story"
)

// Canvas and layout defaults. The canvas is the 9:16 story format; the text
// metrics were tuned against it.
const (
	DefaultWidth  = 1080
	DefaultHeight = 1920

	DefaultMargin         = 70
	DefaultTopOffset      = 140
	DefaultOverlayOpacity = 0.55
	DefaultBlurRadius     = 2.0

	DefaultTitleSize    = 64.0
	DefaultSubtitleSize = 42.0
	DefaultImpactSize   = 48.0
	DefaultFooterSize   = 28.0

	// Font-size reduction: blocks that overflow their region step down by
	// FontSizeStep until they fit or MinFontSize is reached.
	DefaultFontSizeStep = 4.0
	DefaultMinFontSize  = 24.0

	// Block regions (max heights) and spacing.
	defaultTitleRegion    = 230.0
	defaultSubtitleRegion = 160.0
	defaultBlockGap       = 20.0
	titleLineGap          = 10.0
	subtitleLineGap       = 8.0
	impactLineGap         = 10.0

	// Impact band geometry, anchored near the bottom of the canvas.
	defaultImpactBarHeight = 220.0
	defaultImpactBarBottom = 170.0
	impactBarPadding       = 40.0
	impactBarOpacity       = 0.67

	footerBaselineOffset = 70.0
	footerMaxRunes       = 60

	shadowOffset = 2.0
)

// Options configures the compositor.
type Options struct {
	Width  int
	Height int

	Margin         int
	OverlayOpacity float64 // 0.0-1.0 darkening overlay over the full canvas
	BlurRadius     float64 // gaussian blur on the background; 0 means default, negative disables

	TitleSize    float64
	SubtitleSize float64
	ImpactSize   float64
	FooterSize   float64
	FontSizeStep float64
	MinFontSize  float64

	FontPath     string // optional TTF for subtitle/footer text
	FontBoldPath string // optional TTF for title/impact text
}

// DefaultOptions returns the tuned story layout.
func DefaultOptions() *Options {
	return &Options{
		Width:          DefaultWidth,
		Height:         DefaultHeight,
		Margin:         DefaultMargin,
		OverlayOpacity: DefaultOverlayOpacity,
		BlurRadius:     DefaultBlurRadius,
		TitleSize:      DefaultTitleSize,
		SubtitleSize:   DefaultSubtitleSize,
		ImpactSize:     DefaultImpactSize,
		FooterSize:     DefaultFooterSize,
		FontSizeStep:   DefaultFontSizeStep,
		MinFontSize:    DefaultMinFontSize,
	}
}

// Story is the final fixed-resolution artifact.
type Story struct {
	Width  int
	Height int
	Image  image.Image
}

// EncodePNG writes the story as PNG.
func (s *Story) EncodePNG(w io.Writer) error {
	return png.Encode(w, s.Image)
}

// Compositor renders story images. Fonts are loaded once at construction;
// a missing font asset fails construction with ErrAssetMissing.
type Compositor struct {
	opts    *Options
	regular *sfnt.Font
	bold    *sfnt.Font
}

// NewCompositor creates a compositor. When no font paths are configured the
// embedded Go fonts are used; a configured path that cannot be loaded is
// ErrAssetMissing.
func NewCompositor(opts *Options) (*Compositor, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	applyOptionDefaults(opts)

	regular, err := loadFont(opts.FontPath, goregular.TTF)
	if err != nil {
		return nil, err
	}
	bold, err := loadFont(opts.FontBoldPath, gobold.TTF)
	if err != nil {
		return nil, err
	}

	return &Compositor{opts: opts, regular: regular, bold: bold}, nil
}

func applyOptionDefaults(opts *Options) {
	def := DefaultOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.Margin <= 0 {
		opts.Margin = def.Margin
	}
	if opts.OverlayOpacity <= 0 {
		opts.OverlayOpacity = def.OverlayOpacity
	}
	if opts.BlurRadius == 0 {
		opts.BlurRadius = def.BlurRadius
	}
	if opts.TitleSize <= 0 {
		opts.TitleSize = def.TitleSize
	}
	if opts.SubtitleSize <= 0 {
		opts.SubtitleSize = def.SubtitleSize
	}
	if opts.ImpactSize <= 0 {
		opts.ImpactSize = def.ImpactSize
	}
	if opts.FooterSize <= 0 {
		opts.FooterSize = def.FooterSize
	}
	if opts.FontSizeStep <= 0 {
		opts.FontSizeStep = def.FontSizeStep
	}
	if opts.MinFontSize <= 0 {
		opts.MinFontSize = def.MinFontSize
	}
}

// Compose renders the story for item over the given background. The
// background is never mutated; the output canvas is always exactly
// Width x Height regardless of the background's dimensions.
func (c *Compositor) Compose(background image.Image, item story.Item) (*Story, error) {
	w, h := c.opts.Width, c.opts.Height

	// Cover-fit: scale proportionally to cover the canvas, center-crop the
	// overflow. Never letterbox.
	bg := imaging.Fill(background, w, h, imaging.Center, imaging.Lanczos)
	if c.opts.BlurRadius > 0 {
		bg = imaging.Blur(bg, c.opts.BlurRadius)
	}

	dc := gg.NewContext(w, h)
	dc.DrawImage(bg, 0, 0)

	// Uniform darkening overlay for text legibility on arbitrary content.
	dc.SetRGBA(0, 0, 0, c.opts.OverlayOpacity)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	dc.Fill()

	x := float64(c.opts.Margin)
	maxWidth := float64(w - 2*c.opts.Margin)
	y := float64(DefaultTopOffset)

	if title := strings.TrimSpace(item.Title); title != "" {
		lines, fc, lineH, err := c.layoutBlock(dc, title, c.bold, c.opts.TitleSize, maxWidth, defaultTitleRegion, titleLineGap)
		if err != nil {
			return nil, err
		}
		y = drawBlock(dc, lines, fc, x, y, lineH, 1, 1, 1)
		y += defaultBlockGap
	}

	if subtitle := strings.TrimSpace(item.Subtitle); subtitle != "" {
		lines, fc, lineH, err := c.layoutBlock(dc, subtitle, c.regular, c.opts.SubtitleSize, maxWidth, defaultSubtitleRegion, subtitleLineGap)
		if err != nil {
			return nil, err
		}
		drawBlock(dc, lines, fc, x, y, lineH, 0.9, 0.9, 0.9)
	}

	if impact := strings.TrimSpace(item.Impact); impact != "" {
		if err := c.drawImpactBand(dc, impact, x, maxWidth); err != nil {
			return nil, err
		}
	}

	if err := c.drawFooter(dc, item.URL, x); err != nil {
		return nil, err
	}

	return &Story{Width: w, Height: h, Image: dc.Image()}, nil
}

// drawImpactBand renders the impact text on its own darker bar near the
// bottom of the canvas.
func (c *Compositor) drawImpactBand(dc *gg.Context, impact string, x, maxWidth float64) error {
	w, h := float64(c.opts.Width), float64(c.opts.Height)
	barY := h - defaultImpactBarHeight - defaultImpactBarBottom

	dc.SetRGBA(0, 0, 0, impactBarOpacity)
	dc.DrawRectangle(0, barY, w, defaultImpactBarHeight)
	dc.Fill()

	region := defaultImpactBarHeight - 2*impactBarPadding
	lines, fc, lineH, err := c.layoutBlock(dc, impact, c.bold, c.opts.ImpactSize, maxWidth, region, impactLineGap)
	if err != nil {
		return err
	}
	drawBlock(dc, lines, fc, x, barY+impactBarPadding, lineH, 1, 1, 1)
	return nil
}

// drawFooter renders the schemeless source URL in small type at the bottom.
func (c *Compositor) drawFooter(dc *gg.Context, url string, x float64) error {
	footer := strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "http://")
	if footer == "" {
		return nil
	}
	if runes := []rune(footer); len(runes) > footerMaxRunes {
		footer = string(runes[:footerMaxRunes])
	}

	fc, err := face(c.regular, c.opts.FooterSize)
	if err != nil {
		return err
	}
	dc.SetFontFace(fc)
	baseline := float64(c.opts.Height) - footerBaselineOffset + c.opts.FooterSize
	drawShadowed(dc, footer, x, baseline, 0.78, 0.78, 0.78)
	return nil
}

// layoutBlock word-wraps text to maxWidth at startSize, stepping the font
// size down by FontSizeStep while the wrapped block is taller than maxHeight.
//
// Overflow policy: text is never silently truncated while shrinking remains
// possible. Once MinFontSize is reached and the block still overflows, the
// block keeps the floor size and is clipped to the lines that fit, with an
// ellipsis marking the cut on the last visible line.
func (c *Compositor) layoutBlock(dc *gg.Context, text string, fnt *sfnt.Font, startSize, maxWidth, maxHeight, lineGap float64) ([]string, font.Face, float64, error) {
	size := startSize
	for {
		fc, err := face(fnt, size)
		if err != nil {
			return nil, nil, 0, err
		}
		dc.SetFontFace(fc)
		lines := dc.WordWrap(text, maxWidth)
		lineH := size + lineGap

		if float64(len(lines))*lineH <= maxHeight {
			return lines, fc, lineH, nil
		}

		next := size - c.opts.FontSizeStep
		if next < c.opts.MinFontSize {
			maxLines := int(maxHeight / lineH)
			if maxLines < 1 {
				maxLines = 1
			}
			if len(lines) > maxLines {
				lines = lines[:maxLines]
				lines[maxLines-1] = ellipsize(lines[maxLines-1])
			}
			return lines, fc, lineH, nil
		}
		size = next
	}
}

// drawBlock draws wrapped lines top-down starting at yTop and returns the y
// just below the block. The face must already be sized to match lineH.
func drawBlock(dc *gg.Context, lines []string, fc font.Face, x, yTop, lineH float64, r, g, b float64) float64 {
	dc.SetFontFace(fc)
	ascent := float64(fc.Metrics().Ascent.Round())
	baseline := yTop + ascent
	for _, line := range lines {
		drawShadowed(dc, line, x, baseline, r, g, b)
		baseline += lineH
	}
	return yTop + float64(len(lines))*lineH
}

// drawShadowed draws a line twice: an offset dark pass for contrast against
// arbitrary backgrounds, then the fill pass.
func drawShadowed(dc *gg.Context, s string, x, y float64, r, g, b float64) {
	dc.SetRGBA(0, 0, 0, 0.9)
	dc.DrawString(s, x+shadowOffset, y+shadowOffset)
	dc.SetRGBA(r, g, b, 1)
	dc.DrawString(s, x, y)
}

func ellipsize(line string) string {
	return strings.TrimRight(line, " ") + "…"
}
