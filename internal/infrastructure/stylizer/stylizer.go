package stylizer

import (
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/wb-go/wbf/zlog"
	_ "golang.org/x/image/webp"

	"github.com/yokitheyo/styletransfer/internal/config"
	"github.com/yokitheyo/styletransfer/internal/domain"
)

const (
	defaultSize    = 256
	defaultQuality = 95
)

// Stylizer renders a content image with the colour palette and texture of a
// style image. Both inputs are brought to Size x Size before mixing, which
// is also the size of the result.
type Stylizer struct {
	cfg *config.StylizationConfig
}

func New(cfg *config.StylizationConfig) *Stylizer {
	if cfg.Size <= 0 {
		zlog.Logger.Warn().Int("size", cfg.Size).Msg("Invalid stylization size, using default")
		cfg.Size = defaultSize
	}
	if cfg.OutputQuality <= 0 || cfg.OutputQuality > 100 {
		zlog.Logger.Warn().Int("output_quality", cfg.OutputQuality).Msg("Invalid output quality, using default")
		cfg.OutputQuality = defaultQuality
	}
	zlog.Logger.Info().
		Int("size", cfg.Size).
		Float64("strength", cfg.Strength).
		Float64("texture_opacity", cfg.TextureOpacity).
		Float64("texture_blur", cfg.TextureBlur).
		Int("output_quality", cfg.OutputQuality).
		Msg("Stylizer initialized")
	return &Stylizer{cfg: cfg}
}

func (s *Stylizer) Size() int {
	return s.cfg.Size
}

func (s *Stylizer) Stylize(content, style io.Reader) (image.Image, error) {
	contentImg, err := decode(content)
	if err != nil {
		return nil, fmt.Errorf("content image: %w", err)
	}
	styleImg, err := decode(style)
	if err != nil {
		return nil, fmt.Errorf("style image: %w", err)
	}

	size := s.cfg.Size
	c := imaging.Resize(contentImg, size, size, imaging.Lanczos)
	st := imaging.Resize(styleImg, size, size, imaging.Lanczos)

	contentStats := channelStats(c)
	styleStats := channelStats(st)

	out := transferColor(c, contentStats, styleStats, s.cfg.Strength)

	if s.cfg.TextureOpacity > 0 {
		texture := st
		if s.cfg.TextureBlur > 0 {
			texture = imaging.Blur(st, s.cfg.TextureBlur)
		}
		out = imaging.Overlay(out, texture, image.Pt(0, 0), s.cfg.TextureOpacity)
	}

	zlog.Logger.Info().
		Int("content_width", contentImg.Bounds().Dx()).
		Int("content_height", contentImg.Bounds().Dy()).
		Int("style_width", styleImg.Bounds().Dx()).
		Int("style_height", styleImg.Bounds().Dy()).
		Int("size", size).
		Msg("Style transfer applied")

	return out, nil
}

// Encode writes img as JPEG at the configured quality.
func (s *Stylizer) Encode(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(s.cfg.OutputQuality)); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	return nil
}

func decode(r io.Reader) (image.Image, error) {
	if r == nil {
		return nil, domain.ErrInvalidImageData
	}
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode image")
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImageData, err)
	}
	if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		zlog.Logger.Error().Msg("decoded image is empty")
		return nil, fmt.Errorf("%w: decoded image is empty", domain.ErrInvalidImageData)
	}
	return img, nil
}

func Dimensions(img image.Image) (width, height int) {
	bounds := img.Bounds()
	return bounds.Dx(), bounds.Dy()
}
