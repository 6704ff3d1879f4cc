package domain

import (
	"fmt"
	"image/color"
)

// TextPosition is the vertical anchor of the tiled watermark text.
type TextPosition string

const (
	PositionTop    TextPosition = "top"
	PositionMiddle TextPosition = "middle"
	PositionBottom TextPosition = "bottom"
)

// WatermarkConfig is created once per batch from user input and shared
// read-only across every image in the batch.
type WatermarkConfig struct {
	BrandText         string       `json:"brand_text"`
	FontSize          float64      `json:"font_size" validate:"gt=0,lte=300"`
	TextColor         RGB          `json:"text_color"`
	TextOpacity       float64      `json:"text_opacity" validate:"gte=0,lte=1"`
	TextPosition      TextPosition `json:"text_position" validate:"oneof=top middle bottom"`
	HorizontalSpacing int          `json:"horizontal_spacing" validate:"gte=0"`
	Padding           int          `json:"padding" validate:"gte=0"`
	LogoScale         float64      `json:"logo_scale" validate:"gt=0,lte=1"`
	Backdrop          bool         `json:"backdrop"`
	BackdropColor     RGBA         `json:"backdrop_color"`
	BackdropOffsetX   int          `json:"backdrop_offset_x"`
	BackdropOffsetY   int          `json:"backdrop_offset_y"`
	Background        RGB          `json:"background"`
}

type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

type RGBA struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

func (c RGB) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

func (c RGBA) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// TextNRGBA maps the 0.0-1.0 opacity onto an 8-bit alpha.
func (w WatermarkConfig) TextNRGBA() color.NRGBA {
	return color.NRGBA{R: w.TextColor.R, G: w.TextColor.G, B: w.TextColor.B, A: uint8(255 * w.TextOpacity)}
}

const (
	DefaultFontSize          = 50.0
	DefaultTextOpacity       = 0.5
	DefaultLogoScale         = 0.15
	DefaultPadding           = 30
	DefaultHorizontalSpacing = 50
	DefaultBackdropOffsetX   = 2
	DefaultBackdropOffsetY   = 2
)

// DefaultWatermarkConfig mirrors the app's customization defaults: white
// half-transparent text in the middle band, white translucent backdrop.
func DefaultWatermarkConfig() WatermarkConfig {
	return WatermarkConfig{
		FontSize:          DefaultFontSize,
		TextColor:         RGB{255, 255, 255},
		TextOpacity:       DefaultTextOpacity,
		TextPosition:      PositionMiddle,
		HorizontalSpacing: DefaultHorizontalSpacing,
		Padding:           DefaultPadding,
		LogoScale:         DefaultLogoScale,
		Backdrop:          true,
		BackdropColor:     RGBA{255, 255, 255, 180},
		BackdropOffsetX:   DefaultBackdropOffsetX,
		BackdropOffsetY:   DefaultBackdropOffsetY,
		Background:        RGB{255, 255, 255},
	}
}

// OutputProfile is a named target canvas size; nil dimensions keep the
// source size.
type OutputProfile struct {
	Name   string
	Width  int
	Height int
}

// Original reports whether the profile keeps the composite's own size.
func (p OutputProfile) Original() bool {
	return p.Width == 0 || p.Height == 0
}

// Label is the filename suffix for the profile.
func (p OutputProfile) Label() string {
	if p.Original() {
		return "original"
	}
	return fmt.Sprintf("%dx%d", p.Width, p.Height)
}

const ProfileOriginal = "original"

// Profiles is the registry of selectable output sizes.
var Profiles = map[string]OutputProfile{
	ProfileOriginal:      {Name: ProfileOriginal},
	"instagram-post":     {Name: "instagram-post", Width: 1080, Height: 1080},
	"instagram-story":    {Name: "instagram-story", Width: 1080, Height: 1920},
	"instagram-portrait": {Name: "instagram-portrait", Width: 1080, Height: 1350},
	"facebook-post":      {Name: "facebook-post", Width: 1200, Height: 630},
	"pinterest-pin":      {Name: "pinterest-pin", Width: 1000, Height: 1500},
}
