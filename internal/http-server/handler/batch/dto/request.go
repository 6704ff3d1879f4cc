package dto

// ConfigRequest carries the per-batch customization form fields. Colors
// are hex strings like "#ffffff"; zero values fall back to the defaults.
type ConfigRequest struct {
	BrandText         string  `form:"brand_text"`
	FontSize          float64 `form:"font_size" validate:"omitempty,gt=0,lte=300"`
	TextColor         string  `form:"text_color" validate:"omitempty,hexcolor"`
	TextOpacity       float64 `form:"text_opacity" validate:"gte=0,lte=1"`
	TextPosition      string  `form:"text_position" validate:"omitempty,oneof=top middle bottom"`
	HorizontalSpacing int     `form:"horizontal_spacing" validate:"gte=0,lte=1000"`
	Padding           int     `form:"padding" validate:"gte=0,lte=1000"`
	LogoScale         float64 `form:"logo_scale" validate:"omitempty,gt=0,lte=1"`
	Backdrop          bool    `form:"backdrop"`
	Background        string  `form:"background" validate:"omitempty,hexcolor"`
	Profiles          string  `form:"profiles"`
}

type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}
