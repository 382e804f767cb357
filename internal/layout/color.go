package layout

import (
	"fmt"
	"image/color"
)

// Color is an opaque sRGB color.
type Color struct {
	R, G, B uint8
}

// Particle palette.
var (
	White    = Color{0xFF, 0xFF, 0xFF}
	Silver   = Color{0xE8, 0xE8, 0xE8}
	Blue     = Color{0x1E, 0x90, 0xFF}
	DeepBlue = Color{0x00, 0x00, 0x8B}
	Ice      = Color{0xF0, 0xFF, 0xFF}
)

// Gift palette.
var (
	Navy       = Color{0x19, 0x19, 0x70}
	Royal      = Color{0x41, 0x69, 0xE1}
	GiftSilver = Color{0xC0, 0xC0, 0xC0}
	SkyBlue    = Color{0x87, 0xCE, 0xFA}

	GiftPalette = []Color{Navy, Royal, GiftSilver, White, SkyBlue}
)

// RibbonFor returns the ribbon color that contrasts with a box color.
func RibbonFor(box Color) Color {
	if box == GiftSilver {
		return Navy
	}
	return GiftSilver
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA{c.R, c.G, c.B, 0xFF}.RGBA()
}

// Hex returns the color as #RRGGBB.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}
