// Package core provides the cell and colour types shared by the viewer and
// its backends. It exists so backend does not import view.
package core

import (
	"fmt"

	"github.com/Lacosst0/pathfinding-playground/internal/grid"
)

// Attribute represents text attributes.
type Attribute uint8

// Text attribute flags.
const (
	AttrNone Attribute = 0
	AttrBold Attribute = 1 << iota
	AttrDim
	AttrReverse
)

// Has returns true if the attribute set contains attr.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr != 0
}

// Color is a true colour or the terminal default.
type Color struct {
	R, G, B uint8
	// Default indicates the terminal's default colour; R, G and B are ignored.
	Default bool
}

// ColorDefault represents the terminal's default colour.
var ColorDefault = Color{Default: true}

// Colours used by the viewer chrome.
var (
	ColorBlack = Color{R: 0, G: 0, B: 0}
	ColorWhite = Color{R: 255, G: 255, B: 255}
	ColorWall  = Color{R: 48, G: 48, B: 48}
	ColorStart = Color{R: 230, G: 120, B: 20}
	ColorGoal  = Color{R: 200, G: 30, B: 30}
)

// ColorFromRGB creates a true colour.
func ColorFromRGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// ColorFromGrid converts a tile or overlay colour.
func ColorFromGrid(c grid.Color) Color {
	return Color{R: c.R, G: c.G, B: c.B}
}

// IsDefault returns true for the terminal default colour.
func (c Color) IsDefault() bool {
	return c.Default
}

// Luminance returns the perceived brightness in 0..255.
func (c Color) Luminance() int {
	return (299*int(c.R) + 587*int(c.G) + 114*int(c.B)) / 1000
}

// Contrast returns black or white, whichever reads better on c.
func (c Color) Contrast() Color {
	if c.Default || c.Luminance() > 140 {
		return ColorBlack
	}
	return ColorWhite
}

func (c Color) String() string {
	if c.Default {
		return "default"
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Style represents the visual style of a cell.
type Style struct {
	Foreground Color
	Background Color
	Attributes Attribute
}

// DefaultStyle returns the default terminal style.
func DefaultStyle() Style {
	return Style{Foreground: ColorDefault, Background: ColorDefault}
}

// WithForeground returns a copy of s with the given foreground.
func (s Style) WithForeground(fg Color) Style {
	s.Foreground = fg
	return s
}

// WithBackground returns a copy of s with the given background.
func (s Style) WithBackground(bg Color) Style {
	s.Background = bg
	return s
}

// Bold returns a copy of s in bold.
func (s Style) Bold() Style {
	s.Attributes |= AttrBold
	return s
}

// Cell represents a single terminal cell.
type Cell struct {
	Rune  rune
	Style Style
}

// EmptyCell returns a blank cell with the default style.
func EmptyCell() Cell {
	return Cell{Rune: ' ', Style: DefaultStyle()}
}

// NewStyledCell creates a cell with the given rune and style.
func NewStyledCell(r rune, style Style) Cell {
	return Cell{Rune: r, Style: style}
}

// ScreenRect represents a rectangular region on screen. Bottom and Right
// are exclusive.
type ScreenRect struct {
	Top, Left, Bottom, Right int
}

// RectFromSize creates a rectangle from an origin and a size.
func RectFromSize(top, left, height, width int) ScreenRect {
	return ScreenRect{Top: top, Left: left, Bottom: top + height, Right: left + width}
}

// Contains returns true if (x, y) lies within the rectangle.
func (r ScreenRect) Contains(x, y int) bool {
	return y >= r.Top && y < r.Bottom && x >= r.Left && x < r.Right
}

// IsEmpty returns true if the rectangle has no area.
func (r ScreenRect) IsEmpty() bool {
	return r.Right <= r.Left || r.Bottom <= r.Top
}
