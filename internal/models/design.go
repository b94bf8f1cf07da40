// internal/models/design.go
package models

// Renderable node types that can stand for a component.
const (
	NodeTypeFrame        = "FRAME"
	NodeTypeComponent    = "COMPONENT"
	NodeTypeInstance     = "INSTANCE"
	NodeTypeGroup        = "GROUP"
	NodeTypeComponentSet = "COMPONENT_SET"
	NodeTypeText         = "TEXT"
	NodeTypeRectangle    = "RECTANGLE"
	NodeTypeImage        = "IMAGE"
	NodeTypeDocument     = "DOCUMENT"
)

// DesignNode is a node of the Figma document tree as returned by the REST API.
type DesignNode struct {
	ID                  string       `json:"id"`
	Name                string       `json:"name"`
	Type                string       `json:"type"`
	Children            []DesignNode `json:"children,omitempty"`
	AbsoluteBoundingBox *BoundingBox `json:"absoluteBoundingBox,omitempty"`
	Fills               []Paint      `json:"fills,omitempty"`
	Strokes             []Paint      `json:"strokes,omitempty"`
	Characters          string       `json:"characters,omitempty"`
	Style               *TypeStyle   `json:"style,omitempty"`
}

type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Paint is a fill or stroke. Figma omits visible and opacity when they hold
// their defaults, hence the pointers.
type Paint struct {
	Type    string   `json:"type"`
	Visible *bool    `json:"visible,omitempty"`
	Opacity *float64 `json:"opacity,omitempty"`
	Color   *Color   `json:"color,omitempty"`
}

// Color channels are in the 0..1 range.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

type TypeStyle struct {
	FontFamily string  `json:"fontFamily,omitempty"`
	FontWeight float64 `json:"fontWeight,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
}

// Dimensions are rounded to whole pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Font struct {
	Family string  `json:"family,omitempty"`
	Size   float64 `json:"size,omitempty"`
	Weight float64 `json:"weight,omitempty"`
}

// ExtractedElement is the flattened projection of a DesignNode.
type ExtractedElement struct {
	Name       string             `json:"name"`
	Type       string             `json:"type"`
	Dimensions *Dimensions        `json:"dimensions,omitempty"`
	Text       string             `json:"text,omitempty"`
	Font       *Font              `json:"font,omitempty"`
	Colors     []string           `json:"colors,omitempty"`
	Children   []ExtractedElement `json:"children,omitempty"`
}

type ExtractedComponent struct {
	NodeID     string             `json:"nodeId"`
	Name       string             `json:"name"`
	Type       string             `json:"type"`
	Dimensions *Dimensions        `json:"dimensions,omitempty"`
	Children   []ExtractedElement `json:"children,omitempty"`
}

type Breakpoint string

const (
	BreakpointDesktop Breakpoint = "desktop"
	BreakpointTablet  Breakpoint = "tablet"
	BreakpointMobile  Breakpoint = "mobile"
)

// Breakpoints in evaluation order.
var Breakpoints = []Breakpoint{BreakpointDesktop, BreakpointTablet, BreakpointMobile}

// ResponsiveVariants maps each breakpoint to a node id. Empty means unresolved.
type ResponsiveVariants struct {
	Desktop string `json:"desktop,omitempty"`
	Tablet  string `json:"tablet,omitempty"`
	Mobile  string `json:"mobile,omitempty"`
}

func (v ResponsiveVariants) Get(bp Breakpoint) string {
	switch bp {
	case BreakpointDesktop:
		return v.Desktop
	case BreakpointTablet:
		return v.Tablet
	case BreakpointMobile:
		return v.Mobile
	}
	return ""
}

func (v *ResponsiveVariants) Set(bp Breakpoint, id string) {
	switch bp {
	case BreakpointDesktop:
		v.Desktop = id
	case BreakpointTablet:
		v.Tablet = id
	case BreakpointMobile:
		v.Mobile = id
	}
}

// DesignImages holds exported screenshot URLs per breakpoint.
type DesignImages struct {
	Desktop string `json:"desktop,omitempty"`
	Tablet  string `json:"tablet,omitempty"`
	Mobile  string `json:"mobile,omitempty"`
}

func (i DesignImages) Get(bp Breakpoint) string {
	return ResponsiveVariants(i).Get(bp)
}

func (i *DesignImages) Set(bp Breakpoint, url string) {
	(*ResponsiveVariants)(i).Set(bp, url)
}
