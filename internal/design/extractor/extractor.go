package extractor

import (
	"fmt"
	"math"
	"strings"

	"figma-to-fsd/internal/models"
)

var renderableTypes = map[string]bool{
	models.NodeTypeFrame:        true,
	models.NodeTypeComponent:    true,
	models.NodeTypeInstance:     true,
	models.NodeTypeGroup:        true,
	models.NodeTypeComponentSet: true,
}

// Extract locates the node best matching componentName and projects it, and
// its whole subtree, into an ExtractedComponent. When componentName is set it
// overrides the node name on the result.
func Extract(root *models.DesignNode, componentName string) *models.ExtractedComponent {
	if root == nil {
		return nil
	}

	node := FindComponentNode(root, componentName)

	name := node.Name
	if strings.TrimSpace(componentName) != "" {
		name = componentName
	}

	return &models.ExtractedComponent{
		NodeID:     node.ID,
		Name:       name,
		Type:       node.Type,
		Dimensions: dimensionsOf(node),
		Children:   extractChildren(node.Children),
	}
}

// FindComponentNode returns the first renderable node whose name equals
// componentName, ignoring case. Failing that, the first renderable node whose
// name starts with componentName followed by a space or slash. Failing that,
// root itself.
func FindComponentNode(root *models.DesignNode, componentName string) *models.DesignNode {
	target := strings.ToLower(strings.TrimSpace(componentName))
	if target == "" {
		return root
	}

	var exact, prefixed *models.DesignNode
	var walk func(n *models.DesignNode) bool
	walk = func(n *models.DesignNode) bool {
		if renderableTypes[n.Type] {
			name := strings.ToLower(strings.TrimSpace(n.Name))
			switch {
			case name == target:
				exact = n
				return true
			case prefixed == nil && (strings.HasPrefix(name, target+" ") || strings.HasPrefix(name, target+"/")):
				prefixed = n
			}
		}
		for i := range n.Children {
			if walk(&n.Children[i]) {
				return true
			}
		}
		return false
	}
	walk(root)

	switch {
	case exact != nil:
		return exact
	case prefixed != nil:
		return prefixed
	default:
		return root
	}
}

// ExtractElement projects a single node and its descendants.
func ExtractElement(node *models.DesignNode) models.ExtractedElement {
	el := models.ExtractedElement{
		Name:       node.Name,
		Type:       node.Type,
		Dimensions: dimensionsOf(node),
		Text:       node.Characters,
		Colors:     colorsOf(node),
		Children:   extractChildren(node.Children),
	}
	if node.Style != nil {
		el.Font = &models.Font{
			Family: node.Style.FontFamily,
			Size:   node.Style.FontSize,
			Weight: node.Style.FontWeight,
		}
	}
	return el
}

func extractChildren(children []models.DesignNode) []models.ExtractedElement {
	if len(children) == 0 {
		return nil
	}
	out := make([]models.ExtractedElement, 0, len(children))
	for i := range children {
		out = append(out, ExtractElement(&children[i]))
	}
	return out
}

func dimensionsOf(node *models.DesignNode) *models.Dimensions {
	if node.AbsoluteBoundingBox == nil {
		return nil
	}
	return &models.Dimensions{
		Width:  int(math.Round(node.AbsoluteBoundingBox.Width)),
		Height: int(math.Round(node.AbsoluteBoundingBox.Height)),
	}
}

// colorsOf collects solid fill then stroke colors, deduplicated in first-seen order.
func colorsOf(node *models.DesignNode) []string {
	var colors []string
	seen := make(map[string]bool)

	collect := func(paints []models.Paint) {
		for _, p := range paints {
			if p.Type != "SOLID" || p.Color == nil {
				continue
			}
			if p.Visible != nil && !*p.Visible {
				continue
			}
			alpha := p.Color.A
			if p.Opacity != nil {
				alpha *= *p.Opacity
			}
			hex := ToHex(*p.Color, alpha)
			if !seen[hex] {
				seen[hex] = true
				colors = append(colors, hex)
			}
		}
	}
	collect(node.Fills)
	collect(node.Strokes)

	return colors
}

// ToHex renders a color as #RRGGBB, adding an alpha byte only when alpha < 1.
func ToHex(c models.Color, alpha float64) string {
	hex := fmt.Sprintf("#%02X%02X%02X", channel(c.R), channel(c.G), channel(c.B))
	if alpha < 1 {
		hex += fmt.Sprintf("%02X", channel(alpha))
	}
	return hex
}

func channel(v float64) int {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return int(math.Round(v * 255))
}
