package variants

import (
	"strings"

	"figma-to-fsd/internal/models"
)

// Rule binds a breakpoint to the name keywords that identify it.
type Rule struct {
	Breakpoint models.Breakpoint
	Keywords   []string
}

// Rules are evaluated in order; a slot keeps the first node that matched it.
var Rules = []Rule{
	{Breakpoint: models.BreakpointDesktop, Keywords: []string{"desktop", "lg", "large", "web", "default"}},
	{Breakpoint: models.BreakpointTablet, Keywords: []string{"tablet", "ipad", "md", "medium"}},
	{Breakpoint: models.BreakpointMobile, Keywords: []string{"mobile", "phone", "sm", "small", "ios", "android"}},
}

// Matches reports whether the lower-cased name contains any keyword of the rule.
func (r Rule) Matches(lowerName string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(lowerName, kw) {
			return true
		}
	}
	return false
}

func ruleFor(bp models.Breakpoint) Rule {
	for _, r := range Rules {
		if r.Breakpoint == bp {
			return r
		}
	}
	return Rule{Breakpoint: bp}
}

// Resolve maps each breakpoint to a node id. Component sets are resolved from
// their direct children; any other root is searched in full for nodes related
// to componentName. Desktop falls back to the root id. Never fails.
func Resolve(root *models.DesignNode, componentName string) models.ResponsiveVariants {
	var v models.ResponsiveVariants
	if root == nil {
		return v
	}

	if root.Type == models.NodeTypeComponentSet {
		resolveComponentSet(root, &v)
	} else {
		resolveTree(root, strings.ToLower(strings.TrimSpace(componentName)), &v)
	}

	if v.Desktop == "" {
		v.Desktop = root.ID
	}
	return v
}

func resolveComponentSet(root *models.DesignNode, v *models.ResponsiveVariants) {
	tablet := ruleFor(models.BreakpointTablet)
	mobile := ruleFor(models.BreakpointMobile)

	for i := range root.Children {
		child := &root.Children[i]
		name := strings.ToLower(child.Name)

		for _, rule := range Rules {
			if v.Get(rule.Breakpoint) != "" {
				continue
			}
			matched := rule.Matches(name)
			// A variant that names neither of the smaller breakpoints is the desktop one.
			if !matched && rule.Breakpoint == models.BreakpointDesktop {
				matched = !tablet.Matches(name) && !mobile.Matches(name)
			}
			if matched {
				v.Set(rule.Breakpoint, child.ID)
			}
		}
	}
}

func resolveTree(node *models.DesignNode, target string, v *models.ResponsiveVariants) {
	name := strings.ToLower(node.Name)

	if relatedTo(name, target) {
		for _, rule := range Rules {
			if v.Get(rule.Breakpoint) == "" && rule.Matches(name) {
				v.Set(rule.Breakpoint, node.ID)
			}
		}
	}

	for i := range node.Children {
		resolveTree(&node.Children[i], target, v)
	}
}

// relatedTo reports whether a node name refers to the component: either the
// name contains the component name or the component name contains the node's
// first word.
func relatedTo(lowerName, target string) bool {
	if target == "" {
		return false
	}
	if strings.Contains(lowerName, target) {
		return true
	}
	fields := strings.Fields(lowerName)
	if len(fields) == 0 {
		return false
	}
	return strings.Contains(target, fields[0])
}
