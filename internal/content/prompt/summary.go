package prompt

import (
	"fmt"
	"strings"

	"figma-to-fsd/internal/models"
)

// Traversal and bucket limits for the design summary.
const (
	MaxElements       = 100
	MaxDepth          = 5
	MaxTexts          = 20
	MaxTextLength     = 100
	MaxImages         = 15
	MaxLinks          = 15
	MaxLinkChildren   = 5
	MaxRepeatables    = 10
	MaxRepeatSamples  = 5
	MaxTopLevel       = 15
	MaxHierarchyDepth = 3
	MaxChildrenLevel  = 10
)

type TextElement struct {
	Name string
	Text string
}

type ImageElement struct {
	Name       string
	Type       string
	Dimensions *models.Dimensions
}

type LinkElement struct {
	Name     string
	Children []string
}

type RepeatableElement struct {
	Name       string
	ChildCount int
	Samples    []string
}

// Summary is the bounded digest of a component that goes into the prompt.
type Summary struct {
	Texts       []TextElement
	Images      []ImageElement
	Logos       []string
	Icons       []string
	Links       []LinkElement
	Repeatables []RepeatableElement
	Hierarchy   []string

	// Visited and MaxDepthSeen describe the traversal itself.
	Visited      int
	MaxDepthSeen int
}

type summarizer struct {
	summary *Summary
	stopped bool
}

// Summarize walks the component depth first. The walk ends for good once
// MaxElements nodes were visited or a node deeper than MaxDepth is reached.
func Summarize(component *models.ExtractedComponent) *Summary {
	s := &summarizer{summary: &Summary{}}
	if component == nil {
		return s.summary
	}

	for i := range component.Children {
		if s.stopped {
			break
		}
		s.visit(&component.Children[i], 0)
	}

	s.summary.Hierarchy = renderHierarchy(component.Children)
	return s.summary
}

func (s *summarizer) visit(el *models.ExtractedElement, depth int) {
	if s.stopped {
		return
	}
	if s.summary.Visited >= MaxElements || depth > MaxDepth {
		s.stopped = true
		return
	}

	s.summary.Visited++
	if depth > s.summary.MaxDepthSeen {
		s.summary.MaxDepthSeen = depth
	}
	s.classify(el)

	for i := range el.Children {
		if s.stopped {
			return
		}
		s.visit(&el.Children[i], depth+1)
	}
}

func (s *summarizer) classify(el *models.ExtractedElement) {
	sum := s.summary
	name := strings.ToLower(el.Name)

	if el.Text != "" && len(sum.Texts) < MaxTexts {
		sum.Texts = append(sum.Texts, TextElement{Name: el.Name, Text: truncate(el.Text, MaxTextLength)})
	}

	if (el.Type == models.NodeTypeRectangle || el.Type == models.NodeTypeImage ||
		containsAny(name, "image", "img", "photo", "banner")) && len(sum.Images) < MaxImages {
		sum.Images = append(sum.Images, ImageElement{Name: el.Name, Type: el.Type, Dimensions: el.Dimensions})
	}

	if strings.Contains(name, "logo") {
		sum.Logos = append(sum.Logos, el.Name)
	}

	if strings.Contains(name, "ico") {
		sum.Icons = append(sum.Icons, el.Name)
	}

	if containsAny(name, "link", "button", "cta", "nav") && len(sum.Links) < MaxLinks {
		sum.Links = append(sum.Links, LinkElement{Name: el.Name, Children: childNames(el, MaxLinkChildren)})
	}

	if containsAny(name, "item", "card", "column", "row", "list") && len(el.Children) > 0 &&
		len(sum.Repeatables) < MaxRepeatables {
		sum.Repeatables = append(sum.Repeatables, RepeatableElement{
			Name:       el.Name,
			ChildCount: len(el.Children),
			Samples:    childNames(el, MaxRepeatSamples),
		})
	}
}

func renderHierarchy(children []models.ExtractedElement) []string {
	var lines []string
	top := children
	if len(top) > MaxTopLevel {
		top = top[:MaxTopLevel]
	}

	var render func(el *models.ExtractedElement, depth int)
	render = func(el *models.ExtractedElement, depth int) {
		line := fmt.Sprintf("%s- %s (%s)", strings.Repeat("  ", depth), el.Name, el.Type)
		if el.Dimensions != nil {
			line += fmt.Sprintf(" [%dx%d]", el.Dimensions.Width, el.Dimensions.Height)
		}
		if el.Text != "" {
			line += fmt.Sprintf(": %q", truncate(el.Text, MaxTextLength))
		}
		lines = append(lines, line)

		if depth >= MaxHierarchyDepth {
			return
		}
		for i := range el.Children {
			if i >= MaxChildrenLevel {
				lines = append(lines, fmt.Sprintf("%s- ... %d more", strings.Repeat("  ", depth+1), len(el.Children)-i))
				break
			}
			render(&el.Children[i], depth+1)
		}
	}

	for i := range top {
		render(&top[i], 0)
	}
	return lines
}

func childNames(el *models.ExtractedElement, limit int) []string {
	var names []string
	for i := range el.Children {
		if i >= limit {
			break
		}
		names = append(names, el.Children[i].Name)
	}
	return names
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
