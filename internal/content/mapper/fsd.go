package mapper

import (
	"fmt"
	"strings"

	"figma-to-fsd/internal/models"
)

// FSDInput is everything the functional specification page is rendered from.
type FSDInput struct {
	Bundle        *models.AIContentBundle
	ComponentName string
	FigmaURL      string
	ParentURL     string
	SubtaskURLs   []string
	Images        models.DesignImages
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// Escape makes user text safe for storage-format markup, text and attributes alike.
func Escape(s string) string {
	return escaper.Replace(s)
}

// DocumentTitle is the page title for a component.
func DocumentTitle(componentName string) string {
	return fmt.Sprintf("%s - Functional Specification", componentName)
}

// ToFSDMarkup renders the specification page as Confluence storage format.
// Output depends only on in.
func ToFSDMarkup(in FSDInput) string {
	bundle := in.Bundle
	if bundle == nil {
		bundle = models.NewAIContentBundle()
	}

	var b strings.Builder
	writeHeader(&b, in)
	writeOverview(&b, bundle)
	writeRequirements(&b, bundle)
	writeFieldTable(&b, bundle.FieldRequirements)
	writeDesignReferences(&b, in.Images)
	return b.String()
}

func writeHeader(b *strings.Builder, in FSDInput) {
	b.WriteString(`<ac:structured-macro ac:name="info"><ac:rich-text-body>`)
	b.WriteString(`<p><strong>Status:</strong> <ac:structured-macro ac:name="status"><ac:parameter ac:name="colour">Yellow</ac:parameter><ac:parameter ac:name="title">DRAFT</ac:parameter></ac:structured-macro></p>`)
	b.WriteString(`</ac:rich-text-body></ac:structured-macro>`)

	b.WriteString(`<table><tbody>`)
	row(b, "Component", Escape(in.ComponentName))
	row(b, "Figma design", link(in.FigmaURL, "Open in Figma"))
	if in.ParentURL != "" {
		row(b, "Jira story", link(in.ParentURL, in.ParentURL))
	}
	if len(in.SubtaskURLs) > 0 {
		links := make([]string, 0, len(in.SubtaskURLs))
		for _, u := range in.SubtaskURLs {
			links = append(links, link(u, u))
		}
		row(b, "Sub-tasks", strings.Join(links, "<br/>"))
	}
	b.WriteString(`</tbody></table>`)
}

func writeOverview(b *strings.Builder, bundle *models.AIContentBundle) {
	b.WriteString(`<ac:layout><ac:layout-section ac:type="two_equal">`)

	b.WriteString(`<ac:layout-cell><h2>Description</h2>`)
	fmt.Fprintf(b, `<p>%s</p>`, Escape(bundle.Description))
	b.WriteString(`</ac:layout-cell>`)

	b.WriteString(`<ac:layout-cell><h2>Design Notes</h2>`)
	list(b, bundle.DesignNotes)
	b.WriteString(`</ac:layout-cell>`)

	b.WriteString(`</ac:layout-section></ac:layout>`)
}

func writeRequirements(b *strings.Builder, bundle *models.AIContentBundle) {
	b.WriteString(`<h2>Functional Requirements</h2>`)
	b.WriteString(`<h3>End User</h3>`)
	list(b, bundle.EndUserRequirements)
	b.WriteString(`<h3>Content Author</h3>`)
	list(b, bundle.ContentAuthorRequirements)

	if len(bundle.Stories) == 0 {
		return
	}
	b.WriteString(`<h3>User Stories</h3>`)
	for _, s := range bundle.Stories {
		fmt.Fprintf(b, `<h4>%s</h4>`, Escape(s.Title))
		list(b, s.AcceptanceCriteria)
	}
}

func writeFieldTable(b *strings.Builder, fields []models.FieldRequirement) {
	b.WriteString(`<h2>Field Requirements</h2>`)
	if len(fields) == 0 {
		b.WriteString(`<p><em>No authorable fields identified.</em></p>`)
		return
	}

	b.WriteString(`<table><tbody><tr><th>Element</th><th>Field Type</th><th>Required</th><th>Data Source</th><th>Display</th><th>Notes</th></tr>`)
	for _, f := range fields {
		required := "Optional"
		if f.Required {
			required = "Required"
		}
		fmt.Fprintf(b, `<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
			Escape(f.Element), Escape(f.FieldType), required, Escape(f.DataSource), Escape(f.Display), Escape(f.Notes))
	}
	b.WriteString(`</tbody></table>`)
}

func writeDesignReferences(b *strings.Builder, images models.DesignImages) {
	b.WriteString(`<h2>Design References</h2>`)
	b.WriteString(`<table><tbody><tr><th>Desktop</th><th>Tablet</th><th>Mobile</th></tr><tr>`)
	for _, bp := range models.Breakpoints {
		u := images.Get(bp)
		if u == "" {
			b.WriteString(`<td><em>Awaiting design</em></td>`)
			continue
		}
		fmt.Fprintf(b, `<td><ac:image ac:width="300"><ri:url ri:value="%s"/></ac:image></td>`, Escape(u))
	}
	b.WriteString(`</tr></tbody></table>`)
}

func row(b *strings.Builder, label, valueMarkup string) {
	fmt.Fprintf(b, `<tr><th>%s</th><td>%s</td></tr>`, label, valueMarkup)
}

func link(href, text string) string {
	if href == "" {
		return `<em>Not provided</em>`
	}
	return fmt.Sprintf(`<a href="%s">%s</a>`, Escape(href), Escape(text))
}

func list(b *strings.Builder, items []string) {
	if len(items) == 0 {
		b.WriteString(`<p><em>None</em></p>`)
		return
	}
	b.WriteString(`<ul>`)
	for _, item := range items {
		fmt.Fprintf(b, `<li>%s</li>`, Escape(item))
	}
	b.WriteString(`</ul>`)
}
