package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "figma-to-fsd/internal/common/errors"
	"figma-to-fsd/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func el(name, typ string, children ...models.ExtractedElement) models.ExtractedElement {
	return models.ExtractedElement{Name: name, Type: typ, Children: children}
}

func chain(n int) []models.ExtractedElement {
	var node *models.ExtractedElement
	for i := n - 1; i >= 0; i-- {
		next := el(fmt.Sprintf("node-%d", i), models.NodeTypeFrame)
		if node != nil {
			next.Children = []models.ExtractedElement{*node}
		}
		node = &next
	}
	return []models.ExtractedElement{*node}
}

func createFooterComponent() *models.ExtractedComponent {
	copyright := el("Copyright", models.NodeTypeText)
	copyright.Text = "© 2024 Acme Corp. All rights reserved."

	return &models.ExtractedComponent{
		NodeID:     "1:1",
		Name:       "Footer",
		Type:       models.NodeTypeComponent,
		Dimensions: &models.Dimensions{Width: 1440, Height: 320},
		Children: []models.ExtractedElement{
			el("Logo", models.NodeTypeFrame),
			el("Link Columns", models.NodeTypeFrame,
				el("Column Item", models.NodeTypeFrame, el("Heading", models.NodeTypeText)),
				el("Column Item", models.NodeTypeFrame, el("Heading", models.NodeTypeText)),
			),
			el("Social Icons", models.NodeTypeGroup),
			el("Background", models.NodeTypeRectangle),
			el("CTA Button", models.NodeTypeInstance, el("Label", models.NodeTypeText)),
			copyright,
		},
	}
}

// ==========================
// Summary Tests
// ==========================

func TestSummarize_DeepChainIsBounded(t *testing.T) {
	component := &models.ExtractedComponent{Name: "Deep", Children: chain(1000)}

	summary := Summarize(component)

	assert.LessOrEqual(t, summary.Visited, MaxElements)
	assert.LessOrEqual(t, summary.MaxDepthSeen, MaxDepth)
	assert.Equal(t, MaxDepth+1, summary.Visited)
}

func TestSummarize_ElementCountStopsTraversal(t *testing.T) {
	wide := make([]models.ExtractedElement, 250)
	for i := range wide {
		wide[i] = el(fmt.Sprintf("item-%d", i), models.NodeTypeFrame)
	}

	summary := Summarize(&models.ExtractedComponent{Name: "Wide", Children: wide})

	assert.Equal(t, MaxElements, summary.Visited)
	assert.Len(t, summary.Hierarchy, MaxTopLevel)
}

func TestSummarize_DepthLimitEndsWalkForGood(t *testing.T) {
	deep := chain(MaxDepth + 3)
	sibling := el("Later Sibling", models.NodeTypeFrame)

	summary := Summarize(&models.ExtractedComponent{Name: "C", Children: append(deep, sibling)})

	assert.Equal(t, MaxDepth+1, summary.Visited)
}

func TestSummarize_Buckets(t *testing.T) {
	summary := Summarize(createFooterComponent())

	require.Len(t, summary.Texts, 1)
	assert.Equal(t, "Copyright", summary.Texts[0].Name)
	assert.Equal(t, []string{"Logo"}, summary.Logos)
	assert.Equal(t, []string{"Social Icons"}, summary.Icons)

	require.Len(t, summary.Images, 1)
	assert.Equal(t, "Background", summary.Images[0].Name)

	require.Len(t, summary.Links, 1)
	assert.Equal(t, "CTA Button", summary.Links[0].Name)
	assert.Equal(t, []string{"Label"}, summary.Links[0].Children)

	names := make([]string, 0, len(summary.Repeatables))
	for _, r := range summary.Repeatables {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"Link Columns", "Column Item", "Column Item"}, names)
	assert.Equal(t, 2, summary.Repeatables[0].ChildCount)
}

func TestSummarize_Caps(t *testing.T) {
	var children []models.ExtractedElement
	for i := 0; i < 30; i++ {
		text := el(fmt.Sprintf("Text %d", i), models.NodeTypeText)
		text.Text = strings.Repeat("x", 150)
		children = append(children, text)
	}

	summary := Summarize(&models.ExtractedComponent{Name: "Texts", Children: children})

	require.Len(t, summary.Texts, MaxTexts)
	assert.Equal(t, strings.Repeat("x", MaxTextLength)+"...", summary.Texts[0].Text)
}

func TestSummarize_HierarchyDepthLimit(t *testing.T) {
	summary := Summarize(&models.ExtractedComponent{Name: "C", Children: chain(10)})

	assert.Len(t, summary.Hierarchy, MaxHierarchyDepth+1)
	assert.True(t, strings.HasPrefix(summary.Hierarchy[3], "      - node-3"))
}

// ==========================
// Prompt Tests
// ==========================

func TestBuild(t *testing.T) {
	out := Build(createFooterComponent())

	for _, want := range []string{
		`"Footer"`,
		"Size: 1440x320",
		"STRUCTURE",
		"TEXT CONTENT",
		"LOGOS: Logo",
		"ICONS: Social Icons",
		"INTERACTIVE ELEMENTS",
		"REPEATING GROUPS",
		"FIELD TYPE RULES",
		"Single-line text",
		"List of items",
		"Dropdown",
		"EXAMPLE OF A NESTED STRUCTURE",
		`"fieldRequirements"`,
		`"contentAuthorRequirements"`,
	} {
		assert.Contains(t, out, want)
	}
}

func TestBuild_IsDeterministic(t *testing.T) {
	assert.Equal(t, Build(createFooterComponent()), Build(createFooterComponent()))
}

func TestBuild_NilComponent(t *testing.T) {
	var out string
	require.NotPanics(t, func() { out = Build(nil) })

	assert.Contains(t, out, "Top-level elements: 0")
	assert.Contains(t, out, `"fieldRequirements"`)
}

// ==========================
// Response Parsing Tests
// ==========================

func TestParseResponse_EmptyObject(t *testing.T) {
	bundle, err := ParseResponse("{}")

	require.NoError(t, err)
	assert.Equal(t, "", bundle.Description)
	assert.NotNil(t, bundle.Stories)
	assert.Empty(t, bundle.Stories)
	assert.NotNil(t, bundle.EndUserRequirements)
	assert.NotNil(t, bundle.ContentAuthorRequirements)
	assert.NotNil(t, bundle.DesignNotes)
	assert.NotNil(t, bundle.FieldRequirements)
	assert.Empty(t, bundle.FieldRequirements)
}

func TestParseResponse_DescriptionOnly(t *testing.T) {
	bundle, err := ParseResponse(`{"description":"X"}`)

	require.NoError(t, err)
	assert.Equal(t, "X", bundle.Description)
	assert.Equal(t, []models.Story{}, bundle.Stories)
	assert.Equal(t, []models.FieldRequirement{}, bundle.FieldRequirements)
}

func TestParseResponse_InvalidJSON(t *testing.T) {
	tests := []string{"not json", "", `{"description":`, `["a"]`, `"text"`, `42`}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseResponse(raw)

			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeAIResponseInvalid))
			assert.Equal(t, "AI response is not a JSON object", apperrors.AsStandardError(err).Message)
		})
	}
}

func TestParseResponse_WrongShapesDefault(t *testing.T) {
	bundle, err := ParseResponse(`{
		"description": 42,
		"stories": "none",
		"endUserRequirements": ["ok", 3, null],
		"designNotes": {"a": 1},
		"fieldRequirements": [{"element": "Title", "fieldType": "Single-line text", "required": "yes", "notes": 7}]
	}`)

	require.NoError(t, err)
	assert.Equal(t, "", bundle.Description)
	assert.Equal(t, []models.Story{}, bundle.Stories)
	assert.Equal(t, []string{"ok"}, bundle.EndUserRequirements)
	assert.Equal(t, []string{}, bundle.DesignNotes)
	require.Len(t, bundle.FieldRequirements, 1)
	assert.Equal(t, models.FieldRequirement{
		Element:   "Title",
		FieldType: "Single-line text",
		Required:  true,
		Notes:     "7",
	}, bundle.FieldRequirements[0])
}

func TestParseResponse_MixedArrayEntries(t *testing.T) {
	tests := []struct {
		name           string
		raw            string
		expectedFields []models.FieldRequirement
		expectedStory  []models.Story
	}{
		{
			name: "field entries of other shapes keep the valid rows",
			raw: `{"fieldRequirements": [
				{"element": "Title", "fieldType": "Single-line text", "required": true},
				"oops", null, 3, ["nested"]
			]}`,
			expectedFields: []models.FieldRequirement{
				{Element: "Title", FieldType: "Single-line text", Required: true},
				{Element: "oops"},
				{Element: "3"},
			},
			expectedStory: []models.Story{},
		},
		{
			name: "story entries of other shapes keep the valid rows",
			raw:  `{"stories": [{"title": "A", "acceptanceCriteria": ["c"]}, null, "x", {}]}`,
			expectedFields: []models.FieldRequirement{},
			expectedStory: []models.Story{
				{Title: "A", AcceptanceCriteria: []string{"c"}},
				{Title: "x", AcceptanceCriteria: []string{}},
				{Title: "", AcceptanceCriteria: []string{}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle, err := ParseResponse(tt.raw)

			require.NoError(t, err)
			assert.Equal(t, tt.expectedFields, bundle.FieldRequirements)
			assert.Equal(t, tt.expectedStory, bundle.Stories)
		})
	}
}

func TestParseResponse_FullPayloadInFence(t *testing.T) {
	raw := "```json\n" + `{
		"description": "Footer",
		"stories": [{"title": "As a visitor", "acceptanceCriteria": ["a", "b"]}],
		"endUserRequirements": ["r1"],
		"contentAuthorRequirements": ["c1", "c2"],
		"designNotes": ["n1"],
		"fieldRequirements": [{"element": "Logo", "fieldType": "Image", "required": false}]
	}` + "\n```"

	bundle, err := ParseResponse(raw)

	require.NoError(t, err)
	assert.Equal(t, "Footer", bundle.Description)
	assert.Equal(t, []models.Story{{Title: "As a visitor", AcceptanceCriteria: []string{"a", "b"}}}, bundle.Stories)
	assert.Equal(t, 3, bundle.RequirementCount())
	assert.Equal(t, "Image", bundle.FieldRequirements[0].FieldType)
}
