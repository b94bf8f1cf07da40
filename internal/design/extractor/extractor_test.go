package extractor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"figma-to-fsd/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func boolPtr(b bool) *bool {
	return &b
}

func floatPtr(f float64) *float64 {
	return &f
}

func box(w, h float64) *models.BoundingBox {
	return &models.BoundingBox{Width: w, Height: h}
}

func solid(r, g, b, a float64) models.Paint {
	return models.Paint{Type: "SOLID", Color: &models.Color{R: r, G: g, B: b, A: a}}
}

func createTestTree() *models.DesignNode {
	return &models.DesignNode{
		ID:   "0:1",
		Name: "Page 1",
		Type: models.NodeTypeDocument,
		Children: []models.DesignNode{
			{
				ID:   "1:1",
				Name: "Header",
				Type: models.NodeTypeFrame,
			},
			{
				ID:                  "1:2",
				Name:                "Footer/Desktop",
				Type:                models.NodeTypeFrame,
				AbsoluteBoundingBox: box(1440.4, 320.6),
			},
			{
				ID:                  "1:3",
				Name:                "footer",
				Type:                models.NodeTypeComponent,
				AbsoluteBoundingBox: box(1440, 300),
				Children: []models.DesignNode{
					{
						ID:         "2:1",
						Name:       "Copyright",
						Type:       models.NodeTypeText,
						Characters: "© 2024 Acme",
						Style:      &models.TypeStyle{FontFamily: "Inter", FontSize: 14, FontWeight: 400},
						Fills:      []models.Paint{solid(1, 1, 1, 1)},
					},
				},
			},
		},
	}
}

// ==========================
// Component Lookup Tests
// ==========================

func TestFindComponentNode(t *testing.T) {
	root := createTestTree()

	tests := []struct {
		name       string
		component  string
		expectedID string
	}{
		{name: "exact match ignoring case", component: "FOOTER", expectedID: "1:3"},
		{name: "prefix with slash", component: "Footer/Desktop", expectedID: "1:2"},
		{name: "no match falls back to root", component: "Carousel", expectedID: "0:1"},
		{name: "empty name returns root", component: "", expectedID: "0:1"},
		{name: "header exact", component: "header", expectedID: "1:1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := FindComponentNode(root, tt.component)
			require.NotNil(t, node)
			assert.Equal(t, tt.expectedID, node.ID)
		})
	}
}

func TestFindComponentNode_PrefixWhenNoExact(t *testing.T) {
	root := &models.DesignNode{
		ID:   "0:1",
		Type: models.NodeTypeDocument,
		Children: []models.DesignNode{
			{ID: "1:1", Name: "Hero Banner", Type: models.NodeTypeFrame},
			{ID: "1:2", Name: "Hero Mobile", Type: models.NodeTypeFrame},
		},
	}

	node := FindComponentNode(root, "Hero")

	assert.Equal(t, "1:1", node.ID)
}

func TestFindComponentNode_IgnoresNonRenderableTypes(t *testing.T) {
	root := &models.DesignNode{
		ID:   "0:1",
		Type: models.NodeTypeDocument,
		Children: []models.DesignNode{
			{ID: "1:1", Name: "Footer", Type: models.NodeTypeText},
		},
	}

	node := FindComponentNode(root, "Footer")

	assert.Equal(t, "0:1", node.ID)
}

// ==========================
// Projection Tests
// ==========================

func TestExtract_ProjectsComponent(t *testing.T) {
	component := Extract(createTestTree(), "Footer")

	require.NotNil(t, component)
	assert.Equal(t, "1:3", component.NodeID)
	assert.Equal(t, "Footer", component.Name)
	assert.Equal(t, models.NodeTypeComponent, component.Type)
	assert.Equal(t, &models.Dimensions{Width: 1440, Height: 300}, component.Dimensions)
	require.Len(t, component.Children, 1)

	text := component.Children[0]
	assert.Equal(t, "© 2024 Acme", text.Text)
	assert.Equal(t, &models.Font{Family: "Inter", Size: 14, Weight: 400}, text.Font)
	assert.Equal(t, []string{"#FFFFFF"}, text.Colors)
	assert.Nil(t, text.Children)
}

func TestExtract_RoundsDimensions(t *testing.T) {
	component := Extract(createTestTree(), "Footer/Desktop")

	assert.Equal(t, &models.Dimensions{Width: 1440, Height: 321}, component.Dimensions)
}

func TestExtractElement_NoBoundingBoxOmitsDimensions(t *testing.T) {
	el := ExtractElement(&models.DesignNode{ID: "1", Name: "Label", Type: models.NodeTypeText})

	assert.Nil(t, el.Dimensions)

	data, err := json.Marshal(el)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dimensions")
	assert.NotContains(t, string(data), "children")
}

func TestExtractElement_Colors(t *testing.T) {
	tests := []struct {
		name     string
		node     models.DesignNode
		expected []string
	}{
		{
			name: "fills then strokes deduplicated",
			node: models.DesignNode{
				Fills:   []models.Paint{solid(1, 0, 0, 1), solid(0, 0, 1, 1)},
				Strokes: []models.Paint{solid(1, 0, 0, 1), solid(0, 1, 0, 1)},
			},
			expected: []string{"#FF0000", "#0000FF", "#00FF00"},
		},
		{
			name:     "alpha suffix only when translucent",
			node:     models.DesignNode{Fills: []models.Paint{solid(0, 0, 0, 0.5)}},
			expected: []string{"#00000080"},
		},
		{
			name: "paint opacity multiplies alpha",
			node: models.DesignNode{Fills: []models.Paint{{
				Type:    "SOLID",
				Opacity: floatPtr(0.5),
				Color:   &models.Color{R: 1, G: 1, B: 1, A: 1},
			}}},
			expected: []string{"#FFFFFF80"},
		},
		{
			name: "invisible and gradient paints skipped",
			node: models.DesignNode{Fills: []models.Paint{
				{Type: "SOLID", Visible: boolPtr(false), Color: &models.Color{R: 1, A: 1}},
				{Type: "GRADIENT_LINEAR"},
			}},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := ExtractElement(&tt.node)
			assert.Equal(t, tt.expected, el.Colors)
		})
	}
}

func TestExtract_NilRoot(t *testing.T) {
	assert.Nil(t, Extract(nil, "Footer"))
}
