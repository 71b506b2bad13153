package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLookup_EveryDeclaredClassHasCategory(t *testing.T) {
	for _, class := range Classes() {
		rec := Lookup(class)
		assert.NotEmpty(t, rec.Category, "class %s", class)
		assert.NotEmpty(t, rec.Symptoms, "class %s", class)
		assert.True(t, Known(class), "class %s", class)
	}
}

func TestLookup_SynthesizedHealthy(t *testing.T) {
	for _, class := range Classes() {
		if Default.Authored(class) || !class.IsHealthy() {
			continue
		}
		rec := Lookup(class)
		assert.Equal(t, CategoryHealthy, rec.Category, "class %s", class)
		assert.Equal(t, "None", rec.Cause)
		assert.Contains(t, rec.ScientificReason, class.PlantName())
	}
}

func TestLookup_SynthesizedDefault(t *testing.T) {
	rec := Lookup("Tomato___Leaf_Mold")
	assert.Equal(t, CategoryUndetermined, rec.Category)
	assert.Equal(t, "Symptoms characteristic of Leaf Mold observed on leaves.", rec.Symptoms)
	assert.Equal(t, "Consult a local agricultural expert; consider organic neem oil spray.", rec.RecommendedAction)
}

func TestLookup_Authored(t *testing.T) {
	rec := Lookup("Tomato___Tomato_Yellow_Leaf_Curl_Virus")
	assert.Equal(t, CategoryViral, rec.Category)
	assert.Equal(t, "Begomovirus", rec.Cause)
	assert.True(t, Default.Authored("Tomato___Tomato_Yellow_Leaf_Curl_Virus"))
	assert.False(t, Default.Authored("Tomato___healthy"))
}

func TestLookup_UnknownClassIsTotal(t *testing.T) {
	assert.False(t, Known("Mango___healthy"))
	assert.Equal(t, CategoryHealthy, Lookup("Mango___healthy").Category)

	rec := Lookup("Mango___Anthracnose")
	assert.Equal(t, CategoryUndetermined, rec.Category)
	assert.Contains(t, rec.Symptoms, "Anthracnose")

	rec = Lookup("garbage")
	assert.Equal(t, CategoryUndetermined, rec.Category)
	assert.Equal(t, "Visible discoloration or damage on leaf surface.", rec.Symptoms)
}

func TestPlantClass_Split(t *testing.T) {
	tests := []struct {
		class     PlantClass
		plant     string
		condition string
		ok        bool
	}{
		{"Tomato___healthy", "Tomato", "healthy", true},
		{"Pepper,_bell___Bacterial_spot", "Pepper,_bell", "Bacterial_spot", true},
		{"A___B___C", "A", "B", true},
		{"Tomato", "", "", false},
		{"___healthy", "", "", false},
		{"Tomato___", "", "", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.class), func(t *testing.T) {
			plant, condition, ok := tt.class.Split()
			assert.Equal(t, tt.plant, plant)
			assert.Equal(t, tt.condition, condition)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestPlantClass_DisplayNames(t *testing.T) {
	c := PlantClass("Corn_(maize)___Northern_Leaf_Blight")
	assert.Equal(t, "Corn (maize)", c.PlantName())
	assert.Equal(t, "Northern Leaf Blight", c.Condition())
	assert.False(t, c.IsHealthy())
	assert.True(t, PlantClass("Tomato___healthy").IsHealthy())
}

func TestClasses_ReturnsCopy(t *testing.T) {
	got := Classes()
	require.Len(t, got, 38)
	got[0] = "mutated"
	assert.Equal(t, PlantClass("Apple___Apple_scab"), Classes()[0])
	assert.Equal(t, PlantClass("Apple___healthy"), Classes()[3])
}

func TestValidateFallback(t *testing.T) {
	require.NoError(t, Default.ValidateFallback(DefaultFallback))
	assert.Error(t, Default.ValidateFallback("Tomato"))
	assert.Error(t, Default.ValidateFallback("Mango___healthy"))
}

func TestNewTable_DoesNotRetainInputs(t *testing.T) {
	declared := []PlantClass{"Fig___healthy", "Fig___Rust"}
	records := map[PlantClass]Explanation{
		"Fig___Rust": {Category: CategoryFungal, Cause: "Fungus"},
	}
	table := NewTable(declared, records)
	records["Fig___Rust"] = Explanation{Category: CategoryPest}
	declared[0] = "changed"

	assert.Equal(t, CategoryFungal, table.Lookup("Fig___Rust").Category)
	assert.Equal(t, CategoryHealthy, table.Lookup("Fig___healthy").Category)
	assert.Equal(t, []PlantClass{"Fig___healthy", "Fig___Rust"}, table.Classes())
}
