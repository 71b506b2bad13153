package knowledge

import "strings"

const (
	// Separator joins the plant and condition segments of a PlantClass.
	Separator = "___"
	// HealthyMarker is the condition segment used for disease-free leaves.
	HealthyMarker = "healthy"
)

// PlantClass identifies a plant/condition pair, e.g. "Tomato___Late_blight".
type PlantClass string

// DefaultFallback is used whenever the model does not report a usable class.
const DefaultFallback PlantClass = "Apple___healthy"

var classes = []PlantClass{
	"Apple___Apple_scab", "Apple___Black_rot", "Apple___Cedar_apple_rust", "Apple___healthy",
	"Blueberry___healthy", "Cherry_(including_sour)___Powdery_mildew", "Cherry_(including_sour)___healthy",
	"Corn_(maize)___Cercospora_leaf_spot Gray_leaf_spot", "Corn_(maize)___Common_rust_",
	"Corn_(maize)___Northern_Leaf_Blight", "Corn_(maize)___healthy", "Grape___Black_rot",
	"Grape___Esca_(Black_Measles)", "Grape___Leaf_blight_(Isariopsis_Leaf_Spot)", "Grape___healthy",
	"Orange___Haunglongbing_(Citrus_greening)", "Peach___Bacterial_spot", "Peach___healthy",
	"Pepper,_bell___Bacterial_spot", "Pepper,_bell___healthy", "Potato___Early_blight",
	"Potato___Late_blight", "Potato___healthy", "Raspberry___healthy", "Soybean___healthy",
	"Squash___Powdery_mildew", "Strawberry___Leaf_scorch", "Strawberry___healthy",
	"Tomato___Bacterial_spot", "Tomato___Early_blight", "Tomato___Late_blight", "Tomato___Leaf_Mold",
	"Tomato___Septoria_leaf_spot", "Tomato___Spider_mites Two-spotted_spider_mite",
	"Tomato___Target_Spot", "Tomato___Tomato_Yellow_Leaf_Curl_Virus", "Tomato___Tomato_mosaic_virus",
	"Tomato___healthy",
}

// Classes returns the declared enumeration in declaration order.
func Classes() []PlantClass {
	out := make([]PlantClass, len(classes))
	copy(out, classes)
	return out
}

// Split returns the raw plant and condition segments. ok is false when the
// class has no separator or either segment is empty. Anything after a second
// separator is ignored.
func (c PlantClass) Split() (plant, condition string, ok bool) {
	parts := strings.Split(string(c), Separator)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// IsHealthy reports whether the condition segment is the healthy marker.
func (c PlantClass) IsHealthy() bool {
	_, condition, ok := c.Split()
	return ok && condition == HealthyMarker
}

// PlantName is the display form of the plant segment.
func (c PlantClass) PlantName() string {
	plant, _, _ := c.Split()
	return Humanize(plant)
}

// Condition is the display form of the condition segment.
func (c PlantClass) Condition() string {
	_, condition, _ := c.Split()
	return Humanize(condition)
}

// Humanize replaces underscores with spaces.
func Humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}
