package knowledge

// Category groups conditions by their biological origin.
type Category string

const (
	CategoryFungal       Category = "Fungal"
	CategoryBacterial    Category = "Bacterial"
	CategoryViral        Category = "Viral"
	CategoryPest         Category = "Pest"
	CategoryHealthy      Category = "Healthy"
	CategoryUndetermined Category = "To be determined"
)

// Explanation is the human-readable background for one PlantClass.
type Explanation struct {
	Cause              string   `json:"cause" yaml:"cause"`
	Category           Category `json:"category" yaml:"category"`
	Symptoms           string   `json:"symptoms" yaml:"symptoms"`
	ScientificReason   string   `json:"scientific_reason" yaml:"scientific_reason"`
	Precaution         string   `json:"precaution" yaml:"precaution"`
	RecommendedAction  string   `json:"recommended_action" yaml:"recommended_action"`
	NutrientCorrection string   `json:"nutrient_correction" yaml:"nutrient_correction"`
}

var authored = map[PlantClass]Explanation{
	"Apple___Apple_scab": {
		Cause:              "Fungus (Venturia inaequalis)",
		Category:           CategoryFungal,
		Symptoms:           "Olive-green to black spots on leaves and fruit, often appearing velvety.",
		ScientificReason:   "The fungus overwinters in fallen leaves and infects new growth during wet spring weather.",
		Precaution:         "Remove fallen leaves in autumn; prune trees to improve air circulation.",
		RecommendedAction:  "Apply fungicides like Myclobutanil or Captan during the early growing season.",
		NutrientCorrection: "Ensure balanced Nitrogen levels; excessive Nitrogen can promote susceptible flush growth.",
	},
	"Apple___Black_rot": {
		Cause:              "Fungus (Botryosphaeria obtusa)",
		Category:           CategoryFungal,
		Symptoms:           "Reddish-brown spots on leaves (frogeye leaf spot), cankers on limbs, and firm rot on fruit.",
		ScientificReason:   "Infection often occurs through wounds in the bark or fruit, spreading via rain-splashed spores.",
		Precaution:         "Prune out dead wood and remove mummified fruit from trees and ground.",
		RecommendedAction:  "Apply fungicides during petal fall and throughout the summer.",
		NutrientCorrection: "Maintain adequate Potassium levels to improve wood strength and disease resistance.",
	},
	"Apple___Cedar_apple_rust": {
		Cause:              "Fungus (Gymnosporangium juniperi-virginianae)",
		Category:           CategoryFungal,
		Symptoms:           "Bright orange-yellow spots on the upper surface of leaves.",
		ScientificReason:   "Requires two hosts (apple and cedar) to complete its life cycle.",
		Precaution:         "Remove nearby cedar trees if possible; plant resistant apple varieties.",
		RecommendedAction:  "Apply preventative fungicides when cedar galls are active (orange gelatinous horns).",
		NutrientCorrection: "General balanced fertilization to reduce plant stress.",
	},
	"Tomato___Bacterial_spot": {
		Cause:              "Bacteria (Xanthomonas)",
		Category:           CategoryBacterial,
		Symptoms:           "Small, water-soaked spots on leaves and fruit, becoming dark and crusty.",
		ScientificReason:   "Spread by rain-splash and overhead irrigation; thrives in warm, humid conditions.",
		Precaution:         "Use certified disease-free seeds; avoid overhead watering.",
		RecommendedAction:  "Apply copper-based bactericides early in the season.",
		NutrientCorrection: "Ensure adequate Calcium to strengthen cell walls against bacterial invasion.",
	},
	"Tomato___Tomato_Yellow_Leaf_Curl_Virus": {
		Cause:              "Begomovirus",
		Category:           CategoryViral,
		Symptoms:           "Upward curling of leaves, yellowing of leaf margins, and stunted growth.",
		ScientificReason:   "Transmitted by Whiteflies (Bemisia tabaci).",
		Precaution:         "Use insect nets in greenhouses; control whitefly population.",
		RecommendedAction:  "Remove infected plants immediately to prevent spread; use yellow sticky traps for monitoring.",
		NutrientCorrection: "Zinc and Magnesium supplements can help the plant recover from viral stress symptoms.",
	},
	"Corn_(maize)___Common_rust_": {
		Cause:              "Fungus (Puccinia sorghi)",
		Category:           CategoryFungal,
		Symptoms:           "Cinnamon-brown pustules on both upper and lower leaf surfaces.",
		ScientificReason:   "Spores are wind-blown from southern regions or overwintered debris.",
		Precaution:         "Plant resistant hybrids; manage crop residue.",
		RecommendedAction:  "Typically doesn't require treatment unless infection is severe and occurs early.",
		NutrientCorrection: "Balanced Nitrogen/Potassium ratio is essential for stalk strength and immunity.",
	},
	"Potato___Late_blight": {
		Cause:              "Oomycete (Phytophthora infestans)",
		Category:           CategoryFungal,
		Symptoms:           "Dark, water-soaked patches on leaves that turn brown/black; white mold on underside.",
		ScientificReason:   "The pathogen that caused the Irish Potato Famine; spreads rapidly in cool, wet weather.",
		Precaution:         "Destroy cull piles; use resistant varieties; ensure good hilling of tubers.",
		RecommendedAction:  "Weekly fungicide applications (e.g., Mancozeb) during high-risk periods.",
		NutrientCorrection: "Avoid excessive Nitrogen which creates a dense canopy trapping moisture.",
	},
	"Grape___Black_rot": {
		Cause:              "Fungus (Guignardia bidwellii)",
		Category:           CategoryFungal,
		Symptoms:           "Brown circular spots on leaves; berries shrivel into hard, black mummies.",
		ScientificReason:   "Spores overwinter in mummified berries and infect new shoots in the spring.",
		Precaution:         "Sanitation is key; remove all mummified fruit; prune for airflow.",
		RecommendedAction:  "Timed fungicide applications from early bloom until berries reach 6mm.",
		NutrientCorrection: "Boron deficiency can sometimes mimic early fruit damage; ensure trace mineral balance.",
	},
}

func healthyExplanation(plant string) Explanation {
	reason := "The plant is receiving optimal nutrients and is free from pathogens."
	if plant != "" {
		reason = "The " + plant + " plant is receiving optimal nutrients and is free from pathogens."
	}
	return Explanation{
		Cause:              "None",
		Category:           CategoryHealthy,
		Symptoms:           "Green, vibrant leaves with no visible spots or discoloration.",
		ScientificReason:   reason,
		Precaution:         "Maintain regular watering and fertilization schedule.",
		RecommendedAction:  "Continue current cultivation practices; monitor for early signs of pests.",
		NutrientCorrection: "Maintain current nutrient balance.",
	}
}

func defaultExplanation(condition string) Explanation {
	symptoms := "Visible discoloration or damage on leaf surface."
	if condition != "" {
		symptoms = "Symptoms characteristic of " + condition + " observed on leaves."
	}
	return Explanation{
		Cause:              "Pathogen/Environmental Stress",
		Category:           CategoryUndetermined,
		Symptoms:           symptoms,
		ScientificReason:   "The plant is reacting to external stress or biological infection.",
		Precaution:         "Isolate the plant, avoid water-to-leaf contact.",
		RecommendedAction:  "Consult a local agricultural expert; consider organic neem oil spray.",
		NutrientCorrection: "Check N-P-K levels in soil.",
	}
}

// synthesize builds the record for a class nobody authored.
func synthesize(c PlantClass) Explanation {
	if c.IsHealthy() {
		return healthyExplanation(c.PlantName())
	}
	return defaultExplanation(c.Condition())
}
