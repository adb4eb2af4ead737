package main

// Embedded reference data: disease name -> treatment advice. Read-only,
// exact-match lookup; anything not listed falls back to defaultTreatment.
var treatmentDB = map[string]Treatment{
	"Tomato Late Blight": {
		Prevention: []string{
			"Ensure good air circulation between plants",
			"Water at the base of plants, avoid wetting leaves",
			"Remove infected leaves and destroy them",
			"Plant resistant varieties",
		},
		Chemical: []string{
			"Apply copper-based fungicides",
			"Use preventative fungicide sprays",
			"Rotate between different fungicide types",
		},
		Biological: []string{
			"Apply beneficial bacteria like Bacillus subtilis",
			"Use organic copper sprays",
			"Maintain healthy soil with compost",
		},
	},
	"Powdery Mildew": {
		Prevention: []string{
			"Space plants properly for air circulation",
			"Avoid overhead watering",
			"Remove infected plant debris",
			"Choose resistant varieties",
		},
		Chemical: []string{
			"Apply sulfur-based fungicides",
			"Use potassium bicarbonate sprays",
			"Apply neem oil solutions",
		},
		Biological: []string{
			"Use milk spray solution",
			"Apply compost tea",
			"Introduce beneficial microorganisms",
		},
	},
}

var defaultTreatment = Treatment{
	Prevention: []string{
		"Ensure proper plant spacing",
		"Maintain good air circulation",
		"Water at the base of plants",
		"Remove infected plant material",
	},
	Chemical: []string{
		"Apply appropriate fungicides",
		"Use disease-specific treatments",
		"Follow local guidelines",
	},
	Biological: []string{
		"Use organic amendments",
		"Introduce beneficial organisms",
		"Apply compost tea",
	},
}

// lookupTreatment is total: every name yields a Treatment with all three
// lists populated.
func lookupTreatment(name string) Treatment {
	if t, ok := treatmentDB[name]; ok {
		return t
	}
	return defaultTreatment
}
