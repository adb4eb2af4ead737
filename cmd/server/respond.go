package main

import (
	"fmt"
	"math"
	"strings"
)

const (
	replyUploadFirst = "Please upload a plant image first so I can provide specific advice about your plant's condition."
	replyHealthy     = "Based on the analysis, your plant appears healthy! Is there anything specific you'd like to know about maintaining its health?"
	replyWatering    = "General watering tips:\n- Water deeply but infrequently\n- Check soil moisture before watering\n- Water at the base of the plant\n- Avoid overwatering which can lead to root problems"
	replyFertilizer  = "General fertilizing tips:\n- Use balanced fertilizer for most plants\n- Don't over-fertilize\n- Follow package instructions\n- Fertilize during growing season"
	replyLighting    = "General lighting tips:\n- Most plants need 6-8 hours of sunlight\n- Protect from intense afternoon sun\n- Rotate plants regularly\n- Watch for signs of too much/too little light"
	replyMenu        = "I can help you with:\n- Treatment options\n- Prevention methods\n- Watering advice\n- Fertilizing tips\n- Lighting requirements\n\nPlease ask specific questions about these topics!"
)

// diseaseRule builds a reply from the top diagnosis candidate when any of
// its keywords appears in the query. Rules are evaluated in order,
// first match wins, so precedence is the slice order below.
type diseaseRule struct {
	keywords []string
	build    func(d DiagnosisCandidate) string
}

var diseaseRules = []diseaseRule{
	{
		keywords: []string{"treatment", "cure", "fix"},
		build: func(d DiagnosisCandidate) string {
			return fmt.Sprintf("For %s, here are some treatment options:\n\nChemical treatments: %s\n\nBiological treatments: %s\n\nPrevention: %s",
				d.Name,
				strings.Join(d.Treatment.Chemical, ", "),
				strings.Join(d.Treatment.Biological, ", "),
				strings.Join(d.Treatment.Prevention, ", "))
		},
	},
	{
		keywords: []string{"prevent", "stop", "avoid"},
		build: func(d DiagnosisCandidate) string {
			return fmt.Sprintf("To prevent %s, try these methods:\n%s",
				d.Name, strings.Join(d.Treatment.Prevention, "\n"))
		},
	},
	{
		keywords: []string{"confidence", "sure"},
		build: func(d DiagnosisCandidate) string {
			return fmt.Sprintf("I am %d%% confident that your plant is affected by %s.",
				roundPercent(d.Probability), d.Name)
		},
	},
	{
		keywords: []string{"symptoms", "signs", "look"},
		build: func(d DiagnosisCandidate) string {
			return fmt.Sprintf("%s has been detected with %d%% confidence. This condition typically affects plant health and growth. I recommend following the prevention and treatment methods provided in the analysis.",
				d.Name, roundPercent(d.Probability))
		},
	},
	{
		keywords: []string{"what", "problem", "issue"},
		build: func(d DiagnosisCandidate) string {
			return fmt.Sprintf("Your plant appears to be affected by %s. Would you like to know more about the treatment options?", d.Name)
		},
	},
}

// generalRules apply when no disease-specific rule matched; they need no
// diagnosis context.
var generalRules = []struct {
	keywords []string
	reply    string
}{
	{keywords: []string{"water", "watering"}, reply: replyWatering},
	{keywords: []string{"fertilizer", "feed"}, reply: replyFertilizer},
	{keywords: []string{"sunlight", "light"}, reply: replyLighting},
}

// generateReply is the rule-based synthesizer: pure, deterministic, no
// I/O. diag may be nil (nothing analyzed yet).
func generateReply(query string, diag *DiagnosisResult) string {
	if diag == nil {
		return replyUploadFirst
	}
	if len(diag.Diseases) == 0 {
		return replyHealthy
	}

	q := strings.ToLower(query)
	top := diag.Diseases[0]

	for _, rule := range diseaseRules {
		if containsAny(q, rule.keywords) {
			return rule.build(top)
		}
	}
	for _, rule := range generalRules {
		if containsAny(q, rule.keywords) {
			return rule.reply
		}
	}
	return replyMenu
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func roundPercent(p float64) int {
	return int(math.Round(p * 100))
}
