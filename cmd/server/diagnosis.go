package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	errMissingInput   = errors.New("no image data provided")
	errClassification = errors.New("classification failed")
	errSynthesis      = errors.New("response synthesis failed")
)

// Treatment holds advice for one disease. All three lists are always
// populated; unknown diseases get defaultTreatment.
type Treatment struct {
	Prevention []string `json:"prevention"`
	Chemical   []string `json:"chemical"`
	Biological []string `json:"biological"`
}

type DiagnosisCandidate struct {
	Name        string    `json:"name"`
	Probability float64   `json:"probability"`
	Treatment   Treatment `json:"treatment"`
}

type DiagnosisResult struct {
	Diseases []DiagnosisCandidate `json:"diseases"`
}

// rawPrediction is one label/confidence pair from a classification
// provider. Providers disagree on field names (name vs label,
// probability vs score), so both shapes decode into the same struct
// once, at the boundary.
type rawPrediction struct {
	Name        string
	Probability float64
}

func (p *rawPrediction) UnmarshalJSON(data []byte) error {
	var aux struct {
		Name        string   `json:"name"`
		Label       string   `json:"label"`
		Probability *float64 `json:"probability"`
		Score       *float64 `json:"score"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	p.Name = aux.Name
	if p.Name == "" {
		p.Name = aux.Label
	}
	if p.Name == "" {
		return fmt.Errorf("prediction has neither name nor label: %s", string(data))
	}

	switch {
	case aux.Probability != nil:
		p.Probability = *aux.Probability
	case aux.Score != nil:
		p.Probability = *aux.Score
	}
	return nil
}

type normalizeOptions struct {
	// Threshold drops predictions with probability below it; candidates
	// with probability >= Threshold are kept. Zero disables filtering.
	Threshold float64
	// MaxResults caps the candidate list; <=0 falls back to the default.
	MaxResults int
}

const defaultMaxResults = 3

// normalizeDiagnosis maps raw provider predictions into a DiagnosisResult:
// treatment lookup per candidate, optional confidence filter, stable
// descending sort, truncation. An empty prediction list is a valid,
// empty result (healthy plant), never an error.
func normalizeDiagnosis(preds []rawPrediction, opts normalizeOptions) DiagnosisResult {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	diseases := make([]DiagnosisCandidate, 0, len(preds))
	for _, p := range preds {
		if p.Probability < opts.Threshold {
			continue
		}
		diseases = append(diseases, DiagnosisCandidate{
			Name:        p.Name,
			Probability: clamp01(p.Probability),
			Treatment:   lookupTreatment(p.Name),
		})
	}

	// Stable: equal probabilities keep input order.
	sort.SliceStable(diseases, func(i, j int) bool {
		return diseases[i].Probability > diseases[j].Probability
	})

	if len(diseases) > maxResults {
		diseases = diseases[:maxResults]
	}

	return DiagnosisResult{Diseases: diseases}
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
