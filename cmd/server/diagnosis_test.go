package main

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNormalizeOrdersAndResolvesTreatment(t *testing.T) {
	preds := []rawPrediction{
		{Name: "Tomato Late Blight", Probability: 0.92},
		{Name: "Unknown Spot", Probability: 0.05},
	}

	result := normalizeDiagnosis(preds, normalizeOptions{MaxResults: 3})
	if len(result.Diseases) != 2 {
		t.Fatalf("expected 2 candidates, got %+v", result.Diseases)
	}
	if result.Diseases[0].Name != "Tomato Late Blight" || result.Diseases[0].Probability != 0.92 {
		t.Fatalf("unexpected top candidate: %+v", result.Diseases[0])
	}
	if !reflect.DeepEqual(result.Diseases[0].Treatment, treatmentDB["Tomato Late Blight"]) {
		t.Fatalf("expected table treatment for known disease, got %+v", result.Diseases[0].Treatment)
	}
	if !reflect.DeepEqual(result.Diseases[1].Treatment, defaultTreatment) {
		t.Fatalf("expected default treatment for unknown disease, got %+v", result.Diseases[1].Treatment)
	}
}

func TestNormalizeSortsDescending(t *testing.T) {
	preds := []rawPrediction{
		{Name: "a", Probability: 0.2},
		{Name: "b", Probability: 0.9},
		{Name: "c", Probability: 0.5},
	}

	result := normalizeDiagnosis(preds, normalizeOptions{})
	got := []string{result.Diseases[0].Name, result.Diseases[1].Name, result.Diseases[2].Name}
	want := []string{"b", "c", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected order %v, got %v", want, got)
	}
}

func TestNormalizeStableOnTies(t *testing.T) {
	preds := []rawPrediction{
		{Name: "first", Probability: 0.5},
		{Name: "second", Probability: 0.5},
		{Name: "third", Probability: 0.5},
	}

	result := normalizeDiagnosis(preds, normalizeOptions{})
	for i, want := range []string{"first", "second", "third"} {
		if result.Diseases[i].Name != want {
			t.Fatalf("tie order not preserved: %+v", result.Diseases)
		}
	}
}

func TestNormalizeThresholdKeepsEqual(t *testing.T) {
	preds := []rawPrediction{
		{Name: "above", Probability: 0.8},
		{Name: "equal", Probability: 0.7},
		{Name: "below", Probability: 0.69},
	}

	result := normalizeDiagnosis(preds, normalizeOptions{Threshold: 0.7})
	if len(result.Diseases) != 2 {
		t.Fatalf("expected 2 candidates at threshold 0.7, got %+v", result.Diseases)
	}
	if result.Diseases[1].Name != "equal" {
		t.Fatalf("candidate equal to threshold must be kept, got %+v", result.Diseases)
	}
}

func TestNormalizeTruncates(t *testing.T) {
	preds := []rawPrediction{
		{Name: "a", Probability: 0.9},
		{Name: "b", Probability: 0.8},
		{Name: "c", Probability: 0.7},
	}

	result := normalizeDiagnosis(preds, normalizeOptions{MaxResults: 1})
	if len(result.Diseases) != 1 || result.Diseases[0].Name != "a" {
		t.Fatalf("expected only top candidate, got %+v", result.Diseases)
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	result := normalizeDiagnosis(nil, normalizeOptions{})
	if len(result.Diseases) != 0 {
		t.Fatalf("expected empty result, got %+v", result.Diseases)
	}
}

func TestNormalizeClampsProbability(t *testing.T) {
	preds := []rawPrediction{{Name: "a", Probability: 1.2}}
	result := normalizeDiagnosis(preds, normalizeOptions{})
	if result.Diseases[0].Probability != 1 {
		t.Fatalf("expected probability clamped to 1, got %v", result.Diseases[0].Probability)
	}
}

func TestRawPredictionDecodesBothShapes(t *testing.T) {
	cases := []struct {
		in   string
		name string
		prob float64
	}{
		{`{"name":"Powdery Mildew","probability":0.81}`, "Powdery Mildew", 0.81},
		{`{"label":"Tomato Late Blight","score":0.92}`, "Tomato Late Blight", 0.92},
	}

	for _, tc := range cases {
		var p rawPrediction
		if err := json.Unmarshal([]byte(tc.in), &p); err != nil {
			t.Fatalf("unexpected error for %s: %v", tc.in, err)
		}
		if p.Name != tc.name || p.Probability != tc.prob {
			t.Fatalf("decoded %s into %+v", tc.in, p)
		}
	}
}

func TestRawPredictionRejectsNameless(t *testing.T) {
	var p rawPrediction
	if err := json.Unmarshal([]byte(`{"score":0.5}`), &p); err == nil {
		t.Fatal("expected error for prediction without name or label")
	}
}

func TestLookupTreatmentIsTotal(t *testing.T) {
	for _, name := range []string{"Tomato Late Blight", "Powdery Mildew", "Made Up Disease", ""} {
		tr := lookupTreatment(name)
		if len(tr.Prevention) == 0 || len(tr.Chemical) == 0 || len(tr.Biological) == 0 {
			t.Fatalf("treatment for %q has empty advice: %+v", name, tr)
		}
	}
}
