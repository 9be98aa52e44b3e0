// Package staticdrugs serves drug data from a small built-in table. It backs
// development setups and tests that must not reach the network.
package staticdrugs

import (
	"context"
	"strings"

	"spillthepill/internal/domain"
)

var table = []domain.DrugInfo{
	{
		Name:        "Ibuprofen",
		RxCUI:       "12345",
		Uses:        "Reduces fever and relieves mild to moderate pain such as headaches, toothaches, menstrual cramps, muscle aches, or arthritis.",
		Dosage:      "200-400 mg every 4-6 hours as needed. Do not exceed 1200 mg in 24 hours without doctor supervision.",
		Warnings:    "Do not use if you have a history of allergic reaction to NSAIDs. Use with caution in patients with stomach ulcers, heart, or kidney problems.",
		SideEffects: "Nausea, vomiting, headache, dizziness, stomach pain, rash.",
	},
	{
		Name:        "Paracetamol",
		RxCUI:       "23456",
		Uses:        "Relieves mild to moderate pain and reduces fever.",
		Dosage:      "500-1000 mg every 4-6 hours as needed. Do not exceed 4000 mg in 24 hours.",
		Warnings:    "Do not use with other products containing acetaminophen. Overdose can cause liver damage.",
		SideEffects: "Rash, low blood cell count, liver damage (overdose).",
	},
	{
		Name:        "Aspirin",
		RxCUI:       "34567",
		Uses:        "Reduces pain, fever, and inflammation. Used for heart attack and stroke prevention.",
		Dosage:      "325-650 mg every 4-6 hours as needed. For heart protection, 81-325 mg daily as directed.",
		Warnings:    "Do not use in children with viral infections (risk of Reye's syndrome). Avoid if you have bleeding disorders.",
		SideEffects: "Stomach upset, bleeding, allergic reactions.",
	},
}

// KnownNames is the list Suggester filters.
var KnownNames = []string{
	"Ibuprofen", "Paracetamol", "Aspirin", "Cetirizine", "Loratadine",
	"Omeprazole", "Metformin", "Amlodipine", "Lisinopril", "Atorvastatin",
	"Sertraline", "Fluoxetine", "Albuterol", "Prednisone", "Doxycycline",
	"Azithromycin", "Ciprofloxacin", "Metronidazole", "Clindamycin", "Amoxicillin",
}

// Source looks drugs up in the built-in table by name or RxCUI.
type Source struct{}

func (Source) Lookup(_ context.Context, query string) (*domain.DrugInfo, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	for _, d := range table {
		if strings.ToLower(d.Name) == q || d.RxCUI == q {
			info := d
			info.Source = "static"
			return &info, nil
		}
	}
	return nil, domain.ErrDrugNotFound
}

// Suggester matches KnownNames by case-insensitive substring.
type Suggester struct{}

func (Suggester) Suggest(_ context.Context, term string) ([]string, error) {
	t := strings.ToLower(strings.TrimSpace(term))
	out := []string{}
	for _, name := range KnownNames {
		if strings.Contains(strings.ToLower(name), t) {
			out = append(out, name)
		}
	}
	return out, nil
}

// Placeholder returns a record with only the name set, leaving the content
// for the language model to supply.
type Placeholder struct{}

func (Placeholder) Lookup(_ context.Context, query string) (*domain.DrugInfo, error) {
	name := strings.TrimSpace(query)
	if name == "" {
		return nil, domain.ErrDrugNotFound
	}
	return &domain.DrugInfo{Name: name, Source: "llm"}, nil
}
