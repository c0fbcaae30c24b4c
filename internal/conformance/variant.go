package conformance

import "fmt"

// Variant selects which solver operation a scenario batch exercises.
type Variant string

const (
	// VariantFK checks forward kinematics availability on random
	// configurations.
	VariantFK Variant = "fk"

	// VariantIK checks the single-shot inverse query, seeded with the
	// configuration the target was generated from.
	VariantIK Variant = "ik"

	// VariantSearch checks the search query from an uninformed all-zeros
	// seed, followed by a single-shot re-resolve of the found solution.
	VariantSearch Variant = "search"

	// VariantSearchFiltered checks the filtered search with the
	// above-ground acceptance filter.
	VariantSearchFiltered Variant = "search_filtered"

	// VariantMultiple checks multi-solution enumeration: every returned
	// configuration must independently reach the target.
	VariantMultiple Variant = "multi"
)

// AllVariants returns the scenario variants in canonical run order.
func AllVariants() []Variant {
	return []Variant{VariantFK, VariantIK, VariantSearch, VariantSearchFiltered, VariantMultiple}
}

// ParseVariant validates a scenario name from configuration.
func ParseVariant(s string) (Variant, error) {
	switch v := Variant(s); v {
	case VariantFK, VariantIK, VariantSearch, VariantSearchFiltered, VariantMultiple:
		return v, nil
	default:
		return "", fmt.Errorf("unknown scenario %q", s)
	}
}
