package domain

// ScopeRules configures the keyword scope filter.
// All terms are matched as lower-case substrings of the question.
type ScopeRules struct {
	// DomainTerms mark a question as related to Rwanda nutrition data.
	DomainTerms []string

	// ForeignTerms reject a question outright, even if domain terms appear.
	ForeignTerms []string

	// GeneralTopics reject a question that contains no domain term.
	GeneralTopics []string
}

// DefaultScopeRules returns the built-in keyword lists.
func DefaultScopeRules() ScopeRules {
	return ScopeRules{
		DomainTerms: []string{
			"rwanda", "rwandan", "kigali", "nisr", "rwa",
			"stunting", "wasting", "nutrition", "malnutrition",
			"anemia", "breastfeeding", "dhs", "eicv", "survey",
		},
		ForeignTerms: []string{
			"uganda", "kenya", "tanzania", "burundi", "congo",
			"usa", "america", "china", "india", "europe",
		},
		GeneralTopics: []string{
			"weather", "sports", "entertainment", "politics",
		},
	}
}

// IsEmpty reports whether no rule lists are configured.
func (r ScopeRules) IsEmpty() bool {
	return len(r.DomainTerms) == 0 && len(r.ForeignTerms) == 0 && len(r.GeneralTopics) == 0
}
