package services

import (
	"strings"

	"github.com/custodia-labs/ubuzima/internal/core/domain"
)

// ScopeRule names the rule that decided a scope check.
type ScopeRule string

// Scope rules, evaluated in this order.
const (
	// ScopeRuleForeign rejects questions naming another country or region.
	ScopeRuleForeign ScopeRule = "foreign_term"

	// ScopeRuleGeneralTopic rejects off-domain general topics.
	ScopeRuleGeneralTopic ScopeRule = "general_topic"

	// ScopeRuleDefault accepts everything else.
	ScopeRuleDefault ScopeRule = "default_accept"
)

// ScopeDecision is the result of checking one question.
type ScopeDecision struct {
	OutOfScope bool
	Rule       ScopeRule

	// Term is the keyword that triggered a rejection, empty on accept.
	Term string
}

// ScopeFilter decides cheaply whether a question belongs to the NISR Rwanda domain.
// Checks are case-insensitive substring matches. It is safe for concurrent use.
type ScopeFilter struct {
	rules domain.ScopeRules
}

// NewScopeFilter creates a filter from keyword lists.
func NewScopeFilter(rules domain.ScopeRules) *ScopeFilter {
	return &ScopeFilter{
		rules: domain.ScopeRules{
			DomainTerms:   lowerAll(rules.DomainTerms),
			ForeignTerms:  lowerAll(rules.ForeignTerms),
			GeneralTopics: lowerAll(rules.GeneralTopics),
		},
	}
}

// Evaluate applies the rules in order and reports which one decided.
func (f *ScopeFilter) Evaluate(query string) ScopeDecision {
	q := strings.ToLower(query)

	if term, ok := firstMatch(q, f.rules.ForeignTerms); ok {
		return ScopeDecision{OutOfScope: true, Rule: ScopeRuleForeign, Term: term}
	}

	if _, related := firstMatch(q, f.rules.DomainTerms); !related {
		if term, ok := firstMatch(q, f.rules.GeneralTopics); ok {
			return ScopeDecision{OutOfScope: true, Rule: ScopeRuleGeneralTopic, Term: term}
		}
	}

	return ScopeDecision{Rule: ScopeRuleDefault}
}

// IsOutOfScope reports whether the question should be refused.
func (f *ScopeFilter) IsOutOfScope(query string) bool {
	return f.Evaluate(query).OutOfScope
}

// IsDomainRelated reports whether the question mentions any domain term.
func (f *ScopeFilter) IsDomainRelated(query string) bool {
	_, ok := firstMatch(strings.ToLower(query), f.rules.DomainTerms)
	return ok
}

func firstMatch(q string, terms []string) (string, bool) {
	for _, t := range terms {
		if t != "" && strings.Contains(q, t) {
			return t, true
		}
	}
	return "", false
}

func lowerAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		out = append(out, strings.ToLower(strings.TrimSpace(t)))
	}
	return out
}
