// Package scoring holds the surface-feature confidence heuristic and the credit pressure threshold.
// The guardrail confidence check and the model selector both read from here.
package scoring

import (
	"regexp"
	"strings"

	"help-desk/domain"

	"github.com/samber/lo"
)

// LowCreditWatermark is the remaining-credit level below which the cheapest model is preferred.
const LowCreditWatermark = 50.0

const (
	sourceWeight      = 2
	recentYearWeight  = 1
	uncertaintyWeight = -2
	structureWeight   = 1
	shortTextWeight   = -1

	highThreshold   = 3
	mediumThreshold = 1

	// shortTextWords is the word count under which an answer is considered thin.
	shortTextWords = 30
)

var (
	sourcePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^\s*sources?:\s*\S.*$`),
		regexp.MustCompile(`(?i)\baccording to\b[^.\n]*`),
		regexp.MustCompile(`https?://[^\s)]+`),
		regexp.MustCompile(`\b(?:HSE ACoP L\d+|ACoP L\d+|HSG\d+|KCSIE|UK GDPR|SEND Code of Practice|Academy Trust Handbook|Governance Handbook|STPCD)\b`),
		regexp.MustCompile(`\b[A-Z][A-Za-z ()']+ (?:Act|Regulations|Order) \d{4}\b`),
		regexp.MustCompile(`\b(?:gov\.uk|hse\.gov\.uk|ico\.org\.uk|acas\.org\.uk)\b`),
	}
	recentYear  = regexp.MustCompile(`\b20[2-3]\d\b`)
	uncertainty = regexp.MustCompile(`(?i)\b(?:may have changed|not verified recently|i am not sure|i'm not sure|might be out of date|may be out of date|check with|cannot confirm|unclear)\b`)
	structure   = regexp.MustCompile(`(?m)^\s*(?:[-*•]\s|\d+[.)]\s|#+\s)`)
)

// Score sums the weighted surface features of text.
func Score(text string) int {
	score := 0
	if HasSource(text) {
		score += sourceWeight
	}
	if recentYear.MatchString(text) {
		score += recentYearWeight
	}
	if HasUncertainty(text) {
		score += uncertaintyWeight
	}
	if structure.MatchString(text) {
		score += structureWeight
	}
	if len(strings.Fields(text)) < shortTextWords {
		score += shortTextWeight
	}
	return score
}

// Level maps Score onto HIGH, MEDIUM or LOW.
func Level(text string) domain.ConfidenceLevel {
	switch s := Score(text); {
	case s >= highThreshold:
		return domain.ConfidenceHigh
	case s >= mediumThreshold:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

// HasSource reports whether text carries a recognizable citation.
func HasSource(text string) bool {
	return lo.SomeBy(sourcePatterns, func(p *regexp.Regexp) bool { return p.MatchString(text) })
}

func HasUncertainty(text string) bool {
	return uncertainty.MatchString(text)
}

// ExtractSources returns the distinct citations found in text, in pattern order.
func ExtractSources(text string) []string {
	var sources []string
	for _, p := range sourcePatterns {
		for _, m := range p.FindAllString(text, -1) {
			if s := strings.TrimSpace(m); s != "" {
				sources = append(sources, s)
			}
		}
	}
	if len(sources) == 0 {
		return nil
	}
	return lo.Uniq(sources)
}

// UnderCreditPressure reports whether remaining credits are below the low-water mark.
func UnderCreditPressure(remaining float64) bool {
	return remaining < LowCreditWatermark
}
