// Package classifier routes a question to a domain with a keyword heuristic.
// Classification is a total function: it never fails and never calls a model.
package classifier

import (
	"fmt"
	"sort"
	"strings"

	"help-desk/domain"
	"help-desk/moderation"
	"help-desk/specialist"

	"github.com/abadojack/whatlanggo"
	"github.com/samber/lo"
)

const (
	offTopicConfidence = 0.9
	workConfidence     = 0.8
	defaultWorkConf    = 0.5

	baseConfidence   = 0.6
	gapWeight        = 0.1
	maxConfidence    = 0.95
	generalFallback  = 0.3
	overrideBelow    = 0.5
	appConfidence    = 0.7
	roleConfidence   = 0.6
	multiWordBonus   = 0.5
	keywordWeight    = 1.0
	englishISO6391   = "en"
	minLanguageRunes = 20
)

// appDomains maps the active application hint to the domain it serves.
var appDomains = map[string]domain.Domain{
	"attendance":          domain.DomainOperations,
	"admissions":          domain.DomainOperations,
	"compliance-tracker":  domain.DomainEstates,
	"estates-hub":         domain.DomainEstates,
	"hr-hub":              domain.DomainHR,
	"send-planner":        domain.DomainSEND,
	"gdpr-toolkit":        domain.DomainData,
	"safeguarding-log":    domain.DomainSafeguarding,
	"budget-planner":      domain.DomainFinance,
	"governance-portal":   domain.DomainGovernance,
	"trust-dashboard":     domain.DomainStrategy,
	"improvement-planner": domain.DomainStrategy,
}

// roleDomains is consulted only when neither keywords nor the app hint decided.
var roleDomains = map[domain.Role]domain.Domain{
	domain.RoleSENCO:           domain.DomainSEND,
	domain.RoleDSL:             domain.DomainSafeguarding,
	domain.RoleBusinessManager: domain.DomainFinance,
	domain.RoleSiteManager:     domain.DomainEstates,
	domain.RoleTrustLeader:     domain.DomainStrategy,
}

type domainMatcher struct {
	domain  domain.Domain
	matcher *moderation.PhraseMatcher
}

type Classifier struct {
	registry *specialist.Registry
	chat     *moderation.PhraseMatcher
	work     *moderation.PhraseMatcher
	decision *moderation.PhraseMatcher
	domains  []domainMatcher
}

// New builds one matcher per phrase set and one per non-general domain of the registry.
func New(registry *specialist.Registry, sets PhraseSets) (*Classifier, error) {
	c := &Classifier{registry: registry}
	var err error
	if c.chat, err = moderation.NewPhraseMatcher(sets[chatSet]); err != nil {
		return nil, err
	}
	if c.work, err = moderation.NewPhraseMatcher(sets[workSet]); err != nil {
		return nil, err
	}
	if c.decision, err = moderation.NewPhraseMatcher(sets[decisionSet]); err != nil {
		return nil, err
	}
	for _, def := range registry.Definitions() {
		if def.Domain == domain.DomainGeneral {
			continue
		}
		m, err := moderation.NewPhraseMatcher(def.Keywords)
		if err != nil {
			return nil, fmt.Errorf("keywords of %s: %w", def.ID, err)
		}
		c.domains = append(c.domains, domainMatcher{domain: def.Domain, matcher: m})
	}
	return c, nil
}

// Default uses the embedded phrase sets. It panics when they are broken.
func Default(registry *specialist.Registry) *Classifier {
	sets, err := DefaultPhraseSets()
	if err != nil {
		panic(err)
	}
	c, err := New(registry, sets)
	if err != nil {
		panic(err)
	}
	return c
}

type domainScore struct {
	domain  domain.Domain
	score   float64
	matches []string
}

// Classify derives the intent of q. The app hint comes from q.Context, the role from the session.
func (c *Classifier) Classify(q domain.Question, role domain.Role) domain.IntentClassification {
	text := q.Text
	language := detectLanguage(text)

	scores := c.score(text)
	hasDomainHit := len(scores) > 0 && scores[0].score > 0
	chatHits := c.chat.Find(text)
	workHits := c.work.Find(text)

	if len(chatHits) > 0 && len(workHits) == 0 && !hasDomainHit {
		return domain.IntentClassification{
			Domain:        domain.DomainGeneral,
			SpecialistID:  c.registry.ForDomain(domain.DomainGeneral).ID,
			Confidence:    offTopicConfidence,
			Reasoning:     fmt.Sprintf("small talk (%s), no work signal", strings.Join(chatHits, ", ")),
			IsWorkRelated: false,
			Language:      language,
		}
	}

	var reasons []string
	switch {
	case len(workHits) > 0 || hasDomainHit:
		reasons = append(reasons, fmt.Sprintf("work related (%.1f)", workConfidence))
	default:
		reasons = append(reasons, fmt.Sprintf("assumed work related (%.1f)", defaultWorkConf))
	}

	decisionHits := c.decision.Find(text)
	if len(decisionHits) > 0 {
		reasons = append(reasons, "decision phrasing: "+strings.Join(decisionHits, ", "))
	}

	winner := domain.DomainGeneral
	confidence := generalFallback
	if hasDomainHit {
		second := 0.0
		if len(scores) > 1 {
			second = scores[1].score
		}
		winner = scores[0].domain
		confidence = min(maxConfidence, baseConfidence+gapWeight*(scores[0].score-second))
		reasons = append(reasons, fmt.Sprintf("%s keywords: %s (score %.1f, runner-up %.1f)",
			winner, strings.Join(scores[0].matches, ", "), scores[0].score, second))
	} else {
		reasons = append(reasons, "no domain keyword")
	}

	if confidence < overrideBelow {
		if d, ok := appDomains[strings.ToLower(strings.TrimSpace(q.Context.App))]; ok {
			winner, confidence = d, appConfidence
			reasons = append(reasons, fmt.Sprintf("app %q maps to %s", q.Context.App, d))
		} else if d, ok := roleDomains[role]; ok {
			winner, confidence = d, roleConfidence
			reasons = append(reasons, fmt.Sprintf("role %s leans to %s", role, d))
		}
	}

	return domain.IntentClassification{
		Domain:                   winner,
		SpecialistID:             c.registry.ForDomain(winner).ID,
		Confidence:               confidence,
		Reasoning:                strings.Join(reasons, "; "),
		RequiresMultiPerspective: len(decisionHits) > 0,
		IsWorkRelated:            true,
		Language:                 language,
	}
}

// score ranks matched domains by score, highest first. Ties keep routing order.
func (c *Classifier) score(text string) []domainScore {
	scores := lo.FilterMap(c.domains, func(dm domainMatcher, _ int) (domainScore, bool) {
		hits := dm.matcher.Find(text)
		if len(hits) == 0 {
			return domainScore{}, false
		}
		total := lo.SumBy(hits, func(h string) float64 {
			if strings.Contains(h, " ") {
				return keywordWeight + multiWordBonus
			}
			return keywordWeight
		})
		return domainScore{domain: dm.domain, score: total, matches: hits}, true
	})
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	return scores
}

// detectLanguage returns the ISO 639-1 code when detection is reliable, otherwise "".
func detectLanguage(text string) string {
	if len([]rune(strings.TrimSpace(text))) < minLanguageRunes {
		return ""
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}

// NeedsTranslation reports whether the answer should be written in a language other than English.
func NeedsTranslation(c domain.IntentClassification) bool {
	return c.Language != "" && c.Language != englishISO6391
}
