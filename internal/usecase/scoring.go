package usecase

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/internx/internx/internal/domain"
	"github.com/internx/internx/pkg/textx"
)

// Policy holds the recommendation weights. Skills must weigh at least as much
// as interests and location combined, so a full skill match always outranks a
// listing that only matches on interest and location. Partial overlap is
// proportional: with the default weights, half of the required skills (0.30)
// scores below an interest and location match with no skills (0.40).
type Policy struct {
	SkillWeight        float64
	InterestWeight     float64
	LocationWeight     float64
	ReadinessInfluence float64
	TopN               int
}

// DefaultPolicy mirrors the configuration defaults.
var DefaultPolicy = Policy{SkillWeight: 0.6, InterestWeight: 0.25, LocationWeight: 0.15, ReadinessInfluence: 0.25, TopN: 10}

// profile is the user side of the match.
type profile struct {
	skills    map[string]struct{}
	interests []string
	location  string
	readiness *int
}

func newProfile(p domain.Preferences, a *domain.ResumeAnalysis) profile {
	pr := profile{skills: map[string]struct{}{}, interests: textx.NormalizeTerms(p.Interests), location: strings.TrimSpace(p.Location)}
	for _, s := range p.Skills {
		pr.skills[skillKey(s)] = struct{}{}
	}
	if a != nil {
		for _, s := range a.SkillsExtracted {
			pr.skills[skillKey(s)] = struct{}{}
		}
		score := a.MarketReadinessScore
		pr.readiness = &score
	}
	delete(pr.skills, "")
	if pr.location == "" {
		pr.location = domain.DefaultLocation
	}
	return pr
}

// skillKey folds a skill so "Node.js", "nodejs" and "NodeJS" compare equal.
func skillKey(s string) string {
	var b strings.Builder
	for _, r := range textx.Fold(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '+' || r == '#' || r > 127 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isRemote(loc string) bool {
	return containsPhrase(tokenize(loc), []string{"remote"})
}

func locationMatches(user, listing string) bool {
	if isRemote(listing) {
		return true
	}
	u, l := tokenize(user), tokenize(listing)
	return containsPhrase(l, u) || containsPhrase(u, l)
}

func interestMatches(interests []string, sector, title string) (string, bool) {
	sectorKey := textx.Fold(sector)
	titleTokens := tokenize(title)
	for _, in := range interests {
		if textx.Fold(in) == sectorKey || containsPhrase(titleTokens, tokenize(in)) {
			return in, true
		}
	}
	return "", false
}

// score evaluates one listing. It is a pure function of its inputs.
func score(pol Policy, pr profile, in domain.Internship) domain.Recommendation {
	required := textx.NormalizeTerms(in.SkillsRequired)
	matched := []string{}
	missing := []string{}
	for _, s := range required {
		if _, ok := pr.skills[skillKey(s)]; ok {
			matched = append(matched, s)
		} else {
			missing = append(missing, s)
		}
	}
	ratio := 0.0
	if len(required) > 0 {
		ratio = float64(len(matched)) / float64(len(required))
	}

	sector := InferSector(in.Sector, in.Title, in.Company, in.SkillsRequired)
	interest, interestOK := interestMatches(pr.interests, sector, in.Title)
	locationOK := locationMatches(pr.location, in.Location)

	confidence := 1 - pol.ReadinessInfluence
	if pr.readiness != nil {
		confidence += pol.ReadinessInfluence * float64(*pr.readiness) / 100
	}
	raw := pol.SkillWeight*ratio + pol.InterestWeight*b2f(interestOK) + pol.LocationWeight*b2f(locationOK)
	suitability := math.Round(100*raw*confidence*100) / 100

	return domain.Recommendation{
		Internship:       in,
		SuitabilityScore: suitability,
		Rationale:        rationale(matched, required, interest, interestOK, sector, in.Location, locationOK, pr.readiness),
		MatchedSkills:    matched,
		MissingSkills:    missing,
		Sector:           sector,
		Signals: domain.Signals{
			SkillOverlap:  math.Round(ratio*1000) / 1000,
			InterestMatch: interestOK,
			LocationMatch: locationOK,
			Confidence:    math.Round(confidence*1000) / 1000,
		},
	}
}

func rationale(matched, required []string, interest string, interestOK bool, sector, location string, locationOK bool, readiness *int) string {
	var parts []string
	switch {
	case len(required) == 0:
		parts = append(parts, "No specific skills listed")
	case len(matched) == 0:
		parts = append(parts, fmt.Sprintf("None of the %d required skills matched", len(required)))
	default:
		parts = append(parts, fmt.Sprintf("Matched %d of %d required skills (%s)", len(matched), len(required), strings.Join(matched, ", ")))
	}
	if interestOK {
		parts = append(parts, fmt.Sprintf("aligns with your interest in %s", interest))
	} else {
		parts = append(parts, fmt.Sprintf("sector %s is outside your stated interests", sector))
	}
	if locationOK {
		parts = append(parts, fmt.Sprintf("location %s fits your preference", location))
	} else {
		parts = append(parts, fmt.Sprintf("location %s differs from your preference", location))
	}
	if readiness != nil {
		parts = append(parts, fmt.Sprintf("market readiness %d/100", *readiness))
	} else {
		parts = append(parts, "no resume analysis on file, ranking uses preferences only")
	}
	return strings.Join(parts, "; ") + "."
}

// rank orders recommendations by suitability, then fewer applicants, then the
// newest posting, then id for determinism.
func rank(recs []domain.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.SuitabilityScore != b.SuitabilityScore {
			return a.SuitabilityScore > b.SuitabilityScore
		}
		if a.Internship.ApplicantsCount != b.Internship.ApplicantsCount {
			return a.Internship.ApplicantsCount < b.Internship.ApplicantsCount
		}
		if !a.Internship.PostedDate.Equal(b.Internship.PostedDate) {
			return a.Internship.PostedDate.After(b.Internship.PostedDate)
		}
		return a.Internship.ID < b.Internship.ID
	})
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
