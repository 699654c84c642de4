package scoring

import (
	"fmt"
	"sort"

	"maturity_backend/internals/helpers/apperror"
)

// Range maps [Min, Max] to a maturity level. On a shared edge between two
// ranges the score belongs to the lower one (Max inclusive, next Min exclusive).
type Range struct {
	Min            float64
	Max            float64
	Label          string
	Description    string
	Recommendation string
}

type Level struct {
	Label          string `json:"niveau"`
	Description    string `json:"description,omitempty"`
	Recommendation string `json:"recommandations,omitempty"`
	// Generic is true when no grid matched and the 5-tier fallback was used.
	Generic bool `json:"generique"`
}

var genericLevels = []struct {
	min float64
	lvl Level
}{
	{4.5, Level{
		Label:          "Optimisé",
		Description:    "Les pratiques numériques sont pilotées, mesurées et améliorées en continu.",
		Recommendation: "Capitaliser sur les acquis et diffuser les bonnes pratiques dans toute l'organisation.",
	}},
	{3.5, Level{
		Label:          "Maîtrisé",
		Description:    "Les processus sont standardisés et suivis par des indicateurs.",
		Recommendation: "Automatiser le pilotage et viser l'amélioration continue.",
	}},
	{2.5, Level{
		Label:          "Défini",
		Description:    "Les pratiques sont documentées mais inégalement appliquées.",
		Recommendation: "Généraliser les processus définis et mesurer leur adoption.",
	}},
	{1.5, Level{
		Label:          "En développement",
		Description:    "Des initiatives existent mais restent isolées.",
		Recommendation: "Formaliser une feuille de route et désigner des responsables.",
	}},
	{0, Level{
		Label:          "Initial",
		Description:    "Les pratiques numériques sont ponctuelles et non structurées.",
		Recommendation: "Établir un diagnostic partagé et lancer des actions prioritaires.",
	}},
}

// GenericLevel is the absolute-threshold classification used when no grid applies.
func GenericLevel(score float64) Level {
	for _, g := range genericLevels {
		if score >= g.min {
			lvl := g.lvl
			lvl.Generic = true
			return lvl
		}
	}
	lvl := genericLevels[len(genericLevels)-1].lvl
	lvl.Generic = true
	return lvl
}

// LevelFor returns the first range (by Min descending) containing score,
// or the generic level when the grid is empty or has no match.
func LevelFor(score float64, ranges []Range) Level {
	sorted := append([]Range(nil), ranges...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Min > sorted[j].Min })

	for _, r := range sorted {
		if score < r.Min || score > r.Max {
			continue
		}
		if score == r.Min && sharesLowerEdge(r, sorted) {
			continue
		}
		return Level{Label: r.Label, Description: r.Description, Recommendation: r.Recommendation}
	}
	return GenericLevel(score)
}

func sharesLowerEdge(r Range, all []Range) bool {
	for _, o := range all {
		if o != r && o.Max == r.Min && o.Min < r.Min {
			return true
		}
	}
	return false
}

// ValidateRanges rejects grids that LevelFor could not resolve unambiguously:
// inverted or out-of-scale bounds, overlaps and gaps between consecutive ranges.
// An empty grid is valid (generic fallback).
func ValidateRanges(ranges []Range) error {
	fields := map[string][]string{}
	add := func(i int, msg string) {
		key := fmt.Sprintf("niveaux[%d]", i)
		fields[key] = append(fields[key], msg)
	}

	for i, r := range ranges {
		if r.Label == "" {
			add(i, "niveau is required")
		}
		if r.Min > r.Max {
			add(i, "score_min must be <= score_max")
		}
		if r.Min < 0 || r.Max > ScaleMax {
			add(i, fmt.Sprintf("bounds must stay within [0, %g]", ScaleMax))
		}
	}
	if len(fields) > 0 {
		return apperror.Validation("invalid maturity grid", fields)
	}

	idx := make([]int, len(ranges))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return ranges[idx[a]].Min < ranges[idx[b]].Min })

	for k := 1; k < len(idx); k++ {
		prev, cur := ranges[idx[k-1]], ranges[idx[k]]
		switch {
		case cur.Min < prev.Max, cur.Min == prev.Min:
			add(idx[k], fmt.Sprintf("overlaps range [%g, %g]", prev.Min, prev.Max))
		case cur.Min > prev.Max:
			add(idx[k], fmt.Sprintf("leaves a gap after %g", prev.Max))
		}
	}
	if len(fields) > 0 {
		return apperror.Validation("invalid maturity grid", fields)
	}
	return nil
}
