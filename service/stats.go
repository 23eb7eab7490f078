// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"sort"

	"github.com/danielhkuo/know-you/models"
)

type scaledQuestion struct {
	id       int
	text     string
	scaleMin int
	scaleMax int
}

// summarize computes the aggregates for one question's answers
func summarize(q scaledQuestion, values []int) models.QuestionSummary {
	sorted := make([]float64, len(values))
	for i, v := range values {
		sorted[i] = float64(v)
	}
	sort.Float64s(sorted)

	s := models.QuestionSummary{
		QuestionID: q.id,
		Text:       q.text,
		Count:      len(sorted),
		Mean:       mean(sorted),
		Median:     percentile(sorted, 0.5),
		P10:        percentile(sorted, 0.1),
		P90:        percentile(sorted, 0.9),
	}
	if len(sorted) > 0 {
		s.Min = int(sorted[0])
		s.Max = int(sorted[len(sorted)-1])
	}

	midpoint := float64(q.scaleMin+q.scaleMax) / 2
	s.LowShare = shareBelow(sorted, midpoint)

	return s
}

// percentile calculates the p-th percentile of sorted data
// p should be in range [0, 1]
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0.0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	// Linear interpolation between closest ranks
	rank := p * float64(len(sorted)-1)
	lower := int(rank)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := rank - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// shareBelow is the fraction of values strictly under threshold
func shareBelow(values []float64, threshold float64) float64 {
	if len(values) == 0 {
		return 0.0
	}

	n := 0
	for _, v := range values {
		if v < threshold {
			n++
		}
	}
	return float64(n) / float64(len(values))
}
