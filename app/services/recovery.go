package services

import (
	"strings"

	"github.com/heartscript/storefront/app/models"
)

const (
	// MinRecoveryAnswers is how many questions must be answered at registration.
	MinRecoveryAnswers = 3
	// MinRecoveryMatches is how many positional matches authorize a reset.
	MinRecoveryMatches = 3
)

func NormalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func NormalizeAnswers(answers [models.RecoverySlots]string) [models.RecoverySlots]string {
	var out [models.RecoverySlots]string
	for i, a := range answers {
		out[i] = NormalizeAnswer(a)
	}
	return out
}

// CountFilled counts answers that are non-empty after normalization.
func CountFilled(answers [models.RecoverySlots]string) int {
	n := 0
	for _, a := range answers {
		if NormalizeAnswer(a) != "" {
			n++
		}
	}
	return n
}

// CountMatches compares submitted answers with stored ones slot by slot. A
// slot counts only when both sides are non-empty and equal after
// normalization.
func CountMatches(submitted, stored [models.RecoverySlots]string) int {
	n := 0
	for i := range submitted {
		p, d := NormalizeAnswer(submitted[i]), NormalizeAnswer(stored[i])
		if p != "" && d != "" && p == d {
			n++
		}
	}
	return n
}
