// Package evaluate derives a human-facing quality score and templated
// comment from a compression (or generation) outcome. It is presentation
// sugar: scores feed the UI, never the compression contract.
package evaluate

import (
	"math"
	"time"
)

// Evaluation is the derived, stateless display record.
type Evaluation struct {
	Score   float64 `json:"score"`
	Emotion string  `json:"emotion"`
	Comment string  `json:"comment"`
	Emoji   string  `json:"emoji"`
}

// Tier buckets a score for template selection.
type Tier string

const (
	TierExcellent Tier = "excellent"
	TierGreat     Tier = "great"
	TierGood      Tier = "good"
	TierAverage   Tier = "average"
)

// TierFor maps a score onto its template bucket.
func TierFor(score float64) Tier {
	switch {
	case score >= 8.5:
		return TierExcellent
	case score >= 7:
		return TierGreat
	case score >= 5.5:
		return TierGood
	default:
		return TierAverage
	}
}

// Compression scores a compression result. The score is additive from a base
// of 5: bonuses for higher ratio, for large inputs compressed well and for
// fast processing, penalties for slow processing; clamped to [1,10] with one
// decimal. The comment/emoji pair is a pseudo-random pick within the tier.
func Compression(ratio float64, originalSize, compressedSize int64, elapsed time.Duration, version, locale string) Evaluation {
	score := 5.0

	switch {
	case ratio >= 70:
		score += 2.5
	case ratio >= 50:
		score += 2.0
	case ratio >= 30:
		score += 1.5
	case ratio >= 10:
		score += 1.0
	case ratio > 0:
		score += 0.5
	}

	switch {
	case originalSize > 5<<20 && ratio >= 30:
		score += 1.0
	case originalSize > 2<<20 && ratio >= 20:
		score += 0.5
	}

	switch {
	case elapsed < time.Second:
		score += 1.0
	case elapsed < 3*time.Second:
		score += 0.5
	case elapsed > 10*time.Second:
		score -= 1.0
	case elapsed > 5*time.Second:
		score -= 0.5
	}

	if version == "ai" {
		score += 0.5
	}

	return build(clampScore(score), locale)
}

// Generation scores an image generation outcome from a base of 6. The
// generation path itself is out of scope here; only its display scoring
// lives alongside the compression heuristic.
func Generation(promptLength int, elapsed time.Duration, pixels int64, locale string) Evaluation {
	score := 6.0

	switch {
	case promptLength >= 200:
		score += 1.0
	case promptLength >= 80:
		score += 0.5
	}

	switch {
	case pixels >= 4<<20: // ~2048x2048 and up
		score += 1.0
	case pixels >= 1<<20:
		score += 0.5
	}

	switch {
	case elapsed < 5*time.Second:
		score += 1.0
	case elapsed < 15*time.Second:
		score += 0.5
	case elapsed > 60*time.Second:
		score -= 1.0
	case elapsed > 30*time.Second:
		score -= 0.5
	}

	return build(clampScore(score), locale)
}

func build(score float64, locale string) Evaluation {
	tier := TierFor(score)
	emotion, comment, emoji := pickTemplate(tier, locale)
	return Evaluation{
		Score:   score,
		Emotion: emotion,
		Comment: comment,
		Emoji:   emoji,
	}
}

// clampScore bounds the score to [1,10] and rounds to one decimal.
func clampScore(score float64) float64 {
	if score < 1 {
		score = 1
	}
	if score > 10 {
		score = 10
	}
	return math.Round(score*10) / 10
}
