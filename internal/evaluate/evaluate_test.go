package evaluate

import (
	"testing"
	"time"
)

func TestTierFor(t *testing.T) {
	cases := []struct {
		score float64
		want  Tier
	}{
		{10, TierExcellent},
		{8.5, TierExcellent},
		{8.4, TierGreat},
		{7, TierGreat},
		{6.9, TierGood},
		{5.5, TierGood},
		{5.4, TierAverage},
		{1, TierAverage},
	}
	for _, tc := range cases {
		if got := TierFor(tc.score); got != tc.want {
			t.Fatalf("TierFor(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestCompressionScoring(t *testing.T) {
	// Base 5 + ratio 75 (+2.5) + >5MiB well compressed (+1) + fast (+1).
	eval := Compression(75, 10<<20, 2<<20, 500*time.Millisecond, "free", "en")
	if eval.Score != 9.5 {
		t.Fatalf("score = %v, want 9.5", eval.Score)
	}
	if eval.Emotion != "thrilled" {
		t.Fatalf("emotion = %q, want the excellent tier", eval.Emotion)
	}
	if eval.Comment == "" || eval.Emoji == "" {
		t.Fatalf("comment/emoji must be populated: %+v", eval)
	}
}

func TestCompressionScoreClampsAtTen(t *testing.T) {
	eval := Compression(90, 20<<20, 1<<20, 200*time.Millisecond, "ai", "en")
	if eval.Score != 10 {
		t.Fatalf("score = %v, want clamp at 10", eval.Score)
	}
}

func TestCompressionAIBonus(t *testing.T) {
	free := Compression(40, 1<<20, 600<<10, 2*time.Second, "free", "en")
	ai := Compression(40, 1<<20, 600<<10, 2*time.Second, "ai", "en")
	if ai.Score != free.Score+0.5 {
		t.Fatalf("ai score = %v, free = %v, want +0.5", ai.Score, free.Score)
	}
}

func TestCompressionSlowPenalty(t *testing.T) {
	// Base 5 + no ratio bonus - slow (-1) = 4.
	eval := Compression(0, 1<<20, 1<<20, 12*time.Second, "free", "en")
	if eval.Score != 4 {
		t.Fatalf("score = %v, want 4", eval.Score)
	}
	if eval.Emotion != "neutral" {
		t.Fatalf("emotion = %q, want the average tier", eval.Emotion)
	}
}

func TestCompressionChineseLocale(t *testing.T) {
	eval := Compression(75, 10<<20, 2<<20, 500*time.Millisecond, "free", "zh")
	if eval.Emotion != "兴奋" {
		t.Fatalf("emotion = %q, want the Chinese excellent tier", eval.Emotion)
	}
}

func TestCompressionUnknownLocaleFallsBackToEnglish(t *testing.T) {
	eval := Compression(75, 10<<20, 2<<20, 500*time.Millisecond, "free", "fr")
	if eval.Emotion != "thrilled" {
		t.Fatalf("emotion = %q, want the English fallback", eval.Emotion)
	}
}

func TestGenerationScoring(t *testing.T) {
	// Base 6 + long prompt (+1) + 2048x2048 (+1) + fast (+1) = 9.
	eval := Generation(250, 3*time.Second, 2048*2048, "en")
	if eval.Score != 9 {
		t.Fatalf("score = %v, want 9", eval.Score)
	}

	// Base 6 - very slow (-1) = 5.
	eval = Generation(10, 90*time.Second, 100, "en")
	if eval.Score != 5 {
		t.Fatalf("score = %v, want 5", eval.Score)
	}
}

func TestScoreNeverLeavesRange(t *testing.T) {
	for _, eval := range []Evaluation{
		Compression(-500, 0, 0, time.Hour, "free", "en"),
		Compression(1000, 100<<20, 1, 0, "ai", "zh"),
	} {
		if eval.Score < 1 || eval.Score > 10 {
			t.Fatalf("score %v escaped [1,10]", eval.Score)
		}
	}
}
