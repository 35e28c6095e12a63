package analysis

import (
	"strings"

	"github.com/quillvault/quill/internal/journal"
)

// The primary path's reflection bank, keyed by "<LABEL>_<category>". Several
// equally valid questions exist per key; selection is randomized on purpose
// so repeated analyses do not feel canned.
var questionBank = map[string][]reflectionOption{
	"NEGATIVE_work": {
		{"What would need to change at work for you to feel 10% better tomorrow?", "Solution-focused CBT"},
		{"If you could delegate one task right now, which one would give you the biggest relief?", "Behavioral activation"},
	},
	"NEGATIVE_relationships": {
		{"If a friend described this relationship moment to you, what advice would you offer them?", "Perspective shifting"},
		{"What boundary would protect your energy here?", "Boundary clarity"},
	},
	"NEGATIVE_self": {
		{"What evidence contradicts the harshest thought you wrote down?", "Cognitive restructuring"},
		{"How would compassionate you talk back to this thought?", "Self-compassion"},
	},
	"POSITIVE_achievement": {
		{"What did you do to make this positive outcome possible?", "Strength spotting"},
	},
	"POSITIVE_gratitude": {
		{"How can you recreate the conditions that led to this feeling?", "Positive psychology"},
	},
	"NEUTRAL": {
		{"If you read this entry a year from now, what would you want future-you to remember?", "Future self visualization"},
	},
}

var categoryKeywords = map[string][]string{
	"work":          {"deadline", "manager", "coworker", "client", "meeting", "email", "promotion"},
	"relationships": {"partner", "relationship", "friend", "family", "mom", "dad", "spouse"},
	"self":          {"confidence", "identity", "self-doubt", "imposter", "self", "worth"},
	"gratitude":     {"grateful", "thankful", "appreciate", "blessing"},
	"achievement":   {"launched", "won", "shipped", "delivered", "achieved"},
}

// Fixed lookup order so overlapping summaries resolve the same way every
// time.
var categoryOrder = []string{"work", "relationships", "self", "gratitude", "achievement"}

// generateReflection picks a question for the primary path, keyed by the
// emotion label and a topic category detected in the theme summary.
func generateReflection(emotion journal.EmotionInsight, rawSummary string, randInt func(n int) int) journal.ReflectionInsight {
	category := detectThemeCategory(rawSummary, emotion.RawLabel)

	bucket := questionBank[emotion.RawLabel+"_"+category]
	if len(bucket) == 0 {
		bucket = questionBank["NEUTRAL"]
	}
	choice := bucket[randInt(len(bucket))]

	return journal.ReflectionInsight{
		Emoji:     "💡",
		Question:  choice.question,
		Technique: choice.technique,
	}
}

func detectThemeCategory(summary, label string) string {
	lower := strings.ToLower(summary)
	for _, category := range categoryOrder {
		for _, keyword := range categoryKeywords[category] {
			if strings.Contains(lower, keyword) {
				return category
			}
		}
	}
	if label == "POSITIVE" {
		if strings.Contains(lower, "grateful") {
			return "gratitude"
		}
		return "achievement"
	}
	return "self"
}
