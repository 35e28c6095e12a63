package analysis

import (
	"fmt"

	"github.com/quillvault/quill/internal/journal"
)

// mapEmotion renders a classifier result as a user-facing insight. The tiers
// at 0.9 and 0.7 separate intense, clear, and mild readings of each label.
func mapEmotion(c Classification) journal.EmotionInsight {
	confidence := c.Score
	percent := int(confidence*100 + 0.5)

	if c.Label == "NEGATIVE" {
		switch {
		case confidence > 0.9:
			return journal.EmotionInsight{
				Emoji:      "😰",
				Tone:       "anxious or distressed",
				Text:       fmt.Sprintf("Your writing suggests intense anxious or distressed energy with %d%% confidence.", percent),
				Confidence: confidence,
				RawLabel:   c.Label,
			}
		case confidence > 0.7:
			return journal.EmotionInsight{
				Emoji:      "😔",
				Tone:       "frustrated or disappointed",
				Text:       fmt.Sprintf("There's a clear thread of frustration or disappointment (%d%% confidence).", percent),
				Confidence: confidence,
				RawLabel:   c.Label,
			}
		default:
			return journal.EmotionInsight{
				Emoji:      "😐",
				Tone:       "slightly negative",
				Text:       fmt.Sprintf("The tone leans mildly negative, suggesting lingering tension (%d%% confidence).", percent),
				Confidence: confidence,
				RawLabel:   c.Label,
			}
		}
	}

	switch {
	case confidence > 0.9:
		return journal.EmotionInsight{
			Emoji:      "😊",
			Tone:       "joyful or excited",
			Text:       fmt.Sprintf("This entry radiates joy or excitement with %d%% confidence.", percent),
			Confidence: confidence,
			RawLabel:   c.Label,
		}
	case confidence > 0.7:
		return journal.EmotionInsight{
			Emoji:      "🙂",
			Tone:       "hopeful or encouraged",
			Text:       fmt.Sprintf("There's a hopeful, encouraged tone (%d%% confidence).", percent),
			Confidence: confidence,
			RawLabel:   c.Label,
		}
	default:
		return journal.EmotionInsight{
			Emoji:      "😌",
			Tone:       "calm or neutral-positive",
			Text:       fmt.Sprintf("The tone feels calm with subtle optimism (%d%% confidence).", percent),
			Confidence: confidence,
			RawLabel:   c.Label,
		}
	}
}
