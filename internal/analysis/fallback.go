package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quillvault/quill/internal/journal"
)

// The deterministic analyzer: keyword lexicons for sentiment and five theme
// buckets, per language, with locale-specific reflection banks. It is the
// route for CJK text and the safety net when the neural runtime fails.

type themeID string

const (
	themeRelationships themeID = "relationships"
	themeWork          themeID = "work"
	themeHealth        themeID = "health"
	themePersonal      themeID = "personal"
	themeEmotions      themeID = "emotions"
)

var themeOrder = []themeID{themeRelationships, themeWork, themeHealth, themePersonal, themeEmotions}

type lexicon struct {
	positive []string
	negative []string
	themes   map[themeID][]string
}

var lexicons = map[string]lexicon{
	"en": {
		positive: []string{
			"happy", "joy", "excited", "grateful", "thankful", "love",
			"wonderful", "amazing", "great", "good", "better", "best",
			"excellent", "fantastic", "proud", "accomplished", "success",
			"achieve", "hope", "optimistic", "blessed", "peaceful", "calm",
			"relaxed", "content", "satisfied",
		},
		negative: []string{
			"sad", "angry", "frustrated", "anxious", "worried", "stress",
			"depressed", "upset", "hurt", "pain", "afraid", "fear", "scared",
			"nervous", "overwhelmed", "tired", "exhausted", "lonely", "alone",
			"lost", "confused", "disappointed", "regret", "guilt", "shame",
			"hopeless", "helpless", "weak",
		},
		themes: map[themeID][]string{
			themeRelationships: {"friend", "family", "partner", "relationship", "love", "spouse", "parent", "child"},
			themeWork:          {"work", "job", "career", "boss", "colleague", "project", "deadline", "office"},
			themeHealth:        {"health", "exercise", "sleep", "diet", "body", "pain", "doctor", "medication"},
			themePersonal:      {"self", "myself", "identity", "growth", "change", "future", "goal", "dream"},
			themeEmotions:      {"feel", "feeling", "emotion", "mood", "heart", "mind", "think", "thought"},
		},
	},
	"zh": {
		positive: []string{
			"开心", "快乐", "兴奋", "感恩", "感谢", "感激", "喜欢", "爱",
			"美好", "太好了", "不错", "顺利", "成功", "自豪", "满足", "平静",
			"放松", "安心", "希望", "乐观",
		},
		negative: []string{
			"难过", "伤心", "生气", "愤怒", "烦躁", "焦虑", "担心", "压力",
			"抑郁", "沮丧", "不安", "痛苦", "害怕", "恐惧", "紧张", "崩溃",
			"疲惫", "累", "孤独", "迷茫", "困惑", "失望", "后悔", "内疚",
			"羞愧", "绝望", "无助",
		},
		themes: map[themeID][]string{
			themeRelationships: {"朋友", "家人", "伴侣", "关系", "爱人", "父母", "孩子"},
			themeWork:          {"工作", "上班", "职业", "老板", "同事", "项目", "截止", "绩效", "加班"},
			themeHealth:        {"健康", "运动", "睡眠", "饮食", "身体", "疼", "医生", "药", "生病"},
			themePersonal:      {"自己", "自我", "成长", "变化", "未来", "目标", "梦想"},
			themeEmotions:      {"感觉", "感受", "情绪", "心情", "想", "思考", "念头", "担心"},
		},
	},
}

var themeNames = map[string]map[themeID]string{
	"en": {
		themeRelationships: "connections with others",
		themeWork:          "professional life and career",
		themeHealth:        "health and wellbeing",
		themePersonal:      "personal growth and identity",
		themeEmotions:      "emotions and inner experience",
	},
	"zh": {
		themeRelationships: "人际关系与连接",
		themeWork:          "工作与职业",
		themeHealth:        "健康与身心状态",
		themePersonal:      "自我成长与身份认同",
		themeEmotions:      "情绪与内在体验",
	},
}

var defaultTheme = map[string]string{
	"en": "your current thoughts and experiences",
	"zh": "你当下的想法与经历",
}

type reflectionOption struct {
	question  string
	technique string
}

var reflections = map[string]map[string][]reflectionOption{
	"en": {
		"positive": {
			{"What made today feel special, and how can you create more moments like this?", "Positive psychology"},
			{"Who contributed to these positive feelings, and how can you express gratitude to them?", "Gratitude practice"},
			{"What strengths did you use today that led to this positive outcome?", "Strength spotting"},
		},
		"negative": {
			{"What evidence do I have that supports this feeling? What evidence contradicts it?", "CBT: evidence testing"},
			{"If a friend felt this way, what would I tell them?", "Compassionate perspective"},
			{"What is one small step I can take today to feel slightly better?", "Behavioral activation"},
		},
		"neutral": {
			{"What pattern do I notice in my thoughts today?", "Mindfulness"},
			{"What am I avoiding thinking about, and why?", "Curiosity & inquiry"},
			{"What would I like to be different tomorrow?", "Solution focus"},
		},
	},
	"zh": {
		"positive": {
			{"今天让你感觉不错的关键是什么？下次你能如何复现其中的一小部分？", "积极心理学"},
			{"是谁/什么帮助了你产生这些积极感受？你可以如何表达感谢？", "感恩练习"},
			{"你今天用到了哪些优势或能力，让事情朝好的方向发展？", "优势觉察"},
		},
		"negative": {
			{"支持这个感受的证据是什么？有没有任何证据与之相反？", "CBT：证据检验"},
			{"如果你的朋友也有同样的感受，你会怎么对他说？", "自我同情"},
			{"今天你能做的一件最小行动是什么，让自己哪怕好一点点？", "行为激活"},
		},
		"neutral": {
			{"今天你的想法里出现了什么重复模式？", "正念觉察"},
			{"你在回避哪个念头？回避它对你有什么好处或代价？", "好奇探索"},
			{"明天你希望有什么不一样？你能为此做哪一个小调整？", "解决导向"},
		},
	},
}

func normalizeLocale(locale string) string {
	if locale == "zh" {
		return "zh"
	}
	return "en"
}

func countMatches(text string, keywords []string, fold bool) int {
	haystack := text
	if fold {
		haystack = strings.ToLower(text)
	}
	matches := 0
	for _, keyword := range keywords {
		needle := keyword
		if fold {
			needle = strings.ToLower(keyword)
		}
		if needle != "" && strings.Contains(haystack, needle) {
			matches++
		}
	}
	return matches
}

// fallbackEmotion scores sentiment by lexicon hits. Confidence is the
// dominant count over the total, or 0.5 when nothing matches at all.
func fallbackEmotion(text, locale, language string) journal.EmotionInsight {
	fold := language == "en"
	lex := lexicons[language]
	positive := countMatches(text, lex.positive, fold)
	negative := countMatches(text, lex.negative, fold)
	total := positive + negative

	confidence := 0.5
	if total > 0 {
		confidence = float64(max(positive, negative)) / float64(total)
	}

	if total == 0 {
		if locale == "zh" {
			return journal.EmotionInsight{
				Emoji: "😐", Tone: "中性或混合",
				Text:       "这段文字的情绪倾向不明显，可能更接近中性或混合。",
				Confidence: confidence, RawLabel: "NEGATIVE",
			}
		}
		return journal.EmotionInsight{
			Emoji: "😐", Tone: "mixed or neutral",
			Text:       "The emotional tone isn't obvious here. It may be mixed or neutral.",
			Confidence: confidence, RawLabel: "NEGATIVE",
		}
	}

	if positive > negative {
		if confidence > 0.7 {
			if locale == "zh" {
				return journal.EmotionInsight{
					Emoji: "😊", Tone: "积极或有希望",
					Text:       fmt.Sprintf("你的文字整体更偏积极（基于 %d 个正向信号）。", positive),
					Confidence: confidence, RawLabel: "POSITIVE",
				}
			}
			return journal.EmotionInsight{
				Emoji: "😊", Tone: "hopeful or encouraged",
				Text:       fmt.Sprintf("Your writing suggests hopeful, encouraged energy (based on %d positive indicators).", positive),
				Confidence: confidence, RawLabel: "POSITIVE",
			}
		}
		if locale == "zh" {
			return journal.EmotionInsight{
				Emoji: "😌", Tone: "平静或略偏积极",
				Text:       fmt.Sprintf("整体语气偏平静、略带积极（基于 %d 个正向信号）。", positive),
				Confidence: confidence, RawLabel: "POSITIVE",
			}
		}
		return journal.EmotionInsight{
			Emoji: "😌", Tone: "calm or neutral-positive",
			Text:       fmt.Sprintf("The tone feels calm with subtle optimism (based on %d positive indicators).", positive),
			Confidence: confidence, RawLabel: "POSITIVE",
		}
	}

	if confidence > 0.7 {
		if locale == "zh" {
			return journal.EmotionInsight{
				Emoji: "😔", Tone: "焦虑或低落",
				Text:       fmt.Sprintf("你的文字透露出一些压力或低落（基于 %d 个负向信号）。", negative),
				Confidence: confidence, RawLabel: "NEGATIVE",
			}
		}
		return journal.EmotionInsight{
			Emoji: "😔", Tone: "frustrated or disappointed",
			Text:       fmt.Sprintf("There's a thread of frustration or disappointment (based on %d negative indicators).", negative),
			Confidence: confidence, RawLabel: "NEGATIVE",
		}
	}
	if locale == "zh" {
		return journal.EmotionInsight{
			Emoji: "😐", Tone: "略偏消极",
			Text:       fmt.Sprintf("整体语气略偏消极，可能带有一些紧绷感（基于 %d 个负向信号）。", negative),
			Confidence: confidence, RawLabel: "NEGATIVE",
		}
	}
	return journal.EmotionInsight{
		Emoji: "😐", Tone: "slightly negative",
		Text:       fmt.Sprintf("The tone leans mildly negative, suggesting some tension (based on %d negative indicators).", negative),
		Confidence: confidence, RawLabel: "NEGATIVE",
	}
}

// fallbackTheme picks the highest-scoring non-zero theme bucket, or the
// generic theme when nothing matches. Ties break in a fixed bucket order so
// the result is deterministic.
func fallbackTheme(text, locale, language string) (journal.ThemeInsight, themeID) {
	fold := language == "en"
	source := text
	if fold {
		source = strings.ToLower(text)
	}
	lex := lexicons[language]

	scores := make(map[themeID]int, len(themeOrder))
	for _, theme := range themeOrder {
		for _, keyword := range lex.themes[theme] {
			needle := keyword
			if fold {
				needle = strings.ToLower(keyword)
			}
			if needle != "" && strings.Contains(source, needle) {
				scores[theme]++
			}
		}
	}

	ordered := append([]themeID(nil), themeOrder...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return scores[ordered[i]] > scores[ordered[j]]
	})

	var topTheme themeID
	if scores[ordered[0]] > 0 {
		topTheme = ordered[0]
	}

	name := defaultTheme[locale]
	if topTheme != "" {
		name = themeNames[locale][topTheme]
	}

	insight := journal.ThemeInsight{
		Emoji:      "🔍",
		Title:      "What you're processing",
		Text:       fmt.Sprintf("You seem to be working through %s.", name),
		RawSummary: name,
	}
	if locale == "zh" {
		insight.Title = "你正在处理的主题"
		insight.Text = fmt.Sprintf("你似乎正在处理：%s。", name)
	}
	return insight, topTheme
}

// fallbackReflection selects a question from the locale bank keyed by a
// 3-way emotion bucket, with a contextual hint when a theme was detected.
func fallbackReflection(emotion journal.EmotionInsight, theme themeID, locale string, randInt func(n int) int) journal.ReflectionInsight {
	category := "neutral"
	if emotion.RawLabel == "POSITIVE" {
		category = "positive"
	} else if emotion.Confidence > 0.6 {
		category = "negative"
	}

	options := reflections[locale][category]
	selected := options[randInt(len(options))]

	hint := ""
	if theme != "" {
		name := themeNames[locale][theme]
		if locale == "zh" {
			hint = fmt.Sprintf(" 回答时可以想想「%s」。", name)
		} else {
			hint = fmt.Sprintf(" Keep %s in mind while you answer.", name)
		}
	}

	return journal.ReflectionInsight{
		Emoji:     "💭",
		Question:  strings.TrimSpace(selected.question + hint),
		Technique: selected.technique,
	}
}

// AnalyzeFallback runs the whole rule-based analyzer. The language selects
// the lexicons; the locale selects the output copy. It always returns a
// structurally complete bundle.
func AnalyzeFallback(text, locale, language string, randInt func(n int) int) journal.InsightBundle {
	locale = normalizeLocale(locale)
	if language != "zh" && language != "en" {
		language = "en"
		if IsMostlyCJK(text) {
			language = "zh"
		}
	}

	emotion := fallbackEmotion(text, locale, language)
	theme, themeID := fallbackTheme(text, locale, language)
	reflection := fallbackReflection(emotion, themeID, locale, randInt)

	return journal.InsightBundle{Emotion: emotion, Theme: theme, Reflection: reflection}
}
