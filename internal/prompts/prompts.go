// Package prompts holds the static guided-prompt catalog: writing templates
// the journal prefills and history entries reference by id.
package prompts

import "strings"

// ID identifies a guided prompt template.
type ID string

const (
	DailyReflection  ID = "daily_reflection"
	CBTThoughtRecord ID = "cbt_thought_record"
	GratitudeGrowth  ID = "gratitude_growth"
)

// DefaultID is used whenever an entry carries no (or an unknown) prompt id.
const DefaultID = DailyReflection

// Template is one guided writing flow.
type Template struct {
	ID          ID
	Label       string
	Description string
	Questions   []string
}

var englishTemplates = []Template{
	{
		ID:          DailyReflection,
		Label:       "5-Minute Daily Reflection",
		Description: "Perfect for end-of-day processing and setting a gentle intention for tomorrow.",
		Questions: []string{
			"What happened today that triggered a strong emotion?",
			"What am I feeling right now, and why?",
			"What's one thing I can do tomorrow to feel better?",
		},
	},
	{
		ID:          CBTThoughtRecord,
		Label:       "CBT Thought Record",
		Description: "Guides you through identifying situations, thoughts, emotions, and reframes.",
		Questions: []string{
			"Describe the situation that bothered you.",
			"What automatic thoughts came up? What did you tell yourself?",
			"What emotions did you feel? (Rate intensity 0-10)",
			"Looking back, is there another way to see this situation?",
		},
	},
	{
		ID:          GratitudeGrowth,
		Label:       "Gratitude + Growth",
		Description: "Blend positive psychology and growth mindset reflection in one flow.",
		Questions: []string{
			"What's one thing I'm grateful for today?",
			"What's one challenge I faced, and what did I learn from it?",
			"How did I grow as a person today?",
		},
	},
}

var chineseTemplates = []Template{
	{
		ID:          DailyReflection,
		Label:       "5 分钟每日复盘",
		Description: "适合用来回顾一天、梳理情绪，并为明天定一个温柔的意图。",
		Questions: []string{
			"今天发生了什么，让我产生了强烈的情绪？",
			"此刻我在感受什么？为什么？",
			"明天我可以做一件什么小事，让自己感觉更好？",
		},
	},
	{
		ID:          CBTThoughtRecord,
		Label:       "CBT 思维记录",
		Description: "引导你识别情境、自动想法、情绪强度，以及更平衡的视角。",
		Questions: []string{
			"描述让我不舒服的情境（只写事实）。",
			"当时我的自动想法是什么？我对自己说了什么？",
			"我感受到哪些情绪？强度 0-10 分。",
			"回头看，有没有另一种更平衡的解释？",
		},
	},
	{
		ID:          GratitudeGrowth,
		Label:       "感恩 + 成长",
		Description: "把积极心理学与成长型思维融合在一次书写中。",
		Questions: []string{
			"今天我感恩的一件事是什么？为什么？",
			"今天我遇到的一个挑战是什么？我从中学到了什么？",
			"今天我在哪个方面变得更成熟/更强大了一点？",
		},
	},
}

// Templates returns the catalog for a locale ("en" or "zh"); unknown locales
// fall back to English.
func Templates(locale string) []Template {
	if locale == "zh" {
		return chineseTemplates
	}
	return englishTemplates
}

// Lookup returns the template for id in the given locale.
func Lookup(id ID, locale string) (Template, bool) {
	for _, tpl := range Templates(locale) {
		if tpl.ID == id {
			return tpl, true
		}
	}
	return Template{}, false
}

// Valid reports whether value names a known template.
func Valid(value string) bool {
	switch ID(value) {
	case DailyReflection, CBTThoughtRecord, GratitudeGrowth:
		return true
	}
	return false
}

// Normalize maps unknown ids to the default template.
func Normalize(value string) ID {
	if Valid(value) {
		return ID(value)
	}
	return DefaultID
}

// Prefill builds the scaffold text a template seeds a new entry with.
func Prefill(id ID, locale string) string {
	tpl, ok := Lookup(id, locale)
	if !ok {
		tpl = englishTemplates[0]
	}
	return strings.Join(tpl.Questions, "\n\n")
}
