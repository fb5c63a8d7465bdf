package services

import (
	"log"
	"strconv"
	"strings"
	"time"

	"project-ascend/models"
)

const (
	DefaultQuestTitle       = "AI Generated Quest"
	DefaultQuestDescription = "A new challenge awaits!"
	DefaultQuestType        = "fitness"
	defaultQuestXP          = "INT:20"
	defaultQuestDueDays     = 1
)

// DefaultQuestReward is used whenever the xp field cannot be parsed in full.
func DefaultQuestReward() models.XPReward {
	return models.XPReward{string(models.AttributeINT): 20}
}

// QuestDraft is a parsed, defaulted quest that has not been persisted yet.
// Type is copied verbatim from the text and may be outside the known set.
type QuestDraft struct {
	Title       string
	Description string
	Type        string
	XPReward    models.XPReward
	DueDays     int
	DueDate     time.Time
	Status      models.QuestStatus
}

// QuestInterpreter turns generator output into a QuestDraft. With StrictAttributes
// set, an xp segment naming an unknown attribute fails the whole xp field.
type QuestInterpreter struct {
	StrictAttributes bool
}

// ParseQuestText parses with the default, lenient rules.
func ParseQuestText(raw string, now time.Time) QuestDraft {
	return QuestInterpreter{}.Parse(raw, now)
}

// isLineBreak matches every rune that ends a line in generator output, not just '\n'.
func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// Parse never fails: every missing or malformed field falls back to its default.
func (qi QuestInterpreter) Parse(raw string, now time.Time) QuestDraft {
	fields := make(map[string]string)
	for _, line := range strings.FieldsFunc(raw, isLineBreak) {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fields[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}

	get := func(key, fallback string) string {
		if v, ok := fields[key]; ok {
			return v
		}
		return fallback
	}

	xpText := get("xp", defaultQuestXP)
	reward, ok := qi.parseXP(xpText)
	if !ok {
		log.Printf("[QUEST] could not parse xp %q, using default reward", xpText)
		reward = DefaultQuestReward()
	}

	dueDays, err := strconv.Atoi(get("due", strconv.Itoa(defaultQuestDueDays)))
	if err != nil {
		dueDays = defaultQuestDueDays
	}

	return QuestDraft{
		Title:       get("title", DefaultQuestTitle),
		Description: get("description", DefaultQuestDescription),
		Type:        get("type", DefaultQuestType),
		XPReward:    reward,
		DueDays:     dueDays,
		DueDate:     now.AddDate(0, 0, dueDays),
		Status:      models.QuestStatusActive,
	}
}

// parseXP reads "ATTR:amount,ATTR:amount". It is all-or-nothing: one bad segment
// discards every segment already parsed.
func (qi QuestInterpreter) parseXP(s string) (models.XPReward, bool) {
	reward := models.XPReward{}
	for _, segment := range strings.Split(s, ",") {
		parts := strings.Split(strings.TrimSpace(segment), ":")
		if len(parts) != 2 {
			return nil, false
		}
		attr := strings.ToUpper(strings.TrimSpace(parts[0]))
		amount, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil {
			return nil, false
		}
		if qi.StrictAttributes && !models.IsAttribute(attr) {
			return nil, false
		}
		reward[attr] = amount
	}
	return reward, true
}
