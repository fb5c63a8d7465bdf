package models

import (
	"time"

	"gorm.io/gorm"
)

// Attribute is one of the fixed RPG stats a user levels up.
type Attribute string

const (
	AttributeSTR Attribute = "STR"
	AttributeAGI Attribute = "AGI"
	AttributeEND Attribute = "END"
	AttributeINT Attribute = "INT"
	AttributeCHA Attribute = "CHA"
)

// Attributes lists every recognised stat in display order.
var Attributes = []Attribute{AttributeSTR, AttributeAGI, AttributeEND, AttributeINT, AttributeCHA}

// IsAttribute reports whether name is a recognised stat (case-sensitive).
func IsAttribute(name string) bool {
	for _, a := range Attributes {
		if string(a) == name {
			return true
		}
	}
	return false
}

// XPReward maps an attribute name to an XP amount. Stored as JSON; keys outside
// Attributes are kept as-is but never counted.
type XPReward map[string]int64

// AttributeScore is the derived value of one stat.
type AttributeScore struct {
	Value int64 `json:"value"`
	XP    int64 `json:"xp"`
}

// PlayerStats is derived on every request from workouts and completed quests; never stored.
type PlayerStats struct {
	Level         int64                        `json:"level"`
	TotalXP       int64                        `json:"total_xp"`
	XPToNextLevel int64                        `json:"xp_to_next_level"`
	Attributes    map[Attribute]AttributeScore `json:"attributes"`
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
