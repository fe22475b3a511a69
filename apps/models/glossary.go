package models

import (
	"time"

	"github.com/getevo/restify"
)

// GlossaryScopeDefault marks a glossary entry shared by every community.
const GlossaryScopeDefault = "default"

// GlossaryEntry is a term kept verbatim through translation. Scope is
// either "default" or a community id; community terms are merged above the
// defaults, winning on case-insensitive equality.
type GlossaryEntry struct {
	ID           uint      `gorm:"column:id;primaryKey" json:"id"`
	Scope        string    `gorm:"column:scope;size:36;not null;uniqueIndex:idx_glossary_term;index" json:"scope"`
	Term         string    `gorm:"column:term;size:255;not null;uniqueIndex:idx_glossary_term" json:"term"`
	Category     string    `gorm:"column:category;size:20;not null;check:category IN ('technical','brand','proper_noun','custom')" json:"category"`
	PreserveCase bool      `gorm:"column:preserve_case;default:1" json:"preserve_case"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	restify.API
}

func (GlossaryEntry) TableName() string {
	return "glossary_entries"
}
