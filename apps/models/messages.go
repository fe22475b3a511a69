package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/flowtalk-io/flowtalk-backend/apps/auth"
	"github.com/flowtalk-io/flowtalk-backend/apps/nats"
	"github.com/getevo/evo/v2/lib/log"
	"github.com/getevo/restify"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Message status values; transitions are guarded in the chat store and only
// ever move forward along sent -> translating -> translated|failed.
const (
	MessageStatusSent        = "sent"
	MessageStatusTranslating = "translating"
	MessageStatusTranslated  = "translated"
	MessageStatusFailed      = "failed"
)

// Message is an immutable text unit posted to a channel. Content and the
// detected source language are never rewritten after creation; translations
// accrete append-only.
type Message struct {
	ID             uint           `gorm:"column:id;primaryKey" json:"id"`
	ChannelID      string         `gorm:"column:channel_id;type:char(36);not null;index:idx_channel_time,priority:1" json:"channel_id"`
	SenderID       uuid.UUID      `gorm:"column:sender_id;type:char(36);not null;index" json:"sender_id"`
	Content        string         `gorm:"column:content;type:text;not null" json:"content"`
	SourceLanguage string         `gorm:"column:source_language;size:10;not null" json:"source_language"`
	IsRomanized    bool           `gorm:"column:is_romanized;default:0" json:"is_romanized"`
	Status         string         `gorm:"column:status;size:20;not null;check:status IN ('sent','translating','translated','failed')" json:"status"`
	Attachment     datatypes.JSON `gorm:"column:attachment;type:json" json:"attachment,omitempty"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime;index:idx_channel_time,priority:2" json:"created_at"`

	// Relationships
	Sender       *auth.User           `gorm:"foreignKey:SenderID;references:UserID" json:"sender,omitempty"`
	Translations []MessageTranslation `gorm:"foreignKey:MessageID;references:ID" json:"translations,omitempty"`
	Reactions    []MessageReaction    `gorm:"foreignKey:MessageID;references:ID" json:"reactions,omitempty"`

	restify.API
}

// AfterCreate broadcasts the new message on its channel subject. Event
// delivery is additive; readers still poll the store.
func (m *Message) AfterCreate(tx *gorm.DB) error {
	go func() {
		subject := fmt.Sprintf("channel.%s", m.ChannelID)
		data, _ := json.Marshal(map[string]interface{}{
			"event":   "message.created",
			"message": m,
		})
		if err := nats.Publish(subject, data); err != nil {
			log.Debug("failed to publish message.created: %v", err)
		}
	}()
	return nil
}

// MessageTranslation is a lazily populated per-language derivative of a
// message. The unique index enforces at most one translation per
// (message, target language); once written it is never mutated.
type MessageTranslation struct {
	ID                uint      `gorm:"column:id;primaryKey" json:"id"`
	MessageID         uint      `gorm:"column:message_id;not null;uniqueIndex:idx_message_target" json:"message_id"`
	TargetLanguage    string    `gorm:"column:target_language;size:10;not null;uniqueIndex:idx_message_target" json:"target_language"`
	TranslatedContent string    `gorm:"column:translated_content;type:text;not null" json:"translated_content"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Message Message `gorm:"foreignKey:MessageID;references:ID" json:"message,omitempty"`

	restify.API
}

func (MessageTranslation) TableName() string {
	return "message_translations"
}

// AfterCreate broadcasts the translation on the message's channel subject.
func (t *MessageTranslation) AfterCreate(tx *gorm.DB) error {
	go func() {
		var msg Message
		if err := tx.Session(&gorm.Session{NewDB: true}).First(&msg, t.MessageID).Error; err != nil {
			return
		}
		subject := fmt.Sprintf("channel.%s", msg.ChannelID)
		data, _ := json.Marshal(map[string]interface{}{
			"event":       "message.translated",
			"message_id":  t.MessageID,
			"translation": t,
		})
		if err := nats.Publish(subject, data); err != nil {
			log.Debug("failed to publish message.translated: %v", err)
		}
	}()
	return nil
}

// MessageReaction is a single emoji reaction. The unique index enforces at
// most one reaction per (message, user); replacing and toggling is handled
// in the chat app under that invariant.
type MessageReaction struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	MessageID uint      `gorm:"column:message_id;not null;uniqueIndex:idx_message_user" json:"message_id"`
	UserID    uuid.UUID `gorm:"column:user_id;type:char(36);not null;uniqueIndex:idx_message_user" json:"user_id"`
	Emoji     string    `gorm:"column:emoji;size:32;not null" json:"emoji"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	restify.API
}

func (MessageReaction) TableName() string {
	return "message_reactions"
}
