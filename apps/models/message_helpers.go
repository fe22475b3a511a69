package models

import (
	"github.com/getevo/evo/v2/lib/db"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reaction outcomes, as reported to the client.
const (
	ReactionAdded    = "added"
	ReactionReplaced = "replaced"
	ReactionRemoved  = "removed"
)

// DeleteChannelMessages removes every message in a channel together with its
// translations and reactions ("clear chat"). Returns the number of messages
// deleted.
func DeleteChannelMessages(channelID string) (int64, error) {
	var deleted int64
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		deleted, err = deleteChannelMessages(tx, channelID)
		return err
	})
	return deleted, err
}

func deleteChannelMessages(tx *gorm.DB, channelID string) (int64, error) {
	var ids []uint
	if err := tx.Model(&Message{}).Where("channel_id = ?", channelID).Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := tx.Where("message_id IN ?", ids).Delete(&MessageTranslation{}).Error; err != nil {
		return 0, err
	}
	if err := tx.Where("message_id IN ?", ids).Delete(&MessageReaction{}).Error; err != nil {
		return 0, err
	}
	res := tx.Where("id IN ?", ids).Delete(&Message{})
	return res.RowsAffected, res.Error
}

// SetReaction applies a user's reaction to a message under the
// one-reaction-per-user invariant: a repeat of the same emoji toggles the
// reaction off, a different emoji replaces the previous one. Returns the
// action taken.
func SetReaction(messageID uint, userID uuid.UUID, emoji string) (string, error) {
	var action string
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		action, err = setReaction(tx, messageID, userID, emoji)
		return err
	})
	return action, err
}

func setReaction(tx *gorm.DB, messageID uint, userID uuid.UUID, emoji string) (string, error) {
	var existing MessageReaction
	err := tx.Where("message_id = ? AND user_id = ?", messageID, userID).First(&existing).Error
	switch {
	case err == nil && existing.Emoji == emoji:
		if err := tx.Delete(&existing).Error; err != nil {
			return "", err
		}
		return ReactionRemoved, nil
	case err == nil:
		existing.Emoji = emoji
		if err := tx.Save(&existing).Error; err != nil {
			return "", err
		}
		return ReactionReplaced, nil
	case err == gorm.ErrRecordNotFound:
		reaction := MessageReaction{
			MessageID: messageID,
			UserID:    userID,
			Emoji:     emoji,
		}
		if err := tx.Create(&reaction).Error; err != nil {
			return "", err
		}
		return ReactionAdded, nil
	default:
		return "", err
	}
}

// RemoveReaction is the explicit delete of a user's reaction. Returns
// whether a reaction existed.
func RemoveReaction(messageID uint, userID uuid.UUID) (bool, error) {
	var removed bool
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("message_id = ? AND user_id = ?", messageID, userID).Delete(&MessageReaction{})
		removed = res.RowsAffected > 0
		return res.Error
	})
	return removed, err
}
