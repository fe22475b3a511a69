package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteChannelMessages(t *testing.T) {
	tx := newTestDB(t)

	ana := createTestUser(t, tx, "ana", "es")
	channelA, _ := createTestChannel(t, tx, ana, nil)
	channelB := Channel{CommunityID: channelA.CommunityID, Name: "random"}
	require.NoError(t, tx.Create(&channelB).Error)

	var kept *Message
	for i := 0; i < 3; i++ {
		msg := Message{
			ChannelID:      channelA.ID,
			SenderID:       ana.UserID,
			Content:        "to be cleared",
			SourceLanguage: "en",
			Status:         MessageStatusTranslated,
		}
		require.NoError(t, tx.Create(&msg).Error)
		require.NoError(t, tx.Create(&MessageTranslation{
			MessageID:         msg.ID,
			TargetLanguage:    "es",
			TranslatedContent: "se borrara",
		}).Error)
		require.NoError(t, tx.Create(&MessageReaction{
			MessageID: msg.ID,
			UserID:    ana.UserID,
			Emoji:     "👍",
		}).Error)
	}
	keptMsg := Message{
		ChannelID:      channelB.ID,
		SenderID:       ana.UserID,
		Content:        "survives",
		SourceLanguage: "en",
		Status:         MessageStatusSent,
	}
	require.NoError(t, tx.Create(&keptMsg).Error)
	kept = &keptMsg

	deleted, err := deleteChannelMessages(tx, channelA.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	var count int64
	tx.Model(&Message{}).Where("channel_id = ?", channelA.ID).Count(&count)
	assert.Zero(t, count)
	tx.Model(&MessageTranslation{}).Count(&count)
	assert.Zero(t, count, "translations go with their messages")
	tx.Model(&MessageReaction{}).Count(&count)
	assert.Zero(t, count, "reactions go with their messages")

	var survivor Message
	require.NoError(t, tx.First(&survivor, kept.ID).Error)
	assert.Equal(t, "survives", survivor.Content)

	t.Run("empty channel deletes nothing", func(t *testing.T) {
		deleted, err := deleteChannelMessages(tx, channelA.ID)
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})
}

func TestSetReactionLifecycle(t *testing.T) {
	tx := newTestDB(t)

	ana := createTestUser(t, tx, "ana", "es")
	bob := createTestUser(t, tx, "bob", "en")
	channel, _ := createTestChannel(t, tx, ana, nil)
	msg := Message{
		ChannelID:      channel.ID,
		SenderID:       ana.UserID,
		Content:        "react to me",
		SourceLanguage: "en",
		Status:         MessageStatusSent,
	}
	require.NoError(t, tx.Create(&msg).Error)

	reactionCount := func() int64 {
		var n int64
		tx.Model(&MessageReaction{}).Where("message_id = ?", msg.ID).Count(&n)
		return n
	}

	action, err := setReaction(tx, msg.ID, ana.UserID, "👍")
	require.NoError(t, err)
	assert.Equal(t, ReactionAdded, action)
	assert.Equal(t, int64(1), reactionCount())

	action, err = setReaction(tx, msg.ID, ana.UserID, "🎉")
	require.NoError(t, err)
	assert.Equal(t, ReactionReplaced, action, "different emoji replaces the previous one")
	assert.Equal(t, int64(1), reactionCount(), "at most one reaction per user")

	action, err = setReaction(tx, msg.ID, ana.UserID, "🎉")
	require.NoError(t, err)
	assert.Equal(t, ReactionRemoved, action, "same emoji toggles the reaction off")
	assert.Equal(t, int64(0), reactionCount())

	t.Run("users react independently", func(t *testing.T) {
		_, err := setReaction(tx, msg.ID, ana.UserID, "👍")
		require.NoError(t, err)
		_, err = setReaction(tx, msg.ID, bob.UserID, "👍")
		require.NoError(t, err)
		assert.Equal(t, int64(2), reactionCount())
	})
}
