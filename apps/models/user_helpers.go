package models

import (
	"github.com/getevo/evo/v2/lib/db"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetUserCommunityIDs returns all community IDs a user belongs to.
// This is used for access control across multiple controllers.
func GetUserCommunityIDs(userID uuid.UUID) ([]string, error) {
	var communityIDs []string
	err := db.Model(&CommunityMember{}).
		Where("user_id = ?", userID).
		Pluck("community_id", &communityIDs).Error
	if err != nil {
		return nil, err
	}
	return communityIDs, nil
}

// IsCommunityMember checks if a user belongs to a community.
func IsCommunityMember(userID uuid.UUID, communityID string) bool {
	var count int64
	err := db.Model(&CommunityMember{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Count(&count).Error
	if err != nil {
		return false
	}
	return count > 0
}

// HasChannelAccess checks if a user may read and post in a channel.
// Community channels require membership; DM channels require being one of
// the thread's two participants.
func HasChannelAccess(userID uuid.UUID, channel *Channel) bool {
	var ok bool
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		ok, err = hasChannelAccess(tx, userID, channel)
		return err
	})
	return err == nil && ok
}

func hasChannelAccess(tx *gorm.DB, userID uuid.UUID, channel *Channel) (bool, error) {
	if channel == nil {
		return false, nil
	}
	if channel.CommunityID == DMCommunityID {
		var thread Thread
		if err := tx.Where("channel_id = ?", channel.ID).First(&thread).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return false, nil
			}
			return false, err
		}
		return thread.ParticipantA == userID || thread.ParticipantB == userID, nil
	}
	var count int64
	err := tx.Model(&CommunityMember{}).
		Where("community_id = ? AND user_id = ?", channel.CommunityID, userID).
		Count(&count).Error
	return count > 0, err
}

// ChannelMember is one row of the fan-out membership snapshot.
type ChannelMember struct {
	UserID          uuid.UUID `gorm:"column:user_id" json:"user_id"`
	PrimaryLanguage string    `gorm:"column:primary_language" json:"primary_language"`
}

// GetChannelMembers returns the membership snapshot used for translation
// fan-out: every member of the channel's community with their primary
// language. For DM channels it returns the two participants.
func GetChannelMembers(channel *Channel) ([]ChannelMember, error) {
	var members []ChannelMember
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		members, err = channelMembers(tx, channel)
		return err
	})
	return members, err
}

func channelMembers(tx *gorm.DB, channel *Channel) ([]ChannelMember, error) {
	if channel == nil {
		return nil, nil
	}
	var members []ChannelMember
	if channel.CommunityID == DMCommunityID {
		var thread Thread
		if err := tx.Where("channel_id = ?", channel.ID).First(&thread).Error; err != nil {
			return nil, err
		}
		err := tx.Table("users").
			Select("users.id AS user_id, users.primary_language").
			Where("users.id IN ?", []uuid.UUID{thread.ParticipantA, thread.ParticipantB}).
			Scan(&members).Error
		return members, err
	}
	err := tx.Table("community_members").
		Select("users.id AS user_id, users.primary_language").
		Joins("JOIN users ON users.id = community_members.user_id").
		Where("community_members.community_id = ?", channel.CommunityID).
		Scan(&members).Error
	return members, err
}
