package models

import (
	"fmt"
	"testing"

	"github.com/flowtalk-io/flowtalk-backend/apps/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Named per test so gorm's pooled connections all see the same
	// in-memory database.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&auth.User{}, &Community{}, &CommunityMember{}, &Channel{}, &Thread{},
		&Message{}, &MessageTranslation{}, &MessageReaction{},
	))
	return conn
}

func createTestUser(t *testing.T, tx *gorm.DB, username, language string) *auth.User {
	t.Helper()
	user := auth.User{
		Username:        username,
		Email:           fmt.Sprintf("%s@example.com", username),
		DisplayName:     username,
		PrimaryLanguage: language,
		Type:            auth.UserTypeMember,
		Status:          auth.UserStatusActive,
	}
	require.NoError(t, tx.Create(&user).Error)
	return &user
}

func createTestChannel(t *testing.T, tx *gorm.DB, creator *auth.User, memberLangs map[string]string) (*Channel, map[string]*auth.User) {
	t.Helper()
	community := Community{Name: "test community", CreatedBy: creator.UserID}
	require.NoError(t, tx.Create(&community).Error)
	require.NoError(t, tx.Create(&CommunityMember{CommunityID: community.ID, UserID: creator.UserID}).Error)

	users := map[string]*auth.User{creator.Username: creator}
	for username, lang := range memberLangs {
		u := createTestUser(t, tx, username, lang)
		require.NoError(t, tx.Create(&CommunityMember{CommunityID: community.ID, UserID: u.UserID}).Error)
		users[username] = u
	}

	channel := Channel{CommunityID: community.ID, Name: "general"}
	require.NoError(t, tx.Create(&channel).Error)
	return &channel, users
}

func TestChannelMembersCommunitySnapshot(t *testing.T) {
	tx := newTestDB(t)

	ana := createTestUser(t, tx, "ana", "es")
	channel, users := createTestChannel(t, tx, ana, map[string]string{"bob": "en"})
	createTestUser(t, tx, "eve", "fr")

	members, err := channelMembers(tx, channel)
	require.NoError(t, err)
	require.Len(t, members, 2, "only community members appear in the snapshot")

	langs := map[string]string{}
	for _, m := range members {
		langs[m.UserID.String()] = m.PrimaryLanguage
	}
	assert.Equal(t, "es", langs[ana.UserID.String()])
	assert.Equal(t, "en", langs[users["bob"].UserID.String()])
}

func TestChannelMembersDMThread(t *testing.T) {
	tx := newTestDB(t)

	ana := createTestUser(t, tx, "ana", "es")
	bob := createTestUser(t, tx, "bob", "ja")

	channel := Channel{CommunityID: DMCommunityID, Name: "dm-ana-bob"}
	require.NoError(t, tx.Create(&channel).Error)
	thread := Thread{ChannelID: channel.ID, ParticipantA: ana.UserID, ParticipantB: bob.UserID}
	require.NoError(t, tx.Create(&thread).Error)

	members, err := channelMembers(tx, &channel)
	require.NoError(t, err)
	require.Len(t, members, 2)

	langs := map[string]string{}
	for _, m := range members {
		langs[m.UserID.String()] = m.PrimaryLanguage
	}
	assert.Equal(t, "es", langs[ana.UserID.String()])
	assert.Equal(t, "ja", langs[bob.UserID.String()])
}

func TestChannelMembersNilChannel(t *testing.T) {
	tx := newTestDB(t)
	members, err := channelMembers(tx, nil)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestHasChannelAccess(t *testing.T) {
	tx := newTestDB(t)

	ana := createTestUser(t, tx, "ana", "es")
	channel, _ := createTestChannel(t, tx, ana, nil)
	eve := createTestUser(t, tx, "eve", "fr")

	ok, err := hasChannelAccess(tx, ana.UserID, channel)
	require.NoError(t, err)
	assert.True(t, ok, "community member may use the channel")

	ok, err = hasChannelAccess(tx, eve.UserID, channel)
	require.NoError(t, err)
	assert.False(t, ok, "outsider may not")

	t.Run("dm thread restricts to participants", func(t *testing.T) {
		bob := createTestUser(t, tx, "bob", "ja")
		dm := Channel{CommunityID: DMCommunityID, Name: "dm-ana-bob"}
		require.NoError(t, tx.Create(&dm).Error)
		thread := Thread{ChannelID: dm.ID, ParticipantA: ana.UserID, ParticipantB: bob.UserID}
		require.NoError(t, tx.Create(&thread).Error)

		for _, u := range []*auth.User{ana, bob} {
			ok, err := hasChannelAccess(tx, u.UserID, &dm)
			require.NoError(t, err)
			assert.True(t, ok)
		}
		ok, err := hasChannelAccess(tx, eve.UserID, &dm)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
