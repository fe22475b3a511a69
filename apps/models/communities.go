package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/getevo/restify"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DMCommunityID is the sentinel community that owns all direct-message
// channels. DM threads are channels under this community with exactly two
// participants.
const DMCommunityID = "dm"

// Community is a named container of channels with a flat member set.
type Community struct {
	ID          string    `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	Name        string    `gorm:"column:name;size:255;not null" json:"name"`
	Description string    `gorm:"column:description;size:1000" json:"description"`
	CreatedBy   uuid.UUID `gorm:"column:created_by;type:char(36);not null;index" json:"created_by"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Channels []Channel         `gorm:"foreignKey:CommunityID;references:ID" json:"channels,omitempty"`
	Members  []CommunityMember `gorm:"foreignKey:CommunityID;references:ID" json:"members,omitempty"`

	restify.API
}

// BeforeCreate assigns the community a UUID.
func (c *Community) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// CommunityMember links a user to a community. Membership drives both
// channel visibility and translation fan-out.
type CommunityMember struct {
	ID          uint      `gorm:"column:id;primaryKey" json:"id"`
	CommunityID string    `gorm:"column:community_id;type:char(36);not null;uniqueIndex:idx_community_member" json:"community_id"`
	UserID      uuid.UUID `gorm:"column:user_id;type:char(36);not null;uniqueIndex:idx_community_member;index" json:"user_id"`
	JoinedAt    time.Time `gorm:"column:joined_at;autoCreateTime" json:"joined_at"`

	restify.API
}

func (CommunityMember) TableName() string {
	return "community_members"
}

// Channel is a named room within a community. The channel id is opaque to
// clients; the name is a slug unique within its community.
type Channel struct {
	ID          string    `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	CommunityID string    `gorm:"column:community_id;size:36;not null;uniqueIndex:idx_channel_name;index" json:"community_id"`
	Name        string    `gorm:"column:name;size:100;not null;uniqueIndex:idx_channel_name" json:"name"`
	Description string    `gorm:"column:description;size:1000" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	restify.API
}

// BeforeCreate assigns the channel a UUID and slugifies its name.
func (c *Channel) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.Name = SlugifyChannelName(c.Name)
	return nil
}

var slugStripRe = regexp.MustCompile(`[^a-z0-9-]+`)

// SlugifyChannelName lowercases a channel name and turns spaces into
// hyphens, dropping anything else exotic.
func SlugifyChannelName(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = slugStripRe.ReplaceAllString(slug, "")
	slug = strings.Trim(slug, "-")
	return slug
}

// Thread is a two-party direct-message conversation, modelled as a channel
// under the sentinel DM community. Participants are stored sorted so the
// unique index enforces at most one thread per unordered pair.
type Thread struct {
	ID            string     `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	ChannelID     string     `gorm:"column:channel_id;type:char(36);not null;uniqueIndex" json:"channel_id"`
	ParticipantA  uuid.UUID  `gorm:"column:participant_a;type:char(36);not null;uniqueIndex:idx_thread_pair" json:"participant_a"`
	ParticipantB  uuid.UUID  `gorm:"column:participant_b;type:char(36);not null;uniqueIndex:idx_thread_pair" json:"participant_b"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	LastMessageAt *time.Time `gorm:"column:last_message_at" json:"last_message_at"`

	Channel Channel `gorm:"foreignKey:ChannelID;references:ID" json:"channel,omitempty"`

	restify.API
}

// BeforeCreate assigns the thread a UUID and normalizes participant order.
func (t *Thread) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	t.ParticipantA, t.ParticipantB = SortParticipants(t.ParticipantA, t.ParticipantB)
	return nil
}

// SortParticipants returns the pair in canonical (lexicographic) order.
func SortParticipants(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if strings.Compare(a.String(), b.String()) > 0 {
		return b, a
	}
	return a, b
}
