package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/flowtalk-io/flowtalk-backend/apps/auth"
	"github.com/flowtalk-io/flowtalk-backend/apps/models"
	"github.com/flowtalk-io/flowtalk-backend/apps/redis"
	"github.com/flowtalk-io/flowtalk-backend/lib/response"
	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/evo/v2/lib/log"
	"github.com/google/uuid"
)

type createConversationRequest struct {
	TargetUserID   string `json:"target_user_id"`
	TargetUsername string `json:"target_username"`
}

// ConversationView is a DM thread as seen by one of its participants.
type ConversationView struct {
	ID            string             `json:"id"`
	ChannelID     string             `json:"channel_id"`
	Peer          auth.PublicProfile `json:"peer"`
	CreatedAt     time.Time          `json:"created_at"`
	LastMessageAt *time.Time         `json:"last_message_at,omitempty"`
}

func conversationView(thread *models.Thread, viewerID uuid.UUID) (ConversationView, error) {
	peerID := thread.ParticipantA
	if peerID == viewerID {
		peerID = thread.ParticipantB
	}

	var peer auth.User
	if err := db.Where("id = ?", peerID).First(&peer).Error; err != nil {
		return ConversationView{}, err
	}

	return ConversationView{
		ID:        thread.ID,
		ChannelID: thread.ChannelID,
		Peer: auth.PublicProfile{
			ID:              peer.UserID,
			Username:        peer.Username,
			DisplayName:     peer.DisplayName,
			Avatar:          peer.Avatar,
			PrimaryLanguage: peer.PrimaryLanguage,
			Status:          peer.Status,
		},
		CreatedAt:     thread.CreatedAt,
		LastMessageAt: thread.LastMessageAt,
	}, nil
}

// ListConversations returns the caller's DM threads, most recently active
// first.
func (c Controller) ListConversations(req *evo.Request) interface{} {
	user, ok := req.User().(*auth.User)
	if !ok || user.Anonymous() {
		return response.Error(response.ErrUnauthorized)
	}

	var threads []models.Thread
	if err := db.
		Where("participant_a = ? OR participant_b = ?", user.UserID, user.UserID).
		Order("last_message_at DESC").
		Find(&threads).Error; err != nil {
		return response.Error(response.ErrDatabaseError)
	}

	views := make([]ConversationView, 0, len(threads))
	for i := range threads {
		view, err := conversationView(&threads[i], user.UserID)
		if err != nil {
			log.Warning("skipping thread %s with missing peer: %v", threads[i].ID, err)
			continue
		}
		views = append(views, view)
	}
	return response.List(views, len(views))
}

// CreateConversation opens (or returns) the DM thread between the caller
// and the target user. At most one thread exists per pair.
func (c Controller) CreateConversation(req *evo.Request) interface{} {
	user, ok := req.User().(*auth.User)
	if !ok || user.Anonymous() {
		return response.Error(response.ErrUnauthorized)
	}

	if ok, retryAfter := redis.Allow("chat.create_conversation", req.IP()); !ok {
		rateErr := response.ErrRateLimited
		rateErr.Details = fmt.Sprintf("Retry after %d seconds", retryAfter)
		return response.Error(rateErr)
	}

	var params createConversationRequest
	if err := req.BodyParser(&params); err != nil {
		return response.Error(response.ErrInvalidInput)
	}

	var target auth.User
	var err error
	switch {
	case params.TargetUserID != "":
		targetID, parseErr := uuid.Parse(params.TargetUserID)
		if parseErr != nil {
			return response.Error(response.ErrInvalidUserID)
		}
		err = db.Where("id = ?", targetID).First(&target).Error
	case params.TargetUsername != "":
		err = db.Where("username = ?", strings.ToLower(strings.TrimSpace(params.TargetUsername))).First(&target).Error
	default:
		return response.Error(response.ErrMissingRecipient())
	}
	if err != nil {
		return response.Error(response.ErrUserNotFound)
	}
	if target.UserID == user.UserID {
		return response.Error(response.NewError(response.ErrorCodeInvalidInput, "You cannot start a conversation with yourself", 400))
	}

	a, b := models.SortParticipants(user.UserID, target.UserID)

	// Existing thread wins; creation is idempotent per pair.
	var thread models.Thread
	if err := db.Where("participant_a = ? AND participant_b = ?", a, b).First(&thread).Error; err == nil {
		view, verr := conversationView(&thread, user.UserID)
		if verr != nil {
			return response.Error(response.ErrDatabaseError)
		}
		return response.OK(view)
	}

	channel := models.Channel{
		CommunityID: models.DMCommunityID,
		Name:        fmt.Sprintf("dm-%s-%s", shortID(a), shortID(b)),
	}
	if err := db.Create(&channel).Error; err != nil {
		return response.Error(response.ErrDatabaseError)
	}

	thread = models.Thread{
		ChannelID:    channel.ID,
		ParticipantA: a,
		ParticipantB: b,
	}
	if err := db.Create(&thread).Error; err != nil {
		// A concurrent request may have created the pair first.
		var existing models.Thread
		if ferr := db.Where("participant_a = ? AND participant_b = ?", a, b).First(&existing).Error; ferr == nil {
			db.Delete(&channel)
			thread = existing
		} else {
			return response.Error(response.ErrDatabaseError)
		}
	}

	view, verr := conversationView(&thread, user.UserID)
	if verr != nil {
		return response.Error(response.ErrDatabaseError)
	}
	return response.Created(view)
}

// GetConversation returns one thread the caller participates in.
func (c Controller) GetConversation(req *evo.Request) interface{} {
	user, ok := req.User().(*auth.User)
	if !ok || user.Anonymous() {
		return response.Error(response.ErrUnauthorized)
	}

	id := req.Param("id").String()
	var thread models.Thread
	if err := db.Where("id = ?", id).First(&thread).Error; err != nil {
		return response.Error(response.ErrThreadNotFound)
	}
	if thread.ParticipantA != user.UserID && thread.ParticipantB != user.UserID {
		return response.Error(response.ErrThreadNotFound)
	}

	view, err := conversationView(&thread, user.UserID)
	if err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	return response.OK(view)
}

func shortID(id uuid.UUID) string {
	s := id.String()
	return s[:8]
}
