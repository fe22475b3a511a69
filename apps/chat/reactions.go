package chat

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/flowtalk-io/flowtalk-backend/apps/auth"
	"github.com/flowtalk-io/flowtalk-backend/apps/models"
	"github.com/flowtalk-io/flowtalk-backend/apps/redis"
	"github.com/flowtalk-io/flowtalk-backend/lib/response"
	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/db"
)

type reactRequest struct {
	Emoji string `json:"emoji" validate:"required"`
}

func loadMessageForUser(req *evo.Request) (*models.Message, *auth.User, interface{}) {
	user, ok := req.User().(*auth.User)
	if !ok || user.Anonymous() {
		return nil, nil, response.Error(response.ErrUnauthorized)
	}

	id := req.Param("id").Int()
	if id <= 0 {
		return nil, nil, response.Error(response.ErrInvalidInput)
	}

	var msg models.Message
	if err := db.First(&msg, id).Error; err != nil {
		return nil, nil, response.Error(response.ErrMessageNotFound)
	}

	var channel models.Channel
	if err := db.Where("id = ?", msg.ChannelID).First(&channel).Error; err != nil {
		return nil, nil, response.Error(response.ErrMessageNotFound)
	}
	if !models.HasChannelAccess(user.UserID, &channel) {
		return nil, nil, response.Error(response.ErrMessageNotFound)
	}
	return &msg, user, nil
}

// React sets the caller's reaction on a message. Each user holds at most
// one reaction per message: reacting with the same emoji removes it,
// reacting with a different emoji replaces the previous one.
func (c Controller) React(req *evo.Request) interface{} {
	msg, user, errResp := loadMessageForUser(req)
	if errResp != nil {
		return errResp
	}

	if ok, retryAfter := redis.Allow("chat.react", req.IP()); !ok {
		rateErr := response.ErrRateLimited
		rateErr.Details = fmt.Sprintf("Retry after %d seconds", retryAfter)
		return response.Error(rateErr)
	}

	var params reactRequest
	if err := req.BodyParser(&params); err != nil {
		return response.Error(response.ErrInvalidInput)
	}
	emoji := strings.TrimSpace(params.Emoji)
	if emoji == "" || utf8.RuneCountInString(emoji) > 8 {
		return response.Error(response.NewError(response.ErrorCodeInvalidInput, "Invalid emoji", 400))
	}

	action, err := models.SetReaction(msg.ID, user.UserID, emoji)
	if err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	body := map[string]interface{}{"action": action, "emoji": emoji}
	switch action {
	case models.ReactionRemoved:
		return response.OKWithMessage(body, "Reaction removed")
	case models.ReactionReplaced:
		return response.OKWithMessage(body, "Reaction updated")
	default:
		return response.CreatedWithMessage(body, "Reaction added")
	}
}

// Unreact removes the caller's reaction from a message, if any.
func (c Controller) Unreact(req *evo.Request) interface{} {
	msg, user, errResp := loadMessageForUser(req)
	if errResp != nil {
		return errResp
	}

	removed, err := models.RemoveReaction(msg.ID, user.UserID)
	if err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	if !removed {
		return response.Error(response.NewError(response.ErrorCodeNotFound, "No reaction to remove", 404))
	}
	return response.OKWithMessage(map[string]interface{}{"action": models.ReactionRemoved}, "Reaction removed")
}
