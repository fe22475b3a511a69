package chat

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/flowtalk-io/flowtalk-backend/apps/auth"
	"github.com/flowtalk-io/flowtalk-backend/apps/models"
	"github.com/flowtalk-io/flowtalk-backend/apps/redis"
	"github.com/flowtalk-io/flowtalk-backend/apps/translation"
	"github.com/flowtalk-io/flowtalk-backend/lib/response"
	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/evo/v2/lib/log"
	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
)

type Controller struct{}

var validate = validator.New()

const (
	defaultMessageLimit = 50
	maxMessageLimit     = 100
)

// SenderView is the message author as shown to other members.
type SenderView struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	DisplayName string  `json:"display_name"`
	Avatar      *string `json:"avatar,omitempty"`
}

// ReactionView aggregates reactions per emoji.
type ReactionView struct {
	Emoji   string `json:"emoji"`
	Count   int    `json:"count"`
	Reacted bool   `json:"reacted"`
}

// TranslationView is one stored translation of a message.
type TranslationView struct {
	TargetLanguage    string `json:"target_language"`
	TranslatedContent string `json:"translated_content"`
}

// MessageView is a message rendered for one viewer: senders and same-language
// readers see the original, everyone else sees their language's translation
// when it exists, with the original as fallback. The sender sees the full
// translation set; other viewers only the entry matching their language.
type MessageView struct {
	ID              uint              `json:"id"`
	ChannelID       string            `json:"channel_id"`
	Sender          SenderView        `json:"sender"`
	Content         string            `json:"content"`
	OriginalContent string            `json:"original_content,omitempty"`
	SourceLanguage  string            `json:"source_language"`
	Language        string            `json:"language"`
	IsRomanized     bool              `json:"is_romanized,omitempty"`
	Translated      bool              `json:"translated"`
	Status          string            `json:"status"`
	Attachment      datatypes.JSON    `json:"attachment,omitempty"`
	Translations    []TranslationView `json:"translations,omitempty"`
	Reactions       []ReactionView    `json:"reactions,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

func buildMessageView(msg *models.Message, viewer *auth.User) MessageView {
	view := MessageView{
		ID:             msg.ID,
		ChannelID:      msg.ChannelID,
		Content:        msg.Content,
		SourceLanguage: msg.SourceLanguage,
		Language:       msg.SourceLanguage,
		IsRomanized:    msg.IsRomanized,
		Status:         msg.Status,
		Attachment:     msg.Attachment,
		CreatedAt:      msg.CreatedAt,
	}
	if msg.Sender != nil {
		view.Sender = SenderView{
			ID:          msg.Sender.UserID.String(),
			Username:    msg.Sender.Username,
			DisplayName: msg.Sender.DisplayName,
			Avatar:      msg.Sender.Avatar,
		}
	} else {
		view.Sender = SenderView{ID: msg.SenderID.String()}
	}

	viewerLang := translation.NormalizeLanguage(viewer.PrimaryLanguage)
	sourceLang := translation.NormalizeLanguage(msg.SourceLanguage)
	if msg.SenderID == viewer.UserID {
		for i := range msg.Translations {
			view.Translations = append(view.Translations, TranslationView{
				TargetLanguage:    msg.Translations[i].TargetLanguage,
				TranslatedContent: msg.Translations[i].TranslatedContent,
			})
		}
	} else if viewerLang != sourceLang {
		for i := range msg.Translations {
			if msg.Translations[i].TargetLanguage == viewerLang {
				view.OriginalContent = msg.Content
				view.Content = msg.Translations[i].TranslatedContent
				view.Language = viewerLang
				view.Translated = true
				view.Translations = []TranslationView{{
					TargetLanguage:    msg.Translations[i].TargetLanguage,
					TranslatedContent: msg.Translations[i].TranslatedContent,
				}}
				break
			}
		}
	}

	if len(msg.Reactions) > 0 {
		counts := map[string]*ReactionView{}
		var order []string
		for i := range msg.Reactions {
			r := msg.Reactions[i]
			agg, ok := counts[r.Emoji]
			if !ok {
				agg = &ReactionView{Emoji: r.Emoji}
				counts[r.Emoji] = agg
				order = append(order, r.Emoji)
			}
			agg.Count++
			if r.UserID == viewer.UserID {
				agg.Reacted = true
			}
		}
		sort.Strings(order)
		for _, emoji := range order {
			view.Reactions = append(view.Reactions, *counts[emoji])
		}
	}

	return view
}

func loadChannelForUser(req *evo.Request, channelID string) (*models.Channel, *auth.User, interface{}) {
	user, ok := req.User().(*auth.User)
	if !ok || user.Anonymous() {
		return nil, nil, response.Error(response.ErrUnauthorized)
	}
	if channelID == "" {
		return nil, nil, response.Error(response.ErrInvalidInput)
	}

	var channel models.Channel
	if err := db.Where("id = ?", channelID).First(&channel).Error; err != nil {
		return nil, nil, response.Error(response.ErrChannelNotFound)
	}
	if !models.HasChannelAccess(user.UserID, &channel) {
		return nil, nil, response.Error(response.ErrChannelNotFound)
	}
	return &channel, user, nil
}

// chronological reverses a newest-first page in place so messages read
// oldest to newest.
func chronological(messages []models.Message) []models.Message {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages
}

// GetMessages returns a channel's recent messages rendered for the viewer.
// Pages are selected newest first and keyset-paginated with
// ?before=<message id>, but each page is returned in chronological order.
func (c Controller) GetMessages(req *evo.Request) interface{} {
	channel, user, errResp := loadChannelForUser(req, req.Param("id").String())
	if errResp != nil {
		return errResp
	}

	limit := req.Query("limit").Int()
	if limit <= 0 {
		limit = defaultMessageLimit
	}
	if limit > maxMessageLimit {
		limit = maxMessageLimit
	}

	query := db.Where("channel_id = ?", channel.ID)
	if before := req.Query("before").Int(); before > 0 {
		query = query.Where("id < ?", before)
	}

	var messages []models.Message
	if err := query.
		Preload("Sender").
		Preload("Translations").
		Preload("Reactions").
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		log.Error("failed to fetch messages: %v", err)
		return response.Error(response.ErrFetchMessages())
	}

	messages = chronological(messages)
	views := make([]MessageView, 0, len(messages))
	for i := range messages {
		views = append(views, buildMessageView(&messages[i], user))
	}
	return response.List(views, len(views))
}

type postMessageRequest struct {
	Content    string         `json:"content" validate:"required"`
	Attachment datatypes.JSON `json:"attachment"`
}

// PostMessage stores a message and kicks off translation fan-out in the
// background. The response carries the stored message with status "sent";
// translations appear as they complete.
func (c Controller) PostMessage(req *evo.Request) interface{} {
	channel, user, errResp := loadChannelForUser(req, req.Param("id").String())
	if errResp != nil {
		return errResp
	}

	if ok, retryAfter := redis.Allow("chat.post_message", req.IP()); !ok {
		rateErr := response.ErrRateLimited
		rateErr.Details = fmt.Sprintf("Retry after %d seconds", retryAfter)
		return response.Error(rateErr)
	}

	var params postMessageRequest
	if err := req.BodyParser(&params); err != nil {
		return response.Error(response.ErrInvalidInput)
	}
	if err := validate.Struct(params); err != nil {
		return response.Error(response.ErrMissingRequired)
	}

	parser := translation.GetParser()
	if parser == nil {
		parser = translation.NewParser(0)
	}
	if violations := parser.Validate(params.Content); len(violations) > 0 {
		return response.Error(response.ErrInvalidContent(violations))
	}

	masked, _, err := parser.Mask(params.Content)
	if err != nil {
		return response.Error(response.ErrInvalidContent([]string{err.Error()}))
	}

	detector := translation.GetDetector()
	if detector == nil {
		detector = translation.NewDetector(nil)
	}
	detection := detector.Detect(translation.StripMask(masked))

	msg := models.Message{
		ChannelID:      channel.ID,
		SenderID:       user.UserID,
		Content:        params.Content,
		SourceLanguage: detection.Language,
		IsRomanized:    detection.IsRomanized,
		Status:         models.MessageStatusSent,
		Attachment:     params.Attachment,
	}
	if err := db.Create(&msg).Error; err != nil {
		log.Error("failed to create message: %v", err)
		return response.Error(response.ErrCreateMessage())
	}

	touchThread(channel, msg.CreatedAt)
	dispatchTranslation(channel, &msg)

	view := buildMessageView(&msg, user)
	view.Sender = SenderView{
		ID:          user.UserID.String(),
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Avatar:      user.Avatar,
	}
	return response.Created(view)
}

// ClearMessages wipes a channel's history: every message together with its
// translations and reactions. Any channel member may clear the chat.
func (c Controller) ClearMessages(req *evo.Request) interface{} {
	channel, _, errResp := loadChannelForUser(req, req.Param("id").String())
	if errResp != nil {
		return errResp
	}

	deleted, err := models.DeleteChannelMessages(channel.ID)
	if err != nil {
		log.Error("failed to clear channel %s: %v", channel.ID, err)
		return response.Error(response.ErrDatabaseError)
	}
	return response.OKWithMessage(map[string]interface{}{"deleted_count": deleted}, "Channel cleared")
}

// GetMessage returns one message rendered for the viewer.
func (c Controller) GetMessage(req *evo.Request) interface{} {
	user, ok := req.User().(*auth.User)
	if !ok || user.Anonymous() {
		return response.Error(response.ErrUnauthorized)
	}

	id := req.Param("id").Int()
	if id <= 0 {
		return response.Error(response.ErrInvalidInput)
	}

	var msg models.Message
	if err := db.
		Preload("Sender").
		Preload("Translations").
		Preload("Reactions").
		First(&msg, id).Error; err != nil {
		return response.Error(response.ErrMessageNotFound)
	}

	var channel models.Channel
	if err := db.Where("id = ?", msg.ChannelID).First(&channel).Error; err != nil {
		return response.Error(response.ErrMessageNotFound)
	}
	if !models.HasChannelAccess(user.UserID, &channel) {
		return response.Error(response.ErrMessageNotFound)
	}

	return response.OK(buildMessageView(&msg, user))
}

// DeleteMessage removes a message. Only the sender or an administrator may
// do this; translations and reactions go with it.
func (c Controller) DeleteMessage(req *evo.Request) interface{} {
	user, ok := req.User().(*auth.User)
	if !ok || user.Anonymous() {
		return response.Error(response.ErrUnauthorized)
	}

	id := req.Param("id").Int()
	if id <= 0 {
		return response.Error(response.ErrInvalidInput)
	}

	var msg models.Message
	if err := db.First(&msg, id).Error; err != nil {
		return response.Error(response.ErrMessageNotFound)
	}
	if msg.SenderID != user.UserID && user.Type != auth.UserTypeAdministrator {
		return response.Error(response.ErrAccessDenied)
	}

	if err := db.Where("message_id = ?", msg.ID).Delete(&models.MessageTranslation{}).Error; err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	if err := db.Where("message_id = ?", msg.ID).Delete(&models.MessageReaction{}).Error; err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	if err := db.Delete(&msg).Error; err != nil {
		return response.Error(response.ErrDatabaseError)
	}

	return response.Message("Message deleted")
}

// dispatchTranslation resolves targets from the channel membership snapshot
// and runs the pipeline in the background.
func dispatchTranslation(channel *models.Channel, msg *models.Message) {
	orchestrator := translation.GetOrchestrator()
	if orchestrator == nil {
		log.Warning("translation orchestrator unavailable, message %d stays untranslated", msg.ID)
		return
	}

	members, err := models.GetChannelMembers(channel)
	if err != nil {
		log.Error("failed to snapshot members of channel %s: %v", channel.ID, err)
		return
	}
	snapshot := make([]translation.MemberSnapshot, 0, len(members))
	for _, m := range members {
		snapshot = append(snapshot, translation.MemberSnapshot{
			UserID:          m.UserID.String(),
			PrimaryLanguage: m.PrimaryLanguage,
		})
	}
	targets := translation.ResolveTargets(snapshot, msg.SourceLanguage)

	messageID := strconv.FormatUint(uint64(msg.ID), 10)
	go func() {
		if _, err := orchestrator.TranslateMessage(context.Background(), messageID, targets); err != nil {
			log.Warning("translation run for message %s failed: %v", messageID, err)
		}
	}()
}

// touchThread bumps last activity on the DM thread owning the channel.
func touchThread(channel *models.Channel, at time.Time) {
	if channel.CommunityID != models.DMCommunityID {
		return
	}
	db.Model(&models.Thread{}).
		Where("channel_id = ?", channel.ID).
		Update("last_message_at", at)
}
