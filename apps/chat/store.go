package chat

import (
	"context"
	"strconv"
	"strings"

	"github.com/flowtalk-io/flowtalk-backend/apps/models"
	"github.com/flowtalk-io/flowtalk-backend/apps/translation"
	"github.com/getevo/evo/v2/lib/db"
	"gorm.io/gorm"
)

// Store adapts the gorm message tables to the translation pipeline's
// persistence contract.
type Store struct{}

func (Store) GetMessage(ctx context.Context, id string) (*translation.MessageRecord, error) {
	messageID, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return nil, err
	}

	var msg models.Message
	if err := db.First(&msg, uint(messageID)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	var channel models.Channel
	if err := db.Where("id = ?", msg.ChannelID).First(&channel).Error; err != nil {
		return nil, err
	}

	return &translation.MessageRecord{
		ID:             id,
		ChannelID:      msg.ChannelID,
		CommunityID:    channel.CommunityID,
		SenderID:       msg.SenderID.String(),
		Content:        msg.Content,
		SourceLanguage: msg.SourceLanguage,
		Status:         msg.Status,
	}, nil
}

// TransitionStatus moves a message's status only when it currently holds the
// expected value. The conditional WHERE makes concurrent workers race safely
// on the database rather than in memory.
func (Store) TransitionStatus(ctx context.Context, id, from, to string) (bool, error) {
	messageID, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return false, err
	}

	res := db.Model(&models.Message{}).
		Where("id = ? AND status = ?", uint(messageID), from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AppendTranslation inserts a translation row; the unique index on
// (message_id, target_language) makes a duplicate append a silent no-op.
func (Store) AppendTranslation(ctx context.Context, id string, tr translation.TranslationRecord) error {
	messageID, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return err
	}

	row := models.MessageTranslation{
		MessageID:         uint(messageID),
		TargetLanguage:    tr.TargetLanguage,
		TranslatedContent: tr.TranslatedContent,
	}
	if err := db.Create(&row).Error; err != nil {
		if isDuplicateKey(err) {
			return nil
		}
		return err
	}
	return nil
}

func isDuplicateKey(err error) bool {
	if err == gorm.ErrDuplicatedKey {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate entry") || strings.Contains(msg, "unique constraint")
}
