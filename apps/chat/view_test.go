package chat

import (
	"testing"
	"time"

	"github.com/flowtalk-io/flowtalk-backend/apps/auth"
	"github.com/flowtalk-io/flowtalk-backend/apps/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func testMessage(sender uuid.UUID) *models.Message {
	return &models.Message{
		ID:             42,
		ChannelID:      "chan-1",
		SenderID:       sender,
		Content:        "good morning",
		SourceLanguage: "en",
		Status:         models.MessageStatusTranslated,
		CreatedAt:      time.Now(),
		Translations: []models.MessageTranslation{
			{MessageID: 42, TargetLanguage: "es", TranslatedContent: "buenos dias"},
			{MessageID: 42, TargetLanguage: "ja", TranslatedContent: "おはよう"},
		},
	}
}

func TestBuildMessageViewSenderSeesAllTranslations(t *testing.T) {
	senderID := uuid.New()
	sender := &auth.User{UserID: senderID, PrimaryLanguage: "en"}

	view := buildMessageView(testMessage(senderID), sender)

	assert.Equal(t, "good morning", view.Content)
	assert.False(t, view.Translated)
	require.Len(t, view.Translations, 2, "sender gets the full translation set")
	langs := []string{view.Translations[0].TargetLanguage, view.Translations[1].TargetLanguage}
	assert.ElementsMatch(t, []string{"es", "ja"}, langs)
}

func TestBuildMessageViewReaderSeesOwnLanguage(t *testing.T) {
	senderID := uuid.New()
	reader := &auth.User{UserID: uuid.New(), PrimaryLanguage: "es"}

	view := buildMessageView(testMessage(senderID), reader)

	assert.Equal(t, "buenos dias", view.Content)
	assert.Equal(t, "good morning", view.OriginalContent)
	assert.Equal(t, "es", view.Language)
	assert.True(t, view.Translated)
	require.Len(t, view.Translations, 1, "readers only see their own language's entry")
	assert.Equal(t, "es", view.Translations[0].TargetLanguage)
}

func TestBuildMessageViewFallsBackToOriginal(t *testing.T) {
	senderID := uuid.New()
	reader := &auth.User{UserID: uuid.New(), PrimaryLanguage: "fr"}

	view := buildMessageView(testMessage(senderID), reader)

	assert.Equal(t, "good morning", view.Content)
	assert.False(t, view.Translated)
	assert.Empty(t, view.Translations)
}

func TestBuildMessageViewCarriesAttachment(t *testing.T) {
	senderID := uuid.New()
	msg := testMessage(senderID)
	msg.Attachment = datatypes.JSON(`{"url":"https://cdn.example.com/pic.png","type":"image"}`)
	reader := &auth.User{UserID: uuid.New(), PrimaryLanguage: "es"}

	view := buildMessageView(msg, reader)

	assert.JSONEq(t, `{"url":"https://cdn.example.com/pic.png","type":"image"}`, string(view.Attachment))
}

func TestChronological(t *testing.T) {
	page := []models.Message{{ID: 30}, {ID: 20}, {ID: 10}}

	page = chronological(page)

	assert.Equal(t, uint(10), page[0].ID)
	assert.Equal(t, uint(20), page[1].ID)
	assert.Equal(t, uint(30), page[2].ID)

	assert.Empty(t, chronological(nil))
}
