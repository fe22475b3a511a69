package system

import (
	"time"

	"github.com/flowtalk-io/flowtalk-backend/apps/auth"
	"github.com/flowtalk-io/flowtalk-backend/apps/models"
	"github.com/flowtalk-io/flowtalk-backend/lib/response"
	"github.com/getevo/evo/v2"
)

type Controller struct {
}

func (c Controller) HealthHandler(request *evo.Request) any {
	return response.OK("ok")
}

func (c Controller) UptimeHandler(request *evo.Request) any {
	uptimeData := map[string]any{
		"uptime": int64(time.Now().Sub(StartupTime).Seconds()),
	}
	return response.OK(uptimeData)
}

// MessageStatus represents one stage of the translation lifecycle.
type MessageStatus struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// GetMessageStatuses returns the message lifecycle states clients can
// observe while polling.
func (c Controller) GetMessageStatuses(req *evo.Request) interface{} {
	statuses := []MessageStatus{
		{
			Value:       models.MessageStatusSent,
			Label:       "Sent",
			Description: "Message stored, translation not yet started",
		},
		{
			Value:       models.MessageStatusTranslating,
			Label:       "Translating",
			Description: "Translation fan-out is in progress",
		},
		{
			Value:       models.MessageStatusTranslated,
			Label:       "Translated",
			Description: "At least one target language completed",
		},
		{
			Value:       models.MessageStatusFailed,
			Label:       "Failed",
			Description: "Every target language failed; original remains readable",
		},
	}

	return response.List(statuses, len(statuses))
}

func (c Controller) AdminMiddleware(request *evo.Request) error {
	if request.User().Anonymous() {
		return response.ErrForbidden
	}
	var user = request.User().Interface().(*auth.User)
	if user.Type != auth.UserTypeAdministrator {
		return response.ErrForbidden
	}
	return request.Next()
}
