package chat

import (
	"github.com/flowtalk-io/flowtalk-backend/apps/translation"
	"github.com/getevo/evo/v2"
)

type App struct{}

func (a App) Register() error {
	// The translation pipeline persists through this app's store.
	translation.SetMessageStore(Store{})
	return nil
}

func (a App) Router() error {
	var controller Controller

	// Channel messages
	evo.Get("/api/channels/:id/messages", controller.GetMessages)
	evo.Post("/api/channels/:id/messages", controller.PostMessage)
	evo.Delete("/api/channels/:id/messages", controller.ClearMessages)

	// Individual messages
	evo.Get("/api/messages/:id", controller.GetMessage)
	evo.Delete("/api/messages/:id", controller.DeleteMessage)

	// Reactions
	evo.Post("/api/messages/:id/reactions", controller.React)
	evo.Delete("/api/messages/:id/reactions", controller.Unreact)

	// Direct-message threads
	evo.Get("/api/conversations", controller.ListConversations)
	evo.Post("/api/conversations", controller.CreateConversation)
	evo.Get("/api/conversations/:id", controller.GetConversation)

	return nil
}

func (a App) WhenReady() error {
	return nil
}

func (a App) Name() string {
	return "chat"
}
