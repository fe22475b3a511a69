package community

import (
	"github.com/getevo/evo/v2"
)

type App struct{}

func (a App) Register() error {
	return nil
}

func (a App) Router() error {
	var controller Controller

	evo.Get("/api/communities", controller.ListCommunities)
	evo.Post("/api/communities", controller.CreateCommunity)
	evo.Get("/api/communities/discover", controller.Discover)
	evo.Get("/api/communities/:id", controller.GetCommunity)
	evo.Post("/api/communities/:id/join", controller.Join)
	evo.Post("/api/communities/:id/leave", controller.Leave)
	evo.Get("/api/communities/:id/members", controller.ListMembers)
	evo.Post("/api/communities/:id/channels", controller.CreateChannel)

	return nil
}

func (a App) WhenReady() error {
	return nil
}

func (a App) Name() string {
	return "community"
}
