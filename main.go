package main

import (
	"github.com/flowtalk-io/flowtalk-backend/apps/auth"
	"github.com/flowtalk-io/flowtalk-backend/apps/chat"
	"github.com/flowtalk-io/flowtalk-backend/apps/community"
	"github.com/flowtalk-io/flowtalk-backend/apps/jobs"
	"github.com/flowtalk-io/flowtalk-backend/apps/models"
	"github.com/flowtalk-io/flowtalk-backend/apps/nats"
	"github.com/flowtalk-io/flowtalk-backend/apps/redis"
	"github.com/flowtalk-io/flowtalk-backend/apps/system"
	"github.com/flowtalk-io/flowtalk-backend/apps/translation"
	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/application"
)

func main() {
	evo.Setup()

	var apps = application.GetInstance()
	apps.Register(system.App{}, auth.App{}, models.App{}, nats.App{}, redis.App{}, translation.App{}, community.App{}, chat.App{}, jobs.App{})

	evo.Run()
}
