package models

import (
	"github.com/getevo/evo/v2/lib/args"
	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/evo/v2/lib/log"
	"github.com/google/uuid"
)

type App struct{}

func (a App) Register() error {
	// Register all models with GORM (auth models are registered in auth app)
	db.UseModel(Community{})
	db.UseModel(CommunityMember{})
	db.UseModel(Channel{})
	db.UseModel(Thread{})
	db.UseModel(Message{})
	db.UseModel(MessageTranslation{})
	db.UseModel(MessageReaction{})
	db.UseModel(GlossaryEntry{})

	// Settings model
	db.UseModel(Setting{})

	return nil
}

func (a App) Router() error {
	return nil
}

func (a App) WhenReady() error {
	if args.Exists("--migration-do") {
		err := db.DoMigration()
		if err != nil {
			return err
		}
	}
	if err := seedDMCommunity(); err != nil {
		log.Warning("failed to seed dm community: %v", err)
	}
	return nil
}

func (a App) Name() string {
	return "models"
}

// seedDMCommunity makes sure the sentinel community that owns direct-message
// channels exists.
func seedDMCommunity() error {
	var count int64
	if err := db.Model(&Community{}).Where("id = ?", DMCommunityID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Create(&Community{
		ID:          DMCommunityID,
		Name:        "Direct Messages",
		Description: "System container for direct-message threads",
		CreatedBy:   uuid.Nil,
	}).Error
}
