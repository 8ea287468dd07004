package migration

import (
	"custodia/internal/infrastructure/persistence/models"
)

func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.UserModel{},
		&models.ResidentModel{},
		&models.VisitorModel{},
		&models.VisitRequestModel{},
		&models.BlockModel{},
		&models.EntryLogModel{},
	}
}
