package database

import "riskmatrix/internal/models"

// helper для записи в журнал аудита
func CreateAuditLog(userID, orgID, entity, entityID, action, details string) {
	if DB == nil {
		return
	}
	record := models.AuditLog{
		UserID:         userID,
		OrganizationID: orgID,
		Entity:         entity,
		EntityID:       entityID,
		Action:         action,
		Details:        details,
	}
	_ = DB.Create(&record).Error
}
