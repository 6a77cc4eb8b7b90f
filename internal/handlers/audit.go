package handlers

import (
	"net/http"

	"riskmatrix/internal/database"
	"riskmatrix/internal/models"

	"github.com/gin-gonic/gin"
)

func ListAuditLogs(c *gin.Context) {
	role := sessionRole(c)

	// можно сразу ограничить доступ
	if role != models.RoleAdmin && role != models.RoleViewer {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	var logs []models.AuditLog
	database.DB.
		Preload("User").
		Where("organization_id = ?", sessionOrgID(c)).
		Order("created_at desc").
		Limit(200).
		Find(&logs)

	render(c, http.StatusOK, "audit_list.html", gin.H{
		"logs":    logs,
		"role":    string(role),
		"IsAdmin": role == models.RoleAdmin,
	})
}
