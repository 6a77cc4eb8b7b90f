package handlers

import (
	"net/http"
	"strings"

	"riskmatrix/internal/database"
	"riskmatrix/internal/models"

	"github.com/gin-gonic/gin"
)

// ====== РИСКИ ======

func ListRisks(c *gin.Context) {
	var risks []models.Risk
	database.DB.Scopes(models.NotDeleted).
		Preload("Catalog").
		Where("organization_id = ?", sessionOrgID(c)).
		Order("name asc").
		Find(&risks)

	render(c, http.StatusOK, "risks_list.html", gin.H{
		"risks": risks,
		"role":  string(sessionRole(c)),
	})
}

func ShowNewRisk(c *gin.Context) {
	render(c, http.StatusOK, "risks_new.html", gin.H{
		"catalogs": orgCatalogs(c),
		"error":    "",
	})
}

func CreateRisk(c *gin.Context) {
	orgID := sessionOrgID(c)

	name := strings.TrimSpace(c.PostForm("name"))
	description := strings.TrimSpace(c.PostForm("description"))
	category := strings.TrimSpace(c.PostForm("category"))
	catalogID := c.PostForm("catalog_id")

	if len(name) < 3 {
		renderRiskError(c, "Название риска должно быть не короче 3 символов")
		return
	}

	// каталог обязателен: риск живёт ровно в одном каталоге своей организации
	var catalog models.RiskCatalog
	if err := database.DB.Scopes(models.NotDeleted).
		Where("organization_id = ?", orgID).
		First(&catalog, "id = ?", catalogID).Error; err != nil {
		renderRiskError(c, "Каталог не найден")
		return
	}

	var count int64
	database.DB.Model(&models.Risk{}).
		Where("organization_id = ? AND name = ? AND deleted_at IS NULL", orgID, name).
		Count(&count)
	if count > 0 {
		renderRiskError(c, "Риск с таким названием уже существует")
		return
	}

	risk := models.Risk{
		OrganizationID: orgID,
		CatalogID:      catalog.ID,
		Name:           name,
		Description:    description,
		Category:       category,
	}

	if err := database.DB.Create(&risk).Error; err != nil {
		renderRiskError(c, "Ошибка сохранения риска в БД")
		return
	}

	database.CreateAuditLog(sessionUserID(c), orgID, "risk", risk.ID, "create", "Создан риск: "+risk.Name)

	c.Redirect(http.StatusFound, "/risks")
}

func renderRiskError(c *gin.Context, msg string) {
	render(c, http.StatusBadRequest, "risks_new.html", gin.H{
		"error":    msg,
		"catalogs": orgCatalogs(c),
	})
}

func ShowEditRisk(c *gin.Context) {
	risk, ok := orgRisk(c)
	if !ok {
		return
	}

	render(c, http.StatusOK, "risks_edit.html", gin.H{
		"risk":     risk,
		"catalogs": orgCatalogs(c),
		"error":    "",
	})
}

func UpdateRisk(c *gin.Context) {
	risk, ok := orgRisk(c)
	if !ok {
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	description := strings.TrimSpace(c.PostForm("description"))
	category := strings.TrimSpace(c.PostForm("category"))
	catalogID := c.PostForm("catalog_id")

	if len(name) < 3 {
		renderRiskEditError(c, risk, "Название риска должно быть не короче 3 символов")
		return
	}

	var catalog models.RiskCatalog
	if err := database.DB.Scopes(models.NotDeleted).
		Where("organization_id = ?", risk.OrganizationID).
		First(&catalog, "id = ?", catalogID).Error; err != nil {
		renderRiskEditError(c, risk, "Каталог не найден")
		return
	}

	var count int64
	database.DB.Model(&models.Risk{}).
		Where("organization_id = ? AND name = ? AND deleted_at IS NULL AND id <> ?",
			risk.OrganizationID, name, risk.ID).
		Count(&count)
	if count > 0 {
		renderRiskEditError(c, risk, "Риск с таким названием уже существует")
		return
	}

	risk.Name = name
	risk.Description = description
	risk.Category = category
	risk.CatalogID = catalog.ID

	if err := database.DB.Save(risk).Error; err != nil {
		renderRiskEditError(c, risk, "Ошибка сохранения риска в БД")
		return
	}

	database.CreateAuditLog(sessionUserID(c), risk.OrganizationID, "risk", risk.ID, "update", "Изменён риск: "+risk.Name)

	c.Redirect(http.StatusFound, "/risks")
}

func renderRiskEditError(c *gin.Context, risk *models.Risk, msg string) {
	render(c, http.StatusBadRequest, "risks_edit.html", gin.H{
		"error":    msg,
		"risk":     risk,
		"catalogs": orgCatalogs(c),
	})
}

func DeleteRisk(c *gin.Context) {
	risk, ok := orgRisk(c)
	if !ok {
		return
	}

	if err := risk.SoftDelete(database.DB); err != nil {
		c.String(http.StatusInternalServerError, "Ошибка удаления риска")
		return
	}

	database.CreateAuditLog(sessionUserID(c), risk.OrganizationID, "risk", risk.ID, "delete", "Удалён риск: "+risk.Name)

	c.Redirect(http.StatusFound, "/risks")
}

func orgRisk(c *gin.Context) (*models.Risk, bool) {
	var risk models.Risk
	err := database.DB.Scopes(models.NotDeleted).
		Where("organization_id = ?", sessionOrgID(c)).
		First(&risk, "id = ?", c.Param("id")).Error
	if err != nil {
		c.String(http.StatusNotFound, "Риск не найден")
		return nil, false
	}
	return &risk, true
}
