package handlers

import (
	"errors"
	"net/http"
	"strings"

	"riskmatrix/internal/assessment"
	"riskmatrix/internal/database"
	"riskmatrix/internal/models"

	"github.com/gin-gonic/gin"
)

// ====== КАТАЛОГИ РИСКОВ ======

func ListCatalogs(c *gin.Context) {
	catalogs := orgCatalogs(c)

	// риски по каталогам одной выборкой
	var risks []models.Risk
	database.DB.Scopes(models.NotDeleted).
		Where("organization_id = ?", sessionOrgID(c)).
		Order("name asc").
		Find(&risks)

	byCatalog := make(map[string][]models.Risk)
	for _, r := range risks {
		byCatalog[r.CatalogID] = append(byCatalog[r.CatalogID], r)
	}

	render(c, http.StatusOK, "catalogs_list.html", gin.H{
		"catalogs":       catalogs,
		"RisksByCatalog": byCatalog,
		"role":           string(sessionRole(c)),
	})
}

func ShowNewCatalog(c *gin.Context) {
	render(c, http.StatusOK, "catalogs_new.html", gin.H{
		"parents": orgCatalogs(c),
		"error":   "",
	})
}

func CreateCatalog(c *gin.Context) {
	orgID := sessionOrgID(c)

	name := strings.TrimSpace(c.PostForm("name"))
	description := strings.TrimSpace(c.PostForm("description"))
	parentID := strings.TrimSpace(c.PostForm("parent_id"))

	if len(name) < 3 {
		renderCatalogError(c, "Название каталога должно быть не короче 3 символов")
		return
	}

	var count int64
	database.DB.Model(&models.RiskCatalog{}).
		Where("organization_id = ? AND name = ? AND deleted_at IS NULL", orgID, name).
		Count(&count)
	if count > 0 {
		renderCatalogError(c, "Каталог с таким названием уже существует")
		return
	}

	catalog := models.RiskCatalog{
		OrganizationID: orgID,
		Name:           name,
		Description:    description,
	}

	if parentID != "" {
		if err := models.ValidateParent(database.DB, &catalog, parentID); err != nil {
			renderCatalogError(c, "Некорректный родительский каталог")
			return
		}
		catalog.ParentID = &parentID
	}

	if err := database.DB.Create(&catalog).Error; err != nil {
		renderCatalogError(c, "Ошибка сохранения каталога в БД")
		return
	}

	database.CreateAuditLog(sessionUserID(c), orgID, "catalog", catalog.ID, "create", "Создан каталог: "+catalog.Name)

	c.Redirect(http.StatusFound, "/catalogs")
}

func renderCatalogError(c *gin.Context, msg string) {
	render(c, http.StatusBadRequest, "catalogs_new.html", gin.H{
		"error":   msg,
		"parents": orgCatalogs(c),
	})
}

func ShowEditCatalog(c *gin.Context) {
	catalog, ok := orgCatalog(c)
	if !ok {
		return
	}

	render(c, http.StatusOK, "catalogs_edit.html", gin.H{
		"catalog": catalog,
		"parents": orgCatalogs(c),
		"error":   "",
	})
}

func UpdateCatalog(c *gin.Context) {
	catalog, ok := orgCatalog(c)
	if !ok {
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	description := strings.TrimSpace(c.PostForm("description"))
	parentID := strings.TrimSpace(c.PostForm("parent_id"))

	if len(name) < 3 {
		renderCatalogEditError(c, catalog, "Название каталога должно быть не короче 3 символов")
		return
	}

	var count int64
	database.DB.Model(&models.RiskCatalog{}).
		Where("organization_id = ? AND name = ? AND deleted_at IS NULL AND id <> ?",
			catalog.OrganizationID, name, catalog.ID).
		Count(&count)
	if count > 0 {
		renderCatalogEditError(c, catalog, "Каталог с таким названием уже существует")
		return
	}

	if parentID == "" {
		catalog.ParentID = nil
	} else {
		// родитель из той же организации и не потомок самого каталога
		if err := models.ValidateParent(database.DB, catalog, parentID); err != nil {
			msg := "Некорректный родительский каталог"
			if errors.Is(err, models.ErrCatalogCycle) {
				msg = "Родителем нельзя назначить потомка каталога"
			}
			renderCatalogEditError(c, catalog, msg)
			return
		}
		catalog.ParentID = &parentID
	}

	catalog.Name = name
	catalog.Description = description

	if err := database.DB.Save(catalog).Error; err != nil {
		renderCatalogEditError(c, catalog, "Ошибка сохранения каталога в БД")
		return
	}

	database.CreateAuditLog(sessionUserID(c), catalog.OrganizationID, "catalog", catalog.ID, "update", "Изменён каталог: "+catalog.Name)

	c.Redirect(http.StatusFound, "/catalogs")
}

func renderCatalogEditError(c *gin.Context, catalog *models.RiskCatalog, msg string) {
	render(c, http.StatusBadRequest, "catalogs_edit.html", gin.H{
		"error":   msg,
		"catalog": catalog,
		"parents": orgCatalogs(c),
	})
}

func DeleteCatalog(c *gin.Context) {
	catalog, ok := orgCatalog(c)
	if !ok {
		return
	}

	if err := catalog.SoftDelete(database.DB); err != nil {
		c.String(http.StatusInternalServerError, "Ошибка удаления каталога")
		return
	}

	// пустые заготовки по рискам удалённого каталога убираем из текущего
	// раунда сразу, не дожидаясь закрытия
	var assets []models.Asset
	database.DB.Scopes(models.NotDeleted).
		Joins("JOIN asset_catalogs ON asset_catalogs.asset_id = assets.id").
		Where("asset_catalogs.catalog_id = ?", catalog.ID).
		Find(&assets)
	for i := range assets {
		if err := assessment.SyncAssetEntries(database.DB, &assets[i]); err != nil {
			c.String(http.StatusInternalServerError, "Ошибка обновления записей оценки")
			return
		}
	}

	database.CreateAuditLog(sessionUserID(c), catalog.OrganizationID, "catalog", catalog.ID, "delete", "Удалён каталог: "+catalog.Name)

	c.Redirect(http.StatusFound, "/catalogs")
}

func orgCatalog(c *gin.Context) (*models.RiskCatalog, bool) {
	var catalog models.RiskCatalog
	err := database.DB.Scopes(models.NotDeleted).
		Where("organization_id = ?", sessionOrgID(c)).
		First(&catalog, "id = ?", c.Param("id")).Error
	if err != nil {
		c.String(http.StatusNotFound, "Каталог не найден")
		return nil, false
	}
	return &catalog, true
}
