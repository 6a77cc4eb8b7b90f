package handlers

import (
	"net/http"
	"strings"

	"riskmatrix/internal/assessment"
	"riskmatrix/internal/database"
	"riskmatrix/internal/models"

	"github.com/gin-gonic/gin"
)

// СПИСОК АКТИВОВ

func ListAssets(c *gin.Context) {
	orgID := sessionOrgID(c)

	var assets []models.Asset
	database.DB.Scopes(models.NotDeleted).
		Preload("Catalogs.Catalog").
		Where("organization_id = ?", orgID).
		Order("name asc").
		Find(&assets)

	render(c, http.StatusOK, "assets_list.html", gin.H{
		"assets": assets,
		"role":   string(sessionRole(c)),
	})
}

// СОЗДАНИЕ НОВОГО АКТИВА

func ShowNewAsset(c *gin.Context) {
	render(c, http.StatusOK, "assets_new.html", gin.H{
		"catalogs": orgCatalogs(c),
		"error":    "",
	})
}

func CreateAsset(c *gin.Context) {
	orgID := sessionOrgID(c)

	name := strings.TrimSpace(c.PostForm("name"))
	description := strings.TrimSpace(c.PostForm("description"))
	catalogIDs := c.PostFormArray("catalog_ids")

	if len(name) < 3 {
		renderAssetError(c, "Название актива должно быть не короче 3 символов")
		return
	}

	// уникальность имени среди живых активов организации
	var count int64
	database.DB.Model(&models.Asset{}).
		Where("organization_id = ? AND name = ? AND deleted_at IS NULL", orgID, name).
		Count(&count)
	if count > 0 {
		renderAssetError(c, "Актив с таким названием уже существует")
		return
	}

	asset := models.Asset{
		OrganizationID: orgID,
		Name:           name,
		Description:    description,
	}

	if err := database.DB.Create(&asset).Error; err != nil {
		renderAssetError(c, "Ошибка сохранения актива в БД")
		return
	}

	if err := applyCatalogLinks(c, &asset, catalogIDs); err != nil {
		renderAssetError(c, "Каталог не найден или принадлежит другой организации")
		return
	}

	database.CreateAuditLog(sessionUserID(c), orgID, "asset", asset.ID, "create", "Создан актив: "+asset.Name)

	c.Redirect(http.StatusFound, "/assets")
}

func renderAssetError(c *gin.Context, msg string) {
	render(c, http.StatusBadRequest, "assets_new.html", gin.H{
		"error":    msg,
		"catalogs": orgCatalogs(c),
	})
}

// РЕДАКТИРОВАНИЕ АКТИВА

func ShowEditAsset(c *gin.Context) {
	asset, ok := orgAsset(c)
	if !ok {
		return
	}

	ids, _ := asset.CatalogIDs(database.DB)
	linked := map[string]bool{}
	for _, id := range ids {
		linked[id] = true
	}

	render(c, http.StatusOK, "assets_edit.html", gin.H{
		"asset":    asset,
		"catalogs": orgCatalogs(c),
		"linked":   linked,
		"error":    "",
	})
}

func UpdateAsset(c *gin.Context) {
	asset, ok := orgAsset(c)
	if !ok {
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	description := strings.TrimSpace(c.PostForm("description"))
	catalogIDs := c.PostFormArray("catalog_ids")

	if len(name) < 3 {
		renderAssetEditError(c, asset, "Название актива должно быть не короче 3 символов")
		return
	}

	var count int64
	database.DB.Model(&models.Asset{}).
		Where("organization_id = ? AND name = ? AND deleted_at IS NULL AND id <> ?",
			asset.OrganizationID, name, asset.ID).
		Count(&count)
	if count > 0 {
		renderAssetEditError(c, asset, "Актив с таким названием уже существует")
		return
	}

	asset.Name = name
	asset.Description = description

	if err := database.DB.Save(asset).Error; err != nil {
		renderAssetEditError(c, asset, "Ошибка сохранения актива в БД")
		return
	}

	if err := applyCatalogLinks(c, asset, catalogIDs); err != nil {
		renderAssetEditError(c, asset, "Каталог не найден или принадлежит другой организации")
		return
	}

	database.CreateAuditLog(sessionUserID(c), asset.OrganizationID, "asset", asset.ID, "update", "Изменён актив: "+asset.Name)

	c.Redirect(http.StatusFound, "/assets")
}

func renderAssetEditError(c *gin.Context, asset *models.Asset, msg string) {
	render(c, http.StatusBadRequest, "assets_edit.html", gin.H{
		"error":    msg,
		"asset":    asset,
		"catalogs": orgCatalogs(c),
	})
}

// УДАЛЕНИЕ (мягкое)

func DeleteAsset(c *gin.Context) {
	asset, ok := orgAsset(c)
	if !ok {
		return
	}

	if err := asset.SoftDelete(database.DB); err != nil {
		c.String(http.StatusInternalServerError, "Ошибка удаления актива")
		return
	}

	database.CreateAuditLog(sessionUserID(c), asset.OrganizationID, "asset", asset.ID, "delete", "Удалён актив: "+asset.Name)

	c.Redirect(http.StatusFound, "/assets")
}

// applyCatalogLinks выставляет список каталогов актива и синхронизирует
// записи текущего открытого раунда под новый список.
func applyCatalogLinks(c *gin.Context, asset *models.Asset, catalogIDs []string) error {
	existing, err := asset.CatalogIDs(database.DB)
	if err != nil {
		return err
	}

	wanted := map[string]bool{}
	for _, id := range catalogIDs {
		if id == "" {
			continue
		}
		wanted[id] = true
	}

	for _, id := range existing {
		if !wanted[id] {
			if err := asset.UnlinkCatalog(database.DB, id); err != nil {
				return err
			}
		}
	}
	for id := range wanted {
		if err := asset.LinkCatalog(database.DB, id); err != nil {
			return err
		}
	}

	return assessment.SyncAssetEntries(database.DB, asset)
}

// orgAsset — живой актив организации текущего пользователя, 404 иначе.
func orgAsset(c *gin.Context) (*models.Asset, bool) {
	orgID := sessionOrgID(c)
	id := c.Param("id")

	var asset models.Asset
	err := database.DB.Scopes(models.NotDeleted).
		Where("organization_id = ?", orgID).
		First(&asset, "id = ?", id).Error
	if err != nil {
		c.String(http.StatusNotFound, "Актив не найден")
		return nil, false
	}
	return &asset, true
}

func orgCatalogs(c *gin.Context) []models.RiskCatalog {
	var catalogs []models.RiskCatalog
	database.DB.Scopes(models.NotDeleted).
		Where("organization_id = ?", sessionOrgID(c)).
		Order("name asc").
		Find(&catalogs)
	return catalogs
}
