// Импорт каталога рисков из Excel. Колонки листа: номер, название риска,
// актив, описание, ..., likelihood (8-я), impact (9-я); строки группируются
// по категориям — строка только с названием открывает новую категорию.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"riskmatrix/internal/assessment"
	"riskmatrix/internal/database"
	"riskmatrix/internal/models"

	"github.com/joho/godotenv"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type riskRow struct {
	Name       string
	Category   string
	AssetName  string
	Desc       string
	Likelihood int
	Impact     int
}

func main() {
	var (
		file    = flag.String("file", "", "xlsx файл с каталогом рисков")
		sheet   = flag.String("sheet", "Risikokatalog", "имя листа")
		orgName = flag.String("org", "", "название организации")
		catName = flag.String("catalog", "imported risk register", "название создаваемого каталога")
	)
	flag.Parse()

	if *file == "" || *orgName == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	var org models.Organization
	if err := db.First(&org, "name = ?", *orgName).Error; err != nil {
		log.Fatalf("organization %q not found: %v", *orgName, err)
	}

	rows, err := readRisks(*file, *sheet)
	if err != nil {
		log.Fatalf("failed to read excel: %v", err)
	}
	if len(rows) == 0 {
		log.Fatal("no risk rows found in the sheet")
	}

	// весь импорт одной транзакцией: либо каталог целиком, либо ничего
	err = db.Transaction(func(tx *gorm.DB) error {
		today := time.Now().Format("2006-01-02")
		catalog := models.RiskCatalog{
			OrganizationID: org.ID,
			Name:           *catName,
			Description:    fmt.Sprintf("Imported from risk excel on %s.", today),
		}
		if err := tx.Create(&catalog).Error; err != nil {
			return err
		}

		round, err := assessment.OpenRound(tx, org.ID)
		if err != nil {
			return err
		}

		for _, row := range rows {
			asset, err := getOrCreateAsset(tx, org.ID, row.AssetName)
			if err != nil {
				return err
			}
			if err := asset.LinkCatalog(tx, catalog.ID); err != nil {
				return err
			}

			risk := models.Risk{
				OrganizationID: org.ID,
				CatalogID:      catalog.ID,
				Name:           row.Name,
				Description:    row.Desc,
				Category:       row.Category,
			}
			if err := tx.Create(&risk).Error; err != nil {
				return err
			}

			entry, err := assessment.CreateEntry(tx, round.ID, asset.ID, risk.ID)
			if err != nil {
				return err
			}
			if err := assessment.SetLikelihood(tx, entry.ID, row.Likelihood); err != nil {
				return err
			}
			if err := assessment.SetImpact(tx, entry.ID, row.Impact); err != nil {
				return err
			}
		}

		log.Printf("populated risk catalog %q with %d risks", catalog.Name, len(rows))
		return nil
	})
	if err != nil {
		// скорее всего нарушение уникальности: риск/актив с таким именем
		// уже есть в организации
		log.Fatalf("import aborted, nothing committed: %v", err)
	}
}

func getOrCreateAsset(tx *gorm.DB, orgID, name string) (*models.Asset, error) {
	var asset models.Asset
	err := tx.Scopes(models.NotDeleted).
		Where("organization_id = ? AND name = ?", orgID, name).
		First(&asset).Error
	if err == nil {
		return &asset, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	asset = models.Asset{OrganizationID: orgID, Name: name}
	if err := tx.Create(&asset).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

func readRisks(file, sheet string) ([]riskRow, error) {
	wb, err := excelize.OpenFile(file)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, err
	}

	var (
		out             []riskRow
		currentCategory string
	)

	// шапка занимает первые две строки
	for i, row := range rows {
		if i < 2 {
			continue
		}

		nr := cell(row, 0)
		name := cell(row, 1)

		if nr == "" && name == "" {
			continue
		}
		if nr == "" && name != "" {
			currentCategory = name
			continue
		}

		likelihood, err1 := strconv.Atoi(cell(row, 7))
		impact, err2 := strconv.Atoi(cell(row, 8))
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("row %d: likelihood/impact is not a number", i+1)
		}

		out = append(out, riskRow{
			Name:       name,
			Category:   currentCategory,
			AssetName:  cell(row, 2),
			Desc:       cell(row, 3),
			Likelihood: likelihood,
			Impact:     impact,
		})
	}

	return out, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
