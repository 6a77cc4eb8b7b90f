package handlers

import (
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"riskmatrix/internal/assessment"
	"riskmatrix/internal/database"
	"riskmatrix/internal/models"

	"github.com/gin-gonic/gin"
)

// ====== РАБОЧИЙ ПРОЦЕСС ОЦЕНКИ ======
// identify -> impact -> likelihood -> matrix -> finish

// IdentifyRisks — записи текущего открытого раунда.
func IdentifyRisks(c *gin.Context) {
	round, entries, ok := openRoundEntries(c)
	if !ok {
		return
	}

	render(c, http.StatusOK, "assessment_identify.html", gin.H{
		"round":   round,
		"entries": entries,
		"role":    string(sessionRole(c)),
	})
}

func AssessImpact(c *gin.Context) {
	round, entries, ok := openRoundEntries(c)
	if !ok {
		return
	}

	render(c, http.StatusOK, "assessment_impact.html", gin.H{
		"round":   round,
		"entries": entries,
		"levels":  []int{1, 2, 3, 4, 5},
	})
}

func AssessLikelihood(c *gin.Context) {
	round, entries, ok := openRoundEntries(c)
	if !ok {
		return
	}

	render(c, http.StatusOK, "assessment_likelihood.html", gin.H{
		"round":   round,
		"entries": entries,
		"levels":  []int{1, 2, 3, 4, 5},
	})
}

func openRoundEntries(c *gin.Context) (*models.AssessmentRound, []models.AssessmentEntry, bool) {
	round, err := assessment.OpenRound(database.DB, sessionOrgID(c))
	if err != nil {
		c.String(http.StatusInternalServerError, "Ошибка открытия раунда")
		return nil, nil, false
	}

	var entries []models.AssessmentEntry
	database.DB.
		Preload("Risk").
		Preload("Asset").
		Where("round_id = ?", round.ID).
		Find(&entries)

	return round, entries, true
}

// ====== XHR: выставление оценок ======

// SetImpact — POST /assessments/:id/impact/:level
func SetImpact(c *gin.Context) {
	setLevel(c, "impact")
}

// SetLikelihood — POST /assessments/:id/likelihood/:level
func SetLikelihood(c *gin.Context) {
	setLevel(c, "likelihood")
}

func setLevel(c *gin.Context, field string) {
	entry, ok := orgEntry(c)
	if !ok {
		return
	}

	// невалидную строку приводим к заведомо недопустимому уровню,
	// чтобы ответ был полевой ошибкой, а не ошибкой парсинга
	level, err := strconv.Atoi(c.Param("level"))
	if err != nil {
		level = 0
	}

	if field == "impact" {
		err = assessment.SetImpact(database.DB, entry.ID, level)
	} else {
		err = assessment.SetLikelihood(database.DB, entry.ID, level)
	}

	if err != nil {
		var ve *assessment.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
			return
		}
		if errors.Is(err, assessment.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "запись не найдена"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ошибка сохранения оценки"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": ""})
}

// orgEntry — запись оценки, принадлежащая организации текущего пользователя.
func orgEntry(c *gin.Context) (*models.AssessmentEntry, bool) {
	entry, err := assessment.GetEntry(database.DB, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "запись не найдена"})
		return nil, false
	}
	if entry.Risk.OrganizationID != sessionOrgID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "доступ запрещён"})
		return nil, false
	}
	return entry, true
}

// ====== МАТРИЦА ======

func RiskMatrixPage(c *gin.Context) {
	round, err := assessment.OpenRound(database.DB, sessionOrgID(c))
	if err != nil {
		c.String(http.StatusInternalServerError, "Ошибка открытия раунда")
		return
	}

	render(c, http.StatusOK, "assessment_matrix.html", gin.H{
		"round": round,
	})
}

// MatrixJSON — GET /rounds/:id/matrix.json: клетки + точки для чартинга.
func MatrixJSON(c *gin.Context) {
	round, ok := orgRound(c)
	if !ok {
		return
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	desc, err := assessment.MatrixData(database.DB, round.ID, rng)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ошибка построения матрицы"})
		return
	}

	c.JSON(http.StatusOK, desc)
}

// ====== ИСТОРИЯ И ЗАКРЫТИЕ РАУНДОВ ======

func RoundHistory(c *gin.Context) {
	order := assessment.NewestFirst
	if c.Query("order") == "oldest" {
		order = assessment.OldestFirst
	}

	rounds, err := assessment.ListRounds(database.DB, sessionOrgID(c), order)
	if err != nil {
		c.String(http.StatusInternalServerError, "Ошибка загрузки раундов")
		return
	}

	render(c, http.StatusOK, "rounds_list.html", gin.H{
		"rounds": rounds,
		"role":   string(sessionRole(c)),
	})
}

func ShowFinishRound(c *gin.Context) {
	rounds, err := assessment.ListRounds(database.DB, sessionOrgID(c), assessment.NewestFirst)
	if err != nil {
		c.String(http.StatusInternalServerError, "Ошибка загрузки раундов")
		return
	}

	render(c, http.StatusOK, "round_finish.html", gin.H{
		"rounds": rounds,
		"error":  "",
	})
}

// FinishRound закрывает открытый раунд и раскатывает следующий.
func FinishRound(c *gin.Context) {
	orgID := sessionOrgID(c)

	displayName := strings.TrimSpace(c.PostForm("display_name"))

	finishedAt := time.Now().UTC()
	if raw := c.PostForm("end"); raw != "" {
		// формат datetime-local
		if t, err := time.Parse("2006-01-02T15:04", raw); err == nil {
			finishedAt = t.UTC()
		}
	}

	next, err := assessment.CloseAndRollForward(database.DB, orgID, displayName, finishedAt)
	if err != nil {
		var ce *assessment.ConsistencyError
		if errors.As(err, &ce) {
			render(c, http.StatusBadRequest, "round_finish.html", gin.H{
				"error": "Нет открытого раунда для закрытия",
			})
			return
		}
		render(c, http.StatusInternalServerError, "round_finish.html", gin.H{
			"error": "Ошибка закрытия раунда",
		})
		return
	}

	database.CreateAuditLog(sessionUserID(c), orgID, "round", next.ID, "finish_round",
		"Закрыт раунд оценки, открыт новый: "+next.ID)

	c.Redirect(http.StatusFound, "/rounds")
}

// ====== СРАВНЕНИЕ РАУНДОВ ======

// CompareRounds — GET /rounds/compare/:base/:compare
func CompareRounds(c *gin.Context) {
	base, ok := orgRoundByID(c, c.Param("base"))
	if !ok {
		return
	}
	compare, ok := orgRoundByID(c, c.Param("compare"))
	if !ok {
		return
	}

	rows, err := assessment.Compare(database.DB, base.ID, compare.ID)
	if err != nil {
		c.String(http.StatusInternalServerError, "Ошибка сравнения раундов")
		return
	}

	render(c, http.StatusOK, "rounds_compare.html", gin.H{
		"base":    base,
		"compare": compare,
		"rows":    rows,
	})
}

// CompareRoundsJSON — те же строки сравнения, но как JSON для XHR.
func CompareRoundsJSON(c *gin.Context) {
	base, ok := orgRoundByID(c, c.Param("base"))
	if !ok {
		return
	}
	compare, ok := orgRoundByID(c, c.Param("compare"))
	if !ok {
		return
	}

	rows, err := assessment.Compare(database.DB, base.ID, compare.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ошибка сравнения раундов"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

func orgRound(c *gin.Context) (*models.AssessmentRound, bool) {
	return orgRoundByID(c, c.Param("id"))
}

func orgRoundByID(c *gin.Context, id string) (*models.AssessmentRound, bool) {
	round, err := assessment.GetRound(database.DB, id)
	if err != nil {
		c.String(http.StatusNotFound, "Раунд не найден")
		return nil, false
	}
	if round.OrganizationID != sessionOrgID(c) {
		c.String(http.StatusForbidden, "Доступ запрещён")
		return nil, false
	}
	return round, true
}
