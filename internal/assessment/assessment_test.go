package assessment

import (
	"encoding/json"
	"testing"
	"time"

	"riskmatrix/internal/database"
	"riskmatrix/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// фикстура: организация с активом A1, каталогом C1 и рисками R1, R2
type fixture struct {
	org     models.Organization
	asset   models.Asset
	catalog models.RiskCatalog
	risk1   models.Risk
	risk2   models.Risk
}

func newFixture(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()

	f := &fixture{}

	f.org = models.Organization{Name: "ACME", Email: "security@acme.test"}
	require.NoError(t, db.Create(&f.org).Error)

	f.catalog = models.RiskCatalog{OrganizationID: f.org.ID, Name: "C1"}
	require.NoError(t, db.Create(&f.catalog).Error)

	f.asset = models.Asset{OrganizationID: f.org.ID, Name: "A1"}
	require.NoError(t, db.Create(&f.asset).Error)
	require.NoError(t, f.asset.LinkCatalog(db, f.catalog.ID))

	f.risk1 = models.Risk{OrganizationID: f.org.ID, CatalogID: f.catalog.ID, Name: "R1"}
	require.NoError(t, db.Create(&f.risk1).Error)
	f.risk2 = models.Risk{OrganizationID: f.org.ID, CatalogID: f.catalog.ID, Name: "R2"}
	require.NoError(t, db.Create(&f.risk2).Error)

	return f
}

func openWithEntries(t *testing.T, db *gorm.DB, f *fixture) *models.AssessmentRound {
	t.Helper()

	round, err := OpenRound(db, f.org.ID)
	require.NoError(t, err)
	require.NoError(t, SyncAssetEntries(db, &f.asset))
	return round
}

func roundEntriesByRisk(t *testing.T, db *gorm.DB, roundID string) map[string]models.AssessmentEntry {
	t.Helper()

	var entries []models.AssessmentEntry
	require.NoError(t, db.Where("round_id = ?", roundID).Find(&entries).Error)

	byRisk := map[string]models.AssessmentEntry{}
	for _, e := range entries {
		byRisk[e.RiskID] = e
	}
	return byRisk
}

func TestOpenRound_CreatesWhenMissing(t *testing.T) {
	db := testDB(t)
	f := newFixture(t, db)

	round, err := OpenRound(db, f.org.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoundOpen, round.State)
	assert.Nil(t, round.FinishedAt)

	// повторный вызов возвращает тот же раунд, а не плодит новые
	again, err := OpenRound(db, f.org.ID)
	require.NoError(t, err)
	assert.Equal(t, round.ID, again.ID)

	var count int64
	db.Model(&models.AssessmentRound{}).Where("organization_id = ?", f.org.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestSetImpactAndLikelihood_ValidLevels(t *testing.T) {
	db := testDB(t)
	f := newFixture(t, db)
	round := openWithEntries(t, db, f)

	entry := roundEntriesByRisk(t, db, round.ID)[f.risk1.ID]

	for level := 1; level <= 5; level++ {
		require.NoError(t, SetImpact(db, entry.ID, level))
		require.NoError(t, SetLikelihood(db, entry.ID, level))

		got, err := GetEntry(db, entry.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Impact)
		require.NotNil(t, got.Likelihood)
		assert.Equal(t, level, *got.Impact)
		assert.Equal(t, level, *got.Likelihood)
	}
}

func TestSetImpact_RejectsOutOfRange(t *testing.T) {
	db := testDB(t)
	f := newFixture(t, db)
	round := openWithEntries(t, db, f)

	entry := roundEntriesByRisk(t, db, round.ID)[f.risk1.ID]
	require.NoError(t, SetImpact(db, entry.ID, 3))

	for _, level := range []int{0, -1, 6, 42} {
		err := SetImpact(db, entry.ID, level)
		require.Error(t, err)
		assert.True(t, IsValidation(err), "level %d must be a validation error", level)

		err = SetLikelihood(db, entry.ID, level)
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	}

	// прежнее значение не изменилось
	got, err := GetEntry(db, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Impact)
	assert.Equal(t, 3, *got.Impact)
	assert.Nil(t, got.Likelihood)
}

func TestSetImpact_UnknownEntry(t *testing.T) {
	db := testDB(t)

	err := SetImpact(db, "00000000-0000-0000-0000-000000000000", 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateEntry_RejectsForeignOrganization(t *testing.T) {
	db := testDB(t)
	f := newFixture(t, db)
	round := openWithEntries(t, db, f)

	other := models.Organization{Name: "Other", Email: "other@test"}
	require.NoError(t, db.Create(&other).Error)
	foreignAsset := models.Asset{OrganizationID: other.ID, Name: "X1"}
	require.NoError(t, db.Create(&foreignAsset).Error)

	_, err := CreateEntry(db, round.ID, foreignAsset.ID, f.risk1.ID)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestCreateEntry_RejectsDuplicate(t *testing.T) {
	db := testDB(t)
	f := newFixture(t, db)
	round := openWithEntries(t, db, f)

	_, err := CreateEntry(db, round.ID, f.asset.ID, f.risk1.ID)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestCloseAndRollForward_EndToEnd(t *testing.T) {
	db := testDB(t)
	f := newFixture(t, db)
	round := openWithEntries(t, db, f)

	entries := roundEntriesByRisk(t, db, round.ID)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Nil(t, e.Impact)
		assert.Nil(t, e.Likelihood)
	}

	r1 := entries[f.risk1.ID]
	require.NoError(t, SetImpact(db, r1.ID, 3))
	require.NoError(t, SetLikelihood(db, r1.ID, 4))

	finishedAt := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	next, err := CloseAndRollForward(db, f.org.ID, "Q1", finishedAt)
	require.NoError(t, err)
	assert.Equal(t, models.RoundOpen, next.State)
	assert.NotEqual(t, round.ID, next.ID)

	// старый раунд закрыт с именем и датой оператора
	old, err := GetRound(db, round.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoundFinished, old.State)
	assert.Equal(t, "Q1", old.Name)
	require.NotNil(t, old.FinishedAt)
	assert.True(t, old.FinishedAt.Equal(finishedAt))

	// ровно один открытый раунд на организацию
	var open int64
	db.Model(&models.AssessmentRound{}).
		Where("organization_id = ? AND state = ?", f.org.ID, models.RoundOpen).
		Count(&open)
	assert.EqualValues(t, 1, open)

	// снимок отражает значения до закрытия
	oldEntries := roundEntriesByRisk(t, db, round.ID)
	require.NotNil(t, oldEntries[f.risk1.ID].StateAtFinish)
	require.NotNil(t, oldEntries[f.risk2.ID].StateAtFinish)

	var snap map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(*oldEntries[f.risk1.ID].StateAtFinish), &snap))
	assert.EqualValues(t, 3, snap["impact"])
	assert.EqualValues(t, 4, snap["likelihood"])
	assert.Equal(t, "R1", snap["risk"].(map[string]interface{})["name"])
	assert.Equal(t, "A1", snap["asset"].(map[string]interface{})["name"])
	// обратных ссылок в снимке нет
	_, hasOrg := snap["organization"]
	assert.False(t, hasOrg)

	// новый раунд содержит свежие пустые записи для обоих рисков
	newEntries := roundEntriesByRisk(t, db, next.ID)
	require.Len(t, newEntries, 2)
	for _, e := range newEntries {
		assert.Nil(t, e.Impact)
		assert.Nil(t, e.Likelihood)
		assert.Nil(t, e.StateAtFinish)
	}
}

func TestCloseAndRollForward_NoOpenRound(t *testing.T) {
	db := testDB(t)
	f := newFixture(t, db)

	_, err := CloseAndRollForward(db, f.org.ID, "Q1", time.Time{})
	require.Error(t, err)
	assert.True(t, IsConsistency(err))

	// ничего не создано
	var count int64
	db.Model(&models.AssessmentRound{}).Where("organization_id = ?", f.org.ID).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestCloseAndRollForward_SkipsDeletedGraph(t *testing.T) {
	db := testDB(t)
	f := newFixture(t, db)
	openWithEntries(t, db, f)

	// R2 удалён до закрытия: в новом раунде его быть не должно
	require.NoError(t, f.risk2.SoftDelete(db))

	next, err := CloseAndRollForward(db, f.org.ID, "Q2", time.Time{})
	require.NoError(t, err)

	entries := roundEntriesByRisk(t, db, next.ID)
	require.Len(t, entries, 1)
	_, ok := entries[f.risk1.ID]
	assert.True(t, ok)
}

func TestSnapshot_NotOverwrittenBySecondClose(t *testing.T) {
	db := testDB(t)
	f := newFixture(t, db)
	first := openWithEntries(t, db, f)

	r1 := roundEntriesByRisk(t, db, first.ID)[f.risk1.ID]
	require.NoError(t, SetImpact(db, r1.ID, 2))

	_, err := CloseAndRollForward(db, f.org.ID, "Q1", time.Time{})
	require.NoError(t, err)

	before := roundEntriesByRisk(t, db, first.ID)[f.risk1.ID]
	require.NotNil(t, before.StateAtFinish)

	// второе закрытие снимает снимки только с записей нового раунда
	_, err = CloseAndRollForward(db, f.org.ID, "Q2", time.Time{})
	require.NoError(t, err)

	after := roundEntriesByRisk(t, db, first.ID)[f.risk1.ID]
	require.NotNil(t, after.StateAtFinish)
	assert.Equal(t, *before.StateAtFinish, *after.StateAtFinish)
}

func TestRollForward_Completeness(t *testing.T) {
	db := testDB(t)
	f := newFixture(t, db)
	openWithEntries(t, db, f)

	// второй актив без каталогов и каталог, не привязанный к активам
	orphanAsset := models.Asset{OrganizationID: f.org.ID, Name: "A2"}
	require.NoError(t, db.Create(&orphanAsset).Error)

	otherCatalog := models.RiskCatalog{OrganizationID: f.org.ID, Name: "C2"}
	require.NoError(t, db.Create(&otherCatalog).Error)
	outsideRisk := models.Risk{OrganizationID: f.org.ID, CatalogID: otherCatalog.ID, Name: "R3"}
	require.NoError(t, db.Create(&outsideRisk).Error)

	next, err := CloseAndRollForward(db, f.org.ID, "Q1", time.Time{})
	require.NoError(t, err)

	var entries []models.AssessmentEntry
	require.NoError(t, db.Where("round_id = ?", next.ID).Find(&entries).Error)

	// ровно записи для пар (A1,R1) и (A1,R2): R3 вне каталогов актива,
	// A2 не привязан ни к одному каталогу
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, f.asset.ID, e.AssetID)
		assert.Contains(t, []string{f.risk1.ID, f.risk2.ID}, e.RiskID)
	}
}

func TestListRounds_Ordering(t *testing.T) {
	db := testDB(t)
	f := newFixture(t, db)
	openWithEntries(t, db, f)

	_, err := CloseAndRollForward(db, f.org.ID, "Q1", time.Time{})
	require.NoError(t, err)
	_, err = CloseAndRollForward(db, f.org.ID, "Q2", time.Time{})
	require.NoError(t, err)

	newest, err := ListRounds(db, f.org.ID, NewestFirst)
	require.NoError(t, err)
	require.Len(t, newest, 3)

	oldest, err := ListRounds(db, f.org.ID, OldestFirst)
	require.NoError(t, err)
	require.Len(t, oldest, 3)

	assert.Equal(t, newest[0].ID, oldest[2].ID)
	assert.Equal(t, newest[2].ID, oldest[0].ID)
}
