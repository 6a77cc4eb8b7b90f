package assessment

import (
	"testing"
	"time"

	"riskmatrix/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncAssetEntries_CreatesForLinkedCatalogs(t *testing.T) {
	db := testDB(t)
	f := newFixture(t, db)

	round := openWithEntries(t, db, f)

	entries := roundEntriesByRisk(t, db, round.ID)
	require.Len(t, entries, 2)
	_, hasR1 := entries[f.risk1.ID]
	_, hasR2 := entries[f.risk2.ID]
	assert.True(t, hasR1)
	assert.True(t, hasR2)
}

func TestSyncAssetEntries_RemovesUntouchedOnUnlink(t *testing.T) {
	db := testDB(t)
	f := newFixture(t, db)

	round := openWithEntries(t, db, f)

	// R1 тронут оценщиком, R2 — пустая заготовка
	r1 := roundEntriesByRisk(t, db, round.ID)[f.risk1.ID]
	require.NoError(t, SetLikelihood(db, r1.ID, 2))

	require.NoError(t, f.asset.UnlinkCatalog(db, f.catalog.ID))
	require.NoError(t, SyncAssetEntries(db, &f.asset))

	entries := roundEntriesByRisk(t, db, round.ID)
	// тронутая запись остаётся, пустая удалена
	require.Len(t, entries, 1)
	_, ok := entries[f.risk1.ID]
	assert.True(t, ok)
}

func TestSyncAssetEntries_TouchesOnlyOpenRound(t *testing.T) {
	db := testDB(t)
	f := newFixture(t, db)

	first := openWithEntries(t, db, f)
	_, err := CloseAndRollForward(db, f.org.ID, "Q1", time.Time{})
	require.NoError(t, err)

	// правка каталогов актива после закрытия не трогает старый раунд
	require.NoError(t, f.asset.UnlinkCatalog(db, f.catalog.ID))
	require.NoError(t, SyncAssetEntries(db, &f.asset))

	oldEntries := roundEntriesByRisk(t, db, first.ID)
	assert.Len(t, oldEntries, 2)

	open, err := OpenRound(db, f.org.ID)
	require.NoError(t, err)
	assert.Len(t, roundEntriesByRisk(t, db, open.ID), 0)
}

func TestSyncAssetEntries_IgnoresDeletedCatalog(t *testing.T) {
	db := testDB(t)
	f := newFixture(t, db)

	round := openWithEntries(t, db, f)

	// R1 тронут до удаления каталога, R2 — пустая заготовка
	r1 := roundEntriesByRisk(t, db, round.ID)[f.risk1.ID]
	require.NoError(t, SetImpact(db, r1.ID, 2))

	// каталог удалён посреди раунда, связь актив-каталог осталась
	require.NoError(t, f.catalog.SoftDelete(db))
	require.NoError(t, SyncAssetEntries(db, &f.asset))

	entries := roundEntriesByRisk(t, db, round.ID)
	require.Len(t, entries, 1)
	_, ok := entries[f.risk1.ID]
	assert.True(t, ok)

	// закрытие раунда видит граф так же, как синхронизация
	next, err := CloseAndRollForward(db, f.org.ID, "Q1", time.Time{})
	require.NoError(t, err)
	assert.Len(t, roundEntriesByRisk(t, db, next.ID), 0)
}

func TestSyncAssetEntries_AddsNewRiskMidRound(t *testing.T) {
	db := testDB(t)
	f := newFixture(t, db)

	round := openWithEntries(t, db, f)

	// новый риск добавили в каталог посреди раунда
	risk3 := models.Risk{OrganizationID: f.org.ID, CatalogID: f.catalog.ID, Name: "R3"}
	require.NoError(t, db.Create(&risk3).Error)

	require.NoError(t, SyncAssetEntries(db, &f.asset))

	entries := roundEntriesByRisk(t, db, round.ID)
	require.Len(t, entries, 3)
	_, ok := entries[risk3.ID]
	assert.True(t, ok)
}
