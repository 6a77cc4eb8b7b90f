package matrix

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func TestCellSeverity_CoversAllCellsExactlyOnce(t *testing.T) {
	counts := map[Severity]int{}
	for index := 0; index < 25; index++ {
		sev := CellSeverity(index)
		require.Contains(t, []Severity{SeverityLow, SeverityMedium, SeverityHigh}, sev,
			"cell %d must belong to a zone", index)
		counts[sev]++
	}

	assert.Equal(t, 25, counts[SeverityLow]+counts[SeverityMedium]+counts[SeverityHigh])
	assert.Equal(t, 6, counts[SeverityLow])
	assert.Equal(t, 13, counts[SeverityMedium])
	assert.Equal(t, 6, counts[SeverityHigh])
}

func TestRender_CellsGrid(t *testing.T) {
	desc := Render(nil, rand.New(rand.NewSource(1)))

	require.Len(t, desc.Cells, 25)
	for i, cell := range desc.Cells {
		assert.Equal(t, i, cell.Index)
		assert.Equal(t, i/5, cell.Row)
		assert.Equal(t, i%5, cell.Col)
		assert.Equal(t, CellSeverity(i), cell.Severity)
	}
}

func TestRender_PointPlacement(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	entries := []Entry{
		{Nr: 1, Name: "R1", Impact: intp(5), Likelihood: intp(1)}, // верхняя левая клетка
		{Nr: 2, Name: "R2", Impact: intp(1), Likelihood: intp(5)}, // нижняя правая
		{Nr: 3, Name: "R3", Impact: intp(3), Likelihood: intp(3)},
	}

	desc := Render(entries, rng)
	require.Len(t, desc.Points, 3)

	// точка лежит строго внутри своей клетки, не на границе
	for _, p := range desc.Points {
		row := 5 - p.Impact
		col := p.Likelihood - 1
		assert.Greater(t, p.X, float64(col)+0.1-1e-9)
		assert.Less(t, p.X, float64(col)+0.9)
		assert.Greater(t, p.Y, float64(row)+0.1-1e-9)
		assert.Less(t, p.Y, float64(row)+0.9)
	}

	assert.Equal(t, 0.0, float64(5-*entries[0].Impact)) // impact 5 -> строка 0
	assert.Equal(t, "R1", desc.Points[0].Label)
}

func TestRender_Deterministic(t *testing.T) {
	entries := []Entry{
		{Nr: 1, Name: "R1", Impact: intp(2), Likelihood: intp(4)},
		{Nr: 2, Name: "R2", Impact: intp(2), Likelihood: intp(4)},
	}

	a := Render(entries, rand.New(rand.NewSource(7)))
	b := Render(entries, rand.New(rand.NewSource(7)))
	assert.Equal(t, a, b)

	// две записи в одной клетке расходятся за счёт джиттера
	require.Len(t, a.Points, 2)
	assert.NotEqual(t, a.Points[0].X, a.Points[1].X)
}

func TestRender_SkipsUnscoredEntries(t *testing.T) {
	entries := []Entry{
		{Nr: 1, Name: "scored", Impact: intp(3), Likelihood: intp(2)},
		{Nr: 2, Name: "no likelihood", Impact: intp(3)},
		{Nr: 3, Name: "no impact", Likelihood: intp(2)},
		{Nr: 4, Name: "empty"},
	}

	desc := Render(entries, rand.New(rand.NewSource(1)))

	// записи без обеих оценок не рисуются вовсе, без дефолтных позиций
	require.Len(t, desc.Points, 1)
	assert.Equal(t, 1, desc.Points[0].Nr)
}
