package assessment

import (
	"math/rand"
	"sort"

	"riskmatrix/internal/matrix"

	"gorm.io/gorm"
)

// MatrixData собирает данные тепловой матрицы раунда. Номера записей —
// по алфавиту имени риска, как в общем списке оценки; записи без
// обеих оценок рендер отбрасывает сам.
func MatrixData(db *gorm.DB, roundID string, rng *rand.Rand) (matrix.Description, error) {
	if _, err := GetRound(db, roundID); err != nil {
		return matrix.Description{}, err
	}

	entries, err := roundEntries(db, roundID)
	if err != nil {
		return matrix.Description{}, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Risk.Name < entries[j].Risk.Name
	})

	items := make([]matrix.Entry, 0, len(entries))
	for i := range entries {
		items = append(items, matrix.Entry{
			Nr:         i + 1,
			Name:       entries[i].Risk.Name,
			Impact:     entries[i].Impact,
			Likelihood: entries[i].Likelihood,
		})
	}

	return matrix.Render(items, rng), nil
}
