// Package matrix строит данные для тепловой матрицы рисков 5x5.
// Рисованием занимается внешний чартинг; здесь только структура:
// клетки с цветами и точки с подписями.
package matrix

import "math/rand"

type Severity string

const (
	SeverityLow    Severity = "green"
	SeverityMedium Severity = "yellow"
	SeverityHigh   Severity = "red"
)

// Разбиение 25 индексов сетки по зонам — фиксированная константа дизайна.
// Индексация row-major сверху вниз: строка 0 — impact 5, строка 4 — impact 1;
// колонки — likelihood 1..5 слева направо.
var cellSeverity = map[int]Severity{
	0: SeverityMedium, 1: SeverityMedium, 2: SeverityHigh, 3: SeverityHigh, 4: SeverityHigh,
	5: SeverityMedium, 6: SeverityMedium, 7: SeverityMedium, 8: SeverityHigh, 9: SeverityHigh,
	10: SeverityLow, 11: SeverityMedium, 12: SeverityMedium, 13: SeverityMedium, 14: SeverityHigh,
	15: SeverityLow, 16: SeverityLow, 17: SeverityMedium, 18: SeverityMedium, 19: SeverityMedium,
	20: SeverityLow, 21: SeverityLow, 22: SeverityLow, 23: SeverityMedium, 24: SeverityMedium,
}

// CellSeverity — зона клетки по индексу 0..24.
func CellSeverity(index int) Severity {
	return cellSeverity[index]
}

// Entry — вход рендера: номер для подписи и оценки (nil — не оценено).
type Entry struct {
	Nr         int
	Name       string
	Impact     *int
	Likelihood *int
}

type Cell struct {
	Index    int      `json:"index"`
	Row      int      `json:"row"` // 0 сверху (impact 5) .. 4 снизу (impact 1)
	Col      int      `json:"col"` // 0 слева (likelihood 1) .. 4 справа (likelihood 5)
	Severity Severity `json:"severity"`
}

type Point struct {
	Nr         int     `json:"nr"`
	Label      string  `json:"label"`
	X          float64 `json:"x"` // col + jitter, jitter в (0.1, 0.9)
	Y          float64 `json:"y"` // row + jitter
	Impact     int     `json:"impact"`
	Likelihood int     `json:"likelihood"`
}

type Description struct {
	Cells  []Cell  `json:"cells"`
	Points []Point `json:"points"`
	XLabel string  `json:"x_label"`
	YLabel string  `json:"y_label"`
}

// Render раскладывает записи по сетке. Источник случайности для джиттера
// передаётся явно, чтобы тесты могли подсунуть детерминированный.
// Записи без impact или likelihood не рисуются вовсе.
func Render(entries []Entry, rng *rand.Rand) Description {
	desc := Description{
		Cells:  make([]Cell, 0, 25),
		Points: make([]Point, 0, len(entries)),
		XLabel: "Likelihood",
		YLabel: "Impact",
	}

	for index := 0; index < 25; index++ {
		desc.Cells = append(desc.Cells, Cell{
			Index:    index,
			Row:      index / 5,
			Col:      index % 5,
			Severity: cellSeverity[index],
		})
	}

	for _, e := range entries {
		if e.Impact == nil || e.Likelihood == nil {
			continue
		}
		row := 5 - *e.Impact
		col := *e.Likelihood - 1

		// точка внутри клетки, никогда на границе
		desc.Points = append(desc.Points, Point{
			Nr:         e.Nr,
			Label:      e.Name,
			X:          float64(col) + jitter(rng),
			Y:          float64(row) + jitter(rng),
			Impact:     *e.Impact,
			Likelihood: *e.Likelihood,
		})
	}

	return desc
}

// jitter — равномерно из (0.1, 0.9)
func jitter(rng *rand.Rand) float64 {
	return 0.1 + rng.Float64()*0.8
}
