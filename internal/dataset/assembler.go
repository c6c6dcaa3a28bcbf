package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"traffic-monitor-go/internal/colorlab"
	"traffic-monitor-go/internal/sampler"
)

// csvTimestampLayout формат временной метки в CSV выгрузке
const csvTimestampLayout = "2006-01-02 15:04:05"

// PointCell значения одной точки измерения в строке таблицы
type PointCell struct {
	Color        colorlab.RGB `json:"color"`
	TrafficColor string       `json:"traffic_color"`
	Distance     float64      `json:"distance"`
	Padded       bool         `json:"padded"`
}

// Row одна строка таблицы: один скриншот одной улицы
type Row struct {
	Location  string      `json:"location"`
	Street    string      `json:"street"`
	PointList string      `json:"point_list,omitempty"`
	Path      string      `json:"path"`
	Timestamp time.Time   `json:"timestamp"`
	Points    []PointCell `json:"points"`
}

// Table таблица результатов фиксированной ширины.
// Каждая строка содержит ровно MaxPoints групп колонок;
// недостающие точки заполнены серой заглушкой.
type Table struct {
	MaxPoints int   `json:"max_points"`
	Rows      []Row `json:"rows"`
}

// Columns возвращает детерминированные позиционные названия колонок
func (t *Table) Columns() []string {
	columns := []string{"location", "street", "path", "timestamp"}
	for i := 0; i < t.MaxPoints; i++ {
		columns = append(columns,
			fmt.Sprintf("color_%d", i),
			fmt.Sprintf("p%d_red", i),
			fmt.Sprintf("p%d_green", i),
			fmt.Sprintf("p%d_blue", i),
			fmt.Sprintf("traffic_color_%d", i),
		)
	}
	return columns
}

// WriteCSV записывает таблицу в широком CSV формате.
// Пустая таблица дает заголовок с полной схемой колонок и ноль строк.
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(t.Columns()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, row := range t.Rows {
		record := []string{
			row.Location,
			row.Street,
			row.Path,
			row.Timestamp.Format(csvTimestampLayout),
		}
		for _, cell := range row.Points {
			record = append(record,
				fmt.Sprintf("(%d,%d,%d)", cell.Color.R, cell.Color.G, cell.Color.B),
				strconv.Itoa(int(cell.Color.R)),
				strconv.Itoa(int(cell.Color.G)),
				strconv.Itoa(int(cell.Color.B)),
				cell.TrafficColor,
			)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// Assembler собирает записи сэмплера в таблицу фиксированной ширины
type Assembler struct {
	maxPoints  int
	classifier *colorlab.Classifier
}

// NewAssembler создает сборщик таблицы.
// maxPoints задает общую схему колонок и берется из максимума
// по всей конфигурации, чтобы таблицы разных улиц были сопоставимы.
func NewAssembler(maxPoints int, classifier *colorlab.Classifier) *Assembler {
	return &Assembler{
		maxPoints:  maxPoints,
		classifier: classifier,
	}
}

// Assemble строит таблицу из записей сэмплера.
// Каждый цвет классифицируется по палитре, недостающие точки дополняются
// серой заглушкой, строки стабильно сортируются по возрастанию временной
// метки. Порядок обхода скриншотов на итог не влияет.
func (a *Assembler) Assemble(shots []sampler.Shot) *Table {
	rows := make([]Row, 0, len(shots))
	for _, shot := range shots {
		points := make([]PointCell, 0, a.maxPoints)
		for _, c := range shot.Colors {
			result := a.classifier.Classify(c)
			points = append(points, PointCell{
				Color:        c,
				TrafficColor: result.Name,
				Distance:     result.Distance,
			})
		}
		for len(points) < a.maxPoints {
			points = append(points, PointCell{
				Color:        colorlab.GreySentinel,
				TrafficColor: colorlab.ColorGrey,
				Padded:       true,
			})
		}

		rows = append(rows, Row{
			Location:  shot.Location,
			Street:    shot.Street,
			PointList: shot.PointList,
			Path:      shot.Path,
			Timestamp: shot.Timestamp,
			Points:    points,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Timestamp.Before(rows[j].Timestamp)
	})

	return &Table{
		MaxPoints: a.maxPoints,
		Rows:      rows,
	}
}

// Summary сводная статистика по таблице результатов
type Summary struct {
	TotalRows      int            `json:"total_rows"`
	SampledCells   int            `json:"sampled_cells"`
	ColorCounts    map[string]int `json:"color_counts"`
	CongestedShare float64        `json:"congested_share"`
}

// Summarize считает распределение цветов трафика по заполненным ячейкам.
// Доля затора учитывает цвета red и darkred.
func Summarize(t *Table) Summary {
	summary := Summary{
		TotalRows:   len(t.Rows),
		ColorCounts: map[string]int{},
	}

	congested := 0
	for _, row := range t.Rows {
		for _, cell := range row.Points {
			if cell.Padded {
				continue
			}
			summary.SampledCells++
			summary.ColorCounts[cell.TrafficColor]++
			if cell.TrafficColor == colorlab.ColorRed || cell.TrafficColor == colorlab.ColorDarkRed {
				congested++
			}
		}
	}

	if summary.SampledCells > 0 {
		summary.CongestedShare = float64(congested) / float64(summary.SampledCells)
	}
	return summary
}
