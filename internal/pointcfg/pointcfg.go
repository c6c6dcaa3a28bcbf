package pointcfg

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Point пиксельная координата точки измерения на скриншоте
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ConfigError ошибка конфигурации точек измерения.
// Возникает при отсутствующих ключах или некорректной структуре,
// всегда поднимается вызывающему и никогда не заменяется значением по умолчанию.
type ConfigError struct {
	Reason string
}

// Error возвращает текст ошибки
func (e *ConfigError) Error() string {
	return e.Reason
}

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// PointSet набор точек измерения улицы.
// Поддерживаются две сосуществующие схемы конфигурации:
// плоский список точек либо именованные списки по направлениям ("to"/"from").
type PointSet struct {
	flat  []Point
	named map[string][]Point
	order []string
}

// FlatPoints создает набор из плоского списка точек
func FlatPoints(points []Point) PointSet {
	return PointSet{flat: points}
}

// NamedPointSets создает набор из именованных списков точек
func NamedPointSets(lists map[string][]Point) PointSet {
	order := make([]string, 0, len(lists))
	for name := range lists {
		order = append(order, name)
	}
	sort.Strings(order)
	return PointSet{named: lists, order: order}
}

// IsNamed сообщает, состоит ли набор из именованных списков
func (ps PointSet) IsNamed() bool {
	return ps.named != nil
}

// IsEmpty сообщает, пуст ли набор
func (ps PointSet) IsEmpty() bool {
	return len(ps.flat) == 0 && len(ps.named) == 0
}

// ListNames возвращает имена списков точек.
// Для плоского набора возвращается один пустой идентификатор.
func (ps PointSet) ListNames() []string {
	if ps.named == nil {
		return []string{""}
	}
	names := make([]string, len(ps.order))
	copy(names, ps.order)
	return names
}

// List возвращает список точек по имени.
// Для плоского набора допустимо только пустое имя.
func (ps PointSet) List(name string) ([]Point, error) {
	if ps.named == nil {
		if name != "" {
			return nil, configErrorf("набор точек плоский, именованный список %q не существует", name)
		}
		return ps.flat, nil
	}
	points, ok := ps.named[name]
	if !ok {
		return nil, configErrorf("именованный список точек %q не найден", name)
	}
	return points, nil
}

// MaxLen возвращает длину самого большого списка точек в наборе
func (ps PointSet) MaxLen() int {
	if ps.named == nil {
		return len(ps.flat)
	}
	maxLen := 0
	for _, points := range ps.named {
		if len(points) > maxLen {
			maxLen = len(points)
		}
	}
	return maxLen
}

// Street конфигурация одной улицы: URL камеры и точки измерения
type Street struct {
	URL    string
	Points PointSet
}

// Config конфигурация мониторинга: локация -> улица -> точки измерения.
// Структура только читается; её изменяет внешний инструмент выбора точек.
type Config map[string]map[string]Street

// Load загружает конфигурацию из TOML файла и нормализует обе схемы точек
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw map[string]map[string]map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := make(Config, len(raw))
	for location, streets := range raw {
		cfg[location] = make(map[string]Street, len(streets))
		for street, table := range streets {
			normalized, err := normalizeStreet(table)
			if err != nil {
				return nil, configErrorf("улица %s/%s: %v", location, street, err)
			}
			cfg[location][street] = normalized
		}
	}

	return cfg, nil
}

// normalizeStreet приводит таблицу улицы к единому представлению PointSet.
// Поддерживаются: плоский массив points, таблица points с именованными
// списками и устаревшие ключи вида points_to / points_from.
func normalizeStreet(table map[string]any) (Street, error) {
	street := Street{}
	if url, ok := table["url"].(string); ok {
		street.URL = url
	}

	var flat []Point
	named := map[string][]Point{}

	for key, value := range table {
		switch {
		case key == "points":
			switch v := value.(type) {
			case []any:
				points, err := parsePointList(v)
				if err != nil {
					return Street{}, fmt.Errorf("ключ points: %w", err)
				}
				flat = points
			case map[string]any:
				for name, listValue := range v {
					list, ok := listValue.([]any)
					if !ok {
						return Street{}, configErrorf("ключ points.%s не является списком точек", name)
					}
					points, err := parsePointList(list)
					if err != nil {
						return Street{}, fmt.Errorf("ключ points.%s: %w", name, err)
					}
					named[name] = points
				}
			default:
				return Street{}, configErrorf("ключ points имеет неподдерживаемый тип %T", value)
			}
		case strings.HasPrefix(key, "points_"):
			name := strings.TrimPrefix(key, "points_")
			list, ok := value.([]any)
			if !ok {
				return Street{}, configErrorf("ключ %s не является списком точек", key)
			}
			points, err := parsePointList(list)
			if err != nil {
				return Street{}, fmt.Errorf("ключ %s: %w", key, err)
			}
			named[name] = points
		}
	}

	if flat != nil && len(named) > 0 {
		return Street{}, configErrorf("смешение схем: одновременно заданы плоский список points и именованные списки")
	}

	switch {
	case len(named) > 0:
		street.Points = NamedPointSets(named)
	case flat != nil:
		street.Points = FlatPoints(flat)
	}

	return street, nil
}

// parsePointList преобразует TOML массив пар [x, y] в список точек
func parsePointList(list []any) ([]Point, error) {
	points := make([]Point, 0, len(list))
	for i, item := range list {
		pair, ok := item.([]any)
		if !ok || len(pair) != 2 {
			return nil, configErrorf("точка %d не является парой [x, y]", i)
		}
		x, okX := pair[0].(int64)
		y, okY := pair[1].(int64)
		if !okX || !okY {
			return nil, configErrorf("точка %d содержит нецелые координаты", i)
		}
		if x < 0 || y < 0 {
			return nil, configErrorf("точка %d содержит отрицательные координаты (%d, %d)", i, x, y)
		}
		points = append(points, Point{X: int(x), Y: int(y)})
	}
	return points, nil
}

// Lookup возвращает конфигурацию улицы по локации и названию
func (c Config) Lookup(location, street string) (Street, error) {
	streets, ok := c[location]
	if !ok {
		return Street{}, configErrorf("локация %q не найдена в конфигурации", location)
	}
	s, ok := streets[street]
	if !ok {
		return Street{}, configErrorf("улица %q не найдена в локации %q", street, location)
	}
	return s, nil
}

// PointList возвращает список точек измерения для выбранной улицы.
// Пустое имя списка означает плоский набор точек.
func (c Config) PointList(location, street, list string) ([]Point, error) {
	s, err := c.Lookup(location, street)
	if err != nil {
		return nil, err
	}
	if s.Points.IsEmpty() {
		return nil, configErrorf("у улицы %s/%s не заданы точки измерения", location, street)
	}
	return s.Points.List(list)
}

// MaxPoints находит максимальное число точек измерения по всей конфигурации.
// Возвращает количество точек, локацию и улицу с максимумом.
// Максимум определяет общую ширину таблицы результатов.
func (c Config) MaxPoints() (int, string, string) {
	maxPoints := 0
	maxLocation := ""
	maxStreet := ""
	for _, location := range c.Locations() {
		streets, _ := c.Streets(location)
		for _, street := range streets {
			n := c[location][street].Points.MaxLen()
			if n > maxPoints {
				maxPoints = n
				maxLocation = location
				maxStreet = street
			}
		}
	}
	return maxPoints, maxLocation, maxStreet
}

// Locations возвращает отсортированный список локаций
func (c Config) Locations() []string {
	locations := make([]string, 0, len(c))
	for location := range c {
		locations = append(locations, location)
	}
	sort.Strings(locations)
	return locations
}

// Streets возвращает отсортированный список улиц локации
func (c Config) Streets(location string) ([]string, error) {
	streets, ok := c[location]
	if !ok {
		return nil, configErrorf("локация %q не найдена в конфигурации", location)
	}
	names := make([]string, 0, len(streets))
	for street := range streets {
		names = append(names, street)
	}
	sort.Strings(names)
	return names, nil
}
