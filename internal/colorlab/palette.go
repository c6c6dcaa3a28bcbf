package colorlab

// Названия цветов состояния трафика
const (
	ColorDarkRed = "darkred"
	ColorRed     = "red"
	ColorOrange  = "orange"
	ColorGreen   = "green"
	ColorGrey    = "grey"
)

// GreySentinel цвет-заглушка для отсутствующих точек измерения
var GreySentinel = RGB{R: 128, G: 128, B: 128}

// ReferenceColor именованный эталонный цвет палитры
// с заранее вычисленными координатами L*a*b*
type ReferenceColor struct {
	Name string
	RGB  RGB
	L    float64
	A    float64
	B    float64
}

// Palette упорядоченная палитра эталонных цветов состояния трафика.
// Координаты L*a*b* вычисляются один раз при создании, после чего палитра
// не изменяется и безопасна для одновременного чтения.
type Palette struct {
	colors []ReferenceColor
}

// defaultColors эталонные цвета карты трафика.
// Порядок фиксирован: он определяет разрешение ничьих при классификации.
var defaultColors = []struct {
	name string
	rgb  RGB
}{
	{ColorDarkRed, RGB{R: 129, G: 31, B: 31}},
	{ColorRed, RGB{R: 242, G: 60, B: 50}},
	{ColorOrange, RGB{R: 255, G: 151, B: 77}},
	{ColorGreen, RGB{R: 99, G: 214, B: 104}},
	{ColorGrey, GreySentinel},
}

// NewPalette создает палитру эталонных цветов трафика
func NewPalette(converter *Converter) *Palette {
	colors := make([]ReferenceColor, 0, len(defaultColors))
	for _, dc := range defaultColors {
		l, a, b := converter.Lab(dc.rgb)
		colors = append(colors, ReferenceColor{
			Name: dc.name,
			RGB:  dc.rgb,
			L:    l,
			A:    a,
			B:    b,
		})
	}
	return &Palette{colors: colors}
}

// Colors возвращает копию списка эталонных цветов в порядке палитры
func (p *Palette) Colors() []ReferenceColor {
	colors := make([]ReferenceColor, len(p.colors))
	copy(colors, p.colors)
	return colors
}

// Len возвращает количество цветов в палитре
func (p *Palette) Len() int {
	return len(p.colors)
}
