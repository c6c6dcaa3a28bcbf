package colorlab

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB цвет пикселя в 8-битном sRGB представлении
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Converter для колориметрических вычислений
type Converter struct{}

// NewConverter создает новый конвертер
func NewConverter() *Converter {
	return &Converter{}
}

// Lab преобразует sRGB цвет в координаты CIE L*a*b*.
// Цепочка преобразований: обратная гамма sRGB -> CIE XYZ -> L*a*b*
// относительно опорного белого D65. go-colorful считает координаты
// в масштабе 0..1, здесь они приводятся к привычному диапазону L в 0..100,
// чтобы расстояния соответствовали единицам CIE76.
func (c *Converter) Lab(rgb RGB) (l, a, b float64) {
	cc := colorful.Color{
		R: float64(rgb.R) / 255.0,
		G: float64(rgb.G) / 255.0,
		B: float64(rgb.B) / 255.0,
	}
	l, a, b = cc.Lab()
	return l * 100, a * 100, b * 100
}

// Distance вычисляет евклидово расстояние между двумя цветами
// в перцептивном пространстве L*a*b*
func (c *Converter) Distance(first, second RGB) float64 {
	l1, a1, b1 := c.Lab(first)
	l2, a2, b2 := c.Lab(second)
	return labDistance(l1, a1, b1, l2, a2, b2)
}

// labDistance евклидово расстояние между двумя точками пространства L*a*b*
func labDistance(l1, a1, b1, l2, a2, b2 float64) float64 {
	dl := l1 - l2
	da := a1 - a2
	db := b1 - b2
	return math.Sqrt(dl*dl + da*da + db*db)
}
