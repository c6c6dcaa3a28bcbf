package colorlab

// Classification результат классификации одного цвета.
// Distance неотрицательно; ноль означает точное перцептивное совпадение
// с эталоном, большие значения сигнализируют о растущей неоднозначности.
// Пороговое значение этот пакет не навязывает, его выбирает вызывающий.
type Classification struct {
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
}

// Classifier классификатор цвета трафика методом ближайшего соседа
// в пространстве L*a*b*
type Classifier struct {
	converter *Converter
	palette   *Palette
}

// NewClassifier создает новый классификатор с заданной палитрой
func NewClassifier(converter *Converter, palette *Palette) *Classifier {
	return &Classifier{
		converter: converter,
		palette:   palette,
	}
}

// Classify находит ближайший эталонный цвет палитры.
// Ничья разрешается в пользу более раннего цвета палитры.
// Палитра непуста по построению, поэтому совпадение есть всегда.
func (c *Classifier) Classify(rgb RGB) Classification {
	l, a, b := c.converter.Lab(rgb)

	best := Classification{Distance: -1}
	for _, ref := range c.palette.colors {
		distance := labDistance(l, a, b, ref.L, ref.A, ref.B)
		if best.Distance < 0 || distance < best.Distance {
			best = Classification{Name: ref.Name, Distance: distance}
		}
	}
	return best
}
