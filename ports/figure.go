package ports

import (
	"centival/domain/cohort"
)

// ScatterPanel is one computed-vs-reference panel of the diagnostic figure
type ScatterPanel struct {
	Pair   cohort.MetricPair
	X      []float64
	Y      []float64
	Result cohort.CorrelationResult
}

// FigureRendererPort writes the diagnostic figure as a single raster image.
// Implementations must not leave a partial file at path on failure.
type FigureRendererPort interface {
	Render(path string, panels []ScatterPanel, caption string) error
}
