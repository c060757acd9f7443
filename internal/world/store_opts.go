package world

type loadOptions struct {
	fill string
}

type LoadOpt func(*loadOptions)

// WithFill sets the terrain used to pad incomplete room grids on load.
func WithFill(terrain string) LoadOpt {
	return func(o *loadOptions) {
		o.fill = terrain
	}
}
