package ui

// Layer identifies one independently drawable part of the scene.
type Layer uint8

const (
	LayerFill Layer = iota
	LayerWire
	LayerStars
	LayerGlow
	layerCount
)

var layerNames = [layerCount]string{"Fill", "Wire", "Stars", "Glow"}

// String returns the button label of the layer.
func (l Layer) String() string {
	if l >= layerCount {
		return "unknown"
	}
	return layerNames[l]
}

// Layers holds the visibility of each layer. The zero value hides everything;
// use AllLayers for the default.
type Layers struct {
	hidden [layerCount]bool
}

// AllLayers returns a layer set with every layer visible.
func AllLayers() Layers {
	return Layers{}
}

// Visible reports whether l is drawn.
func (s *Layers) Visible(l Layer) bool {
	return l < layerCount && !s.hidden[l]
}

// Toggle flips the visibility of l.
func (s *Layers) Toggle(l Layer) {
	if l < layerCount {
		s.hidden[l] = !s.hidden[l]
	}
}
