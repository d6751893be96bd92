package ui

import "testing"

func TestLayersToggle(t *testing.T) {
	layers := AllLayers()
	for l := LayerFill; l < layerCount; l++ {
		if !layers.Visible(l) {
			t.Errorf("expected %s visible by default", l)
		}
	}

	layers.Toggle(LayerStars)
	if layers.Visible(LayerStars) {
		t.Error("expected stars hidden after toggle")
	}
	if !layers.Visible(LayerWire) {
		t.Error("toggling stars must not affect wire")
	}

	layers.Toggle(LayerStars)
	if !layers.Visible(LayerStars) {
		t.Error("expected stars visible after second toggle")
	}

	// Out of range layers are never visible and toggling them is a no-op
	layers.Toggle(Layer(42))
	if layers.Visible(Layer(42)) {
		t.Error("unknown layer reported visible")
	}
	if Layer(42).String() != "unknown" {
		t.Errorf("unexpected name %q", Layer(42).String())
	}
}
