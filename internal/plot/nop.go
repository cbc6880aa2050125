package plot

import "csi-monitor/internal/render"

// Nop discards every frame. Used for headless runs where only ingestion
// and recording matter.
type Nop struct{}

func (Nop) Layout(channels []int) error { return nil }

func (Nop) Update(frame render.Frame) error { return nil }

func (Nop) Close() error { return nil }
