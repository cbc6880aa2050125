package plot

import (
	"fmt"
	"time"

	"csi-monitor/internal/config"
	"csi-monitor/internal/render"
)

// chartInterval throttles PNG re-rendering; the files are polled by an
// external viewer, so sub-second updates are wasted work.
const chartInterval = time.Second

// ForConfig builds the presenter for the configured output mode.
func ForConfig(cfg *config.RenderConfig) (render.Presenter, error) {
	switch cfg.Output {
	case "term":
		return NewTerm(cfg.Width, cfg.Height), nil
	case "png":
		return NewChart(cfg.PNGDir, chartInterval), nil
	case "quiet":
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("invalid output mode: %s (must be 'term', 'png' or 'quiet')", cfg.Output)
	}
}
