package tour

import (
	"context"
	"math"
	"time"

	"github.com/cjeanneret/PanoMark/internal/debug"
	"github.com/cjeanneret/PanoMark/internal/viewer"
)

// Sequence contains high-level logic for scripted viewer movements
// (orbits, pitch sweeps, guided tours). Every step it takes fires the
// viewer's change events, so bound markers re-project along the way.
type Sequence struct {
	pano *viewer.Panorama
}

func NewSequence(p *viewer.Panorama) *Sequence {
	return &Sequence{pano: p}
}

// Params defines a full-circle orbit with an optional vertical sweep at
// each stop.
type Params struct {
	PanStepDeg   float64       // heading increment between stops; <= 0 defaults to 30
	PitchMinDeg  float64       // lower bound of the vertical sweep
	PitchMaxDeg  float64       // upper bound of the vertical sweep
	PitchStepDeg float64       // vertical increment; <= 0 disables the sweep
	StepDelay    time.Duration // pause after each stop
	Zoom         float64       // zoom applied before the orbit; < 0 keeps the current zoom
}

// RunOrbit sweeps the viewer through a full 360° orbit in serpentine
// fashion: at each heading stop the pitch runs top to bottom, at the next
// one bottom to top, and so on. It starts from the viewer's current heading
// and checks ctx between steps.
func (s *Sequence) RunOrbit(ctx context.Context, p Params) error {
	panStep := p.PanStepDeg
	if panStep <= 0 {
		panStep = 30
	}

	pitches := sweepPitches(p)
	stops := int(math.Ceil(360 / panStep))
	startHeading := s.pano.View().Heading

	if p.Zoom >= 0 {
		s.pano.SetZoom(p.Zoom)
	}

	debug.Section("Starting Orbit")
	debug.Value("Heading stops", stops)
	debug.Value("Pitch levels", len(pitches))

	for stop := 0; stop < stops; stop++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		heading := startHeading + float64(stop)*panStep

		// Alternate the vertical direction per stop (even = top to
		// bottom, odd = bottom to top).
		order := pitches
		if stop%2 == 1 {
			order = reversed(pitches)
		}

		debug.Live("Orbit stop %d/%d: heading=%.1f°", stop+1, stops, heading)

		for _, pitch := range order {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			s.pano.LookAt(heading, pitch)
			if p.StepDelay > 0 {
				time.Sleep(p.StepDelay)
			}
		}
	}

	debug.Section("Orbit Complete")
	return nil
}

// sweepPitches builds the top-to-bottom pitch levels for one stop. Without
// a usable step the sweep collapses to the single PitchMinDeg level.
func sweepPitches(p Params) []float64 {
	if p.PitchStepDeg <= 0 || p.PitchMaxDeg <= p.PitchMinDeg {
		return []float64{p.PitchMinDeg}
	}

	var pitches []float64
	for pitch := p.PitchMaxDeg; pitch >= p.PitchMinDeg; pitch -= p.PitchStepDeg {
		pitches = append(pitches, pitch)
	}
	return pitches
}

func reversed(in []float64) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
