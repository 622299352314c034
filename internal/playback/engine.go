package playback

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/xli340/carbn/internal/geo"
	"github.com/xli340/carbn/internal/types"
)

// State is the playback transport state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

const (
	minPlaybackSpeed = 0.5
	maxPlaybackSpeed = 16.0

	// Floor on the effective per-segment duration, so fast-forward cannot
	// collapse a segment below one perceptible frame.
	minEffectiveDurationMs = 80
)

// Frame is one rendered playback step.
type Frame struct {
	Point    types.TrackPoint
	Progress float64
	State    State
	Index    int
}

// Engine replays a discrete track-point sequence as a continuously
// interpolated position stream. Every frame is an explicit Step against a
// caller-supplied clock, which keeps the timing deterministic and testable;
// Run drives Step from a ticker for interactive use.
type Engine struct {
	mu sync.Mutex

	points   []types.TrackPoint
	segments []Segment
	offsets  []float64
	totalMs  float64

	state        State
	speed        float64
	segIndex     int
	segStart     time.Time
	elapsedInSeg time.Duration
	index        int
	current      types.TrackPoint
	hasCurrent   bool
	progress     float64

	onExit func()
}

// NewEngine creates an Engine over the given track. onExit, when non-nil, is
// invoked after Exit resets the engine, so the owner of the track-active flag
// can react. The track is assumed ordered by timestamp ascending.
func NewEngine(points []types.TrackPoint, onExit func()) *Engine {
	e := &Engine{speed: 1, onExit: onExit}
	e.setTrack(points)
	return e
}

// SetTrack replaces the track and resets playback to idle.
func (e *Engine) SetTrack(points []types.TrackPoint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setTrack(points)
}

func (e *Engine) setTrack(points []types.TrackPoint) {
	e.points = points
	e.segments = BuildSegments(points)

	e.offsets = make([]float64, len(e.segments))
	e.totalMs = 0
	for i, seg := range e.segments {
		e.offsets[i] = e.totalMs
		e.totalMs += seg.DurationMs
	}

	e.reset()
}

func (e *Engine) reset() {
	e.state = StateIdle
	e.segIndex = 0
	e.segStart = time.Time{}
	e.elapsedInSeg = 0
	e.index = 0
	e.current = types.TrackPoint{}
	e.hasCurrent = false
	e.progress = 0
}

// Start begins or resumes playback. An empty track is a no-op. A single-point
// track has nothing to animate and completes immediately at 100%. Starting
// from idle or completed restarts from the first point.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.points) == 0 {
		return
	}
	if len(e.points) == 1 {
		e.index = 0
		e.current = e.points[0]
		e.hasCurrent = true
		e.state = StateCompleted
		e.progress = 100
		return
	}

	if e.state == StateIdle || e.state == StateCompleted {
		e.segIndex = 0
		e.segStart = time.Time{}
		e.elapsedInSeg = 0
		e.index = 0
		e.current = e.points[0]
		e.hasCurrent = true
		e.progress = 0
	}
	e.state = StateRunning
}

// Pause suspends playback; only effective while running. Elapsed progress
// within the current segment is carried into the next Start.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateRunning {
		e.state = StatePaused
		e.segStart = time.Time{}
	}
}

// AdjustSpeed offsets the playback speed by delta, rounded to one decimal and
// clamped to [0.5, 16]. The new speed is returned.
func (e *Engine) AdjustSpeed(delta float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := math.Round((e.speed+delta)*10) / 10
	if next < minPlaybackSpeed {
		next = minPlaybackSpeed
	}
	if next > maxPlaybackSpeed {
		next = maxPlaybackSpeed
	}
	e.speed = next
	return next
}

// Exit force-resets the engine to idle, clears all derived playback state and
// notifies the exit callback.
func (e *Engine) Exit() {
	e.mu.Lock()
	e.reset()
	e.speed = 1
	onExit := e.onExit
	e.mu.Unlock()

	if onExit != nil {
		onExit()
	}
}

// Step advances playback one frame against the supplied clock reading. It
// returns true while the engine is still running. Calls in any other state
// are no-ops.
func (e *Engine) Step(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		return false
	}
	if e.segIndex >= len(e.segments) {
		e.complete()
		return false
	}

	if e.segStart.IsZero() {
		e.segStart = now.Add(-e.elapsedInSeg)
	}

	seg := e.segments[e.segIndex]
	effectiveMs := math.Max(minEffectiveDurationMs, seg.DurationMs/math.Max(e.speed, 0.1))
	elapsed := now.Sub(e.segStart)
	t := math.Min(float64(elapsed.Milliseconds())/effectiveMs, 1)

	e.current = interpolate(seg, t)
	e.hasCurrent = true
	e.elapsedInSeg = elapsed

	completedMs := e.offsets[e.segIndex] + seg.DurationMs*t
	if ratio := completedMs / e.totalMs; !math.IsNaN(ratio) && !math.IsInf(ratio, 0) {
		e.progress = clamp(ratio*100, 0, 100)
	}

	if t >= 1 {
		// Carry the overshoot into the next segment so boundaries do not
		// accumulate drift.
		overshootMs := math.Max(0, float64(elapsed.Milliseconds())-effectiveMs)
		e.segIndex++
		e.index = e.segIndex
		e.elapsedInSeg = 0

		if e.segIndex >= len(e.segments) {
			e.complete()
			return false
		}
		e.segStart = now.Add(-time.Duration(overshootMs) * time.Millisecond)
	}

	return true
}

func (e *Engine) complete() {
	e.current = e.points[len(e.points)-1]
	e.hasCurrent = true
	e.index = len(e.points) - 1
	e.state = StateCompleted
	e.progress = 100
}

func interpolate(seg Segment, t float64) types.TrackPoint {
	headingStart := seg.From.Heading
	if !isFinite(headingStart) {
		headingStart = geo.HeadingFromPoints(seg.From, seg.To)
	}
	headingEnd := seg.To.Heading
	if !isFinite(headingEnd) {
		headingEnd = geo.HeadingFromPoints(seg.From, seg.To)
	}

	return types.TrackPoint{
		Lat:       seg.From.Lat + (seg.To.Lat-seg.From.Lat)*t,
		Lng:       seg.From.Lng + (seg.To.Lng-seg.From.Lng)*t,
		Speed:     seg.From.Speed + (seg.To.Speed-seg.From.Speed)*t,
		Heading:   geo.NormalizeHeading(headingStart + geo.ShortestHeadingDelta(headingStart, headingEnd)*t),
		Timestamp: seg.From.Timestamp,
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// State returns the current transport state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Speed returns the current playback speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// Progress returns the overall progress percentage in [0, 100].
func (e *Engine) Progress() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progress
}

// Current returns the latest interpolated point, false before the first
// frame.
func (e *Engine) Current() (types.TrackPoint, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current, e.hasCurrent
}

// Index returns the index of the last track point reached.
func (e *Engine) Index() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index
}

// TotalDuration returns the summed post-clamp segment duration.
func (e *Engine) TotalDuration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return time.Duration(e.totalMs) * time.Millisecond
}

// Frame returns a consistent snapshot of the current playback frame.
func (e *Engine) Frame() Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Frame{Point: e.current, Progress: e.progress, State: e.state, Index: e.index}
}

// Trail returns the points passed so far plus the current interpolated point,
// for rendering the travelled path.
func (e *Engine) Trail() []types.TrackPoint {
	e.mu.Lock()
	defer e.mu.Unlock()

	end := e.index + 1
	if end > len(e.points) {
		end = len(e.points)
	}
	trail := make([]types.TrackPoint, end)
	copy(trail, e.points[:end])

	if e.hasCurrent && len(trail) > 0 {
		last := trail[len(trail)-1]
		if last.Lat != e.current.Lat || last.Lng != e.current.Lng {
			trail = append(trail, e.current)
		}
	}
	return trail
}

// Run drives Step from a ticker until playback completes, the engine is
// reset, or ctx is cancelled. onFrame, when non-nil, observes every frame.
// Pausing keeps the loop alive; frames simply stop advancing.
func (e *Engine) Run(ctx context.Context, frameInterval time.Duration, onFrame func(Frame)) error {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			e.Step(now)
			if onFrame != nil {
				onFrame(e.Frame())
			}
			switch e.State() {
			case StateCompleted, StateIdle:
				return nil
			}
		}
	}
}
