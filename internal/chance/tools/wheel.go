package tools

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/chance/internal/chance/animate"
	"github.com/cory-johannsen/chance/internal/chance/wheel"
	"github.com/cory-johannsen/chance/internal/feedback"
)

// OptionStore persists the wheel's option list.
type OptionStore interface {
	// Load never fails; missing or unreadable data yields defaults.
	Load(ctx context.Context) []wheel.Option
	Save(ctx context.Context, options []wheel.Option) error
}

const persistTimeout = 2 * time.Second

// Wheel is the spinning wheel: options around a circle, a committed target
// rotation, and a winner read back from where the wheel stopped.
type Wheel struct {
	core
	options  []wheel.Option
	rotation float64
	winner   *wheel.Option
	store    OptionStore
	presets  map[string]wheel.Preset
	layout   wheel.Layout
	spin     *animate.Transition
	duration time.Duration
	newID    func() string
}

// NewWheel creates a wheel seeded from store. store and presets may be nil.
func NewWheel(ctx context.Context, d Deps, store OptionStore, presets map[string]wheel.Preset) *Wheel {
	d = d.withDefaults()
	w := &Wheel{
		store:    store,
		presets:  presets,
		layout:   wheel.DefaultLayout,
		duration: d.Timings.WheelSpin,
		newID:    wheel.NewID,
	}
	w.init(ToolWheel, d)
	w.spin = animate.NewTransition(w.timer)
	if store != nil {
		w.options = store.Load(ctx)
	} else {
		w.options = wheel.DefaultOptions()
	}
	return w
}

// Options returns a copy of the current options.
func (w *Wheel) Options() []wheel.Option {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.options)
}

// Rotation returns the wheel's rotation in degrees. During a spin it is the
// committed target.
func (w *Wheel) Rotation() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rotation
}

// Winner returns the last resolved winner.
func (w *Wheel) Winner() (wheel.Option, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.winner == nil {
		return wheel.Option{}, false
	}
	return *w.winner, true
}

// Presets returns the names of the loaded presets in sorted order.
func (w *Wheel) Presets() []string {
	names := make([]string, 0, len(w.presets))
	for name := range w.presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Add appends an option with the least-used palette color.
//
// Precondition: label is non-blank after trimming.
// Postcondition: the new option is persisted and the previous winner cleared.
func (w *Wheel) Add(label string) (wheel.Option, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	label = strings.TrimSpace(label)
	if label == "" {
		return wheel.Option{}, ErrEmptyLabel
	}
	if err := w.mutable(); err != nil {
		return wheel.Option{}, err
	}
	w.cue(feedback.Action)
	opt := wheel.Option{ID: w.newID(), Label: label, Color: wheel.NextColor(w.options)}
	w.options = append(w.options, opt)
	w.changed(fmt.Sprintf("added %q", label))
	return opt, nil
}

// Remove deletes the option with id.
func (w *Wheel) Remove(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.mutable(); err != nil {
		return err
	}
	i := wheel.IndexOf(w.options, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownOption, id)
	}
	w.cue(feedback.Action)
	label := w.options[i].Label
	w.options = slices.Delete(w.options, i, i+1)
	w.changed(fmt.Sprintf("removed %q", label))
	return nil
}

// SetColor recolors the option with id.
//
// Precondition: color is a #RRGGBB hex string.
func (w *Wheel) SetColor(id, color string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !wheel.ValidColor(color) {
		return fmt.Errorf("%w: %q", wheel.ErrInvalidColor, color)
	}
	if err := w.mutable(); err != nil {
		return err
	}
	i := wheel.IndexOf(w.options, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownOption, id)
	}
	w.options[i].Color = color
	w.changed(fmt.Sprintf("recolored %q", w.options[i].Label))
	return nil
}

// ApplyPreset replaces the options with the named preset.
func (w *Wheel) ApplyPreset(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	if err := w.mutable(); err != nil {
		return err
	}
	w.options = p.Options()
	w.changed(fmt.Sprintf("loaded preset %q", p.Name))
	return nil
}

// Reset restores the default options and zero rotation.
func (w *Wheel) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.mutable(); err != nil {
		return err
	}
	w.options = wheel.DefaultOptions()
	w.rotation = 0
	w.changed("reset")
	return nil
}

// changed clears the winner, persists, and publishes an update frame.
func (w *Wheel) changed(text string) {
	w.winner = nil
	w.persist()
	w.emit(Frame{Kind: FrameUpdate, Text: text})
}

func (w *Wheel) persist() {
	if w.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := w.store.Save(ctx, slices.Clone(w.options)); err != nil {
		w.logger.Warn("persisting wheel options", zap.Error(err))
	}
}

// Spin commits a target and reveals the winner once the spin duration elapses.
//
// Precondition: at least two options.
// Postcondition: on success the tool is Running and Rotation reports the target.
func (w *Wheel) Spin() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.idle(); err != nil {
		return err
	}
	target, err := wheel.Commit(w.src, len(w.options), w.rotation)
	if err != nil {
		return err
	}
	if err := w.begin(); err != nil {
		return err
	}

	w.rotation = target.Rotation
	w.winner = nil
	w.logger.Debug("spin committed",
		zap.Int("index", target.Index),
		zap.Float64("offset", target.Offset),
		zap.Int("spins", target.Spins),
		zap.Float64("rotation", target.Rotation),
	)
	w.emit(Frame{Kind: FrameStart, Text: fmt.Sprintf("spinning to %.1f°", target.Rotation)})

	w.spin.Run(w.duration, func() { w.land(target) })
	return nil
}

// land resolves the winner from the final geometry.
func (w *Wheel) land(target wheel.Target) {
	scene := wheel.Render(w.layout, len(w.options), w.rotation)
	idx, ok := wheel.Resolve(scene)
	if !ok {
		idx = target.Index
	}
	if idx != target.Index {
		w.logger.Warn("wheel reconciliation mismatch",
			zap.Int("committed", target.Index),
			zap.Int("resolved", idx),
			zap.Float64("rotation", w.rotation),
		)
	}
	won := w.options[idx]
	w.winner = &won
	w.cue(feedback.Result)
	w.conclude(Frame{Kind: FrameReveal, Text: won.Label}, 0, nil)
}
