package tools

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/chance/internal/chance/animate"
	"github.com/cory-johannsen/chance/internal/chance/namedraw"
	"github.com/cory-johannsen/chance/internal/chance/sample"
	"github.com/cory-johannsen/chance/internal/feedback"
)

// DrawDuration selects how long a name draw rolls.
type DrawDuration string

const (
	DrawShort  DrawDuration = "short"
	DrawMedium DrawDuration = "medium"
	DrawLong   DrawDuration = "long"
)

// ParseDrawDuration maps a name to a DrawDuration.
func ParseDrawDuration(s string) (DrawDuration, bool) {
	switch d := DrawDuration(strings.ToLower(strings.TrimSpace(s))); d {
	case DrawShort, DrawMedium, DrawLong:
		return d, true
	}
	return "", false
}

// NameDraw picks one name from a pasted list.
type NameDraw struct {
	core
	input    string
	rules    namedraw.Rules
	duration DrawDuration
	excluded namedraw.Excluded
	winner   string
	rolling  string

	durations map[DrawDuration]time.Duration
	tick      time.Duration
	spread    time.Duration
	settleDur time.Duration
}

// NewNameDraw creates an empty draw with default rules and medium duration.
func NewNameDraw(d Deps) *NameDraw {
	d = d.withDefaults()
	t := d.Timings
	nd := &NameDraw{
		durations: map[DrawDuration]time.Duration{
			DrawShort:  t.DrawShort,
			DrawMedium: t.DrawMedium,
			DrawLong:   t.DrawLong,
		},
		tick:      t.DrawTick,
		spread:    t.DrawSpread,
		settleDur: t.DrawSettle,
	}
	nd.init(ToolDraw, d)
	nd.defaults()
	return nd
}

func (nd *NameDraw) defaults() {
	nd.input = ""
	nd.rules = namedraw.DefaultRules()
	nd.duration = DrawMedium
	nd.excluded.Clear()
	nd.winner = ""
	nd.rolling = ""
}

// Input returns the raw candidate text.
func (nd *NameDraw) Input() string {
	nd.mu.Lock()
	defer nd.mu.Unlock()
	return nd.input
}

// Rules returns the active processing rules.
func (nd *NameDraw) Rules() namedraw.Rules {
	nd.mu.Lock()
	defer nd.mu.Unlock()
	return nd.rules
}

// Duration returns the selected duration preset.
func (nd *NameDraw) Duration() DrawDuration {
	nd.mu.Lock()
	defer nd.mu.Unlock()
	return nd.duration
}

// Candidates returns the processed list a draw would pick from now.
func (nd *NameDraw) Candidates() []string {
	nd.mu.Lock()
	defer nd.mu.Unlock()
	return nd.candidates()
}

func (nd *NameDraw) candidates() []string {
	return namedraw.Process(nd.input, nd.rules, &nd.excluded)
}

// Winner returns the last winner, if any.
func (nd *NameDraw) Winner() (string, bool) {
	nd.mu.Lock()
	defer nd.mu.Unlock()
	return nd.winner, nd.winner != ""
}

// Rolling returns the name currently on display.
func (nd *NameDraw) Rolling() string {
	nd.mu.Lock()
	defer nd.mu.Unlock()
	return nd.rolling
}

// ExcludedCount returns how many past winners are excluded.
func (nd *NameDraw) ExcludedCount() int {
	nd.mu.Lock()
	defer nd.mu.Unlock()
	return nd.excluded.Len()
}

// SetInput replaces the raw candidate text.
func (nd *NameDraw) SetInput(raw string) error {
	return nd.update(func() { nd.input = raw })
}

// AppendInput adds lines to the raw candidate text.
func (nd *NameDraw) AppendInput(lines ...string) error {
	return nd.update(func() {
		parts := slices.Clone(lines)
		if nd.input != "" {
			parts = append([]string{strings.TrimRight(nd.input, "\n")}, parts...)
		}
		nd.input = strings.Join(parts, "\n")
	})
}

// SetRules replaces the processing rules.
func (nd *NameDraw) SetRules(r namedraw.Rules) error {
	return nd.update(func() {
		nd.cue(feedback.Action)
		nd.rules = r
	})
}

// SetDuration selects a duration preset.
func (nd *NameDraw) SetDuration(d DrawDuration) error {
	if _, ok := nd.durations[d]; !ok {
		return fmt.Errorf("unknown draw duration %q", d)
	}
	return nd.update(func() {
		nd.cue(feedback.Action)
		nd.duration = d
	})
}

func (nd *NameDraw) update(f func()) error {
	nd.mu.Lock()
	defer nd.mu.Unlock()
	if err := nd.mutable(); err != nil {
		return err
	}
	f()
	nd.emit(Frame{Kind: FrameUpdate, Text: fmt.Sprintf("%d candidates", len(nd.candidates()))})
	return nil
}

// Draw rolls through the candidates and commits a winner at the end.
//
// Precondition: at least one candidate after processing.
// Postcondition: the candidate list is frozen for the run; with ExcludeWinner
// the winner is added to the excluded set when revealed.
func (nd *NameDraw) Draw() error {
	nd.mu.Lock()
	defer nd.mu.Unlock()
	if err := nd.idle(); err != nil {
		return err
	}
	list := nd.candidates()
	if len(list) == 0 {
		return ErrNoCandidates
	}
	if err := nd.begin(); err != nil {
		return err
	}

	exclude := nd.rules.ExcludeWinner
	nd.winner = ""
	nd.logger.Debug("draw started", zap.Int("candidates", len(list)), zap.String("duration", string(nd.duration)))
	nd.emit(Frame{Kind: FrameStart, Text: fmt.Sprintf("drawing from %d", len(list))})

	ticker := animate.NewTicker(animate.TickerConfig{
		Duration:  nd.durations[nd.duration],
		BaseDelay: nd.tick,
		Spread:    nd.spread,
	}, nd.timer, nd.src)
	ticker.Run(func() {
		name, _ := sample.Pick(nd.src, list)
		nd.rolling = name
		nd.emit(Frame{Kind: FrameTick, Text: name})
	}, func() {
		name, _ := sample.Pick(nd.src, list)
		nd.rolling = name
		nd.winner = name
		if exclude {
			nd.excluded.Add(name)
		}
		nd.logger.Debug("draw final", zap.String("winner", name))
		nd.cue(feedback.Result)
		nd.conclude(Frame{Kind: FrameReveal, Text: name}, nd.settleDur, nil)
	})
	return nil
}

// ResetWinners clears the winner and the excluded set.
func (nd *NameDraw) ResetWinners() error {
	nd.mu.Lock()
	defer nd.mu.Unlock()
	if err := nd.mutable(); err != nil {
		return err
	}
	nd.cue(feedback.Action)
	nd.excluded.Clear()
	nd.winner = ""
	nd.rolling = ""
	nd.emit(Frame{Kind: FrameUpdate, Text: "winners cleared"})
	return nil
}

// Reset clears the input, winners and rules.
func (nd *NameDraw) Reset() error {
	nd.mu.Lock()
	defer nd.mu.Unlock()
	if err := nd.mutable(); err != nil {
		return err
	}
	nd.defaults()
	nd.emit(Frame{Kind: FrameUpdate, Text: "reset"})
	return nil
}
