package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/chance/internal/chance/namedraw"
	"github.com/cory-johannsen/chance/internal/chance/runstate"
	"github.com/cory-johannsen/chance/internal/chance/sample"
	"github.com/cory-johannsen/chance/internal/chance/tools"
	"github.com/cory-johannsen/chance/internal/command"
	"github.com/cory-johannsen/chance/internal/frontend/telnet"
)

var errUsage = errors.New("usage")

// handle runs one input line and reports whether the session should end.
func (s *session) handle(line string) bool {
	if s.confirm != nil {
		s.answer(line)
		return false
	}

	p := command.Parse(line)
	if p.Command == "" {
		return false
	}
	cmd, ok := s.h.registry.Resolve(p.Command)
	if !ok {
		s.fail(fmt.Sprintf("Unknown command %q. Type help for a list.", p.Command))
		return false
	}

	var err error
	switch cmd.Handler {
	case command.HandlerWheel:
		err = s.wheel(p.Sub())
	case command.HandlerCoin:
		err = s.coin(p.Sub())
	case command.HandlerDice:
		err = s.dice(p.Sub())
	case command.HandlerNumber:
		err = s.number(p.Sub())
	case command.HandlerDraw:
		err = s.draw(p.Sub())
	case command.HandlerReset:
		err = s.reset(p)
	case command.HandlerStatus:
		s.status()
	case command.HandlerMute:
		err = s.mute(p)
	case command.HandlerHelp:
		s.help(p)
	case command.HandlerQuit:
		s.line(telnet.Colorize(telnet.Yellow, "Goodbye."))
		return true
	}

	switch {
	case errors.Is(err, errUsage):
		s.usage(cmd)
	case err != nil:
		s.logger.Debug("command refused", zap.String("command", cmd.Name), zap.Error(err))
		s.fail(fmt.Sprintf("[%s] %v", cmd.Name, err))
	}
	return false
}

func (s *session) line(text string) {
	s.out.Flush()
	_ = s.conn.WriteLine(text)
}

func (s *session) fail(text string) {
	s.line(telnet.Colorize(telnet.Red, text))
}

func (s *session) usage(cmd *command.Command) {
	s.line(telnet.Colorize(telnet.Bold, cmd.Name) + " - " + cmd.Help)
	for _, u := range cmd.Usage {
		s.line("  " + u)
	}
}

func (s *session) wheel(p command.ParseResult) error {
	w := s.set.Wheel
	switch p.Command {
	case "", "show", "list":
		for i, o := range w.Options() {
			s.line(fmt.Sprintf("%3d. %s", i+1, telnet.Swatch(o.Color, o.Label)))
		}
		if won, ok := w.Winner(); ok {
			s.line("winner: " + telnet.Swatch(won.Color, won.Label))
		}
		return nil
	case "spin":
		return w.Spin()
	case "add":
		_, err := w.Add(p.RawArgs)
		return err
	case "remove", "rm":
		if len(p.Args) != 1 {
			return errUsage
		}
		id, err := s.optionID(p.Args[0])
		if err != nil {
			return err
		}
		return w.Remove(id)
	case "color":
		if len(p.Args) != 2 {
			return errUsage
		}
		id, err := s.optionID(p.Args[0])
		if err != nil {
			return err
		}
		return w.SetColor(id, p.Args[1])
	case "preset":
		if p.RawArgs == "" {
			names := w.Presets()
			if len(names) == 0 {
				s.line("No presets loaded.")
				return nil
			}
			s.line("presets: " + strings.Join(names, ", "))
			return nil
		}
		return w.ApplyPreset(p.RawArgs)
	}
	return errUsage
}

// optionID maps a 1-based position to an option id.
func (s *session) optionID(pos string) (string, error) {
	opts := s.set.Wheel.Options()
	n, err := strconv.Atoi(pos)
	if err != nil || n < 1 || n > len(opts) {
		return "", fmt.Errorf("%w: %s", tools.ErrUnknownOption, pos)
	}
	return opts[n-1].ID, nil
}

func (s *session) coin(p command.ParseResult) error {
	switch p.Command {
	case "", "flip":
		return s.set.Coin.Flip()
	case "show":
		if side, ok := s.set.Coin.Result(); ok {
			s.line("last flip: " + side.String())
		} else {
			s.line("not flipped yet")
		}
		return nil
	}
	return errUsage
}

func (s *session) dice(p command.ParseResult) error {
	d := s.set.Dice
	switch p.Command {
	case "", "roll":
		return d.Roll()
	case "show":
		s.line(fmt.Sprintf("%d dice: %v total %d", d.Count(), d.Dice(), d.Total()))
		return nil
	}
	n, err := strconv.Atoi(p.Command)
	if err != nil {
		return errUsage
	}
	return d.SetCount(n)
}

func (s *session) number(p command.ParseResult) error {
	n := s.set.Number
	switch p.Command {
	case "", "go", "generate":
		return n.Generate()
	case "show":
		lo, hi := n.Bounds()
		mode := string(n.Mode())
		if n.Mode() == sample.ModeDecimal {
			mode = fmt.Sprintf("%s (%d places)", mode, n.Decimals())
		}
		h := n.Hint()
		s.line(fmt.Sprintf("range %g to %g, %s, negatives %s", lo, hi, mode, onOff(n.AllowNegative())))
		s.line(fmt.Sprintf("%s: %s", h.Kind, h.Message))
		if r := n.Result(); r != "" {
			s.line("last result: " + r)
		}
		return nil
	case "range":
		if len(p.Args) != 2 {
			return errUsage
		}
		lo, err := parseBound(p.Args[0])
		if err != nil {
			return err
		}
		hi, err := parseBound(p.Args[1])
		if err != nil {
			return err
		}
		if err := n.SetMin(lo); err != nil {
			return err
		}
		return n.SetMax(hi)
	case "min", "max":
		if len(p.Args) != 1 {
			return errUsage
		}
		v, err := parseBound(p.Args[0])
		if err != nil {
			return err
		}
		if p.Command == "min" {
			return n.SetMin(v)
		}
		return n.SetMax(v)
	case "swap":
		return n.Swap()
	case "mode":
		if len(p.Args) != 1 {
			return errUsage
		}
		switch strings.ToLower(p.Args[0]) {
		case "int", "integer":
			return n.SetMode(sample.ModeInteger)
		case "dec", "decimal":
			return n.SetMode(sample.ModeDecimal)
		}
		return errUsage
	case "decimals":
		if len(p.Args) != 1 {
			return errUsage
		}
		k, err := strconv.Atoi(p.Args[0])
		if err != nil {
			return errUsage
		}
		return n.SetDecimals(k)
	case "negative":
		on, err := parseOnOff(p.Args)
		if err != nil {
			return err
		}
		return n.SetAllowNegative(on)
	}
	return errUsage
}

// parseBound accepts any float syntax; NaN and infinities are left for
// Generate to refuse.
func parseBound(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%w: %q is not a number", tools.ErrInvalidRange, s)
	}
	return v, nil
}

func (s *session) draw(p command.ParseResult) error {
	d := s.set.Draw
	switch p.Command {
	case "":
		return d.Draw()
	case "add":
		names := strings.Split(p.RawArgs, ",")
		if strings.TrimSpace(p.RawArgs) == "" {
			return errUsage
		}
		return d.AppendInput(names...)
	case "clear":
		return d.SetInput("")
	case "list":
		c := d.Candidates()
		s.line(fmt.Sprintf("%d candidates (%d excluded, %s draw)", len(c), d.ExcludedCount(), d.Duration()))
		for _, name := range c {
			s.line("  " + name)
		}
		if won, ok := d.Winner(); ok {
			s.line("last winner: " + won)
		}
		return nil
	case "rule":
		if len(p.Args) != 2 {
			return errUsage
		}
		on, err := parseOnOff(p.Args[1:])
		if err != nil {
			return err
		}
		r := d.Rules()
		if err := setRule(&r, p.Args[0], on); err != nil {
			return err
		}
		return d.SetRules(r)
	case "duration":
		dur, ok := tools.ParseDrawDuration(p.RawArgs)
		if !ok {
			return errUsage
		}
		return d.SetDuration(dur)
	case "winners":
		return d.ResetWinners()
	}
	return errUsage
}

func setRule(r *namedraw.Rules, name string, on bool) error {
	switch strings.ToLower(name) {
	case "dedupe", "duplicates":
		r.RemoveDuplicates = on
	case "case":
		r.CaseInsensitive = on
	case "exclude":
		r.ExcludeWinner = on
	default:
		return errUsage
	}
	return nil
}

func (s *session) reset(p command.ParseResult) error {
	if len(p.Args) != 1 {
		return errUsage
	}
	t, ok := s.set.Lookup(strings.ToLower(p.Args[0]))
	if !ok {
		return fmt.Errorf("unknown tool %q", p.Args[0])
	}
	if t.State() != runstate.Idle {
		return tools.ErrNotIdle
	}
	s.confirm = t
	s.line(telnet.Colorf(telnet.Yellow, "Reset %s to defaults?", t.Name()))
	return nil
}

// answer resolves a pending reset confirmation.
func (s *session) answer(line string) {
	t := s.confirm
	s.confirm = nil
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		if err := t.Reset(); err != nil {
			s.fail(fmt.Sprintf("[%s] %v", t.Name(), err))
		}
	default:
		s.line("Reset cancelled.")
	}
}

func (s *session) status() {
	for _, t := range s.set.All() {
		s.line(fmt.Sprintf("%-7s %-9s %s", t.Name(), t.State(), s.summary(t.Name())))
	}
	s.line("sound " + onOff(!s.cues.Muted()))
}

func (s *session) summary(name string) string {
	switch name {
	case tools.ToolWheel:
		sum := fmt.Sprintf("%d options", len(s.set.Wheel.Options()))
		if won, ok := s.set.Wheel.Winner(); ok {
			sum += ", winner " + won.Label
		}
		return sum
	case tools.ToolCoin:
		if side, ok := s.set.Coin.Result(); ok {
			return side.String()
		}
		return "-"
	case tools.ToolDice:
		return fmt.Sprintf("%v total %d", s.set.Dice.Dice(), s.set.Dice.Total())
	case tools.ToolNumber:
		if r := s.set.Number.Result(); r != "" {
			return r
		}
		return "-"
	case tools.ToolDraw:
		sum := fmt.Sprintf("%d candidates", len(s.set.Draw.Candidates()))
		if won, ok := s.set.Draw.Winner(); ok {
			sum += ", winner " + won
		}
		return sum
	}
	return ""
}

func (s *session) mute(p command.ParseResult) error {
	muted := !s.cues.Muted()
	if len(p.Args) > 0 {
		on, err := parseOnOff(p.Args)
		if err != nil {
			return err
		}
		muted = on
	}
	s.cues.SetMuted(muted)
	s.line("sound " + onOff(!muted))
	return nil
}

func (s *session) help(p command.ParseResult) {
	if len(p.Args) > 0 {
		if cmd, ok := s.h.registry.Resolve(p.Args[0]); ok {
			s.usage(cmd)
			return
		}
		s.fail(fmt.Sprintf("No help for %q.", p.Args[0]))
		return
	}
	cats := s.h.registry.CommandsByCategory()
	for _, cat := range []string{command.CategoryTools, command.CategorySession} {
		s.line(telnet.Colorize(telnet.Bold, cat))
		for _, cmd := range cats[cat] {
			s.line(fmt.Sprintf("  %-8s %s", cmd.Name, cmd.Help))
		}
	}
}

func parseOnOff(args []string) (bool, error) {
	if len(args) != 1 {
		return false, errUsage
	}
	switch strings.ToLower(args[0]) {
	case "on", "yes", "true":
		return true, nil
	case "off", "no", "false":
		return false, nil
	}
	return false, errUsage
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
