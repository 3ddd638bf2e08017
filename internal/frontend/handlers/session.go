// Package handlers runs interactive chance sessions over Telnet.
package handlers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/chance/internal/chance/sample"
	"github.com/cory-johannsen/chance/internal/chance/tools"
	"github.com/cory-johannsen/chance/internal/chance/wheel"
	"github.com/cory-johannsen/chance/internal/command"
	"github.com/cory-johannsen/chance/internal/config"
	"github.com/cory-johannsen/chance/internal/feedback"
	"github.com/cory-johannsen/chance/internal/frontend/telnet"
	"github.com/cory-johannsen/chance/internal/observability"
	"github.com/cory-johannsen/chance/internal/storage"
)

// DefaultProfile is used when the client enters no profile name.
const DefaultProfile = "default"

var profilePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,31}$`)

const welcomeBanner = "\r\n" + telnet.Bold + telnet.BrightCyan +
	"  c h a n c e" + telnet.Reset + "\r\n" +
	telnet.BrightYellow + "  wheel · coin · dice · number · draw" + telnet.Reset + "\r\n\r\n" +
	"  Wheel options are saved per profile.\r\n" +
	"  Type " + telnet.Green + "help" + telnet.Reset + " once connected.\r\n\r\n"

// ChanceHandler implements telnet.SessionHandler. Every session gets its
// own set of tools; wheel options persist in the shared KV store under the
// profile the client picks.
type ChanceHandler struct {
	kv       storage.KV
	presets  map[string]wheel.Preset
	timings  config.ToolsConfig
	registry *command.Registry
	logger   *zap.Logger
}

// NewChanceHandler creates a session handler.
//
// Precondition: kv and logger must be non-nil.
// Postcondition: Returns a ChanceHandler ready to handle sessions.
func NewChanceHandler(kv storage.KV, presets map[string]wheel.Preset, timings config.ToolsConfig, logger *zap.Logger) *ChanceHandler {
	return &ChanceHandler{
		kv:       kv,
		presets:  presets,
		timings:  timings,
		registry: command.DefaultRegistry(),
		logger:   logger,
	}
}

// NormalizeProfile lowercases and validates a profile name. Blank input
// selects DefaultProfile.
func NormalizeProfile(raw string) (string, bool) {
	p := strings.ToLower(strings.TrimSpace(raw))
	if p == "" {
		return DefaultProfile, true
	}
	return p, profilePattern.MatchString(p)
}

// HandleSession implements telnet.SessionHandler.
//
// Postcondition: Returns nil on quit, or an error if the connection failed.
// No tool callback runs after HandleSession returns.
func (h *ChanceHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	if err := conn.Write([]byte(welcomeBanner)); err != nil {
		return fmt.Errorf("sending welcome: %w", err)
	}

	profile, err := h.readProfile(conn)
	if err != nil {
		return err
	}

	s := h.open(ctx, conn, profile)
	defer s.close()
	s.logger.Info("session started")
	return s.loop(ctx)
}

func (h *ChanceHandler) readProfile(conn *telnet.Conn) (string, error) {
	for {
		if err := conn.WritePrompt(fmt.Sprintf("profile [%s]: ", DefaultProfile)); err != nil {
			return "", fmt.Errorf("writing prompt: %w", err)
		}
		line, err := conn.ReadLine()
		if err != nil {
			return "", fmt.Errorf("reading profile: %w", err)
		}
		if p, ok := NormalizeProfile(line); ok {
			return p, nil
		}
		_ = conn.WriteLine(telnet.Colorize(telnet.Red,
			"Profile names use letters, digits, '-' and '_' (max 32)."))
	}
}

// session is one connected client and the tools it owns.
type session struct {
	h       *ChanceHandler
	conn    *telnet.Conn
	logger  *zap.Logger
	profile string

	set  *tools.Set
	cues *feedback.Dispatcher
	out  *renderer

	// confirm is the reset awaiting a yes/no answer.
	confirm tools.Tool
}

func (h *ChanceHandler) open(ctx context.Context, conn *telnet.Conn, profile string) *session {
	logger := observability.ForSession(h.logger, conn.ID, profile)
	out := newRenderer(conn, logger)
	cues := feedback.NewDispatcher(feedback.DefaultBuffer,
		feedback.NewZapSink(logger),
		bellSink(conn),
	)
	deps := tools.Deps{
		Source:   sample.New(h.timings.Seed),
		Sink:     cues,
		Observer: out,
		Logger:   logger,
		Timings:  h.timings,
	}
	repo := storage.NewOptionRepository(h.kv, profile, logger)
	return &session{
		h:       h,
		conn:    conn,
		logger:  logger,
		profile: profile,
		set:     tools.NewSet(ctx, deps, repo, h.presets),
		cues:    cues,
		out:     out,
	}
}

// close stops every tool before tearing down the outputs they write to.
func (s *session) close() {
	s.set.Close()
	s.cues.Close()
	s.out.Close()
	s.logger.Info("session closed", zap.Uint64("cues_dropped", s.cues.Dropped()))
}

// bellSink rings the terminal bell when an outcome is revealed.
func bellSink(conn *telnet.Conn) feedback.Sink {
	return feedback.SinkFunc(func(ev feedback.Event) {
		if ev.Signal == feedback.Result {
			_ = conn.Ring()
		}
	})
}

func (s *session) loop(ctx context.Context) error {
	_ = s.conn.WriteLine(fmt.Sprintf("Profile %s loaded with %d wheel options.",
		telnet.Colorize(telnet.Bold, s.profile), len(s.set.Wheel.Options())))
	for {
		select {
		case <-ctx.Done():
			_ = s.conn.WriteLine(telnet.Colorize(telnet.Yellow, "Server shutting down. Goodbye!"))
			return ctx.Err()
		default:
		}

		p := prompt
		if s.confirm != nil {
			p = "[y/N] "
		}
		if err := s.conn.WritePrompt(p); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}

		line, err := s.conn.ReadLine()
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		quit := s.handle(line)
		s.out.Flush()
		if quit {
			return nil
		}
	}
}
