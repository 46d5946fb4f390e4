package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/antfarm/internal/core"
	"github.com/vovakirdan/antfarm/internal/multiplayer"
	"github.com/vovakirdan/antfarm/internal/orders"
	"github.com/vovakirdan/antfarm/internal/storage"
	"github.com/vovakirdan/antfarm/internal/turn"
	"github.com/vovakirdan/antfarm/internal/world"
)

// maxOrdersSize bounds an orders document read from an SSH session.
const maxOrdersSize = 1 << 20

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.antfarm/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// TickRate is the number of stage transitions shown per second.
	TickRate int

	// PollPeriod is how often games are checked for turns committed elsewhere.
	PollPeriod time.Duration
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
		TickRate:    core.DefaultConfig().TickRate,
		PollPeriod:  multiplayer.DefaultHubConfig().PollPeriod,
	}
}

// SSHServer serves the turn viewer over SSH and accepts orders.
//
//	ssh -p 23234 host <game>                 watch a game
//	ssh -p 23234 host submit <game> < o.json  submit a colony's orders
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	hub    *multiplayer.Hub
	logger *log.Logger
}

// NewSSHServer creates a new SSH server on top of an open store. Turns are
// resolved with the rules stored with each game.
func NewSSHServer(cfg SSHServerConfig, store *storage.Store) (*SSHServer, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "antfarm-ssh",
	})

	srv := &SSHServer{
		config: cfg,
		store:  store,
		logger: logger,
	}
	srv.hub = multiplayer.NewHub(
		multiplayer.HubConfig{PollPeriod: cfg.PollPeriod},
		hubStore{store: store},
		multiplayer.NewSessionRegistry(),
		logger.WithPrefix("antfarm-hub"),
	)

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".antfarm", "host_key")
	}

	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	// Middlewares run last to first: logging, then submit, then the viewer.
	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.submitMiddleware,
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// hubStore lets the hub read and advance stored games.
type hubStore struct {
	store *storage.Store
}

func (h hubStore) CurrentState(game multiplayer.GameID) (world.State, error) {
	rec, err := h.store.LatestTurn(string(game))
	if err != nil {
		return world.State{}, err
	}
	return rec.State, nil
}

func (h hubStore) CommitTurn(game multiplayer.GameID, sel turn.Selections) (world.State, error) {
	rec, err := h.store.Advance(string(game), sel)
	if err != nil {
		return world.State{}, err
	}
	return rec.State, nil
}

// submitMiddleware handles "submit <game>" sessions: the orders document is
// read from the session's stdin and handed to the hub.
func (s *SSHServer) submitMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		cmd := sess.Command()
		if len(cmd) == 0 || cmd[0] != "submit" {
			next(sess)
			return
		}
		if len(cmd) != 2 {
			wish.Fatalln(sess, "usage: submit <game> < orders.json")
			return
		}

		data, err := io.ReadAll(io.LimitReader(sess, maxOrdersSize))
		if err != nil {
			wish.Fatalln(sess, "Error:", err)
			return
		}
		sub, err := orders.Parse(data)
		if err != nil {
			wish.Fatalln(sess, "Error:", err)
			return
		}
		res, err := s.hub.Submit(sess.Context(), multiplayer.GameID(cmd[1]), sub)
		if err != nil {
			wish.Fatalln(sess, "Error:", err)
			return
		}
		if res.Committed {
			wish.Printf(sess, "orders accepted, turn %d committed\n", sub.Turn)
			return
		}
		wish.Printf(sess, "orders accepted, waiting for colonies %v\n", res.Missing)
	}
}

// teaHandler creates a viewer session for each SSH connection with a PTY.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	cfg := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.config.TickRate,
	}

	game, err := s.pickGame(sshSession.Command())
	if err != nil {
		wish.Fatalln(sshSession, "Error:", err)
		return nil, nil
	}

	id := multiplayer.SessionID(fmt.Sprintf("%s-%d", sshSession.User(), time.Now().UnixNano()))
	events := multiplayer.NewChannelSession(id, 16)
	s.hub.Watch(events, game)
	go func() {
		<-sshSession.Context().Done()
		events.Close()
	}()

	model := NewSessionModel(s.store, game, events, cfg)
	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// pickGame returns the game named on the command line, or the newest game.
func (s *SSHServer) pickGame(cmd []string) (multiplayer.GameID, error) {
	if len(cmd) > 0 {
		if _, err := s.store.Game(cmd[0]); err != nil {
			return "", err
		}
		return multiplayer.GameID(cmd[0]), nil
	}
	games, err := s.store.Games()
	if err != nil {
		return "", err
	}
	if len(games) == 0 {
		return "", errors.New("no games stored; create one with 'antfarm new'")
	}
	return multiplayer.GameID(games[0].ID), nil
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
			"command", sshSession.Command(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.hub.Start(ctx)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.hub.Stop()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// eventMsg carries a hub event into the Bubble Tea loop.
type eventMsg struct {
	evt multiplayer.SessionEvent
}

func waitForEvent(events *multiplayer.ChannelSession) tea.Cmd {
	return func() tea.Msg {
		select {
		case evt := <-events.Events():
			return eventMsg{evt: evt}
		case <-events.Done():
			return nil
		}
	}
}

// SessionModel follows one game for an SSH viewer: it animates the most
// recently committed turn and switches to each new turn as it is committed.
type SessionModel struct {
	store  *storage.Store
	game   multiplayer.GameID
	events *multiplayer.ChannelSession
	config core.RuntimeConfig

	viewer   *ViewerModel
	idle     world.State // shown while no turn has been resolved yet
	status   string
	quitting bool
}

// NewSessionModel creates a session model for game.
func NewSessionModel(store *storage.Store, game multiplayer.GameID, events *multiplayer.ChannelSession, cfg core.RuntimeConfig) SessionModel {
	m := SessionModel{
		store:  store,
		game:   game,
		events: events,
		config: cfg,
	}
	m.load()
	return m
}

// load shows the latest committed turn.
func (m *SessionModel) load() {
	latest, err := m.store.LatestTurn(string(m.game))
	if err != nil {
		m.status = err.Error()
		return
	}
	if latest.Turn == 0 {
		m.viewer = nil
		m.idle = latest.State
		m.status = "waiting for the first orders"
		return
	}
	m.show(latest.Turn - 1)
}

func (m *SessionModel) show(n int) {
	c, _, err := m.store.Rerun(string(m.game), n)
	if err != nil {
		m.status = err.Error()
		return
	}
	title := fmt.Sprintf("%s  turn %d", m.game, n)
	v := NewViewerModel(c, title, m.config, nil)
	m.viewer = &v
	m.status = ""
}

// Init starts the tick loop and the event listener.
func (m SessionModel) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForEvent(m.events)}
	if m.viewer != nil {
		cmds = append(cmds, m.viewer.Init())
	}
	return tea.Batch(cmds...)
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height

	case tea.KeyMsg:
		if m.viewer == nil && (msg.String() == "q" || msg.String() == "ctrl+c") {
			m.quitting = true
			return m, tea.Quit
		}

	case eventMsg:
		return m.handleEvent(msg.evt)
	}

	if m.viewer == nil {
		return m, nil
	}
	next, cmd := m.viewer.Update(msg)
	if vm, ok := next.(ViewerModel); ok {
		m.viewer = &vm
	}
	return m, cmd
}

func (m SessionModel) handleEvent(evt multiplayer.SessionEvent) (tea.Model, tea.Cmd) {
	wait := waitForEvent(m.events)
	switch e := evt.(type) {
	case multiplayer.TurnCommittedEvent:
		hadViewer := m.viewer != nil
		m.show(e.Turn)
		if !hadViewer && m.viewer != nil {
			return m, tea.Batch(wait, m.viewer.Init())
		}
	case multiplayer.OrdersReceivedEvent:
		m.status = fmt.Sprintf("turn %d: orders from colony %d, waiting for %v", e.Turn, e.Colony, e.Missing)
	case multiplayer.ResolveFailedEvent:
		m.status = fmt.Sprintf("turn %d not resolved: %s", e.Turn, e.Message)
	case multiplayer.HubClosedEvent:
		m.quitting = true
		return m, tea.Quit
	}
	return m, wait
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	if m.viewer != nil {
		return m.viewer.View() + "\n" + statusStyle.Render(m.status)
	}

	screen := core.NewScreen(m.config.ScreenW, m.idle.Height()+len(m.idle.Colonies)+2)
	DrawWorld(screen, &m.idle, 0, 0)
	DrawSeparator(screen, m.idle.Height())
	DrawStatus(screen, &m.idle, turn.PositionAt(0), m.idle.Height()+1)
	return RenderScreen(screen) + "\n" + statusStyle.Render(m.status)
}
