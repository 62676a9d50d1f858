package fixture

import (
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"
)

// readBufferSize bounds how much of an inbound request is inspected. Only the
// first line matters, so partial reads are fine.
const readBufferSize = 1024

// Server is the fixture process: one listener, one accept loop, a static
// success response per connection, and a crash policy evaluated after each
// response. There is no shutdown path beyond the crash policy itself; the
// supervisor under test kills the process externally.
type Server struct {
	cfg  Config
	ln   net.Listener
	dec  decider
	flag *flagWatch

	// out carries the supervisor-facing readiness and crash announcement
	// lines; os.Stdout in production, a buffer in tests.
	out io.Writer

	// abort is the abnormal-termination primitive. Tests replace it to
	// observe crash decisions without dying.
	abort func(reason string)
}

// NewServer builds a fixture server from a resolved configuration.
func NewServer(cfg Config) *Server {
	cfg.Validate()
	s := &Server{
		cfg:   cfg,
		out:   os.Stdout,
		abort: abort,
	}
	if cfg.Policy == PolicyWhenFlag && cfg.FlagFile != "" {
		s.flag = newFlagWatch(cfg.FlagFile)
		s.dec = newDecider(cfg, s.flag.Set)
	} else {
		s.dec = newDecider(cfg, nil)
	}
	return s
}

// abort terminates the process with a distinguishable abnormal exit. A panic
// in a connection goroutine takes the whole process down with a non-zero
// status and a goroutine dump, which is what the supervisor's crash-detection
// path must observe; a plain os.Exit(0)-style orderly exit would defeat the
// test.
func abort(reason string) {
	panic("deliberate crash: " + reason)
}

// Listen binds the effective port. Bind failure is fatal to the caller: the
// supervisor asserts deterministic port ownership, so the fixture must never
// retry or pick another port. On success the readiness lines are printed for
// the supervisor to correlate port and PID.
func (s *Server) Listen() error {
	addr := net.JoinHostPort(s.cfg.BindHost, strconv.Itoa(s.cfg.EffectivePort()))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", addr, err)
	}
	s.ln = ln

	fmt.Fprintf(s.out, "crashfix listening on %s (base=%d, instance=%d)\n",
		ln.Addr(), s.cfg.BasePort, s.cfg.InstanceOffset)
	fmt.Fprintf(s.out, "server process PID: %d\n", os.Getpid())
	logger.Info().
		Stringer("addr", ln.Addr()).
		Int("instance", s.cfg.InstanceOffset).
		Stringer("policy", s.cfg.Policy).
		Msg("listening")
	return nil
}

// Addr returns the bound address. Valid after Listen.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve accepts connections until the listener is closed, handling each in
// its own goroutine. Connections share nothing but the read-only config, so
// no coordination is needed.
func (s *Server) Serve() error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return fmt.Errorf("accept: %w", err)
		}
		go s.handle(conn)
	}
}

// handle serves one connection: lossy read, fixed 200 response, then the
// crash policy. Read/write failures drop the connection and nothing else;
// only the policy may take the process down.
func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	buf := make([]byte, readBufferSize)
	n, err := conn.Read(buf)
	if err != nil && n == 0 {
		logger.Warn().Err(err).Stringer("peer", conn.RemoteAddr()).Msg("connection read failed")
		return
	}
	request := buf[:n]

	response := fmt.Sprintf("HTTP/1.1 200 OK\r\n\r\nHello from crashfix instance %d!", s.cfg.InstanceOffset)
	if _, err := conn.Write([]byte(response)); err != nil {
		logger.Warn().Err(err).Stringer("peer", conn.RemoteAddr()).Msg("connection write failed")
		return
	}

	crash, reason := s.dec.shouldCrash(request)
	if !crash {
		return
	}

	fmt.Fprintf(s.out, "crash requested for instance %d: %s\n", s.cfg.InstanceOffset, reason)
	logger.Info().Int("instance", s.cfg.InstanceOffset).Str("reason", reason).Msg("terminating deliberately")

	// Best-effort: give the response time to reach the peer before dying.
	// The write has returned, but delivery is not guaranteed; a short sleep
	// is the strongest portable heuristic.
	time.Sleep(s.cfg.CrashDelay)
	conn.Close()
	s.abort(reason)
}

// Close releases the listener and the flag watcher. The production fixture
// never calls it (the process dies instead); it exists for tests.
func (s *Server) Close() error {
	if s.flag != nil {
		s.flag.Close()
	}
	if s.ln != nil {
		return s.ln.Close()
	}
	return nil
}

// Run resolves nothing: it binds and serves the given configuration,
// blocking until the listener fails or the process crashes.
func Run(cfg Config) error {
	s := NewServer(cfg)
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}
