package thermostat

import (
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
	"go.uber.org/zap"

	"github.com/muurk/hysenctl/internal/logging"
	"github.com/muurk/hysenctl/internal/profile"
	"github.com/muurk/hysenctl/internal/protocol"
)

// Options configures a device session
type Options struct {
	// Name labels log entries (registry name or address)
	Name string

	// SyncClock pushes the wall clock to the device once per day
	SyncClock bool

	// SyncHour is the local hour (0-23) at which the clock is pushed
	SyncHour int

	// Now overrides the wall clock; nil uses time.Now
	Now func() time.Time
}

// AuthState is the per-device session state
type AuthState struct {
	Authenticated bool
	SyncDoneToday bool
}

// session owns everything shared by both device kinds. Callers hold mu for
// the whole refresh, validate and write sequence.
type session struct {
	mu sync.Mutex

	name          string
	transport     Transport
	client        modbus.Client
	clock         *ClockSync
	authenticated bool
}

func newSession(transport Transport, opts Options) *session {
	return &session{
		name:      opts.Name,
		transport: transport,
		client:    modbus.NewClient(protocol.NewHandler(transport)),
		clock:     NewClockSync(opts.SyncClock, opts.SyncHour, opts.Now),
	}
}

// Authenticated reports whether the session is currently trusted
func (s *session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// AuthState returns a copy of the session state
func (s *session) AuthState() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return AuthState{
		Authenticated: s.authenticated,
		SyncDoneToday: s.clock.State() == SyncDoneToday,
	}
}

func (s *session) ensureAuthenticated() error {
	if s.authenticated {
		return nil
	}

	logging.Debug("Authenticating", zap.String("device", s.name))
	ok, err := s.transport.Authenticate()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAuthenticated
	}

	s.authenticated = true
	return nil
}

// execute sends one command. An echo mismatch drops the session so the next
// call authenticates again. Errors are returned unchanged and never retried.
func (s *session) execute(cmd profile.Command) ([]byte, error) {
	if err := s.ensureAuthenticated(); err != nil {
		return nil, err
	}

	logging.Debug("Executing command", zap.String("device", s.name), zap.Stringer("command", cmd))

	var (
		result []byte
		err    error
	)
	switch cmd.Op {
	case protocol.OpReadBlock:
		result, err = s.client.ReadHoldingRegisters(cmd.Address, cmd.Words)
	case protocol.OpWriteWord:
		result, err = s.client.WriteSingleRegister(cmd.Address, cmd.Value)
	case protocol.OpWriteBlock:
		result, err = s.client.WriteMultipleRegisters(cmd.Address, cmd.Words, cmd.Data)
	default:
		return nil, fmt.Errorf("unsupported opcode 0x%02x", cmd.Op)
	}

	if err != nil {
		if protocol.IsEchoMismatch(err) {
			s.authenticated = false
			logging.Warn("Echo mismatch, session dropped",
				zap.String("device", s.name),
				zap.String("command", cmd.Name),
				zap.Error(err))
		}
		return nil, err
	}
	return result, nil
}

// readStatus reads the status block, pushing the wall clock first when the
// clock sync policy says so. A failed time-set is logged and skipped.
func (s *session) readStatus(p profile.Profile, encodeTime func(profile.Clock) profile.Command) ([]byte, error) {
	if err := s.ensureAuthenticated(); err != nil {
		return nil, err
	}

	if now, due := s.clock.Due(); due {
		if _, err := s.execute(encodeTime(profile.ClockFromTime(now))); err != nil {
			logging.Warn("Clock sync failed",
				zap.String("device", s.name),
				zap.Error(err))
		} else {
			s.clock.Done()
			logging.Info("Clock synchronized",
				zap.String("device", s.name),
				zap.Time("time", now))
		}
	}

	return s.execute(p.StatusCommand())
}
