package session

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/9916bernard/isYafit-mobile-sub001/internal/bt"
	"github.com/9916bernard/isYafit-mobile-sub001/internal/events"
	"github.com/9916bernard/isYafit-mobile-sub001/internal/protocol"
)

// Config tunes one session.
type Config struct {
	// TelemetryOnly skips the control handshake: request control is still
	// attempted on FTMS machines because some refuse to stream without it,
	// but its failure is swallowed and no start/reset is issued.
	TelemetryOnly bool
	// Collect keeps every decoded record in memory for later analysis.
	Collect bool
	// ConnectTimeout bounds the wait for the link to come up.
	ConnectTimeout time.Duration
	// Delays are the post-write settle delays.
	Delays DelayPolicy
}

// ErrAckTimeout is returned by SendCommandAwait when the control point
// never acknowledges a command.
var ErrAckTimeout = errors.New("timeout waiting for control point acknowledgement")

// DefaultConfig returns the config used against real hardware.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout: 10 * time.Second,
		Delays:         DefaultDelayPolicy(),
	}
}

// Session drives one device from connect through detection, protocol
// initialization, and telemetry streaming, down to disconnect. One session
// per device; a reconnect is a new session.
type Session struct {
	logger  *log.Logger
	manager bt.BTManagerInterface
	device  bt.BTDevice
	cfg     Config

	mu        sync.Mutex
	state     State
	detection protocol.DetectionResult
	handler   protocol.Handler
	profile   DeviceProfile
	records   []protocol.TelemetryRecord
	subs      []protocol.CharacteristicRef

	auth   *protocol.RebornAuthenticator
	merger protocol.FrameMerger
	crank  crankTracker

	stateEvent     *events.ChannelEvent[State]
	telemetryEvent *events.CallbackEvent[protocol.TelemetryRecord]
	controlEvent   *events.CallbackEvent[protocol.ControlPointResponse]
	logEvent       *events.CallbackEvent[LogEntry]
	cpPending      chan protocol.ControlPointResponse
}

func New(logger *log.Logger, manager bt.BTManagerInterface, device bt.BTDevice, cfg Config) *Session {
	if logger == nil {
		panic("Session: logger cannot be nil")
	}
	if manager == nil {
		panic("Session: manager cannot be nil")
	}
	if device == nil {
		panic("Session: device cannot be nil")
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	return &Session{
		logger:         logger,
		manager:        manager,
		device:         device,
		cfg:            cfg,
		state:          StateDisconnected,
		auth:           protocol.NewRebornAuthenticator(),
		stateEvent:     events.NewChannelEvent[State](true),
		telemetryEvent: events.NewCallbackEvent[protocol.TelemetryRecord](false),
		controlEvent:   events.NewCallbackEvent[protocol.ControlPointResponse](false),
		logEvent:       events.NewCallbackEvent[LogEntry](false),
		cpPending:      make(chan protocol.ControlPointResponse, 1),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Detection returns the detection outcome; zero until detection has run.
func (s *Session) Detection() protocol.DetectionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detection
}

// Kind returns the active protocol kind; empty until detection has run.
func (s *Session) Kind() protocol.Kind {
	return s.Detection().Resolved
}

// Profile returns the static device profile read during initialization.
func (s *Session) Profile() DeviceProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// AuthState returns the Reborn handshake state; idle for other kinds.
func (s *Session) AuthState() protocol.AuthState {
	return s.auth.State()
}

// Records returns the collected telemetry. Empty unless Config.Collect.
func (s *Session) Records() []protocol.TelemetryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]protocol.TelemetryRecord, len(s.records))
	copy(out, s.records)
	return out
}

// ListenState registers a channel for state changes; the current state is
// replayed on listen. Returns a deregistration func.
func (s *Session) ListenState(ch chan<- State) func() {
	return s.stateEvent.Listen(ch)
}

// ListenTelemetry registers a callback for decoded telemetry records.
// Returns a deregistration func.
func (s *Session) ListenTelemetry(fn func(protocol.TelemetryRecord)) func() {
	return s.telemetryEvent.Listen(fn)
}

// ListenControlPoint registers a callback for control point acknowledgements.
func (s *Session) ListenControlPoint(fn func(protocol.ControlPointResponse)) func() {
	return s.controlEvent.Listen(fn)
}

// ListenLog registers a callback for structured session log entries.
func (s *Session) ListenLog(fn func(LogEntry)) func() {
	return s.logEvent.Listen(fn)
}

// logf writes one line to the process log and publishes the structured copy.
func (s *Session) logf(severity Severity, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	s.logger.Printf("Session: %s", msg)
	s.logEvent.Notify(LogEntry{Timestamp: time.Now(), Message: msg, Severity: severity})
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	prev := s.state
	s.state = state
	s.mu.Unlock()
	if prev != state {
		s.logf(SeverityInfo, "%s -> %s", prev, state)
		s.stateEvent.Notify(state)
	}
}

// Start connects, detects the protocol, initializes it, and leaves the
// session streaming telemetry. On any failure before Active the device is
// disconnected and the error returned.
func (s *Session) Start() error {
	s.setState(StateConnecting)

	if !s.device.IsConnected() {
		if err := s.manager.Connect(s.device); err != nil {
			s.setState(StateDisconnected)
			return fmt.Errorf("failed to initiate connection: %w", err)
		}
		if err := s.device.WaitForConnection(s.cfg.ConnectTimeout); err != nil {
			s.setState(StateDisconnected)
			return fmt.Errorf("connection timeout: %w", err)
		}
	}

	s.setState(StateDetecting)

	// Advertisements rarely list every service, so detection runs on the
	// full post-connect discovery. A discovery failure aborts: guessing a
	// protocol from a partial service list connects FTMS bikes as CSC.
	serviceUUIDs, err := s.device.DiscoverServices()
	if err != nil {
		s.abort()
		return &protocol.DetectionError{Device: s.device.GetAddressString(), Err: err}
	}

	detection := protocol.Detect(protocol.DeviceDescriptor{
		ID:           s.device.GetAddressString(),
		Name:         s.device.GetLocalName(),
		ServiceUUIDs: serviceUUIDs,
	})
	handler, err := protocol.HandlerFor(detection.Resolved)
	if err != nil {
		s.abort()
		return err
	}

	s.mu.Lock()
	s.detection = detection
	s.handler = handler
	s.mu.Unlock()

	s.logf(SeverityInfo, "detected %s for %s (%s), matched=%v fallback=%v",
		detection.Resolved, s.device.GetLocalName(), s.device.GetAddressString(),
		detection.Matched, detection.Fallback)

	s.setState(StateInitializing)

	profile := s.readDeviceProfile(s.device)
	s.mu.Lock()
	s.profile = profile
	s.mu.Unlock()

	if err := s.subscribe(handler); err != nil {
		s.abort()
		return err
	}

	if err := s.initializeProtocol(detection.Resolved); err != nil {
		s.abort()
		return err
	}

	s.setState(StateActive)
	return nil
}

// subscribe enables notifications on every data characteristic the handler
// names, skipping services the device does not expose.
func (s *Session) subscribe(handler protocol.Handler) error {
	subscribed := 0
	for _, ref := range handler.DataCharacteristics() {
		if !s.device.HasServiceUUID(ref.ServiceUUID) {
			s.logger.Printf("Session: skipping %s - device doesn't expose service %s",
				ref.CharacteristicUUID, ref.ServiceUUID)
			continue
		}

		callback := s.callbackFor(ref)
		if err := s.device.EnableNotifications(ref.ServiceUUID, ref.CharacteristicUUID, callback); err != nil {
			return fmt.Errorf("failed to enable notifications for %s: %w", ref.CharacteristicUUID, err)
		}

		s.mu.Lock()
		s.subs = append(s.subs, ref)
		s.mu.Unlock()
		subscribed++
	}

	if subscribed == 0 && len(handler.DataCharacteristics()) > 0 {
		return fmt.Errorf("no supported telemetry characteristics found on device for %s", handler.Kind())
	}
	return nil
}

func (s *Session) callbackFor(ref protocol.CharacteristicRef) func([]byte) {
	switch ref.CharacteristicUUID {
	case protocol.CharUUIDFTMSControlPoint:
		return s.onControlPoint
	case protocol.CharUUIDRebornData:
		return s.onRebornFrame
	case protocol.CharUUIDIndoorBikeData:
		return s.onIndoorBikeFrame
	default:
		return s.onTelemetryFrame
	}
}

func (s *Session) initializeProtocol(kind protocol.Kind) error {
	switch kind {
	case protocol.KindFTMS, protocol.KindYafitS3, protocol.KindYafitS4:
		if s.cfg.TelemetryOnly {
			// Some FTMS machines refuse to stream until control is
			// requested; the failure is not fatal in telemetry mode.
			if err := s.SendCommand(protocol.Command{Op: protocol.OpRequestControl}); err != nil {
				s.logf(SeverityWarning, "request control failed (telemetry only, continuing): %v", err)
			}
			return nil
		}
		for _, op := range []protocol.CommandOp{
			protocol.OpRequestControl, protocol.OpReset, protocol.OpStart,
		} {
			if err := s.SendCommand(protocol.Command{Op: op}); err != nil {
				return fmt.Errorf("%s init: %s failed: %w", kind, op, err)
			}
		}
		return nil

	case protocol.KindFitShow:
		// Telemetry mode must not change the bike's state; the init and
		// start frames put it in a workout.
		if s.cfg.TelemetryOnly {
			return nil
		}
		// Vendor init then start. These bikes stream telemetry with or
		// without a completed handshake, so a failed sequence is logged
		// and the session goes active regardless.
		if err := s.SendCommand(protocol.Command{Op: protocol.OpRequestControl}); err != nil {
			s.logf(SeverityWarning, "fitshow init failed (continuing): %v", err)
			return nil
		}
		if err := s.SendCommand(protocol.Command{Op: protocol.OpStart}); err != nil {
			s.logf(SeverityWarning, "fitshow start failed (continuing): %v", err)
		}
		return nil

	case protocol.KindTacx:
		// FE-C needs no handshake; command pages go straight down once
		// the rider asks for them.
		return nil

	case protocol.KindReborn:
		// The handshake runs asynchronously: the session is active and
		// streaming while the reply is outstanding.
		challenge, err := s.auth.Challenge()
		if err != nil {
			return err
		}
		if err := s.device.WriteCharacteristicWithoutResponse(
			protocol.ServiceUUIDReborn, protocol.CharUUIDRebornWrite, challenge); err != nil {
			return fmt.Errorf("reborn challenge write: %w", err)
		}
		s.logf(SeverityInfo, "reborn challenge sent")
		return nil

	default:
		return nil
	}
}

// SendCommand encodes and writes one control command, then waits the settle
// delay. Read-only protocols fail before any transport call.
func (s *Session) SendCommand(cmd protocol.Command) error {
	s.mu.Lock()
	handler := s.handler
	kind := s.detection.Resolved
	s.mu.Unlock()

	if handler == nil {
		return fmt.Errorf("session not started")
	}
	if !kind.SupportsControl() {
		return fmt.Errorf("%w: %s on %s", protocol.ErrUnsupportedOperation, cmd.Op, kind)
	}

	frame, err := handler.Encode(cmd)
	if err != nil {
		return err
	}

	s.logger.Printf("Session: sending %s to %s (% x)", cmd.Op, frame.CharacteristicUUID, frame.Payload)
	if frame.WithResponse {
		err = s.device.WriteCharacteristic(frame.ServiceUUID, frame.CharacteristicUUID, frame.Payload)
	} else {
		err = s.device.WriteCharacteristicWithoutResponse(frame.ServiceUUID, frame.CharacteristicUUID, frame.Payload)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", cmd.Op, err)
	}

	s.cfg.Delays.sleep(s.delayFor(cmd.Op, kind))
	return nil
}

// SendCommandAwait sends a command and waits for the control point
// acknowledgement on protocols that emit one. Vendor protocols without
// acknowledgements return immediately with ok=false after the settle delay.
func (s *Session) SendCommandAwait(cmd protocol.Command, timeout time.Duration) (protocol.ControlPointResponse, bool, error) {
	// Drain a stale ack from a previous command.
	select {
	case <-s.cpPending:
	default:
	}

	if err := s.SendCommand(cmd); err != nil {
		return protocol.ControlPointResponse{}, false, err
	}

	switch s.Kind() {
	case protocol.KindFTMS, protocol.KindYafitS3, protocol.KindYafitS4:
	default:
		return protocol.ControlPointResponse{}, false, nil
	}

	select {
	case resp := <-s.cpPending:
		return resp, true, nil
	case <-time.After(timeout):
		return protocol.ControlPointResponse{}, false, fmt.Errorf("%s: %w", cmd.Op, ErrAckTimeout)
	}
}

func (s *Session) delayFor(op protocol.CommandOp, kind protocol.Kind) time.Duration {
	switch op {
	case protocol.OpRequestControl, protocol.OpReset, protocol.OpStart, protocol.OpStop, protocol.OpPause:
		if kind == protocol.KindFitShow && op == protocol.OpRequestControl {
			return s.cfg.Delays.VendorInit
		}
		return s.cfg.Delays.StartStop
	default:
		return s.cfg.Delays.Simple
	}
}

// Disconnect tears the session down. Safe to call repeatedly and from any
// state; later calls are no-ops.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	if s.state == StateDisconnected || s.state == StateDisconnecting {
		s.mu.Unlock()
		return nil
	}
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	s.setState(StateDisconnecting)

	// Stop notifications before touching the merger: a late frame must not
	// race Push against the flush below.
	for _, ref := range subs {
		if err := s.device.DisableNotifications(ref.ServiceUUID, ref.CharacteristicUUID); err != nil {
			s.logger.Printf("Session: disable notifications %s: %v", ref.CharacteristicUUID, err)
		}
	}

	// A half-merged frame still holds telemetry; decode it on the way out.
	if buf, ok := s.merger.Flush(); ok {
		s.publish(s.decode(buf))
	}

	s.auth.Reset()
	s.crank.reset()

	err := s.manager.Disconnect(s.device)
	if err != nil {
		s.logf(SeverityError, "disconnect error: %v", err)
	}
	s.setState(StateDisconnected)
	return err
}

// abort tears down after a failed Start.
func (s *Session) abort() {
	if err := s.Disconnect(); err != nil {
		s.logger.Printf("Session: abort disconnect error: %v", err)
	}
}

func (s *Session) decode(buf []byte) protocol.TelemetryRecord {
	s.mu.Lock()
	handler := s.handler
	s.mu.Unlock()
	if handler == nil {
		return protocol.TelemetryRecord{}
	}
	return handler.Decode(buf)
}

// onIndoorBikeFrame feeds the merger; bikes that split one logical frame
// across notifications get reassembled before decoding.
func (s *Session) onIndoorBikeFrame(buf []byte) {
	for _, frame := range s.merger.Push(buf) {
		s.publish(s.decode(frame))
	}
}

func (s *Session) onTelemetryFrame(buf []byte) {
	s.publish(s.decode(buf))
}

// onRebornFrame routes Reborn notifications: handshake replies and failure
// notices are consumed here, everything else is telemetry.
func (s *Session) onRebornFrame(buf []byte) {
	if s.auth.State() == protocol.AuthChallengeSent &&
		len(buf) >= 9 && buf[2] == 0x8A && buf[3] == 0x03 {
		ack, err := s.auth.HandleReply(buf)
		if err != nil {
			s.logf(SeverityWarning, "reborn auth failed: %v", err)
		} else {
			s.logf(SeverityInfo, "reborn auth verified")
		}
		if ack != nil {
			if werr := s.device.WriteCharacteristicWithoutResponse(
				protocol.ServiceUUIDReborn, protocol.CharUUIDRebornWrite, ack); werr != nil {
				s.logf(SeverityWarning, "reborn ack write failed: %v", werr)
			}
		}
		return
	}

	if protocol.IsRebornAuthFailure(buf) {
		s.logf(SeverityWarning, "reborn reported auth failure")
		return
	}

	s.publish(s.decode(buf))
}

// onControlPoint parses acknowledgement frames from the FTMS control point.
func (s *Session) onControlPoint(buf []byte) {
	resp, err := protocol.ParseControlPointResponse(buf)
	if err != nil {
		s.logger.Printf("Session: bad control point frame % x: %v", buf, err)
		return
	}
	s.logf(SeverityInfo, "control point ack %s -> %s", resp.RequestName(), resp.ResultName())

	s.controlEvent.Notify(resp)
	select {
	case s.cpPending <- resp:
	default:
	}
}

// publish finishes a record (crank delta cadence) and hands it to the
// listeners.
func (s *Session) publish(rec protocol.TelemetryRecord) {
	if rec.IsEmpty() && rec.Raw == "" {
		return
	}

	if rec.HasCrankData {
		// The codec surfaces the raw cumulative count; true cadence needs
		// the delta between two samples.
		if rpm, ok := s.crank.update(rec.CrankRevolutions, rec.CrankEventTime); ok {
			rec.HasInstantaneousCadence = true
			rec.InstantaneousCadenceRpm = rpm
		} else {
			rec.HasInstantaneousCadence = false
			rec.InstantaneousCadenceRpm = 0
		}
	}

	if s.cfg.Collect {
		s.mu.Lock()
		s.records = append(s.records, rec)
		s.mu.Unlock()
	}

	s.telemetryEvent.Notify(rec)
}
