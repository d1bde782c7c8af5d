package session

import (
	"errors"
	"time"

	"github.com/9916bernard/isYafit-mobile-sub001/internal/protocol"
)

// ProbeOutcome is the verdict for one probed command.
type ProbeOutcome string

const (
	ProbeAcknowledged ProbeOutcome = "acknowledged" // ack received, success
	ProbeRefused      ProbeOutcome = "refused"      // ack received, failure code
	ProbeSent         ProbeOutcome = "sent"         // written, protocol has no acks
	ProbeNoAck        ProbeOutcome = "no_ack"       // written, ack never arrived
	ProbeUnsupported  ProbeOutcome = "unsupported"  // protocol rejects the op
	ProbeWriteFailed  ProbeOutcome = "write_failed" // transport error
)

// ProbeStep records one command and its outcome.
type ProbeStep struct {
	Op       protocol.CommandOp
	Outcome  ProbeOutcome
	Result   string // control point result name when an ack arrived
	Err      string
	Duration time.Duration
}

// ProbeReport is the full result of exercising a device's control surface.
type ProbeReport struct {
	Kind  protocol.Kind
	Steps []ProbeStep
}

// probeCommands is the sequence used to exercise a controllable trainer:
// take control, reset, start, drive each target mode, then stop.
var probeCommands = []protocol.Command{
	{Op: protocol.OpRequestControl},
	{Op: protocol.OpReset},
	{Op: protocol.OpStart},
	{Op: protocol.OpSetResistance, ResistanceLevel: 5},
	{Op: protocol.OpSetTargetPower, TargetPower: 100},
	{Op: protocol.OpSetSimulation, Sim: protocol.SimulationParams{GradePercent: 2.0, Crr: 0.004, Cw: 0.51}},
	{Op: protocol.OpStop},
}

// Probe runs the command sequence against an active session and reports
// per-command outcomes. Steps keep going past failures: a refused target
// power mode says nothing about simulation mode.
func (s *Session) Probe(ackTimeout time.Duration) ProbeReport {
	kind := s.Kind()
	report := ProbeReport{Kind: kind}

	for _, cmd := range probeCommands {
		start := time.Now()
		step := ProbeStep{Op: cmd.Op}

		resp, acked, err := s.SendCommandAwait(cmd, ackTimeout)
		switch {
		case errors.Is(err, protocol.ErrUnsupportedOperation):
			step.Outcome = ProbeUnsupported
			step.Err = err.Error()
		case errors.Is(err, ErrAckTimeout):
			step.Outcome = ProbeNoAck
			step.Err = err.Error()
		case err != nil:
			step.Outcome = ProbeWriteFailed
			step.Err = err.Error()
		case acked && resp.Success():
			step.Outcome = ProbeAcknowledged
			step.Result = resp.ResultName()
		case acked:
			step.Outcome = ProbeRefused
			step.Result = resp.ResultName()
		default:
			step.Outcome = ProbeSent
		}

		step.Duration = time.Since(start)
		report.Steps = append(report.Steps, step)
		s.logger.Printf("Session: probe %s -> %s %s", cmd.Op, step.Outcome, step.Result)
	}

	return report
}
