package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"scheduler/fsm"
	"scheduler/logger"
	"scheduler/network"
	"scheduler/protocol"
	"scheduler/registry"
	"scheduler/selection"
	"scheduler/types"
)

var Log = logger.GetLogger()

type LoopState int32

const (
	IDLE LoopState = iota
	AWAITING_PACKET
	DECODING
	SELECTING
	ENCODING
	SENDING
)

func (state LoopState) String() string {
	switch state {
	case IDLE:
		return "Idle"
	case AWAITING_PACKET:
		return "AwaitingPacket"
	case DECODING:
		return "Decoding"
	case SELECTING:
		return "Selecting"
	case ENCODING:
		return "Encoding"
	case SENDING:
		return "Sending"
	default:
		return "Undefined"
	}
}

type PacketConn interface {
	Receive(ctx context.Context) (network.Packet, error)
	Send(reply types.Reply) error
}

/*
 * Result of handling one packet. Elevator is only set when Dispatched.
 */
type Outcome struct {
	Request    types.Request
	Reply      types.Reply
	Elevator   types.Elevator
	Dispatched bool
}

type Scheduler struct {
	conn     PacketConn
	reg      *registry.Registry
	policy   selection.Policy
	portBase int
	state    atomic.Int32
}

func New(conn PacketConn, reg *registry.Registry, policy selection.Policy, portBase int) *Scheduler {
	return &Scheduler{
		conn:     conn,
		reg:      reg,
		policy:   policy,
		portBase: portBase,
	}
}

func (s *Scheduler) State() LoopState {
	return LoopState(s.state.Load())
}

func (s *Scheduler) setState(state LoopState) {
	s.state.Store(int32(state))
	Log.Trace().Str("state", state.String()).Msg("Dispatch loop state")
}

/*
 * Runs receive -> handle -> send until ctx is cancelled or the socket fails.
 * Invalid requests and empty selections are logged and skipped.
 */
func (s *Scheduler) Run(ctx context.Context) error {
	defer s.setState(IDLE)

	for {
		s.setState(AWAITING_PACKET)

		packet, err := s.conn.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				Log.Info().Msg("Dispatch loop stopped")
				return nil
			}
			if !errors.Is(err, types.ErrTransportFailure) {
				err = fmt.Errorf("%w: %w", types.ErrTransportFailure, err)
			}
			return err
		}

		outcome, err := s.Handle(packet)
		if err != nil {
			event := Log.Warn().Err(err)
			if outcome.Request.ID != uuid.Nil {
				event = event.Str("request", outcome.Request.ID.String())
			}
			event.
				Int("port", packet.Port).
				Int("length", len(packet.Data)).
				Ints("data", logger.Bytes(packet.Data)).
				Msg("Request dropped")
			continue
		}

		s.setState(SENDING)

		Log.Info().
			Str("request", outcome.Request.ID.String()).
			Int("port", outcome.Reply.Port).
			Ints("data", logger.Bytes(outcome.Reply.Data)).
			Msg("Sending packet")

		if err := s.conn.Send(outcome.Reply); err != nil {
			if !errors.Is(err, types.ErrTransportFailure) {
				err = fmt.Errorf("%w: %w", types.ErrTransportFailure, err)
			}
			return err
		}

		if outcome.Dispatched {
			s.recordDispatch(outcome)
		}
	}
}

/*
 * Decodes, validates and selects for one packet without doing any I/O.
 */
func (s *Scheduler) Handle(packet network.Packet) (Outcome, error) {
	s.setState(DECODING)

	request, err := protocol.DecodeRequest(packet.Data, packet.Port, s.portBase)
	if err != nil {
		return Outcome{Request: request}, err
	}

	request.ID = uuid.New()
	outcome := Outcome{Request: request}

	source := "Floor"
	if request.Kind == types.STATUS_UPDATE {
		source = "Elevator"
	}

	Log.Info().
		Str("request", request.ID.String()).
		Str("from", source).
		Str("kind", request.Kind.String()).
		Int("port", packet.Port).
		Ints("data", logger.Bytes(packet.Data)).
		Msg("Packet received")

	if floor, ok := s.reg.Floor(request.Floor); ok && request.Kind != types.STATUS_UPDATE {
		Log.Debug().
			Str("request", request.ID.String()).
			Int("floorPort", floor.Port).
			Msgf("Request concerns %s", floor)
	}

	floorCount := s.reg.FloorCount()

	switch request.Kind {
	case types.FLOOR_CALL:
		if !protocol.IsValid(packet.Data, floorCount) {
			return outcome, fmt.Errorf(
				"floor call %v with %d floors: %w",
				logger.Bytes(packet.Data),
				floorCount,
				types.ErrInvalidRequest,
			)
		}
		return s.dispatch(outcome)

	case types.FLOOR_REACHED:
		if !protocol.ValidFloor(request.Floor, floorCount) {
			return outcome, fmt.Errorf(
				"floor %d with %d floors: %w",
				request.Floor,
				floorCount,
				types.ErrInvalidRequest,
			)
		}
		return s.dispatch(outcome)

	case types.STATUS_UPDATE:
		s.setState(ENCODING)
		outcome.Reply = protocol.EncodeFloorUpdate(request.Status, request.ReplyPort)
		return outcome, nil

	default:
		return outcome, fmt.Errorf("kind %s: %w", request.Kind, types.ErrInvalidRequest)
	}
}

func (s *Scheduler) dispatch(outcome Outcome) (Outcome, error) {
	s.setState(SELECTING)

	request := outcome.Request
	elevator, err := s.policy.Select(request.Dirn, int(request.Floor), s.reg)
	if err != nil {
		return outcome, fmt.Errorf("floor %d %s: %w", request.Floor, request.Dirn, err)
	}

	s.setState(ENCODING)

	outcome.Elevator = elevator
	outcome.Dispatched = true
	outcome.Reply = protocol.EncodeElevatorDispatch(request.Floor, elevator.Port)

	return outcome, nil
}

/*
 * Updates the registry's record of the dispatched elevator. Reads the
 * stored record so fields set since selection are kept.
 */
func (s *Scheduler) recordDispatch(outcome Outcome) {
	current, ok := s.reg.Elevator(outcome.Elevator.ID)
	if !ok {
		Log.Error().
			Str("request", outcome.Request.ID.String()).
			Uint8("elevator", outcome.Elevator.ID).
			Msg("Dispatched elevator is not registered")
		return
	}

	dispatched := fsm.OnDispatch(current, int(outcome.Request.Floor))

	if err := s.reg.RecordDispatch(dispatched); err != nil {
		Log.Error().Err(err).Msg("Could not record dispatch")
	}
}
