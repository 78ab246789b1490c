package handshake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scheduler/fsm"
	"scheduler/logger"
	"scheduler/network"
	"scheduler/protocol"
	"scheduler/registry"
	"scheduler/types"
)

var Log = logger.GetLogger()

type Receiver interface {
	Receive(ctx context.Context) (network.Packet, error)
}

type State struct {
	FloorsDone    bool
	ElevatorsDone bool
}

func (state State) Done() bool {
	return state.FloorsDone && state.ElevatorsDone
}

type Config struct {
	PortBase int
	Timeout  time.Duration
}

/*
 * Applies one init packet to the registry. Repeated done signals only
 * set the flag again. Errors mean the packet was skipped.
 */
func Apply(
	state State,
	data []byte,
	portBase int,
	sm *fsm.StateMachine,
	reg *registry.Registry,
) (State, error) {

	msg, err := protocol.DecodeInit(data, portBase, sm.CurrentState())
	if err != nil {
		return state, err
	}

	switch msg.Kind {
	case types.FLOORS_DONE:
		if state.FloorsDone {
			Log.Warn().Msg("Floors done signal received again")
		}
		state.FloorsDone = true
		Log.Info().Msg("Floors initialized")

	case types.ELEVATORS_DONE:
		if state.ElevatorsDone {
			Log.Warn().Msg("Elevators done signal received again")
		}
		state.ElevatorsDone = true
		Log.Info().Msg("Elevators initialized")

	case types.REGISTER_FLOOR:
		if err := reg.AddFloor(msg.Floor); err != nil {
			return state, err
		}
		Log.Info().Msgf("Added %s", msg.Floor)

	case types.REGISTER_ELEVATOR:
		if err := reg.AddElevator(msg.Elevator); err != nil {
			return state, err
		}
		Log.Info().Msgf("Added %s", msg.Elevator)
	}

	return state, nil
}

/*
 * Blocks until both the floors done and elevators done signals have
 * been received. A zero Timeout waits forever.
 */
func Run(
	ctx context.Context,
	conn Receiver,
	reg *registry.Registry,
	sm *fsm.StateMachine,
	config Config,
) error {

	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	var state State

	for !state.Done() {
		packet, err := conn.Receive(ctx)

		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf(
				"%w after %v (floors done: %t, elevators done: %t)",
				types.ErrStartupTimeout,
				config.Timeout,
				state.FloorsDone,
				state.ElevatorsDone,
			)
		}

		if err != nil {
			return err
		}

		Log.Debug().
			Int("port", packet.Port).
			Int("length", len(packet.Data)).
			Ints("data", logger.Bytes(packet.Data)).
			Msg("Init packet received")

		state, err = Apply(state, packet.Data, config.PortBase, sm, reg)
		if err != nil {
			Log.Warn().
				Err(err).
				Int("port", packet.Port).
				Int("length", len(packet.Data)).
				Ints("data", logger.Bytes(packet.Data)).
				Msg("Invalid init message skipped")
		}
	}

	_ = LogRegistry(reg)

	return nil
}

/*
 * Logs a deep copy of the registry, floors first.
 */
func LogRegistry(reg *registry.Registry) error {
	snapshot, err := reg.Snapshot()
	if err != nil {
		Log.Error().Err(err).Msg("Could not snapshot registry")
		return err
	}

	for _, floor := range snapshot.Floors {
		Log.Info().Msg(floor.String())
	}
	for _, elevator := range snapshot.Elevators {
		Log.Info().Msg(elevator.String())
	}

	return nil
}
