package fsm

import "scheduler/types"

/*
 * The elevator's motion state machine lives in the elevator process.
 * The scheduler only needs its initial state for registration and
 * its own view of what a dispatch does to an elevator.
 */
type StateMachine struct {
	state types.ElevBehaviour
}

func NewStateMachine() *StateMachine {
	return &StateMachine{state: types.EB_Idle}
}

func (sm *StateMachine) CurrentState() types.ElevBehaviour {
	return sm.state
}

/*
 * Returns the elevator as the scheduler expects it to be after
 * being sent to targetFloor. Floor is the target, not the current position.
 */
func OnDispatch(elevator types.Elevator, targetFloor int) types.Elevator {
	switch {
	case targetFloor > elevator.Floor:
		elevator.Dirn = types.MD_Up
		elevator.State = types.EB_Moving
	case targetFloor < elevator.Floor:
		elevator.Dirn = types.MD_Down
		elevator.State = types.EB_Moving
	default:
		elevator.Dirn = types.MD_Stop
		elevator.State = types.EB_DoorOpen
	}

	elevator.Floor = targetFloor

	return elevator
}
