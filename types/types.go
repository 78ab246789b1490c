package types

import "fmt"

type Direction int

const (
	MD_Down Direction = -1
	MD_Stop Direction = 0
	MD_Up   Direction = 1
)

func (d Direction) String() string {
	switch d {
	case MD_Up:
		return "Up"
	case MD_Down:
		return "Down"
	case MD_Stop:
		return "Stop"
	default:
		return "Undefined"
	}
}

/*
 * Direction byte on the wire: 0 is DOWN, anything else is UP.
 * Validation of the byte itself happens in the protocol package.
 */
func DirectionFromByte(b byte) Direction {
	if b == 0 {
		return MD_Down
	}

	return MD_Up
}

type Floor struct {
	Number uint8
	Port   int
}

func (floor Floor) String() string {
	return fmt.Sprintf("Floor{Number: %d, Port: %d}", floor.Number, floor.Port)
}

/*
 * Floor and Dirn is the scheduler's own record of the last
 * dispatch sent to the elevator, not a position reported by it.
 */
type Elevator struct {
	ID       uint8
	State    ElevBehaviour
	Port     int
	Capacity uint8
	Floor    int
	Dirn     Direction
}

func (elevator Elevator) String() string {
	return fmt.Sprintf(
		"Elevator{ID: %d, State: %s, Port: %d, Capacity: %d, Floor: %d, Dirn: %s}",
		elevator.ID,
		elevator.State,
		elevator.Port,
		elevator.Capacity,
		elevator.Floor,
		elevator.Dirn,
	)
}
