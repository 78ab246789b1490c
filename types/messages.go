package types

import "github.com/google/uuid"

type RequestKind int

const (
	FLOOR_CALL RequestKind = iota
	FLOOR_REACHED
	STATUS_UPDATE
)

func (kind RequestKind) String() string {
	switch kind {
	case FLOOR_CALL:
		return "FloorCall"
	case FLOOR_REACHED:
		return "FloorReached"
	case STATUS_UPDATE:
		return "StatusUpdate"
	default:
		return "Unknown"
	}
}

/*
 * A decoded runtime packet. Lives for one iteration of the dispatch loop.
 * Only the fields relevant to Kind are set.
 */
type Request struct {
	ID         uuid.UUID
	Kind       RequestKind
	Dirn       Direction
	Floor      uint8
	Status     uint8
	ReplyPort  int
	SourcePort int
	Raw        []byte
}

/*
 * Always a single byte addressed to a peer on the local host.
 */
type Reply struct {
	Port int
	Data []byte
}

type InitKind int

const (
	FLOORS_DONE InitKind = iota
	ELEVATORS_DONE
	REGISTER_FLOOR
	REGISTER_ELEVATOR
)

func (kind InitKind) String() string {
	switch kind {
	case FLOORS_DONE:
		return "FloorsDone"
	case ELEVATORS_DONE:
		return "ElevatorsDone"
	case REGISTER_FLOOR:
		return "RegisterFloor"
	case REGISTER_ELEVATOR:
		return "RegisterElevator"
	default:
		return "Unknown"
	}
}

type InitMsg struct {
	Kind     InitKind
	Floor    Floor
	Elevator Elevator
}
