package selection

import (
	"fmt"
	"strings"
	"time"

	"scheduler/registry"
	"scheduler/types"
)

type Policy interface {
	Select(dirn types.Direction, floor int, reg *registry.Registry) (types.Elevator, error)
}

type PolicyFunc func(dirn types.Direction, floor int, reg *registry.Registry) (types.Elevator, error)

func (f PolicyFunc) Select(dirn types.Direction, floor int, reg *registry.Registry) (types.Elevator, error) {
	return f(dirn, floor, reg)
}

/*
 * Picks the first registered elevator regardless of the request.
 */
var FirstRegistered = PolicyFunc(func(dirn types.Direction, floor int, reg *registry.Registry) (types.Elevator, error) {
	elevators := reg.Elevators()

	if len(elevators) == 0 {
		return types.Elevator{}, types.ErrNoElevatorAvailable
	}

	return elevators[0], nil
})

type Nearest struct {
	TravelTime       time.Duration
	DoorOpenDuration time.Duration
	DirectionPenalty time.Duration
}

/*
 * Picks the elevator with the lowest Cost, lowest id on ties.
 */
func (n Nearest) Select(dirn types.Direction, floor int, reg *registry.Registry) (types.Elevator, error) {
	elevators := reg.Elevators()

	if len(elevators) == 0 {
		return types.Elevator{}, types.ErrNoElevatorAvailable
	}

	best := elevators[0]
	bestCost := n.Cost(best, dirn, floor)

	for _, elevator := range elevators[1:] {
		cost := n.Cost(elevator, dirn, floor)

		if cost < bestCost || (cost == bestCost && elevator.ID < best.ID) {
			best = elevator
			bestCost = cost
		}
	}

	return best, nil
}

func ByName(name string, nearest Nearest) (Policy, error) {
	switch strings.ToLower(name) {
	case "first", "":
		return FirstRegistered, nil
	case "nearest":
		return nearest, nil
	default:
		return nil, fmt.Errorf("unknown selection policy %q", name)
	}
}
