package selection

import (
	"time"

	"scheduler/types"
)

/*
 * Estimated time until the elevator can serve a request at floor going dirn.
 * - travel time for every floor between the elevator and the request
 * - penalty if the elevator is moving away from the floor or against dirn
 * - door time if the doors are open
 */
func (n Nearest) Cost(elevator types.Elevator, dirn types.Direction, floor int) time.Duration {
	distance := floor - elevator.Floor
	if distance < 0 {
		distance = -distance
	}

	duration := time.Duration(distance) * n.TravelTime

	switch elevator.State {
	case types.EB_Moving:
		if elevator.Dirn != dirn || movingAway(elevator, floor) {
			duration += n.DirectionPenalty
		}

	case types.EB_DoorOpen:
		duration += n.DoorOpenDuration
	}

	return duration
}

func movingAway(elevator types.Elevator, floor int) bool {
	switch elevator.Dirn {
	case types.MD_Up:
		return floor < elevator.Floor
	case types.MD_Down:
		return floor > elevator.Floor
	default:
		return false
	}
}
