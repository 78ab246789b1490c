package registry

import (
	"fmt"
	"sync"

	"github.com/tiendc/go-deepcopy"

	"scheduler/types"
)

/*
 * Known floors and elevators, kept in registration order.
 * Written during the handshake and, afterwards, only by the dispatch loop.
 */
type Registry struct {
	mu        sync.RWMutex
	floors    []types.Floor
	elevators []types.Elevator
	floorIdx  map[uint8]int
	elevIdx   map[uint8]int
}

type Snapshot struct {
	Floors    []types.Floor
	Elevators []types.Elevator
}

func New() *Registry {
	return &Registry{
		floorIdx: make(map[uint8]int),
		elevIdx:  make(map[uint8]int),
	}
}

func (reg *Registry) AddFloor(floor types.Floor) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.floorIdx[floor.Number]; exists {
		return fmt.Errorf("floor %d: %w", floor.Number, types.ErrDuplicateFloor)
	}

	reg.floorIdx[floor.Number] = len(reg.floors)
	reg.floors = append(reg.floors, floor)

	return nil
}

func (reg *Registry) AddElevator(elevator types.Elevator) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.elevIdx[elevator.ID]; exists {
		return fmt.Errorf("elevator %d: %w", elevator.ID, types.ErrDuplicateElevator)
	}

	reg.elevIdx[elevator.ID] = len(reg.elevators)
	reg.elevators = append(reg.elevators, elevator)

	return nil
}

func (reg *Registry) Floor(number uint8) (types.Floor, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	idx, ok := reg.floorIdx[number]
	if !ok {
		return types.Floor{}, false
	}

	return reg.floors[idx], true
}

func (reg *Registry) Elevator(id uint8) (types.Elevator, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	idx, ok := reg.elevIdx[id]
	if !ok {
		return types.Elevator{}, false
	}

	return reg.elevators[idx], true
}

/*
 * Floors and Elevators return copies in registration order.
 */
func (reg *Registry) Floors() []types.Floor {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	return append([]types.Floor(nil), reg.floors...)
}

func (reg *Registry) Elevators() []types.Elevator {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	return append([]types.Elevator(nil), reg.elevators...)
}

func (reg *Registry) FloorCount() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	return len(reg.floors)
}

func (reg *Registry) ElevatorCount() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	return len(reg.elevators)
}

/*
 * Replaces the stored record of an elevator after a dispatch.
 * ID is the key and cannot be changed this way.
 */
func (reg *Registry) RecordDispatch(elevator types.Elevator) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	idx, ok := reg.elevIdx[elevator.ID]
	if !ok {
		return fmt.Errorf("elevator %d: %w", elevator.ID, types.ErrNoElevatorAvailable)
	}

	reg.elevators[idx] = elevator

	return nil
}

func (reg *Registry) Snapshot() (Snapshot, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	var snapshot Snapshot
	err := deepcopy.Copy(&snapshot, Snapshot{Floors: reg.floors, Elevators: reg.elevators})

	if err != nil {
		return Snapshot{}, err
	}

	return snapshot, nil
}
