package protocol

import (
	"fmt"

	"scheduler/types"
)

const (
	BUFFER_SIZE = 3

	INIT_DONE_LEN     = 1
	FLOOR_INIT_LEN    = 2
	ELEVATOR_INIT_LEN = 3

	FLOOR_CALL_LEN = 3
	NOTICE_LEN     = 2
	REPLY_LEN      = 1

	DIRN_DOWN byte = 0
	DIRN_UP   byte = 1

	FLOORS_DONE_SIGNAL    byte = 0
	ELEVATORS_DONE_SIGNAL byte = 1
)

/*
 * Ports travel as a single byte offset from portBase.
 */
func PortFromByte(b byte, portBase int) int {
	return portBase + int(b)
}

func PortToByte(port int, portBase int) (byte, error) {
	offset := port - portBase
	if offset < 0 || offset > 255 {
		return 0, fmt.Errorf("port %d not representable with base %d", port, portBase)
	}

	return byte(offset), nil
}

/*
 * Replies can never be sent to port 0.
 */
func validPeerPort(port int) bool {
	return port > 0 && port <= 65535
}

/*
 * Classifies an init-phase packet by its length. Registrations
 * whose port resolves to 0 are rejected.
 */
func DecodeInit(data []byte, portBase int, initialState types.ElevBehaviour) (types.InitMsg, error) {
	switch len(data) {
	case INIT_DONE_LEN:
		if data[0] == FLOORS_DONE_SIGNAL {
			return types.InitMsg{Kind: types.FLOORS_DONE}, nil
		}
		return types.InitMsg{Kind: types.ELEVATORS_DONE}, nil

	case FLOOR_INIT_LEN:
		port := PortFromByte(data[1], portBase)
		if !validPeerPort(port) {
			return types.InitMsg{}, fmt.Errorf("floor %d port %d: %w", data[0], port, types.ErrMalformedInitMessage)
		}

		return types.InitMsg{
			Kind: types.REGISTER_FLOOR,
			Floor: types.Floor{
				Number: data[0],
				Port:   port,
			},
		}, nil

	case ELEVATOR_INIT_LEN:
		port := PortFromByte(data[1], portBase)
		if !validPeerPort(port) {
			return types.InitMsg{}, fmt.Errorf("elevator %d port %d: %w", data[0], port, types.ErrMalformedInitMessage)
		}

		return types.InitMsg{
			Kind: types.REGISTER_ELEVATOR,
			Elevator: types.Elevator{
				ID:       data[0],
				State:    initialState,
				Port:     port,
				Capacity: data[2],
				Floor:    0,
				Dirn:     types.MD_Stop,
			},
		}, nil

	default:
		return types.InitMsg{}, fmt.Errorf("length %d: %w", len(data), types.ErrMalformedInitMessage)
	}
}

/*
 * Decodes a runtime packet by shape. Range checks against the
 * registry are left to IsValid / ValidFloor.
 */
func DecodeRequest(data []byte, sourcePort int, portBase int) (types.Request, error) {
	request := types.Request{
		SourcePort: sourcePort,
		Raw:        append([]byte(nil), data...),
	}

	switch len(data) {
	case FLOOR_CALL_LEN:
		request.Kind = types.FLOOR_CALL
		request.Dirn = types.DirectionFromByte(data[0])
		request.Floor = data[1]

	case NOTICE_LEN:
		if data[1] == 0 {
			request.Kind = types.FLOOR_REACHED
			request.Dirn = types.DirectionFromByte(data[0])
			request.Floor = data[0]
		} else {
			request.Kind = types.STATUS_UPDATE
			request.Status = data[0]
			request.ReplyPort = PortFromByte(data[1], portBase)
		}

	default:
		return request, fmt.Errorf("length %d: %w", len(data), types.ErrInvalidRequest)
	}

	return request, nil
}

/*
 * A floor call is valid if it is three bytes, the direction byte
 * is DOWN or UP and 0 <= floor <= floorCount.
 */
func IsValid(data []byte, floorCount int) bool {
	if len(data) != FLOOR_CALL_LEN {
		return false
	}
	if data[0] != DIRN_DOWN && data[0] != DIRN_UP {
		return false
	}

	return ValidFloor(data[1], floorCount)
}

func ValidFloor(floor uint8, floorCount int) bool {
	return int(floor) <= floorCount
}

func EncodeElevatorDispatch(floor uint8, port int) types.Reply {
	return types.Reply{Port: port, Data: []byte{floor}}
}

func EncodeFloorUpdate(status uint8, port int) types.Reply {
	return types.Reply{Port: port, Data: []byte{status}}
}

/*
 * Elevator side of EncodeElevatorDispatch.
 */
func DecodeDispatch(data []byte) (uint8, error) {
	if len(data) != REPLY_LEN {
		return 0, fmt.Errorf("dispatch length %d: %w", len(data), types.ErrInvalidRequest)
	}

	return data[0], nil
}

/*
 * Floor side of EncodeFloorUpdate.
 */
func DecodeUpdate(data []byte) (uint8, error) {
	if len(data) != REPLY_LEN {
		return 0, fmt.Errorf("update length %d: %w", len(data), types.ErrInvalidRequest)
	}

	return data[0], nil
}
