package protocol

import "fmt"

/*
 * Encoders for the packets floor and elevator processes send to the scheduler.
 */

func EncodeFloorsDone() []byte {
	return []byte{FLOORS_DONE_SIGNAL}
}

func EncodeElevatorsDone() []byte {
	return []byte{ELEVATORS_DONE_SIGNAL}
}

func EncodeFloorInit(floor uint8, port int, portBase int) ([]byte, error) {
	portByte, err := PortToByte(port, portBase)
	if err != nil {
		return nil, err
	}

	return []byte{floor, portByte}, nil
}

func EncodeElevatorInit(id uint8, port int, capacity uint8, portBase int) ([]byte, error) {
	portByte, err := PortToByte(port, portBase)
	if err != nil {
		return nil, err
	}

	return []byte{id, portByte, capacity}, nil
}

func EncodeFloorCall(up bool, floor uint8) []byte {
	dirn := DIRN_DOWN
	if up {
		dirn = DIRN_UP
	}

	return []byte{dirn, floor, 0}
}

func EncodeFloorReached(floor uint8) []byte {
	return []byte{floor, 0}
}

/*
 * replyPort must not map to byte 0, which would read as a floor-reached notice.
 */
func EncodeStatusUpdate(status uint8, replyPort int, portBase int) ([]byte, error) {
	portByte, err := PortToByte(replyPort, portBase)
	if err != nil {
		return nil, err
	}
	if portByte == 0 {
		return nil, fmt.Errorf("reply port %d collides with floor-reached marker", replyPort)
	}

	return []byte{status, portByte}, nil
}
