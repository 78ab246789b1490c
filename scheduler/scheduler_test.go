package scheduler

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"scheduler/network"
	"scheduler/registry"
	"scheduler/selection"
	"scheduler/types"
)

const ELEVATOR_PORT = 7000

type fakeConn struct {
	mu      sync.Mutex
	packets chan network.Packet
	sent    chan types.Reply
	recvErr error
	sendErr error
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		packets: make(chan network.Packet, 16),
		sent:    make(chan types.Reply, 16),
	}
}

func (c *fakeConn) Receive(ctx context.Context) (network.Packet, error) {
	c.mu.Lock()
	recvErr := c.recvErr
	c.mu.Unlock()

	if recvErr != nil {
		return network.Packet{}, recvErr
	}

	select {
	case packet := <-c.packets:
		return packet, nil
	case <-ctx.Done():
		return network.Packet{}, ctx.Err()
	}
}

func (c *fakeConn) Send(reply types.Reply) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent <- reply
	return nil
}

func newRegistry(numFloors int, elevators ...types.Elevator) *registry.Registry {
	reg := registry.New()
	for floor := 0; floor < numFloors; floor++ {
		_ = reg.AddFloor(types.Floor{Number: uint8(floor), Port: 6000 + floor})
	}
	for _, elevator := range elevators {
		_ = reg.AddElevator(elevator)
	}
	return reg
}

func TestHandle(t *testing.T) {
	reg := newRegistry(2, types.Elevator{ID: 0, Port: ELEVATOR_PORT})
	s := New(newFakeConn(), reg, selection.FirstRegistered, 8990)

	tests := []struct {
		name           string
		data           []byte
		wantReply      types.Reply
		wantDispatched bool
	}{
		{"up call floor 0", []byte{1, 0, 0}, types.Reply{Port: ELEVATOR_PORT, Data: []byte{0}}, true},
		{"down call floor 2", []byte{0, 2, 0}, types.Reply{Port: ELEVATOR_PORT, Data: []byte{2}}, true},
		{"floor reached", []byte{1, 0}, types.Reply{Port: ELEVATOR_PORT, Data: []byte{1}}, true},
		{"status update", []byte{5, 10}, types.Reply{Port: 9000, Data: []byte{5}}, false},
	}

	for _, test := range tests {
		outcome, err := s.Handle(network.Packet{Data: test.data, Port: 5000})
		if err != nil {
			t.Errorf("%s: Handle() error = %v", test.name, err)
			continue
		}

		if outcome.Reply.Port != test.wantReply.Port || !bytes.Equal(outcome.Reply.Data, test.wantReply.Data) {
			t.Errorf("%s: Handle() reply = %+v, expected %+v", test.name, outcome.Reply, test.wantReply)
		}
		if outcome.Dispatched != test.wantDispatched {
			t.Errorf("%s: Handle() dispatched = %v, expected %v", test.name, outcome.Dispatched, test.wantDispatched)
		}
	}
}

func TestHandleInvalid(t *testing.T) {
	reg := newRegistry(2, types.Elevator{ID: 0, Port: ELEVATOR_PORT})
	s := New(newFakeConn(), reg, selection.FirstRegistered, 0)

	for _, data := range [][]byte{
		{1, 200, 0},
		{2, 1, 0},
		{9, 0},
		{1},
		{},
	} {
		_, err := s.Handle(network.Packet{Data: data, Port: 5000})
		if !errors.Is(err, types.ErrInvalidRequest) {
			t.Errorf("Handle(%v) error = %v, expected %v", data, err, types.ErrInvalidRequest)
		}
	}
}

func TestHandleNoElevator(t *testing.T) {
	s := New(newFakeConn(), newRegistry(2), selection.FirstRegistered, 0)

	_, err := s.Handle(network.Packet{Data: []byte{1, 1, 0}})
	if !errors.Is(err, types.ErrNoElevatorAvailable) {
		t.Errorf("Handle() error = %v, expected %v", err, types.ErrNoElevatorAvailable)
	}
}

func TestRunSkipsBadPackets(t *testing.T) {
	conn := newFakeConn()
	reg := newRegistry(2, types.Elevator{ID: 0, Port: ELEVATOR_PORT})
	s := New(conn, reg, selection.FirstRegistered, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	conn.packets <- network.Packet{Data: []byte{1, 200, 0}, Port: 5000}
	conn.packets <- network.Packet{Data: []byte{1}, Port: 5000}
	conn.packets <- network.Packet{Data: []byte{1, 1, 0}, Port: 5000}

	select {
	case reply := <-conn.sent:
		if reply.Port != ELEVATOR_PORT || !bytes.Equal(reply.Data, []byte{1}) {
			t.Errorf("sent %+v, expected [1] to port %d", reply, ELEVATOR_PORT)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no packet sent")
	}

	select {
	case reply := <-conn.sent:
		t.Errorf("unexpected extra packet %+v", reply)
	default:
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v, expected nil on cancel", err)
	}
	if s.State() != IDLE {
		t.Errorf("State() = %s after Run returned, expected %s", s.State(), IDLE)
	}
}

func TestRunRecordsDispatch(t *testing.T) {
	conn := newFakeConn()
	reg := newRegistry(5,
		types.Elevator{ID: 0, Port: ELEVATOR_PORT},
		types.Elevator{ID: 1, Port: ELEVATOR_PORT + 1},
	)
	nearest := selection.Nearest{TravelTime: time.Second, DoorOpenDuration: time.Second, DirectionPenalty: time.Second}
	s := New(conn, reg, nearest, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	conn.packets <- network.Packet{Data: []byte{1, 4, 0}}
	first := <-conn.sent

	conn.packets <- network.Packet{Data: []byte{0, 0, 0}}
	second := <-conn.sent

	if first.Port != ELEVATOR_PORT {
		t.Errorf("first dispatch to port %d, expected %d", first.Port, ELEVATOR_PORT)
	}
	if second.Port != ELEVATOR_PORT+1 {
		t.Errorf("second dispatch to port %d, expected %d", second.Port, ELEVATOR_PORT+1)
	}
}

func TestRunTransportFailure(t *testing.T) {
	conn := newFakeConn()
	conn.recvErr = errors.New("socket closed")
	s := New(conn, newRegistry(1), selection.FirstRegistered, 0)

	err := s.Run(context.Background())
	if !errors.Is(err, types.ErrTransportFailure) {
		t.Errorf("Run() error = %v, expected %v", err, types.ErrTransportFailure)
	}
}

func TestRunSendFailure(t *testing.T) {
	conn := newFakeConn()
	conn.sendErr = types.ErrTransportFailure
	s := New(conn, newRegistry(1, types.Elevator{ID: 0, Port: ELEVATOR_PORT}), selection.FirstRegistered, 0)

	conn.packets <- network.Packet{Data: []byte{1, 0, 0}}

	err := s.Run(context.Background())
	if !errors.Is(err, types.ErrTransportFailure) {
		t.Errorf("Run() error = %v, expected %v", err, types.ErrTransportFailure)
	}
}

func TestRunOverUDP(t *testing.T) {
	const host = "127.0.0.1"

	listen := func() *network.Conn {
		conn, err := network.Listen(host, 0, host)
		if err != nil {
			t.Fatalf("Listen() error = %v", err)
		}
		t.Cleanup(func() { conn.Close() })
		return conn
	}

	server := listen()
	floorPanel := listen()
	elevator := listen()

	reg := newRegistry(2, types.Elevator{ID: 0, Port: elevator.LocalPort()})
	s := New(server, reg, selection.FirstRegistered, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	go s.Run(ctx)

	if err := floorPanel.SendTo(server.LocalPort(), []byte{1, 0, 0}); err != nil {
		t.Fatalf("SendTo() error = %v", err)
	}

	packet, err := elevator.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if !bytes.Equal(packet.Data, []byte{0}) {
		t.Errorf("elevator received %v, expected [0]", packet.Data)
	}
}

func TestHandleRequestID(t *testing.T) {
	reg := newRegistry(2, types.Elevator{ID: 0, Port: ELEVATOR_PORT})
	s := New(newFakeConn(), reg, selection.FirstRegistered, 0)

	outcome, err := s.Handle(network.Packet{Data: []byte{1}, Port: 5000})
	if err == nil || outcome.Request.ID != uuid.Nil {
		t.Errorf("Handle([1]) id = %s, error = %v, expected no id and an error", outcome.Request.ID, err)
	}

	outcome, err = s.Handle(network.Packet{Data: []byte{1, 200, 0}, Port: 5000})
	if !errors.Is(err, types.ErrInvalidRequest) || outcome.Request.ID == uuid.Nil {
		t.Errorf("Handle([1 200 0]) id = %s, error = %v, expected an id and %v",
			outcome.Request.ID, err, types.ErrInvalidRequest)
	}

	first, _ := s.Handle(network.Packet{Data: []byte{1, 0, 0}, Port: 5000})
	second, _ := s.Handle(network.Packet{Data: []byte{1, 0, 0}, Port: 5000})
	if first.Request.ID == uuid.Nil || first.Request.ID == second.Request.ID {
		t.Errorf("request ids %s and %s, expected two distinct ids", first.Request.ID, second.Request.ID)
	}
}

func TestRecordDispatch(t *testing.T) {
	reg := newRegistry(5, types.Elevator{ID: 0, Port: ELEVATOR_PORT, Capacity: 6})
	s := New(newFakeConn(), reg, selection.FirstRegistered, 0)

	outcome, err := s.Handle(network.Packet{Data: []byte{1, 4, 0}, Port: 5000})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	s.recordDispatch(outcome)

	elevator, _ := reg.Elevator(0)
	if elevator.Floor != 4 || elevator.Dirn != types.MD_Up || elevator.State != types.EB_Moving {
		t.Errorf("Elevator(0) = %s, expected moving up to floor 4", elevator)
	}
	if elevator.Capacity != 6 || elevator.Port != ELEVATOR_PORT {
		t.Errorf("Elevator(0) = %s, registration fields changed", elevator)
	}

	outcome.Elevator.ID = 9
	s.recordDispatch(outcome)
	if reg.ElevatorCount() != 1 {
		t.Errorf("unknown elevator was added to the registry")
	}
}
