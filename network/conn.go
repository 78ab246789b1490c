package network

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/libp2p/go-reuseport"

	"scheduler/protocol"
	"scheduler/types"
)

const BUFFER_SIZE = protocol.BUFFER_SIZE
const LISTEN_TIMEOUT = 300

type Packet struct {
	Data []byte
	Port int
}

/*
 * One UDP socket used for both receiving and replying.
 * Replies go to peerHost at the port given by the caller.
 */
type Conn struct {
	packetConnection net.PacketConn
	peerHost         string
}

func Listen(host string, port int, peerHost string) (*Conn, error) {
	packetConnection, err := reuseport.ListenPacket("udp4", fmt.Sprintf("%s:%d", host, port))

	if err != nil {
		return nil, fmt.Errorf("listen on %s:%d: %w: %w", host, port, types.ErrTransportFailure, err)
	}

	return &Conn{packetConnection: packetConnection, peerHost: peerHost}, nil
}

func (c *Conn) LocalPort() int {
	if addr, ok := c.packetConnection.LocalAddr().(*net.UDPAddr); ok {
		return addr.Port
	}

	return 0
}

/*
 * Blocks until a datagram arrives or ctx is done. The read deadline is
 * renewed every LISTEN_TIMEOUT ms so cancellation is noticed.
 * Datagrams longer than BUFFER_SIZE are truncated.
 */
func (c *Conn) Receive(ctx context.Context) (Packet, error) {
	buffer := make([]byte, BUFFER_SIZE)

	for {
		if err := ctx.Err(); err != nil {
			return Packet{}, err
		}

		deadline := time.Now().Add(LISTEN_TIMEOUT * time.Millisecond)
		if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
			deadline = ctxDeadline
		}

		err := c.packetConnection.SetReadDeadline(deadline)
		if err != nil {
			return Packet{}, fmt.Errorf("set read deadline: %w: %w", types.ErrTransportFailure, err)
		}

		n, addr, err := c.packetConnection.ReadFrom(buffer)

		/*
		 * UDP read timed out
		 */
		if nErr, ok := err.(net.Error); ok && nErr.Timeout() {
			continue
		}

		if err != nil {
			if ctx.Err() != nil {
				return Packet{}, ctx.Err()
			}
			return Packet{}, fmt.Errorf("receive: %w: %w", types.ErrTransportFailure, err)
		}

		packet := Packet{Data: append([]byte(nil), buffer[:n]...)}
		if udpAddr, ok := addr.(*net.UDPAddr); ok {
			packet.Port = udpAddr.Port
		}

		return packet, nil
	}
}

func (c *Conn) Send(reply types.Reply) error {
	return c.SendTo(reply.Port, reply.Data)
}

func (c *Conn) SendTo(port int, data []byte) error {
	resolvedAddr, err := net.ResolveUDPAddr("udp4", fmt.Sprintf("%s:%d", c.peerHost, port))
	if err != nil {
		return fmt.Errorf("resolve %s:%d: %w: %w", c.peerHost, port, types.ErrTransportFailure, err)
	}

	_, err = c.packetConnection.WriteTo(data, resolvedAddr)
	if err != nil {
		return fmt.Errorf("send to %s: %w: %w", resolvedAddr, types.ErrTransportFailure, err)
	}

	return nil
}

func (c *Conn) Close() error {
	return c.packetConnection.Close()
}
