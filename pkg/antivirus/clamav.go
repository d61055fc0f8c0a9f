package antivirus

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"strings"
	"time"
)

// chunkSize stays well below clamd's default StreamMaxLength.
const chunkSize = 1 << 20

// ClamAV talks to clamd with the INSTREAM command.
type ClamAV struct {
	network string
	address string
	timeout time.Duration
	dial    func(ctx context.Context, network, address string) (net.Conn, error)
}

var _ Scanner = (*ClamAV)(nil)

// NewClamAV accepts "host:port" or an absolute unix socket path.
func NewClamAV(address string, timeout time.Duration) *ClamAV {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	network := "tcp"
	if strings.HasPrefix(address, "/") {
		network = "unix"
	}
	d := &net.Dialer{}
	return &ClamAV{network: network, address: address, timeout: timeout, dial: d.DialContext}
}

func (c *ClamAV) Name() string { return "clamav" }

func (c *ClamAV) conn(ctx context.Context) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	conn, err := c.dial(ctx, c.network, c.address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)
	return conn, nil
}

// Ping reports whether clamd answers PONG.
func (c *ClamAV) Ping(ctx context.Context) error {
	conn, err := c.conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zPING\x00")); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	reply, err := bufio.NewReader(conn).ReadString(0)
	if err != nil && reply == "" {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if strings.TrimRight(reply, "\x00\n") != "PONG" {
		return fmt.Errorf("%w: unexpected reply %q", ErrUnavailable, reply)
	}
	return nil
}

// Scan streams data to clamd. Any transport or daemon error is returned as an error with Infected unset;
// callers must not store the file in that case.
func (c *ClamAV) Scan(ctx context.Context, name string, data []byte) (Result, error) {
	res := Result{Scanner: c.Name()}

	conn, err := c.conn(ctx)
	if err != nil {
		return res, err
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zINSTREAM\x00")); err != nil {
		return res, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	size := make([]byte, 4)
	for start := 0; start < len(data); start += chunkSize {
		end := start + chunkSize
		if end > len(data) {
			end = len(data)
		}
		binary.BigEndian.PutUint32(size, uint32(end-start))
		if _, err := conn.Write(size); err != nil {
			return res, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if _, err := conn.Write(data[start:end]); err != nil {
			return res, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	if _, err := conn.Write([]byte{0, 0, 0, 0}); err != nil {
		return res, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	reply, err := bufio.NewReader(conn).ReadString(0)
	if err != nil && reply == "" {
		return res, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return parseReply(res, reply)
}

// parseReply understands "stream: OK", "stream: <name> FOUND" and "<message> ERROR".
func parseReply(res Result, reply string) (Result, error) {
	reply = strings.TrimSpace(strings.TrimRight(reply, "\x00"))
	body := reply
	if i := strings.Index(reply, ":"); i >= 0 {
		body = strings.TrimSpace(reply[i+1:])
	}

	switch {
	case body == "OK":
		return res, nil
	case strings.HasSuffix(body, " FOUND"):
		res.Infected = true
		res.Threat = strings.TrimSuffix(body, " FOUND")
		return res, nil
	case strings.HasSuffix(body, " ERROR"):
		return res, fmt.Errorf("antivirus: clamd error: %s", strings.TrimSuffix(body, " ERROR"))
	}
	return res, fmt.Errorf("antivirus: unexpected reply %q", reply)
}
