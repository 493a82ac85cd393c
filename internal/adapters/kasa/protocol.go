package kasa

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"
)

const (
	// defaultPort is the TCP port Kasa devices listen on.
	defaultPort = "9999"

	// defaultTimeout bounds the dial plus the full request/response exchange.
	defaultTimeout = 10 * time.Second

	// initialKey seeds the XOR autokey cipher. Fixed by the protocol.
	initialKey = byte(0xAB)

	// maxResponseSize caps how large a reply we will buffer. Sysinfo replies
	// from multi-outlet strips run ~1.5KB; anything near this limit is bogus.
	maxResponseSize = 1 << 20
)

// encrypt obfuscates a JSON command with the Kasa XOR autokey cipher and
// prepends the 4-byte big-endian length header used on TCP.
func encrypt(plaintext string) []byte {
	out := make([]byte, 4+len(plaintext))
	binary.BigEndian.PutUint32(out, uint32(len(plaintext)))

	key := initialKey
	for i := 0; i < len(plaintext); i++ {
		out[4+i] = plaintext[i] ^ key
		key = out[4+i]
	}
	return out
}

// decrypt reverses the XOR autokey cipher on a reply body (header already
// stripped).
func decrypt(ciphertext []byte) string {
	out := make([]byte, len(ciphertext))
	key := initialKey
	for i, c := range ciphertext {
		out[i] = c ^ key
		key = c
	}
	return string(out)
}

// client performs one-shot command exchanges with a Kasa device.
//
// There is no persistent connection to manage: the device protocol is
// strictly request/response over a fresh TCP connection, so the client only
// carries the resolved address and timeout.
type client struct {
	addr    string
	timeout time.Duration
}

// newClient wraps an already-resolved host:port address. A zero timeout
// means the default.
func newClient(addr string, timeout time.Duration) *client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &client{addr: addr, timeout: timeout}
}

// exchange sends one JSON command and returns the decrypted JSON reply.
// Transport failures are returned as-is; the adapter layer maps them onto
// the device error taxonomy.
func (c *client) exchange(ctx context.Context, cmd string) (string, error) {
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	dialer := net.Dialer{Deadline: deadline}
	conn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return "", fmt.Errorf("dial %s: %w", c.addr, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(deadline); err != nil {
		return "", fmt.Errorf("set deadline: %w", err)
	}

	if _, err := conn.Write(encrypt(cmd)); err != nil {
		return "", fmt.Errorf("write command: %w", err)
	}

	var header [4]byte
	if _, err := io.ReadFull(conn, header[:]); err != nil {
		return "", fmt.Errorf("read response header: %w", err)
	}

	n := binary.BigEndian.Uint32(header[:])
	if n == 0 || n > maxResponseSize {
		return "", fmt.Errorf("implausible response length %d", n)
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(conn, body); err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	return decrypt(body), nil
}
