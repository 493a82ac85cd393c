package tuya

import (
	"bytes"
	"context"
	"crypto/aes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"net"
	"time"
)

const (
	// defaultPort is the TCP port Tuya devices listen on.
	defaultPort = "6668"

	// defaultTimeout bounds the dial plus the full exchange. Tuya firmware
	// drops idle connections quickly, so this stays short.
	defaultTimeout = 5 * time.Second

	framePrefix = 0x000055AA
	frameSuffix = 0x0000AA55

	// cmdControl writes data points; cmdDPQuery reads them.
	cmdControl = 0x07
	cmdDPQuery = 0x0a

	// protocolVersion is the 3-byte version tag carried in control payloads.
	protocolVersion = "3.3"

	// maxPayloadSize caps how large a frame body we will buffer.
	maxPayloadSize = 1 << 16
)

// pkcs7Pad pads a plaintext to the AES block size.
func pkcs7Pad(data []byte) []byte {
	n := aes.BlockSize - len(data)%aes.BlockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

// pkcs7Unpad strips the padding applied by pkcs7Pad.
func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("bad padded length %d", len(data))
	}
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize || n > len(data) {
		return nil, fmt.Errorf("bad padding byte %d", n)
	}
	return data[:len(data)-n], nil
}

// encryptPayload encrypts a JSON body with AES-128-ECB under the local key.
//
// ECB is what the device firmware implements; the payloads are short,
// single-purpose JSON bodies, not a general transport.
func encryptPayload(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("bad local key: %w", err)
	}

	padded := pkcs7Pad(plaintext)
	out := make([]byte, len(padded))
	for i := 0; i < len(padded); i += aes.BlockSize {
		block.Encrypt(out[i:i+aes.BlockSize], padded[i:i+aes.BlockSize])
	}
	return out, nil
}

// decryptPayload reverses encryptPayload.
func decryptPayload(key, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("bad local key: %w", err)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("bad ciphertext length %d", len(ciphertext))
	}

	out := make([]byte, len(ciphertext))
	for i := 0; i < len(ciphertext); i += aes.BlockSize {
		block.Decrypt(out[i:i+aes.BlockSize], ciphertext[i:i+aes.BlockSize])
	}
	return pkcs7Unpad(out)
}

// encodeFrame wraps a payload in the Tuya wire frame: prefix, sequence,
// command, length, payload, CRC32, suffix. The CRC covers everything before
// it.
func encodeFrame(seq, cmd uint32, payload []byte) []byte {
	buf := make([]byte, 16, 16+len(payload)+8)
	binary.BigEndian.PutUint32(buf[0:], framePrefix)
	binary.BigEndian.PutUint32(buf[4:], seq)
	binary.BigEndian.PutUint32(buf[8:], cmd)
	binary.BigEndian.PutUint32(buf[12:], uint32(len(payload)+8))

	buf = append(buf, payload...)

	var tail [8]byte
	binary.BigEndian.PutUint32(tail[0:], crc32.ChecksumIEEE(buf))
	binary.BigEndian.PutUint32(tail[4:], frameSuffix)
	return append(buf, tail[:]...)
}

// decodeFrame reads and verifies one frame, returning its command and raw
// payload (return code included, ciphertext not yet decrypted).
func decodeFrame(r io.Reader) (cmd uint32, payload []byte, err error) {
	var header [16]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, nil, fmt.Errorf("read frame header: %w", err)
	}
	if binary.BigEndian.Uint32(header[0:]) != framePrefix {
		return 0, nil, fmt.Errorf("bad frame prefix %#x", binary.BigEndian.Uint32(header[0:]))
	}
	cmd = binary.BigEndian.Uint32(header[8:])

	length := binary.BigEndian.Uint32(header[12:])
	if length < 8 || length > maxPayloadSize {
		return 0, nil, fmt.Errorf("implausible frame length %d", length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return 0, nil, fmt.Errorf("read frame body: %w", err)
	}

	wantCRC := binary.BigEndian.Uint32(body[length-8:])
	gotCRC := crc32.ChecksumIEEE(append(header[:], body[:length-8]...))
	if wantCRC != gotCRC {
		return 0, nil, fmt.Errorf("frame checksum mismatch")
	}
	if binary.BigEndian.Uint32(body[length-4:]) != frameSuffix {
		return 0, nil, fmt.Errorf("bad frame suffix")
	}

	return cmd, body[:length-8], nil
}

// client performs one-shot command exchanges with a Tuya device.
type client struct {
	addr    string
	key     []byte
	timeout time.Duration
}

// newClient resolves the device address. A bare host gets the default Tuya
// port appended; "host:port" is used as given (tests rely on this).
func newClient(addr, localKey string, timeout time.Duration) *client {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, defaultPort)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &client{addr: addr, key: []byte(localKey), timeout: timeout}
}

// buildPayload encrypts a JSON body for a command. Control commands carry
// the version header (version tag plus 12 zero bytes) before the
// ciphertext; queries are bare ciphertext.
func (c *client) buildPayload(cmd uint32, body []byte) ([]byte, error) {
	encrypted, err := encryptPayload(c.key, body)
	if err != nil {
		return nil, err
	}
	if cmd == cmdDPQuery {
		return encrypted, nil
	}

	payload := make([]byte, 0, 15+len(encrypted))
	payload = append(payload, protocolVersion...)
	payload = append(payload, make([]byte, 12)...)
	return append(payload, encrypted...), nil
}

// parsePayload decrypts a response payload: 4-byte return code, optional
// version header, ciphertext.
func (c *client) parsePayload(payload []byte) (retCode uint32, body []byte, err error) {
	if len(payload) < 4 {
		return 0, nil, fmt.Errorf("short response payload")
	}
	retCode = binary.BigEndian.Uint32(payload)
	data := payload[4:]

	if len(data) == 0 {
		return retCode, nil, nil
	}
	if bytes.HasPrefix(data, []byte(protocolVersion)) {
		if len(data) < 15 {
			return 0, nil, fmt.Errorf("short versioned payload")
		}
		data = data[15:]
	}

	body, err = decryptPayload(c.key, data)
	if err != nil {
		return 0, nil, fmt.Errorf("decrypt response: %w", err)
	}
	return retCode, body, nil
}

// exchange sends one command and returns the device's return code and
// decrypted JSON reply. Transport failures are returned as-is; the adapter
// layer maps them onto the device error taxonomy.
func (c *client) exchange(ctx context.Context, cmd uint32, body []byte) (uint32, []byte, error) {
	payload, err := c.buildPayload(cmd, body)
	if err != nil {
		return 0, nil, err
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	dialer := net.Dialer{Deadline: deadline}
	conn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return 0, nil, fmt.Errorf("dial %s: %w", c.addr, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(deadline); err != nil {
		return 0, nil, fmt.Errorf("set deadline: %w", err)
	}

	if _, err := conn.Write(encodeFrame(1, cmd, payload)); err != nil {
		return 0, nil, fmt.Errorf("write command: %w", err)
	}

	// Devices may push unsolicited status frames; skip until the reply to
	// our command arrives.
	for {
		gotCmd, raw, err := decodeFrame(conn)
		if err != nil {
			return 0, nil, err
		}
		if gotCmd != cmd {
			continue
		}
		return c.parsePayload(raw)
	}
}
