package steamclient

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"net"
	"sync"

	"github.com/k64z/steamstacks/steamerrors"
)

// vt01Magic identifies a CM netfilter frame ("VT01" read as a little-endian uint32).
const vt01Magic = 0x31305456

// msgHdrLen is the size of the pre-handshake MsgHdr: EMsg(4) + TargetJobID(8) + SourceJobID(8).
// Post-handshake traffic upgrades to the 36-byte ExtendedClientMsgHdr, framed by encodePacket/decodePacket.
const msgHdrLen = 20

// netfilterConn implements Connection over a raw TCP socket framed with
// Steam's VT01 length-prefixed protocol.
type netfilterConn struct {
	sock   net.Conn
	cipher *cmChannelCipher
	wmu    sync.Mutex // serializes writes
	addr   string
}

func dialTCP(ctx context.Context, addr string) (*netfilterConn, error) {
	var d net.Dialer
	sock, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("tcp dial %s: %w", addr, err)
	}
	return &netfilterConn{sock: sock, addr: addr}, nil
}

// Write frames data as [payload_len : uint32 LE][magic "VT01" : uint32 LE][payload],
// encrypting payload first once the channel cipher has been established.
func (nc *netfilterConn) Write(ctx context.Context, data []byte) error {
	payload := data
	if nc.cipher != nil {
		sealed, err := nc.cipher.encrypt(data)
		if err != nil {
			return fmt.Errorf("encrypt: %w", err)
		}
		payload = sealed
	}

	frame := make([]byte, 8, 8+len(payload))
	binary.LittleEndian.PutUint32(frame[0:4], uint32(len(payload)))
	binary.LittleEndian.PutUint32(frame[4:8], vt01Magic)
	frame = append(frame, payload...)

	nc.wmu.Lock()
	defer nc.wmu.Unlock()
	if _, err := nc.sock.Write(frame); err != nil {
		return fmt.Errorf("%w: %v", steamerrors.ErrTransportClosed, err)
	}
	return nil
}

// Read reads and unframes one VT01 message, decrypting it if the channel cipher is set.
func (nc *netfilterConn) Read(ctx context.Context) ([]byte, error) {
	payload, err := nc.readFrame()
	if err != nil {
		return nil, err
	}

	if nc.cipher == nil {
		return payload, nil
	}

	plaintext, err := nc.cipher.decrypt(payload)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}

func (nc *netfilterConn) readFrame() ([]byte, error) {
	var hdr [8]byte
	if _, err := io.ReadFull(nc.sock, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: read frame header: %v", steamerrors.ErrTransportClosed, err)
	}

	payloadLen := binary.LittleEndian.Uint32(hdr[0:4])
	if magic := binary.LittleEndian.Uint32(hdr[4:8]); magic != vt01Magic {
		return nil, fmt.Errorf("%w: got 0x%08X, want 0x%08X", steamerrors.ErrFrameMagicMismatch, magic, vt01Magic)
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(nc.sock, payload); err != nil {
		return nil, fmt.Errorf("%w: read frame payload: %v", steamerrors.ErrTransportClosed, err)
	}
	return payload, nil
}

func (nc *netfilterConn) Close() error {
	return nc.sock.Close()
}

func (nc *netfilterConn) RemoteAddr() string {
	return nc.addr
}

// encryptHandshakeRequest is CM's ChannelEncryptRequest (EMsg 1303), decoded
// from the pre-handshake MsgHdr framing.
type encryptHandshakeRequest struct {
	challenge []byte // 16 bytes, present only when the CM wants HMAC-mode encryption
}

// parseEncryptHandshakeRequest strips the MsgHdr and pulls the optional challenge
// blob out of ChannelEncryptRequest's protocol_version+universe+challenge body.
func parseEncryptHandshakeRequest(frame []byte) (*encryptHandshakeRequest, error) {
	if len(frame) < msgHdrLen+8 {
		return nil, fmt.Errorf("%w: encrypt request too short: %d bytes", steamerrors.ErrHandshakeFailed, len(frame))
	}

	emsg := EMsg(binary.LittleEndian.Uint32(frame[0:4]))
	if emsg != EMsgChannelEncryptRequest {
		return nil, fmt.Errorf("%w: expected ChannelEncryptRequest, got %s", steamerrors.ErrHandshakeFailed, emsg)
	}

	body := frame[msgHdrLen:]
	req := &encryptHandshakeRequest{}
	if len(body) >= 24 {
		req.challenge = body[8:24]
	}
	return req, nil
}

// buildEncryptHandshakeResponse assembles ChannelEncryptResponse (EMsg 1304):
// protocol_version + key_size + RSA-wrapped session key + its CRC32 + a trailing zero.
func buildEncryptHandshakeResponse(wrappedKey []byte) []byte {
	keyCRC := crc32.ChecksumIEEE(wrappedKey)

	resp := make([]byte, 0, msgHdrLen+8+len(wrappedKey)+8)
	resp = binary.LittleEndian.AppendUint32(resp, uint32(EMsgChannelEncryptResponse))
	resp = binary.LittleEndian.AppendUint64(resp, 0xFFFFFFFFFFFFFFFF) // target job id
	resp = binary.LittleEndian.AppendUint64(resp, 0xFFFFFFFFFFFFFFFF) // source job id
	resp = binary.LittleEndian.AppendUint32(resp, 1)                  // protocol version
	resp = binary.LittleEndian.AppendUint32(resp, uint32(len(wrappedKey)))
	resp = append(resp, wrappedKey...)
	resp = binary.LittleEndian.AppendUint32(resp, keyCRC)
	resp = binary.LittleEndian.AppendUint32(resp, 0) // trailing zero
	return resp
}

// verifyEncryptHandshakeResult validates ChannelEncryptResult (EMsg 1305): the
// CM echoes eresult=OK once it has decrypted our wrapped session key.
func verifyEncryptHandshakeResult(frame []byte) error {
	if len(frame) < msgHdrLen+4 {
		return fmt.Errorf("%w: encrypt result too short: %d bytes", steamerrors.ErrHandshakeFailed, len(frame))
	}

	emsg := EMsg(binary.LittleEndian.Uint32(frame[0:4]))
	if emsg != EMsgChannelEncryptResult {
		return fmt.Errorf("%w: expected ChannelEncryptResult, got %s", steamerrors.ErrHandshakeFailed, emsg)
	}

	if eresult := binary.LittleEndian.Uint32(frame[msgHdrLen : msgHdrLen+4]); eresult != uint32(steamerrors.EResultOK) {
		return fmt.Errorf("%w: eresult=%d", steamerrors.ErrHandshakeFailed, eresult)
	}
	return nil
}

// performEncryptionHandshake runs the three-step channel encryption exchange
// that must precede all other CM traffic on a fresh netfilter connection:
// receive ChannelEncryptRequest, answer with an RSA-wrapped session key in
// ChannelEncryptResponse, and confirm success via ChannelEncryptResult. Once
// it returns nil, nc.cipher is set and every subsequent Write/Read is encrypted.
func (nc *netfilterConn) performEncryptionHandshake(ctx context.Context) error {
	requestFrame, err := nc.Read(ctx)
	if err != nil {
		return fmt.Errorf("read encrypt request: %w", err)
	}

	req, err := parseEncryptHandshakeRequest(requestFrame)
	if err != nil {
		return err
	}

	sessionKey := make([]byte, 32)
	if _, err := rand.Read(sessionKey); err != nil {
		return fmt.Errorf("generate session key: %w", err)
	}

	wrappedKey, err := wrapSessionKeyForCM(sessionKey, req.challenge)
	if err != nil {
		return fmt.Errorf("wrap session key: %w", err)
	}

	if err := nc.Write(ctx, buildEncryptHandshakeResponse(wrappedKey)); err != nil {
		return fmt.Errorf("send encrypt response: %w", err)
	}

	resultFrame, err := nc.Read(ctx)
	if err != nil {
		return fmt.Errorf("read encrypt result: %w", err)
	}
	if err := verifyEncryptHandshakeResult(resultFrame); err != nil {
		return err
	}

	// HMAC-mode encryption only when the CM's request carried a challenge.
	cipher, err := newCMChannelCipher(sessionKey, req.challenge != nil)
	if err != nil {
		return fmt.Errorf("init cipher: %w", err)
	}
	nc.cipher = cipher

	return nil
}
