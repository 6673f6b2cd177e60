package steamclient

import (
	"context"
	"encoding/binary"
	"errors"
	"net"
	"testing"

	"github.com/k64z/steamstacks/steamerrors"
)

func TestNetfilterConnWriteFramesWithVT01Magic(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	nc := &netfilterConn{sock: client, addr: "test"}
	payload := []byte("hello steam")

	go func() {
		if err := nc.Write(context.Background(), payload); err != nil {
			t.Errorf("write: %v", err)
		}
	}()

	var hdr [8]byte
	if _, err := server.Read(hdr[:]); err != nil {
		t.Fatalf("read header: %v", err)
	}

	gotLen := binary.LittleEndian.Uint32(hdr[0:4])
	gotMagic := binary.LittleEndian.Uint32(hdr[4:8])

	if gotLen != uint32(len(payload)) {
		t.Errorf("payload length: got %d, want %d", gotLen, len(payload))
	}
	if gotMagic != vt01Magic {
		t.Errorf("magic: got 0x%08X, want 0x%08X", gotMagic, vt01Magic)
	}

	buf := make([]byte, gotLen)
	if _, err := server.Read(buf); err != nil {
		t.Fatalf("read payload: %v", err)
	}
	if string(buf) != "hello steam" {
		t.Errorf("payload: got %q, want %q", string(buf), "hello steam")
	}
}

func TestNetfilterConnReadRejectsWrongMagic(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	nc := &netfilterConn{sock: client, addr: "test"}

	go func() {
		hdr := make([]byte, 8)
		binary.LittleEndian.PutUint32(hdr[0:4], 4)
		binary.LittleEndian.PutUint32(hdr[4:8], 0xDEADBEEF)
		server.Write(hdr)
		server.Write([]byte("test"))
	}()

	_, err := nc.Read(context.Background())
	if !errors.Is(err, steamerrors.ErrFrameMagicMismatch) {
		t.Errorf("err = %v, want wrapping %v", err, steamerrors.ErrFrameMagicMismatch)
	}
}

func TestNetfilterConnWriteReadRoundTrip(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	writer := &netfilterConn{sock: client, addr: "test"}
	reader := &netfilterConn{sock: server, addr: "test"}

	payload := []byte("round trip test data")

	go func() {
		if err := writer.Write(context.Background(), payload); err != nil {
			t.Errorf("write: %v", err)
		}
	}()

	got, err := reader.Read(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("round-trip: got %q, want %q", string(got), string(payload))
	}
}

func TestNetfilterConnReadSurfacesClosedSocket(t *testing.T) {
	server, client := net.Pipe()
	client.Close()
	server.Close()

	nc := &netfilterConn{sock: client, addr: "test"}
	_, err := nc.Read(context.Background())
	if !errors.Is(err, steamerrors.ErrTransportClosed) {
		t.Errorf("err = %v, want wrapping %v", err, steamerrors.ErrTransportClosed)
	}
}

func TestParseEncryptHandshakeRequestRejectsWrongEMsg(t *testing.T) {
	frame := make([]byte, msgHdrLen+8)
	binary.LittleEndian.PutUint32(frame[0:4], uint32(EMsgClientLogOnResponse))

	_, err := parseEncryptHandshakeRequest(frame)
	if !errors.Is(err, steamerrors.ErrHandshakeFailed) {
		t.Errorf("err = %v, want wrapping %v", err, steamerrors.ErrHandshakeFailed)
	}
}

func TestVerifyEncryptHandshakeResultRejectsNonOK(t *testing.T) {
	frame := make([]byte, msgHdrLen+4)
	binary.LittleEndian.PutUint32(frame[0:4], uint32(EMsgChannelEncryptResult))
	binary.LittleEndian.PutUint32(frame[msgHdrLen:msgHdrLen+4], 5) // EResultInvalidPassword

	err := verifyEncryptHandshakeResult(frame)
	if !errors.Is(err, steamerrors.ErrHandshakeFailed) {
		t.Errorf("err = %v, want wrapping %v", err, steamerrors.ErrHandshakeFailed)
	}
}
