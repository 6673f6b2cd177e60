package steamclient

import (
	"crypto/sha1"
	"os"
	"path/filepath"
	"testing"

	"github.com/k64z/steamstacks/protocol"
)

func TestHandleUpdateMachineAuthWritesSentryAndAcks(t *testing.T) {
	mc := &mockConn{writeCh: make(chan []byte, 1)}
	dir := t.TempDir()
	sentryPath := filepath.Join(dir, "sentry.bin")

	c := New(WithSentryPath(sentryPath))
	c.conn = mc
	c.done = make(chan struct{})

	blob := []byte("sentry-file-contents")
	body, err := protocol.Marshal(&protocol.CMsgClientUpdateMachineAuth{Bytes: blob})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	c.handlePacket(&Packet{
		EMsg:    EMsgClientUpdateMachineAuth,
		IsProto: true,
		Header:  &protocol.CMsgProtoBufHeader{JobidSource: protocol.Uint64(123)},
		Body:    body,
	})

	written, err := os.ReadFile(sentryPath)
	if err != nil {
		t.Fatalf("sentry file not written: %v", err)
	}
	if string(written) != string(blob) {
		t.Errorf("sentry file contents = %q, want %q", written, blob)
	}

	sentData := <-mc.writeCh
	sentPkt, err := decodePacket(sentData)
	if err != nil {
		t.Fatalf("decode ack: %v", err)
	}
	if sentPkt.EMsg != EMsgClientUpdateMachineAuthResponse {
		t.Errorf("ack EMsg = %v, want %v", sentPkt.EMsg, EMsgClientUpdateMachineAuthResponse)
	}
	if sentPkt.Header.GetJobidTarget() != 123 {
		t.Errorf("ack JobidTarget = %d, want 123", sentPkt.Header.GetJobidTarget())
	}

	var resp protocol.CMsgClientUpdateMachineAuthResponse
	if err := protocol.Unmarshal(sentPkt.Body, &resp); err != nil {
		t.Fatalf("unmarshal ack body: %v", err)
	}
	want := sha1.Sum(blob)
	if string(resp.ShaFile) != string(want[:]) {
		t.Errorf("ack ShaFile mismatch")
	}
}

func TestHandleUpdateMachineAuthNoSentryPathStillAcks(t *testing.T) {
	mc := &mockConn{writeCh: make(chan []byte, 1)}
	c := New() // no WithSentryPath
	c.conn = mc
	c.done = make(chan struct{})

	body, _ := protocol.Marshal(&protocol.CMsgClientUpdateMachineAuth{Bytes: []byte("x")})
	c.handlePacket(&Packet{
		EMsg:    EMsgClientUpdateMachineAuth,
		IsProto: true,
		Header:  &protocol.CMsgProtoBufHeader{},
		Body:    body,
	})

	select {
	case <-mc.writeCh:
	default:
		t.Fatal("expected an ack write even without a configured sentry path")
	}
}
