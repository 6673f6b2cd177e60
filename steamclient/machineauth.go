package steamclient

import (
	"context"
	"crypto/sha1"
	"fmt"
	"os"
	"time"

	"github.com/k64z/steamstacks/protocol"
	"github.com/k64z/steamstacks/steamerrors"
	"github.com/k64z/steamstacks/steamid"
)

// LoginClassic authenticates with a plaintext account name and password
// instead of a refresh token, the classic CM login path Steam predates its
// modern token-based one with. guardCode is the current email or TOTP
// Steam Guard code, empty if the account has none configured. The sentry
// hash from a prior ClientUpdateMachineAuth push (read from sentryPath, if
// set) is replayed so a machine already authorized doesn't need one.
func (c *Client) LoginClassic(ctx context.Context, accountName, password, guardCode string, sid steamid.SteamID) error {
	loginSID := steamid.SteamID(0).
		SetUniverse(1).
		SetType(1).
		SetInstance(1).
		SetAccountID(sid.AccountID())
	sidU64 := loginSID.ToSteamID64()

	helloBody, err := protocol.Marshal(&protocol.CMsgClientHello{
		ProtocolVersion: protocol.Uint32(ProtoVersion),
	})
	if err != nil {
		return fmt.Errorf("marshal ClientHello: %w", err)
	}
	if err := c.sendPacket(ctx, EMsgClientHello, nil, helloBody); err != nil {
		return fmt.Errorf("send ClientHello: %w", err)
	}

	subID, responseCh := c.expectEMsg(EMsgClientLogOnResponse)
	defer c.Unsubscribe(subID)

	osType := uint32(20) // EOSType Windows 11
	lang := "english"

	logon := &protocol.CMsgClientLogon{
		AccountName:            &accountName,
		Password:               &password,
		ShouldRememberPassword: protocol.Bool(true),
		ProtocolVersion:        protocol.Uint32(ProtoVersion),
		ClientOsType:           &osType,
		ClientLanguage:         &lang,
	}
	if guardCode != "" {
		logon.SteamGuardCode = &guardCode
	}
	if sentry, err := os.ReadFile(c.sentryPath); err == nil && len(sentry) > 0 {
		sum := sha1.Sum(sentry)
		logon.ShaSentryfile = sum[:]
	}

	logonBody, err := protocol.Marshal(logon)
	if err != nil {
		return fmt.Errorf("marshal ClientLogon: %w", err)
	}
	if err := c.sendPacket(ctx, EMsgClientLogon, &protocol.CMsgProtoBufHeader{
		Steamid:         &sidU64,
		ClientSessionid: protocol.Int32(0),
	}, logonBody); err != nil {
		return fmt.Errorf("send ClientLogon: %w", err)
	}

	pkt, err := c.awaitPacket(ctx, responseCh)
	if err != nil {
		return fmt.Errorf("wait for logon response: %w", err)
	}

	var resp protocol.CMsgClientLogonResponse
	if err := protocol.Unmarshal(pkt.Body, &resp); err != nil {
		return fmt.Errorf("unmarshal logon response: %w", err)
	}

	if result := steamerrors.EResult(resp.GetEresult()); result != steamerrors.EResultOK {
		if result == steamerrors.EResultTryAnotherCM && c.conn != nil {
			c.cmDir.Blacklist(c.conn.RemoteAddr())
		}
		return &steamerrors.ResultError{Result: result, Method: "ClientLogon"}
	}

	c.mu.Lock()
	c.steamID = steamid.FromSteamID64(pkt.Header.GetSteamid())
	c.sessionID = pkt.Header.GetClientSessionid()
	c.loggedIn = true
	c.mu.Unlock()

	heartbeatSec := resp.GetHeartbeatSeconds()
	if heartbeatSec <= 0 {
		heartbeatSec = 30
	}

	c.wg.Add(1)
	go c.heartbeatLoop(time.Duration(heartbeatSec) * time.Second)

	c.logger.Info("logged in (classic)", "steamid", c.steamID.String(), "session_id", c.sessionID)

	return nil
}

// handleUpdateMachineAuth hashes the pushed sentry-file blob, persists it
// to sentryPath (if set) for LoginClassic to replay on the next run, and
// acknowledges the push with the hash Steam expects back.
func (c *Client) handleUpdateMachineAuth(pkt *Packet) {
	var body protocol.CMsgClientUpdateMachineAuth
	if err := protocol.Unmarshal(pkt.Body, &body); err != nil {
		c.logger.Error("unmarshal ClientUpdateMachineAuth", "err", err)
		return
	}

	sum := sha1.Sum(body.GetBytes())

	if c.sentryPath != "" {
		if err := os.WriteFile(c.sentryPath, body.GetBytes(), 0o600); err != nil {
			c.logger.Error("write sentry file", "path", c.sentryPath, "err", err)
		}
	}

	respBody, err := protocol.Marshal(&protocol.CMsgClientUpdateMachineAuthResponse{
		ShaFile: sum[:],
	})
	if err != nil {
		c.logger.Error("marshal ClientUpdateMachineAuthResponse", "err", err)
		return
	}

	hdr := &protocol.CMsgProtoBufHeader{
		JobidTarget: protocol.Uint64(pkt.Header.GetJobidSource()),
	}
	if err := c.sendPacket(context.Background(), EMsgClientUpdateMachineAuthResponse, hdr, respBody); err != nil {
		c.logger.Error("send ClientUpdateMachineAuthResponse", "err", err)
	}
}
