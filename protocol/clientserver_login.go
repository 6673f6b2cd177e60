package protocol

import "fmt"

// CMsgClientHello is the first message sent on a fresh CM connection,
// before any logon attempt.
type CMsgClientHello struct {
	ProtocolVersion *uint32 `protobuf:"varint,1,opt,name=protocol_version"`
}

func (m *CMsgClientHello) Reset()         { *m = CMsgClientHello{} }
func (m *CMsgClientHello) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CMsgClientHello) ProtoMessage()  {}

// CMsgClientLogon authenticates the connection. AccessToken carries the
// refresh token minted by IAuthenticationService; the classic sentry flow
// leaves it nil and sends the account password in Password instead.
type CMsgClientLogon struct {
	AccountName            *string `protobuf:"bytes,1,opt,name=account_name"`
	AccessToken            *string `protobuf:"bytes,2,opt,name=access_token"`
	ProtocolVersion        *uint32 `protobuf:"varint,3,opt,name=protocol_version"`
	ClientOsType           *uint32 `protobuf:"varint,4,opt,name=client_os_type"`
	ClientLanguage         *string `protobuf:"bytes,5,opt,name=client_language"`
	ShouldRememberPassword *bool   `protobuf:"varint,6,opt,name=should_remember_password"`
	SteamGuardCode         *string `protobuf:"bytes,7,opt,name=steam_guard_code"`
	EresultSentryfile      *int32  `protobuf:"varint,8,opt,name=eresult_sentryfile"`
	ShaSentryfile          []byte  `protobuf:"bytes,9,opt,name=sha_sentryfile"`
	Password               *string `protobuf:"bytes,20,opt,name=password"`
}

func (m *CMsgClientLogon) Reset()         { *m = CMsgClientLogon{} }
func (m *CMsgClientLogon) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CMsgClientLogon) ProtoMessage()  {}

// CMsgClientLogonResponse is the server's reply to CMsgClientLogon.
type CMsgClientLogonResponse struct {
	Eresult          *int32  `protobuf:"varint,1,opt,name=eresult"`
	OutOfGameHeartbeatSeconds *int32 `protobuf:"varint,2,opt,name=out_of_game_heartbeat_seconds"`
	ClientSuppliedSteamid     *uint64 `protobuf:"fixed64,3,opt,name=client_supplied_steamid"`
}

func (m *CMsgClientLogonResponse) Reset()         { *m = CMsgClientLogonResponse{} }
func (m *CMsgClientLogonResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CMsgClientLogonResponse) ProtoMessage()  {}

func (m *CMsgClientLogonResponse) GetEresult() int32 {
	if m != nil && m.Eresult != nil {
		return *m.Eresult
	}
	return 0
}

func (m *CMsgClientLogonResponse) GetHeartbeatSeconds() int32 {
	if m != nil && m.OutOfGameHeartbeatSeconds != nil {
		return *m.OutOfGameHeartbeatSeconds
	}
	return 0
}

// CMsgClientLoggedOff is pushed by the server when it terminates the
// session, whether due to a duplicate logon elsewhere or an operator kick.
type CMsgClientLoggedOff struct {
	Eresult *int32 `protobuf:"varint,1,opt,name=eresult"`
}

func (m *CMsgClientLoggedOff) Reset()         { *m = CMsgClientLoggedOff{} }
func (m *CMsgClientLoggedOff) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CMsgClientLoggedOff) ProtoMessage()  {}

func (m *CMsgClientLoggedOff) GetEresult() int32 {
	if m != nil && m.Eresult != nil {
		return *m.Eresult
	}
	return 0
}

// CMsgClientHeartBeat keeps the CM connection alive; it carries no fields
// in the common case.
type CMsgClientHeartBeat struct {
	SendReply *bool `protobuf:"varint,1,opt,name=send_reply"`
}

func (m *CMsgClientHeartBeat) Reset()         { *m = CMsgClientHeartBeat{} }
func (m *CMsgClientHeartBeat) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CMsgClientHeartBeat) ProtoMessage()  {}

// CMsgClientLogOff is sent on a clean disconnect.
type CMsgClientLogOff struct{}

func (m *CMsgClientLogOff) Reset()         { *m = CMsgClientLogOff{} }
func (m *CMsgClientLogOff) String() string { return "CMsgClientLogOff{}" }
func (m *CMsgClientLogOff) ProtoMessage()  {}

// CMsgClientUpdateMachineAuth is pushed by the server the first time a
// given machine logs on, carrying a sentry-file blob to be hashed and
// acknowledged via CMsgClientUpdateMachineAuthResponse.
type CMsgClientUpdateMachineAuth struct {
	Bytes    []byte  `protobuf:"bytes,1,opt,name=bytes"`
	Filename *string `protobuf:"bytes,2,opt,name=filename"`
	Offset   *uint32 `protobuf:"varint,3,opt,name=offset"`
	Cubtowrite *uint32 `protobuf:"varint,4,opt,name=cubtowrite"`
}

func (m *CMsgClientUpdateMachineAuth) Reset()         { *m = CMsgClientUpdateMachineAuth{} }
func (m *CMsgClientUpdateMachineAuth) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CMsgClientUpdateMachineAuth) ProtoMessage()  {}

func (m *CMsgClientUpdateMachineAuth) GetBytes() []byte {
	if m != nil {
		return m.Bytes
	}
	return nil
}

// CMsgClientUpdateMachineAuthResponse acknowledges a sentry-file push with
// its SHA-1 hash, which Steam later expects back in CMsgClientLogon.
type CMsgClientUpdateMachineAuthResponse struct {
	ShaFile []byte `protobuf:"bytes,1,opt,name=sha_file"`
	Eresult *int32 `protobuf:"varint,2,opt,name=eresult"`
}

func (m *CMsgClientUpdateMachineAuthResponse) Reset()         { *m = CMsgClientUpdateMachineAuthResponse{} }
func (m *CMsgClientUpdateMachineAuthResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CMsgClientUpdateMachineAuthResponse) ProtoMessage()  {}
