package protocol

import "fmt"

// CMsgClientPersonaState_Friend carries the persona fields that changed (or,
// on first push, all of them) for one Steam user.
type CMsgClientPersonaState_Friend struct {
	Friendid        *uint64 `protobuf:"fixed64,1,opt,name=friendid"`
	PersonaState    *uint32 `protobuf:"varint,2,opt,name=persona_state"`
	PlayerName      *string `protobuf:"bytes,3,opt,name=player_name"`
	GamePlayedAppId *uint32 `protobuf:"varint,4,opt,name=game_played_app_id"`
	GameName        *string `protobuf:"bytes,5,opt,name=game_name"`
	LastLogoff      *uint32 `protobuf:"varint,6,opt,name=last_logoff"`
	LastLogon       *uint32 `protobuf:"varint,7,opt,name=last_logon"`
}

func (m *CMsgClientPersonaState_Friend) Reset()         { *m = CMsgClientPersonaState_Friend{} }
func (m *CMsgClientPersonaState_Friend) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CMsgClientPersonaState_Friend) ProtoMessage()  {}

func (m *CMsgClientPersonaState_Friend) GetFriendid() uint64 {
	if m != nil && m.Friendid != nil {
		return *m.Friendid
	}
	return 0
}

func (m *CMsgClientPersonaState_Friend) GetPersonaState() uint32 {
	if m != nil && m.PersonaState != nil {
		return *m.PersonaState
	}
	return 0
}

func (m *CMsgClientPersonaState_Friend) GetPlayerName() string {
	if m != nil && m.PlayerName != nil {
		return *m.PlayerName
	}
	return ""
}

func (m *CMsgClientPersonaState_Friend) GetGamePlayedAppId() uint32 {
	if m != nil && m.GamePlayedAppId != nil {
		return *m.GamePlayedAppId
	}
	return 0
}

func (m *CMsgClientPersonaState_Friend) GetGameName() string {
	if m != nil && m.GameName != nil {
		return *m.GameName
	}
	return ""
}

func (m *CMsgClientPersonaState_Friend) GetLastLogoff() uint32 {
	if m != nil && m.LastLogoff != nil {
		return *m.LastLogoff
	}
	return 0
}

func (m *CMsgClientPersonaState_Friend) GetLastLogon() uint32 {
	if m != nil && m.LastLogon != nil {
		return *m.LastLogon
	}
	return 0
}

// CMsgClientPersonaState is pushed whenever a watched user's presence,
// name, or current game changes.
type CMsgClientPersonaState struct {
	StatusFlags *uint32                          `protobuf:"varint,1,opt,name=status_flags"`
	Friends     []*CMsgClientPersonaState_Friend `protobuf:"bytes,2,rep,name=friends"`
}

func (m *CMsgClientPersonaState) Reset()         { *m = CMsgClientPersonaState{} }
func (m *CMsgClientPersonaState) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CMsgClientPersonaState) ProtoMessage()  {}

func (m *CMsgClientPersonaState) GetStatusFlags() uint32 {
	if m != nil && m.StatusFlags != nil {
		return *m.StatusFlags
	}
	return 0
}

func (m *CMsgClientPersonaState) GetFriends() []*CMsgClientPersonaState_Friend {
	if m != nil {
		return m.Friends
	}
	return nil
}

// CMsgClientChangeStatus sets the logged-in user's own persona state.
type CMsgClientChangeStatus struct {
	PersonaState     *uint32 `protobuf:"varint,1,opt,name=persona_state"`
	PersonaSetByUser *bool   `protobuf:"varint,2,opt,name=persona_state_flags"`
}

func (m *CMsgClientChangeStatus) Reset()         { *m = CMsgClientChangeStatus{} }
func (m *CMsgClientChangeStatus) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CMsgClientChangeStatus) ProtoMessage()  {}

// CMsgClientRequestFriendData requests persona data for a set of Steam IDs,
// answered with one or more CMsgClientPersonaState pushes.
type CMsgClientRequestFriendData struct {
	PersonaStateRequested *uint32  `protobuf:"varint,1,opt,name=persona_state_requested"`
	Friends               []uint64 `protobuf:"fixed64,2,rep,name=friends"`
}

func (m *CMsgClientRequestFriendData) Reset()         { *m = CMsgClientRequestFriendData{} }
func (m *CMsgClientRequestFriendData) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CMsgClientRequestFriendData) ProtoMessage()  {}
