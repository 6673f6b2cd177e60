package protocol

import "fmt"

// CMsgClientFriendsList_Friend describes one entry in a friends-list push.
type CMsgClientFriendsList_Friend struct {
	Ulfriendid          *uint64 `protobuf:"fixed64,1,opt,name=ulfriendid"`
	Efriendrelationship *uint32 `protobuf:"varint,2,opt,name=efriendrelationship"`
}

func (m *CMsgClientFriendsList_Friend) Reset()         { *m = CMsgClientFriendsList_Friend{} }
func (m *CMsgClientFriendsList_Friend) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CMsgClientFriendsList_Friend) ProtoMessage()  {}

func (m *CMsgClientFriendsList_Friend) GetUlfriendid() uint64 {
	if m != nil && m.Ulfriendid != nil {
		return *m.Ulfriendid
	}
	return 0
}

func (m *CMsgClientFriendsList_Friend) GetEfriendrelationship() uint32 {
	if m != nil && m.Efriendrelationship != nil {
		return *m.Efriendrelationship
	}
	return 0
}

// CMsgClientFriendsList is pushed on login (full list) and on relationship
// changes (incremental, Bincremental=true).
type CMsgClientFriendsList struct {
	Bincremental   *bool                           `protobuf:"varint,1,opt,name=bincremental"`
	Friends        []*CMsgClientFriendsList_Friend `protobuf:"bytes,2,rep,name=friends"`
	MaxFriendCount *uint32                         `protobuf:"varint,3,opt,name=max_friend_count"`
}

func (m *CMsgClientFriendsList) Reset()         { *m = CMsgClientFriendsList{} }
func (m *CMsgClientFriendsList) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CMsgClientFriendsList) ProtoMessage()  {}

func (m *CMsgClientFriendsList) GetBincremental() bool {
	if m != nil && m.Bincremental != nil {
		return *m.Bincremental
	}
	return false
}

func (m *CMsgClientFriendsList) GetFriends() []*CMsgClientFriendsList_Friend {
	if m != nil {
		return m.Friends
	}
	return nil
}

func (m *CMsgClientFriendsList) GetMaxFriendCount() uint32 {
	if m != nil && m.MaxFriendCount != nil {
		return *m.MaxFriendCount
	}
	return 0
}

// CMsgClientFriendMsgIncoming is delivered for both a genuine incoming chat
// message and, when EMsg is EMsgClientFriendMsgEchoToSender, an echo of a
// message the local client itself sent from another session.
type CMsgClientFriendMsgIncoming struct {
	SteamidFrom            *uint64 `protobuf:"fixed64,1,opt,name=steamid_from"`
	ChatEntryType          *int32  `protobuf:"varint,2,opt,name=chat_entry_type"`
	Message                []byte  `protobuf:"bytes,3,opt,name=message"`
	FromLimitedAccount     *bool   `protobuf:"varint,4,opt,name=from_limited_account"`
	Rtime32ServerTimestamp *uint32 `protobuf:"varint,5,opt,name=rtime32_server_timestamp"`
}

func (m *CMsgClientFriendMsgIncoming) Reset()         { *m = CMsgClientFriendMsgIncoming{} }
func (m *CMsgClientFriendMsgIncoming) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CMsgClientFriendMsgIncoming) ProtoMessage()  {}

func (m *CMsgClientFriendMsgIncoming) GetSteamidFrom() uint64 {
	if m != nil && m.SteamidFrom != nil {
		return *m.SteamidFrom
	}
	return 0
}

func (m *CMsgClientFriendMsgIncoming) GetChatEntryType() int32 {
	if m != nil && m.ChatEntryType != nil {
		return *m.ChatEntryType
	}
	return 0
}

func (m *CMsgClientFriendMsgIncoming) GetMessage() []byte {
	if m != nil {
		return m.Message
	}
	return nil
}

func (m *CMsgClientFriendMsgIncoming) GetFromLimitedAccount() bool {
	if m != nil && m.FromLimitedAccount != nil {
		return *m.FromLimitedAccount
	}
	return false
}

func (m *CMsgClientFriendMsgIncoming) GetRtime32ServerTimestamp() uint32 {
	if m != nil && m.Rtime32ServerTimestamp != nil {
		return *m.Rtime32ServerTimestamp
	}
	return 0
}

// CMsgClientFriendMsg sends a chat message to a friend.
type CMsgClientFriendMsg struct {
	Steamid       *uint64 `protobuf:"fixed64,1,opt,name=steamid"`
	ChatEntryType *int32  `protobuf:"varint,2,opt,name=chat_entry_type"`
	Message       []byte  `protobuf:"bytes,3,opt,name=message"`
}

func (m *CMsgClientFriendMsg) Reset()         { *m = CMsgClientFriendMsg{} }
func (m *CMsgClientFriendMsg) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CMsgClientFriendMsg) ProtoMessage()  {}

func (m *CMsgClientFriendMsg) GetSteamid() uint64 {
	if m != nil && m.Steamid != nil {
		return *m.Steamid
	}
	return 0
}

func (m *CMsgClientFriendMsg) GetChatEntryType() int32 {
	if m != nil && m.ChatEntryType != nil {
		return *m.ChatEntryType
	}
	return 0
}

func (m *CMsgClientFriendMsg) GetMessage() []byte {
	if m != nil {
		return m.Message
	}
	return nil
}

// CMsgClientAddFriend requests a new friend relationship.
type CMsgClientAddFriend struct {
	SteamidToAdd *uint64 `protobuf:"fixed64,1,opt,name=steamid_to_add"`
}

func (m *CMsgClientAddFriend) Reset()         { *m = CMsgClientAddFriend{} }
func (m *CMsgClientAddFriend) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CMsgClientAddFriend) ProtoMessage()  {}

// CMsgClientAddFriendResponse is the server's reply to CMsgClientAddFriend.
type CMsgClientAddFriendResponse struct {
	Eresult          *int32  `protobuf:"varint,1,opt,name=eresult"`
	SteamidAdded     *uint64 `protobuf:"fixed64,2,opt,name=steamid_added"`
	PersonaNameAdded *string `protobuf:"bytes,3,opt,name=persona_name_added"`
}

func (m *CMsgClientAddFriendResponse) Reset()         { *m = CMsgClientAddFriendResponse{} }
func (m *CMsgClientAddFriendResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CMsgClientAddFriendResponse) ProtoMessage()  {}

func (m *CMsgClientAddFriendResponse) GetEresult() int32 {
	if m != nil && m.Eresult != nil {
		return *m.Eresult
	}
	return 0
}

// CMsgClientRemoveFriend removes an existing friend relationship.
type CMsgClientRemoveFriend struct {
	Friendid *uint64 `protobuf:"fixed64,1,opt,name=friendid"`
}

func (m *CMsgClientRemoveFriend) Reset()         { *m = CMsgClientRemoveFriend{} }
func (m *CMsgClientRemoveFriend) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CMsgClientRemoveFriend) ProtoMessage()  {}
