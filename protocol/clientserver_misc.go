package protocol

import "fmt"

// CMsgClientGamesPlayed_GamePlayed identifies one game the client is
// currently running.
type CMsgClientGamesPlayed_GamePlayed struct {
	GameId *uint64 `protobuf:"fixed64,1,opt,name=game_id"`
}

func (m *CMsgClientGamesPlayed_GamePlayed) Reset()         { *m = CMsgClientGamesPlayed_GamePlayed{} }
func (m *CMsgClientGamesPlayed_GamePlayed) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CMsgClientGamesPlayed_GamePlayed) ProtoMessage()  {}

// CMsgClientGamesPlayed announces which games (if any) the client is
// currently playing. An empty GamesPlayed stops all in-game presence.
type CMsgClientGamesPlayed struct {
	GamesPlayed []*CMsgClientGamesPlayed_GamePlayed `protobuf:"bytes,1,rep,name=games_played"`
}

func (m *CMsgClientGamesPlayed) Reset()         { *m = CMsgClientGamesPlayed{} }
func (m *CMsgClientGamesPlayed) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CMsgClientGamesPlayed) ProtoMessage()  {}

// CMsgClientUserNotifications_Notification is one pending-count entry,
// keyed by UserNotificationType (1 = trade offers).
type CMsgClientUserNotifications_Notification struct {
	UserNotificationType *uint32 `protobuf:"varint,1,opt,name=user_notification_type"`
	Count                *uint32 `protobuf:"varint,2,opt,name=count"`
}

func (m *CMsgClientUserNotifications_Notification) Reset() {
	*m = CMsgClientUserNotifications_Notification{}
}
func (m *CMsgClientUserNotifications_Notification) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CMsgClientUserNotifications_Notification) ProtoMessage()  {}

func (m *CMsgClientUserNotifications_Notification) GetUserNotificationType() uint32 {
	if m != nil && m.UserNotificationType != nil {
		return *m.UserNotificationType
	}
	return 0
}

func (m *CMsgClientUserNotifications_Notification) GetCount() uint32 {
	if m != nil && m.Count != nil {
		return *m.Count
	}
	return 0
}

// CMsgClientUserNotifications carries pending-notification counts across
// several categories (trade offers, comments, etc).
type CMsgClientUserNotifications struct {
	Notifications []*CMsgClientUserNotifications_Notification `protobuf:"bytes,1,rep,name=notifications"`
}

func (m *CMsgClientUserNotifications) Reset()         { *m = CMsgClientUserNotifications{} }
func (m *CMsgClientUserNotifications) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CMsgClientUserNotifications) ProtoMessage()  {}

func (m *CMsgClientUserNotifications) GetNotifications() []*CMsgClientUserNotifications_Notification {
	if m != nil {
		return m.Notifications
	}
	return nil
}

// CMsgClientItemAnnouncements tells the client how many new inventory items
// arrived since it last checked.
type CMsgClientItemAnnouncements struct {
	CountNewItems *uint32 `protobuf:"varint,1,opt,name=count_new_items"`
}

func (m *CMsgClientItemAnnouncements) Reset()         { *m = CMsgClientItemAnnouncements{} }
func (m *CMsgClientItemAnnouncements) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CMsgClientItemAnnouncements) ProtoMessage()  {}

func (m *CMsgClientItemAnnouncements) GetCountNewItems() uint32 {
	if m != nil && m.CountNewItems != nil {
		return *m.CountNewItems
	}
	return 0
}
