package steamclient

import "fmt"

// EMsg identifies Steam CM message types.
type EMsg uint32

const (
	EMsgMulti                  EMsg = 1
	EMsgServiceMethodCallFromClient EMsg = 146
	EMsgServiceMethodResponse       EMsg = 147
	EMsgServiceMethodSendToClient   EMsg = 151
	EMsgChannelEncryptRequest  EMsg = 1303
	EMsgChannelEncryptResponse EMsg = 1304
	EMsgChannelEncryptResult   EMsg = 1305
	EMsgClientHeartBeat                EMsg = 703
	EMsgClientLogOff                   EMsg = 706
	EMsgClientRemoveFriend             EMsg = 714
	EMsgClientFriendMsg                EMsg = 718
	EMsgClientLogOnResponse            EMsg = 751
	EMsgClientLoggedOff                EMsg = 757
	EMsgClientChangeStatus             EMsg = 765
	EMsgClientPersonaState             EMsg = 766
	EMsgClientFriendsList              EMsg = 767
	EMsgClientCMList                   EMsg = 783
	EMsgClientAddFriend                EMsg = 791
	EMsgClientAddFriendResponse        EMsg = 792
	EMsgClientGamesPlayed              EMsg = 827
	EMsgClientSessionToken             EMsg = 850
	EMsgClientSetIgnoreFriend          EMsg = 855
	EMsgClientSetIgnoreFriendResponse  EMsg = 856
	EMsgClientRequestFriendData        EMsg = 924
	EMsgClientFriendMsgIncoming        EMsg = 5427
	EMsgClientLogon                    EMsg = 5514
	EMsgClientFriendMsgEchoToSender    EMsg = 5578
	EMsgClientItemAnnouncements        EMsg = 5586
	EMsgClientUserNotifications        EMsg = 5705
	EMsgClientHello                    EMsg = 9805
	EMsgClientUpdateMachineAuth        EMsg = 1216
	EMsgClientUpdateMachineAuthResponse EMsg = 1217
)

const ProtoMask uint32 = 0x80000000
const ProtoVersion uint32 = 65581

var emsgNames = map[EMsg]string{
	EMsgMulti:                  "Multi",
	EMsgServiceMethodCallFromClient: "ServiceMethodCallFromClient",
	EMsgServiceMethodResponse:       "ServiceMethodResponse",
	EMsgServiceMethodSendToClient:   "ServiceMethodSendToClient",
	EMsgChannelEncryptRequest:  "ChannelEncryptRequest",
	EMsgChannelEncryptResponse: "ChannelEncryptResponse",
	EMsgChannelEncryptResult:   "ChannelEncryptResult",
	EMsgClientHeartBeat:                "ClientHeartBeat",
	EMsgClientLogOff:                   "ClientLogOff",
	EMsgClientRemoveFriend:             "ClientRemoveFriend",
	EMsgClientFriendMsg:                "ClientFriendMsg",
	EMsgClientLogOnResponse:            "ClientLogOnResponse",
	EMsgClientLoggedOff:                "ClientLoggedOff",
	EMsgClientChangeStatus:             "ClientChangeStatus",
	EMsgClientPersonaState:             "ClientPersonaState",
	EMsgClientFriendsList:              "ClientFriendsList",
	EMsgClientCMList:                   "ClientCMList",
	EMsgClientAddFriend:                "ClientAddFriend",
	EMsgClientAddFriendResponse:        "ClientAddFriendResponse",
	EMsgClientGamesPlayed:              "ClientGamesPlayed",
	EMsgClientSessionToken:             "ClientSessionToken",
	EMsgClientSetIgnoreFriend:          "ClientSetIgnoreFriend",
	EMsgClientSetIgnoreFriendResponse:  "ClientSetIgnoreFriendResponse",
	EMsgClientRequestFriendData:        "ClientRequestFriendData",
	EMsgClientFriendMsgIncoming:        "ClientFriendMsgIncoming",
	EMsgClientLogon:                    "ClientLogon",
	EMsgClientFriendMsgEchoToSender:    "ClientFriendMsgEchoToSender",
	EMsgClientItemAnnouncements:        "ClientItemAnnouncements",
	EMsgClientUserNotifications:        "ClientUserNotifications",
	EMsgClientHello:                    "ClientHello",
	EMsgClientUpdateMachineAuth:        "ClientUpdateMachineAuth",
	EMsgClientUpdateMachineAuthResponse: "ClientUpdateMachineAuthResponse",
}

func (e EMsg) String() string {
	if name, ok := emsgNames[e]; ok {
		return name
	}
	return fmt.Sprintf("EMsg(%d)", uint32(e))
}
