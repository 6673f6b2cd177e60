package protocol

import "fmt"

// EAuthTokenPlatformType identifies the kind of client requesting a token,
// which determines which token scopes the server grants.
type EAuthTokenPlatformType int32

const (
	EAuthTokenPlatformType_k_EAuthTokenPlatformType_Unknown     EAuthTokenPlatformType = 0
	EAuthTokenPlatformType_k_EAuthTokenPlatformType_SteamClient EAuthTokenPlatformType = 1
	EAuthTokenPlatformType_k_EAuthTokenPlatformType_WebBrowser  EAuthTokenPlatformType = 2
	EAuthTokenPlatformType_k_EAuthTokenPlatformType_MobileApp   EAuthTokenPlatformType = 3
)

// ESessionPersistence controls whether the resulting refresh token survives
// across client restarts.
type ESessionPersistence int32

const (
	ESessionPersistence_k_ESessionPersistence_Invalid     ESessionPersistence = -1
	ESessionPersistence_k_ESessionPersistence_Ephemeral   ESessionPersistence = 0
	ESessionPersistence_k_ESessionPersistence_Persistent  ESessionPersistence = 1
)

// EAuthSessionGuardType enumerates the confirmation methods a pending
// authentication session may require before it can complete.
type EAuthSessionGuardType int32

const (
	EAuthSessionGuardType_k_EAuthSessionGuardType_Unknown            EAuthSessionGuardType = 0
	EAuthSessionGuardType_k_EAuthSessionGuardType_None                EAuthSessionGuardType = 1
	EAuthSessionGuardType_k_EAuthSessionGuardType_EmailCode           EAuthSessionGuardType = 2
	EAuthSessionGuardType_k_EAuthSessionGuardType_DeviceCode          EAuthSessionGuardType = 3
	EAuthSessionGuardType_k_EAuthSessionGuardType_DeviceConfirmation  EAuthSessionGuardType = 4
	EAuthSessionGuardType_k_EAuthSessionGuardType_EmailConfirmation   EAuthSessionGuardType = 5
	EAuthSessionGuardType_k_EAuthSessionGuardType_MachineToken        EAuthSessionGuardType = 6
)

// CAuthentication_GetPasswordRSAPublicKey_Request requests the RSA key used
// to encrypt a password before it is ever sent over the wire.
type CAuthentication_GetPasswordRSAPublicKey_Request struct {
	AccountName *string `protobuf:"bytes,1,opt,name=account_name"`
}

func (m *CAuthentication_GetPasswordRSAPublicKey_Request) Reset() {
	*m = CAuthentication_GetPasswordRSAPublicKey_Request{}
}
func (m *CAuthentication_GetPasswordRSAPublicKey_Request) String() string {
	return fmt.Sprintf("%+v", *m)
}
func (m *CAuthentication_GetPasswordRSAPublicKey_Request) ProtoMessage() {}

// CAuthentication_GetPasswordRSAPublicKey_Response carries the PKCS#1
// modulus/exponent pair (hex-encoded) and a timestamp that must be echoed
// back in the credentials request.
type CAuthentication_GetPasswordRSAPublicKey_Response struct {
	PublickeyMod *string `protobuf:"bytes,1,opt,name=publickey_mod"`
	PublickeyExp *string `protobuf:"bytes,2,opt,name=publickey_exp"`
	Timestamp    *uint64 `protobuf:"fixed64,3,opt,name=timestamp"`
}

func (m *CAuthentication_GetPasswordRSAPublicKey_Response) Reset() {
	*m = CAuthentication_GetPasswordRSAPublicKey_Response{}
}
func (m *CAuthentication_GetPasswordRSAPublicKey_Response) String() string {
	return fmt.Sprintf("%+v", *m)
}
func (m *CAuthentication_GetPasswordRSAPublicKey_Response) ProtoMessage() {}

// CAuthentication_DeviceDetails describes the device initiating a login,
// surfaced to the account owner when approving a confirmation.
type CAuthentication_DeviceDetails struct {
	DeviceFriendlyName *string                 `protobuf:"bytes,1,opt,name=device_friendly_name"`
	PlatformType       *EAuthTokenPlatformType `protobuf:"varint,2,opt,name=platform_type"`
	OsType             *int32                  `protobuf:"varint,3,opt,name=os_type"`
}

func (m *CAuthentication_DeviceDetails) Reset()         { *m = CAuthentication_DeviceDetails{} }
func (m *CAuthentication_DeviceDetails) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CAuthentication_DeviceDetails) ProtoMessage()  {}

// CAuthentication_AllowedConfirmation is one guard method the server will
// accept to complete a pending session, together with any UI hint text.
type CAuthentication_AllowedConfirmation struct {
	ConfirmationType *EAuthSessionGuardType `protobuf:"varint,1,opt,name=confirmation_type"`
	AssociatedMessage *string               `protobuf:"bytes,2,opt,name=associated_message"`
}

func (m *CAuthentication_AllowedConfirmation) Reset()         { *m = CAuthentication_AllowedConfirmation{} }
func (m *CAuthentication_AllowedConfirmation) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CAuthentication_AllowedConfirmation) ProtoMessage()  {}

// CAuthentication_BeginAuthSessionViaCredentials_Request starts a new
// authentication session using an account name and RSA-encrypted password.
type CAuthentication_BeginAuthSessionViaCredentials_Request struct {
	AccountName         *string                        `protobuf:"bytes,1,opt,name=account_name"`
	EncryptedPassword   *string                        `protobuf:"bytes,2,opt,name=encrypted_password"`
	EncryptionTimestamp *uint64                        `protobuf:"fixed64,3,opt,name=encryption_timestamp"`
	RememberLogin       *bool                          `protobuf:"varint,4,opt,name=remember_login"`
	Persistence         *ESessionPersistence           `protobuf:"varint,5,opt,name=persistence"`
	WebsiteId           *string                        `protobuf:"bytes,6,opt,name=website_id"`
	DeviceDetails       *CAuthentication_DeviceDetails `protobuf:"bytes,7,opt,name=device_details"`
	Language            *uint32                        `protobuf:"varint,8,opt,name=language"`
}

func (m *CAuthentication_BeginAuthSessionViaCredentials_Request) Reset() {
	*m = CAuthentication_BeginAuthSessionViaCredentials_Request{}
}
func (m *CAuthentication_BeginAuthSessionViaCredentials_Request) String() string {
	return fmt.Sprintf("%+v", *m)
}
func (m *CAuthentication_BeginAuthSessionViaCredentials_Request) ProtoMessage() {}

// CAuthentication_BeginAuthSessionViaCredentials_Response returns the
// identifiers needed to submit a guard code and poll for completion.
type CAuthentication_BeginAuthSessionViaCredentials_Response struct {
	ClientId             *uint64                                 `protobuf:"fixed64,1,opt,name=client_id"`
	RequestId            []byte                                  `protobuf:"bytes,2,opt,name=request_id"`
	Interval             *float32                                `protobuf:"fixed32,3,opt,name=interval"`
	AllowedConfirmations []*CAuthentication_AllowedConfirmation `protobuf:"bytes,4,rep,name=allowed_confirmations"`
	WeakToken            *string                                 `protobuf:"bytes,5,opt,name=weak_token"`
	Steamid              *uint64                                 `protobuf:"fixed64,6,opt,name=steamid"`
}

func (m *CAuthentication_BeginAuthSessionViaCredentials_Response) Reset() {
	*m = CAuthentication_BeginAuthSessionViaCredentials_Response{}
}
func (m *CAuthentication_BeginAuthSessionViaCredentials_Response) String() string {
	return fmt.Sprintf("%+v", *m)
}
func (m *CAuthentication_BeginAuthSessionViaCredentials_Response) ProtoMessage() {}

// CAuthentication_UpdateAuthSessionWithSteamGuardCode_Request submits an
// email code, TOTP code, or device confirmation token for a pending session.
type CAuthentication_UpdateAuthSessionWithSteamGuardCode_Request struct {
	ClientId *uint64                `protobuf:"fixed64,1,opt,name=client_id"`
	Steamid  *uint64                `protobuf:"fixed64,2,opt,name=steamid"`
	Code     *string                `protobuf:"bytes,3,opt,name=code"`
	CodeType *EAuthSessionGuardType `protobuf:"varint,4,opt,name=code_type"`
}

func (m *CAuthentication_UpdateAuthSessionWithSteamGuardCode_Request) Reset() {
	*m = CAuthentication_UpdateAuthSessionWithSteamGuardCode_Request{}
}
func (m *CAuthentication_UpdateAuthSessionWithSteamGuardCode_Request) String() string {
	return fmt.Sprintf("%+v", *m)
}
func (m *CAuthentication_UpdateAuthSessionWithSteamGuardCode_Request) ProtoMessage() {}

// CAuthentication_PollAuthSessionStatus_Request polls a pending session for
// completion. The server replies with an empty body until it resolves.
type CAuthentication_PollAuthSessionStatus_Request struct {
	ClientId  *uint64 `protobuf:"fixed64,1,opt,name=client_id"`
	RequestId []byte  `protobuf:"bytes,2,opt,name=request_id"`
}

func (m *CAuthentication_PollAuthSessionStatus_Request) Reset() {
	*m = CAuthentication_PollAuthSessionStatus_Request{}
}
func (m *CAuthentication_PollAuthSessionStatus_Request) String() string {
	return fmt.Sprintf("%+v", *m)
}
func (m *CAuthentication_PollAuthSessionStatus_Request) ProtoMessage() {}

// CAuthentication_PollAuthSessionStatus_Response carries the minted tokens
// once a pending session has been confirmed.
type CAuthentication_PollAuthSessionStatus_Response struct {
	AccessToken  *string `protobuf:"bytes,1,opt,name=access_token"`
	RefreshToken *string `protobuf:"bytes,2,opt,name=refresh_token"`
	AccountName  *string `protobuf:"bytes,3,opt,name=account_name"`
	NewGuardData *string `protobuf:"bytes,4,opt,name=new_guard_data"`
}

func (m *CAuthentication_PollAuthSessionStatus_Response) Reset() {
	*m = CAuthentication_PollAuthSessionStatus_Response{}
}
func (m *CAuthentication_PollAuthSessionStatus_Response) String() string {
	return fmt.Sprintf("%+v", *m)
}
func (m *CAuthentication_PollAuthSessionStatus_Response) ProtoMessage() {}

// CAuthentication_AccessToken_GenerateForApp_Request exchanges a refresh
// token for a new access token, either over the web API (MobileApp only)
// or via the CM service-method path (SteamClient).
type CAuthentication_AccessToken_GenerateForApp_Request struct {
	RefreshToken *string `protobuf:"bytes,1,opt,name=refresh_token"`
	Steamid      *uint64 `protobuf:"fixed64,2,opt,name=steamid"`
}

func (m *CAuthentication_AccessToken_GenerateForApp_Request) Reset() {
	*m = CAuthentication_AccessToken_GenerateForApp_Request{}
}
func (m *CAuthentication_AccessToken_GenerateForApp_Request) String() string {
	return fmt.Sprintf("%+v", *m)
}
func (m *CAuthentication_AccessToken_GenerateForApp_Request) ProtoMessage() {}

// CAuthentication_AccessToken_GenerateForApp_Response carries the refreshed
// access token and, occasionally, a rotated refresh token.
type CAuthentication_AccessToken_GenerateForApp_Response struct {
	AccessToken  *string `protobuf:"bytes,1,opt,name=access_token"`
	RefreshToken *string `protobuf:"bytes,2,opt,name=refresh_token"`
}

func (m *CAuthentication_AccessToken_GenerateForApp_Response) Reset() {
	*m = CAuthentication_AccessToken_GenerateForApp_Response{}
}
func (m *CAuthentication_AccessToken_GenerateForApp_Response) String() string {
	return fmt.Sprintf("%+v", *m)
}
func (m *CAuthentication_AccessToken_GenerateForApp_Response) ProtoMessage() {}

func (m *CAuthentication_AccessToken_GenerateForApp_Response) GetAccessToken() string {
	if m != nil && m.AccessToken != nil {
		return *m.AccessToken
	}
	return ""
}

func (m *CAuthentication_AccessToken_GenerateForApp_Response) GetRefreshToken() string {
	if m != nil && m.RefreshToken != nil {
		return *m.RefreshToken
	}
	return ""
}
