package steamapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/k64z/rq"
	"github.com/k64z/steamstacks/protocol"
)

type RSAPublicKey struct {
	Mod       string
	Exp       int64
	Timestamp uint64
}

// GetPasswordRSAPublicKey fetches the RSA public key used to encrypt
// passwords for a given account name.
func (a *API) GetPasswordRSAPublicKey(ctx context.Context, accountName string) (*RSAPublicKey, error) {
	msg := &protocol.CAuthentication_GetPasswordRSAPublicKey_Request{
		AccountName: &accountName,
	}

	payload, err := encodeProto(msg)
	if err != nil {
		return nil, err
	}

	resp := rq.New().
		URL("https://api.steampowered.com/IAuthenticationService/GetPasswordRSAPublicKey/v1").
		QueryParam("origin", "https://steamcommunity.com").
		QueryParam("input_protobuf_encoded", payload).
		DoContext(ctx)

	result, err := decodeProto(resp, &protocol.CAuthentication_GetPasswordRSAPublicKey_Response{})
	if err != nil {
		return nil, err
	}

	if result.PublickeyMod == nil || result.PublickeyExp == nil {
		return nil, fmt.Errorf("malformed RSA key: %+v", result)
	}

	exp, err := strconv.ParseInt(*result.PublickeyExp, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("parse exp: %w", err)
	}

	return &RSAPublicKey{
		Mod:       *result.PublickeyMod,
		Exp:       exp,
		Timestamp: *result.Timestamp,
	}, nil
}

type SessionPersistence = int32

const (
	SessionPersistenceInvalid SessionPersistence = iota - 1
	SessionPersistenceEphemeral
	SessionPersistencePersistent
)

type PlatformType int32

const (
	PlatformTypeUnknown PlatformType = iota
	PlatformTypeSteamClient
	PlatformTypeWebBrowser
	PlatformTypeMobileApp
)

type DeviceDetails struct {
	FriendlyName string // INFO: user-agent in browser
	PlatformType int32  // TODO: use proper type
}

// BeginAuthSessionViaCredentials starts an authentication session with a
// username/encrypted password pair, returning the client/request IDs used
// to poll for completion and the set of Steam Guard confirmations allowed.
func (a *API) BeginAuthSessionViaCredentials(
	ctx context.Context,
	req *protocol.CAuthentication_BeginAuthSessionViaCredentials_Request,
) (*protocol.CAuthentication_BeginAuthSessionViaCredentials_Response, error) {
	if req == nil {
		return nil, errors.New("invalid request")
	}

	payload, err := encodeProto(req)
	if err != nil {
		return nil, fmt.Errorf("encode proto: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	err = w.WriteField("input_protobuf_encoded", payload)
	if err != nil {
		return nil, fmt.Errorf("write field: %w", err)
	}

	err = w.Close()
	if err != nil {
		return nil, fmt.Errorf("close writer: %w", err)
	}

	resp := rq.New().
		URL("https://api.steampowered.com/IAuthenticationService/BeginAuthSessionViaCredentials/v1").
		Method(http.MethodPost).
		BodyBytes(buf.Bytes()).
		Header("Content-Type", w.FormDataContentType()).
		DoContext(ctx)

	result, err := decodeProto(resp, &protocol.CAuthentication_BeginAuthSessionViaCredentials_Response{})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateAuthSessionWithSteamGuardCode submits a Steam Guard / email / TOTP
// code to approve an in-progress authentication session.
func (a *API) UpdateAuthSessionWithSteamGuardCode(
	ctx context.Context,
	req *protocol.CAuthentication_UpdateAuthSessionWithSteamGuardCode_Request,
) error {
	if req == nil {
		return errors.New("invalid request")
	}

	payload, err := encodeProto(req)
	if err != nil {
		return fmt.Errorf("encode proto: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("input_protobuf_encoded", payload); err != nil {
		return fmt.Errorf("write field: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close writer: %w", err)
	}

	resp := rq.New().
		URL("https://api.steampowered.com/IAuthenticationService/UpdateAuthSessionWithSteamGuardCode/v1").
		Method(http.MethodPost).
		BodyBytes(buf.Bytes()).
		Header("Content-Type", w.FormDataContentType()).
		DoContext(ctx)

	if resp.Error() != nil {
		return fmt.Errorf("rq: %w", resp.Error())
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return nil
}

// PollAuthSessionStatus polls for the completion of an authentication
// session started via BeginAuthSessionViaCredentials. Steam returns an
// empty-but-OK response until the session is confirmed, at which point
// AccessToken and RefreshToken are populated.
func (a *API) PollAuthSessionStatus(
	ctx context.Context,
	req *protocol.CAuthentication_PollAuthSessionStatus_Request,
) (*protocol.CAuthentication_PollAuthSessionStatus_Response, error) {
	if req == nil {
		return nil, errors.New("invalid request")
	}

	payload, err := encodeProto(req)
	if err != nil {
		return nil, fmt.Errorf("encode proto: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("input_protobuf_encoded", payload); err != nil {
		return nil, fmt.Errorf("write field: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close writer: %w", err)
	}

	resp := rq.New().
		URL("https://api.steampowered.com/IAuthenticationService/PollAuthSessionStatus/v1").
		Method(http.MethodPost).
		BodyBytes(buf.Bytes()).
		Header("Content-Type", w.FormDataContentType()).
		DoContext(ctx)

	return decodeProto(resp, &protocol.CAuthentication_PollAuthSessionStatus_Response{})
}

// GenerateAccessTokenForApp exchanges a refresh token for a fresh access
// token without going through the full credential flow again.
func (a *API) GenerateAccessTokenForApp(
	ctx context.Context,
	req *protocol.CAuthentication_AccessToken_GenerateForApp_Request,
) (*protocol.CAuthentication_AccessToken_GenerateForApp_Response, error) {
	if req == nil {
		return nil, errors.New("invalid request")
	}

	payload, err := encodeProto(req)
	if err != nil {
		return nil, fmt.Errorf("encode proto: %w", err)
	}

	resp := rq.New().
		URL("https://api.steampowered.com/IAuthenticationService/GenerateAccessTokenForApp/v1").
		QueryParam("input_protobuf_encoded", payload).
		DoContext(ctx)

	return decodeProto(resp, &protocol.CAuthentication_AccessToken_GenerateForApp_Response{})
}

// Encodes protobuf messages to base64
func encodeProto(msg protocol.Message) (string, error) {
	data, err := protocol.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("proto marshal: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decodes HTTP responses to protobuf messages
func decodeProto[T protocol.Message](resp *rq.Response, msg T) (T, error) {
	if resp.Error() != nil {
		return msg, fmt.Errorf("rq: %w", resp.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return msg, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	bodyBytes, err := resp.Bytes()
	if err != nil {
		return msg, fmt.Errorf("read body: %w", err)
	}

	err = protocol.Unmarshal(bodyBytes, msg)
	if err != nil {
		return msg, fmt.Errorf("unmarshal proto: %w", err)
	}

	return msg, nil
}
