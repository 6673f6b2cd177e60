package steamapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const queryTimeURL = "https://api.steampowered.com/ITwoFactorService/QueryTime/v1/"

// queryTimeResponse is ITwoFactorService/QueryTime's JSON body; server_time
// is a string despite being numeric, matching the rest of Steam's Web API.
type queryTimeResponse struct {
	Response struct {
		ServerTime string `json:"server_time"`
	} `json:"response"`
}

// GetSteamTime fetches the current time from Steam's servers using
// http.DefaultClient. See GetSteamTimeWithClient for the offset semantics.
func GetSteamTime(ctx context.Context) (serverTime int64, offset int64, err error) {
	return GetSteamTimeWithClient(ctx, http.DefaultClient)
}

// GetSteamTimeWithClient fetches the current time from Steam's servers via
// client, unauthenticated. offset is serverTime minus this host's clock at
// the moment of the call — add it to time.Now().Unix() to approximate
// Steam's clock, which is what steamtotp.GenerateAuthCode's timeOffset wants.
func GetSteamTimeWithClient(ctx context.Context, client *http.Client) (serverTime int64, offset int64, err error) {
	localTime := time.Now().Unix()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, queryTimeURL, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	serverTime, err = decodeServerTime(resp.Body)
	if err != nil {
		return 0, 0, err
	}

	return serverTime, serverTime - localTime, nil
}

func decodeServerTime(body io.Reader) (int64, error) {
	var result queryTimeResponse
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}

	serverTime, err := strconv.ParseInt(result.Response.ServerTime, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse server time: %w", err)
	}
	return serverTime, nil
}
