package steamclient

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/k64z/rq"
	"github.com/k64z/steamstacks/steamerrors"
)

// CMServer represents a Steam CM server endpoint.
type CMServer struct {
	Addr string // "host:port" for TCP, "host" for WebSocket
	Type string // "websockets" or "netfilter"
}

const cmListURL = "https://api.steampowered.com/ISteamDirectory/GetCMListForConnect/v1/"

// cacheFreshness is how long a fetched server list is trusted before the
// directory refetches instead of reusing the cache.
const cacheFreshness = 24 * time.Hour

// fallbackServers is a pinned list of well-known CM hosts compiled into the
// binary, used once neither the cache nor a fresh fetch yields a
// non-blacklisted candidate of the requested type.
var fallbackServers = []CMServer{
	{Addr: "cm1-ord1.steamserver.net:443", Type: "websockets"},
	{Addr: "cm2-ord1.steamserver.net:443", Type: "websockets"},
	{Addr: "cm1-iad1.steamserver.net:443", Type: "websockets"},
	{Addr: "cm1-ord1.steamserver.net:27017", Type: "netfilter"},
	{Addr: "cm1-iad1.steamserver.net:27017", Type: "netfilter"},
}

// CMDirectory implements the CM endpoint selection policy: prefer a fresh
// cache, else refetch and persist, else fall back to the pinned list. It
// keeps a per-session blacklist of endpoints that have already failed so
// NextEndpoint doesn't hand the same bad address back immediately.
type CMDirectory struct {
	cachePath string

	mu        sync.Mutex
	servers   []CMServer
	fetchedAt time.Time
	blacklist map[string]struct{}
}

// cacheFile is the on-disk shape persisted at CachePath, mirroring
// steamsession's PersistentSession JSON idiom.
type cacheFile struct {
	Servers   []CMServer `json:"servers"`
	FetchedAt time.Time  `json:"fetched_at"`
}

// NewCMDirectory creates a directory. cachePath may be empty to disable
// persistence; when non-empty, an existing cache file is loaded eagerly.
func NewCMDirectory(cachePath string) *CMDirectory {
	d := &CMDirectory{
		cachePath: cachePath,
		blacklist: make(map[string]struct{}),
	}
	if cachePath != "" {
		d.loadCache()
	}
	return d
}

func (d *CMDirectory) loadCache() {
	data, err := os.ReadFile(d.cachePath)
	if err != nil {
		return
	}
	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return
	}
	d.servers = cf.Servers
	d.fetchedAt = cf.FetchedAt
}

func (d *CMDirectory) saveCache() {
	if d.cachePath == "" {
		return
	}
	cf := cacheFile{Servers: d.servers, FetchedAt: d.fetchedAt}
	data, err := json.Marshal(cf)
	if err != nil {
		return
	}
	dir := filepath.Dir(d.cachePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return
	}
	_ = os.WriteFile(d.cachePath, data, 0600)
}

// Blacklist marks addr as failed for the remainder of this process, so
// NextEndpoint stops offering it.
func (d *CMDirectory) Blacklist(addr string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.blacklist[addr] = struct{}{}
}

// NextEndpoint implements the three-step selection policy: fresh cache,
// else refetch, else pinned fallback; uniform-random among non-blacklisted
// candidates of the requested transport type. A refetch is also attempted
// when the cache is time-fresh but every entry of the requested type has
// already been blacklisted, since that's the other half of the ageing
// policy ("the last connect attempt to every entry failed").
func (d *CMDirectory) NextEndpoint(ctx context.Context, transportType string) (CMServer, error) {
	d.mu.Lock()
	fresh := len(d.servers) > 0 && time.Since(d.fetchedAt) < cacheFreshness
	d.mu.Unlock()

	if !fresh {
		d.refetch(ctx)
	}

	d.mu.Lock()
	candidates := filterByType(d.servers, transportType, d.blacklist)
	d.mu.Unlock()

	if len(candidates) == 0 && fresh {
		if d.refetch(ctx) {
			d.mu.Lock()
			candidates = filterByType(d.servers, transportType, d.blacklist)
			d.mu.Unlock()
		}
	}

	if len(candidates) == 0 {
		d.mu.Lock()
		candidates = filterByType(fallbackServers, transportType, d.blacklist)
		d.mu.Unlock()
	}

	if len(candidates) == 0 {
		return CMServer{}, steamerrors.ErrNoEndpointsAvailable
	}

	return candidates[rand.IntN(len(candidates))], nil
}

// refetch pulls a new server list from the Steam Web API and persists it,
// reporting whether the fetch succeeded.
func (d *CMDirectory) refetch(ctx context.Context) bool {
	servers, err := DiscoverServers(ctx)
	if err != nil {
		return false
	}
	d.mu.Lock()
	d.servers = servers
	d.fetchedAt = time.Now()
	d.mu.Unlock()
	d.saveCache()
	return true
}

func filterByType(servers []CMServer, transportType string, blacklist map[string]struct{}) []CMServer {
	var out []CMServer
	for _, s := range servers {
		if s.Type != transportType {
			continue
		}
		if _, banned := blacklist[s.Addr]; banned {
			continue
		}
		out = append(out, s)
	}
	return out
}

// DiscoverServers fetches the CM server list from the Steam Web API.
func DiscoverServers(ctx context.Context) ([]CMServer, error) {
	resp := rq.New().
		URL(cmListURL).
		QueryParam("cellid", "0").
		DoContext(ctx)

	if resp.Error() != nil {
		return nil, fmt.Errorf("rq: %w", resp.Error())
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := resp.Bytes()
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return parseCMList(body)
}

type cmListResponse struct {
	Response struct {
		ServerList []struct {
			Endpoint string `json:"endpoint"`
			Type     string `json:"type"`
		} `json:"serverlist"`
	} `json:"response"`
}

func parseCMList(data []byte) ([]CMServer, error) {
	var resp cmListResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	servers := make([]CMServer, 0, len(resp.Response.ServerList))
	for _, s := range resp.Response.ServerList {
		servers = append(servers, CMServer{
			Addr: s.Endpoint,
			Type: s.Type,
		})
	}

	if len(servers) == 0 {
		return nil, fmt.Errorf("no servers in response")
	}

	return servers, nil
}
