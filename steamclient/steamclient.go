package steamclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/k64z/steamstacks/protocol"
	"github.com/k64z/steamstacks/steamconfig"
	"github.com/k64z/steamstacks/steamerrors"
	"github.com/k64z/steamstacks/steamid"
)

// TransportType selects the CM transport layer.
type TransportType int

const (
	TransportWebSocket TransportType = iota
	TransportTCP
)

// Client manages a connection to a Steam CM server.
type Client struct {
	conn      Connection
	steamID   steamid.SteamID
	sessionID int32

	transport  TransportType
	httpClient *http.Client
	logger     *slog.Logger
	cmDir      *CMDirectory
	sentryPath string
	intents    steamconfig.Intent

	// OnPacket is called for every decoded packet other than an EMsgMulti
	// wrapper (whose inner packets arrive one by one), including packets that
	// are also handled internally.
	OnPacket func(*Packet)

	// OnFriendMessage is called for incoming chat messages.
	OnFriendMessage func(*FriendMessage)

	// OnRelationship is called for friend list / relationship changes.
	OnRelationship func(*RelationshipEvent)

	// OnPersonaState is called when a friend's persona state changes.
	OnPersonaState func(*PersonaStateEvent)

	// OnTradeNotification is called when the pending trade offer count changes.
	OnTradeNotification func(*TradeNotification)

	// OnItemNotification is called when new inventory items arrive.
	OnItemNotification func(*ItemNotification)

	// OnDisconnect is called when the connection drops unexpectedly.
	OnDisconnect func(*DisconnectEvent)

	nextJobID   atomic.Uint64
	pendingJobs map[uint64]chan<- *Packet // protected by mu

	nextSubID   atomic.Uint64
	subscribers []*subscription // protected by mu

	mu             sync.Mutex
	done           chan struct{} // closed on Disconnect
	wg             sync.WaitGroup
	loggedIn       bool
	closeOnce      sync.Once
	disconnectOnce sync.Once
}

// subscription is one registration made through Subscribe: deliver pkt on
// ch for every packet carrying tag and satisfying predicate (nil predicate
// matches every packet of that tag).
type subscription struct {
	id        uint64
	tag       EMsg
	predicate func(*Packet) bool
	ch        chan *Packet
}

type config struct {
	transport           TransportType
	httpClient          *http.Client
	logger              *slog.Logger
	cmCachePath         string
	sentryPath          string
	intents             steamconfig.Intent
	onPacket            func(*Packet)
	onFriendMsg         func(*FriendMessage)
	onRelationship      func(*RelationshipEvent)
	onPersonaState      func(*PersonaStateEvent)
	onTradeNotification func(*TradeNotification)
	onItemNotification  func(*ItemNotification)
	onDisconnect        func(*DisconnectEvent)
}

// Option configures a Client.
type Option func(*config)

// WithTransport sets the transport type (WebSocket or TCP).
func WithTransport(t TransportType) Option {
	return func(c *config) { c.transport = t }
}

// WithHTTPClient sets the HTTP client used for server discovery.
func WithHTTPClient(h *http.Client) Option {
	return func(c *config) { c.httpClient = h }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithCMCachePath sets where the CM directory persists its discovered
// server list between runs. Empty (the default) disables persistence.
func WithCMCachePath(path string) Option {
	return func(c *config) { c.cmCachePath = path }
}

// WithSentryPath sets where the classic password-login path reads and
// writes its sentry file between runs. Empty disables persistence: every
// ClientUpdateMachineAuth push is still acknowledged, but nothing from it
// is kept, and LoginClassic then sends no sentry hash.
func WithSentryPath(path string) Option {
	return func(c *config) { c.sentryPath = path }
}

// WithIntents sets which asynchronous event streams the dispatcher
// populates (friends, chat, personas, trades). Defaults to
// steamconfig.IntentAll; handlers for an unset intent are never invoked
// even if one was configured via the matching WithXHandler option.
func WithIntents(i steamconfig.Intent) Option {
	return func(c *config) { c.intents = i }
}

// WithPacketHandler sets a callback for every decoded non-Multi packet,
// including packets that are also handled internally.
func WithPacketHandler(fn func(*Packet)) Option {
	return func(c *config) { c.onPacket = fn }
}

// WithFriendMessageHandler sets a callback for incoming friend chat messages.
func WithFriendMessageHandler(fn func(*FriendMessage)) Option {
	return func(c *config) { c.onFriendMsg = fn }
}

// WithRelationshipHandler sets a callback for friend list / relationship changes.
func WithRelationshipHandler(fn func(*RelationshipEvent)) Option {
	return func(c *config) { c.onRelationship = fn }
}

// WithPersonaStateHandler sets a callback for persona state changes.
func WithPersonaStateHandler(fn func(*PersonaStateEvent)) Option {
	return func(c *config) { c.onPersonaState = fn }
}

// New creates a new Steam CM client.
func New(opts ...Option) *Client {
	cfg := config{
		transport:  TransportWebSocket,
		httpClient: http.DefaultClient,
		logger:     slog.Default(),
		intents:    steamconfig.IntentAll,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Client{
		transport:           cfg.transport,
		httpClient:          cfg.httpClient,
		logger:              cfg.logger,
		cmDir:               NewCMDirectory(cfg.cmCachePath),
		sentryPath:          cfg.sentryPath,
		intents:             cfg.intents,
		OnPacket:            cfg.onPacket,
		OnFriendMessage:     cfg.onFriendMsg,
		OnRelationship:      cfg.onRelationship,
		OnPersonaState:      cfg.onPersonaState,
		OnTradeNotification: cfg.onTradeNotification,
		OnItemNotification:  cfg.onItemNotification,
		OnDisconnect:        cfg.onDisconnect,
	}
}

// Connect discovers CM servers, dials one, and prepares the connection.
// For TCP, this includes the encryption handshake.
func (c *Client) Connect(ctx context.Context) error {
	targetType := "websockets"
	if c.transport == TransportTCP {
		targetType = "netfilter"
	}

	server, err := c.cmDir.NextEndpoint(ctx, targetType)
	if err != nil {
		return fmt.Errorf("next endpoint: %w", err)
	}

	c.logger.Info("connecting to CM server", "addr", server.Addr, "type", server.Type)

	switch c.transport {
	case TransportWebSocket:
		ws, err := dialWebSocket(ctx, server.Addr)
		if err != nil {
			c.cmDir.Blacklist(server.Addr)
			return err
		}
		c.conn = ws

	case TransportTCP:
		tcp, err := dialTCP(ctx, server.Addr)
		if err != nil {
			c.cmDir.Blacklist(server.Addr)
			return err
		}
		if err := tcp.performEncryptionHandshake(ctx); err != nil {
			tcp.Close()
			c.cmDir.Blacklist(server.Addr)
			return fmt.Errorf("encryption handshake: %w", err)
		}
		c.conn = tcp
	}

	c.done = make(chan struct{})
	c.wg.Add(1)
	go c.readLoop()

	c.logger.Info("connected", "addr", c.conn.RemoteAddr())
	return nil
}

// Login authenticates with the CM server using an account name and refresh token.
func (c *Client) Login(ctx context.Context, accountName, refreshToken string, sid steamid.SteamID) error {
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

	// Install response handler BEFORE sending logon to avoid race with readLoop
	subID, responseCh := c.expectEMsg(EMsgClientLogOnResponse)
	defer c.Unsubscribe(subID)

	osType := uint32(20) // EOSType Windows 11
	lang := "english"

	logonBody, err := protocol.Marshal(&protocol.CMsgClientLogon{
		AccountName:            &accountName,
		AccessToken:            &refreshToken,
		ShouldRememberPassword: protocol.Bool(true),
		ProtocolVersion:        protocol.Uint32(ProtoVersion),
		ClientOsType:           &osType,
		ClientLanguage:         &lang,
	})
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
		heartbeatSec = 30 // fallback
	}

	c.wg.Add(1)
	go c.heartbeatLoop(time.Duration(heartbeatSec) * time.Second)

	c.logger.Info("logged in",
		"steamid", c.steamID.String(),
		"session_id", c.sessionID,
		"heartbeat_sec", heartbeatSec,
	)

	return nil
}

// Disconnect cleanly disconnects from the CM server.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	wasLoggedIn := c.loggedIn
	var sidU64 uint64
	var sessionID int32
	if wasLoggedIn {
		sidU64 = c.steamID.ToSteamID64()
		sessionID = c.sessionID
		c.loggedIn = false
	}
	c.mu.Unlock()

	// Send ClientLogOff best-effort (outside the lock to avoid deadlock
	// with sendPacket which also acquires c.mu).
	if wasLoggedIn {
		body, _ := protocol.Marshal(&protocol.CMsgClientLogOff{})
		_ = c.sendPacket(context.Background(), EMsgClientLogOff, &protocol.CMsgProtoBufHeader{
			Steamid:         &sidU64,
			ClientSessionid: &sessionID,
		}, body)
	}

	c.closeOnce.Do(func() { close(c.done) })

	if c.conn != nil {
		c.conn.Close()
	}
	c.wg.Wait()

	// Reset sync primitives for potential reuse via Reconnect.
	c.closeOnce = sync.Once{}
	c.disconnectOnce = sync.Once{}

	c.logger.Info("disconnected")
	return nil
}

func (c *Client) sendPacket(ctx context.Context, emsg EMsg, hdr *protocol.CMsgProtoBufHeader, body []byte) error {
	if hdr == nil {
		hdr = &protocol.CMsgProtoBufHeader{}
	}

	c.mu.Lock()
	if c.loggedIn {
		sid := c.steamID.ToSteamID64()
		hdr.Steamid = &sid
		hdr.ClientSessionid = &c.sessionID
	}
	c.mu.Unlock()

	pkt := &Packet{
		EMsg:    emsg,
		IsProto: true,
		Header:  hdr,
		Body:    body,
	}

	data, err := encodePacket(pkt)
	if err != nil {
		return fmt.Errorf("encode %s: %w", emsg, err)
	}

	return c.conn.Write(ctx, data)
}

func (c *Client) readLoop() {
	defer c.wg.Done()

	for {
		data, err := c.conn.Read(context.Background())
		if err != nil {
			select {
			case <-c.done:
				return // expected disconnect
			default:
				if !errors.Is(err, context.Canceled) {
					c.logger.Error("read error", "err", err)
				}
				c.fireDisconnect(&DisconnectEvent{Err: err})
				return
			}
		}

		pkt, err := decodePacket(data)
		if err != nil {
			c.logger.Error("decode error", "err", err)
			continue
		}

		c.handlePacket(pkt)
	}
}

func (c *Client) handlePacket(pkt *Packet) {
	// EMsgMulti is handled recursively and never forwarded to OnPacket.
	if pkt.EMsg == EMsgMulti {
		var multi protocol.CMsgMulti
		if err := protocol.Unmarshal(pkt.Body, &multi); err != nil {
			c.logger.Error("unmarshal Multi", "err", err)
			return
		}

		packets, err := decodeMulti(multi.GetMessageBody(), multi.GetSizeUnzipped())
		if err != nil {
			c.logger.Error("decode Multi", "err", err)
			return
		}

		for _, sub := range packets {
			c.handlePacket(sub)
		}
		return
	}

	// Dispatch pending service method responses by job ID.
	// The response EMsg varies (146, 147, 152) so we match all packets.
	c.mu.Lock()
	ch, ok := c.pendingJobs[pkt.Header.GetJobidTarget()]
	if ok {
		delete(c.pendingJobs, pkt.Header.GetJobidTarget())
	}
	c.mu.Unlock()
	if ok {
		select {
		case ch <- pkt:
		default:
		}
	}

	// Fan out to every registered Subscribe listener for this EMsg, in the
	// order packets arrive off the wire. A panicking predicate or a closed
	// receiver doesn't interrupt delivery to the remaining subscribers or
	// the fixed handlers below.
	c.dispatchSubscribers(pkt)

	// Dispatch to type-specific handlers.
	switch pkt.EMsg {
	case EMsgClientLoggedOff:
		var logoff protocol.CMsgClientLoggedOff
		eresult := int32(2)
		if err := protocol.Unmarshal(pkt.Body, &logoff); err == nil {
			eresult = logoff.GetEresult()
		}
		c.logger.Warn("logged off by server", "eresult", eresult)
		c.fireDisconnect(&DisconnectEvent{ServerInitiated: true, EResult: eresult})
		// Close connection â€” readLoop will exit cleanly on next Read().
		c.closeOnce.Do(func() { close(c.done) })
		if c.conn != nil {
			c.conn.Close()
		}

	case EMsgClientFriendsList:
		c.handleFriendsList(pkt)

	case EMsgClientPersonaState:
		c.handlePersonaState(pkt)

	case EMsgClientFriendMsgIncoming, EMsgClientFriendMsgEchoToSender:
		c.handleFriendMsgIncoming(pkt)

	case EMsgClientUserNotifications:
		c.handleUserNotifications(pkt)

	case EMsgClientItemAnnouncements:
		c.handleItemAnnouncements(pkt)

	case EMsgClientUpdateMachineAuth:
		c.handleUpdateMachineAuth(pkt)
	}

	// Forward all non-Multi packets to the generic handler.
	if c.OnPacket != nil {
		c.OnPacket(pkt)
	}
}

// Subscribe registers a listener for every packet carrying tag and
// satisfying predicate (nil predicate matches all packets of that tag).
// Matching packets are delivered on the returned channel, which is buffered
// for one: while a delivered match is still unread, further matches for
// that subscriber are dropped, so readLoop never blocks. Call Unsubscribe(id) once the subscriber no
// longer needs delivery; subscriptions otherwise live for the Client's
// lifetime.
func (c *Client) Subscribe(tag EMsg, predicate func(*Packet) bool) (id uint64, ch <-chan *Packet) {
	sid := c.nextSubID.Add(1)
	out := make(chan *Packet, 1)

	c.mu.Lock()
	c.subscribers = append(c.subscribers, &subscription{id: sid, tag: tag, predicate: predicate, ch: out})
	c.mu.Unlock()

	return sid, out
}

// Unsubscribe removes the subscription registered by Subscribe. Safe to
// call more than once or with an id that never matched.
func (c *Client) Unsubscribe(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, s := range c.subscribers {
		if s.id == id {
			c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
			return
		}
	}
}

// dispatchSubscribers fans pkt out to every Subscribe listener whose tag
// matches, in subscription order, isolating each delivery so one
// subscriber's panic can't take down the read loop or skip the rest.
func (c *Client) dispatchSubscribers(pkt *Packet) {
	c.mu.Lock()
	matched := make([]*subscription, 0, 1)
	for _, s := range c.subscribers {
		if s.tag == pkt.EMsg {
			matched = append(matched, s)
		}
	}
	c.mu.Unlock()

	for _, s := range matched {
		c.deliverToSubscriber(s, pkt)
	}
}

func (c *Client) deliverToSubscriber(s *subscription, pkt *Packet) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("packet subscriber panicked", "sub_id", s.id, "emsg", pkt.EMsg, "recover", r)
		}
	}()

	if s.predicate != nil && !s.predicate(pkt) {
		return
	}
	select {
	case s.ch <- pkt:
	default:
	}
}

// expectEMsg is a convenience over Subscribe for the common case of
// awaiting exactly one reply of a given EMsg. Call this BEFORE sending the
// request to avoid a race with readLoop, and Unsubscribe(id) once done
// (via awaitPacket's caller) so the registration doesn't outlive the call.
func (c *Client) expectEMsg(target EMsg) (id uint64, ch <-chan *Packet) {
	return c.Subscribe(target, nil)
}

// awaitPacket blocks until a packet arrives on ch, ctx expires, or the connection closes.
func (c *Client) awaitPacket(ctx context.Context, ch <-chan *Packet) (*Packet, error) {
	select {
	case pkt := <-ch:
		return pkt, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", steamerrors.ErrTimeout, ctx.Err())
	case <-c.done:
		return nil, steamerrors.ErrDisconnected
	}
}

// expectJobID registers a one-shot listener for a service method response
// matched by JobidTarget. The match is handled directly in handlePacket
// under the mutex, avoiding data races with readLoop.
func (c *Client) expectJobID(jobID uint64) <-chan *Packet {
	ch := make(chan *Packet, 1)
	c.mu.Lock()
	if c.pendingJobs == nil {
		c.pendingJobs = make(map[uint64]chan<- *Packet)
	}
	c.pendingJobs[jobID] = ch
	c.mu.Unlock()
	return ch
}

// callServiceMethod sends a unified service method request and awaits the
// matching response, correlated by job ID.
func (c *Client) callServiceMethod(ctx context.Context, method string, body []byte) (*Packet, error) {
	jobID := c.nextJobID.Add(1)
	if jobID == 0 {
		return nil, fmt.Errorf("%s: %w", method, steamerrors.ErrJobIDOverflow)
	}
	responseCh := c.expectJobID(jobID)
	defer func() {
		c.mu.Lock()
		delete(c.pendingJobs, jobID)
		c.mu.Unlock()
	}()

	hdr := &protocol.CMsgProtoBufHeader{
		TargetJobName: protocol.String(method),
		JobidSource:   protocol.Uint64(jobID),
	}
	if err := c.sendPacket(ctx, EMsgServiceMethodCallFromClient, hdr, body); err != nil {
		return nil, fmt.Errorf("send %s: %w", method, err)
	}

	pkt, err := c.awaitPacket(ctx, responseCh)
	if err != nil {
		return nil, fmt.Errorf("wait for %s response: %w", method, err)
	}
	if result := steamerrors.EResult(pkt.Header.GetEresult()); result != steamerrors.EResultOK {
		return pkt, &steamerrors.ResultError{Result: result, Method: method}
	}
	return pkt, nil
}

func (c *Client) heartbeatLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			body, _ := protocol.Marshal(&protocol.CMsgClientHeartBeat{})
			if err := c.sendPacket(context.Background(), EMsgClientHeartBeat, nil, body); err != nil {
				c.logger.Error("heartbeat failed", "err", err)
				return
			}
			c.logger.Debug("heartbeat sent")
		}
	}
}
