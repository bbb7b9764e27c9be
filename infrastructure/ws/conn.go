package ws

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"messenger-lab/domain"
	"messenger-lab/errors"
	"messenger-lab/protocol"
	"messenger-lab/runtime"
)

// User-facing message texts. Unknown-user and wrong-password share one
// text on purpose so login failures cannot be used to enumerate
// accounts.
const (
	msgRegisterRules    = "Username must be at least 3 characters and password at least 6 characters."
	msgUsernameTaken    = "Username is already taken."
	msgRegisterDone     = "Registration successful! You can now log in."
	msgRegisterFailed   = "An error occurred during registration."
	msgBadCredentials   = "Invalid username or password."
	msgLoginFailed      = "An error occurred during login. Please try again."
	msgAccountBanned    = "This account has been banned."
	msgProfileRejected  = "Profile update rejected: display name is required and bio is limited to 100 characters."
	msgProfileFailed    = "Failed to update profile."
	msgDeliveryFailed   = "Your message could not be processed. Please try again."
	msgSessionTakenOver = "You logged in from another location."
)

// wsSink pushes JSON events to one WebSocket connection. Writes are
// serialized by a mutex and bounded by a write deadline so one slow
// client cannot stall a broadcast cycle.
type wsSink struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	timeout time.Duration
}

func (s *wsSink) Send(_ context.Context, event any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(s.timeout))
	w, err := s.conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	// Keep <, >, & literal in message content.
	enc.SetEscapeHTML(false)
	if err := enc.Encode(event); err != nil {
		return err
	}
	return w.Close()
}

func (s *wsSink) Close() error {
	return s.conn.Close()
}

// connection is the per-connection protocol state machine. It starts
// unauthenticated; a successful login binds it to an identity; closing
// always releases the session. All inbound events are dispatched from
// the single read loop, so the fields below need no locking.
type connection struct {
	srv      *Server
	sink     *wsSink
	userID   string
	username string
}

func newConnection(srv *Server, conn *websocket.Conn) *connection {
	return &connection{
		srv:  srv,
		sink: &wsSink{conn: conn, timeout: srv.writeTimeout},
	}
}

func (c *connection) authenticated() bool {
	return c.userID != ""
}

func (c *connection) run(ctx context.Context) {
	defer c.close(ctx)

	for {
		_, data, err := c.sink.conn.ReadMessage()
		if err != nil {
			return
		}

		var in protocol.Inbound
		if err := json.Unmarshal(data, &in); err != nil {
			c.srv.monitor.IncrDroppedFrames()
			c.srv.log.Debug("dropping malformed frame", "error", err)
			continue
		}
		c.dispatch(ctx, in)
	}
}

func (c *connection) dispatch(ctx context.Context, in protocol.Inbound) {
	switch in.Type {
	case protocol.TypeRegister:
		c.handleRegister(ctx, in)
	case protocol.TypeLogin:
		c.handleLogin(ctx, in)
	case protocol.TypeUpdateProfile:
		c.handleUpdateProfile(ctx, in)
	case protocol.TypeGetHistory:
		c.handleGetHistory(ctx, in)
	case protocol.TypeSendMessage:
		c.handleSendMessage(ctx, in)
	case protocol.TypeTyping, protocol.TypeStopTyping:
		c.handleTyping(ctx, in)
	default:
		c.srv.monitor.IncrDroppedFrames()
		c.srv.log.Debug("dropping unknown event type", "type", in.Type)
	}
}

func (c *connection) handleRegister(ctx context.Context, in protocol.Inbound) {
	err := c.srv.auth.Register(in.Username, in.Password)
	switch {
	case err == nil:
		c.send(ctx, protocol.NewRegisterSuccess(msgRegisterDone))
	case stderrors.Is(err, errors.ErrInvalidRegistration):
		c.send(ctx, protocol.NewError(msgRegisterRules))
	case stderrors.Is(err, errors.ErrUsernameTaken):
		c.send(ctx, protocol.NewError(msgUsernameTaken))
	default:
		c.srv.log.Error("registration failed", "username", in.Username, "error", err)
		c.send(ctx, protocol.NewError(msgRegisterFailed))
	}
}

func (c *connection) handleLogin(ctx context.Context, in protocol.Inbound) {
	account, token, err := func() (domain.Account, string, error) {
		if in.ResumeToken != "" {
			return c.srv.auth.Resume(in.Username, in.ResumeToken)
		}
		return c.srv.auth.Login(in.Username, in.Password)
	}()
	switch {
	case err == nil:
	case stderrors.Is(err, errors.ErrAccountBanned):
		c.send(ctx, protocol.NewError(msgAccountBanned))
		return
	case stderrors.Is(err, errors.ErrInvalidCredentials):
		c.send(ctx, protocol.NewError(msgBadCredentials))
		return
	default:
		c.srv.log.Error("login failed", "username", in.Username, "error", err)
		c.send(ctx, protocol.NewError(msgLoginFailed))
		return
	}

	// Re-login as someone else on the same socket: the previous
	// identity's session must not keep pointing at this sink, or the
	// roster would show it online forever.
	if c.authenticated() && c.userID != account.ID {
		c.srv.registry.Release(c.userID, c.sink)
	}

	c.userID = account.ID
	c.username = account.Username

	// Takeover: at most one session per identity. The superseded
	// connection is told why it is going away, then dropped.
	if previous, replaced := c.srv.registry.Put(account.ID, c.sink); replaced && previous != c.sink {
		_ = previous.Send(ctx, protocol.NewForceLogout(msgSessionTakenOver))
		if closer, ok := previous.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}

	c.srv.monitor.IncrLogins()
	c.send(ctx, protocol.NewLoginSuccess(account, token))
	c.srv.presence.BroadcastRoster(ctx)
}

func (c *connection) handleUpdateProfile(ctx context.Context, in protocol.Inbound) {
	if !c.authenticated() {
		c.dropUnauthorized(in.Type)
		return
	}
	err := c.srv.profile.UpdateProfile(c.userID, in.UserID, in.DisplayName, in.Bio)
	switch {
	case err == nil:
		c.srv.presence.BroadcastRoster(ctx)
	case stderrors.Is(err, errors.ErrNotAuthorized):
		c.dropUnauthorized(in.Type)
	case stderrors.Is(err, errors.ErrInvalidProfile):
		c.send(ctx, protocol.NewError(msgProfileRejected))
	default:
		c.srv.log.Error("profile update failed", "user_id", c.userID, "error", err)
		c.send(ctx, protocol.NewError(msgProfileFailed))
	}
}

func (c *connection) handleGetHistory(ctx context.Context, in protocol.Inbound) {
	if !c.authenticated() {
		c.dropUnauthorized(in.Type)
		return
	}
	messages, err := c.srv.router.GetHistory(c.userID, in.RecipientID)
	if err != nil {
		// A failed history fetch sends nothing back; the client
		// simply keeps its current view.
		c.srv.log.Debug("history fetch dropped", "user_id", c.userID, "error", err)
		return
	}
	c.send(ctx, protocol.NewMessageHistory(messages, in.RecipientID))
}

func (c *connection) handleSendMessage(ctx context.Context, in protocol.Inbound) {
	if !c.authenticated() {
		c.dropUnauthorized(in.Type)
		return
	}
	err := c.srv.router.SendMessage(ctx, c.userID, in.RecipientID, in.Content)
	if err == nil {
		return
	}
	if runtime.IsTransient(err) {
		c.srv.log.Debug("message dropped", "user_id", c.userID, "error", err)
		return
	}
	c.srv.log.Error("message send failed", "user_id", c.userID, "error", err)
	c.send(ctx, protocol.NewError(msgDeliveryFailed))
}

func (c *connection) handleTyping(ctx context.Context, in protocol.Inbound) {
	if !c.authenticated() {
		c.dropUnauthorized(in.Type)
		return
	}
	c.srv.router.RelayTyping(ctx, c.userID, in.RecipientID, in.Type == protocol.TypeTyping)
}

// close releases every resource tied to the connection. It runs on
// every exit path of the read loop so a mid-flight disconnect can never
// leak a session entry.
func (c *connection) close(ctx context.Context) {
	_ = c.sink.Close()
	c.srv.monitor.ConnClosed()

	if c.authenticated() {
		c.srv.registry.Release(c.userID, c.sink)
		c.srv.log.Debug("client disconnected", "user_id", c.userID, "username", c.username)
		c.srv.presence.BroadcastRoster(ctx)
	} else {
		c.srv.log.Debug("client disconnected before login")
	}
}

func (c *connection) send(ctx context.Context, event any) {
	if err := c.sink.Send(ctx, event); err != nil {
		c.srv.log.Debug("outbound send failed", "error", err)
	}
}

// dropUnauthorized logs protocol misuse without answering. Treating it
// as misuse rather than a user-facing error matches the deliberately
// permissive local protocol.
func (c *connection) dropUnauthorized(eventType string) {
	c.srv.monitor.IncrDroppedFrames()
	c.srv.log.Debug("dropping unauthorized event", "type", eventType, "user_id", c.userID)
}
