// Package protocol defines the JSON wire contract between the
// coordinator and its clients. Every frame is a JSON object carrying a
// "type" discriminator.
package protocol

import (
	"time"

	"messenger-lab/domain"
)

// Inbound event types.
const (
	TypeRegister      = "register"
	TypeLogin         = "login"
	TypeUpdateProfile = "updateProfile"
	TypeGetHistory    = "getHistory"
	TypeSendMessage   = "sendMessage"
	TypeTyping        = "typing"
	TypeStopTyping    = "stop_typing"
)

// Outbound event types.
const (
	TypeRegisterSuccess = "registerSuccess"
	TypeLoginSuccess    = "loginSuccess"
	TypeError           = "error"
	TypeUserList        = "userList"
	TypeMessageHistory  = "messageHistory"
	TypeNewMessage      = "newMessage"
	TypeForceLogout     = "forceLogout"
)

// Inbound is the decoded shape of any client frame. The wire format is
// flat, so a single struct with optional fields covers every event
// type; the handler switches on Type and reads only the fields that
// event defines.
type Inbound struct {
	Type        string `json:"type"`
	Username    string `json:"username,omitempty"`
	Password    string `json:"password,omitempty"`
	ResumeToken string `json:"resumeToken,omitempty"`
	UserID      string `json:"userId,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Bio         string `json:"bio,omitempty"`
	RecipientID string `json:"recipientId,omitempty"`
	Content     string `json:"content,omitempty"`
}

// UserPayload is the public profile returned on login. PasswordHash and
// the banned flag never cross the wire here.
type UserPayload struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
	Role        string `json:"role"`
}

// RosterEntry is one row of the broadcast user list: an account merged
// with its live presence.
type RosterEntry struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
	Role        string `json:"role"`
	Banned      bool   `json:"banned"`
	Online      bool   `json:"online"`
}

// MessagePayload mirrors domain.Message on the wire.
type MessagePayload struct {
	ID             string    `json:"id"`
	SenderID       string    `json:"senderId"`
	RecipientID    string    `json:"recipientId"`
	SenderUsername string    `json:"senderUsername"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
}

type RegisterSuccessEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type LoginSuccessEvent struct {
	Type        string      `json:"type"`
	User        UserPayload `json:"user"`
	ResumeToken string      `json:"resumeToken"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type UserListEvent struct {
	Type  string        `json:"type"`
	Users []RosterEntry `json:"users"`
}

type MessageHistoryEvent struct {
	Type        string           `json:"type"`
	Messages    []MessagePayload `json:"messages"`
	RecipientID string           `json:"recipientId"`
}

type NewMessageEvent struct {
	Type    string         `json:"type"`
	Message MessagePayload `json:"message"`
}

// TypingEvent doubles as "typing" and "stop_typing"; the discriminator
// carries the boolean.
type TypingEvent struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

type ForceLogoutEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewRegisterSuccess(message string) RegisterSuccessEvent {
	return RegisterSuccessEvent{Type: TypeRegisterSuccess, Message: message}
}

func NewLoginSuccess(account domain.Account, resumeToken string) LoginSuccessEvent {
	return LoginSuccessEvent{
		Type:        TypeLoginSuccess,
		User:        UserFromAccount(account),
		ResumeToken: resumeToken,
	}
}

func NewError(message string) ErrorEvent {
	return ErrorEvent{Type: TypeError, Message: message}
}

func NewUserList(users []RosterEntry) UserListEvent {
	return UserListEvent{Type: TypeUserList, Users: users}
}

func NewMessageHistory(messages []domain.Message, recipientID string) MessageHistoryEvent {
	payloads := make([]MessagePayload, 0, len(messages))
	for _, m := range messages {
		payloads = append(payloads, MessageFromDomain(m))
	}
	return MessageHistoryEvent{Type: TypeMessageHistory, Messages: payloads, RecipientID: recipientID}
}

func NewMessage(message domain.Message) NewMessageEvent {
	return NewMessageEvent{Type: TypeNewMessage, Message: MessageFromDomain(message)}
}

func NewTyping(userID string, typing bool) TypingEvent {
	eventType := TypeStopTyping
	if typing {
		eventType = TypeTyping
	}
	return TypingEvent{Type: eventType, UserID: userID}
}

func NewForceLogout(message string) ForceLogoutEvent {
	return ForceLogoutEvent{Type: TypeForceLogout, Message: message}
}

func UserFromAccount(account domain.Account) UserPayload {
	return UserPayload{
		ID:          account.ID,
		Username:    account.Username,
		DisplayName: account.DisplayName,
		Bio:         account.Bio,
		Role:        string(account.Role),
	}
}

func RosterFromAccount(account domain.Account, online bool) RosterEntry {
	return RosterEntry{
		ID:          account.ID,
		Username:    account.Username,
		DisplayName: account.DisplayName,
		Bio:         account.Bio,
		Role:        string(account.Role),
		Banned:      account.Banned,
		Online:      online,
	}
}

func MessageFromDomain(message domain.Message) MessagePayload {
	return MessagePayload{
		ID:             message.ID,
		SenderID:       message.SenderID,
		RecipientID:    message.RecipientID,
		SenderUsername: message.SenderUsername,
		Content:        message.Content,
		Timestamp:      message.Timestamp,
	}
}
