// Package domain contains core concepts of the messaging system.
// This file defines Message records and related rules.
// Messages are immutable once persisted.
package domain

import "time"

// Message is a direct message between two accounts. SenderUsername is
// denormalized at send time so history rendering never needs a second
// account lookup.
type Message struct {
	ID             string
	SenderID       string
	RecipientID    string
	SenderUsername string
	Content        string
	Timestamp      time.Time
}
