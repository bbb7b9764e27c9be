package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"messenger-lab/domain"
)

type IMessageRepository interface {
	Insert(message domain.Message) error
	FindBetween(idA, idB string) ([]domain.Message, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

// conversationKey orders the two participant ids so that both
// directions of a conversation share one key prefix. FindBetween(A, B)
// and FindBetween(B, A) are symmetric by construction.
func conversationKey(idA, idB string) string {
	if idB < idA {
		idA, idB = idB, idA
	}
	return idA + "/" + idB
}

// Insert persists a message in BadgerDB.
// The key is formatted as "msg:{conversation}:{timestamp_padded}:{id}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order equals time order).
//  2. Prevent data loss by using the message id as a collision
//     disconnector if two messages arrive at the same nanosecond.
func (m MessageRepository) Insert(message domain.Message) error {
	key := fmt.Sprintf("msg:%s:%019d:%s",
		conversationKey(message.SenderID, message.RecipientID),
		message.Timestamp.UnixNano(),
		message.ID,
	)
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// FindBetween returns every message exchanged between two accounts,
// both directions merged, sorted by timestamp ascending. Thanks to the
// padded timestamp in the key a single forward prefix scan is enough.
// When limitMessages is set only the newest messages are kept.
func (m MessageRepository) FindBetween(idA, idB string) ([]domain.Message, error) {
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte("msg:" + conversationKey(idA, idB) + ":")
		options := badger.DefaultIteratorOptions
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var message domain.Message
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &message)
			})
			if err != nil {
				return err
			}
			messages = append(messages, message)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if m.limitMessages != nil && len(messages) > *m.limitMessages {
		m.log.Debug(fmt.Sprintf("History capped at %d messages", *m.limitMessages))
		messages = messages[len(messages)-*m.limitMessages:]
	}
	return messages, nil
}
