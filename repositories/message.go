package repositories

import (
	"chat-relay/domain"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// MessagePrefix starts the key of every pending message.
	MessagePrefix   = "msg:"
	messageSequence = "seq:msg"
	// Number of sequence values leased from disk at once.
	sequenceBandwidth = 100
)

// MessageRepository keeps the pending conversation in BadgerDB.
type MessageRepository struct {
	db  *badger.DB
	seq *badger.Sequence
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) (*MessageRepository, error) {
	seq, err := db.GetSequence([]byte(messageSequence), sequenceBandwidth)
	if err != nil {
		return nil, fmt.Errorf("unable to lease message sequence: %w", err)
	}
	return &MessageRepository{db: db, seq: seq, log: log}, nil
}

// Append persists a message in BadgerDB.
// The key is formatted as "msg:{sequence_padded}:{uuid}" so that a prefix scan
// returns messages in append order, even when two of them share the same timestamp.
func (m *MessageRepository) Append(_ context.Context, message domain.Message) error {
	next, err := m.seq.Next()
	if err != nil {
		return err
	}
	key := fmt.Sprintf("%s%020d:%s", MessagePrefix, next, message.ID)
	bytes, err := marshalMessage(message)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// ReadAll returns every pending message, oldest first.
func (m *MessageRepository) ReadAll(ctx context.Context) ([]domain.Message, error) {
	var byteMessages [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(MessagePrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			value, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			byteMessages = append(byteMessages, value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(byteMessages))
	for _, b := range byteMessages {
		message, err := DecodeMessage(b)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

// ClearAll deletes every pending message in a single write batch.
func (m *MessageRepository) ClearAll(_ context.Context) error {
	var keys [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(MessagePrefix)
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return err
	}

	wb := m.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			return err
		}
	}
	if err := wb.Flush(); err != nil {
		return err
	}
	m.log.Debug(fmt.Sprintf("Cleared %d messages", len(keys)))
	return nil
}

// Close gives back the unused part of the leased sequence.
func (m *MessageRepository) Close() error {
	return m.seq.Release()
}

func marshalMessage(message domain.Message) ([]byte, error) {
	s, err := structpb.NewStruct(map[string]any{
		"id":     message.ID.String(),
		"sender": message.Sender,
		"body":   message.Body,
		"at":     message.At.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

// DecodeMessage reads back a value written by Append.
func DecodeMessage(b []byte) (domain.Message, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(b, &s); err != nil {
		return domain.Message{}, err
	}
	fields := s.GetFields()
	parsedID, err := uuid.Parse(fields["id"].GetStringValue())
	if err != nil {
		return domain.Message{}, err
	}
	at, err := time.Parse(time.RFC3339Nano, fields["at"].GetStringValue())
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:     parsedID,
		Sender: fields["sender"].GetStringValue(),
		Body:   fields["body"].GetStringValue(),
		At:     at.UTC(),
	}, nil
}
