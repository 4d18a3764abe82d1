//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Conn is one participant's bidirectional channel.
// Implementations must be comparable since the registry keys entries by handle.
type Conn interface {
	Send(ctx context.Context, envelope domain.Envelope) error
	Receive(ctx context.Context) (domain.InboundFrame, error)
	Close(reason string) error
}

// MessageStore keeps the conversation until the next summary cycle drains it.
type MessageStore interface {
	Append(ctx context.Context, message domain.Message) error
	ReadAll(ctx context.Context) ([]domain.Message, error)
	ClearAll(ctx context.Context) error
}

type Summarizer interface {
	Summarize(ctx context.Context, contextText string) (string, error)
}

// Recommender looks up documents related to a text in a named index.
type Recommender interface {
	Search(ctx context.Context, indexName, queryText string) ([]domain.Source, error)
}

type IRegistry interface {
	Add(conn Conn, participantID string) bool
	Remove(conn Conn, participantID string)
	ForEach(fn func(conn Conn, participantID string))
	Len() int
}
