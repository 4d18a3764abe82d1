package repositories

import (
	"chat-relay/domain"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openInMemory(t *testing.T) *badger.DB {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Append_And_Read_All_In_Order(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository, err := NewMessageRepository(openInMemory(t), slog.Default())
	req.NoError(err)
	defer repository.Close()

	// Given three messages sharing the same timestamp
	at := time.Now().UTC()
	messages := []domain.Message{
		domain.NewMessage("Alice", "first", at),
		domain.NewMessage("Bob", "second", at),
		domain.NewMessage("Clara", "third", at),
	}
	for _, message := range messages {
		req.NoError(repository.Append(ctx, message))
	}

	// When reading them back
	fetched, err := repository.ReadAll(ctx)

	// Then they come back in append order, untouched
	req.NoError(err)
	req.Len(fetched, len(messages))
	for i := range messages {
		req.Equal(messages[i].ID, fetched[i].ID)
		req.Equal(messages[i].Sender, fetched[i].Sender)
		req.Equal(messages[i].Body, fetched[i].Body)
		req.True(messages[i].At.Equal(fetched[i].At))
	}
}

func Test_Read_All_On_Empty_Store(t *testing.T) {
	req := require.New(t)
	repository, err := NewMessageRepository(openInMemory(t), slog.Default())
	req.NoError(err)

	fetched, err := repository.ReadAll(context.Background())
	req.NoError(err)
	req.Empty(fetched)
}

func Test_Clear_All(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository, err := NewMessageRepository(openInMemory(t), slog.Default())
	req.NoError(err)

	for _, body := range []string{"a", "b", "c"} {
		req.NoError(repository.Append(ctx, domain.NewMessage("Alice", body, time.Now())))
	}

	// When clearing the store
	req.NoError(repository.ClearAll(ctx))

	// Then nothing is pending anymore
	fetched, err := repository.ReadAll(ctx)
	req.NoError(err)
	req.Empty(fetched)

	// And clearing twice is harmless
	req.NoError(repository.ClearAll(ctx))

	// And new messages are appended after the clear
	req.NoError(repository.Append(ctx, domain.NewMessage("Bob", "again", time.Now())))
	fetched, err = repository.ReadAll(ctx)
	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal("again", fetched[0].Body)
}

func Test_Sequence_Survives_Reopen(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	first, err := NewMessageRepository(db, slog.Default())
	req.NoError(err)
	req.NoError(first.Append(ctx, domain.NewMessage("Alice", "before", time.Now())))
	req.NoError(first.Close())

	// When the repository is rebuilt on the same database
	second, err := NewMessageRepository(db, slog.Default())
	req.NoError(err)
	defer second.Close()
	req.NoError(second.Append(ctx, domain.NewMessage("Alice", "after", time.Now())))

	// Then ordering continues where it stopped
	fetched, err := second.ReadAll(ctx)
	req.NoError(err)
	req.Equal([]string{"before", "after"}, domain.Bodies(fetched))
}
