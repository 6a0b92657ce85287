package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"teams-pollbot/internal/domain/poll"
	"teams-pollbot/internal/redis"
	"teams-pollbot/pkg/database"
	pollbot_errors "teams-pollbot/pkg/errors"
)

func sampleState() *poll.State {
	s := poll.NewState()
	s.CreatePoll("color?")
	s.AddOption("red")
	s.AddOption("blue")
	s.Vote(1, "alice", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	return s
}

func assertSampleState(t *testing.T, got *poll.State) {
	t.Helper()
	active, err := got.ActivePoll()
	if err != nil {
		t.Fatalf("ActivePoll() error = %v", err)
	}
	if active.Question != "color?" || len(active.Options) != 2 {
		t.Fatalf("Unexpected active poll %+v", active)
	}
	if !active.Options[0].HasVoted("alice") {
		t.Error("Expected alice's vote to be persisted")
	}
}

func TestFileStateRepository(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "db.json")
	repo := NewFileStateRepository(path)

	empty, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() on missing file error = %v", err)
	}
	if len(empty.Polls) != 0 || empty.ActivePollID != nil {
		t.Errorf("Expected empty state, got %+v", empty)
	}

	if err := repo.Save(ctx, sampleState()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	assertSampleState(t, got)

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error = %v", err)
	}
	if !strings.HasPrefix(string(raw), "{\n  \"polls\": [") {
		t.Errorf("Expected two-space indented JSON, got %q", string(raw[:min(len(raw), 40)]))
	}

	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	if len(leftovers) != 0 {
		t.Errorf("Expected temp files to be cleaned up, found %v", leftovers)
	}
}

func TestFileStateRepositoryCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := NewFileStateRepository(path).Load(context.Background())
	if !errors.Is(err, pollbot_errors.ErrStorageReadFailed) {
		t.Errorf("Load() error = %v, want ErrStorageReadFailed", err)
	}
}

func TestFileStateRepositoryLegacyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	legacy := `{
  "polls": [
    {
      "_id": "6f1c0c1e-9a55-4a3e-a1f2-3c0b7d6c2f10",
      "question": "Friday lunch?",
      "options": [
        { "id": 1, "text": "tacos", "votes": [ { "user": "Alice", "timestamp": "2024-02-02T12:00:00.000Z" } ] }
      ],
      "votes": []
    }
  ],
  "activePollId": "6f1c0c1e-9a55-4a3e-a1f2-3c0b7d6c2f10"
}`
	if err := os.WriteFile(path, []byte(legacy), 0644); err != nil {
		t.Fatal(err)
	}

	state, err := NewFileStateRepository(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	active, err := state.ActivePoll()
	if err != nil {
		t.Fatalf("ActivePoll() error = %v", err)
	}
	if active.Question != "Friday lunch?" || !active.Options[0].HasVoted("Alice") {
		t.Errorf("Unexpected poll %+v", active)
	}
}

func TestFileStateRepositoryUnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	repo := NewFileStateRepository(filepath.Join(blocker, "db.json"))
	err := repo.Save(context.Background(), sampleState())
	if !errors.Is(err, pollbot_errors.ErrStorageWriteFailed) {
		t.Errorf("Save() error = %v, want ErrStorageWriteFailed", err)
	}
}

func TestMemoryStateRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStateRepository()

	state, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	state.CreatePoll("unsaved")

	again, _ := repo.Load(ctx)
	if len(again.Polls) != 0 {
		t.Error("Mutating a loaded state must not change the stored copy")
	}

	if err := repo.Save(ctx, sampleState()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, _ := repo.Load(ctx)
	assertSampleState(t, got)

	if repo.Loads() != 3 || repo.Saves() != 1 {
		t.Errorf("Expected 3 loads and 1 save, got %d and %d", repo.Loads(), repo.Saves())
	}
}

type fakeObjectStore struct {
	objects map[string][]byte
	getErr  error
}

func (f *fakeObjectStore) GetObject(_ context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, pollbot_errors.ErrNotFound
	}
	return data, nil
}

func (f *fakeObjectStore) PutObject(_ context.Context, key, contentType string, body []byte) error {
	if contentType != "application/json" {
		return errors.New("unexpected content type " + contentType)
	}
	f.objects[key] = body
	return nil
}

func (f *fakeObjectStore) HeadBucket(context.Context) error { return nil }

func TestS3StateRepository(t *testing.T) {
	ctx := context.Background()
	store := &fakeObjectStore{objects: map[string][]byte{}}
	repo := NewS3StateRepository(store, "pollbot/db.json")

	empty, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() on missing object error = %v", err)
	}
	if len(empty.Polls) != 0 {
		t.Error("Expected empty state")
	}

	if err := repo.Save(ctx, sampleState()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, ok := store.objects["pollbot/db.json"]; !ok {
		t.Fatal("Expected the object to be written under the configured key")
	}
	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	assertSampleState(t, got)

	store.getErr = errors.New("access denied")
	if _, err := repo.Load(ctx); !errors.Is(err, pollbot_errors.ErrStorageReadFailed) {
		t.Errorf("Load() error = %v, want ErrStorageReadFailed", err)
	}
}

func TestPostgresStateRepository(t *testing.T) {
	dsn := os.Getenv("POLLBOT_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("POLLBOT_TEST_POSTGRES_URL not set")
	}
	ctx := context.Background()

	pool, err := database.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer pool.Close()
	if err := database.MigrateDown(ctx, pool); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}

	repo := NewPostgresStateRepository(pool)
	if _, err := repo.Load(ctx); !errors.Is(err, pollbot_errors.ErrStorageReadFailed) {
		t.Errorf("Load() without table error = %v, want ErrStorageReadFailed", err)
	}

	if err := database.MigrateUp(ctx, pool); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}
	empty, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(empty.Polls) != 0 {
		t.Error("Expected empty state")
	}

	for i := 0; i < 2; i++ {
		if err := repo.Save(ctx, sampleState()); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}
	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	assertSampleState(t, got)
}

func TestRedisStateRepository(t *testing.T) {
	addr := os.Getenv("POLLBOT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("POLLBOT_TEST_REDIS_ADDR not set")
	}
	host, port, _ := strings.Cut(addr, ":")
	ctx := context.Background()

	client := redis.NewClient(redis.Config{Host: host, Port: port})
	defer client.Close()
	key := "pollbot:test:" + t.Name()
	defer client.Del(ctx, key)

	repo := NewRedisStateRepository(client, key)
	if err := repo.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	empty, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(empty.Polls) != 0 {
		t.Error("Expected empty state")
	}
	if err := repo.Save(ctx, sampleState()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	assertSampleState(t, got)
}

type deadlineRecorder struct {
	StateRepository
	sawDeadline bool
}

func (r *deadlineRecorder) Load(ctx context.Context) (*poll.State, error) {
	_, r.sawDeadline = ctx.Deadline()
	return poll.NewState(), nil
}

func TestWithTimeout(t *testing.T) {
	inner := &deadlineRecorder{}
	if got := WithTimeout(inner, 0); got != StateRepository(inner) {
		t.Error("Expected a zero timeout to return the repository unchanged")
	}

	if _, err := WithTimeout(inner, time.Second).Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !inner.sawDeadline {
		t.Error("Expected Load to run with a deadline")
	}
}
