package exporter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/domain"
	"task-tracker/internal/storage"
)

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (s *memStorage) PutObject(_ context.Context, bucket, key string, body io.Reader, _ string) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()
	return "s3://" + bucket + "/" + key, nil
}

func (s *memStorage) ListObjects(_ context.Context, _ string, prefix string) ([]storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []storage.ObjectInfo{}
	for key, data := range s.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	return out, nil
}

func (s *memStorage) DeletePrefix(_ context.Context, _ string, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			delete(s.objects, key)
		}
	}
	return nil
}

func (s *memStorage) GetObjectURL(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	return "https://signed/" + bucket + "/" + key, nil
}

type fakeTasks map[int64][]domain.Task

func (f fakeTasks) List(_ context.Context, ownerID int64) ([]domain.Task, error) {
	return f[ownerID], nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestManager(t *testing.T, store storage.Service, tasks TaskLister) Manager {
	t.Helper()
	m := NewManager(Config{Bucket: "exports", KeyPrefix: "/snapshots/", Logger: quietLogger()}, tasks, store)
	require.NoError(t, m.Start(context.Background()))
	return m
}

func TestManager_EnqueueWritesSnapshot(t *testing.T) {
	store := newMemStorage()
	tasks := fakeTasks{
		1: {
			{ID: 1, OwnerID: 1, Title: "buy milk", Completed: true},
			{ID: 3, OwnerID: 1, Title: "walk dog", Description: "park"},
		},
	}
	m := newTestManager(t, store, tasks)

	key, err := m.Enqueue(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "snapshots/user-1/"), key)
	assert.True(t, strings.HasSuffix(key, ".json"), key)

	m.Shutdown()

	data, ok := store.objects[key]
	require.True(t, ok, "export object written")

	var snap snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, int64(1), snap.OwnerID)
	require.Len(t, snap.Tasks, 2)
	assert.Equal(t, "buy milk", snap.Tasks[0].Title)
	assert.True(t, snap.Tasks[0].Completed)
	assert.Equal(t, "park", snap.Tasks[1].Description)
}

func TestManager_ListAndURLScopedToOwner(t *testing.T) {
	store := newMemStorage()
	m := newTestManager(t, store, fakeTasks{})

	aliceKey, err := m.Enqueue(context.Background(), 1)
	require.NoError(t, err)
	_, err = m.Enqueue(context.Background(), 2)
	require.NoError(t, err)
	m.Shutdown()

	objects, err := m.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, aliceKey, objects[0].Key)

	url, err := m.URL(context.Background(), 1, aliceKey)
	require.NoError(t, err)
	assert.Contains(t, url, aliceKey)

	_, err = m.URL(context.Background(), 2, aliceKey)
	assert.ErrorIs(t, err, domain.ErrNotFoundOrForbidden)

	_, err = m.URL(context.Background(), 2, "snapshots/user-2/../user-1/x.json")
	assert.ErrorIs(t, err, domain.ErrNotFoundOrForbidden)
}

func TestManager_EnqueueRequiresStart(t *testing.T) {
	m := NewManager(Config{Bucket: "b", Logger: quietLogger()}, fakeTasks{}, newMemStorage())

	_, err := m.Enqueue(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotStarted)

	require.NoError(t, m.Start(context.Background()))
	m.Shutdown()

	_, err = m.Enqueue(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestManager_StartRequiresBucket(t *testing.T) {
	m := NewManager(Config{Logger: quietLogger()}, fakeTasks{}, newMemStorage())
	assert.Error(t, m.Start(context.Background()))
}

func TestManager_UploadFailureIsLoggedNotFatal(t *testing.T) {
	store := newMemStorage()
	store.putErr = errors.New("bucket gone")
	m := newTestManager(t, store, fakeTasks{1: {{ID: 1, Title: "x"}}})

	_, err := m.Enqueue(context.Background(), 1)
	require.NoError(t, err)
	m.Shutdown()

	assert.Empty(t, store.objects)
}

func TestManager_PurgeOnlyTouchesOwner(t *testing.T) {
	store := newMemStorage()
	m := newTestManager(t, store, fakeTasks{})

	_, err := m.Enqueue(context.Background(), 1)
	require.NoError(t, err)
	bobKey, err := m.Enqueue(context.Background(), 2)
	require.NoError(t, err)
	m.Shutdown()

	require.NoError(t, m.Purge(context.Background(), 1))

	alice, err := m.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, alice)

	bob, err := m.List(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, bob, 1)
	assert.Equal(t, bobKey, bob[0].Key)
}
