package exporter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"task-tracker/internal/domain"
	"task-tracker/internal/storage"
)

// ErrNotStarted is returned by Enqueue before Start or after Shutdown.
var ErrNotStarted = errors.New("export manager is not running")

// Manager snapshots a user's tasks into object storage in the background.
type Manager interface {
	Start(ctx context.Context) error
	Shutdown()
	Enqueue(ctx context.Context, ownerID int64) (string, error)
	List(ctx context.Context, ownerID int64) ([]storage.ObjectInfo, error)
	URL(ctx context.Context, ownerID int64, key string) (string, error)
	Purge(ctx context.Context, ownerID int64) error
}

// TaskLister is the read side of the task service an export needs.
type TaskLister interface {
	List(ctx context.Context, ownerID int64) ([]domain.Task, error)
}

type Config struct {
	Bucket        string
	KeyPrefix     string
	MaxConcurrent int
	UploadTimeout time.Duration
	URLExpiry     time.Duration
	Logger        *logrus.Logger
}

type manager struct {
	cfg     Config
	tasks   TaskLister
	storage storage.Service

	sem    chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	now    func() time.Time
}

func NewManager(cfg Config, tasks TaskLister, store storage.Service) Manager {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 2
	}
	if cfg.UploadTimeout == 0 {
		cfg.UploadTimeout = 30 * time.Second
	}
	if cfg.URLExpiry == 0 {
		cfg.URLExpiry = 15 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	cfg.KeyPrefix = strings.Trim(cfg.KeyPrefix, "/")
	return &manager{
		cfg:     cfg,
		tasks:   tasks,
		storage: store,
		sem:     make(chan struct{}, cfg.MaxConcurrent),
		now:     time.Now,
	}
}

func (m *manager) Start(ctx context.Context) error {
	if m.cfg.Bucket == "" {
		return fmt.Errorf("export bucket is required")
	}
	m.mu.Lock()
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.mu.Unlock()
	m.cfg.Logger.Infof("export manager started, bucket: %s", m.cfg.Bucket)
	return nil
}

// Shutdown stops accepting exports and waits for running ones to finish.
func (m *manager) Shutdown() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	m.wg.Wait()
	if cancel != nil {
		cancel()
	}
	m.cfg.Logger.Info("export manager stopped")
}

// Enqueue schedules an export and returns the object key it will be written to.
func (m *manager) Enqueue(ctx context.Context, ownerID int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel == nil {
		return "", ErrNotStarted
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s%s-%s.json",
		m.ownerPrefix(ownerID),
		m.now().UTC().Format("20060102T150405Z"),
		uuid.NewString()[:8],
	)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		select {
		case <-m.ctx.Done():
			exportsTotal.WithLabelValues("cancelled").Inc()
			return
		case m.sem <- struct{}{}:
			defer func() { <-m.sem }()
			m.runExport(ownerID, key)
		}
	}()
	return key, nil
}

func (m *manager) List(ctx context.Context, ownerID int64) ([]storage.ObjectInfo, error) {
	return m.storage.ListObjects(ctx, m.cfg.Bucket, m.ownerPrefix(ownerID))
}

// URL presigns a download link for key, which must belong to ownerID.
func (m *manager) URL(ctx context.Context, ownerID int64, key string) (string, error) {
	if !strings.HasPrefix(key, m.ownerPrefix(ownerID)) || strings.Contains(key, "..") {
		return "", domain.ErrNotFoundOrForbidden
	}
	return m.storage.GetObjectURL(ctx, m.cfg.Bucket, key, m.cfg.URLExpiry)
}

// Purge removes every export stored under ownerID's prefix.
func (m *manager) Purge(ctx context.Context, ownerID int64) error {
	prefix := m.ownerPrefix(ownerID)
	if err := m.storage.DeletePrefix(ctx, m.cfg.Bucket, prefix); err != nil {
		return fmt.Errorf("purge exports: %w", err)
	}
	m.cfg.Logger.WithField("owner_id", ownerID).Infof("purged exports under %s", prefix)
	return nil
}

func (m *manager) ownerPrefix(ownerID int64) string {
	prefix := fmt.Sprintf("user-%d/", ownerID)
	if m.cfg.KeyPrefix == "" {
		return prefix
	}
	return m.cfg.KeyPrefix + "/" + prefix
}

type snapshot struct {
	OwnerID    int64          `json:"owner_id"`
	ExportedAt string         `json:"exported_at"`
	Tasks      []snapshotTask `json:"tasks"`
}

type snapshotTask struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func (m *manager) runExport(ownerID int64, key string) {
	logger := m.cfg.Logger.WithFields(logrus.Fields{"owner_id": ownerID, "key": key})
	start := time.Now()

	ctx, cancel := context.WithTimeout(m.ctx, m.cfg.UploadTimeout)
	defer cancel()

	body, count, err := m.buildSnapshot(ctx, ownerID)
	if err != nil {
		exportsTotal.WithLabelValues("failed").Inc()
		logger.Errorf("build export: %v", err)
		return
	}

	dest, err := m.storage.PutObject(ctx, m.cfg.Bucket, key, bytes.NewReader(body), "application/json")
	if err != nil {
		exportsTotal.WithLabelValues("failed").Inc()
		logger.Errorf("upload export: %v", err)
		return
	}

	exportsTotal.WithLabelValues("completed").Inc()
	exportDuration.Observe(time.Since(start).Seconds())
	logger.WithField("tasks", count).Infof("export written to %s", dest)
}

func (m *manager) buildSnapshot(ctx context.Context, ownerID int64) ([]byte, int, error) {
	tasks, err := m.tasks.List(ctx, ownerID)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}

	snap := snapshot{
		OwnerID:    ownerID,
		ExportedAt: m.now().UTC().Format(time.RFC3339),
		Tasks:      make([]snapshotTask, len(tasks)),
	}
	for i, task := range tasks {
		snap.Tasks[i] = snapshotTask{
			ID:          task.ID,
			Title:       task.Title,
			Description: task.Description,
			Completed:   task.Completed,
			CreatedAt:   task.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt:   task.UpdatedAt.UTC().Format(time.RFC3339),
		}
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal snapshot: %w", err)
	}
	return body, len(tasks), nil
}

var _ Manager = (*manager)(nil)
