package spawn

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/udisondev/rsckernel/internal/model"
	"github.com/udisondev/rsckernel/internal/scheduler"
)

// RespawnTaskManager tracks the pending respawn task of every dead NPC.
// The tasks run on the shared scheduler; the manager only keeps the
// npc → task index so a respawn can be looked up or cancelled.
type RespawnTaskManager struct {
	sched *scheduler.Scheduler

	mu    sync.Mutex
	tasks map[model.ObjectID]*scheduler.Task // npcID → task
}

// NewRespawnTaskManager creates new respawn task manager
func NewRespawnTaskManager(s *scheduler.Scheduler) *RespawnTaskManager {
	return &RespawnTaskManager{
		sched: s,
		tasks: make(map[model.ObjectID]*scheduler.Task),
	}
}

// ScheduleRespawn queues respawn to run once after delay. A respawn already
// pending for the NPC is cancelled first.
func (m *RespawnTaskManager) ScheduleRespawn(npcID model.ObjectID, delay time.Duration, respawn scheduler.Action) *scheduler.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.tasks[npcID]; ok {
		old.Cancel()
	}

	// The action cannot observe task before the lock is released.
	var task *scheduler.Task
	task = m.sched.Schedule("respawn npc", delay, false, func(ctx context.Context) error {
		m.mu.Lock()
		if m.tasks[npcID] == task {
			delete(m.tasks, npcID)
		}
		m.mu.Unlock()
		return respawn(ctx)
	})
	m.tasks[npcID] = task

	slog.Debug("respawn scheduled",
		"npcID", npcID,
		"delay", delay,
		"respawnTime", task.Due().Format(time.RFC3339))
	return task
}

// CancelRespawn cancels scheduled respawn. Returns false when none was pending.
func (m *RespawnTaskManager) CancelRespawn(npcID model.ObjectID) bool {
	m.mu.Lock()
	task, ok := m.tasks[npcID]
	delete(m.tasks, npcID)
	m.mu.Unlock()

	if !ok {
		return false
	}
	task.Cancel()
	slog.Debug("respawn cancelled", "npcID", npcID)
	return true
}

// TaskCount returns number of scheduled respawn tasks
func (m *RespawnTaskManager) TaskCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// GetTask returns respawn task for npc
func (m *RespawnTaskManager) GetTask(npcID model.ObjectID) (*scheduler.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[npcID]
	return task, ok
}
