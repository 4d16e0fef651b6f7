// Package service coordinates task persistence with the dependency graph
// and scoring engines.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"taskflow/internal/graph"
	"taskflow/internal/model"
	"taskflow/internal/notify"
	"taskflow/internal/repository"
	"taskflow/internal/scoring"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// TaskInput carries the user-editable fields of a task.
type TaskInput struct {
	Number         int         `validate:"gt=0"`
	Title          string      `validate:"required,max=255"`
	DueDate        time.Time   `validate:"required"`
	EstimatedHours int         `validate:"gt=0"`
	Importance     int         `validate:"min=1,max=10"`
	Dependencies   []uuid.UUID `validate:"dive,required"`
}

// GraphView is a user's dependency graph with a dependency-first order.
// Order is nil when the graph contains a cycle.
type GraphView struct {
	Tasks []model.Task
	Order []uuid.UUID
}

// UserLookup resolves the owner of a task for reminders.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// ReminderScheduler queues a best-effort reminder.
type ReminderScheduler interface {
	Schedule(r notify.Reminder) bool
}

type TaskService struct {
	store     repository.TaskStore
	users     UserLookup
	reminders ReminderScheduler
	logger    *slog.Logger
	now       func() time.Time
}

func NewTaskService(store repository.TaskStore, users UserLookup, reminders ReminderScheduler, logger *slog.Logger) *TaskService {
	return &TaskService{
		store:     store,
		users:     users,
		reminders: reminders,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the source of "today".
func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	s.now = now
	return s
}

// Create stores a new task with its dependencies, flags it if it closes a
// cycle and computes both scores.
func (s *TaskService) Create(ctx context.Context, userID uuid.UUID, in TaskInput) (*model.Task, error) {
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}
	today := s.now()

	task := &model.Task{
		ID:            uuid.New(),
		UserID:        userID,
		DependencyIDs: in.Dependencies,
	}
	apply(task, in)

	err = s.store.WithUserLock(ctx, userID, func(store repository.TaskStore) error {
		taken, err := store.NumberTaken(ctx, userID, in.Number, uuid.Nil)
		if err != nil {
			return fmt.Errorf("check task number: %w", err)
		}
		if taken {
			return ErrDuplicateNumber
		}
		if err := checkDependencies(ctx, store, userID, in.Dependencies); err != nil {
			return err
		}

		if len(task.DependencyIDs) > 0 {
			snapshot, err := store.ListByUser(ctx, userID, repository.TaskFilter{})
			if err != nil {
				return fmt.Errorf("load tasks: %w", err)
			}
			nodes := append(toNodes(snapshot), toNode(*task))
			circular, err := graph.IsCircular(toNode(*task), graph.MapLookup(nodes))
			if err != nil {
				return fmt.Errorf("detect cycle: %w", err)
			}
			task.CircularTask = circular
		}

		if err := score(task, today); err != nil {
			return err
		}
		return store.Create(ctx, task)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("task created",
		"user_id", userID,
		"task_id", task.ID,
		"number", task.Number,
		"circular", task.CircularTask)
	s.remindIfDueTomorrow(ctx, task, today)
	return task, nil
}

// Update replaces the editable fields and dependency set of a task. The
// task's scores and every circular flag of the user are recomputed.
func (s *TaskService) Update(ctx context.Context, userID, taskID uuid.UUID, in TaskInput) (*model.Task, error) {
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}
	today := s.now()

	var updated *model.Task
	err = s.store.WithUserLock(ctx, userID, func(store repository.TaskStore) error {
		task, err := store.GetByID(ctx, userID, taskID)
		if err != nil {
			return err
		}
		taken, err := store.NumberTaken(ctx, userID, in.Number, taskID)
		if err != nil {
			return fmt.Errorf("check task number: %w", err)
		}
		if taken {
			return ErrDuplicateNumber
		}
		if err := checkDependencies(ctx, store, userID, in.Dependencies); err != nil {
			return err
		}

		apply(task, in)
		if err := score(task, today); err != nil {
			return err
		}
		if err := store.Update(ctx, task); err != nil {
			return err
		}
		if err := store.ReplaceDependencies(ctx, task.ID, in.Dependencies); err != nil {
			return fmt.Errorf("replace dependencies: %w", err)
		}

		tasks, err := refreshFlags(ctx, store, userID, nil)
		if err != nil {
			return err
		}
		for i := range tasks {
			if tasks[i].ID == task.ID {
				updated = &tasks[i]
			}
		}
		if updated == nil {
			return ErrTaskNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("task updated",
		"user_id", userID,
		"task_id", updated.ID,
		"circular", updated.CircularTask)
	s.remindIfDueTomorrow(ctx, updated, today)
	return updated, nil
}

// Delete removes a task nothing depends on.
func (s *TaskService) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	err := s.store.WithUserLock(ctx, userID, func(store repository.TaskStore) error {
		if _, err := store.GetByID(ctx, userID, taskID); err != nil {
			return err
		}
		hasDependents, err := store.HasDependents(ctx, taskID)
		if err != nil {
			return fmt.Errorf("check dependents: %w", err)
		}
		if hasDependents {
			return ErrHasDependents
		}
		return store.Delete(ctx, userID, taskID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("task deleted", "user_id", userID, "task_id", taskID)
	return nil
}

// ToggleCompleted flips the completion state and returns the new value.
func (s *TaskService) ToggleCompleted(ctx context.Context, userID, taskID uuid.UUID) (bool, error) {
	var completed bool
	err := s.store.WithUserLock(ctx, userID, func(store repository.TaskStore) error {
		task, err := store.GetByID(ctx, userID, taskID)
		if err != nil {
			return err
		}
		completed = !task.Completed
		return store.SetCompleted(ctx, userID, taskID, completed)
	})
	return completed, err
}

func (s *TaskService) Get(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error) {
	return s.store.GetByID(ctx, userID, taskID)
}

func (s *TaskService) List(ctx context.Context, userID uuid.UUID, filter repository.TaskFilter) ([]model.Task, error) {
	return s.store.ListByUser(ctx, userID, filter)
}

// Recompute refreshes every score against today and every circular flag.
func (s *TaskService) Recompute(ctx context.Context, userID uuid.UUID) ([]model.Task, error) {
	today := s.now()

	var tasks []model.Task
	err := s.store.WithUserLock(ctx, userID, func(store repository.TaskStore) error {
		var err error
		tasks, err = refreshFlags(ctx, store, userID, func(t *model.Task) error {
			return score(t, today)
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tasks recomputed", "user_id", userID, "count", len(tasks))
	return tasks, nil
}

// Graph returns the user's tasks with a dependency-first execution order.
func (s *TaskService) Graph(ctx context.Context, userID uuid.UUID) (*GraphView, error) {
	tasks, err := s.store.ListByUser(ctx, userID, repository.TaskFilter{})
	if err != nil {
		return nil, err
	}

	order, err := graph.ExecutionOrder(toNodes(tasks))
	if err != nil {
		if !errors.Is(err, graph.ErrCycle) {
			return nil, fmt.Errorf("order tasks: %w", err)
		}
		order = nil
	}
	return &GraphView{Tasks: tasks, Order: order}, nil
}

// refreshFlags reloads the user's tasks, recomputes circular flags and
// persists the tasks whose derived state changed. recalc, when set, may
// update other derived fields first.
func refreshFlags(ctx context.Context, store repository.TaskStore, userID uuid.UUID, recalc func(*model.Task) error) ([]model.Task, error) {
	tasks, err := store.ListByUser(ctx, userID, repository.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}

	flags, err := graph.Flags(toNodes(tasks))
	if err != nil {
		return nil, fmt.Errorf("detect cycles: %w", err)
	}

	for i := range tasks {
		t := &tasks[i]
		before := *t
		if recalc != nil {
			if err := recalc(t); err != nil {
				return nil, err
			}
		}
		t.CircularTask = flags[t.ID]

		if t.CircularTask != before.CircularTask ||
			t.PriorityScore != before.PriorityScore ||
			t.SmartPriorityScore != before.SmartPriorityScore {
			if err := store.UpdateDerived(ctx, t); err != nil {
				return nil, fmt.Errorf("store derived state of %s: %w", t.ID, err)
			}
		}
	}
	return tasks, nil
}

func (s *TaskService) remindIfDueTomorrow(ctx context.Context, task *model.Task, today time.Time) {
	if s.reminders == nil || scoring.CalendarDays(task.DueDate, today) != 1 {
		return
	}

	user, err := s.users.GetByID(ctx, task.UserID)
	if err != nil || user == nil {
		s.logger.Warn("reminder skipped, owner not loaded",
			"task_id", task.ID,
			"error", err)
		return
	}

	r := notify.Reminder{
		Email:     user.Email,
		Name:      user.Name,
		TaskTitle: task.Title,
		DueDate:   task.DueDate,
	}
	if user.Phone != nil {
		r.Phone = *user.Phone
	}
	s.reminders.Schedule(r)
}

func normalize(in TaskInput) (TaskInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validate.Struct(in); err != nil {
		return in, fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}
	in.Dependencies = dedupe(in.Dependencies)
	return in, nil
}

func checkDependencies(ctx context.Context, store repository.TaskStore, userID uuid.UUID, deps []uuid.UUID) error {
	if len(deps) == 0 {
		return nil
	}
	found, err := store.ExistingIDs(ctx, userID, deps)
	if err != nil {
		return fmt.Errorf("resolve dependencies: %w", err)
	}

	known := make(map[uuid.UUID]struct{}, len(found))
	for _, id := range found {
		known[id] = struct{}{}
	}
	for _, id := range deps {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("%w: %s", ErrDependencyNotFound, id)
		}
	}
	return nil
}

func apply(task *model.Task, in TaskInput) {
	task.Number = in.Number
	task.Title = in.Title
	task.DueDate = in.DueDate
	task.EstimatedHours = in.EstimatedHours
	task.Importance = in.Importance
	task.DependencyIDs = in.Dependencies
}

func score(task *model.Task, today time.Time) error {
	scores, err := scoring.Compute(task.Importance, task.EstimatedHours, task.DueDate, today)
	if err != nil {
		return fmt.Errorf("score task %d: %w", task.Number, err)
	}
	task.PriorityScore = scores.Basic
	task.SmartPriorityScore = scores.Smart
	return nil
}

func toNode(t model.Task) graph.Node {
	return graph.Node{ID: t.ID, Dependencies: t.DependencyIDs}
}

func toNodes(tasks []model.Task) []graph.Node {
	nodes := make([]graph.Node, len(tasks))
	for i, t := range tasks {
		nodes[i] = toNode(t)
	}
	return nodes
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
