package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskflow/internal/model"
)

// TaskFilter narrows a task listing. Zero value lists everything ordered by number.
type TaskFilter struct {
	Completed       *bool
	CircularOnly    bool
	MinPriority     *float64
	HasDependencies *bool
	OrderByDueDate  bool
}

// TaskStore is the persistence contract the task service works against.
type TaskStore interface {
	WithUserLock(ctx context.Context, userID uuid.UUID, fn func(store TaskStore) error) error
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, task *model.Task) error
	UpdateDerived(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*model.Task, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]model.Task, error)
	NumberTaken(ctx context.Context, userID uuid.UUID, number int, exclude uuid.UUID) (bool, error)
	ExistingIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)
	ReplaceDependencies(ctx context.Context, taskID uuid.UUID, deps []uuid.UUID) error
	HasDependents(ctx context.Context, id uuid.UUID) (bool, error)
	SetCompleted(ctx context.Context, userID, id uuid.UUID, completed bool) error
}

var _ TaskStore = (*TaskRepository)(nil)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// WithUserLock runs fn in a transaction holding a row lock on the user, so
// writes to one user's task set never interleave.
func (r *TaskRepository) WithUserLock(ctx context.Context, userID uuid.UUID, fn func(store TaskStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&user, "id = ?", userID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		return fn(&TaskRepository{db: tx})
	})
}

// Create adds a new task and its dependency edges
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateNumber
		}
		return err
	}
	return r.ReplaceDependencies(ctx, task.ID, task.DependencyIDs)
}

// Update writes the user-editable fields together with the derived ones
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND user_id = ?", task.ID, task.UserID).
		Updates(map[string]interface{}{
			"number":               task.Number,
			"title":                task.Title,
			"due_date":             task.DueDate,
			"estimated_hours":      task.EstimatedHours,
			"importance":           task.Importance,
			"priority_score":       task.PriorityScore,
			"smart_priority_score": task.SmartPriorityScore,
			"circular_task":        task.CircularTask,
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return ErrDuplicateNumber
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// UpdateDerived writes only the scores and the circular flag
func (r *TaskRepository) UpdateDerived(ctx context.Context, task *model.Task) error {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", task.ID).
		Updates(map[string]interface{}{
			"priority_score":       task.PriorityScore,
			"smart_priority_score": task.SmartPriorityScore,
			"circular_task":        task.CircularTask,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete removes a task owned by the user. Its outgoing edges go with it (ON DELETE CASCADE).
func (r *TaskRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ? AND user_id = ?", id, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// GetByID retrieves a task of the user together with its dependency ids
func (r *TaskRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	tasks := []model.Task{task}
	if err := r.attachDependencies(ctx, tasks); err != nil {
		return nil, err
	}
	return &tasks[0], nil
}

// ListByUser retrieves the user's tasks matching filter, each with its dependency ids
func (r *TaskRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)

	if filter.Completed != nil {
		q = q.Where("completed = ?", *filter.Completed)
	}
	if filter.CircularOnly {
		q = q.Where("circular_task = ?", true)
	}
	if filter.MinPriority != nil {
		q = q.Where("priority_score >= ?", *filter.MinPriority)
	}
	if filter.HasDependencies != nil {
		exists := "EXISTS (SELECT 1 FROM task_dependencies td WHERE td.task_id = tasks.id)"
		if *filter.HasDependencies {
			q = q.Where(exists)
		} else {
			q = q.Where("NOT " + exists)
		}
	}
	if filter.OrderByDueDate {
		q = q.Order("due_date").Order("number")
	} else {
		q = q.Order("number")
	}

	var tasks []model.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}
	if err := r.attachDependencies(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// NumberTaken reports whether another task of the user already uses number
func (r *TaskRepository) NumberTaken(ctx context.Context, userID uuid.UUID, number int, exclude uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("user_id = ? AND number = ? AND id <> ?", userID, number, exclude).
		Count(&count).Error
	return count > 0, err
}

// ExistingIDs returns the subset of ids that are tasks of the user
func (r *TaskRepository) ExistingIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Pluck("id", &found).Error
	return found, err
}

// ReplaceDependencies swaps the outgoing edges of a task
func (r *TaskRepository) ReplaceDependencies(ctx context.Context, taskID uuid.UUID, deps []uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("task_id = ?", taskID).Delete(&model.TaskDependency{}).Error; err != nil {
		return err
	}
	if len(deps) == 0 {
		return nil
	}

	edges := make([]model.TaskDependency, len(deps))
	for i, dep := range deps {
		edges[i] = model.TaskDependency{TaskID: taskID, DependsOnID: dep}
	}
	return db.Create(&edges).Error
}

// HasDependents reports whether any task lists id as a dependency
func (r *TaskRepository) HasDependents(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.TaskDependency{}).
		Where("depends_on_id = ? AND task_id <> ?", id, id).
		Count(&count).Error
	return count > 0, err
}

// SetCompleted stores the completion state of a task
func (r *TaskRepository) SetCompleted(ctx context.Context, userID, id uuid.UUID, completed bool) error {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("completed", completed)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) attachDependencies(ctx context.Context, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].ID
	}

	var edges []model.TaskDependency
	if err := r.db.WithContext(ctx).Where("task_id IN ?", ids).Find(&edges).Error; err != nil {
		return err
	}

	byTask := make(map[uuid.UUID][]uuid.UUID, len(tasks))
	for _, e := range edges {
		byTask[e.TaskID] = append(byTask[e.TaskID], e.DependsOnID)
	}
	for i := range tasks {
		tasks[i].DependencyIDs = byTask[tasks[i].ID]
	}
	return nil
}
