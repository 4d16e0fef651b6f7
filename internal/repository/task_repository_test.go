package repository_test

import (
	"context"
	"testing"
	"time"

	"taskflow/internal/model"
	"taskflow/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var taskColumns = []string{
	"id", "user_id", "number", "title", "due_date", "estimated_hours", "importance",
	"priority_score", "smart_priority_score", "completed", "circular_task", "created_at", "updated_at",
}

func addTaskRow(rows *sqlmock.Rows, id, userID uuid.UUID, number int) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id.String(), userID.String(), number, "Write report", now, 2, 7, 3.5, 0.8, false, false, now, now)
}

func TestTaskRepository_GetByID_WithDependencies(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	userID, taskID := uuid.New(), uuid.New()
	depA, depB := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE id = .* AND user_id = .*`).
		WillReturnRows(addTaskRow(sqlmock.NewRows(taskColumns), taskID, userID, 3))
	mock.ExpectQuery(`SELECT \* FROM "task_dependencies" WHERE task_id IN`).
		WillReturnRows(sqlmock.NewRows([]string{"task_id", "depends_on_id"}).
			AddRow(taskID.String(), depA.String()).
			AddRow(taskID.String(), depB.String()))

	// Act
	task, err := repo.GetByID(context.Background(), userID, taskID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, taskID, task.ID)
	assert.Equal(t, 3, task.Number)
	assert.Equal(t, []uuid.UUID{depA, depB}, task.DependencyIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_GetByID_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "tasks"`).
		WillReturnError(gorm.ErrRecordNotFound)

	// Act
	task, err := repo.GetByID(context.Background(), uuid.New(), uuid.New())

	// Assert
	assert.Nil(t, task)
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ListByUser_CompletedFilter(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	userID := uuid.New()
	first, second := uuid.New(), uuid.New()
	completed := true

	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE user_id = .* AND completed = .* ORDER BY number`).
		WillReturnRows(addTaskRow(addTaskRow(sqlmock.NewRows(taskColumns), first, userID, 1), second, userID, 2))
	mock.ExpectQuery(`SELECT \* FROM "task_dependencies" WHERE task_id IN`).
		WillReturnRows(sqlmock.NewRows([]string{"task_id", "depends_on_id"}).
			AddRow(second.String(), first.String()))

	// Act
	tasks, err := repo.ListByUser(context.Background(), userID, repository.TaskFilter{Completed: &completed})

	// Assert
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Empty(t, tasks[0].DependencyIDs)
	assert.Equal(t, []uuid.UUID{first}, tasks[1].DependencyIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ListByUser_WithoutDependenciesByDate(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	hasDeps := false

	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE user_id = .* AND .*NOT EXISTS .* ORDER BY due_date,number`).
		WillReturnRows(sqlmock.NewRows(taskColumns))

	// Act
	tasks, err := repo.ListByUser(context.Background(), uuid.New(), repository.TaskFilter{
		HasDependencies: &hasDeps,
		OrderByDueDate:  true,
	})

	// Assert
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Create_DuplicateNumber(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	task := &model.Task{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		Number:         1,
		Title:          "Duplicate",
		DueDate:        time.Now(),
		EstimatedHours: 1,
		Importance:     1,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "tasks"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_tasks_user_number"})
	mock.ExpectRollback()

	// Act
	err := repo.Create(context.Background(), task)

	// Assert
	assert.ErrorIs(t, err, repository.ErrDuplicateNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Delete_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "tasks" WHERE id = .* AND user_id = .*`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	// Act
	err := repo.Delete(context.Background(), uuid.New(), uuid.New())

	// Assert
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_HasDependents(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "task_dependencies" WHERE depends_on_id = .*`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	// Act
	has, err := repo.HasDependents(context.Background(), uuid.New())

	// Assert
	require.NoError(t, err)
	assert.True(t, has)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ExistingIDs_EmptyInputSkipsQuery(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	// Act
	found, err := repo.ExistingIDs(context.Background(), uuid.New(), nil)

	// Assert
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_WithUserLock_UnknownUser(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)
	called := false

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .*id.* FROM "users" WHERE id = .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	// Act
	err := repo.WithUserLock(context.Background(), uuid.New(), func(repository.TaskStore) error {
		called = true
		return nil
	})

	// Assert
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ReplaceDependencies(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	taskID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "task_dependencies" WHERE task_id = .*`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "task_dependencies"`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	// Act
	err := repo.ReplaceDependencies(context.Background(), taskID, []uuid.UUID{uuid.New(), uuid.New()})

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
