package service

import (
	"errors"

	"taskflow/internal/repository"
)

var (
	// ErrInvalidTask is returned when task input fails validation.
	ErrInvalidTask = errors.New("invalid task")

	// ErrDependencyNotFound is returned when a dependency id is not a task of the user.
	ErrDependencyNotFound = errors.New("dependency does not exist")

	// ErrHasDependents is returned when deleting a task other tasks depend on.
	ErrHasDependents = errors.New("other tasks depend on this task")

	// ErrDuplicateNumber is returned when the task number is already used by the user.
	ErrDuplicateNumber = repository.ErrDuplicateNumber

	// ErrTaskNotFound is returned when the task does not exist for the user.
	ErrTaskNotFound = repository.ErrTaskNotFound
)
