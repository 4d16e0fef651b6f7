// Package notify delivers best-effort "due tomorrow" reminders by email and SMS.
//
// Delivery is fire-and-forget: reminders are queued on a bounded worker
// pool, failures are logged and never reported back to the request that
// scheduled them.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNoRecipient is returned by a sender when the reminder has no address for its channel.
var ErrNoRecipient = errors.New("no recipient for channel")

const subject = "Task Due Reminder"

// Reminder is everything a sender needs to tell a user about a task.
type Reminder struct {
	Email     string
	Phone     string
	Name      string
	TaskTitle string
	DueDate   time.Time
}

// Sender delivers a reminder over one channel.
type Sender interface {
	Channel() string
	Send(ctx context.Context, r Reminder) error
}

func message(r Reminder) string {
	return fmt.Sprintf("Your task %q is due tomorrow.", r.TaskTitle)
}
