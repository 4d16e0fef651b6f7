package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/smtp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingSender struct {
	mu   sync.Mutex
	got  []Reminder
	err  error
	name string
}

func (s *recordingSender) Channel() string { return s.name }

func (s *recordingSender) Send(_ context.Context, r Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, r)
	return s.err
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

func TestDispatcher_DeliversToAllSenders(t *testing.T) {
	email := &recordingSender{name: "email"}
	sms := &recordingSender{name: "sms", err: errors.New("twilio down")}
	d := NewDispatcher(DispatcherConfig{Workers: 2, QueueSize: 10}, quietLogger(), email, sms)
	d.Start()

	for i := 0; i < 5; i++ {
		assert.True(t, d.Schedule(Reminder{Email: "a@b.c", TaskTitle: "report"}))
	}
	d.Stop()

	assert.Equal(t, 5, email.count())
	assert.Equal(t, 5, sms.count())
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{Workers: 1, QueueSize: 1}, quietLogger())

	// Not started, so nothing drains the queue.
	assert.True(t, d.Schedule(Reminder{TaskTitle: "first"}))
	assert.False(t, d.Schedule(Reminder{TaskTitle: "second"}))
}

func TestDispatcher_RejectsAfterStop(t *testing.T) {
	d := NewDispatcher(DefaultDispatcherConfig(), quietLogger())
	d.Start()
	d.Stop()
	d.Stop()

	assert.False(t, d.Schedule(Reminder{TaskTitle: "late"}))
}

func TestEmailSender_Send(t *testing.T) {
	s := NewEmailSender("smtp.example.com", "587", "bot", "secret", "bot@example.com")
	var gotAddr string
	var gotTo []string
	var gotMsg string
	s.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	err := s.Send(context.Background(), Reminder{Email: "user@example.com", TaskTitle: "Pay rent"})

	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"user@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Task Due Reminder")
	assert.Contains(t, gotMsg, `Your task "Pay rent" is due tomorrow.`)
}

func TestEmailSender_NoAddress(t *testing.T) {
	s := NewEmailSender("smtp.example.com", "587", "bot", "secret", "bot@example.com")

	err := s.Send(context.Background(), Reminder{TaskTitle: "Pay rent"})

	assert.ErrorIs(t, err, ErrNoRecipient)
}

type fakeMessages struct {
	params *twilioApi.CreateMessageParams
	err    error
}

func (f *fakeMessages) CreateMessage(p *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = p
	return &twilioApi.ApiV2010Message{}, f.err
}

func TestSMSSender_Send(t *testing.T) {
	api := &fakeMessages{}
	s := &SMSSender{api: api, from: "+15550001111", countryCode: "+91"}

	err := s.Send(context.Background(), Reminder{Phone: "9876543210", TaskTitle: "Gym"})

	require.NoError(t, err)
	require.NotNil(t, api.params)
	assert.Equal(t, "+919876543210", *api.params.To)
	assert.Equal(t, "+15550001111", *api.params.From)
	assert.Contains(t, *api.params.Body, `"Gym" is due tomorrow`)
}

func TestSMSSender_NoPhone(t *testing.T) {
	s := &SMSSender{api: &fakeMessages{}, countryCode: "+91"}

	err := s.Send(context.Background(), Reminder{TaskTitle: "Gym"})

	assert.ErrorIs(t, err, ErrNoRecipient)
}

func TestSMSSender_CanceledContext(t *testing.T) {
	api := &fakeMessages{}
	s := &SMSSender{api: api, countryCode: "+91"}
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	err := s.Send(ctx, Reminder{Phone: "1", TaskTitle: "Gym"})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, api.params)
}
