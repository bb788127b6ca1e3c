// Package reminder runs the daily birthday digest: each user with contacts
// whose birthdays fall in the next few days gets one summary email.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/akravets/contacts-api/internal/domain"
	"github.com/akravets/contacts-api/internal/email"
	"github.com/akravets/contacts-api/internal/metrics"
)

// BirthdaySource is the subset of the contact repository the digest needs.
type BirthdaySource interface {
	UpcomingBirthdays(ctx context.Context, withinDays int) ([]*domain.UpcomingBirthday, error)
}

type Digest struct {
	contacts   BirthdaySource
	email      email.Sender
	logger     *slog.Logger
	schedule   cron.Schedule
	windowDays int
}

func NewDigest(contacts BirthdaySource, emailSender email.Sender, logger *slog.Logger, cronExpr string, windowDays int) (*Digest, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("parse reminder schedule: %w", err)
	}
	return &Digest{
		contacts:   contacts,
		email:      emailSender,
		logger:     logger.With("component", "birthday_digest"),
		schedule:   schedule,
		windowDays: windowDays,
	}, nil
}

// Start blocks until ctx is cancelled, firing one digest run at each
// scheduled time.
func (d *Digest) Start(ctx context.Context) {
	d.logger.Info("birthday digest started", "window_days", d.windowDays)

	for {
		next := d.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			d.logger.Info("birthday digest shut down")
			return
		case <-timer.C:
			d.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single digest cycle. Exposed for one-shot invocation
// and tests; Start calls it on schedule.
func (d *Digest) RunOnce(ctx context.Context) {
	start := time.Now()
	defer func() {
		metrics.ReminderCycleDuration.Observe(time.Since(start).Seconds())
	}()

	rows, err := d.contacts.UpcomingBirthdays(ctx, d.windowDays)
	if err != nil {
		d.logger.Error("load upcoming birthdays", "error", err)
		return
	}
	if len(rows) == 0 {
		return
	}

	// Rows arrive ordered by owner, so group with a single pass.
	byOwner := make(map[string][]*domain.UpcomingBirthday)
	var owners []string
	for _, r := range rows {
		if _, ok := byOwner[r.OwnerEmail]; !ok {
			owners = append(owners, r.OwnerEmail)
		}
		byOwner[r.OwnerEmail] = append(byOwner[r.OwnerEmail], r)
	}

	sent := 0
	for _, owner := range owners {
		entries := byOwner[owner]
		subject, body := BuildDigest(entries[0].OwnerUsername, entries, d.windowDays)
		if err := d.email.Send(ctx, owner, subject, body); err != nil {
			d.logger.Error("send birthday digest", "to", owner, "error", err)
			continue
		}
		metrics.ReminderDigestsTotal.Inc()
		sent++
	}

	d.logger.Info("birthday digest cycle finished", "owners", len(owners), "sent", sent)
}

// BuildDigest renders the subject and HTML body for one owner's digest.
func BuildDigest(username string, entries []*domain.UpcomingBirthday, windowDays int) (subject, body string) {
	subject = fmt.Sprintf("%d upcoming birthday(s) among your contacts", len(entries))

	var b strings.Builder
	fmt.Fprintf(&b, "<p>Hi %s,</p><p>Birthdays in the next %d days:</p><ul>", username, windowDays)
	for _, e := range entries {
		fmt.Fprintf(&b, "<li>%s %s (%s)</li>", e.FirstName, e.LastName, e.DateOfBirth.Format("January 2"))
	}
	b.WriteString("</ul>")
	return subject, b.String()
}
