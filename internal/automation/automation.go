// Package automation holds the batch and event-driven notification
// workflows: the overdue invoice sweep, admin-defined reminder rules and
// the domain-event fan-outs (project milestones, ticket activity,
// successful payments).
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Knetic/govaluate"
	"github.com/AGhilHz/rabik-crm/models"
)

// Notifier delivers a notification to one user's feed.
type Notifier interface {
	Notify(userID, title, message, typ string) error
}

// Service runs the sweep and the event notifications.
type Service struct {
	store    Store
	notifier Notifier
}

func NewService(store Store, notifier Notifier) *Service {
	return &Service{store: store, notifier: notifier}
}

// CheckOverdueInvoices scans unpaid invoices past their due date, flips
// each to overdue and notifies the invoice's customer once per actual
// flip. The returned count is the number of invoices transitioned by
// this run; invoices another run got to first are skipped, so
// overlapping sweeps never double-notify. Failures on one invoice are
// logged and do not stop the rest of the batch.
func (s *Service) CheckOverdueInvoices(ctx context.Context) (int, error) {
	candidates, err := s.store.OverdueCandidates(time.Now())
	if err != nil {
		return 0, err
	}

	rules, err := s.store.ActiveRules()
	if err != nil {
		slog.Warn("could not load reminder rules, sweep continues without them", "error", err)
		rules = nil
	}

	count := 0
	for _, inv := range candidates {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		flipped, err := s.store.MarkOverdue(inv.ID)
		if err != nil {
			slog.Error("failed to mark invoice overdue", "invoice", inv.InvoiceNumber, "error", err)
			continue
		}
		if !flipped {
			continue
		}
		count++

		if inv.CustomerUserID != "" {
			if err := s.notifier.Notify(inv.CustomerUserID,
				"فاکتور سررسید گذشته",
				fmt.Sprintf("فاکتور #%s سررسید گذشته است", inv.InvoiceNumber),
				models.NotificationWarning,
			); err != nil {
				slog.Error("overdue notification failed", "invoice", inv.InvoiceNumber, "error", err)
			}
			s.applyRules(rules, inv)
		}
	}

	slog.Info("overdue sweep finished", "candidates", len(candidates), "transitioned", count)
	return count, nil
}

// applyRules evaluates each active reminder rule against one freshly
// overdue invoice and emits the rule's notification on a match. A broken
// expression disables that rule for the run, not the sweep.
func (s *Service) applyRules(rules []models.AutomationRule, inv OverdueCandidate) {
	if len(rules) == 0 {
		return
	}
	params := map[string]any{
		"total":        float64(inv.Total),
		"discount":     float64(inv.Discount),
		"days_overdue": time.Since(inv.DueDate).Hours() / 24,
		"status":       models.InvoiceStatusOverdue,
	}
	for _, rule := range rules {
		expr, err := govaluate.NewEvaluableExpression(rule.Condition)
		if err != nil {
			slog.Warn("invalid rule condition", "rule", rule.Name, "error", err)
			continue
		}
		result, err := expr.Evaluate(params)
		if err != nil {
			slog.Warn("rule evaluation failed", "rule", rule.Name, "error", err)
			continue
		}
		matched, ok := result.(bool)
		if !ok || !matched {
			continue
		}
		message := strings.ReplaceAll(rule.Message, "{invoice_number}", inv.InvoiceNumber)
		if err := s.notifier.Notify(inv.CustomerUserID, rule.Title, message, rule.Type); err != nil {
			slog.Error("rule notification failed", "rule", rule.Name, "invoice", inv.InvoiceNumber, "error", err)
		}
	}
}

// NotifyProjectMilestone tells the project's customer when progress
// crosses the halfway mark or completes.
func (s *Service) NotifyProjectMilestone(projectID string) error {
	project, err := s.store.ProjectWithUser(projectID)
	if err != nil {
		return err
	}
	if project.Customer.UserID == nil {
		return nil
	}
	userID := *project.Customer.UserID

	switch {
	case project.Progress >= 100:
		return s.notifier.Notify(userID,
			"پروژه تکمیل شد",
			fmt.Sprintf("پروژه %s با موفقیت تکمیل شد", project.Title),
			models.NotificationSuccess)
	case project.Progress == 50:
		return s.notifier.Notify(userID,
			"پیشرفت پروژه",
			fmt.Sprintf("پروژه %s به 50%% رسید", project.Title),
			models.NotificationInfo)
	}
	return nil
}

// NotifyNewTicket fans a new-ticket notification out to every admin.
func (s *Service) NotifyNewTicket(ticketID string) error {
	ticket, err := s.store.TicketWithCustomer(ticketID)
	if err != nil {
		return err
	}
	admins, err := s.store.AdminUserIDs()
	if err != nil {
		return err
	}
	message := fmt.Sprintf("تیکت جدید از %s: %s", ticket.Customer.FullName, ticket.Subject)
	for _, adminID := range admins {
		if err := s.notifier.Notify(adminID, "تیکت جدید", message, models.NotificationInfo); err != nil {
			slog.Error("admin ticket notification failed", "ticket", ticket.TicketNumber, "error", err)
		}
	}
	return nil
}

// NotifyTicketResponse tells a customer an admin replied to their ticket.
func (s *Service) NotifyTicketResponse(customerID string) error {
	userID, err := s.store.CustomerUserID(customerID)
	if err != nil || userID == "" {
		return err
	}
	return s.notifier.Notify(userID,
		"پاسخ جدید",
		"پاسخ جدیدی به تیکت شما ارسال شد",
		models.NotificationInfo)
}
