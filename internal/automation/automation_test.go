package automation

import (
	"context"
	"testing"
	"time"

	"github.com/AGhilHz/rabik-crm/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) OverdueCandidates(now time.Time) ([]OverdueCandidate, error) {
	args := m.Called(now)
	return args.Get(0).([]OverdueCandidate), args.Error(1)
}

func (m *mockStore) MarkOverdue(invoiceID string) (bool, error) {
	args := m.Called(invoiceID)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) ActiveRules() ([]models.AutomationRule, error) {
	args := m.Called()
	return args.Get(0).([]models.AutomationRule), args.Error(1)
}

func (m *mockStore) ProjectWithUser(projectID string) (*models.Project, error) {
	args := m.Called(projectID)
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *mockStore) TicketWithCustomer(ticketID string) (*models.SupportTicket, error) {
	args := m.Called(ticketID)
	return args.Get(0).(*models.SupportTicket), args.Error(1)
}

func (m *mockStore) CustomerUserID(customerID string) (string, error) {
	args := m.Called(customerID)
	return args.String(0), args.Error(1)
}

func (m *mockStore) AdminUserIDs() ([]string, error) {
	args := m.Called()
	return args.Get(0).([]string), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(userID, title, message, typ string) error {
	args := m.Called(userID, title, message, typ)
	return args.Error(0)
}

func overdueCandidate(id, number, userID string) OverdueCandidate {
	return OverdueCandidate{
		ID:             id,
		InvoiceNumber:  number,
		CustomerUserID: userID,
		Total:          1_000_000,
		DueDate:        time.Now().AddDate(0, 0, -3),
		Status:         models.InvoiceStatusUnpaid,
	}
}

func TestCheckOverdueInvoices_NotifiesOncePerFlip(t *testing.T) {
	store := new(mockStore)
	notifier := new(mockNotifier)

	candidates := []OverdueCandidate{
		overdueCandidate("inv-1", "INV-202509-0001", "user-1"),
		overdueCandidate("inv-2", "INV-202509-0002", "user-2"),
	}
	store.On("OverdueCandidates", mock.Anything).Return(candidates, nil)
	store.On("ActiveRules").Return([]models.AutomationRule{}, nil)
	store.On("MarkOverdue", "inv-1").Return(true, nil)
	store.On("MarkOverdue", "inv-2").Return(true, nil)
	notifier.On("Notify", "user-1", "فاکتور سررسید گذشته", "فاکتور #INV-202509-0001 سررسید گذشته است", models.NotificationWarning).Return(nil)
	notifier.On("Notify", "user-2", "فاکتور سررسید گذشته", "فاکتور #INV-202509-0002 سررسید گذشته است", models.NotificationWarning).Return(nil)

	svc := NewService(store, notifier)
	count, err := svc.CheckOverdueInvoices(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	notifier.AssertNumberOfCalls(t, "Notify", 2)
}

func TestCheckOverdueInvoices_SkipsInvoicesAnotherRunFlipped(t *testing.T) {
	store := new(mockStore)
	notifier := new(mockNotifier)

	candidates := []OverdueCandidate{
		overdueCandidate("inv-1", "INV-202509-0001", "user-1"),
	}
	store.On("OverdueCandidates", mock.Anything).Return(candidates, nil)
	store.On("ActiveRules").Return([]models.AutomationRule{}, nil)
	// A concurrent sweep already flipped this invoice.
	store.On("MarkOverdue", "inv-1").Return(false, nil)

	svc := NewService(store, notifier)
	count, err := svc.CheckOverdueInvoices(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 0, count)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckOverdueInvoices_CandidateWithoutAccountStillCounts(t *testing.T) {
	store := new(mockStore)
	notifier := new(mockNotifier)

	candidates := []OverdueCandidate{
		overdueCandidate("inv-1", "INV-202509-0001", ""),
	}
	store.On("OverdueCandidates", mock.Anything).Return(candidates, nil)
	store.On("ActiveRules").Return([]models.AutomationRule{}, nil)
	store.On("MarkOverdue", "inv-1").Return(true, nil)

	svc := NewService(store, notifier)
	count, err := svc.CheckOverdueInvoices(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, count)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckOverdueInvoices_AppliesMatchingRules(t *testing.T) {
	store := new(mockStore)
	notifier := new(mockNotifier)

	candidate := overdueCandidate("inv-1", "INV-202509-0001", "user-1")
	candidate.Total = 20_000_000

	rules := []models.AutomationRule{
		{
			Name:      "large overdue invoice",
			Condition: "total > 10000000",
			Title:     "فاکتور کلان معوق",
			Message:   "فاکتور {invoice_number} مبلغ بالایی دارد",
			Type:      models.NotificationWarning,
		},
		{
			Name:      "long overdue",
			Condition: "days_overdue >= 30",
			Title:     "باید مطالبه شود",
			Message:   "پیگیری فاکتور {invoice_number}",
			Type:      models.NotificationError,
		},
	}

	store.On("OverdueCandidates", mock.Anything).Return([]OverdueCandidate{candidate}, nil)
	store.On("ActiveRules").Return(rules, nil)
	store.On("MarkOverdue", "inv-1").Return(true, nil)
	notifier.On("Notify", "user-1", "فاکتور سررسید گذشته", mock.Anything, models.NotificationWarning).Return(nil)
	notifier.On("Notify", "user-1", "فاکتور کلان معوق", "فاکتور INV-202509-0001 مبلغ بالایی دارد", models.NotificationWarning).Return(nil)

	svc := NewService(store, notifier)
	count, err := svc.CheckOverdueInvoices(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, count)
	// The 30-day rule must not fire for a 3-day-old invoice.
	notifier.AssertNumberOfCalls(t, "Notify", 2)
}

func TestCheckOverdueInvoices_BrokenRuleDoesNotStopSweep(t *testing.T) {
	store := new(mockStore)
	notifier := new(mockNotifier)

	rules := []models.AutomationRule{
		{Name: "broken", Condition: "total >>>", Title: "x", Message: "y"},
	}
	store.On("OverdueCandidates", mock.Anything).Return([]OverdueCandidate{
		overdueCandidate("inv-1", "INV-202509-0001", "user-1"),
	}, nil)
	store.On("ActiveRules").Return(rules, nil)
	store.On("MarkOverdue", "inv-1").Return(true, nil)
	notifier.On("Notify", "user-1", "فاکتور سررسید گذشته", mock.Anything, models.NotificationWarning).Return(nil)

	svc := NewService(store, notifier)
	count, err := svc.CheckOverdueInvoices(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, count)
	notifier.AssertNumberOfCalls(t, "Notify", 1)
}

func projectWithProgress(progress int, userID string) *models.Project {
	uid := userID
	p := &models.Project{
		Title:    "طراحی سایت فروشگاهی",
		Progress: progress,
	}
	if userID != "" {
		p.Customer = models.Customer{UserID: &uid}
	}
	return p
}

func TestNotifyProjectMilestone(t *testing.T) {
	t.Run("completion", func(t *testing.T) {
		store := new(mockStore)
		notifier := new(mockNotifier)
		store.On("ProjectWithUser", "p-1").Return(projectWithProgress(100, "user-1"), nil)
		notifier.On("Notify", "user-1", "پروژه تکمیل شد", mock.Anything, models.NotificationSuccess).Return(nil)

		svc := NewService(store, notifier)
		assert.NoError(t, svc.NotifyProjectMilestone("p-1"))
		notifier.AssertExpectations(t)
	})

	t.Run("halfway", func(t *testing.T) {
		store := new(mockStore)
		notifier := new(mockNotifier)
		store.On("ProjectWithUser", "p-1").Return(projectWithProgress(50, "user-1"), nil)
		notifier.On("Notify", "user-1", "پیشرفت پروژه", mock.Anything, models.NotificationInfo).Return(nil)

		svc := NewService(store, notifier)
		assert.NoError(t, svc.NotifyProjectMilestone("p-1"))
		notifier.AssertExpectations(t)
	})

	t.Run("no milestone between marks", func(t *testing.T) {
		store := new(mockStore)
		notifier := new(mockNotifier)
		store.On("ProjectWithUser", "p-1").Return(projectWithProgress(70, "user-1"), nil)

		svc := NewService(store, notifier)
		assert.NoError(t, svc.NotifyProjectMilestone("p-1"))
		notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("customer without account", func(t *testing.T) {
		store := new(mockStore)
		notifier := new(mockNotifier)
		store.On("ProjectWithUser", "p-1").Return(projectWithProgress(100, ""), nil)

		svc := NewService(store, notifier)
		assert.NoError(t, svc.NotifyProjectMilestone("p-1"))
		notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestNotifyNewTicket_FansOutToAdmins(t *testing.T) {
	store := new(mockStore)
	notifier := new(mockNotifier)

	ticket := &models.SupportTicket{
		TicketNumber: "TKT-202509-0001",
		Subject:      "مشکل در ورود",
		Customer:     models.Customer{FullName: "علی رضایی"},
	}
	store.On("TicketWithCustomer", "t-1").Return(ticket, nil)
	store.On("AdminUserIDs").Return([]string{"admin-1", "admin-2"}, nil)
	notifier.On("Notify", "admin-1", "تیکت جدید", "تیکت جدید از علی رضایی: مشکل در ورود", models.NotificationInfo).Return(nil)
	notifier.On("Notify", "admin-2", "تیکت جدید", "تیکت جدید از علی رضایی: مشکل در ورود", models.NotificationInfo).Return(nil)

	svc := NewService(store, notifier)
	assert.NoError(t, svc.NotifyNewTicket("t-1"))
	notifier.AssertNumberOfCalls(t, "Notify", 2)
}

func TestNotifyTicketResponse(t *testing.T) {
	t.Run("customer with account", func(t *testing.T) {
		store := new(mockStore)
		notifier := new(mockNotifier)
		store.On("CustomerUserID", "c-1").Return("user-9", nil)
		notifier.On("Notify", "user-9", "پاسخ جدید", mock.Anything, models.NotificationInfo).Return(nil)

		svc := NewService(store, notifier)
		assert.NoError(t, svc.NotifyTicketResponse("c-1"))
		notifier.AssertExpectations(t)
	})

	t.Run("customer without account", func(t *testing.T) {
		store := new(mockStore)
		notifier := new(mockNotifier)
		store.On("CustomerUserID", "c-1").Return("", nil)

		svc := NewService(store, notifier)
		assert.NoError(t, svc.NotifyTicketResponse("c-1"))
		notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
