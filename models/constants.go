package models

// Enum values stored in status/priority/type columns. Values match the
// ones persisted by the original store, so existing rows stay readable.

const (
	CustomerStatusActive   = "active"
	CustomerStatusInactive = "inactive"
	CustomerStatusBlocked  = "blocked"
)

const (
	ProjectStatusDraft      = "draft"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusReview     = "review"
	ProjectStatusCompleted  = "completed"
	ProjectStatusCancelled  = "cancelled"
	ProjectStatusOnHold     = "on_hold"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusUnpaid    = "unpaid"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusOverdue   = "overdue"
	InvoiceStatusCancelled = "cancelled"
)

const (
	PaymentMethodOnline       = "online"
	PaymentMethodCash         = "cash"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCheque       = "cheque"
	PaymentMethodCard         = "card"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusSuccess  = "success"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

const (
	TicketStatusOpen            = "open"
	TicketStatusInProgress      = "in_progress"
	TicketStatusWaitingCustomer = "waiting_customer"
	TicketStatusResolved        = "resolved"
	TicketStatusClosed          = "closed"
)

const (
	SenderAdmin    = "admin"
	SenderCustomer = "customer"
)

const (
	NotificationInfo    = "info"
	NotificationSuccess = "success"
	NotificationWarning = "warning"
	NotificationError   = "error"
)

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// InvoiceStatusLabels maps invoice statuses to their Persian display
// labels, used on printable invoices and exports.
var InvoiceStatusLabels = map[string]string{
	InvoiceStatusDraft:     "پیش‌نویس",
	InvoiceStatusUnpaid:    "پرداخت نشده",
	InvoiceStatusPaid:      "پرداخت شده",
	InvoiceStatusOverdue:   "سررسید گذشته",
	InvoiceStatusCancelled: "لغو شده",
}

// PaymentMethodLabels maps payment methods to Persian display labels.
var PaymentMethodLabels = map[string]string{
	PaymentMethodOnline:       "پرداخت آنلاین",
	PaymentMethodCash:         "نقدی",
	PaymentMethodBankTransfer: "انتقال بانکی",
	PaymentMethodCheque:       "چک",
	PaymentMethodCard:         "کارت به کارت",
}
