package domain

// Event is an invoice lifecycle trigger.
type Event string

const (
	// EventSend moves a draft onto the wire.
	EventSend Event = "send"
	// EventSettle fires when completed payments cover the total.
	EventSettle Event = "settle"
	// EventRefundReversal fires when a refund drops the settled total
	// back below the invoice total.
	EventRefundReversal Event = "refund_reversal"
	// EventCancel is the manual cancellation.
	EventCancel Event = "cancel"
	// EventMarkOverdue is applied by the reconciliation worker once the
	// due date passes without full settlement.
	EventMarkOverdue Event = "mark_overdue"
)

// Transition is the exhaustive status transition table. It is pure:
// guards that depend on data outside the status (completed payments,
// settled totals, the clock) belong to the caller.
func Transition(current InvoiceStatus, event Event) (InvoiceStatus, error) {
	switch event {
	case EventSend:
		if current == InvoiceStatusDraft {
			return InvoiceStatusSent, nil
		}
	case EventSettle:
		if current == InvoiceStatusSent || current == InvoiceStatusOverdue {
			return InvoiceStatusPaid, nil
		}
	case EventRefundReversal:
		if current == InvoiceStatusPaid {
			return InvoiceStatusSent, nil
		}
	case EventCancel:
		switch current {
		case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusOverdue:
			return InvoiceStatusCancelled, nil
		}
	case EventMarkOverdue:
		if current == InvoiceStatusSent {
			return InvoiceStatusOverdue, nil
		}
	}
	return current, ErrIllegalTransition
}
