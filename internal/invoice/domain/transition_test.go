package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	cases := []struct {
		name    string
		current InvoiceStatus
		event   Event
		want    InvoiceStatus
	}{
		{"send draft", InvoiceStatusDraft, EventSend, InvoiceStatusSent},
		{"settle sent", InvoiceStatusSent, EventSettle, InvoiceStatusPaid},
		{"settle overdue", InvoiceStatusOverdue, EventSettle, InvoiceStatusPaid},
		{"refund paid", InvoiceStatusPaid, EventRefundReversal, InvoiceStatusSent},
		{"cancel draft", InvoiceStatusDraft, EventCancel, InvoiceStatusCancelled},
		{"cancel sent", InvoiceStatusSent, EventCancel, InvoiceStatusCancelled},
		{"cancel overdue", InvoiceStatusOverdue, EventCancel, InvoiceStatusCancelled},
		{"mark sent overdue", InvoiceStatusSent, EventMarkOverdue, InvoiceStatusOverdue},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Transition(tc.current, tc.event)
			require.NoError(t, err)
			assert.Equal(t, tc.want, next)
		})
	}
}

func TestTransitionRejected(t *testing.T) {
	cases := []struct {
		name    string
		current InvoiceStatus
		event   Event
	}{
		{"send sent", InvoiceStatusSent, EventSend},
		{"send paid", InvoiceStatusPaid, EventSend},
		{"settle draft", InvoiceStatusDraft, EventSettle},
		{"settle paid", InvoiceStatusPaid, EventSettle},
		{"settle cancelled", InvoiceStatusCancelled, EventSettle},
		{"cancel paid", InvoiceStatusPaid, EventCancel},
		{"cancel cancelled", InvoiceStatusCancelled, EventCancel},
		{"refund sent", InvoiceStatusSent, EventRefundReversal},
		{"mark draft overdue", InvoiceStatusDraft, EventMarkOverdue},
		{"mark paid overdue", InvoiceStatusPaid, EventMarkOverdue},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Transition(tc.current, tc.event)
			assert.ErrorIs(t, err, ErrIllegalTransition)
		})
	}
}
