package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Origin-Inc/e-invoicing-backend/internal/audit"
	"github.com/Origin-Inc/e-invoicing-backend/internal/clock"
	"github.com/Origin-Inc/e-invoicing-backend/internal/events"
	invoicedomain "github.com/Origin-Inc/e-invoicing-backend/internal/invoice/domain"
	"github.com/Origin-Inc/e-invoicing-backend/internal/ledger"
	"github.com/Origin-Inc/e-invoicing-backend/internal/money"
	"github.com/Origin-Inc/e-invoicing-backend/internal/payment/domain"
	"github.com/Origin-Inc/e-invoicing-backend/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const entityType = "payment"

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Invoices invoicedomain.Repository
	Ledger   ledger.Recorder
	Audit    audit.Recorder
	Outbox   events.Appender
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	invoices invoicedomain.Repository
	ledger   ledger.Recorder
	audit    audit.Recorder
	outbox   events.Appender
}

func NewService(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("payment.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		invoices: p.Invoices,
		ledger:   p.Ledger,
		audit:    p.Audit,
		outbox:   p.Outbox,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePaymentRequest) (*domain.Response, error) {
	invoiceID, err := invoicedomain.ParseID(req.InvoiceID)
	if err != nil {
		return nil, domain.ErrInvoiceNotFound
	}
	if req.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	method := domain.PaymentMethod(strings.TrimSpace(req.Method))
	if !method.Valid() {
		return nil, domain.ErrInvalidMethod
	}
	paymentDate, err := invoicedomain.ParseDate(req.PaymentDate)
	if err != nil {
		return nil, domain.ErrInvalidDate
	}

	initial := domain.StatusPending
	if req.Status != nil {
		initial = domain.PaymentStatus(strings.TrimSpace(*req.Status))
		if initial != domain.StatusPending && initial != domain.StatusCompleted {
			return nil, domain.ErrInvalidStatus
		}
	}

	now := s.clock.Now()
	payment := domain.Payment{
		ID:          s.genID.Generate(),
		InvoiceID:   invoiceID,
		Amount:      money.Amount(req.Amount),
		PaymentDate: paymentDate,
		Method:      method,
		Status:      domain.StatusPending,
		Reference:   req.Reference,
		Notes:       req.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := s.invoices.LockForSettlement(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrInvoiceNotFound
		}
		// Drafts have not been issued and cancelled invoices are void;
		// neither accepts money.
		switch inv.Status {
		case invoicedomain.InvoiceStatusDraft, invoicedomain.InvoiceStatusCancelled:
			return domain.ErrInvoiceNotPayable
		}
		payment.Currency = inv.Currency

		if err := s.repo.Insert(ctx, tx, &payment); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, tx, "payment.created", entityType, payment.ID, datatypes.JSONMap{
			"invoice_id": invoiceID.String(),
			"amount":     req.Amount,
			"method":     string(method),
		}); err != nil {
			return err
		}
		if err := s.outbox.Append(ctx, tx, events.PaymentCreated, events.PaymentCreated+":"+payment.ID.String(), datatypes.JSONMap{
			"payment_id": payment.ID.String(),
			"invoice_id": invoiceID.String(),
			"amount":     req.Amount,
		}); err != nil {
			return err
		}

		if initial == domain.StatusCompleted {
			return s.applyCompletion(ctx, tx, &payment, inv)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("invoice_id", invoiceID.String()),
		zap.Int64("amount", req.Amount),
		zap.String("status", string(payment.Status)),
	)

	resp := domain.FromModel(payment)
	return &resp, nil
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (*domain.Response, error) {
	id, err := domain.ParseID(req.ID)
	if err != nil {
		return nil, err
	}
	target := domain.PaymentStatus(strings.TrimSpace(req.Status))
	if !target.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	var payment *domain.Payment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err = s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if payment == nil {
			return domain.ErrNotFound
		}
		if !payment.Status.CanTransition(target) {
			return domain.ErrIllegalTransition
		}

		switch target {
		case domain.StatusCompleted:
			inv, err := s.lockInvoice(ctx, tx, payment.InvoiceID)
			if err != nil {
				return err
			}
			return s.applyCompletion(ctx, tx, payment, inv)
		case domain.StatusRefunded:
			inv, err := s.lockInvoice(ctx, tx, payment.InvoiceID)
			if err != nil {
				return err
			}
			return s.applyRefund(ctx, tx, payment, inv)
		case domain.StatusFailed:
			payment.Status = domain.StatusFailed
			payment.UpdatedAt = s.clock.Now()
			if err := s.repo.Update(ctx, tx, payment); err != nil {
				return err
			}
			if err := s.audit.Record(ctx, tx, "payment.failed", entityType, payment.ID, nil); err != nil {
				return err
			}
			return s.outbox.Append(ctx, tx, events.PaymentFailed, events.PaymentFailed+":"+payment.ID.String(), datatypes.JSONMap{
				"payment_id": payment.ID.String(),
				"invoice_id": payment.InvoiceID.String(),
			})
		default:
			return domain.ErrIllegalTransition
		}
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("payment status changed",
		zap.String("payment_id", payment.ID.String()),
		zap.String("status", string(payment.Status)),
	)

	resp := domain.FromModel(*payment)
	return &resp, nil
}

func (s *Service) GetByID(ctx context.Context, raw string) (*domain.Response, error) {
	id, err := domain.ParseID(raw)
	if err != nil {
		return nil, err
	}
	payment, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, domain.ErrNotFound
	}
	resp := domain.FromModel(*payment)
	if inv, err := s.invoices.FindByID(ctx, s.db, payment.InvoiceID); err == nil && inv != nil {
		resp.Invoice = &domain.InvoiceSummary{
			ID:            inv.ID.String(),
			InvoiceNumber: inv.InvoiceNumber,
			Status:        string(inv.EffectiveStatus(s.clock.Now())),
			TotalAmount:   int64(inv.TotalAmount),
		}
	}
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListPaymentRequest) (domain.ListPaymentResponse, error) {
	if req.Status != "" && !domain.PaymentStatus(req.Status).Valid() {
		return domain.ListPaymentResponse{}, domain.ErrInvalidStatus
	}

	payments, total, err := s.repo.List(ctx, s.db, req)
	if err != nil {
		return domain.ListPaymentResponse{}, err
	}

	items := make([]domain.Response, 0, len(payments))
	for _, payment := range payments {
		items = append(items, domain.FromModel(payment))
	}
	return domain.ListPaymentResponse{
		PageInfo: pagination.NewPageInfo(req.Pagination, total),
		Items:    items,
	}, nil
}

func (s *Service) lockInvoice(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*invoicedomain.Invoice, error) {
	inv, err := s.invoices.LockForSettlement(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrInvoiceNotFound
	}
	return inv, nil
}

// applyCompletion settles one payment against its locked invoice. The
// payment row, the invoice settlement, the ledger entry, the audit row
// and the outbox event all commit or roll back together.
func (s *Service) applyCompletion(ctx context.Context, tx *gorm.DB, payment *domain.Payment, inv *invoicedomain.Invoice) error {
	// The invoice may have been cancelled while the payment sat pending.
	switch inv.Status {
	case invoicedomain.InvoiceStatusDraft, invoicedomain.InvoiceStatusCancelled:
		return domain.ErrInvoiceNotPayable
	}

	newSettled := inv.SettledAmount + payment.Amount
	if newSettled > inv.TotalAmount {
		return domain.ErrOverpayment
	}

	now := s.clock.Now()
	update := invoicedomain.SettlementUpdate{
		ID:      inv.ID,
		Version: inv.Version,
		Settled: newSettled,
		Status:  inv.Status,
		PaidAt:  inv.PaidAt,
	}
	// Paid means fully covered; with overpayment rejected above this is
	// an exact match. One unit short stays open.
	settled := newSettled >= inv.TotalAmount
	if settled {
		next, err := invoicedomain.Transition(inv.Status, invoicedomain.EventSettle)
		if err != nil {
			return err
		}
		update.Status = next
		update.PaidAt = &now
	}
	if err := s.invoices.ApplySettlement(ctx, tx, update); err != nil {
		return err
	}

	payment.Status = domain.StatusCompleted
	payment.UpdatedAt = now
	if err := s.repo.Update(ctx, tx, payment); err != nil {
		return err
	}

	err := s.ledger.Record(ctx, tx, ledger.Entry{
		Reference: "payment:" + payment.ID.String(),
		InvoiceID: inv.ID,
		PaymentID: payment.ID,
		Currency:  payment.Currency,
		Lines: []ledger.Line{
			{Account: ledger.AccountCashClearing, Direction: ledger.Debit, Amount: payment.Amount},
			{Account: ledger.AccountReceivable, Direction: ledger.Credit, Amount: payment.Amount},
		},
	})
	if err != nil {
		return err
	}

	if err := s.audit.Record(ctx, tx, "payment.completed", entityType, payment.ID, datatypes.JSONMap{
		"invoice_id":  inv.ID.String(),
		"amount":      int64(payment.Amount),
		"new_settled": int64(newSettled),
	}); err != nil {
		return err
	}
	if err := s.outbox.Append(ctx, tx, events.PaymentCompleted, events.PaymentCompleted+":"+payment.ID.String(), datatypes.JSONMap{
		"payment_id": payment.ID.String(),
		"invoice_id": inv.ID.String(),
		"amount":     int64(payment.Amount),
	}); err != nil {
		return err
	}
	if settled {
		// A refunded invoice can settle again later; the bumped version
		// distinguishes each settlement occurrence.
		key := fmt.Sprintf("%s:%s:v%d", events.InvoicePaid, inv.ID.String(), inv.Version+1)
		return s.outbox.Append(ctx, tx, events.InvoicePaid, key, datatypes.JSONMap{
			"invoice_id":     inv.ID.String(),
			"invoice_number": inv.InvoiceNumber,
			"total_amount":   int64(inv.TotalAmount),
		})
	}
	return nil
}

// applyRefund reverses a completed payment. When the reversal drops a
// paid invoice below its total the invoice reopens as sent.
func (s *Service) applyRefund(ctx context.Context, tx *gorm.DB, payment *domain.Payment, inv *invoicedomain.Invoice) error {
	newSettled := inv.SettledAmount - payment.Amount
	if newSettled < 0 {
		newSettled = 0
	}

	now := s.clock.Now()
	update := invoicedomain.SettlementUpdate{
		ID:      inv.ID,
		Version: inv.Version,
		Settled: newSettled,
		Status:  inv.Status,
		PaidAt:  inv.PaidAt,
	}
	if inv.Status == invoicedomain.InvoiceStatusPaid && newSettled < inv.TotalAmount {
		next, err := invoicedomain.Transition(inv.Status, invoicedomain.EventRefundReversal)
		if err != nil {
			return err
		}
		update.Status = next
		update.PaidAt = nil
	}
	if err := s.invoices.ApplySettlement(ctx, tx, update); err != nil {
		return err
	}

	payment.Status = domain.StatusRefunded
	payment.UpdatedAt = now
	if err := s.repo.Update(ctx, tx, payment); err != nil {
		return err
	}

	err := s.ledger.Record(ctx, tx, ledger.Entry{
		Reference: "refund:" + payment.ID.String(),
		InvoiceID: inv.ID,
		PaymentID: payment.ID,
		Currency:  payment.Currency,
		Lines: []ledger.Line{
			{Account: ledger.AccountReceivable, Direction: ledger.Debit, Amount: payment.Amount},
			{Account: ledger.AccountCashClearing, Direction: ledger.Credit, Amount: payment.Amount},
		},
	})
	if err != nil {
		return err
	}

	if err := s.audit.Record(ctx, tx, "payment.refunded", entityType, payment.ID, datatypes.JSONMap{
		"invoice_id":  inv.ID.String(),
		"amount":      int64(payment.Amount),
		"new_settled": int64(newSettled),
	}); err != nil {
		return err
	}
	return s.outbox.Append(ctx, tx, events.PaymentRefunded, events.PaymentRefunded+":"+payment.ID.String(), datatypes.JSONMap{
		"payment_id": payment.ID.String(),
		"invoice_id": inv.ID.String(),
		"amount":     int64(payment.Amount),
	})
}
