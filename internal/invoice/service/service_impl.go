package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Origin-Inc/e-invoicing-backend/internal/cache"
	clientdomain "github.com/Origin-Inc/e-invoicing-backend/internal/client/domain"
	"github.com/Origin-Inc/e-invoicing-backend/internal/clock"
	"github.com/Origin-Inc/e-invoicing-backend/internal/events"
	"github.com/Origin-Inc/e-invoicing-backend/internal/invoice/domain"
	"github.com/Origin-Inc/e-invoicing-backend/internal/ledger"
	"github.com/Origin-Inc/e-invoicing-backend/internal/money"
	"github.com/Origin-Inc/e-invoicing-backend/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const clientCacheTTL = 30 * time.Second

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Clients clientdomain.Repository
	Ledger  ledger.Recorder
	Outbox  events.Appender
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	clients     clientdomain.Repository
	ledger      ledger.Recorder
	outbox      events.Appender
	clientCache *cache.TTLCache[snowflake.ID, clientdomain.Client]
}

func NewService(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("invoice.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		clients:     p.Clients,
		ledger:      p.Ledger,
		outbox:      p.Outbox,
		clientCache: cache.NewTTLCache[snowflake.ID, clientdomain.Client](),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (*domain.Response, error) {
	clientID, err := clientdomain.ParseID(req.ClientID)
	if err != nil {
		return nil, domain.ErrClientNotFound
	}
	client, err := s.lookupClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrClientNotFound
	}

	issue, err := domain.ParseDate(req.IssueDate)
	if err != nil {
		return nil, err
	}
	due, err := domain.ParseDate(req.DueDate)
	if err != nil {
		return nil, err
	}
	if due.Before(issue) {
		return nil, domain.ErrDueBeforeIssue
	}

	currency, err := normalizeCurrency(req.Currency)
	if err != nil {
		return nil, err
	}

	totals, err := domain.ReconcileTotals(domain.TotalsInputFromRequest(
		req.Items, req.Subtotal,
		req.TaxRate, req.TaxAmount, req.DiscountRate, req.DiscountAmount,
		req.TotalAmount,
	))
	if err != nil {
		return nil, err
	}

	id := s.genID.Generate()
	number := strings.TrimSpace(req.InvoiceNumber)
	if number == "" {
		number = fmt.Sprintf("INV-%s", id.String())
	} else {
		existing, err := s.repo.FindByNumber(ctx, s.db, number)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, domain.ErrNumberTaken
		}
	}

	status := domain.InvoiceStatusDraft
	if raw := strings.TrimSpace(req.Status); raw != "" {
		// Only draft and sent make sense at creation; the rest of the
		// lifecycle is reached through transitions.
		switch domain.InvoiceStatus(raw) {
		case domain.InvoiceStatusDraft:
		case domain.InvoiceStatusSent:
			status = domain.InvoiceStatusSent
		default:
			return nil, domain.ErrInvalidStatus
		}
	}

	now := s.clock.Now()
	inv := domain.Invoice{
		ID:              id,
		ClientID:        clientID,
		InvoiceNumber:   number,
		Status:          status,
		Currency:        currency,
		IssueDate:       issue,
		DueDate:         due,
		SubtotalAmount:  totals.Subtotal,
		TaxRateBps:      rateFromInt(req.TaxRate),
		TaxAmount:       totals.Tax,
		DiscountRateBps: rateFromInt(req.DiscountRate),
		DiscountAmount:  totals.Discount,
		TotalAmount:     totals.Total,
		Description:     req.Description,
		Notes:           req.Notes,
		Terms:           req.Terms,
		CreatedAt:       now,
		UpdatedAt:       now,
		Items:           buildItems(s.genID, id, req.Items, now),
	}
	if status == domain.InvoiceStatusSent {
		inv.SentAt = &now
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &inv); err != nil {
			return err
		}
		err := s.outbox.Append(ctx, tx, events.InvoiceCreated, events.InvoiceCreated+":"+inv.ID.String(), datatypes.JSONMap{
			"invoice_id":     inv.ID.String(),
			"invoice_number": inv.InvoiceNumber,
			"client_id":      inv.ClientID.String(),
			"total_amount":   int64(inv.TotalAmount),
		})
		if err != nil {
			return err
		}
		if status == domain.InvoiceStatusSent {
			return s.recordIssue(ctx, tx, &inv)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.Int64("total_amount", int64(inv.TotalAmount)),
	)

	resp := domain.FromModel(inv, now)
	resp.Client = clientSummary(client)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateInvoiceRequest) (*domain.Response, error) {
	id, err := domain.ParseID(req.ID)
	if err != nil {
		return nil, err
	}

	inv, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.Status != domain.InvoiceStatusDraft {
		return nil, domain.ErrNotDraft
	}

	now := s.clock.Now()

	if req.IssueDate != nil {
		issue, err := domain.ParseDate(*req.IssueDate)
		if err != nil {
			return nil, err
		}
		inv.IssueDate = issue
	}
	if req.DueDate != nil {
		due, err := domain.ParseDate(*req.DueDate)
		if err != nil {
			return nil, err
		}
		inv.DueDate = due
	}
	if inv.DueDate.Before(inv.IssueDate) {
		return nil, domain.ErrDueBeforeIssue
	}
	if req.Currency != nil {
		currency, err := normalizeCurrency(*req.Currency)
		if err != nil {
			return nil, err
		}
		inv.Currency = currency
	}

	if req.Items != nil {
		// A new line set replaces the whole totals block; every
		// declared figure must come from this request.
		if req.Subtotal == nil || req.TotalAmount == nil {
			return nil, domain.ErrInvalidItems
		}
		totals, err := domain.ReconcileTotals(domain.TotalsInputFromRequest(
			*req.Items, *req.Subtotal,
			req.TaxRate, req.TaxAmount, req.DiscountRate, req.DiscountAmount,
			*req.TotalAmount,
		))
		if err != nil {
			return nil, err
		}
		inv.SubtotalAmount = totals.Subtotal
		inv.TaxRateBps = rateFromInt(req.TaxRate)
		inv.TaxAmount = totals.Tax
		inv.DiscountRateBps = rateFromInt(req.DiscountRate)
		inv.DiscountAmount = totals.Discount
		inv.TotalAmount = totals.Total
		inv.Items = buildItems(s.genID, inv.ID, *req.Items, now)
	}

	if req.Description != nil {
		inv.Description = req.Description
	}
	if req.Notes != nil {
		inv.Notes = req.Notes
	}
	if req.Terms != nil {
		inv.Terms = req.Terms
	}
	inv.UpdatedAt = now

	if err := s.repo.UpdateDraft(ctx, s.db, inv); err != nil {
		return nil, err
	}

	resp := domain.FromModel(*inv, now)
	return &resp, nil
}

func (s *Service) GetByID(ctx context.Context, raw string) (*domain.Response, error) {
	id, err := domain.ParseID(raw)
	if err != nil {
		return nil, err
	}
	inv, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}

	resp := domain.FromModel(*inv, s.clock.Now())
	client, err := s.lookupClient(ctx, inv.ClientID)
	if err != nil {
		return nil, err
	}
	resp.Client = clientSummary(client)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	if req.Status != "" && !domain.InvoiceStatus(req.Status).Valid() {
		return domain.ListInvoiceResponse{}, domain.ErrInvalidStatus
	}

	invoices, total, err := s.repo.List(ctx, s.db, req)
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	now := s.clock.Now()
	items := make([]domain.Response, 0, len(invoices))
	for _, inv := range invoices {
		resp := domain.FromModel(inv, now)
		client, err := s.lookupClient(ctx, inv.ClientID)
		if err != nil {
			return domain.ListInvoiceResponse{}, err
		}
		resp.Client = clientSummary(client)
		items = append(items, resp)
	}
	return domain.ListInvoiceResponse{
		PageInfo: pagination.NewPageInfo(req.Pagination, total),
		Items:    items,
	}, nil
}

func (s *Service) Send(ctx context.Context, raw string) (*domain.Response, error) {
	id, err := domain.ParseID(raw)
	if err != nil {
		return nil, err
	}
	inv, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}

	next, err := domain.Transition(inv.Status, domain.EventSend)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		changed, err := s.repo.UpdateStatus(ctx, tx, id, inv.Status, next, now)
		if err != nil {
			return err
		}
		if !changed {
			return domain.ErrIllegalTransition
		}
		return s.recordIssue(ctx, tx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("invoice sent", zap.String("invoice_id", inv.ID.String()))

	inv.Status = next
	inv.SentAt = &now
	inv.UpdatedAt = now
	resp := domain.FromModel(*inv, now)
	return &resp, nil
}

func (s *Service) Cancel(ctx context.Context, raw string, reason string) (*domain.Response, error) {
	id, err := domain.ParseID(raw)
	if err != nil {
		return nil, err
	}
	inv, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}

	next, err := domain.Transition(inv.Status, domain.EventCancel)
	if err != nil {
		return nil, err
	}

	// Money already moved against this invoice; it must be refunded
	// before the invoice can be voided.
	completed, err := s.repo.CountCompletedPayments(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if completed > 0 {
		return nil, domain.ErrHasCompletedPayments
	}

	now := s.clock.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		changed, err := s.repo.UpdateStatus(ctx, tx, id, inv.Status, next, now)
		if err != nil {
			return err
		}
		if !changed {
			return domain.ErrIllegalTransition
		}
		payload := datatypes.JSONMap{
			"invoice_id":     inv.ID.String(),
			"invoice_number": inv.InvoiceNumber,
		}
		if reason = strings.TrimSpace(reason); reason != "" {
			payload["reason"] = reason
		}
		return s.outbox.Append(ctx, tx, events.InvoiceCancelled, events.InvoiceCancelled+":"+inv.ID.String(), payload)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("invoice cancelled", zap.String("invoice_id", inv.ID.String()))

	inv.Status = next
	inv.CancelledAt = &now
	inv.UpdatedAt = now
	resp := domain.FromModel(*inv, now)
	return &resp, nil
}

// recordIssue books the receivable and emits the sent event once an
// invoice is issued, whether at creation or through Send.
func (s *Service) recordIssue(ctx context.Context, tx *gorm.DB, inv *domain.Invoice) error {
	if inv.TotalAmount > 0 {
		err := s.ledger.Record(ctx, tx, ledger.Entry{
			Reference: "invoice:" + inv.ID.String(),
			InvoiceID: inv.ID,
			Currency:  inv.Currency,
			Lines: []ledger.Line{
				{Account: ledger.AccountReceivable, Direction: ledger.Debit, Amount: inv.TotalAmount},
				{Account: ledger.AccountRevenue, Direction: ledger.Credit, Amount: inv.TotalAmount},
			},
		})
		if err != nil {
			return err
		}
	}
	return s.outbox.Append(ctx, tx, events.InvoiceSent, events.InvoiceSent+":"+inv.ID.String(), datatypes.JSONMap{
		"invoice_id":     inv.ID.String(),
		"invoice_number": inv.InvoiceNumber,
	})
}

func (s *Service) lookupClient(ctx context.Context, id snowflake.ID) (*clientdomain.Client, error) {
	if cached, ok := s.clientCache.Get(id); ok {
		return &cached, nil
	}
	client, err := s.clients.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if client != nil {
		s.clientCache.Set(id, *client, clientCacheTTL)
	}
	return client, nil
}

func clientSummary(client *clientdomain.Client) *domain.ClientSummary {
	if client == nil {
		return nil
	}
	return &domain.ClientSummary{
		ID:    client.ID.String(),
		Name:  client.Name,
		Email: client.Email,
	}
}

func normalizeCurrency(raw string) (string, error) {
	currency := strings.ToUpper(strings.TrimSpace(raw))
	if currency == "" {
		return "USD", nil
	}
	if len(currency) != 3 {
		return "", domain.ErrInvalidCurrency
	}
	for _, r := range currency {
		if r < 'A' || r > 'Z' {
			return "", domain.ErrInvalidCurrency
		}
	}
	return currency, nil
}

func buildItems(genID *snowflake.Node, invoiceID snowflake.ID, items []domain.LineItemRequest, now time.Time) []domain.InvoiceItem {
	out := make([]domain.InvoiceItem, 0, len(items))
	for _, item := range items {
		out = append(out, domain.InvoiceItem{
			ID:          genID.Generate(),
			InvoiceID:   invoiceID,
			Description: strings.TrimSpace(item.Description),
			Quantity:    item.Quantity,
			Rate:        money.Amount(item.Rate),
			Amount:      money.Amount(item.Amount),
			CreatedAt:   now,
		})
	}
	return out
}

func rateFromInt(v *int64) *money.Rate {
	if v == nil {
		return nil
	}
	rate := money.Rate(*v)
	return &rate
}
