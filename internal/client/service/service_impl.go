package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/Origin-Inc/e-invoicing-backend/internal/client/domain"
	"github.com/Origin-Inc/e-invoicing-backend/internal/clock"
	"github.com/Origin-Inc/e-invoicing-backend/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("client.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateClientRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	now := s.clock.Now()
	client := domain.Client{
		ID:        s.genID.Generate(),
		Name:      name,
		Email:     email,
		Phone:     trimmed(req.Phone),
		Address:   req.Address,
		Company:   trimmed(req.Company),
		Website:   trimmed(req.Website),
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, &client); err != nil {
		return nil, err
	}

	s.log.Info("client created", zap.String("client_id", client.ID.String()))
	resp := domain.FromModel(client)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateClientRequest) (*domain.Response, error) {
	id, err := domain.ParseID(req.ID)
	if err != nil {
		return nil, err
	}

	client, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		client.Name = name
	}
	if req.Email != nil {
		email, err := normalizeEmail(*req.Email)
		if err != nil {
			return nil, err
		}
		if email != client.Email {
			existing, err := s.repo.FindByEmail(ctx, s.db, email)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != client.ID {
				return nil, domain.ErrEmailTaken
			}
			client.Email = email
		}
	}
	if req.Phone != nil {
		client.Phone = trimmed(req.Phone)
	}
	if req.Address != nil {
		client.Address = req.Address
	}
	if req.Company != nil {
		client.Company = trimmed(req.Company)
	}
	if req.Website != nil {
		client.Website = trimmed(req.Website)
	}
	if req.Notes != nil {
		client.Notes = req.Notes
	}
	client.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, client); err != nil {
		return nil, err
	}

	resp := domain.FromModel(*client)
	return &resp, nil
}

func (s *Service) GetByID(ctx context.Context, raw string) (*domain.Response, error) {
	id, err := domain.ParseID(raw)
	if err != nil {
		return nil, err
	}
	client, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}
	resp := domain.FromModel(*client)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListClientRequest) (domain.ListClientResponse, error) {
	clients, total, err := s.repo.List(ctx, s.db, req.Pagination)
	if err != nil {
		return domain.ListClientResponse{}, err
	}

	items := make([]domain.Response, 0, len(clients))
	for _, client := range clients {
		items = append(items, domain.FromModel(client))
	}
	return domain.ListClientResponse{
		PageInfo: pagination.NewPageInfo(req.Pagination, total),
		Items:    items,
	}, nil
}

func (s *Service) Delete(ctx context.Context, raw string) error {
	id, err := domain.ParseID(raw)
	if err != nil {
		return err
	}

	client, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if client == nil {
		return domain.ErrNotFound
	}

	// Invoices keep their client reference for their whole lifecycle,
	// so a referenced client cannot be removed.
	count, err := s.repo.CountInvoices(ctx, s.db, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrClientInUse
	}

	return s.repo.Delete(ctx, s.db, id)
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", domain.ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.ErrInvalidEmail
	}
	return email, nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
