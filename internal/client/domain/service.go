package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Origin-Inc/e-invoicing-backend/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
)

type CreateClientRequest struct {
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Phone   *string  `json:"phone"`
	Address *Address `json:"address"`
	Company *string  `json:"company"`
	Website *string  `json:"website"`
	Notes   *string  `json:"notes"`
}

// UpdateClientRequest is a partial update; nil fields are untouched.
// The client id is never updatable.
type UpdateClientRequest struct {
	ID      string   `json:"-"`
	Name    *string  `json:"name"`
	Email   *string  `json:"email"`
	Phone   *string  `json:"phone"`
	Address *Address `json:"address"`
	Company *string  `json:"company"`
	Website *string  `json:"website"`
	Notes   *string  `json:"notes"`
}

type ListClientRequest struct {
	pagination.Pagination
}

type Response struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *Address  `json:"address,omitempty"`
	Company   *string   `json:"company,omitempty"`
	Website   *string   `json:"website,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListClientResponse struct {
	pagination.PageInfo
	Items []Response `json:"items"`
}

type Service interface {
	Create(ctx context.Context, req CreateClientRequest) (*Response, error)
	Update(ctx context.Context, req UpdateClientRequest) (*Response, error)
	GetByID(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListClientRequest) (ListClientResponse, error)
	Delete(ctx context.Context, id string) error
}

// ParseID parses a client id from its string form.
func ParseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrInvalidID
	}
	return id, nil
}

var (
	ErrInvalidID      = errors.New("invalid_client_id")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidEmail   = errors.New("invalid_email")
	ErrEmailTaken     = errors.New("email_taken")
	ErrNotFound       = errors.New("client_not_found")
	ErrClientInUse    = errors.New("client_has_invoices")
	ErrInvalidRequest = errors.New("invalid_request")
)

// FromModel converts a stored client into its response shape.
func FromModel(c Client) Response {
	return Response{
		ID:        c.ID.String(),
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		Company:   c.Company,
		Website:   c.Website,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
