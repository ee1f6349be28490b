package service

import (
	"context"
	"testing"
	"time"

	"github.com/Origin-Inc/e-invoicing-backend/internal/client/domain"
	"github.com/Origin-Inc/e-invoicing-backend/internal/client/repository"
	"github.com/Origin-Inc/e-invoicing-backend/internal/clock"
	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Client{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.Fixed{At: testNow},
		Repo:  repository.Provide(),
	})
	return svc, db
}

func TestCreateClient(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, domain.CreateClientRequest{
		Name:  "Acme Corp",
		Email: "Billing@Acme.example ",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "Acme Corp", resp.Name)
	assert.Equal(t, "billing@acme.example", resp.Email)
	// Timestamps come from the injected clock.
	assert.Equal(t, testNow, resp.CreatedAt)
	assert.Equal(t, testNow, resp.UpdatedAt)
}

func TestCreateClientDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateClientRequest{Name: "Acme", Email: "dup@acme.example"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateClientRequest{Name: "Other", Email: "DUP@acme.example"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestCreateClientValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateClientRequest{Name: "  ", Email: "a@b.example"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateClientRequest{Name: "Acme", Email: "not-an-email"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestUpdateClient(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateClientRequest{Name: "Acme", Email: "acme@acme.example"})
	require.NoError(t, err)

	newName := "Acme Holdings"
	updated, err := svc.Update(ctx, domain.UpdateClientRequest{ID: created.ID, Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Acme Holdings", updated.Name)
	assert.Equal(t, "acme@acme.example", updated.Email)
}

func TestGetClientNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetByID(context.Background(), "1234567890")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteClientBlockedByInvoices(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateClientRequest{Name: "Acme", Email: "ref@acme.example"})
	require.NoError(t, err)

	require.NoError(t, db.Exec(
		"CREATE TABLE invoices (id INTEGER PRIMARY KEY, client_id INTEGER NOT NULL)",
	).Error)
	require.NoError(t, db.Exec(
		"INSERT INTO invoices (id, client_id) VALUES (1, ?)", created.ID,
	).Error)

	err = svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrClientInUse)
}

func TestDeleteClient(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	require.NoError(t, db.Exec("CREATE TABLE IF NOT EXISTS invoices (id INTEGER PRIMARY KEY, client_id INTEGER NOT NULL)").Error)

	created, err := svc.Create(ctx, domain.CreateClientRequest{Name: "Gone", Email: "gone@acme.example"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListClientsSearch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	names := []string{"Alpha LLC", "Beta GmbH", "Alphabet Inc"}
	for i, name := range names {
		_, err := svc.Create(ctx, domain.CreateClientRequest{
			Name:  name,
			Email: name[:4] + string(rune('0'+i)) + "@list.example",
		})
		require.NoError(t, err)
	}

	var req domain.ListClientRequest
	req.Search = "alpha"
	resp, err := svc.List(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
	assert.Len(t, resp.Items, 2)
}
