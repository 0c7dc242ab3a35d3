package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rpattn/leadflow/internal/config"
	"github.com/rpattn/leadflow/internal/domain"
	"github.com/rpattn/leadflow/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLitePersistsAcrossReopen(t *testing.T) {
	cfg := config.Config{Store: config.StoreConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "data", "leads.db"),
	}}
	ctx := context.Background()

	st, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	_, err = st.Leads.Create(ctx, domain.Lead{
		Date: "2024-01-01", Company: "Acme AS", OrgNumber: "999", Status: "Ny", Source: "Nettside", Seller: "Unknown",
	})
	require.NoError(t, err)
	st.Close()

	st, err = Open(ctx, cfg, nil)
	require.NoError(t, err)
	defer st.Close()

	lead, err := st.Leads.GetByOrgNumber(ctx, "999")
	require.NoError(t, err)
	assert.Equal(t, "Acme AS", lead.Company)

	history, err := st.Audits.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = st.Leads.GetByOrgNumber(ctx, "404")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.Config{Store: config.StoreConfig{Driver: "mongo"}}, nil)
	require.Error(t, err)

	var nilStore *Store
	nilStore.Close()
}
