package database

import (
	"context"
	"testing"

	"tenantconsole-backend/shared/store"
	"tenantconsole-backend/shared/store/memory"
	utils "tenantconsole-backend/shared/utils/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSeedDemoData(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()

	require.NoError(t, SeedDemoData(ctx, repo, zap.NewNop()))

	tenants, err := repo.ListTenants(ctx)
	require.NoError(t, err)
	assert.Len(t, tenants, 3)

	admin, err := repo.FindUserByEmail(ctx, DemoTenantAdminEmail)
	require.NoError(t, err)
	assert.Equal(t, "tenant_admin", admin.UserRole)
	assert.True(t, utils.CheckPassword(admin.Password, DemoPassword))

	links, err := repo.ListUserRoles(ctx, admin.ID)
	require.NoError(t, err)
	assert.Len(t, links, 1)

	orgs, err := repo.ListOrganizations(ctx, acmeTenantID, store.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, orgs, 2)

	t.Run("second run is a no-op", func(t *testing.T) {
		require.NoError(t, SeedDemoData(ctx, repo, zap.NewNop()))
		tenants, err := repo.ListTenants(ctx)
		require.NoError(t, err)
		assert.Len(t, tenants, 3)
	})
}
