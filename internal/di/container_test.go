package di_test

import (
	"context"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glazepal/glazepal/internal/config"
	"github.com/glazepal/glazepal/internal/di"
	"github.com/glazepal/glazepal/internal/di/providers"
	"github.com/glazepal/glazepal/internal/filter"
	"github.com/glazepal/glazepal/internal/search"
)

func testFlags(t *testing.T, search string) config.Flags {
	t.Helper()
	return config.Flags{
		Env:           "test",
		LogLevel:      "error",
		DataPath:      t.TempDir(),
		SearchEnabled: search,
		EnvFile:       t.TempDir() + "/missing.env",
	}
}

func TestBootstrap_WiresCatalog(t *testing.T) {
	injector := di.NewContainer(testFlags(t, "true"))
	t.Cleanup(func() { _ = injector.Shutdown() })

	require.NoError(t, di.Bootstrap(injector))

	catalog := do.MustInvoke[*providers.CatalogHandle](injector)
	ctx := context.Background()

	res, err := catalog.CreateBrand(ctx, "Amaco")
	require.NoError(t, err)
	assert.True(t, res.Changed)

	brands, err := catalog.Brands(ctx)
	require.NoError(t, err)
	require.Len(t, brands, 1)
	assert.Equal(t, "Amaco", brands[0].Name)

	idx := do.MustInvoke[*providers.SearchIndexHandle](injector)
	assert.NotNil(t, idx.Index)
}

func TestBootstrap_SearchDisabled(t *testing.T) {
	injector := di.NewContainer(testFlags(t, "false"))
	t.Cleanup(func() { _ = injector.Shutdown() })

	require.NoError(t, di.Bootstrap(injector))

	catalog := do.MustInvoke[*providers.CatalogHandle](injector)
	_, err := catalog.Search(context.Background(), search.Params{Query: "celadon"})
	require.Error(t, err)

	page, err := catalog.Glazes(context.Background(), filter.State{})
	require.NoError(t, err)
	assert.Empty(t, page.Glazes)
}
