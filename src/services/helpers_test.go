package services_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ARQAP/archive-backend/src/db"
	"github.com/ARQAP/archive-backend/src/db/dbtest"
	"github.com/ARQAP/archive-backend/src/models"
	"github.com/ARQAP/archive-backend/src/services"
	"github.com/ARQAP/archive-backend/src/storage"
	"github.com/ARQAP/archive-backend/src/svg"
	"github.com/stretchr/testify/require"
)

const plan = `<svg xmlns="http://www.w3.org/2000/svg" width="100" height="50">
  <title>plan</title>
  <path d="M 0 0 L 10 10" stroke="black"/>
</svg>`

const circle = `<svg xmlns="http://www.w3.org/2000/svg"><circle r="4"/></svg>`

func ptr[T any](v T) *T { return &v }

type fixture struct {
	gw         *db.GormGateway
	store      storage.Store
	images     *services.ImageService
	aggregates *services.AggregateService
	buildings  *services.BuildingService
	years      *services.YearService
}

func newFixture(t *testing.T, store storage.Store) *fixture {
	t.Helper()
	if store == nil {
		store = storage.NewMemory()
	}
	gw := dbtest.Gateway(t)
	images := services.NewImageService(store, svg.NewOptimizer())
	aggregates := services.NewAggregateService(gw)
	return &fixture{
		gw:         gw,
		store:      store,
		images:     images,
		aggregates: aggregates,
		buildings:  services.NewBuildingService(gw, images, aggregates),
		years:      services.NewYearService(gw, images),
	}
}

func (f *fixture) addYears(t *testing.T, years ...int) {
	t.Helper()
	for _, y := range years {
		require.NoError(t, f.gw.Insert(context.Background(), &models.YearModel{Year: y}))
	}
}

// writeUpload puts content where the HTTP layer would have saved an upload.
func writeUpload(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.svg")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// stagedKeys lists uncommitted objects left in the fixture's memory store.
func stagedKeys(t *testing.T, f *fixture) []string {
	t.Helper()
	mem, ok := f.store.(*storage.Memory)
	require.True(t, ok, "fixture store is not in memory")
	return mem.Keys(storage.StagingPrefix)
}

// failingDeletes is a store whose deletes always fail.
type failingDeletes struct {
	storage.Store
}

func (failingDeletes) Delete(context.Context, string) error {
	return errors.New("disk is read-only")
}
