package services_test

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/ARQAP/archive-backend/src/apperrors"
	"github.com/ARQAP/archive-backend/src/dtos"
	"github.com/ARQAP/archive-backend/src/models"
	"github.com/ARQAP/archive-backend/src/services"
	"github.com/ARQAP/archive-backend/src/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBuildingRoundsToDecades(t *testing.T) {
	f := newFixture(t, nil)
	f.addYears(t, 1690, 1700)
	ctx := context.Background()

	building, err := f.buildings.CreateBuilding(ctx, dtos.CreateBuildingCommand{Phase: "B12", Start: 1695, End: 1696})
	require.NoError(t, err)
	assert.Equal(t, 1690, building.Start)
	assert.Equal(t, 1700, building.End)
	assert.Equal(t, 1, building.ID)

	for year := 1690; year <= 1699; year++ {
		_, found, err := f.buildings.GetActive(ctx, building.ID, year)
		require.NoError(t, err)
		assert.True(t, found, "year %d", year)
	}

	_, found, err := f.buildings.GetActive(ctx, building.ID, 1700)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = f.buildings.ListActive(ctx, 1700)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestConcurrentCreatesGetSequentialIDs(t *testing.T) {
	f := newFixture(t, nil)
	f.addYears(t, 1690, 1700)

	const n = 10
	ids := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := f.buildings.CreateBuilding(context.Background(), dtos.CreateBuildingCommand{Phase: "B1", Start: 1690, End: 1700})
			if assert.NoError(t, err) {
				ids <- b.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	for id := 1; id <= n; id++ {
		assert.True(t, seen[id], "missing id %d", id)
	}
}

func TestCreateBuildingStoresImageUnderReservedID(t *testing.T) {
	f := newFixture(t, nil)
	f.addYears(t, 1690, 1700)
	ctx := context.Background()

	building, err := f.buildings.CreateBuilding(ctx, dtos.CreateBuildingCommand{
		Phase: "B1", Start: 1693, End: 1698, ImagePath: writeUpload(t, plan),
	})
	require.NoError(t, err)
	require.NotNil(t, building.Image)
	assert.Equal(t, "/years/1690/buildings/1.svg", *building.Image)

	ok, err := f.store.Exists(ctx, "svg/buildings/1.svg")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateBuildingRemovesImageWhenInsertFails(t *testing.T) {
	// No year rows exist, so the insert violates the year foreign keys.
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.buildings.CreateBuilding(ctx, dtos.CreateBuildingCommand{
		Phase: "B1", Start: 1690, End: 1700, ImagePath: writeUpload(t, plan),
	})
	require.ErrorIs(t, err, apperrors.ErrInsertFailure)
	assert.Equal(t, 500, apperrors.Status(err))

	ok, err := f.store.Exists(ctx, "svg/buildings/1.svg")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, stagedKeys(t, f))
}

func TestCreateBuildingReportsInsertFailureWhenCleanupFails(t *testing.T) {
	f := newFixture(t, failingDeletes{storage.NewMemory()})

	_, err := f.buildings.CreateBuilding(context.Background(), dtos.CreateBuildingCommand{
		Phase: "B1", Start: 1690, End: 1700, ImagePath: writeUpload(t, plan),
	})
	assert.ErrorIs(t, err, apperrors.ErrInsertFailure)
}

func TestCreateBuildingRejectsBrokenImage(t *testing.T) {
	f := newFixture(t, nil)
	f.addYears(t, 1690, 1700)

	_, err := f.buildings.CreateBuilding(context.Background(), dtos.CreateBuildingCommand{
		Phase: "B1", Start: 1690, End: 1700, ImagePath: writeUpload(t, "not an svg"),
	})
	require.ErrorIs(t, err, apperrors.ErrIngestFailure)

	var count int
	require.NoError(t, f.gw.Query(context.Background(), &count, "SELECT COUNT(*) FROM buildings"))
	assert.Zero(t, count)
}

func seedComposite(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	f.addYears(t, 1670, 1690, 1700)
	require.NoError(t, f.gw.Insert(ctx, &models.BuildingModel{ID: 12, Phase: "B12", Start: 1690, End: 1700}))

	for _, feature := range []models.FeatureModel{
		{Building: 12, Type: ptr("wall")},
		{Building: 12, Type: ptr("wall")},
	} {
		require.NoError(t, f.gw.Insert(ctx, &feature))
	}
	for _, find := range []models.FindModel{
		{Building: 12, FileGroup: ptr("pottery"), Fragments: ptr(2)},
		{Building: 12, FileGroup: ptr("pottery"), Fragments: ptr(5)},
		{Building: 12, FileGroup: ptr("bone"), Fragments: ptr(1)},
	} {
		require.NoError(t, f.gw.Insert(ctx, &find))
	}
	for _, file := range []models.SharedFileModel{
		{Kind: models.FileKindCSV, Tag: "pottery.csv", FileGroup: ptr("pottery"), MajorGroup: "finds", Href: "/csv/1"},
		{Kind: models.FileKindCSV, Tag: "features.csv", FileGroup: ptr("features"), MajorGroup: "features", Href: "/csv/2"},
		{Kind: models.FileKindCSV, Tag: "glass.csv", FileGroup: ptr("glass"), MajorGroup: "finds", Href: "/csv/3"},
	} {
		require.NoError(t, f.gw.Insert(ctx, &file))
	}
}

func TestResolveMergesAggregates(t *testing.T) {
	f := newFixture(t, nil)
	seedComposite(t, f)

	res, err := f.buildings.Resolve(context.Background(), 1695, "12")
	require.NoError(t, err)
	require.Nil(t, res.Asset)

	detail, ok := res.Data.(*dtos.BuildingDetail)
	require.True(t, ok)
	assert.Equal(t, 12, detail.ID)
	assert.Equal(t, []dtos.FeatureSummary{{Type: ptr("wall"), Count: 2}}, detail.Features)
	assert.Equal(t, []dtos.FindSummary{
		{FileGroup: ptr("bone"), TotalFragments: 1},
		{FileGroup: ptr("pottery"), TotalFragments: 7},
	}, detail.Finds)

	require.Len(t, detail.Files.Features, 1)
	assert.Equal(t, "features.csv", detail.Files.Features[0].Tag)
	require.Len(t, detail.Files.Finds, 1)
	assert.Equal(t, "pottery.csv", detail.Files.Finds[0].Tag)
}

func TestResolveFallsBackToAsset(t *testing.T) {
	f := newFixture(t, nil)
	seedComposite(t, f)
	ctx := context.Background()

	// Building 12 is not active in 1700 and there is no asset named 12.
	_, err := f.buildings.Resolve(ctx, 1700, "12")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, f.store.Write(ctx, "svg/buildings/1670.svg", []byte("<svg/>")))
	res, err := f.buildings.Resolve(ctx, 1690, "1670.svg")
	require.NoError(t, err)
	require.NotNil(t, res.Asset)
	defer res.Asset.Close()
	body, err := io.ReadAll(res.Asset)
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(body))

	_, err = f.buildings.Resolve(ctx, 1690, "../users")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAggregatesSoftFail(t *testing.T) {
	f := newFixture(t, nil)
	seedComposite(t, f)
	ctx := context.Background()

	_, err := f.gw.Execute(ctx, "DROP TABLE features")
	require.NoError(t, err)

	res, err := f.buildings.Resolve(ctx, 1695, "12")
	require.NoError(t, err)
	detail := res.Data.(*dtos.BuildingDetail)
	assert.NotNil(t, detail.Features)
	assert.Empty(t, detail.Features)
	assert.Len(t, detail.Finds, 2)
}

func TestUpdateBuilding(t *testing.T) {
	f := newFixture(t, nil)
	seedComposite(t, f)
	ctx := context.Background()

	updated, err := f.buildings.UpdateBuilding(ctx, 12, 1690, dtos.BuildingPatch{Description: ptr("hello")})
	require.NoError(t, err)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "hello", *updated.Description)
	assert.Equal(t, "B12", updated.Phase)

	_, err = f.buildings.UpdateBuilding(ctx, 12, 1690, dtos.BuildingPatch{})
	assert.ErrorIs(t, err, apperrors.ErrNothingToUpdate)

	_, err = f.buildings.UpdateBuilding(ctx, 99, 1690, dtos.BuildingPatch{Description: ptr("x")})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.buildings.UpdateBuilding(ctx, 12, 1690, dtos.BuildingPatch{Image: ptr("/x.svg"), ImagePath: writeUpload(t, plan)})
	var ve *apperrors.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestUpdateMissingBuildingDiscardsUploadedImage(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.buildings.UpdateBuilding(ctx, 42, 1690, dtos.BuildingPatch{ImagePath: writeUpload(t, plan)})
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	ok, err := f.store.Exists(ctx, "svg/buildings/42.svg")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, stagedKeys(t, f))
}

func TestUpdateBuildingRejectsEndBeforeStart(t *testing.T) {
	f := newFixture(t, nil)
	f.addYears(t, 1680, 1690, 1700, 1710)
	ctx := context.Background()
	require.NoError(t, f.gw.Insert(ctx, &models.BuildingModel{ID: 1, Phase: "B1", Start: 1690, End: 1700}))

	_, err := f.buildings.UpdateBuilding(ctx, 1, 1690, dtos.BuildingPatch{End: ptr(1680)})
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "end", ve.Errors[0].Field)
	assert.Equal(t, 400, apperrors.Status(err))

	_, err = f.buildings.UpdateBuilding(ctx, 1, 1690, dtos.BuildingPatch{Start: ptr(1711)})
	require.ErrorAs(t, err, &ve)

	_, err = f.buildings.UpdateBuilding(ctx, 1, 1690, dtos.BuildingPatch{Start: ptr(1711), End: ptr(1695)})
	require.ErrorAs(t, err, &ve)

	var stored models.BuildingModel
	found, err := f.gw.QueryOne(ctx, &stored, "SELECT * FROM buildings WHERE id = ?", 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1690, stored.Start)
	assert.Equal(t, 1700, stored.End)

	updated, err := f.buildings.UpdateBuilding(ctx, 1, 1690, dtos.BuildingPatch{End: ptr(1701)})
	require.NoError(t, err)
	assert.Equal(t, 1710, updated.End)

	_, err = f.buildings.UpdateBuilding(ctx, 99, 1690, dtos.BuildingPatch{End: ptr(1700)})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteBuildingCascades(t *testing.T) {
	f := newFixture(t, nil)
	seedComposite(t, f)
	ctx := context.Background()

	require.NoError(t, f.buildings.DeleteBuilding(ctx, 12))
	assert.ErrorIs(t, f.buildings.DeleteBuilding(ctx, 12), apperrors.ErrNotFound)

	var count int
	require.NoError(t, f.gw.Query(ctx, &count, "SELECT COUNT(*) FROM features"))
	assert.Zero(t, count)
}

func TestIngestIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.images.Ingest(ctx, writeUpload(t, plan), 7, services.CategoryBuilding, 1690)
	require.NoError(t, err)

	second, err := f.images.Ingest(ctx, writeUpload(t, circle), 7, services.CategoryBuilding, 1690)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	stored, err := f.store.Read(ctx, "svg/buildings/7.svg")
	require.NoError(t, err)
	assert.Contains(t, string(stored), "circle")
	assert.NotContains(t, string(stored), "path")
}
