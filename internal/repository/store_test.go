package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgaillard/scandoc/constants"
	"github.com/mgaillard/scandoc/internal/entity"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "extractions.db")
	s, err := Open(context.Background(), dsn, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleExtraction(fileName string, createdAt time.Time) *entity.Extraction {
	return &entity.Extraction{
		ID:           uuid.New(),
		FileName:     fileName,
		SourcePath:   "/docs/" + fileName,
		Format:       constants.IMAGE,
		Status:       constants.JobStatusDone,
		Title:        "Chaise de bureau ergonomique",
		Reference:    "PROD-2024-789",
		Price:        "89.99",
		Quantity:     "5",
		Notes:        "Livraison sous 15 jours",
		Confidence:   67,
		ProcessingMs: 420,
		Message:      "document processed",
		CreatedAt:    createdAt,
	}
}

func TestStoreSaveAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	saved := sampleExtraction("facture.png", time.Now().UTC().Truncate(time.Second))
	require.NoError(t, s.Save(ctx, saved))

	got, err := s.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, saved.ID, got[0].ID)
	assert.Equal(t, "facture.png", got[0].FileName)
	assert.Equal(t, constants.IMAGE, got[0].Format)
	assert.Equal(t, constants.JobStatusDone, got[0].Status)
	assert.Equal(t, "PROD-2024-789", got[0].Reference)
	assert.Equal(t, "89.99", got[0].Price)
	assert.Equal(t, 67, got[0].Confidence)
	assert.Equal(t, int64(420), got[0].ProcessingMs)
}

func TestStoreListRecentOrderAndLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.Save(ctx, sampleExtraction("ancien.png", base.Add(-2*time.Hour))))
	require.NoError(t, s.Save(ctx, sampleExtraction("recent.png", base)))
	require.NoError(t, s.Save(ctx, sampleExtraction("milieu.png", base.Add(-time.Hour))))

	got, err := s.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "recent.png", got[0].FileName)
	assert.Equal(t, "milieu.png", got[1].FileName)
}

func TestStoreListRecentUnbounded(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 120; i++ {
		e := sampleExtraction("doc.png", base.Add(time.Duration(i)*time.Second))
		require.NoError(t, s.Save(ctx, e))
	}

	got, err := s.ListRecent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, got, 120, "zero limit returns every row")
}

func TestStoreListEmpty(t *testing.T) {
	s := openTestStore(t)

	got, err := s.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStoreFailedRow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	e := &entity.Extraction{
		ID:         uuid.New(),
		FileName:   "illisible.png",
		SourcePath: "/docs/illisible.png",
		Format:     constants.IMAGE,
		Status:     constants.JobStatusFailed,
		Message:    "ENGINE: tesseract exited 1",
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, s.Save(ctx, e))

	got, err := s.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, constants.JobStatusFailed, got[0].Status)
	assert.Empty(t, got[0].Title)
}
