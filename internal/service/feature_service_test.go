package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gaoforge/dev-engine/internal/models"
	"github.com/gaoforge/dev-engine/internal/store"
)

func TestFeatureService_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	svc := NewFeatureService(store.NewFeatureRepository(db), store.NewFeatureAuditRepository(db))

	feature, err := svc.Create(CreateFeatureRequest{
		Name:       "auth",
		Scope:      models.FeatureScopeFeature,
		ScaleLevel: models.ScaleLevelMedium,
	})
	require.NoError(t, err)
	require.NotEmpty(t, feature.ID)

	fetched, err := svc.Get(feature.ID)
	require.NoError(t, err)
	require.Equal(t, "auth", fetched.Name)
	require.Equal(t, models.FeatureStatusPlanning, fetched.Status)
}

func TestFeatureService_Create_DuplicateName(t *testing.T) {
	db := newTestDB(t)
	svc := NewFeatureService(store.NewFeatureRepository(db), store.NewFeatureAuditRepository(db))

	_, err := svc.Create(CreateFeatureRequest{Name: "auth", Scope: models.FeatureScopeMVP, ScaleLevel: 1})
	require.NoError(t, err)

	_, err = svc.Create(CreateFeatureRequest{Name: "auth", Scope: models.FeatureScopeMVP, ScaleLevel: 1})
	require.ErrorIs(t, err, ErrDuplicateName)
}

func TestFeatureService_TransitionStatus_SetsCompletedAt(t *testing.T) {
	db := newTestDB(t)
	svc := NewFeatureService(store.NewFeatureRepository(db), store.NewFeatureAuditRepository(db))

	feature, err := svc.Create(CreateFeatureRequest{Name: "billing", Scope: models.FeatureScopeFeature, ScaleLevel: 2})
	require.NoError(t, err)

	updated, err := svc.TransitionStatus(feature.ID, models.FeatureStatusComplete)
	require.NoError(t, err)
	require.Equal(t, models.FeatureStatusComplete, updated.Status)
	require.NotNil(t, updated.CompletedAt)
}

func TestFeatureService_TransitionStatus_ArchivedIsTerminal(t *testing.T) {
	db := newTestDB(t)
	svc := NewFeatureService(store.NewFeatureRepository(db), store.NewFeatureAuditRepository(db))

	feature, err := svc.Create(CreateFeatureRequest{Name: "legacy", Scope: models.FeatureScopeMVP, ScaleLevel: 0})
	require.NoError(t, err)

	_, err = svc.TransitionStatus(feature.ID, models.FeatureStatusArchived)
	require.NoError(t, err)

	_, err = svc.TransitionStatus(feature.ID, models.FeatureStatusActive)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestFeatureService_AppendsAuditRowsAcrossLifecycle(t *testing.T) {
	db := newTestDB(t)
	auditRepo := store.NewFeatureAuditRepository(db)
	svc := NewFeatureService(store.NewFeatureRepository(db), auditRepo)

	feature, err := svc.Create(CreateFeatureRequest{Name: "search", Scope: models.FeatureScopeFeature, ScaleLevel: 2})
	require.NoError(t, err)
	firstID := feature.ID

	_, err = svc.TransitionStatus(feature.ID, models.FeatureStatusActive)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(feature.ID))

	rows, err := auditRepo.ListByFeature(firstID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, models.AuditOperationInsert, rows[0].Operation)
	require.Nil(t, rows[0].OldValue)
	require.NotNil(t, rows[0].NewValue)
	require.Equal(t, models.AuditOperationUpdate, rows[1].Operation)
	require.Equal(t, models.AuditOperationDelete, rows[2].Operation)
	require.NotNil(t, rows[2].OldValue)
	require.Nil(t, rows[2].NewValue)

	// A second create under the same name gets its own feature_id and
	// its own independent audit trail — delete followed by recreation
	// is recorded as two separate incarnations, never merged.
	recreated, err := svc.Create(CreateFeatureRequest{Name: "search", Scope: models.FeatureScopeFeature, ScaleLevel: 2})
	require.NoError(t, err)
	require.NotEqual(t, firstID, recreated.ID)

	secondRows, err := auditRepo.ListByFeature(recreated.ID)
	require.NoError(t, err)
	require.Len(t, secondRows, 1)
	require.Equal(t, models.AuditOperationInsert, secondRows[0].Operation)

	firstRowsAfter, err := auditRepo.ListByFeature(firstID)
	require.NoError(t, err)
	require.Len(t, firstRowsAfter, 3)
}
