package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLearning_BeforeCreate_Defaults(t *testing.T) {
	l := &Learning{Topic: "flaky CI", Category: LearningCategoryProcess, LearningText: "retry with backoff"}
	require.NoError(t, l.BeforeCreate(nil))

	assert.NotEqual(t, uuid.Nil, l.ID)
}

func TestLearning_BeforeCreate_RejectsOutOfRangeRelevance(t *testing.T) {
	l := &Learning{Topic: "x", Category: LearningCategoryTechnical, RelevanceScore: 1.5}
	require.Error(t, l.BeforeCreate(nil))
}

func TestLineage_DocumentTypeRank_Ordering(t *testing.T) {
	assert.Less(t, DocumentTypeRank("prd"), DocumentTypeRank("architecture"))
	assert.Less(t, DocumentTypeRank("architecture"), DocumentTypeRank("epic"))
	assert.Less(t, DocumentTypeRank("epic"), DocumentTypeRank("story"))
	assert.Less(t, DocumentTypeRank("story"), DocumentTypeRank("code"))
	assert.Less(t, DocumentTypeRank("code"), DocumentTypeRank("test"))
	assert.Less(t, DocumentTypeRank("test"), DocumentTypeRank("doc"))
	assert.Less(t, DocumentTypeRank("doc"), DocumentTypeRank("other"))
	assert.Equal(t, DocumentTypeRank("other"), DocumentTypeRank("nonsense"))
}
