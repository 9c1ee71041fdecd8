package service

import (
	"testing"

	"grant-navi/internal/models"

	"github.com/stretchr/testify/assert"
)

func testCategoryIndex() *CategoryIndex {
	return NewCategoryIndex([]models.Category{
		{Code: "it_dx", Name: "IT導入・DX化支援", SortOrder: 10},
		{Code: "sogyo", Name: "創業・スタートアップ支援", SortOrder: 40},
		{Code: "shoene", Name: "省エネ・環境対策", SortOrder: 70},
	})
}

func TestCategoryIndex_KeywordsFor(t *testing.T) {
	idx := testCategoryIndex()

	t.Run("lead segment plus synonyms", func(t *testing.T) {
		keywords := idx.KeywordsFor([]string{"it_dx"})
		assert.Equal(t, []string{"IT導入", "IT", "DX", "デジタル"}, keywords)
	})

	t.Run("multiple codes keep order and dedupe", func(t *testing.T) {
		keywords := idx.KeywordsFor([]string{"it_dx", "sogyo", "it_dx"})
		assert.Equal(t, []string{"IT導入", "IT", "DX", "デジタル", "創業", "起業", "開業"}, keywords)
	})

	t.Run("unknown code without synonyms yields nothing", func(t *testing.T) {
		assert.Empty(t, idx.KeywordsFor([]string{"does_not_exist"}))
	})

	t.Run("synonyms apply even when the master misses the code", func(t *testing.T) {
		idx := NewCategoryIndex(nil)
		keywords := idx.KeywordsFor([]string{"shoene"})
		assert.Equal(t, []string{"省エネ", "環境", "脱炭素"}, keywords)
	})
}

func TestCategoryIndex_Name(t *testing.T) {
	idx := testCategoryIndex()
	assert.Equal(t, "IT導入・DX化支援", idx.Name("it_dx"))
	assert.Empty(t, idx.Name("missing"))
}
