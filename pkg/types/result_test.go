package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validHit() ScoredHit {
	return ScoredHit{
		DocumentID:     0,
		SourceID:       "a.txt#0",
		Rank:           1,
		LexicalScore:   4.2,
		CompositeScore: 0.87,
		Variant:        "电力现货",
		Source:         "a.txt",
		Content:        "现货市场价格",
	}
}

func TestScoredHitValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		h := validHit()
		assert.NoError(t, h.Validate())
	})

	t.Run("negative document id", func(t *testing.T) {
		h := validHit()
		h.DocumentID = -1
		assert.ErrorIs(t, h.Validate(), ErrInvalidDocumentID)
	})

	t.Run("rank below one", func(t *testing.T) {
		h := validHit()
		h.Rank = 0
		assert.ErrorIs(t, h.Validate(), ErrInvalidRank)
	})

	t.Run("composite out of range", func(t *testing.T) {
		h := validHit()
		h.CompositeScore = 1.2
		assert.ErrorIs(t, h.Validate(), ErrInvalidCompositeScore)
	})

	t.Run("empty content", func(t *testing.T) {
		h := validHit()
		h.Content = ""
		assert.ErrorIs(t, h.Validate(), ErrEmptyContent)
	})
}

func TestScoredHitJSON(t *testing.T) {
	t.Run("nil vector score omitted", func(t *testing.T) {
		data, err := json.Marshal(validHit())
		require.NoError(t, err)
		assert.NotContains(t, string(data), "vector_score")
	})

	t.Run("vector score survives round trip", func(t *testing.T) {
		h := validHit()
		v := 0.73
		h.VectorScore = &v

		data, err := json.Marshal(h)
		require.NoError(t, err)

		var back ScoredHit
		require.NoError(t, json.Unmarshal(data, &back))
		require.NotNil(t, back.VectorScore)
		assert.Equal(t, 0.73, *back.VectorScore)
	})
}

func TestAnalyticsRecordValidate(t *testing.T) {
	rec := AnalyticsRecord{Query: "现货", Method: MethodCache, ResultCount: 2}
	assert.NoError(t, rec.Validate())

	rec.Method = "guesswork"
	assert.ErrorIs(t, rec.Validate(), ErrUnknownMethod)

	rec.Method = MethodLexical
	rec.ResultCount = -1
	assert.ErrorIs(t, rec.Validate(), ErrInvalidResultCount)

	rec.ResultCount = 0
	rec.Query = ""
	assert.ErrorIs(t, rec.Validate(), ErrEmptyQuery)
}
