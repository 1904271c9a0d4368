package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/turtacn/meisai-checker/internal/domain/review"
	"github.com/turtacn/meisai-checker/pkg/errors"
)

func TestMemoryHistory_SaveGetRecent(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory(2)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, h.Save(ctx, &domain.Run{ID: "a", StartedAt: base}))
	require.NoError(t, h.Save(ctx, &domain.Run{ID: "b", StartedAt: base.Add(time.Minute)}))
	require.NoError(t, h.Save(ctx, &domain.Run{ID: "c", StartedAt: base.Add(2 * time.Minute)}))

	_, err := h.Get(ctx, "a")
	assert.True(t, errors.IsCode(err, errors.ErrCodeReviewNotFound), "oldest run evicted")

	runs, err := h.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)

	runs, err = h.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestMemoryHistory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory(0)
	run := &domain.Run{ID: "x", Document: "a.docx"}
	require.NoError(t, h.Save(ctx, run))
	run.Document = "changed"

	got, err := h.Get(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "a.docx", got.Document)
}

func TestMemoryHistory_RejectsEmptyID(t *testing.T) {
	err := NewMemoryHistory(1).Save(context.Background(), &domain.Run{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

//Personal.AI order the ending
