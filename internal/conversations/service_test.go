package conversations

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ejidepharmacy/pharmabot-backend/pkg/clock"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/db/dbtest"
	pkgerrors "github.com/ejidepharmacy/pharmabot-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecentReturnsLatestTenNewestFirst(t *testing.T) {
	now := time.Date(2025, 10, 10, 12, 0, 0, 0, time.UTC)
	svc, err := NewService(NewRepository(dbtest.Open(t)), clock.Fixed{At: now})
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		require.NoError(t, svc.Log(ctx, "234801", fmt.Sprintf("msg %d", i), false, now.Add(time.Duration(i)*time.Minute)))
	}
	require.NoError(t, svc.Log(ctx, "234999", "someone else", false, now))

	rows, err := svc.Recent(ctx, "234801")
	require.NoError(t, err)
	require.Len(t, rows, HistoryLimit)
	assert.Equal(t, "msg 11", rows[0].Message)
	assert.Equal(t, "msg 2", rows[len(rows)-1].Message)
}

func TestLogStampsMissingTimeAndValidates(t *testing.T) {
	now := time.Date(2025, 10, 10, 12, 0, 0, 0, time.UTC)
	svc, err := NewService(NewRepository(dbtest.Open(t)), clock.Fixed{At: now})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, svc.Log(ctx, "admin", "weekly report", true, time.Time{}))
	rows, err := svc.Recent(ctx, "admin")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].IsAdmin)
	assert.True(t, rows[0].CreatedAt.Equal(now))

	err = svc.Log(ctx, " ", "hi", false, now)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
