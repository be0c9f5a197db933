package notification

import (
	"context"
	"net/http"
	"testing"
	"time"

	"pricehive_backend/internal/common"
	"pricehive_backend/internal/platform/database/dbtest"
	"pricehive_backend/internal/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGORMRepository_Inbox(t *testing.T) {
	db := dbtest.New(t, &Notification{})
	repo := NewGORMRepository(db)
	ctx := context.Background()
	owner, stranger := uuid.New(), uuid.New()

	var first Notification
	for i, msg := range []string{"one", "two", "three"} {
		n := Notification{
			UserID:    owner,
			Title:     "Price Alert",
			Message:   msg,
			Type:      shared.NotificationTypePriceAlert,
			CreatedAt: time.Date(2024, 5, 1, i, 0, 0, 0, time.UTC),
		}
		require.NoError(t, repo.Create(ctx, &n))
		if i == 0 {
			first = n
		}
	}

	list, pagination, err := repo.GetByUserID(ctx, owner, 1, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "three", list[0].Message)
	assert.Equal(t, int64(3), pagination.TotalItems)

	unread, err := repo.CountUnread(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	err = repo.MarkAsRead(ctx, first.ID, stranger)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	require.NoError(t, repo.MarkAsRead(ctx, first.ID, owner))
	require.NoError(t, repo.MarkAsRead(ctx, first.ID, owner), "marking twice is harmless")

	updated, err := repo.MarkAllAsRead(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	unread, err = repo.CountUnread(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestGORMRepository_DeleteReadBefore(t *testing.T) {
	db := dbtest.New(t, &Notification{})
	repo := NewGORMRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	old := time.Now().UTC().AddDate(0, 0, -120)

	for _, n := range []Notification{
		{UserID: userID, Title: "a", Message: "old read", Type: shared.NotificationTypePriceAlert, Read: true, CreatedAt: old},
		{UserID: userID, Title: "b", Message: "old unread", Type: shared.NotificationTypePriceAlert, CreatedAt: old},
		{UserID: userID, Title: "c", Message: "new read", Type: shared.NotificationTypePriceAlert, Read: true, CreatedAt: time.Now().UTC()},
	} {
		n := n
		require.NoError(t, repo.Create(ctx, &n))
	}

	deleted, err := repo.DeleteReadBefore(ctx, time.Now().UTC().AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var left int64
	require.NoError(t, db.Model(&Notification{}).Count(&left).Error)
	assert.Equal(t, int64(2), left)
}
