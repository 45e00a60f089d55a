package services_test

import (
	"context"
	"fmt"
	"testing"

	"brotodesk/internal/models"
	"brotodesk/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMineCountsUnreadIndependently(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	student := h.register(t, "Asha", "asha@example.com", models.RoleStudent)
	admin := h.register(t, "Admin", "admin@example.com", models.RoleAdmin)

	for i := 0; i < 5; i++ {
		h.createComplaint(t, student, fmt.Sprintf("Complaint number %d", i), models.CategoryOther)
	}

	list, err := h.notifications.ListMine(ctx, admin, 2)
	require.NoError(t, err)
	assert.Len(t, list.Notifications, 2)
	assert.Equal(t, int64(5), list.UnreadCount)

	list, err = h.notifications.ListMine(ctx, student, 0)
	require.NoError(t, err)
	assert.Empty(t, list.Notifications)
	assert.Zero(t, list.UnreadCount)
}

func TestMarkReadIgnoresOtherUsersNotifications(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	student := h.register(t, "Asha", "asha@example.com", models.RoleStudent)
	admin1 := h.register(t, "Admin One", "admin1@example.com", models.RoleAdmin)
	admin2 := h.register(t, "Admin Two", "admin2@example.com", models.RoleAdmin)
	h.createComplaint(t, student, "Broken AC unit in Room 204", models.CategoryInfrastructure)

	mine, err := h.notifications.ListMine(ctx, admin1, 0)
	require.NoError(t, err)
	require.Len(t, mine.Notifications, 1)
	theirs, err := h.notifications.ListMine(ctx, admin2, 0)
	require.NoError(t, err)
	require.Len(t, theirs.Notifications, 1)

	n, err := h.notifications.MarkRead(ctx, admin1, services.MarkReadInput{
		NotificationIDs: []string{mine.Notifications[0].ID, theirs.Notifications[0].ID, "unknown"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	mine, err = h.notifications.ListMine(ctx, admin1, 0)
	require.NoError(t, err)
	assert.True(t, mine.Notifications[0].Read)
	assert.Zero(t, mine.UnreadCount)

	theirs, err = h.notifications.ListMine(ctx, admin2, 0)
	require.NoError(t, err)
	assert.False(t, theirs.Notifications[0].Read)
	assert.Equal(t, int64(1), theirs.UnreadCount)

	n, err = h.notifications.MarkRead(ctx, admin1, services.MarkReadInput{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListMineCapsLimit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.register(t, "Admin", "admin@example.com", models.RoleAdmin)

	notes := make([]models.Notification, 0, 120)
	for i := 0; i < 120; i++ {
		notes = append(notes, models.Notification{
			UserID:  admin.ID,
			Type:    models.NotificationNewComplaint,
			Message: fmt.Sprintf("New complaint: number %d", i),
		})
	}
	require.NoError(t, h.db.CreateInBatches(notes, 50).Error)

	list, err := h.notifications.ListMine(ctx, admin, 100000)
	require.NoError(t, err)
	assert.Len(t, list.Notifications, 100)
	assert.Equal(t, int64(120), list.UnreadCount)
}
