package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kefystore-backend/internal/models"
)

func TestNotifyAndRead(t *testing.T) {
	db := newTestDB(t)
	user := seedClient(t, db)
	notifications := NewNotificationService(db, nil)

	url := "/orders/CMD-1"
	created, err := notifications.Notify(user.ID, models.NotificationTypeOrder,
		"Commande CMD-1", "Votre commande CMD-1 est maintenant : confirmed", &url)
	require.NoError(t, err)
	assert.False(t, created.IsRead)

	count, err := notifications.UnreadCount(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	listed, err := notifications.ListForUser(user.ID, true, 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.NotNil(t, listed[0].ActionURL)
	assert.Equal(t, url, *listed[0].ActionURL)

	require.NoError(t, notifications.MarkRead(created.ID, user.ID))

	count, err = notifications.UnreadCount(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// The unread filter hides it, the full listing keeps it
	listed, err = notifications.ListForUser(user.ID, true, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, listed)

	listed, err = notifications.ListForUser(user.ID, false, 10, 0)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestMarkReadIsScopedToOwner(t *testing.T) {
	db := newTestDB(t)
	owner := seedClient(t, db)
	other := seedClient(t, db)
	notifications := NewNotificationService(db, nil)

	created, err := notifications.Notify(owner.ID, models.NotificationTypeSystem,
		"Bienvenue", "Bienvenue sur KefyStore", nil)
	require.NoError(t, err)

	assert.Error(t, notifications.MarkRead(created.ID, other.ID))
}

func TestDeleteNotification(t *testing.T) {
	db := newTestDB(t)
	owner := seedClient(t, db)
	other := seedClient(t, db)
	notifications := NewNotificationService(db, nil)

	created, err := notifications.Notify(owner.ID, models.NotificationTypeSystem,
		"Bienvenue", "Bienvenue sur KefyStore", nil)
	require.NoError(t, err)

	assert.ErrorContains(t, notifications.Delete(created.ID, other.ID), "not found")
	require.NoError(t, notifications.Delete(created.ID, owner.ID))

	listed, err := notifications.ListForUser(owner.ID, false, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, listed)

	assert.ErrorContains(t, notifications.Delete(created.ID, owner.ID), "not found")
}

func TestMarkAllRead(t *testing.T) {
	db := newTestDB(t)
	user := seedClient(t, db)
	notifications := NewNotificationService(db, nil)

	for i := 0; i < 3; i++ {
		_, err := notifications.Notify(user.ID, models.NotificationTypeSystem,
			"Promo", "Soldes du jour", nil)
		require.NoError(t, err)
	}

	updated, err := notifications.MarkAllRead(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated)

	updated, err = notifications.MarkAllRead(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)
}

func TestNotifyOrderStatusQueuesEmail(t *testing.T) {
	db := newTestDB(t)
	user := seedClient(t, db)
	notifications := NewNotificationService(db, nil)

	notifications.NotifyOrderStatus(user.ID, user.Email, "CMD-42", models.OrderStatusConfirmed)

	count, err := notifications.UnreadCount(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var queued int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM email_queue WHERE recipient = ? AND status = ?",
		user.Email, models.QueueStatusPending,
	).Scan(&queued))
	assert.Equal(t, 1, queued)
}

func TestQueueSMS(t *testing.T) {
	db := newTestDB(t)
	notifications := NewNotificationService(db, nil)

	require.NoError(t, notifications.QueueSMS("+2250701020304", "Votre code est 123456"))

	var queued int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM sms_queue WHERE status = ?", models.QueueStatusPending,
	).Scan(&queued))
	assert.Equal(t, 1, queued)
}
