package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kefystore-backend/internal/models"
)

func TestPopupAcknowledgeOnce(t *testing.T) {
	db := newTestDB(t)
	user := seedClient(t, db)
	popups := NewPopupService(db)

	popup, err := popups.CreatePopup(&models.PopupCreation{
		Title: "Cookies",
		Body:  "Nous utilisons des cookies pour améliorer votre expérience.",
		Kind:  models.PopupKindConsent,
	})
	require.NoError(t, err)

	visible, err := popups.ActivePopupsForUser(user.ID)
	require.NoError(t, err)
	require.Len(t, visible, 1)

	ack, err := popups.Acknowledge(popup.ID, user.ID, models.PopupActionAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.PopupActionAccepted, ack.Action)

	// The response is recorded once and the popup disappears for the user
	_, err = popups.Acknowledge(popup.ID, user.ID, models.PopupActionDeclined)
	assert.ErrorContains(t, err, "already acknowledged")

	visible, err = popups.ActivePopupsForUser(user.ID)
	require.NoError(t, err)
	assert.Empty(t, visible)

	// Anonymous visitors still see it
	anonymous, err := popups.ActivePopups()
	require.NoError(t, err)
	assert.Len(t, anonymous, 1)
}

func TestPopupWindow(t *testing.T) {
	db := newTestDB(t)
	popups := NewPopupService(db)

	past := time.Now().Add(-48 * time.Hour)
	yesterday := time.Now().Add(-24 * time.Hour)
	tomorrow := time.Now().Add(24 * time.Hour)

	_, err := popups.CreatePopup(&models.PopupCreation{
		Title:    "Promo terminée",
		Body:     "Soldes de la semaine dernière",
		Kind:     models.PopupKindPromo,
		StartsAt: &past,
		EndsAt:   &yesterday,
	})
	require.NoError(t, err)

	_, err = popups.CreatePopup(&models.PopupCreation{
		Title:    "Promo à venir",
		Body:     "Soldes de demain",
		Kind:     models.PopupKindPromo,
		StartsAt: &tomorrow,
	})
	require.NoError(t, err)

	current, err := popups.CreatePopup(&models.PopupCreation{
		Title:    "Promo en cours",
		Body:     "Soldes du jour",
		Kind:     models.PopupKindPromo,
		StartsAt: &yesterday,
		EndsAt:   &tomorrow,
	})
	require.NoError(t, err)

	visible, err := popups.ActivePopups()
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, current.ID, visible[0].ID)
}

func TestPopupEndsBeforeStartsRejected(t *testing.T) {
	db := newTestDB(t)
	popups := NewPopupService(db)

	start := time.Now().Add(24 * time.Hour)
	end := time.Now()

	_, err := popups.CreatePopup(&models.PopupCreation{
		Title:    "Impossible",
		Body:     "Fin avant le début",
		Kind:     models.PopupKindInfo,
		StartsAt: &start,
		EndsAt:   &end,
	})
	assert.ErrorContains(t, err, "cannot end before it starts")
}

func TestDeactivatePopup(t *testing.T) {
	db := newTestDB(t)
	popups := NewPopupService(db)

	popup, err := popups.CreatePopup(&models.PopupCreation{
		Title: "Info",
		Body:  "Livraison gratuite ce week-end",
		Kind:  models.PopupKindInfo,
	})
	require.NoError(t, err)

	require.NoError(t, popups.DeactivatePopup(popup.ID))

	visible, err := popups.ActivePopups()
	require.NoError(t, err)
	assert.Empty(t, visible)

	assert.Error(t, popups.DeactivatePopup("missing-popup"))
}
