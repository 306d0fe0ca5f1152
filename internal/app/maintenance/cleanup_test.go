package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	iauth "github.com/venturelink/venturelink/internal/auth"
	"github.com/venturelink/venturelink/internal/database/testutil"
	"github.com/venturelink/venturelink/internal/models"
	"github.com/venturelink/venturelink/internal/realtime"
	"github.com/venturelink/venturelink/internal/services"
)

func TestRunOncePurgesExpiredSessionsAndOldNotifications(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	user := models.User{
		ID:       "user-c1",
		Email:    "user-c1@example.com",
		Password: "hashed",
		Name:     "Cleanup",
		Role:     models.RoleInvestor,
		IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)

	now := time.Now().UTC()

	// One live and one expired session.
	require.NoError(t, db.Create(&models.Session{
		UserID:       user.ID,
		RefreshToken: "live-token",
		ExpiresAt:    now.Add(time.Hour),
		LastUsedAt:   now,
	}).Error)
	require.NoError(t, db.Create(&models.Session{
		UserID:       user.ID,
		RefreshToken: "stale-token",
		ExpiresAt:    now.Add(-time.Hour),
		LastUsedAt:   now.Add(-time.Hour),
	}).Error)

	jwt, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "test-secret"})
	require.NoError(t, err)
	sessions, err := iauth.NewSessionService(db, jwt, iauth.SessionConfig{})
	require.NoError(t, err)

	notifications, err := services.NewNotificationService(db, realtime.NewHub())
	require.NoError(t, err)

	ctx := context.Background()
	old, err := notifications.Notify(ctx, services.NotifyInput{
		RecipientID: user.ID,
		Type:        models.NotifyNewMessage,
		Message:     "ancient read notification",
	})
	require.NoError(t, err)
	_, err = notifications.MarkRead(ctx, user.ID, old.ID)
	require.NoError(t, err)

	_, err = notifications.Notify(ctx, services.NotifyInput{
		RecipientID: user.ID,
		Type:        models.NotifyNewMessage,
		Message:     "still unread",
	})
	require.NoError(t, err)

	// Pretend today is far in the future so the read notification ages out.
	cleaner := NewCleaner(sessions, notifications,
		WithNow(func() time.Time { return now.AddDate(1, 0, 0) }),
		WithNotificationRetentionDays(30),
	)
	require.NoError(t, cleaner.RunOnce(ctx))

	var sessionCount int64
	require.NoError(t, db.Model(&models.Session{}).Count(&sessionCount).Error)
	require.EqualValues(t, 1, sessionCount)

	var notificationCount int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&notificationCount).Error)
	require.EqualValues(t, 1, notificationCount)
}

func TestStartWithNoJobsIsNoop(t *testing.T) {
	cleaner := NewCleaner(nil, nil)
	require.NoError(t, cleaner.Start())
	<-cleaner.Stop().Done()
}
