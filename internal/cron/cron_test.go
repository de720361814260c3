package cron

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mailfleet/mailfleet/config"
	"github.com/mailfleet/mailfleet/internal/enum"
	"github.com/mailfleet/mailfleet/internal/logger"
	"github.com/mailfleet/mailfleet/internal/models"
	"github.com/mailfleet/mailfleet/internal/repository"
	"github.com/mailfleet/mailfleet/internal/utils"
)

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

func testConfig() *config.Config {
	return &config.Config{
		CronConfig: &config.CronConfig{
			HeartbeatSchedule:        "0 * * * * *",
			ReconcilePendingSchedule: "0 */10 * * * *",
			StalePendingMinutes:      30,
		},
	}
}

func testRepositories(t *testing.T) (*gorm.DB, *repository.Repositories) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:crontest?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repository.MigrateDB(db))
	return db, repository.InitRepositories(db)
}

func TestNewCronManager(t *testing.T) {
	cfg := testConfig()
	log := getLogger()
	_, repos := testRepositories(t)

	cm := NewCronManager(cfg, log, repos)

	assert.NotNil(t, cm)
	assert.Equal(t, cfg, cm.cfg)
	assert.Equal(t, log, cm.log)
	assert.NotNil(t, cm.jobIDs)
}

func TestCronManager_StartRegistersJobs(t *testing.T) {
	_, repos := testRepositories(t)
	cm := NewCronManager(testConfig(), getLogger(), repos)

	cm.Start()
	defer cm.Stop()

	assert.Contains(t, cm.jobIDs, "heartbeat")
	assert.Contains(t, cm.jobIDs, "reconcile_pending")
	assert.Len(t, cm.cron.Entries(), 2)
}

func TestCronManager_ReconcileStalePending(t *testing.T) {
	db, repos := testRepositories(t)
	cm := NewCronManager(testConfig(), getLogger(), repos)
	ctx := context.Background()

	stale := &models.Email{
		UserID:    "user_1",
		CompanyID: "cmp_1",
		ToAddress: "someone@example.com",
		Status:    enum.EmailStatusPending,
	}
	require.NoError(t, repos.EmailRepository.Create(ctx, stale))
	require.NoError(t, db.Model(&models.Email{}).Where("id = ?", stale.ID).
		Update("created_at", utils.Now().Add(-time.Hour)).Error)

	fresh := &models.Email{
		UserID:    "user_1",
		CompanyID: "cmp_1",
		ToAddress: "someone-else@example.com",
		Status:    enum.EmailStatusPending,
	}
	require.NoError(t, repos.EmailRepository.Create(ctx, fresh))

	cm.reconcileStalePending()

	stored, err := repos.EmailRepository.GetByID(ctx, "user_1", stale.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.EmailStatusFailed, stored.Status)
	assert.Contains(t, stored.ErrorMessage, "still pending after 30 minutes")

	stored, err = repos.EmailRepository.GetByID(ctx, "user_1", fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.EmailStatusPending, stored.Status)
}
