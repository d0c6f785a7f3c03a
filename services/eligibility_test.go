package services

import (
	"testing"
	"time"

	"daily-rewards-system/models"
	"daily-rewards-system/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB, wallet string, loginAt time.Time) models.User {
	t.Helper()
	user := models.User{
		ID:             uuid.NewString(),
		ExternalUserID: uuid.NewString(),
		Username:       "user-" + uuid.NewString()[:8],
		LastLoginAt:    &loginAt,
	}
	if wallet != "" {
		user.WalletAddress = &wallet
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestSelectEligiblePeriodWindow(t *testing.T) {
	db := testutil.NewTestDB(t, &models.User{}, &models.AwardLog{})
	svc := NewEligibilityService(db)

	inPeriod := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	beforePeriod := time.Date(2024, 2, 28, 23, 0, 0, 0, time.UTC)

	aaa := seedUser(t, db, "0xAAA0000000000000000000000000000000000001", inPeriod)
	seedUser(t, db, "0xBBB0000000000000000000000000000000000002", beforePeriod)

	eligible, err := svc.SelectEligible("2024-03-01", "daily-login")
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	require.Equal(t, aaa.ID, eligible[0].ID)
}

func TestSelectEligibleExcludesMissingWallet(t *testing.T) {
	db := testutil.NewTestDB(t, &models.User{}, &models.AwardLog{})
	svc := NewEligibilityService(db)

	loginAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	seedUser(t, db, "", loginAt)

	eligible, err := svc.SelectEligible("2024-03-01", "daily-login")
	require.NoError(t, err)
	require.Empty(t, eligible)
}

func TestSelectEligibleExcludesBanned(t *testing.T) {
	db := testutil.NewTestDB(t, &models.User{}, &models.AwardLog{})
	svc := NewEligibilityService(db)

	loginAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	banned := seedUser(t, db, "0xccc0000000000000000000000000000000000003", loginAt)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", banned.ID).Update("is_banned", true).Error)

	eligible, err := svc.SelectEligible("2024-03-01", "daily-login")
	require.NoError(t, err)
	require.Empty(t, eligible)
}

func TestSelectEligibleExcludesConfirmedAwards(t *testing.T) {
	db := testutil.NewTestDB(t, &models.User{}, &models.AwardLog{})
	svc := NewEligibilityService(db)
	logSvc := NewAwardLogService(db)

	loginAt := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	// Mixed-case wallet on the user row; the log stores lowercase. The
	// exclusion must still match.
	seedUser(t, db, "0xDDD0000000000000000000000000000000000004", loginAt)

	require.NoError(t, logSvc.LogAttempt(&models.AwardLog{
		WalletAddress: "0xDDD0000000000000000000000000000000000004",
		ActionKind:    "daily-login",
		PeriodKey:     "2024-03-01",
		ActionID:      DeriveActionID("0xDDD0000000000000000000000000000000000004", "daily-login", "2024-03-01").Hex(),
		Amount:        10,
		Confirmed:     true,
	}))

	eligible, err := svc.SelectEligible("2024-03-01", "daily-login")
	require.NoError(t, err)
	require.Empty(t, eligible)

	// A confirmed award for one action kind does not exclude another kind.
	eligibleOther, err := svc.SelectEligible("2024-03-01", "weekly-streak")
	require.NoError(t, err)
	require.Len(t, eligibleOther, 1)
}

func TestSelectEligibleKeepsSubjectsWithOnlyFailedAttempts(t *testing.T) {
	db := testutil.NewTestDB(t, &models.User{}, &models.AwardLog{})
	svc := NewEligibilityService(db)
	logSvc := NewAwardLogService(db)

	loginAt := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	seedUser(t, db, "0xeee0000000000000000000000000000000000005", loginAt)

	require.NoError(t, logSvc.LogAttempt(&models.AwardLog{
		WalletAddress: "0xeee0000000000000000000000000000000000005",
		ActionKind:    "daily-login",
		PeriodKey:     "2024-03-01",
		ActionID:      DeriveActionID("0xeee0000000000000000000000000000000000005", "daily-login", "2024-03-01").Hex(),
		Amount:        10,
		ErrorMessage:  "submit award: connection refused",
	}))

	eligible, err := svc.SelectEligible("2024-03-01", "daily-login")
	require.NoError(t, err)
	require.Len(t, eligible, 1, "a failed attempt must leave the subject eligible for retry")
}

func TestSelectEligibleInvalidPeriodKey(t *testing.T) {
	db := testutil.NewTestDB(t, &models.User{}, &models.AwardLog{})
	svc := NewEligibilityService(db)

	_, err := svc.SelectEligible("03/01/2024", "daily-login")
	require.Error(t, err)
}
