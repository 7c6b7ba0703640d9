package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/checkin-go-api/internal/models"
)

// openTestDB opens a per-test in-memory database with the same error
// translation the real connection uses, so unique-index violations surface
// as gorm.ErrDuplicatedKey here too.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Event{}, &models.Participant{}, &models.CheckInLog{}))
	return db
}

func newTestValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func seedUser(t *testing.T, db *gorm.DB, user *models.User) {
	t.Helper()
	require.NoError(t, db.Create(user).Error)
}

func seedEvent(t *testing.T, db *gorm.DB, event *models.Event) {
	t.Helper()
	require.NoError(t, db.Create(event).Error)
}

func seedParticipant(t *testing.T, db *gorm.DB, participant *models.Participant) {
	t.Helper()
	require.NoError(t, db.Create(participant).Error)
}

func stringPointer(v string) *string {
	return &v
}
