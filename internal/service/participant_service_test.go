package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/checkin-go-api/internal/dto"
	"github.com/noah-isme/checkin-go-api/internal/models"
	"github.com/noah-isme/checkin-go-api/internal/repository"
	"github.com/noah-isme/checkin-go-api/pkg/registry"
)

type fakeRegistry struct {
	voters map[string]registry.Voter
}

func (f fakeRegistry) Lookup(ctx context.Context, idNumber string) (registry.Voter, error) {
	if voter, ok := f.voters[idNumber]; ok {
		return voter, nil
	}
	return registry.Voter{}, registry.ErrVoterNotFound
}

func newParticipantService(db *gorm.DB, lookup RegistryLookup) ParticipantService {
	return NewParticipantService(
		repository.NewParticipantRepository(db),
		repository.NewEventRepository(db),
		lookup,
		newTestValidator(),
		zerolog.Nop(),
	)
}

func seedAdminAndEvent(t *testing.T, db *gorm.DB) (models.User, models.Event) {
	t.Helper()
	admin := models.User{Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin}
	seedUser(t, db, &admin)
	event := models.Event{EventName: "Forum", Location: "Nairobi", CreatedByID: admin.ID}
	seedEvent(t, db, &event)
	return admin, event
}

func TestSearchReturnsDirectoryMatch(t *testing.T) {
	db := openTestDB(t)
	admin, event := seedAdminAndEvent(t, db)

	participant := models.Participant{IDNumber: "12345678", EventID: &event.ID, Name: "Jane"}
	seedParticipant(t, db, &participant)

	svc := newParticipantService(db, nil)

	found, err := svc.Search(context.Background(), admin, dto.ParticipantSearchRequest{
		EventID:  event.ID,
		IDNumber: " 12345678 ",
	})
	require.NoError(t, err)
	require.Equal(t, participant.ID, found.ID)
	require.Equal(t, "Jane", found.Name)
}

func TestSearchFallsBackToRegistry(t *testing.T) {
	db := openTestDB(t)
	admin, event := seedAdminAndEvent(t, db)

	lookup := fakeRegistry{voters: map[string]registry.Voter{
		"87654321": {
			IDNumber:    "87654321",
			Name:        "John Otieno",
			DateOfBirth: "1990-05-20",
			Sex:         "M",
			County:      "Kisumu",
		},
	}}
	svc := newParticipantService(db, lookup)

	found, err := svc.Search(context.Background(), admin, dto.ParticipantSearchRequest{
		EventID:  event.ID,
		IDNumber: "87654321",
	})
	require.NoError(t, err)
	require.Equal(t, "John Otieno", found.Name)
	require.True(t, found.IsRegisteredVoter)
	require.NotNil(t, found.DateOfBirth)
	require.Equal(t, "1990-05-20", found.DateOfBirth.String())

	// The registry match is persisted in the directory.
	var stored models.Participant
	require.NoError(t, db.Where("id_number = ?", "87654321").First(&stored).Error)
	require.True(t, stored.IsRegisteredVoter)

	_, err = svc.Search(context.Background(), admin, dto.ParticipantSearchRequest{
		EventID:  event.ID,
		IDNumber: "00000000",
	})
	require.ErrorIs(t, err, ErrRegistryMiss)
}

func TestSearchWithoutRegistryStaysMiss(t *testing.T) {
	db := openTestDB(t)
	admin, event := seedAdminAndEvent(t, db)

	svc := newParticipantService(db, nil)

	_, err := svc.Search(context.Background(), admin, dto.ParticipantSearchRequest{
		EventID:  event.ID,
		IDNumber: "99999999",
	})
	require.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestRegisterSanitizesAndUpserts(t *testing.T) {
	db := openTestDB(t)
	admin, event := seedAdminAndEvent(t, db)

	svc := newParticipantService(db, nil)
	ctx := context.Background()

	created, err := svc.Register(ctx, admin, dto.ParticipantCreateRequest{
		EventID:     event.ID,
		IDNumber:    "11112222",
		Name:        "<script>alert(1)</script>Mary Achieng",
		DateOfBirth: stringPointer("1988-01-30"),
		Sex:         "F",
		County:      stringPointer("Nairobi"),
	})
	require.NoError(t, err)
	require.Equal(t, "Mary Achieng", created.Name)
	require.False(t, created.IsInvited)

	// Same id number for the same event merges instead of duplicating.
	updated, err := svc.Register(ctx, admin, dto.ParticipantCreateRequest{
		EventID:   event.ID,
		IDNumber:  "11112222",
		Name:      "Mary A. Achieng",
		Ward:      stringPointer("Kibra"),
		IsInvited: true,
	})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, "Mary A. Achieng", updated.Name)
	require.True(t, updated.IsInvited)
	require.NotNil(t, updated.County)
	require.Equal(t, "Nairobi", *updated.County)

	var count int64
	require.NoError(t, db.Model(&models.Participant{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestRegisterNeverRevokesFlags(t *testing.T) {
	db := openTestDB(t)
	admin, event := seedAdminAndEvent(t, db)

	registered := models.Participant{
		IDNumber:          "33334444",
		EventID:           &event.ID,
		Name:              "Paul",
		IsRegisteredVoter: true,
	}
	seedParticipant(t, db, &registered)

	svc := newParticipantService(db, nil)

	updated, err := svc.Register(context.Background(), admin, dto.ParticipantCreateRequest{
		EventID:  event.ID,
		IDNumber: "33334444",
		Name:     "Paul Kiprono",
	})
	require.NoError(t, err)
	require.True(t, updated.IsRegisteredVoter)
}

func csvUpload(t *testing.T, contents string) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "participants.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(contents))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func TestImportParsesCSV(t *testing.T) {
	db := openTestDB(t)
	admin, event := seedAdminAndEvent(t, db)

	existing := models.Participant{IDNumber: "55556666", EventID: &event.ID, Name: "Old Name"}
	seedParticipant(t, db, &existing)

	svc := newParticipantService(db, nil)

	file := csvUpload(t, "id_number,name,date_of_birth,sex,county,constituency,ward,polling_center,group\n"+
		"55556666,New Name,1975-02-10,F,Nakuru,Naivasha,Biashara,Town Hall,Group A\n"+
		"77778888,Fresh Entry,2000-12-01,M,Nakuru,,,,\n"+
		",Missing ID,,,,,,,\n")

	summary, err := svc.Import(context.Background(), admin, event.ID, file)
	require.NoError(t, err)
	require.NotEmpty(t, summary.BatchID)
	require.Equal(t, 1, summary.Imported)
	require.Equal(t, 1, summary.Updated)
	require.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.Errors, 1)

	var updated models.Participant
	require.NoError(t, db.Where("id_number = ?", "55556666").First(&updated).Error)
	require.Equal(t, "New Name", updated.Name)
	require.True(t, updated.IsInvited)

	var fresh models.Participant
	require.NoError(t, db.Where("id_number = ?", "77778888").First(&fresh).Error)
	require.True(t, fresh.IsInvited)
	require.NotNil(t, fresh.County)
}

func TestImportRequiresOwnership(t *testing.T) {
	db := openTestDB(t)
	_, event := seedAdminAndEvent(t, db)

	other := models.User{Name: "Other", Email: "other@example.com", Role: models.RoleAdmin}
	seedUser(t, db, &other)

	svc := newParticipantService(db, nil)

	file := csvUpload(t, "99990000,Someone,,,,,,,\n")
	_, err := svc.Import(context.Background(), other, event.ID, file)
	require.ErrorIs(t, err, ErrAccessDenied)
}
