package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	sharedBus "github.com/davicafu/maidlink/internal/shared/platform/bus"
	"github.com/davicafu/maidlink/internal/sponsor/domain"
	"github.com/davicafu/maidlink/tests/mocks"
)

func newSponsorService(repo *mocks.InMemoryProfileRepo, outbox *mocks.InMemoryOutboxRepo) *SponsorService {
	bus := sharedBus.NewEventBus(zap.NewNop(), sharedBus.WithOutbox(outbox))
	return NewSponsorService(repo, bus, zap.NewNop())
}

func completeProfile(t *testing.T, service *SponsorService, id uuid.UUID) {
	t.Helper()
	_, err := service.UpdateBasicInfo(context.Background(), id, "Familia Al-Rashid", "+96599111222", "KW", "Kuwait City", "Block 4")
	assert.NoError(t, err)
	_, err = service.UpdateHouseholdInfo(context.Background(), id, 5)
	assert.NoError(t, err)
	_, err = service.UploadDocument(context.Background(), id, domain.DocIDDocument, "https://cdn.example.com/id.pdf")
	assert.NoError(t, err)
	_, err = service.UploadDocument(context.Background(), id, domain.DocProofOfResidence, "https://cdn.example.com/res.pdf")
	assert.NoError(t, err)
}

func TestCreateProfile_Success(t *testing.T) {
	repo := mocks.NewInMemoryProfileRepo()
	outbox := mocks.NewInMemoryOutboxRepo()
	service := newSponsorService(repo, outbox)

	profile, err := service.CreateProfile(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, profile.Status)

	// ✅ El evento quedó persistido en el outbox al publicarse
	assert.Len(t, outbox.Records, 1)
	assert.Equal(t, domain.ProfileCreated, outbox.Records[0].EventType)
	assert.Equal(t, profile.ID.String(), outbox.Records[0].AggregateID)
}

func TestCreateProfile_DuplicateUser(t *testing.T) {
	repo := mocks.NewInMemoryProfileRepo()
	service := newSponsorService(repo, mocks.NewInMemoryOutboxRepo())

	userID := uuid.New()
	_, err := service.CreateProfile(context.Background(), userID)
	assert.NoError(t, err)

	_, err = service.CreateProfile(context.Background(), userID)
	assert.ErrorIs(t, err, domain.ErrInvalidProfile)
}

func TestVerificationFlow(t *testing.T) {
	repo := mocks.NewInMemoryProfileRepo()
	outbox := mocks.NewInMemoryOutboxRepo()
	service := newSponsorService(repo, outbox)

	profile, _ := service.CreateProfile(context.Background(), uuid.New())

	// Incompleto: no puede enviarse a revisión
	_, err := service.SubmitForVerification(context.Background(), profile.ID)
	assert.ErrorIs(t, err, domain.ErrIncompleteProfile)

	completeProfile(t, service, profile.ID)

	submitted, err := service.SubmitForVerification(context.Background(), profile.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusUnderReview, submitted.Status)

	verified, err := service.Verify(context.Background(), profile.ID, "admin-7")
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusActive, verified.Status)
	assert.True(t, verified.IsVerified)

	// created + 4 mutaciones + submitted + verified
	assert.Len(t, outbox.Records, 7)
	assert.Equal(t, domain.ProfileVerified, outbox.Records[6].EventType)
}

func TestReject_ReturnsToReason(t *testing.T) {
	repo := mocks.NewInMemoryProfileRepo()
	service := newSponsorService(repo, mocks.NewInMemoryOutboxRepo())

	profile, _ := service.CreateProfile(context.Background(), uuid.New())
	completeProfile(t, service, profile.ID)
	_, _ = service.SubmitForVerification(context.Background(), profile.ID)

	rejected, err := service.Reject(context.Background(), profile.ID, "documentos ilegibles", "admin-7")
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rejected.Status)
	assert.Equal(t, "documentos ilegibles", rejected.RejectionReason)
}

func TestArchive_BlocksMutations(t *testing.T) {
	repo := mocks.NewInMemoryProfileRepo()
	service := newSponsorService(repo, mocks.NewInMemoryOutboxRepo())

	profile, _ := service.CreateProfile(context.Background(), uuid.New())
	_, err := service.Archive(context.Background(), profile.ID, "cuenta cerrada")
	assert.NoError(t, err)

	_, err = service.UpdateHouseholdInfo(context.Background(), profile.ID, 2)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestGetProfileByUser(t *testing.T) {
	repo := mocks.NewInMemoryProfileRepo()
	service := newSponsorService(repo, mocks.NewInMemoryOutboxRepo())

	userID := uuid.New()
	created, _ := service.CreateProfile(context.Background(), userID)

	got, err := service.GetProfileByUser(context.Background(), userID)
	assert.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = service.GetProfileByUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}
