package domain

import (
	"math"
	"time"

	"github.com/google/uuid"

	sharedEvents "github.com/davicafu/maidlink/internal/shared/domain/events"
)

// ProfileStatus es el estado de verificación de un perfil de sponsor.
type ProfileStatus string

const (
	StatusDraft       ProfileStatus = "draft"
	StatusUnderReview ProfileStatus = "under_review"
	StatusActive      ProfileStatus = "active"
	StatusRejected    ProfileStatus = "rejected"
	StatusArchived    ProfileStatus = "archived"
)

// Tipos de documento que cuentan para la completitud del perfil.
const (
	DocIDDocument       = "id_document"
	DocProofOfResidence = "proof_of_residence"
)

// SponsorProfile es el agregado del perfil de un sponsor (familia empleadora).
// CompletionPercentage se recalcula tras cada mutación de campos y debe llegar
// a 100 antes de poder enviarse a verificación.
type SponsorProfile struct {
	sharedEvents.Recorder

	ID                   uuid.UUID              `json:"id"`
	UserID               uuid.UUID              `json:"user_id"`
	Nombre               string                 `json:"nombre,omitempty"`
	Phone                string                 `json:"phone,omitempty"`
	Country              string                 `json:"country,omitempty"`
	City                 string                 `json:"city,omitempty"`
	Address              string                 `json:"address,omitempty"`
	HouseholdSize        int                    `json:"household_size,omitempty"`
	Preferences          map[string]interface{} `json:"preferences,omitempty"`
	Documents            map[string]string      `json:"documents,omitempty"` // tipo -> URL
	Status               ProfileStatus          `json:"status"`
	CompletionPercentage int                    `json:"completion_percentage"`
	IsVerified           bool                   `json:"is_verified"`
	VerifiedAt           *time.Time             `json:"verified_at,omitempty"`
	VerifiedBy           string                 `json:"verified_by,omitempty"`
	RejectionReason      string                 `json:"rejection_reason,omitempty"`
	ArchiveReason        string                 `json:"archive_reason,omitempty"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
}

// NewSponsorProfile crea un perfil vacío en estado draft.
func NewSponsorProfile(userID uuid.UUID) (*SponsorProfile, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidProfile
	}
	now := time.Now().UTC()
	p := &SponsorProfile{
		ID:        uuid.New(),
		UserID:    userID,
		Documents: make(map[string]string),
		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.recomputeCompletion()
	p.Record(ProfileCreated, p.ID.String(), map[string]interface{}{
		"profileId": p.ID.String(),
		"userId":    p.UserID.String(),
	})
	return p, nil
}

// UpdateBasicInfo actualiza los datos de contacto. Prohibido sobre un perfil archivado.
func (p *SponsorProfile) UpdateBasicInfo(nombre, phone, country, city, address string) error {
	if p.Status == StatusArchived {
		return ErrInvalidState
	}
	p.Nombre = nombre
	p.Phone = phone
	p.Country = country
	p.City = city
	p.Address = address
	p.touch()
	p.recomputeCompletion()
	p.Record(BasicInfoUpdated, p.ID.String(), p.completionPayload())
	return nil
}

// UpdateHouseholdInfo actualiza el tamaño del hogar.
func (p *SponsorProfile) UpdateHouseholdInfo(householdSize int) error {
	if p.Status == StatusArchived {
		return ErrInvalidState
	}
	if householdSize < 0 {
		return ErrInvalidProfile
	}
	p.HouseholdSize = householdSize
	p.touch()
	p.recomputeCompletion()
	p.Record(HouseholdInfoUpdated, p.ID.String(), p.completionPayload())
	return nil
}

// UpdatePreferences reemplaza las preferencias de contratación.
func (p *SponsorProfile) UpdatePreferences(prefs map[string]interface{}) error {
	if p.Status == StatusArchived {
		return ErrInvalidState
	}
	p.Preferences = prefs
	p.touch()
	p.recomputeCompletion()
	p.Record(PreferencesUpdated, p.ID.String(), p.completionPayload())
	return nil
}

// UploadDocument registra la URL de un documento subido.
func (p *SponsorProfile) UploadDocument(docType, url string) error {
	if p.Status == StatusArchived {
		return ErrInvalidState
	}
	if docType == "" || url == "" {
		return ErrInvalidProfile
	}
	if p.Documents == nil {
		p.Documents = make(map[string]string)
	}
	p.Documents[docType] = url
	p.touch()
	p.recomputeCompletion()
	payload := p.completionPayload()
	payload["docType"] = docType
	p.Record(DocumentUploaded, p.ID.String(), payload)
	return nil
}

// SubmitForVerification envía el perfil a revisión. Exige completitud 100.
func (p *SponsorProfile) SubmitForVerification() error {
	if p.CompletionPercentage < 100 {
		return ErrIncompleteProfile
	}
	if p.Status != StatusDraft {
		return ErrInvalidState
	}
	p.Status = StatusUnderReview
	p.touch()
	p.Record(ProfileSubmitted, p.ID.String(), map[string]interface{}{
		"profileId": p.ID.String(),
		"userId":    p.UserID.String(),
	})
	return nil
}

// Verify aprueba un perfil en revisión.
func (p *SponsorProfile) Verify(verifiedBy string) error {
	if p.Status != StatusUnderReview {
		return ErrInvalidState
	}
	now := time.Now().UTC()
	p.Status = StatusActive
	p.IsVerified = true
	p.VerifiedAt = &now
	p.VerifiedBy = verifiedBy
	p.touch()
	p.Record(ProfileVerified, p.ID.String(), map[string]interface{}{
		"profileId":  p.ID.String(),
		"userId":     p.UserID.String(),
		"verifiedBy": verifiedBy,
	})
	return nil
}

// Reject rechaza un perfil en revisión.
func (p *SponsorProfile) Reject(reason, rejectedBy string) error {
	if p.Status != StatusUnderReview {
		return ErrInvalidState
	}
	p.Status = StatusRejected
	p.RejectionReason = reason
	p.touch()
	p.Record(ProfileRejected, p.ID.String(), map[string]interface{}{
		"profileId":  p.ID.String(),
		"userId":     p.UserID.String(),
		"reason":     reason,
		"rejectedBy": rejectedBy,
	})
	return nil
}

// Archive archiva el perfil desde cualquier estado salvo archived.
func (p *SponsorProfile) Archive(reason string) error {
	if p.Status == StatusArchived {
		return ErrInvalidState
	}
	p.Status = StatusArchived
	p.ArchiveReason = reason
	p.touch()
	p.Record(ProfileArchived, p.ID.String(), map[string]interface{}{
		"profileId": p.ID.String(),
		"userId":    p.UserID.String(),
		"reason":    reason,
	})
	return nil
}

// recomputeCompletion recalcula el porcentaje sobre el conjunto fijo de
// campos obligatorios: nombre, phone, country, city, address, householdSize,
// id_document y proof_of_residence.
func (p *SponsorProfile) recomputeCompletion() {
	required := []bool{
		p.Nombre != "",
		p.Phone != "",
		p.Country != "",
		p.City != "",
		p.Address != "",
		p.HouseholdSize > 0,
		p.Documents[DocIDDocument] != "",
		p.Documents[DocProofOfResidence] != "",
	}

	filled := 0
	for _, ok := range required {
		if ok {
			filled++
		}
	}
	p.CompletionPercentage = int(math.Round(float64(filled) / float64(len(required)) * 100))
}

func (p *SponsorProfile) completionPayload() map[string]interface{} {
	return map[string]interface{}{
		"profileId":  p.ID.String(),
		"userId":     p.UserID.String(),
		"completion": p.CompletionPercentage,
	}
}

func (p *SponsorProfile) touch() {
	p.UpdatedAt = time.Now().UTC()
}
