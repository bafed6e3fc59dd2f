package domain

import (
	"time"

	"github.com/google/uuid"

	sharedEvents "github.com/davicafu/maidlink/internal/shared/domain/events"
)

// ApplicationStatus es el estado de una candidatura.
type ApplicationStatus string

const (
	StatusPending      ApplicationStatus = "pending"
	StatusReviewed     ApplicationStatus = "reviewed"
	StatusInterviewing ApplicationStatus = "interviewing"
	StatusAccepted     ApplicationStatus = "accepted"
	StatusRejected     ApplicationStatus = "rejected"
	StatusWithdrawn    ApplicationStatus = "withdrawn"
)

// applicationTransitions es la tabla de transiciones válidas.
// Los estados accepted, rejected y withdrawn son terminales.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusPending:      {StatusReviewed, StatusInterviewing, StatusAccepted, StatusRejected, StatusWithdrawn},
	StatusReviewed:     {StatusInterviewing, StatusAccepted, StatusRejected, StatusWithdrawn},
	StatusInterviewing: {StatusAccepted, StatusRejected, StatusWithdrawn},
}

func canTransition(from, to ApplicationStatus) bool {
	for _, next := range applicationTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// JobApplication es el agregado de candidatura de una empleada (maid) a una
// oferta de un sponsor. El sponsor de la oferta es el único autorizado a
// revisarla, entrevistarla, aceptarla o rechazarla; la maid solo puede
// retirarla.
type JobApplication struct {
	sharedEvents.Recorder

	ID                   uuid.UUID         `json:"id"`
	JobID                uuid.UUID         `json:"job_id"`
	MaidID               uuid.UUID         `json:"maid_id"`
	SponsorID            uuid.UUID         `json:"sponsor_id"`
	CoverLetter          string            `json:"cover_letter,omitempty"`
	Status               ApplicationStatus `json:"status"`
	InterviewScheduledAt *time.Time        `json:"interview_scheduled_at,omitempty"`
	InterviewCompletedAt *time.Time        `json:"interview_completed_at,omitempty"`
	SponsorNotes         string            `json:"sponsor_notes,omitempty"`
	RejectionReason      string            `json:"rejection_reason,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// NewJobApplication crea una candidatura en estado pending.
func NewJobApplication(jobID, maidID, sponsorID uuid.UUID, coverLetter string) (*JobApplication, error) {
	if jobID == uuid.Nil || maidID == uuid.Nil || sponsorID == uuid.Nil {
		return nil, ErrInvalidApplication
	}

	now := time.Now().UTC()
	a := &JobApplication{
		ID:          uuid.New(),
		JobID:       jobID,
		MaidID:      maidID,
		SponsorID:   sponsorID,
		CoverLetter: coverLetter,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	a.Record(ApplicationSubmitted, a.ID.String(), map[string]interface{}{
		"applicationId": a.ID.String(),
		"jobId":         a.JobID.String(),
		"maidId":        a.MaidID.String(),
		"sponsorId":     a.SponsorID.String(),
	})
	return a, nil
}

// UpdateCoverLetter solo está permitido mientras la candidatura sigue pending.
func (a *JobApplication) UpdateCoverLetter(text string) error {
	if a.Status != StatusPending {
		return ErrInvalidState
	}
	a.CoverLetter = text
	a.touch()
	a.Record(ApplicationUpdated, a.ID.String(), map[string]interface{}{
		"applicationId": a.ID.String(),
	})
	return nil
}

// MarkAsReviewed la marca como revisada por el sponsor de la oferta.
func (a *JobApplication) MarkAsReviewed(sponsorID uuid.UUID) error {
	if err := a.authorizeSponsor(sponsorID); err != nil {
		return err
	}
	if a.Status != StatusPending {
		return ErrInvalidState
	}
	a.Status = StatusReviewed
	a.touch()
	a.Record(ApplicationReviewed, a.ID.String(), map[string]interface{}{
		"applicationId": a.ID.String(),
		"sponsorId":     sponsorID.String(),
	})
	return nil
}

// ScheduleInterview agenda entrevista desde pending o reviewed.
func (a *JobApplication) ScheduleInterview(date time.Time, sponsorID uuid.UUID) error {
	if err := a.authorizeSponsor(sponsorID); err != nil {
		return err
	}
	if a.Status != StatusPending && a.Status != StatusReviewed {
		return ErrInvalidState
	}
	a.Status = StatusInterviewing
	a.InterviewScheduledAt = &date
	a.touch()
	a.Record(InterviewScheduled, a.ID.String(), map[string]interface{}{
		"applicationId": a.ID.String(),
		"sponsorId":     sponsorID.String(),
		"scheduledAt":   date.UTC().Format(time.RFC3339),
	})
	return nil
}

// CompleteInterview registra el resultado de la entrevista sin cambiar el estado.
func (a *JobApplication) CompleteInterview(notes string) error {
	if a.Status != StatusInterviewing {
		return ErrInvalidState
	}
	now := time.Now().UTC()
	a.InterviewCompletedAt = &now
	a.SponsorNotes = notes
	a.touch()
	a.Record(InterviewCompleted, a.ID.String(), map[string]interface{}{
		"applicationId": a.ID.String(),
	})
	return nil
}

// Accept acepta la candidatura. Una candidatura ya aceptada o rechazada no
// puede volver a procesarse.
func (a *JobApplication) Accept(sponsorID uuid.UUID, notes string) error {
	if err := a.authorizeSponsor(sponsorID); err != nil {
		return err
	}
	if a.Status == StatusAccepted || a.Status == StatusRejected {
		return ErrAlreadyProcessed
	}
	if !canTransition(a.Status, StatusAccepted) {
		return ErrInvalidState
	}
	a.Status = StatusAccepted
	if notes != "" {
		a.SponsorNotes = notes
	}
	a.touch()
	a.Record(ApplicationAccepted, a.ID.String(), map[string]interface{}{
		"applicationId": a.ID.String(),
		"maidId":        a.MaidID.String(),
		"sponsorId":     sponsorID.String(),
	})
	return nil
}

// Reject rechaza la candidatura, simétrico a Accept.
func (a *JobApplication) Reject(sponsorID uuid.UUID, reason string) error {
	if err := a.authorizeSponsor(sponsorID); err != nil {
		return err
	}
	if a.Status == StatusAccepted || a.Status == StatusRejected {
		return ErrAlreadyProcessed
	}
	if !canTransition(a.Status, StatusRejected) {
		return ErrInvalidState
	}
	a.Status = StatusRejected
	a.RejectionReason = reason
	a.touch()
	a.Record(ApplicationRejected, a.ID.String(), map[string]interface{}{
		"applicationId": a.ID.String(),
		"maidId":        a.MaidID.String(),
		"reason":        reason,
	})
	return nil
}

// Withdraw retira la candidatura. Solo la maid dueña puede hacerlo y nunca
// después de aceptada o ya retirada.
func (a *JobApplication) Withdraw(maidID uuid.UUID, reason string) error {
	if maidID != a.MaidID {
		return ErrUnauthorized
	}
	if a.Status == StatusAccepted || a.Status == StatusWithdrawn {
		return ErrInvalidState
	}
	a.Status = StatusWithdrawn
	a.touch()
	a.Record(ApplicationWithdrawn, a.ID.String(), map[string]interface{}{
		"applicationId": a.ID.String(),
		"maidId":        maidID.String(),
		"reason":        reason,
	})
	return nil
}

// IsActive indica si la candidatura sigue en juego.
func (a *JobApplication) IsActive() bool {
	switch a.Status {
	case StatusRejected, StatusWithdrawn, StatusAccepted:
		return false
	}
	return true
}

func (a *JobApplication) authorizeSponsor(sponsorID uuid.UUID) error {
	if sponsorID != a.SponsorID {
		return ErrUnauthorized
	}
	return nil
}

func (a *JobApplication) touch() {
	a.UpdatedAt = time.Now().UTC()
}
