package domain

// Las constantes de los tipos de evento se definen aquí, como valores string.
const (
	ApplicationSubmitted = "application.submitted"
	ApplicationUpdated   = "application.updated"
	ApplicationReviewed  = "application.reviewed"
	InterviewScheduled   = "application.interview_scheduled"
	InterviewCompleted   = "application.interview_completed"
	ApplicationAccepted  = "application.accepted"
	ApplicationRejected  = "application.rejected"
	ApplicationWithdrawn = "application.withdrawn"
)

// EventTypes devuelve todos los tipos de evento del contexto recruitment.
func EventTypes() []string {
	return []string{
		ApplicationSubmitted,
		ApplicationUpdated,
		ApplicationReviewed,
		InterviewScheduled,
		InterviewCompleted,
		ApplicationAccepted,
		ApplicationRejected,
		ApplicationWithdrawn,
	}
}
