package domain

// Las constantes de los tipos de evento se definen aquí, como valores string.
const (
	ProfileCreated       = "sponsor_profile.created"
	BasicInfoUpdated     = "sponsor_profile.basic_info_updated"
	HouseholdInfoUpdated = "sponsor_profile.household_info_updated"
	PreferencesUpdated   = "sponsor_profile.preferences_updated"
	DocumentUploaded     = "sponsor_profile.document_uploaded"
	ProfileSubmitted     = "sponsor_profile.submitted"
	ProfileVerified      = "sponsor_profile.verified"
	ProfileRejected      = "sponsor_profile.rejected"
	ProfileArchived      = "sponsor_profile.archived"
)

// EventTypes devuelve todos los tipos de evento del contexto sponsor.
func EventTypes() []string {
	return []string{
		ProfileCreated,
		BasicInfoUpdated,
		HouseholdInfoUpdated,
		PreferencesUpdated,
		DocumentUploaded,
		ProfileSubmitted,
		ProfileVerified,
		ProfileRejected,
		ProfileArchived,
	}
}
