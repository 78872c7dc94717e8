package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent    RoleType = "STUDENT"
	RoleInstructor RoleType = "INSTRUCTOR"
	RoleAdmin      RoleType = "ADMIN"
)

// IsValid reports whether r is a known role.
func (r RoleType) IsValid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// Modality represents how a course offering is delivered.
type Modality string

const (
	ModalityOnSite Modality = "ON_SITE"
	ModalityOnline Modality = "ONLINE"
	ModalityHybrid Modality = "HYBRID"
)

// RequiresRoom reports whether the modality needs a physical room assigned.
func (m Modality) RequiresRoom() bool {
	return m == ModalityOnSite || m == ModalityHybrid
}

// IsValid reports whether m is a known modality.
func (m Modality) IsValid() bool {
	switch m {
	case ModalityOnSite, ModalityOnline, ModalityHybrid:
		return true
	}
	return false
}
