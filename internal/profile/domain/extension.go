package domain

import identitydomain "internship-portal/backend/internal/identity/domain"

// Defaults applied when a role extension is missing or leaves the field empty.
const (
	DefaultValidationStatus = "pending"
	DefaultAccessLevel      = "read"
)

// Extension is the role-specific part of a profile: one of StudentExtension,
// CompanyExtension or AdminExtension.
type Extension interface {
	Role() identitydomain.Role
	extension()
}

type StudentExtension struct {
	Specialization       string `json:"specialization"`
	Level                string `json:"level"`
	BirthDate            string `json:"birthDate,omitempty"`
	CVURL                string `json:"cvUrl,omitempty"`
	PhotoURL             string `json:"photoUrl,omitempty"`
	University           string `json:"university,omitempty"`
	GitHub               string `json:"github,omitempty"`
	LinkedIn             string `json:"linkedin,omitempty"`
	InternshipsCompleted int    `json:"internshipsCompleted"`
	ReportsSubmitted     int    `json:"reportsSubmitted"`
}

type CompanyExtension struct {
	CompanyName      string `json:"companyName"`
	Industry         string `json:"industry"`
	Website          string `json:"website"`
	Description      string `json:"description"`
	ValidationStatus string `json:"validationStatus"`
	LogoURL          string `json:"logoUrl,omitempty"`
	Location         string `json:"location,omitempty"`
	OffersPublished  int    `json:"offersPublished"`
	StudentsHired    int    `json:"studentsHired"`
}

type AdminExtension struct {
	Department  string `json:"department"`
	Position    string `json:"position"`
	AccessLevel string `json:"accessLevel"`
	School      string `json:"school,omitempty"`
}

func (StudentExtension) Role() identitydomain.Role { return identitydomain.RoleStudent }
func (CompanyExtension) Role() identitydomain.Role { return identitydomain.RoleCompany }
func (AdminExtension) Role() identitydomain.Role   { return identitydomain.RoleAdmin }

func (StudentExtension) extension() {}
func (CompanyExtension) extension() {}
func (AdminExtension) extension()   {}

// EmptyExtension returns the defaults for role, or nil for RoleNone.
func EmptyExtension(role identitydomain.Role) Extension {
	switch role {
	case identitydomain.RoleStudent:
		return StudentExtension{}
	case identitydomain.RoleCompany:
		return CompanyExtension{ValidationStatus: DefaultValidationStatus}
	case identitydomain.RoleAdmin:
		return AdminExtension{AccessLevel: DefaultAccessLevel}
	}
	return nil
}

// WithDefaults fills empty defaulted fields of ext.
func WithDefaults(ext Extension) Extension {
	switch e := ext.(type) {
	case CompanyExtension:
		if e.ValidationStatus == "" {
			e.ValidationStatus = DefaultValidationStatus
		}
		return e
	case AdminExtension:
		if e.AccessLevel == "" {
			e.AccessLevel = DefaultAccessLevel
		}
		return e
	}
	return ext
}
