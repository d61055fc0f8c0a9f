package domain

// Built-in role names. admin and operator are global: they are not bound to a company.
const (
	RoleAdmin       = "admin"
	RoleOperator    = "operator"
	RoleCompanyUser = "company_user"
	RoleProvider    = "provider"
	RolePending     = "pendiente"
)

// Viewer is the authenticated caller of a request.
type Viewer struct {
	UserID    string  `json:"user_id"`
	Email     string  `json:"email"`
	RoleID    int64   `json:"role_id"`
	Role      string  `json:"role"`
	Global    bool    `json:"global"`
	Companies []int64 `json:"companies"`
	// CompanyID is the company selected for this request, nil when none was selected.
	CompanyID *int64 `json:"company_id,omitempty"`
}

func (v *Viewer) IsAdmin() bool {
	return v != nil && v.Role == RoleAdmin
}

// BelongsTo reports membership; global viewers belong to every company.
func (v *Viewer) BelongsTo(companyID int64) bool {
	if v == nil {
		return false
	}
	if v.Global {
		return true
	}
	for _, id := range v.Companies {
		if id == companyID {
			return true
		}
	}
	return false
}

// ScopedCompany returns the company a company-bound query must be restricted to.
// Global viewers get requested back unchanged (nil means all companies).
// Other viewers always get their selected company; ok is false when none is selected.
func (v *Viewer) ScopedCompany(requested *int64) (scope *int64, ok bool) {
	if v == nil {
		return nil, false
	}
	if v.Global {
		return requested, true
	}
	if v.CompanyID == nil {
		return nil, false
	}
	id := *v.CompanyID
	return &id, true
}
