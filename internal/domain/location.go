package domain

import "context"

type Country struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type Department struct {
	ID        int64  `json:"id"`
	CountryID int64  `json:"country_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
}

type City struct {
	ID           int64  `json:"id"`
	DepartmentID int64  `json:"department_id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
}

// LocationSelection is a country > department > city chain. Any suffix of the chain may be empty.
type LocationSelection struct {
	CountryID    *int64 `json:"country_id"`
	DepartmentID *int64 `json:"department_id"`
	CityID       *int64 `json:"city_id"`
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// SelectCountry sets the country. Choosing a different country clears department and city.
func (s LocationSelection) SelectCountry(id *int64) LocationSelection {
	if sameID(s.CountryID, id) {
		return s
	}
	return LocationSelection{CountryID: id}
}

// SelectDepartment sets the department. Choosing a different department clears the city.
func (s LocationSelection) SelectDepartment(id *int64) LocationSelection {
	if sameID(s.DepartmentID, id) {
		return s
	}
	return LocationSelection{CountryID: s.CountryID, DepartmentID: id}
}

func (s LocationSelection) SelectCity(id *int64) LocationSelection {
	s.CityID = id
	return s
}

type LocationRepository interface {
	ListCountries(ctx context.Context) ([]Country, error)
	ListDepartments(ctx context.Context, countryID int64) ([]Department, error)
	ListCities(ctx context.Context, departmentID int64) ([]City, error)
	GetCountry(ctx context.Context, id int64) (*Country, error)
	GetDepartment(ctx context.Context, id int64) (*Department, error)
	GetCity(ctx context.Context, id int64) (*City, error)
}

type LocationUsecase interface {
	ListCountries(ctx context.Context) ([]Country, error)
	ListDepartments(ctx context.Context, countryID int64) ([]Department, error)
	ListCities(ctx context.Context, departmentID int64) ([]City, error)
	// ValidateSelection checks that each level exists and belongs to its parent.
	ValidateSelection(ctx context.Context, sel LocationSelection) error
}
