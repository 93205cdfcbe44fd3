// Package companies serves and fetches the construction companies shown in
// the grid.
package companies

import (
	"context"
	"errors"
)

var (
	ErrNotFound         = errors.New("company not found")
	ErrFieldNotEditable = errors.New("field is not editable")
)

// Company is one construction company as exchanged over HTTP.
type Company struct {
	ID          string `json:"id"`
	CompanyName string `json:"companyName"`
	Country     string `json:"country"`
	CompanyLogo string `json:"companyLogo"`
	Speciality  string `json:"speciality"`
	CountryLogo string `json:"countryLogo"`
}

// Source lists companies and applies single-field edits.
type Source interface {
	List(ctx context.Context) ([]Company, error)
	Update(ctx context.Context, id, field, value string) (Company, error)
}

const (
	FieldID          = "id"
	FieldCompanyName = "companyName"
	FieldCountry     = "country"
	FieldCompanyLogo = "companyLogo"
	FieldSpeciality  = "speciality"
	FieldCountryLogo = "countryLogo"
)

// editableColumns maps editable JSON fields to their table columns.
var editableColumns = map[string]string{
	FieldCompanyName: "company_name",
	FieldSpeciality:  "speciality",
}

// IsEditable reports whether field may be changed through Update.
func IsEditable(field string) bool {
	_, ok := editableColumns[field]
	return ok
}

func (c *Company) set(field, value string) {
	switch field {
	case FieldCompanyName:
		c.CompanyName = value
	case FieldSpeciality:
		c.Speciality = value
	}
}
