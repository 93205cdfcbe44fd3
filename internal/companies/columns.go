package companies

import (
	"strings"

	"github.com/bekirdag/gridview/internal/grid"
)

// EditFunc applies an edit of one field of company id.
type EditFunc func(id, field, value string) error

// Columns returns the grid columns for the companies list. Speciality filters
// by a multi-select over the specialities present in companies. A nil edit
// leaves every column read-only.
func Columns(companies []Company, edit EditFunc) []grid.Column {
	name := grid.Column{
		FieldID:    FieldCompanyName,
		HeaderName: "Company",
		Width:      2,
		Filter:     grid.AutoFilter(),
		Sort:       grid.AutoSort(),
	}
	if edit != nil {
		name.Editable = true
		name.OnEdited = func(row grid.Row, field, value string) error {
			id, _ := row[FieldID].(string)
			return edit(id, field, value)
		}
	}
	return []grid.Column{
		name,
		{
			FieldID:    FieldSpeciality,
			HeaderName: "Speciality",
			Width:      1,
			Sort:       grid.AutoSort(),
			Filter: &grid.FilterSpec{
				Predicate: grid.OneOf(FieldSpeciality),
				Input:     grid.InputChoices,
				Choices:   Specialities(companies),
			},
		},
		{
			FieldID:    FieldCountry,
			HeaderName: "Country",
			Width:      1,
			Type:       grid.KindString,
			Filter:     grid.AutoFilter(),
			Sort:       grid.AutoSort(),
			Display: func(row grid.Row) string {
				logo, _ := row[FieldCountryLogo].(string)
				country, _ := row[FieldCountry].(string)
				return strings.TrimSpace(logo + " " + country)
			},
		},
	}
}

// Specialities returns the distinct non-empty specialities in first-seen
// order.
func Specialities(companies []Company) []string {
	seen := make(map[string]bool, len(companies))
	var out []string
	for _, c := range companies {
		if c.Speciality == "" || seen[c.Speciality] {
			continue
		}
		seen[c.Speciality] = true
		out = append(out, c.Speciality)
	}
	return out
}

// Rows converts companies to grid rows keyed by their JSON field names.
func Rows(companies []Company) []grid.Row {
	rows := make([]grid.Row, len(companies))
	for i, c := range companies {
		rows[i] = Row(c)
	}
	return rows
}

func Row(c Company) grid.Row {
	return grid.Row{
		FieldID:          c.ID,
		FieldCompanyName: c.CompanyName,
		FieldCountry:     c.Country,
		FieldCompanyLogo: c.CompanyLogo,
		FieldSpeciality:  c.Speciality,
		FieldCountryLogo: c.CountryLogo,
	}
}
