package model

import "strconv"

// Protection is the protection rating suffix shown in a route's rating header.
type Protection string

// Known protection ratings. ProtectionNone is used when the header carries
// no rating.
const (
	ProtectionNone Protection = ""
	ProtectionG    Protection = "G"
	ProtectionPG   Protection = "PG"
	ProtectionPG13 Protection = "PG13"
	ProtectionR    Protection = "R"
	ProtectionX    Protection = "X"
)

// ParseProtection returns the rating for s if it is exactly one of the known
// codes, and ProtectionNone otherwise.
func ParseProtection(s string) Protection {
	switch p := Protection(s); p {
	case ProtectionG, ProtectionPG, ProtectionPG13, ProtectionR, ProtectionX:
		return p
	default:
		return ProtectionNone
	}
}

// String returns the rating code.
func (p Protection) String() string {
	return string(p)
}

// ClimbTypes is the fixed vocabulary of climb styles.
var ClimbTypes = []string{"TR", "Sport", "Trad", "Boulder", "Aid", "Ice", "Snow", "Alpine"}

// IsClimbType reports whether s is an exact member of ClimbTypes.
func IsClimbType(s string) bool {
	for _, t := range ClimbTypes {
		if s == t {
			return true
		}
	}
	return false
}

// DefaultPitch is used when a route page does not report a pitch count.
const DefaultPitch = 1

// Route is a leaf node describing one climb.
type Route struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Grade           Grades     `json:"grade"`
	Type            string     `json:"type"`
	Length          string     `json:"length"`
	Pitch           int        `json:"pitch"`
	CommitmentGrade string     `json:"commitment_grade"`
	Protection      Protection `json:"protection"`
	UserRating      string     `json:"user_rating"`
	Description     string     `json:"description"`
	Comment         string     `json:"comment"`
	URL             string     `json:"url"`
	ParentName      string     `json:"parent_name"`
	ParentID        string     `json:"parent_id"`
}

// routeColumns is the persisted field order for routes.
var routeColumns = []string{
	"id",
	"name",
	"grade",
	"type",
	"length",
	"pitch",
	"commitment_grade",
	"protection",
	"user_rating",
	"description",
	"comment",
	"url",
	"parent_name",
	"parent_id",
}

// RouteColumns returns the persisted field order for routes.
func RouteColumns() []string {
	return append([]string(nil), routeColumns...)
}

// Kind implements Record.
func (r Route) Kind() Kind { return KindRoute }

// RecordID implements Record.
func (r Route) RecordID() string { return r.ID }

// Columns implements Record.
func (r Route) Columns() []string { return RouteColumns() }

// Values implements Record.
func (r Route) Values() []string {
	return []string{
		r.ID,
		r.Name,
		r.Grade.String(),
		r.Type,
		r.Length,
		strconv.Itoa(r.Pitch),
		r.CommitmentGrade,
		r.Protection.String(),
		r.UserRating,
		r.Description,
		r.Comment,
		r.URL,
		r.ParentName,
		r.ParentID,
	}
}

// WithComment returns a copy of r with the comment thread merged in.
func (r Route) WithComment(comment string) Route {
	r.Comment = comment
	grades := NewGrades()
	for _, sys := range GradeSystems {
		if v, ok := r.Grade.Get(sys); ok {
			grades.Set(sys, v)
		}
	}
	r.Grade = grades
	return r
}
