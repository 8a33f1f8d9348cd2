package model

import (
	"bytes"
	"encoding/json"
)

// GradeSystem names a regional difficulty grading system.
type GradeSystem string

// The fixed set of grading systems reported on a route page.
const (
	GradeYDS        GradeSystem = "YDS"
	GradeFrench     GradeSystem = "French"
	GradeEwbanks    GradeSystem = "Ewbanks"
	GradeUIAA       GradeSystem = "UIAA"
	GradeZA         GradeSystem = "ZA"
	GradeBritish    GradeSystem = "British"
	GradeFontFrench GradeSystem = "FontFrench"
)

// GradeSystems lists every grading system in output order.
var GradeSystems = []GradeSystem{
	GradeYDS,
	GradeFrench,
	GradeEwbanks,
	GradeUIAA,
	GradeZA,
	GradeBritish,
	GradeFontFrench,
}

// Grades maps a grading system to its optional grade.
// A nil value means the system is not reported on the page. Every system in
// GradeSystems is always present in Map and in the JSON form, even when the
// underlying map is nil.
type Grades map[GradeSystem]*string

// NewGrades returns a Grades with every system present and unset.
func NewGrades() Grades {
	g := make(Grades, len(GradeSystems))
	for _, sys := range GradeSystems {
		g[sys] = nil
	}
	return g
}

// Set records a grade for sys. An empty grade leaves the system unset.
func (g Grades) Set(sys GradeSystem, grade string) {
	if grade == "" {
		g[sys] = nil
		return
	}
	g[sys] = &grade
}

// Get returns the grade for sys and whether it is present.
func (g Grades) Get(sys GradeSystem) (string, bool) {
	v, ok := g[sys]
	if !ok || v == nil {
		return "", false
	}
	return *v, true
}

// Count returns the number of systems with a grade.
func (g Grades) Count() int {
	n := 0
	for _, sys := range GradeSystems {
		if _, ok := g.Get(sys); ok {
			n++
		}
	}
	return n
}

// MarshalJSON encodes the grades as an object in GradeSystems order,
// with null for absent systems.
func (g Grades) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sys := range GradeSystems {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(sys))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		v, ok := g.Get(sys)
		if !ok {
			buf.WriteString("null")
			continue
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// String returns the JSON form.
func (g Grades) String() string {
	b, err := g.MarshalJSON()
	if err != nil {
		return "{}"
	}
	return string(b)
}
