package extract

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/cragscan/internal/model"
)

// Name returns the trimmed page title. The title is required on every page.
func Name(doc *Document) (string, error) {
	h1 := doc.find(selTitle).First()
	if h1.Length() == 0 {
		return "", fmt.Errorf("%w: %w: %s", ErrMalformedPage, ErrMissingElement, selTitle)
	}
	name := firstOwnText(h1)
	if name == "" {
		name = strings.TrimSpace(h1.Text())
	}
	if name == "" {
		return "", fmt.Errorf("%w: %w: empty %s", ErrMalformedPage, ErrMissingElement, selTitle)
	}
	return name, nil
}

// Coordinates returns the latitude and longitude from the GPS row.
// The row reads "<lat>, <long>" and is required on area pages.
func Coordinates(doc *Document) (lat, long float64, err error) {
	cell, ok := doc.detailValue(labelGPS)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %w: %s row", ErrMalformedPage, ErrMissingElement, labelGPS)
	}
	raw := firstOwnText(cell)
	parts := strings.Split(raw, ",")
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("%w: unreadable coordinates %q", ErrMalformedPage, raw)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: latitude %q: %w", ErrMalformedPage, parts[0], err)
	}
	long, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: longitude %q: %w", ErrMalformedPage, parts[1], err)
	}
	return lat, long, nil
}

// Grades returns the grade for every system shown in the rating headers.
// When several headers show a system, the first one wins. Systems that are
// not shown are present with a nil value.
func Grades(doc *Document) model.Grades {
	grades := model.NewGrades()
	headers := doc.find(selRatingHeader)
	if headers.Length() == 0 {
		return grades
	}
	for _, sys := range model.GradeSystems {
		el := headers.Find(gradeClasses[sys]).First()
		if el.Length() == 0 {
			continue
		}
		grades.Set(sys, firstOwnText(el))
	}
	return grades
}

// Attributes holds the values read from the "Type:" row of a route page.
type Attributes struct {
	// Types is the comma-joined list of recognised climb styles.
	Types string

	// Length is the raw length token, for example "300 ft (91 m)".
	Length string

	// Pitch is the pitch count. It is model.DefaultPitch when absent.
	Pitch int

	// CommitmentGrade is the raw commitment token, for example "Grade III".
	CommitmentGrade string
}

// RouteAttributes reads and classifies the "Type:" row. A missing row
// yields the zero attributes with the default pitch.
func RouteAttributes(doc *Document) Attributes {
	cell, ok := doc.detailValue(labelType)
	if !ok {
		return ClassifyAttributes(nil)
	}
	raw := strings.TrimSpace(cell.Text())
	if raw == "" {
		return ClassifyAttributes(nil)
	}
	return ClassifyAttributes(strings.Split(raw, ", "))
}

// ClassifyAttributes sorts raw tokens into attribute fields. Rules are
// tried in order and the first match wins:
//  1. exact climb style, appended to Types
//  2. contains "m" or "ft", the length
//  3. contains "pitch", its leading integer is the pitch
//  4. contains "Grade", the commitment grade
//
// Tokens matching no rule are ignored.
func ClassifyAttributes(tokens []string) Attributes {
	attrs := Attributes{Pitch: model.DefaultPitch}
	var types []string
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		switch {
		case tok == "":
		case model.IsClimbType(tok):
			types = append(types, tok)
		case strings.Contains(tok, "m") || strings.Contains(tok, "ft"):
			attrs.Length = tok
		case strings.Contains(tok, "pitch"):
			if n, ok := leadingInt(tok); ok {
				attrs.Pitch = n
			}
		case strings.Contains(tok, "Grade"):
			attrs.CommitmentGrade = tok
		}
	}
	attrs.Types = strings.Join(types, ", ")
	return attrs
}

// leadingInt parses the digits at the start of s.
func leadingInt(s string) (int, bool) {
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == -1 {
		end = len(s)
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Protection returns the protection rating that trails a rating header.
// The first header ending in a known rating wins.
func Protection(doc *Document) model.Protection {
	rating := model.ProtectionNone
	doc.find(selRatingHeader).EachWithBreak(func(_ int, header *goquery.Selection) bool {
		rating = trailingProtection(header)
		return rating == model.ProtectionNone
	})
	return rating
}

// trailingProtection parses the last word of the header's own text.
func trailingProtection(header *goquery.Selection) model.Protection {
	texts := ownText(header)
	for i := len(texts) - 1; i >= 0; i-- {
		fields := strings.Fields(texts[i])
		if len(fields) == 0 {
			continue
		}
		return model.ParseProtection(fields[len(fields)-1])
	}
	return model.ProtectionNone
}

// UserRating returns the average-rating text of the star widget for id.
// The widget's first text node is decorative; the rating is the second.
func UserRating(doc *Document, id string) string {
	widget := doc.find(fmt.Sprintf("span[id=%q]", starsIDPrefix+id)).First()
	if widget.Length() == 0 {
		return ""
	}
	texts := ownText(widget)
	if len(texts) < 2 {
		return ""
	}
	return strings.TrimSpace(texts[1])
}

// DescriptionStats reports how many description headings and bodies a page
// carries and how many of them formed a pair.
type DescriptionStats struct {
	Titles int
	Bodies int
	Pairs  int
}

// Mismatched reports whether some heading or body was left unpaired.
func (s DescriptionStats) Mismatched() bool {
	return s.Pairs != s.Titles || s.Pairs != s.Bodies
}

// Description pairs each description body with the heading immediately
// before it and concatenates them in document order as
// "<title>\n<body>\n". Headings without a body and bodies without a heading
// are dropped.
func Description(doc *Document) (string, DescriptionStats) {
	bodies := doc.find(selDescriptionBody)
	stats := DescriptionStats{
		Titles: doc.find(selDescriptionHead).Length(),
		Bodies: bodies.Length(),
	}

	var b strings.Builder
	bodies.Each(func(_ int, body *goquery.Selection) {
		head := body.Prev()
		if !head.Is(selDescriptionHead) {
			return
		}
		stats.Pairs++
		b.WriteString(normalize(head.Text()))
		b.WriteString("\n")
		b.WriteString(normalize(body.Text()))
		b.WriteString("\n")
	})
	return b.String(), stats
}

// Comments renders every entry of a comment feed as
// "<body>\ncomment time: <time>\nup votes: <likes>\n\n".
// An entry without a like count reports zero likes.
func Comments(doc *Document) string {
	var b strings.Builder
	doc.find(selCommentItem).Each(func(_ int, item *goquery.Selection) {
		body := normalize(item.Find(selCommentBody).First().Text())
		when := strings.TrimSpace(item.Find(selCommentTime).First().Text())
		likes := strings.TrimSpace(item.Find(selCommentLikes).First().Text())
		if likes == "" {
			likes = "0"
		}
		fmt.Fprintf(&b, "%s\ncomment time: %s\nup votes: %s\n\n", body, when, likes)
	})
	return b.String()
}
