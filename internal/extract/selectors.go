package extract

import "github.com/nao1215/cragscan/internal/model"

// Page-level selectors.
const (
	selTitle           = "h1"
	selDetailsRow      = "table.description-details tr"
	selRatingHeader    = "h2.inline-block.mr-2"
	selDescriptionHead = "h2.mt-2"
	selDescriptionBody = "div.fr-view"
	selAreaLinks       = "div.lef-nav-row a"
	selRouteLinks      = "table#left-nav-route-table tr a"
	starsIDPrefix      = "starsWithAvgText-"
)

// Comment feed selectors.
const (
	selCommentItem  = ".comment-item"
	selCommentBody  = ".comment-body"
	selCommentTime  = ".comment-time"
	selCommentLikes = ".num-likes"
)

// Labels in the first column of the description-details table.
const (
	labelGPS  = "GPS:"
	labelType = "Type:"
)

// gradeClasses maps each grading system to the element class that carries
// it inside the rating header.
var gradeClasses = map[model.GradeSystem]string{
	model.GradeYDS:        ".rateYDS",
	model.GradeFrench:     ".rateFrench",
	model.GradeEwbanks:    ".rateEwbanks",
	model.GradeUIAA:       ".rateUIAA",
	model.GradeZA:         ".rateZA",
	model.GradeBritish:    ".rateBritish",
	model.GradeFontFrench: ".rateFont",
}
