package models

import "regexp"

var rollPattern = regexp.MustCompile(`^\d{6}$`)

// ValidRoll reports whether roll is a six-digit roll number.
func ValidRoll(roll string) bool {
	return rollPattern.MatchString(roll)
}

// StudentQuery carries the optional query parameters of GET /student/:roll.
type StudentQuery struct {
	// Regulation overrides the configured regulation year for the upstream
	// lookup. Must be one of the known regulation tokens when set.
	Regulation string `form:"regulation" binding:"omitempty,oneof=2022 2016 2010"`

	// MaxAge opts into the result cache: a cached result younger than
	// MaxAge milliseconds is returned without fetching. 0 disables caching.
	MaxAge int `form:"max_age" binding:"omitempty,min=0"`
}

// StudentPostRequest is the payload for POST /students/post.
type StudentPostRequest struct {
	Name string `json:"name" binding:"required"`
	Img  string `json:"img" binding:"required"`
	Roll string `json:"roll" binding:"required"`
}
