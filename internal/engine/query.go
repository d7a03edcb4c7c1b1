package engine

import (
	"github.com/aleister1102/sgpatch/internal/common/errorwrapper"
	"github.com/go-playground/validator/v10"
)

// Query is one structural search over a project
type Query struct {
	Rule        string `json:"query" validate:"required"`
	Language    string `json:"language" validate:"required"`
	ProjectPath string `json:"projectPath" validate:"required"`
	Globs       string `json:"pathGlobs"`
}

var queryValidator = validator.New()

// Validate checks that the query carries everything the engine needs
func (q Query) Validate() error {
	if err := queryValidator.Struct(q); err != nil {
		return errorwrapper.NewConfigError("invalid query", err)
	}
	return nil
}
