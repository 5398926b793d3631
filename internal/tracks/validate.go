package tracks

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// createPayload drives batch validation of the create workflow. Fields are
// checked in declaration order so failure messages come back in a stable
// order, one per violated rule.
type createPayload struct {
	Title  string `validate:"required,min=3"`
	Artist string `validate:"required,min=2"`
	Image  string `validate:"required"`
	Video  string `validate:"required"`
	Music  string `validate:"required"`
}

var validationMessages = map[string]string{
	"Title":  "title is required and must be at least 3 characters",
	"Artist": "artist is required and must be at least 2 characters",
	"Image":  "image is required",
	"Video":  "video is required",
	"Music":  "a music file is required",
}

// validateCreate collects every violated rule instead of stopping at the
// first, mirroring the create contract: the client sees the full list.
func validateCreate(input CreateTrackInput) []string {
	payload := createPayload{
		Title:  strings.TrimSpace(input.Title),
		Artist: strings.TrimSpace(input.Artist),
		Image:  strings.TrimSpace(input.Image),
		Video:  strings.TrimSpace(input.Video),
		Music:  input.MusicFile,
	}

	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{"invalid request"}
	}

	var messages []string
	seen := map[string]struct{}{}
	for _, fieldErr := range errs {
		if _, dup := seen[fieldErr.Field()]; dup {
			continue
		}
		seen[fieldErr.Field()] = struct{}{}
		if msg, known := validationMessages[fieldErr.Field()]; known {
			messages = append(messages, msg)
		} else {
			messages = append(messages, fieldErr.Field()+" is invalid")
		}
	}
	return messages
}
