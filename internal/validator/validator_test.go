package validator

import (
	"errors"
	"testing"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type joinRequest struct {
	ExamToken string `json:"exam_token" binding:"required,notblank"`
	Points    int    `json:"points" binding:"gte=1"`
}

func newValidate() *govalidator.Validate {
	v := govalidator.New()
	v.SetTagName("binding")
	register(v)
	return v
}

func TestTranslateErrorsUsesJSONNames(t *testing.T) {
	v := newValidate()

	err := v.Struct(joinRequest{ExamToken: "   ", Points: 0})
	fields := TranslateErrors(err)

	assert.Equal(t, "exam_token must not be blank", fields["exam_token"])
	assert.Contains(t, fields["points"], "points must be 1 or greater")
}

func TestTranslateErrorsNonValidation(t *testing.T) {
	fields := TranslateErrors(errors.New("unexpected EOF"))
	assert.Equal(t, map[string]string{"detail": "unexpected EOF"}, fields)
}
