package handlers

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	registerOnce sync.Once
)

// validColor accepts "#RRGGBB" and the empty string (which means "use the default").
func validColor(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || colorPattern.MatchString(s)
}

// RegisterValidators installs the custom binding tags on gin's validator.
// It is safe to call more than once.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		err = v.RegisterValidation("color", validColor)
	})
	return err
}
