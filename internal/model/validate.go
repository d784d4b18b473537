package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
)

// ErrInvalidProject is returned by Project.Validate.
var ErrInvalidProject = eris.New("model: invalid project")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func projectValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks the numeric ranges declared on Project and that the
// project can be identified. Enumerated fields are never rejected; they are
// mapped by Normalize.
func (p Project) Validate() error {
	var problems []string
	if strings.TrimSpace(p.ID) == "" && strings.TrimSpace(p.Name) == "" {
		problems = append(problems, "id or name is required")
	}

	if err := projectValidator().Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return eris.Wrap(err, "model: validate project")
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s must satisfy %s", fe.Field(), constraint(fe)))
		}
	}

	if len(problems) > 0 {
		return eris.Wrap(ErrInvalidProject, strings.Join(problems, "; "))
	}
	return nil
}

func constraint(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}
