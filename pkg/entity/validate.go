package entity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/polocloud/polocloud/pkg/fault"
	"github.com/polocloud/polocloud/pkg/wire"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// check runs struct validation and converts failures into a fault.ClassInvalid
// error tagged with the entity kind.
func check(kind wire.Kind, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fault.Invalid(fmt.Sprintf("invalid %s", kind), err).WithEntity(string(kind))
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s", fe.Namespace(), fe.Tag()))
		}
	}
	return fault.Invalid(strings.Join(msgs, "; "), nil).
		WithEntity(string(kind)).
		WithField(verrs[0].Field())
}
