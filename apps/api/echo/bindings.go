package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/jpcarvalho/diario/core"
)

type (
	SuccessResponse struct {
		Success string `json:"success"`
	}

	CountResponse struct {
		Count int `json:"count"`
	}

	RecomputeResponse struct {
		Updated int `json:"updated"`
	}

	// LinkDisciplinasRequest attaches disciplinas to a turma.
	LinkDisciplinasRequest struct {
		Disciplinas []core.Ref `json:"disciplinas" validate:"required,min=1"`
	}

	// LinkProfessorRequest attaches a professor to disciplinas of a turma.
	LinkProfessorRequest struct {
		Turma       core.Ref   `json:"turma" validate:"required"`
		Disciplinas []core.Ref `json:"disciplinas" validate:"required,min=1"`
	}

	AtivoRequest struct {
		Ativo *bool `json:"ativo" validate:"required"`
	}

	EmailBoletimRequest struct {
		To string `json:"to" validate:"omitempty,email"`
	}
)

func (r *LinkDisciplinasRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

func (r *LinkProfessorRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

func (r *AtivoRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

func (r *EmailBoletimRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

func refParam(ctx echo.Context, name string) core.Ref {
	return core.Ref(ctx.Param(name))
}

func refQuery(ctx echo.Context, name string) core.Ref {
	return core.Ref(ctx.QueryParam(name))
}

// intQuery parses a required int query param; a missing or bad value is a 400.
func intQuery(ctx echo.Context, name string) (int, error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" is required")
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a number")
	}
	return n, nil
}

func boolQuery(ctx echo.Context, name string) bool {
	ok, _ := strconv.ParseBool(ctx.QueryParam(name))
	return ok
}
