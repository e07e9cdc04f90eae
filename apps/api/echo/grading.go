package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/jpcarvalho/diario/core/grading"
	"github.com/jpcarvalho/diario/core/school"
)

type gradingApi struct {
	svc      *grading.Service
	school   *school.Service
	validate *validator.Validate
}

func registerGradingAPI(g *echo.Group, svc *grading.Service, schoolSvc *school.Service, validate *validator.Validate) {
	api := gradingApi{svc: svc, school: schoolSvc, validate: validate}

	ng := g.Group("/notas")
	ng.POST("", api.upsert)
	ng.GET("", api.query)
	ng.GET("/outcome", api.outcome)
	ng.POST("/recompute", api.recompute)

	ag := g.Group("/alunos")
	ag.GET("/:ref/boletim", api.boletim)
	ag.POST("/:ref/boletim/email", api.emailBoletim)
}

// upsert is the single write path for grades: it creates the nota for the
// composite key or merges the supplied grades into the existing one.
func (api *gradingApi) upsert(ctx echo.Context) error {
	var data grading.UpsertNota
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpsertNota")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	n, err := api.svc.UpsertNota(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, n)
}

func (api *gradingApi) query(ctx echo.Context) error {
	var filter grading.NotaFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to NotaFilter")
	}

	notas, err := api.svc.QueryNotas(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying notas")
	}
	return ctx.JSON(http.StatusOK, notas)
}

func (api *gradingApi) outcome(ctx echo.Context) error {
	ano, err := intQuery(ctx, "ano")
	if err != nil {
		return err
	}

	out, err := api.svc.GetAnnualOutcome(ctx.Request().Context(), refQuery(ctx, "aluno"), refQuery(ctx, "disciplina"), ano)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, out)
}

func (api *gradingApi) recompute(ctx echo.Context) error {
	var filter grading.NotaFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to NotaFilter")
	}

	updated, err := api.svc.BulkRecompute(ctx.Request().Context(), filter)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, RecomputeResponse{Updated: updated})
}

func (api *gradingApi) boletim(ctx echo.Context) error {
	ano, err := intQuery(ctx, "ano")
	if err != nil {
		return err
	}

	bol, err := api.svc.BuildBoletim(ctx.Request().Context(), refParam(ctx, "ref"), ano)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, bol)
}

func (api *gradingApi) emailBoletim(ctx echo.Context) error {
	ano, err := intQuery(ctx, "ano")
	if err != nil {
		return err
	}

	var data EmailBoletimRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EmailBoletimRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if _, err := api.svc.EmailBoletim(ctx.Request().Context(), refParam(ctx, "ref"), ano, data.To); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Boletim sent."})
}
