package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/jpcarvalho/diario/core/school"
)

type schoolApi struct {
	svc      *school.Service
	validate *validator.Validate
}

func registerSchoolAPI(g *echo.Group, svc *school.Service, validate *validator.Validate) {
	api := schoolApi{svc: svc, validate: validate}

	tg := g.Group("/turmas")
	tg.POST("", api.createTurma)
	tg.GET("", api.queryTurmas)
	tg.GET("/:ref", api.retrieveTurma)
	tg.DELETE("/:ref", api.destroyTurma)
	tg.GET("/:ref/disciplinas", api.queryTurmaDisciplinas)
	tg.POST("/:ref/disciplinas", api.linkTurmaDisciplinas)
	tg.DELETE("/:ref/disciplinas", api.unlinkTurmaDisciplinas)
	tg.DELETE("/:ref/disciplinas/:disciplina", api.unlinkTurmaDisciplina)

	dg := g.Group("/disciplinas")
	dg.POST("", api.createDisciplina)
	dg.GET("", api.queryDisciplinas)
	dg.GET("/:ref", api.retrieveDisciplina)
	dg.DELETE("/:ref", api.destroyDisciplina)

	pg := g.Group("/professores")
	pg.POST("", api.createProfessor)
	pg.GET("", api.queryProfessores)
	pg.GET("/:ref", api.retrieveProfessor)
	pg.PUT("/:ref/ativo", api.setProfessorAtivo)
	pg.GET("/:ref/links", api.queryProfessorLinks)
	pg.POST("/:ref/links", api.linkProfessor)
	pg.DELETE("/:ref/links", api.unlinkProfessorLinks)

	ag := g.Group("/alunos")
	ag.POST("", api.createAluno)
	ag.GET("", api.queryAlunos)
	ag.GET("/:ref", api.retrieveAluno)
	ag.PUT("/:ref", api.updateAluno)
	ag.DELETE("/:ref", api.destroyAluno)
}

// Turma handlers

func (api *schoolApi) createTurma(ctx echo.Context) error {
	var data school.NewTurma
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTurma")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	t, err := api.svc.CreateTurma(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *schoolApi) queryTurmas(ctx echo.Context) error {
	turmas, err := api.svc.QueryTurmas(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying turmas")
	}
	return ctx.JSON(http.StatusOK, turmas)
}

func (api *schoolApi) retrieveTurma(ctx echo.Context) error {
	t, err := api.svc.GetTurma(ctx.Request().Context(), refParam(ctx, "ref"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *schoolApi) destroyTurma(ctx echo.Context) error {
	if err := api.svc.DeleteTurma(ctx.Request().Context(), refParam(ctx, "ref")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *schoolApi) queryTurmaDisciplinas(ctx echo.Context) error {
	t, err := api.svc.GetTurma(ctx.Request().Context(), refParam(ctx, "ref"))
	if err != nil {
		return err
	}
	links, err := api.svc.QueryTurmaDisciplinas(ctx.Request().Context(), school.LinkFilter{TurmaID: t.ID})
	if err != nil {
		return errors.Wrap(err, "querying turma disciplinas")
	}
	return ctx.JSON(http.StatusOK, links)
}

func (api *schoolApi) linkTurmaDisciplinas(ctx echo.Context) error {
	var data LinkDisciplinasRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LinkDisciplinasRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	links, err := api.svc.LinkTurmaDisciplinas(ctx.Request().Context(), refParam(ctx, "ref"), data.Disciplinas)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, links)
}

func (api *schoolApi) unlinkTurmaDisciplina(ctx echo.Context) error {
	err := api.svc.UnlinkTurmaDisciplina(ctx.Request().Context(), refParam(ctx, "ref"), refParam(ctx, "disciplina"))
	if err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *schoolApi) unlinkTurmaDisciplinas(ctx echo.Context) error {
	cnt, err := api.svc.UnlinkTurmaDisciplinas(ctx.Request().Context(), refParam(ctx, "ref"), refQuery(ctx, "disciplina"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, CountResponse{Count: cnt})
}

// Disciplina handlers

func (api *schoolApi) createDisciplina(ctx echo.Context) error {
	var data school.NewDisciplina
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDisciplina")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	d, err := api.svc.CreateDisciplina(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, d)
}

func (api *schoolApi) queryDisciplinas(ctx echo.Context) error {
	disciplinas, err := api.svc.QueryDisciplinas(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying disciplinas")
	}
	return ctx.JSON(http.StatusOK, disciplinas)
}

func (api *schoolApi) retrieveDisciplina(ctx echo.Context) error {
	d, err := api.svc.GetDisciplina(ctx.Request().Context(), refParam(ctx, "ref"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *schoolApi) destroyDisciplina(ctx echo.Context) error {
	if err := api.svc.DeleteDisciplina(ctx.Request().Context(), refParam(ctx, "ref")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Professor handlers

func (api *schoolApi) createProfessor(ctx echo.Context) error {
	var data school.NewProfessor
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProfessor")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.CreateProfessor(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *schoolApi) queryProfessores(ctx echo.Context) error {
	var filter school.ProfessorFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to ProfessorFilter")
	}

	professores, err := api.svc.QueryProfessores(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying professores")
	}
	return ctx.JSON(http.StatusOK, professores)
}

func (api *schoolApi) retrieveProfessor(ctx echo.Context) error {
	p, err := api.svc.GetProfessor(ctx.Request().Context(), refParam(ctx, "ref"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *schoolApi) setProfessorAtivo(ctx echo.Context) error {
	var data AtivoRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AtivoRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.SetProfessorAtivo(ctx.Request().Context(), refParam(ctx, "ref"), *data.Ativo)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *schoolApi) queryProfessorLinks(ctx echo.Context) error {
	p, err := api.svc.GetProfessor(ctx.Request().Context(), refParam(ctx, "ref"))
	if err != nil {
		return err
	}
	links, err := api.svc.QueryProfessorLinks(ctx.Request().Context(), school.LinkFilter{ProfessorID: p.ID})
	if err != nil {
		return errors.Wrap(err, "querying professor links")
	}
	return ctx.JSON(http.StatusOK, links)
}

func (api *schoolApi) linkProfessor(ctx echo.Context) error {
	var data LinkProfessorRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LinkProfessorRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	links, err := api.svc.LinkProfessorDisciplinas(ctx.Request().Context(), refParam(ctx, "ref"), data.Turma, data.Disciplinas)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, links)
}

func (api *schoolApi) unlinkProfessorLinks(ctx echo.Context) error {
	cnt, err := api.svc.UnlinkProfessorLinks(
		ctx.Request().Context(), refParam(ctx, "ref"), refQuery(ctx, "disciplina"), refQuery(ctx, "turma"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, CountResponse{Count: cnt})
}

// Aluno handlers

func (api *schoolApi) createAluno(ctx echo.Context) error {
	var data school.NewAluno
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAluno")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.CreateAluno(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *schoolApi) queryAlunos(ctx echo.Context) error {
	var filter school.AlunoFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to AlunoFilter")
	}

	alunos, err := api.svc.QueryAlunos(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying alunos")
	}
	return ctx.JSON(http.StatusOK, alunos)
}

func (api *schoolApi) retrieveAluno(ctx echo.Context) error {
	a, err := api.svc.GetAluno(ctx.Request().Context(), refParam(ctx, "ref"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *schoolApi) updateAluno(ctx echo.Context) error {
	var data school.UpdateAluno
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAluno")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.UpdateAluno(ctx.Request().Context(), refParam(ctx, "ref"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *schoolApi) destroyAluno(ctx echo.Context) error {
	err := api.svc.DeleteAluno(ctx.Request().Context(), refParam(ctx, "ref"), boolQuery(ctx, "cascade"))
	if err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
