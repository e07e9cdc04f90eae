package main

import (
	"context"
	"fmt"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/jpcarvalho/diario/core"
	"github.com/jpcarvalho/diario/core/grading"
	"github.com/jpcarvalho/diario/core/school"
)

// seed loads a small set of dev fixtures: one turma with two disciplinas, a
// professor teaching both, two alunos and a first-bimester nota each. Existing
// records are left alone, so reruns are harmless.
func (cli *commandLine) seed() error {
	ctx := context.Background()

	turma, err := cli.seedTurma(ctx, school.NewTurma{Codigo: "9a", Serie: "9º ano", Turno: "manhã"})
	if err != nil {
		return err
	}

	disciplinas := []school.NewDisciplina{
		{Codigo: "mat", Nome: "Matemática", CargaHoraria: null.IntFrom(80)},
		{Codigo: "port", Nome: "Português", CargaHoraria: null.IntFrom(80)},
	}
	for _, nd := range disciplinas {
		if _, err := cli.seedDisciplina(ctx, nd); err != nil {
			return err
		}
	}

	professor, err := cli.seedProfessor(ctx, school.NewProfessor{
		Codigo: "p001", Nome: "João Souza", Email: "joao.souza@escola.example",
	})
	if err != nil {
		return err
	}

	for _, nd := range disciplinas {
		if _, err := cli.schoolSvc.LinkTurmaDisciplina(ctx, core.Ref(turma.Codigo), core.Ref(nd.Codigo)); err != nil {
			return err
		}
		if _, err := cli.schoolSvc.LinkProfessor(ctx, core.Ref(professor.Codigo), core.Ref(nd.Codigo), core.Ref(turma.Codigo)); err != nil {
			return err
		}
	}

	alunos := []school.NewAluno{
		{Codigo: "a001", Nome: "Maria Silva", Sexo: "F", TurmaRef: core.Ref(turma.Codigo)},
		{Codigo: "a002", Nome: "Pedro Santos", Sexo: "M", TurmaRef: core.Ref(turma.Codigo)},
	}
	ano := time.Now().Year()
	for i, na := range alunos {
		if _, err := cli.seedAluno(ctx, na); err != nil {
			return err
		}
		if _, err := cli.gradingSvc.UpsertNota(ctx, grading.UpsertNota{
			AlunoRef:      core.Ref(na.Codigo),
			DisciplinaRef: "mat",
			TurmaRef:      core.Ref(turma.Codigo),
			Ano:           ano,
			Bimestre:      1,
			Mensal:        null.Float64From(float64(6 + i)),
			Bimestral:     null.Float64From(float64(7 + i)),
		}); err != nil {
			return err
		}
	}

	fmt.Println("seed data loaded")
	return nil
}

func (cli *commandLine) seedTurma(ctx context.Context, nt school.NewTurma) (school.Turma, error) {
	t, err := cli.schoolSvc.CreateTurma(ctx, nt)
	if core.IsConflict(err) {
		return cli.schoolSvc.GetTurma(ctx, core.Ref(nt.Codigo))
	}
	return t, err
}

func (cli *commandLine) seedDisciplina(ctx context.Context, nd school.NewDisciplina) (school.Disciplina, error) {
	d, err := cli.schoolSvc.CreateDisciplina(ctx, nd)
	if core.IsConflict(err) {
		return cli.schoolSvc.GetDisciplina(ctx, core.Ref(nd.Codigo))
	}
	return d, err
}

func (cli *commandLine) seedProfessor(ctx context.Context, np school.NewProfessor) (school.Professor, error) {
	p, err := cli.schoolSvc.CreateProfessor(ctx, np)
	if core.IsConflict(err) || core.IsValidationError(err) {
		return cli.schoolSvc.GetProfessor(ctx, core.Ref(np.Codigo))
	}
	return p, err
}

func (cli *commandLine) seedAluno(ctx context.Context, na school.NewAluno) (school.Aluno, error) {
	a, err := cli.schoolSvc.CreateAluno(ctx, na)
	if core.IsConflict(err) {
		return cli.schoolSvc.GetAluno(ctx, core.Ref(na.Codigo))
	}
	return a, err
}
