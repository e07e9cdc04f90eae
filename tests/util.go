package testutil

import (
	"context"
	"testing"

	"github.com/volatiletech/null/v8"

	"github.com/jpcarvalho/diario/core"
	"github.com/jpcarvalho/diario/core/grading"
	"github.com/jpcarvalho/diario/core/school"
	inmemdb "github.com/jpcarvalho/diario/storage/database/inmem"
)

// NewServices wires the school and grading services over a fresh in-memory
// store. The grading service sends no mail and logs nowhere.
func NewServices(t *testing.T) (*school.Service, *grading.Service) {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	schoolRepo := inmemdb.NewSchoolRepository(db)
	gradingRepo := inmemdb.NewGradingRepository(db)

	schoolSvc := school.NewService(nil, schoolRepo, gradingRepo)
	gradingSvc := grading.NewService(nil, gradingRepo, schoolSvc, nil, nil, core.GradingConfig{})
	return schoolSvc, gradingSvc
}

func CreateTurma(t *testing.T, svc *school.Service, codigo string) school.Turma {
	t.Helper()

	turma, err := svc.CreateTurma(context.Background(), school.NewTurma{
		Codigo: codigo,
		Serie:  "9º ano",
		Turno:  "manhã",
	})
	if err != nil {
		t.Fatalf("CreateTurma() failed: %v", err)
	}
	return turma
}

func CreateDisciplina(t *testing.T, svc *school.Service, codigo, nome string) school.Disciplina {
	t.Helper()

	d, err := svc.CreateDisciplina(context.Background(), school.NewDisciplina{Codigo: codigo, Nome: nome})
	if err != nil {
		t.Fatalf("CreateDisciplina() failed: %v", err)
	}
	return d
}

func CreateProfessor(t *testing.T, svc *school.Service, codigo, nome, email string) school.Professor {
	t.Helper()

	p, err := svc.CreateProfessor(context.Background(), school.NewProfessor{Codigo: codigo, Nome: nome, Email: email})
	if err != nil {
		t.Fatalf("CreateProfessor() failed: %v", err)
	}
	return p
}

func CreateAluno(t *testing.T, svc *school.Service, codigo, nome string, turma school.Turma) school.Aluno {
	t.Helper()

	a, err := svc.CreateAluno(context.Background(), school.NewAluno{
		Codigo:   codigo,
		Nome:     nome,
		TurmaRef: core.Ref(turma.Codigo),
	})
	if err != nil {
		t.Fatalf("CreateAluno() failed: %v", err)
	}
	return a
}

// Grade builds a set null.Float64; use null.Float64{} for an absent grade.
func Grade(v float64) null.Float64 {
	return null.Float64From(v)
}
