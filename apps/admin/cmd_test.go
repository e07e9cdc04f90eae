package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/jpcarvalho/diario/core"
	"github.com/jpcarvalho/diario/core/grading"
	"github.com/jpcarvalho/diario/core/school"
	testutil "github.com/jpcarvalho/diario/tests"
)

func setup(t *testing.T) *commandLine {
	schoolSvc, gradingSvc := testutil.NewServices(t)
	return &commandLine{
		schoolSvc:  schoolSvc,
		gradingSvc: gradingSvc,
	}
}

type cliTest struct {
	name         string
	args         []string // without program name
	wantErr      error
	wantErrStr   string
	wantNotFound bool
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "nota_index", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_recompute(t *testing.T) {
	cli := setup(t)

	turma := testutil.CreateTurma(t, cli.schoolSvc, "9a")
	testutil.CreateDisciplina(t, cli.schoolSvc, "mat", "Matemática")
	testutil.CreateAluno(t, cli.schoolSvc, "a001", "Maria Silva", turma)

	if _, err := cli.gradingSvc.UpsertNota(context.Background(), grading.UpsertNota{
		AlunoRef:      "a001",
		DisciplinaRef: "mat",
		TurmaRef:      "9a",
		Ano:           2025,
		Bimestre:      1,
		Mensal:        testutil.Grade(8),
	}); err != nil {
		t.Fatalf("UpsertNota() failed: %v", err)
	}

	tests := []cliTest{
		{name: "all notas", args: []string{"recompute"}},
		{name: "scoped to year", args: []string{"recompute", "-ano", "2025"}},
		{name: "scoped to turma", args: []string{"recompute", "-turma", "9a"}},
		{name: "scoped to disciplina", args: []string{"recompute", "-disciplina", "mat"}},
		{name: "unknown turma", args: []string{"recompute", "-turma", "lol"}, wantNotFound: true},
		{name: "unknown disciplina", args: []string{"recompute", "-disciplina", "lol"}, wantNotFound: true},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantNotFound {
				if !core.IsNotFound(err) {
					t.Errorf("cli.run() error = %v, want NotFoundError", err)
				}
				return
			}
			if err != nil {
				t.Errorf("cli.run() unexpected error = %v", err)
			}
		})
	}
}

func Test_commandLine_seed(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	// reruns must not duplicate anything
	for i := 0; i < 2; i++ {
		if err := cli.run([]string{"admin", "seed"}); err != nil {
			t.Fatalf("cli.run(seed) run %d failed: %v", i, err)
		}
	}

	turmas, err := cli.schoolSvc.QueryTurmas(ctx)
	if err != nil {
		t.Fatalf("QueryTurmas() failed: %v", err)
	}
	if len(turmas) != 1 {
		t.Errorf("seeded %d turmas, want 1", len(turmas))
	}
	alunos, err := cli.schoolSvc.QueryAlunos(ctx, school.AlunoFilter{})
	if err != nil {
		t.Fatalf("QueryAlunos() failed: %v", err)
	}
	if len(alunos) != 2 {
		t.Errorf("seeded %d alunos, want 2", len(alunos))
	}
	notas, err := cli.gradingSvc.QueryNotas(ctx, grading.NotaFilter{})
	if err != nil {
		t.Fatalf("QueryNotas() failed: %v", err)
	}
	if len(notas) != 2 {
		t.Errorf("seeded %d notas, want 2", len(notas))
	}
}

func Test_commandLine_boletim(t *testing.T) {
	cli := setup(t)

	turma := testutil.CreateTurma(t, cli.schoolSvc, "9a")
	testutil.CreateDisciplina(t, cli.schoolSvc, "mat", "Matemática")
	testutil.CreateAluno(t, cli.schoolSvc, "a001", "Maria Silva", turma)

	tests := []cliTest{
		{name: "no aluno", args: []string{"boletim", "-ano", "2025"}, wantErr: errHelp},
		{name: "no ano", args: []string{"boletim", "-aluno", "a001"}, wantErr: errHelp},
		{name: "unknown aluno", args: []string{"boletim", "-aluno", "lol", "-ano", "2025"}, wantNotFound: true},
		{name: "print", args: []string{"boletim", "-aluno", "a001", "-ano", "2025"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			case tt.wantNotFound:
				if !core.IsNotFound(err) {
					t.Errorf("cli.run() error = %v, want NotFoundError", err)
				}
			default:
				if err != nil {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}
