package school_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/jpcarvalho/diario/core"
	"github.com/jpcarvalho/diario/core/grading"
	"github.com/jpcarvalho/diario/core/school"
	testutil "github.com/jpcarvalho/diario/tests"
)

func TestService_CreateTurma_duplicateCodigo(t *testing.T) {
	svc, _ := testutil.NewServices(t)
	testutil.CreateTurma(t, svc, "9a")

	_, err := svc.CreateTurma(context.Background(), school.NewTurma{Codigo: "9a", Serie: "9º ano", Turno: "manhã"})
	if !core.IsConflict(err) {
		t.Fatalf("CreateTurma() error = %v, want ConflictError", err)
	}
}

func TestService_Resolve_dualMode(t *testing.T) {
	svc, _ := testutil.NewServices(t)
	ctx := context.Background()
	turma := testutil.CreateTurma(t, svc, "9a")

	byCodigo, err := svc.GetTurma(ctx, "9a")
	if err != nil {
		t.Fatalf("GetTurma(codigo) failed: %v", err)
	}
	byID, err := svc.GetTurma(ctx, core.Ref(strconv.Itoa(turma.ID)))
	if err != nil {
		t.Fatalf("GetTurma(id) failed: %v", err)
	}
	if byCodigo.ID != byID.ID {
		t.Errorf("codigo and id refs resolved different turmas: %d != %d", byCodigo.ID, byID.ID)
	}

	// refs are matched case-insensitively
	upper, err := svc.GetTurma(ctx, "9A")
	if err != nil {
		t.Fatalf("GetTurma(upper codigo) failed: %v", err)
	}
	if upper.ID != turma.ID {
		t.Errorf("case-insensitive lookup resolved turma %d, want %d", upper.ID, turma.ID)
	}

	if _, err := svc.GetTurma(ctx, "nope"); !core.IsNotFound(err) {
		t.Errorf("GetTurma(missing) error = %v, want NotFoundError", err)
	}
}

func TestService_LinkTurmaDisciplina_idempotent(t *testing.T) {
	svc, _ := testutil.NewServices(t)
	ctx := context.Background()
	turma := testutil.CreateTurma(t, svc, "9a")
	testutil.CreateDisciplina(t, svc, "mat", "Matemática")

	first, err := svc.LinkTurmaDisciplina(ctx, "9a", "mat")
	if err != nil {
		t.Fatalf("LinkTurmaDisciplina() failed: %v", err)
	}
	second, err := svc.LinkTurmaDisciplina(ctx, "9a", "mat")
	if err != nil {
		t.Fatalf("LinkTurmaDisciplina() repeat failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("repeat link created a new row: id %d != %d", second.ID, first.ID)
	}

	links, err := svc.QueryTurmaDisciplinas(ctx, school.LinkFilter{TurmaID: turma.ID})
	if err != nil {
		t.Fatalf("QueryTurmaDisciplinas() failed: %v", err)
	}
	if len(links) != 1 {
		t.Errorf("stored %d links, want 1", len(links))
	}
}

func TestService_LinkTurmaDisciplinas_skipsMissing(t *testing.T) {
	svc, _ := testutil.NewServices(t)
	ctx := context.Background()
	testutil.CreateTurma(t, svc, "9a")
	testutil.CreateDisciplina(t, svc, "mat", "Matemática")
	testutil.CreateDisciplina(t, svc, "hist", "História")

	links, err := svc.LinkTurmaDisciplinas(ctx, "9a", []core.Ref{"mat", "ghost", "hist"})
	if err != nil {
		t.Fatalf("LinkTurmaDisciplinas() failed: %v", err)
	}
	if len(links) != 2 {
		t.Errorf("made %d links, want 2 (missing disciplina skipped)", len(links))
	}
}

func TestService_UnlinkTurmaDisciplina(t *testing.T) {
	svc, _ := testutil.NewServices(t)
	ctx := context.Background()
	turma := testutil.CreateTurma(t, svc, "9a")
	testutil.CreateDisciplina(t, svc, "mat", "Matemática")
	testutil.CreateDisciplina(t, svc, "hist", "História")

	if _, err := svc.LinkTurmaDisciplina(ctx, "9a", "mat"); err != nil {
		t.Fatalf("LinkTurmaDisciplina() failed: %v", err)
	}

	// targeted removal of a link that does not exist is an error
	if err := svc.UnlinkTurmaDisciplina(ctx, "9a", "hist"); !core.IsNotFound(err) {
		t.Errorf("UnlinkTurmaDisciplina(missing) error = %v, want NotFoundError", err)
	}

	if err := svc.UnlinkTurmaDisciplina(ctx, "9a", "mat"); err != nil {
		t.Fatalf("UnlinkTurmaDisciplina() failed: %v", err)
	}
	links, err := svc.QueryTurmaDisciplinas(ctx, school.LinkFilter{TurmaID: turma.ID})
	if err != nil {
		t.Fatalf("QueryTurmaDisciplinas() failed: %v", err)
	}
	if len(links) != 0 {
		t.Errorf("stored %d links after unlink, want 0", len(links))
	}

	// bulk removal reports zero without erroring
	cnt, err := svc.UnlinkTurmaDisciplinas(ctx, "9a", "")
	if err != nil {
		t.Fatalf("UnlinkTurmaDisciplinas() failed: %v", err)
	}
	if cnt != 0 {
		t.Errorf("UnlinkTurmaDisciplinas() removed %d links, want 0", cnt)
	}
}

func TestService_LinkProfessor_idempotent(t *testing.T) {
	svc, _ := testutil.NewServices(t)
	ctx := context.Background()
	testutil.CreateTurma(t, svc, "9a")
	testutil.CreateDisciplina(t, svc, "mat", "Matemática")
	prof := testutil.CreateProfessor(t, svc, "p001", "João Souza", "joao@escola.br")

	first, err := svc.LinkProfessor(ctx, "p001", "mat", "9a")
	if err != nil {
		t.Fatalf("LinkProfessor() failed: %v", err)
	}
	second, err := svc.LinkProfessor(ctx, "p001", "mat", "9a")
	if err != nil {
		t.Fatalf("LinkProfessor() repeat failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("repeat link created a new row: id %d != %d", second.ID, first.ID)
	}

	links, err := svc.QueryProfessorLinks(ctx, school.LinkFilter{ProfessorID: prof.ID})
	if err != nil {
		t.Fatalf("QueryProfessorLinks() failed: %v", err)
	}
	if len(links) != 1 {
		t.Errorf("stored %d links, want 1", len(links))
	}
}

func TestService_LinkProfessorDisciplinas(t *testing.T) {
	svc, _ := testutil.NewServices(t)
	ctx := context.Background()
	testutil.CreateTurma(t, svc, "9a")
	testutil.CreateDisciplina(t, svc, "mat", "Matemática")
	testutil.CreateProfessor(t, svc, "p001", "João Souza", "joao@escola.br")

	links, err := svc.LinkProfessorDisciplinas(ctx, "p001", "9a", []core.Ref{"mat", "ghost"})
	if err != nil {
		t.Fatalf("LinkProfessorDisciplinas() failed: %v", err)
	}
	if len(links) != 1 {
		t.Errorf("made %d links, want 1 (missing disciplina skipped)", len(links))
	}

	// a missing professor fails the whole call
	if _, err := svc.LinkProfessorDisciplinas(ctx, "ghost", "9a", []core.Ref{"mat"}); !core.IsNotFound(err) {
		t.Errorf("LinkProfessorDisciplinas(missing professor) error = %v, want NotFoundError", err)
	}
}

func TestService_UnlinkProfessorLinks_scoped(t *testing.T) {
	svc, _ := testutil.NewServices(t)
	ctx := context.Background()
	testutil.CreateTurma(t, svc, "9a")
	turma9b := testutil.CreateTurma(t, svc, "9b")
	testutil.CreateDisciplina(t, svc, "mat", "Matemática")
	prof := testutil.CreateProfessor(t, svc, "p001", "João Souza", "joao@escola.br")

	for _, turma := range []core.Ref{"9a", "9b"} {
		if _, err := svc.LinkProfessor(ctx, "p001", "mat", turma); err != nil {
			t.Fatalf("LinkProfessor(%s) failed: %v", turma, err)
		}
	}

	cnt, err := svc.UnlinkProfessorLinks(ctx, "p001", "", "9a")
	if err != nil {
		t.Fatalf("UnlinkProfessorLinks() failed: %v", err)
	}
	if cnt != 1 {
		t.Errorf("scoped unlink removed %d links, want 1", cnt)
	}

	links, err := svc.QueryProfessorLinks(ctx, school.LinkFilter{ProfessorID: prof.ID})
	if err != nil {
		t.Fatalf("QueryProfessorLinks() failed: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("stored %d links, want 1", len(links))
	}
	if links[0].TurmaID != turma9b.ID {
		t.Errorf("remaining link points at turma %d, want %d", links[0].TurmaID, turma9b.ID)
	}
}

func TestService_SetProfessorAtivo_listing(t *testing.T) {
	svc, _ := testutil.NewServices(t)
	ctx := context.Background()
	testutil.CreateProfessor(t, svc, "p001", "João Souza", "joao@escola.br")
	testutil.CreateProfessor(t, svc, "p002", "Ana Lima", "ana@escola.br")

	p, err := svc.SetProfessorAtivo(ctx, "p001", false)
	if err != nil {
		t.Fatalf("SetProfessorAtivo() failed: %v", err)
	}
	if p.Ativo {
		t.Fatal("professor still ativo after deactivation")
	}

	active, err := svc.QueryProfessores(ctx, school.ProfessorFilter{})
	if err != nil {
		t.Fatalf("QueryProfessores() failed: %v", err)
	}
	if len(active) != 1 || active[0].Codigo != "p002" {
		t.Errorf("default listing = %+v, want only p002", active)
	}

	all, err := svc.QueryProfessores(ctx, school.ProfessorFilter{IncludeInactive: true})
	if err != nil {
		t.Fatalf("QueryProfessores(include inactive) failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("inclusive listing has %d professores, want 2", len(all))
	}

	// deactivation is not deletion: direct lookup still works
	if _, err := svc.GetProfessor(ctx, "p001"); err != nil {
		t.Errorf("GetProfessor(inactive) failed: %v", err)
	}
}

func TestService_CreateProfessor_duplicateEmail(t *testing.T) {
	svc, _ := testutil.NewServices(t)
	testutil.CreateProfessor(t, svc, "p001", "João Souza", "joao@escola.br")

	_, err := svc.CreateProfessor(context.Background(), school.NewProfessor{
		Codigo: "p002", Nome: "Outro João", Email: "joao@escola.br",
	})
	if !core.IsValidationError(err) {
		t.Fatalf("CreateProfessor() error = %v, want ValidationError", err)
	}
}

func TestService_DeleteAluno_notaGuard(t *testing.T) {
	schoolSvc, gradingSvc := testutil.NewServices(t)
	ctx := context.Background()
	turma := testutil.CreateTurma(t, schoolSvc, "9a")
	testutil.CreateDisciplina(t, schoolSvc, "mat", "Matemática")
	aluno := testutil.CreateAluno(t, schoolSvc, "a001", "Maria Silva", turma)

	if _, err := gradingSvc.UpsertNota(ctx, grading.UpsertNota{
		AlunoRef:      "a001",
		DisciplinaRef: "mat",
		TurmaRef:      "9a",
		Ano:           2025,
		Bimestre:      1,
		Mensal:        testutil.Grade(8),
	}); err != nil {
		t.Fatalf("UpsertNota() failed: %v", err)
	}

	if err := schoolSvc.DeleteAluno(ctx, "a001", false); !core.IsConflict(err) {
		t.Fatalf("DeleteAluno() error = %v, want ConflictError", err)
	}

	if err := schoolSvc.DeleteAluno(ctx, "a001", true); err != nil {
		t.Fatalf("DeleteAluno(cascade) failed: %v", err)
	}
	if _, err := schoolSvc.GetAluno(ctx, "a001"); !core.IsNotFound(err) {
		t.Errorf("GetAluno() after delete error = %v, want NotFoundError", err)
	}

	notas, err := gradingSvc.QueryNotas(ctx, grading.NotaFilter{AlunoID: aluno.ID})
	if err != nil {
		t.Fatalf("QueryNotas() failed: %v", err)
	}
	if len(notas) != 0 {
		t.Errorf("cascade left %d notas behind, want 0", len(notas))
	}
}

func TestService_DeleteTurma_guards(t *testing.T) {
	svc, _ := testutil.NewServices(t)
	ctx := context.Background()
	turma := testutil.CreateTurma(t, svc, "9a")
	testutil.CreateDisciplina(t, svc, "mat", "Matemática")
	testutil.CreateAluno(t, svc, "a001", "Maria Silva", turma)

	if err := svc.DeleteTurma(ctx, "9a"); !core.IsConflict(err) {
		t.Fatalf("DeleteTurma(with alunos) error = %v, want ConflictError", err)
	}

	if err := svc.DeleteAluno(ctx, "a001", false); err != nil {
		t.Fatalf("DeleteAluno() failed: %v", err)
	}
	if _, err := svc.LinkTurmaDisciplina(ctx, "9a", "mat"); err != nil {
		t.Fatalf("LinkTurmaDisciplina() failed: %v", err)
	}

	if err := svc.DeleteTurma(ctx, "9a"); !core.IsConflict(err) {
		t.Fatalf("DeleteTurma(with links) error = %v, want ConflictError", err)
	}

	if _, err := svc.UnlinkTurmaDisciplinas(ctx, "9a", ""); err != nil {
		t.Fatalf("UnlinkTurmaDisciplinas() failed: %v", err)
	}
	if err := svc.DeleteTurma(ctx, "9a"); err != nil {
		t.Fatalf("DeleteTurma() failed: %v", err)
	}
}

func TestService_DeleteDisciplina_guard(t *testing.T) {
	svc, _ := testutil.NewServices(t)
	ctx := context.Background()
	testutil.CreateTurma(t, svc, "9a")
	testutil.CreateDisciplina(t, svc, "mat", "Matemática")

	if _, err := svc.LinkTurmaDisciplina(ctx, "9a", "mat"); err != nil {
		t.Fatalf("LinkTurmaDisciplina() failed: %v", err)
	}
	if err := svc.DeleteDisciplina(ctx, "mat"); !core.IsConflict(err) {
		t.Fatalf("DeleteDisciplina(linked) error = %v, want ConflictError", err)
	}

	if err := svc.UnlinkTurmaDisciplina(ctx, "9a", "mat"); err != nil {
		t.Fatalf("UnlinkTurmaDisciplina() failed: %v", err)
	}
	if err := svc.DeleteDisciplina(ctx, "mat"); err != nil {
		t.Fatalf("DeleteDisciplina() failed: %v", err)
	}
}
