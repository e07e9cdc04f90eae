package grading_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/jpcarvalho/diario/core"
	"github.com/jpcarvalho/diario/core/grading"
	"github.com/jpcarvalho/diario/core/school"
	inmemdb "github.com/jpcarvalho/diario/storage/database/inmem"
	testutil "github.com/jpcarvalho/diario/tests"
)

type fixture struct {
	schoolSvc  *school.Service
	gradingSvc *grading.Service
	repo       grading.Repository

	turma      school.Turma
	disciplina school.Disciplina
	aluno      school.Aluno
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	schoolRepo := inmemdb.NewSchoolRepository(db)
	gradingRepo := inmemdb.NewGradingRepository(db)
	schoolSvc := school.NewService(nil, schoolRepo, gradingRepo)
	gradingSvc := grading.NewService(nil, gradingRepo, schoolSvc, nil, nil, core.GradingConfig{})

	f := &fixture{schoolSvc: schoolSvc, gradingSvc: gradingSvc, repo: gradingRepo}
	f.turma = testutil.CreateTurma(t, schoolSvc, "9a")
	f.disciplina = testutil.CreateDisciplina(t, schoolSvc, "mat", "Matemática")
	f.aluno = testutil.CreateAluno(t, schoolSvc, "a001", "Maria Silva", f.turma)
	return f
}

func (f *fixture) upsert(t *testing.T, un grading.UpsertNota) grading.Nota {
	t.Helper()

	n, err := f.gradingSvc.UpsertNota(context.Background(), un)
	if err != nil {
		t.Fatalf("UpsertNota() failed: %v", err)
	}
	return n
}

func TestService_UpsertNota_createsThenMerges(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	base := grading.UpsertNota{
		AlunoRef:      "a001",
		DisciplinaRef: "mat",
		TurmaRef:      "9a",
		Ano:           2025,
		Bimestre:      1,
	}

	// create with mensal only
	first := base
	first.Mensal = testutil.Grade(8)
	n := f.upsert(t, first)
	if n.Media != 8.0 {
		t.Errorf("media = %v, want 8.0", n.Media)
	}

	// merge: bimestral supplied, mensal retained
	second := base
	second.Bimestral = testutil.Grade(6)
	n2 := f.upsert(t, second)
	if n2.ID != n.ID {
		t.Fatalf("upsert created a second row: id %d != %d", n2.ID, n.ID)
	}
	if !n2.Mensal.Valid || n2.Mensal.Float64 != 8 {
		t.Errorf("mensal not retained on merge: %+v", n2.Mensal)
	}
	if n2.Media != 7.0 {
		t.Errorf("media = %v, want 7.0", n2.Media)
	}

	// merge: recuperacao averages with the base
	third := base
	third.Recuperacao = testutil.Grade(10)
	n3 := f.upsert(t, third)
	if n3.Media != 8.5 {
		t.Errorf("media = %v, want 8.5", n3.Media)
	}

	// stored media always equals the formula over stored grades
	notas, err := f.gradingSvc.QueryNotas(ctx, grading.NotaFilter{AlunoID: f.aluno.ID})
	if err != nil {
		t.Fatalf("QueryNotas() failed: %v", err)
	}
	if len(notas) != 1 {
		t.Fatalf("QueryNotas() returned %d rows, want 1", len(notas))
	}
	stored := notas[0]
	if want := grading.ComputeMedia(stored.Mensal, stored.Bimestral, stored.Recuperacao); stored.Media != want {
		t.Errorf("stored media = %v, want %v", stored.Media, want)
	}
}

func TestService_UpsertNota_missingAlunoWritesNothing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	un := grading.UpsertNota{
		AlunoRef:      "ghost",
		DisciplinaRef: "mat",
		TurmaRef:      "9a",
		Ano:           2025,
		Bimestre:      1,
		Mensal:        testutil.Grade(8),
	}
	if _, err := f.gradingSvc.UpsertNota(ctx, un); !core.IsNotFound(err) {
		t.Fatalf("UpsertNota() error = %v, want NotFoundError", err)
	}

	notas, err := f.gradingSvc.QueryNotas(ctx, grading.NotaFilter{})
	if err != nil {
		t.Fatalf("QueryNotas() failed: %v", err)
	}
	if len(notas) != 0 {
		t.Errorf("QueryNotas() returned %d rows, want 0", len(notas))
	}
}

func TestService_UpsertNota_dualModeRefsHitSameRecord(t *testing.T) {
	f := setup(t)

	byCodigo := grading.UpsertNota{
		AlunoRef:      "a001",
		DisciplinaRef: "mat",
		TurmaRef:      "9a",
		Ano:           2025,
		Bimestre:      2,
		Mensal:        testutil.Grade(5),
	}
	n := f.upsert(t, byCodigo)

	byID := grading.UpsertNota{
		AlunoRef:      core.Ref(strconv.Itoa(f.aluno.ID)),
		DisciplinaRef: core.Ref(strconv.Itoa(f.disciplina.ID)),
		TurmaRef:      core.Ref(strconv.Itoa(f.turma.ID)),
		Ano:           2025,
		Bimestre:      2,
		Bimestral:     testutil.Grade(7),
	}
	n2 := f.upsert(t, byID)

	if n2.ID != n.ID {
		t.Errorf("numeric and natural-key refs hit different rows: %d != %d", n2.ID, n.ID)
	}
	if n2.Media != 6.0 {
		t.Errorf("media = %v, want 6.0", n2.Media)
	}
}

func TestService_GetAnnualOutcome(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for bim := 1; bim <= 4; bim++ {
		f.upsert(t, grading.UpsertNota{
			AlunoRef:      "a001",
			DisciplinaRef: "mat",
			TurmaRef:      "9a",
			Ano:           2025,
			Bimestre:      bim,
			Mensal:        testutil.Grade(8),
			Bimestral:     testutil.Grade(8),
		})
	}

	out, err := f.gradingSvc.GetAnnualOutcome(ctx, "a001", "mat", 2025)
	if err != nil {
		t.Fatalf("GetAnnualOutcome() failed: %v", err)
	}
	if out.Situacao != grading.SituacaoAprovado {
		t.Errorf("situacao = %v, want %v", out.Situacao, grading.SituacaoAprovado)
	}
	if out.MediaAnual != 8.0 {
		t.Errorf("media anual = %v, want 8.0", out.MediaAnual)
	}
	if out.BimestresPresentes != 4 || out.BimestresEsperados != 4 {
		t.Errorf("bimestres = %d/%d, want 4/4", out.BimestresPresentes, out.BimestresEsperados)
	}
}

func TestService_GetAnnualOutcome_incomplete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for bim := 1; bim <= 2; bim++ {
		f.upsert(t, grading.UpsertNota{
			AlunoRef:      "a001",
			DisciplinaRef: "mat",
			TurmaRef:      "9a",
			Ano:           2025,
			Bimestre:      bim,
			Mensal:        testutil.Grade(9),
		})
	}

	out, err := f.gradingSvc.GetAnnualOutcome(ctx, "a001", "mat", 2025)
	if err != nil {
		t.Fatalf("GetAnnualOutcome() failed: %v", err)
	}
	if out.Situacao != grading.SituacaoIncompleto {
		t.Errorf("situacao = %v, want %v", out.Situacao, grading.SituacaoIncompleto)
	}
	if out.BimestresPresentes != 2 {
		t.Errorf("bimestres presentes = %d, want 2", out.BimestresPresentes)
	}
}

func TestService_BulkRecompute(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	var drifted grading.Nota
	for bim := 1; bim <= 3; bim++ {
		drifted = f.upsert(t, grading.UpsertNota{
			AlunoRef:      "a001",
			DisciplinaRef: "mat",
			TurmaRef:      "9a",
			Ano:           2025,
			Bimestre:      bim,
			Mensal:        testutil.Grade(8),
			Bimestral:     testutil.Grade(6),
		})
	}

	// simulate a row written under an older formula
	if err := f.repo.UpdateNotaMedia(ctx, drifted.ID, 9.9); err != nil {
		t.Fatalf("UpdateNotaMedia() failed: %v", err)
	}

	updated, err := f.gradingSvc.BulkRecompute(ctx, grading.NotaFilter{Ano: 2025})
	if err != nil {
		t.Fatalf("BulkRecompute() failed: %v", err)
	}
	if updated != 1 {
		t.Errorf("BulkRecompute() updated %d rows, want 1", updated)
	}

	n, err := f.gradingSvc.GetNota(ctx, "a001", "mat", 2025, drifted.Bimestre)
	if err != nil {
		t.Fatalf("GetNota() failed: %v", err)
	}
	if n.Media != 7.0 {
		t.Errorf("media after recompute = %v, want 7.0", n.Media)
	}

	// idempotent: a second run changes nothing
	updated, err = f.gradingSvc.BulkRecompute(ctx, grading.NotaFilter{Ano: 2025})
	if err != nil {
		t.Fatalf("BulkRecompute() second run failed: %v", err)
	}
	if updated != 0 {
		t.Errorf("BulkRecompute() second run updated %d rows, want 0", updated)
	}
}

func TestService_BuildBoletim(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	hist := testutil.CreateDisciplina(t, f.schoolSvc, "hist", "História")

	for _, d := range []string{"mat", "hist"} {
		for bim := 1; bim <= 4; bim++ {
			f.upsert(t, grading.UpsertNota{
				AlunoRef:      "a001",
				DisciplinaRef: core.Ref(d),
				TurmaRef:      "9a",
				Ano:           2025,
				Bimestre:      bim,
				Mensal:        testutil.Grade(7),
				Bimestral:     testutil.Grade(7),
			})
		}
	}

	bol, err := f.gradingSvc.BuildBoletim(ctx, "a001", 2025)
	if err != nil {
		t.Fatalf("BuildBoletim() failed: %v", err)
	}
	if bol.AlunoNome != f.aluno.Nome {
		t.Errorf("aluno nome = %q, want %q", bol.AlunoNome, f.aluno.Nome)
	}
	if len(bol.Itens) != 2 {
		t.Fatalf("boletim has %d itens, want 2", len(bol.Itens))
	}
	names := make(map[string]bool, len(bol.Itens))
	for _, item := range bol.Itens {
		names[item.Disciplina] = true
		if item.Outcome.Situacao != grading.SituacaoAprovado {
			t.Errorf("%s: situacao = %v, want %v", item.Disciplina, item.Outcome.Situacao, grading.SituacaoAprovado)
		}
	}
	if !names[f.disciplina.Codigo] || !names[hist.Codigo] {
		t.Errorf("boletim disciplinas = %v, want %q and %q", names, f.disciplina.Codigo, hist.Codigo)
	}
}

type mailRecorder struct {
	msgs []*core.EmailMessage
}

func (r *mailRecorder) SendMessages(messages ...*core.EmailMessage) {
	r.msgs = append(r.msgs, messages...)
}

func TestService_EmailBoletim(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	rec := &mailRecorder{}
	svc := grading.NewService(nil, f.repo, f.schoolSvc, rec, nil, core.GradingConfig{})

	f.upsert(t, grading.UpsertNota{
		AlunoRef:      "a001",
		DisciplinaRef: "mat",
		TurmaRef:      "9a",
		Ano:           2025,
		Bimestre:      1,
		Mensal:        testutil.Grade(8),
	})

	// aluno has no email on file and no recipient was given
	if _, err := svc.EmailBoletim(ctx, "a001", 2025, ""); !core.IsValidationError(err) {
		t.Errorf("EmailBoletim() without recipient error = %v, want ValidationError", err)
	}

	bol, err := svc.EmailBoletim(ctx, "a001", 2025, "responsavel@example.com")
	if err != nil {
		t.Fatalf("EmailBoletim() failed: %v", err)
	}
	if len(bol.Itens) != 1 {
		t.Errorf("boletim has %d itens, want 1", len(bol.Itens))
	}
	if len(rec.msgs) != 1 {
		t.Fatalf("sent %d messages, want 1", len(rec.msgs))
	}
	msg := rec.msgs[0]
	if len(msg.To) != 1 || msg.To[0].Address != "responsavel@example.com" {
		t.Errorf("message recipients = %v, want responsavel@example.com", msg.To)
	}
	if msg.TemplateName != "boletim" {
		t.Errorf("message template = %q, want %q", msg.TemplateName, "boletim")
	}

	// a service wired without mail cannot send
	if _, err := f.gradingSvc.EmailBoletim(ctx, "a001", 2025, "responsavel@example.com"); err == nil {
		t.Error("EmailBoletim() with no mail service returned nil error")
	}
}
