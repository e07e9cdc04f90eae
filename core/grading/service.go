package grading

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/mail"
	"sort"
	"strconv"
	"time"

	"github.com/jpcarvalho/diario/core"
	"github.com/jpcarvalho/diario/core/school"
)

var (
	// errors
	ErrNotaNotFound = errors.New("nota not found")
	ErrNotaExists   = errors.New("a nota for this aluno/disciplina/ano/bimestre already exists")
)

type (
	Repository interface {
		CreateNota(ctx context.Context, n Nota, exec ...core.DBExecutor) (Nota, error)
		GetNota(ctx context.Context, alunoID, disciplinaID, ano, bimestre int, exec ...core.DBExecutor) (Nota, error)
		UpdateNota(ctx context.Context, n Nota, exec ...core.DBExecutor) (Nota, error)
		// UpdateNotaMedia rewrites only the denormalized media of a row; used by
		// bulk recomputation.
		UpdateNotaMedia(ctx context.Context, id int, media float64, exec ...core.DBExecutor) error
		QueryNotas(ctx context.Context, filter NotaFilter, exec ...core.DBExecutor) ([]Nota, error)

		CountNotasByAluno(ctx context.Context, alunoID int, exec ...core.DBExecutor) (int, error)
		DeleteNotasByAluno(ctx context.Context, alunoID int, exec ...core.DBExecutor) (int, error)
	}

	// Resolver resolves dual-mode entity references; satisfied by
	// *school.Service.
	Resolver interface {
		ResolveAluno(ctx context.Context, ref core.Ref, exec ...core.DBExecutor) (school.Aluno, error)
		ResolveDisciplina(ctx context.Context, ref core.Ref, exec ...core.DBExecutor) (school.Disciplina, error)
		ResolveTurma(ctx context.Context, ref core.Ref, exec ...core.DBExecutor) (school.Turma, error)
	}

	Service struct {
		db       core.DB
		repo     Repository
		resolver Resolver
		mailSvc  core.EmailService
		logger   core.Logger
		conf     core.GradingConfig
	}
)

var _ Resolver = (*school.Service)(nil) // interface compliance check

func NewService(db core.DB, repo Repository, resolver Resolver, mailSvc core.EmailService, logger core.Logger, conf core.GradingConfig) *Service {
	if conf.ExpectedBimesters <= 0 {
		conf.ExpectedBimesters = 4
	}
	if conf.RecomputeBatchSize <= 0 {
		conf.RecomputeBatchSize = 500
	}
	if conf.RecomputeTolerance <= 0 {
		conf.RecomputeTolerance = 0.01
	}
	return &Service{db: db, repo: repo, resolver: resolver, mailSvc: mailSvc, logger: logger, conf: conf}
}

// atomic runs fn in a transaction; with a nil DB (in-memory store, atomic on
// its own) fn runs directly.
func (svc *Service) atomic(ctx context.Context, fn func(tx core.DBTransactor) error) error {
	if svc.db == nil {
		return fn(nil)
	}
	return core.Atomic(ctx, svc.db, fn)
}

// UpsertNota is the only mutation path for grade records. It resolves the
// three entity references, merges the supplied grades over whatever is stored
// for the composite key, recomputes media and writes the whole record in one
// transaction. A creation that loses a duplicate-key race degrades into the
// merge-update of the row that won.
func (svc *Service) UpsertNota(ctx context.Context, un UpsertNota) (Nota, error) {
	var out Nota
	err := svc.atomic(ctx, func(tx core.DBTransactor) error {
		aluno, err := svc.resolver.ResolveAluno(ctx, un.AlunoRef, tx)
		if err != nil {
			return err
		}
		disciplina, err := svc.resolver.ResolveDisciplina(ctx, un.DisciplinaRef, tx)
		if err != nil {
			return err
		}
		turma, err := svc.resolver.ResolveTurma(ctx, un.TurmaRef, tx)
		if err != nil {
			return err
		}

		existing, err := svc.repo.GetNota(ctx, aluno.ID, disciplina.ID, un.Ano, un.Bimestre, tx)
		switch {
		case err == nil:
			out, err = svc.mergeUpdate(ctx, existing, un, tx)
			return err
		case errors.Is(err, ErrNotaNotFound):
			// create below
		default:
			return err
		}

		now := time.Now().UTC()
		n := Nota{
			AlunoID:      aluno.ID,
			DisciplinaID: disciplina.ID,
			TurmaID:      turma.ID,
			Ano:          un.Ano,
			Bimestre:     un.Bimestre,
			Mensal:       un.Mensal,
			Bimestral:    un.Bimestral,
			Recuperacao:  un.Recuperacao,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		n.Media = ComputeMedia(n.Mensal, n.Bimestral, n.Recuperacao)

		out, err = svc.repo.CreateNota(ctx, n, tx)
		if errors.Is(err, ErrNotaExists) {
			// lost the race: the row exists now, fall back to the merge-update
			existing, err = svc.repo.GetNota(ctx, aluno.ID, disciplina.ID, un.Ano, un.Bimestre, tx)
			if err != nil {
				return err
			}
			out, err = svc.mergeUpdate(ctx, existing, un, tx)
		}
		return err
	})
	return out, err
}

// mergeUpdate overlays the supplied grades on a stored nota: set fields
// override, unset ones keep their stored values. Media is always recomputed.
func (svc *Service) mergeUpdate(ctx context.Context, n Nota, un UpsertNota, exec ...core.DBExecutor) (Nota, error) {
	if un.Mensal.Valid {
		n.Mensal = un.Mensal
	}
	if un.Bimestral.Valid {
		n.Bimestral = un.Bimestral
	}
	if un.Recuperacao.Valid {
		n.Recuperacao = un.Recuperacao
	}
	n.Media = ComputeMedia(n.Mensal, n.Bimestral, n.Recuperacao)
	n.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateNota(ctx, n, exec...)
}

// GetNota returns the grade record for a composite key.
func (svc *Service) GetNota(ctx context.Context, alunoRef, disciplinaRef core.Ref, ano, bimestre int) (Nota, error) {
	aluno, err := svc.resolver.ResolveAluno(ctx, alunoRef)
	if err != nil {
		return Nota{}, err
	}
	disciplina, err := svc.resolver.ResolveDisciplina(ctx, disciplinaRef)
	if err != nil {
		return Nota{}, err
	}
	n, err := svc.repo.GetNota(ctx, aluno.ID, disciplina.ID, ano, bimestre)
	if errors.Is(err, ErrNotaNotFound) {
		return Nota{}, core.NewNotFoundError("nota",
			fmt.Sprintf("%s/%s/%d/%d", alunoRef, disciplinaRef, ano, bimestre))
	}
	return n, err
}

// QueryNotas lists grade records matching a partial key.
func (svc *Service) QueryNotas(ctx context.Context, filter NotaFilter) ([]Nota, error) {
	return svc.repo.QueryNotas(ctx, filter)
}

// GetAnnualOutcome aggregates a year's notas for one aluno/disciplina into the
// annual average and situação.
func (svc *Service) GetAnnualOutcome(ctx context.Context, alunoRef, disciplinaRef core.Ref, ano int) (YearlyOutcome, error) {
	aluno, err := svc.resolver.ResolveAluno(ctx, alunoRef)
	if err != nil {
		return YearlyOutcome{}, err
	}
	disciplina, err := svc.resolver.ResolveDisciplina(ctx, disciplinaRef)
	if err != nil {
		return YearlyOutcome{}, err
	}

	notas, err := svc.repo.QueryNotas(ctx, NotaFilter{AlunoID: aluno.ID, DisciplinaID: disciplina.ID, Ano: ano})
	if err != nil {
		return YearlyOutcome{}, err
	}
	return svc.outcome(aluno.ID, disciplina.ID, ano, notas), nil
}

func (svc *Service) outcome(alunoID, disciplinaID, ano int, notas []Nota) YearlyOutcome {
	byBimestre := make(map[int]float64, len(notas))
	for _, n := range notas {
		byBimestre[n.Bimestre] = n.Media
	}

	bimestres := make([]int, 0, len(byBimestre))
	for b := range byBimestre {
		bimestres = append(bimestres, b)
	}
	sort.Ints(bimestres)

	medias := make([]float64, 0, len(bimestres))
	for _, b := range bimestres {
		medias = append(medias, byBimestre[b])
	}

	situacao, annual := ComputeSituacao(medias, svc.conf.ExpectedBimesters)
	return YearlyOutcome{
		AlunoID:            alunoID,
		DisciplinaID:       disciplinaID,
		Ano:                ano,
		Medias:             byBimestre,
		BimestresPresentes: len(medias),
		BimestresEsperados: svc.conf.ExpectedBimesters,
		MediaAnual:         annual,
		Situacao:           situacao,
	}
}

// BulkRecompute re-derives media for every nota matching the filter and
// rewrites rows whose stored media drifts beyond the configured tolerance
// (historical rows may have been written under older formula variants).
// It processes keyset batches, each in its own transaction, so a mid-run
// failure keeps earlier batches committed; rerunning with the same filter is
// idempotent. Every changed row is reported through the logger.
func (svc *Service) BulkRecompute(ctx context.Context, filter NotaFilter) (int, error) {
	var updated int
	filter.AfterID = 0
	filter.Limit = svc.conf.RecomputeBatchSize

	for {
		var batch []Nota
		err := svc.atomic(ctx, func(tx core.DBTransactor) error {
			var err error
			batch, err = svc.repo.QueryNotas(ctx, filter, tx)
			if err != nil {
				return err
			}
			for _, n := range batch {
				want := ComputeMedia(n.Mensal, n.Bimestral, n.Recuperacao)
				if math.Abs(want-n.Media) <= svc.conf.RecomputeTolerance {
					continue
				}
				if err := svc.repo.UpdateNotaMedia(ctx, n.ID, want, tx); err != nil {
					return err
				}
				updated++
				if svc.logger != nil {
					svc.logger.Info("recomputed nota media", map[string]interface{}{
						"nota_id":   n.ID,
						"aluno_id":  n.AlunoID,
						"old_media": n.Media,
						"new_media": want,
					})
				}
			}
			return nil
		})
		if err != nil {
			return updated, err
		}
		if len(batch) < filter.Limit {
			return updated, nil
		}
		filter.AfterID = batch[len(batch)-1].ID
	}
}

// BuildBoletim assembles an aluno's report card for a year: one yearly outcome
// per disciplina that has notas.
func (svc *Service) BuildBoletim(ctx context.Context, alunoRef core.Ref, ano int) (Boletim, error) {
	aluno, err := svc.resolver.ResolveAluno(ctx, alunoRef)
	if err != nil {
		return Boletim{}, err
	}

	notas, err := svc.repo.QueryNotas(ctx, NotaFilter{AlunoID: aluno.ID, Ano: ano})
	if err != nil {
		return Boletim{}, err
	}

	byDisciplina := make(map[int][]Nota)
	for _, n := range notas {
		byDisciplina[n.DisciplinaID] = append(byDisciplina[n.DisciplinaID], n)
	}
	ids := make([]int, 0, len(byDisciplina))
	for id := range byDisciplina {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	bol := Boletim{AlunoID: aluno.ID, AlunoNome: aluno.Nome, Ano: ano, Itens: make([]BoletimItem, 0, len(ids))}
	for _, id := range ids {
		d, err := svc.resolver.ResolveDisciplina(ctx, core.Ref(strconv.Itoa(id)))
		if err != nil {
			return Boletim{}, err
		}
		bol.Itens = append(bol.Itens, BoletimItem{
			Disciplina:     d.Codigo,
			NomeDisciplina: d.Nome,
			Outcome:        svc.outcome(aluno.ID, id, ano, byDisciplina[id]),
		})
	}
	return bol, nil
}

// EmailBoletim mails an aluno's report card. With no explicit recipient the
// aluno's own email is used.
func (svc *Service) EmailBoletim(ctx context.Context, alunoRef core.Ref, ano int, to string) (Boletim, error) {
	if svc.mailSvc == nil {
		return Boletim{}, errors.New("no email service configured")
	}
	aluno, err := svc.resolver.ResolveAluno(ctx, alunoRef)
	if err != nil {
		return Boletim{}, err
	}
	if to == "" {
		if !aluno.Email.Valid || aluno.Email.String == "" {
			return Boletim{}, core.NewValidationError(errors.New("aluno has no email and no recipient was given"),
				core.FieldError{Field: "to", Error: "recipient required"})
		}
		to = aluno.Email.String
	}

	bol, err := svc.BuildBoletim(ctx, alunoRef, ano)
	if err != nil {
		return Boletim{}, err
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: aluno.Nome, Address: to}},
		Subject:      fmt.Sprintf("Boletim %d - %s", ano, aluno.Nome),
		TemplateName: "boletim",
		TemplateData: bol,
	}
	svc.mailSvc.SendMessages(msg)
	return bol, nil
}
