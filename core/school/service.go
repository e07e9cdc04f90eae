package school

import (
	"context"
	"errors"
	"time"

	"github.com/jpcarvalho/diario/core"
)

var (
	// errors
	ErrTurmaNotFound      = errors.New("turma not found")
	ErrDisciplinaNotFound = errors.New("disciplina not found")
	ErrProfessorNotFound  = errors.New("professor not found")
	ErrAlunoNotFound      = errors.New("aluno not found")
	ErrLinkNotFound       = errors.New("link not found")
	ErrCodigoExists       = errors.New("an entity with this codigo already exists")
	ErrEmailExists        = errors.New("a professor with this email already exists")
)

type (
	Repository interface {
		CreateTurma(ctx context.Context, t Turma, exec ...core.DBExecutor) (Turma, error)
		GetTurma(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Turma, error)
		QueryTurmas(ctx context.Context, exec ...core.DBExecutor) ([]Turma, error)
		DeleteTurma(ctx context.Context, id int, exec ...core.DBExecutor) error

		CreateDisciplina(ctx context.Context, d Disciplina, exec ...core.DBExecutor) (Disciplina, error)
		GetDisciplina(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Disciplina, error)
		QueryDisciplinas(ctx context.Context, exec ...core.DBExecutor) ([]Disciplina, error)
		DeleteDisciplina(ctx context.Context, id int, exec ...core.DBExecutor) error

		CreateProfessor(ctx context.Context, p Professor, exec ...core.DBExecutor) (Professor, error)
		GetProfessor(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Professor, error)
		QueryProfessores(ctx context.Context, filter ProfessorFilter, exec ...core.DBExecutor) ([]Professor, error)
		UpdateProfessor(ctx context.Context, p Professor, exec ...core.DBExecutor) (Professor, error)

		CreateAluno(ctx context.Context, a Aluno, exec ...core.DBExecutor) (Aluno, error)
		GetAluno(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Aluno, error)
		QueryAlunos(ctx context.Context, filter AlunoFilter, exec ...core.DBExecutor) ([]Aluno, error)
		UpdateAluno(ctx context.Context, a Aluno, exec ...core.DBExecutor) (Aluno, error)
		DeleteAluno(ctx context.Context, id int, exec ...core.DBExecutor) error
		CountAlunosByTurma(ctx context.Context, turmaID int, exec ...core.DBExecutor) (int, error)

		// CreateTurmaDisciplina inserts the link; a duplicate-key race returns the
		// existing row, never an error.
		CreateTurmaDisciplina(ctx context.Context, link TurmaDisciplina, exec ...core.DBExecutor) (TurmaDisciplina, error)
		GetTurmaDisciplina(ctx context.Context, turmaID, disciplinaID int, exec ...core.DBExecutor) (TurmaDisciplina, error)
		QueryTurmaDisciplinas(ctx context.Context, filter LinkFilter, exec ...core.DBExecutor) ([]TurmaDisciplina, error)
		// DeleteTurmaDisciplinas removes every link matching the filter and reports
		// how many rows went away; 0 is a valid outcome.
		DeleteTurmaDisciplinas(ctx context.Context, filter LinkFilter, exec ...core.DBExecutor) (int, error)

		CreateProfessorLink(ctx context.Context, link ProfessorDisciplinaTurma, exec ...core.DBExecutor) (ProfessorDisciplinaTurma, error)
		GetProfessorLink(ctx context.Context, professorID, disciplinaID, turmaID int, exec ...core.DBExecutor) (ProfessorDisciplinaTurma, error)
		QueryProfessorLinks(ctx context.Context, filter LinkFilter, exec ...core.DBExecutor) ([]ProfessorDisciplinaTurma, error)
		DeleteProfessorLinks(ctx context.Context, filter LinkFilter, exec ...core.DBExecutor) (int, error)
	}

	// NotaChecker reports and removes grade records attached to an aluno. It is
	// implemented by the grading repository; the school service needs it so that
	// deleting an aluno never silently destroys grade history.
	NotaChecker interface {
		CountNotasByAluno(ctx context.Context, alunoID int, exec ...core.DBExecutor) (int, error)
		DeleteNotasByAluno(ctx context.Context, alunoID int, exec ...core.DBExecutor) (int, error)
	}

	Service struct {
		db    core.DB
		repo  Repository
		notas NotaChecker
	}
)

func NewService(db core.DB, repo Repository, notas NotaChecker) *Service {
	return &Service{db: db, repo: repo, notas: notas}
}

// atomic runs fn in a transaction; with a nil DB (in-memory store, which is
// atomic on its own) fn runs directly.
func (svc *Service) atomic(ctx context.Context, fn func(tx core.DBTransactor) error) error {
	if svc.db == nil {
		return fn(nil)
	}
	return core.Atomic(ctx, svc.db, fn)
}

// Entity resolution

// ResolveTurma resolves a dual-mode reference: surrogate-id lookup first for
// all-digit refs, natural-key lookup otherwise or as fallback.
func (svc *Service) ResolveTurma(ctx context.Context, ref core.Ref, exec ...core.DBExecutor) (Turma, error) {
	if id, ok := ref.Numeric(); ok {
		t, err := svc.repo.GetTurma(ctx, GetFilter{ID: id}, exec...)
		if err == nil {
			return t, nil
		}
		if errors.Is(err, ErrTurmaNotFound) {
			// fall through to natural-key lookup
		} else {
			return Turma{}, err
		}
	}
	t, err := svc.repo.GetTurma(ctx, GetFilter{Codigo: core.CleanString(ref.String(), true /* lower */)}, exec...)
	if errors.Is(err, ErrTurmaNotFound) {
		return Turma{}, core.NewNotFoundError("turma", ref.String())
	}
	return t, err
}

func (svc *Service) ResolveDisciplina(ctx context.Context, ref core.Ref, exec ...core.DBExecutor) (Disciplina, error) {
	if id, ok := ref.Numeric(); ok {
		d, err := svc.repo.GetDisciplina(ctx, GetFilter{ID: id}, exec...)
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, ErrDisciplinaNotFound) {
			return Disciplina{}, err
		}
	}
	d, err := svc.repo.GetDisciplina(ctx, GetFilter{Codigo: core.CleanString(ref.String(), true)}, exec...)
	if errors.Is(err, ErrDisciplinaNotFound) {
		return Disciplina{}, core.NewNotFoundError("disciplina", ref.String())
	}
	return d, err
}

func (svc *Service) ResolveProfessor(ctx context.Context, ref core.Ref, exec ...core.DBExecutor) (Professor, error) {
	if id, ok := ref.Numeric(); ok {
		p, err := svc.repo.GetProfessor(ctx, GetFilter{ID: id}, exec...)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrProfessorNotFound) {
			return Professor{}, err
		}
	}
	p, err := svc.repo.GetProfessor(ctx, GetFilter{Codigo: core.CleanString(ref.String(), true)}, exec...)
	if errors.Is(err, ErrProfessorNotFound) {
		return Professor{}, core.NewNotFoundError("professor", ref.String())
	}
	return p, err
}

func (svc *Service) ResolveAluno(ctx context.Context, ref core.Ref, exec ...core.DBExecutor) (Aluno, error) {
	if id, ok := ref.Numeric(); ok {
		a, err := svc.repo.GetAluno(ctx, GetFilter{ID: id}, exec...)
		if err == nil {
			return a, nil
		}
		if !errors.Is(err, ErrAlunoNotFound) {
			return Aluno{}, err
		}
	}
	a, err := svc.repo.GetAluno(ctx, GetFilter{Codigo: core.CleanString(ref.String(), true)}, exec...)
	if errors.Is(err, ErrAlunoNotFound) {
		return Aluno{}, core.NewNotFoundError("aluno", ref.String())
	}
	return a, err
}

// Turma

// CreateTurma registers a turma. Codigos are stored lowercased so reference
// resolution stays case-insensitive.
func (svc *Service) CreateTurma(ctx context.Context, nt NewTurma) (Turma, error) {
	now := time.Now().UTC()
	t := Turma{
		Codigo:      core.CleanString(nt.Codigo, true /* lower */),
		Serie:       nt.Serie,
		Turno:       nt.Turno,
		Tipo:        nt.Tipo,
		Coordenador: nt.Coordenador,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := svc.repo.CreateTurma(ctx, t)
	if errors.Is(err, ErrCodigoExists) {
		return Turma{}, core.NewConflictError("turma", nt.Codigo)
	}
	return created, err
}

func (svc *Service) GetTurma(ctx context.Context, ref core.Ref) (Turma, error) {
	return svc.ResolveTurma(ctx, ref)
}

func (svc *Service) QueryTurmas(ctx context.Context) ([]Turma, error) {
	return svc.repo.QueryTurmas(ctx)
}

// DeleteTurma refuses to remove a turma that still has alunos or links; callers
// must unlink explicitly first.
func (svc *Service) DeleteTurma(ctx context.Context, ref core.Ref) error {
	return svc.atomic(ctx, func(tx core.DBTransactor) error {
		t, err := svc.ResolveTurma(ctx, ref, tx)
		if err != nil {
			return err
		}

		cnt, err := svc.repo.CountAlunosByTurma(ctx, t.ID, tx)
		if err != nil {
			return err
		}
		if cnt > 0 {
			return core.NewConflictError("turma", "turma has alunos")
		}

		links, err := svc.repo.QueryTurmaDisciplinas(ctx, LinkFilter{TurmaID: t.ID}, tx)
		if err != nil {
			return err
		}
		profLinks, err := svc.repo.QueryProfessorLinks(ctx, LinkFilter{TurmaID: t.ID}, tx)
		if err != nil {
			return err
		}
		if len(links) > 0 || len(profLinks) > 0 {
			return core.NewConflictError("turma", "turma has linked disciplinas")
		}

		return svc.repo.DeleteTurma(ctx, t.ID, tx)
	})
}

// Disciplina

func (svc *Service) CreateDisciplina(ctx context.Context, nd NewDisciplina) (Disciplina, error) {
	now := time.Now().UTC()
	d := Disciplina{
		Codigo:       core.CleanString(nd.Codigo, true),
		Nome:         nd.Nome,
		CargaHoraria: nd.CargaHoraria,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := svc.repo.CreateDisciplina(ctx, d)
	if errors.Is(err, ErrCodigoExists) {
		return Disciplina{}, core.NewConflictError("disciplina", nd.Codigo)
	}
	return created, err
}

func (svc *Service) GetDisciplina(ctx context.Context, ref core.Ref) (Disciplina, error) {
	return svc.ResolveDisciplina(ctx, ref)
}

func (svc *Service) QueryDisciplinas(ctx context.Context) ([]Disciplina, error) {
	return svc.repo.QueryDisciplinas(ctx)
}

// DeleteDisciplina refuses to remove a disciplina that is still linked.
func (svc *Service) DeleteDisciplina(ctx context.Context, ref core.Ref) error {
	return svc.atomic(ctx, func(tx core.DBTransactor) error {
		d, err := svc.ResolveDisciplina(ctx, ref, tx)
		if err != nil {
			return err
		}

		links, err := svc.repo.QueryTurmaDisciplinas(ctx, LinkFilter{DisciplinaID: d.ID}, tx)
		if err != nil {
			return err
		}
		profLinks, err := svc.repo.QueryProfessorLinks(ctx, LinkFilter{DisciplinaID: d.ID}, tx)
		if err != nil {
			return err
		}
		if len(links) > 0 || len(profLinks) > 0 {
			return core.NewConflictError("disciplina", "disciplina is linked")
		}

		return svc.repo.DeleteDisciplina(ctx, d.ID, tx)
	})
}

// Professor

func (svc *Service) CreateProfessor(ctx context.Context, np NewProfessor) (Professor, error) {
	now := time.Now().UTC()
	p := Professor{
		Codigo:    core.CleanString(np.Codigo, true),
		Nome:      np.Nome,
		Ativo:     true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if np.Email != "" {
		p.Email.SetValid(np.Email)
	}
	created, err := svc.repo.CreateProfessor(ctx, p)
	switch {
	case errors.Is(err, ErrCodigoExists):
		return Professor{}, core.NewConflictError("professor", np.Codigo)
	case errors.Is(err, ErrEmailExists):
		return Professor{}, core.NewValidationError(err, core.FieldError{Field: "email_professor", Error: err.Error()})
	}
	return created, err
}

func (svc *Service) GetProfessor(ctx context.Context, ref core.Ref) (Professor, error) {
	return svc.ResolveProfessor(ctx, ref)
}

func (svc *Service) QueryProfessores(ctx context.Context, filter ProfessorFilter) ([]Professor, error) {
	filter.Clean()
	return svc.repo.QueryProfessores(ctx, filter)
}

// SetProfessorAtivo flips the logical-delete flag. Deactivation hides the
// professor from default listings; links and history stay untouched.
func (svc *Service) SetProfessorAtivo(ctx context.Context, ref core.Ref, ativo bool) (Professor, error) {
	var out Professor
	err := svc.atomic(ctx, func(tx core.DBTransactor) error {
		p, err := svc.ResolveProfessor(ctx, ref, tx)
		if err != nil {
			return err
		}
		p.Ativo = ativo
		p.UpdatedAt = time.Now().UTC()
		out, err = svc.repo.UpdateProfessor(ctx, p, tx)
		return err
	})
	return out, err
}

// Aluno

func (svc *Service) CreateAluno(ctx context.Context, na NewAluno) (Aluno, error) {
	var out Aluno
	err := svc.atomic(ctx, func(tx core.DBTransactor) error {
		t, err := svc.ResolveTurma(ctx, na.TurmaRef, tx)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		a := Aluno{
			Codigo:    core.CleanString(na.Codigo, true),
			Nome:      na.Nome,
			Sexo:      na.Sexo,
			DataNasc:  na.DataNasc,
			NomeMae:   na.NomeMae,
			TurmaID:   t.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if na.Telefone != "" {
			a.Telefone.SetValid(na.Telefone)
		}
		if na.Email != "" {
			a.Email.SetValid(na.Email)
		}

		out, err = svc.repo.CreateAluno(ctx, a, tx)
		if errors.Is(err, ErrCodigoExists) {
			return core.NewConflictError("aluno", na.Codigo)
		}
		return err
	})
	return out, err
}

func (svc *Service) GetAluno(ctx context.Context, ref core.Ref) (Aluno, error) {
	return svc.ResolveAluno(ctx, ref)
}

func (svc *Service) QueryAlunos(ctx context.Context, filter AlunoFilter) ([]Aluno, error) {
	filter.Clean()
	return svc.repo.QueryAlunos(ctx, filter)
}

func (svc *Service) UpdateAluno(ctx context.Context, ref core.Ref, ua UpdateAluno) (Aluno, error) {
	var out Aluno
	err := svc.atomic(ctx, func(tx core.DBTransactor) error {
		a, err := svc.ResolveAluno(ctx, ref, tx)
		if err != nil {
			return err
		}

		if ua.Nome != "" {
			a.Nome = ua.Nome
		}
		if ua.Sexo != "" {
			a.Sexo = ua.Sexo
		}
		if ua.NomeMae != "" {
			a.NomeMae = ua.NomeMae
		}
		if ua.Telefone != "" {
			a.Telefone.SetValid(ua.Telefone)
		}
		if ua.Email != "" {
			a.Email.SetValid(ua.Email)
		}
		if ua.TurmaRef != "" {
			t, err := svc.ResolveTurma(ctx, ua.TurmaRef, tx)
			if err != nil {
				return err
			}
			a.TurmaID = t.ID
		}
		a.UpdatedAt = time.Now().UTC()

		out, err = svc.repo.UpdateAluno(ctx, a, tx)
		return err
	})
	return out, err
}

// DeleteAluno removes an aluno. When the aluno still has notas the delete is
// rejected with a conflict unless cascade is set, in which case the notas are
// removed in the same transaction.
func (svc *Service) DeleteAluno(ctx context.Context, ref core.Ref, cascade bool) error {
	return svc.atomic(ctx, func(tx core.DBTransactor) error {
		a, err := svc.ResolveAluno(ctx, ref, tx)
		if err != nil {
			return err
		}

		cnt, err := svc.notas.CountNotasByAluno(ctx, a.ID, tx)
		if err != nil {
			return err
		}
		if cnt > 0 {
			if !cascade {
				return core.NewConflictError("aluno", "aluno has notas")
			}
			if _, err := svc.notas.DeleteNotasByAluno(ctx, a.ID, tx); err != nil {
				return err
			}
		}

		return svc.repo.DeleteAluno(ctx, a.ID, tx)
	})
}
