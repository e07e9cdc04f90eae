package school

import (
	"context"
	"errors"
	"time"

	"github.com/jpcarvalho/diario/core"
)

// Linkage management. Linking is idempotent: an identical existing link is
// returned unchanged, whether it is found up front or surfaces as a lost
// duplicate-key race inside the store.

// LinkTurmaDisciplina records that a disciplina is taught in a turma.
func (svc *Service) LinkTurmaDisciplina(ctx context.Context, turmaRef, disciplinaRef core.Ref) (TurmaDisciplina, error) {
	var out TurmaDisciplina
	err := svc.atomic(ctx, func(tx core.DBTransactor) error {
		t, err := svc.ResolveTurma(ctx, turmaRef, tx)
		if err != nil {
			return err
		}
		d, err := svc.ResolveDisciplina(ctx, disciplinaRef, tx)
		if err != nil {
			return err
		}

		if existing, err := svc.repo.GetTurmaDisciplina(ctx, t.ID, d.ID, tx); err == nil {
			out = existing
			return nil
		} else if !errors.Is(err, ErrLinkNotFound) {
			return err
		}

		out, err = svc.repo.CreateTurmaDisciplina(ctx, TurmaDisciplina{
			TurmaID:      t.ID,
			DisciplinaID: d.ID,
			CreatedAt:    time.Now().UTC(),
		}, tx)
		return err
	})
	return out, err
}

// LinkTurmaDisciplinas links several disciplinas to one turma. Disciplinas
// that do not exist are skipped and omitted from the result; the caller can
// tell from the count that fewer links were made than refs supplied.
func (svc *Service) LinkTurmaDisciplinas(ctx context.Context, turmaRef core.Ref, disciplinaRefs []core.Ref) ([]TurmaDisciplina, error) {
	links := make([]TurmaDisciplina, 0, len(disciplinaRefs))
	for _, ref := range disciplinaRefs {
		link, err := svc.LinkTurmaDisciplina(ctx, turmaRef, ref)
		if err != nil {
			if nf, ok := notFound(err); ok && nf.Entity == "disciplina" {
				continue
			}
			return links, err
		}
		links = append(links, link)
	}
	return links, nil
}

// UnlinkTurmaDisciplina removes one specific link. A targeted removal that
// matches nothing is an error; the caller needs to know nothing happened.
func (svc *Service) UnlinkTurmaDisciplina(ctx context.Context, turmaRef, disciplinaRef core.Ref) error {
	return svc.atomic(ctx, func(tx core.DBTransactor) error {
		t, err := svc.ResolveTurma(ctx, turmaRef, tx)
		if err != nil {
			return err
		}
		d, err := svc.ResolveDisciplina(ctx, disciplinaRef, tx)
		if err != nil {
			return err
		}

		cnt, err := svc.repo.DeleteTurmaDisciplinas(ctx, LinkFilter{TurmaID: t.ID, DisciplinaID: d.ID}, tx)
		if err != nil {
			return err
		}
		if cnt == 0 {
			return core.NewNotFoundError("turma_disciplina", turmaRef.String()+"/"+disciplinaRef.String())
		}
		return nil
	})
}

// UnlinkTurmaDisciplinas removes every disciplina link of a turma, optionally
// scoped to one disciplina. Zero removals is a valid outcome.
func (svc *Service) UnlinkTurmaDisciplinas(ctx context.Context, turmaRef core.Ref, disciplinaRef core.Ref) (int, error) {
	var cnt int
	err := svc.atomic(ctx, func(tx core.DBTransactor) error {
		t, err := svc.ResolveTurma(ctx, turmaRef, tx)
		if err != nil {
			return err
		}

		filter := LinkFilter{TurmaID: t.ID}
		if disciplinaRef != "" {
			d, err := svc.ResolveDisciplina(ctx, disciplinaRef, tx)
			if err != nil {
				return err
			}
			filter.DisciplinaID = d.ID
		}

		cnt, err = svc.repo.DeleteTurmaDisciplinas(ctx, filter, tx)
		return err
	})
	return cnt, err
}

// QueryTurmaDisciplinas lists links matching a partial key; an empty filter
// returns everything.
func (svc *Service) QueryTurmaDisciplinas(ctx context.Context, filter LinkFilter) ([]TurmaDisciplina, error) {
	return svc.repo.QueryTurmaDisciplinas(ctx, filter)
}

// LinkProfessor records that a professor teaches a disciplina to a turma.
func (svc *Service) LinkProfessor(ctx context.Context, professorRef, disciplinaRef, turmaRef core.Ref) (ProfessorDisciplinaTurma, error) {
	var out ProfessorDisciplinaTurma
	err := svc.atomic(ctx, func(tx core.DBTransactor) error {
		p, err := svc.ResolveProfessor(ctx, professorRef, tx)
		if err != nil {
			return err
		}
		d, err := svc.ResolveDisciplina(ctx, disciplinaRef, tx)
		if err != nil {
			return err
		}
		t, err := svc.ResolveTurma(ctx, turmaRef, tx)
		if err != nil {
			return err
		}

		if existing, err := svc.repo.GetProfessorLink(ctx, p.ID, d.ID, t.ID, tx); err == nil {
			out = existing
			return nil
		} else if !errors.Is(err, ErrLinkNotFound) {
			return err
		}

		out, err = svc.repo.CreateProfessorLink(ctx, ProfessorDisciplinaTurma{
			ProfessorID:  p.ID,
			DisciplinaID: d.ID,
			TurmaID:      t.ID,
			CreatedAt:    time.Now().UTC(),
		}, tx)
		return err
	})
	return out, err
}

// LinkProfessorDisciplinas links a professor to several disciplinas of one
// turma, skipping disciplinas that do not exist.
func (svc *Service) LinkProfessorDisciplinas(ctx context.Context, professorRef, turmaRef core.Ref, disciplinaRefs []core.Ref) ([]ProfessorDisciplinaTurma, error) {
	links := make([]ProfessorDisciplinaTurma, 0, len(disciplinaRefs))
	for _, ref := range disciplinaRefs {
		link, err := svc.LinkProfessor(ctx, professorRef, ref, turmaRef)
		if err != nil {
			// only a missing disciplina is skippable; a missing professor or turma
			// fails the whole call
			if nf, ok := notFound(err); ok && nf.Entity == "disciplina" {
				continue
			}
			return links, err
		}
		links = append(links, link)
	}
	return links, nil
}

// UnlinkProfessor removes one specific teaching assignment.
func (svc *Service) UnlinkProfessor(ctx context.Context, professorRef, disciplinaRef, turmaRef core.Ref) error {
	return svc.atomic(ctx, func(tx core.DBTransactor) error {
		p, err := svc.ResolveProfessor(ctx, professorRef, tx)
		if err != nil {
			return err
		}
		d, err := svc.ResolveDisciplina(ctx, disciplinaRef, tx)
		if err != nil {
			return err
		}
		t, err := svc.ResolveTurma(ctx, turmaRef, tx)
		if err != nil {
			return err
		}

		cnt, err := svc.repo.DeleteProfessorLinks(ctx, LinkFilter{ProfessorID: p.ID, DisciplinaID: d.ID, TurmaID: t.ID}, tx)
		if err != nil {
			return err
		}
		if cnt == 0 {
			return core.NewNotFoundError("professor_disciplina_turma",
				professorRef.String()+"/"+disciplinaRef.String()+"/"+turmaRef.String())
		}
		return nil
	})
}

// UnlinkProfessorLinks removes every teaching assignment of a professor,
// optionally scoped to one disciplina and/or turma. Zero is a valid outcome.
func (svc *Service) UnlinkProfessorLinks(ctx context.Context, professorRef core.Ref, disciplinaRef, turmaRef core.Ref) (int, error) {
	var cnt int
	err := svc.atomic(ctx, func(tx core.DBTransactor) error {
		p, err := svc.ResolveProfessor(ctx, professorRef, tx)
		if err != nil {
			return err
		}

		filter := LinkFilter{ProfessorID: p.ID}
		if disciplinaRef != "" {
			d, err := svc.ResolveDisciplina(ctx, disciplinaRef, tx)
			if err != nil {
				return err
			}
			filter.DisciplinaID = d.ID
		}
		if turmaRef != "" {
			t, err := svc.ResolveTurma(ctx, turmaRef, tx)
			if err != nil {
				return err
			}
			filter.TurmaID = t.ID
		}

		cnt, err = svc.repo.DeleteProfessorLinks(ctx, filter, tx)
		return err
	})
	return cnt, err
}

// QueryProfessorLinks lists teaching assignments matching a partial key.
func (svc *Service) QueryProfessorLinks(ctx context.Context, filter LinkFilter) ([]ProfessorDisciplinaTurma, error) {
	return svc.repo.QueryProfessorLinks(ctx, filter)
}

func notFound(err error) (*core.NotFoundError, bool) {
	var nf *core.NotFoundError
	if errors.As(err, &nf) {
		return nf, true
	}
	return nil, false
}
