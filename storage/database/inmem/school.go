package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/jpcarvalho/diario/core"
	"github.com/jpcarvalho/diario/core/school"
)

type schoolRepository struct {
	db *DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) *schoolRepository {
	return &schoolRepository{db: db}
}

func matches(s, search string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(search))
}

// Turma

func (repo *schoolRepository) CreateTurma(_ context.Context, t school.Turma, _ ...core.DBExecutor) (school.Turma, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, cur := range repo.db.turmas {
		if cur.Codigo == t.Codigo {
			return school.Turma{}, school.ErrCodigoExists
		}
	}
	t.ID = repo.db.nextPK()
	repo.db.turmas[t.ID] = &t
	return t, nil
}

func (repo *schoolRepository) GetTurma(_ context.Context, filter school.GetFilter, _ ...core.DBExecutor) (school.Turma, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != 0 {
		if t, ok := repo.db.turmas[filter.ID]; ok {
			return *t, nil
		}
		return school.Turma{}, school.ErrTurmaNotFound
	}
	for _, t := range repo.db.turmas {
		if t.Codigo == filter.Codigo {
			return *t, nil
		}
	}
	return school.Turma{}, school.ErrTurmaNotFound
}

func (repo *schoolRepository) QueryTurmas(_ context.Context, _ ...core.DBExecutor) ([]school.Turma, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	out := make([]school.Turma, 0, len(repo.db.turmas))
	for _, t := range repo.db.turmas {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Codigo < out[j].Codigo })
	return out, nil
}

func (repo *schoolRepository) DeleteTurma(_ context.Context, id int, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.turmas, id)
	return nil
}

// Disciplina

func (repo *schoolRepository) CreateDisciplina(_ context.Context, d school.Disciplina, _ ...core.DBExecutor) (school.Disciplina, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, cur := range repo.db.disciplinas {
		if cur.Codigo == d.Codigo {
			return school.Disciplina{}, school.ErrCodigoExists
		}
	}
	d.ID = repo.db.nextPK()
	repo.db.disciplinas[d.ID] = &d
	return d, nil
}

func (repo *schoolRepository) GetDisciplina(_ context.Context, filter school.GetFilter, _ ...core.DBExecutor) (school.Disciplina, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != 0 {
		if d, ok := repo.db.disciplinas[filter.ID]; ok {
			return *d, nil
		}
		return school.Disciplina{}, school.ErrDisciplinaNotFound
	}
	for _, d := range repo.db.disciplinas {
		if d.Codigo == filter.Codigo {
			return *d, nil
		}
	}
	return school.Disciplina{}, school.ErrDisciplinaNotFound
}

func (repo *schoolRepository) QueryDisciplinas(_ context.Context, _ ...core.DBExecutor) ([]school.Disciplina, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	out := make([]school.Disciplina, 0, len(repo.db.disciplinas))
	for _, d := range repo.db.disciplinas {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Codigo < out[j].Codigo })
	return out, nil
}

func (repo *schoolRepository) DeleteDisciplina(_ context.Context, id int, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.disciplinas, id)
	return nil
}

// Professor

func (repo *schoolRepository) CreateProfessor(_ context.Context, p school.Professor, _ ...core.DBExecutor) (school.Professor, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, cur := range repo.db.professores {
		if cur.Codigo == p.Codigo {
			return school.Professor{}, school.ErrCodigoExists
		}
		if p.Email.Valid && cur.Email.Valid && cur.Email.String == p.Email.String {
			return school.Professor{}, school.ErrEmailExists
		}
	}
	p.ID = repo.db.nextPK()
	repo.db.professores[p.ID] = &p
	return p, nil
}

func (repo *schoolRepository) GetProfessor(_ context.Context, filter school.GetFilter, _ ...core.DBExecutor) (school.Professor, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != 0 {
		if p, ok := repo.db.professores[filter.ID]; ok {
			return *p, nil
		}
		return school.Professor{}, school.ErrProfessorNotFound
	}
	for _, p := range repo.db.professores {
		if p.Codigo == filter.Codigo {
			return *p, nil
		}
	}
	return school.Professor{}, school.ErrProfessorNotFound
}

func (repo *schoolRepository) QueryProfessores(_ context.Context, filter school.ProfessorFilter, _ ...core.DBExecutor) ([]school.Professor, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	out := make([]school.Professor, 0, len(repo.db.professores))
	for _, p := range repo.db.professores {
		if !filter.IncludeInactive && !p.Ativo {
			continue
		}
		if filter.Search != "" && !matches(p.Codigo, filter.Search) && !matches(p.Nome, filter.Search) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return out, nil
}

func (repo *schoolRepository) UpdateProfessor(_ context.Context, p school.Professor, _ ...core.DBExecutor) (school.Professor, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.professores[p.ID]; !ok {
		return school.Professor{}, school.ErrProfessorNotFound
	}
	for _, cur := range repo.db.professores {
		if cur.ID != p.ID && p.Email.Valid && cur.Email.Valid && cur.Email.String == p.Email.String {
			return school.Professor{}, school.ErrEmailExists
		}
	}
	repo.db.professores[p.ID] = &p
	return p, nil
}

// Aluno

func (repo *schoolRepository) CreateAluno(_ context.Context, a school.Aluno, _ ...core.DBExecutor) (school.Aluno, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, cur := range repo.db.alunos {
		if cur.Codigo == a.Codigo {
			return school.Aluno{}, school.ErrCodigoExists
		}
	}
	a.ID = repo.db.nextPK()
	repo.db.alunos[a.ID] = &a
	return a, nil
}

func (repo *schoolRepository) GetAluno(_ context.Context, filter school.GetFilter, _ ...core.DBExecutor) (school.Aluno, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != 0 {
		if a, ok := repo.db.alunos[filter.ID]; ok {
			return *a, nil
		}
		return school.Aluno{}, school.ErrAlunoNotFound
	}
	for _, a := range repo.db.alunos {
		if a.Codigo == filter.Codigo {
			return *a, nil
		}
	}
	return school.Aluno{}, school.ErrAlunoNotFound
}

func (repo *schoolRepository) QueryAlunos(_ context.Context, filter school.AlunoFilter, _ ...core.DBExecutor) ([]school.Aluno, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	out := make([]school.Aluno, 0, len(repo.db.alunos))
	for _, a := range repo.db.alunos {
		if filter.TurmaID != 0 && a.TurmaID != filter.TurmaID {
			continue
		}
		if filter.Search != "" && !matches(a.Codigo, filter.Search) && !matches(a.Nome, filter.Search) {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return out, nil
}

func (repo *schoolRepository) UpdateAluno(_ context.Context, a school.Aluno, _ ...core.DBExecutor) (school.Aluno, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.alunos[a.ID]; !ok {
		return school.Aluno{}, school.ErrAlunoNotFound
	}
	repo.db.alunos[a.ID] = &a
	return a, nil
}

func (repo *schoolRepository) DeleteAluno(_ context.Context, id int, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.alunos, id)
	return nil
}

func (repo *schoolRepository) CountAlunosByTurma(_ context.Context, turmaID int, _ ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var cnt int
	for _, a := range repo.db.alunos {
		if a.TurmaID == turmaID {
			cnt++
		}
	}
	return cnt, nil
}

// Links

func (repo *schoolRepository) CreateTurmaDisciplina(_ context.Context, link school.TurmaDisciplina, _ ...core.DBExecutor) (school.TurmaDisciplina, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, cur := range repo.db.turmaDisciplinas {
		if cur.TurmaID == link.TurmaID && cur.DisciplinaID == link.DisciplinaID {
			return *cur, nil
		}
	}
	link.ID = repo.db.nextPK()
	repo.db.turmaDisciplinas[link.ID] = &link
	return link, nil
}

func (repo *schoolRepository) GetTurmaDisciplina(_ context.Context, turmaID, disciplinaID int, _ ...core.DBExecutor) (school.TurmaDisciplina, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, cur := range repo.db.turmaDisciplinas {
		if cur.TurmaID == turmaID && cur.DisciplinaID == disciplinaID {
			return *cur, nil
		}
	}
	return school.TurmaDisciplina{}, school.ErrLinkNotFound
}

func (repo *schoolRepository) QueryTurmaDisciplinas(_ context.Context, filter school.LinkFilter, _ ...core.DBExecutor) ([]school.TurmaDisciplina, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	out := make([]school.TurmaDisciplina, 0, len(repo.db.turmaDisciplinas))
	for _, cur := range repo.db.turmaDisciplinas {
		if filter.TurmaID != 0 && cur.TurmaID != filter.TurmaID {
			continue
		}
		if filter.DisciplinaID != 0 && cur.DisciplinaID != filter.DisciplinaID {
			continue
		}
		out = append(out, *cur)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (repo *schoolRepository) DeleteTurmaDisciplinas(_ context.Context, filter school.LinkFilter, _ ...core.DBExecutor) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var cnt int
	for id, cur := range repo.db.turmaDisciplinas {
		if filter.TurmaID != 0 && cur.TurmaID != filter.TurmaID {
			continue
		}
		if filter.DisciplinaID != 0 && cur.DisciplinaID != filter.DisciplinaID {
			continue
		}
		delete(repo.db.turmaDisciplinas, id)
		cnt++
	}
	return cnt, nil
}

func (repo *schoolRepository) CreateProfessorLink(_ context.Context, link school.ProfessorDisciplinaTurma, _ ...core.DBExecutor) (school.ProfessorDisciplinaTurma, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, cur := range repo.db.professorLinks {
		if cur.ProfessorID == link.ProfessorID && cur.DisciplinaID == link.DisciplinaID && cur.TurmaID == link.TurmaID {
			return *cur, nil
		}
	}
	link.ID = repo.db.nextPK()
	repo.db.professorLinks[link.ID] = &link
	return link, nil
}

func (repo *schoolRepository) GetProfessorLink(_ context.Context, professorID, disciplinaID, turmaID int, _ ...core.DBExecutor) (school.ProfessorDisciplinaTurma, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, cur := range repo.db.professorLinks {
		if cur.ProfessorID == professorID && cur.DisciplinaID == disciplinaID && cur.TurmaID == turmaID {
			return *cur, nil
		}
	}
	return school.ProfessorDisciplinaTurma{}, school.ErrLinkNotFound
}

func (repo *schoolRepository) QueryProfessorLinks(_ context.Context, filter school.LinkFilter, _ ...core.DBExecutor) ([]school.ProfessorDisciplinaTurma, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	out := make([]school.ProfessorDisciplinaTurma, 0, len(repo.db.professorLinks))
	for _, cur := range repo.db.professorLinks {
		if !linkMatches(*cur, filter) {
			continue
		}
		out = append(out, *cur)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (repo *schoolRepository) DeleteProfessorLinks(_ context.Context, filter school.LinkFilter, _ ...core.DBExecutor) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var cnt int
	for id, cur := range repo.db.professorLinks {
		if !linkMatches(*cur, filter) {
			continue
		}
		delete(repo.db.professorLinks, id)
		cnt++
	}
	return cnt, nil
}

func linkMatches(link school.ProfessorDisciplinaTurma, filter school.LinkFilter) bool {
	if filter.ProfessorID != 0 && link.ProfessorID != filter.ProfessorID {
		return false
	}
	if filter.DisciplinaID != 0 && link.DisciplinaID != filter.DisciplinaID {
		return false
	}
	if filter.TurmaID != 0 && link.TurmaID != filter.TurmaID {
		return false
	}
	return true
}
