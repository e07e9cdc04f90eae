package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/jpcarvalho/diario/core"
	"github.com/jpcarvalho/diario/core/school"
)

const (
	turmaCols      = "id, codigo, serie, turno, tipo, coordenador, created_at, updated_at"
	disciplinaCols = "id, codigo, nome, carga_horaria, created_at, updated_at"
	professorCols  = "id, codigo, nome, email, ativo, created_at, updated_at"
	alunoCols      = "id, codigo, nome, sexo, data_nasc, nome_mae, turma_id, telefone, email, created_at, updated_at"
)

type schoolRepository struct {
	exec core.DBExecutor
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(exec core.DBExecutor) *schoolRepository {
	return &schoolRepository{exec: exec}
}

func (repo schoolRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return repo.exec
}

// Turma

func (repo schoolRepository) CreateTurma(ctx context.Context, t school.Turma, exec ...core.DBExecutor) (school.Turma, error) {
	err := repo.getExec(exec).QueryRowContext(ctx,
		`INSERT INTO turma (codigo, serie, turno, tipo, coordenador, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		t.Codigo, t.Serie, t.Turno, t.Tipo, t.Coordenador, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
	if err != nil {
		if isUniqueViolation(err, "turma_codigo_key") {
			return school.Turma{}, school.ErrCodigoExists
		}
		return school.Turma{}, errors.Wrap(err, "inserting turma")
	}
	return t, nil
}

func (repo schoolRepository) GetTurma(ctx context.Context, filter school.GetFilter, exec ...core.DBExecutor) (school.Turma, error) {
	q := "SELECT " + turmaCols + " FROM turma WHERE codigo = $1"
	key := interface{}(filter.Codigo)
	if filter.ID != 0 {
		q = "SELECT " + turmaCols + " FROM turma WHERE id = $1"
		key = filter.ID
	}

	var out []school.Turma
	if err := queryAll(ctx, repo.getExec(exec), &out, q, key); err != nil {
		return school.Turma{}, errors.Wrap(err, "finding turma")
	}
	if len(out) == 0 {
		return school.Turma{}, school.ErrTurmaNotFound
	}
	return out[0], nil
}

func (repo schoolRepository) QueryTurmas(ctx context.Context, exec ...core.DBExecutor) ([]school.Turma, error) {
	var out []school.Turma
	err := queryAll(ctx, repo.getExec(exec), &out, "SELECT "+turmaCols+" FROM turma ORDER BY codigo")
	return out, errors.Wrap(err, "querying turmas")
}

func (repo schoolRepository) DeleteTurma(ctx context.Context, id int, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx, "DELETE FROM turma WHERE id = $1", id)
	return errors.Wrap(err, "deleting turma")
}

// Disciplina

func (repo schoolRepository) CreateDisciplina(ctx context.Context, d school.Disciplina, exec ...core.DBExecutor) (school.Disciplina, error) {
	err := repo.getExec(exec).QueryRowContext(ctx,
		`INSERT INTO disciplina (codigo, nome, carga_horaria, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		d.Codigo, d.Nome, d.CargaHoraria, d.CreatedAt, d.UpdatedAt,
	).Scan(&d.ID)
	if err != nil {
		if isUniqueViolation(err, "disciplina_codigo_key") {
			return school.Disciplina{}, school.ErrCodigoExists
		}
		return school.Disciplina{}, errors.Wrap(err, "inserting disciplina")
	}
	return d, nil
}

func (repo schoolRepository) GetDisciplina(ctx context.Context, filter school.GetFilter, exec ...core.DBExecutor) (school.Disciplina, error) {
	q := "SELECT " + disciplinaCols + " FROM disciplina WHERE codigo = $1"
	key := interface{}(filter.Codigo)
	if filter.ID != 0 {
		q = "SELECT " + disciplinaCols + " FROM disciplina WHERE id = $1"
		key = filter.ID
	}

	var out []school.Disciplina
	if err := queryAll(ctx, repo.getExec(exec), &out, q, key); err != nil {
		return school.Disciplina{}, errors.Wrap(err, "finding disciplina")
	}
	if len(out) == 0 {
		return school.Disciplina{}, school.ErrDisciplinaNotFound
	}
	return out[0], nil
}

func (repo schoolRepository) QueryDisciplinas(ctx context.Context, exec ...core.DBExecutor) ([]school.Disciplina, error) {
	var out []school.Disciplina
	err := queryAll(ctx, repo.getExec(exec), &out, "SELECT "+disciplinaCols+" FROM disciplina ORDER BY codigo")
	return out, errors.Wrap(err, "querying disciplinas")
}

func (repo schoolRepository) DeleteDisciplina(ctx context.Context, id int, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx, "DELETE FROM disciplina WHERE id = $1", id)
	return errors.Wrap(err, "deleting disciplina")
}

// Professor

func (repo schoolRepository) CreateProfessor(ctx context.Context, p school.Professor, exec ...core.DBExecutor) (school.Professor, error) {
	err := repo.getExec(exec).QueryRowContext(ctx,
		`INSERT INTO professor (codigo, nome, email, ativo, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		p.Codigo, p.Nome, p.Email, p.Ativo, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		switch {
		case isUniqueViolation(err, "professor_codigo_key"):
			return school.Professor{}, school.ErrCodigoExists
		case isUniqueViolation(err, "professor_email_key"):
			return school.Professor{}, school.ErrEmailExists
		}
		return school.Professor{}, errors.Wrap(err, "inserting professor")
	}
	return p, nil
}

func (repo schoolRepository) GetProfessor(ctx context.Context, filter school.GetFilter, exec ...core.DBExecutor) (school.Professor, error) {
	q := "SELECT " + professorCols + " FROM professor WHERE codigo = $1"
	key := interface{}(filter.Codigo)
	if filter.ID != 0 {
		q = "SELECT " + professorCols + " FROM professor WHERE id = $1"
		key = filter.ID
	}

	var out []school.Professor
	if err := queryAll(ctx, repo.getExec(exec), &out, q, key); err != nil {
		return school.Professor{}, errors.Wrap(err, "finding professor")
	}
	if len(out) == 0 {
		return school.Professor{}, school.ErrProfessorNotFound
	}
	return out[0], nil
}

func (repo schoolRepository) QueryProfessores(ctx context.Context, filter school.ProfessorFilter, exec ...core.DBExecutor) ([]school.Professor, error) {
	var conds []string
	var args []interface{}

	if !filter.IncludeInactive {
		conds = append(conds, "ativo = TRUE")
	}
	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		conds = append(conds, "(codigo ILIKE "+arg(&args, val)+" OR nome ILIKE "+arg(&args, val)+")")
	}

	var out []school.Professor
	q := "SELECT " + professorCols + " FROM professor" + where(conds) + " ORDER BY nome"
	err := queryAll(ctx, repo.getExec(exec), &out, q, args...)
	return out, errors.Wrap(err, "querying professores")
}

func (repo schoolRepository) UpdateProfessor(ctx context.Context, p school.Professor, exec ...core.DBExecutor) (school.Professor, error) {
	_, err := repo.getExec(exec).ExecContext(ctx,
		`UPDATE professor SET codigo = $1, nome = $2, email = $3, ativo = $4, updated_at = $5 WHERE id = $6`,
		p.Codigo, p.Nome, p.Email, p.Ativo, p.UpdatedAt, p.ID,
	)
	if err != nil {
		if isUniqueViolation(err, "professor_email_key") {
			return school.Professor{}, school.ErrEmailExists
		}
		return school.Professor{}, errors.Wrap(err, "updating professor")
	}
	return p, nil
}

// Aluno

func (repo schoolRepository) CreateAluno(ctx context.Context, a school.Aluno, exec ...core.DBExecutor) (school.Aluno, error) {
	err := repo.getExec(exec).QueryRowContext(ctx,
		`INSERT INTO aluno (codigo, nome, sexo, data_nasc, nome_mae, turma_id, telefone, email, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
		a.Codigo, a.Nome, a.Sexo, a.DataNasc, a.NomeMae, a.TurmaID, a.Telefone, a.Email, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID)
	if err != nil {
		if isUniqueViolation(err, "aluno_codigo_key") {
			return school.Aluno{}, school.ErrCodigoExists
		}
		return school.Aluno{}, errors.Wrap(err, "inserting aluno")
	}
	return a, nil
}

func (repo schoolRepository) GetAluno(ctx context.Context, filter school.GetFilter, exec ...core.DBExecutor) (school.Aluno, error) {
	q := "SELECT " + alunoCols + " FROM aluno WHERE codigo = $1"
	key := interface{}(filter.Codigo)
	if filter.ID != 0 {
		q = "SELECT " + alunoCols + " FROM aluno WHERE id = $1"
		key = filter.ID
	}

	var out []school.Aluno
	if err := queryAll(ctx, repo.getExec(exec), &out, q, key); err != nil {
		return school.Aluno{}, errors.Wrap(err, "finding aluno")
	}
	if len(out) == 0 {
		return school.Aluno{}, school.ErrAlunoNotFound
	}
	return out[0], nil
}

func (repo schoolRepository) QueryAlunos(ctx context.Context, filter school.AlunoFilter, exec ...core.DBExecutor) ([]school.Aluno, error) {
	var conds []string
	var args []interface{}

	if filter.TurmaID != 0 {
		conds = append(conds, "turma_id = "+arg(&args, filter.TurmaID))
	}
	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		conds = append(conds, "(codigo ILIKE "+arg(&args, val)+" OR nome ILIKE "+arg(&args, val)+")")
	}

	var out []school.Aluno
	q := "SELECT " + alunoCols + " FROM aluno" + where(conds) + " ORDER BY nome"
	err := queryAll(ctx, repo.getExec(exec), &out, q, args...)
	return out, errors.Wrap(err, "querying alunos")
}

func (repo schoolRepository) UpdateAluno(ctx context.Context, a school.Aluno, exec ...core.DBExecutor) (school.Aluno, error) {
	_, err := repo.getExec(exec).ExecContext(ctx,
		`UPDATE aluno SET nome = $1, sexo = $2, data_nasc = $3, nome_mae = $4, turma_id = $5,
		 telefone = $6, email = $7, updated_at = $8 WHERE id = $9`,
		a.Nome, a.Sexo, a.DataNasc, a.NomeMae, a.TurmaID, a.Telefone, a.Email, a.UpdatedAt, a.ID,
	)
	return a, errors.Wrap(err, "updating aluno")
}

func (repo schoolRepository) DeleteAluno(ctx context.Context, id int, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx, "DELETE FROM aluno WHERE id = $1", id)
	return errors.Wrap(err, "deleting aluno")
}

func (repo schoolRepository) CountAlunosByTurma(ctx context.Context, turmaID int, exec ...core.DBExecutor) (int, error) {
	var cnt int
	err := repo.getExec(exec).QueryRowContext(ctx, "SELECT COUNT(*) FROM aluno WHERE turma_id = $1", turmaID).Scan(&cnt)
	return cnt, errors.Wrap(err, "counting alunos")
}

// Links

func (repo schoolRepository) CreateTurmaDisciplina(ctx context.Context, link school.TurmaDisciplina, exec ...core.DBExecutor) (school.TurmaDisciplina, error) {
	err := repo.getExec(exec).QueryRowContext(ctx,
		`INSERT INTO turma_disciplina (turma_id, disciplina_id, created_at) VALUES ($1, $2, $3) RETURNING id`,
		link.TurmaID, link.DisciplinaID, link.CreatedAt,
	).Scan(&link.ID)
	if err != nil {
		// lost a duplicate-key race: the link exists, return it
		if isUniqueViolation(err, "turma_disciplina_turma_id_disciplina_id_key") {
			return repo.GetTurmaDisciplina(ctx, link.TurmaID, link.DisciplinaID, exec...)
		}
		return school.TurmaDisciplina{}, errors.Wrap(err, "inserting turma_disciplina")
	}
	return link, nil
}

func (repo schoolRepository) GetTurmaDisciplina(ctx context.Context, turmaID, disciplinaID int, exec ...core.DBExecutor) (school.TurmaDisciplina, error) {
	var out []school.TurmaDisciplina
	err := queryAll(ctx, repo.getExec(exec), &out,
		"SELECT id, turma_id, disciplina_id, created_at FROM turma_disciplina WHERE turma_id = $1 AND disciplina_id = $2",
		turmaID, disciplinaID)
	if err != nil {
		return school.TurmaDisciplina{}, errors.Wrap(err, "finding turma_disciplina")
	}
	if len(out) == 0 {
		return school.TurmaDisciplina{}, school.ErrLinkNotFound
	}
	return out[0], nil
}

func linkConds(filter school.LinkFilter, args *[]interface{}) []string {
	var conds []string
	if filter.TurmaID != 0 {
		conds = append(conds, "turma_id = "+arg(args, filter.TurmaID))
	}
	if filter.DisciplinaID != 0 {
		conds = append(conds, "disciplina_id = "+arg(args, filter.DisciplinaID))
	}
	if filter.ProfessorID != 0 {
		conds = append(conds, "professor_id = "+arg(args, filter.ProfessorID))
	}
	return conds
}

func (repo schoolRepository) QueryTurmaDisciplinas(ctx context.Context, filter school.LinkFilter, exec ...core.DBExecutor) ([]school.TurmaDisciplina, error) {
	var args []interface{}
	filter.ProfessorID = 0 // not a column of this table
	conds := linkConds(filter, &args)

	var out []school.TurmaDisciplina
	q := "SELECT id, turma_id, disciplina_id, created_at FROM turma_disciplina" + where(conds) + " ORDER BY id"
	err := queryAll(ctx, repo.getExec(exec), &out, q, args...)
	return out, errors.Wrap(err, "querying turma_disciplinas")
}

func (repo schoolRepository) DeleteTurmaDisciplinas(ctx context.Context, filter school.LinkFilter, exec ...core.DBExecutor) (int, error) {
	var args []interface{}
	filter.ProfessorID = 0
	conds := linkConds(filter, &args)

	res, err := repo.getExec(exec).ExecContext(ctx, "DELETE FROM turma_disciplina"+where(conds), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting turma_disciplinas")
	}
	cnt, err := res.RowsAffected()
	return int(cnt), errors.Wrap(err, "deleting turma_disciplinas")
}

func (repo schoolRepository) CreateProfessorLink(ctx context.Context, link school.ProfessorDisciplinaTurma, exec ...core.DBExecutor) (school.ProfessorDisciplinaTurma, error) {
	err := repo.getExec(exec).QueryRowContext(ctx,
		`INSERT INTO professor_disciplina_turma (professor_id, disciplina_id, turma_id, created_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		link.ProfessorID, link.DisciplinaID, link.TurmaID, link.CreatedAt,
	).Scan(&link.ID)
	if err != nil {
		if isUniqueViolation(err, "professor_disciplina_turma_key") {
			return repo.GetProfessorLink(ctx, link.ProfessorID, link.DisciplinaID, link.TurmaID, exec...)
		}
		return school.ProfessorDisciplinaTurma{}, errors.Wrap(err, "inserting professor_disciplina_turma")
	}
	return link, nil
}

func (repo schoolRepository) GetProfessorLink(ctx context.Context, professorID, disciplinaID, turmaID int, exec ...core.DBExecutor) (school.ProfessorDisciplinaTurma, error) {
	var out []school.ProfessorDisciplinaTurma
	err := queryAll(ctx, repo.getExec(exec), &out,
		`SELECT id, professor_id, disciplina_id, turma_id, created_at FROM professor_disciplina_turma
		 WHERE professor_id = $1 AND disciplina_id = $2 AND turma_id = $3`,
		professorID, disciplinaID, turmaID)
	if err != nil {
		return school.ProfessorDisciplinaTurma{}, errors.Wrap(err, "finding professor_disciplina_turma")
	}
	if len(out) == 0 {
		return school.ProfessorDisciplinaTurma{}, school.ErrLinkNotFound
	}
	return out[0], nil
}

func (repo schoolRepository) QueryProfessorLinks(ctx context.Context, filter school.LinkFilter, exec ...core.DBExecutor) ([]school.ProfessorDisciplinaTurma, error) {
	var args []interface{}
	conds := linkConds(filter, &args)

	var out []school.ProfessorDisciplinaTurma
	q := "SELECT id, professor_id, disciplina_id, turma_id, created_at FROM professor_disciplina_turma" +
		where(conds) + " ORDER BY id"
	err := queryAll(ctx, repo.getExec(exec), &out, q, args...)
	return out, errors.Wrap(err, "querying professor_disciplina_turmas")
}

func (repo schoolRepository) DeleteProfessorLinks(ctx context.Context, filter school.LinkFilter, exec ...core.DBExecutor) (int, error) {
	var args []interface{}
	conds := linkConds(filter, &args)

	res, err := repo.getExec(exec).ExecContext(ctx, "DELETE FROM professor_disciplina_turma"+where(conds), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting professor_disciplina_turmas")
	}
	cnt, err := res.RowsAffected()
	return int(cnt), errors.Wrap(err, "deleting professor_disciplina_turmas")
}
