package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/jpcarvalho/diario/core"
	"github.com/jpcarvalho/diario/core/grading"
)

const notaCols = "id, aluno_id, disciplina_id, turma_id, ano, bimestre, nota_mensal, nota_bimestral, recuperacao, media, created_at, updated_at"

type gradingRepository struct {
	exec core.DBExecutor
}

var _ grading.Repository = (*gradingRepository)(nil) // interface compliance check

func NewGradingRepository(exec core.DBExecutor) *gradingRepository {
	return &gradingRepository{exec: exec}
}

func (repo gradingRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return repo.exec
}

func (repo gradingRepository) CreateNota(ctx context.Context, n grading.Nota, exec ...core.DBExecutor) (grading.Nota, error) {
	err := repo.getExec(exec).QueryRowContext(ctx,
		`INSERT INTO nota (aluno_id, disciplina_id, turma_id, ano, bimestre, nota_mensal, nota_bimestral, recuperacao, media, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`,
		n.AlunoID, n.DisciplinaID, n.TurmaID, n.Ano, n.Bimestre,
		n.Mensal, n.Bimestral, n.Recuperacao, n.Media, n.CreatedAt, n.UpdatedAt,
	).Scan(&n.ID)
	if err != nil {
		if isUniqueViolation(err, "nota_aluno_id_disciplina_id_ano_bimestre_key") {
			return grading.Nota{}, grading.ErrNotaExists
		}
		return grading.Nota{}, errors.Wrap(err, "inserting nota")
	}
	return n, nil
}

func (repo gradingRepository) GetNota(ctx context.Context, alunoID, disciplinaID, ano, bimestre int, exec ...core.DBExecutor) (grading.Nota, error) {
	var out []grading.Nota
	err := queryAll(ctx, repo.getExec(exec), &out,
		"SELECT "+notaCols+" FROM nota WHERE aluno_id = $1 AND disciplina_id = $2 AND ano = $3 AND bimestre = $4",
		alunoID, disciplinaID, ano, bimestre)
	if err != nil {
		return grading.Nota{}, errors.Wrap(err, "finding nota")
	}
	if len(out) == 0 {
		return grading.Nota{}, grading.ErrNotaNotFound
	}
	return out[0], nil
}

func (repo gradingRepository) UpdateNota(ctx context.Context, n grading.Nota, exec ...core.DBExecutor) (grading.Nota, error) {
	_, err := repo.getExec(exec).ExecContext(ctx,
		`UPDATE nota SET nota_mensal = $1, nota_bimestral = $2, recuperacao = $3, media = $4, updated_at = $5 WHERE id = $6`,
		n.Mensal, n.Bimestral, n.Recuperacao, n.Media, n.UpdatedAt, n.ID,
	)
	return n, errors.Wrap(err, "updating nota")
}

func (repo gradingRepository) UpdateNotaMedia(ctx context.Context, id int, media float64, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx,
		"UPDATE nota SET media = $1, updated_at = $2 WHERE id = $3", media, time.Now().UTC(), id)
	return errors.Wrap(err, "updating nota media")
}

func (repo gradingRepository) QueryNotas(ctx context.Context, filter grading.NotaFilter, exec ...core.DBExecutor) ([]grading.Nota, error) {
	var conds []string
	var args []interface{}

	if filter.AlunoID != 0 {
		conds = append(conds, "aluno_id = "+arg(&args, filter.AlunoID))
	}
	if filter.DisciplinaID != 0 {
		conds = append(conds, "disciplina_id = "+arg(&args, filter.DisciplinaID))
	}
	if filter.TurmaID != 0 {
		conds = append(conds, "turma_id = "+arg(&args, filter.TurmaID))
	}
	if filter.Ano != 0 {
		conds = append(conds, "ano = "+arg(&args, filter.Ano))
	}
	if filter.Bimestre != 0 {
		conds = append(conds, "bimestre = "+arg(&args, filter.Bimestre))
	}
	if filter.AfterID != 0 {
		conds = append(conds, "id > "+arg(&args, filter.AfterID))
	}

	q := "SELECT " + notaCols + " FROM nota" + where(conds) + " ORDER BY id"
	if filter.Limit > 0 {
		q += " LIMIT " + arg(&args, filter.Limit)
	}

	var out []grading.Nota
	err := queryAll(ctx, repo.getExec(exec), &out, q, args...)
	return out, errors.Wrap(err, "querying notas")
}

func (repo gradingRepository) CountNotasByAluno(ctx context.Context, alunoID int, exec ...core.DBExecutor) (int, error) {
	var cnt int
	err := repo.getExec(exec).QueryRowContext(ctx, "SELECT COUNT(*) FROM nota WHERE aluno_id = $1", alunoID).Scan(&cnt)
	return cnt, errors.Wrap(err, "counting notas")
}

func (repo gradingRepository) DeleteNotasByAluno(ctx context.Context, alunoID int, exec ...core.DBExecutor) (int, error) {
	res, err := repo.getExec(exec).ExecContext(ctx, "DELETE FROM nota WHERE aluno_id = $1", alunoID)
	if err != nil {
		return 0, errors.Wrap(err, "deleting notas")
	}
	cnt, err := res.RowsAffected()
	return int(cnt), errors.Wrap(err, "deleting notas")
}
