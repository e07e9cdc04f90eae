package inmemdb

import (
	"context"
	"sort"

	"github.com/jpcarvalho/diario/core"
	"github.com/jpcarvalho/diario/core/grading"
)

type gradingRepository struct {
	db *DB
}

var _ grading.Repository = (*gradingRepository)(nil) // interface compliance check

func NewGradingRepository(db *DB) *gradingRepository {
	return &gradingRepository{db: db}
}

func (repo *gradingRepository) CreateNota(_ context.Context, n grading.Nota, _ ...core.DBExecutor) (grading.Nota, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, cur := range repo.db.notas {
		if cur.AlunoID == n.AlunoID && cur.DisciplinaID == n.DisciplinaID && cur.Ano == n.Ano && cur.Bimestre == n.Bimestre {
			return grading.Nota{}, grading.ErrNotaExists
		}
	}
	n.ID = repo.db.nextPK()
	repo.db.notas[n.ID] = &n
	return n, nil
}

func (repo *gradingRepository) GetNota(_ context.Context, alunoID, disciplinaID, ano, bimestre int, _ ...core.DBExecutor) (grading.Nota, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, cur := range repo.db.notas {
		if cur.AlunoID == alunoID && cur.DisciplinaID == disciplinaID && cur.Ano == ano && cur.Bimestre == bimestre {
			return *cur, nil
		}
	}
	return grading.Nota{}, grading.ErrNotaNotFound
}

func (repo *gradingRepository) UpdateNota(_ context.Context, n grading.Nota, _ ...core.DBExecutor) (grading.Nota, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.notas[n.ID]; !ok {
		return grading.Nota{}, grading.ErrNotaNotFound
	}
	repo.db.notas[n.ID] = &n
	return n, nil
}

func (repo *gradingRepository) UpdateNotaMedia(_ context.Context, id int, media float64, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	n, ok := repo.db.notas[id]
	if !ok {
		return grading.ErrNotaNotFound
	}
	n.Media = media
	return nil
}

func (repo *gradingRepository) QueryNotas(_ context.Context, filter grading.NotaFilter, _ ...core.DBExecutor) ([]grading.Nota, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	out := make([]grading.Nota, 0, len(repo.db.notas))
	for _, cur := range repo.db.notas {
		if !notaMatches(*cur, filter) {
			continue
		}
		out = append(out, *cur)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (repo *gradingRepository) CountNotasByAluno(_ context.Context, alunoID int, _ ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var cnt int
	for _, cur := range repo.db.notas {
		if cur.AlunoID == alunoID {
			cnt++
		}
	}
	return cnt, nil
}

func (repo *gradingRepository) DeleteNotasByAluno(_ context.Context, alunoID int, _ ...core.DBExecutor) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var cnt int
	for id, cur := range repo.db.notas {
		if cur.AlunoID == alunoID {
			delete(repo.db.notas, id)
			cnt++
		}
	}
	return cnt, nil
}

func notaMatches(n grading.Nota, filter grading.NotaFilter) bool {
	if filter.AlunoID != 0 && n.AlunoID != filter.AlunoID {
		return false
	}
	if filter.DisciplinaID != 0 && n.DisciplinaID != filter.DisciplinaID {
		return false
	}
	if filter.TurmaID != 0 && n.TurmaID != filter.TurmaID {
		return false
	}
	if filter.Ano != 0 && n.Ano != filter.Ano {
		return false
	}
	if filter.Bimestre != 0 && n.Bimestre != filter.Bimestre {
		return false
	}
	if filter.AfterID != 0 && n.ID <= filter.AfterID {
		return false
	}
	return true
}
