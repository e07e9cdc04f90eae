// Package inmemdb is a mutex-guarded in-memory implementation of the
// repositories, used by tests and local tinkering. Services run it with a nil
// core.DB: every repository call is atomic on its own.
package inmemdb

import (
	"sync"

	"github.com/jpcarvalho/diario/core/grading"
	"github.com/jpcarvalho/diario/core/school"
)

type DB struct {
	mutex sync.RWMutex
	pk    int

	turmas      map[int]*school.Turma
	disciplinas map[int]*school.Disciplina
	professores map[int]*school.Professor
	alunos      map[int]*school.Aluno

	turmaDisciplinas map[int]*school.TurmaDisciplina
	professorLinks   map[int]*school.ProfessorDisciplinaTurma

	notas map[int]*grading.Nota
}

func Open() (*DB, error) {
	db := &DB{
		turmas:           make(map[int]*school.Turma),
		disciplinas:      make(map[int]*school.Disciplina),
		professores:      make(map[int]*school.Professor),
		alunos:           make(map[int]*school.Aluno),
		turmaDisciplinas: make(map[int]*school.TurmaDisciplina),
		professorLinks:   make(map[int]*school.ProfessorDisciplinaTurma),
		notas:            make(map[int]*grading.Nota),
	}
	return db, nil
}

// nextPK hands out surrogate ids; callers hold the write lock.
func (db *DB) nextPK() int {
	db.pk++
	return db.pk
}
