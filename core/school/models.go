package school

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/jpcarvalho/diario/core"
)

// Turma is a class/cohort. Codigo is the natural key (`id_turma`), the short
// code students and teachers actually use; ID is the internal surrogate.
type Turma struct {
	ID          int       `db:"id" json:"id"`
	Codigo      string    `db:"codigo" json:"id_turma"`
	Serie       string    `db:"serie" json:"serie"`
	Turno       string    `db:"turno" json:"turno"`
	Tipo        string    `db:"tipo" json:"tipo_turma"`
	Coordenador string    `db:"coordenador" json:"coordenador"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"` // UTC
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"` // UTC
}

// Disciplina is a subject.
type Disciplina struct {
	ID           int       `db:"id" json:"id"`
	Codigo       string    `db:"codigo" json:"id_disciplina"`
	Nome         string    `db:"nome" json:"nome_disciplina"`
	CargaHoraria null.Int  `db:"carga_horaria" json:"carga_horaria,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Professor is a teacher. Ativo is a logical-delete flag: deactivation hides
// the professor from default listings but keeps historical links intact.
type Professor struct {
	ID        int         `db:"id" json:"id"`
	Codigo    string      `db:"codigo" json:"id_professor"`
	Nome      string      `db:"nome" json:"nome_professor"`
	Email     null.String `db:"email" json:"email_professor,omitempty"`
	Ativo     bool        `db:"ativo" json:"ativo"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

// Aluno is a student. TurmaID is required: every aluno belongs to a turma.
type Aluno struct {
	ID        int         `db:"id" json:"id"`
	Codigo    string      `db:"codigo" json:"id_aluno"`
	Nome      string      `db:"nome" json:"nome_aluno"`
	Sexo      string      `db:"sexo" json:"sexo"`
	DataNasc  null.Time   `db:"data_nasc" json:"data_nasc,omitempty"`
	NomeMae   string      `db:"nome_mae" json:"mae"`
	TurmaID   int         `db:"turma_id" json:"turma_id"`
	Telefone  null.String `db:"telefone" json:"telefone,omitempty"`
	Email     null.String `db:"email" json:"email,omitempty"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

// TurmaDisciplina links a subject to a class: "this subject is taught in this
// class". Unique on (turma, disciplina); creation is idempotent.
type TurmaDisciplina struct {
	ID           int       `db:"id" json:"id"`
	TurmaID      int       `db:"turma_id" json:"turma_id"`
	DisciplinaID int       `db:"disciplina_id" json:"disciplina_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ProfessorDisciplinaTurma links a teacher to a subject taught in a class.
// Unique on (professor, disciplina, turma); creation is idempotent.
type ProfessorDisciplinaTurma struct {
	ID           int       `db:"id" json:"id"`
	ProfessorID  int       `db:"professor_id" json:"professor_id"`
	DisciplinaID int       `db:"disciplina_id" json:"disciplina_id"`
	TurmaID      int       `db:"turma_id" json:"turma_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// NewTurma contains information needed to create a new Turma.
type NewTurma struct {
	Codigo      string `json:"id_turma" validate:"required,max=16"`
	Serie       string `json:"serie" validate:"required"`
	Turno       string `json:"turno" validate:"required"`
	Tipo        string `json:"tipo_turma"`
	Coordenador string `json:"coordenador"`
}

func (nt *NewTurma) Validate(validate *validator.Validate) error {
	nt.Codigo = core.CleanString(nt.Codigo, true /* lower */)
	nt.Serie = core.CleanString(nt.Serie)
	nt.Turno = core.CleanString(nt.Turno)
	nt.Tipo = core.CleanString(nt.Tipo)
	nt.Coordenador = core.CleanString(nt.Coordenador)
	return validate.Struct(nt)
}

// NewDisciplina contains information needed to create a new Disciplina.
type NewDisciplina struct {
	Codigo       string   `json:"id_disciplina" validate:"required,max=16"`
	Nome         string   `json:"nome_disciplina" validate:"required"`
	CargaHoraria null.Int `json:"carga_horaria" validate:"omitempty,min=1"`
}

func (nd *NewDisciplina) Validate(validate *validator.Validate) error {
	nd.Codigo = core.CleanString(nd.Codigo, true /* lower */)
	nd.Nome = core.CleanString(nd.Nome)
	return validate.Struct(nd)
}

// NewProfessor contains information needed to create a new Professor.
type NewProfessor struct {
	Codigo string `json:"id_professor" validate:"required,max=16"`
	Nome   string `json:"nome_professor" validate:"required"`
	Email  string `json:"email_professor" validate:"omitempty,email"`
}

func (np *NewProfessor) Validate(validate *validator.Validate) error {
	np.Codigo = core.CleanString(np.Codigo, true /* lower */)
	np.Nome = core.CleanString(np.Nome)
	np.Email = core.CleanString(np.Email, true /* lower */)
	return validate.Struct(np)
}

// NewAluno contains information needed to create a new Aluno.
type NewAluno struct {
	Codigo   string    `json:"id_aluno" validate:"required,max=16"`
	Nome     string    `json:"nome_aluno" validate:"required"`
	Sexo     string    `json:"sexo" validate:"omitempty,oneof=M F"`
	DataNasc null.Time `json:"data_nasc"`
	NomeMae  string    `json:"mae"`
	TurmaRef core.Ref  `json:"turma" validate:"required"`
	Telefone string    `json:"telefone"`
	Email    string    `json:"email" validate:"omitempty,email"`
}

func (na *NewAluno) Validate(validate *validator.Validate) error {
	na.Codigo = core.CleanString(na.Codigo, true /* lower */)
	na.Nome = core.CleanString(na.Nome)
	na.Sexo = strings.ToUpper(core.CleanString(na.Sexo))
	na.NomeMae = core.CleanString(na.NomeMae)
	na.Email = core.CleanString(na.Email, true)
	return validate.Struct(na)
}

// UpdateAluno defines what may be modified on an existing Aluno. Empty fields
// keep their stored values.
type UpdateAluno struct {
	Nome     string   `json:"nome_aluno"`
	Sexo     string   `json:"sexo" validate:"omitempty,oneof=M F"`
	NomeMae  string   `json:"mae"`
	TurmaRef core.Ref `json:"turma"`
	Telefone string   `json:"telefone"`
	Email    string   `json:"email" validate:"omitempty,email"`
}

func (ua *UpdateAluno) Validate(validate *validator.Validate) error {
	ua.Nome = core.CleanString(ua.Nome)
	ua.Sexo = strings.ToUpper(core.CleanString(ua.Sexo))
	ua.NomeMae = core.CleanString(ua.NomeMae)
	ua.Email = core.CleanString(ua.Email, true)
	return validate.Struct(ua)
}

// GetFilter selects a single entity: by surrogate ID when set, by natural-key
// Codigo otherwise.
type GetFilter struct {
	ID     int
	Codigo string
}

// ProfessorFilter filters professor listings. Inactive professors are excluded
// unless IncludeInactive is set.
type ProfessorFilter struct {
	Search          string `query:"search"`
	IncludeInactive bool   `query:"include_inactive"`
}

func (pf *ProfessorFilter) Clean() {
	pf.Search = core.CleanString(pf.Search)
}

// AlunoFilter filters aluno listings.
type AlunoFilter struct {
	TurmaID int    `query:"turma_id"`
	Search  string `query:"search"`
}

func (af *AlunoFilter) Clean() {
	af.Search = core.CleanString(af.Search)
}

// LinkFilter is a partial key over the link tables; zero fields match
// everything.
type LinkFilter struct {
	TurmaID      int `query:"turma_id"`
	DisciplinaID int `query:"disciplina_id"`
	ProfessorID  int `query:"professor_id"`
}
