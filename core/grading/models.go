package grading

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/jpcarvalho/diario/core"
)

// Nota is one grade record: one aluno, one disciplina, one year, one bimester
// (unique on that composite key). Media is denormalized but never written by
// hand: it always equals ComputeMedia over the three raw grades.
type Nota struct {
	ID           int          `db:"id" json:"id"`
	AlunoID      int          `db:"aluno_id" json:"aluno_id"`
	DisciplinaID int          `db:"disciplina_id" json:"disciplina_id"`
	TurmaID      int          `db:"turma_id" json:"turma_id"`
	Ano          int          `db:"ano" json:"ano"`
	Bimestre     int          `db:"bimestre" json:"bimestre"`
	Mensal       null.Float64 `db:"nota_mensal" json:"nota_mensal,omitempty"`
	Bimestral    null.Float64 `db:"nota_bimestral" json:"nota_bimestral,omitempty"`
	Recuperacao  null.Float64 `db:"recuperacao" json:"recuperacao,omitempty"`
	Media        float64      `db:"media" json:"media"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"` // UTC
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"` // UTC
}

// YearlyOutcome aggregates one (aluno, disciplina, ano) triple: the bimester
// averages found, the annual average and the situação classification.
type YearlyOutcome struct {
	AlunoID            int             `json:"aluno_id"`
	DisciplinaID       int             `json:"disciplina_id"`
	Ano                int             `json:"ano"`
	Medias             map[int]float64 `json:"medias_por_bimestre"` // bimestre -> media
	BimestresPresentes int             `json:"bimestres_presentes"`
	BimestresEsperados int             `json:"bimestres_esperados"`
	MediaAnual         float64         `json:"media_anual"`
	Situacao           Situacao        `json:"situacao"`
}

// UpsertNota carries one grade submission. Unset nullable grades mean "leave
// whatever is stored"; set ones override. References accept surrogate ids or
// natural keys.
type UpsertNota struct {
	AlunoRef      core.Ref     `json:"aluno" validate:"required"`
	DisciplinaRef core.Ref     `json:"disciplina" validate:"required"`
	TurmaRef      core.Ref     `json:"turma" validate:"required"`
	Ano           int          `json:"ano" validate:"required,min=1900,max=2999"`
	Bimestre      int          `json:"bimestre" validate:"required,min=1,max=4"`
	Mensal        null.Float64 `json:"nota_mensal" validate:"omitempty,grade"`
	Bimestral     null.Float64 `json:"nota_bimestral" validate:"omitempty,grade"`
	Recuperacao   null.Float64 `json:"recuperacao" validate:"omitempty,grade"`
}

func (un *UpsertNota) Validate(validate *validator.Validate) error {
	return validate.Struct(un)
}

// NotaFilter selects grade records; zero fields match everything. It binds
// from query params on reads and from a JSON body on recompute requests.
// AfterID and Limit drive keyset batching in bulk operations.
type NotaFilter struct {
	AlunoID      int `query:"aluno_id" json:"aluno_id"`
	DisciplinaID int `query:"disciplina_id" json:"disciplina_id"`
	TurmaID      int `query:"turma_id" json:"turma_id"`
	Ano          int `query:"ano" json:"ano"`
	Bimestre     int `query:"bimestre" json:"bimestre"`

	AfterID int `query:"-" json:"-"`
	Limit   int `query:"-" json:"-"`
}

// BoletimItem is one disciplina's yearly outcome on a report card.
type BoletimItem struct {
	Disciplina     string        `json:"disciplina"`
	NomeDisciplina string        `json:"nome_disciplina"`
	Outcome        YearlyOutcome `json:"outcome"`
}

// Boletim is an aluno's report card for a year.
type Boletim struct {
	AlunoID   int           `json:"aluno_id"`
	AlunoNome string        `json:"aluno_nome"`
	Ano       int           `json:"ano"`
	Itens     []BoletimItem `json:"itens"`
}
