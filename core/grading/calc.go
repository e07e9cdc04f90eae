package grading

import (
	"fmt"

	"github.com/volatiletech/null/v8"

	"github.com/jpcarvalho/diario/core"
)

// Situacao is the derived pass/fail classification of a student in a subject
// for a year.
type Situacao string

const (
	SituacaoAprovado    Situacao = "aprovado"
	SituacaoRecuperacao Situacao = "recuperacao"
	SituacaoReprovado   Situacao = "reprovado"
	SituacaoIncompleto  Situacao = "incompleto"
)

// Classification cutoffs on the 0..10 scale. These are the school rules, not
// deployment knobs.
const (
	mediaAprovacao   = 7.0
	mediaRecuperacao = 5.0
)

func (s Situacao) Display() string {
	switch s {
	case SituacaoAprovado:
		return "Aprovado"
	case SituacaoRecuperacao:
		return "Aprovado com recuperação"
	case SituacaoReprovado:
		return "Reprovado"
	case SituacaoIncompleto:
		return "Incompleto"
	}
	return string(s)
}

// ComputeMedia derives a bimester average from the raw grades. A grade is
// present when it is set and > 0. The base average is the mean of mensal and
// bimestral when both are present, the single one when only one is, and 0 when
// neither (in which case a recuperação alone never raises it). A present
// recuperação always averages 50/50 with the base, never replaces it. The
// result is rounded half-up to one decimal.
func ComputeMedia(mensal, bimestral, recuperacao null.Float64) float64 {
	m, mOK := gradeValue(mensal)
	b, bOK := gradeValue(bimestral)

	var base float64
	switch {
	case mOK && bOK:
		base = (m + b) / 2
	case mOK:
		base = m
	case bOK:
		base = b
	default:
		return 0
	}

	if r, ok := gradeValue(recuperacao); ok {
		base = (base + r) / 2
	}
	return core.Round1(base)
}

// ComputeSituacao classifies a year from its bimester averages. With fewer
// than expected averages the year is Incompleto; otherwise the annual average
// is the rounded mean of the bimester averages and classifies as Aprovado
// (>= 7.0), Recuperação (>= 5.0) or Reprovado.
//
// The returned annual average is informative even for incomplete years (mean
// over the averages present so far).
func ComputeSituacao(medias []float64, expected int) (Situacao, float64) {
	if len(medias) == 0 {
		return SituacaoIncompleto, 0
	}

	var sum float64
	for _, m := range medias {
		sum += m
	}
	annual := core.Round1(sum / float64(len(medias)))

	if len(medias) < expected {
		return SituacaoIncompleto, annual
	}

	switch {
	case annual >= mediaAprovacao:
		return SituacaoAprovado, annual
	case annual >= mediaRecuperacao:
		return SituacaoRecuperacao, annual
	}
	return SituacaoReprovado, annual
}

// IncompletoLabel renders the "2/4 bimesters" style description of a partial
// year.
func IncompletoLabel(present, expected int) string {
	return fmt.Sprintf("%d/%d bimestres", present, expected)
}

func gradeValue(v null.Float64) (float64, bool) {
	if v.Valid && v.Float64 > 0 {
		return v.Float64, true
	}
	return 0, false
}
