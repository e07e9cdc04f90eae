package grading

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/jpcarvalho/diario/core"
)

// Recompute requests carry a NotaFilter in the request body, so the id fields
// must survive a JSON round trip, not just query-param binding.
func TestNotaFilter_bindsFromJSON(t *testing.T) {
	body := []byte(`{"aluno_id": 7, "disciplina_id": 8, "turma_id": 9, "ano": 2025, "bimestre": 2}`)

	var filter NotaFilter
	if err := json.Unmarshal(body, &filter); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	want := NotaFilter{AlunoID: 7, DisciplinaID: 8, TurmaID: 9, Ano: 2025, Bimestre: 2}
	if filter != want {
		t.Errorf("filter = %+v, want %+v", filter, want)
	}
}

func TestUpsertNota_Validate(t *testing.T) {
	validate, _ := core.NewValidator()

	valid := UpsertNota{
		AlunoRef:      "a001",
		DisciplinaRef: "mat",
		TurmaRef:      "9a",
		Ano:           2025,
		Bimestre:      1,
	}

	tests := []struct {
		name      string
		mutate    func(un *UpsertNota)
		wantField string // empty means valid
	}{
		{name: "all grades unset"},
		{name: "grades on the scale", mutate: func(un *UpsertNota) {
			un.Mensal = null.Float64From(0)
			un.Bimestral = null.Float64From(10)
			un.Recuperacao = null.Float64From(7.5)
		}},
		{name: "missing aluno ref", mutate: func(un *UpsertNota) { un.AlunoRef = "" }, wantField: "aluno"},
		{name: "missing ano", mutate: func(un *UpsertNota) { un.Ano = 0 }, wantField: "ano"},
		{name: "bimestre too low", mutate: func(un *UpsertNota) { un.Bimestre = 0 }, wantField: "bimestre"},
		{name: "bimestre too high", mutate: func(un *UpsertNota) { un.Bimestre = 5 }, wantField: "bimestre"},
		{name: "negative mensal", mutate: func(un *UpsertNota) { un.Mensal = null.Float64From(-1) }, wantField: "nota_mensal"},
		{name: "bimestral above scale", mutate: func(un *UpsertNota) { un.Bimestral = null.Float64From(10.5) }, wantField: "nota_bimestral"},
		{name: "recuperacao above scale", mutate: func(un *UpsertNota) { un.Recuperacao = null.Float64From(11) }, wantField: "recuperacao"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			un := valid
			if tt.mutate != nil {
				tt.mutate(&un)
			}

			err := un.Validate(validate)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			verrs, ok := err.(validator.ValidationErrors)
			if !ok {
				t.Fatalf("Validate() error = %v, want validator.ValidationErrors", err)
			}
			for _, fe := range verrs {
				if fe.Field() == tt.wantField {
					return
				}
			}
			t.Errorf("Validate() errors = %v, missing field %q", verrs, tt.wantField)
		})
	}
}
