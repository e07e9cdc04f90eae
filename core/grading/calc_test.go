package grading

import (
	"testing"

	"github.com/volatiletech/null/v8"
)

var unset = null.Float64{}

func fl(v float64) null.Float64 {
	return null.Float64From(v)
}

func TestComputeMedia(t *testing.T) {
	tests := []struct {
		name                          string
		mensal, bimestral, recuperacao null.Float64
		want                          float64
	}{
		{name: "all absent", mensal: unset, bimestral: unset, recuperacao: unset, want: 0},
		{name: "recuperacao alone never raises", mensal: unset, bimestral: unset, recuperacao: fl(10), want: 0},
		{name: "zero counts as absent", mensal: fl(0), bimestral: fl(0), recuperacao: fl(10), want: 0},
		{name: "both present", mensal: fl(8), bimestral: fl(6), recuperacao: unset, want: 7.0},
		{name: "both present with recuperacao", mensal: fl(8), bimestral: fl(6), recuperacao: fl(10), want: 8.5},
		{name: "mensal only", mensal: fl(7), bimestral: unset, recuperacao: unset, want: 7.0},
		{name: "bimestral only", mensal: unset, bimestral: fl(4.5), recuperacao: unset, want: 4.5},
		{name: "single grade with recuperacao", mensal: fl(4), bimestral: unset, recuperacao: fl(8), want: 6.0},
		{name: "recuperacao averages, never replaces", mensal: fl(2), bimestral: fl(2), recuperacao: fl(10), want: 6.0},
		{name: "rounds half up", mensal: fl(7.4), bimestral: fl(7.5), recuperacao: unset, want: 7.5}, // 7.45 -> 7.5
		{name: "no rounding needed", mensal: fl(8.3), bimestral: fl(6.7), recuperacao: unset, want: 7.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeMedia(tt.mensal, tt.bimestral, tt.recuperacao)
			if got != tt.want {
				t.Errorf("ComputeMedia() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeMedia_deterministic(t *testing.T) {
	first := ComputeMedia(fl(8.3), fl(6.7), fl(9.9))
	for i := 0; i < 100; i++ {
		if got := ComputeMedia(fl(8.3), fl(6.7), fl(9.9)); got != first {
			t.Fatalf("ComputeMedia() = %v on run %d, want %v", got, i, first)
		}
	}
}

func TestComputeSituacao(t *testing.T) {
	tests := []struct {
		name       string
		medias     []float64
		expected   int
		want       Situacao
		wantAnnual float64
	}{
		{name: "aprovado", medias: []float64{8, 8, 8, 8}, expected: 4, want: SituacaoAprovado, wantAnnual: 8.0},
		{name: "aprovado at cutoff", medias: []float64{7, 7, 7, 7}, expected: 4, want: SituacaoAprovado, wantAnnual: 7.0},
		{name: "recuperacao", medias: []float64{5, 5, 5, 5}, expected: 4, want: SituacaoRecuperacao, wantAnnual: 5.0},
		{name: "recuperacao below aprovado cutoff", medias: []float64{6.9, 6.9, 6.9, 6.9}, expected: 4, want: SituacaoRecuperacao, wantAnnual: 6.9},
		{name: "reprovado", medias: []float64{3, 3, 3, 3}, expected: 4, want: SituacaoReprovado, wantAnnual: 3.0},
		{name: "reprovado below recuperacao cutoff", medias: []float64{4.9, 4.9, 4.9, 4.9}, expected: 4, want: SituacaoReprovado, wantAnnual: 4.9},
		{name: "incompleto 2 of 4", medias: []float64{8, 8}, expected: 4, want: SituacaoIncompleto, wantAnnual: 8.0},
		{name: "incompleto empty", medias: nil, expected: 4, want: SituacaoIncompleto, wantAnnual: 0},
		{name: "annual mean rounds half up", medias: []float64{8, 8, 8, 7}, expected: 4, want: SituacaoAprovado, wantAnnual: 7.8}, // 7.75 -> 7.8
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, annual := ComputeSituacao(tt.medias, tt.expected)
			if got != tt.want {
				t.Errorf("ComputeSituacao() situacao = %v, want %v", got, tt.want)
			}
			if annual != tt.wantAnnual {
				t.Errorf("ComputeSituacao() annual = %v, want %v", annual, tt.wantAnnual)
			}
		})
	}
}

func TestIncompletoLabel(t *testing.T) {
	if got := IncompletoLabel(2, 4); got != "2/4 bimestres" {
		t.Errorf("IncompletoLabel() = %q, want %q", got, "2/4 bimestres")
	}
}
