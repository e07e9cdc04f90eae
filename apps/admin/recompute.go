package main

import (
	"context"
	"fmt"

	"github.com/jpcarvalho/diario/core"
	"github.com/jpcarvalho/diario/core/grading"
)

func (cli *commandLine) recompute(ano int, turmaRef, disciplinaRef string) error {
	ctx := context.Background()
	filter := grading.NotaFilter{Ano: ano}

	if turmaRef != "" {
		t, err := cli.schoolSvc.GetTurma(ctx, core.Ref(turmaRef))
		if err != nil {
			return err
		}
		filter.TurmaID = t.ID
	}
	if disciplinaRef != "" {
		d, err := cli.schoolSvc.GetDisciplina(ctx, core.Ref(disciplinaRef))
		if err != nil {
			return err
		}
		filter.DisciplinaID = d.ID
	}

	updated, err := cli.gradingSvc.BulkRecompute(ctx, filter)
	if err != nil {
		return err
	}
	fmt.Printf("%d nota(s) updated\n", updated)
	return nil
}
