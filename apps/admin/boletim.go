package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jpcarvalho/diario/core"
)

func (cli *commandLine) boletim(alunoRef string, ano int, email string) error {
	ctx := context.Background()

	if email != "" {
		if _, err := cli.gradingSvc.EmailBoletim(ctx, core.Ref(alunoRef), ano, email); err != nil {
			return err
		}
		fmt.Printf("boletim sent to %s\n", email)
		return nil
	}

	bol, err := cli.gradingSvc.BuildBoletim(ctx, core.Ref(alunoRef), ano)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(bol, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
