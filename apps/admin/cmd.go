package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"

	"github.com/jpcarvalho/diario/core/grading"
	"github.com/jpcarvalho/diario/core/school"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db         *sql.DB
	schoolSvc  *school.Service
	gradingSvc *grading.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [args] - run database migrations (up, down, status, ...)")
	fmt.Println("  recompute [-ano YEAR] [-turma REF] [-disciplina REF] - recompute stored medias")
	fmt.Println("  boletim -aluno REF -ano YEAR [-email ADDRESS] - print or email an aluno's report card")
	fmt.Println("  seed - load dev fixture data (safe to rerun)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	recomputeCmd := flag.NewFlagSet("recompute", flag.ExitOnError)
	recomputeAno := recomputeCmd.Int("ano", 0, "Only recompute notas of this year.")
	recomputeTurma := recomputeCmd.String("turma", "", "Only recompute notas of this turma (id or codigo).")
	recomputeDisciplina := recomputeCmd.String("disciplina", "", "Only recompute notas of this disciplina (id or codigo).")

	boletimCmd := flag.NewFlagSet("boletim", flag.ExitOnError)
	boletimAluno := boletimCmd.String("aluno", "", "The aluno's id or codigo.")
	boletimAno := boletimCmd.Int("ano", 0, "The report card's year.")
	boletimEmail := boletimCmd.String("email", "", "Email the report card to this address instead of printing it.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "recompute":
		if err := recomputeCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.recompute(*recomputeAno, *recomputeTurma, *recomputeDisciplina)
	case "boletim":
		if err := boletimCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *boletimAluno == "" || *boletimAno == 0 {
			boletimCmd.Usage()
			return errHelp
		}
		return cli.boletim(*boletimAluno, *boletimAno, *boletimEmail)
	case "seed":
		return cli.seed()
	default:
		cli.printUsage()
		return errHelp
	}
}
