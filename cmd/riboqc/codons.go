package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inodb/riboqc/internal/pipeline"
)

func newCodonsCmd(a *app) *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "codons [options] <fasta> <gff>",
		Short: "Extract the codons of every CDS",
		Long: `Splice the CDS features of each transcript, split the coding sequence into
codons and write a Gene/Pos/Codon table.`,
		Example: `  riboqc codons yeast.fa yeast.gff3
  riboqc codons -o yeast_codons.tsv yeast.fa yeast.gff3`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			p := pipeline.New(version)
			p.SetLogger(a.logger)
			p.SetStore(store)

			n, err := p.ExtractCDSCodons(args[0], args[1], outputFile)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d codons to %s\n", n, outputFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "codons.tsv", "Codon table file")

	return cmd
}
