package main

import (
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/riboqc/internal/check"
	"github.com/inodb/riboqc/internal/codon"
	"github.com/inodb/riboqc/internal/output"
	"github.com/inodb/riboqc/internal/pipeline"
)

func newCheckCmd(a *app) *cobra.Command {
	var (
		outputFile string
		noSummary  bool
	)

	cmd := &cobra.Command{
		Use:   "check [options] <fasta> <gff>",
		Short: "Check GFF CDS features against FASTA sequences",
		Long: `Check that every CDS feature in a GFF file matches a FASTA sequence and
forms a complete coding sequence. Issues are written as a TSV report.`,
		Example: `  riboqc check yeast.fa yeast.gff3
  riboqc check -o issues.tsv --start-codons ATG,AAG yeast.fa yeast.gff3
  riboqc check --use-feature-name --feature-format '{}-CDS' yeast.fa yeast.gff3`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := check.Options{
				UseFeatureName: viper.GetBool("check.use_feature_name"),
				FeatureFormat:  viper.GetString("check.feature_format"),
				StartCodons:    splitList(viper.GetStringSlice("check.start_codons")),
			}
			if _, err := check.NewChecker(opts); err != nil {
				return &usageError{err}
			}

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

			counts, err := p.CheckFASTAGFF(args[0], args[1], outputFile, opts)
			if err != nil {
				return err
			}
			if !noSummary {
				output.WriteSummary(cmd.ErrOrStderr(), counts, !color.NoColor)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "issues.tsv", "Issue report file")
	cmd.Flags().BoolVar(&noSummary, "no-summary", false, "Do not print the issue summary")
	cmd.Flags().Bool("use-feature-name", false, "Name CDS features by their Name attribute before ID")
	cmd.Flags().String("feature-format", check.DefaultFeatureFormat, "Name template for CDS features without ID or Name; {} is the transcript ID")
	cmd.Flags().StringSlice("start-codons", []string{codon.StartCodon}, "Accepted start codons")

	_ = viper.BindPFlag("check.use_feature_name", cmd.Flags().Lookup("use-feature-name"))
	_ = viper.BindPFlag("check.feature_format", cmd.Flags().Lookup("feature-format"))
	_ = viper.BindPFlag("check.start_codons", cmd.Flags().Lookup("start-codons"))

	return cmd
}

// splitList flattens comma-separated entries, as set through the config
// file or RIBOQC_CHECK_START_CODONS.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
