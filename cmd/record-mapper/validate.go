package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"record-mapper/internal/factory"
	"record-mapper/internal/mapper"
	"record-mapper/internal/metadata"
)

var errInvalidRecord = errors.New("record is invalid")

func newValidateCmd(a *app) *cobra.Command {
	var (
		src    sourceFlags
		data   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a record against the rules of a class subset",
		Long: `Validate a JSON or YAML record against the validators declared for a class
subset. Violations are printed and the command fails when there is any.
Only built-in rules are available.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != formatText && format != formatJSON {
				return fmt.Errorf("%w: %q", errUnknownFormat, format)
			}

			p, err := a.provider(&src)
			if err != nil {
				return err
			}

			record, err := readRecord(data, cmd.InOrStdin())
			if err != nil {
				return err
			}

			builder := factory.New(factory.NewRegistry(), p, factory.WithLogger(a.logger))
			svc := mapper.New(builder, a.logger)

			report, err := svc.Validate(record, metadata.ParseClassID(src.class), src.subset)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if report.Valid() {
				_, err = fmt.Fprintln(out, "valid")

				return err
			}

			a.logger.Info("record rejected", zap.String("class", src.class), zap.String("subset", src.subset))

			if format == formatJSON {
				err = write(out, formatJSON, report)
			} else {
				_, err = fmt.Fprint(out, report.String())
			}

			if err != nil {
				return err
			}

			return fmt.Errorf("%w: %d violated path(s)", errInvalidRecord, len(report.Flatten()))
		},
	}

	src.register(cmd)
	cmd.Flags().StringVar(&data, "data", "-", `record file, JSON or YAML by extension; "-" reads JSON from stdin`)
	cmd.Flags().StringVarP(&format, "output", "o", formatText, "output format: text or json")

	return cmd
}
