package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"shelter-meds/internal/domain/schedule"
	"shelter-meds/internal/ports/auth"

	"github.com/spf13/cobra"
)

// scopeFlags: shelter sobre el que opera el comando y, para backends
// remotos, el token del usuario.
type scopeFlags struct {
	shelterID string
	token     string
}

func (f *scopeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.shelterID, "shelter", "", "shelter id")
	cmd.Flags().StringVar(&f.token, "token", os.Getenv("SHELTER_TOKEN"), "bearer token (firestore backend)")
	_ = cmd.MarkFlagRequired("shelter")
}

func (f *scopeFlags) scope() auth.Scope {
	return auth.Scope{
		ShelterID:  strings.TrimSpace(f.shelterID),
		Credential: auth.Credential{Token: strings.TrimSpace(f.token)},
	}
}

func parseOptionalDate(name, s string) (schedule.Date, error) {
	if strings.TrimSpace(s) == "" {
		return schedule.Date{}, nil
	}
	d, err := schedule.ParseDate(s)
	if err != nil {
		return schedule.Date{}, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

func dueCmd(configPath *string) *cobra.Command {
	var (
		sf       scopeFlags
		animalID string
		from, to string
	)

	cmd := &cobra.Command{
		Use:   "due",
		Short: "Print dose occurrences and their status (today by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fromDate, err := parseOptionalDate("from", from)
			if err != nil {
				return err
			}
			toDate, err := parseOptionalDate("to", to)
			if err != nil {
				return err
			}

			cfg, log, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			a, err := newApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			items, err := a.schedule.GetDue(cmd.Context(), sf.scope(), animalID, fromDate, toDate)
			if err != nil {
				return err
			}
			return printDue(cmd.OutOrStdout(), items)
		},
	}

	sf.register(cmd)
	cmd.Flags().StringVar(&animalID, "animal", "", "only this animal")
	cmd.Flags().StringVar(&from, "from", "", "first day YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last day YYYY-MM-DD")
	return cmd
}

func printDue(w io.Writer, items []schedule.DoseStatus) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTIME\tANIMAL\tDOSAGE\tSTATUS\tOCCURRENCE")
	for _, it := range items {
		o := it.Occurrence
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			o.Date, o.Slot, o.AnimalID, o.Dosage, it.Status, o.ID)
	}
	return tw.Flush()
}

func historyCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Administration history",
	}

	var (
		sf       scopeFlags
		animalID string
		from, to string
		out      string
	)

	export := &cobra.Command{
		Use:   "export",
		Short: "Export an animal's administration history to .xlsx",
		RunE: func(cmd *cobra.Command, args []string) error {
			fromDate, err := parseOptionalDate("from", from)
			if err != nil {
				return err
			}
			toDate, err := parseOptionalDate("to", to)
			if err != nil {
				return err
			}

			cfg, log, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			a, err := newApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			buf, name, err := a.schedule.ExportHistory(cmd.Context(), sf.scope(), animalID, fromDate, toDate)
			if err != nil {
				return err
			}
			if out == "" {
				out = name
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, buf.Len())
			return nil
		},
	}

	sf.register(export)
	export.Flags().StringVar(&animalID, "animal", "", "animal id")
	export.Flags().StringVar(&from, "from", "", "first day YYYY-MM-DD")
	export.Flags().StringVar(&to, "to", "", "last day YYYY-MM-DD")
	export.Flags().StringVar(&out, "out", "", "output file (default: suggested name)")
	_ = export.MarkFlagRequired("animal")

	cmd.AddCommand(export)
	return cmd
}
