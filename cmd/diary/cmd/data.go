package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mydiary/mydiary/internal/backup"
	"github.com/mydiary/mydiary/internal/domain"
	"github.com/mydiary/mydiary/internal/service"
	"github.com/mydiary/mydiary/internal/storage"
)

func (a *App) migrateCommand() *cobra.Command {
	var opts storage.MigrateOptions
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy local entries to your hosted account and switch to cloud mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			router, err := invoke[*storage.Router](a)
			if err != nil {
				return err
			}
			res, err := router.MigrateToCloud(cmd.Context(), opts)
			if a.json {
				if jerr := a.printJSON(res); jerr != nil {
					return jerr
				}
				return err
			}
			if err != nil {
				warnColor.Fprintf(a.out, "Migrated %d of %d entries before the failure; still in local mode.\n", res.Migrated, res.Total)
				return err
			}
			successColor.Fprintf(a.out, "Migrated %d of %d entries (%d already in the cloud). Now in cloud mode.\n",
				res.Migrated, res.Total, res.Skipped)
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.SkipExisting, "skip-existing", false, "leave out entries already in the cloud")
	return cmd
}

func (a *App) exportCommand() *cobra.Command {
	var (
		format string
		opts   backup.ExportOptions
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every entry to a backup file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.requireOpen(ctx); err != nil {
				return err
			}
			svc, err := invoke[*backup.Service](a)
			if err != nil {
				return err
			}
			opts.Format = backup.Format(format)
			res, err := svc.Export(ctx, opts)
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(res)
			}
			successColor.Fprintf(a.out, "Exported %d entries to %s\n", res.Entries, res.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", string(backup.FormatJSON), "json or markdown")
	cmd.Flags().StringVarP(&opts.OutputPath, "output", "o", "", "output file (default: a new file in the backup directory)")
	return cmd
}

func (a *App) importCommand() *cobra.Command {
	var opts backup.ImportOptions
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Add the entries of a JSON backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.requireOpen(ctx); err != nil {
				return err
			}
			svc, err := invoke[*backup.Service](a)
			if err != nil {
				return err
			}
			res, err := svc.ImportFile(ctx, args[0], opts)
			if res == nil {
				return err
			}
			if a.json {
				if jerr := a.printJSON(res); jerr != nil {
					return jerr
				}
				return err
			}
			verb := "Imported"
			if opts.DryRun {
				verb = "Would import"
			}
			fmt.Fprintf(a.out, "%s %d of %d entries (%d skipped)\n", verb, res.Imported, res.Total, res.Skipped)
			return err
		},
	}
	cmd.Flags().BoolVar(&opts.SkipExisting, "skip-existing", false, "leave out entries that already exist")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "count without writing")
	return cmd
}

func (a *App) backupsCommand() *cobra.Command {
	backups := &cobra.Command{
		Use:   "backups",
		Short: "List backup files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := invoke[*backup.Service](a)
			if err != nil {
				return err
			}
			list, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(list)
			}
			if len(list) == 0 {
				mutedColor.Fprintln(a.out, "No backups yet.")
				return nil
			}
			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tCREATED\tSIZE")
			for _, b := range list {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", b.Name, b.CreatedAt.Local().Format("2006-01-02 15:04"), b.Size)
			}
			return tw.Flush()
		},
	}

	backups.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := invoke[*backup.Service](a)
			if err != nil {
				return err
			}
			if err := svc.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			successColor.Fprintf(a.out, "Deleted %s\n", args[0])
			return nil
		},
	})

	return backups
}

func (a *App) prefsCommand() *cobra.Command {
	var (
		theme, sound string
		volume       float64
		biometric    bool
	)
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, err := invoke[*service.PreferencesService](a)
			if err != nil {
				return err
			}

			var update service.PreferencesUpdate
			changed := cmd.Flags().Changed
			if changed("theme") {
				t := domain.Theme(theme)
				update.Theme = &t
			}
			if changed("sound") {
				s := domain.AmbientSound(sound)
				update.AmbientSound = &s
			}
			if changed("volume") {
				update.AmbientVolume = &volume
			}
			if changed("biometric") {
				update.BiometricEnabled = &biometric
			}

			p, err := svc.Update(ctx, update)
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(p)
			}
			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "theme\t%s\n", p.Theme)
			fmt.Fprintf(tw, "ambient sound\t%s\n", p.AmbientSound)
			fmt.Fprintf(tw, "ambient volume\t%.2f\n", p.AmbientVolume)
			fmt.Fprintf(tw, "biometric unlock\t%t\n", p.BiometricEnabled)
			return tw.Flush()
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&theme, "theme", "", "light, dark or system")
	fl.StringVar(&sound, "sound", "", "none, rain, ocean or forest")
	fl.Float64Var(&volume, "volume", 0, "ambient volume between 0 and 1")
	fl.BoolVar(&biometric, "biometric", false, "enable biometric unlock")
	return cmd
}
