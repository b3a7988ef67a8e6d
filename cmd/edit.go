package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/studx/homefeed/internal/model"
	"github.com/studx/homefeed/internal/session"
)

const dateLayout = "02-01-2006"

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit one of my exchanges",
	Long: `Replace the editable fields of an exchange you own. Fields not given
on the command line keep the values currently shown in the owned feed.
Dates use the DD-MM-YYYY format; an omitted date is sent as today.

Examples:
  homefeed edit 42 --students 12 --level B2
  homefeed edit 42 --begin 01-09-2026 --end 30-06-2027`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)

	editCmd.Flags().String("native", "", "native language")
	editCmd.Flags().String("target", "", "target language")
	editCmd.Flags().String("level", "", "academic level (A1-C2)")
	editCmd.Flags().String("students", "", "number of students")
	editCmd.Flags().String("begin", "", "begin date (DD-MM-YYYY)")
	editCmd.Flags().String("end", "", "end date (DD-MM-YYYY)")
}

func runEdit(cmd *cobra.Command, args []string) error {
	id := args[0]

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	creds, err := session.Load(a.store)
	if err != nil {
		return err
	}
	a.controller.Initialize(cmd.Context())

	var (
		fields model.EditFields
		found  bool
	)
	for _, o := range a.controller.View().Owned {
		if o.ID == id {
			fields = model.EditFields{
				NativeLanguage:   o.NativeLanguage,
				TargetLanguage:   o.TargetLanguage,
				AcademicLevel:    o.AcademicLevel,
				QuantityStudents: strconv.Itoa(o.QuantityStudents),
			}
			found = true
			break
		}
	}
	flags := cmd.Flags()
	if !found && !(flags.Changed("native") && flags.Changed("target")) {
		return fmt.Errorf("exchange %s is not one of yours; pass --native and --target to edit it anyway", id)
	}
	if err := applyEditFlags(cmd, &fields); err != nil {
		return err
	}

	msg, err := a.executor.EditOwned(cmd.Context(), id, creds.Token, fields)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, msg)
	fmt.Fprintln(w)
	heading.Fprintln(w, "My Exchanges")
	return renderOffers(w, a.controller.View().Owned)
}

func applyEditFlags(cmd *cobra.Command, fields *model.EditFields) error {
	flags := cmd.Flags()
	if flags.Changed("native") {
		fields.NativeLanguage, _ = flags.GetString("native")
	}
	if flags.Changed("target") {
		fields.TargetLanguage, _ = flags.GetString("target")
	}
	if flags.Changed("level") {
		level, _ := flags.GetString("level")
		fields.AcademicLevel = model.AcademicLevel(strings.ToUpper(strings.TrimSpace(level)))
	}
	if flags.Changed("students") {
		fields.QuantityStudents, _ = flags.GetString("students")
	}
	for name, dst := range map[string]*time.Time{"begin": &fields.BeginDate, "end": &fields.EndDate} {
		if !flags.Changed(name) {
			continue
		}
		raw, _ := flags.GetString(name)
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			return fmt.Errorf("--%s must be DD-MM-YYYY: %w", name, err)
		}
		*dst = d
	}
	return nil
}
