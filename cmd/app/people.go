package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maloquacious/roster/internal/people"
)

var (
	addFirstName   string
	addLastName    string
	addDateOfBirth string
	addAddress     string
	addZIP         string
	addIndicators  map[string]string
)

func newPeopleCmd() *cobra.Command {
	peopleCmd := &cobra.Command{
		Use:   "people",
		Short: "List and add person records",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print every person as JSON, oldest first",
		Args:  cobra.NoArgs,
		RunE:  runPeopleList,
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Validate and store a person",
		Long: "Validate and store a person. Indicators are set with --set name=value,\n" +
			"where value is true, false or unknown. Known indicators: " +
			strings.Join(people.IndicatorFields, ", ") + ".",
		Args: cobra.NoArgs,
		RunE: runPeopleAdd,
	}
	addCmd.Flags().StringVar(&addFirstName, "first-name", "", "first name (required)")
	addCmd.Flags().StringVar(&addLastName, "last-name", "", "last name (required)")
	addCmd.Flags().StringVar(&addDateOfBirth, "dob", "", "date of birth, YYYY-MM-DD")
	addCmd.Flags().StringVar(&addAddress, "address", "", "street address")
	addCmd.Flags().StringVar(&addZIP, "zip", "", "five digit ZIP code")
	addCmd.Flags().StringToStringVar(&addIndicators, "set", nil, "indicator answers, e.g. --set veteran=true")

	peopleCmd.AddCommand(listCmd, addCmd)
	return peopleCmd
}

func runPeopleList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(cfg, false)
	if err != nil {
		return err
	}
	defer st.Close()

	list, err := st.ListAll(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]any{"people": list})
}

func runPeopleAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	fields, err := addFields(cmd)
	if err != nil {
		return err
	}
	rec, err := people.Validate(fields)
	if err != nil {
		return err
	}

	st, err := openStore(cfg, false)
	if err != nil {
		return err
	}
	defer st.Close()

	person, err := st.Insert(cmd.Context(), rec)
	if err != nil {
		return err
	}
	return printJSON(cmd, person)
}

// addFields builds the same field map the HTTP boundary would decode.
// Only flags the user set are included.
func addFields(cmd *cobra.Command) (map[string]any, error) {
	fields := map[string]any{}
	flags := cmd.Flags()
	for flag, field := range map[string]string{
		"first-name": people.FieldFirstName,
		"last-name":  people.FieldLastName,
		"dob":        people.FieldDateOfBirth,
		"address":    people.FieldAddress,
		"zip":        people.FieldZIP,
	} {
		if flags.Changed(flag) {
			v, _ := flags.GetString(flag)
			fields[field] = v
		}
	}

	known := map[string]bool{}
	for _, name := range people.IndicatorFields {
		known[name] = true
	}
	var unknown []string
	for name, v := range addIndicators {
		if !known[name] {
			unknown = append(unknown, name)
			continue
		}
		fields[name] = v
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown indicator(s): %s", strings.Join(unknown, ", "))
	}
	return fields, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
