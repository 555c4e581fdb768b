package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maloquacious/roster/internal/store"
	"github.com/maloquacious/roster/internal/store/sqlite"
)

func newDBCmd() *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	dbCreateCmd := &cobra.Command{
		Use:   "create",
		Short: "Create and initialize the datastore",
		RunE:  runDBCreate,
	}
	dbVerifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify schema integrity and version",
		RunE:  runDBVerify,
	}

	dbCmd.AddCommand(dbCreateCmd, dbVerifyCmd)
	return dbCmd
}

// runDBCreate creates the database file, schema and sample people.
// Running it against an existing store changes nothing.
func runDBCreate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	st, err := openStore(cfg, true)
	if err != nil {
		return err
	}
	defer st.Close()

	count, err := st.Count(cmd.Context())
	if err != nil {
		return err
	}
	log.Info("datastore ready", "path", store.GetDBPath(cfg.DBPath), "schemaVersion", schemaVersion, "people", count)
	return nil
}

type verifyReport struct {
	Path            string `json:"path"`
	State           string `json:"state"`
	SchemaVersion   string `json:"schemaVersion"`
	ExpectedVersion string `json:"expectedVersion"`
	People          *int   `json:"people"`
}

// runDBVerify opens the store without changing it and prints a JSON summary.
// It fails unless the store is ready.
func runDBVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	path := store.GetDBPath(cfg.DBPath)
	report := verifyReport{
		Path:            path,
		State:           store.StateMissing.String(),
		ExpectedVersion: schemaVersion,
	}

	exists, err := store.CheckExists(path)
	if err != nil {
		return err
	}
	if exists {
		st := sqlite.New(path, schemaVersion)
		if err := st.Open(); err != nil {
			return err
		}
		defer st.Close()

		state, err := st.CheckState()
		if err != nil {
			return err
		}
		report.State = state.String()
		if state != store.StateUninitialized {
			if report.SchemaVersion, err = st.GetSchemaVersion(); err != nil {
				return err
			}
			count, err := st.Count(cmd.Context())
			if err != nil {
				return err
			}
			report.People = &count
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}
	if report.State != store.StateReady.String() {
		return fmt.Errorf("datastore is %s", report.State)
	}
	return nil
}
