package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/PratikDhanave/delivery-time-analytics/internal/loader"
	"github.com/PratikDhanave/delivery-time-analytics/internal/logging"
	"github.com/PratikDhanave/delivery-time-analytics/internal/models"
	"github.com/PratikDhanave/delivery-time-analytics/internal/store"
)

func NewImportCommand() *cobra.Command {
	command := &cobra.Command{
		Use:           "import",
		Short:         "Store the events of an event log for a tenant",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd)
			if err != nil {
				return err
			}
			_ = v.BindEnv("db_url", "DB_URL")

			tenant := v.GetString("tenant")
			if tenant == "" {
				return errors.New("tenant is required")
			}
			dbURL := v.GetString("db_url")
			if dbURL == "" {
				return errors.New("db_url is required")
			}

			events, err := loader.LoadFile(v.GetString("input_file"))
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			st, err := openStore(ctx, dbURL, logging.FromContext(ctx))
			if err != nil {
				return err
			}
			defer st.Close()

			inserted, err := importEvents(ctx, st, tenant, events)
			if err != nil {
				return err
			}
			cmd.Printf("imported %d of %d events for tenant %s\n", inserted, len(events), tenant)
			return nil
		},
	}
	command.Flags().String("input_file", "", "Path of the JSON event log to import (alias -in).")
	command.Flags().String("tenant", "", "Tenant the events belong to.")
	command.Flags().String("db_url", "", "Postgres connection string (env DB_URL).")
	command.Flags().SetNormalizeFunc(aliasNormalizer)
	return command
}

// importEvents stores events in one batch and returns how many were new.
func importEvents(ctx context.Context, st store.EventStore, tenant string, events []models.Event) (int, error) {
	records := make([]store.Record, len(events))
	for i, e := range events {
		records[i] = store.Record{EventID: eventID(i, e), Event: e}
	}
	inserted, err := st.InsertEvents(ctx, tenant, records)
	if err != nil {
		return 0, err
	}
	logging.FromContext(ctx).Infow("Imported events", "tenant", tenant, "events", len(events), "inserted", inserted)
	return inserted, nil
}

// eventID keys an imported event by its translation id, or by its position
// and content when the log carries none, so importing a file twice is a no-op.
func eventID(i int, e models.Event) string {
	if e.TranslationID != "" {
		return e.TranslationID
	}
	name := fmt.Sprintf("%d|%s|%v", i, e.Timestamp, e.Duration)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}
