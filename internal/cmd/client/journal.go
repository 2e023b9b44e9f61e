package client

import (
	"encoding/json"
	"strconv"

	"github.com/spf13/cobra"

	transports "github.com/rzbill/flake/internal/cmd/client/transports"
)

// NewJournalCommand constructs the `journal` command group.
func NewJournalCommand(baseURL BaseURLFunc) *cobra.Command {
	journalCmd := &cobra.Command{Use: "journal", Short: "Issuance journal operations"}
	journalCmd.AddCommand(newJournalQueryCommand(baseURL))
	return journalCmd
}

// newJournalQueryCommand constructs the `journal query` subcommand.
func newJournalQueryCommand(baseURL BaseURLFunc) *cobra.Command {
	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "Query issued IDs by time range with an optional CEL filter",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, _ := cmd.Flags().GetString("start")
			end, _ := cmd.Flags().GetString("end")
			filter, _ := cmd.Flags().GetString("filter")
			limit, _ := cmd.Flags().GetInt("limit")
			token, _ := cmd.Flags().GetString("token")
			follow, _ := cmd.Flags().GetBool("all")

			q := transports.JournalQuery{Filter: filter, Limit: limit}
			var err error
			if q.StartMs, err = parseTimeMs(start); err != nil {
				return err
			}
			if q.EndMs, err = parseTimeMs(end); err != nil {
				return err
			}
			if token != "" {
				if q.Token, err = strconv.ParseUint(token, 10, 64); err != nil {
					return err
				}
			}

			t := transports.NewHTTPTransport(baseURL())
			enc := json.NewEncoder(cmd.OutOrStdout())
			for {
				entries, next, err := t.QueryJournal(cmd.Context(), q)
				if err != nil {
					return err
				}
				for _, e := range entries {
					_ = enc.Encode(map[string]any{
						"id":       strconv.FormatUint(e.ID, 10),
						"tsMs":     e.TsMs,
						"shardId":  e.ShardID,
						"sequence": e.Sequence,
						"source":   e.Source,
						"tag":      e.Tag,
					})
				}
				if next == 0 || !follow {
					if next != 0 {
						_ = enc.Encode(map[string]any{"nextToken": strconv.FormatUint(next, 10)})
					}
					return nil
				}
				q.Token = next
			}
		},
	}
	queryCmd.Flags().String("start", "", "Range start (ms or RFC3339)")
	queryCmd.Flags().String("end", "", "Range end, inclusive (ms or RFC3339)")
	queryCmd.Flags().String("filter", "", "CEL filter over shard, sequence, ts_ms, source, tag, now_ms")
	queryCmd.Flags().Int("limit", 0, "Page size (server default 1000)")
	queryCmd.Flags().String("token", "", "Resume token from a previous page")
	queryCmd.Flags().Bool("all", false, "Follow resume tokens until the range is exhausted")
	return queryCmd
}
