package client

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

// NewQueueCommand constructs the `queue` command group and subcommands. The
// apiURL func resolves the server base URL at invocation time.
func NewQueueCommand(apiURL func() string) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:     "queue",
		Aliases: []string{"q"},
		Short:   "Queue operations (durable priority queues)",
		Long: `Queue operations against a running duraq server.

Commands:
  create          Start a queue explicitly
  list            List queues known to the server
  enqueue         Add a payload at a priority level (0 = most urgent)
  dequeue         Remove and print the most urgent payload
  info            Show length and lifetime counters
  reset-counters  Zero the lifetime counters (length untouched)
  shutdown        Stop a queue's actor; durable entries are kept`,
	}

	queueCmd.AddCommand(
		newQueueCreateCommand(apiURL),
		newQueueListCommand(apiURL),
		newQueueEnqueueCommand(apiURL),
		newQueueDequeueCommand(apiURL),
		newQueueInfoCommand(apiURL),
		newQueueResetCountersCommand(apiURL),
		newQueueShutdownCommand(apiURL),
	)

	return queueCmd
}

func postJSON(url string, body any) (*http.Response, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return http.Post(url, "application/json", bytes.NewReader(b))
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// newQueueCreateCommand constructs the `queue create` subcommand.
func newQueueCreateCommand(apiURL func() string) *cobra.Command {
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create (start) a queue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			resp, err := postJSON(apiURL()+"/v1/queues/create", map[string]string{"queue": name})
			if err != nil {
				return err
			}
			drainAndClose(resp)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "status:", resp.Status)
			return nil
		},
	}
	createCmd.Flags().String("name", "", "Queue name")
	return createCmd
}

// newQueueListCommand constructs the `queue list` subcommand.
func newQueueListCommand(apiURL func() string) *cobra.Command {
	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List queues",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := http.Get(apiURL() + "/v1/queues")
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			var out struct {
				Queues []struct {
					Name    string `json:"name"`
					Running bool   `json:"running"`
				} `json:"queues"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out.Queues)
		},
	}
	return listCmd
}

// newQueueEnqueueCommand constructs the `queue enqueue` subcommand.
func newQueueEnqueueCommand(apiURL func() string) *cobra.Command {
	enqueueCmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Enqueue a payload",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			data, _ := cmd.Flags().GetString("data")
			priority, _ := cmd.Flags().GetInt64("priority")

			resp, err := postJSON(apiURL()+"/v1/queues/enqueue", map[string]any{
				"queue":    name,
				"priority": priority,
				"payload":  []byte(data),
			})
			if err != nil {
				return err
			}
			drainAndClose(resp)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "status:", resp.Status)
			return nil
		},
	}
	enqueueCmd.Flags().String("name", "", "Queue name")
	enqueueCmd.Flags().String("data", "", "Payload data")
	enqueueCmd.Flags().Int64("priority", 0, "Priority level (0 = most urgent)")
	return enqueueCmd
}

// newQueueDequeueCommand constructs the `queue dequeue` subcommand.
func newQueueDequeueCommand(apiURL func() string) *cobra.Command {
	dequeueCmd := &cobra.Command{
		Use:   "dequeue",
		Short: "Dequeue the most urgent payload",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			raw, _ := cmd.Flags().GetBool("raw")

			resp, err := postJSON(apiURL()+"/v1/queues/dequeue", map[string]string{"queue": name})
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusNoContent {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "queue is empty")
				return nil
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("dequeue failed: %s", resp.Status)
			}
			var out struct {
				Payload []byte `json:"payload"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				return err
			}
			if raw {
				_, _ = cmd.OutOrStdout().Write(out.Payload)
				return nil
			}
			res := map[string]any{"payload_b64": base64.StdEncoding.EncodeToString(out.Payload)}
			// show the text form too when it is printable
			if json.Valid(out.Payload) {
				res["payload_json"] = json.RawMessage(out.Payload)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	dequeueCmd.Flags().String("name", "", "Queue name")
	dequeueCmd.Flags().Bool("raw", false, "Write the raw payload bytes to stdout")
	return dequeueCmd
}

// newQueueInfoCommand constructs the `queue info` subcommand.
func newQueueInfoCommand(apiURL func() string) *cobra.Command {
	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Show queue length and lifetime counters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			resp, err := http.Get(apiURL() + "/v1/queues/info?queue=" + url.QueryEscape(name))
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("info failed: %s", resp.Status)
			}
			var stats map[string]any
			if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		},
	}
	infoCmd.Flags().String("name", "", "Queue name")
	return infoCmd
}

// newQueueResetCountersCommand constructs the `queue reset-counters` subcommand.
func newQueueResetCountersCommand(apiURL func() string) *cobra.Command {
	resetCmd := &cobra.Command{
		Use:   "reset-counters",
		Short: "Zero the lifetime enqueued/dequeued counters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			resp, err := postJSON(apiURL()+"/v1/queues/reset-counters", map[string]string{"queue": name})
			if err != nil {
				return err
			}
			drainAndClose(resp)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "status:", resp.Status)
			return nil
		},
	}
	resetCmd.Flags().String("name", "", "Queue name")
	return resetCmd
}

// newQueueShutdownCommand constructs the `queue shutdown` subcommand.
func newQueueShutdownCommand(apiURL func() string) *cobra.Command {
	shutdownCmd := &cobra.Command{
		Use:   "shutdown",
		Short: "Stop a queue's actor (durable entries are kept)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			resp, err := postJSON(apiURL()+"/v1/queues/shutdown", map[string]string{"queue": name})
			if err != nil {
				return err
			}
			drainAndClose(resp)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "status:", resp.Status)
			return nil
		},
	}
	shutdownCmd.Flags().String("name", "", "Queue name")
	return shutdownCmd
}
