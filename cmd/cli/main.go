package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"

	"github.com/iho/mlmledger/internal/adapter/http/dto"
	"github.com/iho/mlmledger/internal/domain"
	"github.com/iho/mlmledger/internal/infrastructure/auth"
)

// errCheckFailed makes the process exit non-zero after a report was printed.
var errCheckFailed = errors.New("check failed")

type options struct {
	baseURL string
	token   string
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errCheckFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "mlmledger-cli",
		Short:         "MLM ledger CLI tool",
		Long:          `A command line interface for operating the MLM commission ledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("MLMLEDGER_URL", "http://localhost:8080"), "Base URL of the ledger API")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("MLMLEDGER_TOKEN"), "Bearer token for the API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		ledgerCmd(opts),
		commissionsCmd(opts),
		reportsCmd(opts),
		accountsCmd(opts),
		tokensCmd(),
	)

	return rootCmd
}

func ledgerCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check that total debits equal total credits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result dto.LedgerConsistencyResponse
			if err := get(cmd, opts, "/api/v1/ledger/consistency", nil, &result); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !result.Consistent {
				fmt.Fprintf(out, "Consistency check FAILED\n")
				fmt.Fprintf(out, "Debits: %s Credits: %s Difference: %s\n", result.TotalDebits, result.TotalCredits, result.Difference)
				return errCheckFailed
			}
			fmt.Fprintf(out, "Consistency check PASSED\n")
			fmt.Fprintf(out, "Debits: %s Credits: %s\n", result.TotalDebits, result.TotalCredits)
			return nil
		},
	})

	return cmd
}

func commissionsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commissions",
		Short: "Commission operations",
	}

	var limit int
	sweep := &cobra.Command{
		Use:   "sweep",
		Short: "Pay pending commissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result dto.SweepResponse
			body := dto.SweepCommissionsRequest{Limit: limit}
			if err := post(cmd, opts, "/api/v1/commissions/sweep", body, &result); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Processed: %d Successful: %d Failed: %d\n", result.Processed, result.Successful, result.Failed)
			for _, r := range result.Results {
				if !r.Success {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", r.RevenueShareID, r.Error)
				}
			}
			if result.Failed > 0 {
				return errCheckFailed
			}
			return nil
		},
	}
	sweep.Flags().IntVar(&limit, "limit", 0, "Maximum number of commissions to pay (server default when 0)")

	cmd.AddCommand(sweep)
	return cmd
}

func reportsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Financial reports",
	}

	var from, to string
	summary := &cobra.Command{
		Use:   "summary",
		Short: "Print the financial summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := map[string]string{}
			if from != "" {
				query["from"] = from
			}
			if to != "" {
				query["to"] = to
			}

			var result dto.FinancialSummaryResponse
			if err := get(cmd, opts, "/api/v1/reports/summary", query, &result); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	summary.Flags().StringVar(&from, "from", "", "Window start (RFC3339 or YYYY-MM-DD)")
	summary.Flags().StringVar(&to, "to", "", "Window end (RFC3339 or YYYY-MM-DD)")

	reconciliation := &cobra.Command{
		Use:   "reconciliation",
		Short: "Reconcile every account and print the discrepancies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result dto.ReconciliationReportResponse
			if err := get(cmd, opts, "/api/v1/reports/reconciliation", nil, &result); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Accounts: %d Reconciled: %d Ledger consistent: %v\n",
				result.TotalAccounts, result.ReconciledAccounts, result.LedgerConsistent)
			for _, d := range result.Discrepancies {
				fmt.Fprintf(out, "  %s: recorded=%s calculated=%s difference=%s\n",
					d.AccountID, d.RecordedBalance, d.CalculatedBalance, d.Difference)
			}
			if len(result.Discrepancies) > 0 || !result.LedgerConsistent {
				return errCheckFailed
			}
			return nil
		},
	}

	cmd.AddCommand(summary, reconciliation)
	return cmd
}

func accountsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "reconcile <account-id>",
		Short: "Compare an account's cached balance against its journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result dto.ReconciliationResponse
			if err := get(cmd, opts, "/api/v1/accounts/"+args[0]+"/reconcile", nil, &result); err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.Reconciled {
				return errCheckFailed
			}
			return nil
		},
	})

	return cmd
}

func tokensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "API token operations",
	}

	var (
		role   string
		secret string
		ttl    time.Duration
	)
	issue := &cobra.Command{
		Use:   "issue <subject>",
		Short: "Issue a signed bearer token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := domain.Role(role)
			if !r.IsValid() {
				return fmt.Errorf("invalid role %q: must be admin, operator or viewer", role)
			}
			if secret == "" {
				return errors.New("a signing secret is required (--secret or JWT_SECRET)")
			}

			token, err := auth.NewJWTManager(secret, ttl).Generate(args[0], r)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issue.Flags().StringVar(&role, "role", string(domain.RoleViewer), "Token role")
	issue.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Signing secret")
	issue.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	cmd.AddCommand(issue)
	return cmd
}

func newClient(opts *options) *resty.Client {
	client := resty.New().
		SetBaseURL(opts.baseURL).
		SetTimeout(opts.timeout).
		SetHeader("Accept", "application/json")
	if opts.token != "" {
		client.SetAuthToken(opts.token)
	}
	return client
}

func get(cmd *cobra.Command, opts *options, path string, query map[string]string, result any) error {
	req := newClient(opts).R().
		SetContext(cmd.Context()).
		SetResult(result).
		SetError(&dto.ErrorResponse{})
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Get(path)
	return checkResponse(resp, err)
}

func post(cmd *cobra.Command, opts *options, path string, body, result any) error {
	resp, err := newClient(opts).R().
		SetContext(cmd.Context()).
		SetBody(body).
		SetResult(result).
		SetError(&dto.ErrorResponse{}).
		Post(path)
	return checkResponse(resp, err)
}

func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		if apiErr, ok := resp.Error().(*dto.ErrorResponse); ok && apiErr.Message != "" {
			return fmt.Errorf("%s (status %d): %s", apiErr.Error, resp.StatusCode(), apiErr.Message)
		}
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
