package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/nagarrakshak/caseledger/internal/convert"
	"github.com/nagarrakshak/caseledger/internal/model"
	"github.com/nagarrakshak/caseledger/internal/report"
	grpcserver "github.com/nagarrakshak/caseledger/internal/server/grpc"
	"github.com/nagarrakshak/caseledger/internal/service"
)

func newCasesCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{Use: "cases", Short: "List and manage cases"}

	var officer string
	list := &cobra.Command{
		Use:   "list",
		Short: "List cases visible to the caller",
		Long: `List cases visible to the caller.

Officers see their own cases; administrators see every case or, with
--officer, the cases of one officer.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.call(cmd, func(ctx context.Context, c grpcserver.CaseLedgerClient) error {
				resp, err := c.ListCases(ctx, convert.Fields(map[string]string{"officer": officer}))
				if err != nil {
					return err
				}
				var cl service.CaseList
				if err := convert.FromStruct(resp, &cl); err != nil {
					return err
				}
				if o.jsonOut {
					return o.printJSON(cl)
				}
				return o.printCases(cl)
			})
		},
	}
	list.Flags().StringVar(&officer, "officer", "", "only cases assigned to this officer")

	get := &cobra.Command{
		Use:   "get <case-id>",
		Short: "Show one case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.call(cmd, func(ctx context.Context, c grpcserver.CaseLedgerClient) error {
				resp, err := c.GetCase(ctx, convert.Fields(map[string]string{"id": args[0]}))
				if err != nil {
					return err
				}
				var cs model.Case
				if err := convert.FromStruct(resp, &cs); err != nil {
					return err
				}
				if o.jsonOut {
					return o.printJSON(cs)
				}
				w := tabwriter.NewWriter(o.out, 0, 0, 2, ' ', 0)
				for _, kv := range [][2]string{
					{"ID", cs.ID}, {"Type", cs.Type}, {"Status", cs.Status}, {"Priority", cs.Priority},
					{"Complainant", cs.Complainant}, {"Location", cs.Location}, {"Date", cs.Date},
					{"Officer", cs.AssignedOfficer}, {"Progress", fmt.Sprintf("%d%%", cs.Progress)},
					{"Last update", cs.LastUpdate}, {"Description", cs.Description},
				} {
					fmt.Fprintf(w, "%s:\t%s\n", kv[0], kv[1])
				}
				return w.Flush()
			})
		},
	}

	var to, from, reason string
	transfer := &cobra.Command{
		Use:   "transfer <case-id>",
		Short: "Reassign a case to another officer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.call(cmd, func(ctx context.Context, c grpcserver.CaseLedgerClient) error {
				resp, err := c.TransferCase(ctx, convert.Fields(map[string]string{
					"id": args[0], "to_officer": to, "from_officer": from, "reason": reason,
				}))
				if err != nil {
					return err
				}
				var e model.TransferLogEntry
				if err := convert.FromStruct(resp, &e); err != nil {
					return err
				}
				if o.jsonOut {
					return o.printJSON(e)
				}
				fmt.Fprintf(o.out, "transferred %s: %s -> %s\n", e.CaseID, e.FromOfficer, e.ToOfficer)
				return nil
			})
		},
	}
	transfer.Flags().StringVar(&to, "to", "", "receiving officer (required)")
	transfer.Flags().StringVar(&from, "from", "", "expected current officer; the transfer fails if it changed")
	transfer.Flags().StringVar(&reason, "reason", "", "reason for the transfer (required)")
	_ = transfer.MarkFlagRequired("to")
	_ = transfer.MarkFlagRequired("reason")

	var delReason string
	del := &cobra.Command{
		Use:   "delete <case-id>",
		Short: "Delete a case, keeping a copy in the deleted archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.call(cmd, func(ctx context.Context, c grpcserver.CaseLedgerClient) error {
				resp, err := c.DeleteCase(ctx, convert.Fields(map[string]string{"id": args[0], "reason": delReason}))
				if err != nil {
					return err
				}
				if o.jsonOut {
					return o.printJSON(resp.AsMap())
				}
				fmt.Fprintf(o.out, "deleted %s\n", convert.Str(resp, "deleted"))
				return nil
			})
		},
	}
	del.Flags().StringVar(&delReason, "reason", "", "reason for the deletion (required)")
	_ = del.MarkFlagRequired("reason")

	cmd.AddCommand(list, get, transfer, del)
	return cmd
}

func (o *options) printCases(cl service.CaseList) error {
	if cl.Source == service.SourceFixtures {
		fmt.Fprintln(os.Stderr, "warning: record store unavailable, showing sample data")
	}
	if len(cl.Cases) == 0 {
		fmt.Fprintln(o.out, "No cases.")
		return nil
	}
	w := tabwriter.NewWriter(o.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tSTATUS\tPRIORITY\tOFFICER\tDATE")
	for _, c := range cl.Cases {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Type, c.Status, c.Priority, c.AssignedOfficer, c.Date)
	}
	return w.Flush()
}

func newOfficersCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{Use: "officers", Short: "Officer queries"}
	cmd.AddCommand(&cobra.Command{
		Use:   "names",
		Short: "List distinct officer names found on cases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.call(cmd, func(ctx context.Context, c grpcserver.CaseLedgerClient) error {
				resp, err := c.ListOfficerNames(ctx, &structpb.Struct{})
				if err != nil {
					return err
				}
				var out struct {
					Names []string `json:"names"`
				}
				if err := convert.FromStruct(resp, &out); err != nil {
					return err
				}
				if o.jsonOut {
					return o.printJSON(out)
				}
				fmt.Fprintln(o.out, strings.Join(out.Names, "\n"))
				return nil
			})
		},
	})
	return cmd
}

func newStatsCmd(o *options) *cobra.Command {
	var pdfPath string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the department dashboard",
		Long: `Show the department dashboard.

With --pdf the dashboard is rendered locally into a PDF report.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.call(cmd, func(ctx context.Context, c grpcserver.CaseLedgerClient) error {
				resp, err := c.GetStats(ctx, &structpb.Struct{})
				if err != nil {
					return err
				}
				var d service.Dashboard
				if err := convert.FromStruct(resp, &d); err != nil {
					return err
				}
				if pdfPath != "" {
					return writePDF(pdfPath, d)
				}
				if o.jsonOut {
					return o.printJSON(d)
				}
				return o.printDashboard(d)
			})
		},
	}
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "write a PDF report to this file")
	return cmd
}

func writePDF(path string, d service.Dashboard) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return report.WriteDashboard(f, d)
}

func (o *options) printDashboard(d service.Dashboard) error {
	g := d.Global
	w := tabwriter.NewWriter(o.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Total:\t%d\n", g.Total)
	fmt.Fprintf(w, "Active:\t%d\n", g.Active)
	fmt.Fprintf(w, "Resolved:\t%d\n", g.Resolved)
	fmt.Fprintf(w, "Urgent:\t%d\n", g.Urgent)
	fmt.Fprintf(w, "Completion:\t%.1f%%\n", g.CompletionRate*100)
	fmt.Fprintf(w, "Avg resolution:\t%.1f days\n", g.AvgResolutionDays)
	fmt.Fprintf(w, "Sources:\tcases=%s directory=%s\n", d.CaseSource, d.DirectorySource)
	if len(d.Workload.Officers) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "OFFICER\tACTIVE\tRESOLVED\tTOTAL\tLOAD")
		for _, ow := range d.Workload.Officers {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n", ow.Officer.Name, ow.Active, ow.Resolved, ow.Total, ow.Load)
		}
	}
	if d.Workload.Unattributed > 0 {
		fmt.Fprintf(w, "\nUnattributed cases:\t%d\n", d.Workload.Unattributed)
	}
	return w.Flush()
}
