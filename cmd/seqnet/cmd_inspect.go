package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/born-ml/seqnet/internal/envconfig"
	"github.com/born-ml/seqnet/internal/serialization"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect CHECKPOINT",
		Short: "Show the contents of a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE:  InspectHandler,
	}
	cmd.Flags().Bool("no-verify", false, "Only read the header, skip the checksum")
	return cmd
}

// InspectHandler prints a checkpoint's header and tensor table. Unless
// --no-verify is given the whole file is loaded, so a corrupted data section
// is reported.
func InspectHandler(cmd *cobra.Command, args []string) error {
	noVerify, err := cmd.Flags().GetBool("no-verify")
	if err != nil {
		return err
	}

	var header serialization.Header
	if noVerify {
		header, err = serialization.ReadHeader(args[0])
	} else {
		_, header, err = serialization.Load[float64](args[0])
	}
	if err != nil {
		return err
	}

	showHeader(cmd.OutOrStdout(), header)
	return nil
}

func showHeader(w io.Writer, h serialization.Header) {
	tableRender := func(title string, header []string, rows [][]string) {
		fmt.Fprintln(w, " ", title)
		table := tablewriter.NewWriter(w)
		if header != nil {
			table.SetHeader(header)
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		}
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetBorder(false)
		table.SetNoWhiteSpace(true)
		table.SetTablePadding("    ")
		table.AppendBulk(rows)
		table.Render()
		fmt.Fprintln(w)
	}

	tableRender("Checkpoint", nil, [][]string{
		{"", "id", h.ID},
		{"", "format", strconv.Itoa(h.FormatVersion)},
		{"", "seqnet", h.SeqnetVersion},
		{"", "model", h.ModelType},
		{"", "created", h.CreatedAt.Format("2006-01-02 15:04:05 MST")},
	})

	if t := h.Training; t != nil {
		tableRender("Training", nil, [][]string{
			{"", "epochs", strconv.Itoa(t.Epochs)},
			{"", "batch size", strconv.Itoa(t.BatchSize)},
			{"", "learning rate", strconv.FormatFloat(t.LearningRate, 'g', -1, 64)},
			{"", "optimizer", t.Optimizer},
			{"", "loss", strconv.FormatFloat(t.Loss, 'g', 6, 64)},
		})
	}

	if len(h.Metadata) > 0 {
		keys := make([]string, 0, len(h.Metadata))
		for k := range h.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rows := make([][]string, len(keys))
		for i, k := range keys {
			rows[i] = []string{"", k, h.Metadata[k]}
		}
		tableRender("Metadata", nil, rows)
	}

	rows := make([][]string, len(h.Tensors))
	for i, t := range h.Tensors {
		rows[i] = []string{t.Name, t.DType, fmt.Sprint(t.Shape), strconv.FormatInt(t.Size, 10)}
	}
	tableRender("Tensors", []string{"NAME", "DTYPE", "SHAPE", "BYTES"}, rows)
}

func newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "List SEQNET_* settings and their current values",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			vars := envconfig.AsMap()
			values := envconfig.Values()

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"NAME", "VALUE", "DESCRIPTION"})
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetBorder(false)
			table.SetAutoWrapText(false)
			for _, name := range envconfig.Names() {
				table.Append([]string{name, values[name], vars[name].Description})
			}
			table.Render()
		},
	}
}
