package main

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/born-ml/seqnet/internal/dataset"
	"github.com/born-ml/seqnet/internal/nn"
)

func newXORCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "xor",
		Short: "Train a two-layer network on XOR",
		Args:  cobra.NoArgs,
		RunE:  XORHandler,
	}
	cmd.Flags().Int("hidden", 8, "Units in the hidden layer")
	addTrainFlags(cmd, trainDefaults{Epochs: 10000, BatchSize: 1, LearningRate: 0.1})
	return cmd
}

// XORHandler trains Input(1,2) -> Dense(hidden) -> Tanh -> Dense(1) ->
// Sigmoid on the four XOR points and prints the predictions.
func XORHandler(cmd *cobra.Command, _ []string) error {
	o, err := readTrainFlags(cmd)
	if err != nil {
		return err
	}
	hidden, err := cmd.Flags().GetInt("hidden")
	if err != nil {
		return err
	}

	model := nn.NewSequential[float64](
		nn.NewInput[float64](1, 2),
		nn.NewDense[float64](hidden),
		nn.NewTanh[float64](),
		nn.NewDense[float64](1),
		nn.NewSigmoid[float64](),
	).WithSeed(o.Seed)
	if err := model.Compile(); err != nil {
		return err
	}
	if o.Load != "" {
		if err := loadCheckpoint(model, o.Load); err != nil {
			return err
		}
	}

	w := cmd.OutOrStdout()
	if !o.Quiet {
		renderSummary(w, model)
	}

	samples, targets := dataset.XOR[float64]()
	loss, err := fit(w, model, samples, targets, o, nil)
	if err != nil {
		return err
	}

	outputs, err := model.Predict(samples)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"INPUT", "TARGET", "OUTPUT"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for i := range samples {
		table.Append([]string{
			fmt.Sprint(samples[i]),
			fmt.Sprint(targets[i]),
			formatValues(outputs[i]),
		})
	}
	table.Render()
	fmt.Fprintf(w, "final loss: %.6f\n", loss)

	if o.Save != "" {
		return saveCheckpoint(w, model, map[string]string{"task": "xor"}, o, loss)
	}
	return nil
}
