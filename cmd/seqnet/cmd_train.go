package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/born-ml/seqnet/internal/envconfig"
	"github.com/born-ml/seqnet/internal/nn"
	"github.com/born-ml/seqnet/internal/optim"
	"github.com/born-ml/seqnet/internal/serialization"
)

// trainDefaults are a command's hyperparameters when neither a flag nor a
// SEQNET_* variable sets them.
type trainDefaults struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
}

// trainOptions are the resolved training flags of a command.
type trainOptions struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
	Workers      int
	Seed         int64
	Optimizer    string
	Momentum     float64
	Load         string
	Save         string
	Precision    string
	Quiet        bool
}

// addTrainFlags registers the flags shared by the training commands. The
// environment overrides the command defaults; flags override both.
func addTrainFlags(cmd *cobra.Command, d trainDefaults) {
	epochs := d.Epochs
	if e := envconfig.Epochs(); e > 0 {
		epochs = int(e)
	}
	batchSize := d.BatchSize
	if b := envconfig.BatchSize(); b > 0 {
		batchSize = int(b)
	}
	lr := d.LearningRate
	if l := envconfig.LearningRate(); l > 0 {
		lr = l
	}

	cmd.Flags().Int("epochs", epochs, "Number of passes over the training data")
	cmd.Flags().Int("batch-size", batchSize, "Samples per parameter update")
	cmd.Flags().Float64("learning-rate", lr, "Optimizer step size")
	cmd.Flags().Int("workers", int(envconfig.Workers()), "Goroutines sharing each batch")
	cmd.Flags().Int64("seed", envconfig.Seed(), "Seed for parameter initialization")
	cmd.Flags().String("optimizer", "sgd", "Update rule: sgd, momentum or adam")
	cmd.Flags().Float64("momentum", 0.9, "Momentum factor for the momentum optimizer")
	cmd.Flags().String("load", "", "Initialize parameters from a checkpoint")
	cmd.Flags().String("save", "", "Write the trained parameters to a checkpoint")
	cmd.Flags().String("precision", envconfig.Precision(), "Checkpoint storage type: float16, float32 or float64")
	cmd.Flags().BoolP("quiet", "q", envconfig.Quiet(), "Do not print the epoch table")
}

func readTrainFlags(cmd *cobra.Command) (trainOptions, error) {
	var o trainOptions
	var err error
	flags := cmd.Flags()
	if o.Epochs, err = flags.GetInt("epochs"); err != nil {
		return o, err
	}
	if o.BatchSize, err = flags.GetInt("batch-size"); err != nil {
		return o, err
	}
	if o.LearningRate, err = flags.GetFloat64("learning-rate"); err != nil {
		return o, err
	}
	if o.Workers, err = flags.GetInt("workers"); err != nil {
		return o, err
	}
	if o.Seed, err = flags.GetInt64("seed"); err != nil {
		return o, err
	}
	if o.Optimizer, err = flags.GetString("optimizer"); err != nil {
		return o, err
	}
	if o.Momentum, err = flags.GetFloat64("momentum"); err != nil {
		return o, err
	}
	if o.Load, err = flags.GetString("load"); err != nil {
		return o, err
	}
	if o.Save, err = flags.GetString("save"); err != nil {
		return o, err
	}
	if o.Precision, err = flags.GetString("precision"); err != nil {
		return o, err
	}
	if o.Quiet, err = flags.GetBool("quiet"); err != nil {
		return o, err
	}
	return o, nil
}

// newOptimizer returns the update rule selected by name.
func newOptimizer(name string, momentum float64) (nn.Optimizer[float64], error) {
	switch strings.ToLower(name) {
	case "", "sgd":
		return nn.GradientDescent[float64]{}, nil
	case "momentum":
		return optim.NewSGD[float64](optim.SGDConfig{Momentum: momentum}), nil
	case "adam":
		return optim.NewAdam[float64](optim.AdamConfig{}), nil
	default:
		return nil, fmt.Errorf("unknown optimizer %q (want sgd, momentum or adam)", name)
	}
}

// fit trains model and renders a table of sampled epoch losses unless quiet.
// It returns the mean loss of the last epoch.
// A nil loss trains with mean squared error.
func fit(w io.Writer, model *nn.Sequential[float64], samples, targets [][]float64, o trainOptions, loss nn.Loss[float64]) (float64, error) {
	opt, err := newOptimizer(o.Optimizer, o.Momentum)
	if err != nil {
		return 0, err
	}

	// Report at most ten evenly spaced epochs plus the last one.
	every := max(o.Epochs/10, 1)
	var rows [][]string
	var last float64
	err = model.Train(samples, targets, nn.TrainConfig[float64]{
		Epochs:       o.Epochs,
		BatchSize:    o.BatchSize,
		LearningRate: o.LearningRate,
		Workers:      o.Workers,
		Loss:         loss,
		Optimizer:    opt,
		OnEpoch: func(s nn.EpochStats) {
			last = s.Loss
			if s.Epoch%every == 0 || s.Epoch == s.Epochs {
				rows = append(rows, []string{
					strconv.Itoa(s.Epoch),
					strconv.FormatFloat(s.Loss, 'g', 6, 64),
					s.Duration.String(),
				})
			}
		},
	})
	if err != nil {
		return 0, err
	}

	if !o.Quiet && len(rows) > 0 {
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"EPOCH", "LOSS", "DURATION"})
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetBorder(false)
		table.AppendBulk(rows)
		table.Render()
	}
	return last, nil
}

// loadCheckpoint copies the parameters stored at path into model.
func loadCheckpoint(model *nn.Sequential[float64], path string) error {
	state, header, err := serialization.Load[float64](path)
	if err != nil {
		return err
	}
	if err := model.LoadStateDict(state); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("checkpoint loaded", "path", path, "id", header.ID, "seqnet_version", header.SeqnetVersion)
	return nil
}

// saveCheckpoint writes model's parameters and how they were trained.
func saveCheckpoint(w io.Writer, model *nn.Sequential[float64], metadata map[string]string, o trainOptions, loss float64) error {
	if metadata == nil {
		metadata = make(map[string]string)
	}
	metadata["architecture"] = describe(model)
	header, err := serialization.Save(o.Save, model.StateDict(), serialization.Options{
		DType:     o.Precision,
		ModelType: "Sequential",
		Metadata:  metadata,
		Training: &serialization.TrainingMeta{
			Epochs:       o.Epochs,
			BatchSize:    o.BatchSize,
			LearningRate: o.LearningRate,
			Optimizer:    o.Optimizer,
			Loss:         loss,
		},
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "saved checkpoint %s to %s\n", header.ID, o.Save)
	return nil
}

// describe renders the layer stack as "input[1 2] -> dense[1 8] -> ...".
func describe(model *nn.Sequential[float64]) string {
	parts := make([]string, 0, model.Len())
	for _, l := range model.Summary() {
		parts = append(parts, fmt.Sprintf("%s%v", l.Name, []int(l.OutputShape)))
	}
	return strings.Join(parts, " -> ")
}

// renderSummary prints one row per layer with its output shape and
// parameter count.
func renderSummary(w io.Writer, model *nn.Sequential[float64]) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "LAYER", "OUTPUT SHAPE", "PARAMETERS"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, l := range model.Summary() {
		table.Append([]string{
			strconv.Itoa(l.Index),
			l.Name,
			l.OutputShape.String(),
			strconv.Itoa(l.Parameters),
		})
	}
	table.SetFooter([]string{"", "", "TOTAL", strconv.Itoa(model.NumParameters())})
	table.Render()
}

// formatValues renders values with two decimals, e.g. "[0.01 0.98]".
func formatValues(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', 2, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
