package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/born-ml/seqnet/internal/dataset"
	"github.com/born-ml/seqnet/internal/envconfig"
	"github.com/born-ml/seqnet/internal/nn"
)

func newMNISTCmd() *cobra.Command {
	dir := envconfig.DataDir()
	cmd := &cobra.Command{
		Use:   "mnist",
		Short: "Train an MNIST classifier (784-100-50-10 sigmoid MLP by default)",
		Args:  cobra.NoArgs,
		RunE:  MNISTHandler,
	}
	cmd.Flags().String("train-images", filepath.Join(dir, "train-images.idx3-ubyte"), "Training images (IDX)")
	cmd.Flags().String("train-labels", filepath.Join(dir, "train-labels.idx1-ubyte"), "Training labels (IDX)")
	cmd.Flags().String("test-images", filepath.Join(dir, "t10k-images.idx3-ubyte"), "Test images (IDX)")
	cmd.Flags().String("test-labels", filepath.Join(dir, "t10k-labels.idx1-ubyte"), "Test labels (IDX)")
	cmd.Flags().Int("samples", 2048, "Number of training samples to use (0 = all)")
	cmd.Flags().Int("test-samples", 0, "Number of test samples to evaluate (0 = all)")
	cmd.Flags().Int("show", 4, "Number of test predictions to print")
	cmd.Flags().String("arch", "mlp", "Network: mlp (784-100-50-10) or cnn (conv-relu-pool-dense)")
	cmd.Flags().String("loss", "mse", "Loss: mse or cross_entropy")
	addTrainFlags(cmd, trainDefaults{Epochs: 50, BatchSize: 1, LearningRate: 0.2})
	return cmd
}

// MNISTHandler trains the classifier on the first samples of the training
// set and reports accuracy on the test set.
func MNISTHandler(cmd *cobra.Command, _ []string) error {
	o, err := readTrainFlags(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	paths := make(map[string]string, 4)
	for _, name := range []string{"train-images", "train-labels", "test-images", "test-labels"} {
		if paths[name], err = flags.GetString(name); err != nil {
			return err
		}
	}
	samples, err := flags.GetInt("samples")
	if err != nil {
		return err
	}
	testSamples, err := flags.GetInt("test-samples")
	if err != nil {
		return err
	}
	show, err := flags.GetInt("show")
	if err != nil {
		return err
	}
	arch, err := flags.GetString("arch")
	if err != nil {
		return err
	}
	lossName, err := flags.GetString("loss")
	if err != nil {
		return err
	}
	loss, err := nn.LossByName[float64](lossName)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Loading data...")
	trainX, trainY, err := readPair(paths["train-images"], paths["train-labels"])
	if err != nil {
		return err
	}
	testX, testY, err := readPair(paths["test-images"], paths["test-labels"])
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Loaded image [number, width, height]: %v\n", trainX.Sizes)
	fmt.Fprintf(w, "Loaded label [number]: %v\n", trainY.Sizes)

	model, err := mnistModel(arch, loss, trainX.Sizes[1], trainX.Sizes[2])
	if err != nil {
		return err
	}
	model.WithSeed(o.Seed)
	if err := model.Compile(); err != nil {
		return err
	}
	if o.Load != "" {
		if err := loadCheckpoint(model, o.Load); err != nil {
			return err
		}
	}
	if !o.Quiet {
		renderSummary(w, model)
	}

	fmt.Fprintln(w, "Start training...")
	start := time.Now()
	finalLoss, err := fit(w, model, trainX.Head(limit(samples)), trainY.Head(limit(samples)), o, loss)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Training time: %s\n", time.Since(start).Round(time.Millisecond))

	inputs := testX.Head(limit(testSamples))
	truth := testY.Head(limit(testSamples))
	outputs, err := model.Predict(inputs)
	if err != nil {
		return err
	}

	correct := 0
	for i := range outputs {
		if dataset.ArgMax(outputs[i]) == dataset.ArgMax(truth[i]) {
			correct++
		}
	}
	accuracy := float64(correct) / float64(max(len(outputs), 1))
	slog.Debug("evaluation finished", "samples", len(outputs), "correct", correct)

	if show > 0 {
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"CASE", "GUESS", "TRUTH", "OUTPUT"})
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetBorder(false)
		for i := 0; i < min(show, len(outputs)); i++ {
			table.Append([]string{
				fmt.Sprint(i),
				fmt.Sprint(dataset.ArgMax(outputs[i])),
				fmt.Sprint(dataset.ArgMax(truth[i])),
				formatValues(outputs[i]),
			})
		}
		table.Render()
	}
	fmt.Fprintf(w, "accuracy: %.2f%% (%d/%d)\n", 100*accuracy, correct, len(outputs))

	if o.Save != "" {
		metadata := map[string]string{"task": "mnist", "arch": arch, "loss": lossName}
		return saveCheckpoint(w, model, metadata, o, finalLoss)
	}
	return nil
}

// mnistModel builds the classifier for rows x cols images. With
// cross-entropy the network emits raw logits, otherwise it ends in a
// sigmoid.
func mnistModel(arch string, loss nn.Loss[float64], rows, cols int) (*nn.Sequential[float64], error) {
	var layers []nn.Layer[float64]
	switch strings.ToLower(arch) {
	case "mlp":
		layers = []nn.Layer[float64]{
			nn.NewInput[float64](1, rows*cols),
			nn.NewDense[float64](100),
			nn.NewSigmoid[float64](),
			nn.NewDense[float64](50),
			nn.NewSigmoid[float64](),
			nn.NewDense[float64](dataset.NumClasses),
		}
	case "cnn":
		layers = []nn.Layer[float64]{
			nn.NewInput[float64](rows, cols, 1),
			nn.NewConv2D[float64](6, 3),
			nn.NewReLU[float64](),
			nn.NewMaxPool2D[float64](2, 2),
			nn.NewFlatten[float64](),
			nn.NewDense[float64](dataset.NumClasses),
		}
	default:
		return nil, fmt.Errorf("unknown architecture %q (want mlp or cnn)", arch)
	}
	if _, logits := loss.(nn.CrossEntropyLoss[float64]); !logits {
		layers = append(layers, nn.NewSigmoid[float64]())
	}
	return nn.NewSequential(layers...), nil
}

// readPair decodes an image file and its label file and checks that they
// describe the same number of samples.
func readPair(imagesPath, labelsPath string) (*dataset.IDX[float64], *dataset.IDX[float64], error) {
	images, err := dataset.ReadIDX[float64](imagesPath)
	if err != nil {
		return nil, nil, err
	}
	if images.Magic != dataset.MagicImages {
		return nil, nil, fmt.Errorf("%s: not an IDX image file", imagesPath)
	}
	labels, err := dataset.ReadIDX[float64](labelsPath)
	if err != nil {
		return nil, nil, err
	}
	if labels.Magic != dataset.MagicLabels {
		return nil, nil, fmt.Errorf("%s: not an IDX label file", labelsPath)
	}
	if images.Len() != labels.Len() {
		return nil, nil, fmt.Errorf("%d images but %d labels", images.Len(), labels.Len())
	}
	return images, labels, nil
}

// limit maps the "0 = all" flag convention onto IDX.Head.
func limit(n int) int {
	if n <= 0 {
		return -1
	}
	return n
}
