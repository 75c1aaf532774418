package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/born-ml/seqnet/internal/dataset"
	"github.com/born-ml/seqnet/internal/envconfig"
	"github.com/born-ml/seqnet/internal/nn"
	"github.com/born-ml/seqnet/internal/tensor"
)

func newConvCmd() *cobra.Command {
	dir := envconfig.DataDir()
	cmd := &cobra.Command{
		Use:   "conv",
		Short: "Run one image through a pre-trained Conv2D + ReLU stage",
		Args:  cobra.NoArgs,
		RunE:  ConvHandler,
	}
	cmd.Flags().Int("height", 64, "Image height")
	cmd.Flags().Int("width", 64, "Image width")
	cmd.Flags().Int("channels", 3, "Image channels")
	cmd.Flags().Int("filters", 32, "Number of convolution filters")
	cmd.Flags().Int("kernel", 3, "Square kernel size")
	cmd.Flags().String("weights", filepath.Join(dir, "weights.txt"), "Comma-separated kernel weights in [k, k, channels, filters] order")
	cmd.Flags().String("bias", filepath.Join(dir, "bias.txt"), "Comma-separated bias, one per filter")
	cmd.Flags().String("image", filepath.Join(dir, "test_image.txt"), "Comma-separated image in [height, width, channels] order")
	cmd.Flags().StringP("output", "o", filepath.Join(dir, "temp.txt"), "Where to write the feature map")
	return cmd
}

// ConvHandler builds Input[H,W,C] -> Conv2D -> ReLU, installs the weights
// and bias from files and writes the feature map of one image.
func ConvHandler(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	dims := make(map[string]int, 5)
	for _, name := range []string{"height", "width", "channels", "filters", "kernel"} {
		v, err := flags.GetInt(name)
		if err != nil {
			return err
		}
		if v <= 0 {
			return fmt.Errorf("--%s must be positive, got %d", name, v)
		}
		dims[name] = v
	}
	paths := make(map[string]string, 4)
	for _, name := range []string{"weights", "bias", "image", "output"} {
		v, err := flags.GetString(name)
		if err != nil {
			return err
		}
		paths[name] = v
	}

	k, filters := dims["kernel"], dims["filters"]
	weightValues, err := dataset.ReadWeights[float64](paths["weights"])
	if err != nil {
		return err
	}
	weights, err := tensor.With(tensor.Shape{k, k, dims["channels"], filters}, weightValues)
	if err != nil {
		return fmt.Errorf("weights: %w", err)
	}
	biasValues, err := dataset.ReadWeights[float64](paths["bias"])
	if err != nil {
		return err
	}
	bias, err := tensor.With(tensor.Shape{filters}, biasValues)
	if err != nil {
		return fmt.Errorf("bias: %w", err)
	}
	image, err := dataset.ReadWeights[float64](paths["image"])
	if err != nil {
		return err
	}

	model := nn.NewSequential[float64](
		nn.NewInput[float64](dims["height"], dims["width"], dims["channels"]),
		nn.NewConv2D[float64](filters, k),
		nn.NewReLU[float64](),
	)
	if err := model.Compile(); err != nil {
		return err
	}
	if err := model.SetParameters(1, weights, bias); err != nil {
		return err
	}

	outputs, err := model.Predict([][]float64{image})
	if err != nil {
		return err
	}

	//nolint:gosec // G304: output path is supplied by the user on purpose
	file, err := os.Create(paths["output"])
	if err != nil {
		return err
	}
	if err := dataset.WriteValues(file, outputs[0]); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d values %v to %s\n", len(outputs[0]), model.OutputShape(), paths["output"])
	return nil
}
