// Package serialization saves and loads seqnet model parameters in the .seqn
// checkpoint format.
//
//	Format Structure:
//	  [4 bytes: Magic "SEQN"]
//	  [4 bytes: Version (uint32 LE)]
//	  [4 bytes: Flags (uint32 LE)]
//	  [8 bytes: Header Size (uint64 LE)]
//	  [12 bytes: Reserved (zero)]
//	  [32 bytes: SHA-256 of the tensor data section]
//	  [Header: JSON metadata]
//	  [Padding: zero bytes up to a 64-byte boundary]
//	  [Tensor data: little-endian values, tensors back to back]
//
// The format supports:
//   - float16, float32 and float64 storage, independent of the in-memory type
//   - A unique id per checkpoint (UUID v4)
//   - Free-form metadata and the training settings that produced the weights
//   - Integrity checking of the data section
//
// Example usage:
//
//	// Save a model
//	_, err := serialization.Save("xor.seqn", model.StateDict(), serialization.Options{
//	    ModelType: "Sequential",
//	    DType:     serialization.DTypeFloat16,
//	})
//
//	// Load a model
//	state, header, err := serialization.Load[float64]("xor.seqn")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = model.LoadStateDict(state)
package serialization
