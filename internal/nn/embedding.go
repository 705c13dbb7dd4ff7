package nn

import (
	"fmt"

	"github.com/strand-ml/strand/internal/tensor"
)

// initRange bounds the uniform embedding initialization, following the
// AWD-LSTM recipe.
const initRange = 0.1

// Embedding is a lookup table that maps token ids to dense vectors.
//
// Architecture:
//   - Weight: [NumEmbed, EmbedDim] learnable parameter
//   - Forward: indices [seq, batch] -> embeddings [seq, batch, EmbedDim]
//
// The row for padID (if >= 0) is zeroed at construction so padding tokens
// contribute nothing to the recurrence.
type Embedding[B tensor.Backend] struct {
	Weight   *Parameter[B]
	NumEmbed int // vocabulary size
	EmbedDim int // embedding vector size
	PadID    int // padding token id, or -1
}

// NewEmbedding creates an Embedding layer with weights drawn from
// U(-0.1, 0.1) and the padding row zeroed. Pass padID = -1 for no padding.
func NewEmbedding[B tensor.Backend](numEmbeddings, embeddingDim, padID int, backend B) *Embedding[B] {
	weight := Uniform[B](tensor.Shape{numEmbeddings, embeddingDim}, -initRange, initRange, backend)
	if padID >= 0 {
		if padID >= numEmbeddings {
			panic(fmt.Sprintf("embedding: pad id %d outside vocabulary of size %d", padID, numEmbeddings))
		}
		row := weight.Data()[padID*embeddingDim : (padID+1)*embeddingDim]
		for i := range row {
			row[i] = 0
		}
	}

	return &Embedding[B]{
		Weight:   NewParameter[B]("weight", weight),
		NumEmbed: numEmbeddings,
		EmbedDim: embeddingDim,
		PadID:    padID,
	}
}

// Lookup maps each token id to its embedding vector.
//
// indices: int32 tensor of any shape; output shape is indices.Shape + [EmbedDim].
// Panics if any index is outside [0, NumEmbed).
func (e *Embedding[B]) Lookup(indices *tensor.Tensor[int32, B]) *tensor.Tensor[float32, B] {
	return e.Weight.Tensor().Embedding(indices)
}

// Parameters returns the trainable parameters.
func (e *Embedding[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{e.Weight}
}
