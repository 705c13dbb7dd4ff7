package nn

import (
	"fmt"

	"github.com/strand-ml/strand/internal/serialization"
	"github.com/strand-ml/strand/internal/tensor"
)

// StateDict flattens a parameter list into a serializable map. Parameter
// names repeat across layers ("weight_hh_l0" exists once per LSTM layer),
// so keys are "{index}.{name}" over the list's stable order.
func StateDict[B tensor.Backend](params []*Parameter[B]) map[string]*tensor.RawTensor {
	sd := make(map[string]*tensor.RawTensor, len(params))
	for i, p := range params {
		sd[fmt.Sprintf("%d.%s", i, p.name)] = p.Tensor().Raw()
	}
	return sd
}

// LoadStateDict copies a StateDict-produced map back into the parameter
// list. The list must have the same composition and order as the one the
// dict was built from.
func LoadStateDict[B tensor.Backend](params []*Parameter[B], sd map[string]*tensor.RawTensor) error {
	for i, p := range params {
		key := fmt.Sprintf("%d.%s", i, p.name)
		raw, ok := sd[key]
		if !ok {
			return &MissingParameterError{Name: key}
		}
		if !raw.Shape().Equal(p.Tensor().Shape()) {
			return &ShapeMismatchError{Name: key, Want: p.Tensor().Shape(), Got: raw.Shape()}
		}
		copy(p.Tensor().Data(), raw.AsFloat32())
	}
	return nil
}

// Save writes the parameters to a .strand checkpoint at path.
func Save[B tensor.Backend](path, modelType string, params []*Parameter[B]) error {
	return serialization.Write(path, modelType, StateDict(params), nil)
}

// Load restores parameters from a .strand checkpoint at path.
func Load[B tensor.Backend](path string, params []*Parameter[B]) error {
	_, sd, err := serialization.Read(path)
	if err != nil {
		return err
	}
	return LoadStateDict(params, sd)
}
