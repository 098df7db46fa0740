package model

import (
	"encoding/json"
	"io"

	"github.com/amesml/amesgo/pkg/errors"
)

// FormatVersion is the current version of the model interchange format.
const FormatVersion = "1.0"

// ModelSpec identifies a serialized model document.
type ModelSpec struct {
	Name          string `json:"name"`
	FormatVersion string `json:"format_version"`
}

// Document is the JSON envelope for trained-model interchange. Params holds
// the estimator-specific payload; estimators define their own params structs
// and decode through DecodeParams.
type Document struct {
	ModelSpec ModelSpec       `json:"model_spec"`
	Params    json.RawMessage `json:"params"`
}

// EncodeDocument writes a model document for the named estimator to w.
func EncodeDocument(w io.Writer, name string, params interface{}) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return errors.Wrap(err, "failed to marshal model params")
	}

	doc := Document{
		ModelSpec: ModelSpec{Name: name, FormatVersion: FormatVersion},
		Params:    raw,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&doc); err != nil {
		return errors.Wrap(err, "failed to encode model document")
	}
	return nil
}

// DecodeDocument reads a model document from r.
func DecodeDocument(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode model document")
	}
	return &doc, nil
}

// DecodeParams unmarshals the params payload into out after verifying that
// the document was written by the named estimator.
func (d *Document) DecodeParams(name string, out interface{}) error {
	if d.ModelSpec.Name != name {
		return errors.Newf("model document holds %q, want %q", d.ModelSpec.Name, name)
	}
	if err := json.Unmarshal(d.Params, out); err != nil {
		return errors.Wrap(err, "failed to unmarshal model params")
	}
	return nil
}
