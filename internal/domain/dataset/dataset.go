// Package dataset loads the demo dataset. The default dataset is embedded;
// a deployment may point at its own YAML file with the same shape.
package dataset

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/okian/chainaudit/internal/domain/model"
)

//go:embed dataset.yaml
var embedded []byte

// Sentinel errors for dataset loading.
var (
	ErrDecode         = errors.New("decode dataset")
	ErrInvalidDataset = errors.New("invalid dataset")
)

// Default returns the embedded demo dataset. It panics if the embedded file
// is broken, which a test guards against.
func Default() model.Dataset {
	ds, err := Decode(bytes.NewReader(embedded))
	if err != nil {
		panic(fmt.Sprintf("embedded dataset: %v", err))
	}
	return ds
}

// Load reads the dataset at path, or the embedded one when path is empty.
func Load(path string) (model.Dataset, error) {
	if path == "" {
		return Decode(bytes.NewReader(embedded))
	}
	f, err := os.Open(path)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// Decode parses and validates a YAML dataset. Unknown fields are rejected.
func Decode(r io.Reader) (model.Dataset, error) {
	var ds model.Dataset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		return model.Dataset{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if err := Validate(ds); err != nil {
		return model.Dataset{}, err
	}
	return ds, nil
}

// Validate checks that references between entities resolve and that the
// pages have something to show.
func Validate(ds model.Dataset) error {
	if len(ds.Suppliers) == 0 {
		return fmt.Errorf("%w: no suppliers", ErrInvalidDataset)
	}
	suppliers := make(map[string]struct{}, len(ds.Suppliers))
	for _, s := range ds.Suppliers {
		if s.ID == "" {
			return fmt.Errorf("%w: supplier without id", ErrInvalidDataset)
		}
		if s.Price <= 0 {
			return fmt.Errorf("%w: supplier %s has non-positive price", ErrInvalidDataset, s.ID)
		}
		suppliers[s.ID] = struct{}{}
	}

	events := make(map[string]struct{}, len(ds.Conflicts))
	for _, c := range ds.Conflicts {
		if _, ok := suppliers[c.SupplierID]; !ok {
			return fmt.Errorf("%w: conflict %s references unknown supplier %q", ErrInvalidDataset, c.EventID, c.SupplierID)
		}
		events[c.EventID] = struct{}{}
	}
	for _, a := range ds.Arbitrations {
		if _, ok := events[a.EventID]; !ok {
			return fmt.Errorf("%w: arbitration references unknown event %q", ErrInvalidDataset, a.EventID)
		}
	}

	nodes := make(map[string]struct{}, len(ds.Workflow.Nodes))
	for _, n := range ds.Workflow.Nodes {
		nodes[n.Name] = struct{}{}
	}
	for _, e := range ds.Workflow.Edges {
		_, okFrom := nodes[e.From]
		_, okTo := nodes[e.To]
		if !okFrom || !okTo {
			return fmt.Errorf("%w: edge %s -> %s references unknown node", ErrInvalidDataset, e.From, e.To)
		}
	}
	for _, s := range ds.Workflow.Timeline {
		if s.End < s.Start {
			return fmt.Errorf("%w: timeline stage %s ends before it starts", ErrInvalidDataset, s.Stage)
		}
	}

	seen := make(map[string]struct{}, len(ds.Cases))
	for _, c := range ds.Cases {
		if _, dup := seen[c.CaseID]; dup {
			return fmt.Errorf("%w: duplicate case %s", ErrInvalidDataset, c.CaseID)
		}
		seen[c.CaseID] = struct{}{}
	}
	return nil
}
