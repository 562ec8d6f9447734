package main

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain/reconciliation"
)

// inputLine mirrors a form row. Amounts stay text so they go through the same lenient
// parsing as the entry form.
type inputLine struct {
	Ref          string `yaml:"ref"`
	TrackingMode string `yaml:"trackingMode"`
	UnitRef      string `yaml:"unitRef"`
	Ordered      string `yaml:"ordered"`
	Count        string `yaml:"count"`
	Weight       string `yaml:"weight"`
	UnitCost     string `yaml:"unitCost"`
}

// document is the file read by the command. JSON input parses as YAML.
type document struct {
	Items []inputLine       `yaml:"items"`
	Prior map[string]string `yaml:"prior"`
}

func readDocument(path string, stdin io.Reader) (*document, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &doc, nil
}

func (d *document) lineItems() []reconciliation.LineItem {
	items := make([]reconciliation.LineItem, 0, len(d.Items))
	for _, line := range d.Items {
		items = append(items, reconciliation.LineItem{
			Ref:          line.Ref,
			TrackingMode: reconciliation.ParseTrackingMode(line.TrackingMode),
			UnitRef:      line.UnitRef,
			Ordered:      reconciliation.ParseAmount(line.Ordered),
			Count:        reconciliation.ParseAmount(line.Count),
			Weight:       reconciliation.ParseAmount(line.Weight),
			UnitCost:     reconciliation.ParseAmount(line.UnitCost),
		})
	}
	return items
}

func (d *document) fulfillments() reconciliation.Fulfillments {
	prior := make(reconciliation.Fulfillments, len(d.Prior))
	for ref, amount := range d.Prior {
		prior[ref] = reconciliation.ParseAmount(amount)
	}
	return prior
}
