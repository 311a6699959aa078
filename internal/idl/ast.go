package idl

import (
	"encoding/json"

	"gopkg.microglot.org/uidlc/internal/optional"
)

// Document is the sole output of the front end: one language directive
// followed by exactly one root element.
type Document struct {
	URI      string   `json:"-"`
	Language Language `json:"language"`
	Root     Element  `json:"root"`
}

// Language is the mandatory leading directive that selects the target
// schema. The URL form (@language custom("https://...")) points at a
// custom schema definition.
type Language struct {
	Name  string
	Value string
	URL   optional.Optional[string]
}

func (l Language) MarshalJSON() ([]byte, error) {
	var url *string
	if l.URL.IsPresent() {
		u := l.URL.Value()
		url = &u
	}
	return json.Marshal(struct {
		Name  string  `json:"name"`
		Value string  `json:"value"`
		URL   *string `json:"url,omitempty"`
	}{l.Name, l.Value, url})
}

// Element is a kinded, named node. Property order and child order are
// each preserved from the source text, but the two lists are
// independent: the relative interleaving of a property and a child is
// not recorded.
type Element struct {
	Kind       string     `json:"kind"`
	Name       string     `json:"name"`
	Properties []Property `json:"properties"`
	Children   []Element  `json:"children"`
}

type Property struct {
	Name  string `json:"name"`
	Value Value  `json:"value"`
}

// Value is the closed set of literal forms a property can carry. The
// front end does not resolve identifiers or interpolation escapes;
// that is left to whatever consumes the Document.
type Value interface {
	value()
}

type ValueText struct {
	Text string
}

// ValueTextInterpolated carries the raw body of a d"..." literal.
// Interpolation markers inside the body are not processed here.
type ValueTextInterpolated struct {
	Text string
}

type ValueNumber struct {
	Value float64
}

// ValuePercentage is a number literal with an immediately trailing %.
// The numeric value is stored without scaling: 50% is 50, not 0.5.
type ValuePercentage struct {
	Value float64
}

type ValueIdentifier struct {
	Name string
}

func (ValueText) value()             {}
func (ValueTextInterpolated) value() {}
func (ValueNumber) value()           {}
func (ValuePercentage) value()       {}
func (ValueIdentifier) value()       {}

func (v ValueText) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{"text", v.Text})
}

func (v ValueTextInterpolated) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{"interpolated", v.Text})
}

func (v ValueNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string  `json:"type"`
		Value float64 `json:"value"`
	}{"number", v.Value})
}

func (v ValuePercentage) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string  `json:"type"`
		Value float64 `json:"value"`
	}{"percentage", v.Value})
}

func (v ValueIdentifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}{"identifier", v.Name})
}
