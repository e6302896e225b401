package format

import (
	"bytes"
	"testing"

	"gopkg.in/yaml.v3"
)

type payload struct {
	Data  map[string]any `json:"data"`
	Hints []string       `json:"_hints"`
}

func sample() payload {
	return payload{
		Data:  map[string]any{"first_name": "Ann", "credit_limit": 1500.5, "tags": []string{}, "active": true, "manager": nil},
		Hints: []string{"greenlight clients show id-1"},
	}
}

func TestWriteEDN_Compact(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sample(), "edn", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := `{:_hints ["greenlight clients show id-1"] :data {:active true :credit-limit 1500.5 :first-name "Ann" :manager nil :tags []}}` + "\n"
	if got := buf.String(); got != want {
		t.Fatalf("edn mismatch\n got: %s\nwant: %s", got, want)
	}
}

func TestWriteYAML_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sample(), "yaml", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	var back map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("yaml: %v\n%s", err, buf.String())
	}
	data := back["data"].(map[string]any)
	if data["first_name"] != "Ann" {
		t.Fatalf("first_name = %v", data["first_name"])
	}
	if data["credit_limit"] != 1500.5 {
		t.Fatalf("credit_limit = %#v", data["credit_limit"])
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, 1, "xml", false); err == nil {
		t.Fatal("expected error")
	}
	if Valid("xml") || !Valid("YAML") {
		t.Fatal("Valid disagrees with Write")
	}
}
