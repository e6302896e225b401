package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const id = "0b7e8f1c-5a8d-4c38-9a55-2f1d2b9a6c11"

func TestRewriteDirectClientArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"no args", []string{"greenlight"}, []string{"greenlight"}},
		{"direct id first token", []string{"greenlight", id}, []string{"greenlight", "clients", "show", id}},
		{"after value flag", []string{"greenlight", "--api-url", "http://x", id}, []string{"greenlight", "--api-url", "http://x", "clients", "show", id}},
		{"after equals flag", []string{"greenlight", "--format=yaml", id}, []string{"greenlight", "--format=yaml", "clients", "show", id}},
		{"after bool flag", []string{"greenlight", "--pretty", id}, []string{"greenlight", "--pretty", "clients", "show", id}},
		{"after double dash", []string{"greenlight", "--", id}, []string{"greenlight", "--", "clients", "show", id}},
		{"subcommand untouched", []string{"greenlight", "clients", "show", id}, []string{"greenlight", "clients", "show", id}},
		{"non-uuid untouched", []string{"greenlight", "login"}, []string{"greenlight", "login"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, rewriteDirectClientArgs(tt.in)); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
