package cmd

import (
	"bytes"
	"testing"
)

func TestStartCommand_RequiresTopic(t *testing.T) {
	rootCmd.SetArgs([]string{"start", "hello"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})

	if err := rootCmd.Execute(); err == nil {
		t.Error("start without --topic should return an error")
	}
}

func TestParseContextData(t *testing.T) {
	tests := []struct {
		name    string
		specs   []string
		want    map[string]string
		wantErr bool
	}{
		{
			name:  "none",
			specs: nil,
			want:  nil,
		},
		{
			name:  "single pair",
			specs: []string{"origin=LIS"},
			want:  map[string]string{"origin": "LIS"},
		},
		{
			name:  "value containing equals",
			specs: []string{"query=a=b"},
			want:  map[string]string{"query": "a=b"},
		},
		{
			name:  "empty value allowed",
			specs: []string{"flag="},
			want:  map[string]string{"flag": ""},
		},
		{
			name:    "missing equals",
			specs:   []string{"no-separator"},
			wantErr: true,
		},
		{
			name:    "empty key",
			specs:   []string{"=value"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseContextData(tt.specs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseContextData() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseContextData() = %+v, want %+v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("parseContextData()[%q] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}
