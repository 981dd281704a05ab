package cli

import (
	"strings"
	"testing"
)

func TestValidateHistoryKind(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		wantErr bool
	}{
		{
			name:    "chat",
			kind:    "chat",
			wantErr: false,
		},
		{
			name:    "debate",
			kind:    "debate",
			wantErr: false,
		},
		{
			name:    "empty",
			kind:    "",
			wantErr: true,
		},
		{
			name:    "unknown kind",
			kind:    "video",
			wantErr: true,
		},
		{
			name:    "wrong case",
			kind:    "Chat",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHistoryKind(tt.kind)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHistoryKind() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), "invalid history type") {
				t.Errorf("ValidateHistoryKind() error message = %v", err)
			}
		})
	}
}

func TestNormalizeOrigin(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{
			name: "plain origin",
			raw:  "http://localhost:5000",
			want: "http://localhost:5000",
		},
		{
			name: "trailing slash stripped",
			raw:  "http://localhost:5000/",
			want: "http://localhost:5000",
		},
		{
			name: "https origin",
			raw:  "https://soryn.example.com",
			want: "https://soryn.example.com",
		},
		{
			name:    "missing scheme",
			raw:     "localhost:5000",
			wantErr: true,
		},
		{
			name:    "unsupported scheme",
			raw:     "ftp://localhost",
			wantErr: true,
		},
		{
			name:    "missing host",
			raw:     "http://",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeOrigin(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Errorf("NormalizeOrigin() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("NormalizeOrigin() = %v, want %v", got, tt.want)
			}
		})
	}
}
