package imagegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractImageURL(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{
			name: "data array with url",
			body: `{"data":[{"url":"https://cdn.example/a.png"}]}`,
			want: "https://cdn.example/a.png",
		},
		{
			name: "data array with b64",
			body: `{"data":[{"b64_json":"aGVsbG8="}]}`,
			want: "aGVsbG8=",
		},
		{
			name: "image object",
			body: `{"image":{"url":"https://cdn.example/b.png"}}`,
			want: "https://cdn.example/b.png",
		},
		{
			name: "bare url",
			body: `{"url":"https://cdn.example/c.png"}`,
			want: "https://cdn.example/c.png",
		},
		{
			name: "images array",
			body: `{"images":[{"url":"https://cdn.example/d.png"}]}`,
			want: "https://cdn.example/d.png",
		},
		{
			name:    "unknown shape",
			body:    `{"result":"ok"}`,
			wantErr: true,
		},
		{
			name:    "empty data array",
			body:    `{"data":[]}`,
			wantErr: true,
		},
		{
			name:    "invalid json",
			body:    `not json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractImageURL([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
