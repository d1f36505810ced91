package genai

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	client, err := NewClient(context.Background(), Config{})
	assert.Nil(t, client)
	assert.ErrorContains(t, err, "API key is missing")
}

func TestUninitializedClient(t *testing.T) {
	c := &geminiClient{}
	_, err := c.Generate(context.Background(), "gemini-1.5-flash", "hi")
	assert.Error(t, err)
	assert.Error(t, c.IsAPIKeyValid(context.Background()))
	assert.NoError(t, c.Close())
}

func TestResponseText(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		want    string
		wantErr bool
	}{
		{
			name:    "nil response",
			resp:    nil,
			wantErr: true,
		},
		{
			name:    "no candidates",
			resp:    &genai.GenerateContentResponse{},
			wantErr: true,
		},
		{
			name: "single part",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []genai.Part{genai.Text("| target | source |")}}},
			}},
			want: "| target | source |",
		},
		{
			name: "multiple parts are concatenated",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []genai.Part{genai.Text("PASS"), genai.Text(" - no issues")}}},
			}},
			want: "PASS - no issues",
		},
		{
			name: "non-text part",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}}}},
			}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := responseText(tt.resp)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsAuthError(t *testing.T) {
	assert.True(t, isAuthError(status.Error(codes.Unauthenticated, "bad key")))
	assert.True(t, isAuthError(status.Error(codes.PermissionDenied, "denied")))
	assert.False(t, isAuthError(status.Error(codes.Unavailable, "down")))
	assert.False(t, isAuthError(errors.New("plain")))
}
