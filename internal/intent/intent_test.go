package intent

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/mosaic-lumen/threshold/internal/generate"
)

// fakeClient returns a fixed verdict (or error) and records whether it was called.
type fakeClient struct {
	verdict string
	err     error
	called  bool
}

func (f *fakeClient) Stream(context.Context, string, []generate.Message) iter.Seq2[string, error] {
	return func(func(string, error) bool) {}
}

func (f *fakeClient) Complete(context.Context, string, []generate.Message) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeClient) Verdict(_ context.Context, _, _ string) (string, error) {
	f.called = true
	return f.verdict, f.err
}

func TestIsOffloadingPrefilter(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		hasAttachment bool
		want          bool
	}{
		{
			name: "explicit essay request",
			text: "write my essay on the industrial revolution",
			want: true,
		},
		{
			name: "draft request",
			text: "can you write a draft arguing that remote work improves productivity",
			want: true,
		},
		{
			name:          "attachment plus writing keyword",
			text:          "please help with this",
			hasAttachment: true,
			want:          true,
		},
		{
			name: "inline attachment marker plus keyword",
			text: "analysis of the rubric below\n[attached file: rubric.pdf]\n...",
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeClient{verdict: "COLLABORATING"}
			got := IsOffloading(context.Background(), fake, tt.text, tt.hasAttachment)
			if got != tt.want {
				t.Errorf("IsOffloading() = %v, want %v", got, tt.want)
			}
			if fake.called {
				t.Error("pre-filter match should not reach the classifier")
			}
		})
	}
}

func TestIsOffloadingVerdict(t *testing.T) {
	tests := []struct {
		name    string
		verdict string
		err     error
		want    bool
	}{
		{name: "exact positive token", verdict: "OFFLOADING", want: true},
		{name: "lowercase positive accepted after normalization", verdict: "offloading", want: true},
		{name: "negative token", verdict: "COLLABORATING", want: false},
		{name: "rambling response fails safe", verdict: "I think this is OFFLOADING because...", want: false},
		{name: "empty response fails safe", verdict: "", want: false},
		{name: "classifier error fails safe", err: errors.New("quota exceeded"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeClient{verdict: tt.verdict, err: tt.err}
			got := IsOffloading(context.Background(), fake, "could you look at my thesis statement", false)
			if got != tt.want {
				t.Errorf("IsOffloading() = %v, want %v", got, tt.want)
			}
			if !fake.called {
				t.Error("ambiguous text should reach the classifier")
			}
		})
	}
}

func TestIsOffloadingNilClient(t *testing.T) {
	if IsOffloading(context.Background(), nil, "could you explain recursion", false) {
		t.Error("nil client must fail safe to collaborating")
	}
}
