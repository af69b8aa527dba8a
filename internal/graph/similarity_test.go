package graph

import (
	"math"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"UserService", []string{"user", "service"}},
		{"parseConfig", []string{"parse", "config"}},
		{"UserService.login()", []string{"user", "service", "login"}},
		{"snake_case_name", []string{"snake", "case", "name"}},
		{"", nil},
		{"x", nil}, // single characters carry no signal
		{"HTTPServer", []string{"httpserver"}},
	}

	for _, tt := range tests {
		got := Tokenize(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("Tokenize(%q) = %v, want tokens %v", tt.input, got, tt.want)
			continue
		}
		for _, w := range tt.want {
			if !got[w] {
				t.Errorf("Tokenize(%q) missing token %q", tt.input, w)
			}
		}
	}
}

func TestSimilarity(t *testing.T) {
	base := &Node{
		Type:     NodeFunction,
		Name:     "loginUser",
		Location: Location{File: "src/auth.ts"},
		Context:  "validates credentials",
	}

	tests := []struct {
		name  string
		other *Node
		want  float64
	}{
		{
			name: "identical signals",
			other: &Node{
				Type:     NodeFunction,
				Name:     "loginUser",
				Location: Location{File: "src/auth.ts"},
				Context:  "validates credentials",
			},
			// same file 0.3 + same type 0.2 + name 0.3 + context 0.2
			want: 1.0,
		},
		{
			name: "same file and type only",
			other: &Node{
				Type:     NodeFunction,
				Name:     "xy",
				Location: Location{File: "src/auth.ts"},
			},
			want: 0.5,
		},
		{
			name: "partial name overlap",
			other: &Node{
				Type: NodeClass,
				Name: "UserRepository",
			},
			// name tokens {login,user} vs {user,repository}: 1/2 shared
			want: 0.15,
		},
		{
			name:  "nothing shared",
			other: &Node{Type: NodeImport, Name: "zlib"},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(base, tt.other)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSimilarityNil(t *testing.T) {
	if got := Similarity(nil, &Node{}); got != 0 {
		t.Errorf("Similarity(nil, node) = %v, want 0", got)
	}
}

func TestTokensMatch(t *testing.T) {
	if !TokensMatch("UserRepository", "understand how UserService.login works") {
		t.Error("TokensMatch() = false, want true for shared token 'user'")
	}
	if TokensMatch("zlib", "understand how UserService.login works") {
		t.Error("TokensMatch() = true, want false for disjoint tokens")
	}
}
