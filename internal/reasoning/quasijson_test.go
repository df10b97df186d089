package reasoning

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssignments(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []Assignment
	}{
		{
			name: "canonical",
			src:  "imgtext_1=[\"a\"]\nimgtext_2=[\"b\"]",
			want: []Assignment{{"imgtext_1", []string{"a"}}, {"imgtext_2", []string{"b"}}},
		},
		{
			name: "brackets and commas inside strings",
			src:  `imgtext_1=["x [1], y", "]"] imgtext_2=[]`,
			want: []Assignment{{"imgtext_1", []string{"x [1], y", "]"}}, {"imgtext_2", []string{}}},
		},
		{
			name: "single quotes",
			src:  `imgtext_1=['it\'s', 'say "hi"']`,
			want: []Assignment{{"imgtext_1", []string{"it's", `say "hi"`}}},
		},
		{
			name: "trailing commas and semicolons",
			src:  `imgtext_1 = ["a", "b",]; imgtext_2 = ["c"];`,
			want: []Assignment{{"imgtext_1", []string{"a", "b"}}, {"imgtext_2", []string{"c"}}},
		},
		{
			name: "braced object with quoted keys",
			src:  `{"imgtext_1": ["a"], "imgtext_2": ["b"]}`,
			want: []Assignment{{"imgtext_1", []string{"a"}}, {"imgtext_2", []string{"b"}}},
		},
		{
			name: "code fence",
			src:  "```python\nimgtext_1=[\"a\"]\nimgtext_2=[]\n```",
			want: []Assignment{{"imgtext_1", []string{"a"}}, {"imgtext_2", []string{}}},
		},
		{
			name: "numbers and null",
			src:  `imgtext_1=[123, null, -4.5, "x"]`,
			want: []Assignment{{"imgtext_1", []string{"123", "-4.5", "x"}}},
		},
		{
			name: "unicode escapes",
			src:  `imgtext_1=["\u5408\u8ba1", "\ud83d\ude00"]`,
			want: []Assignment{{"imgtext_1", []string{"合计", "😀"}}},
		},
		{
			name: "multiline arrays",
			src:  "imgtext_1=[\n  \"a\",\n  \"b\"\n]\nimgtext_2=[\n]",
			want: []Assignment{{"imgtext_1", []string{"a", "b"}}, {"imgtext_2", []string{}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAssignments(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAssignments_Errors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		offset int
	}{
		{"empty", "", 0},
		{"missing equals", `imgtext_1 ["a"]`, 10},
		{"missing bracket", `imgtext_1="a"`, 10},
		{"unterminated string", `imgtext_1=["abc`, 11},
		{"unterminated array", `imgtext_1=["a"`, 14},
		{"bad element", `imgtext_1=[a]`, 11},
		{"bad escape", `imgtext_1=["\q"]`, 12},
		{"unclosed brace", `{imgtext_1=[]`, 13},
		{"garbage after brace", `{imgtext_1=[]} x`, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAssignments(tt.src)
			require.Error(t, err)

			var se *SyntaxError
			require.True(t, errors.As(err, &se), "want *SyntaxError, got %T", err)
			assert.Equal(t, tt.offset, se.Offset)
		})
	}
}
