package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContentDisposition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{
			name:     "plain ascii",
			filename: "Q1 Report.pdf",
			want:     `attachment; filename="Q1 Report.pdf"`,
		},
		{
			name:     "empty falls back to default",
			filename: "",
			want:     `attachment; filename="download"`,
		},
		{
			name:     "whitespace only falls back to default",
			filename: "   ",
			want:     `attachment; filename="download"`,
		},
		{
			name:     "separators flattened",
			filename: `a/b\c.txt`,
			want:     `attachment; filename="a_b_c.txt"`,
		},
		{
			name:     "control characters dropped",
			filename: "line\nbreak\t.txt",
			want:     `attachment; filename="linebreak.txt"`,
		},
		{
			name:     "diacritics",
			filename: "résumé.pdf",
			want:     `attachment; filename="resume.pdf"; filename*=UTF-8''r%C3%A9sum%C3%A9.pdf`,
		},
		{
			name:     "non latin",
			filename: "报告.pdf",
			want:     `attachment; filename="__.pdf"; filename*=UTF-8''%E6%8A%A5%E5%91%8A.pdf`,
		},
		{
			name:     "quotes escaped",
			filename: `say "hi".txt`,
			want:     `attachment; filename="say \"hi\".txt"; filename*=UTF-8''say%20%22hi%22.txt`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, ContentDisposition(tt.filename))
		})
	}
}

func TestFilenameFromKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want string
	}{
		{key: "reports/2024/q1.pdf", want: "q1.pdf"},
		{key: "q1.pdf", want: "q1.pdf"},
		{key: "reports/", want: "reports"},
		{key: "", want: ""},
		{key: "/", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, FilenameFromKey(tt.key))
		})
	}
}

func TestEncodeRFC5987(t *testing.T) {
	t.Parallel()

	require.Equal(t, "a-b_c.d~e", encodeRFC5987("a-b_c.d~e"))
	require.Equal(t, "%20%25%27%28%29%2A", encodeRFC5987(" %'()*"))
	require.Equal(t, "%C3%BC", encodeRFC5987("ü"))
}
