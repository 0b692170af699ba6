package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want Language
	}{
		{
			name: "english question",
			text: "What is menstruation?",
			want: English,
		},
		{
			name: "bangla script",
			text: "মাসিক কী এবং কেন হয়?",
			want: Bangla,
		},
		{
			name: "empty input falls back to english",
			text: "",
			want: English,
		},
		{
			name: "whitespace only falls back to english",
			text: "   \n\t  ",
			want: English,
		},
		{
			name: "numeric only falls back to english",
			text: "1234567890",
			want: English,
		},
		{
			name: "punctuation only falls back to english",
			text: "?!...",
			want: English,
		},
		{
			name: "unsupported language falls back to english",
			text: "¿Qué es la menstruación?",
			want: English,
		},
		{
			name: "mixed text with dominant bangla",
			text: "মাসিকের সময় ব্যথা হলে কী করব?",
			want: Bangla,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestClassify_AlwaysReturnsSupportedLanguage(t *testing.T) {
	t.Parallel()

	// Classification is total: every input maps into the supported set.
	inputs := []string{"", " ", "42", "hello", "মাসিক", "\x00\xff", "🙂🙂🙂"}
	for _, in := range inputs {
		got := Classify(in)
		assert.Contains(t, Supported(), got, "input %q", in)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("valid languages", func(t *testing.T) {
		t.Parallel()

		for _, tc := range []struct {
			in   string
			want Language
		}{
			{"english", English},
			{"bangla", Bangla},
			{"English", English},
			{"BANGLA", Bangla},
			{"  bangla  ", Bangla},
		} {
			got, err := Parse(tc.in)
			require.NoError(t, err, "input %q", tc.in)
			assert.Equal(t, tc.want, got)
		}
	})

	t.Run("unsupported language", func(t *testing.T) {
		t.Parallel()

		for _, in := range []string{"", "french", "bn", "en", "bengali"} {
			_, err := Parse(in)
			require.Error(t, err, "input %q", in)
			assert.ErrorIs(t, err, ErrUnsupported)
		}
	})
}
