package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBib_Entry(t *testing.T) {
	entry, err := ParseBib(`@InProceedings{sun2019deep,
  title = {Deep High-Resolution Representation Learning for Human Pose Estimation},
  author = {Sun, Ke and Xiao, Bin and Liu, Dong and Wang, Jingdong},
  booktitle = {CVPR},
  year = {2019}
}`)
	require.NoError(t, err)

	assert.Equal(t, "inproceedings", entry.EntryType)
	assert.Equal(t, "sun2019deep", entry.Key)
	require.Len(t, entry.Fields, 4)

	year, ok := entry.Field("year")
	require.True(t, ok)
	assert.Equal(t, "2019", year)

	_, ok = entry.Field("journal")
	assert.False(t, ok)
}

func TestParseBib_ValueForms(t *testing.T) {
	entry, err := ParseBib(`@article{key1,
  title = "A Quoted Title",
  volume = 12,
  note = {nested {braces} survive},
}`)
	require.NoError(t, err)

	title, _ := entry.Field("title")
	assert.Equal(t, "A Quoted Title", title)

	volume, _ := entry.Field("volume")
	assert.Equal(t, "12", volume)

	note, _ := entry.Field("note")
	assert.Equal(t, "nested {braces} survive", note)
}

func TestParseBib_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"no at sign", "inproceedings{key}"},
		{"missing type", "@{key}"},
		{"missing brace", "@article key,"},
		{"unbalanced braces", "@article{key, title = {oops"},
		{"unterminated quote", `@article{key, title = "oops`},
		{"missing value", "@article{key, title = ,}"},
		{"unterminated entry", "@article{key, title = {x}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBib(tt.src)
			assert.Error(t, err)
		})
	}
}

func TestParseBib_TrailingComma(t *testing.T) {
	entry, err := ParseBib("@misc{key2, year = {2024}, }")
	require.NoError(t, err)
	assert.Equal(t, "key2", entry.Key)
	require.Len(t, entry.Fields, 1)
}

func TestParseBib_EmptyKey(t *testing.T) {
	entry, err := ParseBib("@misc{, year = {2024}}")
	require.NoError(t, err)
	assert.Empty(t, entry.Key)
}
