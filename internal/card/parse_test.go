package card

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func TestParse_Citations(t *testing.T) {
	c := Parse("body_2d_keypoint/vitpose_coco.md", loadFixture(t, "vitpose_coco.md"))

	require.Len(t, c.Citations, 2)

	algo := c.Citations[0]
	assert.Equal(t, RoleAlgorithm, algo.Role)
	assert.Equal(t, "ViTPose", algo.Name)
	assert.Equal(t, "NeurIPS'2022", algo.Venue)
	assert.Equal(t, "https://arxiv.org/abs/2204.12484", algo.URL)
	require.NotNil(t, algo.Bib)
	assert.Equal(t, "inproceedings", algo.Bib.EntryType)
	assert.Equal(t, "xu2022vitpose", algo.Bib.Key)

	title, ok := algo.Bib.Field("title")
	require.True(t, ok)
	assert.Contains(t, title, "Vision Transformer Baselines")

	dataset := c.Citations[1]
	assert.Equal(t, RoleDataset, dataset.Role)
	assert.Equal(t, "COCO", dataset.Name)
	assert.Equal(t, "ECCV'2014", dataset.Venue)
	require.NotNil(t, dataset.Bib)
	assert.Equal(t, "lin2014microsoft", dataset.Bib.Key)
}

func TestParse_BenchmarkTable(t *testing.T) {
	c := Parse("body_2d_keypoint/vitpose_coco.md", loadFixture(t, "vitpose_coco.md"))

	require.Len(t, c.Tables, 1)
	table := c.Tables[0]

	assert.Contains(t, table.Preamble, "Results on COCO val2017")
	assert.Equal(t, []string{"Arch", "Input Size", "AP", "AR", "ckpt", "log"}, table.Columns)
	assert.Equal(t, []string{"AP", "AR"}, table.MetricColumns())
	require.Len(t, table.Rows, 2)

	small := table.Rows[0]
	assert.Equal(t, "ViTPose-S", small.Variant)
	assert.Equal(t, "/configs/body_2d_keypoint/topdown_heatmap/coco/td-hm_vitpose-small_8xb64-210e_coco-256x192.py", small.ConfigPath)
	assert.Equal(t, "256x192", small.InputSize)
	assert.Equal(t, "https://download.example.org/vitpose/vitpose-s_coco-256x192.pth", small.Ckpt)
	assert.Equal(t, "https://download.example.org/vitpose/vitpose-s_coco-256x192.log.json", small.Log)

	ap := small.Metrics["AP"]
	assert.True(t, ap.Filled)
	assert.True(t, ap.Numeric)
	assert.InDelta(t, 0.739, ap.Value, 1e-9)

	// the base variant is a template row with unfilled metrics
	base := table.Rows[1]
	assert.Equal(t, "ViTPose-B", base.Variant)
	assert.False(t, base.Metrics["AP"].Filled)
	assert.False(t, base.Metrics["AR"].Filled)

	assert.Positive(t, table.Line)
	assert.Greater(t, base.Line, small.Line)
}

func TestParse_IsModelCard(t *testing.T) {
	c := Parse("vitpose_coco.md", loadFixture(t, "vitpose_coco.md"))
	assert.True(t, c.IsModelCard())

	plain := Parse("README.md", []byte("# Installation\n\nRun `pip install .`\n"))
	assert.False(t, plain.IsModelCard())
}

func TestParse_MalformedBib(t *testing.T) {
	src := "<!-- [ALGORITHM] -->\n\n" +
		"<details>\n<summary align=\"right\"><a href=\"https://example.org\">Broken (X'2020)</a></summary>\n\n" +
		"```bibtex\n@inproceedings{broken2020,\n  title = {unterminated\n```\n\n</details>\n"

	c := Parse("broken.md", []byte(src))

	require.Len(t, c.Citations, 1)
	assert.Nil(t, c.Citations[0].Bib)
	assert.NotEmpty(t, c.Citations[0].BibErr)
}

func TestParse_SummaryWithoutLink(t *testing.T) {
	src := "<!-- [OTHERS] -->\n\n" +
		"<details>\n<summary align=\"right\">Albumentations (Information'2020)</summary>\n\n" +
		"```bibtex\n@article{buslaev2020albumentations,\n  title = {Albumentations},\n  year = {2020}\n}\n```\n\n</details>\n"

	c := Parse("aug.md", []byte(src))

	require.Len(t, c.Citations, 1)
	cit := c.Citations[0]
	assert.Equal(t, RoleOthers, cit.Role)
	assert.Equal(t, "Albumentations", cit.Name)
	assert.Equal(t, "Information'2020", cit.Venue)
	assert.Empty(t, cit.URL)
	require.NotNil(t, cit.Bib)
	assert.Equal(t, "buslaev2020albumentations", cit.Bib.Key)
}

func TestIsMetricColumn(t *testing.T) {
	tests := []struct {
		name string
		col  string
		want bool
	}{
		{"ap", "AP", true},
		{"ap50", "AP50", true},
		{"ar", "AR", true},
		{"pckh", "PCKh@0.5", true},
		{"nme", "NME", true},
		{"arch is not a metric", "Arch", false},
		{"model", "Model", false},
		{"ckpt", "ckpt", false},
		{"input size", "Input Size", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMetricColumn(tt.col))
		})
	}
}
