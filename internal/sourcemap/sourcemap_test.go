package sourcemap

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/fgoll/source-code-plan/internal/test"
	"github.com/stretchr/testify/require"
)

func TestVLQ(t *testing.T) {
	test.AssertEqual(t, string(encodeVLQ(nil, 0)), "A")
	test.AssertEqual(t, string(encodeVLQ(nil, 1)), "C")
	test.AssertEqual(t, string(encodeVLQ(nil, -1)), "D")
	test.AssertEqual(t, string(encodeVLQ(nil, 15)), "e")
	test.AssertEqual(t, string(encodeVLQ(nil, 16)), "gB")
	test.AssertEqual(t, string(encodeVLQ(nil, -16)), "hB")
	test.AssertEqual(t, string(encodeVLQ(nil, 123)), "2H")
	test.AssertEqual(t, string(encodeVLQ([]byte("A"), 1)), "AC")
}

func TestEncodeMappings(t *testing.T) {
	sm := SourceMap{
		Sources: []string{"a.js", "b.js"},
		Mappings: []Mapping{
			{GeneratedLine: 0, GeneratedColumn: 0, SourceIndex: 0, OriginalLine: 0, OriginalColumn: 0},
			{GeneratedLine: 0, GeneratedColumn: 4, SourceIndex: 0, OriginalLine: 0, OriginalColumn: 4},
			{GeneratedLine: 2, GeneratedColumn: 0, SourceIndex: 1, OriginalLine: 3, OriginalColumn: 0},
		},
	}
	test.AssertEqual(t, sm.EncodeMappings(), "AAAA,IAAI;;ACGJ")
}

func TestFind(t *testing.T) {
	sm := SourceMap{
		Mappings: []Mapping{
			{GeneratedLine: 0, GeneratedColumn: 0, OriginalLine: 5},
			{GeneratedLine: 0, GeneratedColumn: 10, OriginalLine: 6},
			{GeneratedLine: 2, GeneratedColumn: 2, OriginalLine: 7},
		},
	}

	require.Equal(t, int32(5), sm.Find(0, 3).OriginalLine)
	require.Equal(t, int32(6), sm.Find(0, 10).OriginalLine)
	require.Nil(t, sm.Find(1, 0))
	require.Nil(t, sm.Find(2, 1))
	require.Equal(t, int32(7), sm.Find(2, 8).OriginalLine)
}

func TestAdvanceString(t *testing.T) {
	offset := LineColumnOffset{}
	offset.AdvanceString("ab\ncd")
	test.AssertEqual(t, offset, LineColumnOffset{Lines: 1, Columns: 2})

	offset.AdvanceString("\r\n😀")
	test.AssertEqual(t, offset, LineColumnOffset{Lines: 2, Columns: 2})
}

func TestStringAndURL(t *testing.T) {
	sm := SourceMap{
		File:           "bundle.js",
		Sources:        []string{"src/main.js"},
		SourcesContent: []string{"console.log(\"hi\");\n"},
		Mappings:       []Mapping{{}},
	}
	expected := `{"version":3,"file":"bundle.js","sources":["src/main.js"],` +
		`"sourcesContent":["console.log(\"hi\");\n"],"names":[],"mappings":"AAAA"}`
	test.AssertEqualWithDiff(t, sm.String(), expected)

	url := sm.ToURL()
	const prefix = "data:application/json;charset=utf-8;base64,"
	require.True(t, strings.HasPrefix(url, prefix))
	decoded, err := base64.StdEncoding.DecodeString(url[len(prefix):])
	require.NoError(t, err)
	require.Equal(t, expected, string(decoded))
}
