package ideas

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ideas.csv"), []byte(content), 0o644))
	return dir
}

func TestLoadHeaderIndexed(t *testing.T) {
	dir := writeCSV(t, "source,title,body,image_url\n"+
		"reddit.com,A Title,"+strings.Repeat("word ", 20)+",http://img\n")

	all, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "A Title", all[0].Title)
	assert.Equal(t, "http://img", all[0].ImageURL)
	assert.Equal(t, "reddit.com", all[0].Source)
}

func TestLoadBOMHeader(t *testing.T) {
	dir := writeCSV(t, "\ufefftitle,body\nT,"+strings.Repeat("b ", 20)+"\n")

	all, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "T", all[0].Title)
}

func TestLoadMissingColumnsYieldEmpty(t *testing.T) {
	dir := writeCSV(t, "title\nOnly a title\n")

	all, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Empty(t, all[0].ImageURL)
	assert.Empty(t, all[0].Source)
	// Body fell back to the title.
	assert.Contains(t, all[0].Body, "Only a title")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestNormalizeBodyTruncatesLong(t *testing.T) {
	long := strings.Repeat("w ", 80)
	got := normalizeBody("T", long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Len(t, strings.Fields(got), maxBodyWords)
}

func TestNormalizeBodyPadsShort(t *testing.T) {
	got := normalizeBody("The Title", "tiny body")
	assert.Equal(t, "The Title. tiny body", got)
}

func TestNormalizeBodyMidLengthUntouched(t *testing.T) {
	body := strings.TrimSpace(strings.Repeat("w ", 20))
	assert.Equal(t, body, normalizeBody("T", body))
}

func TestNextAndCursor(t *testing.T) {
	all := []Idea{{Title: "1"}, {Title: "2"}, {Title: "3"}}

	batch, next := Next(all, 0, 2)
	require.Len(t, batch, 2)
	assert.Equal(t, "1", batch[0].Title)
	assert.Equal(t, 2, next)

	batch, next = Next(all, next, 2)
	require.Len(t, batch, 1)
	assert.Equal(t, "3", batch[0].Title)
	assert.Equal(t, 3, next)

	batch, next = Next(all, next, 2)
	assert.Empty(t, batch)
	assert.Equal(t, 3, next)
}

func TestCursorRoundTrip(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, 0, ReadCursor(dir))
	require.NoError(t, WriteCursor(dir, 7))
	assert.Equal(t, 7, ReadCursor(dir))
}

func TestCursorMalformedReadsZero(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ideas.cursor"), []byte("junk"), 0o644))
	assert.Equal(t, 0, ReadCursor(dir))
}
