package ideas

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	csvName    = "ideas.csv"
	cursorName = "ideas.cursor"

	maxBodyWords = 50
	minBodyWords = 15
)

// Load parses the channel's ideas.csv under channelDir. Columns are resolved
// by header name (title, body, image_url, source); unknown columns are
// ignored and missing ones yield empty fields.
func Load(channelDir string) ([]Idea, error) {
	path := filepath.Join(channelDir, csvName)
	fp, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("no ideas CSV for channel: %w", err)
	}
	defer fp.Close()

	r := csv.NewReader(fp)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("csv %s has no header", path)
	}

	header := rows[0]
	cols := map[string]int{}
	for i, h := range header {
		// Excel exports often prefix the first header cell with a BOM.
		cols[strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")] = i
	}
	get := func(row []string, name string) string {
		if idx, ok := cols[name]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	out := make([]Idea, 0, len(rows)-1)
	for _, row := range rows[1:] {
		idea := Idea{
			Title:    get(row, "title"),
			Body:     get(row, "body"),
			ImageURL: get(row, "image_url"),
			Source:   get(row, "source"),
		}
		idea.Body = normalizeBody(idea.Title, idea.Body)
		out = append(out, idea)
	}
	return out, nil
}

// normalizeBody applies the same shaping the scraper paths use: fall back to
// the title, cap overly long bodies, pad very short ones with the title.
func normalizeBody(title, body string) string {
	if body == "" {
		body = title
	}
	words := strings.Fields(body)
	if len(words) > maxBodyWords {
		return strings.Join(words[:maxBodyWords], " ") + "..."
	}
	if len(words) < minBodyWords && body != title && title != "" {
		return title + ". " + body
	}
	return body
}

// Next returns up to n un-consumed ideas starting at the channel's cursor,
// plus the new cursor value. The caller decides when to commit the cursor.
func Next(all []Idea, cursor, n int) ([]Idea, int) {
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= len(all) {
		return nil, cursor
	}
	end := cursor + n
	if end > len(all) {
		end = len(all)
	}
	return all[cursor:end], end
}

// ReadCursor loads the channel's consumed-row index; absent or malformed
// cursor files read as zero.
func ReadCursor(channelDir string) int {
	data, err := os.ReadFile(filepath.Join(channelDir, cursorName))
	if err != nil {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// WriteCursor persists the consumed-row index next to the CSV.
func WriteCursor(channelDir string, cursor int) error {
	return os.WriteFile(filepath.Join(channelDir, cursorName), []byte(strconv.Itoa(cursor)), 0o644)
}
