package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kontur-labs/ticketsearch/internal/db"
	"github.com/kontur-labs/ticketsearch/internal/domain/search/filter"
)

const vectorScoreField = "__vector_score"

// SearchKNN runs a KNN vector similarity search via FT.SEARCH. Entry scores
// are raw distances in the index's distance metric (smaller is closer).
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	filterStr := buildFilter(q.ProjectID, q.Filters)

	knnPart := fmt.Sprintf("[KNN %d @vector $BLOB]", q.K)
	var queryStr string
	if filterStr != "" {
		queryStr = fmt.Sprintf("(%s)=>%s", filterStr, knnPart)
	} else {
		queryStr = fmt.Sprintf("*=>%s", knnPart)
	}

	args := []string{
		q.IndexName, queryStr,
		"RETURN", "2", "$", vectorScoreField,
		"SORTBY", vectorScoreField,
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", vectorToBytes(q.Vector),
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseResult(raw, false)
}

// SearchText runs a BM25 full-text search via FT.SEARCH over the combined
// search text field.
func (s *Store) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if q.TopK <= 0 {
		return nil, fmt.Errorf("topK must be positive")
	}

	filterStr := buildFilter(q.ProjectID, q.Filters)

	textPart := fmt.Sprintf("@search:(%s)", escapeQuery(q.Query))
	queryStr := textPart
	if filterStr != "" {
		queryStr = fmt.Sprintf("%s %s", filterStr, textPart)
	}

	args := []string{
		q.IndexName, queryStr,
		"RETURN", "1", "$",
		"WITHSCORES",
		"LIMIT", "0", strconv.Itoa(q.TopK),
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseResult(raw, true)
}

// buildFilter renders the project scope and exact-match conditions as
// AND-combined TAG clauses.
func buildFilter(projectID string, f filter.Filters) string {
	var sb strings.Builder
	if projectID != "" {
		sb.WriteString(fmt.Sprintf("@project_id:{%s}", escapeTag(projectID)))
	}
	for _, c := range f.Conditions() {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(fmt.Sprintf("@%s:{%s}", c.Key(), escapeTag(c.Value())))
	}
	return sb.String()
}

// parseResult decodes the RESP2 FT.SEARCH reply layout:
// [total, key, (score,)? fields, key, (score,)? fields, ...].
func parseResult(raw []rueidis.RedisMessage, withScores bool) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("empty reply")}
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("parse total: %w", err)}
	}

	res := &db.SearchResult{Total: int(total)}

	step := 2
	if withScores {
		step = 3
	}

	for i := 1; i+step-1 < len(raw); i += step {
		key, err := raw[i].ToString()
		if err != nil {
			return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("parse key: %w", err)}
		}

		entry := db.SearchEntry{Key: key}

		pos := i + 1
		if withScores {
			scoreStr, err := raw[pos].ToString()
			if err != nil {
				return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("parse score: %w", err)}
			}
			entry.Score, _ = strconv.ParseFloat(scoreStr, 64)
			pos++
		}

		fields, err := raw[pos].AsStrSlice()
		if err != nil {
			return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("parse fields: %w", err)}
		}
		for j := 0; j+1 < len(fields); j += 2 {
			switch fields[j] {
			case "$":
				entry.Doc = []byte(fields[j+1])
			case vectorScoreField:
				entry.Score, _ = strconv.ParseFloat(fields[j+1], 64)
			}
		}

		res.Entries = append(res.Entries, entry)
	}

	return res, nil
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float,
// little-endian) for the KNN PARAMS blob.
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// tagSpecials are characters with query syntax meaning inside TAG clauses.
const tagSpecials = `,.<>{}[]"':;!@#$%^&*()-+=~| /\`

// escapeTag backslash-escapes TAG syntax characters in an exact-match value.
func escapeTag(v string) string {
	var sb strings.Builder
	for _, r := range v {
		if strings.ContainsRune(tagSpecials, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// escapeQuery strips full-text query syntax from user input, keeping the
// terms. Punctuation becomes whitespace so tokenization still matches.
func escapeQuery(q string) string {
	var sb strings.Builder
	for _, r := range q {
		switch r {
		case '@', '{', '}', '[', ']', '(', ')', '"', '\'', '~', '*', '%',
			'-', '|', '=', '>', '<', '!', ':', ';', '$', '\\':
			sb.WriteByte(' ')
		default:
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(sb.String())
}
