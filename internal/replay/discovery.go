// Package replay turns recorded steering sessions into shareable clips.
// It pairs the recorder's chunked video and telemetry files, paints a
// telemetry overlay onto every frame through an external renderer, and
// stitches the result into H.264 video plus a keyboard event log.
package replay

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

// recordingPattern matches the recorder's chunked output files, e.g.
// road_1700000000_chunk3.webm or telemetry_1700000000_chunk3.json.
var recordingPattern = regexp.MustCompile(`^(road|wide|telemetry)_(\d+)_chunk(\d+)\.(webm|json)$`)

// Chunk is one recorded segment. RoadVideo and Telemetry are always set;
// WideVideo is optional and empty when the wide camera was not recorded.
type Chunk struct {
	Timestamp int64
	Index     int
	RoadVideo string
	WideVideo string
	Telemetry string
}

// Session groups the chunks recorded under one start timestamp.
type Session struct {
	Timestamp int64
	Chunks    []Chunk
}

// DiscoverSessions scans dir for recording files and pairs them by
// timestamp and chunk index. Chunks missing either the road video or the
// telemetry file are incomplete and dropped. Sessions come back newest
// first with chunks in index order.
func DiscoverSessions(dir string) ([]Session, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("replay: scan %s: %w", dir, err)
	}

	type chunkKey struct {
		timestamp int64
		index     int
	}
	groups := make(map[chunkKey]map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := recordingPattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		timestamp, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			continue
		}
		index, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		key := chunkKey{timestamp: timestamp, index: index}
		if groups[key] == nil {
			groups[key] = make(map[string]string)
		}
		groups[key][m[1]] = filepath.Join(dir, entry.Name())
	}

	bySession := make(map[int64][]Chunk)
	for key, files := range groups {
		road, haveRoad := files["road"]
		telemetry, haveTelemetry := files["telemetry"]
		if !haveRoad || !haveTelemetry {
			continue
		}
		bySession[key.timestamp] = append(bySession[key.timestamp], Chunk{
			Timestamp: key.timestamp,
			Index:     key.index,
			RoadVideo: road,
			WideVideo: files["wide"],
			Telemetry: telemetry,
		})
	}

	sessions := make([]Session, 0, len(bySession))
	for timestamp, chunks := range bySession {
		sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
		sessions = append(sessions, Session{Timestamp: timestamp, Chunks: chunks})
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Timestamp > sessions[j].Timestamp })
	return sessions, nil
}
