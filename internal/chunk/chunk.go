package chunk

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"forumgraph/internal/model"
	"forumgraph/pkg/errors"
	"forumgraph/pkg/logger"
)

// Split partitions items into batches of at most size elements, preserving
// order. A non-positive size yields a single batch.
func Split[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 {
		return [][]T{items}
	}
	batches := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}

// SortedValues returns map values ordered by key, so chunking and loading
// are deterministic across runs.
func SortedValues[T any](m map[int64]*T) []*T {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]*T, 0, len(m))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

// Writer persists a dataset as numbered JSON chunk files plus site and
// stats descriptors. This is a checkpoint between extraction and loading,
// not a public format.
type Writer struct {
	dir    string
	logger *zap.Logger
}

// NewWriter creates the checkpoint directory if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.NewCheckpointWriteFailed(dir, err)
	}
	return &Writer{dir: dir, logger: logger.Get()}, nil
}

// WriteDataset dumps every entity collection in chunks of size records.
// Chunk counts are recorded into the dataset's stats, which are written
// last so a complete stats file implies a complete checkpoint.
func (w *Writer) WriteDataset(ds *model.Dataset, size int) error {
	platform := ds.Site.Name

	if err := w.writeJSON(fmt.Sprintf("%s_site.json", platform), ds.Site); err != nil {
		return err
	}

	counts := make(map[string]int)

	var err error
	if counts["users"], err = writeEntity(w, platform, "users", chunkPayload(SortedValues(ds.Users)), size); err != nil {
		return err
	}
	if counts["groups"], err = writeEntity(w, platform, "groups", chunkPayload(SortedValues(ds.Groups)), size); err != nil {
		return err
	}
	if counts["categories"], err = writeEntity(w, platform, "categories", chunkPayload(SortedValues(ds.Categories)), size); err != nil {
		return err
	}
	if counts["tags"], err = writeEntity(w, platform, "tags", chunkPayload(SortedValues(ds.Tags)), size); err != nil {
		return err
	}
	if counts["topics"], err = writeEntity(w, platform, "topics", chunkPayload(SortedValues(ds.Topics)), size); err != nil {
		return err
	}
	if counts["posts"], err = writeEntity(w, platform, "posts", chunkPayload(SortedValues(ds.Posts)), size); err != nil {
		return err
	}
	if counts["replies"], err = writeEntity(w, platform, "replies", ds.Replies, size); err != nil {
		return err
	}
	if counts["quotes"], err = writeEntity(w, platform, "quotes", ds.Quotes, size); err != nil {
		return err
	}
	if counts["likes"], err = writeEntity(w, platform, "likes", ds.Likes, size); err != nil {
		return err
	}
	if counts["languages"], err = writeEntity(w, platform, "languages", chunkPayload(SortedValues(ds.Languages)), size); err != nil {
		return err
	}
	if counts["codes"], err = writeEntity(w, platform, "codes", chunkPayload(SortedValues(ds.Codes)), size); err != nil {
		return err
	}
	if counts["code_names"], err = writeEntity(w, platform, "code_names", chunkPayload(SortedValues(ds.CodeNames)), size); err != nil {
		return err
	}
	if counts["annotations"], err = writeEntity(w, platform, "annotations", chunkPayload(SortedValues(ds.Annotations)), size); err != nil {
		return err
	}

	ds.Stats.ChunkCounts = counts
	if err := w.writeJSON(fmt.Sprintf("%s_stats.json", platform), ds.Stats); err != nil {
		return err
	}

	w.logger.Info("Checkpoint written",
		zap.String("platform", platform),
		zap.String("dir", w.dir),
	)
	return nil
}

func writeEntity[T any](w *Writer, platform, name string, items []T, size int) (int, error) {
	batches := Split(items, size)
	for i, batch := range batches {
		file := fmt.Sprintf("%s_%s_%d.json", platform, name, i+1)
		if err := w.writeJSON(file, batch); err != nil {
			return 0, err
		}
	}
	return len(batches), nil
}

func (w *Writer) writeJSON(name string, v any) error {
	path := filepath.Join(w.dir, name)
	data, err := json.Marshal(v)
	if err != nil {
		return errors.NewCheckpointWriteFailed(path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.NewCheckpointWriteFailed(path, err)
	}
	return nil
}

// ReadStats loads a platform's stats descriptor back from a checkpoint,
// which is enough to verify the checkpoint is complete.
func ReadStats(dir, platform string) (*model.Stats, error) {
	path := filepath.Join(dir, fmt.Sprintf("%s_stats.json", platform))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var stats model.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("corrupt stats file %s: %w", path, err)
	}
	return &stats, nil
}

// chunkPayload converts a slice of entity pointers into values for
// marshaling.
func chunkPayload[T any](items []*T) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		out = append(out, *it)
	}
	return out
}
