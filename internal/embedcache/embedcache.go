package embedcache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// The cache layers wrap an ai.IEmbedder: an in-process expirable LRU for the
// hot path and a durable table for restarts. Both key on the model name, the
// task type and a content hash, so a model switch never serves stale vectors.

func buildCacheKey(modelName, taskType, text string) (string, string, string) {
	modelName = strings.TrimSpace(modelName)
	if modelName == "" {
		modelName = "unknown"
	}
	hash := sha256.Sum256([]byte(text))
	contentHash := hex.EncodeToString(hash[:])
	return "embed:" + modelName + ":" + taskType + ":" + contentHash, contentHash, modelName
}

func cloneEmbedding(values []float32) []float32 {
	if len(values) == 0 {
		return nil
	}
	clone := make([]float32, len(values))
	copy(clone, values)
	return clone
}
