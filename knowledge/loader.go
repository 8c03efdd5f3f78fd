package knowledge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	apperrors "techsupport-agent/errors"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// rawCategory mirrors the on-disk shape. Pointer fields let the decoder tell
// a missing key apart from an empty one.
type rawCategory struct {
	Category  *string           `json:"category"`
	Questions *[]json.RawMessage `json:"questions"`
}

type rawPair struct {
	Question *string `json:"question"`
	Answer   *string `json:"answer"`
}

// LoadFile reads a knowledge base from a .json, .yaml or .yml file.
func LoadFile(path string, logger *zap.Logger) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.WrapErrorf(apperrors.Join(apperrors.ErrKnowledgeBase, err), "read %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yamlToJSON(data)
		if err != nil {
			return nil, apperrors.WrapErrorf(err, "decode %s", path)
		}
	}

	base, err := Decode(bytes.NewReader(data), logger)
	if err != nil {
		return nil, apperrors.WrapErrorf(err, "decode %s", path)
	}

	if logger != nil {
		stats := base.Stats()
		logger.Info("Loaded knowledge base",
			zap.String("path", path),
			zap.Int("categories", stats.Categories),
			zap.Int("questions", stats.Questions))
	}
	return base, nil
}

// Decode parses the JSON knowledge base format: an array of
// {"category", "questions": [{"question", "answer"}]}. Categories without a
// question list and pairs without a question are skipped.
func Decode(r io.Reader, logger *zap.Logger) (*Base, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var items []json.RawMessage
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, apperrors.Join(apperrors.ErrKnowledgeBase, err)
	}

	categories := make([]Category, 0, len(items))
	skippedCategories, skippedPairs := 0, 0
	for i, item := range items {
		var rc rawCategory
		if err := json.Unmarshal(item, &rc); err != nil || rc.Questions == nil {
			skippedCategories++
			logger.Debug("Skipping malformed category", zap.Int("index", i))
			continue
		}

		label := ""
		if rc.Category != nil {
			label = *rc.Category
		}

		entries := make([]Entry, 0, len(*rc.Questions))
		for j, rawQA := range *rc.Questions {
			var qa rawPair
			if err := json.Unmarshal(rawQA, &qa); err != nil || qa.Question == nil {
				skippedPairs++
				logger.Debug("Skipping malformed question",
					zap.String("category", label),
					zap.Int("index", j))
				continue
			}
			entry := Entry{Question: *qa.Question}
			if qa.Answer != nil {
				entry.Answer = *qa.Answer
			}
			entries = append(entries, entry)
		}
		categories = append(categories, Category{Label: label, Entries: entries})
	}

	if skippedCategories > 0 || skippedPairs > 0 {
		logger.Warn("Knowledge base contained malformed records",
			zap.Int("skipped_categories", skippedCategories),
			zap.Int("skipped_questions", skippedPairs))
	}

	return NewBase(categories), nil
}

// yamlToJSON re-encodes a YAML document as JSON so both formats share the
// same lenient decoder.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.Join(apperrors.ErrKnowledgeBase, err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, apperrors.Join(apperrors.ErrKnowledgeBase, fmt.Errorf("yaml document is not JSON compatible: %w", err))
	}
	return out, nil
}
