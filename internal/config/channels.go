package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	yaml "go.yaml.in/yaml/v3"
)

// Channel is one destination from the channels file: a chat id paired with
// the prompt used to generate its content.
type Channel struct {
	ID     int64
	Prompt string
}

// LoadChannels reads a YAML mapping of chat id to prompt:
//
//	"-1001234567890": "Write a short post about Go."
//	"-1009876543210": "Write today's productivity tip."
//
// Document order is preserved; it is the order channels are processed in.
// Duplicate ids are legal and simply produce two deliveries.
func LoadChannels(path string) ([]Channel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading channels file: %w", err)
	}
	chs, err := ParseChannels(data)
	if err != nil {
		return nil, fmt.Errorf("channels file %s: %w", path, err)
	}
	return chs, nil
}

// ParseChannels decodes the mapping via yaml.Node rather than a map so the
// document order of the keys survives.
func ParseChannels(data []byte) ([]Channel, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if len(doc.Content) == 0 {
		// Empty file: a legal, if pointless, run of zero channels.
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("must be a mapping of chat id to prompt")
	}

	out := make([]Channel, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]

		id, err := strconv.ParseInt(strings.TrimSpace(k.Value), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: chat id %q is not an integer", k.Line, k.Value)
		}
		if v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: prompt for chat %d must be a string", v.Line, id)
		}
		if strings.TrimSpace(v.Value) == "" {
			return nil, fmt.Errorf("line %d: prompt for chat %d is empty", v.Line, id)
		}

		out = append(out, Channel{ID: id, Prompt: v.Value})
	}
	return out, nil
}
