package summary

import (
	"encoding/json"
	"os"
)

// LoadLabelMap reads the session label map, keyed by transcript path.
// Labels are advisory: a missing, unreadable, or corrupt file yields
// an empty map. The file is maintained by other tooling and never
// written here.
func LoadLabelMap(path string) map[string]string {
	if path == "" {
		return map[string]string{}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return map[string]string{}
	}

	var labels map[string]string
	if err := json.Unmarshal(data, &labels); err != nil {
		return map[string]string{}
	}
	if labels == nil {
		labels = map[string]string{}
	}
	return labels
}
