package personalization

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"flownarrator/internal/logger"

	"github.com/bytedance/sonic"
)

// Archive persists personalization snapshots as JSON files, one per
// user, for hosts without an external profile store. The engine itself
// only requires the in-memory Tracker; this is the simple durable
// option.
type Archive struct {
	baseDir string
}

func NewArchive(baseDir string) *Archive {
	return &Archive{baseDir: baseDir}
}

func (a *Archive) path(userID string) string {
	return filepath.Join(a.baseDir, fmt.Sprintf("%s.json", userID))
}

// Load reads the stored snapshot for a user; a missing file yields an
// empty record.
func (a *Archive) Load(userID string) (*Data, error) {
	filePath := a.path(userID)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return newData(userID), nil
	}

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read personalization file: %v", err)
	}

	var data Data
	if err := sonic.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse personalization file: %v", err)
	}
	return &data, nil
}

// Save writes the user's snapshot, creating the directory on demand.
func (a *Archive) Save(data *Data) error {
	if err := os.MkdirAll(a.baseDir, 0755); err != nil {
		return fmt.Errorf("failed to create personalization directory: %v", err)
	}

	raw, err := sonic.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal personalization data: %v", err)
	}

	if err := os.WriteFile(a.path(data.UserID), raw, 0644); err != nil {
		return fmt.Errorf("failed to write personalization file: %v", err)
	}

	logger.Debug().
		Str("user_id", data.UserID).
		Int("messages", data.Stats.MessageCount).
		Msg("personalization snapshot saved")
	return nil
}

// CleanupOldAdaptations drops adaptation-history entries older than
// maxAge from the stored snapshot.
func (a *Archive) CleanupOldAdaptations(userID string, maxAge time.Duration) error {
	data, err := a.Load(userID)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-maxAge)
	kept := data.Adaptations[:0]
	for _, adaptation := range data.Adaptations {
		if adaptation.At.After(cutoff) {
			kept = append(kept, adaptation)
		}
	}
	if len(kept) == len(data.Adaptations) {
		return nil
	}
	data.Adaptations = kept
	return a.Save(data)
}
