package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"github.com/jask/projdesk/internal/database/repository"
)

const teamFile = "team.json"

func teamPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "projdesk")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, teamFile), nil
}

// SaveTeam snapshots the roster so it outlives a database reset.
func SaveTeam(members []repository.Member) error {
	path, err := teamPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(members, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadTeam reads the roster snapshot. The file may carry comments and
// trailing commas. A missing file is not an error.
func LoadTeam() ([]repository.Member, error) {
	path, err := teamPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var members []repository.Member
	if err := json.Unmarshal(jsonc.ToJSON(data), &members); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return members, nil
}
