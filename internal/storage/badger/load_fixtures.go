package badger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/ternarybob/arbor"

	"github.com/seqcentral/metior/internal/interfaces"
	"github.com/seqcentral/metior/internal/models"
)

// fixtureFile is the on-disk shape of a fixtures TOML file. A single file may
// carry records for any mix of source collections.
type fixtureFile struct {
	Tracker      []trackerFixture     `toml:"tracker"`
	ExecTasks    []execTaskFixture    `toml:"exec_tasks"`
	ClientGroups []clientGroupFixture `toml:"client_groups"`
	Narratives   []narrativeFixture   `toml:"narratives"`
}

type trackerFixture struct {
	ID        string     `toml:"id"`
	User      string     `toml:"user"`
	Created   time.Time  `toml:"created"`
	Started   *time.Time `toml:"started"`
	Updated   time.Time  `toml:"updated"`
	Complete  bool       `toml:"complete"`
	Error     bool       `toml:"error"`
	Status    string     `toml:"status"`
	AuthStrat string     `toml:"authstrat"`
	AuthParam string     `toml:"authparam"`
	Desc      string     `toml:"desc"`
}

type execTaskFixture struct {
	JobID    string           `toml:"job_id"`
	Created  time.Time        `toml:"created"`
	JobInput *jobInputFixture `toml:"job_input"`
}

type jobInputFixture struct {
	Method      string                 `toml:"method"`
	AppID       string                 `toml:"app_id"`
	WorkspaceID string                 `toml:"wsid"`
	Params      []jobInputParamFixture `toml:"params"`
}

type jobInputParamFixture struct {
	Workspace     string `toml:"workspace"`
	WorkspaceName string `toml:"workspace_name"`
	WorkspaceID   string `toml:"wsid"`
}

type clientGroupFixture struct {
	AppID        string   `toml:"app_id"`
	ClientGroups []string `toml:"client_groups"`
}

type narrativeFixture struct {
	WorkspaceID string            `toml:"wsid"`
	Name        string            `toml:"name"`
	Deleted     bool              `toml:"deleted"`
	LastSaved   time.Time         `toml:"last_saved"`
	Metadata    map[string]string `toml:"metadata"`
}

// LoadFixturesFromFiles loads source records from TOML files in the specified
// directory. Used to seed development and test environments; production
// deployments sync the source collections out of band.
func LoadFixturesFromFiles(ctx context.Context, storage interfaces.StorageManager, fixturesDir string, logger arbor.ILogger) error {
	// Check if directory exists
	if _, err := os.Stat(fixturesDir); os.IsNotExist(err) {
		logger.Debug().Str("dir", fixturesDir).Msg("Fixtures directory does not exist, skipping")
		return nil
	}

	logger.Info().Str("dir", fixturesDir).Msg("Loading fixtures from files")

	entries, err := os.ReadDir(fixturesDir)
	if err != nil {
		return fmt.Errorf("failed to read fixtures directory: %w", err)
	}

	loadedCount := 0
	for _, entry := range entries {
		// Skip directories and non-TOML files
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".toml" {
			continue
		}

		filePath := filepath.Join(fixturesDir, entry.Name())

		tomlBytes, err := os.ReadFile(filePath)
		if err != nil {
			logger.Warn().Err(err).Str("file", entry.Name()).Msg("Failed to read fixture file")
			continue
		}

		var fixture fixtureFile
		if err := toml.Unmarshal(tomlBytes, &fixture); err != nil {
			logger.Warn().Err(err).Str("file", entry.Name()).Msg("Failed to parse fixture TOML")
			continue
		}

		saved, err := saveFixture(ctx, storage, &fixture)
		if err != nil {
			logger.Warn().Err(err).Str("file", entry.Name()).Msg("Failed to save fixture records")
			continue
		}

		logger.Info().Str("file", entry.Name()).Int("records", saved).Msg("Fixture loaded from file")
		loadedCount++
	}

	if loadedCount > 0 {
		logger.Info().Int("count", loadedCount).Msg("Fixture files loaded")
	} else {
		logger.Debug().Msg("No fixture files loaded")
	}

	return nil
}

func saveFixture(ctx context.Context, storage interfaces.StorageManager, fixture *fixtureFile) (int, error) {
	saved := 0
	for i, f := range fixture.Tracker {
		entry := &models.JobTrackerEntry{
			ID:        models.JobID(f.ID),
			User:      f.User,
			Created:   f.Created,
			Started:   f.Started,
			Updated:   f.Updated,
			Complete:  f.Complete,
			Error:     f.Error,
			Status:    f.Status,
			AuthStrat: f.AuthStrat,
			AuthParam: f.AuthParam,
			Desc:      f.Desc,
		}
		if err := storage.Tracker().Save(ctx, entry); err != nil {
			return saved, fmt.Errorf("tracker record %d: %w", i, err)
		}
		saved++
	}
	for i, f := range fixture.ExecTasks {
		task := &models.ExecutionTaskEntry{
			JobID:   models.JobID(f.JobID),
			Created: f.Created,
		}
		if f.JobInput != nil {
			input := &models.JobInput{
				Method:      f.JobInput.Method,
				AppID:       f.JobInput.AppID,
				WorkspaceID: f.JobInput.WorkspaceID,
			}
			for _, p := range f.JobInput.Params {
				input.Params = append(input.Params, models.JobInputParam{
					Workspace:     p.Workspace,
					WorkspaceName: p.WorkspaceName,
					WorkspaceID:   p.WorkspaceID,
				})
			}
			task.JobInput = input
		}
		if err := storage.ExecTasks().Save(ctx, task); err != nil {
			return saved, fmt.Errorf("exec task record %d: %w", i, err)
		}
		saved++
	}
	for i, f := range fixture.ClientGroups {
		entry := &models.ClientGroupEntry{AppID: f.AppID, ClientGroups: f.ClientGroups}
		if err := storage.Catalog().Save(ctx, entry); err != nil {
			return saved, fmt.Errorf("client group record %d: %w", i, err)
		}
		saved++
	}
	for i, f := range fixture.Narratives {
		entry := &models.NarrativeEntry{
			WorkspaceID: f.WorkspaceID,
			Name:        f.Name,
			Deleted:     f.Deleted,
			LastSaved:   f.LastSaved,
			Metadata:    f.Metadata,
		}
		if err := storage.Narratives().Save(ctx, entry); err != nil {
			return saved, fmt.Errorf("narrative record %d: %w", i, err)
		}
		saved++
	}
	return saved, nil
}
