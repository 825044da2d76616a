package models

import (
	"strconv"
	"time"
)

// Narrative metadata keys written by the workspace service.
const (
	narrativeMetaNiceName = "narrative_nice_name"
	narrativeMetaVersion  = "narrative"

	// UntitledNarrative is the display name for temporary narratives that
	// were never given a nice name.
	UntitledNarrative = "Untitled"
)

// NarrativeEntry is a workspace/narrative metadata record. Many workspace ids
// have no matching entry.
type NarrativeEntry struct {
	WorkspaceID string            `json:"wsid"`
	Name        string            `json:"name"` // workspace display name
	Deleted     bool              `json:"deleted"`
	LastSaved   time.Time         `json:"last_saved"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// NiceName extracts the narrative nice name from metadata, defaulting to
// "Untitled" for temporary/unnamed narratives.
func (e *NarrativeEntry) NiceName() string {
	if name, ok := e.Metadata[narrativeMetaNiceName]; ok && name != "" {
		return name
	}
	return UntitledNarrative
}

// Version extracts the narrative object number from metadata. Returns 0 when
// absent or unparsable.
func (e *NarrativeEntry) Version() int {
	raw, ok := e.Metadata[narrativeMetaVersion]
	if !ok {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}

// ClientGroupEntry maps an application id to the execution-resource groups it
// is configured to run in. Static-ish reference data from the catalog.
type ClientGroupEntry struct {
	AppID        string   `json:"app_id"`
	ClientGroups []string `json:"client_groups"`
}
