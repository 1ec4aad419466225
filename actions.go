package meilisearch

import (
	"encoding/json"
	"fmt"
)

// Action is one permission scope an API key may grant. The set is closed:
// tokens the service does not document are rejected on both encode and
// decode instead of being folded into a catch-all.
type Action string

const (
	// ActionAll grants access to everything.
	ActionAll Action = "*"
	// ActionSearch grants access to the POST and GET search endpoints on
	// authorized indexes.
	ActionSearch Action = "search"
	// ActionDocumentsAdd grants access to the add and update documents
	// endpoints on authorized indexes.
	ActionDocumentsAdd Action = "documents.add"
	// ActionDocumentsGet grants access to the get one document and get
	// documents endpoints on authorized indexes.
	ActionDocumentsGet Action = "documents.get"
	// ActionDocumentsDelete grants access to the delete document endpoints on
	// authorized indexes.
	ActionDocumentsDelete Action = "documents.delete"
	// ActionIndexesCreate grants access to the create index endpoint.
	ActionIndexesCreate Action = "indexes.create"
	// ActionIndexesGet grants access to the get and list index endpoints.
	// Non-authorized indexes are omitted from the response.
	ActionIndexesGet Action = "indexes.get"
	// ActionIndexesUpdate grants access to the update index endpoint.
	ActionIndexesUpdate Action = "indexes.update"
	// ActionIndexesDelete grants access to the delete index endpoint.
	ActionIndexesDelete Action = "indexes.delete"
	// ActionTasksGet grants access to the task endpoints. Tasks from
	// non-authorized indexes are omitted from the response.
	ActionTasksGet Action = "tasks.get"
	// ActionSettingsGet grants access to the get settings endpoint and all of
	// its subroutes on authorized indexes.
	ActionSettingsGet Action = "settings.get"
	// ActionSettingsUpdate grants access to the update and reset settings
	// endpoints and all of their subroutes on authorized indexes.
	ActionSettingsUpdate Action = "settings.update"
	// ActionStatsGet grants access to the stats endpoints. Non-authorized
	// indexes are omitted from the response.
	ActionStatsGet Action = "stats.get"
	// ActionDumpsCreate grants access to the create dump endpoint. Not
	// restricted by indexes.
	ActionDumpsCreate Action = "dumps.create"
	// ActionDumpsGet grants access to the dump status endpoint. Not
	// restricted by indexes.
	ActionDumpsGet Action = "dumps.get"
	// ActionVersion grants access to the version endpoint.
	ActionVersion Action = "version"
)

// ParseAction maps a wire token to its Action, rejecting unknown tokens.
func ParseAction(val string) (Action, error) {
	switch Action(val) {
	case ActionAll, ActionSearch,
		ActionDocumentsAdd, ActionDocumentsGet, ActionDocumentsDelete,
		ActionIndexesCreate, ActionIndexesGet, ActionIndexesUpdate, ActionIndexesDelete,
		ActionTasksGet, ActionSettingsGet, ActionSettingsUpdate, ActionStatsGet,
		ActionDumpsCreate, ActionDumpsGet, ActionVersion:
		return Action(val), nil
	}
	return "", fmt.Errorf("meilisearch: unknown key action %q", val)
}

func (a Action) MarshalJSON() ([]byte, error) {
	if _, err := ParseAction(string(a)); err != nil {
		return nil, err
	}
	return json.Marshal(string(a))
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseAction(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
