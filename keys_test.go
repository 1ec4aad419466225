package meilisearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestKeyWritePayloadOmitsServerFields(t *testing.T) {
	now := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	key := Key{
		UID:       uuid.NewString(),
		Key:       "sk_live_secret",
		CreatedAt: now,
		UpdatedAt: now,
	}
	data, err := json.Marshal(key)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	for _, field := range []string{"key", "uid", "createdAt", "updatedAt", "actions", "indexes", "expiresAt"} {
		if _, ok := payload[field]; ok {
			t.Fatalf("field %q should be absent from write payload: %s", field, data)
		}
	}
	if _, ok := payload["description"]; !ok {
		t.Fatalf("description should serialize (as null) on the write path: %s", data)
	}
}

func TestKeyWritePayloadEncodesExpiry(t *testing.T) {
	expires := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	key := Key{
		Actions:   []Action{ActionSearch},
		Indexes:   []string{"movies"},
		ExpiresAt: &expires,
	}
	data, err := json.Marshal(key)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	var payload struct {
		Actions   []string `json:"actions"`
		Indexes   []string `json:"indexes"`
		ExpiresAt string   `json:"expiresAt"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.ExpiresAt != "2026-03-01T10:00:00Z" {
		t.Fatalf("expected RFC3339 expiry, got %q", payload.ExpiresAt)
	}
	if len(payload.Actions) != 1 || payload.Actions[0] != "search" {
		t.Fatalf("unexpected actions: %v", payload.Actions)
	}
	if len(payload.Indexes) != 1 || payload.Indexes[0] != "movies" {
		t.Fatalf("unexpected indexes: %v", payload.Indexes)
	}
}

func TestKeyDecodeDefaults(t *testing.T) {
	raw := `{"uid":"9a2f","key":"sk_live","name":null,"description":null,"expiresAt":null,"createdAt":"2026-01-15T09:00:00Z","updatedAt":"2026-01-15T09:00:00Z"}`
	var key Key
	if err := json.Unmarshal([]byte(raw), &key); err != nil {
		t.Fatalf("decode key: %v", err)
	}
	if len(key.Actions) != 0 || len(key.Indexes) != 0 {
		t.Fatalf("missing sequences should decode empty: %#v", key)
	}
	if key.ExpiresAt != nil {
		t.Fatalf("null expiry should decode to nil, got %v", key.ExpiresAt)
	}
	if key.CreatedAt.IsZero() || key.UpdatedAt.IsZero() {
		t.Fatalf("server timestamps should decode: %#v", key)
	}
	if key.String() != "sk_live" {
		t.Fatalf("key should stand in for its secret token, got %q", key.String())
	}
}

func TestKeyBuilderIndexSemantics(t *testing.T) {
	builder := NewKeyBuilder().
		WithIndexes([]string{"movies", "books"}).
		WithIndexes([]string{"games"})
	if len(builder.Indexes) != 1 || builder.Indexes[0] != "games" {
		t.Fatalf("WithIndexes should replace wholesale: %v", builder.Indexes)
	}
	builder.WithIndex("music")
	if len(builder.Indexes) != 2 || builder.Indexes[1] != "music" {
		t.Fatalf("WithIndex should append: %v", builder.Indexes)
	}
}

func TestKeyBuilderActionsAppendWithoutDedup(t *testing.T) {
	builder := NewKeyBuilder().
		WithAction(ActionSearch).
		WithAction(ActionSearch).
		WithActions(ActionSearch, ActionDocumentsAdd)
	want := []Action{ActionSearch, ActionSearch, ActionSearch, ActionDocumentsAdd}
	if len(builder.Actions) != len(want) {
		t.Fatalf("expected %d actions, got %v", len(want), builder.Actions)
	}
	for i, action := range want {
		if builder.Actions[i] != action {
			t.Fatalf("action %d: expected %q, got %q", i, action, builder.Actions[i])
		}
	}
}

func TestKeyBuilderEmptyPayloadOmitsSequences(t *testing.T) {
	data, err := json.Marshal(NewKeyBuilder())
	if err != nil {
		t.Fatalf("marshal builder: %v", err)
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	for _, field := range []string{"actions", "indexes", "expiresAt", "uid"} {
		if _, ok := payload[field]; ok {
			t.Fatalf("field %q should be absent from empty builder payload: %s", field, data)
		}
	}
}

func TestKeysQueryParams(t *testing.T) {
	query := NewKeysQuery(nil)
	if encoded := query.values().Encode(); encoded != "" {
		t.Fatalf("unset query should carry no params, got %q", encoded)
	}
	query.WithOffset(1).WithLimit(2)
	if encoded := query.values().Encode(); encoded != "limit=2&offset=1" {
		t.Fatalf("unexpected params: %q", encoded)
	}
	query.WithLimit(50)
	if encoded := query.values().Encode(); encoded != "limit=50&offset=1" {
		t.Fatalf("WithLimit should overwrite: %q", encoded)
	}
}

func keyFixture(uid, secret, description string, created, updated time.Time) string {
	return fmt.Sprintf(`{"uid":"%s","key":"%s","actions":["search"],"indexes":["*"],"name":null,"description":"%s","expiresAt":null,"createdAt":"%s","updatedAt":"%s"}`,
		uid, secret, description, created.Format(time.RFC3339), updated.Format(time.RFC3339))
}

func TestKeysClientCreateUpdateDelete(t *testing.T) {
	uid := uuid.NewString()
	created := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	updated := created.Add(time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("/keys", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		var body map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode create body: %v", err)
		}
		for _, field := range []string{"key", "createdAt", "updatedAt"} {
			if _, ok := body[field]; ok {
				t.Errorf("create payload must not carry %q", field)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, keyFixture(uid, "sk_live_abcd", "demo", created, created))
	})
	mux.HandleFunc("/keys/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch:
			var body map[string]json.RawMessage
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decode update body: %v", err)
			}
			for _, field := range []string{"key", "uid", "createdAt", "updatedAt"} {
				if _, ok := body[field]; ok {
					t.Errorf("update payload must not carry %q", field)
				}
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, keyFixture(uid, "sk_live_abcd", "changed", created, updated))
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Fatalf("unexpected method %s", r.Method)
		}
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := NewClient(Config{Host: srv.URL, APIKey: "masterKey"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	key, err := NewKeyBuilder().
		WithAction(ActionSearch).
		WithIndex("*").
		WithDescription("demo").
		Execute(context.Background(), client)
	if err != nil {
		t.Fatalf("create key: %v", err)
	}
	if key.Key == "" || key.UID != uid {
		t.Fatalf("unexpected created key: %#v", key)
	}
	if len(key.Actions) != 1 || key.Actions[0] != ActionSearch {
		t.Fatalf("unexpected actions: %v", key.Actions)
	}
	if len(key.Indexes) != 1 || key.Indexes[0] != "*" {
		t.Fatalf("unexpected indexes: %v", key.Indexes)
	}
	if key.CreatedAt.IsZero() || key.UpdatedAt.IsZero() || key.ExpiresAt != nil {
		t.Fatalf("unexpected timestamps: %#v", key)
	}

	refreshed, err := key.WithDescription("changed").Update(context.Background(), client)
	if err != nil {
		t.Fatalf("update key: %v", err)
	}
	if refreshed.Description == nil || *refreshed.Description != "changed" {
		t.Fatalf("unexpected description: %#v", refreshed.Description)
	}
	if !refreshed.UpdatedAt.After(key.UpdatedAt) {
		t.Fatalf("updatedAt should move forward: %v vs %v", refreshed.UpdatedAt, key.UpdatedAt)
	}

	if err := refreshed.Delete(context.Background(), client); err != nil {
		t.Fatalf("delete key: %v", err)
	}
}

func TestKeysClientList(t *testing.T) {
	created := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	mux := http.NewServeMux()
	mux.HandleFunc("/keys", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("expected GET, got %s", r.Method)
		}
		if got := r.URL.Query().Get("offset"); got != "1" {
			t.Fatalf("expected offset=1, got %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "2" {
			t.Fatalf("expected limit=2, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"results":[%s,%s],"offset":1,"limit":2}`,
			keyFixture(uuid.NewString(), "sk_one", "one", created, created),
			keyFixture(uuid.NewString(), "sk_two", "two", created, created))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := NewClient(Config{Host: srv.URL, APIKey: "masterKey"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	results, err := NewKeysQuery(client).WithOffset(1).WithLimit(2).Execute(context.Background())
	if err != nil {
		t.Fatalf("list keys: %v", err)
	}
	if len(results.Results) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(results.Results))
	}
	if results.Offset != 1 || results.Limit != 2 {
		t.Fatalf("envelope should echo pagination: %#v", results)
	}
}

func TestKeysClientListNoParamsByDefault(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/keys", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Fatalf("unset query should send no params, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"results":[],"offset":0,"limit":20}`)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := NewClient(Config{Host: srv.URL, APIKey: "masterKey"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	results, err := NewKeysQuery(client).Execute(context.Background())
	if err != nil {
		t.Fatalf("list keys: %v", err)
	}
	if results.Limit != 20 || results.Offset != 0 {
		t.Fatalf("expected server defaults echoed back: %#v", results)
	}
}

func TestKeysClientGetNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/keys/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"API key not found","code":"api_key_not_found","type":"invalid_request","link":"https://docs.example.com/errors#api_key_not_found"}`)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := NewClient(Config{Host: srv.URL, APIKey: "masterKey"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Keys.Get(context.Background(), "nope")
	var apiErr APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Code != "api_key_not_found" {
		t.Fatalf("unexpected error payload: %#v", apiErr)
	}
	if apiErr.Type != "invalid_request" || apiErr.Link == "" {
		t.Fatalf("server error metadata should be preserved: %#v", apiErr)
	}
}
