package meilisearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Key is the server-authoritative representation of an API key. Get a Key
// from KeysClient.Get, or mint one with KeyBuilder.Execute.
//
// The server owns UID, Key, CreatedAt, and UpdatedAt; those fields are
// decoded from responses but never serialized into request payloads (see
// keyWrite).
type Key struct {
	UID         string     `json:"uid"`
	Key         string     `json:"key"`
	Actions     []Action   `json:"actions"`
	Indexes     []string   `json:"indexes"`
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	ExpiresAt   *time.Time `json:"expiresAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// keyWrite is the outbound view of a Key: camelCase names, actions and
// indexes dropped when empty, server-managed fields dropped always.
type keyWrite struct {
	Actions     []Action   `json:"actions,omitempty"`
	Description *string    `json:"description"`
	Name        *string    `json:"name"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	Indexes     []string   `json:"indexes,omitempty"`
}

func (k Key) MarshalJSON() ([]byte, error) {
	return json.Marshal(keyWrite{
		Actions:     k.Actions,
		Description: k.Description,
		Name:        k.Name,
		ExpiresAt:   k.ExpiresAt,
		Indexes:     k.Indexes,
	})
}

// WithDescription sets the description. No local validation; the server may
// still reject the value.
func (k *Key) WithDescription(description string) *Key {
	k.Description = &description
	return k
}

// WithName sets the human-readable name.
func (k *Key) WithName(name string) *Key {
	k.Name = &name
	return k
}

// Update submits the key's current in-memory state as a partial update and
// returns the server's authoritative post-update copy.
func (k *Key) Update(ctx context.Context, client *Client) (*Key, error) {
	return client.Keys.Update(ctx, k)
}

// Delete removes the key server-side. The receiver is not invalidated;
// reusing it afterwards is the caller's mistake to make.
func (k *Key) Delete(ctx context.Context, client *Client) error {
	return client.Keys.Delete(ctx, k.Key)
}

// String returns the secret token so a Key can stand in anywhere the service
// expects a key identifier.
func (k Key) String() string {
	return k.Key
}

// KeyBuilder accumulates the fields needed to create a new Key. Build it up
// with the fluent mutators, then submit it once with Execute.
type KeyBuilder struct {
	UID         string     `json:"uid,omitempty"`
	Actions     []Action   `json:"actions,omitempty"`
	Description *string    `json:"description"`
	Name        *string    `json:"name"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	Indexes     []string   `json:"indexes,omitempty"`
}

// NewKeyBuilder returns an empty builder: no actions, no indexes, no expiry.
func NewKeyBuilder() *KeyBuilder {
	return &KeyBuilder{}
}

// WithActions appends actions to the scope. Duplicates are kept as-is; the
// server decides how to interpret them.
func (b *KeyBuilder) WithActions(actions ...Action) *KeyBuilder {
	b.Actions = append(b.Actions, actions...)
	return b
}

// WithAction appends a single action to the scope.
func (b *KeyBuilder) WithAction(action Action) *KeyBuilder {
	b.Actions = append(b.Actions, action)
	return b
}

// WithExpiresAt sets the expiry timestamp, replacing any prior value.
// Absence means the key never expires.
func (b *KeyBuilder) WithExpiresAt(expiresAt time.Time) *KeyBuilder {
	b.ExpiresAt = &expiresAt
	return b
}

// WithIndexes replaces the whole index scope, unlike WithActions which
// appends.
func (b *KeyBuilder) WithIndexes(indexes []string) *KeyBuilder {
	b.Indexes = append([]string(nil), indexes...)
	return b
}

// WithIndex appends one index pattern to the scope.
func (b *KeyBuilder) WithIndex(index string) *KeyBuilder {
	b.Indexes = append(b.Indexes, index)
	return b
}

// WithDescription sets the description of the key to create.
func (b *KeyBuilder) WithDescription(description string) *KeyBuilder {
	b.Description = &description
	return b
}

// WithName sets the name of the key to create.
func (b *KeyBuilder) WithName(name string) *KeyBuilder {
	b.Name = &name
	return b
}

// WithUID pins the server-side identifier instead of letting the service
// generate one.
func (b *KeyBuilder) WithUID(uid uuid.UUID) *KeyBuilder {
	b.UID = uid.String()
	return b
}

// Execute submits the create request and returns the newly minted Key, now
// carrying the server-assigned secret and timestamps.
func (b *KeyBuilder) Execute(ctx context.Context, client *Client) (*Key, error) {
	return client.Keys.Create(ctx, b)
}

// KeysQuery accumulates pagination parameters for listing keys. Unset fields
// are left out of the request so the server applies its defaults (offset 0,
// limit 20).
type KeysQuery struct {
	client *Client
	offset *int64
	limit  *int64
}

// NewKeysQuery binds a query to the client it will execute against.
func NewKeysQuery(client *Client) *KeysQuery {
	return &KeysQuery{client: client}
}

// WithOffset sets the number of keys to skip, overwriting any prior value.
func (q *KeysQuery) WithOffset(offset int64) *KeysQuery {
	q.offset = &offset
	return q
}

// WithLimit sets the maximum number of keys returned, overwriting any prior
// value. No upper bound is enforced locally.
func (q *KeysQuery) WithLimit(limit int64) *KeysQuery {
	q.limit = &limit
	return q
}

// Execute fetches one page of keys.
func (q *KeysQuery) Execute(ctx context.Context) (*KeysResults, error) {
	return q.client.Keys.List(ctx, q)
}

func (q *KeysQuery) values() url.Values {
	params := url.Values{}
	if q.offset != nil {
		params.Set("offset", strconv.FormatInt(*q.offset, 10))
	}
	if q.limit != nil {
		params.Set("limit", strconv.FormatInt(*q.limit, 10))
	}
	return params
}

// KeysResults is the response envelope for a key listing, echoing the
// pagination the server applied.
type KeysResults struct {
	Results []Key `json:"results"`
	Offset  int64 `json:"offset"`
	Limit   int64 `json:"limit"`
}

// KeysClient wraps the /keys endpoints.
type KeysClient struct {
	client *Client
}

// Get fetches a single key by its secret token or uid.
func (k *KeysClient) Get(ctx context.Context, keyOrUID string) (*Key, error) {
	if k == nil || k.client == nil {
		return nil, fmt.Errorf("meilisearch: keys client not initialized")
	}
	if keyOrUID == "" {
		return nil, fmt.Errorf("meilisearch: key identifier required")
	}
	req, err := k.client.newJSONRequest(ctx, http.MethodGet, "/keys/"+url.PathEscape(keyOrUID), nil)
	if err != nil {
		return nil, err
	}
	resp, err := k.client.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var key Key
	if err := json.NewDecoder(resp.Body).Decode(&key); err != nil {
		return nil, err
	}
	return &key, nil
}

// Create mints a new key from the builder.
func (k *KeysClient) Create(ctx context.Context, builder *KeyBuilder) (*Key, error) {
	if k == nil || k.client == nil {
		return nil, fmt.Errorf("meilisearch: keys client not initialized")
	}
	if builder == nil {
		return nil, fmt.Errorf("meilisearch: key builder required")
	}
	req, err := k.client.newJSONRequest(ctx, http.MethodPost, "/keys", builder)
	if err != nil {
		return nil, err
	}
	resp, err := k.client.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var key Key
	if err := json.NewDecoder(resp.Body).Decode(&key); err != nil {
		return nil, err
	}
	return &key, nil
}

// Update submits a partial update for the key identified by key.Key and
// returns the server's post-update copy.
func (k *KeysClient) Update(ctx context.Context, key *Key) (*Key, error) {
	if k == nil || k.client == nil {
		return nil, fmt.Errorf("meilisearch: keys client not initialized")
	}
	if key == nil || key.Key == "" {
		return nil, fmt.Errorf("meilisearch: key identifier required")
	}
	req, err := k.client.newJSONRequest(ctx, http.MethodPatch, "/keys/"+url.PathEscape(key.Key), key)
	if err != nil {
		return nil, err
	}
	resp, err := k.client.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var updated Key
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the key with the given secret token or uid.
func (k *KeysClient) Delete(ctx context.Context, keyOrUID string) error {
	if k == nil || k.client == nil {
		return fmt.Errorf("meilisearch: keys client not initialized")
	}
	if keyOrUID == "" {
		return fmt.Errorf("meilisearch: key identifier required")
	}
	req, err := k.client.newJSONRequest(ctx, http.MethodDelete, "/keys/"+url.PathEscape(keyOrUID), nil)
	if err != nil {
		return err
	}
	resp, err := k.client.send(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// List fetches one page of keys. A nil query lists with server defaults.
func (k *KeysClient) List(ctx context.Context, query *KeysQuery) (*KeysResults, error) {
	if k == nil || k.client == nil {
		return nil, fmt.Errorf("meilisearch: keys client not initialized")
	}
	path := "/keys"
	if query != nil {
		if params := query.values(); len(params) > 0 {
			path += "?" + params.Encode()
		}
	}
	req, err := k.client.newJSONRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := k.client.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var results KeysResults
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, err
	}
	return &results, nil
}
