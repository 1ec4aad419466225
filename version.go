package meilisearch

// Version is the published SDK version.
// 0.2.0: Add tenant token generation signed by a parent key.
// 0.1.0: Key CRUD, paginated listing, closed action set.
const Version = "0.2.0"
