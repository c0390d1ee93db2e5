package schema

// Entity is implemented by every record persisted through the entity store
type Entity interface {
	// TableName is the table (or key namespace) holding the entity
	TableName() string
	// EntityID is the deterministic string id of the record
	EntityID() string
}
