// Package models defines the persistent entities of todoflow and the
// normalization of their enum fields.
package models

// All returns every entity that the schema migration manages.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Tag{},
		&Todo{},
		&Comment{},
		&ActivityLog{},
		&Notification{},
		&Analytics{},
	}
}
