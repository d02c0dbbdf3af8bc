package session

// Record is the session-resident snapshot of a resolved identity.
//
// Record instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Record struct {
	SessionID   string            `json:"sid"`
	Role        string            `json:"role"`
	PrimaryKey  string            `json:"primary_key"`
	DisplayName string            `json:"display_name,omitempty"`
	Batch       string            `json:"batch,omitempty"`
	Email       string            `json:"email,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`

	CreatedAt int64 `json:"created_at"`
	ExpiresAt int64 `json:"expires_at"`
}
