package events

// EventData is the interface that all event data types must implement
// This allows for type-safe event data while maintaining flexibility
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// StateRepreparedData contains data for StateReprepared events
type StateRepreparedData struct {
	SessionID string `json:"session_id"`
	Kind      string `json:"kind"`
	Tick      int64  `json:"tick"`
}

// EventType returns the event type for StateRepreparedData
func (d *StateRepreparedData) EventType() EventType {
	return StateReprepared
}

// TrialsRecordedData contains data for TrialsRecorded events
type TrialsRecordedData struct {
	SessionID string `json:"session_id"`
	Count     int    `json:"count"`
	Total     int    `json:"total"`
}

// EventType returns the event type for TrialsRecordedData
func (d *TrialsRecordedData) EventType() EventType {
	return TrialsRecorded
}

// DirectionChangedData contains data for DirectionChanged events
type DirectionChangedData struct {
	SessionID string  `json:"session_id"`
	Subsystem string  `json:"subsystem"`
	ThetaDeg  float64 `json:"theta_deg"`
	PhiDeg    float64 `json:"phi_deg"`
}

// EventType returns the event type for DirectionChangedData
func (d *DirectionChangedData) EventType() EventType {
	return DirectionChanged
}

// SessionCreatedData contains data for SessionCreated events
type SessionCreatedData struct {
	SessionID string `json:"session_id"`
	Kind      string `json:"kind"`
	Mode      string `json:"mode"`
}

// EventType returns the event type for SessionCreatedData
func (d *SessionCreatedData) EventType() EventType {
	return SessionCreated
}

// SessionClosedData contains data for SessionClosed events
type SessionClosedData struct {
	SessionID string `json:"session_id"`
}

// EventType returns the event type for SessionClosedData
func (d *SessionClosedData) EventType() EventType {
	return SessionClosed
}
