package events

// BuildStartedPayload is the payload for index_build_started events.
type BuildStartedPayload struct {
	BuildID  string `json:"build_id"`
	Patterns int    `json:"patterns"`
}

// BuildCompletedPayload is the payload for index_build_completed events.
type BuildCompletedPayload struct {
	BuildID    string `json:"build_id"`
	Items      int    `json:"items"`
	DurationMS int64  `json:"duration_ms"`
}

// BuildFailedPayload is the payload for index_build_failed events.
type BuildFailedPayload struct {
	BuildID string `json:"build_id"`
	Error   string `json:"error"`
}

// IndexUpdatedPayload carries the refreshed item list to a visible presenter.
type IndexUpdatedPayload struct {
	Items []string `json:"items"`
	Count int      `json:"count"`
	Help  string   `json:"help,omitempty"`
}

// CachePayload is the payload for cache_changed and cache_deleted events.
type CachePayload struct {
	Path  string `json:"path"`
	Items int    `json:"items"`
}

// NotificationLevel is the severity of a user notification.
type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationWarning NotificationLevel = "warning"
	NotificationError   NotificationLevel = "error"
)

// NotificationPayload is the payload for notification events.
type NotificationPayload struct {
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
	Detail  string            `json:"detail,omitempty"`
}

// NewBuildStartedEvent creates a new index_build_started event.
func NewBuildStartedEvent(buildID string, patterns int) *BaseEvent {
	return NewEvent(EventTypeIndexBuildStarted, BuildStartedPayload{
		BuildID:  buildID,
		Patterns: patterns,
	})
}

// NewBuildCompletedEvent creates a new index_build_completed event.
func NewBuildCompletedEvent(buildID string, items int, durationMS int64) *BaseEvent {
	return NewEvent(EventTypeIndexBuildCompleted, BuildCompletedPayload{
		BuildID:    buildID,
		Items:      items,
		DurationMS: durationMS,
	})
}

// NewBuildFailedEvent creates a new index_build_failed event.
func NewBuildFailedEvent(buildID string, err error) *BaseEvent {
	return NewEvent(EventTypeIndexBuildFailed, BuildFailedPayload{
		BuildID: buildID,
		Error:   err.Error(),
	})
}

// NewIndexUpdatedEvent creates a new index_updated event.
func NewIndexUpdatedEvent(items []string, help string) *BaseEvent {
	return NewEvent(EventTypeIndexUpdated, IndexUpdatedPayload{
		Items: items,
		Count: len(items),
		Help:  help,
	})
}

// NewCacheChangedEvent creates a new cache_changed event.
func NewCacheChangedEvent(path string, items int) *BaseEvent {
	return NewEvent(EventTypeCacheChanged, CachePayload{Path: path, Items: items})
}

// NewCacheDeletedEvent creates a new cache_deleted event.
func NewCacheDeletedEvent(path string) *BaseEvent {
	return NewEvent(EventTypeCacheDeleted, CachePayload{Path: path})
}

// NewNotificationEvent creates a new notification event.
func NewNotificationEvent(level NotificationLevel, message, detail string) *BaseEvent {
	return NewEvent(EventTypeNotification, NotificationPayload{
		Level:   level,
		Message: message,
		Detail:  detail,
	})
}

// CommandResultPayload is the payload for command_result events.
type CommandResultPayload struct {
	Command string      `json:"command"`
	Result  interface{} `json:"result,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// NewCommandResultEvent creates a command_result event correlated by
// requestID. err may be nil.
func NewCommandResultEvent(requestID, command string, result interface{}, err error, code string) *BaseEvent {
	payload := CommandResultPayload{Command: command, Result: result}
	if err != nil {
		payload.Error = err.Error()
		payload.Code = code
	}
	return NewEventWithRequestID(EventTypeCommandResult, payload, requestID)
}
