package realtime

type SSEEvent string

const (
	SSEEventUsageChanged   SSEEvent = "usage_changed"
	SSEEventCourseProgress SSEEvent = "course_progress"
	SSEEventCourseDone     SSEEvent = "course_done"
	SSEEventCourseFailed   SSEEvent = "course_failed"
)

// UsageChannel carries usage_changed events for every client that asked for them.
const UsageChannel = "usage"

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data"`
}
