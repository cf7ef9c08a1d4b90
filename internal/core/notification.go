package core

import "time"

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
	NotificationSuccess NotificationType = "success"
)

var NotificationTypes = []NotificationType{NotificationInfo, NotificationWarning, NotificationError, NotificationSuccess}

type Channel string

const (
	ChannelInApp Channel = "in_app"
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelPush  Channel = "push"
)

var Channels = []Channel{ChannelInApp, ChannelEmail, ChannelSMS, ChannelPush}

var NotificationPriorities = []Priority{PriorityMedium, PriorityLow, PriorityHigh, PriorityUrgent}

// QuietHours suppresses delivery between Start and End (HH:MM, may wrap midnight).
type QuietHours struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

func (q QuietHours) validate() error {
	if !q.Enabled {
		return nil
	}
	if !timeOfDayRE.MatchString(q.Start) {
		return &ValidationError{Field: "quiet_hours.start", Reason: "must be HH:MM"}
	}
	if !timeOfDayRE.MatchString(q.End) {
		return &ValidationError{Field: "quiet_hours.end", Reason: "must be HH:MM"}
	}
	return nil
}

// Contains reports whether the HH:MM clock value falls inside the window.
func (q QuietHours) Contains(clock string) bool {
	if !q.Enabled {
		return false
	}
	if q.Start <= q.End {
		return clock >= q.Start && clock < q.End
	}
	return clock >= q.Start || clock < q.End
}

// Notification is a stored message. Delivery is handled elsewhere.
type Notification struct {
	Meta
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	Type       NotificationType `json:"type"`
	Priority   Priority         `json:"priority"`
	Channel    Channel          `json:"channel"`
	Read       bool             `json:"read"`
	QuietHours QuietHours       `json:"quiet_hours" gorm:"embedded;embeddedPrefix:quiet_"`
}

func NewNotification() Notification {
	return Notification{
		Type:       NotificationTypes[0],
		Priority:   NotificationPriorities[0],
		Channel:    Channels[0],
		QuietHours: QuietHours{Start: "22:00", End: "07:00"},
	}
}

func (n Notification) WithID(id int64) Notification { n.ID = id; return n }

func (n Notification) WithTimestamps(created, updated time.Time) Notification {
	n.stamp(created, updated)
	return n
}

func (n Notification) Validate() error {
	return firstErr(
		requireText("title", n.Title),
		maxLen("title", n.Title, 200),
		checkEnum("type", n.Type, NotificationTypes),
		checkEnum("priority", n.Priority, NotificationPriorities),
		checkEnum("channel", n.Channel, Channels),
		n.QuietHours.validate(),
	)
}

func notificationDate(n Notification) string {
	if n.CreatedAt.IsZero() {
		return ""
	}
	return n.CreatedAt.UTC().Format(DateLayout)
}

var NotificationSchema = Schema[Notification]{
	Resource: "notifications",
	Kinds:    enumStrings(NotificationTypes),
	Kind:     func(n Notification) string { return string(n.Type) },
	Date:     notificationDate,
	Text:     func(n Notification) []string { return []string{n.Title, n.Message} },
	Compare: func(a, b Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	},
	Columns: []Column[Notification]{
		idColumn[Notification](),
		{Name: "date", Value: notificationDate},
		{Name: "type", Value: func(n Notification) string { return string(n.Type) }},
		{Name: "priority", Value: func(n Notification) string { return string(n.Priority) }},
		{Name: "title", Value: func(n Notification) string { return n.Title }},
		{Name: "read", Value: func(n Notification) string {
			if n.Read {
				return "yes"
			}
			return "no"
		}},
	},
}
