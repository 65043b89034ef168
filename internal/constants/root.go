package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "resdesk"
	Version            = "v0.3.0"
	DefaultKeyringUser = "session-cookie"
	DefaultConfigDir   = "~/.config/resdesk"
	DefaultConfigFile  = "~/.config/resdesk/config.json"
	DefaultJournalPath = "~/.config/resdesk/resdesk.db"
	DefaultAPIURL      = "http://localhost:3000"
	DefaultSocketURL   = "ws://localhost:3000/ws"
	DefaultExchange    = "resdesk.events"

	// DateFormat is the calendar date format used on the wire and in charts (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Display formats for timestamps and calendar dates
	DisplayDateTimeFormat = "Jan 2, 2006 / 03:04 PM"
	DisplayDateFormat     = "Jan 2, 2006"

	// Resources
	ResourceReservations = "reservations"

	// Event bus topics
	TopicReservationCreated    = "reservationCreated"
	TopicConnectivityChanged   = "connectivityChanged"
	EventNewReservation        = "new-reservation"
	NotificationTitle          = "New Reservation"
	NotificationDurationMs     = 5000
	NotificationDuration       = NotificationDurationMs * time.Millisecond
	NotificationJournalLimit   = 50
	ConnectivityBackoffStart   = time.Second
	ConnectivityBackoffCeiling = 30 * time.Second

	// Debounce delays per surface
	RecentGridDebounce     = 300 * time.Millisecond
	DashboardChartDebounce = 500 * time.Millisecond

	// Page sizes
	RecentGridPageSize   = 10
	TimelinePageSize     = 7
	ListDefaultPageSize  = 10
	DashboardFetchSize   = 1000
	ExportPageSize       = 50
	ExportMaxItems       = 500
	DefaultSortField     = "updatedAt"
	CreatedAtSortField   = "createdAt"
	IdentityField        = "id"
	ServerIdentityField  = "_id"
	FilterOperatorEquals = "eq"
)

// Session States
const (
	StateLogin SessionState = iota
	StateDashboard
	StateReservations
	StateNotifications
	StateDetail
	StateConfirmation
)

// ListPageSizes are the page sizes the reservation list cycles through
var ListPageSizes = []int{10, 20, 50, 100}
