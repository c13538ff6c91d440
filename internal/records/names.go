// Package records converts remote store pages to and from the operational models.
// Property names and every decoding fallback live here and nowhere else.
package records

// Shared property names.
const (
	PropName           = "Name"
	PropProject        = "Project"
	PropStatus         = "Status"
	PropPriority       = "Priority"
	PropOwner          = "Owner"
	PropTrade          = "Trade"
	PropSchedule       = "Schedule"
	PropIdempotencyKey = "Idempotency Key"
	PropNotes          = "Notes"
)

// Site properties.
const (
	PropSlug      = "Slug"
	PropAddress   = "Address"
	PropLatitude  = "Latitude"
	PropLongitude = "Longitude"
	PropRadius    = "Radius (m)"
)

// Task properties.
const (
	PropStage    = "Stage"
	PropSequence = "Sequence"
	PropStart    = "Start"
	PropFinish   = "Finish"
	PropNeedBy   = "Need By"
)

// Look-ahead row properties.
const (
	PropWeekStart = "Week Start"
	PropTaskRef   = "Task Ref"
	PropBuildKey  = "Build Key"
)

// Admin settings properties.
const (
	PropFeatureFlags     = "Feature Flags"
	PropQuietStart       = "Quiet Start"
	PropQuietEnd         = "Quiet End"
	PropQuietTZ          = "Quiet TZ"
	PropQuietAllow       = "Quiet Allow"
	PropTelegramTopics   = "Telegram Topics"
	PropTelegramCommands = "Telegram Commands"
	PropTelegramChat     = "Telegram Chat"
	PropWebhooks         = "Webhooks"
	PropStripePlan       = "Stripe Plan"
	PropStripeTier       = "Stripe Tier"
	PropStripeWebhook    = "Stripe Webhook"
	PropGanttURL         = "Gantt URL"
	PropDashboardURL     = "Dashboard URL"
)

// Daily log properties.
const (
	PropLogDate     = "Log Date"
	PropWeather     = "Weather"
	PropManpower    = "Manpower"
	PropIssues      = "Issues"
	PropGPSCheckins = "GPS Checkins"
	PropLastCheckin = "Last Checkin"
)

// Extracted element properties.
const (
	PropType       = "Type"
	PropSheetRef   = "Sheet Ref"
	PropAttributes = "Attributes"
	PropConfidence = "Confidence"
	PropVerified   = "Verified"
	PropDocHash    = "Doc Hash"
	PropElementKey = "Element Key"
	PropSource     = "Source"
)
