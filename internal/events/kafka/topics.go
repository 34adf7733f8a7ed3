package kafka

// AuthEventsTopic carries MFA lifecycle events (setup initiated, enabled,
// verified, disabled).
const AuthEventsTopic = "auth-events"

// NotificationsTopic carries code-issued events for the downstream
// SMS/email delivery pipeline.
const NotificationsTopic = "auth-notifications"
