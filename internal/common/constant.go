package common

// Durable storage keys. They match the local storage keys of the web
// dashboard so that exported records stay interchangeable.
const (
	SessionKey     = "flowcross_user"
	CredentialsKey = "flowcross_registered_users"
)

// MillisPerDay is the length of a day in epoch milliseconds.
const MillisPerDay int64 = 86_400_000
