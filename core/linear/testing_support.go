package linear

// ExportBaseURL returns the current API base URL (for cross-package tests).
func ExportBaseURL() string { return baseURL }

// SetBaseURL overrides the API base URL (for cross-package tests).
func SetBaseURL(url string) { baseURL = url }
