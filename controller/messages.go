package controller

// Status line texts.
const (
	StatusBackendDown        = "Backend not running yet. Start it, then click Refresh reports."
	StatusRefreshFailed      = "Could not refresh reports. Is the backend running?"
	StatusLocating           = "Getting location..."
	StatusGeoUnsupported     = "Geolocation not supported on this device."
	StatusLocationAdded      = "Location added."
	StatusLocationFailed     = "Could not get GPS. Please type coordinates."
	StatusInvalidCoordinates = "Please provide valid latitude and longitude."
	StatusInvalidObservedAt  = "Please provide a valid observation time."
	StatusSubmitting         = "Submitting..."
	StatusSubmitFailed       = "Submit failed: "
	StatusSaved              = "Saved! Refreshing..."
	StatusSavedNoRefresh     = "Saved, but could not refresh reports."
	StatusDone               = "Done ✅"
)
