package models

// ErrorMessageResponse returns the error message response struct
type ErrorMessageResponse struct {
	Response MessageError
}

// MessageError contains the inner details for the error message response
type MessageError struct {
	Message string
	Error   string
}

// ErrorResponse is the machine-readable error envelope for domain failures
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// Error codes surfaced in ErrorResponse.Code
const (
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeDuplicateBarcode = "DUPLICATE_BARCODE"
	CodeSectorInUse      = "SECTOR_IN_USE"
	CodeNotFound         = "NOT_FOUND"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeInvalidHeader    = "INVALID_HEADER"
	CodeProfileMissing   = "PROFILE_MISSING"
)
