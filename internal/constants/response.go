package constants

// Standard response field keys
const (
	ResponseFieldSuccess = "success"
	ResponseFieldMessage = "message"
	ResponseFieldDetails = "details"
	ResponseFieldData    = "data"
)

// BuildErrorResponse produces the uniform failure envelope. Details are
// optional and only ever carry field-level validation messages, never raw
// internal errors.
func BuildErrorResponse(message string, details any) map[string]any {
	response := map[string]any{
		ResponseFieldSuccess: false,
		ResponseFieldMessage: message,
	}

	if details != nil {
		response[ResponseFieldDetails] = details
	}

	return response
}

// BuildSuccessResponse produces the uniform success envelope.
func BuildSuccessResponse(message string, data any) map[string]any {
	response := map[string]any{
		ResponseFieldSuccess: true,
		ResponseFieldMessage: message,
	}

	if data != nil {
		response[ResponseFieldData] = data
	}

	return response
}
