package errortypes

// MissingBody should be used when a request which requires a body arrives without one.
//
// These are client errors. They are never written to the app log.
type MissingBody struct {
	Message string
}

func (err *MissingBody) Error() string {
	if err.Message == "" {
		return "request body is missing"
	}
	return err.Message
}

func (err *MissingBody) Code() int {
	return MissingBodyErrorCode
}

// MalformedBody should be used when the request body exists but can't be parsed
// into the structure the endpoint expects.
type MalformedBody struct {
	Message string
}

func (err *MalformedBody) Error() string {
	return err.Message
}

func (err *MalformedBody) Code() int {
	return MalformedBodyErrorCode
}

// OptedOut flags a request from a user who declined to have their IDs synced.
// No further processing should happen for that request.
type OptedOut struct {
	Message string
}

func (err *OptedOut) Error() string {
	return err.Message
}

func (err *OptedOut) Code() int {
	return OptedOutErrorCode
}

// BadInput should be used when returning errors which are caused by bad input.
// It should _not_ be used if the error is a server-side issue.
type BadInput struct {
	Message string
}

func (err *BadInput) Error() string {
	return err.Message
}

func (err *BadInput) Code() int {
	return BadInputErrorCode
}
