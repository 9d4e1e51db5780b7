package errors

import "net/http"

// HTTPStatus maps an error Kind to the HTTP status returned at the API
// boundary. Every failure keeps a stable kind/message pair; nothing here
// leaks storage details to clients.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindAlreadyStarted:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthorization:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindInsufficientBalance, KindInsufficientCredits:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
