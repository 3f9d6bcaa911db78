// scan/outcome.go
package scan

import (
	"checkout_kiosk/models"
	"net/http"
)

type Kind int

const (
	Success Kind = iota
	ClientError
	NotFound
	Conflict
	ServerError
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case ClientError:
		return "client_error"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case ServerError:
		return "server_error"
	default:
		return "unknown"
	}
}

// HTTPStatus maps the outcome class onto the kiosk API status codes.
func (k Kind) HTTPStatus() int {
	switch k {
	case Success:
		return http.StatusOK
	case ClientError:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Machine-readable outcome codes.
const (
	CodeCheckedOut        = "checked_out"
	CodeReturned          = "returned"
	CodeMissingID         = "missing_scanned_id"
	CodeSelectionRequired = "selection_required"
	CodeInvalidIdentity   = "invalid_identity"
	CodeItemNotFound      = "item_not_found"
	CodeItemCheckedOut    = "item_checked_out"
	CodeAlreadyReturned   = "already_returned"
	CodeHolderBusy        = "holder_busy"
	CodeScanInProgress    = "scan_in_progress"
	CodeLookupFailed      = "lookup_failed"
	CodeReturnFailed      = "return_failed"
	CodeCheckoutFailed    = "checkout_failed"
	CodeLockFailed        = "lock_failed"
)

type Outcome struct {
	Kind    Kind
	Code    string
	Message string

	// Set on Success only.
	Action models.Action
	Item   *models.Item
}

func (o Outcome) OK() bool { return o.Kind == Success }

func failure(kind Kind, code, msg string) Outcome {
	return Outcome{Kind: kind, Code: code, Message: msg}
}
