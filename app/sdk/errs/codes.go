package errs

// The set of error codes the API returns. Their string form is the stable
// "code" field of an error body.
var (
	OK                 = ErrCode{value: 0}
	NoContent          = ErrCode{value: 1}
	InvalidArgument    = ErrCode{value: 2}
	Unauthenticated    = ErrCode{value: 3}
	PermissionDenied   = ErrCode{value: 4}
	NotFound           = ErrCode{value: 5}
	Aborted            = ErrCode{value: 6}
	AlreadyUsed        = ErrCode{value: 7}
	Expired            = ErrCode{value: 8}
	FailedPrecondition = ErrCode{value: 9}
	TooLarge           = ErrCode{value: 10}
	Internal           = ErrCode{value: 11}
	InternalOnlyLog    = ErrCode{value: 12}
)

var codeNames = map[ErrCode]string{
	OK:                 "ok",
	NoContent:          "no_content",
	InvalidArgument:    "invalid_argument",
	Unauthenticated:    "unauthenticated",
	PermissionDenied:   "permission_denied",
	NotFound:           "not_found",
	Aborted:            "aborted",
	AlreadyUsed:        "already_used",
	Expired:            "expired",
	FailedPrecondition: "failed_precondition",
	TooLarge:           "too_large",
	Internal:           "internal",
	InternalOnlyLog:    "internal",
}
