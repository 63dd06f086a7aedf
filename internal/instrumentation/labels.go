package instrumentation

// Status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Login results
const (
	LoginResultSuccess = "success"
	LoginResultFailure = "failure"
)

// Google services
const (
	ServiceGmail    = "gmail"
	ServiceDrive    = "drive"
	ServiceCalendar = "calendar"
	ServiceVision   = "vision"
	ServiceSheets   = "sheets"
	ServiceUserInfo = "userinfo"
)

// Google API operations
const (
	OperationList     = "list"
	OperationGet      = "get"
	OperationSearch   = "search"
	OperationCreate   = "create"
	OperationUpload   = "upload"
	OperationDelete   = "delete"
	OperationSend     = "send"
	OperationAnnotate = "annotate"
	OperationAppend   = "append"
)

// Composed message kinds
const (
	MessageKindPlain     = "plain"
	MessageKindMultipart = "multipart"
)

// Exporter types
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

// StatusOf maps an error to StatusSuccess or StatusError.
func StatusOf(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}
