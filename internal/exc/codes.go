package exc

const (
	CodeUnknownFatal                   = "U0000"
	CodeFileNotFound                   = "U0001"
	CodeUnsupportedFileSystemOperation = "U0002"
	CodePermissionDenied               = "U0003"
	CodeUnsupportedFileFormat          = "U0004"
	CodeUnexpectedEOF                  = "U0005"
	CodeUnexpectedToken                = "U0006"
	CodeInvalidNumber                  = "U0007"
	CodeUnterminatedText               = "U0008"
	CodeNestingTooDeep                 = "U0009"
)

const (
	CodeEOF = "_EOF_"
)

var (
	defaultNonFatal = map[string]bool{}
)
