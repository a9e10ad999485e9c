package enums

// RequestKind labels a quota-counted conversion request. Values are stored
// as-is in usage records, so they must stay stable.
type RequestKind string

const (
	RequestKindText  RequestKind = "text"
	RequestKindImage RequestKind = "image"
)

func (k RequestKind) Valid() bool {
	return k == RequestKindText || k == RequestKindImage
}
