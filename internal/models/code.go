package models

// CodeKind is the closed set of symbologies the service produces. Each
// kind maps to its own table and bucket; dispatch on it is exhaustive.
type CodeKind string

const (
	CodeKindBarcode CodeKind = "barcode"
	CodeKindQR      CodeKind = "qrcode"
)

func (k CodeKind) Valid() bool {
	return k == CodeKindBarcode || k == CodeKindQR
}

// CodeRecord is one generated code: immutable once written, looked up by
// UniqueID across both tables.
type CodeRecord struct {
	Kind      CodeKind
	Name      string
	UniqueID  string
	ImagePath string
}
