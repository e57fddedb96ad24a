package internal

const (
	MissingText    = "N/A"
	MissingMeasure = "0"
	MaterialPrefix = "FIO DE "
)

type ItemSource string

const (
	SourcePDF   ItemSource = "pdf"
	SourceText  ItemSource = "text"
	SourceEmail ItemSource = "email_pdf"
)

// OrderItem is one recognized order line. Nil pointers mean the field's
// pattern did not match; the *Text accessors render the sentinel defaults.
type OrderItem struct {
	LineNo       int
	Source       ItemSource
	RawLine      string
	Customer     *string
	DeliveryDate *string
	BarCode      *string
	Material     *string
	Diameter     *string
	Length       *string
	Weight       float64
	SourceFile   string
}

func (i OrderItem) CustomerText() string     { return orDefault(i.Customer, MissingText) }
func (i OrderItem) DeliveryDateText() string { return orDefault(i.DeliveryDate, MissingText) }
func (i OrderItem) BarCodeText() string      { return orDefault(i.BarCode, MissingText) }
func (i OrderItem) DiameterText() string     { return orDefault(i.Diameter, MissingMeasure) }
func (i OrderItem) LengthText() string       { return orDefault(i.Length, MissingMeasure) }

// MaterialText always carries the "FIO DE " label, even when the name is missing.
func (i OrderItem) MaterialText() string {
	return MaterialPrefix + orDefault(i.Material, MissingText)
}

// DocumentMeta is extracted once per document and copied onto every item.
type DocumentMeta struct {
	Customer     *string
	DeliveryDate *string
}

type DocumentStatus string

const (
	DocumentExtracted DocumentStatus = "extracted"
	DocumentEmpty     DocumentStatus = "empty"
	DocumentFailed    DocumentStatus = "failed"
)

type RunRow struct {
	ID          string
	InputDir    string
	OutputPath  string
	StartedAt   string
	FinishedAt  *string
	Files       int
	Failed      int
	Items       int
	TotalWeight string
}

type DocumentRow struct {
	ID        int
	RunID     string
	FileName  string
	Hash      string
	Status    DocumentStatus
	ItemCount int
	Error     *string
}

func orDefault(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}
