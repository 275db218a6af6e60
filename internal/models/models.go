package models

// Label identifies which side of the sleeve an upload shows
type Label string

const (
	LabelFront Label = "front"
	LabelBack  Label = "back"
)

// Upload is one raw image as received from a caller
type Upload struct {
	Label    Label
	Filename string
	Data     []byte
}

// Fields is the flat field-guess map returned to callers.
// Empty values are omitted so absent guesses are absent keys.
type Fields struct {
	Barcode string `json:"barcode,omitempty" yaml:"barcode,omitempty"`
	Artist  string `json:"artist,omitempty" yaml:"artist,omitempty"`
	Title   string `json:"title,omitempty" yaml:"title,omitempty"`
	Year    int    `json:"year,omitempty" yaml:"year,omitempty"`
}

// IsEmpty reports whether no field was guessed
func (f Fields) IsEmpty() bool {
	return f == Fields{}
}

// AnalyzeResult is the response body of an analyze call
type AnalyzeResult struct {
	OK   bool   `json:"ok"`
	Data Fields `json:"data"`
}
