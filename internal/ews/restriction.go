package ews

// Restriction is the search filter subtree used by FindFolder and
// FindItem. Only equality on a single field is ever needed here.
type Restriction struct {
	IsEqualTo isEqualTo `xml:"t:IsEqualTo"`
}

type isEqualTo struct {
	FieldURI           fieldURI           `xml:"t:FieldURI"`
	FieldURIOrConstant fieldURIOrConstant `xml:"t:FieldURIOrConstant"`
}

type fieldURIOrConstant struct {
	Constant constant `xml:"t:Constant"`
}

type constant struct {
	Value string `xml:"Value,attr"`
}

// IsEqualTo builds a Restriction matching items whose field equals
// value, e.g. IsEqualTo("message:InternetMessageId", messageID).
func IsEqualTo(field, value string) Restriction {
	return Restriction{
		IsEqualTo: isEqualTo{
			FieldURI: fieldURI{FieldURI: field},
			FieldURIOrConstant: fieldURIOrConstant{
				Constant: constant{Value: value},
			},
		},
	}
}
